// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The ProbeChain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the ProbeChain. If not, see <http://www.gnu.org/licenses/>.

package compiler

import "testing"

func TestSanitizeKeepsAlphanumericAndUnderscore(t *testing.T) {
	if got := sanitize("foo_Bar123"); got != "foo_Bar123" {
		t.Errorf("sanitize(foo_Bar123) = %q, want unchanged", got)
	}
}

func TestSanitizeReplacesOtherRunes(t *testing.T) {
	if got := sanitize("a.b-c"); got != "a_b_c" {
		t.Errorf("sanitize(a.b-c) = %q, want a_b_c", got)
	}
}

func TestSanitizeEmptyBecomesAnon(t *testing.T) {
	if got := sanitize(""); got != "anon" {
		t.Errorf("sanitize(\"\") = %q, want anon", got)
	}
}

func TestNewNameAllocatorAllocAndFree(t *testing.T) {
	na := NewNameAllocator()
	r1 := na.Alloc()
	r2 := na.Alloc()
	if r1 == r2 {
		t.Fatalf("two live allocations should not share a register")
	}
	na.Release(r1)
	r3 := na.Alloc()
	if r3 != r1 {
		t.Errorf("Alloc after Free should reuse the freed register, got %v want %v", r3, r1)
	}
}
