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

package bytecode

import "testing"

func TestVarsizeUintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 16384, 1 << 20, 1 << 40}
	for _, n := range cases {
		encoded := encodeVarsizeUint(n)
		encoded = append(encoded, 0xAA) // trailing byte must not be consumed
		got, next := decodeVarsizeUint(encoded, 0)
		if got != n {
			t.Errorf("decodeVarsizeUint(encodeVarsizeUint(%d)) = %d", n, got)
		}
		if next != len(encoded)-1 {
			t.Errorf("decodeVarsizeUint consumed %d bytes, want %d", next, len(encoded)-1)
		}
	}
}

func TestPosRoundTrip(t *testing.T) {
	cases := []int{0, 1, 255, 256, 4096, 65535}
	for _, target := range cases {
		enc := encodePos(target)
		got, next := decodePos(enc[:], 0)
		if got != target {
			t.Errorf("decodePos(encodePos(%d)) = %d", target, got)
		}
		if next != 2 {
			t.Errorf("decodePos consumed %d bytes, want 2", next)
		}
	}
}

func TestTagStringKnownAndUnknown(t *testing.T) {
	if TagFunction.String() != "Function" {
		t.Errorf("TagFunction.String() = %q, want %q", TagFunction.String(), "Function")
	}
	if Tag(0x7f).String() != "Unrecognized" {
		t.Errorf("unknown tag should stringify as Unrecognized")
	}
}

func TestIsBackwardPointerSafe(t *testing.T) {
	safe := []Tag{TagFunction, TagGeneratorFunction, TagClass}
	for _, tag := range safe {
		if !isBackwardPointerSafe(tag) {
			t.Errorf("%s should be backward-pointer safe", tag)
		}
	}
	unsafe := []Tag{TagArray, TagObject, TagString, TagNumber}
	for _, tag := range unsafe {
		if isBackwardPointerSafe(tag) {
			t.Errorf("%s should not be backward-pointer safe", tag)
		}
	}
}
