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

package analyzer

import (
	"testing"

	"github.com/dop251/goja/ast"
)

// TestCapturesOfReturnsInsertionOrder exercises the captureOrder
// bookkeeping directly (Result.captureOrder, populated by Analyze from
// the resolver's internal orders map) without requiring a real parsed
// program: CapturesOf must hand back Names in the exact order they
// were first captured, since the compiler's bind-array and the
// callee's own bind-parameter registers must agree on that order.
func TestCapturesOfReturnsInsertionOrder(t *testing.T) {
	outer := &FuncInfo{Node: &ast.Program{}}
	inner := &FuncInfo{Node: &ast.FunctionLiteral{}, Parent: outer}

	names := map[NameID]*Name{
		1: {ID: 1, Original: "a", Kind: KindLet, OwnerFunc: outer},
		2: {ID: 2, Original: "b", Kind: KindLet, OwnerFunc: outer},
	}

	result := &Result{
		Names:  names,
		FuncOf: map[ast.Node]*FuncInfo{inner.Node: inner},
		captureOrder: map[*FuncInfo][]NameID{
			inner: {2, 1}, // b captured before a
		},
	}

	got := result.CapturesOf(inner.Node)
	if len(got) != 2 {
		t.Fatalf("CapturesOf returned %d names, want 2", len(got))
	}
	if got[0].Original != "b" || got[1].Original != "a" {
		t.Errorf("CapturesOf order = [%s %s], want [b a]", got[0].Original, got[1].Original)
	}
}

func TestCapturesOfUnknownNodeReturnsNil(t *testing.T) {
	result := &Result{FuncOf: map[ast.Node]*FuncInfo{}}
	if got := result.CapturesOf(&ast.FunctionLiteral{}); got != nil {
		t.Errorf("CapturesOf(unknown) = %v, want nil", got)
	}
}

func TestCapturesOfEmptyCaptureSet(t *testing.T) {
	fi := &FuncInfo{Node: &ast.FunctionLiteral{}}
	result := &Result{
		Names:        map[NameID]*Name{},
		FuncOf:       map[ast.Node]*FuncInfo{fi.Node: fi},
		captureOrder: map[*FuncInfo][]NameID{},
	}
	got := result.CapturesOf(fi.Node)
	if len(got) != 0 {
		t.Errorf("CapturesOf with no captures = %v, want empty", got)
	}
}
