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

package optimize

import (
	"testing"

	"github.com/siliconjungle/ValueScript/asm"
	"github.com/siliconjungle/ValueScript/bytecode"
)

func TestConstantFoldReplacesBinOpWithMov(t *testing.T) {
	fn := &asm.Function{
		Body: []asm.FnLine{
			asm.BinOp(bytecode.OpPlus, asm.NumberValue(40), asm.NumberValue(2), asm.ReturnRegister()),
			asm.End(),
		},
	}
	if !constantFold(fn) {
		t.Fatalf("constantFold reported no change")
	}
	mov, ok := fn.Body[0].(asm.Instruction)
	if !ok || mov.Op != bytecode.OpMov {
		t.Fatalf("Body[0] = %#v, want a mov instruction", fn.Body[0])
	}
	n, ok := mov.Args[0].(asm.NumberValue)
	if !ok || float64(n) != 42 {
		t.Errorf("folded value = %#v, want NumberValue(42)", mov.Args[0])
	}
}

func TestConstantFoldLeavesNonLiteralOperandsAlone(t *testing.T) {
	x := asm.NewRegister("x")
	fn := &asm.Function{
		Body: []asm.FnLine{
			asm.BinOp(bytecode.OpPlus, asm.RegisterValue{Register: x}, asm.NumberValue(1), asm.ReturnRegister()),
		},
	}
	if constantFold(fn) {
		t.Errorf("constantFold should not fold an operation with a register operand")
	}
}

func TestCommonSubexprEliminateReusesEarlierResult(t *testing.T) {
	x := asm.NewRegister("x")
	a := asm.NewRegister("a")
	b := asm.NewRegister("b")
	fn := &asm.Function{
		Body: []asm.FnLine{
			asm.BinOp(bytecode.OpMul, asm.RegisterValue{Register: x}, asm.NumberValue(2), a),
			asm.BinOp(bytecode.OpMul, asm.RegisterValue{Register: x}, asm.NumberValue(2), b),
		},
	}
	if !commonSubexprEliminate(fn) {
		t.Fatalf("commonSubexprEliminate reported no change")
	}
	mov, ok := fn.Body[1].(asm.Instruction)
	if !ok || mov.Op != bytecode.OpMov {
		t.Fatalf("Body[1] = %#v, want a mov from the first result", fn.Body[1])
	}
	rv, ok := mov.Args[0].(asm.RegisterValue)
	if !ok || rv.Register != a {
		t.Errorf("Body[1] moves from %#v, want register a", mov.Args[0])
	}
}

func TestCommonSubexprEliminateResetsAcrossLabels(t *testing.T) {
	x := asm.NewRegister("x")
	a := asm.NewRegister("a")
	b := asm.NewRegister("b")
	fn := &asm.Function{
		Body: []asm.FnLine{
			asm.BinOp(bytecode.OpMul, asm.RegisterValue{Register: x}, asm.NumberValue(2), a),
			asm.LabelLine{Label: asm.Label{Name: "l"}},
			asm.BinOp(bytecode.OpMul, asm.RegisterValue{Register: x}, asm.NumberValue(2), b),
		},
	}
	if commonSubexprEliminate(fn) {
		t.Errorf("commonSubexprEliminate should not reuse a result across a label boundary")
	}
}

func TestDeadCodeEliminateRemovesUnreadAssignment(t *testing.T) {
	dead := asm.NewRegister("dead")
	fn := &asm.Function{
		Body: []asm.FnLine{
			asm.Mov(asm.NumberValue(1), dead),
			asm.Mov(asm.NumberValue(2), asm.ReturnRegister()),
			asm.End(),
		},
	}
	if !deadCodeEliminate(fn) {
		t.Fatalf("deadCodeEliminate reported no change")
	}
	if len(fn.Body) != 2 {
		t.Fatalf("Body has %d lines, want 2 (dead mov removed)", len(fn.Body))
	}
}

func TestDeadCodeEliminateKeepsReadAssignment(t *testing.T) {
	live := asm.NewRegister("live")
	fn := &asm.Function{
		Body: []asm.FnLine{
			asm.Mov(asm.NumberValue(1), live),
			asm.Mov(asm.RegisterValue{Register: live}, asm.ReturnRegister()),
			asm.End(),
		},
	}
	if deadCodeEliminate(fn) {
		t.Errorf("deadCodeEliminate should not remove an assignment that is later read")
	}
	if len(fn.Body) != 3 {
		t.Errorf("Body has %d lines, want 3 (nothing removed)", len(fn.Body))
	}
}

func TestDeadCodeEliminateNeverRemovesSideEffects(t *testing.T) {
	fn := &asm.Function{
		Body: []asm.FnLine{
			asm.Throw(asm.StringValue("boom")),
		},
	}
	if deadCodeEliminate(fn) {
		t.Errorf("deadCodeEliminate should never touch a side-effecting instruction")
	}
	if len(fn.Body) != 1 {
		t.Errorf("Body has %d lines, want 1", len(fn.Body))
	}
}

func TestOptimizeFoldsThenEliminatesChainedDeadCode(t *testing.T) {
	mod := &asm.Module{
		Export: asm.PointerValue{Pointer: asm.Pointer{Name: "main"}},
		Definitions: []*asm.Definition{
			{
				Pointer: asm.Pointer{Name: "main"},
				Content: &asm.Function{
					Body: []asm.FnLine{
						asm.BinOp(bytecode.OpPlus, asm.NumberValue(1), asm.NumberValue(1), asm.NewRegister("unused")),
						asm.Mov(asm.NumberValue(42), asm.ReturnRegister()),
						asm.End(),
					},
				},
			},
		},
	}
	Optimize(mod)
	fn := mod.Definitions[0].Content.(*asm.Function)
	if len(fn.Body) != 2 {
		t.Fatalf("optimized body has %d lines, want 2 (folded-then-dead mov eliminated): %v", len(fn.Body), fn.Body)
	}
}
