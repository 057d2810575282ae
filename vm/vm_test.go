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

package vm

import (
	"testing"

	"github.com/siliconjungle/ValueScript/asm"
	"github.com/siliconjungle/ValueScript/assembler"
	"github.com/siliconjungle/ValueScript/bytecode"
	"github.com/siliconjungle/ValueScript/values"
)

// compileAndRun assembles a single-function module whose body is fn's
// lines, decodes it, and runs it with the given args, returning its
// return value.
func compileAndRun(t *testing.T, fn *asm.Function, args ...values.Value) values.Value {
	t.Helper()
	mod := &asm.Module{
		Export: asm.PointerValue{Pointer: asm.Pointer{Name: "entry"}},
		Definitions: []*asm.Definition{
			{Pointer: asm.Pointer{Name: "entry"}, Content: fn},
		},
	}
	code, err := assembler.Assemble(mod)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	d := bytecode.NewDecoder(code)
	exported, _, err := d.DecodeValue(0, nil)
	if err != nil {
		t.Fatalf("DecodeValue returned error: %v", err)
	}
	machine := New(d)
	result, err := machine.Run(exported.FunctionHandle(), values.Undefined(), args)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	return result
}

func TestRunReturnsArithmeticResult(t *testing.T) {
	fn := &asm.Function{
		Body: []asm.FnLine{
			asm.BinOp(bytecode.OpPlus, asm.NumberValue(2), asm.NumberValue(3), asm.ReturnRegister()),
			asm.End(),
		},
	}
	got := compileAndRun(t, fn)
	if got.Kind() != values.KindNumber || got.Number() != 5 {
		t.Errorf("result = %v, want 5", got.Codify())
	}
}

func TestRunWithParameter(t *testing.T) {
	x := asm.NewRegister("x")
	fn := &asm.Function{
		Parameters: []asm.Register{x},
		Body: []asm.FnLine{
			asm.BinOp(bytecode.OpMul, asm.RegisterValue{Register: x}, asm.NumberValue(10), asm.ReturnRegister()),
			asm.End(),
		},
	}
	got := compileAndRun(t, fn, values.Number(4))
	if got.Number() != 40 {
		t.Errorf("result = %v, want 40", got.Codify())
	}
}

func TestRunConditionalJump(t *testing.T) {
	cond := asm.NewRegister("cond")
	fn := &asm.Function{
		Body: []asm.FnLine{
			asm.BinOp(bytecode.OpTripleEq, asm.NumberValue(1), asm.NumberValue(1), cond),
			asm.JmpCond(bytecode.OpJmpIf, asm.RegisterValue{Register: cond}, "istrue"),
			asm.Mov(asm.StringValue("no"), asm.ReturnRegister()),
			asm.Jmp("end"),
			asm.LabelLine{Label: asm.Label{Name: "istrue"}},
			asm.Mov(asm.StringValue("yes"), asm.ReturnRegister()),
			asm.LabelLine{Label: asm.Label{Name: "end"}},
			asm.End(),
		},
	}
	got := compileAndRun(t, fn)
	if got.Str() != "yes" {
		t.Errorf("result = %q, want %q", got.Str(), "yes")
	}
}

func TestRunThrowUncaughtPropagatesAsError(t *testing.T) {
	fn := &asm.Function{
		Body: []asm.FnLine{
			asm.Throw(asm.StringValue("boom")),
			asm.End(),
		},
	}
	mod := &asm.Module{
		Export: asm.PointerValue{Pointer: asm.Pointer{Name: "entry"}},
		Definitions: []*asm.Definition{
			{Pointer: asm.Pointer{Name: "entry"}, Content: fn},
		},
	}
	code, err := assembler.Assemble(mod)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	d := bytecode.NewDecoder(code)
	exported, _, err := d.DecodeValue(0, nil)
	if err != nil {
		t.Fatalf("DecodeValue returned error: %v", err)
	}
	machine := New(d)
	_, err = machine.Run(exported.FunctionHandle(), values.Undefined(), nil)
	if err == nil {
		t.Fatalf("expected an error from an uncaught throw")
	}
}
