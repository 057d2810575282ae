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

package asm

import (
	"strings"
	"testing"

	"github.com/siliconjungle/ValueScript/bytecode"
)

func TestRegisterStringTakeVsPlain(t *testing.T) {
	r := NewRegister("x")
	if r.String() != "%x" {
		t.Errorf("String() = %q, want %%x", r.String())
	}
	if got := r.Taken().String(); got != "%!x" {
		t.Errorf("Taken().String() = %q, want %%!x", got)
	}
}

func TestReservedRegisterPredicates(t *testing.T) {
	if !ReturnRegister().IsReturn() {
		t.Errorf("ReturnRegister() should report IsReturn()")
	}
	if !ThisRegister().IsThis() {
		t.Errorf("ThisRegister() should report IsThis()")
	}
	if !IgnoreRegister().IsIgnore() {
		t.Errorf("IgnoreRegister() should report IsIgnore()")
	}
}

func TestInstructionVisitFieldsOrder(t *testing.T) {
	dst := NewRegister("dst")
	in := BinOp(bytecode.OpPlus, NumberValue(1), NumberValue(2), dst)

	var kinds []string
	in.VisitFields(func(f Field) {
		switch {
		case f.Value != nil:
			kinds = append(kinds, "value")
		case f.Register != nil:
			kinds = append(kinds, "register")
		case f.Label != nil:
			kinds = append(kinds, "label")
		}
	})
	want := "value,value,register"
	if got := strings.Join(kinds, ","); got != want {
		t.Errorf("VisitFields order = %q, want %q", got, want)
	}
}

func TestModuleStringIncludesExportAndDefinitions(t *testing.T) {
	mod := &Module{
		Export: PointerValue{Pointer: Pointer{Name: "main"}},
		Definitions: []*Definition{
			{Pointer: Pointer{Name: "main"}, Content: &Function{Body: []FnLine{End()}}},
		},
	}
	s := mod.String()
	if !strings.Contains(s, "export @main") {
		t.Errorf("Module.String() missing export line: %s", s)
	}
	if !strings.Contains(s, "@main = function") {
		t.Errorf("Module.String() missing definition: %s", s)
	}
}

func TestZeroValueFunctionIsNotGenerator(t *testing.T) {
	// A Function built with only Parameters set is a plain function.
	// (The asm package itself imposes no register-count limit; that
	// check lives in the assembler, see bytecode.TakeRegisterBit.)
	f := &Function{Parameters: []Register{NewRegister("a")}}
	if f.IsGenerator {
		t.Errorf("zero-value Function should not default to generator")
	}
}
