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

package assembler

import (
	"math/big"
	"testing"

	"github.com/siliconjungle/ValueScript/asm"
	"github.com/siliconjungle/ValueScript/bytecode"
	"github.com/siliconjungle/ValueScript/values"
)

func TestAssembleConstValueExport(t *testing.T) {
	mod := &asm.Module{
		Export: asm.ObjectValue{Entries: []asm.ObjectEntry{
			{Key: asm.StringValue("greeting"), Value: asm.StringValue("hi")},
			{Key: asm.StringValue("count"), Value: asm.NumberValue(3)},
		}},
	}

	code, err := Assemble(mod)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}

	d := bytecode.NewDecoder(code)
	v, _, err := d.DecodeValue(0, nil)
	if err != nil {
		t.Fatalf("DecodeValue returned error: %v", err)
	}
	if v.Kind() != values.KindObject {
		t.Fatalf("decoded export kind = %v, want object", v.Kind())
	}
	if got := v.ObjectHandle().Get(values.String("greeting")).Str(); got != "hi" {
		t.Errorf("greeting = %q, want %q", got, "hi")
	}
	if got := v.ObjectHandle().Get(values.String("count")).Number(); got != 3 {
		t.Errorf("count = %v, want 3", got)
	}
}

func TestAssembleBigIntRoundTrip(t *testing.T) {
	big42 := new(big.Int).SetInt64(42)
	mod := &asm.Module{Export: asm.BigIntValue{Int: big42}}

	code, err := Assemble(mod)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	d := bytecode.NewDecoder(code)
	v, _, err := d.DecodeValue(0, nil)
	if err != nil {
		t.Fatalf("DecodeValue returned error: %v", err)
	}
	if v.Kind() != values.KindBigInt || v.BigInt().Cmp(big42) != 0 {
		t.Errorf("decoded BigInt = %v, want 42", v.Codify())
	}
}

func TestAssembleFunctionDefinitionDecodesToFunction(t *testing.T) {
	// export = @main; @main = function() { %return = 41 + 1; end }
	fn := &asm.Function{
		Body: []asm.FnLine{
			asm.BinOp(bytecode.OpPlus, asm.NumberValue(41), asm.NumberValue(1), asm.ReturnRegister()),
			asm.End(),
		},
	}
	mod := &asm.Module{
		Export: asm.PointerValue{Pointer: asm.Pointer{Name: "main"}},
		Definitions: []*asm.Definition{
			{Pointer: asm.Pointer{Name: "main"}, Content: fn},
		},
	}

	code, err := Assemble(mod)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}

	d := bytecode.NewDecoder(code)
	v, _, err := d.DecodeValue(0, nil)
	if err != nil {
		t.Fatalf("DecodeValue returned error: %v", err)
	}
	if v.Kind() != values.KindFunction {
		t.Fatalf("decoded export kind = %v, want function", v.Kind())
	}
	handle := v.FunctionHandle()
	if handle.RegisterCount == 0 {
		t.Errorf("expected at least one register to be allocated (return)")
	}
}

func TestAssembleUnresolvedPointerErrors(t *testing.T) {
	mod := &asm.Module{
		Export: asm.PointerValue{Pointer: asm.Pointer{Name: "missing"}},
	}
	if _, err := Assemble(mod); err == nil {
		t.Fatalf("expected an error for an unresolved pointer")
	}
}
