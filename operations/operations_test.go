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

package operations

import (
	"math"
	"math/big"
	"testing"

	"github.com/siliconjungle/ValueScript/values"
)

func TestPlusConcatenatesWhenEitherSideIsString(t *testing.T) {
	v, err := Plus(values.String("n="), values.Number(3))
	if err != nil {
		t.Fatalf("Plus returned error: %v", err)
	}
	if got := v.Str(); got != "n=3" {
		t.Errorf("Plus(%q, 3) = %q, want %q", "n=", got, "n=3")
	}
}

func TestPlusAddsNumbers(t *testing.T) {
	v, err := Plus(values.Number(2), values.Number(3))
	if err != nil {
		t.Fatalf("Plus returned error: %v", err)
	}
	if got := v.Number(); got != 5 {
		t.Errorf("Plus(2, 3) = %v, want 5", got)
	}
}

func TestPlusAddsBigInts(t *testing.T) {
	v, err := Plus(values.BigInt(big.NewInt(2)), values.BigInt(big.NewInt(40)))
	if err != nil {
		t.Fatalf("Plus returned error: %v", err)
	}
	if v.Kind() != values.KindBigInt || v.BigInt().Cmp(big.NewInt(42)) != 0 {
		t.Errorf("Plus(2n, 40n) = %v, want 42n", v.Codify())
	}
}

func TestMixingBigIntAndNumberThrows(t *testing.T) {
	_, err := Minus(values.BigInt(big.NewInt(1)), values.Number(1))
	if err == nil {
		t.Fatalf("expected error mixing BigInt and Number")
	}
}

func TestDivByZeroBigIntReturnsZeroNotPanic(t *testing.T) {
	v, err := Div(values.BigInt(big.NewInt(5)), values.BigInt(big.NewInt(0)))
	if err != nil {
		t.Fatalf("Div returned error: %v", err)
	}
	if v.BigInt().Sign() != 0 {
		t.Errorf("Div by zero BigInt = %v, want 0", v.Codify())
	}
}

func TestStrictEqualsDistinguishesBigIntFromNumber(t *testing.T) {
	if StrictEquals(values.BigInt(big.NewInt(0)), values.Number(0)) {
		t.Errorf("0n === 0 should be false (different Kind)")
	}
}

func TestStrictEqualsNaN(t *testing.T) {
	if StrictEquals(values.Number(math.NaN()), values.Number(math.NaN())) {
		t.Errorf("NaN === NaN should be false")
	}
}

func TestStrictEqualsArraysByHandleIdentity(t *testing.T) {
	arr := values.Array(values.NewArray(nil))
	other := values.Array(values.NewArray(nil))
	if !StrictEquals(arr, arr) {
		t.Errorf("same array handle should be === to itself")
	}
	if StrictEquals(arr, other) {
		t.Errorf("distinct array handles with identical contents should not be ===")
	}
}

func TestLooseEqualsNullishCross(t *testing.T) {
	if !LooseEquals(values.Null(), values.Undefined()) {
		t.Errorf("null == undefined should be true")
	}
	if !LooseEquals(values.Void(), values.Undefined()) {
		t.Errorf("void == undefined should be true")
	}
}

func TestCompareStrings(t *testing.T) {
	cmp, ok := Compare(values.String("a"), values.String("b"))
	if !ok || cmp != -1 {
		t.Errorf("Compare(a, b) = (%d, %v), want (-1, true)", cmp, ok)
	}
}

func TestCompareNaNNotOrderable(t *testing.T) {
	_, ok := Compare(values.Number(math.NaN()), values.Number(1))
	if ok {
		t.Errorf("Compare involving NaN should report ok=false")
	}
}

func TestStringifyKinds(t *testing.T) {
	cases := []struct {
		v    values.Value
		want string
	}{
		{values.Undefined(), "undefined"},
		{values.Null(), "null"},
		{values.String("x"), "x"},
		{values.BigInt(big.NewInt(7)), "7"},
	}
	for _, c := range cases {
		if got := Stringify(c.v); got != c.want {
			t.Errorf("Stringify(%v) = %q, want %q", c.v.Kind(), got, c.want)
		}
	}
}

func TestInOperatorOnObjectAndArray(t *testing.T) {
	obj := values.NewObject()
	obj.Set(values.String("x"), values.Number(1))
	has, err := In(values.String("x"), values.Object(obj))
	if err != nil || !has.Bool() {
		t.Errorf("In('x', obj) = (%v, %v), want (true, nil)", has, err)
	}

	arr := values.Array(values.NewArray([]values.Value{values.Number(1), values.Number(2)}))
	has, err = In(values.Number(1), arr)
	if err != nil || !has.Bool() {
		t.Errorf("In(1, [1,2]) = (%v, %v), want (true, nil)", has, err)
	}

	_, err = In(values.String("x"), values.Number(1))
	if err == nil {
		t.Errorf("In on a non-object container should error")
	}
}

func TestInstanceOfWalksPrototypeChain(t *testing.T) {
	proto := values.Object(values.NewObject())
	ctor := values.Class(values.NewClass(values.Undefined(), proto, values.Undefined()))

	instance := values.NewObject()
	instance.Prototype = proto

	result, err := InstanceOf(values.Object(instance), ctor)
	if err != nil || !result.Bool() {
		t.Errorf("InstanceOf should find ctor's prototype in the chain: got (%v, %v)", result, err)
	}

	other := values.NewObject()
	result, err = InstanceOf(values.Object(other), ctor)
	if err != nil || result.Bool() {
		t.Errorf("InstanceOf should be false when prototype is absent from the chain")
	}
}
