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

package values

import "testing"

func TestKindPrimitives(t *testing.T) {
	cases := []struct {
		v    Value
		kind Kind
	}{
		{Void(), KindVoid},
		{Undefined(), KindUndefined},
		{Null(), KindNull},
		{Bool(true), KindBool},
		{Number(3.5), KindNumber},
		{String("hi"), KindString},
	}
	for _, c := range cases {
		if c.v.Kind() != c.kind {
			t.Errorf("Kind() = %v, want %v", c.v.Kind(), c.kind)
		}
	}
}

func TestIsNullish(t *testing.T) {
	for _, v := range []Value{Void(), Undefined(), Null()} {
		if !v.IsNullish() {
			t.Errorf("%v.IsNullish() = false, want true", v.Kind())
		}
	}
	if Number(0).IsNullish() {
		t.Errorf("Number(0).IsNullish() = true, want false")
	}
}

func TestIsTruthy(t *testing.T) {
	truthy := []Value{Bool(true), Number(1), String("a")}
	for _, v := range truthy {
		if !v.IsTruthy() {
			t.Errorf("%v should be truthy", v.Codify())
		}
	}
	falsy := []Value{Bool(false), Number(0), String(""), Undefined(), Null(), Void()}
	for _, v := range falsy {
		if v.IsTruthy() {
			t.Errorf("%v should be falsy", v.Kind())
		}
	}
}

func TestArrayGetSetLength(t *testing.T) {
	arr := NewArray([]Value{Number(1), Number(2), Number(3)})
	if arr.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", arr.Len())
	}
	if got := arr.Get(Number(1)).Number(); got != 2 {
		t.Errorf("Get(1) = %v, want 2", got)
	}
	if got := arr.Get(Number(10)); got.Kind() != KindUndefined {
		t.Errorf("out-of-bounds Get = %v, want undefined", got.Kind())
	}
	if got := arr.Get(String("length")).Number(); got != 3 {
		t.Errorf("Get(length) = %v, want 3", got)
	}

	arr.Set(Number(5), Number(9))
	if arr.Len() != 6 {
		t.Fatalf("Len() after Set(5,...) = %d, want 6", arr.Len())
	}
	if got := arr.Elements[4]; got.Kind() != KindVoid {
		t.Errorf("hole at index 4 = %v, want void", got.Kind())
	}
}

func TestArrayLengthTruncation(t *testing.T) {
	arr := NewArray([]Value{Number(1), Number(2), Number(3)})
	arr.Set(String("length"), Number(1))
	if arr.Len() != 1 {
		t.Fatalf("Len() after truncation = %d, want 1", arr.Len())
	}
}

func TestObjectGetSetOrderAndPrototype(t *testing.T) {
	proto := NewObject()
	proto.Set(String("inherited"), String("from-proto"))

	obj := NewObject()
	obj.Prototype = Object(proto)
	obj.Set(String("b"), Number(2))
	obj.Set(String("a"), Number(1))

	if len(obj.Keys) != 2 || obj.Keys[0] != "b" || obj.Keys[1] != "a" {
		t.Fatalf("Keys = %v, want insertion order [b a]", obj.Keys)
	}
	if got := obj.Get(String("inherited")).Str(); got != "from-proto" {
		t.Errorf("Get(inherited) = %q, want prototype lookup to succeed", got)
	}
	if !obj.Has(String("inherited")) {
		t.Errorf("Has(inherited) = false, want true via prototype chain")
	}
	if obj.Has(String("missing")) {
		t.Errorf("Has(missing) = true, want false")
	}
}

func TestRetainReleaseUniqueness(t *testing.T) {
	a := Array(NewArray([]Value{Number(1)}))
	if !IsUniquelyHeld(a) {
		t.Fatalf("freshly created array should be uniquely held")
	}

	b := Retain(a)
	if IsUniquelyHeld(a) {
		t.Errorf("after Retain, original handle should no longer read as uniquely held")
	}

	Release(b)
	if !IsUniquelyHeld(a) {
		t.Errorf("after Release, handle should be uniquely held again")
	}
}

func TestMakeMutArrayClonesWhenShared(t *testing.T) {
	a := Array(NewArray([]Value{Number(1), Number(2)}))
	shared := Retain(a)

	mutable := MakeMutArray(a)
	if mutable.ArrayHandle() == a.ArrayHandle() {
		t.Fatalf("MakeMutArray should clone when refcount > 1")
	}

	mutable.ArrayHandle().Set(Number(0), Number(99))
	if got := shared.ArrayHandle().Get(Number(0)).Number(); got != 1 {
		t.Errorf("mutation through cloned handle leaked into shared handle: got %v", got)
	}
}

func TestMakeMutArrayInPlaceWhenUnique(t *testing.T) {
	a := Array(NewArray([]Value{Number(1)}))
	mutable := MakeMutArray(a)
	if mutable.ArrayHandle() != a.ArrayHandle() {
		t.Errorf("MakeMutArray should not clone a uniquely held handle")
	}
}

func TestDeepCloneSeversSharing(t *testing.T) {
	inner := Array(NewArray([]Value{Number(1)}))
	outer := NewArray([]Value{inner})

	cloned := DeepClone(Array(outer))
	clonedInner := cloned.ArrayHandle().Get(Number(0))

	inner.ArrayHandle().Set(Number(0), Number(42))
	if got := clonedInner.ArrayHandle().Get(Number(0)).Number(); got != 1 {
		t.Errorf("DeepClone did not sever inner sharing: got %v, want 1 (unaffected)", got)
	}
}

func TestFunctionBind(t *testing.T) {
	fn := NewFunction(10, false, 3, 1, 20)
	bound := fn.Bind([]Value{Number(1), Number(2)})

	if len(bound.Binds) != 2 {
		t.Fatalf("Bind() produced %d binds, want 2", len(bound.Binds))
	}
	if bound.BytecodePointer != fn.BytecodePointer || bound.StartOffset != fn.StartOffset {
		t.Errorf("Bind() should preserve bytecode location")
	}
	if len(fn.Binds) != 0 {
		t.Errorf("Bind() should not mutate the receiver's own Binds")
	}
}
