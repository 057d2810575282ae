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

import "github.com/siliconjungle/ValueScript/values"

// MakeIterator produces an iterator-protocol object (spec §9's
// SymbolIterator/next/unpack_iter_res trio) for an iterable value: a
// plain Object carrying a native `.next` method, so the vm package's
// Next/Cat/YieldStar opcodes, and Generator instances (which build
// their own iterator object the same way), all speak one shape
// without needing a dedicated Dynamic capability.
func MakeIterator(v values.Value) (values.Value, error) {
	v = v.AsRead()
	switch v.Kind() {
	case values.KindArray:
		arr := v.ArrayHandle()
		idx := 0
		return nativeIteratorObject(func() (values.Value, bool) {
			if idx >= arr.Len() {
				return values.Undefined(), true
			}
			el := arr.Elements[idx].AsRead()
			idx++
			return el, false
		}), nil
	case values.KindString:
		runes := []rune(v.Str())
		idx := 0
		return nativeIteratorObject(func() (values.Value, bool) {
			if idx >= len(runes) {
				return values.Undefined(), true
			}
			r := runes[idx]
			idx++
			return values.String(string(r)), false
		}), nil
	case values.KindObject:
		// Already iterator-shaped (has its own `.next`), e.g. a
		// Generator's instance object, or the output of a prior
		// MakeIterator call passed straight through.
		if _, ok := v.ObjectHandle().StringMap["next"]; ok {
			return v, nil
		}
	}
	return values.Value{}, throwType(v.TypeOf() + " is not iterable")
}

func nativeIteratorObject(next func() (values.Value, bool)) values.Value {
	obj := values.NewObject()
	obj.Set(values.String("next"), values.Function(values.NewNativeFunction(
		func(this values.Value, args []values.Value) (values.Value, error) {
			val, done := next()
			return iterResult(val, done), nil
		},
	)))
	return values.Object(obj)
}

func iterResult(val values.Value, done bool) values.Value {
	res := values.NewObject()
	res.Set(values.String("value"), val)
	res.Set(values.String("done"), values.Bool(done))
	return values.Object(res)
}

// CallNextRaw invokes an iterator object's `.next` method and returns
// the raw {value, done} result object. This is what the `next`
// opcode hands to a register, for a later `unpackiterres` to split
// (spec §6's Next/UnpackIterRes pair).
func CallNextRaw(iter values.Value) (values.Value, error) {
	iter = iter.AsRead()
	nextFn, err := Sub(iter, values.String("next"))
	if err != nil {
		return values.Value{}, err
	}
	nextFn = nextFn.AsRead()
	if nextFn.Kind() != values.KindFunction || nextFn.FunctionHandle().Native == nil {
		return values.Value{}, throwType("iterator's next is not callable")
	}
	return nextFn.FunctionHandle().Native(iter, nil)
}

// CallNext is CallNextRaw plus the unwrap UnpackIterRes would
// otherwise perform, for internal drivers (Cat, yield*) that only
// ever want the scalar value/done pair.
func CallNext(iter values.Value) (values.Value, bool, error) {
	result, err := CallNextRaw(iter)
	if err != nil {
		return values.Value{}, true, err
	}
	result = result.AsRead()
	if result.Kind() != values.KindObject {
		return values.Value{}, true, throwType("iterator result is not an object")
	}
	done := result.ObjectHandle().Get(values.String("done")).IsTruthy()
	val := result.ObjectHandle().Get(values.String("value"))
	return val, done, nil
}
