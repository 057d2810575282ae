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
	"unicode/utf16"

	"github.com/siliconjungle/ValueScript/values"
)

// Sub implements the `sub` opcode's read-subscript semantics (spec
// §4.1): array/string indexing with length; object string_map lookup
// with prototype-chain walk; symbol lookup; bound builtin methods for
// primitives (delegated to the builtin method tables, see methods.go).
func Sub(container, key values.Value) (values.Value, error) {
	container = container.AsRead()
	key = key.AsRead()

	switch container.Kind() {
	case values.KindArray:
		return SubArray(container, key)
	case values.KindObject:
		return values.Retain(container.ObjectHandle().Get(key)), nil
	case values.KindString:
		return subString(container, key)
	case values.KindClass:
		if key.Kind() == values.KindString {
			return container.ClassHandle().Static.AsRead(), nil
		}
		return values.Undefined(), nil
	case values.KindNull, values.KindUndefined, values.KindVoid:
		return values.Value{}, throwType("Cannot read properties of " + container.TypeOf())
	case values.KindDynamic:
		if pa, ok := container.DynamicHandle().(values.PropertyAccess); ok {
			if v, found := pa.GetProperty(key); found {
				return v, nil
			}
		}
		return values.Undefined(), nil
	default:
		return BoundMethod(container, key)
	}
}

// SubMov implements the `submov` opcode's write-subscript semantics.
// Callers are responsible for the unique-handle-promotion dance
// (values.MakeMutArray/MakeMutObject) before calling SubMov and for
// writing the (possibly new) handle back to the register/path root;
// SubMov itself only performs the in-place write on an already-unique
// handle.
func SubMov(container, key, value values.Value) error {
	container = container.AsRead()
	key = key.AsRead()

	switch container.Kind() {
	case values.KindArray:
		container.ArrayHandle().Set(key, value)
		return nil
	case values.KindObject:
		container.ObjectHandle().Set(key, value)
		return nil
	default:
		return throwType("Cannot set properties of " + container.TypeOf())
	}
}

func subString(s values.Value, key values.Value) (values.Value, error) {
	if key.Kind() == values.KindString && key.Str() == "length" {
		// `.length` counts UTF-16 code units (spec §4.1), not Unicode code
		// points: astral-plane characters count as 2.
		return values.Number(float64(len(utf16.Encode([]rune(s.Str()))))), nil
	}
	if idx, ok := arrayKeyIndex(key); ok {
		runes := []rune(s.Str())
		if idx < 0 || idx >= len(runes) {
			return values.Undefined(), nil
		}
		return values.String(string(runes[idx])), nil
	}
	return BoundMethod(s, key)
}
