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

// This file implements the unique-handle promotion discipline of
// spec §4.1/§5/§9: a mutation is only permitted in place when the
// handle being mutated is uniquely held (refcount 1); otherwise the
// container is cloned first, and callers are responsible for
// propagating the cloned handle back along the access path so the
// original observer's Value is left untouched.
//
// Refcounts here are plain ints, not atomics: spec §5 is explicit that
// the VM is single-threaded and cooperative, so there is never
// concurrent access to a handle's refcount.

// Retain increments a value's handle refcount when it is duplicated
// into a second Value (e.g. `let b = a`). Primitives are no-ops.
func Retain(v Value) Value {
	switch v.kind {
	case KindArray:
		v.arr.refs++
	case KindObject:
		v.obj.refs++
	case KindFunction:
		v.fn.refs++
	case KindClass:
		v.cls.refs++
	}
	return v
}

// Release decrements a value's handle refcount when a binding holding
// it goes out of scope or is overwritten. ValueScript never needs to
// free the underlying storage deterministically (Go's GC reclaims it
// once unreachable); Release exists purely to keep refcounts accurate
// for MakeMut's uniqueness test.
func Release(v Value) {
	switch v.kind {
	case KindArray:
		if v.arr.refs > 0 {
			v.arr.refs--
		}
	case KindObject:
		if v.obj.refs > 0 {
			v.obj.refs--
		}
	case KindFunction:
		if v.fn.refs > 0 {
			v.fn.refs--
		}
	case KindClass:
		if v.cls.refs > 0 {
			v.cls.refs--
		}
	}
}

// MakeMutArray returns a handle to v's array that is safe to mutate
// in place: v itself if uniquely held, otherwise a cloned, uniquely
// owned copy. The caller MUST store the returned Value back wherever
// v came from (register, sub-path root, etc) so the rest of the
// program observes the new handle, not the old one.
func MakeMutArray(v Value) Value {
	if v.kind != KindArray {
		return v
	}
	if v.arr.refs <= 1 {
		return v
	}
	v.arr.refs--
	return Array(v.arr.clone())
}

// MakeMutObject is MakeMutArray's counterpart for Object values.
func MakeMutObject(v Value) Value {
	if v.kind != KindObject {
		return v
	}
	if v.obj.refs <= 1 {
		return v
	}
	v.obj.refs--
	return Object(v.obj.clone())
}

// IsUniquelyHeld reports whether v's container handle has refcount 1
// (or v is a primitive, trivially "unique"). Used by take-register
// liveness bookkeeping and tests of spec §8's copy-semantics property.
func IsUniquelyHeld(v Value) bool {
	switch v.kind {
	case KindArray:
		return v.arr.refs <= 1
	case KindObject:
		return v.obj.refs <= 1
	case KindFunction:
		return v.fn.refs <= 1
	case KindClass:
		return v.cls.refs <= 1
	default:
		return true
	}
}

// DeepClone recursively clones a container value and everything it
// reaches, severing all sharing. Used where a full independent copy
// is required outright rather than via the lazy uniqueness check
// (e.g. spread into a brand new array/object literal).
func DeepClone(v Value) Value {
	switch v.kind {
	case KindArray:
		dup := make([]Value, len(v.arr.Elements))
		for i, e := range v.arr.Elements {
			dup[i] = DeepClone(e)
		}
		return Array(NewArray(dup))
	case KindObject:
		dup := NewObject()
		for _, k := range v.obj.Keys {
			dup.Set(String(k), DeepClone(v.obj.StringMap[k]))
		}
		for sym, val := range v.obj.SymbolMap {
			dup.Set(Sym(sym), DeepClone(val))
		}
		dup.Prototype = v.obj.Prototype
		return Object(dup)
	default:
		return v
	}
}
