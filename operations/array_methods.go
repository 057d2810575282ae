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

// ArrayMethodRef is what `sub(array, name)` produces for a recognized
// array method name (spec §4.4's ArrayMappingFrame bullet names
// map/filter/reduce/forEach/some/every/find/findIndex/flat/sort; this
// repo's SUPPLEMENTED FEATURES section adds the ordinary mutating
// methods alongside them). It carries the array handle directly
// rather than a bound closure so the vm package's SubCall can apply
// unique-handle promotion to the receiver, and write the promoted
// handle back to its register, BEFORE the method runs against Array
// in place (see execSubCall in vm/call.go).
type ArrayMethodRef struct {
	Name  string
	Array *values.VsArray
}

func (r *ArrayMethodRef) TypeOf() string { return "function" }
func (r *ArrayMethodRef) Codify() string { return "[Function: " + r.Name + "]" }

// higherOrderArrayMethods names the methods that must drive a
// ValueScript callback through the VM (handled by vm.ArrayMappingFrame,
// not here, since calling back into bytecode needs real frame
// stepping).
var higherOrderArrayMethods = map[string]bool{
	"map": true, "filter": true, "reduce": true, "forEach": true,
	"some": true, "every": true, "find": true, "findIndex": true,
	"sort": true,
}

// IsHigherOrderArrayMethod reports whether name needs a callback
// driver frame rather than completing synchronously.
func IsHigherOrderArrayMethod(name string) bool { return higherOrderArrayMethods[name] }

var simpleArrayMethods = map[string]func(a *values.VsArray, args []values.Value) (values.Value, error){
	"push": func(a *values.VsArray, args []values.Value) (values.Value, error) {
		for _, v := range args {
			a.Push(v)
		}
		return values.Number(float64(a.Len())), nil
	},
	"pop": func(a *values.VsArray, args []values.Value) (values.Value, error) {
		return a.Pop(), nil
	},
	"shift": func(a *values.VsArray, args []values.Value) (values.Value, error) {
		if a.Len() == 0 {
			return values.Undefined(), nil
		}
		first := a.Elements[0].AsRead()
		a.Elements = a.Elements[1:]
		return first, nil
	},
	"unshift": func(a *values.VsArray, args []values.Value) (values.Value, error) {
		a.Elements = append(append([]values.Value{}, args...), a.Elements...)
		return values.Number(float64(a.Len())), nil
	},
	"reverse": func(a *values.VsArray, args []values.Value) (values.Value, error) {
		for i, j := 0, len(a.Elements)-1; i < j; i, j = i+1, j-1 {
			a.Elements[i], a.Elements[j] = a.Elements[j], a.Elements[i]
		}
		return values.Array(a), nil
	},
	"slice": func(a *values.VsArray, args []values.Value) (values.Value, error) {
		start, end := sliceBounds(a.Len(), args)
		dup := make([]values.Value, end-start)
		copy(dup, a.Elements[start:end])
		return values.Array(values.NewArray(dup)), nil
	},
	"concat": func(a *values.VsArray, args []values.Value) (values.Value, error) {
		out := append([]values.Value{}, a.Elements...)
		for _, v := range args {
			v = v.AsRead()
			if v.Kind() == values.KindArray {
				out = append(out, v.ArrayHandle().Elements...)
			} else {
				out = append(out, v)
			}
		}
		return values.Array(values.NewArray(out)), nil
	},
	"join": func(a *values.VsArray, args []values.Value) (values.Value, error) {
		sep := ","
		if len(args) > 0 {
			sep = Stringify(args[0].AsRead())
		}
		var out string
		for i, v := range a.Elements {
			if i > 0 {
				out += sep
			}
			v = v.AsRead()
			if !v.IsNullish() {
				out += Stringify(v)
			}
		}
		return values.String(out), nil
	},
	"indexOf": func(a *values.VsArray, args []values.Value) (values.Value, error) {
		if len(args) == 0 {
			return values.Number(-1), nil
		}
		for i, v := range a.Elements {
			if StrictEquals(v.AsRead(), args[0].AsRead()) {
				return values.Number(float64(i)), nil
			}
		}
		return values.Number(-1), nil
	},
	"includes": func(a *values.VsArray, args []values.Value) (values.Value, error) {
		if len(args) == 0 {
			return values.Bool(false), nil
		}
		for _, v := range a.Elements {
			if StrictEquals(v.AsRead(), args[0].AsRead()) {
				return values.Bool(true), nil
			}
		}
		return values.Bool(false), nil
	},
	"flat": func(a *values.VsArray, args []values.Value) (values.Value, error) {
		depth := 1
		if len(args) > 0 {
			depth = int(argNum(args, 0))
		}
		return values.Array(values.NewArray(flatten(a.Elements, depth))), nil
	},
}

func flatten(elems []values.Value, depth int) []values.Value {
	var out []values.Value
	for _, v := range elems {
		rv := v.AsRead()
		if depth > 0 && rv.Kind() == values.KindArray {
			out = append(out, flatten(rv.ArrayHandle().Elements, depth-1)...)
		} else {
			out = append(out, rv)
		}
	}
	return out
}

// SubArray resolves `sub(arrayValue, key)` for the array-specific
// surface (method dispatch), falling back to plain indexing/.length
// via VsArray.Get for anything else.
func SubArray(container values.Value, key values.Value) (values.Value, error) {
	if key.Kind() == values.KindString {
		name := key.Str()
		if name != "length" {
			if IsHigherOrderArrayMethod(name) {
				return values.DynamicValue(&ArrayMethodRef{Name: name, Array: container.ArrayHandle()}), nil
			}
			if _, ok := simpleArrayMethods[name]; ok {
				return values.DynamicValue(&ArrayMethodRef{Name: name, Array: container.ArrayHandle()}), nil
			}
		}
	}
	return values.Retain(container.ArrayHandle().Get(key)), nil
}

// CallSimpleArrayMethod invokes a non-higher-order array method by
// name. Used by the vm package once it has promoted the receiver to a
// uniquely-held handle.
func CallSimpleArrayMethod(name string, a *values.VsArray, args []values.Value) (values.Value, error) {
	fn, ok := simpleArrayMethods[name]
	if !ok {
		return values.Value{}, throwType(name + " is not a function")
	}
	return fn(a, args)
}
