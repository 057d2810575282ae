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

package bytecode

import (
	"math"
	"math/rand"

	"github.com/siliconjungle/ValueScript/operations"
	"github.com/siliconjungle/ValueScript/values"
)

func mathRandom() float64 { return rand.Float64() }

// Builtins are addressed by a varsize integer index into a static
// lookup table, resolved at decode time (spec §9 "Global state:
// there is none ... Builtins are addressed by integer index through
// a static lookup table"). The table lives here, rather than in the
// vm package, so the decoder can resolve a Builtin tag without
// importing vm (which itself imports bytecode).
var builtinTable = []func() values.Value{
	builtinDebug,
	builtinMath,
	builtinTypeError,
	builtinRangeError,
	builtinSyntaxError,
	builtinError,
	builtinGetIterator,
}

// builtinGetIterator resolves an iterable (array, string, or an
// already iterator-shaped object such as a Generator instance) to an
// iterator-protocol object (spec §9's "SymbolIterator" step of the
// yield* iterator-driver, generalized to ordinary for-of lowering
// too). The compiler calls this once per for-of/spread site; the
// resulting object's `.next` is then driven via the Next opcode.
func builtinGetIterator() values.Value {
	return values.Function(values.NewNativeFunction(func(this values.Value, args []values.Value) (values.Value, error) {
		if len(args) == 0 {
			return values.Undefined(), nil
		}
		return operations.MakeIterator(args[0])
	}))
}

// BuiltinByIndex resolves a decoded builtin index to its Value. An
// out-of-range index yields Undefined rather than panicking, since a
// corrupt bytecode stream should surface as a catchable runtime
// condition wherever possible (spec §7 distinguishes fatal
// invariant violations from ordinary runtime errors; an
// out-of-table builtin index is treated like the former would be
// caught by the verifier before it ever reaches here).
func BuiltinByIndex(idx int) values.Value {
	if idx < 0 || idx >= len(builtinTable) {
		return values.Undefined()
	}
	return builtinTable[idx]()
}

func builtinDebug() values.Value {
	obj := values.NewObject()
	obj.Set(values.String("name"), values.String("Debug"))
	return values.Object(obj)
}

func builtinMath() values.Value {
	obj := values.NewObject()
	obj.Set(values.String("PI"), values.Number(math.Pi))
	obj.Set(values.String("E"), values.Number(math.E))
	mathFn := func(name string, f func(args []values.Value) float64) {
		obj.Set(values.String(name), values.Function(values.NewNativeFunction(
			func(this values.Value, args []values.Value) (values.Value, error) {
				return values.Number(f(args)), nil
			},
		)))
	}
	arg := func(args []values.Value, i int) float64 {
		if i >= len(args) {
			return math.NaN()
		}
		return args[i].AsRead().Number()
	}
	mathFn("floor", func(a []values.Value) float64 { return math.Floor(arg(a, 0)) })
	mathFn("ceil", func(a []values.Value) float64 { return math.Ceil(arg(a, 0)) })
	mathFn("round", func(a []values.Value) float64 { return math.Round(arg(a, 0)) })
	mathFn("trunc", func(a []values.Value) float64 { return math.Trunc(arg(a, 0)) })
	mathFn("abs", func(a []values.Value) float64 { return math.Abs(arg(a, 0)) })
	mathFn("sqrt", func(a []values.Value) float64 { return math.Sqrt(arg(a, 0)) })
	mathFn("pow", func(a []values.Value) float64 { return math.Pow(arg(a, 0), arg(a, 1)) })
	mathFn("max", func(a []values.Value) float64 {
		m := math.Inf(-1)
		for i := range a {
			m = math.Max(m, arg(a, i))
		}
		return m
	})
	mathFn("min", func(a []values.Value) float64 {
		m := math.Inf(1)
		for i := range a {
			m = math.Min(m, arg(a, i))
		}
		return m
	})
	mathFn("random", func(a []values.Value) float64 { return mathRandom() })
	return values.Object(obj)
}

// errorClass builds a builtin error class whose constructor is a
// native function (spec §7: "each a class whose instances are
// ordinary objects with a .name and .message"). new Name(message)
// writes .message onto the new instance (whatever `this` the vm's New
// opcode created from instance_prototype) and leaves .name to resolve
// through the prototype chain.
func errorClass(name string) values.Value {
	proto := values.NewObject()
	proto.Set(values.String("name"), values.String(name))
	static := values.NewObject()
	static.Set(values.String("name"), values.String(name))
	ctor := values.NewNativeFunction(func(this values.Value, args []values.Value) (values.Value, error) {
		message := ""
		if len(args) > 0 {
			message = operations.Stringify(args[0].AsRead())
		}
		if this.Kind() == values.KindObject {
			this.ObjectHandle().Set(values.String("message"), values.String(message))
		}
		return this, nil
	})
	return values.Class(values.NewClass(values.Function(ctor), values.Object(proto), values.Object(static)))
}

func builtinTypeError() values.Value   { return errorClass("TypeError") }
func builtinRangeError() values.Value  { return errorClass("RangeError") }
func builtinSyntaxError() values.Value { return errorClass("SyntaxError") }
func builtinError() values.Value       { return errorClass("Error") }
