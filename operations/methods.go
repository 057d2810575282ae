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
	"strconv"
	"strings"

	"github.com/siliconjungle/ValueScript/values"
)

// NativeFn is the shape a bound builtin method takes: it receives the
// original receiver (`this`) and the call arguments, and returns a
// result or a thrown error. The vm package's invoke calls these
// synchronously, without pushing a frame.
type NativeFn func(this values.Value, args []values.Value) (values.Value, error)

// boundMethod packages a NativeFn as a values.Dynamic so it can be
// passed around as an ordinary Value and later invoked through the
// same Call machinery as any other function (spec §4.1 "Reading a
// method name from a primitive produces a bound builtin method
// value").
type boundMethod struct {
	name string
	fn   NativeFn
	this values.Value
}

func (b *boundMethod) TypeOf() string { return "function" }
func (b *boundMethod) Codify() string { return "[Function: " + b.name + "]" }

// Invoke calls the wrapped native function with its bound receiver.
func (b *boundMethod) Invoke(args []values.Value) (values.Value, error) {
	return b.fn(b.this, args)
}

// AsBoundMethod extracts the boundMethod behind a Dynamic value, if
// any, for the vm package's Call opcode to special-case.
func AsBoundMethod(v values.Value) (interface {
	Invoke([]values.Value) (values.Value, error)
}, bool) {
	if v.Kind() != values.KindDynamic {
		return nil, false
	}
	bm, ok := v.DynamicHandle().(*boundMethod)
	return bm, ok
}

// stringMethods and numberMethods are the builtin-method tables
// (spec.md §4.1, supplemented from original_source's
// string_builtin.rs/number_builtin.rs/string_methods.rs/
// number_methods.rs — table-driven dispatch in the same spirit as
// the teacher's opcodeTable).
var stringMethods = map[string]func(s string, args []values.Value) (values.Value, error){
	"indexOf": func(s string, args []values.Value) (values.Value, error) {
		return values.Number(float64(strings.Index(s, argStr(args, 0)))), nil
	},
	"lastIndexOf": func(s string, args []values.Value) (values.Value, error) {
		return values.Number(float64(strings.LastIndex(s, argStr(args, 0)))), nil
	},
	"slice": func(s string, args []values.Value) (values.Value, error) {
		runes := []rune(s)
		start, end := sliceBounds(len(runes), args)
		return values.String(string(runes[start:end])), nil
	},
	"toUpperCase": func(s string, args []values.Value) (values.Value, error) {
		return values.String(strings.ToUpper(s)), nil
	},
	"toLowerCase": func(s string, args []values.Value) (values.Value, error) {
		return values.String(strings.ToLower(s)), nil
	},
	"trim": func(s string, args []values.Value) (values.Value, error) {
		return values.String(strings.TrimSpace(s)), nil
	},
	"split": func(s string, args []values.Value) (values.Value, error) {
		sep := argStr(args, 0)
		var parts []string
		if sep == "" {
			for _, r := range s {
				parts = append(parts, string(r))
			}
		} else {
			parts = strings.Split(s, sep)
		}
		elems := make([]values.Value, len(parts))
		for i, p := range parts {
			elems[i] = values.String(p)
		}
		return values.Array(values.NewArray(elems)), nil
	},
	"includes": func(s string, args []values.Value) (values.Value, error) {
		return values.Bool(strings.Contains(s, argStr(args, 0))), nil
	},
	"repeat": func(s string, args []values.Value) (values.Value, error) {
		n := int(argNum(args, 0))
		if n < 0 {
			return values.Value{}, throwType("Invalid count value")
		}
		return values.String(strings.Repeat(s, n)), nil
	},
	"charAt": func(s string, args []values.Value) (values.Value, error) {
		runes := []rune(s)
		i := int(argNum(args, 0))
		if i < 0 || i >= len(runes) {
			return values.String(""), nil
		}
		return values.String(string(runes[i])), nil
	},
}

var numberMethods = map[string]func(n float64, args []values.Value) (values.Value, error){
	"toFixed": func(n float64, args []values.Value) (values.Value, error) {
		digits := 0
		if len(args) > 0 {
			digits = int(args[0].AsRead().Number())
		}
		return values.String(strconv.FormatFloat(n, 'f', digits, 64)), nil
	},
	"toString": func(n float64, args []values.Value) (values.Value, error) {
		base := 10
		if len(args) > 0 {
			base = int(args[0].AsRead().Number())
		}
		if base == 10 {
			return values.String(strconv.FormatFloat(n, 'g', -1, 64)), nil
		}
		return values.String(strconv.FormatInt(int64(n), base)), nil
	},
	"toPrecision": func(n float64, args []values.Value) (values.Value, error) {
		prec := 6
		if len(args) > 0 {
			prec = int(args[0].AsRead().Number())
		}
		return values.String(strconv.FormatFloat(n, 'g', prec, 64)), nil
	},
}

// BoundMethod resolves `str.method` / `num.method` accesses into a
// boundMethod Dynamic value, or Undefined if no such method exists.
func BoundMethod(receiver, key values.Value) (values.Value, error) {
	if key.Kind() != values.KindString {
		return values.Undefined(), nil
	}
	name := key.Str()

	switch receiver.Kind() {
	case values.KindString:
		fn, ok := stringMethods[name]
		if !ok {
			return values.Undefined(), nil
		}
		s := receiver.Str()
		return values.DynamicValue(&boundMethod{
			name: name,
			this: receiver,
			fn: func(_ values.Value, args []values.Value) (values.Value, error) {
				return fn(s, args)
			},
		}), nil
	case values.KindNumber:
		fn, ok := numberMethods[name]
		if !ok {
			return values.Undefined(), nil
		}
		n := receiver.Number()
		return values.DynamicValue(&boundMethod{
			name: name,
			this: receiver,
			fn: func(_ values.Value, args []values.Value) (values.Value, error) {
				return fn(n, args)
			},
		}), nil
	default:
		return values.Undefined(), nil
	}
}

func argStr(args []values.Value, i int) string {
	if i >= len(args) {
		return ""
	}
	return Stringify(args[i].AsRead())
}

func argNum(args []values.Value, i int) float64 {
	if i >= len(args) {
		return 0
	}
	return toNumber(args[i])
}

func sliceBounds(length int, args []values.Value) (int, int) {
	start, end := 0, length
	if len(args) > 0 {
		start = clampIndex(int(argNum(args, 0)), length)
	}
	if len(args) > 1 {
		end = clampIndex(int(argNum(args, 1)), length)
	}
	if end < start {
		end = start
	}
	return start, end
}

func clampIndex(i, length int) int {
	if i < 0 {
		i += length
	}
	if i < 0 {
		return 0
	}
	if i > length {
		return length
	}
	return i
}
