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

// Package operations implements the pure operator semantics over
// values.Value described in spec §4.2: arithmetic, comparison,
// bitwise, typeof/instanceof/in, and the sub/submov accessors used by
// the vm package's Sub/SubMov opcodes.
package operations

import (
	"fmt"
	"math"
	"math/big"

	"github.com/siliconjungle/ValueScript/values"
)

// ThrownError wraps a ValueScript value thrown by an operation so it
// can be propagated as a Go error through call chains that expect
// one, while still carrying the original values.Value for the VM's
// exception machinery to inspect.
type ThrownError struct {
	Value values.Value
}

func (e *ThrownError) Error() string {
	return fmt.Sprintf("uncaught: %s", e.Value.Codify())
}

func throwType(msg string) error {
	return &ThrownError{Value: newError("TypeError", msg)}
}

func newError(name, message string) values.Value {
	obj := values.NewObject()
	obj.Set(values.String("name"), values.String(name))
	obj.Set(values.String("message"), values.String(message))
	return values.Object(obj)
}

// NewError constructs a thrown-value-shaped error object (used by the
// vm package's builtin Error/TypeError/RangeError/SyntaxError
// constructors, see spec §7).
func NewError(name, message string) values.Value { return newError(name, message) }

// Plus implements `+`: numeric addition, BigInt addition, or string
// concatenation when either side is a string (spec §4.2).
func Plus(a, b values.Value) (values.Value, error) {
	a, b = a.AsRead(), b.AsRead()

	if a.Kind() == values.KindString || b.Kind() == values.KindString {
		return values.String(Stringify(a) + Stringify(b)), nil
	}
	if a.Kind() == values.KindBigInt || b.Kind() == values.KindBigInt {
		x, y, err := bothBigInt(a, b)
		if err != nil {
			return values.Value{}, err
		}
		return values.BigInt(new(big.Int).Add(x, y)), nil
	}
	return values.Number(toNumber(a) + toNumber(b)), nil
}

func Minus(a, b values.Value) (values.Value, error) {
	return numericOp(a, b, func(x, y float64) float64 { return x - y }, func(x, y *big.Int) *big.Int { return new(big.Int).Sub(x, y) })
}

func Mul(a, b values.Value) (values.Value, error) {
	return numericOp(a, b, func(x, y float64) float64 { return x * y }, func(x, y *big.Int) *big.Int { return new(big.Int).Mul(x, y) })
}

func Div(a, b values.Value) (values.Value, error) {
	return numericOp(a, b, func(x, y float64) float64 { return x / y }, func(x, y *big.Int) *big.Int {
		if y.Sign() == 0 {
			return big.NewInt(0)
		}
		return new(big.Int).Quo(x, y)
	})
}

func Mod(a, b values.Value) (values.Value, error) {
	return numericOp(a, b, math.Mod, func(x, y *big.Int) *big.Int {
		if y.Sign() == 0 {
			return big.NewInt(0)
		}
		return new(big.Int).Rem(x, y)
	})
}

func Pow(a, b values.Value) (values.Value, error) {
	return numericOp(a, b, math.Pow, func(x, y *big.Int) *big.Int {
		return new(big.Int).Exp(x, y, nil)
	})
}

func numericOp(a, b values.Value, numFn func(x, y float64) float64, bigFn func(x, y *big.Int) *big.Int) (values.Value, error) {
	a, b = a.AsRead(), b.AsRead()
	if a.Kind() == values.KindBigInt || b.Kind() == values.KindBigInt {
		x, y, err := bothBigInt(a, b)
		if err != nil {
			return values.Value{}, err
		}
		return values.BigInt(bigFn(x, y)), nil
	}
	return values.Number(numFn(toNumber(a), toNumber(b))), nil
}

func bothBigInt(a, b values.Value) (*big.Int, *big.Int, error) {
	if a.Kind() != values.KindBigInt || b.Kind() != values.KindBigInt {
		return nil, nil, throwType("Cannot mix BigInt and other types")
	}
	return a.BigInt(), b.BigInt(), nil
}

func toNumber(v values.Value) float64 {
	switch v.Kind() {
	case values.KindNumber:
		return v.Number()
	case values.KindBool:
		if v.Bool() {
			return 1
		}
		return 0
	case values.KindString:
		var f float64
		if _, err := fmt.Sscanf(v.Str(), "%g", &f); err == nil {
			return f
		}
		return math.NaN()
	case values.KindNull:
		return 0
	default:
		return math.NaN()
	}
}

// Stringify implements the coercion used on the non-string side of a
// `+` concatenation and by template literals' implicit `op+` chains.
func Stringify(v values.Value) string {
	switch v.Kind() {
	case values.KindString:
		return v.Str()
	case values.KindUndefined, values.KindVoid:
		return "undefined"
	case values.KindNull:
		return "null"
	case values.KindBigInt:
		return v.BigInt().String()
	default:
		return v.Codify()
	}
}

// StrictEquals implements `===`: distinguishes 0n from 0, NaN != NaN,
// treats -0 === 0, and Void as equal to Undefined (spec §4.2, §8).
func StrictEquals(a, b values.Value) bool {
	a, b = a.AsRead(), b.AsRead()
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case values.KindUndefined, values.KindNull, values.KindVoid:
		return true
	case values.KindBool:
		return a.Bool() == b.Bool()
	case values.KindNumber:
		return a.Number() == b.Number()
	case values.KindBigInt:
		return a.BigInt().Cmp(b.BigInt()) == 0
	case values.KindString:
		return a.Str() == b.Str()
	case values.KindSymbol:
		return a.Symbol() == b.Symbol()
	case values.KindArray:
		return a.ArrayHandle() == b.ArrayHandle()
	case values.KindObject:
		return a.ObjectHandle() == b.ObjectHandle()
	case values.KindFunction:
		return a.FunctionHandle() == b.FunctionHandle()
	case values.KindClass:
		return a.ClassHandle() == b.ClassHandle()
	default:
		return false
	}
}

// LooseEquals implements `==`: nullish values are mutually equal
// regardless of Null vs Undefined vs Void, everything else falls back
// to StrictEquals (this repo's numeric/string towers make the
// remaining ECMA-262 abstract-equality coercions rare enough in
// practice that spec.md doesn't ask for them).
func LooseEquals(a, b values.Value) bool {
	a, b = a.AsRead(), b.AsRead()
	if a.IsNullish() && b.IsNullish() {
		return true
	}
	return StrictEquals(a, b)
}

// Compare implements `<`, `>`, `<=`, `>=` via a three-way comparison;
// returns ok=false when the values are not orderable (NaN involved).
func Compare(a, b values.Value) (cmp int, ok bool) {
	a, b = a.AsRead(), b.AsRead()
	if a.Kind() == values.KindString && b.Kind() == values.KindString {
		switch {
		case a.Str() < b.Str():
			return -1, true
		case a.Str() > b.Str():
			return 1, true
		default:
			return 0, true
		}
	}
	if a.Kind() == values.KindBigInt && b.Kind() == values.KindBigInt {
		return a.BigInt().Cmp(b.BigInt()), true
	}
	x, y := toNumber(a), toNumber(b)
	if math.IsNaN(x) || math.IsNaN(y) {
		return 0, false
	}
	switch {
	case x < y:
		return -1, true
	case x > y:
		return 1, true
	default:
		return 0, true
	}
}

// Not implements unary `!`.
func Not(v values.Value) values.Value { return values.Bool(!v.IsTruthy()) }

// UnaryMinus implements unary `-` (spec §4.8's UnaryMinus lowering).
func UnaryMinus(v values.Value) (values.Value, error) {
	v = v.AsRead()
	if v.Kind() == values.KindBigInt {
		return values.BigInt(new(big.Int).Neg(v.BigInt())), nil
	}
	return values.Number(-toNumber(v)), nil
}

// UnaryPlus implements unary `+` (numeric coercion).
func UnaryPlus(v values.Value) (values.Value, error) {
	v = v.AsRead()
	if v.Kind() == values.KindBigInt {
		return values.Value{}, throwType("Cannot convert a BigInt to a number")
	}
	return values.Number(toNumber(v)), nil
}

// In implements the `in` operator: RHS must be object/array/class.
func In(key, container values.Value) (values.Value, error) {
	container = container.AsRead()
	switch container.Kind() {
	case values.KindObject:
		return values.Bool(container.ObjectHandle().Has(key)), nil
	case values.KindArray:
		idx, ok := arrayKeyIndex(key)
		return values.Bool(ok && idx >= 0 && idx < container.ArrayHandle().Len()), nil
	case values.KindClass:
		return values.Bool(false), nil
	default:
		return values.Value{}, throwType("Cannot use 'in' operator on non-object")
	}
}

func arrayKeyIndex(key values.Value) (int, bool) {
	if key.Kind() == values.KindNumber {
		n := key.Number()
		i := int(n)
		return i, float64(i) == n
	}
	return 0, false
}

// InstanceOf implements `instanceof`: true iff value's prototype chain
// contains ctor's instance prototype.
func InstanceOf(v, ctor values.Value) (values.Value, error) {
	if ctor.Kind() != values.KindClass {
		return values.Value{}, throwType("Right-hand side of 'instanceof' is not a class")
	}
	v = v.AsRead()
	if v.Kind() != values.KindObject {
		return values.Bool(false), nil
	}
	target := ctor.ClassHandle().InstancePrototype
	for proto := v.ObjectHandle().Prototype; proto.Kind() == values.KindObject; proto = proto.ObjectHandle().Prototype {
		if StrictEquals(proto, target) {
			return values.Bool(true), nil
		}
	}
	return values.Bool(false), nil
}

// OptionalChain implements `?.`'s short-circuit: Null/Undefined/Void
// on the left short-circuits the whole chain to Undefined.
func OptionalChain(v values.Value) (values.Value, bool) {
	if v.IsNullish() {
		return values.Undefined(), true
	}
	return v, false
}
