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

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"
)

// TestCodifyPrimitives uses testify's require for its terser
// table-driven assertions, the way the teacher's own rare testify
// consumer does — most tests in this repo stick to plain testing
// (see DESIGN.md's "Test style decision"), but Codify's fan-out of
// cases reads more cleanly with require.Equal's diff output.
func TestCodifyPrimitives(t *testing.T) {
	color.NoColor = true

	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"undefined", Undefined(), "undefined"},
		{"null", Null(), "null"},
		{"bool", Bool(true), "true"},
		{"number", Number(3.5), "3.5"},
		{"nan", Number(nanValue()), "NaN"},
		{"string", String("hi"), `"hi"`},
	}

	for _, c := range cases {
		require.Equal(t, c.want, c.v.Codify(), "case %s", c.name)
	}
}

func TestCodifyArrayAndObject(t *testing.T) {
	color.NoColor = true

	arr := Array(NewArray([]Value{Number(1), String("a")}))
	require.Equal(t, `[1, "a"]`, arr.Codify())

	obj := NewObject()
	obj.Set(String("k"), Number(2))
	require.Equal(t, `{k: 2}`, Object(obj).Codify())
}

func TestCodifyFunctionAndClassAreBracketed(t *testing.T) {
	color.NoColor = true
	require.Contains(t, Function(NewNativeFunction(func(Value, []Value) (Value, error) {
		return Undefined(), nil
	})).Codify(), "[Function]")
	require.Contains(t, Class(NewClass(Undefined(), Undefined(), Undefined())).Codify(), "[Class]")
}

func nanValue() float64 {
	var zero float64
	return zero / zero
}
