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

package assembler

import (
	"math"
	"testing"

	fuzz "github.com/google/gofuzz"

	"github.com/siliconjungle/ValueScript/asm"
	"github.com/siliconjungle/ValueScript/bytecode"
	"github.com/siliconjungle/ValueScript/values"
)

// TestFuzzArrayLiteralRoundTrip feeds randomly generated string/number
// arrays through Assemble then bytecode.Decoder, checking the
// round-trip property spec §8 asks for: assembling then decoding a
// literal array must reproduce it exactly, element for element, no
// matter its random contents or length.
func TestFuzzArrayLiteralRoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(0, 12)

	for i := 0; i < 50; i++ {
		var strs []string
		var nums []float64
		f.Fuzz(&strs)
		f.Fuzz(&nums)

		var elements []asm.Value
		for _, s := range strs {
			elements = append(elements, asm.StringValue(s))
		}
		for _, n := range nums {
			if math.IsNaN(n) || math.IsInf(n, 0) {
				continue
			}
			elements = append(elements, asm.NumberValue(n))
		}

		mod := &asm.Module{Export: asm.ArrayValue{Elements: elements}}
		code, err := Assemble(mod)
		if err != nil {
			t.Fatalf("iteration %d: Assemble returned error: %v", i, err)
		}

		d := bytecode.NewDecoder(code)
		v, _, err := d.DecodeValue(0, nil)
		if err != nil {
			t.Fatalf("iteration %d: DecodeValue returned error: %v", i, err)
		}
		if v.Kind() != values.KindArray {
			t.Fatalf("iteration %d: decoded kind = %v, want array", i, v.Kind())
		}

		arr := v.ArrayHandle()
		if arr.Len() != len(elements) {
			t.Fatalf("iteration %d: decoded length = %d, want %d", i, arr.Len(), len(elements))
		}
		for idx, want := range elements {
			got := arr.Get(values.Number(float64(idx)))
			switch w := want.(type) {
			case asm.StringValue:
				if got.Kind() != values.KindString || got.Str() != string(w) {
					t.Errorf("iteration %d element %d: got %v, want string %q", i, idx, got.Codify(), w)
				}
			case asm.NumberValue:
				if got.Kind() != values.KindNumber || got.Number() != float64(w) {
					t.Errorf("iteration %d element %d: got %v, want number %v", i, idx, got.Codify(), w)
				}
			}
		}
	}
}
