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
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Codify renders a Value the way a REPL or disassembler would print
// it, matching the ANSI-colored `[Function]`/`[Class]` convention the
// original native_function.rs display used for non-JSON-able values.
// Color is emitted unconditionally here; callers writing to a
// non-terminal stream should wrap color.NoColor = true beforehand
// (cmd/vsc does this based on isatty, see cmd/vsc/main.go).
func (v Value) Codify() string {
	switch v.kind {
	case KindVoid, KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.boolVal)
	case KindNumber:
		return formatNumber(v.numVal)
	case KindBigInt:
		return v.bigVal.String() + "n"
	case KindString:
		return strconv.Quote(v.strVal)
	case KindSymbol:
		return fmt.Sprintf("Symbol(%d)", v.symVal)
	case KindArray:
		parts := make([]string, len(v.arr.Elements))
		for i, e := range v.arr.Elements {
			parts[i] = e.Codify()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindObject:
		parts := make([]string, 0, len(v.obj.Keys))
		for _, k := range v.obj.Keys {
			parts = append(parts, k+": "+v.obj.StringMap[k].Codify())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindFunction:
		return color.CyanString("[Function]")
	case KindClass:
		return color.CyanString("[Class]")
	case KindStatic:
		return v.static.Value.Codify()
	case KindDynamic:
		return v.dyn.Codify()
	}
	return "undefined"
}

func formatNumber(n float64) string {
	if math.IsNaN(n) {
		return "NaN"
	}
	if math.IsInf(n, 1) {
		return "Infinity"
	}
	if math.IsInf(n, -1) {
		return "-Infinity"
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
