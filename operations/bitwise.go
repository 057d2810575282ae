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

// toInt32 implements the ToInt32 coercion bitwise operators use.
func toInt32(v values.Value) int32 {
	n := toNumber(v.AsRead())
	if n != n || n == 0 {
		return 0
	}
	return int32(int64(n))
}

func toUint32(v values.Value) uint32 { return uint32(toInt32(v)) }

func BitAnd(a, b values.Value) values.Value { return values.Number(float64(toInt32(a) & toInt32(b))) }
func BitOr(a, b values.Value) values.Value  { return values.Number(float64(toInt32(a) | toInt32(b))) }
func BitXor(a, b values.Value) values.Value { return values.Number(float64(toInt32(a) ^ toInt32(b))) }
func BitNot(a values.Value) values.Value    { return values.Number(float64(^toInt32(a))) }

func LeftShift(a, b values.Value) values.Value {
	return values.Number(float64(toInt32(a) << (toUint32(b) & 31)))
}

func RightShift(a, b values.Value) values.Value {
	return values.Number(float64(toInt32(a) >> (toUint32(b) & 31)))
}

func RightShiftUnsigned(a, b values.Value) values.Value {
	return values.Number(float64(toUint32(a) >> (toUint32(b) & 31)))
}
