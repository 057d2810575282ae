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

// decodeVarsizeUint reads a 7-bit-continuation unsigned integer
// (spec §4.3's varsize encoding for String/BigInt lengths) starting
// at pos, returning the value and the position just past it.
func decodeVarsizeUint(code []byte, pos int) (uint64, int) {
	var result uint64
	var shift uint
	for {
		b := code[pos]
		pos++
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
	}
	return result, pos
}

func encodeVarsizeUint(n uint64) []byte {
	var out []byte
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if n == 0 {
			break
		}
	}
	return out
}

// decodePos reads the 2-byte jump-target position encoding used for
// Jmp/JmpIf/SetCatch etc: low byte then high byte (byte + 256*byte),
// matching the original decoder's little-endian 16-bit position.
func decodePos(code []byte, pos int) (int, int) {
	lo := int(code[pos])
	hi := int(code[pos+1])
	return lo + 256*hi, pos + 2
}

func encodePos(target int) [2]byte {
	return [2]byte{byte(target & 0xff), byte((target >> 8) & 0xff)}
}
