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
	"encoding/binary"
	"fmt"
	"math"
	"math/big"

	lru "github.com/hashicorp/golang-lru"

	"github.com/siliconjungle/ValueScript/values"
)

// pointerCacheSize bounds the decoder's offset->Value cache (spec
// §4.3's "internal back-reference cache"). The original decoder used
// an unbounded map; this repo deliberately bounds it with an LRU
// (SPEC_FULL.md §3) since bytecode is immutable and a cache miss is
// always safe to recompute.
const pointerCacheSize = 4096

// Decoder performs lazy, linear decoding of a bytecode byte array.
// Code is never copied; Decoder only ever borrows the slice it was
// constructed with (spec §5: "Bytecode byte array ... immutable
// after load; shared by handle across frames").
type Decoder struct {
	Code  []byte
	cache *lru.Cache
}

// NewDecoder wraps code for decoding. code must not be mutated for
// the lifetime of the Decoder or anything decoded from it.
func NewDecoder(code []byte) *Decoder {
	cache, err := lru.New(pointerCacheSize)
	if err != nil {
		panic(err) // only fails for a non-positive size, which pointerCacheSize never is
	}
	return &Decoder{Code: code, cache: cache}
}

// PeekTag reads the type tag at pos without consuming it.
func (d *Decoder) PeekTag(pos int) Tag { return Tag(d.Code[pos]) }

// DecodeValue decodes one value starting at pos, returning the
// decoded value and the position immediately following it. registers
// supplies the current frame's register file for Register-tagged
// operands (a Register read through here observes Void as
// Undefined, per spec §3; when the operand carries TakeRegisterBit
// the register is cleared to Void after the read, otherwise the read
// value is retained).
func (d *Decoder) DecodeValue(pos int, registers []values.Value) (values.Value, int, error) {
	tag := Tag(d.Code[pos])
	pos++

	switch tag {
	case TagEnd:
		return values.Value{}, pos, fmt.Errorf("bytecode: cannot decode End as a value")
	case TagVoid:
		return values.Void(), pos, nil
	case TagUndefined:
		return values.Undefined(), pos, nil
	case TagNull:
		return values.Null(), pos, nil
	case TagFalse:
		return values.Bool(false), pos, nil
	case TagTrue:
		return values.Bool(true), pos, nil
	case TagSignedByte:
		b := int8(d.Code[pos])
		pos++
		return values.Number(float64(b)), pos, nil
	case TagNumber:
		bits := binary.LittleEndian.Uint64(d.Code[pos : pos+8])
		pos += 8
		return values.Number(math.Float64frombits(bits)), pos, nil
	case TagString:
		s, next := d.decodeString(pos)
		return values.String(s), next, nil
	case TagArray:
		elems, next, err := d.decodeValueSeq(pos, registers)
		if err != nil {
			return values.Value{}, pos, err
		}
		return values.Array(values.NewArray(elems)), next, nil
	case TagObject:
		obj, next, err := d.decodeObject(pos, registers)
		if err != nil {
			return values.Value{}, pos, err
		}
		return values.Object(obj), next, nil
	case TagFunction:
		return d.decodeFunction(pos, false)
	case TagGeneratorFunction:
		return d.decodeFunction(pos, true)
	case TagPointer:
		return d.decodePointer(pos, registers)
	case TagRegister:
		idx := d.Code[pos]
		pos++
		if idx == IgnoreRegister {
			return values.Value{}, pos, fmt.Errorf("bytecode: cannot read ignore register")
		}
		take := idx&TakeRegisterBit != 0
		realIdx := idx &^ TakeRegisterBit
		v := registers[realIdx].AsRead()
		if take {
			// Take-register read (spec §4.1, §8 "take register
			// liveness"): clears the register to Void after reading
			// so a statically last-use read never needs to clone the
			// value out from under a shared handle. The live
			// reference count through registers is unchanged (one
			// binding replaced another), so no retain.
			registers[realIdx] = values.Void()
		} else {
			// A non-destructive read hands the same container handle
			// to a second binding (spec §4.1's "shared by
			// reference-counted handle"): retain.
			v = values.Retain(v)
		}
		return v, pos, nil
	case TagBuiltin:
		idx, next := decodeVarsizeUint(d.Code, pos)
		return BuiltinByIndex(int(idx)), next, nil
	case TagClass:
		ctor, next, err := d.DecodeValue(pos, registers)
		if err != nil {
			return values.Value{}, pos, err
		}
		proto, next2, err := d.DecodeValue(next, registers)
		if err != nil {
			return values.Value{}, pos, err
		}
		return values.Class(values.NewClass(ctor, proto, values.Undefined())), next2, nil
	case TagBigInt:
		bi, next := d.decodeBigInt(pos)
		return values.BigInt(bi), next, nil
	default:
		return values.Value{}, pos, fmt.Errorf("bytecode: unrecognized type tag 0x%02x at %d", tag, pos-1)
	}
}

func (d *Decoder) decodeValueSeq(pos int, registers []values.Value) ([]values.Value, int, error) {
	var vals []values.Value
	for Tag(d.Code[pos]) != TagEnd {
		v, next, err := d.DecodeValue(pos, registers)
		if err != nil {
			return nil, pos, err
		}
		vals = append(vals, v)
		pos = next
	}
	return vals, pos + 1, nil
}

func (d *Decoder) decodeObject(pos int, registers []values.Value) (*values.VsObject, int, error) {
	obj := values.NewObject()
	for Tag(d.Code[pos]) != TagEnd {
		key, next, err := d.DecodeValue(pos, registers)
		if err != nil {
			return nil, pos, err
		}
		val, next2, err := d.DecodeValue(next, registers)
		if err != nil {
			return nil, pos, err
		}
		obj.Set(key, val)
		pos = next2
	}
	return obj, pos + 1, nil
}

func (d *Decoder) decodeString(pos int) (string, int) {
	length, next := decodeVarsizeUint(d.Code, pos)
	end := next + int(length)
	return string(d.Code[next:end]), end
}

func (d *Decoder) decodeBigInt(pos int) (*big.Int, int) {
	sign := d.Code[pos]
	pos++
	length, next := decodeVarsizeUint(d.Code, pos)
	end := next + int(length)
	bytesLE := d.Code[next:end]

	bytesBE := make([]byte, len(bytesLE))
	for i, b := range bytesLE {
		bytesBE[len(bytesLE)-1-i] = b
	}

	n := new(big.Int).SetBytes(bytesBE)
	if sign == 0 {
		n.Neg(n)
	}
	return n, end
}

// decodeFunction reads a function header (register_count,
// parameter_count) and leaves the body unscanned — execution (the vm
// package) walks the body, per spec §4.3 "the decoder does not scan
// the body".
func (d *Decoder) decodeFunction(pos int, isGenerator bool) (values.Value, int, error) {
	registerCount := d.Code[pos]
	pos++
	parameterCount := d.Code[pos]
	pos++
	fn := values.NewFunction(pos, isGenerator, registerCount, parameterCount, pos)
	return values.Function(fn), pos, nil
}

// decodePointer resolves a 2-byte absolute offset. Backward pointers
// (target < fromPos) are only legal when the target tag is
// Function/GeneratorFunction/Class (or unrecognized/opaque), per spec
// §4.3's infinite-recursion guard; decoded values are cached by
// offset so repeated dereferences of the same pointer are free.
func (d *Decoder) decodePointer(pos int, registers []values.Value) (values.Value, int, error) {
	fromPos := pos
	target, next := decodePos(d.Code, pos)

	if target < fromPos {
		targetTag := Tag(d.Code[target])
		if !isBackwardPointerSafe(targetTag) {
			return values.Value{}, next, fmt.Errorf("bytecode: invalid backward pointer to %s at %d", targetTag, target)
		}
	}

	if cached, ok := d.cache.Get(target); ok {
		return cached.(values.Value), next, nil
	}

	v, _, err := d.DecodeValue(target, registers)
	if err != nil {
		return values.Value{}, next, err
	}
	d.cache.Add(target, v)
	return v, next, nil
}

// DecodeRegisterOperand peeks at pos: if it is a Register-tagged
// operand, consumes it and returns its real (take-bit-masked) index,
// current value (retained/cleared exactly as DecodeValue's TagRegister
// case would), and isRegister=true; otherwise leaves pos untouched so
// the caller can fall back to DecodeValue for the general case. This
// lets vm's SubCall/Apply opcodes implement spec §9's "mutation
// writes back iff the instruction targeted a register" rule, which
// needs to know the operand WAS a register, not just its value.
func (d *Decoder) DecodeRegisterOperand(pos int, registers []values.Value) (idx int, value values.Value, isRegister bool, next int, err error) {
	if Tag(d.Code[pos]) != TagRegister {
		return 0, values.Value{}, false, pos, nil
	}
	v, n, err := d.DecodeValue(pos, registers)
	if err != nil {
		return 0, values.Value{}, false, pos, err
	}
	rawIdx := d.Code[pos+1]
	return int(rawIdx &^ TakeRegisterBit), v, true, n, nil
}

// DecodeInstructionOpcode reads the opcode byte at pos.
func (d *Decoder) DecodeInstructionOpcode(pos int) (Opcode, int) {
	return Opcode(d.Code[pos]), pos + 1
}

// DecodeRegisterIndex reads a 1-byte register operand; ok is false
// for the ignore register (0xff).
func (d *Decoder) DecodeRegisterIndex(pos int) (idx byte, ok bool, next int) {
	b := d.Code[pos]
	if b == IgnoreRegister {
		return 0, false, pos + 1
	}
	return b, true, pos + 1
}

// DecodePos reads a 2-byte jump target position.
func (d *Decoder) DecodePos(pos int) (int, int) { return decodePos(d.Code, pos) }
