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

// Package bytecode implements the lazy bytecode decoder: value type
// tags, instruction opcodes, varsize integers, and pointer resolution
// with the backward-reference safety rule (spec §4.3, §6).
package bytecode

// Tag is the 1-byte value type tag prefixing every encoded value.
type Tag byte

const (
	TagEnd              Tag = 0x00
	TagVoid             Tag = 0x01
	TagUndefined        Tag = 0x02
	TagNull             Tag = 0x03
	TagFalse            Tag = 0x04
	TagTrue             Tag = 0x05
	TagSignedByte       Tag = 0x06
	TagNumber           Tag = 0x07
	TagString           Tag = 0x08
	TagArray            Tag = 0x09
	TagObject           Tag = 0x0a
	TagFunction         Tag = 0x0b
	TagPointer          Tag = 0x0d
	TagRegister         Tag = 0x0e
	TagBuiltin          Tag = 0x10
	TagClass            Tag = 0x11
	TagBigInt           Tag = 0x13
	TagGeneratorFunction Tag = 0x14
)

// IgnoreRegister is the write-only sink register index (spec §3).
const IgnoreRegister byte = 0xff

// TakeRegisterBit marks a Register operand (in an instruction's Args,
// i.e. a read position) as a take-read: `%!r` in asm text (spec §6,
// Glossary "Take register"). The VM clears the register to Void
// immediately after such a read (spec §8's testable "after a %!r read,
// r holds Void"). It is only meaningful on a read; Targets (write
// positions) never set it. This bit is disjoint from IgnoreRegister's
// value space because the ignore check happens before the bit is
// masked off — 0xff is reserved and never a valid real register index.
const TakeRegisterBit byte = 0x80

func (t Tag) String() string {
	switch t {
	case TagEnd:
		return "End"
	case TagVoid:
		return "Void"
	case TagUndefined:
		return "Undefined"
	case TagNull:
		return "Null"
	case TagFalse:
		return "False"
	case TagTrue:
		return "True"
	case TagSignedByte:
		return "SignedByte"
	case TagNumber:
		return "Number"
	case TagString:
		return "String"
	case TagArray:
		return "Array"
	case TagObject:
		return "Object"
	case TagFunction:
		return "Function"
	case TagPointer:
		return "Pointer"
	case TagRegister:
		return "Register"
	case TagBuiltin:
		return "Builtin"
	case TagClass:
		return "Class"
	case TagBigInt:
		return "BigInt"
	case TagGeneratorFunction:
		return "GeneratorFunction"
	default:
		return "Unrecognized"
	}
}

// isBackwardPointerSafe reports whether a value of the given tag may
// legally be the target of a backward pointer (spec §4.3's
// infinite-recursion guard): only Function, GeneratorFunction, Class,
// or an unrecognized/opaque tag are allowed, since those never
// require decoding their own predecessors to finish decoding.
func isBackwardPointerSafe(t Tag) bool {
	switch t {
	case TagFunction, TagGeneratorFunction, TagClass:
		return true
	default:
		return !knownTag(t)
	}
}

func knownTag(t Tag) bool {
	switch t {
	case TagEnd, TagVoid, TagUndefined, TagNull, TagFalse, TagTrue,
		TagSignedByte, TagNumber, TagString, TagArray, TagObject,
		TagFunction, TagPointer, TagRegister, TagBuiltin, TagClass,
		TagBigInt, TagGeneratorFunction:
		return true
	default:
		return false
	}
}
