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

// Opcode is a single bytecode instruction's 1-byte discriminator
// (spec §6). Operand layout per opcode is fixed and documented with
// each constant; the assembler (package assembler) and the vm
// package's BytecodeFrame.Step agree on this table.
type Opcode byte

const (
	OpEnd                 Opcode = 0x00
	OpMov                 Opcode = 0x01
	OpInc                 Opcode = 0x02
	OpDec                 Opcode = 0x03
	OpPlus                Opcode = 0x04
	OpMinus               Opcode = 0x05
	OpMul                 Opcode = 0x06
	OpDiv                 Opcode = 0x07
	OpMod                 Opcode = 0x08
	OpExp                 Opcode = 0x09
	OpEq                  Opcode = 0x0a
	OpNe                  Opcode = 0x0b
	OpTripleEq            Opcode = 0x0c
	OpTripleNe            Opcode = 0x0d
	OpAnd                 Opcode = 0x0e
	OpOr                  Opcode = 0x0f
	OpNot                 Opcode = 0x10
	OpLess                Opcode = 0x11
	OpLessEq              Opcode = 0x12
	OpGreater             Opcode = 0x13
	OpGreaterEq           Opcode = 0x14
	OpNullishCoalesce     Opcode = 0x15
	OpOptionalChain       Opcode = 0x16
	OpBitAnd              Opcode = 0x17
	OpBitOr               Opcode = 0x18
	OpBitNot              Opcode = 0x19
	OpBitXor              Opcode = 0x1a
	OpLeftShift           Opcode = 0x1b
	OpRightShift          Opcode = 0x1c
	OpRightShiftUnsigned  Opcode = 0x1d
	OpTypeOf              Opcode = 0x1e
	OpInstanceOf          Opcode = 0x1f
	OpIn                  Opcode = 0x20
	OpCall                Opcode = 0x21
	OpApply               Opcode = 0x22
	OpConstApply          Opcode = 0x23
	OpBind                Opcode = 0x24
	OpSub                 Opcode = 0x25
	OpSubMov              Opcode = 0x26
	OpSubCall             Opcode = 0x27
	OpJmp                 Opcode = 0x28
	OpJmpIf               Opcode = 0x29
	OpJmpIfNot            Opcode = 0x2a
	OpUnaryPlus           Opcode = 0x2b
	OpUnaryMinus          Opcode = 0x2c
	OpNew                 Opcode = 0x2d
	OpThrow               Opcode = 0x2e
	OpImport              Opcode = 0x2f
	OpImportStar          Opcode = 0x30
	OpSetCatch            Opcode = 0x31
	OpUnsetCatch          Opcode = 0x32
	OpConstSubCall        Opcode = 0x33
	OpRequireMutableThis  Opcode = 0x34
	OpThisSubCall         Opcode = 0x35
	OpNext                Opcode = 0x36
	OpUnpackIterRes       Opcode = 0x37
	OpCat                 Opcode = 0x38
	OpYield               Opcode = 0x39
	OpYieldStar           Opcode = 0x3a
)

var opcodeNames = map[Opcode]string{
	OpEnd: "end", OpMov: "mov", OpInc: "op++", OpDec: "op--",
	OpPlus: "op+", OpMinus: "op-", OpMul: "op*", OpDiv: "op/", OpMod: "op%", OpExp: "op**",
	OpEq: "op==", OpNe: "op!=", OpTripleEq: "op===", OpTripleNe: "op!==",
	OpAnd: "op&&", OpOr: "op||", OpNot: "op!",
	OpLess: "op<", OpLessEq: "op<=", OpGreater: "op>", OpGreaterEq: "op>=",
	OpNullishCoalesce: "op??", OpOptionalChain: "op?.",
	OpBitAnd: "op&", OpBitOr: "op|", OpBitNot: "op~", OpBitXor: "op^",
	OpLeftShift: "op<<", OpRightShift: "op>>", OpRightShiftUnsigned: "op>>>",
	OpTypeOf: "typeof", OpInstanceOf: "instanceof", OpIn: "in",
	OpCall: "call", OpApply: "apply", OpConstApply: "constapply", OpBind: "bind",
	OpSub: "sub", OpSubMov: "submov", OpSubCall: "subcall",
	OpJmp: "jmp", OpJmpIf: "jmpif", OpJmpIfNot: "jmpifnot",
	OpUnaryPlus: "unaryplus", OpUnaryMinus: "unaryminus",
	OpNew: "new", OpThrow: "throw",
	OpImport: "import", OpImportStar: "importstar",
	OpSetCatch: "setcatch", OpUnsetCatch: "unsetcatch",
	OpConstSubCall: "constsubcall", OpRequireMutableThis: "requiremutablethis",
	OpThisSubCall: "thissubcall",
	OpNext: "next", OpUnpackIterRes: "unpackiterres",
	OpCat: "cat", OpYield: "yield", OpYieldStar: "yield*",
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return "unknown"
}
