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

package asm

import "github.com/siliconjungle/ValueScript/bytecode"

// This file is the single source of truth for each opcode's operand
// shape (how many Args/Labels/Targets it carries and in what order).
// The compiler package builds instructions exclusively through these
// helpers; the vm package's BytecodeFrame.Step decodes each opcode
// expecting exactly this shape. Keeping both sides pinned to one
// constructor set is what makes the assembler's generic
// Args-then-Labels-then-Targets serialization (see package
// assembler's doc comment) safe without a opcode-indexed arity table
// duplicated in three places.

func End() Instruction { return Inst(bytecode.OpEnd, nil, nil, nil) }

func Mov(src Value, dst Register) Instruction {
	return Inst(bytecode.OpMov, []Value{src}, []Register{dst}, nil)
}

func IncDec(op bytecode.Opcode, reg Register) Instruction {
	return Inst(op, nil, []Register{reg}, nil)
}

func BinOp(op bytecode.Opcode, a, b Value, dst Register) Instruction {
	return Inst(op, []Value{a, b}, []Register{dst}, nil)
}

func UnaryOp(op bytecode.Opcode, a Value, dst Register) Instruction {
	return Inst(op, []Value{a}, []Register{dst}, nil)
}

func Call(fn, args Value, dst Register) Instruction {
	return Inst(bytecode.OpCall, []Value{fn, args}, []Register{dst}, nil)
}

func Apply(op bytecode.Opcode, fn, this, args Value, dst Register) Instruction {
	return Inst(op, []Value{fn, this, args}, []Register{dst}, nil)
}

func Bind(fn, captured Value, dst Register) Instruction {
	return Inst(bytecode.OpBind, []Value{fn, captured}, []Register{dst}, nil)
}

func Sub(container, key Value, dst Register) Instruction {
	return Inst(bytecode.OpSub, []Value{container, key}, []Register{dst}, nil)
}

// SubMov writes container[key] = value in place. containerReg is both
// read (to find the handle to mutate or clone) and written back (the
// post-unique-promotion handle), so it appears as a Target even
// though semantically it is read-modify-write.
func SubMov(containerReg Register, key, value Value) Instruction {
	return Inst(bytecode.OpSubMov, []Value{key, value}, []Register{containerReg}, nil)
}

func SubCall(op bytecode.Opcode, obj, key, args Value, dst Register) Instruction {
	return Inst(op, []Value{obj, key, args}, []Register{dst}, nil)
}

func Jmp(label string) Instruction {
	return Inst(bytecode.OpJmp, nil, nil, []LabelRef{{Name: label}})
}

func JmpCond(op bytecode.Opcode, cond Value, label string) Instruction {
	return Inst(op, []Value{cond}, nil, []LabelRef{{Name: label}})
}

func New(ctor, args Value, dst Register) Instruction {
	return Inst(bytecode.OpNew, []Value{ctor, args}, []Register{dst}, nil)
}

func Throw(val Value) Instruction { return Inst(bytecode.OpThrow, []Value{val}, nil, nil) }

func SetCatch(label string, reg Register) Instruction {
	return Inst(bytecode.OpSetCatch, nil, []Register{reg}, []LabelRef{{Name: label}})
}

func UnsetCatch() Instruction { return Inst(bytecode.OpUnsetCatch, nil, nil, nil) }

func RequireMutableThis() Instruction { return Inst(bytecode.OpRequireMutableThis, nil, nil, nil) }

func Next(iter Value, dst Register) Instruction {
	return Inst(bytecode.OpNext, []Value{iter}, []Register{dst}, nil)
}

func UnpackIterRes(res Value, valueDst, doneDst Register) Instruction {
	return Inst(bytecode.OpUnpackIterRes, []Value{res}, []Register{valueDst, doneDst}, nil)
}

func Cat(iterables Value, dst Register) Instruction {
	return Inst(bytecode.OpCat, []Value{iterables}, []Register{dst}, nil)
}

func Yield(val Value, dst Register) Instruction {
	return Inst(bytecode.OpYield, []Value{val}, []Register{dst}, nil)
}

func YieldStar(val Value, dst Register) Instruction {
	return Inst(bytecode.OpYieldStar, []Value{val}, []Register{dst}, nil)
}

func TypeOf(a Value, dst Register) Instruction {
	return Inst(bytecode.OpTypeOf, []Value{a}, []Register{dst}, nil)
}

func InstanceOf(a, b Value, dst Register) Instruction {
	return Inst(bytecode.OpInstanceOf, []Value{a, b}, []Register{dst}, nil)
}

func In(a, b Value, dst Register) Instruction {
	return Inst(bytecode.OpIn, []Value{a, b}, []Register{dst}, nil)
}

func Import(path Value, dst Register) Instruction {
	return Inst(bytecode.OpImport, []Value{path}, []Register{dst}, nil)
}

func ImportStar(path Value, dst Register) Instruction {
	return Inst(bytecode.OpImportStar, []Value{path}, []Register{dst}, nil)
}
