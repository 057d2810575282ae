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

import (
	"fmt"
	"strings"

	"github.com/siliconjungle/ValueScript/bytecode"
)

// Instruction is one IR instruction. Rather than one Go type per
// opcode variant (which Rust's enum affords and Go's type system
// does not), this mirrors the teacher's table-driven opcode
// convention (lang/vm/opcodes.go's opcodeTable): every instruction is
// this one struct, and Op plus the populated field slices determine
// its shape. Args are value-typed operands (read); Targets are
// register-typed operands (written); Labels are jump targets.
//
// This also backs the field-visitor requirement of spec §4.6: VisitFields
// iterates every Value/Register/LabelRef an instruction holds, in a
// stable order, so passes (dead-code elimination, peephole) and the
// assembler's register/label resolution can treat all instructions
// uniformly.
type Instruction struct {
	Op      bytecode.Opcode
	Args    []Value
	Targets []Register
	Labels  []LabelRef
}

func (Instruction) isFnLine() {}

// Field is one value the visitor yields; exactly one of Value,
// Register, Label is non-nil.
type Field struct {
	Value    Value
	Register *Register
	Label    *LabelRef
}

// VisitFields calls fn once per operand field, in Args, Targets,
// Labels order, allowing in-place rewriting through the returned
// pointers (spec §4.6's "field-visitor producing {Value | Register |
// LabelRef}").
func (in *Instruction) VisitFields(fn func(Field)) {
	for _, a := range in.Args {
		fn(Field{Value: a})
	}
	for i := range in.Targets {
		fn(Field{Register: &in.Targets[i]})
	}
	for i := range in.Labels {
		fn(Field{Label: &in.Labels[i]})
	}
}

func (in Instruction) String() string {
	var b strings.Builder
	b.WriteString(in.Op.String())
	for _, a := range in.Args {
		fmt.Fprintf(&b, " %s", a)
	}
	for _, l := range in.Labels {
		fmt.Fprintf(&b, " %s", l)
	}
	for _, t := range in.Targets {
		fmt.Fprintf(&b, " -> %s", t)
	}
	return b.String()
}

// Inst is a small constructor helper used by the compiler package to
// build instructions without repeating struct-literal field names
// every time (it mirrors how lang/codegen/codegen.go's emit4/emitImm
// helpers keep call sites terse).
func Inst(op bytecode.Opcode, args []Value, targets []Register, labels []LabelRef) Instruction {
	return Instruction{Op: op, Args: args, Targets: targets, Labels: labels}
}
