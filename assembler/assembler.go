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

// Package assembler implements C9: a two-pass IR (package asm) to
// bytecode (package bytecode) translator. Layout and patch-back
// follow lang/codegen/codegen.go's Generator design from the teacher
// repository (labels/patches/regMap, binary.LittleEndian fixups),
// generalized from PROBE's fixed-width instruction encoding to
// ValueScript's tag-prefixed, variable-width value encoding.
//
// Operand encoding convention: every Instruction encodes, in order,
// its Args (as tagged Values per spec §6), then its Labels (each a
// 2-byte position, patched once the label's offset is known), then
// its Targets (each a 1-byte register index, 0xff for ignore). This
// uniform layout is an explicit design decision (DESIGN.md, the
// `BytecodeFrame` entry under the `vm` package) taken because spec.md fixes the opcode and
// tag sets but not a byte-for-byte operand order per opcode; as long
// as the vm package's decoder agrees with this convention, the
// contract in spec §6 ("operand layout per opcode is fixed") holds.
package assembler

import (
	"encoding/binary"
	"fmt"
	"math"

	bloom "github.com/holiman/bloomfilter/v2"

	"github.com/siliconjungle/ValueScript/asm"
	"github.com/siliconjungle/ValueScript/bytecode"
)

type patchKind int

const (
	patchPointer patchKind = iota
	patchLabel
)

type patch struct {
	kind   patchKind
	pos    int    // byte offset of the 2-byte field to fix up
	target string // pointer name, or "func#label" for a local label
}

// Assembler holds the state of one Module -> bytecode translation.
type Assembler struct {
	buf         []byte
	defOffsets  map[string]int
	patches     []patch
	seenOffsets *bloom.Filter // checked after the exact defOffsets lookup, confirming the offset was laid out
}

func New() *Assembler {
	filter, _ := bloom.New(4096, 4)
	return &Assembler{
		defOffsets: map[string]int{},
		seenOffsets: filter,
	}
}

// Assemble lowers m into a flat bytecode byte array.
func Assemble(m *asm.Module) ([]byte, error) {
	a := New()
	return a.assemble(m)
}

func (a *Assembler) assemble(m *asm.Module) ([]byte, error) {
	if err := a.emitValue(m.Export); err != nil {
		return nil, err
	}
	for _, nv := range m.ExportStar {
		if err := a.emitValue(asm.StringValue(nv.Name)); err != nil {
			return nil, err
		}
		if err := a.emitValue(nv.Value); err != nil {
			return nil, err
		}
	}
	a.buf = append(a.buf, byte(bytecode.TagEnd))

	for _, def := range m.Definitions {
		a.defOffsets[def.Pointer.Name] = len(a.buf)
		a.markSeen(len(a.buf))
		if err := a.emitDefinitionContent(def.Content); err != nil {
			return nil, fmt.Errorf("definition %s: %w", def.Pointer.Name, err)
		}
	}

	for _, p := range a.patches {
		if p.kind != patchPointer {
			continue
		}
		off, ok := a.defOffsets[p.target]
		if !ok {
			return nil, fmt.Errorf("unresolved pointer @%s", p.target)
		}
		if !a.seenOffsets.Contains(hashOffset(off)) {
			return nil, fmt.Errorf("pointer @%s resolved to an offset that was never laid out", p.target)
		}
		a.patchPos(p.pos, off)
	}

	return a.buf, nil
}

func (a *Assembler) markSeen(offset int) { a.seenOffsets.Add(hashOffset(offset)) }

func hashOffset(offset int) uint64 { return uint64(offset)*2654435761 + 1 }

func (a *Assembler) patchPos(pos, target int) {
	a.buf[pos] = byte(target & 0xff)
	a.buf[pos+1] = byte((target >> 8) & 0xff)
}

func (a *Assembler) emitDefinitionContent(c asm.DefinitionContent) error {
	switch v := c.(type) {
	case *asm.Function:
		return a.emitFunction(v)
	case *asm.Lazy:
		return a.emitFunction(v.Fn)
	case *asm.Class:
		a.buf = append(a.buf, byte(bytecode.TagClass))
		if err := a.emitValue(v.Constructor); err != nil {
			return err
		}
		return a.emitValue(v.InstancePrototype)
	case *asm.ValueDef:
		return a.emitValue(v.Value)
	default:
		return fmt.Errorf("unknown definition content %T", c)
	}
}

func (a *Assembler) emitFunction(fn *asm.Function) error {
	tag := bytecode.TagFunction
	if fn.IsGenerator {
		tag = bytecode.TagGeneratorFunction
	}
	a.buf = append(a.buf, byte(tag))

	regMap := map[string]byte{}
	var next byte
	alloc := func(name string) byte {
		if idx, ok := regMap[name]; ok {
			return idx
		}
		regMap[name] = next
		next++
		return next - 1
	}
	alloc("return")
	alloc("this")
	for _, p := range fn.Parameters {
		alloc(p.Name)
	}

	// Pre-scan the body once to size the register file: every
	// register named directly as a Target or an Arg gets an index,
	// after return, this and the parameters.
	for _, line := range fn.Body {
		if in, ok := line.(asm.Instruction); ok {
			for _, t := range in.Targets {
				if !t.IsIgnore() {
					alloc(t.Name)
				}
			}
			for _, arg := range in.Args {
				if rv, ok := arg.(asm.RegisterValue); ok && !rv.Register.IsIgnore() {
					alloc(rv.Register.Name)
				}
			}
		}
	}

	registerCount := next
	if registerCount == 0 {
		registerCount = 1
	}
	if registerCount >= bytecode.TakeRegisterBit {
		// Register indices share their top bit with TakeRegisterBit
		// (spec §6's take-register encoding), capping a single frame
		// at 127 registers.
		return fmt.Errorf("function has %d registers, exceeding the %d-register limit imposed by take-register encoding", registerCount, bytecode.TakeRegisterBit-1)
	}
	a.buf = append(a.buf, registerCount, byte(len(fn.Parameters)))

	labelOffsets := map[string]int{}
	bodyStart := len(a.buf)
	localPatches := []patch{}

	for _, line := range fn.Body {
		switch l := line.(type) {
		case asm.LabelLine:
			labelOffsets[l.Label.Name] = len(a.buf) - bodyStart
		case asm.EmptyLine, asm.CommentLine:
			// no bytecode emitted
		case asm.Instruction:
			if err := a.emitInstruction(l, regMap, &localPatches, bodyStart); err != nil {
				return err
			}
		}
	}

	for _, p := range localPatches {
		off, ok := labelOffsets[p.target]
		if !ok {
			return fmt.Errorf("undefined label %s", p.target)
		}
		a.patchPos(p.pos, off)
	}

	return nil
}

func (a *Assembler) emitInstruction(in asm.Instruction, regMap map[string]byte, localPatches *[]patch, bodyStart int) error {
	a.buf = append(a.buf, byte(in.Op))
	for _, arg := range in.Args {
		if err := a.emitValueWithRegs(arg, regMap); err != nil {
			return err
		}
	}
	for _, l := range in.Labels {
		*localPatches = append(*localPatches, patch{kind: patchLabel, pos: len(a.buf), target: l.Name})
		a.buf = append(a.buf, 0, 0)
	}
	for _, t := range in.Targets {
		if t.IsIgnore() {
			a.buf = append(a.buf, bytecode.IgnoreRegister)
			continue
		}
		a.buf = append(a.buf, regMap[t.Name])
	}
	return nil
}

func (a *Assembler) emitValueWithRegs(v asm.Value, regMap map[string]byte) error {
	if rv, ok := v.(asm.RegisterValue); ok {
		a.buf = append(a.buf, byte(bytecode.TagRegister))
		if rv.Register.IsIgnore() {
			a.buf = append(a.buf, bytecode.IgnoreRegister)
			return nil
		}
		idx := regMap[rv.Register.Name]
		if rv.Register.Take {
			idx |= bytecode.TakeRegisterBit
		}
		a.buf = append(a.buf, idx)
		return nil
	}
	return a.emitValue(v)
}

func (a *Assembler) emitValue(v asm.Value) error {
	switch val := v.(type) {
	case asm.VoidValue:
		a.buf = append(a.buf, byte(bytecode.TagVoid))
	case asm.UndefinedValue:
		a.buf = append(a.buf, byte(bytecode.TagUndefined))
	case asm.NullValue:
		a.buf = append(a.buf, byte(bytecode.TagNull))
	case asm.BoolValue:
		if val {
			a.buf = append(a.buf, byte(bytecode.TagTrue))
		} else {
			a.buf = append(a.buf, byte(bytecode.TagFalse))
		}
	case asm.NumberValue:
		a.buf = append(a.buf, byte(bytecode.TagNumber))
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(float64(val)))
		a.buf = append(a.buf, tmp[:]...)
	case asm.BigIntValue:
		a.emitBigInt(val)
	case asm.StringValue:
		a.emitString(string(val))
	case asm.ArrayValue:
		a.buf = append(a.buf, byte(bytecode.TagArray))
		for _, e := range val.Elements {
			if err := a.emitValue(e); err != nil {
				return err
			}
		}
		a.buf = append(a.buf, byte(bytecode.TagEnd))
	case asm.ObjectValue:
		a.buf = append(a.buf, byte(bytecode.TagObject))
		for _, e := range val.Entries {
			if err := a.emitValue(e.Key); err != nil {
				return err
			}
			if err := a.emitValue(e.Value); err != nil {
				return err
			}
		}
		a.buf = append(a.buf, byte(bytecode.TagEnd))
	case asm.RegisterValue:
		return fmt.Errorf("bare register value outside instruction operand context")
	case asm.PointerValue:
		a.buf = append(a.buf, byte(bytecode.TagPointer))
		a.patches = append(a.patches, patch{kind: patchPointer, pos: len(a.buf), target: val.Pointer.Name})
		a.buf = append(a.buf, 0, 0)
	case asm.BuiltinValue:
		a.buf = append(a.buf, byte(bytecode.TagBuiltin))
		a.buf = append(a.buf, encodeVarsizeUint(builtinIndex(val.Name))...)
	default:
		return fmt.Errorf("unknown asm.Value %T", v)
	}
	return nil
}

func (a *Assembler) emitString(s string) {
	a.buf = append(a.buf, byte(bytecode.TagString))
	a.buf = append(a.buf, encodeVarsizeUint(uint64(len(s)))...)
	a.buf = append(a.buf, s...)
}

func (a *Assembler) emitBigInt(b asm.BigIntValue) {
	a.buf = append(a.buf, byte(bytecode.TagBigInt))
	sign := byte(1)
	if b.Int.Sign() < 0 {
		sign = 0
	} else if b.Int.Sign() > 0 {
		sign = 2
	}
	a.buf = append(a.buf, sign)

	be := b.Int.Bytes()
	le := make([]byte, len(be))
	for i, c := range be {
		le[len(be)-1-i] = c
	}
	a.buf = append(a.buf, encodeVarsizeUint(uint64(len(le)))...)
	a.buf = append(a.buf, le...)
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

// builtinNames mirrors bytecode.builtinTable's index order; kept in
// sync by hand since the table is small and static (spec §9: "Global
// state: there is none ... Builtins are addressed by integer index").
var builtinNames = []string{"Debug", "Math", "TypeError", "RangeError", "SyntaxError", "Error", "GetIterator"}

func builtinIndex(name string) uint64 {
	for i, n := range builtinNames {
		if n == name {
			return uint64(i)
		}
	}
	return 0
}
