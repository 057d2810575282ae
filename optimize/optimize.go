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

// Package optimize runs peephole passes over an assembled asm.Module:
// constant folding, common-subexpression elimination, and dead-code
// elimination on register assignments. Each pass is a direct
// transliteration of the three-pass structure once used for the
// SSA-form IR in this toolchain's register-transfer days, adapted
// from value-ID/basic-block terms to asm's Register/FnLine/label
// terms since this IR has no block graph, only fall-through lines and
// named jump targets.
package optimize

import (
	"github.com/siliconjungle/ValueScript/asm"
	"github.com/siliconjungle/ValueScript/bytecode"
	"github.com/siliconjungle/ValueScript/operations"
	"github.com/siliconjungle/ValueScript/values"
)

// Optimize runs all passes on every function-shaped definition in mod,
// to a fixed point, in place.
func Optimize(mod *asm.Module) {
	for _, def := range mod.Definitions {
		switch c := def.Content.(type) {
		case *asm.Function:
			optimizeFunction(c)
		case *asm.Lazy:
			optimizeFunction(c.Fn)
		}
	}
}

func optimizeFunction(fn *asm.Function) {
	for {
		changed := constantFold(fn)
		changed = commonSubexprEliminate(fn) || changed
		changed = deadCodeEliminate(fn) || changed
		if !changed {
			return
		}
	}
}

// foldableBinOps maps an opcode to the pure operations.go function
// implementing it, for the subset of binary operators cheap and safe
// to evaluate at compile time over literal operands.
var foldableBinOps = map[bytecode.Opcode]func(a, b values.Value) (values.Value, error){
	bytecode.OpPlus:  operations.Plus,
	bytecode.OpMinus: operations.Minus,
	bytecode.OpMul:   operations.Mul,
	bytecode.OpDiv:   operations.Div,
	bytecode.OpMod:   operations.Mod,
	bytecode.OpExp:   operations.Pow,
}

// constantFold evaluates binary operations whose operands are both
// literals, replacing the instruction with a plain Mov of the result.
// Mirrors ConstantFold's "both operands are constants" check, just
// reading literal asm.Values directly instead of tracing def-use
// chains back to an OpConst instruction (asm has no separate constant
// pool; a literal Value operand already is the constant).
func constantFold(fn *asm.Function) bool {
	changed := false
	for i, line := range fn.Body {
		in, ok := line.(asm.Instruction)
		if !ok || len(in.Args) != 2 || len(in.Targets) != 1 {
			continue
		}
		fold, ok := foldableBinOps[in.Op]
		if !ok {
			continue
		}
		av, ok := literalValue(in.Args[0])
		if !ok {
			continue
		}
		bv, ok := literalValue(in.Args[1])
		if !ok {
			continue
		}
		result, err := fold(av, bv)
		if err != nil {
			// A throwing combination (e.g. mixed BigInt/Number) is left
			// for the VM to throw at run time with its normal call-site
			// context rather than folded away.
			continue
		}
		folded, ok := asLiteral(result)
		if !ok {
			continue
		}
		fn.Body[i] = asm.Mov(folded, in.Targets[0])
		changed = true
	}
	return changed
}

func literalValue(v asm.Value) (values.Value, bool) {
	switch lit := v.(type) {
	case asm.NumberValue:
		return values.Number(float64(lit)), true
	case asm.StringValue:
		return values.String(string(lit)), true
	case asm.BoolValue:
		return values.Bool(bool(lit)), true
	default:
		return values.Value{}, false
	}
}

func asLiteral(v values.Value) (asm.Value, bool) {
	switch v.Kind() {
	case values.KindNumber:
		return asm.NumberValue(v.Number()), true
	case values.KindString:
		return asm.StringValue(v.Str()), true
	case values.KindBool:
		return asm.BoolValue(v.Bool()), true
	default:
		return nil, false
	}
}

// commonSubexprEliminate replaces a binary op with the same operator
// and operands as an earlier one in the same straight-line run with a
// Mov from the earlier result, the same "available expressions" table
// the SSA-IR pass kept per basic block. A label ends the current run
// (asm has no block-successor graph to consult, so a jump target is
// treated conservatively as a fresh run with an empty table).
func commonSubexprEliminate(fn *asm.Function) bool {
	changed := false
	type key struct {
		op   bytecode.Opcode
		a, b string
	}
	available := map[key]asm.Register{}

	for i, line := range fn.Body {
		if _, isLabel := line.(asm.LabelLine); isLabel {
			available = map[key]asm.Register{}
			continue
		}
		in, ok := line.(asm.Instruction)
		if !ok {
			continue
		}
		if hasSideEffects(in.Op) {
			available = map[key]asm.Register{}
			continue
		}
		if len(in.Args) != 2 || len(in.Targets) != 1 || targetIsSource(in) {
			continue
		}
		k := key{op: in.Op, a: in.Args[0].String(), b: in.Args[1].String()}
		if existing, ok := available[k]; ok {
			fn.Body[i] = asm.Mov(asm.RegisterValue{Register: existing}, in.Targets[0])
			changed = true
			continue
		}
		available[k] = in.Targets[0]
	}
	return changed
}

// targetIsSource guards against treating read-modify-write shapes
// (none of the plain binary ops are, today, but SubMov-style
// instructions reusing a Target as an implicit read are the reason
// this check exists rather than assuming Targets are always
// write-only).
func targetIsSource(in asm.Instruction) bool {
	for _, a := range in.Args {
		if rv, ok := a.(asm.RegisterValue); ok && rv.Register == in.Targets[0] {
			return true
		}
	}
	return false
}

// hasSideEffects mirrors the SSA pass's opcode classification: calls,
// mutation, control transfer, and generator/exception opcodes are
// never considered pure, so they flush the available-expressions
// table and are never themselves eliminated as dead or redundant.
func hasSideEffects(op bytecode.Opcode) bool {
	switch op {
	case bytecode.OpCall, bytecode.OpApply, bytecode.OpConstApply, bytecode.OpBind,
		bytecode.OpSubMov, bytecode.OpSubCall, bytecode.OpConstSubCall, bytecode.OpThisSubCall,
		bytecode.OpNew, bytecode.OpThrow, bytecode.OpImport, bytecode.OpImportStar,
		bytecode.OpSetCatch, bytecode.OpUnsetCatch, bytecode.OpRequireMutableThis,
		bytecode.OpNext, bytecode.OpYield, bytecode.OpYieldStar,
		bytecode.OpJmp, bytecode.OpJmpIf, bytecode.OpJmpIfNot, bytecode.OpEnd:
		return true
	default:
		return false
	}
}

// deadCodeEliminate removes Mov/BinOp/UnaryOp instructions whose
// target register is never read anywhere later in the function and
// isn't one of the reserved output registers, iterating to a fixed
// point exactly like the SSA pass's use-count loop (a dead
// instruction's removal can make its own operands dead in turn).
func deadCodeEliminate(fn *asm.Function) bool {
	anyChanged := false
	for {
		uses := countRegisterReads(fn)
		changed := false
		kept := fn.Body[:0]
		for _, line := range fn.Body {
			in, ok := line.(asm.Instruction)
			if ok && !hasSideEffects(in.Op) && len(in.Targets) == 1 && !targetIsSource(in) {
				dst := in.Targets[0]
				if !dst.IsReturn() && !dst.IsThis() && !dst.IsIgnore() && uses[dst] == 0 {
					changed = true
					continue
				}
			}
			kept = append(kept, line)
		}
		fn.Body = kept
		if !changed {
			return anyChanged
		}
		anyChanged = true
	}
}

// countRegisterReads counts every register read in an Arg across the
// whole function body, including registers nested inside array and
// object operands (call argument arrays, bind captures). Args are reads; Targets are writes and do not
// count (SubMov's container Target is the one instruction shape that
// both reads and writes, which is exactly why it is classified as
// having side effects above and left out of this elimination).
func countRegisterReads(fn *asm.Function) map[asm.Register]int {
	uses := map[asm.Register]int{}
	var count func(v asm.Value)
	count = func(v asm.Value) {
		switch x := v.(type) {
		case asm.RegisterValue:
			uses[x.Register]++
		case asm.ArrayValue:
			for _, e := range x.Elements {
				count(e)
			}
		case asm.ObjectValue:
			for _, e := range x.Entries {
				count(e.Key)
				count(e.Value)
			}
		}
	}
	for _, line := range fn.Body {
		in, ok := line.(asm.Instruction)
		if !ok {
			continue
		}
		for _, a := range in.Args {
			count(a)
		}
	}
	return uses
}
