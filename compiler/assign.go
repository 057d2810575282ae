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

package compiler

import (
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/token"

	"github.com/siliconjungle/ValueScript/asm"
	"github.com/siliconjungle/ValueScript/bytecode"
)

// targetAccessor wraps an lvalue expression (spec §4.8): either a
// direct register (a plain identifier) or a nested `obj[key] -> tmp`
// read, which Write() turns into a `submov` write-back.
type targetAccessor struct {
	direct *asm.Register

	obj     asm.Value
	objReg  asm.Register // valid only when objIsReg
	objTemp bool
	key     asm.Value
	tmp     asm.Register
	read    bool
}

func (c *Compiler) compileTargetAccessor(fn *funcCtx, target ast.Expression) *targetAccessor {
	switch t := target.(type) {
	case *ast.Identifier:
		if reg, ok := c.resolveRef(fn, t); ok {
			return &targetAccessor{direct: &reg}
		}
		// Undeclared identifier target: treat as a fresh local (sloppy-
		// mode implicit global is out of scope for this subset).
		reg := fn.regs.Alloc()
		return &targetAccessor{direct: &reg}

	case *ast.DotExpression:
		obj := c.compileExpr(fn, t.Left, nil)
		return &targetAccessor{obj: obj.Value, key: asm.StringValue(t.Identifier.Name)}

	case *ast.BracketExpression:
		obj := c.compileExpr(fn, t.Left, nil)
		key := c.compileExpr(fn, t.Member, nil)
		return &targetAccessor{obj: obj.Value, key: key.Value}

	default:
		// Destructuring assignment targets are handled by
		// compileArrayDestructureAssign/compileObjectDestructureAssign
		// directly, never through this accessor.
		reg := fn.regs.Alloc()
		return &targetAccessor{direct: &reg}
	}
}

// Read reads the accessor's current value into a register, caching a
// nested `obj[key] -> tmp` read so a subsequent compound-assignment
// operation and the final Write share the same container read.
func (a *targetAccessor) Read(fn *funcCtx) asm.Register {
	if a.direct != nil {
		return *a.direct
	}
	if !a.read {
		a.tmp = fn.regs.Alloc()
		fn.emit(asm.Sub(a.obj, a.key, a.tmp))
		a.read = true
	}
	return a.tmp
}

// Write stores val back into the accessor's location.
func (a *targetAccessor) Write(fn *funcCtx, val asm.Value) {
	if a.direct != nil {
		if rv, ok := val.(asm.RegisterValue); ok && rv.Register.Name == a.direct.Name {
			return
		}
		fn.emit(asm.Mov(val, *a.direct))
		return
	}
	containerReg, isTemp := fn.c.intoRegister(fn, CompiledExpression{Value: a.obj})
	fn.emit(asm.SubMov(containerReg, a.key, val))
	if isTemp {
		a.obj = asm.RegisterValue{Register: containerReg}
	}
}

func (a *targetAccessor) Release(fn *funcCtx) {
	if a.read {
		fn.regs.Release(a.tmp)
	}
}

var compoundOpTable = map[token.Token]bytecode.Opcode{
	token.ADD_ASSIGN:                  bytecode.OpPlus,
	token.SUBTRACT_ASSIGN:             bytecode.OpMinus,
	token.MULTIPLY_ASSIGN:             bytecode.OpMul,
	token.QUOTIENT_ASSIGN:             bytecode.OpDiv,
	token.REMAINDER_ASSIGN:            bytecode.OpMod,
	token.EXPONENT_ASSIGN:             bytecode.OpExp,
	token.AND_ASSIGN:                  bytecode.OpBitAnd,
	token.OR_ASSIGN:                   bytecode.OpBitOr,
	token.EXCLUSIVE_OR_ASSIGN:         bytecode.OpBitXor,
	token.SHIFT_LEFT_ASSIGN:           bytecode.OpLeftShift,
	token.SHIFT_RIGHT_ASSIGN:          bytecode.OpRightShift,
	token.UNSIGNED_SHIFT_RIGHT_ASSIGN: bytecode.OpRightShiftUnsigned,
}

func (c *Compiler) compileAssign(fn *funcCtx, e *ast.AssignExpression, target *asm.Register) CompiledExpression {
	if arr, ok := e.Left.(*ast.ArrayLiteral); ok && e.Operator == token.ASSIGN {
		return c.compileArrayDestructureAssign(fn, arr, e.Right, target)
	}
	if obj, ok := e.Left.(*ast.ObjectLiteral); ok && e.Operator == token.ASSIGN {
		return c.compileObjectDestructureAssign(fn, obj, e.Right, target)
	}

	acc := c.compileTargetAccessor(fn, e.Left)

	if e.Operator == token.ASSIGN {
		val := c.compileExpr(fn, e.Right, nil)
		acc.Write(fn, val.Value)
		acc.Release(fn)
		return c.registerResultOrMov(fn, val.Value, target)
	}

	op, ok := compoundOpTable[e.Operator]
	if !ok {
		c.diags.Error(spanOf(int(e.Idx0())), "unsupported compound assignment operator %s", e.Operator)
		acc.Release(fn)
		return c.literalResult(asm.UndefinedValue{}, target, fn)
	}

	cur := acc.Read(fn)
	rhs := c.compileExpr(fn, e.Right, nil)
	dst := fn.regs.Alloc()
	fn.emit(asm.BinOp(op, asm.RegisterValue{Register: cur}, rhs.Value, dst))
	rhs.Release(fn)
	acc.Write(fn, asm.RegisterValue{Register: dst})
	acc.Release(fn)

	result := c.registerResultOrMov(fn, asm.RegisterValue{Register: dst}, target)
	fn.regs.Release(dst)
	return result
}

func (c *Compiler) registerResultOrMov(fn *funcCtx, v asm.Value, target *asm.Register) CompiledExpression {
	if target == nil {
		return CompiledExpression{Value: v}
	}
	fn.emit(asm.Mov(v, *target))
	return CompiledExpression{Value: asm.RegisterValue{Register: *target}}
}

// compileArrayDestructureAssign lowers `[a, b] = expr` (spec §4.8
// destructuring): sub each index into a fresh register, then
// recursively assign into each element target.
func (c *Compiler) compileArrayDestructureAssign(fn *funcCtx, pattern *ast.ArrayLiteral, rhs ast.Expression, target *asm.Register) CompiledExpression {
	val := c.compileExpr(fn, rhs, nil)
	for i, el := range pattern.Value {
		if el == nil {
			continue
		}
		elemReg := fn.regs.Alloc()
		fn.emit(asm.Sub(val.Value, asm.NumberValue(float64(i)), elemReg))
		c.assignPatternElement(fn, el, elemReg)
		fn.regs.Release(elemReg)
	}
	return c.registerResultOrMov(fn, val.Value, target)
}

func (c *Compiler) compileObjectDestructureAssign(fn *funcCtx, pattern *ast.ObjectLiteral, rhs ast.Expression, target *asm.Register) CompiledExpression {
	val := c.compileExpr(fn, rhs, nil)
	for _, p := range pattern.Value {
		switch pr := p.(type) {
		case *ast.PropertyKeyed:
			key := propertyKeyValue(pr.Key)
			elemReg := fn.regs.Alloc()
			fn.emit(asm.Sub(val.Value, key, elemReg))
			c.assignPatternElement(fn, pr.Value, elemReg)
			fn.regs.Release(elemReg)
		case *ast.PropertyShort:
			// `{x, y} = expr` shorthand: equivalent to `{x: x, y: y}`.
			elemReg := fn.regs.Alloc()
			fn.emit(asm.Sub(val.Value, asm.StringValue(pr.Name.Name), elemReg))
			c.assignPatternElement(fn, &pr.Name, elemReg)
			fn.regs.Release(elemReg)
		}
	}
	return c.registerResultOrMov(fn, val.Value, target)
}

// assignPatternElement handles a single destructured element, which
// may itself be `= default` (AssignExpression used as a default-value
// pattern node by goja) or a direct lvalue.
func (c *Compiler) assignPatternElement(fn *funcCtx, el ast.Expression, srcReg asm.Register) {
	lvalue := el
	var defaultExpr ast.Expression
	if ae, ok := el.(*ast.AssignExpression); ok && ae.Operator == token.ASSIGN {
		lvalue = ae.Left
		defaultExpr = ae.Right
	}

	if defaultExpr != nil {
		useDefault := fn.newLabel("destructure_default")
		end := fn.newLabel("destructure_end")
		undef := fn.regs.Alloc()
		fn.emit(asm.Mov(asm.UndefinedValue{}, undef))
		cmp := fn.regs.Alloc()
		fn.emit(asm.BinOp(bytecode.OpTripleEq, asm.RegisterValue{Register: srcReg}, asm.RegisterValue{Register: undef}, cmp))
		fn.emit(asm.JmpCond(bytecode.OpJmpIf, asm.RegisterValue{Register: cmp}, useDefault))
		fn.regs.Release(undef)
		fn.regs.Release(cmp)

		acc := c.compileTargetAccessor(fn, lvalue)
		acc.Write(fn, asm.RegisterValue{Register: srcReg})
		acc.Release(fn)
		fn.emit(asm.Jmp(end))

		fn.label(useDefault)
		dflt := c.compileExpr(fn, defaultExpr, nil)
		acc2 := c.compileTargetAccessor(fn, lvalue)
		acc2.Write(fn, dflt.Value)
		acc2.Release(fn)
		dflt.Release(fn)
		fn.label(end)
		return
	}

	if nestedArr, ok := lvalue.(*ast.ArrayLiteral); ok {
		for i, nel := range nestedArr.Value {
			if nel == nil {
				continue
			}
			nested := fn.regs.Alloc()
			fn.emit(asm.Sub(asm.RegisterValue{Register: srcReg}, asm.NumberValue(float64(i)), nested))
			c.assignPatternElement(fn, nel, nested)
			fn.regs.Release(nested)
		}
		return
	}
	if nestedObj, ok := lvalue.(*ast.ObjectLiteral); ok {
		for _, p := range nestedObj.Value {
			switch pr := p.(type) {
			case *ast.PropertyKeyed:
				key := propertyKeyValue(pr.Key)
				nested := fn.regs.Alloc()
				fn.emit(asm.Sub(asm.RegisterValue{Register: srcReg}, key, nested))
				c.assignPatternElement(fn, pr.Value, nested)
				fn.regs.Release(nested)
			case *ast.PropertyShort:
				nested := fn.regs.Alloc()
				fn.emit(asm.Sub(asm.RegisterValue{Register: srcReg}, asm.StringValue(pr.Name.Name), nested))
				c.assignPatternElement(fn, &pr.Name, nested)
				fn.regs.Release(nested)
			}
		}
		return
	}

	acc := c.compileTargetAccessor(fn, lvalue)
	acc.Write(fn, asm.RegisterValue{Register: srcReg})
	acc.Release(fn)
}
