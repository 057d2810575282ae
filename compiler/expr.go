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
	"math/big"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/token"

	"github.com/siliconjungle/ValueScript/asm"
	"github.com/siliconjungle/ValueScript/bytecode"
	"github.com/siliconjungle/ValueScript/internal/diag"
)

// compileExpr compiles expr, optionally directing the result into
// target (emitting a `mov` only when the natural result doesn't
// already land there), per spec §4.8.
func (c *Compiler) compileExpr(fn *funcCtx, expr ast.Expression, target *asm.Register) CompiledExpression {
	switch e := expr.(type) {
	case nil:
		return c.literalResult(asm.UndefinedValue{}, target, fn)

	case *ast.Identifier:
		if reg, ok := c.resolveRef(fn, e); ok {
			return c.registerResult(reg, target, fn)
		}
		c.diags.Lint(spanOf(int(e.Idx)), "reference to undeclared name %q treated as undefined", e.Name)
		return c.literalResult(asm.UndefinedValue{}, target, fn)

	case *ast.ThisExpression:
		return c.registerResult(asm.ThisRegister(), target, fn)

	case *ast.BooleanLiteral:
		return c.literalResult(asm.BoolValue(e.Value), target, fn)

	case *ast.NullLiteral:
		return c.literalResult(asm.NullValue{}, target, fn)

	case *ast.NumberLiteral:
		return c.literalResult(numberValue(e), target, fn)

	case *ast.StringLiteral:
		return c.literalResult(asm.StringValue(e.Value), target, fn)

	case *ast.SequenceExpression:
		var last CompiledExpression
		for i, se := range e.Sequence {
			if i == len(e.Sequence)-1 {
				last = c.compileExpr(fn, se, target)
			} else {
				r := c.compileExpr(fn, se, nil)
				r.Release(fn)
			}
		}
		return last

	case *ast.BinaryExpression:
		return c.compileBinary(fn, e, target)

	case *ast.UnaryExpression:
		return c.compileUnary(fn, e, target)

	case *ast.UpdateExpression:
		return c.compileUpdate(fn, e, target)

	case *ast.AssignExpression:
		return c.compileAssign(fn, e, target)

	case *ast.ConditionalExpression:
		return c.compileConditional(fn, e, target)

	case *ast.CallExpression:
		return c.compileCall(fn, e, target)

	case *ast.NewExpression:
		return c.compileNew(fn, e, target)

	case *ast.DotExpression:
		return c.compileDot(fn, e, target)

	case *ast.BracketExpression:
		return c.compileBracket(fn, e, target)

	case *ast.ArrayLiteral:
		return c.compileArrayLiteral(fn, e, target)

	case *ast.ObjectLiteral:
		return c.compileObjectLiteral(fn, e, target)

	case *ast.FunctionLiteral:
		return c.compileFunctionExpr(fn, e, target)

	case *ast.TemplateLiteral:
		return c.compileTemplate(fn, e, target)

	case *ast.YieldExpression:
		return c.compileYield(fn, e, target)

	default:
		c.diags.Error(diag.Span{}, "unsupported expression form %T", expr)
		return c.literalResult(asm.UndefinedValue{}, target, fn)
	}
}

func spanOf(pos int) diag.Span { return diag.Span{Start: pos} }

func numberValue(n *ast.NumberLiteral) asm.Value {
	switch v := n.Value.(type) {
	case float64:
		return asm.NumberValue(v)
	case int64:
		return asm.NumberValue(float64(v))
	case *big.Int:
		return asm.BigIntValue{Int: v}
	default:
		return asm.NumberValue(0)
	}
}

// literalResult packs a plain IR value into a CompiledExpression,
// materializing it into target if the caller demanded a specific
// register.
func (c *Compiler) literalResult(v asm.Value, target *asm.Register, fn *funcCtx) CompiledExpression {
	if target != nil {
		fn.emit(asm.Mov(v, *target))
		return CompiledExpression{Value: asm.RegisterValue{Register: *target}}
	}
	return CompiledExpression{Value: v}
}

// registerResult packs an already-live register as the result,
// copying into target only if target names a different register.
func (c *Compiler) registerResult(reg asm.Register, target *asm.Register, fn *funcCtx) CompiledExpression {
	if target != nil && target.Name != reg.Name {
		fn.emit(asm.Mov(asm.RegisterValue{Register: reg}, *target))
		return CompiledExpression{Value: asm.RegisterValue{Register: *target}}
	}
	return CompiledExpression{Value: asm.RegisterValue{Register: reg}}
}

// intoRegister materializes a CompiledExpression's value into a real
// register, allocating a fresh temporary if it's a plain literal
// operand (binary/call opcodes that need a register operand, like
// SubMov's container, use this).
func (c *Compiler) intoRegister(fn *funcCtx, ce CompiledExpression) (asm.Register, bool) {
	if rv, ok := ce.Value.(asm.RegisterValue); ok {
		return rv.Register, false
	}
	tmp := fn.regs.Alloc()
	fn.emit(asm.Mov(ce.Value, tmp))
	return tmp, true
}

func destOrTemp(fn *funcCtx, target *asm.Register) (asm.Register, bool) {
	if target != nil {
		return *target, false
	}
	return fn.regs.Alloc(), true
}

var binOpTable = map[token.Token]bytecode.Opcode{
	token.PLUS:               bytecode.OpPlus,
	token.MINUS:               bytecode.OpMinus,
	token.MULTIPLY:            bytecode.OpMul,
	token.SLASH:               bytecode.OpDiv,
	token.REMAINDER:           bytecode.OpMod,
	token.EXPONENT:            bytecode.OpExp,
	token.EQUAL:               bytecode.OpEq,
	token.NOT_EQUAL:           bytecode.OpNe,
	token.STRICT_EQUAL:        bytecode.OpTripleEq,
	token.STRICT_NOT_EQUAL:    bytecode.OpTripleNe,
	token.LESS:                bytecode.OpLess,
	token.LESS_OR_EQUAL:       bytecode.OpLessEq,
	token.GREATER:             bytecode.OpGreater,
	token.GREATER_OR_EQUAL:    bytecode.OpGreaterEq,
	token.AND:                 bytecode.OpBitAnd,
	token.OR:                  bytecode.OpBitOr,
	token.EXCLUSIVE_OR:        bytecode.OpBitXor,
	token.SHIFT_LEFT:          bytecode.OpLeftShift,
	token.SHIFT_RIGHT:         bytecode.OpRightShift,
	token.UNSIGNED_SHIFT_RIGHT: bytecode.OpRightShiftUnsigned,
	token.INSTANCEOF:          bytecode.OpInstanceOf,
	token.IN:                  bytecode.OpIn,
}

func (c *Compiler) compileBinary(fn *funcCtx, e *ast.BinaryExpression, target *asm.Register) CompiledExpression {
	// Short-circuit operators need control flow, not a plain BinOp.
	if e.Operator == token.LOGICAL_AND || e.Operator == token.LOGICAL_OR {
		return c.compileLogical(fn, e, target)
	}

	left := c.compileExpr(fn, e.Left, nil)
	right := c.compileExpr(fn, e.Right, nil)

	op, ok := binOpTable[e.Operator]
	if !ok {
		if e.Operator == token.COALESCE {
			op = bytecode.OpNullishCoalesce
		} else {
			c.diags.Error(spanOf(int(e.Idx0())), "unsupported binary operator %s", e.Operator)
			op = bytecode.OpPlus
		}
	}

	dst, isTemp := destOrTemp(fn, target)
	fn.emit(asm.BinOp(op, left.Value, right.Value, dst))
	left.Release(fn)
	right.Release(fn)
	_ = isTemp
	return CompiledExpression{Value: asm.RegisterValue{Register: dst}}
}

// compileLogical lowers `&&`/`||` to a test-and-jump sequence: both
// short-circuit on the operand's own value (not a coerced boolean),
// matching spec §4.2's "&&/|| pass through the operand value".
func (c *Compiler) compileLogical(fn *funcCtx, e *ast.BinaryExpression, target *asm.Register) CompiledExpression {
	dst, _ := destOrTemp(fn, target)
	left := c.compileExpr(fn, e.Left, &dst)
	left.Release(fn)

	end := fn.newLabel("logic_end")
	if e.Operator == token.LOGICAL_AND {
		fn.emit(asm.JmpCond(bytecode.OpJmpIfNot, asm.RegisterValue{Register: dst}, end))
	} else {
		fn.emit(asm.JmpCond(bytecode.OpJmpIf, asm.RegisterValue{Register: dst}, end))
	}
	right := c.compileExpr(fn, e.Right, &dst)
	right.Release(fn)
	fn.label(end)

	return CompiledExpression{Value: asm.RegisterValue{Register: dst}}
}

func (c *Compiler) compileUnary(fn *funcCtx, e *ast.UnaryExpression, target *asm.Register) CompiledExpression {
	operand := c.compileExpr(fn, e.Operand, nil)
	dst, _ := destOrTemp(fn, target)

	switch e.Operator {
	case token.NOT:
		fn.emit(asm.UnaryOp(bytecode.OpNot, operand.Value, dst))
	case token.PLUS:
		fn.emit(asm.UnaryOp(bytecode.OpUnaryPlus, operand.Value, dst))
	case token.MINUS:
		fn.emit(asm.UnaryOp(bytecode.OpUnaryMinus, operand.Value, dst))
	case token.BITWISE_NOT:
		fn.emit(asm.UnaryOp(bytecode.OpBitNot, operand.Value, dst))
	case token.TYPEOF:
		fn.emit(asm.TypeOf(operand.Value, dst))
	case token.VOID:
		operand.Release(fn)
		fn.emit(asm.Mov(asm.UndefinedValue{}, dst))
		return CompiledExpression{Value: asm.RegisterValue{Register: dst}}
	case token.DELETE:
		// Deleting a property is out of the opcode set this subset
		// implements (no dedicated Delete opcode); treat as a no-op
		// evaluating to true, the common "already absent" case.
		fn.emit(asm.Mov(asm.BoolValue(true), dst))
	default:
		c.diags.Error(spanOf(int(e.Idx)), "unsupported unary operator %s", e.Operator)
		fn.emit(asm.Mov(asm.UndefinedValue{}, dst))
	}
	operand.Release(fn)
	return CompiledExpression{Value: asm.RegisterValue{Register: dst}}
}

func (c *Compiler) compileUpdate(fn *funcCtx, e *ast.UpdateExpression, target *asm.Register) CompiledExpression {
	acc := c.compileTargetAccessor(fn, e.Operand)
	cur := acc.Read(fn)

	var result asm.Register
	if e.Postfix {
		// Postfix returns the pre-update value; stash it before
		// mutating.
		result, _ = destOrTemp(fn, target)
		fn.emit(asm.Mov(asm.RegisterValue{Register: cur}, result))
	}

	op := bytecode.OpInc
	if e.Operator == token.DECREMENT {
		op = bytecode.OpDec
	}
	fn.emit(asm.IncDec(op, cur))
	acc.Write(fn, asm.RegisterValue{Register: cur})

	if !e.Postfix {
		result, _ = destOrTemp(fn, target)
		fn.emit(asm.Mov(asm.RegisterValue{Register: cur}, result))
	}
	acc.Release(fn)
	return CompiledExpression{Value: asm.RegisterValue{Register: result}}
}

func (c *Compiler) compileConditional(fn *funcCtx, e *ast.ConditionalExpression, target *asm.Register) CompiledExpression {
	test := c.compileExpr(fn, e.Test, nil)
	dst, _ := destOrTemp(fn, target)

	elseLabel := fn.newLabel("cond_else")
	endLabel := fn.newLabel("cond_end")
	fn.emit(asm.JmpCond(bytecode.OpJmpIfNot, test.Value, elseLabel))
	test.Release(fn)

	cons := c.compileExpr(fn, e.Consequent, &dst)
	cons.Release(fn)
	fn.emit(asm.Jmp(endLabel))
	fn.label(elseLabel)
	alt := c.compileExpr(fn, e.Alternate, &dst)
	alt.Release(fn)
	fn.label(endLabel)

	return CompiledExpression{Value: asm.RegisterValue{Register: dst}}
}

func (c *Compiler) compileTemplate(fn *funcCtx, e *ast.TemplateLiteral, target *asm.Register) CompiledExpression {
	dst, _ := destOrTemp(fn, target)
	first := true
	exprIdx := 0
	for _, el := range e.Elements {
		if !first {
			// handled via op+ chain below once we have the piece's value
		}
		piece := asm.Value(asm.StringValue(el.Parsed))
		if first {
			fn.emit(asm.Mov(piece, dst))
			first = false
		} else {
			fn.emit(asm.BinOp(bytecode.OpPlus, asm.RegisterValue{Register: dst}, piece, dst))
		}
		if exprIdx < len(e.Expressions) {
			v := c.compileExpr(fn, e.Expressions[exprIdx], nil)
			fn.emit(asm.BinOp(bytecode.OpPlus, asm.RegisterValue{Register: dst}, v.Value, dst))
			v.Release(fn)
			exprIdx++
		}
	}
	if first {
		fn.emit(asm.Mov(asm.StringValue(""), dst))
	}
	return CompiledExpression{Value: asm.RegisterValue{Register: dst}}
}

func (c *Compiler) compileYield(fn *funcCtx, e *ast.YieldExpression, target *asm.Register) CompiledExpression {
	dst, _ := destOrTemp(fn, target)
	arg := c.compileExpr(fn, e.Argument, nil)
	if e.Delegate {
		fn.emit(asm.YieldStar(arg.Value, dst))
	} else {
		fn.emit(asm.Yield(arg.Value, dst))
	}
	arg.Release(fn)
	return CompiledExpression{Value: asm.RegisterValue{Register: dst}}
}

func (c *Compiler) compileArrayLiteral(fn *funcCtx, e *ast.ArrayLiteral, target *asm.Register) CompiledExpression {
	elems := make([]asm.Value, 0, len(e.Value))
	var released []asm.Register
	for _, el := range e.Value {
		if el == nil {
			elems = append(elems, asm.UndefinedValue{})
			continue
		}
		v := c.compileExpr(fn, el, nil)
		elems = append(elems, v.Value)
		released = append(released, v.NestedRegisters...)
	}
	dst, _ := destOrTemp(fn, target)
	fn.emit(asm.Mov(asm.ArrayValue{Elements: elems}, dst))
	for _, r := range released {
		fn.regs.Release(r)
	}
	return CompiledExpression{Value: asm.RegisterValue{Register: dst}}
}

func (c *Compiler) compileObjectLiteral(fn *funcCtx, e *ast.ObjectLiteral, target *asm.Register) CompiledExpression {
	entries := make([]asm.ObjectEntry, 0, len(e.Value))
	for _, p := range e.Value {
		switch pr := p.(type) {
		case *ast.PropertyKeyed:
			var key asm.Value
			if pr.Computed {
				kv := c.compileExpr(fn, pr.Key, nil)
				key = kv.Value
				kv.Release(fn)
			} else {
				key = propertyKeyValue(pr.Key)
			}
			val := c.compileExpr(fn, pr.Value, nil)
			entries = append(entries, asm.ObjectEntry{Key: key, Value: val.Value})
			val.Release(fn)
		case *ast.PropertyShort:
			reg, ok := c.resolveRef(fn, &pr.Name)
			var v asm.Value = asm.UndefinedValue{}
			if ok {
				v = asm.RegisterValue{Register: reg}
			}
			entries = append(entries, asm.ObjectEntry{Key: asm.StringValue(pr.Name.Name), Value: v})
		}
	}
	dst, _ := destOrTemp(fn, target)
	fn.emit(asm.Mov(asm.ObjectValue{Entries: entries}, dst))
	return CompiledExpression{Value: asm.RegisterValue{Register: dst}}
}

func propertyKeyValue(key ast.Expression) asm.Value {
	switch k := key.(type) {
	case *ast.Identifier:
		return asm.StringValue(k.Name)
	case *ast.StringLiteral:
		return asm.StringValue(k.Value)
	case *ast.NumberLiteral:
		return numberValue(k)
	default:
		return asm.StringValue("")
	}
}

func (c *Compiler) compileDot(fn *funcCtx, e *ast.DotExpression, target *asm.Register) CompiledExpression {
	obj := c.compileExpr(fn, e.Left, nil)
	dst, _ := destOrTemp(fn, target)
	fn.emit(asm.Sub(obj.Value, asm.StringValue(e.Identifier.Name), dst))
	obj.Release(fn)
	return CompiledExpression{Value: asm.RegisterValue{Register: dst}}
}

func (c *Compiler) compileBracket(fn *funcCtx, e *ast.BracketExpression, target *asm.Register) CompiledExpression {
	obj := c.compileExpr(fn, e.Left, nil)
	key := c.compileExpr(fn, e.Member, nil)
	dst, _ := destOrTemp(fn, target)
	fn.emit(asm.Sub(obj.Value, key.Value, dst))
	obj.Release(fn)
	key.Release(fn)
	return CompiledExpression{Value: asm.RegisterValue{Register: dst}}
}

// compileFunctionExpr lowers a function expression: compiles the
// callee as its own top-level Definition, then emits a `bind`
// instruction capturing the current values of everything the
// analyzer determined it closes over, or a plain `mov` of the
// function pointer when it captures nothing.
func (c *Compiler) compileFunctionExpr(fn *funcCtx, e *ast.FunctionLiteral, target *asm.Register) CompiledExpression {
	ptr := c.compileFunctionLiteral(fn, e, "fn")
	dst, _ := destOrTemp(fn, target)

	captures := c.capturedValuesArray(fn, e)
	if arr, ok := captures.(asm.ArrayValue); ok && len(arr.Elements) == 0 {
		fn.emit(asm.Mov(asm.PointerValue{Pointer: ptr}, dst))
	} else {
		fn.emit(asm.Bind(asm.PointerValue{Pointer: ptr}, captures, dst))
	}
	return CompiledExpression{Value: asm.RegisterValue{Register: dst}}
}

// compileFunctionLiteral compiles fn's body into a new top-level
// Definition and returns its Pointer. hint names the generated
// definition for readability in disassembly.
func (c *Compiler) compileFunctionLiteral(outer *funcCtx, lit *ast.FunctionLiteral, hint string) asm.Pointer {
	child, params := c.compileFunctionBindings(outer, lit, lit)
	if lit.Body != nil {
		c.compileStatements(child, lit.Body.List)
	}
	child.emit(asm.End())

	ptr := c.freshDef(hint)
	c.addDef(ptr, &asm.Function{IsGenerator: lit.IsGenerator, Parameters: params, Body: child.body})
	return ptr
}
