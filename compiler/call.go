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

	"github.com/siliconjungle/ValueScript/asm"
	"github.com/siliconjungle/ValueScript/bytecode"
)

func (c *Compiler) compileArgsArray(fn *funcCtx, args []ast.Expression) (asm.Value, []CompiledExpression) {
	elems := make([]asm.Value, 0, len(args))
	compiled := make([]CompiledExpression, 0, len(args))
	for _, a := range args {
		v := c.compileExpr(fn, a, nil)
		elems = append(elems, v.Value)
		compiled = append(compiled, v)
	}
	return asm.ArrayValue{Elements: elems}, compiled
}

func releaseAll(fn *funcCtx, ces []CompiledExpression) {
	for _, ce := range ces {
		ce.Release(fn)
	}
}

// compileCall lowers a CallExpression; a plain call compiles to
// `call`, a member call picks SubCall/ConstSubCall/ThisSubCall by
// receiver analysis (spec §4.8).
func (c *Compiler) compileCall(fn *funcCtx, e *ast.CallExpression, target *asm.Register) CompiledExpression {
	argsVal, argCEs := c.compileArgsArray(fn, e.ArgumentList)
	dst, _ := destOrTemp(fn, target)

	switch callee := e.Callee.(type) {
	case *ast.DotExpression:
		c.emitSubCall(fn, callee.Left, asm.StringValue(callee.Identifier.Name), argsVal, dst)
	case *ast.BracketExpression:
		key := c.compileExpr(fn, callee.Member, nil)
		c.emitSubCall(fn, callee.Left, key.Value, argsVal, dst)
		key.Release(fn)
	default:
		fnVal := c.compileExpr(fn, e.Callee, nil)
		fn.emit(asm.Call(fnVal.Value, argsVal, dst))
		fnVal.Release(fn)
	}

	releaseAll(fn, argCEs)
	return CompiledExpression{Value: asm.RegisterValue{Register: dst}}
}

// emitSubCall picks the mutating/const/this variant of a member call
// based on whether the receiver expression is `this` (ThisSubCall), a
// plain addressable binding (SubCall, may promote to a unique handle
// and write back), or any other r-value expression (ConstSubCall, no
// write-back possible or needed).
func (c *Compiler) emitSubCall(fn *funcCtx, objExpr ast.Expression, key asm.Value, args asm.Value, dst asm.Register) {
	if _, ok := objExpr.(*ast.ThisExpression); ok {
		fn.emit(asm.SubCall(bytecode.OpThisSubCall, asm.ThisRegister(), key, args, dst))
		return
	}
	if id, ok := objExpr.(*ast.Identifier); ok {
		if reg, ok := c.resolveRef(fn, id); ok {
			fn.emit(asm.SubCall(bytecode.OpSubCall, asm.RegisterValue{Register: reg}, key, args, dst))
			return
		}
	}
	obj := c.compileExpr(fn, objExpr, nil)
	fn.emit(asm.SubCall(bytecode.OpConstSubCall, obj.Value, key, args, dst))
	obj.Release(fn)
}

func (c *Compiler) compileNew(fn *funcCtx, e *ast.NewExpression, target *asm.Register) CompiledExpression {
	ctor := c.compileExpr(fn, e.Callee, nil)
	argsVal, argCEs := c.compileArgsArray(fn, e.ArgumentList)
	dst, _ := destOrTemp(fn, target)
	fn.emit(asm.New(ctor.Value, argsVal, dst))
	ctor.Release(fn)
	releaseAll(fn, argCEs)
	return CompiledExpression{Value: asm.RegisterValue{Register: dst}}
}
