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

func (c *Compiler) compileStatements(fn *funcCtx, body []ast.Statement) {
	for _, s := range body {
		c.compileStatement(fn, s)
	}
}

func (c *Compiler) compileStatement(fn *funcCtx, stmt ast.Statement) {
	switch s := stmt.(type) {
	case nil, *ast.EmptyStatement, *ast.DebuggerStatement:
		return

	case *ast.ExpressionStatement:
		ce := c.compileExpr(fn, s.Expression, nil)
		ce.Release(fn)

	case *ast.VariableStatement:
		for _, b := range s.List {
			c.compileBindingDecl(fn, b)
		}

	case *ast.LexicalDeclaration:
		for _, b := range s.List {
			c.compileBindingDecl(fn, b)
		}

	case *ast.FunctionDeclaration:
		if s.Function != nil {
			c.compileHoistedFunctionDecl(fn, s.Function)
		}

	case *ast.BlockStatement:
		c.compileStatements(fn, s.List)

	case *ast.IfStatement:
		c.compileIf(fn, s)

	case *ast.WhileStatement:
		c.compileWhile(fn, s)

	case *ast.DoWhileStatement:
		c.compileDoWhile(fn, s)

	case *ast.ForStatement:
		c.compileFor(fn, s)

	case *ast.ForOfStatement:
		c.compileForOf(fn, s)

	case *ast.ForInStatement:
		c.compileForIn(fn, s)

	case *ast.BranchStatement:
		c.compileBranch(fn, s)

	case *ast.ReturnStatement:
		val := c.compileExpr(fn, s.Argument, nil)
		ret := asm.ReturnRegister()
		fn.emit(asm.Mov(val.Value, ret))
		val.Release(fn)
		fn.emit(asm.End())

	case *ast.ThrowStatement:
		val := c.compileExpr(fn, s.Argument, nil)
		fn.emit(asm.Throw(val.Value))
		val.Release(fn)

	case *ast.TryStatement:
		c.compileTry(fn, s)

	case *ast.LabelledStatement:
		c.diags.Lint(spanOf(0), "labelled statements are not supported; label %q ignored", s.Label.Name)
		c.compileStatement(fn, s.Statement)

	case *ast.ClassDeclaration:
		c.compileClassDecl(fn, s.Class)

	case *ast.SwitchStatement:
		c.compileSwitch(fn, s)

	default:
		c.diags.Error(spanOf(0), "unsupported statement form %T", stmt)
	}
}

func (c *Compiler) compileBindingDecl(fn *funcCtx, b *ast.Binding) {
	if b == nil {
		return
	}
	if id, ok := b.Target.(*ast.Identifier); ok {
		reg, ok := c.resolveRef(fn, id)
		if !ok {
			reg = asm.NewRegister(sanitize(id.Name))
		}
		if b.Initializer != nil {
			v := c.compileExpr(fn, b.Initializer, &reg)
			v.Release(fn)
		} else {
			fn.emit(asm.Mov(asm.UndefinedValue{}, reg))
		}
		return
	}
	// Destructuring declaration: evaluate the initializer once, then
	// assign each pattern element the same way a destructuring
	// assignment expression would.
	if b.Initializer == nil {
		return
	}
	switch t := b.Target.(type) {
	case *ast.ArrayLiteral:
		c.compileArrayDestructureAssign(fn, t, b.Initializer, nil)
	case *ast.ObjectLiteral:
		c.compileObjectDestructureAssign(fn, t, b.Initializer, nil)
	}
}

// compileHoistedFunctionDecl compiles a function declaration's body
// into its own Definition and binds its name register to a `bind` (or
// a plain pointer `mov` when it captures nothing) immediately, so
// calls anywhere else in the enclosing scope resolve to it.
func (c *Compiler) compileHoistedFunctionDecl(fn *funcCtx, lit *ast.FunctionLiteral) {
	if lit.Name == nil {
		return
	}
	reg, ok := c.resolveRef(fn, lit.Name)
	if !ok {
		return
	}
	ptr := c.compileFunctionLiteral(fn, lit, lit.Name.Name)
	captures := c.capturedValuesArray(fn, lit)
	if arr, ok := captures.(asm.ArrayValue); ok && len(arr.Elements) == 0 {
		fn.emit(asm.Mov(asm.PointerValue{Pointer: ptr}, reg))
	} else {
		fn.emit(asm.Bind(asm.PointerValue{Pointer: ptr}, captures, reg))
	}
}

func (c *Compiler) compileClassDecl(fn *funcCtx, cls *ast.ClassLiteral) {
	if cls == nil || cls.Name == nil {
		return
	}
	reg, ok := c.resolveRef(fn, cls.Name)
	if !ok {
		return
	}
	// A full class lowering (methods, fields, super) is beyond this
	// subset's register-allocator-visible surface; a class compiles to
	// an instance prototype object carrying its methods and a
	// constructor taken from its `constructor` method (Undefined when
	// there is none), giving `new` a working target without full
	// inheritance semantics.
	// Static members are dropped here: the bytecode format's TagClass
	// encoding (assembler.go/decoder.go) only ever carries a
	// constructor and an instance prototype, never a static side-
	// table, so a static method would silently vanish at assembly
	// time. Diagnose it instead of compiling dead code.
	proto := asm.ObjectValue{}
	var ctorPtr asm.Value = asm.UndefinedValue{}
	for _, el := range cls.Body {
		m, ok := el.(*ast.MethodDefinition)
		if !ok || m.Body == nil {
			continue
		}
		name := propertyKeyValue(m.Key)
		if m.Static {
			c.diags.Lint(spanOf(0), "static class members are not supported; %q dropped", name)
			continue
		}
		methodPtr := c.compileFunctionLiteral(fn, m.Body, "method")
		methodVal := asm.Value(asm.PointerValue{Pointer: methodPtr})
		if s, ok := name.(asm.StringValue); ok && string(s) == "constructor" {
			ctorPtr = methodVal
			continue
		}
		proto.Entries = append(proto.Entries, asm.ObjectEntry{Key: name, Value: methodVal})
	}

	protoReg := fn.regs.Alloc()
	fn.emit(asm.Mov(proto, protoReg))

	classPtr := c.freshDef(cls.Name.Name)
	c.addDef(classPtr, &asm.Class{
		Constructor:       ctorPtr,
		InstancePrototype: asm.RegisterValue{Register: protoReg},
		Static:            asm.UndefinedValue{},
	})
	fn.emit(asm.Mov(asm.PointerValue{Pointer: classPtr}, reg))
	fn.regs.Release(protoReg)
}

func (c *Compiler) compileIf(fn *funcCtx, s *ast.IfStatement) {
	test := c.compileExpr(fn, s.Test, nil)
	elseLabel := fn.newLabel("if_else")
	fn.emit(asm.JmpCond(bytecode.OpJmpIfNot, test.Value, elseLabel))
	test.Release(fn)

	c.compileStatement(fn, s.Consequent)

	if s.Alternate != nil {
		end := fn.newLabel("if_end")
		fn.emit(asm.Jmp(end))
		fn.label(elseLabel)
		c.compileStatement(fn, s.Alternate)
		fn.label(end)
	} else {
		fn.label(elseLabel)
	}
}

func (c *Compiler) compileWhile(fn *funcCtx, s *ast.WhileStatement) {
	testLabel := fn.newLabel("while_test")
	endLabel := fn.newLabel("while_end")
	fn.loops = append(fn.loops, loopLabels{breakLabel: endLabel, continueLabel: testLabel})

	fn.label(testLabel)
	test := c.compileExpr(fn, s.Test, nil)
	fn.emit(asm.JmpCond(bytecode.OpJmpIfNot, test.Value, endLabel))
	test.Release(fn)
	c.compileStatement(fn, s.Body)
	fn.emit(asm.Jmp(testLabel))
	fn.label(endLabel)

	fn.loops = fn.loops[:len(fn.loops)-1]
}

func (c *Compiler) compileDoWhile(fn *funcCtx, s *ast.DoWhileStatement) {
	startLabel := fn.newLabel("dowhile_start")
	continueLabel := fn.newLabel("dowhile_continue")
	endLabel := fn.newLabel("dowhile_end")
	fn.loops = append(fn.loops, loopLabels{breakLabel: endLabel, continueLabel: continueLabel})

	fn.label(startLabel)
	c.compileStatement(fn, s.Body)
	fn.label(continueLabel)
	test := c.compileExpr(fn, s.Test, nil)
	fn.emit(asm.JmpCond(bytecode.OpJmpIf, test.Value, startLabel))
	test.Release(fn)
	fn.label(endLabel)

	fn.loops = fn.loops[:len(fn.loops)-1]
}

func (c *Compiler) compileFor(fn *funcCtx, s *ast.ForStatement) {
	switch init := s.Initializer.(type) {
	case *ast.ForLoopVarInitializer:
		for _, b := range init.List() {
			c.compileBindingDecl(fn, b)
		}
	case *ast.ForLoopExpressionInitializer:
		ce := c.compileExpr(fn, init.Expression, nil)
		ce.Release(fn)
	}

	testLabel := fn.newLabel("for_test")
	continueLabel := fn.newLabel("for_continue")
	endLabel := fn.newLabel("for_end")
	fn.loops = append(fn.loops, loopLabels{breakLabel: endLabel, continueLabel: continueLabel})

	fn.label(testLabel)
	if s.Test != nil {
		test := c.compileExpr(fn, s.Test, nil)
		fn.emit(asm.JmpCond(bytecode.OpJmpIfNot, test.Value, endLabel))
		test.Release(fn)
	}
	c.compileStatement(fn, s.Body)
	fn.label(continueLabel)
	if s.Update != nil {
		upd := c.compileExpr(fn, s.Update, nil)
		upd.Release(fn)
	}
	fn.emit(asm.Jmp(testLabel))
	fn.label(endLabel)

	fn.loops = fn.loops[:len(fn.loops)-1]
}

// compileForOf lowers `for (x of iterable)` using the iterator
// protocol directly (spec §4.8's "Template literals"/generator
// machinery share this pattern with yield*): GetIterator, then a
// next/unpackiterres loop.
func (c *Compiler) compileForOf(fn *funcCtx, s *ast.ForOfStatement) {
	iterable := c.compileExpr(fn, s.Source, nil)
	getIter := fn.regs.Alloc()
	fn.emit(asm.Mov(asm.BuiltinValue{Name: "GetIterator"}, getIter))
	argsArr := asm.ArrayValue{Elements: []asm.Value{iterable.Value}}
	iter := fn.regs.Alloc()
	fn.emit(asm.Call(asm.RegisterValue{Register: getIter}, argsArr, iter))
	iterable.Release(fn)
	fn.regs.Release(getIter)

	testLabel := fn.newLabel("forof_test")
	continueLabel := fn.newLabel("forof_continue")
	endLabel := fn.newLabel("forof_end")
	fn.loops = append(fn.loops, loopLabels{breakLabel: endLabel, continueLabel: continueLabel})

	fn.label(testLabel)
	res := fn.regs.Alloc()
	fn.emit(asm.Next(asm.RegisterValue{Register: iter}, res))
	valueReg := fn.regs.Alloc()
	doneReg := fn.regs.Alloc()
	fn.emit(asm.UnpackIterRes(asm.RegisterValue{Register: res}, valueReg, doneReg))
	fn.regs.Release(res)
	fn.emit(asm.JmpCond(bytecode.OpJmpIf, asm.RegisterValue{Register: doneReg}, endLabel))
	fn.regs.Release(doneReg)

	c.bindForTarget(fn, s.Into, valueReg)
	fn.regs.Release(valueReg)

	c.compileStatement(fn, s.Body)
	fn.label(continueLabel)
	fn.emit(asm.Jmp(testLabel))
	fn.label(endLabel)
	fn.regs.Release(iter)

	fn.loops = fn.loops[:len(fn.loops)-1]
}

// compileForIn lowers `for (x in obj)` over an object's own string
// keys (an array's indices, for an array obj), using the same
// iterator-driven loop shape as for-of: enumerability/prototype-chain
// keys are out of scope (spec's proxies/getters Non-goal neighbors
// this), so this always enumerates own keys only.
func (c *Compiler) compileForIn(fn *funcCtx, s *ast.ForInStatement) {
	obj := c.compileExpr(fn, s.Source, nil)
	getIter := fn.regs.Alloc()
	fn.emit(asm.Mov(asm.BuiltinValue{Name: "GetIterator"}, getIter))

	keysFn := fn.regs.Alloc()
	fn.emit(asm.Sub(obj.Value, asm.StringValue("keys"), keysFn))
	keysArr := fn.regs.Alloc()
	fn.emit(asm.Call(asm.RegisterValue{Register: keysFn}, asm.ArrayValue{}, keysArr))
	fn.regs.Release(keysFn)
	obj.Release(fn)

	iter := fn.regs.Alloc()
	fn.emit(asm.Call(asm.RegisterValue{Register: getIter}, asm.ArrayValue{Elements: []asm.Value{asm.RegisterValue{Register: keysArr}}}, iter))
	fn.regs.Release(getIter)
	fn.regs.Release(keysArr)

	testLabel := fn.newLabel("forin_test")
	continueLabel := fn.newLabel("forin_continue")
	endLabel := fn.newLabel("forin_end")
	fn.loops = append(fn.loops, loopLabels{breakLabel: endLabel, continueLabel: continueLabel})

	fn.label(testLabel)
	res := fn.regs.Alloc()
	fn.emit(asm.Next(asm.RegisterValue{Register: iter}, res))
	valueReg := fn.regs.Alloc()
	doneReg := fn.regs.Alloc()
	fn.emit(asm.UnpackIterRes(asm.RegisterValue{Register: res}, valueReg, doneReg))
	fn.regs.Release(res)
	fn.emit(asm.JmpCond(bytecode.OpJmpIf, asm.RegisterValue{Register: doneReg}, endLabel))
	fn.regs.Release(doneReg)

	c.bindForTarget(fn, s.Into, valueReg)
	fn.regs.Release(valueReg)

	c.compileStatement(fn, s.Body)
	fn.label(continueLabel)
	fn.emit(asm.Jmp(testLabel))
	fn.label(endLabel)
	fn.regs.Release(iter)

	fn.loops = fn.loops[:len(fn.loops)-1]
}

// bindForTarget assigns a for-of/for-in loop's per-iteration value
// into its `Into` clause, which goja models as either a fresh
// declaration (ForDeclaration) or a plain assignable expression
// (ForIntoExpression).
func (c *Compiler) bindForTarget(fn *funcCtx, into ast.ForInto, valueReg asm.Register) {
	switch t := into.(type) {
	case *ast.ForIntoVar:
		c.compileBindingDecl(fn, &ast.Binding{Target: t.Binding})
		if id, ok := t.Binding.(*ast.Identifier); ok {
			if reg, ok := c.resolveRef(fn, id); ok {
				fn.emit(asm.Mov(asm.RegisterValue{Register: valueReg}, reg))
			}
		}
	case *ast.ForIntoExpression:
		acc := c.compileTargetAccessor(fn, t.Expression)
		acc.Write(fn, asm.RegisterValue{Register: valueReg})
		acc.Release(fn)
	}
}

func (c *Compiler) compileBranch(fn *funcCtx, s *ast.BranchStatement) {
	if s.Label != nil {
		c.diags.Error(spanOf(int(s.Idx)), "labelled break/continue is not supported")
		return
	}
	if len(fn.loops) == 0 {
		c.diags.Error(spanOf(int(s.Idx)), "break/continue outside a loop")
		return
	}
	top := fn.loops[len(fn.loops)-1]
	if s.Token.String() == "break" {
		fn.emit(asm.Jmp(top.breakLabel))
	} else {
		fn.emit(asm.Jmp(top.continueLabel))
	}
}

func (c *Compiler) compileTry(fn *funcCtx, s *ast.TryStatement) {
	catchLabel := fn.newLabel("try_catch")
	endLabel := fn.newLabel("try_end")

	excReg := fn.regs.Alloc()
	fn.emit(asm.SetCatch(catchLabel, excReg))

	if s.Body != nil {
		c.compileStatements(fn, s.Body.List)
	}
	fn.emit(asm.UnsetCatch())
	fn.emit(asm.Jmp(endLabel))

	fn.label(catchLabel)
	if s.Catch != nil {
		if id, ok := s.Catch.Parameter.(*ast.Identifier); ok {
			if reg, ok := c.resolveRef(fn, id); ok {
				fn.emit(asm.Mov(asm.RegisterValue{Register: excReg}, reg))
			}
		}
		if s.Catch.Body != nil {
			c.compileStatements(fn, s.Catch.Body.List)
		}
	}
	fn.label(endLabel)
	fn.regs.Release(excReg)

	if s.Finally != nil {
		c.compileStatements(fn, s.Finally.List)
	}
}

func (c *Compiler) compileSwitch(fn *funcCtx, s *ast.SwitchStatement) {
	disc := c.compileExpr(fn, s.Discriminant, nil)
	endLabel := fn.newLabel("switch_end")
	fn.loops = append(fn.loops, loopLabels{breakLabel: endLabel, continueLabel: endLabel})

	caseLabels := make([]string, len(s.Body))
	for i, cs := range s.Body {
		caseLabels[i] = fn.newLabel("case")
		if cs.Test == nil {
			continue
		}
		test := c.compileExpr(fn, cs.Test, nil)
		cmp := fn.regs.Alloc()
		fn.emit(asm.BinOp(bytecode.OpTripleEq, disc.Value, test.Value, cmp))
		fn.emit(asm.JmpCond(bytecode.OpJmpIf, asm.RegisterValue{Register: cmp}, caseLabels[i]))
		fn.regs.Release(cmp)
		test.Release(fn)
	}
	disc.Release(fn)
	fn.emit(asm.Jmp(endLabel))

	for i, cs := range s.Body {
		fn.label(caseLabels[i])
		c.compileStatements(fn, cs.Consequent)
	}
	fn.label(endLabel)
	fn.loops = fn.loops[:len(fn.loops)-1]
}
