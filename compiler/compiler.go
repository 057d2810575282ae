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

// Package compiler lowers a goja *ast.Program (plus the analyzer's
// resolution) into an asm.Module (spec §4.8): register allocation,
// expression/statement compilation, destructuring, control flow, and
// closure instantiation via `bind`.
package compiler

import (
	"fmt"

	"github.com/dop251/goja/ast"

	"github.com/siliconjungle/ValueScript/analyzer"
	"github.com/siliconjungle/ValueScript/asm"
	"github.com/siliconjungle/ValueScript/internal/diag"
)

// NameAllocator hands out fresh register names and returns them to a
// free pool on release, the way spec §4.8 describes; names are never
// reused across an active lifetime, only once explicitly released.
type NameAllocator struct {
	next int
	free []string
}

func NewNameAllocator() *NameAllocator { return &NameAllocator{} }

func (na *NameAllocator) Alloc() asm.Register {
	if n := len(na.free); n > 0 {
		name := na.free[n-1]
		na.free = na.free[:n-1]
		return asm.NewRegister(name)
	}
	na.next++
	return asm.NewRegister(fmt.Sprintf("tmp%d", na.next))
}

func (na *NameAllocator) Release(r asm.Register) {
	if r.IsIgnore() || r.IsReturn() || r.IsThis() {
		return
	}
	na.free = append(na.free, r.Name)
}

// CompiledExpression is the result of compiling one expression: an
// IR-level operand plus any temporaries the caller must release once
// it's done consuming them.
type CompiledExpression struct {
	Value           asm.Value
	NestedRegisters []asm.Register
}

// Release returns every nested temporary to fn's allocator.
func (c CompiledExpression) Release(fn *funcCtx) {
	for _, r := range c.NestedRegisters {
		fn.regs.Release(r)
	}
}

// loopLabels is one entry of the innermost-loop stack break/continue
// target (spec §4.8: "target the innermost LoopLabels stack entry;
// labeled forms are deliberately unimplemented").
type loopLabels struct {
	breakLabel    string
	continueLabel string
}

// funcCtx holds the compilation state for one function body: its
// register allocator, the name->register binding environment, the
// loop-label stack, and the instruction buffer being built.
type funcCtx struct {
	c    *Compiler
	fn   ast.Node // *ast.FunctionLiteral or *ast.Program
	regs *NameAllocator

	// bindings maps a resolved analyzer.NameID to the register holding
	// it in this function's activation record. Captured names (free in
	// this function, bound in an ancestor) are bound once, up front, to
	// the `bind` parameter registers the compiler reserves for them.
	bindings map[analyzer.NameID]asm.Register

	labelSeq int
	loops    []loopLabels

	body        []asm.FnLine
	isGenerator bool
}

func (fn *funcCtx) newLabel(prefix string) string {
	fn.labelSeq++
	return fmt.Sprintf("%s%d", prefix, fn.labelSeq)
}

func (fn *funcCtx) emit(in asm.Instruction) { fn.body = append(fn.body, in) }
func (fn *funcCtx) label(name string)       { fn.body = append(fn.body, asm.LabelLine{Label: asm.Label{Name: name}}) }

// Compiler drives one Program -> asm.Module lowering.
type Compiler struct {
	result *analyzer.Result
	diags  *diag.Bag

	module *asm.Module

	defSeq int
}

// New creates a Compiler over an already-analyzed program.
func New(result *analyzer.Result) *Compiler {
	return &Compiler{result: result, diags: &diag.Bag{}}
}

// Diagnostics returns every diagnostic recorded during Compile.
func (c *Compiler) Diagnostics() []diag.Diagnostic { return c.diags.Items() }

// freshDef reserves a new top-level Pointer name for a function/class
// definition (spec §3's Definitions are addressed by name).
func (c *Compiler) freshDef(hint string) asm.Pointer {
	c.defSeq++
	return asm.Pointer{Name: fmt.Sprintf("%s_%d", hint, c.defSeq)}
}

func (c *Compiler) addDef(ptr asm.Pointer, content asm.DefinitionContent) {
	c.module.Definitions = append(c.module.Definitions, &asm.Definition{Pointer: ptr, Content: content})
}

// Compile lowers prog's top-level body into a Module whose export is
// the compiled program wrapped as a zero-argument function (so
// running a script and calling an exported function share the same
// VM entry contract, spec §6's "module entry").
func (c *Compiler) Compile(prog *ast.Program) (*asm.Module, error) {
	c.module = &asm.Module{}

	entryPtr := c.freshDef("main")
	fnCtx := &funcCtx{c: c, fn: prog, regs: NewNameAllocator(), bindings: make(map[analyzer.NameID]asm.Register)}

	c.compileStatements(fnCtx, prog.Body)
	fnCtx.emit(asm.End())

	c.addDef(entryPtr, &asm.Function{Parameters: nil, Body: fnCtx.body})
	c.module.Export = asm.PointerValue{Pointer: entryPtr}

	if c.diags.HasFatal() {
		return nil, fmt.Errorf("compile: %d fatal diagnostic(s)", len(c.diags.Items()))
	}
	return c.module, nil
}
