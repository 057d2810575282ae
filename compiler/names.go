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
	"fmt"

	"github.com/dop251/goja/ast"

	"github.com/siliconjungle/ValueScript/analyzer"
	"github.com/siliconjungle/ValueScript/asm"
)

// regFor returns the register a resolved binding lives in, allocating
// a fresh named register on first use (a declaration or, for a
// captured name, the bind-parameter reserved for it during function
// setup).
func (fn *funcCtx) regFor(id analyzer.NameID) asm.Register {
	if r, ok := fn.bindings[id]; ok {
		return r
	}
	n := fn.c.result.Names[id]
	name := "ignore"
	if n != nil {
		name = fmt.Sprintf("v%d_%s", id, sanitize(n.Original))
	} else {
		name = fmt.Sprintf("v%d", id)
	}
	r := asm.NewRegister(name)
	fn.bindings[id] = r
	return r
}

func sanitize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			out = append(out, r)
		} else {
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "anon"
	}
	return string(out)
}

// resolveRef returns the register for an Identifier's resolution, if
// the analyzer resolved it (an unresolved reference is a global/
// builtin lookup, which this subset doesn't model — it compiles to
// `undefined`, flagged as a lint).
func (c *Compiler) resolveRef(fn *funcCtx, id *ast.Identifier) (asm.Register, bool) {
	nameID, ok := c.result.RefTarget[id]
	if !ok {
		return asm.Register{}, false
	}
	return fn.regFor(nameID), true
}

// compileFunctionBindings wires a new function's own funcCtx: capture
// parameters first (in analyzer.CapturesOf order, matching the bind
// array the call site builds), then the function's declared
// parameters, then its own name (for a named function expression's
// self-reference) and hoisted locals lazily via regFor.
func (c *Compiler) compileFunctionBindings(outer *funcCtx, fnNode ast.Node, fn *ast.FunctionLiteral) (*funcCtx, []asm.Register) {
	child := &funcCtx{c: c, fn: fnNode, regs: NewNameAllocator(), bindings: make(map[analyzer.NameID]asm.Register), isGenerator: fn.IsGenerator}

	captures := c.result.CapturesOf(fnNode)
	params := make([]asm.Register, 0, len(captures)+len(paramList(fn)))
	for _, cap := range captures {
		r := child.regFor(cap.ID)
		params = append(params, r)
	}
	for _, p := range paramList(fn) {
		name := paramName(p)
		if name == "" {
			r := child.regs.Alloc()
			params = append(params, r)
			continue
		}
		nameID, ok := paramNameID(c, fnNode, name)
		var r asm.Register
		if ok {
			r = child.regFor(nameID)
		} else {
			r = asm.NewRegister(sanitize(name))
		}
		params = append(params, r)
	}
	return child, params
}

func paramList(fn *ast.FunctionLiteral) []*ast.Binding {
	if fn.ParameterList == nil {
		return nil
	}
	return fn.ParameterList.List
}

func paramName(p *ast.Binding) string {
	if p == nil {
		return ""
	}
	if id, ok := p.Target.(*ast.Identifier); ok {
		return id.Name
	}
	return ""
}

// paramNameID looks up the NameID the analyzer assigned to a
// function's parameter by name; parameters are declared in the
// function's own top-level scope, so a direct map scan over the
// analyzer's Names for this owner is sufficient (small N, no need for
// an auxiliary index).
func paramNameID(c *Compiler, fnNode ast.Node, name string) (analyzer.NameID, bool) {
	fi, ok := c.result.FuncOf[fnNode]
	if !ok {
		return 0, false
	}
	for id, n := range c.result.Names {
		if n.OwnerFunc == fi && n.Kind == analyzer.KindParameter && n.Original == name {
			return id, true
		}
	}
	return 0, false
}

// capturedValuesArray builds the `bind` instruction's captured-value
// operand: an ArrayValue of the outer function's current registers
// for each captured Name, in the same order compileFunctionBindings
// used to assign capture-parameter registers.
func (c *Compiler) capturedValuesArray(outer *funcCtx, fnNode ast.Node) asm.Value {
	captures := c.result.CapturesOf(fnNode)
	elems := make([]asm.Value, 0, len(captures))
	for _, cap := range captures {
		elems = append(elems, asm.RegisterValue{Register: outer.regFor(cap.ID)})
	}
	return asm.ArrayValue{Elements: elems}
}
