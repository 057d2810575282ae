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
	"testing"

	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"

	"github.com/siliconjungle/ValueScript/analyzer"
	"github.com/siliconjungle/ValueScript/assembler"
	"github.com/siliconjungle/ValueScript/bytecode"
	"github.com/siliconjungle/ValueScript/operations"
	"github.com/siliconjungle/ValueScript/values"
	"github.com/siliconjungle/ValueScript/vm"
)

// runSource drives source text through the full parse -> analyze ->
// compile -> assemble -> decode -> execute pipeline and returns the
// default export's return value, stringified.
func runSource(t *testing.T, source string) string {
	t.Helper()

	prog, err := parser.ParseFile(new(file.FileSet), "test.js", source, 0)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	result := analyzer.Analyze(prog)
	if result.Diags.HasFatal() {
		t.Fatalf("analyze: fatal diagnostics: %v", result.Diags.Items())
	}

	c := New(result)
	mod, err := c.Compile(prog)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	code, err := assembler.Assemble(mod)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	d := bytecode.NewDecoder(code)
	exported, _, err := d.DecodeValue(0, nil)
	if err != nil {
		t.Fatalf("DecodeValue: %v", err)
	}
	fn := exported.FunctionHandle()
	if fn == nil {
		t.Fatalf("module export is not a function (got %s)", exported.Kind())
	}

	machine := vm.New(d)
	out, err := machine.Run(fn, values.Undefined(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return operations.Stringify(out)
}

// TestForOfLoopVariableIsBound is a regression test for a bug where
// the for-of/for-in loop variable was never hoisted or resolved: every
// body read of it compiled to undefined instead of the per-iteration
// value.
func TestForOfLoopVariableIsBound(t *testing.T) {
	got := runSource(t, `
		const arr = [1, 2, 3];
		const out = [];
		for (const v of arr) {
			out.push(v);
		}
		return out;
	`)
	want := "[1, 2, 3]"
	if got != want {
		t.Fatalf("for-of loop variable: got %q, want %q", got, want)
	}
}

// TestForInLoopVariableIsBound exercises the ForInStatement twin of
// TestForOfLoopVariableIsBound.
func TestForInLoopVariableIsBound(t *testing.T) {
	got := runSource(t, `
		const obj = { a: 1, b: 2 };
		const keys = [];
		for (const k in obj) {
			keys.push(k);
		}
		return keys;
	`)
	want := `["a", "b"]`
	if got != want {
		t.Fatalf("for-in loop variable: got %q, want %q", got, want)
	}
}

// TestArrayDestructuringDeclaration is a regression test for
// destructuring declarations never hoisting or resolving their bound
// names (`const [a, b] = arr`).
func TestArrayDestructuringDeclaration(t *testing.T) {
	got := runSource(t, `
		const [a, b] = [1, 2];
		return a + b;
	`)
	want := "3"
	if got != want {
		t.Fatalf("array destructuring declaration: got %q, want %q", got, want)
	}
}

// TestObjectDestructuringDeclaration is the shorthand-object twin of
// TestArrayDestructuringDeclaration (`const {x, y} = obj`).
func TestObjectDestructuringDeclaration(t *testing.T) {
	got := runSource(t, `
		const obj = { x: 10, y: 20 };
		const { x, y } = obj;
		return x + y;
	`)
	want := "30"
	if got != want {
		t.Fatalf("object destructuring declaration: got %q, want %q", got, want)
	}
}
