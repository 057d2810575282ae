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

	"github.com/dop251/goja/ast"

	"github.com/siliconjungle/ValueScript/analyzer"
	"github.com/siliconjungle/ValueScript/assembler"
	"github.com/siliconjungle/ValueScript/bytecode"
	"github.com/siliconjungle/ValueScript/internal/diag"
	"github.com/siliconjungle/ValueScript/values"
)

// emptyResult builds the minimal analyzer.Result an empty program
// needs: no resolved names, no captures, an empty diagnostics bag.
func emptyResult() *analyzer.Result {
	return &analyzer.Result{
		Names:     map[analyzer.NameID]*analyzer.Name{},
		RefTarget: map[ast.Expression]analyzer.NameID{},
		FuncOf:    map[ast.Node]*analyzer.FuncInfo{},
		Diags:     &diag.Bag{},
	}
}

func TestCompileEmptyProgramProducesRunnableExport(t *testing.T) {
	prog := &ast.Program{}

	c := New(emptyResult())
	mod, err := c.Compile(prog)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if len(mod.Definitions) != 1 {
		t.Fatalf("Compile produced %d definitions, want 1", len(mod.Definitions))
	}

	code, err := assembler.Assemble(mod)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	d := bytecode.NewDecoder(code)
	exported, _, err := d.DecodeValue(0, nil)
	if err != nil {
		t.Fatalf("DecodeValue returned error: %v", err)
	}
	if exported.Kind() != values.KindFunction {
		t.Fatalf("exported value kind = %v, want function", exported.Kind())
	}
}

func TestFatalDiagnosticInResultBagIsSeenByHasFatal(t *testing.T) {
	prog := &ast.Program{}
	result := emptyResult()
	result.Diags.Error(diag.Span{}, "synthetic fatal error for test coverage")

	c := New(result)
	c.Compile(prog) // populate c.diags from Compile's own pass too

	// Compile itself only fails on diagnostics *it* records; injecting
	// a fatal directly into the shared result.Diags (as analysis would)
	// is surfaced by the caller checking result.Diags.HasFatal() before
	// ever constructing a Compiler, exercised here via the bag directly.
	if !result.Diags.HasFatal() {
		t.Fatalf("expected HasFatal() to report true after an Error-level diagnostic")
	}
}
