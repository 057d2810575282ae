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

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
	"github.com/dop251/goja/parser"
	"golang.org/x/sync/errgroup"

	"github.com/siliconjungle/ValueScript/analyzer"
	"github.com/siliconjungle/ValueScript/asm"
	"github.com/siliconjungle/ValueScript/assembler"
	"github.com/siliconjungle/ValueScript/compiler"
	"github.com/siliconjungle/ValueScript/internal/diag"
	"github.com/siliconjungle/ValueScript/internal/vslog"
	"github.com/siliconjungle/ValueScript/optimize"
)

// parseSource runs goja's own lexer/parser over source; this subset
// never reimplements surface syntax (spec.md's Non-goals), so parsing
// is entirely goja's job.
func parseSource(filename, source string) (*ast.Program, error) {
	return parser.ParseFile(new(file.FileSet), filename, source, 0)
}

// compileModule runs the analyzer and compiler over an already-parsed
// program, returning the IR module and any fatal compiler diagnostics
// as a single error.
func compileModule(prog *ast.Program) (*asm.Module, []diag.Diagnostic, error) {
	result := analyzer.Analyze(prog)
	if result.Diags.HasFatal() {
		return nil, result.Diags.Items(), fmt.Errorf("analysis: %d fatal diagnostic(s)", len(result.Diags.Items()))
	}

	c := compiler.New(result)
	mod, err := c.Compile(prog)
	diags := append(append([]diag.Diagnostic{}, result.Diags.Items()...), c.Diagnostics()...)
	if err != nil {
		return nil, diags, err
	}
	return mod, diags, nil
}

// buildBytecode runs the full source -> bytecode pipeline. When
// runOptimize is set, the assembled-ready module is peephole-optimized
// (constant folding, common-subexpression and dead-code elimination)
// before being handed to the assembler.
func buildBytecode(filename, source string, runOptimize bool) ([]byte, []diag.Diagnostic, error) {
	prog, err := parseSource(filename, source)
	if err != nil {
		return nil, nil, fmt.Errorf("parse: %w", err)
	}
	mod, diags, err := compileModule(prog)
	if err != nil {
		return nil, diags, err
	}
	if runOptimize {
		optimize.Optimize(mod)
	}
	code, err := assembler.Assemble(mod)
	if err != nil {
		return nil, diags, fmt.Errorf("assemble: %w", err)
	}
	return code, diags, nil
}

// compileBatch compiles each of filenames to a sibling .vsb file
// concurrently, fanning out with errgroup: one file's parse/analyze
// error doesn't block the others from finishing, but the first fatal
// error is what the whole batch ultimately reports.
func compileBatch(filenames []string, runOptimize bool) error {
	var g errgroup.Group
	for _, filename := range filenames {
		filename := filename
		g.Go(func() error {
			source, err := os.ReadFile(filename)
			if err != nil {
				return err
			}
			code, diags, err := buildBytecode(filename, string(source), runOptimize)
			printDiags(diags)
			if err != nil {
				return fmt.Errorf("%s: %w", filename, err)
			}
			out := strings.TrimSuffix(filename, ".js") + ".vsb"
			if err := os.WriteFile(out, code, 0o644); err != nil {
				return fmt.Errorf("%s: %w", filename, err)
			}
			vslog.Debugf("batch: compiled %s -> %s", filename, out)
			return nil
		})
	}
	return g.Wait()
}
