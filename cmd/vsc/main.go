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

// Command vsc is the ValueScript compiler and runner.
//
// Usage:
//
//	vsc [flags] <source.js>
//	vsc -emit=bytecode <a.js> <b.js> ...   // batch mode: each file -> sibling .vsb
//
// Flags:
//
//	-o <output>      Output file (default: stdout)
//	-emit <stage>    Emit stage: ast, asm, bytecode, run (default: run)
//	-optimize        Enable optimization passes (default: true)
//	-verify          Run the bytecode verifier before executing (default: true)
//	-version         Print version and exit
//	-disassemble     Disassemble a bytecode file's definition table
//	-repl            Start an interactive read-eval-print loop
//	-serve <addr>    Start a debug inspector HTTP server
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/siliconjungle/ValueScript/internal/diag"
	"github.com/siliconjungle/ValueScript/internal/vslog"
	"github.com/siliconjungle/ValueScript/optimize"
)

const version = "0.1.0"

var stdout = colorable.NewColorableStdout()

func init() {
	// color.NoColor governs both internal/diag's and values.Codify's
	// ANSI output; when stdout isn't a real terminal (piped to a file,
	// redirected in CI) disable it so -emit=run/-disassemble output
	// stays grep-able.
	if f, ok := stdout.(*os.File); ok {
		color.NoColor = !isatty.IsTerminal(f.Fd())
	}
}

func main() {
	var (
		output      = flag.String("o", "", "Output file (default: stdout)")
		emit        = flag.String("emit", "run", "Emit stage: ast, asm, bytecode, run")
		doOptimize  = flag.Bool("optimize", true, "Enable optimization passes")
		verify      = flag.Bool("verify", true, "Run the bytecode verifier before executing")
		ver         = flag.Bool("version", false, "Print version and exit")
		disassemble = flag.Bool("disassemble", false, "Disassemble a bytecode file's definition table")
		repl        = flag.Bool("repl", false, "Start an interactive read-eval-print loop")
		serveAddr   = flag.String("serve", "", "Start a debug inspector HTTP server on addr")
		verbose     = flag.Bool("v", false, "Enable debug logging")
	)
	flag.Parse()

	if *verbose {
		vslog.SetLevel(vslog.Debug)
	}

	if *ver {
		fmt.Fprintf(stdout, "vsc %s\n", version)
		return
	}

	if *serveAddr != "" {
		if err := serve(*serveAddr); err != nil {
			fatal(err)
		}
		return
	}

	if *repl {
		runRepl()
		return
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: vsc [flags] <source.js>")
		os.Exit(1)
	}

	if flag.NArg() > 1 {
		// Batch mode: multiple entry files given at once, each compiled
		// to a sibling .vsb independently of the others. -emit/-o don't
		// apply to a batch (there's no single output to redirect).
		if *emit != "bytecode" {
			fmt.Fprintln(os.Stderr, "multiple files given: only -emit=bytecode supports batch mode")
			os.Exit(1)
		}
		if err := compileBatch(flag.Args(), *doOptimize); err != nil {
			fatal(err)
		}
		return
	}

	filename := flag.Arg(0)
	source, err := os.ReadFile(filename)
	if err != nil {
		fatal(err)
	}

	if *disassemble {
		code, err := os.ReadFile(filename)
		if err != nil {
			fatal(err)
		}
		if err := disassembleFile(stdout, code); err != nil {
			fatal(err)
		}
		return
	}

	switch *emit {
	case "ast":
		prog, err := parseSource(filename, string(source))
		if err != nil {
			fatal(err)
		}
		fmt.Fprintf(stdout, "%#v\n", prog)

	case "asm":
		prog, err := parseSource(filename, string(source))
		if err != nil {
			fatal(err)
		}
		mod, diags, err := compileModule(prog)
		printDiags(diags)
		if err != nil {
			fatal(err)
		}
		if *doOptimize {
			optimize.Optimize(mod)
		}
		fmt.Fprintln(stdout, mod.String())

	case "bytecode":
		code, diags, err := buildBytecode(filename, string(source), *doOptimize)
		printDiags(diags)
		if err != nil {
			fatal(err)
		}
		if err := writeOutput(*output, code); err != nil {
			fatal(err)
		}

	case "run":
		// A precompiled bytecode file runs directly (mmap'd, never
		// recompiled); anything else is treated as source and goes
		// through the full parse/analyze/compile/assemble pipeline.
		if isBytecodeFile(filename) {
			result, err := runFile(filename)
			if err != nil {
				fatal(err)
			}
			fmt.Fprintln(stdout, result)
			break
		}

		code, diags, err := buildBytecode(filename, string(source), *doOptimize)
		printDiags(diags)
		if err != nil {
			fatal(err)
		}
		if *verify {
			if err := verifyBytecode(code); err != nil {
				fatal(err)
			}
		}
		result, err := run(code)
		if err != nil {
			fatal(err)
		}
		fmt.Fprintln(stdout, result)

	default:
		fmt.Fprintf(os.Stderr, "unknown emit stage: %s\n", *emit)
		os.Exit(1)
	}
}

func printDiags(items []diag.Diagnostic) {
	if len(items) > 0 {
		diag.Print(items)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
	os.Exit(1)
}

func isBytecodeFile(path string) bool {
	return strings.HasSuffix(path, ".vsb")
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
