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
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
)

const replHistoryFile = ".vsc_history"

// runRepl drives a read-eval-print loop: each line is compiled and run
// as its own fresh program (spec scope has no persistent top-level
// binding environment across statements to share between REPL turns,
// so each evaluation is independent — a limitation worth knowing,
// not hidden).
func runRepl() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	loadHistory(line)
	defer saveHistory(line)

	fmt.Println("vsc repl — each line runs as an independent program; Ctrl-D to exit")

	for {
		input, err := line.Prompt("vs> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				return
			}
			fmt.Fprintln(stdout, color.RedString("error: %v", err))
			return
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)

		code, diags, err := buildBytecode("<repl>", wrapReplExpression(input), true)
		printDiags(diags)
		if err != nil {
			fmt.Fprintln(stdout, color.RedString("error: %v", err))
			continue
		}
		result, err := run(code)
		if err != nil {
			fmt.Fprintln(stdout, color.RedString("error: %v", err))
			continue
		}
		fmt.Fprintln(stdout, color.GreenString(result))
	}
}

// wrapReplExpression lets a bare expression ("1 + 1") print its value
// the same way a `return` statement's top-level export does, without
// requiring the user to type `return` themselves.
func wrapReplExpression(input string) string {
	trimmed := strings.TrimSpace(input)
	if strings.HasSuffix(trimmed, ";") || strings.Contains(trimmed, "\n") {
		return input
	}
	return "return (" + trimmed + ");"
}

func loadHistory(line *liner.State) {
	f, err := openHistoryFile()
	if err != nil {
		return
	}
	defer f.Close()
	line.ReadHistory(f)
}

func saveHistory(line *liner.State) {
	f, err := createHistoryFile()
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return replHistoryFile
	}
	return filepath.Join(home, replHistoryFile)
}

func openHistoryFile() (*os.File, error)   { return os.Open(historyPath()) }
func createHistoryFile() (*os.File, error) { return os.Create(historyPath()) }
