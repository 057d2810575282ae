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

// Package diag implements the {level, message, span} diagnostics spec
// §7 requires from the analyzer and compiler: lints and
// compiler-debug notes are collected and printed without failing a
// build, errors and internal errors do.
package diag

import (
	"fmt"

	"github.com/fatih/color"
)

// Level orders diagnostics from informational to fatal.
type Level int

const (
	Lint Level = iota
	CompilerDebug
	Error
	InternalError
)

func (l Level) String() string {
	switch l {
	case Lint:
		return "lint"
	case CompilerDebug:
		return "debug"
	case Error:
		return "error"
	case InternalError:
		return "internal error"
	default:
		return "unknown"
	}
}

// Fails reports whether a diagnostic at this level should fail the
// build (cmd/vsc exits non-zero).
func (l Level) Fails() bool { return l >= Error }

// Span is a source range, carried the way goja's file.Idx positions
// are: a single offset is enough for most diagnostics, but compiler
// passes that know both ends of an offending node set End too.
type Span struct {
	Start int
	End   int
	File  string
	Line  int
	Col   int
}

func (s Span) String() string {
	if s.File == "" {
		return fmt.Sprintf("%d:%d", s.Line, s.Col)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Col)
}

// Diagnostic is one reported item.
type Diagnostic struct {
	Level   Level
	Message string
	Span    Span
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Span, d.Level, d.Message)
}

// Bag accumulates diagnostics across an analysis/compilation run, the
// way the teacher's parser accumulates *ParseError lists before
// deciding whether to fail.
type Bag struct {
	items []Diagnostic
}

func (b *Bag) Add(level Level, span Span, format string, args ...interface{}) {
	b.items = append(b.items, Diagnostic{Level: level, Message: fmt.Sprintf(format, args...), Span: span})
}

func (b *Bag) Lint(span Span, format string, args ...interface{}) {
	b.Add(Lint, span, format, args...)
}

func (b *Bag) Debug(span Span, format string, args ...interface{}) {
	b.Add(CompilerDebug, span, format, args...)
}

func (b *Bag) Error(span Span, format string, args ...interface{}) {
	b.Add(Error, span, format, args...)
}

func (b *Bag) Internal(span Span, format string, args ...interface{}) {
	b.Add(InternalError, span, format, args...)
}

// Items returns every diagnostic recorded so far, in report order.
func (b *Bag) Items() []Diagnostic { return b.items }

// HasFatal reports whether any recorded diagnostic should fail the
// build.
func (b *Bag) HasFatal() bool {
	for _, d := range b.items {
		if d.Level.Fails() {
			return true
		}
	}
	return false
}

// Print writes every diagnostic to standard output through the
// fatih/color printers, colorized by level; the color package leaves
// the color codes out when color.NoColor is set (cmd/vsc sets it once
// at startup when stdout is not a terminal).
func Print(items []Diagnostic) {
	for _, d := range items {
		line := d.String()
		switch d.Level {
		case Lint:
			color.Yellow("%s", line)
		case CompilerDebug:
			color.Cyan("%s", line)
		case Error, InternalError:
			color.Red("%s", line)
		}
	}
}
