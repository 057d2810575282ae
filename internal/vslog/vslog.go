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

// Package vslog is a thin structured logger, gated by a verbosity
// flag rather than always-on: this is a toolchain invoked once per
// compile/run, not a long-running service, so it intentionally
// carries much less machinery than the parent node's own logging
// layer.
package vslog

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-stack/stack"
)

// Level gates which calls actually print.
type Level int

const (
	Silent Level = iota
	Info
	Debug
)

var (
	mu      sync.Mutex
	out     io.Writer = os.Stderr
	current Level     = Silent
)

// SetLevel sets the process-wide verbosity, driven by cmd/vsc's -v
// flag.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	current = l
}

// SetOutput redirects log output, used by tests to capture it.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

func logAt(l Level, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if current < l {
		return
	}
	// Skip logAt, Infof/Debugf: the caller of those is the frame worth
	// naming.
	caller := stack.Caller(2)
	fmt.Fprintf(out, "[%s] %s: %s\n", levelTag(l), caller, fmt.Sprintf(format, args...))
}

func levelTag(l Level) string {
	switch l {
	case Info:
		return "info"
	case Debug:
		return "debug"
	default:
		return "silent"
	}
}

// Infof logs at Info level.
func Infof(format string, args ...interface{}) { logAt(Info, format, args...) }

// Debugf logs at Debug level, intended for compiler/VM internals a
// developer would only want behind -v.
func Debugf(format string, args ...interface{}) { logAt(Debug, format, args...) }
