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

package asm

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Value is the IR-level operand type: a literal, a register
// reference, a pointer, or a builtin reference (spec §3's "Value
// enum" in the IR, mirroring the Rust asm.rs `Value` enum via a
// tagged interface since Go has no sum types).
type Value interface {
	String() string
	isAsmValue()
}

type VoidValue struct{}

func (VoidValue) String() string { return "void" }
func (VoidValue) isAsmValue()     {}

type UndefinedValue struct{}

func (UndefinedValue) String() string { return "undefined" }
func (UndefinedValue) isAsmValue()     {}

type NullValue struct{}

func (NullValue) String() string { return "null" }
func (NullValue) isAsmValue()     {}

type BoolValue bool

func (b BoolValue) String() string { return strconv.FormatBool(bool(b)) }
func (BoolValue) isAsmValue()       {}

type NumberValue float64

func (n NumberValue) String() string { return strconv.FormatFloat(float64(n), 'g', -1, 64) }
func (NumberValue) isAsmValue()       {}

type BigIntValue struct{ Int *big.Int }

func (b BigIntValue) String() string { return b.Int.String() + "n" }
func (BigIntValue) isAsmValue()       {}

type StringValue string

func (s StringValue) String() string { return strconv.Quote(string(s)) }
func (StringValue) isAsmValue()       {}

// ArrayValue and ObjectValue are array/object literals appearing
// directly as an IR operand (e.g. a fully-const array).
type ArrayValue struct{ Elements []Value }

func (a ArrayValue) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (ArrayValue) isAsmValue() {}

type ObjectEntry struct {
	Key   Value
	Value Value
}

type ObjectValue struct{ Entries []ObjectEntry }

func (o ObjectValue) String() string {
	parts := make([]string, len(o.Entries))
	for i, e := range o.Entries {
		parts[i] = fmt.Sprintf("%s: %s", e.Key, e.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (ObjectValue) isAsmValue() {}

// RegisterValue wraps a Register as an operand.
type RegisterValue struct{ Register Register }

func (r RegisterValue) String() string { return r.Register.String() }
func (RegisterValue) isAsmValue()       {}

// PointerValue wraps a Pointer as an operand (`@name`).
type PointerValue struct{ Pointer Pointer }

func (p PointerValue) String() string { return p.Pointer.String() }
func (PointerValue) isAsmValue()       {}

// BuiltinValue references a builtin by name (`$name`); resolved to a
// table index by the assembler.
type BuiltinValue struct{ Name string }

func (b BuiltinValue) String() string { return "$" + b.Name }
func (BuiltinValue) isAsmValue()       {}
