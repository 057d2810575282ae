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

// Register names a value slot within a function's activation record.
// `return`, `this`, and `ignore` are reserved names (spec §3/§4.8);
// Take signals a last-use destructive read (`%!name` in text form,
// spec §6/Glossary "Take register").
type Register struct {
	Name string
	Take bool
}

func NewRegister(name string) Register   { return Register{Name: name} }
func (r Register) Taken() Register       { r.Take = true; return r }
func (r Register) IsIgnore() bool        { return r.Name == "ignore" }
func (r Register) IsReturn() bool        { return r.Name == "return" }
func (r Register) IsThis() bool          { return r.Name == "this" }

func (r Register) String() string {
	if r.Take {
		return "%!" + r.Name
	}
	return "%" + r.Name
}

func ReturnRegister() Register { return Register{Name: "return"} }
func ThisRegister() Register   { return Register{Name: "this"} }
func IgnoreRegister() Register { return Register{Name: "ignore"} }

// Label is a jump target definition (`name:`); LabelRef is a
// reference to one (`:name`).
type Label struct{ Name string }

func (l Label) String() string { return l.Name + ":" }

type LabelRef struct{ Name string }

func (l LabelRef) String() string { return ":" + l.Name }

// FnLine is one line of a function body: an Instruction, a Label, an
// Empty (blank) line, or a Comment (spec §3).
type FnLine interface {
	String() string
	isFnLine()
}

type LabelLine struct{ Label Label }

func (l LabelLine) String() string { return l.Label.String() }
func (LabelLine) isFnLine()         {}

type EmptyLine struct{}

func (EmptyLine) String() string { return "" }
func (EmptyLine) isFnLine()       {}

type CommentLine struct{ Text string }

func (c CommentLine) String() string { return "// " + c.Text }
func (CommentLine) isFnLine()         {}
