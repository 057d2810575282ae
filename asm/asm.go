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

// Package asm is the in-memory assembly IR (spec §4.6, §6): modules,
// definitions, functions, instructions, registers, and labels, plus
// the textual rendering that is "the canonical dump and test fixture
// format" per spec §6.
package asm

import "fmt"

// Module is the top-level compilation unit: a default export, a
// star-export object, and the definitions referenced from them.
type Module struct {
	Export     Value
	ExportStar []NamedValue
	Definitions []*Definition
}

// NamedValue is one entry of a star-export object.
type NamedValue struct {
	Name  string
	Value Value
}

// Pointer is a symbolic reference to a Definition by name (`@name`).
type Pointer struct {
	Name string
}

func (p Pointer) String() string { return "@" + p.Name }

// Definition binds a Pointer to content of kind Function, Class,
// Value, or Lazy (spec §3's "Definitions").
type Definition struct {
	Pointer Pointer
	Content DefinitionContent
}

// DefinitionContent is implemented by Function, Class, Value (as a
// standalone const definition), and Lazy.
type DefinitionContent interface {
	isDefinitionContent()
	String() string
}

// Function is a parameter list plus a body of FnLines.
type Function struct {
	IsGenerator bool
	Parameters  []Register
	Body        []FnLine
}

func (*Function) isDefinitionContent() {}

func (f *Function) String() string {
	kw := "function"
	if f.IsGenerator {
		kw = "function*"
	}
	s := kw + "("
	for i, p := range f.Parameters {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	s += ") {\n"
	for _, line := range f.Body {
		s += "  " + line.String() + "\n"
	}
	s += "}"
	return s
}

// Class bundles a constructor Pointer/Value, an instance prototype
// value, and a static members object.
type Class struct {
	Constructor       Value
	InstancePrototype Value
	Static            Value
}

func (*Class) isDefinitionContent() {}

func (c *Class) String() string {
	return fmt.Sprintf("class { constructor: %s, prototype: %s, static: %s }",
		c.Constructor, c.InstancePrototype, c.Static)
}

// Lazy wraps a Function that should be evaluated once, the first time
// its Pointer is dereferenced (module-level lazy initializers).
type Lazy struct {
	Fn *Function
}

func (*Lazy) isDefinitionContent() {}
func (l *Lazy) String() string     { return "lazy " + l.Fn.String() }

// ValueDef is a plain constant Definition (a top-level literal bound
// to a Pointer, as opposed to a Function/Class/Lazy).
type ValueDef struct {
	Value Value
}

func (*ValueDef) isDefinitionContent() {}
func (v *ValueDef) String() string     { return v.Value.String() }

func (d *Definition) String() string {
	return fmt.Sprintf("%s = %s", d.Pointer, d.Content)
}

func (m *Module) String() string {
	s := "export " + m.Export.String() + "\n"
	if len(m.ExportStar) > 0 {
		s += "export * {\n"
		for _, nv := range m.ExportStar {
			s += fmt.Sprintf("  %s: %s\n", nv.Name, nv.Value)
		}
		s += "}\n"
	}
	for _, def := range m.Definitions {
		s += "\n" + def.String() + "\n"
	}
	return s
}
