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

package values

// NativeFunc is a host-implemented function body (spec §9's
// capability-based extension point: "the Static/Dynamic tags allow
// extending with new native capabilities without a new opcode").
// VsFunction.Native lets a Function value skip the bytecode frame
// entirely and run a Go closure instead — used for builtin
// constructors (Error/TypeError/...) where there is no bytecode body
// to point at.
type NativeFunc func(this Value, args []Value) (Value, error)

// VsFunction is the shared container backing the Function variant
// (spec §3). StartOffset is the byte offset into the owning
// bytecode's Function body where a BytecodeFrame should begin
// execution; Binds holds values captured at the function's bind site,
// prepended to caller-supplied arguments on invocation. Native, when
// non-nil, takes precedence over the bytecode body.
type VsFunction struct {
	BytecodePointer int // offset of the Function definition in bytecode
	IsGenerator     bool
	RegisterCount   uint8
	ParameterCount  uint8
	StartOffset     int
	Binds           []Value
	Native          NativeFunc
	refs            int32
}

func NewFunction(ptr int, isGenerator bool, registerCount, parameterCount uint8, startOffset int) *VsFunction {
	return &VsFunction{
		BytecodePointer: ptr,
		IsGenerator:     isGenerator,
		RegisterCount:   registerCount,
		ParameterCount:  parameterCount,
		StartOffset:     startOffset,
		refs:            1,
	}
}

// NewNativeFunction builds a VsFunction whose body is a Go closure
// rather than a bytecode pointer.
func NewNativeFunction(fn NativeFunc) *VsFunction {
	return &VsFunction{Native: fn, refs: 1}
}

// Bind returns a new VsFunction sharing the same bytecode but with
// capturedValues appended after any existing binds (spec §4.7's "a
// captured function is instantiated at a use-site via a bind
// instruction").
func (f *VsFunction) Bind(capturedValues []Value) *VsFunction {
	binds := make([]Value, 0, len(f.Binds)+len(capturedValues))
	binds = append(binds, f.Binds...)
	binds = append(binds, capturedValues...)
	return &VsFunction{
		BytecodePointer: f.BytecodePointer,
		IsGenerator:     f.IsGenerator,
		RegisterCount:   f.RegisterCount,
		ParameterCount:  f.ParameterCount,
		StartOffset:     f.StartOffset,
		Binds:           binds,
		Native:          f.Native,
		refs:            1,
	}
}
