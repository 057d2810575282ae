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

package vm

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/siliconjungle/ValueScript/bytecode"
	"github.com/siliconjungle/ValueScript/internal/vslog"
	"github.com/siliconjungle/ValueScript/values"
)

// VirtualMachine drives a stack of Frames (spec §4.5). It is
// single-use: Run executes one top-level call to completion (or to an
// uncaught throw) and returns.
type VirtualMachine struct {
	id      uuid.UUID
	decoder *bytecode.Decoder
	stack   []Frame
}

// New wraps a decoded bytecode program. decoder must outlive every
// value the VM produces (Pointer/Function values borrow it). Each
// instance gets a random ID so -v debug logs from concurrent REPL or
// inspector sessions can be told apart at a glance.
func New(decoder *bytecode.Decoder) *VirtualMachine {
	return &VirtualMachine{id: uuid.New(), decoder: decoder}
}

// ID identifies this VM instance for log correlation.
func (vm *VirtualMachine) ID() uuid.UUID { return vm.id }

// rootFrame is the synthetic first stack entry (spec §4.5): its only
// purpose is to receive the final CallResult once the entry
// function's frame pops, so the run loop's `stack.len > 1` condition
// has something to stop at.
type rootFrame struct {
	result CallResult
	got    bool
}

func (r *rootFrame) WriteThis(bool, values.Value)        {}
func (r *rootFrame) WriteParam(values.Value)              {}
func (r *rootFrame) Step(*VirtualMachine) (FrameStep, error) { return contStep() }
func (r *rootFrame) ApplyCallResult(cr CallResult)        { r.result = cr; r.got = true }
func (r *rootFrame) CatchException(values.Value) bool     { return false }
func (r *rootFrame) Clone() Frame                          { clone := *r; return &clone }

// Run calls fn(thisVal, args...) and drives the VM's stack to
// completion, returning the entry function's return value or the
// uncaught thrown value as an error (spec §4.5's run loop).
func (vm *VirtualMachine) Run(fn *values.VsFunction, thisVal values.Value, args []values.Value) (values.Value, error) {
	vslog.Debugf("vm %s: run starting", vm.id)
	root := &rootFrame{}
	entry := NewBytecodeFrame(vm.decoder, fn)
	entry.WriteThis(false, thisVal)
	for _, bound := range fn.Binds {
		entry.WriteParam(bound)
	}
	for _, a := range args {
		entry.WriteParam(a)
	}
	vm.stack = []Frame{root, entry}

	for len(vm.stack) > 1 {
		top := vm.stack[len(vm.stack)-1]
		step, err := top.Step(vm)
		if err != nil {
			thrown, ok := asThrown(err)
			if !ok {
				return values.Value{}, err
			}
			if !vm.unwind(thrown) {
				return values.Value{}, err
			}
			continue
		}

		switch step.Kind {
		case StepContinue:
			continue
		case StepPush:
			vm.stack = append(vm.stack, step.Push)
		case StepPop:
			vm.stack = vm.stack[:len(vm.stack)-1]
			vm.stack[len(vm.stack)-1].ApplyCallResult(step.CallResult)
		case StepYield, StepYieldStar:
			// A bare yield outside any generator-construction call site
			// is a bytecode-invariant violation: only the generator's
			// own private resume loop (see generator.go) ever drives a
			// frame that can legally produce this.
			return values.Value{}, fmt.Errorf("vm: yield outside a generator frame")
		}
	}

	return root.result.Return, nil
}

// unwind offers a thrown value to each frame from the top down,
// popping any frame that doesn't catch it (spec §4.5's exception
// handling).
func (vm *VirtualMachine) unwind(thrown values.Value) bool {
	for len(vm.stack) > 1 {
		top := vm.stack[len(vm.stack)-1]
		if top.CatchException(thrown) {
			return true
		}
		vm.stack = vm.stack[:len(vm.stack)-1]
	}
	return false
}
