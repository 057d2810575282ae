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

// Package vm implements C4 (the stack-frame protocol) and C5 (the
// virtual machine driver): a stack of Frame implementations stepped by
// a VirtualMachine, giving copy-on-write value semantics, generator
// coroutines, and try/catch exceptions over the bytecode format from
// package bytecode (spec §4.4, §4.5).
package vm

import "github.com/siliconjungle/ValueScript/values"

// StepKind tags the variant of a FrameStep result (spec §4.4's
// `step() -> Continue | Pop(CallResult) | Push(frame) | Yield(v) |
// YieldStar(v)`).
type StepKind uint8

const (
	StepContinue StepKind = iota
	StepPush
	StepPop
	StepYield
	StepYieldStar
)

// CallResult is what a finishing frame hands back to its caller:
// the return value, and (per spec §9's Apply open question) the
// possibly-mutated `this` value, which the caller writes back only
// when it targeted a register for `this`.
type CallResult struct {
	Return values.Value
	This   values.Value
}

// FrameStep is the result of one Frame.Step call. Exactly one of
// Push/CallResult/Value is meaningful, selected by Kind.
type FrameStep struct {
	Kind       StepKind
	Push       Frame
	CallResult CallResult
	Value      values.Value
}

func contStep() (FrameStep, error) { return FrameStep{Kind: StepContinue}, nil }
func pushStep(f Frame) (FrameStep, error) {
	return FrameStep{Kind: StepPush, Push: f}, nil
}
func popStep(ret, this values.Value) (FrameStep, error) {
	return FrameStep{Kind: StepPop, CallResult: CallResult{Return: ret, This: this}}, nil
}
func yieldStep(v values.Value) (FrameStep, error) {
	return FrameStep{Kind: StepYield, Value: v}, nil
}
func yieldStarStep(v values.Value) (FrameStep, error) {
	return FrameStep{Kind: StepYieldStar, Value: v}, nil
}

// Frame is one activation record (spec §4.4, Glossary "Frame"). The
// VirtualMachine drives the top of a stack of Frames by repeatedly
// calling Step.
type Frame interface {
	// WriteThis installs the frame's `this` value before it starts
	// running; constThis marks it immutable (RequireMutableThis will
	// throw against it).
	WriteThis(constThis bool, value values.Value)
	// WriteParam appends one positional argument, in call order.
	WriteParam(value values.Value)
	// Step executes until the next suspension point. A non-nil error
	// that is a *operations.ThrownError carries a catchable thrown
	// value; any other error is a fatal bytecode-invariant violation
	// (spec §7) and aborts the run entirely.
	Step(vm *VirtualMachine) (FrameStep, error)
	// ApplyCallResult delivers a finished callee's result after a Pop,
	// writing it into whatever register the call instruction named.
	ApplyCallResult(CallResult)
	// CatchException offers a thrown value to this frame's active
	// catch setting. Returns true (and resumes the frame internally)
	// if it had one; false if the value should keep unwinding.
	CatchException(val values.Value) bool
	// Clone returns an independent copy of the frame's mutable state,
	// used when a generator's frame stack must be duplicated.
	Clone() Frame
}
