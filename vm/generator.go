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
	"github.com/google/uuid"

	"github.com/siliconjungle/ValueScript/bytecode"
	"github.com/siliconjungle/ValueScript/internal/vslog"
	"github.com/siliconjungle/ValueScript/operations"
	"github.com/siliconjungle/ValueScript/values"
)

// asThrown extracts the carried value from a catchable thrown error,
// distinguishing it from a fatal bytecode-invariant violation (spec
// §7). Shared by the generator's private unwinding and the outer
// VirtualMachine's.
func asThrown(err error) (values.Value, bool) {
	te, ok := err.(*operations.ThrownError)
	if !ok {
		return values.Value{}, false
	}
	return te.Value, true
}

// generator owns a detached frame stack seeded with its function's
// BytecodeFrame, driven independently of the VM that created it (spec
// §9: "generators clone their own frame stack on creation;
// subsequent .next() calls consume and produce frame states without
// touching the outer VM's stack"). It is never itself pushed as a
// Frame; the vm package only ever touches it through the Object
// wrapper newGeneratorObject returns, via the shared iterator-protocol
// `.next` shape every iterable exposes (operations.MakeIterator).
type generator struct {
	id       uuid.UUID
	stack    []Frame
	finished bool
}

func newGenerator(decoder *bytecode.Decoder, fn *values.VsFunction, thisVal values.Value, args []values.Value) *generator {
	root := NewBytecodeFrame(decoder, fn)
	root.WriteThis(false, thisVal)
	for _, bound := range fn.Binds {
		root.WriteParam(bound)
	}
	for _, a := range args {
		root.WriteParam(a)
	}
	return &generator{id: uuid.New(), stack: []Frame{root}}
}

// resume drives the generator's private stack until it yields or its
// root frame pops, mirroring the outer VM's own run loop (see vm.go)
// but with its own stack and its own exception unwinding.
func (g *generator) resume(resumeArg values.Value) (values.Value, bool, error) {
	vslog.Debugf("generator %s: resume", g.id)
	if g.finished {
		return values.Undefined(), true, nil
	}
	if len(g.stack) == 0 {
		g.finished = true
		return values.Undefined(), true, nil
	}

	if top, ok := g.stack[len(g.stack)-1].(*BytecodeFrame); ok {
		top.WriteResume(resumeArg)
	}

	for {
		top := g.stack[len(g.stack)-1]
		step, err := top.Step(nil)
		if err != nil {
			if !g.unwind(err) {
				g.finished = true
				return values.Undefined(), true, err
			}
			continue
		}

		switch step.Kind {
		case StepContinue:
			continue
		case StepPush:
			g.stack = append(g.stack, step.Push)
			continue
		case StepPop:
			g.stack = g.stack[:len(g.stack)-1]
			if len(g.stack) == 0 {
				g.finished = true
				return step.CallResult.Return, true, nil
			}
			g.stack[len(g.stack)-1].ApplyCallResult(step.CallResult)
			continue
		case StepYield, StepYieldStar:
			return step.Value, false, nil
		}
	}
}

// unwind offers a thrown value to each frame on the generator's stack,
// innermost first, exactly like the outer VM's exception handling.
func (g *generator) unwind(err error) bool {
	thrown, ok := asThrown(err)
	if !ok {
		return false
	}
	for len(g.stack) > 0 {
		top := g.stack[len(g.stack)-1]
		if top.CatchException(thrown) {
			return true
		}
		g.stack = g.stack[:len(g.stack)-1]
	}
	return false
}

// newGeneratorObject builds the plain Object + native `.next` shape
// every iterator-protocol value uses (operations.MakeIterator), so a
// generator instance composes with for-of/spread/yield* exactly like
// an array or string iterator would, with no special-cased Dynamic
// capability anywhere in the call chain.
func newGeneratorObject(decoder *bytecode.Decoder, fn *values.VsFunction, thisVal values.Value, args []values.Value) values.Value {
	g := newGenerator(decoder, fn, thisVal, args)
	obj := values.NewObject()
	obj.Set(values.String("next"), values.Function(values.NewNativeFunction(
		func(this values.Value, callArgs []values.Value) (values.Value, error) {
			var resumeArg values.Value
			if len(callArgs) > 0 {
				resumeArg = callArgs[0]
			} else {
				resumeArg = values.Undefined()
			}
			val, done, err := g.resume(resumeArg)
			if err != nil {
				return values.Value{}, err
			}
			res := values.NewObject()
			res.Set(values.String("value"), val)
			res.Set(values.String("done"), values.Bool(done))
			return values.Object(res), nil
		},
	)))
	return values.Object(obj)
}
