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
	"sort"

	"github.com/siliconjungle/ValueScript/bytecode"
	"github.com/siliconjungle/ValueScript/operations"
	"github.com/siliconjungle/ValueScript/values"
)

// ArrayMappingFrame drives map/filter/reduce/forEach/some/every/find/
// findIndex/sort by pushing one callback invocation at a time and
// resuming from its result, since the callback may be real bytecode
// that needs the VM's own Push/Pop cycling rather than a direct Go
// call (spec §4.4's "special frames (cat, array-mapping)").
type ArrayMappingFrame struct {
	decoder  *bytecode.Decoder
	method   string
	array    *values.VsArray
	callback values.Value

	index         int
	awaitingResult bool
	pendingResult values.Value
	currentElement values.Value

	out []values.Value
	acc values.Value

	reduceEmptyErr bool

	sortI, sortJ int
	sortKey      values.Value
	sortStarted  bool
}

func newArrayMappingFrame(decoder *bytecode.Decoder, method string, arr *values.VsArray, args []values.Value) *ArrayMappingFrame {
	m := &ArrayMappingFrame{decoder: decoder, method: method, array: arr}
	if len(args) > 0 {
		m.callback = args[0]
	}
	if method == "reduce" {
		if len(args) > 1 {
			m.acc = args[1].AsRead()
		} else if len(arr.Elements) > 0 {
			m.acc = arr.Elements[0].AsRead()
			m.index = 1
		} else {
			m.reduceEmptyErr = true
		}
	}
	return m
}

func (m *ArrayMappingFrame) WriteThis(bool, values.Value) {}
func (m *ArrayMappingFrame) WriteParam(values.Value)      {}
func (m *ArrayMappingFrame) CatchException(values.Value) bool { return false }

func (m *ArrayMappingFrame) Clone() Frame {
	clone := *m
	return &clone
}

func (m *ArrayMappingFrame) ApplyCallResult(cr CallResult) {
	m.pendingResult = cr.Return
}

func (m *ArrayMappingFrame) Step(vmRef *VirtualMachine) (FrameStep, error) {
	if m.reduceEmptyErr {
		return FrameStep{}, throwTypeError("Reduce of empty array with no initial value")
	}
	if m.method == "sort" {
		return m.stepSort()
	}
	return m.stepIterate()
}

func (m *ArrayMappingFrame) stepIterate() (FrameStep, error) {
	elems := m.array.Elements

	if m.awaitingResult {
		result := m.pendingResult.AsRead()
		switch m.method {
		case "map":
			m.out = append(m.out, result)
		case "filter":
			if result.IsTruthy() {
				m.out = append(m.out, m.currentElement)
			}
		case "forEach":
			// no accumulation
		case "some":
			if result.IsTruthy() {
				return popStep(values.Bool(true), values.Undefined())
			}
		case "every":
			if !result.IsTruthy() {
				return popStep(values.Bool(false), values.Undefined())
			}
		case "find":
			if result.IsTruthy() {
				return popStep(m.currentElement, values.Undefined())
			}
		case "findIndex":
			if result.IsTruthy() {
				return popStep(values.Number(float64(m.index)), values.Undefined())
			}
		case "reduce":
			m.acc = result
		}
		m.index++
		m.awaitingResult = false
	}

	if m.index >= len(elems) {
		switch m.method {
		case "map", "filter":
			return popStep(values.Array(values.NewArray(m.out)), values.Undefined())
		case "some":
			return popStep(values.Bool(false), values.Undefined())
		case "every":
			return popStep(values.Bool(true), values.Undefined())
		case "find":
			return popStep(values.Undefined(), values.Undefined())
		case "findIndex":
			return popStep(values.Number(-1), values.Undefined())
		case "reduce":
			return popStep(m.acc, values.Undefined())
		default: // forEach
			return popStep(values.Undefined(), values.Undefined())
		}
	}

	el := elems[m.index].AsRead()
	m.currentElement = el
	var args []values.Value
	if m.method == "reduce" {
		args = []values.Value{m.acc, el, values.Number(float64(m.index)), values.Array(m.array)}
	} else {
		args = []values.Value{el, values.Number(float64(m.index)), values.Array(m.array)}
	}
	m.awaitingResult = true
	return m.callOnce(args)
}

func (m *ArrayMappingFrame) callOnce(args []values.Value) (FrameStep, error) {
	fn := m.callback.AsRead()
	if fn.Kind() != values.KindFunction {
		return FrameStep{}, throwTypeError(fn.TypeOf() + " is not a function")
	}
	vf := fn.FunctionHandle()
	if vf.Native != nil {
		result, err := vf.Native(values.Undefined(), args)
		if err != nil {
			return FrameStep{}, err
		}
		m.pendingResult = result
		return m.Step(nil)
	}
	callee := NewBytecodeFrame(m.decoder, vf)
	callee.WriteThis(false, values.Undefined())
	for _, b := range vf.Binds {
		callee.WriteParam(b)
	}
	for _, a := range args {
		callee.WriteParam(a)
	}
	return pushStep(callee)
}

// stepSort implements Array.prototype.sort: insertion sort when a
// comparator callback is supplied (one comparison at a time, so a
// bytecode comparator can suspend through real Push/Pop cycling), or
// a synchronous default string-ordering sort when it isn't.
// sortJ == sortNeedsNewI is the sentinel for "advance to the next
// outer index and establish its key/j before comparing".
const sortNeedsNewI = -2

func (m *ArrayMappingFrame) stepSort() (FrameStep, error) {
	if m.callback.AsRead().Kind() != values.KindFunction {
		sort.SliceStable(m.array.Elements, func(i, j int) bool {
			return operations.Stringify(m.array.Elements[i].AsRead()) < operations.Stringify(m.array.Elements[j].AsRead())
		})
		return popStep(values.Array(m.array), values.Undefined())
	}

	n := len(m.array.Elements)

	if m.awaitingResult {
		m.awaitingResult = false
		cmp := 0.0
		if r := m.pendingResult.AsRead(); r.Kind() == values.KindNumber {
			cmp = r.Number()
		}
		if cmp > 0 {
			m.array.Elements[m.sortJ+1] = m.array.Elements[m.sortJ]
			m.sortJ--
		} else {
			m.array.Elements[m.sortJ+1] = m.sortKey
			m.sortI++
			m.sortJ = sortNeedsNewI
		}
	} else if !m.sortStarted {
		m.sortStarted = true
		m.sortI = 1
		m.sortJ = sortNeedsNewI
	}

	for {
		if m.sortJ == sortNeedsNewI {
			if m.sortI >= n {
				return popStep(values.Array(m.array), values.Undefined())
			}
			m.sortKey = m.array.Elements[m.sortI].AsRead()
			m.sortJ = m.sortI - 1
		}
		if m.sortJ < 0 {
			m.array.Elements[m.sortJ+1] = m.sortKey
			m.sortI++
			m.sortJ = sortNeedsNewI
			continue
		}
		m.awaitingResult = true
		return m.callOnce([]values.Value{m.array.Elements[m.sortJ].AsRead(), m.sortKey})
	}
}
