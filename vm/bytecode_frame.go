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

	"github.com/siliconjungle/ValueScript/bytecode"
	"github.com/siliconjungle/ValueScript/operations"
	"github.com/siliconjungle/ValueScript/values"
)

// catchSetting records a live `setcatch`: where to resume and which
// register (if any) receives the thrown value.
type catchSetting struct {
	pos int
	reg int // -1 means the thrown value is discarded
}

// BytecodeFrame is a Frame over an ordinary (non-native) function
// body: a register file plus a decode cursor into the owning
// bytecode's byte array (spec §4.3, §4.4). Registers are laid out the
// way assembler.emitFunction allocates them: 0 is the return value,
// 1 is `this`, [2, 2+paramCount) are parameters in declaration order,
// and the rest are temporaries.
type BytecodeFrame struct {
	decoder   *bytecode.Decoder
	pos       int
	bodyStart int

	registers     []values.Value
	paramCount    int
	paramsWritten int
	constThis     bool

	catch *catchSetting

	pendingDst     int
	hasPendingDst  bool
	pendingThisReg int
	hasPendingThis bool
	pendingIsNew   bool
	newInstance    values.Value

	yieldDst int

	inYieldStar   bool
	yieldStarIter values.Value
	yieldStarDst  int
}

// NewBytecodeFrame builds a frame ready to start executing fn's body.
// WriteThis/WriteParam must be called before the first Step.
func NewBytecodeFrame(decoder *bytecode.Decoder, fn *values.VsFunction) *BytecodeFrame {
	registers := make([]values.Value, fn.RegisterCount)
	for i := range registers {
		registers[i] = values.Void()
	}
	return &BytecodeFrame{
		decoder:    decoder,
		pos:        fn.StartOffset,
		bodyStart:  fn.StartOffset,
		registers:  registers,
		paramCount: int(fn.ParameterCount),
		yieldDst:   -1,
	}
}

func (f *BytecodeFrame) WriteThis(constThis bool, value values.Value) {
	f.constThis = constThis
	if len(f.registers) > 1 {
		f.registers[1] = values.Retain(value)
	}
}

func (f *BytecodeFrame) WriteParam(value values.Value) {
	idx := 2 + f.paramsWritten
	f.paramsWritten++
	if idx >= len(f.registers) {
		// Extra arguments beyond the declared parameter list are
		// dropped, matching plain JS call-arity looseness.
		return
	}
	f.registers[idx] = values.Retain(value)
}

func (f *BytecodeFrame) CatchException(val values.Value) bool {
	if f.catch == nil {
		return false
	}
	c := f.catch
	f.catch = nil
	if c.reg >= 0 {
		f.setReg(c.reg, val)
	}
	f.pos = c.pos
	return true
}

func (f *BytecodeFrame) ApplyCallResult(cr CallResult) {
	if f.pendingIsNew {
		final := f.newInstance
		if cr.Return.Kind() == values.KindObject {
			final = cr.Return
		}
		if f.hasPendingDst {
			f.setReg(f.pendingDst, final)
		}
		f.pendingIsNew = false
		f.newInstance = values.Value{}
	} else if f.hasPendingDst {
		f.setReg(f.pendingDst, cr.Return)
	}
	if f.hasPendingThis {
		f.writeRegRaw(f.pendingThisReg, cr.This)
	}
	f.hasPendingDst = false
	f.hasPendingThis = false
}

func (f *BytecodeFrame) Clone() Frame {
	regs := make([]values.Value, len(f.registers))
	for i, v := range f.registers {
		regs[i] = values.Retain(v)
	}
	var catch *catchSetting
	if f.catch != nil {
		c := *f.catch
		catch = &c
	}
	clone := *f
	clone.registers = regs
	clone.catch = catch
	return &clone
}

// setReg installs a genuinely new value into a register, releasing
// whatever binding was there before (spec §5's refcount discipline).
// Do not use this for MakeMut-style write-backs where the register is
// conceptually still holding the same binding, possibly promoted to a
// uniquely-owned clone; use writeRegRaw for those.
func (f *BytecodeFrame) setReg(idx int, v values.Value) {
	values.Release(f.registers[idx])
	f.registers[idx] = v
}

// writeRegRaw writes back a handle that may be the same handle
// already in the register (after a no-op MakeMutArray/MakeMutObject),
// so it must not Release the old value first.
func (f *BytecodeFrame) writeRegRaw(idx int, v values.Value) {
	f.registers[idx] = v
}

func (f *BytecodeFrame) readValue() (values.Value, error) {
	v, next, err := f.decoder.DecodeValue(f.pos, f.registers)
	if err != nil {
		return values.Value{}, err
	}
	f.pos = next
	return v, nil
}

func (f *BytecodeFrame) readTarget() (int, bool) {
	idx, ok, next := f.decoder.DecodeRegisterIndex(f.pos)
	f.pos = next
	return int(idx), ok
}

func (f *BytecodeFrame) readLabelPos() int {
	target, next := f.decoder.DecodePos(f.pos)
	f.pos = next
	return f.bodyStart + target
}

func arrayArgs(v values.Value) []values.Value {
	v = v.AsRead()
	if v.Kind() != values.KindArray {
		return nil
	}
	return v.ArrayHandle().Elements
}

func throwTypeError(msg string) error {
	return &operations.ThrownError{Value: operations.NewError("TypeError", msg)}
}

func iterResultValue(val values.Value, done bool) values.Value {
	obj := values.NewObject()
	obj.Set(values.String("value"), val)
	obj.Set(values.String("done"), values.Bool(done))
	return values.Object(obj)
}

// Step decodes and executes a single instruction, per the
// Args-then-Labels-then-Targets wire order package assembler emits
// (see assembler.emitInstruction). Each opcode case reads its operands
// in that order regardless of their logical role.
func (f *BytecodeFrame) Step(vmRef *VirtualMachine) (FrameStep, error) {
	if f.inYieldStar {
		v, done, err := operations.CallNext(f.yieldStarIter)
		if err != nil {
			return FrameStep{}, err
		}
		if done {
			f.inYieldStar = false
			if f.yieldStarDst >= 0 {
				f.setReg(f.yieldStarDst, v)
			}
		} else {
			f.yieldDst = -1
			return yieldStarStep(v)
		}
	}

	op, next := f.decoder.DecodeInstructionOpcode(f.pos)
	f.pos = next

	switch op {
	case bytecode.OpEnd:
		return popStep(f.registers[0].AsRead(), f.registers[1].AsRead())

	case bytecode.OpMov:
		v, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, ok := f.readTarget()
		if ok {
			f.setReg(dst, v)
		}
		return contStep()

	case bytecode.OpInc, bytecode.OpDec:
		dst, ok := f.readTarget()
		if !ok {
			return contStep()
		}
		cur := f.registers[dst].AsRead()
		var nv values.Value
		var err error
		if op == bytecode.OpInc {
			nv, err = operations.Plus(cur, values.Number(1))
		} else {
			nv, err = operations.Minus(cur, values.Number(1))
		}
		if err != nil {
			return FrameStep{}, err
		}
		f.setReg(dst, nv)
		return contStep()

	case bytecode.OpPlus, bytecode.OpMinus, bytecode.OpMul, bytecode.OpDiv, bytecode.OpMod, bytecode.OpExp:
		a, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		b, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, ok := f.readTarget()
		var result values.Value
		switch op {
		case bytecode.OpPlus:
			result, err = operations.Plus(a, b)
		case bytecode.OpMinus:
			result, err = operations.Minus(a, b)
		case bytecode.OpMul:
			result, err = operations.Mul(a, b)
		case bytecode.OpDiv:
			result, err = operations.Div(a, b)
		case bytecode.OpMod:
			result, err = operations.Mod(a, b)
		case bytecode.OpExp:
			result, err = operations.Pow(a, b)
		}
		if err != nil {
			return FrameStep{}, err
		}
		if ok {
			f.setReg(dst, result)
		}
		return contStep()

	case bytecode.OpEq, bytecode.OpNe, bytecode.OpTripleEq, bytecode.OpTripleNe:
		a, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		b, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, ok := f.readTarget()
		var res bool
		switch op {
		case bytecode.OpEq:
			res = operations.LooseEquals(a, b)
		case bytecode.OpNe:
			res = !operations.LooseEquals(a, b)
		case bytecode.OpTripleEq:
			res = operations.StrictEquals(a, b)
		case bytecode.OpTripleNe:
			res = !operations.StrictEquals(a, b)
		}
		if ok {
			f.setReg(dst, values.Bool(res))
		}
		return contStep()

	case bytecode.OpAnd, bytecode.OpOr:
		a, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		b, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, ok := f.readTarget()
		var result values.Value
		if op == bytecode.OpAnd {
			if !a.IsTruthy() {
				result = a
			} else {
				result = b
			}
		} else {
			if a.IsTruthy() {
				result = a
			} else {
				result = b
			}
		}
		if ok {
			f.setReg(dst, result)
		}
		return contStep()

	case bytecode.OpNot:
		a, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, ok := f.readTarget()
		if ok {
			f.setReg(dst, operations.Not(a))
		}
		return contStep()

	case bytecode.OpLess, bytecode.OpLessEq, bytecode.OpGreater, bytecode.OpGreaterEq:
		a, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		b, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, ok := f.readTarget()
		cmp, cmpOk := operations.Compare(a, b)
		var res bool
		if cmpOk {
			switch op {
			case bytecode.OpLess:
				res = cmp < 0
			case bytecode.OpLessEq:
				res = cmp <= 0
			case bytecode.OpGreater:
				res = cmp > 0
			case bytecode.OpGreaterEq:
				res = cmp >= 0
			}
		}
		if ok {
			f.setReg(dst, values.Bool(res))
		}
		return contStep()

	case bytecode.OpNullishCoalesce:
		a, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		b, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, ok := f.readTarget()
		result := a
		if a.IsNullish() {
			result = b
		}
		if ok {
			f.setReg(dst, result)
		}
		return contStep()

	case bytecode.OpOptionalChain:
		a, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, ok := f.readTarget()
		result, _ := operations.OptionalChain(a)
		if ok {
			f.setReg(dst, result)
		}
		return contStep()

	case bytecode.OpBitAnd, bytecode.OpBitOr, bytecode.OpBitXor,
		bytecode.OpLeftShift, bytecode.OpRightShift, bytecode.OpRightShiftUnsigned:
		a, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		b, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, ok := f.readTarget()
		result := bitwiseOp(op, a, b)
		if ok {
			f.setReg(dst, result)
		}
		return contStep()

	case bytecode.OpBitNot:
		a, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, ok := f.readTarget()
		if ok {
			f.setReg(dst, values.Number(float64(^toInt32(a))))
		}
		return contStep()

	case bytecode.OpTypeOf:
		a, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, ok := f.readTarget()
		if ok {
			f.setReg(dst, values.String(a.TypeOf()))
		}
		return contStep()

	case bytecode.OpInstanceOf:
		a, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		b, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, ok := f.readTarget()
		result, err := operations.InstanceOf(a, b)
		if err != nil {
			return FrameStep{}, err
		}
		if ok {
			f.setReg(dst, result)
		}
		return contStep()

	case bytecode.OpIn:
		a, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		b, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, ok := f.readTarget()
		result, err := operations.In(a, b)
		if err != nil {
			return FrameStep{}, err
		}
		if ok {
			f.setReg(dst, result)
		}
		return contStep()

	case bytecode.OpUnaryPlus:
		a, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, ok := f.readTarget()
		result, err := operations.UnaryPlus(a)
		if err != nil {
			return FrameStep{}, err
		}
		if ok {
			f.setReg(dst, result)
		}
		return contStep()

	case bytecode.OpUnaryMinus:
		a, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, ok := f.readTarget()
		result, err := operations.UnaryMinus(a)
		if err != nil {
			return FrameStep{}, err
		}
		if ok {
			f.setReg(dst, result)
		}
		return contStep()

	case bytecode.OpCall:
		fnVal, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		argsVal, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, hasDst := f.readTarget()
		return f.invoke(dst, hasDst, 0, false, fnVal, values.Undefined(), arrayArgs(argsVal))

	case bytecode.OpApply, bytecode.OpConstApply:
		fnVal, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		var thisVal values.Value
		thisIdx, thisIsReg := 0, false
		if op == bytecode.OpApply {
			var rv values.Value
			var nextPos int
			thisIdx, rv, thisIsReg, nextPos, err = f.decoder.DecodeRegisterOperand(f.pos, f.registers)
			if err != nil {
				return FrameStep{}, err
			}
			f.pos = nextPos
			if thisIsReg {
				thisVal = rv
			} else {
				thisVal, err = f.readValue()
				if err != nil {
					return FrameStep{}, err
				}
			}
		} else {
			thisVal, err = f.readValue()
			if err != nil {
				return FrameStep{}, err
			}
		}
		argsVal, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, hasDst := f.readTarget()
		return f.invoke(dst, hasDst, thisIdx, thisIsReg, fnVal, thisVal.AsRead(), arrayArgs(argsVal))

	case bytecode.OpBind:
		fnVal, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		capturedVal, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, ok := f.readTarget()
		fnVal = fnVal.AsRead()
		if fnVal.Kind() != values.KindFunction {
			return FrameStep{}, throwTypeError("bind target is not a function")
		}
		bound := fnVal.FunctionHandle().Bind(arrayArgs(capturedVal))
		if ok {
			f.setReg(dst, values.Function(bound))
		}
		return contStep()

	case bytecode.OpSub:
		container, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		key, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, ok := f.readTarget()
		result, err := operations.Sub(container, key)
		if err != nil {
			return FrameStep{}, err
		}
		if ok {
			f.setReg(dst, result)
		}
		return contStep()

	case bytecode.OpSubMov:
		key, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		value, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		containerIdx, ok := f.readTarget()
		if !ok {
			return contStep()
		}
		container := f.registers[containerIdx].AsRead()
		switch container.Kind() {
		case values.KindArray:
			container = values.MakeMutArray(container)
		case values.KindObject:
			container = values.MakeMutObject(container)
		default:
			return FrameStep{}, throwTypeError("Cannot set properties of " + container.TypeOf())
		}
		if err := operations.SubMov(container, key, value); err != nil {
			return FrameStep{}, err
		}
		f.writeRegRaw(containerIdx, container)
		return contStep()

	case bytecode.OpSubCall, bytecode.OpThisSubCall:
		return f.execSubCall(true)

	case bytecode.OpConstSubCall:
		return f.execSubCall(false)

	case bytecode.OpJmp:
		f.pos = f.readLabelPos()
		return contStep()

	case bytecode.OpJmpIf, bytecode.OpJmpIfNot:
		cond, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		target := f.readLabelPos()
		truthy := cond.IsTruthy()
		if op == bytecode.OpJmpIfNot {
			truthy = !truthy
		}
		if truthy {
			f.pos = target
		}
		return contStep()

	case bytecode.OpNew:
		return f.execNew()

	case bytecode.OpThrow:
		val, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		if val.IsVoid() {
			// Throwing Void is a no-op (spec §3).
			return contStep()
		}
		return FrameStep{}, &operations.ThrownError{Value: val}

	case bytecode.OpImport, bytecode.OpImportStar:
		// Module/import resolution is out of scope (spec.md §1); unlike
		// Undefined-valued opcodes elsewhere, this is not a benign no-op
		// path, so it fails loud rather than silently.
		path, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		f.readTarget()
		return FrameStep{}, fmt.Errorf("vm: import of %q is not supported (module resolution out of scope)", operations.Stringify(path.AsRead()))

	case bytecode.OpSetCatch:
		target := f.readLabelPos()
		reg, ok := f.readTarget()
		r := -1
		if ok {
			r = reg
		}
		f.catch = &catchSetting{pos: target, reg: r}
		return contStep()

	case bytecode.OpUnsetCatch:
		f.catch = nil
		return contStep()

	case bytecode.OpRequireMutableThis:
		if f.constThis {
			return FrameStep{}, throwTypeError("'this' is not mutable in this context")
		}
		return contStep()

	case bytecode.OpNext:
		iterVal, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, ok := f.readTarget()
		result, err := operations.CallNextRaw(iterVal)
		if err != nil {
			return FrameStep{}, err
		}
		if ok {
			f.setReg(dst, result)
		}
		return contStep()

	case bytecode.OpUnpackIterRes:
		res, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		valueDst, valueOk := f.readTarget()
		doneDst, doneOk := f.readTarget()
		res = res.AsRead()
		if res.Kind() != values.KindObject {
			return FrameStep{}, throwTypeError("not an iterator result")
		}
		if valueOk {
			f.setReg(valueDst, res.ObjectHandle().Get(values.String("value")))
		}
		if doneOk {
			f.setReg(doneDst, res.ObjectHandle().Get(values.String("done")))
		}
		return contStep()

	case bytecode.OpCat:
		iterablesVal, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, ok := f.readTarget()
		var out []values.Value
		for _, iterable := range arrayArgs(iterablesVal) {
			iterObj, err := operations.MakeIterator(iterable)
			if err != nil {
				return FrameStep{}, err
			}
			for {
				v, done, err := operations.CallNext(iterObj)
				if err != nil {
					return FrameStep{}, err
				}
				if done {
					break
				}
				out = append(out, v)
			}
		}
		if ok {
			f.setReg(dst, values.Array(values.NewArray(out)))
		}
		return contStep()

	case bytecode.OpYield:
		val, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, ok := f.readTarget()
		if ok {
			f.yieldDst = dst
		} else {
			f.yieldDst = -1
		}
		return yieldStep(val)

	case bytecode.OpYieldStar:
		val, err := f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
		dst, ok := f.readTarget()
		iterObj, err := operations.MakeIterator(val)
		if err != nil {
			return FrameStep{}, err
		}
		f.inYieldStar = true
		f.yieldStarIter = iterObj
		if ok {
			f.yieldStarDst = dst
		} else {
			f.yieldStarDst = -1
		}
		return f.Step(vmRef)
	}

	return FrameStep{}, fmt.Errorf("vm: unhandled opcode %s", op)
}

// WriteResume installs a generator's resume argument ahead of the
// Step call that follows a StepYield/StepYieldStar. Delegation
// (yield*) discards the resume argument (yieldDst == -1); a plain
// yield writes it into the register the Yield instruction named.
func (f *BytecodeFrame) WriteResume(value values.Value) {
	if f.yieldDst >= 0 {
		f.setReg(f.yieldDst, value)
	}
}

func toInt32(v values.Value) int32 {
	v = v.AsRead()
	if v.Kind() == values.KindNumber {
		return int32(int64(v.Number()))
	}
	return 0
}

func bitwiseOp(op bytecode.Opcode, a, b values.Value) values.Value {
	x, y := toInt32(a), toInt32(b)
	switch op {
	case bytecode.OpBitAnd:
		return values.Number(float64(x & y))
	case bytecode.OpBitOr:
		return values.Number(float64(x | y))
	case bytecode.OpBitXor:
		return values.Number(float64(x ^ y))
	case bytecode.OpLeftShift:
		return values.Number(float64(x << (uint32(y) & 31)))
	case bytecode.OpRightShift:
		return values.Number(float64(x >> (uint32(y) & 31)))
	case bytecode.OpRightShiftUnsigned:
		return values.Number(float64(uint32(x) >> (uint32(y) & 31)))
	}
	return values.Undefined()
}
