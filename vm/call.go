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
	"github.com/siliconjungle/ValueScript/operations"
	"github.com/siliconjungle/ValueScript/values"
)

// invoke is the shared dispatch point for Call/Apply/ConstApply and,
// indirectly, SubCall: given a resolved callee and arguments, it
// either completes synchronously (native functions, bound builtin
// methods, simple array methods, immediate generator construction) or
// returns a StepPush for a callee BytecodeFrame/ArrayMappingFrame.
// hasThisReg marks whether `this` came from a register the caller
// should receive the post-call `this` write-back into (spec §9's
// Apply open question).
func (f *BytecodeFrame) invoke(dst int, hasDst bool, thisIdx int, hasThisReg bool, fnVal, thisVal values.Value, args []values.Value) (FrameStep, error) {
	fnVal = fnVal.AsRead()

	switch fnVal.Kind() {
	case values.KindFunction:
		fn := fnVal.FunctionHandle()
		if fn.Native != nil {
			result, err := fn.Native(thisVal, args)
			if err != nil {
				return FrameStep{}, err
			}
			if hasDst {
				f.setReg(dst, result)
			}
			if hasThisReg {
				f.writeRegRaw(thisIdx, thisVal)
			}
			return contStep()
		}
		if fn.IsGenerator {
			gen := newGeneratorObject(f.decoder, fn, thisVal, args)
			if hasDst {
				f.setReg(dst, gen)
			}
			return contStep()
		}
		callee := NewBytecodeFrame(f.decoder, fn)
		callee.WriteThis(false, thisVal)
		for _, bound := range fn.Binds {
			callee.WriteParam(bound)
		}
		for _, arg := range args {
			callee.WriteParam(arg)
		}
		f.hasPendingDst = hasDst
		f.pendingDst = dst
		f.hasPendingThis = hasThisReg
		f.pendingThisReg = thisIdx
		return pushStep(callee)

	case values.KindDynamic:
		if ref, ok := fnVal.DynamicHandle().(*operations.ArrayMethodRef); ok {
			if operations.IsHigherOrderArrayMethod(ref.Name) {
				mapping := newArrayMappingFrame(f.decoder, ref.Name, ref.Array, args)
				f.hasPendingDst = hasDst
				f.pendingDst = dst
				f.hasPendingThis = false
				return pushStep(mapping)
			}
			result, err := operations.CallSimpleArrayMethod(ref.Name, ref.Array, args)
			if err != nil {
				return FrameStep{}, err
			}
			if hasDst {
				f.setReg(dst, result)
			}
			return contStep()
		}
		if bm, ok := operations.AsBoundMethod(fnVal); ok {
			result, err := bm.Invoke(args)
			if err != nil {
				return FrameStep{}, err
			}
			if hasDst {
				f.setReg(dst, result)
			}
			return contStep()
		}
		return FrameStep{}, throwTypeError(fnVal.TypeOf() + " is not a function")

	default:
		return FrameStep{}, throwTypeError(fnVal.TypeOf() + " is not a function")
	}
}

// execSubCall handles SubCall/ThisSubCall (mutating=true, receiver
// promoted to a uniquely-held handle before the method runs and
// written back raw) and ConstSubCall (mutating=false, plain read).
func (f *BytecodeFrame) execSubCall(mutating bool) (FrameStep, error) {
	var obj values.Value
	var objIdx int
	var objIsReg bool
	var err error

	if mutating {
		var nextPos int
		objIdx, obj, objIsReg, nextPos, err = f.decoder.DecodeRegisterOperand(f.pos, f.registers)
		if err != nil {
			return FrameStep{}, err
		}
		f.pos = nextPos
		if !objIsReg {
			obj, err = f.readValue()
			if err != nil {
				return FrameStep{}, err
			}
		}
	} else {
		obj, err = f.readValue()
		if err != nil {
			return FrameStep{}, err
		}
	}

	key, err := f.readValue()
	if err != nil {
		return FrameStep{}, err
	}
	argsVal, err := f.readValue()
	if err != nil {
		return FrameStep{}, err
	}
	dst, hasDst := f.readTarget()

	obj = obj.AsRead()
	if mutating {
		switch obj.Kind() {
		case values.KindArray:
			obj = values.MakeMutArray(obj)
		case values.KindObject:
			obj = values.MakeMutObject(obj)
		}
		if objIsReg {
			f.writeRegRaw(objIdx, obj)
		}
	}

	fnVal, err := operations.Sub(obj, key)
	if err != nil {
		return FrameStep{}, err
	}

	return f.invoke(dst, hasDst, 0, false, fnVal, obj, arrayArgs(argsVal))
}

// execNew handles the New opcode: builds a fresh instance from the
// class's instance prototype, resolves the constructor (native or
// bytecode), and applies JS's constructor-return-value combining rule
// (use the constructor's return value if it is an Object, otherwise
// the freshly built instance).
func (f *BytecodeFrame) execNew() (FrameStep, error) {
	ctorVal, err := f.readValue()
	if err != nil {
		return FrameStep{}, err
	}
	argsVal, err := f.readValue()
	if err != nil {
		return FrameStep{}, err
	}
	dst, hasDst := f.readTarget()

	ctorVal = ctorVal.AsRead()
	if ctorVal.Kind() != values.KindClass {
		return FrameStep{}, throwTypeError(ctorVal.TypeOf() + " is not a constructor")
	}
	cls := ctorVal.ClassHandle()

	instance := values.NewObject()
	instance.Prototype = cls.InstancePrototype
	instanceVal := values.Object(instance)

	ctorFn := cls.Constructor.AsRead()
	args := arrayArgs(argsVal)

	if ctorFn.Kind() != values.KindFunction {
		if hasDst {
			f.setReg(dst, instanceVal)
		}
		return contStep()
	}
	fn := ctorFn.FunctionHandle()

	if fn.Native != nil {
		result, err := fn.Native(instanceVal, args)
		if err != nil {
			return FrameStep{}, err
		}
		final := instanceVal
		if result.Kind() == values.KindObject {
			final = result
		}
		if hasDst {
			f.setReg(dst, final)
		}
		return contStep()
	}

	callee := NewBytecodeFrame(f.decoder, fn)
	callee.WriteThis(false, instanceVal)
	for _, bound := range fn.Binds {
		callee.WriteParam(bound)
	}
	for _, arg := range args {
		callee.WriteParam(arg)
	}
	f.hasPendingDst = hasDst
	f.pendingDst = dst
	f.hasPendingThis = false
	f.pendingIsNew = true
	f.newInstance = instanceVal
	return pushStep(callee)
}
