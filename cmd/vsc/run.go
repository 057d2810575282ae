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

package main

import (
	"fmt"

	"github.com/siliconjungle/ValueScript/bytecode"
	"github.com/siliconjungle/ValueScript/operations"
	"github.com/siliconjungle/ValueScript/values"
	"github.com/siliconjungle/ValueScript/vm"
)

// loader serves every runFile call in this process, so running the
// same .vsb path more than once (or from racing goroutines) mmaps
// and decodes it only once.
var loader = vm.NewModuleLoader()

// verifyBytecode does a shallow structural check before execution: the
// export value at offset 0 must decode to a function. A full
// instruction-level verifier (operand arity, jump target bounds) is
// beyond what the decoder exposes without walking every reachable
// instruction the way the VM itself does, so this only catches the
// most common authoring mistake (a script with no callable export).
func verifyBytecode(code []byte) error {
	if len(code) == 0 {
		return fmt.Errorf("verify: empty bytecode")
	}
	d := bytecode.NewDecoder(code)
	exported, _, err := d.DecodeValue(0, nil)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if exported.Kind() != values.KindFunction {
		return fmt.Errorf("verify: module export is not a function (got %s)", exported.Kind())
	}
	return nil
}

// run decodes code's exported function and executes it with no
// arguments, returning its stringified result.
func run(code []byte) (string, error) {
	d := bytecode.NewDecoder(code)
	exported, _, err := d.DecodeValue(0, nil)
	if err != nil {
		return "", err
	}
	fn := exported.FunctionHandle()
	if fn == nil {
		return "", fmt.Errorf("run: module export is not a function")
	}

	machine := vm.New(d)
	result, err := machine.Run(fn, values.Undefined(), nil)
	if err != nil {
		return "", err
	}
	return operations.Stringify(result), nil
}

// runFile memory-maps a bytecode file (spec §5's "bytecode byte array,
// immutable after load") rather than reading it into an owned []byte,
// so the decoder borrows pages the OS can evict instead of duplicating
// the whole file into the heap. The mapping and decode are cached and
// shared through the package's ModuleLoader.
func runFile(path string) (string, error) {
	d, err := loader.Load(path)
	if err != nil {
		return "", err
	}

	exported, _, err := d.DecodeValue(0, nil)
	if err != nil {
		return "", err
	}
	fn := exported.FunctionHandle()
	if fn == nil {
		return "", fmt.Errorf("run: module export is not a function")
	}

	machine := vm.New(d)
	result, err := machine.Run(fn, values.Undefined(), nil)
	if err != nil {
		return "", err
	}
	return operations.Stringify(result), nil
}
