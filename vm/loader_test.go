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
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/siliconjungle/ValueScript/asm"
	"github.com/siliconjungle/ValueScript/assembler"
	"github.com/siliconjungle/ValueScript/bytecode"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	mod := &asm.Module{Export: asm.NumberValue(7)}
	code, err := assembler.Assemble(mod)
	if err != nil {
		t.Fatalf("Assemble returned error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "fixture.vsb")
	if err := os.WriteFile(path, code, 0o644); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}
	return path
}

func TestModuleLoaderLoadDecodesFile(t *testing.T) {
	path := writeFixture(t)
	l := NewModuleLoader()
	defer l.Close()

	d, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	v, _, err := d.DecodeValue(0, nil)
	if err != nil {
		t.Fatalf("DecodeValue returned error: %v", err)
	}
	if v.Number() != 7 {
		t.Errorf("decoded export = %v, want 7", v.Number())
	}
}

func TestModuleLoaderCoalescesConcurrentLoads(t *testing.T) {
	path := writeFixture(t)
	l := NewModuleLoader()
	defer l.Close()

	const n = 8
	var wg sync.WaitGroup
	decoders := make([]*bytecode.Decoder, n)
	errs := make([]error, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		go func() {
			defer wg.Done()
			decoders[i], errs[i] = l.Load(path)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("goroutine %d: Load returned error: %v", i, err)
		}
		if decoders[i] != decoders[0] {
			t.Errorf("goroutine %d got a different decoder than goroutine 0; expected a shared cached decode", i)
		}
	}
}
