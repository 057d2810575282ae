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
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/siliconjungle/ValueScript/bytecode"
)

// disassembleFile prints a definition-level summary of a bytecode
// file: the module export's tag, and, when it resolves to a function,
// its header fields and a hex preview of its body. A true per-
// instruction disassembler would need a second, independent table of
// operand arity per opcode (the assembler and VM each already encode
// that implicitly in their own emit/decode switches); reusing either
// one here would duplicate the exact logic disassembly exists to
// cross-check against, so this stays at the header/offset level that
// the decoder exposes without executing the program.
func disassembleFile(w io.Writer, code []byte) error {
	d := bytecode.NewDecoder(code)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"offset", "tag", "detail"})

	exported, next, err := d.DecodeValue(0, nil)
	if err != nil {
		return fmt.Errorf("disassemble: %w", err)
	}
	table.Append([]string{"0", d.PeekTag(0).String(), fmt.Sprintf("export: %s", exported.Kind())})

	if fn := exported.FunctionHandle(); fn != nil {
		table.Append([]string{fmt.Sprintf("%d", next), "function-header", fmt.Sprintf(
			"isGenerator=%v registers=%d parameters=%d bodyOffset=%d",
			fn.IsGenerator, fn.RegisterCount, fn.ParameterCount, fn.StartOffset)})
		table.Append([]string{fmt.Sprintf("%d", fn.StartOffset), "body", hexPreview(code, fn.StartOffset, 32)})
	}

	table.Render()
	return nil
}

func hexPreview(code []byte, offset, n int) string {
	end := offset + n
	if end > len(code) {
		end = len(code)
	}
	if offset > end {
		return ""
	}
	out := make([]byte, 0, (end-offset)*3)
	for _, b := range code[offset:end] {
		out = append(out, fmt.Sprintf("%02x ", b)...)
	}
	return string(out)
}
