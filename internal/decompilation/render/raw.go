// Copyright 2022-2026 The N42 Authors
// This file is part of the N42 library.
//
// The N42 library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The N42 library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the N42 library. If not, see <http://www.gnu.org/licenses/>.

// Package render hosts the thin, out-of-core-scope projections over a
// decompilation.Result: a raw offset/mnemonic listing, a JSON projection,
// and (in the dotgraph subpackage) a CFG/call-graph DOT export. None of
// these walk anything the core hasn't already computed.
package render

import (
	"fmt"
	"strings"

	"github.com/n42blockchain/N42/internal/decompiler/disasm"
)

// Raw renders one offset/mnemonic/operand line per instruction, the way a
// disassembler listing reads before any higher-level analysis runs.
func Raw(instructions []disasm.Instruction) string {
	var b strings.Builder
	for _, inst := range instructions {
		fmt.Fprintf(&b, "%04X  %s", inst.Offset, inst.Mnemonic())
		if inst.Operand != nil {
			fmt.Fprintf(&b, " %s", inst.Operand.String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
