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

package render

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/n42blockchain/N42/internal/decompiler/disasm"
	"github.com/n42blockchain/N42/internal/decompiler/opcode"
)

func disassemble(t *testing.T, script []byte) []disasm.Instruction {
	t.Helper()
	d := disasm.New(disasm.Error)
	insts, _, err := d.Disassemble(script)
	require.NoError(t, err)
	return insts
}

func TestRawListsOffsetAndMnemonic(t *testing.T) {
	script := []byte{0x10, 0x11, byte(opcode.ADD), byte(opcode.RET)}
	out := Raw(disassemble(t, script))
	require.Contains(t, out, "0000  PUSH0")
	require.Contains(t, out, "0002  ADD")
	require.Contains(t, out, "0003  RET")
}

func TestRawIncludesOperand(t *testing.T) {
	script := []byte{byte(opcode.JMP), 0x02, byte(opcode.RET), byte(opcode.RET)}
	out := Raw(disassemble(t, script))
	require.Contains(t, out, "0000  JMP 2")
}
