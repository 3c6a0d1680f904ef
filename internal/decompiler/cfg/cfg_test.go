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

package cfg

import (
	"testing"

	"github.com/n42blockchain/N42/internal/decompiler/disasm"
	"github.com/n42blockchain/N42/internal/decompiler/opcode"
	"github.com/stretchr/testify/require"
)

func disassemble(t *testing.T, script []byte) []disasm.Instruction {
	t.Helper()
	d := disasm.New(disasm.Error)
	insts, _, err := d.Disassemble(script)
	require.NoError(t, err)
	return insts
}

func TestBuildStraightLine(t *testing.T) {
	script := []byte{0x10, 0x11, byte(opcode.RET)} // PUSH0 PUSH1 RET
	c := Build(disassemble(t, script))
	require.Len(t, c.Blocks, 1)
	require.Equal(t, TReturn, c.Blocks[0].Term)
}

func TestBuildIfElse(t *testing.T) {
	// PUSH1 JMPIF +2 ; PUSH0 RET ; PUSH2 RET
	script := []byte{
		0x11, byte(opcode.JMPIF), 0x02,
		0x10, byte(opcode.RET),
		0x12, byte(opcode.RET),
	}
	c := Build(disassemble(t, script))
	require.Len(t, c.Blocks, 3)
	require.Equal(t, TBranch, c.Blocks[0].Term)
	require.Equal(t, TReturn, c.Blocks[1].Term)
	require.Equal(t, TReturn, c.Blocks[2].Term)
	require.Equal(t, c.Blocks[0].BranchElse, c.Blocks[1].ID)
	require.Equal(t, c.Blocks[0].BranchThen, c.Blocks[2].ID)
}

func TestBuildUnconditionalJumpLoop(t *testing.T) {
	// loop: PUSH0 JMP loop
	script := []byte{0x10, byte(opcode.JMP), 0xFD}
	c := Build(disassemble(t, script))
	require.Len(t, c.Blocks, 1)
	require.Equal(t, TJump, c.Blocks[0].Term)
	require.Equal(t, BlockID(0), c.Blocks[0].JumpTarget)
	require.Contains(t, c.Blocks[0].Pred, BlockID(0))
}

func TestDominanceDiamond(t *testing.T) {
	// 0: PUSH1 JMPIF -> then(6)
	// 3: PUSH0 JMP -> join(9)
	// 6: PUSH2 JMP -> join(9)
	// 9: RET
	script := []byte{
		0x11, byte(opcode.JMPIF), 0x03,
		0x10, byte(opcode.JMP), 0x03,
		0x12, byte(opcode.JMP), 0x00,
		byte(opcode.RET),
	}
	c := Build(disassemble(t, script))
	require.Len(t, c.Blocks, 4)
	dom := ComputeDominance(c, 0)
	joinBlock := c.Blocks[3].ID
	require.Equal(t, BlockID(0), dom.IDom[joinBlock])
}
