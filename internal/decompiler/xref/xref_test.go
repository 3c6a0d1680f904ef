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

package xref

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

func TestBuildXrefsLocalsReadWrite(t *testing.T) {
	// INITSLOT(1 local, 0 args); PUSH1 STLOC0 ; LDLOC0 RET
	script := []byte{
		byte(opcode.INITSLOT), 0x01, 0x00,
		0x11, byte(opcode.STLOC0),
		byte(opcode.LDLOC0), byte(opcode.RET),
	}
	insts := disassemble(t, script)
	x := BuildXrefs(insts)
	require.Len(t, x.Locals, 1)
	require.Equal(t, []int{4}, x.Locals[0].Writes)
	require.Equal(t, []int{5}, x.Locals[0].Reads)
}

func TestSlotCountsFromInitSlot(t *testing.T) {
	script := []byte{byte(opcode.INITSLOT), 0x02, 0x03, byte(opcode.RET)}
	locals, args := SlotCounts(disassemble(t, script))
	require.Equal(t, 2, locals)
	require.Equal(t, 3, args)
}

func TestInferTypesLiteralAndArithmetic(t *testing.T) {
	// PUSH1 PUSH2 ADD RET
	script := []byte{0x11, 0x12, byte(opcode.ADD), byte(opcode.RET)}
	mt := InferTypes(disassemble(t, script), nil)
	require.NotNil(t, mt)
}

func TestInferTypesLocalJoin(t *testing.T) {
	// INITSLOT(1,0); PUSH1 STLOC0 ; PUSHT STLOC0 ; RET
	script := []byte{
		byte(opcode.INITSLOT), 0x01, 0x00,
		0x11, byte(opcode.STLOC0),
		byte(opcode.PUSHT), byte(opcode.STLOC0),
		byte(opcode.RET),
	}
	mt := InferTypes(disassemble(t, script), nil)
	require.Equal(t, Any, mt.Locals[0]) // Integer joined with Boolean widens to Any
}

func TestInferTypesConvertToByteString(t *testing.T) {
	script := []byte{0x11, byte(opcode.CONVERT), 0x28, byte(opcode.RET)}
	insts := disassemble(t, script)
	mt := InferTypes(insts, nil)
	require.NotNil(t, mt)
}

func TestInferTypesArgumentSeed(t *testing.T) {
	script := []byte{
		byte(opcode.INITSLOT), 0x00, 0x01,
		byte(opcode.LDARG0), byte(opcode.RET),
	}
	mt := InferTypes(disassemble(t, script), []ValueType{Integer})
	require.Equal(t, Integer, mt.Arguments[0])
}
