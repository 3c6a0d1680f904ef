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

package disasm

import (
	"testing"

	"github.com/n42blockchain/N42/internal/decompiler/opcode"
	"github.com/stretchr/testify/require"
)

func TestDisassembleMinimalArithmetic(t *testing.T) {
	d := New(Error)
	script := []byte{0x10, 0x11, 0x9E, 0x40} // PUSH0 PUSH1 ADD RET
	insts, warnings, err := d.Disassemble(script)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Len(t, insts, 4)
	require.Equal(t, "PUSH0", insts[0].Mnemonic())
	require.Equal(t, "PUSH1", insts[1].Mnemonic())
	require.Equal(t, "ADD", insts[2].Mnemonic())
	require.Equal(t, "RET", insts[3].Mnemonic())
	require.Equal(t, 0, insts[0].Offset)
	require.Equal(t, 3, insts[3].Offset)
}

func TestDisassembleUnknownOpcodeError(t *testing.T) {
	d := New(Error)
	_, _, err := d.Disassemble([]byte{0xFF})
	require.Error(t, err)
	var derr *Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, KindUnknownOpcode, derr.Kind)
}

func TestDisassembleUnknownOpcodePermit(t *testing.T) {
	d := New(Permit)
	insts, warnings, err := d.Disassemble([]byte{0xFF, 0x40})
	require.NoError(t, err)
	require.Len(t, insts, 2)
	require.False(t, insts[0].Known)
	require.Equal(t, opcode.OpCode(0xFF), insts[0].Opcode)
	require.Equal(t, "RET", insts[1].Mnemonic())
	require.Len(t, warnings, 1)
	require.Equal(t, 0, warnings[0].Offset)
}

func TestDisassembleCALLT(t *testing.T) {
	d := New(Error)
	insts, _, err := d.Disassemble([]byte{0x37, 0x05, 0x00, 0x40})
	require.NoError(t, err)
	require.Len(t, insts, 2)
	require.Equal(t, "CALLT", insts[0].Mnemonic())
	require.Equal(t, TagU16, insts[0].Operand.Tag)
	require.Equal(t, uint64(5), insts[0].Operand.U)
	require.Equal(t, 3, insts[1].Offset)
}

func TestDisassemblePushData4TooLarge(t *testing.T) {
	d := New(Error)
	buf := make([]byte, 6)
	buf[0] = byte(opcode.PUSHDATA4)
	// length = 1048577, little-endian
	buf[1], buf[2], buf[3], buf[4] = 0x01, 0x00, 0x10, 0x00
	_, _, err := d.Disassemble(buf)
	require.Error(t, err)
	var derr *Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, KindOperandTooLarge, derr.Kind)
}

func TestDisassemblePushData1ZeroLength(t *testing.T) {
	d := New(Error)
	insts, _, err := d.Disassemble([]byte{byte(opcode.PUSHDATA1), 0x00, 0x40})
	require.NoError(t, err)
	require.Len(t, insts, 2)
	require.Equal(t, TagBytes, insts[0].Operand.Tag)
	require.Empty(t, insts[0].Operand.Bytes)
}

func TestDisassembleTruncatedOperand(t *testing.T) {
	d := New(Error)
	_, _, err := d.Disassemble([]byte{byte(opcode.PUSHINT32), 0x01, 0x02})
	require.Error(t, err)
	var derr *Error
	require.ErrorAs(t, err, &derr)
	require.Equal(t, KindUnexpectedEof, derr.Kind)
}

func TestDisassembleTryTargets(t *testing.T) {
	d := New(Error)
	insts, _, err := d.Disassemble([]byte{byte(opcode.TRY), 0x05, 0xFB, byte(opcode.RET)})
	require.NoError(t, err)
	catch, finally := DecodeTryTargets(*insts[0].Operand, false)
	require.Equal(t, int32(5), catch)
	require.Equal(t, int32(-5), finally)
}

func TestInstructionLengthMatchesNextOffset(t *testing.T) {
	d := New(Error)
	script := []byte{byte(opcode.PUSHINT16), 0x01, 0x00, byte(opcode.RET)}
	insts, _, err := d.Disassemble(script)
	require.NoError(t, err)
	require.Equal(t, insts[1].Offset, insts[0].Offset+Length(insts[0]))
}
