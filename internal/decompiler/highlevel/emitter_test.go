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

package highlevel

import (
	"strings"
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

func textOf(stmts []Statement) []string {
	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = s.Text
	}
	return out
}

func TestEmitterArithmeticReturn(t *testing.T) {
	// PUSH1 PUSH2 ADD RET
	script := []byte{0x11, 0x12, byte(opcode.ADD), byte(opcode.RET)}
	e := New(disassemble(t, script), nil, CallResolver{})
	stmts, warnings := e.Run()
	require.Empty(t, warnings)
	joined := strings.Join(textOf(stmts), "\n")
	require.Contains(t, joined, "let t1 = 1 + 2;")
	require.Contains(t, joined, "return t1;")
}

func TestEmitterIfBlock(t *testing.T) {
	// PUSH1 JMPIFNOT +3 ; PUSH0 RET ; RET
	script := []byte{
		0x11, byte(opcode.JMPIFNOT), 0x03,
		0x10, byte(opcode.RET),
		byte(opcode.RET),
	}
	e := New(disassemble(t, script), nil, CallResolver{})
	stmts, _ := e.Run()
	joined := strings.Join(textOf(stmts), "\n")
	require.Contains(t, joined, "if !1 {")
	require.Contains(t, joined, "}")
}

func TestEmitterSyscallLowering(t *testing.T) {
	// PUSHDATA1 "hi" ; SYSCALL System.Runtime.Log ; RET
	script := []byte{
		byte(opcode.PUSHDATA1), 0x02, 'h', 'i',
		byte(opcode.SYSCALL), 0xCF, 0xE7, 0x47, 0x96,
		byte(opcode.RET),
	}
	e := New(disassemble(t, script), nil, CallResolver{})
	stmts, _ := e.Run()
	joined := strings.Join(textOf(stmts), "\n")
	require.Contains(t, joined, "System.Runtime.Log(")
	require.Contains(t, joined, "0x9647E7CF")
}

func TestEmitterDirectCallWithResolver(t *testing.T) {
	// CALL +1 ; RET ; RET (target is second RET)
	script := []byte{byte(opcode.CALL), 0x01, byte(opcode.RET), byte(opcode.RET)}
	resolver := CallResolver{
		Label:    func(offset int) (string, bool) { return "helper", offset == 3 },
		ArgCount: func(offset int) (int, bool) { return 0, offset == 3 },
	}
	e := New(disassemble(t, script), nil, resolver)
	stmts, _ := e.Run()
	joined := strings.Join(textOf(stmts), "\n")
	require.Contains(t, joined, "helper()")
}

func TestEmitterCallT(t *testing.T) {
	script := []byte{byte(opcode.CALLT), 0x00, 0x00, byte(opcode.RET)}
	tokens := []TokenInfo{{Name: "transfer", Arity: 0, ReturnsValue: true}}
	e := New(disassemble(t, script), tokens, CallResolver{})
	stmts, _ := e.Run()
	joined := strings.Join(textOf(stmts), "\n")
	require.Contains(t, joined, "transfer()")
}

func TestEmitterAbort(t *testing.T) {
	script := []byte{byte(opcode.ABORT)}
	e := New(disassemble(t, script), nil, CallResolver{})
	stmts, _ := e.Run()
	joined := strings.Join(textOf(stmts), "\n")
	require.Contains(t, joined, "abort();")
}
