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

package callgraph

import (
	"testing"

	"github.com/n42blockchain/N42/internal/decompiler/disasm"
	"github.com/n42blockchain/N42/internal/decompiler/nef"
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

func TestBuildResolvesDirectCall(t *testing.T) {
	// CALL +1 ; RET ; RET (target is the second RET, at offset 3)
	script := []byte{byte(opcode.CALL), 0x01, byte(opcode.RET), byte(opcode.RET)}
	edges, methods := Build(disassemble(t, script), nil, nil)
	require.Len(t, edges, 1)
	require.Equal(t, Internal, edges[0].Target.Kind)
	require.Equal(t, 3, edges[0].Target.Method.Offset)
	require.Contains(t, methods, 3)
}

func TestBuildUnresolvedDirectCall(t *testing.T) {
	script := []byte{byte(opcode.CALL), 0x7F, byte(opcode.RET)}
	edges, _ := Build(disassemble(t, script), nil, nil)
	require.Len(t, edges, 1)
	require.Equal(t, UnresolvedInternal, edges[0].Target.Kind)
}

func TestBuildCallTInRange(t *testing.T) {
	script := []byte{byte(opcode.CALLT), 0x00, 0x00, byte(opcode.RET)}
	tokens := []nef.MethodToken{{Method: "transfer"}}
	edges, _ := Build(disassemble(t, script), tokens, nil)
	require.Len(t, edges, 1)
	require.Equal(t, MethodTokenTarget, edges[0].Target.Kind)
	require.Equal(t, "transfer", edges[0].Target.Token.Method)
}

func TestBuildCallTOutOfRange(t *testing.T) {
	script := []byte{byte(opcode.CALLT), 0x05, 0x00, byte(opcode.RET)}
	edges, _ := Build(disassemble(t, script), nil, nil)
	require.Equal(t, IndirectTarget, edges[0].Target.Kind)
	require.Equal(t, "CALLT", edges[0].Target.IndirectOpcode)
}

func TestBuildCallAResolvesThroughPushA(t *testing.T) {
	// PUSHA +2 ; CALLA ; RET ; RET (target is the final RET)
	script := []byte{byte(opcode.PUSHA), 0x02, 0x00, 0x00, 0x00, byte(opcode.CALLA), byte(opcode.RET), byte(opcode.RET)}
	edges, methods := Build(disassemble(t, script), nil, nil)
	require.Len(t, edges, 1)
	require.Equal(t, Internal, edges[0].Target.Kind)
	require.Equal(t, 7, edges[0].Target.Method.Offset)
	require.Contains(t, methods, 7)
}

func TestBuildCallAIndirectWithoutPushA(t *testing.T) {
	script := []byte{byte(opcode.DUP), byte(opcode.CALLA), byte(opcode.RET)}
	edges, _ := Build(disassemble(t, script), nil, nil)
	require.Equal(t, IndirectTarget, edges[0].Target.Kind)
	require.Equal(t, "CALLA", edges[0].Target.IndirectOpcode)
}

func TestBuildSyscallKnown(t *testing.T) {
	script := []byte{byte(opcode.SYSCALL), 0xCF, 0xE7, 0x47, 0x96, byte(opcode.RET)}
	edges, _ := Build(disassemble(t, script), nil, nil)
	require.Equal(t, SyscallTarget, edges[0].Target.Kind)
	require.Equal(t, "System.Runtime.Log", edges[0].Target.SyscallName)
	require.False(t, edges[0].Target.ReturnsValue)
}

func TestBuildSyscallUnknownDefaultsReturnsValue(t *testing.T) {
	script := []byte{byte(opcode.SYSCALL), 0xEF, 0xBE, 0xAD, 0xDE, byte(opcode.RET)}
	edges, _ := Build(disassemble(t, script), nil, nil)
	require.Equal(t, SyscallTarget, edges[0].Target.Kind)
	require.Equal(t, "", edges[0].Target.SyscallName)
	require.True(t, edges[0].Target.ReturnsValue)
}
