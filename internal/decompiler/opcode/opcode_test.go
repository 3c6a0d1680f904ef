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

package opcode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMnemonicKnownOpcodes(t *testing.T) {
	tests := []struct {
		op       OpCode
		expected string
	}{
		{PUSH0, "PUSH0"},
		{PUSH1, "PUSH1"},
		{ADD, "ADD"},
		{RET, "RET"},
		{SYSCALL, "SYSCALL"},
		{CALLT, "CALLT"},
	}
	for _, tt := range tests {
		name, ok := Mnemonic(tt.op)
		require.True(t, ok)
		require.Equal(t, tt.expected, name)
	}
}

func TestMnemonicUnknown(t *testing.T) {
	_, ok := Mnemonic(OpCode(0xFF))
	require.False(t, ok)
	require.False(t, IsDefined(OpCode(0xFF)))
}

func TestEncodingLengths(t *testing.T) {
	tests := []struct {
		enc      OperandEncoding
		expected int
	}{
		{EncNone, 1},
		{EncI8, 2},
		{EncU8, 2},
		{EncI16, 3},
		{EncU16, 3},
		{EncI32, 5},
		{EncU32, 5},
		{EncJump32, 5},
		{EncSyscall, 5},
		{EncI64, 9},
		{EncJump8, 2},
		{EncTry8, 3},
		{EncTry32, 9},
		{EncInitSlot, 3},
	}
	for _, tt := range tests {
		n, ok := tt.enc.Length()
		require.True(t, ok)
		require.Equal(t, tt.expected, n)
	}
}

func TestImmediateConstants(t *testing.T) {
	v, ok := IsImmediateConstant(PUSH0)
	require.True(t, ok)
	require.Equal(t, int64(0), v)

	v, ok = IsImmediateConstant(PUSH16)
	require.True(t, ok)
	require.Equal(t, int64(16), v)

	v, ok = IsImmediateConstant(PUSHM1)
	require.True(t, ok)
	require.Equal(t, int64(-1), v)

	_, ok = IsImmediateConstant(ADD)
	require.False(t, ok)
}

func TestFixedPayloadLenWideIntegers(t *testing.T) {
	require.Equal(t, 16, FixedPayloadLen(PUSHINT128))
	require.Equal(t, 32, FixedPayloadLen(PUSHINT256))
	require.Equal(t, 0, FixedPayloadLen(ADD))
}
