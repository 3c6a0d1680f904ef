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

package nef

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildContainer assembles a well-formed NEF3 buffer around the given
// script and method tokens, computing a valid trailing checksum.
func buildContainer(t *testing.T, script []byte, tokens []MethodToken) []byte {
	t.Helper()
	var buf []byte
	buf = append(buf, []byte(Magic)...)

	compiler := make([]byte, compilerFieldSize)
	copy(compiler, "neo-decompiler-tests")
	buf = append(buf, compiler...)

	buf = append(buf, encodeVarString("")...)
	buf = append(buf, 0) // reserved byte

	buf = append(buf, encodeVarInt(uint32(len(tokens)))...)
	for _, tok := range tokens {
		buf = append(buf, tok.Hash[:]...)
		buf = append(buf, encodeVarString(tok.Method)...)
		var pc [2]byte
		binary.LittleEndian.PutUint16(pc[:], tok.ParametersCount)
		buf = append(buf, pc[:]...)
		if tok.HasReturnValue {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		buf = append(buf, tok.CallFlags)
	}

	buf = append(buf, 0, 0) // reserved word
	buf = append(buf, encodeVarInt(uint32(len(script)))...)
	buf = append(buf, script...)

	first := sha256.Sum256(buf)
	second := sha256.Sum256(first[:])
	buf = append(buf, second[:4]...)
	return buf
}

func encodeVarInt(v uint32) []byte {
	switch {
	case v <= 0xFC:
		return []byte{byte(v)}
	case v <= 0xFFFF:
		b := make([]byte, 3)
		b[0] = 0xFD
		binary.LittleEndian.PutUint16(b[1:], uint16(v))
		return b
	default:
		b := make([]byte, 5)
		b[0] = 0xFE
		binary.LittleEndian.PutUint32(b[1:], v)
		return b
	}
}

func encodeVarString(s string) []byte {
	out := encodeVarInt(uint32(len(s)))
	return append(out, []byte(s)...)
}

func TestParseMinimalArithmeticScript(t *testing.T) {
	script := []byte{0x10, 0x11, 0x9E, 0x40} // PUSH0 PUSH1 ADD RET
	data := buildContainer(t, script, nil)

	c, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, Magic, c.Header.Magic)
	require.Equal(t, script, c.Script)
	require.Empty(t, c.MethodTokens)
}

func TestParseChecksumTamper(t *testing.T) {
	data := buildContainer(t, []byte{0x10, 0x11, 0x9E, 0x40}, nil)
	data[len(data)-1] ^= 0xFF

	_, err := Parse(data)
	require.Error(t, err)
	var nefErr *Error
	require.ErrorAs(t, err, &nefErr)
	require.Equal(t, KindChecksumMismatch, nefErr.Kind)
	require.NotEqual(t, nefErr.Expected, nefErr.Calculated)
}

func TestParseMethodTokenCALLT(t *testing.T) {
	var hash [20]byte
	for i := range hash {
		hash[i] = byte(i + 1)
	}
	tok := MethodToken{
		Hash:            hash,
		Method:          "transfer",
		ParametersCount: 2,
		HasReturnValue:  true,
		CallFlags:       0x0F,
	}
	data := buildContainer(t, []byte{0x37, 0x00, 0x00, 0x40}, []MethodToken{tok})

	c, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, c.MethodTokens, 1)
	require.Equal(t, tok, c.MethodTokens[0])
}

func TestParseTooShort(t *testing.T) {
	data := buildContainer(t, []byte{0x40}, nil)
	_, err := Parse(data[:fixedHeaderSize+3])
	require.Error(t, err)
	var nefErr *Error
	require.ErrorAs(t, err, &nefErr)
	require.Equal(t, KindTooShort, nefErr.Kind)
}

func TestParseEmptyScript(t *testing.T) {
	data := buildContainer(t, nil, nil)
	_, err := Parse(data)
	require.Error(t, err)
	var nefErr *Error
	require.ErrorAs(t, err, &nefErr)
	require.Equal(t, KindEmptyScript, nefErr.Kind)
}

func TestParseScriptTooLarge(t *testing.T) {
	// Build the container by hand: a real 1048577-byte script would make
	// this test slow to construct and run, so we instead exercise the
	// varint-bound check directly via readVarBytes, which Parse calls
	// with MaxScriptLen.
	data := make([]byte, 5+MaxScriptLen+1)
	data[0] = 0xFE
	binary.LittleEndian.PutUint32(data[1:5], uint32(MaxScriptLen+1))
	_, _, err := readVarBytes(data, 0, MaxScriptLen)
	require.Error(t, err)
	var nefErr *Error
	require.ErrorAs(t, err, &nefErr)
	require.Equal(t, KindScriptTooLarge, nefErr.Kind)
}

func TestParseTooManyMethodTokens(t *testing.T) {
	tokens := make([]MethodToken, 129)
	for i := range tokens {
		tokens[i] = MethodToken{Method: "m", CallFlags: 0}
	}
	data := buildContainer(t, []byte{0x40}, tokens)
	_, err := Parse(data)
	require.Error(t, err)
	var nefErr *Error
	require.ErrorAs(t, err, &nefErr)
	require.Equal(t, KindTooManyMethodTokens, nefErr.Kind)
}

func TestParseMethodNameLeadingUnderscore(t *testing.T) {
	tok := MethodToken{Method: "_private", CallFlags: 0}
	data := buildContainer(t, []byte{0x40}, []MethodToken{tok})
	_, err := Parse(data)
	require.Error(t, err)
	var nefErr *Error
	require.ErrorAs(t, err, &nefErr)
	require.Equal(t, KindMethodNameInvalid, nefErr.Kind)
}

func TestParseCallFlagsInvalid(t *testing.T) {
	tok := MethodToken{Method: "m", CallFlags: 0xF0}
	data := buildContainer(t, []byte{0x40}, []MethodToken{tok})
	_, err := Parse(data)
	require.Error(t, err)
	var nefErr *Error
	require.ErrorAs(t, err, &nefErr)
	require.Equal(t, KindCallFlagsInvalid, nefErr.Kind)
}

func TestParseTrailingData(t *testing.T) {
	data := buildContainer(t, []byte{0x40}, nil)
	data = append(data, 0xAA)
	_, err := Parse(data)
	require.Error(t, err)
	var nefErr *Error
	require.ErrorAs(t, err, &nefErr)
	require.Equal(t, KindTrailingData, nefErr.Kind)
}

func TestParsePurity(t *testing.T) {
	data := buildContainer(t, []byte{0x10, 0x11, 0x9E, 0x40}, nil)
	c1, err1 := Parse(data)
	c2, err2 := Parse(data)
	require.NoError(t, err1)
	require.NoError(t, err2)
	require.Equal(t, c1, c2)
}
