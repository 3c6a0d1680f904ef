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

package decompilation

import (
	"crypto/sha256"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/n42blockchain/N42/internal/decompiler/callgraph"
	"github.com/n42blockchain/N42/internal/decompiler/cfg"
	"github.com/n42blockchain/N42/internal/decompiler/disasm"
	"github.com/n42blockchain/N42/internal/decompiler/highlevel"
	"github.com/n42blockchain/N42/internal/decompiler/nef"
)

const compilerFieldSize = 64

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

// buildContainer assembles a well-formed NEF3 buffer around script and
// tokens, computing a valid trailing checksum. Mirrors the nef package's
// own test helper since that one is unexported.
func buildContainer(t *testing.T, script []byte, tokens []nef.MethodToken) []byte {
	t.Helper()
	var buf []byte
	buf = append(buf, []byte(nef.Magic)...)

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

func TestDecompileMinimalArithmetic(t *testing.T) {
	script := []byte{0x10, 0x11, 0x9E, 0x40} // PUSH0 PUSH1 ADD RET
	data := buildContainer(t, script, nil)

	result, err := Decompile(data, Options{})
	require.NoError(t, err)
	require.Len(t, result.Instructions, 4)
	require.Len(t, result.Cfg.Blocks, 1)
	require.Equal(t, cfg.TReturn, result.Cfg.Blocks[0].Term)

	joined := joinStatements(result.Statements)
	require.Contains(t, joined, "let t1 = 0 + 1;")
	require.Contains(t, joined, "return t1;")
}

func TestDecompileChecksumTamper(t *testing.T) {
	data := buildContainer(t, []byte{0x10, 0x11, 0x9E, 0x40}, nil)
	data[len(data)-1] ^= 0xFF

	_, err := Decompile(data, Options{})
	require.Error(t, err)
	var nefErr *nef.Error
	require.ErrorAs(t, err, &nefErr)
	require.Equal(t, nef.KindChecksumMismatch, nefErr.Kind)
}

func TestDecompileMethodTokenCall(t *testing.T) {
	var hash [20]byte
	for i := range hash {
		hash[i] = byte(i + 1)
	}
	tok := nef.MethodToken{
		Hash:            hash,
		Method:          "transfer",
		ParametersCount: 2,
		HasReturnValue:  true,
		CallFlags:       0x0F,
	}
	// CALLT 0 ; RET
	data := buildContainer(t, []byte{0x37, 0x00, 0x00, 0x40}, []nef.MethodToken{tok})

	result, err := Decompile(data, Options{})
	require.NoError(t, err)
	require.Len(t, result.CallEdges, 1)
	require.Equal(t, callgraph.MethodTokenTarget, result.CallEdges[0].Target.Kind)
	require.Equal(t, "transfer", result.CallEdges[0].Target.Token.Method)
}

func TestDecompileManifestDrivenEntry(t *testing.T) {
	// main: CALL +1 ; RET | helper: NOP ; RET
	script := []byte{
		byte(opcodeCALL), 0x01, byte(opcodeRET),
		byte(opcodeNOP), byte(opcodeRET),
	}
	data := buildContainer(t, script, nil)

	manifestJSON := `{
  "abi": {
    "methods": [
      {"name": "main", "parameters": [], "returntype": "Void", "offset": 0, "safe": false},
      {"name": "helper", "parameters": [], "returntype": "Void", "offset": 3, "safe": false}
    ]
  }
}`

	result, err := Decompile(data, Options{ManifestJSON: []byte(manifestJSON)})
	require.NoError(t, err)
	require.Len(t, result.CallMethods, 1)
	ref, ok := result.CallMethods[3]
	require.True(t, ok)
	require.Equal(t, "helper", ref.Name)
	require.Len(t, result.CallEdges, 1)
	require.Equal(t, callgraph.Internal, result.CallEdges[0].Target.Kind)
	require.NotNil(t, result.CSharp)
	require.Len(t, result.CSharp.Methods, 2)
}

func TestDecompileUnknownOpcodeTolerance(t *testing.T) {
	data := buildContainer(t, []byte{0xFF, 0x40}, nil) // Unknown(0xFF) ; RET

	result, err := Decompile(data, Options{UnknownHandling: disasm.Permit})
	require.NoError(t, err)
	require.Len(t, result.Instructions, 2)
	require.False(t, result.Instructions[0].Known)
	require.Len(t, result.Warnings, 1)
}

func TestDecompileStructuredDoWhile(t *testing.T) {
	// INITSLOT 1,0 ; PUSH0 ; STLOC0 ; L: PUSH10 ; LDLOC0 ; JMPLT L ; RET
	script := []byte{
		0x57, 0x01, 0x00,
		0x10,
		0x70,
		0x1A,
		0x68,
		0x30, 0xFC,
		0x40,
	}
	data := buildContainer(t, script, nil)

	result, err := Decompile(data, Options{})
	require.NoError(t, err)
	joined := joinStatements(result.Statements)
	require.Contains(t, joined, "do {")
	require.Contains(t, joined, "} while (loc0 < 10);")
}

func joinStatements(stmts []highlevel.Statement) string {
	texts := make([]string, len(stmts))
	for i, s := range stmts {
		texts[i] = s.Text
	}
	return strings.Join(texts, "\n")
}

const (
	opcodeCALL = 0x34
	opcodeRET  = 0x40
	opcodeNOP  = 0x21
)
