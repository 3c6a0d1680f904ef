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

// Package nef decodes the NEF3 container format: a strict, length-bounded
// binary layout carrying a compiler tag, an optional source-map URL, a
// table of foreign method tokens, a VM script, and a double-SHA-256
// checksum. Reference: the NEF3 container layout documented alongside the
// Neo N3 VM (see also nspcc-dev/neo-go's pkg/smartcontract/nef).
package nef

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"unicode/utf8"
)

const (
	// Magic is the four-byte container tag.
	Magic = "NEF3"

	// compilerFieldSize is the fixed, NUL-padded compiler name field.
	compilerFieldSize = 64

	// MaxSourceLen bounds the source-map URL field.
	MaxSourceLen = 256

	// MaxMethodTokens bounds the method-token table.
	MaxMethodTokens = 128

	// MaxMethodNameLen bounds a single method token's name.
	MaxMethodNameLen = 32

	// MaxScriptLen bounds the script payload (1 MiB).
	MaxScriptLen = 1 << 20

	// MaxFileSize bounds the overall container size. Chosen generously
	// above any plausible script + token table so legitimate containers
	// never trip it before the more specific checks do.
	MaxFileSize = 4 * MaxScriptLen

	// fixedHeaderSize is magic + compiler, the portion with no varint
	// framing, used for the §4.2 step-1 minimum-length check.
	fixedHeaderSize = 4 + compilerFieldSize

	checksumSize = 4

	// Call-flag bits, per MethodToken.CallFlags.
	CallFlagReadStates  uint8 = 0x01
	CallFlagWriteStates uint8 = 0x02
	CallFlagAllowCall   uint8 = 0x04
	CallFlagAllowNotify uint8 = 0x08
	callFlagsMask             = CallFlagReadStates | CallFlagWriteStates | CallFlagAllowCall | CallFlagAllowNotify
)

// Header is the fixed-size, textual portion of a Container.
type Header struct {
	Magic    string
	Compiler string
	Source   string
}

// MethodToken describes one foreign-method reference embedded in the
// container, resolved at call time via CALLT.
type MethodToken struct {
	Hash             [20]byte
	Method           string
	ParametersCount  uint16
	HasReturnValue   bool
	CallFlags        uint8
}

// Container is the fully validated, parsed NEF3 artifact.
type Container struct {
	Header       Header
	MethodTokens []MethodToken
	Script       []byte
	Checksum     uint32
}

// Parse validates and decodes bytes into a Container, following the
// ten-step procedure of §4.2. Parse is pure: identical input always
// produces identical output (or the identical error).
func Parse(data []byte) (*Container, error) {
	if len(data) > MaxFileSize {
		return nil, newErr(KindFileTooLarge, 0)
	}
	if len(data) < fixedHeaderSize+checksumSize {
		return nil, newErr(KindTooShort, len(data))
	}

	offset := 0

	magic := string(data[offset : offset+4])
	if magic != Magic {
		return nil, newErr(KindInvalidMagic, offset)
	}
	offset += 4

	compilerRaw := data[offset : offset+compilerFieldSize]
	nul := bytes.IndexByte(compilerRaw, 0)
	compilerText := compilerRaw
	if nul >= 0 {
		compilerText = compilerRaw[:nul]
	}
	if !utf8.Valid(compilerText) {
		return nil, newErr(KindInvalidCompiler, offset)
	}
	compiler := string(compilerText)
	offset += compilerFieldSize

	source, consumed, err := readVarString(data, offset, MaxSourceLen)
	if err != nil {
		return nil, err
	}
	offset += consumed

	if offset >= len(data) {
		return nil, newErr(KindUnexpectedEof, offset)
	}
	if data[offset] != 0 {
		return nil, newErr(KindReservedByteNonZero, offset)
	}
	offset++

	tokenCount, consumed, err := readVarInt(data, offset)
	if err != nil {
		return nil, err
	}
	offset += consumed
	if tokenCount > MaxMethodTokens {
		return nil, newErr(KindTooManyMethodTokens, offset)
	}

	tokens := make([]MethodToken, 0, tokenCount)
	for i := uint32(0); i < tokenCount; i++ {
		tok, consumed, err := parseMethodToken(data, offset)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		offset += consumed
	}

	if offset+2 > len(data) {
		return nil, newErr(KindUnexpectedEof, offset)
	}
	if data[offset] != 0 || data[offset+1] != 0 {
		return nil, newErr(KindReservedWordNonZero, offset)
	}
	offset += 2

	script, consumed, err := readVarBytes(data, offset, MaxScriptLen)
	if err != nil {
		return nil, err
	}
	if len(script) == 0 {
		return nil, newErr(KindEmptyScript, offset)
	}
	offset += consumed

	checksumStart := offset
	if checksumStart+checksumSize > len(data) {
		return nil, newErr(KindUnexpectedEof, offset)
	}
	checksum := binary.LittleEndian.Uint32(data[checksumStart : checksumStart+checksumSize])
	offset += checksumSize

	var expected [4]byte
	copy(expected[:], data[checksumStart:checksumStart+checksumSize])
	calculated := computeChecksum(data[:checksumStart])
	if expected != calculated {
		return nil, newChecksumErr(expected, calculated)
	}

	if offset != len(data) {
		return nil, newErr(KindTrailingData, offset)
	}

	return &Container{
		Header: Header{
			Magic:    magic,
			Compiler: compiler,
			Source:   source,
		},
		MethodTokens: tokens,
		Script:       script,
		Checksum:     checksum,
	}, nil
}

func parseMethodToken(data []byte, offset int) (MethodToken, int, error) {
	start := offset
	if offset+20 > len(data) {
		return MethodToken{}, 0, newErr(KindUnexpectedEof, offset)
	}
	var hash [20]byte
	copy(hash[:], data[offset:offset+20])
	offset += 20

	method, consumed, err := readVarString(data, offset, MaxMethodNameLen)
	if err != nil {
		return MethodToken{}, 0, newErr(KindInvalidMethodToken, offset)
	}
	offset += consumed
	if len(method) == 0 || method[0] == '_' {
		return MethodToken{}, 0, newErr(KindMethodNameInvalid, offset)
	}

	if offset+2 > len(data) {
		return MethodToken{}, 0, newErr(KindUnexpectedEof, offset)
	}
	paramCount := binary.LittleEndian.Uint16(data[offset : offset+2])
	offset += 2

	if offset+1 > len(data) {
		return MethodToken{}, 0, newErr(KindUnexpectedEof, offset)
	}
	retFlag := data[offset]
	if retFlag != 0 && retFlag != 1 {
		return MethodToken{}, 0, newErr(KindInvalidMethodToken, offset)
	}
	offset++

	if offset+1 > len(data) {
		return MethodToken{}, 0, newErr(KindUnexpectedEof, offset)
	}
	callFlags := data[offset]
	if callFlags&^callFlagsMask != 0 {
		return MethodToken{}, 0, newErr(KindCallFlagsInvalid, offset)
	}
	offset++

	return MethodToken{
		Hash:            hash,
		Method:          method,
		ParametersCount: paramCount,
		HasReturnValue:  retFlag == 1,
		CallFlags:       callFlags,
	}, offset - start, nil
}

// computeChecksum returns the first 4 little-endian bytes of
// SHA-256(SHA-256(prefix)).
func computeChecksum(prefix []byte) [4]byte {
	first := sha256.Sum256(prefix)
	second := sha256.Sum256(first[:])
	var out [4]byte
	copy(out[:], second[:4])
	return out
}
