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
	"encoding/binary"
	"unicode/utf8"
)

// readVarInt decodes a Neo VM-style compact length prefix starting at
// offset. b <= 0xFC decodes to itself; 0xFD/0xFE/0xFF introduce a
// little-endian u16/u32/u64 respectively. A u64 prefix that overflows
// uint32 fails with a KindIntegerOverflow error.
func readVarInt(data []byte, offset int) (uint32, int, error) {
	if offset >= len(data) {
		return 0, 0, newErr(KindUnexpectedEof, offset)
	}
	b := data[offset]
	switch {
	case b <= 0xFC:
		return uint32(b), 1, nil
	case b == 0xFD:
		if offset+3 > len(data) {
			return 0, 0, newErr(KindUnexpectedEof, offset)
		}
		return uint32(binary.LittleEndian.Uint16(data[offset+1 : offset+3])), 3, nil
	case b == 0xFE:
		if offset+5 > len(data) {
			return 0, 0, newErr(KindUnexpectedEof, offset)
		}
		return binary.LittleEndian.Uint32(data[offset+1 : offset+5]), 5, nil
	default: // 0xFF
		if offset+9 > len(data) {
			return 0, 0, newErr(KindUnexpectedEof, offset)
		}
		v := binary.LittleEndian.Uint64(data[offset+1 : offset+9])
		if v > uint64(^uint32(0)) {
			return 0, 0, newErr(KindIntegerOverflow, offset)
		}
		return uint32(v), 9, nil
	}
}

// readVarBytes decodes a varint-length-prefixed byte slice bounded by
// maxLen, returning the raw payload and the total bytes consumed
// (prefix + payload).
func readVarBytes(data []byte, offset int, maxLen int) ([]byte, int, error) {
	length, prefixLen, err := readVarInt(data, offset)
	if err != nil {
		return nil, 0, err
	}
	if int(length) > maxLen {
		return nil, 0, newErr(KindScriptTooLarge, offset)
	}
	start := offset + prefixLen
	end := start + int(length)
	if end > len(data) || end < start {
		return nil, 0, newErr(KindUnexpectedEof, offset)
	}
	return data[start:end], prefixLen + int(length), nil
}

// readVarString decodes a varint-length-prefixed UTF-8 string bounded by
// maxLen.
func readVarString(data []byte, offset int, maxLen int) (string, int, error) {
	length, prefixLen, err := readVarInt(data, offset)
	if err != nil {
		return "", 0, err
	}
	if int(length) > maxLen {
		return "", 0, newErr(KindSourceTooLong, offset)
	}
	start := offset + prefixLen
	end := start + int(length)
	if end > len(data) || end < start {
		return "", 0, newErr(KindUnexpectedEof, offset)
	}
	raw := data[start:end]
	if !utf8.Valid(raw) {
		return "", 0, newErr(KindInvalidUtf8String, offset)
	}
	return string(raw), prefixLen + int(length), nil
}
