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

import "fmt"

// OperandTag discriminates the Operand union's active field.
type OperandTag int

const (
	TagNone OperandTag = iota
	TagI8
	TagI16
	TagI32
	TagI64
	TagU8
	TagU16
	TagU32
	TagBool
	TagNull
	TagBytes
	TagJump8
	TagJump32
	TagSyscall
)

// Operand is the tagged union described in §3. Exactly one of the typed
// fields is meaningful, selected by Tag.
type Operand struct {
	Tag     OperandTag
	I       int64  // I8/I16/I32/I64
	U       uint64 // U8/U16/U32
	B       bool   // Bool
	Bytes   []byte // Bytes, and the raw payload of Jump/Syscall is not here
	Jump    int32  // Jump8 (sign-extended) / Jump32
	Syscall uint32 // Syscall hash
}

func (o Operand) String() string {
	switch o.Tag {
	case TagI8, TagI16, TagI32, TagI64:
		return fmt.Sprintf("%d", o.I)
	case TagU8, TagU16, TagU32:
		return fmt.Sprintf("%d", o.U)
	case TagBool:
		return fmt.Sprintf("%t", o.B)
	case TagNull:
		return "null"
	case TagBytes:
		return fmt.Sprintf("0x%x", o.Bytes)
	case TagJump8, TagJump32:
		return fmt.Sprintf("%d", o.Jump)
	case TagSyscall:
		return fmt.Sprintf("0x%08X", o.Syscall)
	default:
		return ""
	}
}

// DecodeTryTargets splits a TRY/TRY_L instruction's raw Bytes operand into
// its packed (catch, finally) signed deltas. wide selects the 32-bit pair
// (TRY_L) over the 8-bit pair (TRY). A delta of zero means "absent", per
// §4.5.
func DecodeTryTargets(o Operand, wide bool) (catchDelta, finallyDelta int32) {
	if o.Tag != TagBytes {
		return 0, 0
	}
	if wide {
		if len(o.Bytes) < 8 {
			return 0, 0
		}
		return int32(le32(o.Bytes[0:4])), int32(le32(o.Bytes[4:8]))
	}
	if len(o.Bytes) < 2 {
		return 0, 0
	}
	return int32(int8(o.Bytes[0])), int32(int8(o.Bytes[1]))
}

// DecodeInitSlot splits an INITSLOT instruction's raw Bytes operand into
// its packed (locals, args) unsigned byte pair.
func DecodeInitSlot(o Operand) (locals, args uint8) {
	if o.Tag != TagBytes || len(o.Bytes) < 2 {
		return 0, 0
	}
	return o.Bytes[0], o.Bytes[1]
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// AsInt returns the operand's integer value when it carries one,
// including unsigned fields widened to int64 and jump deltas; boolean,
// byte, syscall and null operands report false. Used throughout xref/types/highlevel wherever "this
// instruction's literal integer, if any" is needed.
func (o Operand) AsInt() (int64, bool) {
	switch o.Tag {
	case TagI8, TagI16, TagI32, TagI64:
		return o.I, true
	case TagU8, TagU16, TagU32:
		return int64(o.U), true
	case TagJump8, TagJump32:
		return int64(o.Jump), true
	default:
		return 0, false
	}
}
