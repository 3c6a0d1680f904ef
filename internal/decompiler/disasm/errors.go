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

// Kind is a closed enum of disassembly failures.
type Kind int

const (
	KindUnknownOpcode Kind = iota
	KindUnexpectedEof
	KindOperandTooLarge
)

func (k Kind) String() string {
	switch k {
	case KindUnknownOpcode:
		return "UnknownOpcode"
	case KindUnexpectedEof:
		return "UnexpectedEof"
	case KindOperandTooLarge:
		return "OperandTooLarge"
	default:
		return "Unknown"
	}
}

// Error is the single error type returned by Disassemble in Error mode, and
// by operand decoding regardless of mode (truncation/over-size are always
// fatal, per §7).
type Error struct {
	Kind   Kind
	Offset int
	Byte   byte // populated for KindUnknownOpcode
	Len    int  // populated for KindOperandTooLarge
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnknownOpcode:
		return fmt.Sprintf("disasm: unknown opcode 0x%02X at offset %d", e.Byte, e.Offset)
	case KindOperandTooLarge:
		return fmt.Sprintf("disasm: operand too large (%d bytes) at offset %d", e.Len, e.Offset)
	default:
		return fmt.Sprintf("disasm: %s at offset %d", e.Kind, e.Offset)
	}
}
