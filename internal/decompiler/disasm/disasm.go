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

// Package disasm walks a script buffer linearly, decoding each opcode byte
// and its operand via the opcode package's encoding table into an ordered
// Instruction sequence. Grounded on the teacher's internal/vm jump-table
// dispatch style (a single decode loop keyed by opcode) and on the
// immediates-decoding structure of original_source/src/disassembler/operand.rs.
package disasm

import (
	"encoding/binary"

	"github.com/n42blockchain/N42/internal/decompiler/opcode"
)

// MaxOperandLen bounds Data1/Data2/Data4 payloads.
const MaxOperandLen = 1 << 20

// UnknownHandling selects disassembly tolerance for bytes with no table
// entry.
type UnknownHandling int

const (
	// Error fails the whole disassembly on an unrecognized opcode byte.
	Error UnknownHandling = iota
	// Permit emits an Unknown instruction and a warning instead.
	Permit
)

// Instruction is a single decoded VM instruction.
type Instruction struct {
	Offset  int
	Opcode  opcode.OpCode
	Known   bool // false for Unknown(byte) carriers
	Operand *Operand
}

// Mnemonic returns the instruction's textual name, or "UNKNOWN" for
// unrecognized opcodes.
func (i Instruction) Mnemonic() string {
	if !i.Known {
		return "UNKNOWN"
	}
	name, _ := opcode.Mnemonic(i.Opcode)
	return name
}

// Warning is a non-fatal diagnostic accumulated during disassembly.
type Warning struct {
	Offset  int
	Message string
}

// Disassembler decodes a byte buffer into an Instruction sequence under a
// configured UnknownHandling policy.
type Disassembler struct {
	Unknown UnknownHandling
}

// New returns a Disassembler configured with the given tolerance mode.
func New(mode UnknownHandling) *Disassembler {
	return &Disassembler{Unknown: mode}
}

// Disassemble walks bytecode from offset 0 to its end, producing an
// offset-ordered Instruction list plus any de-duplicated warnings. Fatal
// errors (UnexpectedEof, OperandTooLarge, and UnknownOpcode under Error
// mode) abort the walk and return immediately.
func (d *Disassembler) Disassemble(bytecode []byte) ([]Instruction, []Warning, error) {
	var (
		instructions []Instruction
		warnings     []Warning
		seen         = map[string]bool{}
	)

	offset := 0
	for offset < len(bytecode) {
		b := bytecode[offset]
		op := opcode.OpCode(b)

		if !opcode.IsDefined(op) {
			if d.Unknown == Error {
				return nil, nil, &Error{Kind: KindUnknownOpcode, Offset: offset, Byte: b}
			}
			instructions = append(instructions, Instruction{Offset: offset, Opcode: op, Known: false})
			msg := (&Error{Kind: KindUnknownOpcode, Offset: offset, Byte: b}).Error()
			if !seen[msg] {
				seen[msg] = true
				warnings = append(warnings, Warning{Offset: offset, Message: msg})
			}
			offset++
			continue
		}

		operand, consumed, err := d.readOperand(op, bytecode, offset)
		if err != nil {
			return nil, nil, err
		}

		instructions = append(instructions, Instruction{Offset: offset, Opcode: op, Known: true, Operand: operand})
		offset += 1 + consumed
	}

	return instructions, warnings, nil
}

// readOperand decodes the operand bytes following opcode op starting at
// offset (which points at the opcode byte itself). It returns the decoded
// Operand (nil for EncNone) and the number of bytes consumed beyond the
// opcode byte.
func (d *Disassembler) readOperand(op opcode.OpCode, data []byte, offset int) (*Operand, int, error) {
	if constant, ok := opcode.IsImmediateConstant(op); ok {
		switch {
		case op == opcode.PUSHT:
			return &Operand{Tag: TagBool, B: true}, 0, nil
		case op == opcode.PUSHF:
			return &Operand{Tag: TagBool, B: false}, 0, nil
		default:
			return &Operand{Tag: TagI64, I: constant}, 0, nil
		}
	}
	if op == opcode.PUSHNULL {
		return &Operand{Tag: TagNull}, 0, nil
	}

	enc, _ := opcode.Encoding(op)
	switch enc {
	case opcode.EncNone:
		return nil, 0, nil
	case opcode.EncI8:
		b, err := slice(data, offset+1, 1, offset)
		if err != nil {
			return nil, 0, err
		}
		return &Operand{Tag: TagI8, I: int64(int8(b[0]))}, 1, nil
	case opcode.EncU8:
		b, err := slice(data, offset+1, 1, offset)
		if err != nil {
			return nil, 0, err
		}
		return &Operand{Tag: TagU8, U: uint64(b[0])}, 1, nil
	case opcode.EncI16:
		b, err := slice(data, offset+1, 2, offset)
		if err != nil {
			return nil, 0, err
		}
		return &Operand{Tag: TagI16, I: int64(int16(binary.LittleEndian.Uint16(b)))}, 2, nil
	case opcode.EncU16:
		b, err := slice(data, offset+1, 2, offset)
		if err != nil {
			return nil, 0, err
		}
		return &Operand{Tag: TagU16, U: uint64(binary.LittleEndian.Uint16(b))}, 2, nil
	case opcode.EncI32:
		b, err := slice(data, offset+1, 4, offset)
		if err != nil {
			return nil, 0, err
		}
		return &Operand{Tag: TagI32, I: int64(int32(binary.LittleEndian.Uint32(b)))}, 4, nil
	case opcode.EncU32:
		b, err := slice(data, offset+1, 4, offset)
		if err != nil {
			return nil, 0, err
		}
		return &Operand{Tag: TagU32, U: uint64(binary.LittleEndian.Uint32(b))}, 4, nil
	case opcode.EncI64:
		b, err := slice(data, offset+1, 8, offset)
		if err != nil {
			return nil, 0, err
		}
		return &Operand{Tag: TagI64, I: int64(binary.LittleEndian.Uint64(b))}, 8, nil
	case opcode.EncJump8:
		b, err := slice(data, offset+1, 1, offset)
		if err != nil {
			return nil, 0, err
		}
		return &Operand{Tag: TagJump8, Jump: int32(int8(b[0]))}, 1, nil
	case opcode.EncJump32:
		b, err := slice(data, offset+1, 4, offset)
		if err != nil {
			return nil, 0, err
		}
		return &Operand{Tag: TagJump32, Jump: int32(binary.LittleEndian.Uint32(b))}, 4, nil
	case opcode.EncSyscall:
		b, err := slice(data, offset+1, 4, offset)
		if err != nil {
			return nil, 0, err
		}
		return &Operand{Tag: TagSyscall, Syscall: binary.LittleEndian.Uint32(b)}, 4, nil
	case opcode.EncBytesFixed:
		n := opcode.FixedPayloadLen(op)
		b, err := slice(data, offset+1, n, offset)
		if err != nil {
			return nil, 0, err
		}
		return &Operand{Tag: TagBytes, Bytes: append([]byte(nil), b...)}, n, nil
	case opcode.EncTry8:
		b, err := slice(data, offset+1, 2, offset)
		if err != nil {
			return nil, 0, err
		}
		return &Operand{Tag: TagBytes, Bytes: append([]byte(nil), b...)}, 2, nil
	case opcode.EncTry32:
		b, err := slice(data, offset+1, 8, offset)
		if err != nil {
			return nil, 0, err
		}
		return &Operand{Tag: TagBytes, Bytes: append([]byte(nil), b...)}, 8, nil
	case opcode.EncInitSlot:
		b, err := slice(data, offset+1, 2, offset)
		if err != nil {
			return nil, 0, err
		}
		return &Operand{Tag: TagBytes, Bytes: append([]byte(nil), b...)}, 2, nil
	case opcode.EncData1, opcode.EncData2, opcode.EncData4:
		prefixLen := 1
		if enc == opcode.EncData2 {
			prefixLen = 2
		} else if enc == opcode.EncData4 {
			prefixLen = 4
		}
		return d.readLengthPrefixed(data, offset, prefixLen)
	default:
		return nil, 0, nil
	}
}

func (d *Disassembler) readLengthPrefixed(data []byte, offset int, prefixLen int) (*Operand, int, error) {
	lenBytes, err := slice(data, offset+1, prefixLen, offset)
	if err != nil {
		return nil, 0, err
	}
	var length int
	switch prefixLen {
	case 1:
		length = int(lenBytes[0])
	case 2:
		length = int(binary.LittleEndian.Uint16(lenBytes))
	case 4:
		length = int(binary.LittleEndian.Uint32(lenBytes))
	}
	if length > MaxOperandLen {
		return nil, 0, &Error{Kind: KindOperandTooLarge, Offset: offset, Len: length}
	}
	dataStart := offset + 1 + prefixLen
	payload, err := slice(data, dataStart, length, offset)
	if err != nil {
		return nil, 0, err
	}
	return &Operand{Tag: TagBytes, Bytes: append([]byte(nil), payload...)}, prefixLen + length, nil
}

// Length returns the total byte length (opcode + operand) of an already
// decoded Instruction. Used by the CFG builder when it needs "the start of
// the next instruction" but only has the encoding table, not a live
// instruction-index map (§4.5's jump-delta decoding rule).
func Length(inst Instruction) int {
	if !inst.Known {
		return 1
	}
	if _, ok := opcode.IsImmediateConstant(inst.Opcode); ok {
		return 1
	}
	if inst.Opcode == opcode.PUSHNULL {
		return 1
	}
	enc, ok := opcode.Encoding(inst.Opcode)
	if !ok {
		return 1
	}
	if n, ok := enc.Length(); ok {
		return n
	}
	switch enc {
	case opcode.EncBytesFixed:
		return 1 + opcode.FixedPayloadLen(inst.Opcode)
	case opcode.EncData1, opcode.EncData2, opcode.EncData4:
		prefixLen := 1
		if enc == opcode.EncData2 {
			prefixLen = 2
		} else if enc == opcode.EncData4 {
			prefixLen = 4
		}
		payload := 0
		if inst.Operand != nil && inst.Operand.Tag == TagBytes {
			payload = len(inst.Operand.Bytes)
		}
		return 1 + prefixLen + payload
	default:
		return 1
	}
}

func slice(data []byte, start, length, offset int) ([]byte, error) {
	end := start + length
	if end > len(data) || end < start {
		return nil, &Error{Kind: KindUnexpectedEof, Offset: offset}
	}
	return data[start:end], nil
}
