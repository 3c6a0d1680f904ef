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

package xref

import (
	"github.com/n42blockchain/N42/internal/decompiler/disasm"
	"github.com/n42blockchain/N42/internal/decompiler/opcode"
)

// InferTypes walks instructions as a symbolic stack machine, tracking an
// inferred ValueType (and, where traceable, an int_literal) for every
// value the method touches, and growing slot-typed tables as it observes
// loads and stores. argSeed pre-populates argument slot types from the
// manifest ABI when available; pass nil to seed nothing.
func InferTypes(instructions []disasm.Instruction, argSeed []ValueType) *MethodTypes {
	locals, args := SlotCounts(instructions)
	mt := &MethodTypes{
		Arguments: make([]ValueType, args),
		Locals:    make([]ValueType, locals),
	}
	for i := range mt.Arguments {
		mt.Arguments[i] = Unknown
	}
	for i, seed := range argSeed {
		if i < len(mt.Arguments) {
			mt.Arguments[i] = seed
		}
	}

	s := &stack{}
	for _, inst := range instructions {
		stepInstruction(inst, s, mt)
	}
	return mt
}

func growLocals(mt *MethodTypes, index int) {
	for len(mt.Locals) <= index {
		mt.Locals = append(mt.Locals, Unknown)
	}
}

func growArgs(mt *MethodTypes, index int) {
	for len(mt.Arguments) <= index {
		mt.Arguments = append(mt.Arguments, Unknown)
	}
}

func stepInstruction(inst disasm.Instruction, s *stack, mt *MethodTypes) {
	if !inst.Known {
		return
	}

	if constant, ok := opcode.IsImmediateConstant(inst.Opcode); ok {
		if inst.Opcode == opcode.PUSHT || inst.Opcode == opcode.PUSHF {
			s.push(val(Boolean))
		} else {
			s.push(litInt(constant))
		}
		return
	}

	switch inst.Opcode {
	case opcode.PUSHNULL:
		s.push(val(Null))
		return
	case opcode.PUSHA:
		s.push(val(Pointer))
		return
	case opcode.PUSHINT8, opcode.PUSHINT16, opcode.PUSHINT32, opcode.PUSHINT64,
		opcode.PUSHINT128, opcode.PUSHINT256:
		if inst.Operand != nil {
			if v, ok := inst.Operand.AsInt(); ok {
				s.push(litInt(v))
				return
			}
		}
		s.push(val(Integer))
		return
	case opcode.PUSHDATA1, opcode.PUSHDATA2, opcode.PUSHDATA4:
		s.push(val(ByteString))
		return
	}

	// stack shuffles
	switch inst.Opcode {
	case opcode.DUP:
		top := s.peek(0)
		s.push(top)
		return
	case opcode.SWAP:
		b, a := s.pop(), s.pop()
		s.push(b)
		s.push(a)
		return
	case opcode.OVER:
		second := s.peek(1)
		s.push(second)
		return
	case opcode.NIP:
		top := s.pop()
		s.pop()
		s.push(top)
		return
	case opcode.ROT:
		c, b, a := s.pop(), s.pop(), s.pop()
		s.push(b)
		s.push(c)
		s.push(a)
		return
	case opcode.TUCK:
		top := s.peek(0)
		second := s.pop()
		first := s.pop()
		s.push(top)
		s.push(first)
		s.push(second)
		return
	case opcode.DROP:
		s.pop()
		return
	case opcode.PICK, opcode.ROLL, opcode.XDROP:
		n := s.pop()
		if n.IntLiteral != nil {
			v := s.peek(int(*n.IntLiteral))
			if inst.Opcode == opcode.PICK {
				s.push(v)
			}
			return
		}
		s.push(val(Unknown))
		return
	case opcode.REVERSE3, opcode.REVERSE4, opcode.REVERSEN:
		// value-preserving shuffle; this coarse simulator doesn't track
		// stack order precisely enough to reverse it, so it degrades to
		// leaving the stack depth unchanged without reordering types.
		return
	case opcode.CLEAR:
		s.values = nil
		return
	}

	// slot access
	if kind, index, isWrite, ok := slotAccess(inst); ok && index >= 0 {
		switch kind {
		case SlotLocal:
			growLocals(mt, index)
			if isWrite {
				mt.Locals[index] = Join(mt.Locals[index], s.pop().Ty)
			} else {
				s.push(val(mt.Locals[index]))
			}
		case SlotArg:
			growArgs(mt, index)
			if isWrite {
				mt.Arguments[index] = Join(mt.Arguments[index], s.pop().Ty)
			} else {
				s.push(val(mt.Arguments[index]))
			}
		case SlotStatic:
			// static-field types are not tracked; this simulator only
			// keeps the operand stack balanced.
			if isWrite {
				s.pop()
			} else {
				s.push(val(Unknown))
			}
		}
		return
	}

	// collection constructors
	switch inst.Opcode {
	case opcode.NEWARRAY0:
		s.push(val(Array))
		return
	case opcode.NEWARRAY, opcode.NEWARRAY_T:
		s.pop()
		s.push(val(Array))
		return
	case opcode.NEWMAP:
		s.push(val(Map))
		return
	case opcode.NEWSTRUCT0:
		s.push(val(Struct))
		return
	case opcode.NEWSTRUCT:
		s.pop()
		s.push(val(Struct))
		return
	case opcode.NEWBUFFER:
		s.pop()
		s.push(val(Buffer))
		return
	case opcode.PACK:
		s.pop()
		s.push(val(Array))
		return
	case opcode.PACKMAP:
		s.pop()
		s.push(val(Map))
		return
	case opcode.PACKSTRUCT:
		s.pop()
		s.push(val(Struct))
		return
	case opcode.UNPACK:
		s.pop()
		return
	}

	// comparisons / booleans
	switch inst.Opcode {
	case opcode.EQUAL, opcode.NOTEQUAL, opcode.NUMEQUAL, opcode.NUMNOTEQUAL,
		opcode.LT, opcode.LE, opcode.GT, opcode.GE, opcode.BOOLAND, opcode.BOOLOR:
		s.pop()
		s.pop()
		s.push(val(Boolean))
		return
	case opcode.NOT, opcode.NZ, opcode.ISNULL:
		s.pop()
		s.push(val(Boolean))
		return
	case opcode.WITHIN:
		s.pop()
		s.pop()
		s.pop()
		s.push(val(Boolean))
		return
	case opcode.ISTYPE:
		s.pop()
		s.push(val(Boolean))
		return
	}

	// arithmetic / bitwise
	switch inst.Opcode {
	case opcode.SIGN, opcode.ABS, opcode.NEGATE, opcode.INC, opcode.DEC, opcode.SQRT,
		opcode.INVERT:
		s.pop()
		s.push(val(Integer))
		return
	case opcode.ADD, opcode.SUB, opcode.MUL, opcode.DIV, opcode.MOD, opcode.POW,
		opcode.MODMUL, opcode.MODPOW, opcode.SHL, opcode.SHR,
		opcode.AND, opcode.OR, opcode.XOR, opcode.MIN, opcode.MAX:
		s.pop()
		s.pop()
		s.push(val(Integer))
		return
	}

	if inst.Opcode == opcode.CONVERT {
		s.pop()
		if inst.Operand != nil {
			if tag, ok := inst.Operand.AsInt(); ok {
				if ty, ok := convertTable[tag]; ok {
					s.push(val(ty))
					return
				}
			}
		}
		s.push(val(Unknown))
		return
	}

	if inst.Opcode == opcode.PICKITEM {
		s.pop()
		s.pop()
		s.push(val(Unknown))
		return
	}

	if inst.Opcode == opcode.SETITEM {
		s.pop()
		s.pop()
		s.pop()
		return
	}

	// default: opcodes this simulator doesn't model leave the stack
	// untouched. This under-approximates depth for opcodes with
	// nonzero net stack effect outside the cases above, which is
	// acceptable for a best-effort lattice, not an execution engine.
}
