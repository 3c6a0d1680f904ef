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

package highlevel

import (
	"github.com/n42blockchain/N42/internal/decompiler/disasm"
	"github.com/n42blockchain/N42/internal/decompiler/opcode"
)

// lowerStackManipulation models pure stack shuffles on the textual stack;
// literal values carry through DUP/OVER/TUCK via the literals map. It
// reports whether inst was one of the shuffle opcodes it handles.
func (e *Emitter) lowerStackManipulation(inst disasm.Instruction) bool {
	switch inst.Opcode {
	case opcode.DROP:
		e.pop()
	case opcode.DUP:
		top := e.peekTop()
		e.push(top)
	case opcode.NIP:
		top := e.pop()
		e.pop()
		e.push(top)
	case opcode.OVER:
		v := e.peekAt(1)
		e.push(v)
	case opcode.SWAP:
		b, a := e.pop(), e.pop()
		e.push(b)
		e.push(a)
	case opcode.ROT:
		c, b, a := e.popOrMissing(), e.popOrMissing(), e.popOrMissing()
		e.push(b)
		e.push(c)
		e.push(a)
	case opcode.TUCK:
		top := e.peekTop()
		b := e.pop()
		a := e.pop()
		e.push(top)
		e.push(a)
		e.push(b)
	case opcode.PICK:
		n := e.popIntLiteral()
		if n != nil {
			e.push(e.peekAt(int(*n)))
		} else {
			e.push("missing_stack_item()")
		}
	case opcode.ROLL:
		n := e.popIntLiteral()
		if n != nil {
			idx := len(e.stack) - 1 - int(*n)
			if idx >= 0 && idx < len(e.stack) {
				v := e.stack[idx]
				e.stack = append(e.stack[:idx], e.stack[idx+1:]...)
				e.push(v)
			}
		}
	case opcode.XDROP:
		n := e.popIntLiteral()
		if n != nil {
			idx := len(e.stack) - 1 - int(*n)
			if idx >= 0 && idx < len(e.stack) {
				e.stack = append(e.stack[:idx], e.stack[idx+1:]...)
			}
		}
	case opcode.REVERSE3, opcode.REVERSE4, opcode.REVERSEN:
		e.reverseTop(inst.Opcode)
	case opcode.CLEAR:
		e.stack = nil
	default:
		return false
	}
	return true
}

func (e *Emitter) peekTop() string { return e.peekAt(0) }

func (e *Emitter) peekAt(depth int) string {
	idx := len(e.stack) - 1 - depth
	if idx < 0 || idx >= len(e.stack) {
		return "missing_stack_item()"
	}
	return e.stack[idx]
}

func (e *Emitter) popOrMissing() string {
	if len(e.stack) == 0 {
		return "missing_stack_item()"
	}
	return e.pop()
}

func (e *Emitter) popIntLiteral() *int64 {
	name := e.pop()
	lit, ok := e.literals[name]
	if !ok || !lit.IsInt {
		return nil
	}
	v := lit.Int
	return &v
}

func (e *Emitter) reverseTop(op opcode.OpCode) {
	n := 3
	switch op {
	case opcode.REVERSE4:
		n = 4
	case opcode.REVERSEN:
		if v := e.popIntLiteral(); v != nil {
			n = int(*v)
		} else {
			return
		}
	}
	if n <= 0 || n > len(e.stack) {
		return
	}
	top := e.stack[len(e.stack)-n:]
	for i, j := 0, len(top)-1; i < j; i, j = i+1, j-1 {
		top[i], top[j] = top[j], top[i]
	}
}
