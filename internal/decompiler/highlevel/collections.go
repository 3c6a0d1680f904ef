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
	"fmt"

	"github.com/n42blockchain/N42/internal/decompiler/disasm"
	"github.com/n42blockchain/N42/internal/decompiler/opcode"
)

var convertHelpers = map[int64]string{
	0x00: "to_any", 0x10: "to_pointer", 0x20: "to_bool", 0x21: "to_int",
	0x28: "to_bytestring", 0x30: "to_buffer", 0x40: "to_array",
	0x41: "to_struct", 0x48: "to_map", 0x60: "to_interop",
}

// lowerCollection handles the constructors and pack/unpack family from
// §4.9.3's "Collections" rule.
func (e *Emitter) lowerCollection(inst disasm.Instruction) bool {
	switch inst.Opcode {
	case opcode.NEWARRAY0:
		t := e.newTemp()
		e.emit(inst.Offset, fmt.Sprintf("let %s = [];", t))
		e.push(t)
	case opcode.NEWSTRUCT0:
		t := e.newTemp()
		e.emit(inst.Offset, fmt.Sprintf("let %s = struct{};", t))
		e.push(t)
	case opcode.NEWMAP:
		t := e.newTemp()
		e.emit(inst.Offset, fmt.Sprintf("let %s = {};", t))
		e.push(t)
	case opcode.NEWARRAY, opcode.NEWARRAY_T:
		count := e.pop()
		t := e.newTemp()
		e.emit(inst.Offset, fmt.Sprintf("let %s = new_array(%s);", t, count))
		e.push(t)
	case opcode.NEWSTRUCT:
		count := e.pop()
		t := e.newTemp()
		e.emit(inst.Offset, fmt.Sprintf("let %s = new_struct(%s);", t, count))
		e.push(t)
	case opcode.NEWBUFFER:
		count := e.pop()
		t := e.newTemp()
		e.emit(inst.Offset, fmt.Sprintf("let %s = new_buffer(%s);", t, count))
		e.push(t)
	case opcode.CONVERT:
		v := e.pop()
		t := e.newTemp()
		fn := "convert"
		if inst.Operand != nil {
			if tag, ok := inst.Operand.AsInt(); ok {
				if named, ok := convertHelpers[tag]; ok {
					fn = named
				}
			}
		}
		e.emit(inst.Offset, fmt.Sprintf("let %s = %s(%s);", t, fn, v))
		e.push(t)
	case opcode.PACK, opcode.PACKMAP, opcode.PACKSTRUCT:
		e.lowerPack(inst)
	case opcode.UNPACK:
		e.lowerUnpack(inst)
	default:
		return false
	}
	return true
}

func (e *Emitter) lowerPack(inst disasm.Instruction) {
	n := e.popIntLiteral()
	t := e.newTemp()
	if n == nil {
		e.emit(inst.Offset, fmt.Sprintf("let %s = pack_dynamic(%s);", t, "n"))
		e.push(t)
		return
	}
	elems := make([]string, *n)
	for i := int(*n) - 1; i >= 0; i-- {
		elems[i] = e.pop()
	}
	e.emit(inst.Offset, fmt.Sprintf("let %s = [%s];", t, joinArgs(elems)))
	e.push(t)
}

func (e *Emitter) lowerUnpack(inst disasm.Instruction) {
	// Every source, packed literal or not, lowers to a generic unpack()
	// call whose result is pushed, followed by a fresh count temp with no
	// known value. Element lists built by PACK are not tracked, so a
	// packed source is not re-expanded into its elements, and no
	// look-ahead is done to size an unknown source.
	v := e.pop()
	t := e.newTemp()
	e.emit(inst.Offset, fmt.Sprintf("let %s = unpack(%s);", t, v))
	e.push(t)
	countTemp := e.newTemp()
	e.literals[countTemp] = Literal{}
	e.push(countTemp)
}

// lowerItemOps handles the fixed-arity named helpers for item access.
func (e *Emitter) lowerItemOps(inst disasm.Instruction) bool {
	unary := map[opcode.OpCode]string{
		opcode.KEYS: "keys", opcode.VALUES: "values", opcode.SIZE: "size",
		opcode.ISNULL: "is_null", opcode.CLEARITEMS: "clear_items",
		opcode.REVERSEITEMS: "reverse_items", opcode.POPITEM: "pop_item",
	}
	if fn, ok := unary[inst.Opcode]; ok {
		v := e.pop()
		if inst.Opcode == opcode.CLEARITEMS || inst.Opcode == opcode.REVERSEITEMS {
			e.emit(inst.Offset, fmt.Sprintf("%s(%s);", fn, v))
			return true
		}
		t := e.newTemp()
		e.emit(inst.Offset, fmt.Sprintf("let %s = %s(%s);", t, fn, v))
		e.push(t)
		return true
	}

	binary := map[opcode.OpCode]string{
		opcode.PICKITEM: "pickitem", opcode.HASKEY: "haskey", opcode.APPEND: "append",
	}
	if fn, ok := binary[inst.Opcode]; ok {
		b, a := e.pop(), e.pop()
		if inst.Opcode == opcode.APPEND {
			e.emit(inst.Offset, fmt.Sprintf("%s(%s, %s);", fn, a, b))
			return true
		}
		t := e.newTemp()
		e.emit(inst.Offset, fmt.Sprintf("let %s = %s(%s, %s);", t, fn, a, b))
		e.push(t)
		return true
	}

	switch inst.Opcode {
	case opcode.SETITEM:
		v, k, a := e.pop(), e.pop(), e.pop()
		e.emit(inst.Offset, fmt.Sprintf("setitem(%s, %s, %s);", a, k, v))
		return true
	case opcode.REMOVE:
		k, a := e.pop(), e.pop()
		e.emit(inst.Offset, fmt.Sprintf("remove(%s, %s);", a, k))
		return true
	case opcode.ISTYPE:
		v := e.pop()
		t := e.newTemp()
		tag := int64(0)
		if inst.Operand != nil {
			tag, _ = inst.Operand.AsInt()
		}
		e.emit(inst.Offset, fmt.Sprintf("let %s = istype(%s, 0x%02X);", t, v, tag))
		e.push(t)
		return true
	}
	return false
}
