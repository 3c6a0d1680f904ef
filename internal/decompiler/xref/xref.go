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

// Package xref builds per-slot read/write cross-references and a
// type-inference pass that simulates a compile-time value stack over a
// method's instruction slice.
package xref

import (
	"github.com/n42blockchain/N42/internal/decompiler/disasm"
	"github.com/n42blockchain/N42/internal/decompiler/opcode"
)

// SlotKind distinguishes local, argument, and static-field slots.
type SlotKind int

const (
	SlotLocal SlotKind = iota
	SlotArg
	SlotStatic
)

// SlotXref accumulates the read/write offsets observed for one slot index.
type SlotXref struct {
	Reads  []int
	Writes []int
}

// Xrefs holds the three slot-kind tables for a method, each indexed by
// slot number and grown on demand.
type Xrefs struct {
	Locals  []SlotXref
	Args    []SlotXref
	Statics []SlotXref
}

func (x *Xrefs) slotsFor(kind SlotKind) *[]SlotXref {
	switch kind {
	case SlotLocal:
		return &x.Locals
	case SlotArg:
		return &x.Args
	default:
		return &x.Statics
	}
}

func (x *Xrefs) grow(kind SlotKind, index int) *SlotXref {
	slots := x.slotsFor(kind)
	for len(*slots) <= index {
		*slots = append(*slots, SlotXref{})
	}
	return &(*slots)[index]
}

// BuildXrefs scans instructions for slot accesses and records each access
// offset under the matching read or write list, tolerating missing
// operands and negative/out-of-range indices by simply not recording them
// (nothing to grow toward).
func BuildXrefs(instructions []disasm.Instruction) *Xrefs {
	x := &Xrefs{}
	for _, inst := range instructions {
		kind, index, isWrite, ok := slotAccess(inst)
		if !ok || index < 0 {
			continue
		}
		slot := x.grow(kind, index)
		if isWrite {
			slot.Writes = append(slot.Writes, inst.Offset)
		} else {
			slot.Reads = append(slot.Reads, inst.Offset)
		}
	}
	return x
}

func operandIndex(inst disasm.Instruction) int {
	if inst.Operand == nil {
		return -1
	}
	v, ok := inst.Operand.AsInt()
	if !ok {
		return -1
	}
	return int(v)
}

func slotAccess(inst disasm.Instruction) (kind SlotKind, index int, isWrite bool, ok bool) {
	switch inst.Opcode {
	case opcode.LDLOC0, opcode.LDLOC1, opcode.LDLOC2, opcode.LDLOC3, opcode.LDLOC4, opcode.LDLOC5, opcode.LDLOC6:
		return SlotLocal, int(inst.Opcode - opcode.LDLOC0), false, true
	case opcode.LDLOC:
		return SlotLocal, operandIndex(inst), false, true
	case opcode.STLOC0, opcode.STLOC1, opcode.STLOC2, opcode.STLOC3, opcode.STLOC4, opcode.STLOC5, opcode.STLOC6:
		return SlotLocal, int(inst.Opcode - opcode.STLOC0), true, true
	case opcode.STLOC:
		return SlotLocal, operandIndex(inst), true, true
	case opcode.LDARG0, opcode.LDARG1, opcode.LDARG2, opcode.LDARG3, opcode.LDARG4, opcode.LDARG5, opcode.LDARG6:
		return SlotArg, int(inst.Opcode - opcode.LDARG0), false, true
	case opcode.LDARG:
		return SlotArg, operandIndex(inst), false, true
	case opcode.STARG0, opcode.STARG1, opcode.STARG2, opcode.STARG3, opcode.STARG4, opcode.STARG5, opcode.STARG6:
		return SlotArg, int(inst.Opcode - opcode.STARG0), true, true
	case opcode.STARG:
		return SlotArg, operandIndex(inst), true, true
	case opcode.LDSFLD0, opcode.LDSFLD1, opcode.LDSFLD2, opcode.LDSFLD3, opcode.LDSFLD4, opcode.LDSFLD5, opcode.LDSFLD6:
		return SlotStatic, int(inst.Opcode - opcode.LDSFLD0), false, true
	case opcode.LDSFLD:
		return SlotStatic, operandIndex(inst), false, true
	case opcode.STSFLD0, opcode.STSFLD1, opcode.STSFLD2, opcode.STSFLD3, opcode.STSFLD4, opcode.STSFLD5, opcode.STSFLD6:
		return SlotStatic, int(inst.Opcode - opcode.STSFLD0), true, true
	case opcode.STSFLD:
		return SlotStatic, operandIndex(inst), true, true
	default:
		return 0, 0, false, false
	}
}

// SlotCounts returns (locals, args) from the method's INITSLOT instruction,
// or (0, 0) if absent (the method uses only the implicit evaluation
// stack). staticCount comes from a separate global INITSSLOT scan.
func SlotCounts(instructions []disasm.Instruction) (locals, args int) {
	for _, inst := range instructions {
		if inst.Opcode == opcode.INITSLOT && inst.Operand != nil {
			l, a := disasm.DecodeInitSlot(*inst.Operand)
			return int(l), int(a)
		}
	}
	return 0, 0
}

// StaticCount returns n from a global INITSSLOT(n), or 0 if absent.
func StaticCount(instructions []disasm.Instruction) int {
	for _, inst := range instructions {
		if inst.Opcode == opcode.INITSSLOT {
			if v, ok := operandIndexOK(inst); ok {
				return v
			}
		}
	}
	return 0
}

func operandIndexOK(inst disasm.Instruction) (int, bool) {
	if inst.Operand == nil {
		return 0, false
	}
	v, ok := inst.Operand.AsInt()
	return int(v), ok
}
