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

// lowerSlotOp handles INITSLOT and every LD*/ST* local/arg/static
// instruction. Loads push a slot label; the first store to a local or
// static slot emits a `let` declaration, subsequent stores a plain
// assignment (§4.9.3's "Slot operations" rule).
func (e *Emitter) lowerSlotOp(inst disasm.Instruction) bool {
	if inst.Opcode == opcode.INITSLOT {
		if inst.Operand != nil {
			locals, args := disasm.DecodeInitSlot(*inst.Operand)
			e.emit(inst.Offset, fmt.Sprintf("// locals: %d, args: %d", locals, args))
		}
		return true
	}

	if kind, index, isWrite, ok := slotAccessOpcode(inst); ok {
		label := slotLabel(kind, index, e.argLabels)
		if isWrite {
			value := e.pop()
			if kind == slotLocal && !e.initializedLocals[index] {
				e.initializedLocals[index] = true
				e.emit(inst.Offset, fmt.Sprintf("let %s = %s;", label, value))
			} else if kind == slotStatic && !e.initializedStatics[index] {
				e.initializedStatics[index] = true
				e.emit(inst.Offset, fmt.Sprintf("let %s = %s;", label, value))
			} else {
				e.emit(inst.Offset, fmt.Sprintf("%s = %s;", label, value))
			}
		} else {
			e.push(label)
		}
		return true
	}
	return false
}

type slotClass int

const (
	slotLocal slotClass = iota
	slotArg
	slotStatic
)

func slotLabel(kind slotClass, index int, argLabels []string) string {
	switch kind {
	case slotLocal:
		return fmt.Sprintf("loc%d", index)
	case slotArg:
		if index >= 0 && index < len(argLabels) {
			return argLabels[index]
		}
		return fmt.Sprintf("arg%d", index)
	default:
		return fmt.Sprintf("static%d", index)
	}
}

func slotAccessOpcode(inst disasm.Instruction) (kind slotClass, index int, isWrite bool, ok bool) {
	idx := func() int {
		if inst.Operand == nil {
			return -1
		}
		v, ok := inst.Operand.AsInt()
		if !ok {
			return -1
		}
		return int(v)
	}

	switch inst.Opcode {
	case opcode.LDLOC0, opcode.LDLOC1, opcode.LDLOC2, opcode.LDLOC3, opcode.LDLOC4, opcode.LDLOC5, opcode.LDLOC6:
		return slotLocal, int(inst.Opcode - opcode.LDLOC0), false, true
	case opcode.LDLOC:
		return slotLocal, idx(), false, true
	case opcode.STLOC0, opcode.STLOC1, opcode.STLOC2, opcode.STLOC3, opcode.STLOC4, opcode.STLOC5, opcode.STLOC6:
		return slotLocal, int(inst.Opcode - opcode.STLOC0), true, true
	case opcode.STLOC:
		return slotLocal, idx(), true, true
	case opcode.LDARG0, opcode.LDARG1, opcode.LDARG2, opcode.LDARG3, opcode.LDARG4, opcode.LDARG5, opcode.LDARG6:
		return slotArg, int(inst.Opcode - opcode.LDARG0), false, true
	case opcode.LDARG:
		return slotArg, idx(), false, true
	case opcode.STARG0, opcode.STARG1, opcode.STARG2, opcode.STARG3, opcode.STARG4, opcode.STARG5, opcode.STARG6:
		return slotArg, int(inst.Opcode - opcode.STARG0), true, true
	case opcode.STARG:
		return slotArg, idx(), true, true
	case opcode.LDSFLD0, opcode.LDSFLD1, opcode.LDSFLD2, opcode.LDSFLD3, opcode.LDSFLD4, opcode.LDSFLD5, opcode.LDSFLD6:
		return slotStatic, int(inst.Opcode - opcode.LDSFLD0), false, true
	case opcode.LDSFLD:
		return slotStatic, idx(), false, true
	case opcode.STSFLD0, opcode.STSFLD1, opcode.STSFLD2, opcode.STSFLD3, opcode.STSFLD4, opcode.STSFLD5, opcode.STSFLD6:
		return slotStatic, int(inst.Opcode - opcode.STSFLD0), true, true
	case opcode.STSFLD:
		return slotStatic, idx(), true, true
	default:
		return 0, 0, false, false
	}
}
