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

// lowerControlFlow handles every jump, call, and try/catch/finally
// instruction. It returns false for anything it doesn't own, letting the
// generic dispatcher in lower.go continue.
func (e *Emitter) lowerControlFlow(i int) bool {
	inst := e.instructions[i]
	switch inst.Opcode {
	case opcode.JMP, opcode.JMP_L:
		e.lowerUnconditionalJump(i)
		return true
	case opcode.JMPIF, opcode.JMPIF_L, opcode.JMPIFNOT, opcode.JMPIFNOT_L,
		opcode.JMPEQ, opcode.JMPEQ_L, opcode.JMPNE, opcode.JMPNE_L,
		opcode.JMPGT, opcode.JMPGT_L, opcode.JMPGE, opcode.JMPGE_L,
		opcode.JMPLT, opcode.JMPLT_L, opcode.JMPLE, opcode.JMPLE_L:
		e.lowerConditionalJump(i)
		return true
	case opcode.CALL, opcode.CALL_L:
		e.lowerDirectCall(i)
		return true
	case opcode.CALLT:
		e.lowerCallT(inst)
		return true
	case opcode.CALLA:
		e.lowerCallA(i)
		return true
	case opcode.TRY, opcode.TRY_L:
		e.lowerTry(i)
		return true
	case opcode.ENDTRY, opcode.ENDTRY_L:
		e.lowerEndTry(i)
		return true
	case opcode.ENDFINALLY:
		e.emitComment(inst)
		e.registerCloser(inst.Offset+disasm.Length(inst), "}")
		return true
	}
	return false
}

func (e *Emitter) condString(op opcode.OpCode, negated bool) string {
	cond := e.pop()
	switch op {
	case opcode.JMPIF, opcode.JMPIF_L:
		if negated {
			return fmt.Sprintf("!%s", cond)
		}
		return cond
	case opcode.JMPIFNOT, opcode.JMPIFNOT_L:
		if negated {
			return cond
		}
		return fmt.Sprintf("!%s", cond)
	case opcode.JMPEQ, opcode.JMPEQ_L:
		right, left := e.pop(), cond
		return fmt.Sprintf("%s == %s", left, right)
	case opcode.JMPNE, opcode.JMPNE_L:
		right, left := e.pop(), cond
		return fmt.Sprintf("%s != %s", left, right)
	case opcode.JMPGT, opcode.JMPGT_L:
		right, left := e.pop(), cond
		return fmt.Sprintf("%s > %s", left, right)
	case opcode.JMPGE, opcode.JMPGE_L:
		right, left := e.pop(), cond
		return fmt.Sprintf("%s >= %s", left, right)
	case opcode.JMPLT, opcode.JMPLT_L:
		right, left := e.pop(), cond
		return fmt.Sprintf("%s < %s", left, right)
	case opcode.JMPLE, opcode.JMPLE_L:
		right, left := e.pop(), cond
		return fmt.Sprintf("%s <= %s", left, right)
	default:
		return cond
	}
}

// lowerConditionalJump implements both the "direct branch" (if-opening)
// and "do/while tail" rules of §4.9.3, selected by whether setup()
// pre-marked this instruction's offset as a loop tail.
func (e *Emitter) lowerConditionalJump(i int) {
	inst := e.instructions[i]
	e.emitComment(inst)

	if e.doWhileTails[inst.Offset] {
		cond := e.condString(inst.Opcode, true)
		e.emit(inst.Offset, fmt.Sprintf("} while (%s);", cond))
		if len(e.loops) > 0 {
			e.loops = e.loops[:len(e.loops)-1]
		}
		return
	}

	target, ok := e.resolveJumpTarget(i)
	cond := e.condString(inst.Opcode, false)
	e.emit(inst.Offset, fmt.Sprintf("if %s {", cond))
	if !ok {
		e.registerCloser(e.nextOffset(i), "}")
		return
	}

	if e.hasBackwardReach(i, target) {
		// rewrite as a while loop: this header already reads "if cond {";
		// retarget the just-emitted line.
		e.out[len(e.out)-1].Text = fmt.Sprintf("while %s {", cond)
		e.loops = append(e.loops, loopContext{breakOffset: target})
		e.registerCloser(target, "}")
		return
	}

	e.registerCloser(target, "}")
}

// hasBackwardReach reports whether some later instruction in the method
// jumps backward to target, which is this emitter's signal that a
// conditional-jump's closer should become a while loop rather than a
// plain if block.
func (e *Emitter) hasBackwardReach(fromIdx int, target int) bool {
	for j := fromIdx + 1; j < len(e.instructions); j++ {
		inst := e.instructions[j]
		if !inst.Known || inst.Operand == nil {
			continue
		}
		if inst.Opcode != opcode.JMP && inst.Opcode != opcode.JMP_L {
			continue
		}
		if t, ok := e.resolveJumpTarget(j); ok && t == target && inst.Offset >= target {
			return true
		}
	}
	return false
}

func (e *Emitter) lowerUnconditionalJump(i int) {
	inst := e.instructions[i]
	e.emitComment(inst)
	target, ok := e.resolveJumpTarget(i)
	if !ok {
		e.emit(inst.Offset, "goto <unresolved>;")
		return
	}
	if len(e.loops) > 0 {
		top := e.loops[len(e.loops)-1]
		if target == top.breakOffset {
			e.emit(inst.Offset, "break;")
			e.stack = nil
			return
		}
	}
	if target <= inst.Offset {
		// a backward jump to an active loop's header reads as continue
		e.emit(inst.Offset, "continue;")
		e.stack = nil
		return
	}
	e.emit(inst.Offset, fmt.Sprintf("goto label_0x%04X;", target))
	e.transferLabels[target] = true
	e.stack = nil
}

// lowerDirectCall implements CALL/CALL_L per §4.9.3: resolve a label and
// arity via the supplied resolver, falling back to the nearest preceding
// registered entry within 16 bytes when the requested target has no
// label. A declared arity larger than the current stack depth is not
// used: the call is emitted with no arguments, and no other entry is
// tried in its place.
func (e *Emitter) lowerDirectCall(i int) {
	inst := e.instructions[i]
	e.emitComment(inst)
	target := inst.Offset
	if t, ok := e.resolveJumpTarget(i); ok {
		target = t
	}

	label, arity := e.resolveCallTarget(target)
	args := make([]string, arity)
	for j := arity - 1; j >= 0; j-- {
		args[j] = e.pop()
	}
	t := e.newTemp()
	e.emit(inst.Offset, fmt.Sprintf("let %s = %s(%s);", t, label, joinArgs(args)))
	e.push(t)
}

func (e *Emitter) resolveCallTarget(target int) (string, int) {
	if e.resolver.Label != nil {
		if label, ok := e.resolver.Label(target); ok {
			arity := 0
			if e.resolver.ArgCount != nil {
				if n, ok := e.resolver.ArgCount(target); ok && n <= len(e.stack) {
					arity = n
				}
			}
			return label, arity
		}
	}
	// near-miss fallback: take the nearest preceding registered entry
	// within 16 bytes; its arity is used only if it fits the current
	// stack, otherwise the call gets no arguments.
	if e.resolver.Label != nil {
		for back := target; back >= target-16 && back >= 0; back-- {
			if label, ok := e.resolver.Label(back); ok {
				arity := 0
				if e.resolver.ArgCount != nil {
					if n, ok := e.resolver.ArgCount(back); ok && n <= len(e.stack) {
						arity = n
					}
				}
				return label, arity
			}
		}
	}
	return fmt.Sprintf("sub_%X", target), 0
}

func (e *Emitter) lowerCallT(inst disasm.Instruction) {
	e.emitComment(inst)
	idx, ok := indexOperand(inst)
	if !ok || idx < 0 || idx >= len(e.callTokens) {
		e.emit(inst.Offset, "unresolved_callt();")
		return
	}
	info := e.callTokens[idx]
	args := make([]string, info.Arity)
	for j := info.Arity - 1; j >= 0; j-- {
		args[j] = e.pop()
	}
	if info.ReturnsValue {
		t := e.newTemp()
		e.emit(inst.Offset, fmt.Sprintf("let %s = %s(%s);", t, info.Name, joinArgs(args)))
		e.push(t)
	} else {
		e.emit(inst.Offset, fmt.Sprintf("%s(%s);", info.Name, joinArgs(args)))
	}
}

func indexOperand(inst disasm.Instruction) (int, bool) {
	if inst.Operand == nil {
		return 0, false
	}
	v, ok := inst.Operand.AsInt()
	return int(v), ok
}

// lowerCallA implements the §4.9.3 CALLA rule: a literal code pointer
// (as pushed by PUSHA) resolves as an internal call; any other target is
// emitted as a generic indirect-call helper. No precomputed
// offset-to-target map is consulted.
func (e *Emitter) lowerCallA(i int) {
	inst := e.instructions[i]
	e.emitComment(inst)
	target := e.pop()
	if lit, ok := e.literals[target]; ok && lit.IsInt {
		label, arity := e.resolveCallTarget(int(lit.Int))
		args := make([]string, arity)
		for j := arity - 1; j >= 0; j-- {
			args[j] = e.pop()
		}
		t := e.newTemp()
		e.emit(inst.Offset, fmt.Sprintf("let %s = %s(%s);", t, label, joinArgs(args)))
		e.push(t)
		return
	}
	t := e.newTemp()
	e.emit(inst.Offset, fmt.Sprintf("let %s = indirect_call(%s);", t, target))
	e.push(t)
}

// lowerTry implements §4.9.3's try/catch/finally header registration.
func (e *Emitter) lowerTry(i int) {
	inst := e.instructions[i]
	e.emitComment(inst)
	wide := inst.Opcode == opcode.TRY_L
	var catchDelta, finallyDelta int32
	if inst.Operand != nil {
		catchDelta, finallyDelta = disasm.DecodeTryTargets(*inst.Operand, wide)
	}

	e.emit(inst.Offset, "try {")

	bodyCloser := -1
	if catchDelta != 0 {
		if target, ok := e.resolveTarget(i, catchDelta); ok {
			bodyCloser = target
		}
	}
	if finallyDelta != 0 {
		if target, ok := e.resolveTarget(i, finallyDelta); ok {
			if bodyCloser == -1 || target < bodyCloser {
				bodyCloser = target
			}
		}
	}
	if bodyCloser >= 0 {
		e.registerCloser(bodyCloser, "}")
	}
	if catchDelta != 0 {
		if target, ok := e.resolveTarget(i, catchDelta); ok {
			e.pendingClosers[target] = append(e.pendingClosers[target], "catch (exception) {")
		}
	}
	if finallyDelta != 0 {
		if target, ok := e.resolveTarget(i, finallyDelta); ok {
			e.pendingClosers[target] = append(e.pendingClosers[target], "finally {")
		}
	}
}

func (e *Emitter) resolveTarget(i int, delta int32) (int, bool) {
	target := e.nextOffset(i) + int(delta)
	_, ok := e.offsetIndex[target]
	return target, ok
}

func (e *Emitter) lowerEndTry(i int) {
	inst := e.instructions[i]
	e.emitComment(inst)
	e.emit(inst.Offset, "}")
	if target, ok := e.resolveJumpTarget(i); ok {
		e.transferLabels[target] = true
	}
}
