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
	"github.com/n42blockchain/N42/internal/decompiler/syscall"
)

var binaryOperators = map[opcode.OpCode]string{
	opcode.ADD: "+", opcode.SUB: "-", opcode.MUL: "*", opcode.DIV: "/", opcode.MOD: "%",
	opcode.SHL: "<<", opcode.SHR: ">>", opcode.AND: "&", opcode.OR: "|", opcode.XOR: "^",
	opcode.BOOLAND: "&&", opcode.BOOLOR: "||",
	opcode.NUMEQUAL: "==", opcode.NUMNOTEQUAL: "!=",
	opcode.LT: "<", opcode.LE: "<=", opcode.GT: ">", opcode.GE: ">=",
	opcode.EQUAL: "==", opcode.NOTEQUAL: "!=",
}

var binaryFunctions = map[opcode.OpCode]string{
	opcode.POW: "pow", opcode.MODMUL: "modmul", opcode.MODPOW: "modpow",
	opcode.MIN: "min", opcode.MAX: "max",
}

var unaryFunctions = map[opcode.OpCode]string{
	opcode.ABS: "abs", opcode.SIGN: "sign", opcode.SQRT: "sqrt",
	opcode.NEGATE: "-", opcode.INC: "inc", opcode.DEC: "dec",
	opcode.NOT: "!", opcode.NZ: "nz", opcode.INVERT: "~",
}

func (e *Emitter) lower(i int) {
	inst := e.instructions[i]
	if !inst.Known {
		e.emit(inst.Offset, fmt.Sprintf("// %04X: UNKNOWN(0x%02X)", inst.Offset, byte(inst.Opcode)))
		return
	}

	if e.lowerControlFlow(i) {
		return
	}

	e.emitComment(inst)

	if constant, ok := opcode.IsImmediateConstant(inst.Opcode); ok {
		e.lowerLiteralConstant(inst, constant)
		return
	}

	switch inst.Opcode {
	case opcode.PUSHNULL:
		e.literalPush("null", Literal{})
		return
	case opcode.PUSHINT8, opcode.PUSHINT16, opcode.PUSHINT32, opcode.PUSHINT64,
		opcode.PUSHINT128, opcode.PUSHINT256:
		e.lowerPushInt(inst)
		return
	case opcode.PUSHDATA1, opcode.PUSHDATA2, opcode.PUSHDATA4:
		e.lowerPushData(inst)
		return
	case opcode.PUSHA:
		target := e.pushATarget(i)
		e.literalPush(fmt.Sprintf("&label_0x%04X", target), Literal{IsInt: true, Int: int64(target)})
		return
	}

	if op, ok := binaryOperators[inst.Opcode]; ok {
		right, left := e.pop(), e.pop()
		t := e.newTemp()
		e.emit(inst.Offset, fmt.Sprintf("let %s = %s %s %s;", t, left, op, right))
		e.push(t)
		return
	}
	if fn, ok := binaryFunctions[inst.Opcode]; ok {
		right, left := e.pop(), e.pop()
		t := e.newTemp()
		e.emit(inst.Offset, fmt.Sprintf("let %s = %s(%s, %s);", t, fn, left, right))
		e.push(t)
		return
	}
	if fn, ok := unaryFunctions[inst.Opcode]; ok {
		v := e.pop()
		t := e.newTemp()
		if fn == "-" || fn == "!" || fn == "~" {
			e.emit(inst.Offset, fmt.Sprintf("let %s = %s%s;", t, fn, v))
		} else {
			e.emit(inst.Offset, fmt.Sprintf("let %s = %s(%s);", t, fn, v))
		}
		e.push(t)
		return
	}
	if inst.Opcode == opcode.WITHIN {
		max, min, v := e.pop(), e.pop(), e.pop()
		t := e.newTemp()
		e.emit(inst.Offset, fmt.Sprintf("let %s = within(%s, %s, %s);", t, v, min, max))
		e.push(t)
		return
	}

	if e.lowerStackManipulation(inst) {
		return
	}
	if e.lowerSlotOp(inst) {
		return
	}
	if e.lowerCollection(inst) {
		return
	}
	if e.lowerItemOps(inst) {
		return
	}

	switch inst.Opcode {
	case opcode.RET:
		if len(e.stack) > 0 {
			v := e.pop()
			e.emit(inst.Offset, fmt.Sprintf("return %s;", v))
		} else {
			e.emit(inst.Offset, "return;")
		}
		e.stack = nil
		return
	case opcode.ABORT:
		e.emit(inst.Offset, "abort();")
		e.stack = nil
		return
	case opcode.ABORTMSG:
		msg := e.pop()
		e.emit(inst.Offset, fmt.Sprintf("abort_msg(%s);", msg))
		e.stack = nil
		return
	case opcode.THROW:
		v := e.pop()
		e.emit(inst.Offset, fmt.Sprintf("throw(%s);", v))
		e.stack = nil
		return
	case opcode.ASSERT:
		v := e.pop()
		e.emit(inst.Offset, fmt.Sprintf("assert(%s);", v))
		return
	case opcode.ASSERTMSG:
		msg, v := e.pop(), e.pop()
		e.emit(inst.Offset, fmt.Sprintf("assert_msg(%s, %s);", v, msg))
		return
	case opcode.SYSCALL:
		e.lowerSyscall(inst)
		return
	case opcode.NOP, opcode.INITSSLOT:
		if inst.Opcode == opcode.INITSSLOT {
			if n, ok := inst.Operand.AsInt(); ok {
				e.emit(inst.Offset, fmt.Sprintf("// static fields: %d", n))
			}
		}
		return
	}

	// Opcodes with no dedicated lowering rule leave the stack untouched
	// and surface only as their comment header, matching §7's
	// graceful-degradation policy for analysis passes.
}

func (e *Emitter) literalPush(name string, lit Literal) {
	e.literals[name] = lit
	e.push(name)
}

func (e *Emitter) lowerLiteralConstant(inst disasm.Instruction, constant int64) {
	switch inst.Opcode {
	case opcode.PUSHT:
		e.literalPush("true", Literal{IsBool: true, Bool: true})
	case opcode.PUSHF:
		e.literalPush("false", Literal{IsBool: true, Bool: false})
	default:
		name := fmt.Sprintf("%d", constant)
		e.literalPush(name, Literal{IsInt: true, Int: constant})
	}
}

func (e *Emitter) lowerPushInt(inst disasm.Instruction) {
	if inst.Operand != nil {
		if v, ok := inst.Operand.AsInt(); ok {
			name := fmt.Sprintf("%d", v)
			e.literalPush(name, Literal{IsInt: true, Int: v})
			return
		}
	}
	e.literalPush("0", Literal{IsInt: true})
}

func (e *Emitter) lowerPushData(inst disasm.Instruction) {
	if inst.Operand != nil && inst.Operand.Tag == disasm.TagBytes {
		e.literalPush(fmt.Sprintf("0x%x", inst.Operand.Bytes), Literal{})
		return
	}
	e.literalPush("0x", Literal{})
}

func (e *Emitter) pushATarget(i int) int {
	inst := e.instructions[i]
	if inst.Operand == nil {
		return inst.Offset
	}
	return e.nextOffset(i) + int(inst.Operand.Jump)
}

func (e *Emitter) lowerSyscall(inst disasm.Instruction) {
	hash := uint32(0)
	if inst.Operand != nil {
		hash = inst.Operand.Syscall
	}
	info, _ := syscall.Lookup(hash)
	name := info.Name
	if name == "" {
		name = fmt.Sprintf("syscall_0x%08X", hash)
	}
	args := make([]string, info.ParamCount)
	for i := info.ParamCount - 1; i >= 0; i-- {
		args[i] = e.pop()
	}
	call := fmt.Sprintf("%s(%s)", name, joinArgs(args))
	if info.ReturnsValue {
		t := e.newTemp()
		e.emit(inst.Offset, fmt.Sprintf("let %s = %s; // 0x%08X", t, call, hash))
		e.push(t)
	} else {
		e.emit(inst.Offset, fmt.Sprintf("%s; // 0x%08X", call, hash))
	}
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += ", "
		}
		out += a
	}
	return out
}
