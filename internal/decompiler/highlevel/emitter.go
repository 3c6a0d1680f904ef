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

// Package highlevel lifts a method's instruction slice into a list of
// textual pseudocode statements via a symbolic abstract interpreter: the
// "stack" holds names of already-emitted expressions, not runtime values.
// Grounded on the teacher's internal/vm instruction-dispatch loop, adapted
// from an executing interpreter into a non-executing statement emitter.
package highlevel

import (
	"fmt"

	"github.com/n42blockchain/N42/internal/decompiler/disasm"
	"github.com/n42blockchain/N42/internal/decompiler/opcode"
)

// Statement is one emitted pseudocode line, anchored at the byte offset of
// the instruction that produced it.
type Statement struct {
	Offset int
	Text   string
}

// CallResolver supplies the (offset -> label, arg count) information the
// call-lowering rules need; both maps are typically populated from the
// callgraph package's output plus manifest ABI arities.
type CallResolver struct {
	Label    func(offset int) (string, bool)
	ArgCount func(offset int) (int, bool)
}

// loopContext tracks one nested loop's exit point for break/continue
// lowering, plus whether it originated as a while-rewritten if or an
// explicit do-while tail.
type loopContext struct {
	breakOffset int
	headerIsDo  bool
}

// Emitter is the symbolic interpreter producing a method's statement
// list. Create with New and drive with Run.
type Emitter struct {
	instructions []disasm.Instruction
	offsetIndex  map[int]int
	resolver     CallResolver
	callArity    map[int]int
	callTokens   []TokenInfo

	stack        []string
	literals     map[string]Literal
	temp         int
	out          []Statement
	warnings     []string

	pendingClosers     map[int][]string
	doWhileTails       map[int]bool
	doWhileBreak       map[int]int
	doWhileHeaders     map[int]bool
	loops              []loopContext
	transferLabels     map[int]bool
	initializedLocals  map[int]bool
	initializedStatics map[int]bool
	argLabels          []string
}

// TokenInfo is the pre-resolved CALLT table entry: name, arity, and
// whether the call produces a value.
type TokenInfo struct {
	Name         string
	Arity        int
	ReturnsValue bool
}

// Literal records a value traced back to a compile-time-known operand, so
// DUP/OVER/TUCK and subsequent folds can carry it through.
type Literal struct {
	IsInt  bool
	Int    int64
	IsBool bool
	Bool   bool
}

// New builds an Emitter over instructions. tokens is the CALLT table
// (index-addressed); resolver supplies CALL/CALL_L label and arity
// lookups and may have nil fields if unavailable.
func New(instructions []disasm.Instruction, tokens []TokenInfo, resolver CallResolver) *Emitter {
	e := &Emitter{
		instructions:       instructions,
		offsetIndex:        make(map[int]int, len(instructions)),
		resolver:           resolver,
		callTokens:         tokens,
		literals:           make(map[string]Literal),
		pendingClosers:     make(map[int][]string),
		doWhileTails:       make(map[int]bool),
		doWhileBreak:       make(map[int]int),
		doWhileHeaders:     make(map[int]bool),
		transferLabels:     make(map[int]bool),
		initializedLocals:  make(map[int]bool),
		initializedStatics: make(map[int]bool),
	}
	for i, inst := range instructions {
		e.offsetIndex[inst.Offset] = i
	}
	return e
}

// Run performs setup, then walks every instruction, producing the
// method's statement list plus accumulated warnings.
func (e *Emitter) Run() ([]Statement, []string) {
	e.setup()
	for i := range e.instructions {
		e.advance(e.instructions[i].Offset)
		e.lower(i)
	}
	e.drainRemainingClosers()
	return e.out, e.warnings
}

func (e *Emitter) nextOffset(i int) int {
	inst := e.instructions[i]
	return inst.Offset + disasm.Length(inst)
}

func (e *Emitter) resolveJumpTarget(i int) (int, bool) {
	inst := e.instructions[i]
	if inst.Operand == nil {
		return 0, false
	}
	target := e.nextOffset(i) + int(inst.Operand.Jump)
	_, ok := e.offsetIndex[target]
	return target, ok
}

func (e *Emitter) newTemp() string {
	e.temp++
	return fmt.Sprintf("t%d", e.temp)
}

func (e *Emitter) push(name string) { e.stack = append(e.stack, name) }

func (e *Emitter) pop() string {
	if len(e.stack) == 0 {
		e.warn("stack underflow")
		return "missing_stack_item()"
	}
	v := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	return v
}

func (e *Emitter) warn(msg string) {
	for _, w := range e.warnings {
		if w == msg {
			return
		}
	}
	e.warnings = append(e.warnings, msg)
}

func (e *Emitter) emit(offset int, text string) {
	e.out = append(e.out, Statement{Offset: offset, Text: text})
}

func (e *Emitter) emitComment(inst disasm.Instruction) {
	e.emit(inst.Offset, fmt.Sprintf("// %04X: %s", inst.Offset, inst.Mnemonic()))
}

// setup implements §4.9.1: do/while tail discovery and argument labels.
func (e *Emitter) setup() {
	for i, inst := range e.instructions {
		if !inst.Known || inst.Operand == nil {
			continue
		}
		if !isConditionalJump(inst.Opcode) {
			continue
		}
		target, ok := e.resolveJumpTarget(i)
		if !ok {
			continue
		}
		if target < inst.Offset {
			e.doWhileTails[inst.Offset] = true
			e.doWhileBreak[inst.Offset] = e.nextOffset(i)
			e.doWhileHeaders[target] = true
		}
	}

	if len(e.instructions) > 0 && e.instructions[0].Opcode == opcode.INITSLOT && e.instructions[0].Operand != nil {
		_, args := disasm.DecodeInitSlot(*e.instructions[0].Operand)
		e.argLabels = make([]string, args)
		for i := range e.argLabels {
			e.argLabels[i] = fmt.Sprintf("arg%d", i)
		}
	} else {
		// synthetic helper: no argument labels are set, and nothing is
		// pre-seeded onto the evaluation stack.
	}
}

func isConditionalJump(op opcode.OpCode) bool {
	switch op {
	case opcode.JMPIF, opcode.JMPIF_L, opcode.JMPIFNOT, opcode.JMPIFNOT_L,
		opcode.JMPEQ, opcode.JMPEQ_L, opcode.JMPNE, opcode.JMPNE_L,
		opcode.JMPGT, opcode.JMPGT_L, opcode.JMPGE, opcode.JMPGE_L,
		opcode.JMPLT, opcode.JMPLT_L, opcode.JMPLE, opcode.JMPLE_L:
		return true
	default:
		return false
	}
}

// advance implements §4.9.2's ordered pre-emission hook, simplified to
// the subset this emitter models: draining closers, closing loop
// contexts whose break offset has arrived, emitting do-while headers
// (pushing one loop context per tail that jumps back to the header), and
// emitting transfer labels.
func (e *Emitter) advance(offset int) {
	if closers, ok := e.pendingClosers[offset]; ok {
		for _, c := range closers {
			e.emit(offset, c)
		}
		delete(e.pendingClosers, offset)
	}

	for len(e.loops) > 0 && e.loops[len(e.loops)-1].breakOffset == offset {
		e.loops = e.loops[:len(e.loops)-1]
	}

	if e.doWhileHeaders[offset] {
		e.emit(offset, "do {")
		delete(e.doWhileHeaders, offset)
		for j := len(e.instructions) - 1; j >= 0; j-- {
			tail := e.instructions[j].Offset
			if !e.doWhileTails[tail] {
				continue
			}
			if target, ok := e.resolveJumpTarget(j); ok && target == offset {
				e.loops = append(e.loops, loopContext{breakOffset: e.doWhileBreak[tail], headerIsDo: true})
			}
		}
	}

	if e.transferLabels[offset] {
		e.emit(offset, fmt.Sprintf("label_0x%04X:", offset))
		delete(e.transferLabels, offset)
	}
}

func (e *Emitter) drainRemainingClosers() {
	for _, inst := range e.instructions {
		if closers, ok := e.pendingClosers[inst.Offset]; ok {
			for _, c := range closers {
				e.emit(inst.Offset, c)
			}
			delete(e.pendingClosers, inst.Offset)
		}
	}
}

func (e *Emitter) registerCloser(offset int, text string) {
	e.pendingClosers[offset] = append(e.pendingClosers[offset], text)
}
