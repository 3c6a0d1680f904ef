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

// Package callgraph resolves each call-family instruction (CALL, CALL_L,
// CALLT, CALLA, SYSCALL) to a CallTarget, building the static call graph
// per method. Grounded on the teacher's internal/vm opcode dispatch
// structure for instruction classification, and on the syscall package for
// interop-hash resolution.
package callgraph

import (
	"fmt"

	"github.com/n42blockchain/N42/internal/decompiler/disasm"
	"github.com/n42blockchain/N42/internal/decompiler/nef"
	"github.com/n42blockchain/N42/internal/decompiler/opcode"
	"github.com/n42blockchain/N42/internal/decompiler/syscall"
)

// TargetKind discriminates a CallTarget's payload.
type TargetKind int

const (
	Internal TargetKind = iota
	UnresolvedInternal
	MethodTokenTarget
	IndirectTarget
	SyscallTarget
)

// MethodRef names a call target resolved to a concrete offset, either from
// the manifest (a real method name) or synthesized from its offset.
type MethodRef struct {
	Offset int
	Name   string
}

// CallTarget is the resolved destination of one call-family instruction.
type CallTarget struct {
	Kind TargetKind

	// Internal / UnresolvedInternal
	Method MethodRef

	// MethodTokenTarget
	Token nef.MethodToken

	// IndirectTarget
	IndirectOpcode  string
	IndirectOperand *disasm.Operand

	// SyscallTarget
	SyscallHash uint32
	SyscallName string
	ReturnsValue bool
}

// CallEdge is one call-family instruction's resolution, anchored at its
// instruction offset within the calling method.
type CallEdge struct {
	CallerOffset int
	Target       CallTarget
}

// NameResolver looks up a human-readable name for an internal call target
// offset (typically backed by manifest ABI data); ok is false when no name
// is known and a synthetic one should be used instead.
type NameResolver func(offset int) (string, bool)

// Build resolves every call-family instruction in instructions into a
// CallEdge. tokens is the NEF method-token table (for CALLT); resolver may
// be nil, in which case all internal targets get synthetic names.
func Build(instructions []disasm.Instruction, tokens []nef.MethodToken, resolver NameResolver) ([]CallEdge, map[int]MethodRef) {
	offsetToIndex := make(map[int]int, len(instructions))
	for i, inst := range instructions {
		offsetToIndex[inst.Offset] = i
	}

	methods := make(map[int]MethodRef)
	nameFor := func(offset int) MethodRef {
		if resolver != nil {
			if name, ok := resolver(offset); ok {
				return MethodRef{Offset: offset, Name: name}
			}
		}
		return MethodRef{Offset: offset, Name: fmt.Sprintf("sub_%X", offset)}
	}

	var edges []CallEdge
	for i, inst := range instructions {
		if !inst.Known {
			continue
		}
		switch inst.Opcode {
		case opcode.CALL, opcode.CALL_L:
			target := resolveDirectCall(instructions, offsetToIndex, i)
			if target.Kind == Internal {
				methods[target.Method.Offset] = nameFor(target.Method.Offset)
				target.Method = methods[target.Method.Offset]
			}
			edges = append(edges, CallEdge{CallerOffset: inst.Offset, Target: target})
		case opcode.CALLT:
			edges = append(edges, CallEdge{CallerOffset: inst.Offset, Target: resolveCallT(inst, tokens)})
		case opcode.CALLA:
			edges = append(edges, CallEdge{CallerOffset: inst.Offset, Target: resolveCallA(instructions, i, nameFor, methods)})
		case opcode.SYSCALL:
			edges = append(edges, CallEdge{CallerOffset: inst.Offset, Target: resolveSyscall(inst)})
		}
	}

	return edges, methods
}

func resolveDirectCall(instructions []disasm.Instruction, offsetToIndex map[int]int, callIdx int) CallTarget {
	inst := instructions[callIdx]
	if inst.Operand == nil {
		return CallTarget{Kind: UnresolvedInternal, Method: MethodRef{Offset: inst.Offset}}
	}
	targetOffset := inst.Offset + disasm.Length(inst) + int(inst.Operand.Jump)
	if _, ok := offsetToIndex[targetOffset]; ok {
		return CallTarget{Kind: Internal, Method: MethodRef{Offset: targetOffset}}
	}
	return CallTarget{Kind: UnresolvedInternal, Method: MethodRef{Offset: targetOffset}}
}

func resolveCallT(inst disasm.Instruction, tokens []nef.MethodToken) CallTarget {
	if inst.Operand == nil {
		return CallTarget{Kind: IndirectTarget, IndirectOpcode: "CALLT", IndirectOperand: nil}
	}
	idx, ok := inst.Operand.AsInt()
	if !ok || idx < 0 || int(idx) >= len(tokens) {
		return CallTarget{Kind: IndirectTarget, IndirectOpcode: "CALLT", IndirectOperand: inst.Operand}
	}
	return CallTarget{Kind: MethodTokenTarget, Token: tokens[idx]}
}

// resolveCallA walks backward through the instruction stream looking for
// the most recent stack producer: a direct PUSHA literal, or a slot load
// whose most recent store was itself such a literal. Per §4.7 this is a
// best-effort static heuristic, not a full data-flow solve.
func resolveCallA(instructions []disasm.Instruction, callIdx int, nameFor func(int) MethodRef, methods map[int]MethodRef) CallTarget {
	unresolved := CallTarget{Kind: IndirectTarget, IndirectOpcode: "CALLA", IndirectOperand: nil}

	// direct pattern: ... PUSHA <offset> ; CALLA
	for j := callIdx - 1; j >= 0; j-- {
		prev := instructions[j]
		if !prev.Known {
			return unresolved
		}
		switch prev.Opcode {
		case opcode.PUSHA:
			if prev.Operand == nil {
				return unresolved
			}
			target := prev.Offset + disasm.Length(prev) + int(prev.Operand.Jump)
			ref := nameFor(target)
			methods[target] = ref
			return CallTarget{Kind: Internal, Method: ref}
		case opcode.LDLOC, opcode.LDLOC0, opcode.LDLOC1, opcode.LDLOC2, opcode.LDLOC3,
			opcode.LDLOC4, opcode.LDLOC5, opcode.LDLOC6,
			opcode.LDARG, opcode.LDARG0, opcode.LDARG1, opcode.LDARG2, opcode.LDARG3,
			opcode.LDARG4, opcode.LDARG5, opcode.LDARG6,
			opcode.LDSFLD, opcode.LDSFLD0, opcode.LDSFLD1, opcode.LDSFLD2, opcode.LDSFLD3,
			opcode.LDSFLD4, opcode.LDSFLD5, opcode.LDSFLD6:
			return resolveSlotLoadToPushA(instructions, j, nameFor, methods)
		default:
			return unresolved
		}
	}
	return unresolved
}

// resolveSlotLoadToPushA looks backward from a slot load for the most
// recent store to the same slot class, and resolves it if that store's
// value was itself a direct PUSHA literal immediately preceding it.
func resolveSlotLoadToPushA(instructions []disasm.Instruction, loadIdx int, nameFor func(int) MethodRef, methods map[int]MethodRef) CallTarget {
	unresolved := CallTarget{Kind: IndirectTarget, IndirectOpcode: "CALLA", IndirectOperand: nil}
	load := instructions[loadIdx]
	loadSlot, loadFamily, ok := slotOf(load)
	if !ok {
		return unresolved
	}
	for j := loadIdx - 1; j >= 1; j-- {
		cur := instructions[j]
		if !cur.Known {
			continue
		}
		slot, family, ok := storeSlotOf(cur)
		if !ok || family != loadFamily || slot != loadSlot {
			continue
		}
		prev := instructions[j-1]
		if prev.Known && prev.Opcode == opcode.PUSHA && prev.Operand != nil {
			target := prev.Offset + disasm.Length(prev) + int(prev.Operand.Jump)
			ref := nameFor(target)
			methods[target] = ref
			return CallTarget{Kind: Internal, Method: ref}
		}
		return unresolved
	}
	return unresolved
}

type slotFamily int

const (
	familyLoc slotFamily = iota
	familyArg
	familyStatic
)

func slotOf(inst disasm.Instruction) (int, slotFamily, bool) {
	switch inst.Opcode {
	case opcode.LDLOC0, opcode.LDLOC1, opcode.LDLOC2, opcode.LDLOC3, opcode.LDLOC4, opcode.LDLOC5, opcode.LDLOC6:
		return int(inst.Opcode - opcode.LDLOC0), familyLoc, true
	case opcode.LDLOC:
		return slotOperand(inst), familyLoc, true
	case opcode.LDARG0, opcode.LDARG1, opcode.LDARG2, opcode.LDARG3, opcode.LDARG4, opcode.LDARG5, opcode.LDARG6:
		return int(inst.Opcode - opcode.LDARG0), familyArg, true
	case opcode.LDARG:
		return slotOperand(inst), familyArg, true
	case opcode.LDSFLD0, opcode.LDSFLD1, opcode.LDSFLD2, opcode.LDSFLD3, opcode.LDSFLD4, opcode.LDSFLD5, opcode.LDSFLD6:
		return int(inst.Opcode - opcode.LDSFLD0), familyStatic, true
	case opcode.LDSFLD:
		return slotOperand(inst), familyStatic, true
	default:
		return 0, 0, false
	}
}

func storeSlotOf(inst disasm.Instruction) (int, slotFamily, bool) {
	switch inst.Opcode {
	case opcode.STLOC0, opcode.STLOC1, opcode.STLOC2, opcode.STLOC3, opcode.STLOC4, opcode.STLOC5, opcode.STLOC6:
		return int(inst.Opcode - opcode.STLOC0), familyLoc, true
	case opcode.STLOC:
		return slotOperand(inst), familyLoc, true
	case opcode.STARG0, opcode.STARG1, opcode.STARG2, opcode.STARG3, opcode.STARG4, opcode.STARG5, opcode.STARG6:
		return int(inst.Opcode - opcode.STARG0), familyArg, true
	case opcode.STARG:
		return slotOperand(inst), familyArg, true
	case opcode.STSFLD0, opcode.STSFLD1, opcode.STSFLD2, opcode.STSFLD3, opcode.STSFLD4, opcode.STSFLD5, opcode.STSFLD6:
		return int(inst.Opcode - opcode.STSFLD0), familyStatic, true
	case opcode.STSFLD:
		return slotOperand(inst), familyStatic, true
	default:
		return 0, 0, false
	}
}

func slotOperand(inst disasm.Instruction) int {
	if inst.Operand == nil {
		return -1
	}
	v, ok := inst.Operand.AsInt()
	if !ok {
		return -1
	}
	return int(v)
}

func resolveSyscall(inst disasm.Instruction) CallTarget {
	if inst.Operand == nil {
		return CallTarget{Kind: SyscallTarget, ReturnsValue: true}
	}
	info, ok := syscall.Lookup(inst.Operand.Syscall)
	target := CallTarget{Kind: SyscallTarget, SyscallHash: inst.Operand.Syscall, ReturnsValue: info.ReturnsValue}
	if ok {
		target.SyscallName = info.Name
	}
	return target
}
