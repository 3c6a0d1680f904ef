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

import "github.com/n42blockchain/N42/internal/decompiler/opcode"

// ValueType is the lattice of inferred stack-item types.
type ValueType int

const (
	Unknown ValueType = iota
	Boolean
	Integer
	ByteString
	Array
	Map
	Struct
	Buffer
	Pointer
	Null
	InteropInterface
	Any
)

func (t ValueType) String() string {
	switch t {
	case Boolean:
		return "Boolean"
	case Integer:
		return "Integer"
	case ByteString:
		return "ByteString"
	case Array:
		return "Array"
	case Map:
		return "Map"
	case Struct:
		return "Struct"
	case Buffer:
		return "Buffer"
	case Pointer:
		return "Pointer"
	case Null:
		return "Null"
	case InteropInterface:
		return "InteropInterface"
	case Any:
		return "Any"
	default:
		return "Unknown"
	}
}

// Join merges two observed types for the same slot or stack cell. Unknown
// (the lattice's bottom) yields to whatever the other side observed; equal
// types are preserved; any other disagreement widens to Any, the lattice's
// top.
func Join(a, b ValueType) ValueType {
	if a == Unknown {
		return b
	}
	if b == Unknown {
		return a
	}
	if a == b {
		return a
	}
	return Any
}

// StackValue is a compile-time-simulated stack cell: its inferred type,
// plus a known integer literal when the value traces back to one.
type StackValue struct {
	Ty         ValueType
	IntLiteral *int64
}

func val(ty ValueType) StackValue { return StackValue{Ty: ty} }

func litInt(v int64) StackValue {
	vv := v
	return StackValue{Ty: Integer, IntLiteral: &vv}
}

// ParamKind mirrors the manifest ABI's parameter-type vocabulary (§6),
// used to seed argument types before a method's own instructions refine
// them further.
type ParamKind int

const (
	ParamAny ParamKind = iota
	ParamBoolean
	ParamInteger
	ParamByteArray
	ParamString
	ParamHash160
	ParamHash256
	ParamPublicKey
	ParamSignature
	ParamArray
	ParamMap
	ParamInteropInterface
	ParamVoid
)

// SeedType maps a manifest parameter kind to its starting ValueType.
func SeedType(k ParamKind) ValueType {
	switch k {
	case ParamBoolean:
		return Boolean
	case ParamInteger:
		return Integer
	case ParamByteArray, ParamString, ParamHash160, ParamHash256, ParamPublicKey, ParamSignature:
		return ByteString
	case ParamArray:
		return Array
	case ParamMap:
		return Map
	case ParamInteropInterface:
		return InteropInterface
	default:
		return Any
	}
}

// convertTable maps a CONVERT operand byte to the Neo N3 StackItemType it
// names (the VM's stack-item tag space, not this package's ValueType
// numbering).
var convertTable = map[int64]ValueType{
	0x00: Any,
	0x10: Pointer,
	0x20: Boolean,
	0x21: Integer,
	0x28: ByteString,
	0x30: Buffer,
	0x40: Array,
	0x41: Struct,
	0x48: Map,
	0x60: InteropInterface,
}

// MethodTypes is the type-inference result for one method: seeded
// argument types (refined by use) and inferred local slot types.
// Static-field types are not recorded.
type MethodTypes struct {
	Arguments []ValueType
	Locals    []ValueType
}

// stack is the compile-time value stack used while walking a method.
type stack struct {
	values []StackValue
}

func (s *stack) push(v StackValue) { s.values = append(s.values, v) }

func (s *stack) pop() StackValue {
	if len(s.values) == 0 {
		return val(Unknown)
	}
	v := s.values[len(s.values)-1]
	s.values = s.values[:len(s.values)-1]
	return v
}

func (s *stack) peek(depthFromTop int) StackValue {
	idx := len(s.values) - 1 - depthFromTop
	if idx < 0 || idx >= len(s.values) {
		return val(Unknown)
	}
	return s.values[idx]
}
