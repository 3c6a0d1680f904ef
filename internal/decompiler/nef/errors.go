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

package nef

import "fmt"

// Kind is a closed enum of the container-parsing failures named in the
// format specification. Every Error carries exactly one Kind.
type Kind int

const (
	KindFileTooLarge Kind = iota
	KindTooShort
	KindInvalidMagic
	KindInvalidCompiler
	KindInvalidUtf8String
	KindSourceTooLong
	KindReservedByteNonZero
	KindReservedWordNonZero
	KindTooManyMethodTokens
	KindInvalidMethodToken
	KindMethodNameInvalid
	KindCallFlagsInvalid
	KindEmptyScript
	KindScriptTooLarge
	KindChecksumMismatch
	KindTrailingData
	KindIntegerOverflow
	KindUnexpectedEof
)

func (k Kind) String() string {
	switch k {
	case KindFileTooLarge:
		return "FileTooLarge"
	case KindTooShort:
		return "TooShort"
	case KindInvalidMagic:
		return "InvalidMagic"
	case KindInvalidCompiler:
		return "InvalidCompiler"
	case KindInvalidUtf8String:
		return "InvalidUtf8String"
	case KindSourceTooLong:
		return "SourceTooLong"
	case KindReservedByteNonZero:
		return "ReservedByteNonZero"
	case KindReservedWordNonZero:
		return "ReservedWordNonZero"
	case KindTooManyMethodTokens:
		return "TooManyMethodTokens"
	case KindInvalidMethodToken:
		return "InvalidMethodToken"
	case KindMethodNameInvalid:
		return "MethodNameInvalid"
	case KindCallFlagsInvalid:
		return "CallFlagsInvalid"
	case KindEmptyScript:
		return "EmptyScript"
	case KindScriptTooLarge:
		return "ScriptTooLarge"
	case KindChecksumMismatch:
		return "ChecksumMismatch"
	case KindTrailingData:
		return "TrailingData"
	case KindIntegerOverflow:
		return "IntegerOverflow"
	case KindUnexpectedEof:
		return "UnexpectedEof"
	default:
		return "Unknown"
	}
}

// Error is the single error type returned by Parse. Offset is the
// byte position at which the failure was detected, where meaningful
// (-1 otherwise). Expected/Calculated are populated only for
// ChecksumMismatch.
type Error struct {
	Kind       Kind
	Offset     int
	Expected   [4]byte
	Calculated [4]byte
}

func (e *Error) Error() string {
	if e.Kind == KindChecksumMismatch {
		return fmt.Sprintf("nef: %s: expected %x, calculated %x", e.Kind, e.Expected, e.Calculated)
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("nef: %s at offset %d", e.Kind, e.Offset)
	}
	return fmt.Sprintf("nef: %s", e.Kind)
}

func newErr(kind Kind, offset int) *Error {
	return &Error{Kind: kind, Offset: offset}
}

func newChecksumErr(expected, calculated [4]byte) *Error {
	return &Error{Kind: KindChecksumMismatch, Offset: -1, Expected: expected, Calculated: calculated}
}
