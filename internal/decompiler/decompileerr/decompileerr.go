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

// Package decompileerr centralizes the error-wrapping helpers shared by the
// nef, disasm and manifest packages, mirroring pkg/errors's Wrap/Is/As
// conventions so every fallible operation in the decompiler reports through
// the same idiom.
package decompileerr

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Wrap wraps err with message, preserving the chain for errors.Is/As.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return pkgerrors.WithMessage(err, message)
}

// Wrapf wraps err with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return pkgerrors.WithMessage(err, fmt.Sprintf(format, args...))
}

// WithStack attaches a stack trace to err at the call site, for errors
// crossing a package boundary where positional context matters (offsets
// alone are not enough to locate a bug in the orchestrator).
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	return pkgerrors.WithStack(err)
}
