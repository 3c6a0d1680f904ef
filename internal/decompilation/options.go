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

// Package decompilation wires the nef, disasm, cfg, callgraph, xref,
// highlevel (+postprocess), csharp, and manifest packages into one
// synchronous operation over an input byte buffer. Grounded on the
// teacher's top-level orchestration style (cmd/n42's wiring of
// independently-testable components into one pipeline), adapted from a
// long-running node process into a single-shot, purely functional
// analysis.
package decompilation

import (
	"github.com/n42blockchain/N42/internal/decompiler/disasm"
	"github.com/n42blockchain/N42/internal/decompiler/highlevel/postprocess"
)

// Options configures one Decompile call. Every field is data-driven; there
// are no background tasks or shared state (§5).
type Options struct {
	// UnknownHandling controls disassembly tolerance for opcode bytes with
	// no table entry.
	UnknownHandling disasm.UnknownHandling

	// ManifestJSON is the optional manifest sidecar. When nil, the core
	// treats the whole script as a single unnamed entry point.
	ManifestJSON []byte

	// Postprocess configures the highlevel rewrite passes (§4.9.4).
	Postprocess postprocess.Options
}
