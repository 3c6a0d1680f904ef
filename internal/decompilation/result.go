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

package decompilation

import (
	"github.com/google/uuid"

	"github.com/n42blockchain/N42/internal/decompiler/callgraph"
	"github.com/n42blockchain/N42/internal/decompiler/cfg"
	"github.com/n42blockchain/N42/internal/decompiler/csharp"
	"github.com/n42blockchain/N42/internal/decompiler/disasm"
	"github.com/n42blockchain/N42/internal/decompiler/highlevel"
	"github.com/n42blockchain/N42/internal/decompiler/manifest"
	"github.com/n42blockchain/N42/internal/decompiler/nef"
	"github.com/n42blockchain/N42/internal/decompiler/xref"
)

// ManifestSummary surfaces the manifest fields §6 names as consumed by the
// core, independent of the full ABI method/event lists.
type ManifestSummary struct {
	Name                string
	SupportedStandards  []string
	Storage             bool
	Payable             bool
	PermissionWildcards int
	TrustsWildcard      bool
}

// MethodResult is the xref/type-inference/lift result for one manifest
// method's own instruction range. When no manifest (or no method carries
// an offset) is supplied, Decompile produces exactly one MethodResult
// covering the whole script, named "".
type MethodResult struct {
	Name         string
	Offset       int
	Instructions []disasm.Instruction
	Xrefs        *xref.Xrefs
	Types        *xref.MethodTypes
	Statements   []highlevel.Statement
	LiftWarnings []string
}

// Result is every artifact produced by one Decompile call.
type Result struct {
	RunID uuid.UUID

	Container    *nef.Container
	Instructions []disasm.Instruction
	Warnings     []string

	Cfg       *cfg.Cfg
	Dominance *cfg.DominanceInfo
	SSA       *cfg.SSAScaffold

	CallEdges   []callgraph.CallEdge
	CallMethods map[int]callgraph.MethodRef

	// Methods holds the per-method xref/type/statement results, each built
	// from that method's own sliced instruction range so slot numbering and
	// stack state never bleed across method boundaries. Xrefs, Types,
	// Statements and LiftWarnings below mirror Methods[0] (or, for
	// Statements/LiftWarnings, the concatenation across all methods in
	// ascending offset order) for callers that only care about the
	// single-method/no-manifest case.
	Methods []MethodResult

	Xrefs *xref.Xrefs
	Types *xref.MethodTypes

	Statements   []highlevel.Statement
	LiftWarnings []string

	Manifest        *manifest.Manifest
	ManifestSummary *ManifestSummary

	CSharp *csharp.Skeleton
}

func summarize(m *manifest.Manifest) *ManifestSummary {
	if m == nil {
		return nil
	}
	wildcards := 0
	for _, p := range m.Permissions {
		if p.Wildcard {
			wildcards++
		}
	}
	return &ManifestSummary{
		Name:                m.Name,
		SupportedStandards:  m.SupportedStandards,
		Storage:             m.Storage,
		Payable:             m.Payable,
		PermissionWildcards: wildcards,
		TrustsWildcard:      m.TrustsWildcard,
	}
}
