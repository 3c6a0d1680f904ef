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
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/n42blockchain/N42/internal/decompiler/callgraph"
	"github.com/n42blockchain/N42/internal/decompiler/cfg"
	"github.com/n42blockchain/N42/internal/decompiler/csharp"
	"github.com/n42blockchain/N42/internal/decompiler/decompileerr"
	"github.com/n42blockchain/N42/internal/decompiler/disasm"
	"github.com/n42blockchain/N42/internal/decompiler/highlevel"
	"github.com/n42blockchain/N42/internal/decompiler/highlevel/postprocess"
	"github.com/n42blockchain/N42/internal/decompiler/manifest"
	"github.com/n42blockchain/N42/internal/decompiler/nef"
	"github.com/n42blockchain/N42/internal/decompiler/xref"
	"github.com/n42blockchain/N42/log"
)

const entryBlock = cfg.BlockID(0)

// Decompile runs the full pipeline over nefBytes: container parse,
// disassembly, CFG/dominance/SSA, call-graph resolution, xrefs and type
// inference, high-level lifting plus postprocessing, and (when a manifest
// is supplied) the C# skeleton projection. Fatal errors come only from
// container parsing, disassembly in Error mode, and decoding a supplied
// manifest; every later pass
// degrades gracefully into Result.Warnings, per §7.
func Decompile(nefBytes []byte, opts Options) (*Result, error) {
	container, err := nef.Parse(nefBytes)
	if err != nil {
		return nil, decompileerr.Wrap(err, "decompilation: parse container")
	}

	d := disasm.New(opts.UnknownHandling)
	instructions, disasmWarnings, err := d.Disassemble(container.Script)
	if err != nil {
		return nil, decompileerr.Wrap(err, "decompilation: disassemble script")
	}

	var man *manifest.Manifest
	if len(opts.ManifestJSON) > 0 {
		man, err = manifest.Parse(opts.ManifestJSON)
		if err != nil {
			return nil, decompileerr.Wrap(err, "decompilation: parse manifest")
		}
	}

	nameResolver := manifestNameResolver(man)
	callEdges, callMethods := callgraph.Build(instructions, container.MethodTokens, nameResolver)

	graph := cfg.Build(instructions)
	dominance := cfg.ComputeDominance(graph, entryBlock)
	ssa := cfg.BuildSSAScaffold(graph, entryBlock)

	resolver := highlevelResolver(callMethods, man)
	tokens := callTokenInfo(container.MethodTokens)

	methods := buildMethodResults(instructions, man, tokens, resolver, opts.Postprocess)

	var stmts []highlevel.Statement
	var liftWarnings []string
	for _, mr := range methods {
		stmts = append(stmts, mr.Statements...)
		liftWarnings = append(liftWarnings, mr.LiftWarnings...)
	}

	var xrefs *xref.Xrefs
	var types *xref.MethodTypes
	if len(methods) > 0 {
		xrefs = methods[0].Xrefs
		types = methods[0].Types
	}

	var skeleton *csharp.Skeleton
	if man != nil {
		skeleton = csharp.Emit(instructions, tokens, resolver, man, opts.Postprocess)
	}

	warnings := dedupe(append(append([]string{}, disasmWarningStrings(disasmWarnings)...), liftWarnings...))

	runID := uuid.New()
	for _, w := range warnings {
		log.Warn("decompilation: analysis warning", "run", runID.String(), "warning", w)
	}

	return &Result{
		RunID:           runID,
		Container:       container,
		Instructions:    instructions,
		Warnings:        warnings,
		Cfg:             graph,
		Dominance:       dominance,
		SSA:             ssa,
		CallEdges:       callEdges,
		CallMethods:     callMethods,
		Methods:         methods,
		Xrefs:           xrefs,
		Types:           types,
		Statements:      stmts,
		LiftWarnings:    liftWarnings,
		Manifest:        man,
		ManifestSummary: summarize(man),
		CSharp:          skeleton,
	}, nil
}

// buildMethodResults runs xref/type-inference/lifting independently per
// manifest method, slicing instructions the same way csharp.Emit already
// does (csharp.InstructionsForMethod) so that slot numbering, stack state
// and type seeding from one method never bleed into another. With no
// manifest (or no method declaring an offset) the whole script is treated
// as a single unnamed method, matching the pre-manifest behavior exactly.
func buildMethodResults(instructions []disasm.Instruction, man *manifest.Manifest, tokens []highlevel.TokenInfo, resolver highlevel.CallResolver, popts postprocess.Options) []MethodResult {
	if man == nil || len(man.Methods) == 0 {
		return []MethodResult{buildMethodResult("", 0, instructions, man, tokens, resolver, popts)}
	}

	sorted := make([]manifest.Method, len(man.Methods))
	copy(sorted, man.Methods)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	var out []MethodResult
	for _, m := range sorted {
		if !m.HasOffset {
			continue
		}
		body := csharp.InstructionsForMethod(instructions, sorted, m.Offset)
		out = append(out, buildMethodResult(m.Name, m.Offset, body, man, tokens, resolver, popts))
	}
	if len(out) == 0 {
		return []MethodResult{buildMethodResult("", 0, instructions, man, tokens, resolver, popts)}
	}
	return out
}

func buildMethodResult(name string, offset int, instructions []disasm.Instruction, man *manifest.Manifest, tokens []highlevel.TokenInfo, resolver highlevel.CallResolver, popts postprocess.Options) MethodResult {
	xrefs := xref.BuildXrefs(instructions)
	types := xref.InferTypes(instructions, argSeedFromManifest(man, offset))

	e := highlevel.New(instructions, tokens, resolver)
	stmts, liftWarnings := e.Run()
	stmts = postprocess.Run(stmts, popts)

	return MethodResult{
		Name:         name,
		Offset:       offset,
		Instructions: instructions,
		Xrefs:        xrefs,
		Types:        types,
		Statements:   stmts,
		LiftWarnings: liftWarnings,
	}
}

func disasmWarningStrings(warnings []disasm.Warning) []string {
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = fmt.Sprintf("%s at offset %d", w.Message, w.Offset)
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func callTokenInfo(tokens []nef.MethodToken) []highlevel.TokenInfo {
	out := make([]highlevel.TokenInfo, len(tokens))
	for i, tok := range tokens {
		out[i] = highlevel.TokenInfo{Name: tok.Method, Arity: int(tok.ParametersCount), ReturnsValue: tok.HasReturnValue}
	}
	return out
}

// manifestNameResolver looks up a sanitized method name for an internal
// call target offset from the manifest ABI, when one was supplied.
func manifestNameResolver(man *manifest.Manifest) callgraph.NameResolver {
	if man == nil {
		return nil
	}
	byOffset := make(map[int]string, len(man.Methods))
	for _, m := range man.Methods {
		if m.HasOffset {
			byOffset[m.Offset] = m.Name
		}
	}
	return func(offset int) (string, bool) {
		name, ok := byOffset[offset]
		return name, ok
	}
}

// highlevelResolver adapts the call-graph's resolved methods plus manifest
// arities into the shape the high-level lifter's CALL/CALL_L rule expects.
func highlevelResolver(methods map[int]callgraph.MethodRef, man *manifest.Manifest) highlevel.CallResolver {
	arity := make(map[int]int)
	if man != nil {
		for _, m := range man.Methods {
			if m.HasOffset {
				arity[m.Offset] = len(m.Parameters)
			}
		}
	}
	return highlevel.CallResolver{
		Label: func(offset int) (string, bool) {
			ref, ok := methods[offset]
			if !ok {
				return "", false
			}
			return ref.Name, true
		},
		ArgCount: func(offset int) (int, bool) {
			n, ok := arity[offset]
			return n, ok
		},
	}
}

// argSeedFromManifest seeds argument types for the method declared at the
// given instruction offset, when the manifest names one there.
func argSeedFromManifest(man *manifest.Manifest, offset int) []xref.ValueType {
	if man == nil {
		return nil
	}
	for _, m := range man.Methods {
		if m.HasOffset && m.Offset == offset {
			seed := make([]xref.ValueType, len(m.Parameters))
			for i, p := range m.Parameters {
				seed[i] = xref.SeedType(neoParamKind(p.Type))
			}
			return seed
		}
	}
	return nil
}

func neoParamKind(neoType string) xref.ParamKind {
	switch neoType {
	case "Boolean":
		return xref.ParamBoolean
	case "Integer":
		return xref.ParamInteger
	case "ByteArray":
		return xref.ParamByteArray
	case "String":
		return xref.ParamString
	case "Hash160":
		return xref.ParamHash160
	case "Hash256":
		return xref.ParamHash256
	case "PublicKey":
		return xref.ParamPublicKey
	case "Signature":
		return xref.ParamSignature
	case "Array":
		return xref.ParamArray
	case "Map":
		return xref.ParamMap
	case "InteropInterface":
		return xref.ParamInteropInterface
	case "Void":
		return xref.ParamVoid
	default:
		return xref.ParamAny
	}
}
