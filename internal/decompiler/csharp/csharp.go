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

// Package csharp projects the high-level lifter's statement list into a
// method-shaped C# skeleton (§4.10): one printer among the distinct-style
// trio the source dispatches dynamically between, restated here as its own
// package rather than a runtime-polymorphic formatter (§9).
package csharp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/n42blockchain/N42/internal/decompiler/disasm"
	"github.com/n42blockchain/N42/internal/decompiler/highlevel"
	"github.com/n42blockchain/N42/internal/decompiler/highlevel/postprocess"
	"github.com/n42blockchain/N42/internal/decompiler/manifest"
)

// MethodSkeleton is one emitted method: header metadata plus a body
// already run through the c-sharpizer.
type MethodSkeleton struct {
	Name         string
	OriginalName string
	DisplayName  bool
	Safe         bool
	Parameters   []manifest.Parameter
	ReturnType   string
	Body         []string
	Stub         bool
	Warnings     []string
}

// Skeleton is the full method-shaped projection for a contract.
type Skeleton struct {
	Methods []MethodSkeleton
}

// Emit builds the skeleton for every manifest method (or a single
// ScriptEntry wrapper when man is nil or declares no methods).
func Emit(instructions []disasm.Instruction, tokens []highlevel.TokenInfo, resolver highlevel.CallResolver, man *manifest.Manifest, opts postprocess.Options) *Skeleton {
	if man == nil || len(man.Methods) == 0 {
		return &Skeleton{Methods: []MethodSkeleton{emitScriptEntry(instructions, tokens, resolver, opts)}}
	}

	methods := make([]manifest.Method, len(man.Methods))
	copy(methods, man.Methods)
	sort.Slice(methods, func(i, j int) bool { return methods[i].Offset < methods[j].Offset })

	out := &Skeleton{}
	for _, m := range man.Methods {
		if !m.HasOffset {
			out.Methods = append(out.Methods, stubMethod(m))
			continue
		}
		body := InstructionsForMethod(instructions, methods, m.Offset)
		out.Methods = append(out.Methods, emitMethod(m, body, tokens, resolver, opts))
	}
	return out
}

func stubMethod(m manifest.Method) MethodSkeleton {
	return MethodSkeleton{
		Name:         m.Name,
		OriginalName: m.OriginalName,
		DisplayName:  m.Name != m.OriginalName,
		Safe:         m.Safe,
		Parameters:   m.Parameters,
		ReturnType:   m.ReturnType,
		Body:         []string{"throw new NotImplementedException();"},
		Stub:         true,
	}
}

func emitMethod(m manifest.Method, instructions []disasm.Instruction, tokens []highlevel.TokenInfo, resolver highlevel.CallResolver, opts postprocess.Options) MethodSkeleton {
	e := highlevel.New(instructions, tokens, resolver)
	stmts, warnings := e.Run()
	stmts = postprocess.Run(stmts, opts)

	body := make([]string, len(stmts))
	for i, s := range stmts {
		body[i] = csharpize(s.Text)
	}

	return MethodSkeleton{
		Name:         m.Name,
		OriginalName: m.OriginalName,
		DisplayName:  m.Name != m.OriginalName,
		Safe:         m.Safe,
		Parameters:   m.Parameters,
		ReturnType:   m.ReturnType,
		Body:         body,
		Warnings:     warnings,
	}
}

func emitScriptEntry(instructions []disasm.Instruction, tokens []highlevel.TokenInfo, resolver highlevel.CallResolver, opts postprocess.Options) MethodSkeleton {
	e := highlevel.New(instructions, tokens, resolver)
	stmts, warnings := e.Run()
	stmts = postprocess.Run(stmts, opts)

	body := make([]string, len(stmts))
	for i, s := range stmts {
		body[i] = csharpize(s.Text)
	}

	return MethodSkeleton{
		Name:       "ScriptEntry",
		ReturnType: "Void",
		Body:       body,
		Warnings:   warnings,
	}
}

// InstructionsForMethod slices instructions belonging to the method
// starting at offset, bounded by the next ABI offset in ascending order
// (or the end of the script for the last method). sortedMethods must be
// sorted ascending by Offset; callers that only have the manifest's
// declaration order (e.g. internal/decompilation) sort a copy first, the
// same way Emit does.
func InstructionsForMethod(instructions []disasm.Instruction, sortedMethods []manifest.Method, offset int) []disasm.Instruction {
	end := -1
	for _, m := range sortedMethods {
		if m.HasOffset && m.Offset > offset {
			end = m.Offset
			break
		}
	}
	var out []disasm.Instruction
	for _, inst := range instructions {
		if inst.Offset < offset {
			continue
		}
		if end >= 0 && inst.Offset >= end {
			break
		}
		out = append(out, inst)
	}
	return out
}

// neoTypeToCSharp maps ABI parameter/return type names to the C# type the
// Neo devpack would declare for them.
var neoTypeToCSharp = map[string]string{
	"Any":              "object",
	"Boolean":          "bool",
	"Integer":          "BigInteger",
	"ByteArray":        "byte[]",
	"String":           "string",
	"Hash160":          "UInt160",
	"Hash256":          "UInt256",
	"PublicKey":        "ECPoint",
	"Signature":        "byte[]",
	"Array":            "object[]",
	"Map":              "Map<object, object>",
	"InteropInterface": "object",
	"Void":             "void",
}

func csharpType(neoType string) string {
	if t, ok := neoTypeToCSharp[neoType]; ok {
		return t
	}
	return "object"
}

// Signature renders a method's C# parameter list.
func Signature(params []manifest.Parameter) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s %s", csharpType(p.Type), p.Name)
	}
	return strings.Join(parts, ", ")
}

// Header renders the attribute lines and declaration line for m, without
// its body or braces.
func Header(m MethodSkeleton) []string {
	var lines []string
	if m.DisplayName {
		lines = append(lines, fmt.Sprintf("[DisplayName(%q)]", m.OriginalName))
	}
	if m.Safe {
		lines = append(lines, "[Safe]")
	}
	ret := "void"
	if m.ReturnType != "" {
		ret = csharpType(m.ReturnType)
	}
	lines = append(lines, fmt.Sprintf("public static %s %s(%s)", ret, m.Name, Signature(m.Parameters)))
	return lines
}

// Render joins every method's header and body into a single class body
// text, one method per blank-line-separated block.
func Render(s *Skeleton, className string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "public class %s\n{\n", className)
	for i, m := range s.Methods {
		if i > 0 {
			b.WriteString("\n")
		}
		for _, h := range Header(m) {
			b.WriteString("    ")
			b.WriteString(h)
			b.WriteString("\n")
		}
		b.WriteString("    {\n")
		for _, line := range m.Body {
			b.WriteString("        ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("    }\n")
	}
	b.WriteString("}\n")
	return b.String()
}
