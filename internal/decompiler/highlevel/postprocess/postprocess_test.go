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

package postprocess

import (
	"strings"
	"testing"

	"github.com/n42blockchain/N42/internal/decompiler/highlevel"
	"github.com/stretchr/testify/require"
)

func stmts(texts ...string) []highlevel.Statement {
	out := make([]highlevel.Statement, len(texts))
	for i, t := range texts {
		out[i] = highlevel.Statement{Offset: i, Text: t}
	}
	return out
}

func joined(s []highlevel.Statement) string {
	texts := make([]string, len(s))
	for i, st := range s {
		texts[i] = st.Text
	}
	return strings.Join(texts, "\n")
}

func TestElseIfCollapse(t *testing.T) {
	in := stmts(
		"if a > 1 {",
		"foo();",
		"} else {",
		"if a > 2 {",
		"bar();",
		"}",
		"}",
	)
	out := Run(in, Options{})
	require.Contains(t, joined(out), "} else if a > 2 {")
}

func TestOverflowCheckCollapse(t *testing.T) {
	in := stmts(
		"let t1 = a < b;",
		"if t1 {",
		"abort();",
		"}",
	)
	out := Run(in, Options{})
	require.Contains(t, joined(out), "assert(a >= b);")
}

func TestFallthroughGotoEliminated(t *testing.T) {
	in := stmts(
		"goto label_0x0010;",
		"label_0x0010:",
		"return t1;",
	)
	out := Run(in, Options{})
	require.NotContains(t, joined(out), "goto label_0x0010;")
}

func TestCompoundAssignmentRewrite(t *testing.T) {
	in := stmts("x = x + 1;")
	out := Run(in, Options{})
	require.Contains(t, joined(out), "x += 1;")
}

func TestIndexingSyntaxRewrite(t *testing.T) {
	in := stmts("let t1 = pickitem(arr, i);")
	out := Run(in, Options{})
	require.Contains(t, joined(out), "arr[i]")
}

func TestIfTrueCollapse(t *testing.T) {
	in := stmts(
		"if true {",
		"foo();",
		"}",
		"return t1;",
	)
	out := Run(in, Options{})
	text := joined(out)
	require.NotContains(t, text, "if true {")
	require.Contains(t, text, "foo();")
}

func TestSwitchSynthesis(t *testing.T) {
	in := stmts(
		"if x == 1 {",
		"foo();",
		"goto label_0x0100;",
		"} else if x == 2 {",
		"bar();",
		"goto label_0x0100;",
		"}",
	)
	out := Run(in, Options{})
	text := joined(out)
	require.Contains(t, text, "switch (x) {")
	require.Contains(t, text, "case 1:")
	require.Contains(t, text, "case 2:")
}

func TestForLoopRecognition(t *testing.T) {
	in := stmts(
		"let loc0 = 0;",
		"while loc0 < 10 {",
		"foo();",
		"loc0 = loc0 + 1;",
		"}",
	)
	out := Run(in, Options{})
	require.Contains(t, joined(out), "for (let loc0 = 0; loc0 < 10; loc0 = loc0 + 1) {")
}

func TestForIncrementTempInlined(t *testing.T) {
	in := stmts(
		"let loc0 = 0;",
		"while loc0 < 10 {",
		"foo();",
		"let t5 = loc0 + 1;",
		"loc0 = t5;",
		"}",
	)
	out := Run(in, Options{})
	text := joined(out)
	require.Contains(t, text, "for (let loc0 = 0; loc0 < 10; loc0 = loc0 + 1) {")
	require.NotContains(t, text, "let t5 = loc0 + 1;")
}

func TestInlineSingleUseTempsToggle(t *testing.T) {
	in := stmts(
		"let t1 = a + b;",
		"return t1;",
	)
	withoutInline := Run(in, Options{})
	require.Contains(t, joined(withoutInline), "let t1 = a + b;")

	withInline := Run(in, Options{InlineSingleUseTemps: true})
	require.Contains(t, joined(withInline), "return a + b;")
}

func TestRunIsIdempotent(t *testing.T) {
	in := stmts(
		"x = x + 1;",
		"let t1 = pickitem(arr, i);",
	)
	first := Run(in, Options{})
	second := Run(first, Options{})
	require.Equal(t, joined(first), joined(second))
}
