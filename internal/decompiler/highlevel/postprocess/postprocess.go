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

// Package postprocess runs the fixed-order rewrite passes over an already
// emitted statement line list (§4.9.4). Every pass is deterministic,
// idempotent, and uses only line-local pattern matching; none re-enters
// the emitter.
package postprocess

import (
	"regexp"
	"strings"

	"github.com/n42blockchain/N42/internal/decompiler/highlevel"
)

// Options toggles the single documented behavior switch: whether
// single-use temporaries are inlined everywhere, not just into
// if/while/for headers.
type Options struct {
	InlineSingleUseTemps bool
}

// Run applies all fourteen passes, in order, to stmts and returns the
// rewritten line list.
func Run(stmts []highlevel.Statement, opts Options) []highlevel.Statement {
	lines := toLines(stmts)
	lines = collapseElseIf(lines)
	lines = collapseOverflowChecks(lines)
	lines = rewriteGotoDoWhile(lines)
	lines = rewriteIfGotoWhile(lines)
	lines = eliminateFallthroughGoto(lines)
	lines = recognizeForLoops(lines)
	lines = inlineConditionTemps(lines)
	lines = inlineForIncrementTemps(lines)
	if opts.InlineSingleUseTemps {
		lines = inlineSingleUseTemps(lines)
	}
	lines = rewriteCompoundAssignment(lines)
	lines = rewriteIndexingSyntax(lines)
	lines = collapseIfTrue(lines)
	lines = synthesizeSwitch(lines)
	lines = rewriteSwitchBreakGoto(lines)
	return fromLines(lines, stmts)
}

// line is a mutable working copy of a Statement used across passes.
type line struct {
	offset int
	text   string
}

func toLines(stmts []highlevel.Statement) []line {
	out := make([]line, len(stmts))
	for i, s := range stmts {
		out[i] = line{offset: s.Offset, text: s.Text}
	}
	return out
}

func fromLines(lines []line, orig []highlevel.Statement) []highlevel.Statement {
	out := make([]highlevel.Statement, len(lines))
	for i, l := range lines {
		out[i] = highlevel.Statement{Offset: l.offset, Text: l.text}
	}
	return out
}

func indentOf(s string) string {
	i := 0
	for i < len(s) && s[i] == ' ' {
		i++
	}
	return s[:i]
}

func trimmed(s string) string { return strings.TrimSpace(s) }

// 1. Else-if chain collapsing: "} else {" followed directly by a lone
// "if cond {" and the chain's matching closer immediately
// after the inner if's close collapses to "} else if cond {".
func collapseElseIf(lines []line) []line {
	out := make([]line, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		if trimmed(lines[i].text) == "} else {" && i+1 < len(lines) {
			next := trimmed(lines[i+1].text)
			if strings.HasPrefix(next, "if ") && strings.HasSuffix(next, "{") {
				// find the inner if's matching close immediately followed
				// by this else-block's own close.
				depth := 1
				j := i + 2
				for j < len(lines) && depth > 0 {
					tt := trimmed(lines[j].text)
					if strings.HasSuffix(tt, "{") {
						depth++
					} else if tt == "}" {
						depth--
					}
					j++
				}
				if j < len(lines) && trimmed(lines[j].text) == "}" {
					cond := strings.TrimPrefix(next, "if ")
					out = append(out, line{offset: lines[i].offset, text: "} else if " + cond})
					for k := i + 2; k < j-1; k++ {
						out = append(out, lines[k])
					}
					out = append(out, lines[j])
					i = j
					continue
				}
			}
		}
		out = append(out, lines[i])
	}
	return out
}

// 2. Overflow-check collapse: a guard of the form
// "let tN = a < b;" "if tN {" "abort();" "}" is reduced to a single
// assertive line, whatever follows it. This recognizes the single
// most common idiom (a strict-less-than guard feeding an abort) and
// leaves anything else untouched.
var overflowGuardCmp = regexp.MustCompile(`^let (t\d+) = (.+) < (.+);$`)

func collapseOverflowChecks(lines []line) []line {
	out := make([]line, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		m := overflowGuardCmp.FindStringSubmatch(trimmed(lines[i].text))
		if m != nil && i+3 < len(lines) &&
			trimmed(lines[i+1].text) == "if "+m[1]+" {" &&
			trimmed(lines[i+2].text) == "abort();" &&
			trimmed(lines[i+3].text) == "}" {
			out = append(out, line{offset: lines[i].offset, text: "assert(" + m[2] + " >= " + m[3] + ");"})
			i += 3
			continue
		}
		out = append(out, lines[i])
	}
	return out
}

var labelDecl = regexp.MustCompile(`^(label_0x[0-9A-Fa-f]+):$`)
var gotoStmt = regexp.MustCompile(`^goto (label_0x[0-9A-Fa-f]+);$`)
var ifGoto = regexp.MustCompile(`^if (.+) \{$`)

// 3. Goto-do-while rewrite: "label_X: ... if cond { goto label_X; } }"
// (a backward-branching tail emitted as plain goto, rather than the
// emitter's own do-while recognizer) folds into "do { ... } while (cond);".
func rewriteGotoDoWhile(lines []line) []line {
	labelAt := make(map[string]int)
	for i, l := range lines {
		if m := labelDecl.FindStringSubmatch(trimmed(l.text)); m != nil {
			labelAt[m[1]] = i
		}
	}
	out := make([]line, 0, len(lines))
	skip := make(map[int]bool)
	pos := make(map[int]int) // index in lines -> index in out
	for i := 0; i < len(lines); i++ {
		if skip[i] {
			continue
		}
		if m := ifGoto.FindStringSubmatch(trimmed(lines[i].text)); m != nil && i+2 < len(lines) {
			gm := gotoStmt.FindStringSubmatch(trimmed(lines[i+1].text))
			if gm != nil && trimmed(lines[i+2].text) == "}" {
				if target, ok := labelAt[gm[1]]; ok && target <= i {
					if p, ok := pos[target]; ok {
						// open the loop right after its label
						out = append(out[:p+1], append([]line{{offset: lines[target].offset, text: "do {"}}, out[p+1:]...)...)
						for k, v := range pos {
							if v > p {
								pos[k] = v + 1
							}
						}
					}
					out = append(out, line{offset: lines[i].offset, text: "} while (" + m[1] + ");"})
					skip[i+1] = true
					skip[i+2] = true
					continue
				}
			}
		}
		pos[i] = len(out)
		out = append(out, lines[i])
	}
	return out
}

// 4. If-goto -> while: "if cond { goto L; } ... L:" where L is reached
// only from below becomes "while cond { ... }".
func rewriteIfGotoWhile(lines []line) []line {
	labelAt := make(map[string]int)
	for i, l := range lines {
		if m := labelDecl.FindStringSubmatch(trimmed(l.text)); m != nil {
			labelAt[m[1]] = i
		}
	}
	out := make([]line, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		if m := ifGoto.FindStringSubmatch(trimmed(lines[i].text)); m != nil && i+2 < len(lines) {
			gm := gotoStmt.FindStringSubmatch(trimmed(lines[i+1].text))
			if gm != nil && trimmed(lines[i+2].text) == "}" {
				if target, ok := labelAt[gm[1]]; ok && target > i {
					out = append(out, line{offset: lines[i].offset, text: "while " + m[1] + " {"})
					continue
				}
			}
		}
		out = append(out, lines[i])
	}
	return out
}

// 5. Fallthrough-goto elimination: "goto L;" immediately followed by "L:"
// is a no-op and is dropped.
func eliminateFallthroughGoto(lines []line) []line {
	out := make([]line, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		if gm := gotoStmt.FindStringSubmatch(trimmed(lines[i].text)); gm != nil && i+1 < len(lines) {
			if lm := labelDecl.FindStringSubmatch(trimmed(lines[i+1].text)); lm != nil && lm[1] == gm[1] {
				continue
			}
		}
		out = append(out, lines[i])
	}
	return out
}

// 6. For-loop recognition: an init assignment immediately preceding a
// while loop whose body's last statement is an update to the same
// variable collapses to a for statement. The init line is always the
// local's first store, so it carries the emitter's "let" prefix
// (highlevel/slots.go); the update line is a later store to the same
// already-initialized local, so the emitter never re-prefixes it with
// "let" — the update match must accept the bare "name = expr;" shape.
var simpleAssign = regexp.MustCompile(`^let (\w+) = (.+);$`)
var plainAssign = regexp.MustCompile(`^(\w+) = (.+);$`)
var whileHeader = regexp.MustCompile(`^while (.+) \{$`)

func recognizeForLoops(lines []line) []line {
	out := make([]line, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		initM := simpleAssign.FindStringSubmatch(trimmed(lines[i].text))
		if initM != nil && i+1 < len(lines) {
			condM := whileHeader.FindStringSubmatch(trimmed(lines[i+1].text))
			if condM != nil && strings.Contains(condM[1], initM[1]) {
				if end := matchingClose(lines, i+1); end > i+1 {
					updateM := plainAssign.FindStringSubmatch(trimmed(lines[end-1].text))
					if updateM != nil && updateM[1] == initM[1] {
						out = append(out, line{offset: lines[i].offset,
							text: "for (let " + initM[1] + " = " + initM[2] + "; " + condM[1] + "; " + updateM[1] + " = " + updateM[2] + ") {"})
						for k := i + 2; k < end-1; k++ {
							out = append(out, lines[k])
						}
						out = append(out, lines[end])
						i = end
						continue
					}
				}
			}
		}
		out = append(out, lines[i])
	}
	return out
}

func matchingClose(lines []line, openIdx int) int {
	depth := 1
	for j := openIdx + 1; j < len(lines); j++ {
		t := trimmed(lines[j].text)
		if strings.HasSuffix(t, "{") {
			depth++
		} else if t == "}" || strings.HasPrefix(t, "} ") {
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// 7. Condition-temp inlining: "let tN = expr;" immediately followed by a
// header referencing tN exactly once substitutes expr in place of tN.
var tempDecl = regexp.MustCompile(`^let (t\d+) = (.+);$`)

func inlineConditionTemps(lines []line) []line {
	out := make([]line, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		m := tempDecl.FindStringSubmatch(trimmed(lines[i].text))
		if m != nil && i+1 < len(lines) && usedExactlyOnce(lines[i+1].text, m[1]) &&
			isHeaderLine(lines[i+1].text) {
			out = append(out, line{offset: lines[i+1].offset, text: strings.Replace(lines[i+1].text, m[1], m[2], 1)})
			i++
			continue
		}
		out = append(out, lines[i])
	}
	return out
}

func isHeaderLine(s string) bool {
	t := trimmed(s)
	return strings.HasPrefix(t, "if ") || strings.HasPrefix(t, "while ") || strings.HasPrefix(t, "} while (")
}

func usedExactlyOnce(s, name string) bool {
	return strings.Count(s, name) == 1
}

// 8. For-increment temp inlining: mirrors pass 7, but the declaration
// follows the use instead of preceding it — recognizeForLoops lifts the
// update line "name = tN;" into the header, leaving "let tN = expr;" as
// the last statement in the body, immediately before the closing brace.
// Substitute expr for tN in the header and drop the now-dead body line.
var forHeader = regexp.MustCompile(`^for \(.+; .+; (\w+) = (.+)\) \{$`)

func inlineForIncrementTemps(lines []line) []line {
	out := make([]line, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		m := forHeader.FindStringSubmatch(trimmed(lines[i].text))
		if m == nil {
			out = append(out, lines[i])
			continue
		}
		end := matchingClose(lines, i)
		if end <= i+1 {
			out = append(out, lines[i])
			continue
		}
		tm := tempDecl.FindStringSubmatch(trimmed(lines[end-1].text))
		if tm == nil || tm[1] != m[2] {
			out = append(out, lines[i])
			continue
		}
		out = append(out, line{offset: lines[i].offset, text: strings.Replace(lines[i].text, m[2], tm[2], 1)})
		for k := i + 1; k < end-1; k++ {
			out = append(out, lines[k])
		}
		out = append(out, lines[end])
		i = end
	}
	return out
}

// 9. Optional single-use temp inlining: substitutes any "let tN = expr;"
// into the single later line that references tN, when tN appears
// nowhere else.
func inlineSingleUseTemps(lines []line) []line {
	uses := make(map[string]int)
	for _, l := range lines {
		decl := tempDecl.FindStringSubmatch(trimmed(l.text))
		for _, m := range tempRefAll(l.text) {
			if decl != nil && m == decl[1] {
				continue
			}
			uses[m]++
		}
	}
	out := make([]line, 0, len(lines))
	pendingDecls := make(map[string]string)
	for i := 0; i < len(lines); i++ {
		m := tempDecl.FindStringSubmatch(trimmed(lines[i].text))
		if m != nil && uses[m[1]] == 1 {
			pendingDecls[m[1]] = m[2]
			continue
		}
		text := lines[i].text
		for name, expr := range pendingDecls {
			if strings.Contains(text, name) {
				text = strings.Replace(text, name, expr, 1)
				delete(pendingDecls, name)
			}
		}
		out = append(out, line{offset: lines[i].offset, text: text})
	}
	return out
}

var tempRefPattern = regexp.MustCompile(`t\d+`)

func tempRefAll(s string) []string {
	return tempRefPattern.FindAllString(s, -1)
}

// 10. Compound-assignment rewrite: "x = x + 1;" -> "x += 1;", and
// analogously for -, *, /, %, &, |, ^, <<, >>.
var compoundCandidate = regexp.MustCompile(`^(\w+) = (\w+) (\+|-|\*|/|%|&|\||\^|<<|>>) (.+);$`)

func rewriteCompoundAssignment(lines []line) []line {
	out := make([]line, len(lines))
	for i, l := range lines {
		m := compoundCandidate.FindStringSubmatch(trimmed(l.text))
		if m != nil && m[1] == m[2] {
			out[i] = line{offset: l.offset, text: m[1] + " " + m[3] + "= " + m[4] + ";"}
			continue
		}
		out[i] = l
	}
	return out
}

// 11. Indexing-syntax rewrite: "pickitem(a, i)" -> "a[i]", including as a
// sub-expression embedded in a larger line.
var indexCall = regexp.MustCompile(`pickitem\(([^,()]+), ([^,()]+)\)`)

func rewriteIndexingSyntax(lines []line) []line {
	out := make([]line, len(lines))
	for i, l := range lines {
		out[i] = line{offset: l.offset, text: indexCall.ReplaceAllString(l.text, "$1[$2]")}
	}
	return out
}

// 12. "if (true) { ... }" collapse: drops the header and its matching
// closer, keeping the body inline.
func collapseIfTrue(lines []line) []line {
	out := make([]line, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		if trimmed(lines[i].text) == "if true {" {
			if end := matchingClose(lines, i); end > i {
				for k := i + 1; k < end; k++ {
					out = append(out, lines[k])
				}
				i = end
				continue
			}
		}
		out = append(out, lines[i])
	}
	return out
}

// 13. Switch synthesis: a chain of "if x == c1 { ... } else if x == c2
// { ... } ..." sharing discriminant x collapses into a switch statement.
var eqIf = regexp.MustCompile(`^if (\w+) == (.+) \{$`)
var eqElseIf = regexp.MustCompile(`^\} else if (\w+) == (.+) \{$`)

func synthesizeSwitch(lines []line) []line {
	out := make([]line, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		m := eqIf.FindStringSubmatch(trimmed(lines[i].text))
		if m == nil {
			out = append(out, lines[i])
			continue
		}
		discriminant := m[1]
		out = append(out, line{offset: lines[i].offset, text: "switch (" + discriminant + ") {"})
		out = append(out, line{offset: lines[i].offset, text: "case " + m[2] + ":"})
		i++
		for i < len(lines) {
			t := trimmed(lines[i].text)
			if em := eqElseIf.FindStringSubmatch(t); em != nil && em[1] == discriminant {
				out = append(out, line{offset: lines[i].offset, text: "case " + em[2] + ":"})
				i++
				continue
			}
			if t == "}" {
				out = append(out, line{offset: lines[i].offset, text: "}"})
				break
			}
			out = append(out, lines[i])
			i++
		}
	}
	return out
}

// 14. Switch-break goto rewrite: a "goto <merge>;" as the last statement
// of a case body becomes "break;".
func rewriteSwitchBreakGoto(lines []line) []line {
	out := make([]line, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		t := trimmed(lines[i].text)
		if gotoStmt.MatchString(t) && i+1 < len(lines) {
			next := trimmed(lines[i+1].text)
			if strings.HasPrefix(next, "case ") || next == "}" {
				out = append(out, line{offset: lines[i].offset, text: indentOf(lines[i].text) + "break;"})
				continue
			}
		}
		out = append(out, lines[i])
	}
	return out
}
