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

package csharp

import (
	"regexp"
	"strings"
)

// csharpize rewrites one pseudocode line from the lifter's vocabulary into
// a C#-compatible form: declaration keyword, collection literals, and the
// handful of named runtime helpers that have no direct C# operator.
func csharpize(line string) string {
	t := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(t, "let "):
		line = "var " + strings.TrimPrefix(t, "let ")
	case t == "abort();":
		line = "throw new Exception(\"ABORT\");"
	case strings.HasPrefix(t, "abort_msg("):
		line = rewriteCall(t, "abort_msg", "throw new Exception")
	case strings.HasPrefix(t, "throw("):
		line = rewriteCall(t, "throw", "throw new Exception")
	case strings.HasPrefix(t, "assert_msg("):
		line = rewriteCall(t, "assert_msg", "Debug.Assert")
	case strings.HasPrefix(t, "assert("):
		line = rewriteCall(t, "assert", "Debug.Assert")
	}
	line = structLiteral.ReplaceAllString(line, "new object()")
	line = emptyArrayLiteral.ReplaceAllString(line, "new object[0]")
	line = emptyMapLiteral.ReplaceAllString(line, "new Map<object, object>()")
	return line
}

var structLiteral = regexp.MustCompile(`\bstruct\{\}`)
var emptyArrayLiteral = regexp.MustCompile(`= \[\];`)
var emptyMapLiteral = regexp.MustCompile(`= \{\};`)

// rewriteCall swaps a pseudocode call's leading function name for a C#
// construct name, keeping the argument list and trailing punctuation.
func rewriteCall(t, from, to string) string {
	rest := strings.TrimPrefix(t, from)
	return to + rest
}
