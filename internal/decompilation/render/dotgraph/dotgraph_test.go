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

package dotgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/n42blockchain/N42/internal/decompiler/callgraph"
	"github.com/n42blockchain/N42/internal/decompiler/cfg"
	"github.com/n42blockchain/N42/internal/decompiler/disasm"
	"github.com/n42blockchain/N42/internal/decompiler/nef"
	"github.com/n42blockchain/N42/internal/decompiler/opcode"
)

func disassemble(t *testing.T, script []byte) []disasm.Instruction {
	t.Helper()
	d := disasm.New(disasm.Error)
	insts, _, err := d.Disassemble(script)
	require.NoError(t, err)
	return insts
}

func TestCFGRendersOneNodePerBlock(t *testing.T) {
	// PUSH1 JMPIFNOT +3 ; PUSH0 RET ; RET
	script := []byte{
		0x11, byte(opcode.JMPIFNOT), 0x03,
		0x10, byte(opcode.RET),
		byte(opcode.RET),
	}
	g := cfg.Build(disassemble(t, script))
	out := CFG(g)
	require.Contains(t, out, "digraph")
	require.Contains(t, out, "Return")
}

func TestCallGraphRendersMethodTokenNode(t *testing.T) {
	edges := []callgraph.CallEdge{
		{CallerOffset: 0, Target: callgraph.CallTarget{
			Kind:  callgraph.MethodTokenTarget,
			Token: nef.MethodToken{Method: "transfer"},
		}},
	}
	out := CallGraph(edges)
	require.Contains(t, out, "transfer")
}
