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

// Package dotgraph exports a decompilation.Result's CFG and call graph as
// Graphviz DOT, using the teacher's own emicklei/dot dependency.
package dotgraph

import (
	"fmt"

	"github.com/emicklei/dot"

	"github.com/n42blockchain/N42/internal/decompiler/callgraph"
	"github.com/n42blockchain/N42/internal/decompiler/cfg"
)

// CFG renders one method's control-flow graph: one node per block, labeled
// with its offset range, edges classified by terminator kind.
func CFG(g *cfg.Cfg) string {
	graph := dot.NewGraph(dot.Directed)
	nodes := make(map[cfg.BlockID]dot.Node, len(g.Blocks))
	for _, b := range g.Blocks {
		label := fmt.Sprintf("%04X-%04X\n%s", b.StartOffset, b.EndOffset, b.Term)
		nodes[b.ID] = graph.Node(fmt.Sprintf("block%d", b.ID)).Label(label)
	}
	for _, b := range g.Blocks {
		for _, succ := range b.Succ {
			graph.Edge(nodes[b.ID], nodes[succ])
		}
	}
	return graph.String()
}

// CallGraph renders the resolved call edges: one node per distinct target
// (named internal method, method token, or syscall), one edge per call
// site.
func CallGraph(edges []callgraph.CallEdge) string {
	graph := dot.NewGraph(dot.Directed)
	nodes := make(map[string]dot.Node)
	nodeFor := func(id, label string) dot.Node {
		if n, ok := nodes[id]; ok {
			return n
		}
		n := graph.Node(id).Label(label)
		nodes[id] = n
		return n
	}

	for _, e := range edges {
		caller := nodeFor(fmt.Sprintf("caller_%04X", e.CallerOffset), fmt.Sprintf("0x%04X", e.CallerOffset))
		callee := calleeNode(nodeFor, e.Target)
		graph.Edge(caller, callee)
	}
	return graph.String()
}

func calleeNode(nodeFor func(id, label string) dot.Node, target callgraph.CallTarget) dot.Node {
	switch target.Kind {
	case callgraph.Internal, callgraph.UnresolvedInternal:
		return nodeFor(fmt.Sprintf("method_%04X", target.Method.Offset), target.Method.Name)
	case callgraph.MethodTokenTarget:
		return nodeFor("token_"+target.Token.Method, target.Token.Method+" (token)")
	case callgraph.SyscallTarget:
		return nodeFor(fmt.Sprintf("syscall_%08X", target.SyscallHash), target.SyscallName)
	default:
		return nodeFor("indirect_"+target.IndirectOpcode, target.IndirectOpcode+" (indirect)")
	}
}
