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

package cfg

import "github.com/RoaringBitmap/roaring"

// maxDominanceIterations bounds the Cooper-Harvey-Kennedy fixpoint. Only a
// malformed CFG (unreachable back-edges into cycles the RPO numbering
// doesn't stabilize) could threaten non-convergence; in that case the
// partial result at the cap is returned rather than raising.
const maxDominanceIterations = 1000

// DominanceInfo holds immediate dominators, the dominator tree, and
// dominance frontiers for one Cfg, all keyed by BlockID.
type DominanceInfo struct {
	IDom      map[BlockID]BlockID
	Tree      map[BlockID][]BlockID
	Frontier  map[BlockID]*roaring.Bitmap
	rpoIndex  map[BlockID]int
	reachable []BlockID
}

// ComputeDominance runs reverse-postorder iteration with the "two fingers
// up the dominator tree" intersection rule, starting from entry (normally
// block 0).
func ComputeDominance(c *Cfg, entry BlockID) *DominanceInfo {
	d := &DominanceInfo{
		IDom:     make(map[BlockID]BlockID),
		Tree:     make(map[BlockID][]BlockID),
		Frontier: make(map[BlockID]*roaring.Bitmap),
	}
	if len(c.Blocks) == 0 {
		return d
	}

	rpo := reversePostorder(c, entry)
	d.reachable = rpo
	d.rpoIndex = make(map[BlockID]int, len(rpo))
	for i, b := range rpo {
		d.rpoIndex[b] = i
	}

	d.IDom[entry] = entry
	changed := true
	for iter := 0; changed && iter < maxDominanceIterations; iter++ {
		changed = false
		for _, b := range rpo {
			if b == entry {
				continue
			}
			var newIdom BlockID = -1
			first := true
			for _, p := range c.Blocks[b].Pred {
				if _, ok := d.IDom[p]; !ok {
					continue
				}
				if first {
					newIdom = p
					first = false
					continue
				}
				newIdom = d.intersect(newIdom, p)
			}
			if first {
				continue // no processed predecessor yet
			}
			if cur, ok := d.IDom[b]; !ok || cur != newIdom {
				d.IDom[b] = newIdom
				changed = true
			}
		}
	}

	for b, idom := range d.IDom {
		if b == entry {
			continue
		}
		d.Tree[idom] = append(d.Tree[idom], b)
	}

	d.computeFrontiers(c, entry)
	return d
}

func (d *DominanceInfo) intersect(a, b BlockID) BlockID {
	for a != b {
		for d.rpoIndex[a] > d.rpoIndex[b] {
			a = d.IDom[a]
		}
		for d.rpoIndex[b] > d.rpoIndex[a] {
			b = d.IDom[b]
		}
	}
	return a
}

// computeFrontiers tracks each block's frontier as a roaring.Bitmap of
// BlockIDs rather than a map[BlockID]struct{} — the same dense small-int
// set representation the CFG builder already uses for its leader set
// (cfg.go), reused here since frontier membership is the identical
// "sparse set over block indices" shape.
func (d *DominanceInfo) computeFrontiers(c *Cfg, entry BlockID) {
	for _, b := range d.reachable {
		d.Frontier[b] = roaring.New()
	}
	for _, b := range d.reachable {
		block := c.Blocks[b]
		if len(block.Pred) < 2 {
			continue
		}
		for _, p := range block.Pred {
			runner := p
			if _, ok := d.IDom[runner]; !ok {
				continue
			}
			for runner != d.IDom[b] {
				d.Frontier[runner].Add(uint32(b))
				next, ok := d.IDom[runner]
				if !ok || next == runner {
					break
				}
				runner = next
			}
		}
	}
}

func reversePostorder(c *Cfg, entry BlockID) []BlockID {
	visited := make(map[BlockID]bool)
	var post []BlockID

	var visit func(BlockID)
	visit = func(b BlockID) {
		if visited[b] || int(b) < 0 || int(b) >= len(c.Blocks) {
			return
		}
		visited[b] = true
		for _, s := range c.Blocks[b].Succ {
			visit(s)
		}
		post = append(post, b)
	}
	visit(entry)

	rpo := make([]BlockID, len(post))
	for i, b := range post {
		rpo[len(post)-1-i] = b
	}
	return rpo
}

// --- SSA scaffold -----------------------------------------------------

// SSAVar is a versioned variable: the same base_name re-assigned under a
// new version at each definition point.
type SSAVar struct {
	BaseName string
	Version  int
}

// Phi is a phi-node: one operand slot per predecessor block, keyed by
// predecessor BlockID. Full renaming (populating Operands with real SSAVar
// values) is out of scope here; the builder only establishes the node
// shape and its home block.
type Phi struct {
	Result   SSAVar
	Block    BlockID
	Operands map[BlockID]SSAVar
}

// SSABlock is the (currently empty) SSA-form counterpart of a Block.
type SSABlock struct {
	ID    BlockID
	Phis  []Phi
	Stmts []interface{}
}

// SSAScaffold pairs the dominance info with a per-block SSA shell.
type SSAScaffold struct {
	Dominance *DominanceInfo
	Blocks    map[BlockID]*SSABlock
}

// BuildSSAScaffold establishes empty SSA blocks and the dominance info for
// c. Actual phi insertion and renaming are left to a future pass.
func BuildSSAScaffold(c *Cfg, entry BlockID) *SSAScaffold {
	dom := ComputeDominance(c, entry)
	s := &SSAScaffold{Dominance: dom, Blocks: make(map[BlockID]*SSABlock, len(c.Blocks))}
	for _, b := range c.Blocks {
		s.Blocks[b.ID] = &SSABlock{ID: b.ID}
	}
	return s
}
