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

// Package cfg builds a control-flow graph over a decoded instruction slice:
// leader discovery, basic-block construction, and terminator classification,
// grounded the way the teacher's internal/vm executes a script linearly but
// generalized here to a static (non-executing) block partition. Dominance
// and the SSA scaffold live in dominance.go.
package cfg

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
	"github.com/n42blockchain/N42/internal/decompiler/disasm"
	"github.com/n42blockchain/N42/internal/decompiler/opcode"
)

// BlockID indexes Cfg.Blocks.
type BlockID int

// Block is a maximal straight-line instruction run (a basic block), plus
// its classified terminator and adjacency.
type Block struct {
	ID          BlockID
	StartIndex  int // inclusive index into the instruction slice
	EndIndex    int // exclusive
	StartOffset int
	EndOffset   int // exclusive; byte offset just past the block's last instruction
	Term        Terminator

	// Terminator payload. Which fields are meaningful depends on Term.
	JumpTarget    BlockID
	BranchThen    BlockID
	BranchElse    BlockID
	TryBody       BlockID
	TryCatch      BlockID
	TryHasCatch   bool
	TryFinally    BlockID
	TryHasFinally bool
	EndTryTarget  BlockID

	Succ []BlockID
	Pred []BlockID
}

// Cfg is the control-flow graph for one method's instruction slice.
type Cfg struct {
	Instructions []disasm.Instruction
	Blocks       []Block
	// offsetToIndex maps a byte offset to its instruction index, used to
	// resolve jump targets expressed in bytes.
	offsetToIndex map[int]int
	offsetToBlock map[int]BlockID
	indexToBlock  []BlockID
}

// Build partitions instructions into basic blocks and classifies each
// block's terminator, wiring forward and reverse adjacency.
func Build(instructions []disasm.Instruction) *Cfg {
	c := &Cfg{Instructions: instructions}
	c.indexOffsets()

	leaders := c.discoverLeaders()
	c.buildBlocks(leaders)
	c.classifyAndLink()
	return c
}

func (c *Cfg) indexOffsets() {
	c.offsetToIndex = make(map[int]int, len(c.Instructions))
	for i, inst := range c.Instructions {
		c.offsetToIndex[inst.Offset] = i
	}
}

// nextOffset returns the byte offset immediately following instruction i.
func (c *Cfg) nextOffset(i int) int {
	inst := c.Instructions[i]
	return inst.Offset + disasm.Length(inst)
}

// resolveTarget computes offset_after_instruction + delta, per §4.5's
// jump-delta decoding rule, and maps it to an instruction index. ok is
// false when the target offset does not land on a known instruction
// boundary (dropped from the leader set silently).
func (c *Cfg) resolveTarget(i int, delta int32) (int, bool) {
	targetOffset := c.nextOffset(i) + int(delta)
	idx, ok := c.offsetToIndex[targetOffset]
	return idx, ok
}

func (c *Cfg) discoverLeaders() *roaring.Bitmap {
	leaders := roaring.New()
	if len(c.Instructions) == 0 {
		return leaders
	}
	leaders.Add(0)

	markFollowing := func(i int) {
		if i+1 < len(c.Instructions) {
			leaders.Add(uint32(i + 1))
		}
	}

	for i, inst := range c.Instructions {
		if !inst.Known {
			continue
		}
		switch inst.Opcode {
		case opcode.JMP, opcode.JMP_L:
			if inst.Operand != nil {
				if idx, ok := c.resolveTarget(i, inst.Operand.Jump); ok {
					leaders.Add(uint32(idx))
				}
			}
			markFollowing(i)
		case opcode.JMPIF, opcode.JMPIF_L, opcode.JMPIFNOT, opcode.JMPIFNOT_L,
			opcode.JMPEQ, opcode.JMPEQ_L, opcode.JMPNE, opcode.JMPNE_L,
			opcode.JMPGT, opcode.JMPGT_L, opcode.JMPGE, opcode.JMPGE_L,
			opcode.JMPLT, opcode.JMPLT_L, opcode.JMPLE, opcode.JMPLE_L:
			if inst.Operand != nil {
				if idx, ok := c.resolveTarget(i, inst.Operand.Jump); ok {
					leaders.Add(uint32(idx))
				}
			}
			markFollowing(i)
		case opcode.RET, opcode.THROW, opcode.ABORT, opcode.ABORTMSG:
			markFollowing(i)
		case opcode.TRY, opcode.TRY_L:
			wide := inst.Opcode == opcode.TRY_L
			if inst.Operand != nil {
				catchDelta, finallyDelta := disasm.DecodeTryTargets(*inst.Operand, wide)
				if catchDelta != 0 {
					if idx, ok := c.resolveTarget(i, catchDelta); ok {
						leaders.Add(uint32(idx))
					}
				}
				if finallyDelta != 0 {
					if idx, ok := c.resolveTarget(i, finallyDelta); ok {
						leaders.Add(uint32(idx))
					}
				}
			}
			markFollowing(i)
		case opcode.ENDTRY, opcode.ENDTRY_L:
			if inst.Operand != nil {
				if idx, ok := c.resolveTarget(i, inst.Operand.Jump); ok {
					leaders.Add(uint32(idx))
				}
			}
			markFollowing(i)
		case opcode.ENDFINALLY:
			markFollowing(i)
		}
	}
	return leaders
}

func (c *Cfg) buildBlocks(leaders *roaring.Bitmap) {
	var sorted []int
	it := leaders.Iterator()
	for it.HasNext() {
		sorted = append(sorted, int(it.Next()))
	}
	sort.Ints(sorted)

	for bi, start := range sorted {
		end := len(c.Instructions)
		if bi+1 < len(sorted) {
			end = sorted[bi+1]
		}
		startOffset := c.Instructions[start].Offset
		b := Block{
			ID:          BlockID(bi),
			StartIndex:  start,
			EndIndex:    end,
			StartOffset: startOffset,
		}
		if end > start {
			last := c.Instructions[end-1]
			b.EndOffset = last.Offset + disasm.Length(last)
		} else {
			b.EndOffset = startOffset
		}
		c.Blocks = append(c.Blocks, b)
	}

	c.offsetToBlock = make(map[int]BlockID, len(c.Instructions))
	c.indexToBlock = make([]BlockID, len(c.Instructions))
	for _, b := range c.Blocks {
		for idx := b.StartIndex; idx < b.EndIndex; idx++ {
			c.offsetToBlock[c.Instructions[idx].Offset] = b.ID
			c.indexToBlock[idx] = b.ID
		}
	}
}

func (c *Cfg) blockContainingIndex(idx int) BlockID {
	if idx < 0 || idx >= len(c.indexToBlock) {
		return BlockID(-1)
	}
	return c.indexToBlock[idx]
}

func (c *Cfg) classifyAndLink() {
	for bi := range c.Blocks {
		b := &c.Blocks[bi]
		if b.EndIndex == b.StartIndex {
			b.Term = TUnknown
			continue
		}
		lastIdx := b.EndIndex - 1
		inst := c.Instructions[lastIdx]
		nextBlock := BlockID(-1)
		if bi+1 < len(c.Blocks) {
			nextBlock = c.Blocks[bi+1].ID
		}

		if !inst.Known {
			b.Term = TUnknown
			continue
		}

		switch inst.Opcode {
		case opcode.RET:
			b.Term = TReturn
		case opcode.THROW:
			b.Term = TThrow
		case opcode.ABORT, opcode.ABORTMSG:
			b.Term = TAbort
		case opcode.ENDFINALLY:
			b.Term = TUnknown
		case opcode.JMP, opcode.JMP_L:
			b.Term = TJump
			if inst.Operand != nil {
				if idx, ok := c.resolveTarget(lastIdx, inst.Operand.Jump); ok {
					b.JumpTarget = c.blockContainingIndex(idx)
				} else {
					b.JumpTarget = BlockID(-1)
				}
			}
		case opcode.JMPIF, opcode.JMPIF_L, opcode.JMPIFNOT, opcode.JMPIFNOT_L,
			opcode.JMPEQ, opcode.JMPEQ_L, opcode.JMPNE, opcode.JMPNE_L,
			opcode.JMPGT, opcode.JMPGT_L, opcode.JMPGE, opcode.JMPGE_L,
			opcode.JMPLT, opcode.JMPLT_L, opcode.JMPLE, opcode.JMPLE_L:
			b.Term = TBranch
			b.BranchElse = nextBlock
			if inst.Operand != nil {
				if idx, ok := c.resolveTarget(lastIdx, inst.Operand.Jump); ok {
					b.BranchThen = c.blockContainingIndex(idx)
				} else {
					b.BranchThen = BlockID(-1)
				}
			}
		case opcode.ENDTRY, opcode.ENDTRY_L:
			b.Term = TEndTry
			if inst.Operand != nil {
				if idx, ok := c.resolveTarget(lastIdx, inst.Operand.Jump); ok {
					b.EndTryTarget = c.blockContainingIndex(idx)
				} else {
					b.EndTryTarget = BlockID(-1)
				}
			}
		case opcode.TRY, opcode.TRY_L:
			b.Term = TTryEntry
			b.TryBody = nextBlock
			wide := inst.Opcode == opcode.TRY_L
			if inst.Operand != nil {
				catchDelta, finallyDelta := disasm.DecodeTryTargets(*inst.Operand, wide)
				if catchDelta != 0 {
					if idx, ok := c.resolveTarget(lastIdx, catchDelta); ok {
						b.TryCatch = c.blockContainingIndex(idx)
						b.TryHasCatch = true
					}
				}
				if finallyDelta != 0 {
					if idx, ok := c.resolveTarget(lastIdx, finallyDelta); ok {
						b.TryFinally = c.blockContainingIndex(idx)
						b.TryHasFinally = true
					}
				}
			}
		default:
			if nextBlock >= 0 {
				b.Term = TFallthrough
				b.JumpTarget = nextBlock
			} else {
				b.Term = TUnknown
			}
		}
	}

	c.linkEdges()
}

func (c *Cfg) linkEdges() {
	addEdge := func(from BlockID, to BlockID) {
		if to < 0 || int(to) >= len(c.Blocks) {
			return
		}
		c.Blocks[from].Succ = append(c.Blocks[from].Succ, to)
		c.Blocks[to].Pred = append(c.Blocks[to].Pred, from)
	}

	for _, b := range c.Blocks {
		switch b.Term {
		case TJump, TFallthrough:
			addEdge(b.ID, b.JumpTarget)
		case TBranch:
			addEdge(b.ID, b.BranchThen)
			addEdge(b.ID, b.BranchElse)
		case TEndTry:
			addEdge(b.ID, b.EndTryTarget)
		case TTryEntry:
			addEdge(b.ID, b.TryBody)
			if b.TryHasCatch {
				addEdge(b.ID, b.TryCatch)
			}
			if b.TryHasFinally {
				addEdge(b.ID, b.TryFinally)
			}
		}
	}
}
