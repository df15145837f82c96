package main

import (
	"fmt"
	"slices"
)

// ReduceFunc turns the minimal sub-circuit of one block into a single
// replacement operation. A reduction may fail, in which case the block is
// left untouched in the graph.
type ReduceFunc func(block *Circuit) (Op, error)

// ReductionError reports a block whose reduction function failed. The
// block's nodes remain in the graph unmodified.
type ReductionError struct {
	Block Block
	Err   error
}

func (e *ReductionError) Error() string {
	return fmt.Sprintf("block of %d nodes left uncollapsed: %v", len(e.Block.Nodes), e.Err)
}

func (e *ReductionError) Unwrap() error { return e.Err }

// blockOperands returns the union of the block's operand bits, condition
// bits included, ordered by the graph's wire introduction order.
func blockOperands(d *DAG, block Block) []*Bit {
	seen := make(map[string]bool)
	var bits []*Bit
	add := func(b *Bit) {
		if !seen[b.Key()] {
			seen[b.Key()] = true
			bits = append(bits, b)
		}
	}
	for _, id := range block.Nodes {
		n := d.Node(id)
		for _, b := range n.Bits {
			add(b)
		}
		if n.Op.Cond != nil {
			add(n.Op.Cond.Bit)
		}
	}
	slices.SortFunc(bits, func(a, b *Bit) int {
		ia, _ := d.WireIndex(a)
		ib, _ := d.WireIndex(b)
		return ia - ib
	})
	return bits
}

// CollapseBlock replaces one block with a single node. It builds the
// minimal sub-circuit containing only the block's operands and nodes in
// their relative order, asks reduce for a replacement operation, and
// substitutes atomically. On reduction failure the graph is unchanged and a
// *ReductionError is returned.
func CollapseBlock(d *DAG, block Block, reduce ReduceFunc) (NodeID, error) {
	bits := blockOperands(d, block)
	sub := NewCircuitFromBits(bits...)
	for _, id := range block.Nodes {
		n := d.Node(id)
		if err := sub.Append(n.Op, n.Bits...); err != nil {
			return 0, fmt.Errorf("building block sub-circuit: %w", err)
		}
	}
	op, err := reduce(sub)
	if err != nil {
		return 0, &ReductionError{Block: block, Err: err}
	}
	return d.SubstituteBlock(block.Nodes, op, bits)
}
