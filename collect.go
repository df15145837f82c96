package main

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidConfig reports an unusable collector or pass configuration.
var ErrInvalidConfig = errors.New("invalid configuration")

// MatchFunc selects the nodes a collector gathers into blocks.
type MatchFunc func(*DAGNode) bool

// CollectOptions controls how matching nodes are grouped.
type CollectOptions struct {
	// CommutativeAnalysis lets a run extend across a non-matching node
	// when that node commutes with everything gathered so far; the skipped
	// node keeps its place in the graph.
	CommutativeAnalysis bool
	// SplitBlocks partitions each run into operand-connected components,
	// which can be collapsed independently.
	SplitBlocks bool
	// MinBlockSize discards blocks with fewer nodes; must be at least 1.
	MinBlockSize int
	// SplitLayers further partitions each block into maximal sets of
	// mutually operand-disjoint nodes.
	SplitLayers bool
	// CollectFromBack walks the graph from output to input, which changes
	// which end of a run wins when several groupings are possible.
	CollectFromBack bool
}

// DefaultCollectOptions mirrors the defaults of the Clifford collection
// policy.
func DefaultCollectOptions() CollectOptions {
	return CollectOptions{SplitBlocks: true, MinBlockSize: 2}
}

func (o CollectOptions) validate(oracle CommutationOracle) error {
	if o.MinBlockSize < 1 {
		return fmt.Errorf("%w: min block size must be at least 1, got %d", ErrInvalidConfig, o.MinBlockSize)
	}
	if o.CommutativeAnalysis && oracle == nil {
		return fmt.Errorf("%w: commutative analysis requires a commutation oracle", ErrInvalidConfig)
	}
	return nil
}

// Block is an ordered group of nodes selected for joint replacement. Nodes
// are kept in program (forward topological) order regardless of traversal
// direction.
type Block struct {
	Nodes []NodeID
}

// CollectBlocks partitions the matching nodes of a graph into maximal
// blocks. The traversal keeps one open candidate block; a matching node
// extends it, a non-matching node closes it unless commutative analysis can
// skip over the node. Closed runs are then split and filtered per the
// options. Blocks are returned in the order they were finalized.
func CollectBlocks(d *DAG, matches MatchFunc, oracle CommutationOracle, opts CollectOptions) ([]Block, error) {
	if matches == nil {
		return nil, fmt.Errorf("%w: nil match function", ErrInvalidConfig)
	}
	if err := opts.validate(oracle); err != nil {
		return nil, err
	}

	order := d.TopoOrder()
	if opts.CollectFromBack {
		slices.Reverse(order)
	}

	commutesWithAll := func(id NodeID, others []NodeID) bool {
		for _, other := range others {
			if !oracle.Commutes(d.Node(id), d.Node(other)) {
				return false
			}
		}
		return true
	}

	var blocks []Block
	var run, skipped []NodeID
	closeRun := func() {
		if len(run) > 0 {
			blocks = append(blocks, finalizeRun(d, run, opts)...)
		}
		run, skipped = nil, nil
	}

	for _, id := range order {
		if matches(d.Node(id)) {
			// A matching node can only join past the skipped nodes if it
			// commutes with all of them.
			if opts.CommutativeAnalysis && len(skipped) > 0 && !commutesWithAll(id, skipped) {
				closeRun()
			}
			run = append(run, id)
			continue
		}
		if opts.CommutativeAnalysis && len(run) > 0 && commutesWithAll(id, run) {
			skipped = append(skipped, id)
			continue
		}
		closeRun()
	}
	closeRun()
	return blocks, nil
}

// finalizeRun turns one closed run into zero or more blocks: restore
// program order, split into operand-connected components, drop undersized
// groups, and optionally slice into layers.
func finalizeRun(d *DAG, run []NodeID, opts CollectOptions) []Block {
	run = slices.Clone(run)
	if opts.CollectFromBack {
		slices.Reverse(run)
	}
	groups := [][]NodeID{run}
	if opts.SplitBlocks {
		groups = splitByConnectivity(d, run)
	}
	var out []Block
	for _, g := range groups {
		if len(g) < opts.MinBlockSize {
			continue
		}
		if opts.SplitLayers {
			for _, layer := range splitIntoLayers(d, g) {
				out = append(out, Block{Nodes: layer})
			}
			continue
		}
		out = append(out, Block{Nodes: g})
	}
	return out
}

// nodeWireKeys returns the wire keys a node occupies, condition bit
// included.
func nodeWireKeys(d *DAG, id NodeID) []string {
	n := d.Node(id)
	keys := make([]string, 0, len(n.Bits)+1)
	for _, b := range n.Bits {
		keys = append(keys, b.Key())
	}
	if n.Op.Cond != nil {
		keys = append(keys, n.Op.Cond.Bit.Key())
	}
	return keys
}

// splitByConnectivity partitions a run into connected components of the
// operand-overlap graph: two nodes land in the same component when they
// share a wire, directly or transitively. Components come out ordered by
// first appearance, with nodes in run order.
func splitByConnectivity(d *DAG, run []NodeID) [][]NodeID {
	parent := make([]int, len(run))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	union := func(i, j int) {
		ri, rj := find(i), find(j)
		if ri != rj {
			if rj < ri {
				ri, rj = rj, ri
			}
			parent[rj] = ri
		}
	}

	wireOwner := make(map[string]int)
	for i, id := range run {
		for _, k := range nodeWireKeys(d, id) {
			if j, ok := wireOwner[k]; ok {
				union(i, j)
			} else {
				wireOwner[k] = i
			}
		}
	}

	groupIdx := make(map[int]int)
	var groups [][]NodeID
	for i, id := range run {
		root := find(i)
		gi, ok := groupIdx[root]
		if !ok {
			gi = len(groups)
			groupIdx[root] = gi
			groups = append(groups, nil)
		}
		groups[gi] = append(groups[gi], id)
	}
	return groups
}

// splitIntoLayers slices a block into layers of mutually operand-disjoint
// nodes: each node goes into the earliest layer after every earlier block
// node it shares a wire with.
func splitIntoLayers(d *DAG, block []NodeID) [][]NodeID {
	var layers [][]NodeID
	busy := make(map[string]int) // wire key -> first free layer
	for _, id := range block {
		l := 0
		keys := nodeWireKeys(d, id)
		for _, k := range keys {
			if free, ok := busy[k]; ok && free > l {
				l = free
			}
		}
		for _, k := range keys {
			busy[k] = l + 1
		}
		if l == len(layers) {
			layers = append(layers, nil)
		}
		layers[l] = append(layers[l], id)
	}
	return layers
}
