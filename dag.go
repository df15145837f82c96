package main

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// NodeID addresses a node in the DAG arena. IDs are stable for the lifetime
// of the graph: substitution removes and appends nodes but never renumbers
// the survivors.
type NodeID uint32

// DAGNode is one operation application in the graph.
type DAGNode struct {
	Op      Op
	Bits    []*Bit // ordered operands
	preds   []NodeID
	succs   []NodeID
	removed bool
}

// Removed reports whether the node has been taken out of the graph.
func (n *DAGNode) Removed() bool { return n.removed }

// DAG is a directed acyclic graph of operation nodes. Dependency edges are
// keyed on shared operand wires: a node depends on the previous node that
// touched any of its wires. Nodes live in an arena addressed by NodeID,
// with edge lists stored as sorted ID sets.
type DAG struct {
	nodes     []DAGNode
	wires     []*Bit
	wireIndex map[string]int
	last      map[int]NodeID // wire index -> last live node on that wire
	qregs     []*Register
	cregs     []*Register
	live      int
}

// NewDAG creates an empty graph.
func NewDAG() *DAG {
	return &DAG{
		wireIndex: make(map[string]int),
		last:      make(map[int]NodeID),
	}
}

// CircuitToDAG builds the dependency graph of a circuit.
func CircuitToDAG(c *Circuit) *DAG {
	d := NewDAG()
	d.qregs = slices.Clone(c.QuantumRegisters())
	d.cregs = slices.Clone(c.ClassicalRegisters())
	for i := 0; i < c.NumQubits(); i++ {
		d.AddWire(c.Qubit(i))
	}
	for i := 0; i < c.NumClbits(); i++ {
		d.AddWire(c.Clbit(i))
	}
	for _, ins := range c.Instrs {
		d.Append(ins.Op, ins.Bits)
	}
	return d
}

// AddWire introduces a wire and returns its index. Idempotent.
func (d *DAG) AddWire(b *Bit) int {
	if i, ok := d.wireIndex[b.Key()]; ok {
		return i
	}
	i := len(d.wires)
	d.wires = append(d.wires, b)
	d.wireIndex[b.Key()] = i
	return i
}

// Wires returns the graph's wires in introduction order.
func (d *DAG) Wires() []*Bit { return d.wires }

// WireIndex returns the introduction index of a wire.
func (d *DAG) WireIndex(b *Bit) (int, bool) {
	i, ok := d.wireIndex[b.Key()]
	return i, ok
}

// Node returns the arena node for an ID. The returned pointer stays valid
// until the next Append or SubstituteBlock.
func (d *DAG) Node(id NodeID) *DAGNode { return &d.nodes[id] }

// Live returns the number of nodes currently in the graph.
func (d *DAG) Live() int { return d.live }

func (d *DAG) newID() NodeID {
	id, err := safecast.Conv[NodeID](len(d.nodes))
	if err != nil {
		panic(fmt.Errorf("node id overflow: %w", err))
	}
	return id
}

// nodeWires returns the wire indices an instruction occupies, including the
// condition bit, introducing wires as needed.
func (d *DAG) nodeWires(op Op, bits []*Bit) []int {
	ws := make([]int, 0, len(bits)+1)
	for _, b := range bits {
		ws = append(ws, d.AddWire(b))
	}
	if op.Cond != nil {
		ws = append(ws, d.AddWire(op.Cond.Bit))
	}
	return ws
}

// Append adds an operation node at the graph's output, depending on the
// last node of each of its wires.
func (d *DAG) Append(op Op, bits []*Bit) NodeID {
	id := d.newID()
	node := DAGNode{Op: op, Bits: slices.Clone(bits)}
	for _, w := range d.nodeWires(op, bits) {
		if p, ok := d.last[w]; ok && !slices.Contains(node.preds, p) {
			node.preds = append(node.preds, p)
		}
		d.last[w] = id
	}
	slices.Sort(node.preds)
	for _, p := range node.preds {
		d.nodes[p].succs = insertID(d.nodes[p].succs, id)
	}
	d.nodes = append(d.nodes, node)
	d.live++
	return id
}

// Preds returns the direct predecessors of a node.
func (d *DAG) Preds(id NodeID) []NodeID { return slices.Clone(d.nodes[id].preds) }

// Succs returns the direct successors of a node.
func (d *DAG) Succs(id NodeID) []NodeID { return slices.Clone(d.nodes[id].succs) }

// TopoOrder returns the live nodes in a deterministic topological order
// (Kahn's algorithm, smallest ready ID first).
func (d *DAG) TopoOrder() []NodeID {
	indeg := make([]int, len(d.nodes))
	var ready []NodeID
	for i := range d.nodes {
		if d.nodes[i].removed {
			continue
		}
		indeg[i] = len(d.nodes[i].preds)
		if indeg[i] == 0 {
			ready = append(ready, NodeID(i))
		}
	}
	slices.Sort(ready)
	order := make([]NodeID, 0, d.live)
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, s := range d.nodes[id].succs {
			indeg[s]--
			if indeg[s] == 0 {
				ready = insertID(ready, s)
			}
		}
	}
	return order
}

// SubstituteBlock atomically replaces a set of live nodes with one node
// applying op to the given operand list. Every dependency edge between the
// block and the rest of the graph is reattached to the new node, so the new
// node sits after every external predecessor and before every external
// successor of the block; the partial order among nodes outside the block
// is untouched.
//
// An external node that is both an ancestor and a descendant of the block
// can only exist when the collector skipped over it during commutative
// analysis, which guarantees it commutes with every block member. Such
// nodes are ordered before the replacement node.
func (d *DAG) SubstituteBlock(block []NodeID, op Op, bits []*Bit) (NodeID, error) {
	if len(block) == 0 {
		return 0, fmt.Errorf("substitute: empty block")
	}
	inBlock := make(map[NodeID]bool, len(block))
	for _, id := range block {
		if int(id) >= len(d.nodes) || d.nodes[id].removed {
			return 0, fmt.Errorf("substitute: node %d is not live", id)
		}
		if inBlock[id] {
			return 0, fmt.Errorf("substitute: duplicate node %d in block", id)
		}
		inBlock[id] = true
	}

	predSet := make(map[NodeID]bool)
	succSet := make(map[NodeID]bool)
	for id := range inBlock {
		for _, p := range d.nodes[id].preds {
			if !inBlock[p] {
				predSet[p] = true
			}
		}
		for _, s := range d.nodes[id].succs {
			if !inBlock[s] {
				succSet[s] = true
			}
		}
	}

	// External nodes reachable from the block that also reach it would form
	// a cycle through the replacement; move them to the predecessor side.
	desc := d.reach(succSet, inBlock, true)
	anc := d.reach(predSet, inBlock, false)
	for t := range desc {
		if anc[t] {
			predSet[t] = true
			delete(succSet, t)
		}
	}

	id := d.newID()
	node := DAGNode{
		Op:    op,
		Bits:  slices.Clone(bits),
		preds: sortedIDs(predSet),
		succs: sortedIDs(succSet),
	}

	for p := range predSet {
		n := &d.nodes[p]
		n.preds = dropIDs(n.preds, inBlock)
		n.succs = insertID(dropIDs(n.succs, inBlock), id)
	}
	for s := range succSet {
		n := &d.nodes[s]
		n.succs = dropIDs(n.succs, inBlock)
		n.preds = insertID(dropIDs(n.preds, inBlock), id)
	}
	for bid := range inBlock {
		n := &d.nodes[bid]
		n.removed = true
		n.preds, n.succs = nil, nil
	}
	d.live -= len(block)

	for _, b := range bits {
		d.AddWire(b)
	}
	for w, last := range d.last {
		if inBlock[last] {
			d.last[w] = id
		}
	}

	d.nodes = append(d.nodes, node)
	d.live++
	return id, nil
}

// reach walks forward (or backward) from the given frontier through live
// nodes outside the block and returns everything visited.
func (d *DAG) reach(frontier map[NodeID]bool, block map[NodeID]bool, forward bool) map[NodeID]bool {
	seen := make(map[NodeID]bool)
	stack := sortedIDs(frontier)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] || block[id] {
			continue
		}
		seen[id] = true
		next := d.nodes[id].succs
		if !forward {
			next = d.nodes[id].preds
		}
		for _, n := range next {
			if !seen[n] && !block[n] {
				stack = append(stack, n)
			}
		}
	}
	return seen
}

// ToCircuit linearizes the graph back into a circuit in topological order.
func (d *DAG) ToCircuit() *Circuit {
	c := NewCircuitFromBits(d.wires...)
	c.qregs = slices.Clone(d.qregs)
	c.cregs = slices.Clone(d.cregs)
	for _, id := range d.TopoOrder() {
		n := &d.nodes[id]
		c.Instrs = append(c.Instrs, Instruction{Op: n.Op, Bits: slices.Clone(n.Bits)})
	}
	return c
}

// insertID inserts an ID into a sorted set, keeping it sorted and unique.
func insertID(set []NodeID, id NodeID) []NodeID {
	i, found := slices.BinarySearch(set, id)
	if found {
		return set
	}
	return slices.Insert(set, i, id)
}

// dropIDs removes every ID present in the given set.
func dropIDs(ids []NodeID, drop map[NodeID]bool) []NodeID {
	return slices.DeleteFunc(ids, func(id NodeID) bool { return drop[id] })
}

func sortedIDs(set map[NodeID]bool) []NodeID {
	ids := make([]NodeID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
