package main

import (
	"fmt"
	"slices"
	"testing"
)

func TestDAGDependencyEdges(t *testing.T) {
	c := NewCircuit(3, 0)
	c.H(0)       // node 0
	c.H(1)       // node 1
	c.CX(0, 1)   // node 2, depends on 0 and 1
	c.X(2)       // node 3, independent
	d := CircuitToDAG(c)

	if d.Live() != 4 {
		t.Fatalf("expected 4 live nodes, got %d", d.Live())
	}

	preds := d.Preds(2)
	if !slices.Equal(preds, []NodeID{0, 1}) {
		t.Errorf("cx preds = %v, want [0 1]", preds)
	}
	if len(d.Preds(3)) != 0 {
		t.Errorf("x q[2] should have no predecessors, got %v", d.Preds(3))
	}
	if !slices.Equal(d.Succs(0), []NodeID{2}) {
		t.Errorf("h q[0] succs = %v, want [2]", d.Succs(0))
	}
}

func TestTopoOrderRespectsDependencies(t *testing.T) {
	c := NewCircuit(2, 0)
	c.H(0)
	c.CX(0, 1)
	c.Z(1)
	c.X(0)
	d := CircuitToDAG(c)

	order := d.TopoOrder()
	fmt.Printf("topological order: %v\n", order)

	pos := make(map[NodeID]int)
	for i, id := range order {
		pos[id] = i
	}
	if len(order) != 4 {
		t.Fatalf("expected 4 nodes in order, got %d", len(order))
	}
	for _, id := range order {
		for _, p := range d.Preds(id) {
			if pos[p] >= pos[id] {
				t.Errorf("node %d ordered before its predecessor %d", id, p)
			}
		}
	}
}

func TestConditionBitCreatesDependency(t *testing.T) {
	c := NewCircuit(2, 1)
	c.Measure(0, 0) // node 0 writes c[0]
	c.Instrs = append(c.Instrs, Instruction{
		Op:   Op{Name: "x", Cond: &Cond{Bit: c.Clbit(0), Value: 1}},
		Bits: []*Bit{c.Qubit(1)},
	}) // node 1 reads c[0]
	d := CircuitToDAG(c)

	if !slices.Equal(d.Preds(1), []NodeID{0}) {
		t.Errorf("conditioned x should depend on the measure through c[0], got preds %v", d.Preds(1))
	}
}

func TestSubstituteBlock(t *testing.T) {
	c := NewCircuit(2, 0)
	c.H(0)     // node 0
	c.CX(0, 1) // node 1
	c.T(1)     // node 2
	d := CircuitToDAG(c)

	bits := []*Bit{c.Qubit(0), c.Qubit(1)}
	id, err := d.SubstituteBlock([]NodeID{0, 1}, Op{Name: "unified"}, bits)
	if err != nil {
		t.Fatalf("SubstituteBlock error: %v", err)
	}

	if d.Live() != 2 {
		t.Errorf("expected 2 live nodes after substitution, got %d", d.Live())
	}
	if !d.Node(0).Removed() || !d.Node(1).Removed() {
		t.Errorf("block nodes should be marked removed")
	}
	if !slices.Equal(d.Preds(2), []NodeID{id}) {
		t.Errorf("t should now depend on the replacement node, got preds %v", d.Preds(2))
	}

	out := d.ToCircuit()
	if len(out.Instrs) != 2 {
		t.Fatalf("linearized circuit should have 2 instructions, got %d", len(out.Instrs))
	}
	if out.Instrs[0].Op.Name != "unified" || out.Instrs[1].Op.Name != "t" {
		t.Errorf("linearized order = [%s %s], want [unified t]",
			out.Instrs[0].Op.Name, out.Instrs[1].Op.Name)
	}
}

func TestSubstituteBlockRejectsDeadNodes(t *testing.T) {
	c := NewCircuit(1, 0)
	c.H(0)
	c.X(0)
	d := CircuitToDAG(c)

	if _, err := d.SubstituteBlock(nil, Op{Name: "unified"}, nil); err == nil {
		t.Errorf("empty block should be rejected")
	}
	if _, err := d.SubstituteBlock([]NodeID{0, 0}, Op{Name: "unified"}, nil); err == nil {
		t.Errorf("duplicate block members should be rejected")
	}

	if _, err := d.SubstituteBlock([]NodeID{0}, Op{Name: "unified"}, []*Bit{c.Qubit(0)}); err != nil {
		t.Fatalf("first substitution failed: %v", err)
	}
	if _, err := d.SubstituteBlock([]NodeID{0}, Op{Name: "unified"}, nil); err == nil {
		t.Errorf("substituting a removed node should be rejected")
	}
}

// A skipped node that sits between two block members must come out before
// the replacement node, not after it, or the rewrite would invert its
// dependency on the first member.
func TestSubstituteBlockStraddler(t *testing.T) {
	c := NewCircuit(2, 0)
	c.CX(0, 1) // node 0, block
	c.Z(0)     // node 1, outside; commutes with cx on the control
	c.CX(0, 1) // node 2, block
	d := CircuitToDAG(c)

	bits := []*Bit{c.Qubit(0), c.Qubit(1)}
	id, err := d.SubstituteBlock([]NodeID{0, 2}, Op{Name: "unified"}, bits)
	if err != nil {
		t.Fatalf("SubstituteBlock error: %v", err)
	}

	if !slices.Contains(d.Preds(id), NodeID(1)) {
		t.Errorf("straddling z should become a predecessor of the replacement, preds = %v", d.Preds(id))
	}

	out := d.ToCircuit()
	names := make([]string, len(out.Instrs))
	for i, ins := range out.Instrs {
		names[i] = ins.Op.Name
	}
	fmt.Printf("order after straddler substitution: %v\n", names)
	if !slices.Equal(names, []string{"z", "unified"}) {
		t.Errorf("linearized order = %v, want [z unified]", names)
	}
}
