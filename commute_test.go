package main

import (
	"testing"
)

// commuteFixture builds a DAG over 3 qubits and 1 clbit and returns the
// node for each appended instruction.
func commuteFixture(build func(c *Circuit)) []*DAGNode {
	c := NewCircuit(3, 1)
	build(c)
	d := CircuitToDAG(c)
	nodes := make([]*DAGNode, len(c.Instrs))
	for i := range c.Instrs {
		nodes[i] = d.Node(NodeID(i))
	}
	return nodes
}

func TestCommutesDisjointOperands(t *testing.T) {
	nodes := commuteFixture(func(c *Circuit) {
		c.X(0)
		c.Z(1)
	})
	sc := NewStandardCommutation()
	if !sc.Commutes(nodes[0], nodes[1]) {
		t.Errorf("operand-disjoint gates must commute")
	}
}

func TestCommutesSameAxis(t *testing.T) {
	cases := []struct {
		name  string
		build func(c *Circuit)
		want  bool
	}{
		{"z and s on the same qubit", func(c *Circuit) { c.Z(0); c.S(0) }, true},
		{"x and z on the same qubit", func(c *Circuit) { c.X(0); c.Z(0) }, false},
		{"cx control and z", func(c *Circuit) { c.CX(0, 1); c.Z(0) }, true},
		{"cx target and x", func(c *Circuit) { c.CX(0, 1); c.X(1) }, true},
		{"cx target and z", func(c *Circuit) { c.CX(0, 1); c.Z(1) }, false},
		{"cx and cz sharing the control", func(c *Circuit) { c.CX(0, 1); c.CZ(0, 2) }, true},
		{"two cx sharing a control", func(c *Circuit) { c.CX(0, 1); c.CX(0, 2) }, true},
		{"cx control onto cx target", func(c *Circuit) { c.CX(0, 1); c.CX(1, 2) }, false},
		{"rz and t", func(c *Circuit) { c.RZ(0.3, 0); c.T(0) }, true},
		{"h and z", func(c *Circuit) { c.H(0); c.Z(0) }, false},
	}
	for _, tt := range cases {
		nodes := commuteFixture(tt.build)
		sc := NewStandardCommutation()
		if got := sc.Commutes(nodes[0], nodes[1]); got != tt.want {
			t.Errorf("%s: Commutes = %v, want %v", tt.name, got, tt.want)
		}
		// Symmetric.
		if got := sc.Commutes(nodes[1], nodes[0]); got != tt.want {
			t.Errorf("%s (reversed): Commutes = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIdenticalOperationCommutes(t *testing.T) {
	nodes := commuteFixture(func(c *Circuit) {
		c.Swap(0, 1)
		c.Swap(0, 1)
	})
	sc := NewStandardCommutation()
	if !sc.Commutes(nodes[0], nodes[1]) {
		t.Errorf("an operation must commute with an identical application of itself")
	}
}

func TestOverlappingSwapsDoNotCommute(t *testing.T) {
	// swap(0,1) and swap(0,2) share only q0; they are the same gate but not
	// the same application, and no axis rule covers swap.
	nodes := commuteFixture(func(c *Circuit) {
		c.Swap(0, 1)
		c.Swap(0, 2)
	})
	sc := NewStandardCommutation()
	if sc.Commutes(nodes[0], nodes[1]) {
		t.Errorf("partially overlapping swaps must not commute")
	}
}

func TestDirectivesDoNotCommute(t *testing.T) {
	nodes := commuteFixture(func(c *Circuit) {
		c.Measure(0, 0)
		c.Z(0)
		c.Reset(1)
		c.Z(1)
	})
	sc := NewStandardCommutation()
	if sc.Commutes(nodes[0], nodes[1]) {
		t.Errorf("measure must not commute with a gate on its qubit")
	}
	if sc.Commutes(nodes[2], nodes[3]) {
		t.Errorf("reset must not commute with a gate on its qubit")
	}
}

func TestConditionedOperationsPinned(t *testing.T) {
	nodes := commuteFixture(func(c *Circuit) {
		c.Instrs = append(c.Instrs, Instruction{
			Op:   Op{Name: "z", Cond: &Cond{Bit: c.Clbit(0), Value: 1}},
			Bits: []*Bit{c.Qubit(0)},
		})
		c.Z(1)
	})
	sc := NewStandardCommutation()
	if sc.Commutes(nodes[0], nodes[1]) {
		t.Errorf("a conditioned operation must not commute with anything")
	}
}

func TestIdentityCommutesWithEverything(t *testing.T) {
	nodes := commuteFixture(func(c *Circuit) {
		c.ID(0)
		c.H(0)
	})
	sc := NewStandardCommutation()
	if !sc.Commutes(nodes[0], nodes[1]) {
		t.Errorf("identity must commute with any gate on its qubit")
	}
}

func TestUnknownGatePairConservative(t *testing.T) {
	nodes := commuteFixture(func(c *Circuit) {
		c.ISwap(0, 1)
		c.H(0)
	})
	sc := NewStandardCommutation()
	if sc.Commutes(nodes[0], nodes[1]) {
		t.Errorf("pairs with no rule must conservatively not commute")
	}
}
