package main

import (
	"fmt"
	"math"
	"math/cmplx"
	"testing"
)

func TestBellStateProbabilities(t *testing.T) {
	c := NewCircuit(2, 0)
	c.H(0)
	c.CX(0, 1)

	state := SimulateCircuit(c)
	probs := state.GetQubitProbabilities()

	fmt.Printf("bell state probabilities: %+v\n", probs)
	for q, p := range probs {
		if math.Abs(p.Prob0-0.5) > 1e-10 || math.Abs(p.Prob1-0.5) > 1e-10 {
			t.Errorf("qubit %d: probabilities %+v, want 0.5/0.5", q, p)
		}
	}

	// Only |00> and |11> carry amplitude.
	if cmplx.Abs(state.Amplitudes[1]) > 1e-10 || cmplx.Abs(state.Amplitudes[2]) > 1e-10 {
		t.Errorf("bell state has amplitude on |01> or |10>: %v", state.Amplitudes)
	}
}

func TestGateInverses(t *testing.T) {
	// Each pair applied in sequence must restore |0...0>.
	pairs := [][]func(c *Circuit){
		{func(c *Circuit) { c.H(0) }, func(c *Circuit) { c.H(0) }},
		{func(c *Circuit) { c.X(0) }, func(c *Circuit) { c.X(0) }},
		{func(c *Circuit) { c.S(0) }, func(c *Circuit) { c.Sdg(0) }},
		{func(c *Circuit) { c.T(0) }, func(c *Circuit) { c.Tdg(0) }},
		{func(c *Circuit) { c.SX(0) }, func(c *Circuit) { c.SXdg(0) }},
		{func(c *Circuit) { c.RX(0.7, 0) }, func(c *Circuit) { c.RX(-0.7, 0) }},
		{func(c *Circuit) { c.RY(1.1, 0) }, func(c *Circuit) { c.RY(-1.1, 0) }},
		{func(c *Circuit) { c.Swap(0, 1) }, func(c *Circuit) { c.Swap(0, 1) }},
		{func(c *Circuit) { c.ISwap(0, 1) }, func(c *Circuit) {
			c.ISwap(0, 1)
			c.gate("iswap", nil, 0, 1)
			c.gate("iswap", nil, 0, 1)
		}},
	}

	for i, pair := range pairs {
		c := NewCircuit(2, 0)
		c.H(1) // entangle-free spectator to exercise strides
		pair[0](c)
		pair[1](c)
		c.H(1)

		state := SimulateCircuit(c)
		if cmplx.Abs(state.Amplitudes[0]-1) > 1e-9 {
			t.Errorf("pair %d: |00> amplitude = %v, want 1", i, state.Amplitudes[0])
		}
	}
}

func TestCYMatchesControlledY(t *testing.T) {
	// cy with the control set equals y on the target.
	withCY := NewCircuit(2, 0)
	withCY.X(0)
	withCY.CY(0, 1)

	direct := NewCircuit(2, 0)
	direct.X(0)
	direct.Y(1)

	sa := SimulateCircuit(withCY)
	sb := SimulateCircuit(direct)
	for i := range sa.Amplitudes {
		if cmplx.Abs(sa.Amplitudes[i]-sb.Amplitudes[i]) > 1e-10 {
			t.Fatalf("amplitude %d: cy gives %v, controlled path gives %v", i, sa.Amplitudes[i], sb.Amplitudes[i])
		}
	}

	// With the control clear, cy is a no-op.
	idle := NewCircuit(2, 0)
	idle.CY(0, 1)
	s := SimulateCircuit(idle)
	if cmplx.Abs(s.Amplitudes[0]-1) > 1e-10 {
		t.Errorf("cy with clear control should do nothing, got %v", s.Amplitudes)
	}
}

func TestDCXEquality(t *testing.T) {
	// dcx is two back-to-back cx gates in opposite directions.
	a := NewCircuit(2, 0)
	a.H(0)
	a.T(1)
	a.gate("dcx", nil, 0, 1)

	b := NewCircuit(2, 0)
	b.H(0)
	b.T(1)
	b.CX(0, 1)
	b.CX(1, 0)

	sa := SimulateCircuit(a)
	sb := SimulateCircuit(b)
	for i := range sa.Amplitudes {
		if cmplx.Abs(sa.Amplitudes[i]-sb.Amplitudes[i]) > 1e-10 {
			t.Fatalf("amplitude %d differs: %v vs %v", i, sa.Amplitudes[i], sb.Amplitudes[i])
		}
	}
}

func TestResetCollapsesQubit(t *testing.T) {
	c := NewCircuit(1, 0)
	c.H(0)
	c.Reset(0)

	state := SimulateCircuit(c)
	probs := state.GetQubitProbabilities()
	if math.Abs(probs[0].Prob0-1) > 1e-10 {
		t.Errorf("reset qubit should be |0> with certainty, got %+v", probs[0])
	}
}

func TestApplyIgnoresMissingWires(t *testing.T) {
	s := NewStateVector(2)
	s.Apply("cx", []int{0}, nil)
	s.Apply("ccx", []int{0, 1}, nil)
	s.Apply("h", nil, nil)
	if cmplx.Abs(s.Amplitudes[0]-1) > 1e-10 {
		t.Errorf("short-wired gates should leave the state untouched, got %v", s.Amplitudes)
	}
}

func TestCompositeSimulatesThroughBody(t *testing.T) {
	// A composite op on reversed operands must apply its body through the
	// operand mapping, not the body's own wire numbers.
	body := NewCircuit(2, 0)
	body.X(0) // body wire 0

	c := NewCircuit(2, 0)
	// Apply the composite with its wire 0 mapped onto q[1].
	c.Instrs = append(c.Instrs, Instruction{
		Op:   Op{Name: "clifford", Body: body},
		Bits: []*Bit{c.Qubit(1), c.Qubit(0)},
	})

	state := SimulateCircuit(c)
	// q[1] flipped, q[0] untouched: state |10> in wire order = index 2.
	if cmplx.Abs(state.Amplitudes[2]-1) > 1e-10 {
		t.Errorf("composite remapping wrong, amplitudes = %v", state.Amplitudes)
	}
}
