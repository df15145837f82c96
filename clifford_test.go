package main

import (
	"testing"
)

func TestIsCliffordGate(t *testing.T) {
	clifford := []string{"h", "s", "sdg", "x", "y", "z", "sx", "sxdg", "cx", "cz", "swap", "iswap", "ecr", "dcx", "clifford", "pauli"}
	for _, name := range clifford {
		n := &DAGNode{Op: Op{Name: name}}
		if !IsCliffordGate(n) {
			t.Errorf("%q should be collected", name)
		}
	}

	notClifford := []string{"t", "tdg", "rx", "ry", "rz", "ccx", "measure", "barrier", "reset", "u3"}
	for _, name := range notClifford {
		n := &DAGNode{Op: Op{Name: name}}
		if IsCliffordGate(n) {
			t.Errorf("%q should not be collected", name)
		}
	}
}

func TestConditionedCliffordNotCollected(t *testing.T) {
	cond := &Cond{Bit: NewLooseBit(KindClbit), Value: 1}
	n := &DAGNode{Op: Op{Name: "x", Cond: cond}}
	if IsCliffordGate(n) {
		t.Errorf("a conditioned gate must never be collected")
	}
}

func TestCollapseToClifford(t *testing.T) {
	block := NewCircuit(2, 0)
	block.H(0)
	block.CX(0, 1)

	op, err := CollapseToClifford(block)
	if err != nil {
		t.Fatalf("CollapseToClifford error: %v", err)
	}
	if op.Name != "clifford" || op.Body != block {
		t.Errorf("expected a clifford composite carrying the block, got %s", op)
	}

	bad := NewCircuit(1, 0)
	bad.H(0)
	bad.T(0)
	if _, err := CollapseToClifford(bad); err == nil {
		t.Errorf("a block containing t must fail reduction")
	}
}

func TestDefaultCliffordOptions(t *testing.T) {
	opts := DefaultCliffordOptions()
	if !opts.SplitBlocks || opts.MinBlockSize != 2 {
		t.Errorf("unexpected defaults: %+v", opts)
	}
	if opts.CommutativeAnalysis || opts.SplitLayers || opts.CollectFromBack {
		t.Errorf("analysis toggles should default off: %+v", opts)
	}
}
