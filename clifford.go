package main

import (
	"fmt"
)

// cliffordGateNames is the closed set of operation names the Clifford
// collection policy gathers: single-qubit Clifford generators, two-qubit
// Clifford generators, and composite operations that are Clifford by
// construction.
var cliffordGateNames = map[string]bool{
	// single-qubit generators
	"id": true, "i": true,
	"x": true, "y": true, "z": true,
	"h": true,
	"s": true, "sdg": true,
	"sx": true, "sxdg": true,
	// two-qubit generators
	"cx": true, "cz": true, "cy": true,
	"swap": true, "iswap": true,
	"ecr": true, "dcx": true,
	// Clifford composites
	"clifford":        true,
	"linear_function": true,
	"pauli":           true,
	"permutation":     true,
}

// IsCliffordGate reports whether a node holds an unconditioned Clifford
// operation.
func IsCliffordGate(n *DAGNode) bool {
	return cliffordGateNames[n.Op.Name] && !n.Op.Conditioned()
}

// CollapseToClifford reduces a block sub-circuit to a single composite
// Clifford operation carrying the sub-circuit as its definition. It fails
// when a non-Clifford or conditioned operation slipped into the block.
func CollapseToClifford(block *Circuit) (Op, error) {
	for _, ins := range block.Instrs {
		if !cliffordGateNames[ins.Op.Name] {
			return Op{}, fmt.Errorf("%q is not a Clifford operation", ins.Op.Name)
		}
		if ins.Op.Conditioned() {
			return Op{}, fmt.Errorf("conditioned %q cannot join a Clifford block", ins.Op.Name)
		}
	}
	return Op{Name: "clifford", Body: block}, nil
}

// DefaultCliffordOptions returns the option set the Clifford pass ships
// with: connectivity splitting on, blocks of at least two gates.
func DefaultCliffordOptions() CollectOptions {
	return CollectOptions{
		SplitBlocks:  true,
		MinBlockSize: 2,
	}
}

// NewCollectCliffords builds the Clifford collection pass: runs of Clifford
// gates are replaced by single composite Clifford operations. A commutation
// oracle is created on demand when commutative analysis is requested.
func NewCollectCliffords(opts CollectOptions) (*CollectAndCollapse, error) {
	var oracle CommutationOracle
	if opts.CommutativeAnalysis {
		oracle = NewStandardCommutation()
	}
	return NewCollectAndCollapse(IsCliffordGate, CollapseToClifford, oracle, opts)
}
