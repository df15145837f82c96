package main

import (
	"fmt"
)

// CommutationOracle reports whether two operation nodes can be reordered
// without changing circuit semantics.
type CommutationOracle interface {
	Commutes(a, b *DAGNode) bool
}

// pauliAxis classifies the action of a gate on one of its qubit operands.
// Two gates commute on a shared qubit when they act along the same axis
// there (or one of them is the identity).
type pauliAxis int

const (
	axisNone pauliAxis = iota // no axis, or unknown gate
	axisID
	axisX
	axisY
	axisZ
)

// gateAxis returns the axis along which op acts on its pos-th qubit
// operand, or axisNone when no structural rule applies.
func gateAxis(op Op, pos int) pauliAxis {
	switch op.Name {
	case "id", "i":
		return axisID
	case "x", "sx", "sxdg", "rx":
		return axisX
	case "y", "ry":
		return axisY
	case "z", "s", "sdg", "t", "tdg", "rz", "p", "u1", "cz":
		return axisZ
	case "cx":
		if pos == 0 {
			return axisZ
		}
		return axisX
	case "cy":
		if pos == 0 {
			return axisZ
		}
		return axisY
	case "ccx":
		if pos < 2 {
			return axisZ
		}
		return axisX
	}
	return axisNone
}

// StandardCommutation is a rule-driven commutation oracle with a pairwise
// result cache. Operand-disjoint nodes always commute; beyond that the
// oracle checks that the two operations act along the same Pauli axis on
// every shared qubit. Pairs that no rule covers conservatively do not
// commute.
type StandardCommutation struct {
	cache map[string]bool
}

// NewStandardCommutation creates an oracle with an empty cache.
func NewStandardCommutation() *StandardCommutation {
	return &StandardCommutation{cache: make(map[string]bool)}
}

// Commutes implements CommutationOracle.
func (sc *StandardCommutation) Commutes(a, b *DAGNode) bool {
	// A classically conditioned operation is pinned in place.
	if a.Op.Conditioned() || b.Op.Conditioned() {
		return false
	}

	// Positions of shared qubit operands, and whether any classical wire
	// is shared.
	var shared []overlapPos
	for i, ba := range a.Bits {
		for j, bb := range b.Bits {
			if !ba.Equal(bb) {
				continue
			}
			if ba.Kind() == KindClbit {
				return false
			}
			shared = append(shared, overlapPos{i, j})
		}
	}
	if len(shared) == 0 {
		return true
	}

	// The same operation applied to the same operand list commutes with
	// itself, whatever the gate.
	if sameOperation(a, b) {
		return true
	}

	key := fmt.Sprintf("%s%v|%s%v|%v", a.Op.Name, a.Op.Params, b.Op.Name, b.Op.Params, shared)
	if res, ok := sc.cache[key]; ok {
		return res
	}
	res := commutesOnShared(a.Op, b.Op, shared)
	sc.cache[key] = res
	return res
}

type overlapPos struct{ posA, posB int }

func sameOperation(a, b *DAGNode) bool {
	if a.Op.Name != b.Op.Name || !paramsEqual(a.Op.Params, b.Op.Params) || len(a.Bits) != len(b.Bits) {
		return false
	}
	for i := range a.Bits {
		if !a.Bits[i].Equal(b.Bits[i]) {
			return false
		}
	}
	return true
}

func commutesOnShared(a, b Op, shared []overlapPos) bool {
	if isDirective(a.Name) || isDirective(b.Name) {
		return false
	}
	for _, ov := range shared {
		axA := gateAxis(a, ov.posA)
		axB := gateAxis(b, ov.posB)
		if axA == axisID || axB == axisID {
			continue
		}
		if axA == axisNone || axB == axisNone || axA != axB {
			return false
		}
	}
	return true
}

// isDirective reports operations that never take part in reordering.
func isDirective(name string) bool {
	switch name {
	case "barrier", "measure", "reset":
		return true
	}
	return false
}

func paramsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
