package main

import (
	"fmt"
	"slices"
)

// Op is a single operation: a named gate, a measurement, a barrier, or a
// composite produced by collapsing a block. Names are lowercase mnemonics
// ("h", "cx", "measure", "clifford", ...).
type Op struct {
	Name   string
	Params []float64
	Cond   *Cond    // classical condition, nil when unconditioned
	Body   *Circuit // definition of a composite op, nil for primitives
}

// Cond is a classical condition: the operation executes only when the given
// classical bit holds Value.
type Cond struct {
	Bit   *Bit
	Value int
}

// Conditioned reports whether the operation carries a classical condition.
func (o Op) Conditioned() bool { return o.Cond != nil }

func (o Op) String() string {
	if len(o.Params) == 0 {
		return o.Name
	}
	return fmt.Sprintf("%s%v", o.Name, o.Params)
}

// Instruction is an operation applied to an ordered list of operand bits,
// qubits first, then classical bits.
type Instruction struct {
	Op   Op
	Bits []*Bit
}

// Qubits returns the quantum operands of the instruction.
func (ins Instruction) Qubits() []*Bit {
	var qs []*Bit
	for _, b := range ins.Bits {
		if b.Kind() == KindQubit {
			qs = append(qs, b)
		}
	}
	return qs
}

// wireKeys returns the map keys of every wire the instruction touches,
// including the condition bit.
func (ins Instruction) wireKeys() []string {
	keys := make([]string, 0, len(ins.Bits)+1)
	for _, b := range ins.Bits {
		keys = append(keys, b.Key())
	}
	if ins.Op.Cond != nil {
		keys = append(keys, ins.Op.Cond.Bit.Key())
	}
	return keys
}

// Circuit is an ordered list of instructions over a fixed set of wires.
// Wires are introduced by registers or as free-standing bits; their
// introduction order defines the qubit numbering used by the simulator and
// the renderer.
type Circuit struct {
	qubits []*Bit
	clbits []*Bit
	qindex map[string]int
	cindex map[string]int
	qregs  []*Register
	cregs  []*Register
	Instrs []Instruction
}

// NewCircuit creates a circuit with a quantum register "q" of numQubits
// bits and, when numClbits > 0, a classical register "c".
func NewCircuit(numQubits, numClbits int) *Circuit {
	c := &Circuit{
		qindex: make(map[string]int),
		cindex: make(map[string]int),
	}
	if numQubits > 0 {
		c.AddRegister(NewQuantumRegister(numQubits, "q"))
	}
	if numClbits > 0 {
		c.AddRegister(NewClassicalRegister(numClbits, "c"))
	}
	return c
}

// NewCircuitFromBits creates a circuit over the given bits, preserving
// their order within each kind. Used for block sub-circuits, whose wires
// are a subset of a larger graph's.
func NewCircuitFromBits(bits ...*Bit) *Circuit {
	c := &Circuit{
		qindex: make(map[string]int),
		cindex: make(map[string]int),
	}
	for _, b := range bits {
		c.AddBit(b)
	}
	return c
}

// AddRegister introduces every bit of the register as a wire.
func (c *Circuit) AddRegister(reg *Register) {
	if reg.Kind() == KindQubit {
		c.qregs = append(c.qregs, reg)
	} else {
		c.cregs = append(c.cregs, reg)
	}
	for _, b := range reg.Bits() {
		c.AddBit(b)
	}
}

// AddBit introduces a single wire and returns its index within its kind.
// Adding a bit that is already a wire is a no-op.
func (c *Circuit) AddBit(b *Bit) int {
	if b.Kind() == KindQubit {
		if i, ok := c.qindex[b.Key()]; ok {
			return i
		}
		i := len(c.qubits)
		c.qubits = append(c.qubits, b)
		c.qindex[b.Key()] = i
		return i
	}
	if i, ok := c.cindex[b.Key()]; ok {
		return i
	}
	i := len(c.clbits)
	c.clbits = append(c.clbits, b)
	c.cindex[b.Key()] = i
	return i
}

func (c *Circuit) NumQubits() int { return len(c.qubits) }
func (c *Circuit) NumClbits() int { return len(c.clbits) }

// Qubit returns the i-th quantum wire.
func (c *Circuit) Qubit(i int) *Bit { return c.qubits[i] }

// Clbit returns the i-th classical wire.
func (c *Circuit) Clbit(i int) *Bit { return c.clbits[i] }

// QubitIndex returns the wire index of a qubit, or false if it is not a
// wire of this circuit.
func (c *Circuit) QubitIndex(b *Bit) (int, bool) {
	i, ok := c.qindex[b.Key()]
	return i, ok
}

// ClbitIndex returns the wire index of a classical bit.
func (c *Circuit) ClbitIndex(b *Bit) (int, bool) {
	i, ok := c.cindex[b.Key()]
	return i, ok
}

// QuantumRegisters returns the circuit's quantum registers.
func (c *Circuit) QuantumRegisters() []*Register { return c.qregs }

// ClassicalRegisters returns the circuit's classical registers.
func (c *Circuit) ClassicalRegisters() []*Register { return c.cregs }

// Append adds an instruction. Every operand (and the condition bit, if any)
// must already be a wire of the circuit.
func (c *Circuit) Append(op Op, bits ...*Bit) error {
	for _, b := range bits {
		if b.Kind() == KindQubit {
			if _, ok := c.qindex[b.Key()]; !ok {
				return fmt.Errorf("operand %s is not a wire of this circuit", b)
			}
		} else if _, ok := c.cindex[b.Key()]; !ok {
			return fmt.Errorf("operand %s is not a wire of this circuit", b)
		}
	}
	if op.Cond != nil {
		if _, ok := c.cindex[op.Cond.Bit.Key()]; !ok {
			return fmt.Errorf("condition bit %s is not a wire of this circuit", op.Cond.Bit)
		}
	}
	c.Instrs = append(c.Instrs, Instruction{Op: op, Bits: bits})
	return nil
}

// gate appends a primitive gate addressed by qubit wire indices. It is the
// building block behind the named convenience methods and the QASM parser;
// indices are assumed valid.
func (c *Circuit) gate(name string, params []float64, qubits ...int) {
	bits := make([]*Bit, len(qubits))
	for i, q := range qubits {
		bits[i] = c.qubits[q]
	}
	c.Instrs = append(c.Instrs, Instruction{Op: Op{Name: name, Params: params}, Bits: bits})
}

func (c *Circuit) H(q int)    { c.gate("h", nil, q) }
func (c *Circuit) X(q int)    { c.gate("x", nil, q) }
func (c *Circuit) Y(q int)    { c.gate("y", nil, q) }
func (c *Circuit) Z(q int)    { c.gate("z", nil, q) }
func (c *Circuit) S(q int)    { c.gate("s", nil, q) }
func (c *Circuit) Sdg(q int)  { c.gate("sdg", nil, q) }
func (c *Circuit) T(q int)    { c.gate("t", nil, q) }
func (c *Circuit) Tdg(q int)  { c.gate("tdg", nil, q) }
func (c *Circuit) SX(q int)   { c.gate("sx", nil, q) }
func (c *Circuit) SXdg(q int) { c.gate("sxdg", nil, q) }
func (c *Circuit) ID(q int)   { c.gate("id", nil, q) }

func (c *Circuit) RX(theta float64, q int) { c.gate("rx", []float64{theta}, q) }
func (c *Circuit) RY(theta float64, q int) { c.gate("ry", []float64{theta}, q) }
func (c *Circuit) RZ(theta float64, q int) { c.gate("rz", []float64{theta}, q) }
func (c *Circuit) P(theta float64, q int)  { c.gate("p", []float64{theta}, q) }

func (c *Circuit) CX(ctl, tgt int)   { c.gate("cx", nil, ctl, tgt) }
func (c *Circuit) CY(ctl, tgt int)   { c.gate("cy", nil, ctl, tgt) }
func (c *Circuit) CZ(ctl, tgt int)   { c.gate("cz", nil, ctl, tgt) }
func (c *Circuit) Swap(a, b int)     { c.gate("swap", nil, a, b) }
func (c *Circuit) ISwap(a, b int)    { c.gate("iswap", nil, a, b) }
func (c *Circuit) CCX(a, b, tgt int) { c.gate("ccx", nil, a, b, tgt) }

// Measure records a measurement of qubit q into classical bit cb.
func (c *Circuit) Measure(q, cb int) {
	c.Instrs = append(c.Instrs, Instruction{
		Op:   Op{Name: "measure"},
		Bits: []*Bit{c.qubits[q], c.clbits[cb]},
	})
}

// Reset resets qubit q to the zero state.
func (c *Circuit) Reset(q int) { c.gate("reset", nil, q) }

// Barrier appends a barrier over all qubits.
func (c *Circuit) Barrier() {
	bits := make([]*Bit, len(c.qubits))
	copy(bits, c.qubits)
	c.Instrs = append(c.Instrs, Instruction{Op: Op{Name: "barrier"}, Bits: bits})
}

// Clone returns a copy of the circuit sharing bits (bits are immutable) but
// with an independent instruction list.
func (c *Circuit) Clone() *Circuit {
	clone := &Circuit{
		qubits: slices.Clone(c.qubits),
		clbits: slices.Clone(c.clbits),
		qindex: make(map[string]int, len(c.qindex)),
		cindex: make(map[string]int, len(c.cindex)),
		qregs:  slices.Clone(c.qregs),
		cregs:  slices.Clone(c.cregs),
		Instrs: slices.Clone(c.Instrs),
	}
	for k, v := range c.qindex {
		clone.qindex[k] = v
	}
	for k, v := range c.cindex {
		clone.cindex[k] = v
	}
	return clone
}

// CountOps returns the number of instructions per operation name, barriers
// excluded.
func (c *Circuit) CountOps() map[string]int {
	counts := make(map[string]int)
	for _, ins := range c.Instrs {
		if ins.Op.Name == "barrier" {
			continue
		}
		counts[ins.Op.Name]++
	}
	return counts
}

// instructionLayers assigns each instruction to the earliest layer in which
// none of its wires is already busy; barriers occupy a layer of their own
// and fence everything after them. Returns a layer per instruction and the
// layer count. The renderer uses layers as display columns.
func (c *Circuit) instructionLayers() ([]int, int) {
	layers := make([]int, len(c.Instrs))
	busy := make(map[string]int) // wire key -> first free layer
	floor := 0                   // layers below this sit behind a barrier
	count := 0
	for i, ins := range c.Instrs {
		if ins.Op.Name == "barrier" {
			layers[i] = count
			count++
			floor = count
			continue
		}
		l := floor
		keys := ins.wireKeys()
		for _, k := range keys {
			if free, ok := busy[k]; ok && free > l {
				l = free
			}
		}
		layers[i] = l
		for _, k := range keys {
			busy[k] = l + 1
		}
		if l+1 > count {
			count = l + 1
		}
	}
	return layers, count
}
