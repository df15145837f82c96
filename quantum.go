package main

import (
	"math"
	"math/cmplx"
)

type Complex = complex128

// StateVector is a dense simulator state over NumQubits qubits, indexed
// little-endian: bit q of an amplitude index is the state of qubit q.
type StateVector struct {
	Amplitudes []Complex
	NumQubits  int
}

func NewStateVector(numQubits int) *StateVector {
	n := 1 << numQubits
	amps := make([]Complex, n)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}
}

func (s *StateVector) Clone() *StateVector {
	amps := make([]Complex, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &StateVector{Amplitudes: amps, NumQubits: s.NumQubits}
}

// Apply applies a named gate to the given qubit wires. Unknown names,
// measurements, barriers and known names given too few wires are ignored.
func (s *StateVector) Apply(name string, qubits []int, params []float64) {
	if want, ok := gateArities[name]; ok && len(qubits) < want {
		return
	}
	theta := 0.0
	if len(params) > 0 {
		theta = params[0]
	}
	switch name {
	case "h":
		s.applyH(qubits[0])
	case "x":
		s.applyX(qubits[0])
	case "y":
		s.applyY(qubits[0])
	case "z":
		s.applyZ(qubits[0])
	case "s":
		s.applyS(qubits[0], false)
	case "sdg":
		s.applyS(qubits[0], true)
	case "t":
		s.applyT(qubits[0], false)
	case "tdg":
		s.applyT(qubits[0], true)
	case "sx":
		s.apply1Q(qubits[0], matSX)
	case "sxdg":
		s.apply1Q(qubits[0], matSXdg)
	case "rx":
		s.applyRX(qubits[0], theta)
	case "ry":
		s.applyRY(qubits[0], theta)
	case "rz":
		s.applyRZ(qubits[0], theta)
	case "p", "u1":
		s.applyPhase(qubits[0], theta)
	case "cx":
		s.applyCX(qubits[0], qubits[1])
	case "cy":
		s.applyCY(qubits[0], qubits[1])
	case "cz":
		s.applyCZ(qubits[0], qubits[1])
	case "swap":
		s.applySWAP(qubits[0], qubits[1])
	case "iswap":
		s.applyISwap(qubits[0], qubits[1])
	case "dcx":
		s.applyCX(qubits[0], qubits[1])
		s.applyCX(qubits[1], qubits[0])
	case "ecr":
		s.apply2Q(qubits[0], qubits[1], matECR)
	case "ccx":
		s.applyCCX(qubits[0], qubits[1], qubits[2])
	case "reset":
		s.applyReset(qubits[0])
	case "id", "i", "barrier", "measure":
	}
}

func (s *StateVector) applyH(q int) {
	hFactor := complex(1.0/math.Sqrt2, 0)
	n := len(s.Amplitudes)
	bit := 1 << q
	newAmps := make([]Complex, n)
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			newAmps[i] = hFactor * (s.Amplitudes[i] + s.Amplitudes[j])
			newAmps[j] = hFactor * (s.Amplitudes[i] - s.Amplitudes[j])
		}
	}
	s.Amplitudes = newAmps
}

func (s *StateVector) applyX(q int) {
	n := len(s.Amplitudes)
	bit := 1 << q
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyY(q int) {
	n := len(s.Amplitudes)
	bit := 1 << q
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			s.Amplitudes[i], s.Amplitudes[j] = -1i*s.Amplitudes[j], 1i*s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyZ(q int) {
	n := len(s.Amplitudes)
	bit := 1 << q
	for i := 0; i < n; i++ {
		if i&bit != 0 {
			s.Amplitudes[i] *= -1
		}
	}
}

func (s *StateVector) applyS(q int, dagger bool) {
	n := len(s.Amplitudes)
	bit := 1 << q
	factor := 1i
	if dagger {
		factor = -1i
	}
	for i := 0; i < n; i++ {
		if i&bit != 0 {
			s.Amplitudes[i] *= factor
		}
	}
}

func (s *StateVector) applyT(q int, dagger bool) {
	n := len(s.Amplitudes)
	bit := 1 << q
	var factor Complex
	if dagger {
		factor = cmplx.Exp(complex(0, -math.Pi/4))
	} else {
		factor = cmplx.Exp(complex(0, math.Pi/4))
	}
	for i := 0; i < n; i++ {
		if i&bit != 0 {
			s.Amplitudes[i] *= factor
		}
	}
}

func (s *StateVector) applyRX(q int, theta float64) {
	n := len(s.Amplitudes)
	bit := 1 << q
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	newAmps := make([]Complex, n)
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			newAmps[i] = c*s.Amplitudes[i] + js*s.Amplitudes[j]
			newAmps[j] = js*s.Amplitudes[i] + c*s.Amplitudes[j]
		}
	}
	s.Amplitudes = newAmps
}

func (s *StateVector) applyRY(q int, theta float64) {
	n := len(s.Amplitudes)
	bit := 1 << q
	c := complex(math.Cos(theta/2), 0)
	s_ := complex(math.Sin(theta/2), 0)
	newAmps := make([]Complex, n)
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			newAmps[i] = c*s.Amplitudes[i] - s_*s.Amplitudes[j]
			newAmps[j] = s_*s.Amplitudes[i] + c*s.Amplitudes[j]
		}
	}
	s.Amplitudes = newAmps
}

func (s *StateVector) applyRZ(q int, theta float64) {
	n := len(s.Amplitudes)
	bit := 1 << q
	phase := cmplx.Exp(complex(0, theta/2))
	for i := 0; i < n; i++ {
		if i&bit != 0 {
			s.Amplitudes[i] *= phase
		} else {
			s.Amplitudes[i] *= cmplx.Conj(phase)
		}
	}
}

func (s *StateVector) applyPhase(q int, theta float64) {
	n := len(s.Amplitudes)
	bit := 1 << q
	phase := cmplx.Exp(complex(0, theta))
	for i := 0; i < n; i++ {
		if i&bit != 0 {
			s.Amplitudes[i] *= phase
		}
	}
}

var (
	matSX = [2][2]Complex{
		{complex(0.5, 0.5), complex(0.5, -0.5)},
		{complex(0.5, -0.5), complex(0.5, 0.5)},
	}
	matSXdg = [2][2]Complex{
		{complex(0.5, -0.5), complex(0.5, 0.5)},
		{complex(0.5, 0.5), complex(0.5, -0.5)},
	}
	// ECR in the little-endian basis with the first operand as the low bit.
	matECR = [4][4]Complex{
		{0, invSqrt2, 0, complex(0, 1 / math.Sqrt2)},
		{invSqrt2, 0, complex(0, -1 / math.Sqrt2), 0},
		{0, complex(0, 1 / math.Sqrt2), 0, invSqrt2},
		{complex(0, -1 / math.Sqrt2), 0, invSqrt2, 0},
	}
)

const invSqrt2 = Complex(complex(1/math.Sqrt2, 0))

func (s *StateVector) apply1Q(q int, m [2][2]Complex) {
	n := len(s.Amplitudes)
	bit := 1 << q
	newAmps := make([]Complex, n)
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			newAmps[i] = m[0][0]*s.Amplitudes[i] + m[0][1]*s.Amplitudes[j]
			newAmps[j] = m[1][0]*s.Amplitudes[i] + m[1][1]*s.Amplitudes[j]
		}
	}
	s.Amplitudes = newAmps
}

// apply2Q applies a 4x4 matrix to a qubit pair; q0 is the low bit of the
// local index.
func (s *StateVector) apply2Q(q0, q1 int, m [4][4]Complex) {
	n := len(s.Amplitudes)
	b0 := 1 << q0
	b1 := 1 << q1
	newAmps := make([]Complex, n)
	for i := 0; i < n; i++ {
		if i&b0 != 0 || i&b1 != 0 {
			continue
		}
		idx := [4]int{i, i | b0, i | b1, i | b0 | b1}
		for r := 0; r < 4; r++ {
			var acc Complex
			for cix := 0; cix < 4; cix++ {
				acc += m[r][cix] * s.Amplitudes[idx[cix]]
			}
			newAmps[idx[r]] = acc
		}
	}
	s.Amplitudes = newAmps
}

func (s *StateVector) applyCX(control, target int) {
	n := len(s.Amplitudes)
	cBit := 1 << control
	tBit := 1 << target
	for i := 0; i < n; i++ {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyCY(control, target int) {
	n := len(s.Amplitudes)
	cBit := 1 << control
	tBit := 1 << target
	for i := 0; i < n; i++ {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			s.Amplitudes[i], s.Amplitudes[j] = -1i*s.Amplitudes[j], 1i*s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyCZ(control, target int) {
	n := len(s.Amplitudes)
	cBit := 1 << control
	tBit := 1 << target
	for i := 0; i < n; i++ {
		if i&cBit != 0 && i&tBit != 0 {
			s.Amplitudes[i] *= -1
		}
	}
}

func (s *StateVector) applySWAP(q1, q2 int) {
	n := len(s.Amplitudes)
	bit1 := 1 << q1
	bit2 := 1 << q2
	for i := 0; i < n; i++ {
		if i&bit1 != 0 && i&bit2 == 0 {
			j := (i & ^bit1) | bit2
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyISwap(q1, q2 int) {
	n := len(s.Amplitudes)
	bit1 := 1 << q1
	bit2 := 1 << q2
	for i := 0; i < n; i++ {
		if i&bit1 != 0 && i&bit2 == 0 {
			j := (i & ^bit1) | bit2
			s.Amplitudes[i], s.Amplitudes[j] = 1i*s.Amplitudes[j], 1i*s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyCCX(c1, c2, target int) {
	n := len(s.Amplitudes)
	c1Bit := 1 << c1
	c2Bit := 1 << c2
	tBit := 1 << target
	for i := 0; i < n; i++ {
		if i&c1Bit != 0 && i&c2Bit != 0 && i&tBit == 0 {
			j := i | tBit
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

func (s *StateVector) applyReset(q int) {
	n := len(s.Amplitudes)
	bit := 1 << q

	prob0 := 0.0
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			prob0 += real(s.Amplitudes[i] * cmplx.Conj(s.Amplitudes[i]))
		}
	}

	norm := 1.0
	if prob0 > 0 {
		norm = math.Sqrt(prob0)
	}

	for i := 0; i < n; i++ {
		if i&bit == 0 {
			s.Amplitudes[i] = s.Amplitudes[i] / complex(norm, 0)
		} else {
			s.Amplitudes[i] = 0
		}
	}
}

type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

func (s *StateVector) GetQubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.NumQubits)
	n := len(s.Amplitudes)

	for i := 0; i < n; i++ {
		prob := real(s.Amplitudes[i] * cmplx.Conj(s.Amplitudes[i]))
		for q := 0; q < s.NumQubits; q++ {
			if i&(1<<q) != 0 {
				probs[q].Prob1 += prob
			} else {
				probs[q].Prob0 += prob
			}
		}
	}

	return probs
}

// SimulateCircuit runs the circuit on the |0...0> state. Composite
// operations are expanded through their definition, with the definition's
// wires mapped onto the operand wires. Measurements and conditioned
// operations are skipped.
func SimulateCircuit(circuit *Circuit) *StateVector {
	if circuit.NumQubits() == 0 {
		return NewStateVector(1)
	}
	state := NewStateVector(circuit.NumQubits())

	for _, ins := range circuit.Instrs {
		qubits := make([]int, 0, len(ins.Bits))
		for _, b := range ins.Qubits() {
			i, ok := circuit.QubitIndex(b)
			if !ok {
				continue
			}
			qubits = append(qubits, i)
		}
		simulateInstr(state, ins, qubits)
	}

	return state
}

func simulateInstr(state *StateVector, ins Instruction, qubits []int) {
	if ins.Op.Conditioned() {
		return
	}
	if ins.Op.Body != nil {
		body := ins.Op.Body
		for _, inner := range body.Instrs {
			mapped := make([]int, 0, len(inner.Bits))
			for _, b := range inner.Qubits() {
				local, ok := body.QubitIndex(b)
				if !ok || local >= len(qubits) {
					continue
				}
				mapped = append(mapped, qubits[local])
			}
			simulateInstr(state, inner, mapped)
		}
		return
	}
	state.Apply(ins.Op.Name, qubits, ins.Op.Params)
}
