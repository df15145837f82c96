package main

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// paramPattern matches a single parameter value: numbers, pi expressions,
// or combinations ("1.5707", "pi", "pi/2", "3*pi/4", "-pi", "3.14e-2").
const paramPattern = `-?(?:\d*\.?\d*\*?pi(?:/\d+\.?\d*)?|\d+\.?\d*(?:[eE][+\-]?\d+)?)`

// Pre-compiled regexps for QASM parsing.
var (
	qasmSingleRegex      = regexp.MustCompile(`^(\w+)\s+(\w+)\[(\d+)\];?$`)
	qasmSingleParamRegex = regexp.MustCompile(`^(\w+)\s*\(\s*(` + paramPattern + `(?:\s*,\s*` + paramPattern + `)*)\s*\)\s+(\w+)\[(\d+)\];?$`)
	qasmTwoRegex         = regexp.MustCompile(`^(\w+)\s+(\w+)\[(\d+)\],\s*(\w+)\[(\d+)\];?$`)
	qasmTwoParamRegex    = regexp.MustCompile(`^(\w+)\s*\(\s*(` + paramPattern + `)\s*\)\s+(\w+)\[(\d+)\],\s*(\w+)\[(\d+)\];?$`)
	qasmThreeRegex       = regexp.MustCompile(`^(\w+)\s+(\w+)\[(\d+)\],\s*(\w+)\[(\d+)\],\s*(\w+)\[(\d+)\];?$`)
	qasmMeasureRegex     = regexp.MustCompile(`^measure\s+(\w+)\[(\d+)\]\s*->\s*(\w+)(?:\[(\d+)\])?;?$`)
	qasmResetRegex       = regexp.MustCompile(`^reset\s+(\w+)\[(\d+)\];?$`)
	qasmIfRegex          = regexp.MustCompile(`^if\s*\(\s*(\w+)(?:\[(\d+)\])?\s*==\s*(\d+)\s*\)\s+(.*)$`)
	qasmQregRegex        = regexp.MustCompile(`qreg\s+(\w+)\[(\d+)\]`)
	qasmCregRegex        = regexp.MustCompile(`creg\s+(\w+)\[(\d+)\]`)
	qasmBarrierRegex     = regexp.MustCompile(`^barrier\b`)
	piExprRegex          = regexp.MustCompile(`^(-?)(\d*\.?\d*)\s*\*?\s*pi(?:\s*/\s*(\d+\.?\d*))?$`)
)

// gateArities lists the operand count of every gate name the parser
// recognizes. A known name applied to the wrong number of qubits is a parse
// error rather than something left for downstream consumers to trip over.
var gateArities = map[string]int{
	"id": 1, "i": 1, "x": 1, "y": 1, "z": 1, "h": 1,
	"s": 1, "sdg": 1, "t": 1, "tdg": 1, "sx": 1, "sxdg": 1,
	"rx": 1, "ry": 1, "rz": 1, "p": 1, "u1": 1, "reset": 1,
	"cx": 2, "cy": 2, "cz": 2, "swap": 2, "iswap": 2, "ecr": 2, "dcx": 2,
	"ccx": 3, "cswap": 3,
}

// parseParamExpr parses one parameter expression: a plain number or a pi
// expression such as "pi", "pi/2", "3*pi/4", "-2pi". Returns the value and
// whether parsing succeeded.
func parseParamExpr(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if val, err := strconv.ParseFloat(s, 64); err == nil {
		return val, true
	}
	s = strings.ToLower(s)
	m := piExprRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	coeff := 1.0
	if m[2] != "" {
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return 0, false
		}
		coeff = v
	}
	val := coeff * math.Pi
	if m[3] != "" {
		denom, err := strconv.ParseFloat(m[3], 64)
		if err != nil || denom == 0 {
			return 0, false
		}
		val /= denom
	}
	if m[1] == "-" {
		val = -val
	}
	return val, true
}

// formatParam renders a parameter value, preferring pi notation for the
// fractions that appear in practice.
func formatParam(val float64) string {
	const eps = 1e-10
	if math.Abs(val) < eps {
		return "0"
	}
	sign := ""
	v := val
	if v < 0 {
		sign = "-"
		v = -v
	}
	type piForm struct {
		value   float64
		display string
	}
	forms := []piForm{
		{math.Pi, "pi"},
		{math.Pi / 2, "pi/2"},
		{math.Pi / 3, "pi/3"},
		{math.Pi / 4, "pi/4"},
		{math.Pi / 6, "pi/6"},
		{math.Pi / 8, "pi/8"},
		{2 * math.Pi, "2*pi"},
		{3 * math.Pi / 2, "3*pi/2"},
		{3 * math.Pi / 4, "3*pi/4"},
		{2 * math.Pi / 3, "2*pi/3"},
	}
	for _, f := range forms {
		if math.Abs(v-f.value) < eps {
			return sign + f.display
		}
	}
	return strconv.FormatFloat(val, 'g', -1, 64)
}

// formatParams renders a comma-separated parameter list.
func formatParams(params []float64) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = formatParam(p)
	}
	return strings.Join(parts, ", ")
}

// ToQASM renders the circuit as OpenQASM 2.0 text. Wires are addressed
// through flat q/c registers regardless of how they were introduced;
// composite operations are expanded through their definition body between
// marker comments.
func (c *Circuit) ToQASM() string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", max(c.NumQubits(), 1))
	if c.NumClbits() > 0 {
		fmt.Fprintf(&sb, "creg c[%d];\n", c.NumClbits())
	}
	sb.WriteString("\n")
	for _, ins := range c.Instrs {
		c.writeInstrQASM(&sb, ins)
	}
	return sb.String()
}

func (c *Circuit) writeInstrQASM(sb *strings.Builder, ins Instruction) {
	qref := func(b *Bit) string {
		i, _ := c.QubitIndex(b)
		return fmt.Sprintf("q[%d]", i)
	}
	prefix := ""
	if ins.Op.Cond != nil {
		i, _ := c.ClbitIndex(ins.Op.Cond.Bit)
		prefix = fmt.Sprintf("if (c[%d]==%d) ", i, ins.Op.Cond.Value)
	}
	switch {
	case ins.Op.Body != nil:
		refs := make([]string, 0, len(ins.Bits))
		for _, b := range ins.Bits {
			if b.Kind() == KindQubit {
				refs = append(refs, qref(b))
			}
		}
		fmt.Fprintf(sb, "// begin %s %s\n", ins.Op.Name, strings.Join(refs, ", "))
		body := ins.Op.Body
		remap := make([]*Bit, body.NumQubits())
		qi := 0
		for _, b := range ins.Bits {
			if b.Kind() == KindQubit {
				remap[qi] = b
				qi++
			}
		}
		for _, inner := range body.Instrs {
			outer := Instruction{Op: inner.Op, Bits: make([]*Bit, len(inner.Bits))}
			for i, b := range inner.Bits {
				if b.Kind() == KindQubit {
					j, _ := body.QubitIndex(b)
					outer.Bits[i] = remap[j]
				} else {
					outer.Bits[i] = b
				}
			}
			c.writeInstrQASM(sb, outer)
		}
		fmt.Fprintf(sb, "// end %s\n", ins.Op.Name)
	case ins.Op.Name == "barrier":
		refs := make([]string, len(ins.Bits))
		for i, b := range ins.Bits {
			refs[i] = qref(b)
		}
		fmt.Fprintf(sb, "barrier %s;\n", strings.Join(refs, ", "))
	case ins.Op.Name == "measure":
		ci, _ := c.ClbitIndex(ins.Bits[1])
		fmt.Fprintf(sb, "%smeasure %s -> c[%d];\n", prefix, qref(ins.Bits[0]), ci)
	default:
		name := ins.Op.Name
		refs := make([]string, len(ins.Bits))
		for i, b := range ins.Bits {
			refs[i] = qref(b)
		}
		if len(ins.Op.Params) > 0 {
			fmt.Fprintf(sb, "%s%s(%s) %s;\n", prefix, name, formatParams(ins.Op.Params), strings.Join(refs, ", "))
		} else {
			fmt.Fprintf(sb, "%s%s %s;\n", prefix, name, strings.Join(refs, ", "))
		}
	}
}

// ParseQASM parses OpenQASM 2.0 text into a circuit. Named registers are
// flattened into consecutive wire indices in declaration order, the same
// resolution the emitter assumes.
func ParseQASM(qasm string) (*Circuit, error) {
	numQubits := 0
	numClbits := 0
	qregOff := make(map[string]int)
	cregOff := make(map[string]int)

	lines := strings.Split(qasm, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if m := qasmQregRegex.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[2])
			qregOff[m[1]] = numQubits
			numQubits += n
		}
		if m := qasmCregRegex.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[2])
			cregOff[m[1]] = numClbits
			numClbits += n
		}
	}
	c := NewCircuit(numQubits, numClbits)

	resolveQ := func(reg, idx string) (int, error) {
		off, ok := qregOff[reg]
		if !ok {
			return 0, fmt.Errorf("unknown quantum register %q", reg)
		}
		i, _ := strconv.Atoi(idx)
		w := off + i
		if w >= numQubits {
			return 0, fmt.Errorf("qubit %s[%s] out of range", reg, idx)
		}
		return w, nil
	}
	resolveC := func(reg, idx string) (int, error) {
		off, ok := cregOff[reg]
		if !ok {
			return 0, fmt.Errorf("unknown classical register %q", reg)
		}
		i := 0
		if idx != "" {
			i, _ = strconv.Atoi(idx)
		}
		w := off + i
		if w >= numClbits {
			return 0, fmt.Errorf("clbit %s[%s] out of range", reg, idx)
		}
		return w, nil
	}

	for lineno, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") ||
			strings.HasPrefix(line, "OPENQASM") || strings.HasPrefix(line, "include") ||
			strings.HasPrefix(line, "qreg") || strings.HasPrefix(line, "creg") {
			continue
		}

		var cond *Cond
		if m := qasmIfRegex.FindStringSubmatch(line); m != nil {
			w, err := resolveC(m[1], m[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno+1, err)
			}
			v, _ := strconv.Atoi(m[3])
			cond = &Cond{Bit: c.Clbit(w), Value: v}
			line = strings.TrimSpace(m[4])
		}

		if qasmBarrierRegex.MatchString(line) {
			if cond != nil {
				return nil, fmt.Errorf("line %d: barrier cannot be conditioned", lineno+1)
			}
			c.Barrier()
			continue
		}
		if m := qasmMeasureRegex.FindStringSubmatch(line); m != nil {
			q, err := resolveQ(m[1], m[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno+1, err)
			}
			cb, err := resolveC(m[3], m[4])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno+1, err)
			}
			c.Instrs = append(c.Instrs, Instruction{
				Op:   Op{Name: "measure", Cond: cond},
				Bits: []*Bit{c.Qubit(q), c.Clbit(cb)},
			})
			continue
		}
		if m := qasmResetRegex.FindStringSubmatch(line); m != nil {
			q, err := resolveQ(m[1], m[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno+1, err)
			}
			if err := appendParsed(c, "reset", nil, cond, q); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno+1, err)
			}
			continue
		}
		if m := qasmThreeRegex.FindStringSubmatch(line); m != nil {
			q1, err1 := resolveQ(m[2], m[3])
			q2, err2 := resolveQ(m[4], m[5])
			q3, err3 := resolveQ(m[6], m[7])
			if err := firstErr(err1, err2, err3); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno+1, err)
			}
			if err := appendParsed(c, strings.ToLower(m[1]), nil, cond, q1, q2, q3); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno+1, err)
			}
			continue
		}
		if m := qasmTwoParamRegex.FindStringSubmatch(line); m != nil {
			p, ok := parseParamExpr(m[2])
			if !ok {
				return nil, fmt.Errorf("line %d: bad parameter %q", lineno+1, m[2])
			}
			q1, err1 := resolveQ(m[3], m[4])
			q2, err2 := resolveQ(m[5], m[6])
			if err := firstErr(err1, err2); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno+1, err)
			}
			if err := appendParsed(c, strings.ToLower(m[1]), []float64{p}, cond, q1, q2); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno+1, err)
			}
			continue
		}
		if m := qasmTwoRegex.FindStringSubmatch(line); m != nil {
			q1, err1 := resolveQ(m[2], m[3])
			q2, err2 := resolveQ(m[4], m[5])
			if err := firstErr(err1, err2); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno+1, err)
			}
			if err := appendParsed(c, strings.ToLower(m[1]), nil, cond, q1, q2); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno+1, err)
			}
			continue
		}
		if m := qasmSingleParamRegex.FindStringSubmatch(line); m != nil {
			var params []float64
			for _, ps := range strings.Split(m[2], ",") {
				p, ok := parseParamExpr(strings.TrimSpace(ps))
				if !ok {
					return nil, fmt.Errorf("line %d: bad parameter %q", lineno+1, ps)
				}
				params = append(params, p)
			}
			q, err := resolveQ(m[3], m[4])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno+1, err)
			}
			if err := appendParsed(c, strings.ToLower(m[1]), params, cond, q); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno+1, err)
			}
			continue
		}
		if m := qasmSingleRegex.FindStringSubmatch(line); m != nil {
			q, err := resolveQ(m[2], m[3])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno+1, err)
			}
			if err := appendParsed(c, strings.ToLower(m[1]), nil, cond, q); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno+1, err)
			}
			continue
		}
		return nil, fmt.Errorf("line %d: cannot parse %q", lineno+1, line)
	}
	return c, nil
}

func appendParsed(c *Circuit, name string, params []float64, cond *Cond, qubits ...int) error {
	if want, ok := gateArities[name]; ok && want != len(qubits) {
		return fmt.Errorf("gate %s expects %d qubit(s), got %d", name, want, len(qubits))
	}
	bits := make([]*Bit, len(qubits))
	for i, q := range qubits {
		bits[i] = c.Qubit(q)
	}
	c.Instrs = append(c.Instrs, Instruction{
		Op:   Op{Name: name, Params: params, Cond: cond},
		Bits: bits,
	})
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
