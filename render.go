package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	total := width - len(s)
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// gateDisplayName returns a short display name for an operation.
func gateDisplayName(name string) string {
	switch name {
	case "measure":
		return "M"
	case "reset":
		return "|0⟩"
	case "sdg":
		return "S†"
	case "tdg":
		return "T†"
	case "sx":
		return "√X"
	case "sxdg":
		return "√X†"
	case "clifford":
		return "CLIFF"
	case "iswap":
		return "iSWAP"
	default:
		u := strings.ToUpper(name)
		if len(u) > gateNameW {
			u = u[:gateNameW]
		}
		return u
	}
}

// targetSymbol returns the wire symbol for the target qubit of a
// control/target pair.
func targetSymbol(name string) string {
	switch name {
	case "cz":
		return "●"
	case "swap":
		return "×"
	default:
		return "⊕"
	}
}

// ──────────────────────────── Cell grid ────────────────────────────

type cellKind int

const (
	cellEmpty cellKind = iota
	cellBox
	cellSymbol // control dot, target cross, swap mark
	cellBarrier
	cellVert // uninvolved wire a vertical connector passes through
)

// cellInfo describes what one wire shows in one layer column.
type cellInfo struct {
	kind         cellKind
	name         string // display name for cellBox
	sym          string // symbol for cellSymbol
	composite    bool   // render the box in the block color
	vertAbove    bool
	vertBelow    bool
	measureBelow bool // double-line connector down to the classical wire
}

// circuitGrid lays the circuit out as one cell per (wire, layer). The second
// return value maps layers with a measurement to the classical bit index it
// lands on.
func circuitGrid(c *Circuit) ([][]cellInfo, int, map[int]int) {
	layers, count := c.instructionLayers()
	grid := make([][]cellInfo, c.NumQubits())
	for q := range grid {
		grid[q] = make([]cellInfo, count)
	}
	measCols := make(map[int]int)

	for i, ins := range c.Instrs {
		l := layers[i]
		switch ins.Op.Name {
		case "barrier":
			for q := range grid {
				grid[q][l] = cellInfo{kind: cellBarrier}
			}
			continue
		case "measure":
			q, _ := c.QubitIndex(ins.Bits[0])
			cb, _ := c.ClbitIndex(ins.Bits[1])
			grid[q][l] = cellInfo{kind: cellBox, name: "M", measureBelow: true}
			for below := q + 1; below < len(grid); below++ {
				grid[below][l].measureBelow = true
			}
			measCols[l] = cb
			continue
		}

		rows := make([]int, 0, len(ins.Bits))
		for _, b := range ins.Qubits() {
			if q, ok := c.QubitIndex(b); ok {
				rows = append(rows, q)
			}
		}
		if len(rows) == 0 {
			continue
		}

		minRow, maxRow := rows[0], rows[0]
		for _, q := range rows {
			if q < minRow {
				minRow = q
			}
			if q > maxRow {
				maxRow = q
			}
		}

		cells := opCells(ins, rows)
		for k, q := range rows {
			cell := cells[k]
			cell.vertAbove = q > minRow
			cell.vertBelow = q < maxRow
			grid[q][l] = cell
		}
		for q := minRow + 1; q < maxRow; q++ {
			if grid[q][l].kind == cellEmpty {
				grid[q][l] = cellInfo{kind: cellVert, vertAbove: true, vertBelow: true}
			}
		}
	}

	return grid, count, measCols
}

// opCells picks the per-wire cells for an operation, in operand order.
func opCells(ins Instruction, rows []int) []cellInfo {
	cells := make([]cellInfo, len(rows))
	switch ins.Op.Name {
	case "cx", "cy", "cz":
		cells[0] = cellInfo{kind: cellSymbol, sym: "●"}
		if ins.Op.Name == "cy" {
			cells[1] = cellInfo{kind: cellBox, name: "Y"}
		} else {
			cells[1] = cellInfo{kind: cellSymbol, sym: targetSymbol(ins.Op.Name)}
		}
	case "swap":
		cells[0] = cellInfo{kind: cellSymbol, sym: "×"}
		cells[1] = cellInfo{kind: cellSymbol, sym: "×"}
	case "ccx":
		cells[0] = cellInfo{kind: cellSymbol, sym: "●"}
		cells[1] = cellInfo{kind: cellSymbol, sym: "●"}
		cells[2] = cellInfo{kind: cellSymbol, sym: "⊕"}
	default:
		name := gateDisplayName(ins.Op.Name)
		composite := ins.Op.Body != nil
		for k := range cells {
			cells[k] = cellInfo{kind: cellBox, name: name, composite: composite}
		}
	}
	return cells
}

// ──────────────────────────── Cell rendering ────────────────────────────

// renderCell returns 3 lines (top, mid, bot) for a single cell.
// Each line is exactly cellW visual characters wide.
func renderCell(info cellInfo) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)
	dblVertRow := strings.Repeat(" ", halfW) + cbitConnectorStyle.Render("║") + strings.Repeat(" ", cellW-halfW-1)
	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1

	switch info.kind {
	case cellBarrier:
		top = vertRow
		mid = strings.Repeat("─", dashL) + "│" + strings.Repeat("─", dashR)
		bot = vertRow

	case cellSymbol:
		top = emptyRow
		if info.vertAbove {
			top = vertRow
		}
		mid = strings.Repeat("─", dashL) + gateStyle.Render(info.sym) + strings.Repeat("─", dashR)
		bot = emptyRow
		if info.vertBelow {
			bot = vertRow
		}
		if info.measureBelow {
			bot = dblVertRow
		}

	case cellBox:
		style := gateStyle
		if info.composite {
			style = blockStyle
		}
		margin := (cellW - gateBoxW) / 2
		rightMargin := cellW - margin - gateBoxW
		name := padCenter(info.name, gateNameW)
		edgeHalf := gateNameW / 2
		topEdge := strings.Repeat("─", gateNameW)
		botEdge := topEdge
		if info.vertAbove {
			topEdge = strings.Repeat("─", edgeHalf) + "┴" + strings.Repeat("─", gateNameW-edgeHalf-1)
		}
		if info.vertBelow {
			botEdge = strings.Repeat("─", edgeHalf) + "┬" + strings.Repeat("─", gateNameW-edgeHalf-1)
		}
		top = strings.Repeat(" ", margin) + style.Render("┌"+topEdge+"┐") + strings.Repeat(" ", rightMargin)
		mid = strings.Repeat("─", margin) + style.Render("┤"+name+"├") + strings.Repeat("─", rightMargin)
		bot = strings.Repeat(" ", margin) + style.Render("└"+botEdge+"┘") + strings.Repeat(" ", rightMargin)
		if info.measureBelow {
			bot = dblVertRow
		}

	case cellVert:
		top = vertRow
		mid = strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)
		bot = vertRow
		if info.measureBelow {
			bot = dblVertRow
		}

	default:
		if info.measureBelow {
			// A measurement connection passes through vertically.
			top = dblVertRow
			mid = strings.Repeat("─", dashL) + cbitConnectorStyle.Render("╫") + strings.Repeat("─", dashR)
			bot = dblVertRow
			return
		}
		top = emptyRow
		if info.vertAbove {
			top = vertRow
		}
		mid = strings.Repeat("─", cellW)
		bot = emptyRow
		if info.vertBelow {
			bot = vertRow
		}
	}

	return
}

// ──────────────────────────── Panel rendering ────────────────────────────

// wireLabel names a quantum wire for display.
func wireLabel(b *Bit, i int) string {
	if b.Register() != nil {
		return fmt.Sprintf("%s[%d]", b.Register().Name(), b.Offset())
	}
	return fmt.Sprintf("w%d", i)
}

// renderCircuitPanel renders a circuit as a wire grid inside a bordered
// panel.
func renderCircuitPanel(title string, c *Circuit, width, height int, extra string, style lipgloss.Style) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")

	if c == nil || c.NumQubits() == 0 {
		sb.WriteString(dimStyle.Render("  (empty)"))
		return style.Width(width).Height(height).Render(sb.String())
	}

	grid, numLayers, measCols := circuitGrid(c)

	availWidth := width - labelVisualW - 4
	maxLayers := max(availWidth/cellW, 1)
	displayLayers := min(numLayers, maxLayers)
	if displayLayers < numLayers {
		fmt.Fprintf(&sb, "  %s\n", dimStyle.Render(fmt.Sprintf("▶ %d more layers off screen", numLayers-displayLayers)))
	}

	// Layer number header
	header := strings.Repeat(" ", labelVisualW)
	for l := 0; l < displayLayers; l++ {
		header += dimStyle.Render(padCenter(fmt.Sprintf("%d", l), cellW))
	}
	sb.WriteString(header + "\n")

	for q := 0; q < c.NumQubits(); q++ {
		topLine := strings.Repeat(" ", labelVisualW)
		label := wireLabel(c.Qubit(q), q)
		midLine := qubitLabelStyle.Render(fmt.Sprintf("%-5s", label)) + "──"
		botLine := strings.Repeat(" ", labelVisualW)

		for l := 0; l < displayLayers; l++ {
			top, mid, bot := renderCell(grid[q][l])
			topLine += top
			midLine += mid
			botLine += bot
		}

		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}

	// ── Classical wire (single line) ──
	if c.NumClbits() > 0 {
		label := fmt.Sprintf("c%d", c.NumClbits())
		cbitLine := cbitLabelStyle.Render(fmt.Sprintf("%-5s", label)) + cbitWireStyle.Render("══")
		for l := 0; l < displayLayers; l++ {
			if cb, ok := measCols[l]; ok {
				bitLabel := fmt.Sprintf("%d", cb)
				dashL := (cellW - 1) / 2
				dashR := max(cellW-dashL-1-len(bitLabel), 0)
				cbitLine += cbitWireStyle.Render(strings.Repeat("═", dashL)) +
					cbitConnectorStyle.Render("╩"+bitLabel) +
					cbitWireStyle.Render(strings.Repeat("═", dashR))
			} else {
				cbitLine += cbitWireStyle.Render(strings.Repeat("═", cellW))
			}
		}
		sb.WriteString(cbitLine + "\n")
	}

	if extra != "" {
		sb.WriteString("\n" + extra)
	}

	return style.Width(width).Height(height).Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at position (x, y).
// It handles ANSI escape sequences by tracking visible column positions.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ovLine := range ovLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLines[bgIdx] = spliceLineAt(bgLines[bgIdx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces visible columns starting at position x in bgLine with overlay content.
// It properly handles ANSI escape sequences in the background line.
func spliceLineAt(bgLine, overlay string, x int) string {
	runes := []rune(bgLine)
	ovWidth := visibleLen(overlay)

	var prefix strings.Builder
	var suffix strings.Builder

	col := 0
	i := 0
	inEsc := false

	// Collect prefix: everything up to visible column x
	for i < len(runes) && col < x {
		if runes[i] == '\x1b' {
			inEsc = true
			for i < len(runes) {
				prefix.WriteRune(runes[i])
				if inEsc && runes[i] != '\x1b' && runes[i] != '[' && ((runes[i] >= 'A' && runes[i] <= 'Z') || (runes[i] >= 'a' && runes[i] <= 'z')) {
					inEsc = false
					i++
					break
				}
				i++
			}
		} else {
			prefix.WriteRune(runes[i])
			col++
			i++
		}
	}

	// Pad prefix if bg line is shorter than x
	for col < x {
		prefix.WriteRune(' ')
		col++
	}

	// Skip over ovWidth visible columns in the background
	skipped := 0
	for i < len(runes) && skipped < ovWidth {
		if runes[i] == '\x1b' {
			for i < len(runes) {
				i++
				if i > 0 && runes[i-1] != '\x1b' && runes[i-1] != '[' && ((runes[i-1] >= 'A' && runes[i-1] <= 'Z') || (runes[i-1] >= 'a' && runes[i-1] <= 'z')) {
					break
				}
			}
		} else {
			skipped++
			i++
		}
	}

	// Collect suffix: rest of the background line
	for i < len(runes) {
		suffix.WriteRune(runes[i])
		i++
	}

	return prefix.String() + overlay + suffix.String()
}

// visibleLen returns the number of visible (non-ANSI-escape) characters in a string.
func visibleLen(s string) int {
	n := 0
	inEsc := false
	for _, r := range s {
		if r == '\x1b' {
			inEsc = true
			continue
		}
		if inEsc {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEsc = false
			}
			continue
		}
		n++
	}
	return n
}
