package main

import (
	"strings"
	"testing"
)

func TestPadCenter(t *testing.T) {
	tests := []struct {
		s     string
		width int
		want  string
	}{
		{"H", 5, "  H  "},
		{"CX", 5, " CX  "},
		{"TOOLONG", 4, "TOOL"},
		{"", 3, "   "},
	}
	for _, tt := range tests {
		if got := padCenter(tt.s, tt.width); got != tt.want {
			t.Errorf("padCenter(%q, %d) = %q, want %q", tt.s, tt.width, got, tt.want)
		}
	}
}

func TestVisibleLen(t *testing.T) {
	if n := visibleLen("hello"); n != 5 {
		t.Errorf("visibleLen plain = %d, want 5", n)
	}
	styled := gateStyle.Render("ab")
	if n := visibleLen(styled); n != 2 {
		t.Errorf("visibleLen styled = %d, want 2", n)
	}
}

func TestGateDisplayName(t *testing.T) {
	tests := map[string]string{
		"h":        "H",
		"sdg":      "S†",
		"measure":  "M",
		"clifford": "CLIFF",
		"iswap":    "iSWAP",
	}
	for in, want := range tests {
		if got := gateDisplayName(in); got != want {
			t.Errorf("gateDisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCircuitGridLayout(t *testing.T) {
	c := NewCircuit(3, 1)
	c.H(0)
	c.CX(0, 2)
	c.Measure(1, 0)

	grid, layers, measCols := circuitGrid(c)
	if layers != 2 {
		t.Fatalf("expected 2 layers, got %d", layers)
	}

	if grid[0][0].kind != cellBox || grid[0][0].name != "H" {
		t.Errorf("q0 layer0 should be the H box, got %+v", grid[0][0])
	}
	if grid[0][1].kind != cellSymbol || grid[0][1].sym != "●" {
		t.Errorf("q0 layer1 should be the cx control, got %+v", grid[0][1])
	}
	if grid[2][1].kind != cellSymbol || grid[2][1].sym != "⊕" {
		t.Errorf("q2 layer1 should be the cx target, got %+v", grid[2][1])
	}
	// q1 sits between control and target at layer 1: the connector passes
	// through, but the measure at layer 0 owns the wire's layer-0 cell.
	if grid[1][1].kind != cellVert {
		t.Errorf("q1 layer1 should be a pass-through, got %+v", grid[1][1])
	}
	if grid[1][0].kind != cellBox || grid[1][0].name != "M" {
		t.Errorf("q1 layer0 should be the measure box, got %+v", grid[1][0])
	}
	if cb, ok := measCols[0]; !ok || cb != 0 {
		t.Errorf("measure column missing: %v", measCols)
	}
}

func TestRenderCellWidths(t *testing.T) {
	cells := []cellInfo{
		{},
		{kind: cellBox, name: "H"},
		{kind: cellBox, name: "CLIFF", composite: true, vertBelow: true},
		{kind: cellSymbol, sym: "●", vertBelow: true},
		{kind: cellBarrier},
		{kind: cellVert, vertAbove: true, vertBelow: true},
		{measureBelow: true},
	}
	for i, cell := range cells {
		top, mid, bot := renderCell(cell)
		for _, line := range []string{top, mid, bot} {
			if n := visibleLen(line); n != cellW {
				t.Errorf("cell %d: line %q has visible width %d, want %d", i, line, n, cellW)
			}
		}
	}
}

func TestCompositeBoxSpansOperands(t *testing.T) {
	c := NewCircuit(2, 0)
	c.CZ(0, 1)
	c.CZ(0, 1)

	pass, err := NewCollectCliffords(DefaultCliffordOptions())
	if err != nil {
		t.Fatalf("NewCollectCliffords error: %v", err)
	}
	out, err := pass.RunCircuit(c)
	if err != nil {
		t.Fatalf("RunCircuit error: %v", err)
	}

	grid, _, _ := circuitGrid(out)
	for q := 0; q < 2; q++ {
		cell := grid[q][0]
		if cell.kind != cellBox || !cell.composite || cell.name != "CLIFF" {
			t.Errorf("q%d should show a composite CLIFF box, got %+v", q, cell)
		}
	}
	if !grid[0][0].vertBelow || !grid[1][0].vertAbove {
		t.Errorf("composite box should connect vertically across its operands")
	}

	panel := renderCircuitPanel("Collapsed", out, 60, 12, "", collapsedStyle)
	if !strings.Contains(panel, "CLIFF") {
		t.Errorf("rendered panel should contain the CLIFF box:\n%s", panel)
	}
}
