package main

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusView focus = iota
	focusQASM
	focusMenu
)

const demoQASM = `OPENQASM 2.0;
include "qelib1.inc";
qreg q[3];
creg c[3];
h q[0];
cx q[0],q[1];
x q[1];
cx q[1],q[2];
rz(pi/4) q[2];
s q[2];
cx q[0],q[2];
h q[2];
measure q[0] -> c[0];
`

// Model represents the TUI application state.
type Model struct {
	width  int
	height int

	qasmEditor textarea.Model
	focus      focus
	lastQASM   string
	statusMsg  string
	parseErr   string

	// Pass state
	opts      CollectOptions
	original  *Circuit
	collapsed *Circuit

	// Menu state
	menuItem int
}

func initialModel() Model {
	ta := textarea.New()
	ta.Placeholder = "Edit QASM here..."
	ta.SetWidth(40)
	ta.SetHeight(20)
	ta.ShowLineNumbers = true
	ta.KeyMap.InsertNewline.SetEnabled(true)
	ta.SetValue(demoQASM)

	m := Model{
		qasmEditor: ta,
		focus:      focusView,
		opts:       DefaultCliffordOptions(),
	}
	m.lastQASM = demoQASM
	if c, err := ParseQASM(demoQASM); err == nil {
		m.original = c
	}
	m.runPass()
	return m
}

func (m *Model) parseQASMInput() {
	qasm := m.qasmEditor.Value()
	if qasm == m.lastQASM {
		return
	}
	m.lastQASM = qasm
	c, err := ParseQASM(qasm)
	if err != nil {
		m.parseErr = err.Error()
		return
	}
	m.parseErr = ""
	m.original = c
	m.runPass()
}

// runPass collapses Clifford runs in the current circuit with the current
// options.
func (m *Model) runPass() {
	m.collapsed = nil
	if m.original == nil {
		return
	}
	pass, err := NewCollectCliffords(m.opts)
	if err != nil {
		m.statusMsg = err.Error()
		return
	}
	out, err := pass.RunCircuit(m.original)
	if err != nil {
		m.statusMsg = err.Error()
		return
	}
	m.collapsed = out
	before := len(m.original.Instrs)
	after := len(out.Instrs)
	m.statusMsg = fmt.Sprintf("%d ops → %d ops, %d Clifford block(s)",
		before, after, out.CountOps()["clifford"])
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		qasmW := max(msg.Width/3-6, 20)
		m.qasmEditor.SetWidth(qasmW)
		editorH := max(msg.Height/2-8, 4)
		m.qasmEditor.SetHeight(editorH)

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusView:
			switch key {
			case "q":
				return m, tea.Quit
			case "tab":
				m.focus = focusQASM
				m.qasmEditor.Focus()
			case "o":
				m.focus = focusMenu
				m.menuItem = 0
			case "r", "enter":
				m.runPass()
			case "ctrl+s":
				if m.collapsed != nil {
					qasm := m.collapsed.ToQASM()
					if err := os.WriteFile("collapsed.qasm", []byte(qasm), 0644); err != nil {
						m.statusMsg = fmt.Sprintf("Save error: %v", err)
					} else {
						m.statusMsg = "Saved collapsed.qasm"
					}
				}
			}

		case focusMenu:
			switch key {
			case "esc", "o":
				m.focus = focusView
			case "up", "k":
				if m.menuItem > 0 {
					m.menuItem--
				}
			case "down", "j":
				if m.menuItem < len(optionsMenu)-1 {
					m.menuItem++
				}
			case "left", "h":
				item := optionsMenu[m.menuItem]
				if item.dec != nil {
					m.opts = item.dec(m.opts)
				} else {
					m.opts = item.toggle(m.opts)
				}
				m.runPass()
			case "right", "l":
				item := optionsMenu[m.menuItem]
				if item.inc != nil {
					m.opts = item.inc(m.opts)
				} else {
					m.opts = item.toggle(m.opts)
				}
				m.runPass()
			case "enter":
				m.opts = optionsMenu[m.menuItem].toggle(m.opts)
				m.runPass()
			}

		case focusQASM:
			switch key {
			case "tab", "esc":
				m.focus = focusView
				m.qasmEditor.Blur()
			default:
				var cmd tea.Cmd
				m.qasmEditor, cmd = m.qasmEditor.Update(msg)
				cmds = append(cmds, cmd)
				m.parseQASMInput()
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// ──────────────────────────── View ────────────────────────────

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	qasmWidth := m.width / 3
	circuitWidth := (m.width - 4) / 2
	controlsHeight := 5
	panelHeight := max((m.height-controlsHeight-2)/2, 6)

	extra := ""
	if m.parseErr != "" {
		extra = errStyle.Render("  " + m.parseErr)
	}
	originalPanel := renderCircuitPanel("Original", m.original, circuitWidth, panelHeight, extra, circuitStyle)
	collapsedPanel := renderCircuitPanel("Collapsed", m.collapsed, circuitWidth, panelHeight, "", collapsedStyle)

	qasmPanel := m.renderQASMPanel(qasmWidth, panelHeight)
	statsPanel := m.renderStatsPanel(m.width-qasmWidth-4, panelHeight)
	controlsPanel := m.renderControlsPanel(m.width-4, controlsHeight-2)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, originalPanel, collapsedPanel)
	midRow := lipgloss.JoinHorizontal(lipgloss.Top, qasmPanel, statsPanel)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, midRow, controlsPanel)

	if m.focus == focusMenu {
		frame = overlayAt(frame, m.renderOptionsMenu(), 2, 2)
	}

	return frame
}

// renderQASMPanel renders the QASM editor panel.
func (m Model) renderQASMPanel(width, height int) string {
	var sb strings.Builder

	title := "QASM Editor"
	if m.focus == focusQASM {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.qasmEditor.View())

	return qasmStyle.Width(width).Height(height).Render(sb.String())
}

// renderStatsPanel summarizes the pass result: operation counts on both
// sides, the active options, and a state-vector equivalence check.
func (m Model) renderStatsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Pass Result"))
	sb.WriteString("\n\n")

	if m.statusMsg != "" {
		sb.WriteString(activeGateStyle.Render("  " + m.statusMsg))
		sb.WriteString("\n\n")
	}

	sb.WriteString(dimStyle.Render(fmt.Sprintf("  commutative=%s split=%s min=%d layers=%s back=%s\n\n",
		onOff(m.opts.CommutativeAnalysis), onOff(m.opts.SplitBlocks), m.opts.MinBlockSize,
		onOff(m.opts.SplitLayers), onOff(m.opts.CollectFromBack))))

	if m.original != nil {
		sb.WriteString(fmt.Sprintf("  original:  %s\n", countsLine(m.original.CountOps())))
	}
	if m.collapsed != nil {
		sb.WriteString(fmt.Sprintf("  collapsed: %s\n", countsLine(m.collapsed.CountOps())))
		if statesMatch(m.original, m.collapsed) {
			sb.WriteString(blockStyle.Render("\n  ✓ state vectors match"))
		} else {
			sb.WriteString(errStyle.Render("\n  ✗ state vectors differ"))
		}
	}

	return statsStyle.Width(width).Height(height).Render(sb.String())
}

func countsLine(counts map[string]int) string {
	total := 0
	for _, n := range counts {
		total += n
	}
	return fmt.Sprintf("%d ops", total)
}

// statesMatch compares the two circuits on the simulator, amplitude by
// amplitude.
func statesMatch(a, b *Circuit) bool {
	if a == nil || b == nil || a.NumQubits() != b.NumQubits() {
		return false
	}
	sa := SimulateCircuit(a)
	sb := SimulateCircuit(b)
	for i := range sa.Amplitudes {
		d := sa.Amplitudes[i] - sb.Amplitudes[i]
		if math.Hypot(real(d), imag(d)) > 1e-9 {
			return false
		}
	}
	return true
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeGateStyle.Render("Pass:   "))
	sb.WriteString("r/Enter Run  o Options  ^S Save collapsed QASM\n")

	sb.WriteString(activeGateStyle.Render("Global: "))
	sb.WriteString("Tab QASM editor  q/^C Quit")

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}
