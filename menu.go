package main

import (
	"fmt"
	"strings"
)

// optionItem is one tunable knob of the collection pass.
type optionItem struct {
	name   string
	help   string
	value  func(o CollectOptions) string
	toggle func(o CollectOptions) CollectOptions // enter / left / right
	dec    func(o CollectOptions) CollectOptions // nil when toggle-only
	inc    func(o CollectOptions) CollectOptions
}

// optionsMenu defines the pass-options popup.
var optionsMenu = []optionItem{
	{
		name: "Commutative analysis",
		help: "reorder commuting gates into larger blocks",
		value: func(o CollectOptions) string {
			return onOff(o.CommutativeAnalysis)
		},
		toggle: func(o CollectOptions) CollectOptions {
			o.CommutativeAnalysis = !o.CommutativeAnalysis
			return o
		},
	},
	{
		name: "Split blocks",
		help: "split blocks into connected components",
		value: func(o CollectOptions) string {
			return onOff(o.SplitBlocks)
		},
		toggle: func(o CollectOptions) CollectOptions {
			o.SplitBlocks = !o.SplitBlocks
			return o
		},
	},
	{
		name: "Min block size",
		help: "smaller blocks are left untouched",
		value: func(o CollectOptions) string {
			return fmt.Sprintf("%d", o.MinBlockSize)
		},
		toggle: func(o CollectOptions) CollectOptions {
			o.MinBlockSize++
			return o
		},
		dec: func(o CollectOptions) CollectOptions {
			if o.MinBlockSize > 1 {
				o.MinBlockSize--
			}
			return o
		},
		inc: func(o CollectOptions) CollectOptions {
			o.MinBlockSize++
			return o
		},
	},
	{
		name: "Split layers",
		help: "one block per depth layer",
		value: func(o CollectOptions) string {
			return onOff(o.SplitLayers)
		},
		toggle: func(o CollectOptions) CollectOptions {
			o.SplitLayers = !o.SplitLayers
			return o
		},
	},
	{
		name: "Collect from back",
		help: "grow blocks from the end of the circuit",
		value: func(o CollectOptions) string {
			return onOff(o.CollectFromBack)
		},
		toggle: func(o CollectOptions) CollectOptions {
			o.CollectFromBack = !o.CollectFromBack
			return o
		},
	},
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// renderOptionsMenu renders the floating pass-options popup.
func (m Model) renderOptionsMenu() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Pass Options"))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 44)))
	sb.WriteString("\n")

	for i, item := range optionsMenu {
		val := item.value(m.opts)
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-22s", item.name)))
			sb.WriteString(gateStyle.Render(fmt.Sprintf("%-4s", val)))
			sb.WriteString(dimStyle.Render(item.help))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-22s", item.name)))
			sb.WriteString(dimStyle.Render(fmt.Sprintf("%-4s", val)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ←→/⏎ Change  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}
