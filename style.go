package main

import "github.com/charmbracelet/lipgloss"

var (
	keyword   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Render
	paragraph = lipgloss.NewStyle().Width(78).Padding(0, 0, 0, 2).Render

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7D7D")).Width(13)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Bold(true)
	tierStyles = map[string]lipgloss.Style{
		"volatile":    lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
		"durable":     lipgloss.NewStyle().Foreground(lipgloss.Color("#3C7EFF")),
		"registered":  lipgloss.NewStyle().Foreground(lipgloss.Color("#F25D94")),
		"passthrough": lipgloss.NewStyle().Foreground(lipgloss.Color("#7D7D7D")),
	}
)

// field renders one "label value" line, styled only on a terminal.
func field(styled bool, label, value string) string {
	if !styled {
		return label + ": " + value
	}
	return labelStyle.Render(label) + valueStyle.Render(value)
}

func tier(styled bool, name string) string {
	if s, ok := tierStyles[name]; ok && styled {
		return s.Render(name)
	}
	return name
}
