// Package output renders CLI text with terminal-aware styling.
package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the CLI.
type Styles struct {
	Banner  lipgloss.Style
	Title   lipgloss.Style
	Prompt  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
}

// NewStyles returns the coloured style set used on terminals.
func NewStyles() *Styles {
	return &Styles{
		Banner: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 6),
		Title:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		Prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Bold:    lipgloss.NewStyle().Bold(true),
	}
}

// PlainStyles returns styles that render text unchanged, for pipes and files.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		Banner:  plain.Border(lipgloss.DoubleBorder()).Padding(0, 6),
		Title:   plain,
		Prompt:  plain,
		Success: plain,
		Error:   plain,
		Warning: plain,
		Muted:   plain,
		Bold:    plain,
	}
}
