package console

import "github.com/charmbracelet/lipgloss"

// Styles renders console output. Each helper pairs a bold label with plain
// text.
type Styles struct {
	Theme   lipgloss.Style
	Label   lipgloss.Style
	Error   lipgloss.Style
	Warn    lipgloss.Style
	Success lipgloss.Style
}

// DefaultStyles uses theme for banners and the prompt.
func DefaultStyles(theme lipgloss.TerminalColor) Styles {
	bold := lipgloss.NewStyle().Bold(true)
	return Styles{
		Theme:   bold.Foreground(theme),
		Label:   bold,
		Error:   bold.Foreground(lipgloss.Color("1")),
		Warn:    bold.Foreground(lipgloss.Color("3")),
		Success: bold.Foreground(lipgloss.Color("2")),
	}
}

// PlainStyles renders everything unstyled.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{Theme: plain, Label: plain, Error: plain, Warn: plain, Success: plain}
}

func (s Styles) Themed(text string) string { return s.Theme.Render(text) }

func (s Styles) Help(label, desc string) string { return s.Label.Render(label) + desc }

func (s Styles) Err(label, desc string) string { return s.Error.Render(label) + desc }

func (s Styles) Warning(label, desc string) string { return s.Warn.Render(label) + desc }

func (s Styles) Ok(label, desc string) string { return s.Success.Render(label) + desc }
