package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/go-r12/internal/console"
	"github.com/allbin/go-r12/internal/tui/colors"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Red)

	HintStyle = lipgloss.NewStyle().
			Foreground(colors.Overlay0)
)

// ConsoleStyles renders shell output in the TUI palette.
func ConsoleStyles() console.Styles {
	bold := lipgloss.NewStyle().Bold(true)
	return console.Styles{
		Theme:   bold.Foreground(colors.Mauve),
		Label:   bold.Foreground(colors.Text),
		Error:   bold.Foreground(colors.Red),
		Warn:    bold.Foreground(colors.Yellow),
		Success: bold.Foreground(colors.Green),
	}
}
