package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/go-r12/internal/tui/colors"
)

// EntryKind classifies a transcript entry.
type EntryKind int

const (
	EntryTX EntryKind = iota
	EntryRX
	EntryShell
	EntryError
)

// Entry is one transcript line group: a command sent, the arm's reply or
// shell output.
type Entry struct {
	Timestamp time.Time
	Kind      EntryKind
	Text      string
	// Interrupted marks a reply collected after STOP.
	Interrupted bool
}

type DisplayMode struct {
	ShowTimestamps bool
	ShowHex        bool
}

type DataFormatter struct {
	mode DisplayMode
}

func NewDataFormatter(showTimestamps, showHex bool) *DataFormatter {
	return &DataFormatter{mode: DisplayMode{ShowTimestamps: showTimestamps, ShowHex: showHex}}
}

func (df *DataFormatter) GetDisplayMode() DisplayMode {
	return df.mode
}

func (df *DataFormatter) ToggleTimestamps() {
	df.mode.ShowTimestamps = !df.mode.ShowTimestamps
}

func (df *DataFormatter) ToggleHex() {
	df.mode.ShowHex = !df.mode.ShowHex
}

func indicator(e Entry) string {
	var color lipgloss.Color
	var label string
	switch e.Kind {
	case EntryTX:
		color, label = colors.Peach, "↗ TX"
	case EntryRX:
		color, label = colors.Sky, "↙ RX"
		if e.Interrupted {
			color, label = colors.Yellow, "↙ RX ⏹"
		}
	case EntryError:
		color, label = colors.Red, "✗"
	default:
		color, label = colors.Mauve, "•"
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(label)
}

// FormatMessage renders an entry. Multi-line text is indented under the
// first line.
func (df *DataFormatter) FormatMessage(e Entry) string {
	var prefix []string
	if df.mode.ShowTimestamps {
		prefix = append(prefix, lipgloss.NewStyle().
			Foreground(colors.Subtext0).
			Render(fmt.Sprintf("[%s]", e.Timestamp.Format("15:04:05.000"))))
	}
	prefix = append(prefix, indicator(e))
	head := strings.Join(prefix, " ") + " "

	text := strings.TrimRight(e.Text, "\r\n")
	if df.mode.ShowHex && (e.Kind == EntryTX || e.Kind == EntryRX) {
		text = fmt.Sprintf("% X", []byte(text))
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	indent := strings.Repeat(" ", lipgloss.Width(head))
	for i := range lines {
		if i == 0 {
			lines[i] = head + lines[i]
		} else {
			lines[i] = indent + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

func (df *DataFormatter) FormatMessages(entries []Entry) []string {
	formatted := make([]string, len(entries))
	for i, e := range entries {
		formatted[i] = df.FormatMessage(e)
	}
	return formatted
}
