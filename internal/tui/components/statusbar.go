package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	r12 "github.com/allbin/go-r12"
	"github.com/allbin/go-r12/internal/tui/colors"
)

// ConnectionInfo is the static line description shown on the right.
type ConnectionInfo struct {
	Line    r12.LineConfig
	Framing string
}

type StatusBar struct {
	title          string
	info           r12.Info
	status         string
	err            error
	width          int
	connectionInfo *ConnectionInfo
}

func NewStatusBar(title string) *StatusBar {
	return &StatusBar{
		title:  title,
		status: "Disconnected",
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetConnectionInfo(info *ConnectionInfo) {
	sb.connectionInfo = info
}

// SetInfo updates the session snapshot.
func (sb *StatusBar) SetInfo(info r12.Info) {
	sb.info = info
	switch {
	case sb.err != nil:
	case info.Connected:
		sb.status = "Connected"
	default:
		sb.status = "Disconnected"
	}
}

func (sb *StatusBar) SetError(err error) {
	sb.err = err
	if err != nil {
		sb.status = fmt.Sprintf("Error: %v", err)
	}
}

func (sb *StatusBar) Status() string {
	return sb.status
}

func (sb *StatusBar) endpoint() string {
	if sb.info.Endpoint == "" {
		return "no arm"
	}
	return sb.info.Endpoint
}

// ComprehensiveStatusBar renders mode, endpoint, connection indicator, bytes
// waiting, line settings and the clock, nvim style.
func (sb *StatusBar) ComprehensiveStatusBar(inputMode string, busy bool, timestamp string) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	modeBg := colors.Blue
	if inputMode == "INSERT" {
		modeBg = colors.Green
	}
	mode := lipgloss.NewStyle().
		Foreground(colors.Base).
		Background(modeBg).
		Bold(true).
		Padding(0, 1).
		Render(inputMode)

	port := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Padding(0, 1).
		Render(sb.endpoint())

	var connStyle lipgloss.Style
	var connIndicator string
	switch {
	case sb.err != nil:
		connStyle, connIndicator = lipgloss.NewStyle().Foreground(colors.Red), "✗"
	case busy:
		connStyle, connIndicator = lipgloss.NewStyle().Foreground(colors.Yellow), "◐"
	case sb.info.Connected:
		connStyle, connIndicator = lipgloss.NewStyle().Foreground(colors.Green), "●"
	default:
		connStyle, connIndicator = lipgloss.NewStyle().Foreground(colors.Red), "○"
	}
	connectionIndicator := connStyle.Render(connIndicator)

	waiting := lipgloss.NewStyle().
		Foreground(colors.Peach).
		Padding(0, 1).
		Render(fmt.Sprintf("%d waiting", sb.info.BytesWaiting))

	connInfo := "⚡ " + sb.title
	if sb.connectionInfo != nil {
		connInfo = fmt.Sprintf("⚡ %s %s", sb.connectionInfo.Line, sb.connectionInfo.Framing)
	}
	connectionDetails := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1).
		Render(connInfo)

	clock := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1).
		Render(timestamp)

	divider := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1).
		Render("│")

	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, mode, port, connectionIndicator, divider, waiting)
	rightSide := lipgloss.JoinHorizontal(lipgloss.Left, connectionDetails, divider, clock)

	spacerWidth := max(terminalWidth-lipgloss.Width(leftSide)-lipgloss.Width(rightSide), 1)
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	return lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(terminalWidth).
		Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide))
}
