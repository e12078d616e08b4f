package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Terminal is the scrolling transcript of the session.
type Terminal struct {
	viewport  viewport.Model
	formatter *DataFormatter
	entries   []Entry
	follow    bool
}

func NewTerminal(width, height int) *Terminal {
	return &Terminal{
		viewport:  viewport.New(width, height),
		formatter: NewDataFormatter(true, false),
		follow:    true,
	}
}

func (t *Terminal) SetSize(width, height int) {
	t.viewport.Width = width
	t.viewport.Height = max(height, 1)
	t.refresh()
}

func (t *Terminal) GetViewport() viewport.Model {
	return t.viewport
}

func (t *Terminal) Entries() []Entry {
	return t.entries
}

func (t *Terminal) AddMessage(e Entry) {
	t.entries = append(t.entries, e)
	t.refresh()
}

func (t *Terminal) Clear() {
	t.entries = nil
	t.viewport.SetContent("")
}

func (t *Terminal) ToggleHex() {
	t.formatter.ToggleHex()
	t.refresh()
}

func (t *Terminal) ToggleTimestamps() {
	t.formatter.ToggleTimestamps()
	t.refresh()
}

func (t *Terminal) GetDisplayMode() DisplayMode {
	return t.formatter.GetDisplayMode()
}

// ScrollUp leaves follow mode; ScrollDown past the end returns to it.
func (t *Terminal) ScrollUp(lines int) {
	t.follow = false
	t.viewport.LineUp(lines)
}

func (t *Terminal) ScrollDown(lines int) {
	t.viewport.LineDown(lines)
	if t.viewport.AtBottom() {
		t.follow = true
	}
}

func (t *Terminal) GotoTop() {
	t.follow = false
	t.viewport.GotoTop()
}

func (t *Terminal) GotoBottom() {
	t.follow = true
	t.viewport.GotoBottom()
}

func (t *Terminal) refresh() {
	t.viewport.SetContent(strings.Join(t.formatter.FormatMessages(t.entries), "\n"))
	if t.follow {
		t.viewport.GotoBottom()
	}
}

func (t *Terminal) Update(msg tea.Msg) (viewport.Model, tea.Cmd) {
	// Key messages stay with the model's own bindings.
	switch msg.(type) {
	case tea.WindowSizeMsg, tea.MouseMsg:
		var cmd tea.Cmd
		t.viewport, cmd = t.viewport.Update(msg)
		return t.viewport, cmd
	default:
		return t.viewport, nil
	}
}

func (t *Terminal) View() string {
	return t.viewport.View()
}
