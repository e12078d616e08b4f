// Package tui is the full-screen arm console.
package tui

import (
	"bytes"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	r12 "github.com/allbin/go-r12"
	"github.com/allbin/go-r12/internal/console"
	"github.com/allbin/go-r12/internal/tui/components"
	"github.com/allbin/go-r12/internal/tui/keys"
	"github.com/allbin/go-r12/internal/tui/models"
	"github.com/allbin/go-r12/internal/tui/styles"
)

// infoInterval is how often the status bar polls the session.
const infoInterval = 500 * time.Millisecond

// ExecutedMsg reports a finished console command.
type ExecutedMsg struct {
	Line   string
	Output string
	Stop   bool
}

// InfoMsg carries a session snapshot for the status bar.
type InfoMsg struct {
	Info r12.Info
}

// Model is the bubbletea model of the arm console.
type Model struct {
	*models.ArmModel
	dev       console.Device
	console   *console.Console
	interrupt chan struct{}

	terminal  *components.Terminal
	statusBar *components.StatusBar
	input     *components.Input
	table     *components.CommandTable
	help      help.Model
	keys      keys.ConsoleKeys

	// now is stubbed in tests
	now func() time.Time
}

// New builds the model around dev. Console options are applied after the
// TUI's own styles and interrupt channel.
func New(dev console.Device, info components.ConnectionInfo, opts ...console.Option) *Model {
	interrupt := make(chan struct{}, 1)
	base := []console.Option{
		console.WithStyles(styles.ConsoleStyles()),
		console.WithInterrupt(interrupt),
	}
	con := console.New(dev, append(base, opts...)...)

	m := &Model{
		ArmModel:  models.NewArmModel(),
		dev:       dev,
		console:   con,
		interrupt: interrupt,
		terminal:  components.NewTerminal(0, 0),
		statusBar: components.NewStatusBar("R12"),
		input:     components.NewInput("Type a command and press Enter..."),
		table:     components.NewCommandTable(con.Help(), 80, 10),
		help:      help.New(),
		keys:      keys.NewConsoleKeys(),
		now:       time.Now,
	}
	m.statusBar.SetConnectionInfo(&info)
	m.statusBar.SetInfo(dev.Info())
	return m
}

// Console returns the console commands are executed on.
func (m *Model) Console() *console.Console {
	return m.console
}

// Terminal returns the transcript.
func (m *Model) Terminal() *components.Terminal {
	return m.terminal
}

// Input returns the command line.
func (m *Model) Input() *components.Input {
	return m.input
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.pollInfo(), func() tea.Msg {
		return ExecutedMsg{Output: m.console.Intro()}
	})
}

func (m *Model) pollInfo() tea.Cmd {
	return tea.Tick(infoInterval, func(time.Time) tea.Msg {
		return InfoMsg{Info: m.dev.Info()}
	})
}

// execute runs line on the console off the update loop.
func (m *Model) execute(line string) tea.Cmd {
	return func() tea.Msg {
		var buf bytes.Buffer
		stop := m.console.Execute(&buf, line)
		return ExecutedMsg{Line: line, Output: buf.String(), Stop: stop}
	}
}

// submit records line in the transcript and starts it.
func (m *Model) submit(line string) tea.Cmd {
	line = strings.TrimSpace(line)
	if line == "" || m.IsBusy() {
		return nil
	}
	kind := components.EntryTX
	if m.console.IsBuiltin(line) {
		kind = components.EntryShell
	}
	m.terminal.AddMessage(components.Entry{Timestamp: m.now(), Kind: kind, Text: line})
	m.input.AddToHistory(line)
	m.input.SetValue("")
	m.SetBusy(true)
	return m.execute(line)
}

// stop asks a running command to send STOP. It never blocks the update loop.
func (m *Model) stop() tea.Cmd {
	if m.IsBusy() {
		select {
		case m.interrupt <- struct{}{}:
		default:
		}
		return nil
	}
	m.terminal.AddMessage(components.Entry{Timestamp: m.now(), Kind: components.EntryShell, Text: "ctrlc"})
	m.SetBusy(true)
	return m.execute("ctrlc")
}

func (m *Model) layout(width, height int) {
	inputHeight := 3
	statusBarHeight := 1
	helpHeight := lipgloss.Height(m.help.View(m.keys))
	m.terminal.SetSize(width, height-inputHeight-statusBarHeight-helpHeight)
	m.table.SetSize(width, height-inputHeight-statusBarHeight-helpHeight-1)
	m.input.SetWidth(width)
	m.statusBar.SetWidth(width)
	m.help.Width = width
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout(msg.Width, msg.Height)
		m.SetReady(true)

	case InfoMsg:
		m.statusBar.SetInfo(msg.Info)
		if m.Context().Err() == nil {
			cmds = append(cmds, m.pollInfo())
		}

	case ExecutedMsg:
		m.SetBusy(false)
		// a STOP sent after the command finished is stale
		select {
		case <-m.interrupt:
		default:
		}
		m.addOutput(msg)
		m.statusBar.SetInfo(m.dev.Info())
		if msg.Stop {
			m.Cleanup()
			return m, tea.Quit
		}

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Interrupt) {
			return m, m.stop()
		}
		if m.IsInInsertMode() {
			switch {
			case key.Matches(msg, m.keys.Escape):
				m.SetInputMode(models.InputModeNormal)
				m.input.Blur()
				return m, nil
			case key.Matches(msg, m.keys.Enter):
				return m, m.submit(m.input.Value())
			case key.Matches(msg, m.keys.Complete):
				m.input.Complete(m.console.Complete)
				return m, nil
			case key.Matches(msg, m.keys.HistoryUp):
				m.input.NavigateHistoryUp()
				return m, nil
			case key.Matches(msg, m.keys.HistoryDown):
				m.input.NavigateHistoryDown()
				return m, nil
			}
			m.input, _ = m.input.Update(msg)
			return m, nil
		}

		if m.ShowTable() {
			switch {
			case key.Matches(msg, m.keys.Commands), key.Matches(msg, m.keys.Escape):
				m.ToggleTable()
			case key.Matches(msg, m.keys.Enter):
				m.input.SetValue(m.table.Selected() + " ")
				m.ToggleTable()
				m.SetInputMode(models.InputModeInsert)
				m.input.Focus()
			default:
				cmds = append(cmds, m.table.Update(msg))
			}
			return m, tea.Batch(cmds...)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, m.submit("exit")
		case key.Matches(msg, m.keys.InsertMode):
			m.SetInputMode(models.InputModeInsert)
			m.input.Focus()
		case key.Matches(msg, m.keys.Clear):
			m.terminal.Clear()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Commands):
			m.ToggleTable()
		case key.Matches(msg, m.keys.ToggleHex):
			m.terminal.ToggleHex()
		case key.Matches(msg, m.keys.ToggleTimestamps):
			m.terminal.ToggleTimestamps()
		case key.Matches(msg, m.keys.Up):
			m.terminal.ScrollUp(1)
		case key.Matches(msg, m.keys.Down):
			m.terminal.ScrollDown(1)
		case key.Matches(msg, m.keys.GotoTop):
			m.terminal.GotoTop()
		case key.Matches(msg, m.keys.GotoBottom):
			m.terminal.GotoBottom()
		}
		return m, nil

	case tea.MouseMsg:
		_, cmd := m.terminal.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// addOutput splits console output into transcript entries. Forwarded
// commands produce arm replies; everything else is shell output.
func (m *Model) addOutput(msg ExecutedMsg) {
	out := strings.TrimRight(msg.Output, "\n")
	if out == "" {
		return
	}
	kind := components.EntryRX
	if msg.Line == "" || m.console.IsBuiltin(msg.Line) {
		kind = components.EntryShell
	}
	e := components.Entry{Timestamp: m.now(), Kind: kind, Text: out}
	switch plain := ansi.Strip(out); {
	case strings.HasPrefix(plain, "Error: "):
		e.Kind = components.EntryError
	case kind == components.EntryRX && strings.HasPrefix(plain, console.StopCommand+"\n"):
		e.Text = strings.TrimPrefix(out, console.StopCommand+"\n")
		e.Interrupted = true
	}
	m.terminal.AddMessage(e)
}

func (m *Model) View() string {
	var content string
	switch {
	case !m.IsReady():
		content = "Initializing..."
	case m.ShowTable():
		content = m.table.View()
	default:
		content = m.terminal.View()
	}

	busy := m.IsBusy()
	input := m.input.ViewWithMode(m.IsInInsertMode(), busy)
	status := m.statusBar.ComprehensiveStatusBar(m.GetInputMode().String(), busy, m.now().Format("15:04:05"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ContentBorderStyle.Render(content),
		input,
		status,
		m.help.View(m.keys),
	)
}

// Run starts the full-screen console and blocks until it exits.
func Run(m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	m.Cleanup()
	return err
}
