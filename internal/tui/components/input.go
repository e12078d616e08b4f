package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/go-r12/internal/tui/colors"
	"github.com/allbin/go-r12/internal/tui/styles"
)

const maxHistory = 500

// Input is the command line with history and tab completion.
type Input struct {
	textInput     textinput.Model
	history       []string
	historyIndex  int
	currentInput  string // input being edited before history navigation
	terminalWidth int

	// Completion state: candidates for the line as it was when Tab was first
	// pressed, and the index of the one shown.
	candidates []string
	candIndex  int
}

func NewInput(placeholder string) *Input {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Prompt = ""
	ti.Focus()

	return &Input{
		textInput:    ti,
		historyIndex: -1,
	}
}

func (i *Input) SetWidth(width int) {
	i.terminalWidth = width
	// border(2) + padding(2) + prompt(1) + space(1)
	i.textInput.Width = max(width-6, 20)
}

func (i *Input) Focus() {
	i.textInput.Focus()
}

func (i *Input) Blur() {
	i.textInput.Blur()
}

func (i *Input) Value() string {
	return i.textInput.Value()
}

func (i *Input) SetValue(value string) {
	i.textInput.SetValue(value)
	i.textInput.CursorEnd()
}

func (i *Input) Update(msg tea.Msg) (*Input, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		i.candidates = nil
	}
	var cmd tea.Cmd
	i.textInput, cmd = i.textInput.Update(msg)
	return i, cmd
}

// Complete cycles through the candidates complete returns for the current
// line. It reports false when there is nothing to complete.
func (i *Input) Complete(complete func(line string) []string) bool {
	if i.candidates == nil {
		i.candidates = complete(i.Value())
		i.candIndex = -1
		if len(i.candidates) == 0 {
			i.candidates = nil
			return false
		}
	}
	i.candIndex = (i.candIndex + 1) % len(i.candidates)
	i.textInput.SetValue(i.candidates[i.candIndex])
	i.textInput.CursorEnd()
	return true
}

// Candidates returns the completion candidates being cycled, if any.
func (i *Input) Candidates() []string {
	return i.candidates
}

func (i *Input) ViewWithMode(isInsertMode, busy bool) string {
	promptStyle := lipgloss.NewStyle().Foreground(colors.Green).Bold(true)
	promptSymbol := ">"
	if busy {
		promptStyle = promptStyle.Foreground(colors.Yellow)
		promptSymbol = "…"
	}
	styledPrompt := promptStyle.Render(promptSymbol)

	var content string
	switch {
	case busy:
		content = lipgloss.JoinHorizontal(lipgloss.Left, styledPrompt, " ",
			styles.HintStyle.Render("Waiting for the arm, ctrl+c sends STOP"))
	case isInsertMode:
		content = lipgloss.JoinHorizontal(lipgloss.Left, styledPrompt, " ", i.textInput.View())
	default:
		content = lipgloss.JoinHorizontal(lipgloss.Left, styledPrompt, " ",
			styles.HintStyle.Render("Press 'i' to enter insert mode"))
	}

	// Rounded border and horizontal padding take four columns.
	inputStyle := styles.InputStyle.
		Width(max(i.terminalWidth-4, 10)).
		AlignHorizontal(lipgloss.Left)
	if isInsertMode && !busy {
		inputStyle = inputStyle.BorderForeground(colors.Green)
	}
	return inputStyle.Render(content)
}

// SetHistory replaces the history, e.g. with lines loaded from disk.
func (i *Input) SetHistory(lines []string) {
	i.history = nil
	for _, l := range lines {
		i.AddToHistory(l)
	}
}

func (i *Input) History() []string {
	return i.history
}

// AddToHistory appends command unless it is blank or repeats the last entry.
func (i *Input) AddToHistory(command string) {
	command = strings.TrimSpace(command)
	if command == "" {
		return
	}
	if len(i.history) > 0 && i.history[len(i.history)-1] == command {
		return
	}

	i.history = append(i.history, command)
	if len(i.history) > maxHistory {
		i.history = i.history[1:]
	}

	i.historyIndex = -1
	i.currentInput = ""
}

func (i *Input) NavigateHistoryUp() {
	if len(i.history) == 0 {
		return
	}

	if i.historyIndex == -1 {
		i.currentInput = i.textInput.Value()
		i.historyIndex = len(i.history) - 1
	} else if i.historyIndex > 0 {
		i.historyIndex--
	}

	i.SetValue(i.history[i.historyIndex])
}

func (i *Input) NavigateHistoryDown() {
	if len(i.history) == 0 || i.historyIndex == -1 {
		return
	}

	if i.historyIndex < len(i.history)-1 {
		i.historyIndex++
		i.SetValue(i.history[i.historyIndex])
	} else {
		i.historyIndex = -1
		i.SetValue(i.currentInput)
		i.currentInput = ""
	}
}
