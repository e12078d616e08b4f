package keys

import "github.com/charmbracelet/bubbles/key"

// ConsoleKeys add command entry to the transcript keys.
type ConsoleKeys struct {
	TerminalKeys
	Enter       key.Binding
	Complete    key.Binding
	Interrupt   key.Binding
	HistoryUp   key.Binding
	HistoryDown key.Binding
	Commands    key.Binding
}

func NewConsoleKeys() ConsoleKeys {
	return ConsoleKeys{
		TerminalKeys: NewTerminalKeys(),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "run command"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "complete"),
		),
		Interrupt: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "send STOP"),
		),
		HistoryUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous command"),
		),
		HistoryDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next command"),
		),
		Commands: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "command reference"),
		),
	}
}

func (k ConsoleKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.InsertMode, k.Enter, k.Interrupt, k.Quit}
}

func (k ConsoleKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.InsertMode, k.Escape, k.Clear},
		{k.Enter, k.Complete, k.HistoryUp, k.HistoryDown},
		{k.ToggleHex, k.ToggleTimestamps, k.Commands},
		{k.Up, k.Down, k.GotoTop, k.GotoBottom},
		{k.Interrupt, k.Help, k.Quit},
	}
}
