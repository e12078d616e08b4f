package components

import (
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/go-r12/internal/console"
	"github.com/allbin/go-r12/internal/tui/colors"
)

// CommandTable is the scrollable command reference built from the help files.
type CommandTable struct {
	table table.Model
}

func NewCommandTable(help *console.Help, width, height int) *CommandTable {
	var rows []table.Row
	for _, section := range []*console.HelpSection{help.Shell, help.Forth} {
		if section == nil {
			continue
		}
		for _, e := range section.Entries {
			if e.Command == "" {
				continue
			}
			rows = append(rows, table.Row{e.Command, section.Title, e.Description})
		}
	}

	t := table.New(
		table.WithColumns(commandColumns(width)),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(height, 5)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colors.Subtext0).
		BorderBottom(true).
		Bold(true).
		Foreground(colors.Text)
	s.Selected = s.Selected.
		Foreground(colors.Text).
		Background(colors.Surface1).
		Bold(false)
	t.SetStyles(s)

	return &CommandTable{table: t}
}

func commandColumns(width int) []table.Column {
	const commandWidth, sectionWidth = 14, 16
	descWidth := max(width-commandWidth-sectionWidth-6, 20)
	return []table.Column{
		{Title: "Command", Width: commandWidth},
		{Title: "Section", Width: sectionWidth},
		{Title: "Description", Width: descWidth},
	}
}

func (ct *CommandTable) SetSize(width, height int) {
	ct.table.SetColumns(commandColumns(width))
	ct.table.SetWidth(width)
	ct.table.SetHeight(max(height, 5))
}

// Selected returns the highlighted command name.
func (ct *CommandTable) Selected() string {
	row := ct.table.SelectedRow()
	if row == nil {
		return ""
	}
	return row[0]
}

func (ct *CommandTable) Rows() int {
	return len(ct.table.Rows())
}

func (ct *CommandTable) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	ct.table, cmd = ct.table.Update(msg)
	return cmd
}

func (ct *CommandTable) View() string {
	return ct.table.View()
}
