package console

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

//go:embed help/*.txt
var embeddedHelp embed.FS

// Help file names, looked up in the help directory.
const (
	ShellHelpFile = "shell.txt"
	ForthHelpFile = "roboforth.txt"
)

// Entry is one help line. A zero Entry is a blank separator line.
type Entry struct {
	Command     string
	Description string
}

// HelpSection is a titled list of commands.
type HelpSection struct {
	Title   string
	Entries []Entry
}

// ParseHelp reads "COMMAND  description" lines. The command ends at the first
// run of two spaces; blank lines are kept as separators.
func ParseHelp(r io.Reader) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			entries = append(entries, Entry{})
			continue
		}
		tokens := strings.Split(line, "  ")
		entries = append(entries, Entry{
			Command:     tokens[0],
			Description: strings.TrimSpace(strings.Join(tokens[1:], "")),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Commands lists the command names, skipping separators.
func (h *HelpSection) Commands() []string {
	if h == nil {
		return nil
	}
	var names []string
	for _, e := range h.Entries {
		if e.Command != "" {
			names = append(names, e.Command)
		}
	}
	return names
}

// Render formats the section with commands padded to a common column.
func (h *HelpSection) Render(st Styles) string {
	if h == nil || len(h.Entries) == 0 {
		return ""
	}
	width := 0
	for _, e := range h.Entries {
		width = max(width, len(e.Command))
	}

	var b strings.Builder
	b.WriteString(st.Themed(h.Title))
	b.WriteString("\n")
	for _, e := range h.Entries {
		if e.Command == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString(st.Help(fmt.Sprintf("%-*s", width+2, e.Command), e.Description))
		b.WriteString("\n")
	}
	return b.String()
}

// Help holds both help sections.
type Help struct {
	Shell *HelpSection
	Forth *HelpSection
}

// Commands lists every documented command.
func (h *Help) Commands() []string {
	if h == nil {
		return nil
	}
	return append(h.Shell.Commands(), h.Forth.Commands()...)
}

// LoadHelp reads the help files from dir, or the built-in copies when dir is
// empty. A section that fails to load is left nil and reported in errs.
func LoadHelp(dir string) (help *Help, errs []error) {
	var fsys fs.FS = embeddedHelp
	prefix := "help/"
	if dir != "" {
		fsys = os.DirFS(dir)
		prefix = ""
	}

	help = &Help{}
	load := func(title, name string) *HelpSection {
		f, err := fsys.Open(prefix + name)
		if err != nil {
			errs = append(errs, fmt.Errorf("load %s help: %w", title, err))
			return nil
		}
		defer f.Close()
		entries, err := ParseHelp(f)
		if err != nil {
			errs = append(errs, fmt.Errorf("load %s help: %w", title, err))
			return nil
		}
		return &HelpSection{Title: title, Entries: entries}
	}
	help.Shell = load("Shell Commands", ShellHelpFile)
	help.Forth = load("Forth Commands", ForthHelpFile)
	return help, errs
}
