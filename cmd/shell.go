/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/allbin/go-r12/internal/console"
)

// shellPrompt is plain text; liner measures the prompt and cannot skip ANSI
// escapes.
const shellPrompt = "> "

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive line console (the default)",
	Long: `Start the interactive line console.

Upper case input is written to the arm and the reply is printed once the
controller answers OK or ABORTED. Lower case words are shell commands:

  connect [port]   connect to the arm (discovers the port if none is given)
  disconnect       close the connection
  status           connection state and bytes waiting
  run <file>       send a FORTH script line by line
  dump             print whatever the arm has sent
  help             list shell and ROBOFORTH commands
  exit             disconnect and leave

Ctrl-C at the prompt sends STOP. Ctrl-C while waiting for a reply sends STOP
and collects the arm's answer. Tab completes commands and script names.`,
	Args: cobra.NoArgs,
	RunE: runShellCmd,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

// prompter reads one line of input.
type prompter interface {
	Prompt(prompt string) (string, error)
}

func runShellCmd(cmd *cobra.Command, _ []string) error {
	session, err := newSession()
	if err != nil {
		return err
	}

	interrupt := make(chan struct{}, 1)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)
	go forwardInterrupts(sigs, interrupt)

	con := console.New(session, append(consoleOptions(), console.WithInterrupt(interrupt))...)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetTabCompletionStyle(liner.TabPrints)
	line.SetCompleter(con.Complete)

	readHistory(line, cfg.HistoryFile)
	defer writeHistory(line, cfg.HistoryFile)

	return runShell(cmd.OutOrStdout(), con, line, interrupt, line.AppendHistory)
}

// runShell is the read-execute loop. Ctrl-C at the prompt becomes the ctrlc
// command and end of input becomes EOF.
func runShell(w io.Writer, con *console.Console, in prompter, interrupt chan struct{}, remember func(string)) error {
	fmt.Fprintln(w, con.Intro())
	for {
		input, err := in.Prompt(shellPrompt)
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			input = "ctrlc"
		case errors.Is(err, io.EOF):
			input = "EOF"
		case err != nil:
			return err
		case strings.TrimSpace(input) != "":
			remember(input)
		}

		drain(interrupt)
		if con.Execute(w, input) {
			return nil
		}
	}
}

// forwardInterrupts turns SIGINT into a non-blocking interrupt request.
func forwardInterrupts(sigs <-chan os.Signal, interrupt chan<- struct{}) {
	for range sigs {
		select {
		case interrupt <- struct{}{}:
		default:
		}
	}
}

// drain drops an interrupt that arrived while no command was running.
func drain(interrupt chan struct{}) {
	select {
	case <-interrupt:
	default:
	}
}

func readHistory(l *liner.State, path string) {
	if path == "" {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		log.Debug("no shell history", "file", path, "error", err)
		return
	}
	defer f.Close()
	if _, err := l.ReadHistory(f); err != nil {
		log.Warn("read shell history", "file", path, "error", err)
	}
}

func writeHistory(l *liner.State, path string) {
	if path == "" {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		log.Warn("write shell history", "file", path, "error", err)
		return
	}
	defer f.Close()
	if _, err := l.WriteHistory(f); err != nil {
		log.Warn("write shell history", "file", path, "error", err)
	}
}
