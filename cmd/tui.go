/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"github.com/spf13/cobra"

	r12 "github.com/allbin/go-r12"
	"github.com/allbin/go-r12/internal/tui"
	"github.com/allbin/go-r12/internal/tui/components"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Full-screen console",
	Long: `Start the full-screen console.

It runs the same commands as the shell in a scrolling transcript, with a
status bar showing the connection and the bytes waiting from the arm.

Keys (vim-like):
  i / esc     insert and normal mode
  enter       run the command line
  tab         complete
  ctrl+c      send STOP
  r           command reference (normal mode)
  h / t       hex and timestamps (normal mode)
  q           exit (normal mode)`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession()
		if err != nil {
			return err
		}
		info := components.ConnectionInfo{Line: r12.ControllerLine, Framing: session.Framing().Name()}
		m := tui.New(session, info, consoleOptions()...)
		return tui.Run(m)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
