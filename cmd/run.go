/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/allbin/go-r12/internal/console"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Send a FORTH script to the arm line by line",
	Long: `Connect to the arm and send every non-blank line of a FORTH script,
waiting for each reply before sending the next line.

Ctrl-C sends STOP and ends the script after the current line.

Example:
  r12 run demo.fs`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err != nil {
			return fmt.Errorf("could not load file '%s': %w", args[0], err)
		}

		session, err := newSession()
		if err != nil {
			return err
		}
		if _, err := connect(session); err != nil {
			return err
		}
		defer session.Disconnect()

		interrupt := make(chan struct{}, 1)
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt)
		defer signal.Stop(sigs)
		go forwardInterrupts(sigs, interrupt)

		con := console.New(session, append(consoleOptions(), console.WithInterrupt(interrupt))...)
		con.Execute(cmd.OutOrStdout(), "run "+args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
