/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	r12 "github.com/allbin/go-r12"
)

// probeCmd represents the probe command
var probeCmd = &cobra.Command{
	Use:   "probe [port]",
	Short: "Find the arm controller",
	Long: `Look for the arm controller and print its port.

With no argument, every port matching the discovery glob is opened in turn,
sent ROBOFORTH and checked for the banner, provided the controller's USB
adapter is attached. With a port argument only that port is checked.

Examples:
  r12 probe
  r12 probe /dev/ttyUSB1`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := newSession()
		if err != nil {
			return err
		}
		prober := session.Prober()

		if len(args) == 1 {
			ok, err := prober.Probe(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s: %w", args[0], r12.ErrNoResponse)
			}
			fmt.Fprintln(cmd.OutOrStdout(), args[0])
			return nil
		}

		path, err := prober.Search()
		if err != nil {
			return err
		}
		if path == "" {
			return r12.ErrArmNotFound
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
