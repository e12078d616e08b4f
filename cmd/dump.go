/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print whatever the arm has sent, without waiting",
	Long: `Connect to the arm and print every byte already waiting on the line.
Nothing is written and nothing is waited for.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")

		session, err := newSession()
		if err != nil {
			return err
		}
		if _, err := connect(session); err != nil {
			return err
		}
		defer session.Disconnect()

		if raw {
			data, err := session.DumpRaw()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%q\n", data)
			return nil
		}
		out, err := session.Dump()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().Bool("raw", false, "print the raw bytes, quoted")
}
