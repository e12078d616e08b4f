/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send <command...>",
	Short: "Send one command to the arm and print the reply",
	Long: `Send one ROBOFORTH command and print the reply.

The words are joined with spaces, upper-cased and terminated with CR LF. The
reply is printed once the controller answers OK or ABORTED, or when the read
timeout expires; a timeout is reported on stderr but is not an error.

Examples:
  r12 send HOME
  r12 send 5000 SPEED !
  r12 send --timeout 2m CALIBRATE
  r12 send --raw WHERE`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timeout, _ := cmd.Flags().GetDuration("timeout")
		raw, _ := cmd.Flags().GetBool("raw")

		session, err := newSession()
		if err != nil {
			return err
		}
		if _, err := connect(session); err != nil {
			return err
		}
		defer session.Disconnect()

		resp, err := session.Exchange(strings.Join(args, " "), timeout)
		if err != nil {
			return err
		}
		if raw {
			fmt.Fprintf(cmd.OutOrStdout(), "%q\n", resp.Raw)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
		}
		if !resp.Framed {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: no OK or ABORTED after %s\n", resp.Elapsed.Round(time.Millisecond))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().DurationP("timeout", "t", 0, "read timeout (default: the configured read timeout)")
	sendCmd.Flags().Bool("raw", false, "print the raw reply bytes, quoted")
}
