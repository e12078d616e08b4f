/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	r12 "github.com/allbin/go-r12"
	"github.com/allbin/go-r12/serial"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset [port]",
	Short: "Reset the controller's USB serial adapter",
	Long: `Perform a USB-level reset on the arm controller's serial adapter. This can
recover an adapter that is hung without unplugging it.

With no port the configured port is used, or the arm is discovered. The
adapter re-enumerates after the reset and its port path may change; use
--serial to pick the adapter by USB serial number instead.

Requirements:
- usbreset utility must be installed (from usbutils package)
- Root/sudo permissions required for USB operations

Examples:
  sudo r12 reset
  sudo r12 reset /dev/ttyUSB0
  sudo r12 reset --serial A6008isP`,
	Args: func(cmd *cobra.Command, args []string) error {
		serialFlag, _ := cmd.Flags().GetString("serial")
		if serialFlag != "" && len(args) > 0 {
			return errors.New("cannot specify both port path and --serial flag")
		}
		return cobra.MaximumNArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !serial.IsUSBResetAvailable() {
			return fmt.Errorf("%w: install with: sudo apt-get install usbutils", serial.ErrUSBResetNotAvailable)
		}
		w := cmd.OutOrStdout()

		if serialFlag, _ := cmd.Flags().GetString("serial"); serialFlag != "" {
			fmt.Fprintf(w, "Resetting USB device with serial: %s\n", serialFlag)
			if err := serial.ResetUSBDeviceBySerial(serialFlag); err != nil {
				return err
			}
			return resetDone(w)
		}

		portPath, err := resetTarget(args)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Resetting USB device: %s\n", portPath)
		if err := serial.ResetUSBDevice(portPath); err != nil {
			if errors.Is(err, serial.ErrUSBInfoNotAvailable) {
				return fmt.Errorf("%s does not appear to be a USB device: %w", portPath, err)
			}
			return err
		}
		return resetDone(w)
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().StringP("serial", "s", "", "Reset device by USB serial number")
}

// resetTarget picks the argument, the configured port or the discovered one.
func resetTarget(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if cfg.Port != "" {
		return cfg.Port, nil
	}
	session, err := newSession()
	if err != nil {
		return "", err
	}
	path, err := session.Prober().Search()
	if err != nil {
		return "", err
	}
	if path == "" {
		return "", r12.ErrArmNotFound
	}
	return path, nil
}

func resetDone(w io.Writer) error {
	fmt.Fprintln(w, "USB device reset successfully")
	fmt.Fprintln(w, "Device will re-enumerate (port path may change)")
	fmt.Fprintln(w, "\nUse 'r12 list --table' to see updated device list")
	return nil
}
