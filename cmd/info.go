/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/allbin/go-r12/serial"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display detailed information about a serial port",
	Long: `Display detailed information about a serial port including USB metadata,
and whether its adapter matches the arm controller's USB identity.

Examples:
  r12 info /dev/ttyUSB0

For USB devices, vendor/product IDs, serial numbers, interface numbers and
bus/device numbers are read from sysfs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := serial.GetPortInfo(args[0])
		if err != nil {
			return fmt.Errorf("getting port info: %w", err)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Port Information: %s\n\n", info.Path)
		fmt.Fprintf(w, "  Name:        %s\n", info.Name)
		fmt.Fprintf(w, "  Description: %s\n", info.Description)
		fmt.Fprintf(w, "  Arm adapter: %s\n", yesNo(isArmAdapter(info)))

		if !info.IsUSB() {
			return nil
		}
		fmt.Fprintln(w, "\nUSB Device Information:")
		for _, f := range []struct{ label, value string }{
			{"Vendor ID", info.VendorID},
			{"Product ID", info.ProductID},
			{"Serial", info.SerialNumber},
			{"Interface", info.InterfaceNumber},
			{"Bus", info.BusNumber},
			{"Device", info.DeviceNumber},
			{"Manufacturer", info.Manufacturer},
			{"Product", info.Product},
		} {
			if f.value != "" {
				fmt.Fprintf(w, "  %-13s %s\n", f.label+":", f.value)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
