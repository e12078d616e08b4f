/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"

	"github.com/allbin/go-r12/internal/config"
	"github.com/allbin/go-r12/serial"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List serial ports, marking likely arm controllers",
	Long: `List the serial ports on the system.

Ports whose USB adapter matches the configured controller identity
(0403:6001 by default) are marked as arm candidates. Virtual terminals and
pseudo-terminals are not listed.

Examples:
  r12 list
  r12 list --filter usb
  r12 list --table`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := serial.ListPorts()
		if err != nil {
			return fmt.Errorf("listing ports: %w", err)
		}

		filterType, _ := cmd.Flags().GetString("filter")
		tableFormat, _ := cmd.Flags().GetBool("table")

		infos := filterPorts(portInfos(ports), filterType)
		w := cmd.OutOrStdout()
		if len(infos) == 0 {
			if filterType != "" && filterType != "all" {
				fmt.Fprintf(w, "No serial ports found matching filter: %s\n", filterType)
			} else {
				fmt.Fprintln(w, "No serial ports found")
			}
			return nil
		}

		if tableFormat {
			renderTable(w, infos)
		} else {
			renderSimple(w, infos)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("filter", "f", "", "Filter by port type: usb, arm, standard, all")
	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

// portInfos looks up each port, skipping ports that vanished meanwhile.
func portInfos(ports []string) []*serial.PortInfo {
	var infos []*serial.PortInfo
	for _, p := range ports {
		info, err := serial.GetPortInfo(p)
		if err != nil {
			log.Debug("port info", "port", p, "error", err)
			continue
		}
		infos = append(infos, info)
	}
	return infos
}

// isArmAdapter reports whether the port's USB identity is the controller's.
func isArmAdapter(info *serial.PortInfo) bool {
	if !info.IsUSB() || cfg == nil {
		return false
	}
	vid, err := config.ParseUSBID(cfg.Discovery.VendorID)
	if err != nil {
		return false
	}
	pid, err := config.ParseUSBID(cfg.Discovery.ProductID)
	if err != nil {
		return false
	}
	return strings.EqualFold(info.VendorID, fmt.Sprintf("%04x", vid)) &&
		strings.EqualFold(info.ProductID, fmt.Sprintf("%04x", pid))
}

// filterPorts filters the port list based on the specified filter type
func filterPorts(infos []*serial.PortInfo, filterType string) []*serial.PortInfo {
	if filterType == "" || filterType == "all" {
		return infos
	}

	var filtered []*serial.PortInfo
	for _, info := range infos {
		name := strings.ToLower(info.Name)
		switch strings.ToLower(filterType) {
		case "usb":
			if strings.HasPrefix(name, "ttyusb") || strings.HasPrefix(name, "ttyacm") {
				filtered = append(filtered, info)
			}
		case "arm":
			if isArmAdapter(info) {
				filtered = append(filtered, info)
			}
		case "standard":
			if strings.HasPrefix(name, "ttys") {
				filtered = append(filtered, info)
			}
		}
	}
	return filtered
}

const (
	columnKeyPort   = "port"
	columnKeyType   = "type"
	columnKeyUSB    = "usb"
	columnKeyDesc   = "desc"
	columnKeyArm    = "arm"
	armCandidateTag = "R12?"
)

// renderTable renders the port list as a static bubble-table.
func renderTable(w io.Writer, infos []*serial.PortInfo) {
	fmt.Fprintf(w, "Found %d serial port(s):\n\n", len(infos))

	columns := []table.Column{
		table.NewColumn(columnKeyPort, "Port", 15),
		table.NewColumn(columnKeyType, "Type", 16),
		table.NewColumn(columnKeyUSB, "USB ID", 11),
		table.NewColumn(columnKeyDesc, "Description", 30),
		table.NewColumn(columnKeyArm, "Arm", 6),
	}

	armStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	rows := make([]table.Row, 0, len(infos))
	for _, info := range infos {
		usbID := ""
		if info.IsUSB() {
			usbID = info.VendorID + ":" + info.ProductID
		}
		desc := info.Description
		if info.Product != "" {
			desc = info.Product
		}
		data := table.RowData{
			columnKeyPort: info.Path,
			columnKeyType: getPortType(info.Name),
			columnKeyUSB:  usbID,
			columnKeyDesc: desc,
			columnKeyArm:  "",
		}
		if isArmAdapter(info) {
			data[columnKeyArm] = table.NewStyledCell(armCandidateTag, armStyle)
		}
		rows = append(rows, table.NewRow(data))
	}

	t := table.New(columns).
		WithRows(rows).
		BorderRounded().
		HeaderStyle(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")))
	fmt.Fprintln(w, t.View())
}

// renderSimple prints one port per line, candidates marked.
func renderSimple(w io.Writer, infos []*serial.PortInfo) {
	for _, info := range infos {
		if isArmAdapter(info) {
			fmt.Fprintf(w, "%s\t%s\n", info.Path, armCandidateTag)
			continue
		}
		fmt.Fprintln(w, info.Path)
	}
}

// getPortType returns a more specific type classification for the port
func getPortType(name string) string {
	name = strings.ToLower(name)
	switch {
	case strings.HasPrefix(name, "ttyusb"):
		return "USB Serial"
	case strings.HasPrefix(name, "ttyacm"):
		return "USB CDC/ACM"
	case strings.HasPrefix(name, "ttyama"):
		return "ARM Serial"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial"
	case strings.HasPrefix(name, "ttysac"):
		return "Samsung Serial"
	case strings.HasPrefix(name, "ttyths"):
		return "Tegra Serial"
	case strings.HasPrefix(name, "ttyo"):
		return "OMAP Serial"
	case strings.HasPrefix(name, "ttys"):
		return "Standard Serial"
	default:
		return "Serial Port"
	}
}
