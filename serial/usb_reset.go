package serial

import (
	"fmt"
	"os/exec"
	"time"
)

// usbResetSettle is how long re-enumeration is given after a reset
var usbResetSettle = 2 * time.Second

// ResetUSBDevice performs a USB-level reset of the adapter behind portPath.
// This can recover an adapter that is in a hung/unresponsive state.
//
// Requires the usbreset utility (usbutils) and, typically, root.
func ResetUSBDevice(portPath string) error {
	info, err := GetPortInfo(portPath)
	if err != nil {
		return fmt.Errorf("failed to get port info: %w", err)
	}

	if info.BusNumber == "" || info.DeviceNumber == "" {
		return ErrUSBInfoNotAvailable
	}

	if !IsUSBResetAvailable() {
		return ErrUSBResetNotAvailable
	}

	cmd := exec.Command("usbreset", usbDevicePath(info.BusNumber, info.DeviceNumber))
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("usbreset failed: %w (output: %s)", err, string(output))
	}

	time.Sleep(usbResetSettle)

	return nil
}

// ResetUSBDeviceBySerial resets a USB device by its serial number
// Useful when device paths change after reboot or when multiple devices are connected
func ResetUSBDeviceBySerial(serialNumber string) error {
	ports, err := ListPorts()
	if err != nil {
		return err
	}

	for _, portPath := range ports {
		info, err := GetPortInfo(portPath)
		if err != nil {
			continue
		}

		if info.SerialNumber == serialNumber {
			return ResetUSBDevice(portPath)
		}
	}

	return fmt.Errorf("device with serial %s not found", serialNumber)
}

// IsUSBResetAvailable checks if usbreset utility is available in PATH
func IsUSBResetAvailable() bool {
	_, err := exec.LookPath("usbreset")
	return err == nil
}

// usbDevicePath formats bus and device numbers as usbreset expects (BBB/DDD)
func usbDevicePath(bus, device string) string {
	pad := func(s string) string {
		for len(s) < 3 {
			s = "0" + s
		}
		return s
	}
	return pad(bus) + "/" + pad(device)
}
