// Package serial is the termios-level serial port used by the native transport
// driver.
//
// Ports are opened in raw mode with no flow control. With a zero read timeout
// (the default) Read returns immediately with whatever the driver has buffered,
// and InWaiting reports the size of the kernel input queue (TIOCINQ), so callers
// can poll without blocking:
//
//	port, err := serial.Open("/dev/ttyUSB0",
//	    serial.WithBaudRate(19200),
//	    serial.WithStopBits(2),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	n, _ := port.InWaiting()
//	buf := make([]byte, n)
//	n, err = port.Read(buf)
//
// # Port Discovery
//
//	ports, err := serial.ListPorts()
//	for _, portPath := range ports {
//	    info, _ := serial.GetPortInfo(portPath)
//	    fmt.Printf("%s: %s (VID=%s PID=%s Serial=%s)\n",
//	        info.Path, info.Description, info.VendorID, info.ProductID, info.SerialNumber)
//	}
//
// USB metadata is read from sysfs and is Linux-only. ResetUSBDevice needs the
// usbreset utility from usbutils and root permissions.
//
// # Errors
//
// Open maps common errno values onto ErrDeviceNotFound, ErrPermissionDenied and
// ErrDeviceInUse; use errors.Is to test for them.
package serial
