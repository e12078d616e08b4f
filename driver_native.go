package r12

import (
	"fmt"

	"github.com/allbin/go-r12/serial"
)

// OpenNative opens path with the termios driver in package serial. The tty is
// claimed exclusively so a second console cannot interleave traffic.
func OpenNative(path string, line LineConfig) (Transport, error) {
	p, err := serial.Open(path,
		serial.WithBaudRate(line.BaudRate),
		serial.WithDataBits(line.DataBits),
		serial.WithStopBits(line.StopBits),
		serial.WithParity(line.Parity),
		serial.WithNonBlockingRead(),
		serial.WithExclusive(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}
	return p, nil
}
