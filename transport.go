package r12

import (
	"fmt"
	"strings"
)

// Transport is the byte channel to the controller. Read must not block: it
// returns whatever is buffered, possibly nothing.
type Transport interface {
	Write(p []byte) (int, error)
	Read(p []byte) (int, error)
	// InWaiting reports how many received bytes can be read without blocking.
	InWaiting() (int, error)
	IsOpen() bool
	Close() error
}

// Opener opens a transport on path with the given line configuration.
type Opener func(path string, line LineConfig) (Transport, error)

// Transport driver names.
const (
	DriverNative = "native"
	DriverBugst  = "bugst"
)

// Drivers lists the supported driver names.
var Drivers = []string{DriverNative, DriverBugst}

// OpenerFor resolves a driver name to its Opener. An empty name selects the
// native driver.
func OpenerFor(driver string) (Opener, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverNative:
		return OpenNative, nil
	case DriverBugst:
		return OpenBugst, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}

// readAvailable reads exactly what the transport reports as waiting.
func readAvailable(t Transport) ([]byte, error) {
	n, err := t.InWaiting()
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	got, err := t.Read(buf)
	if got < 0 {
		got = 0
	}
	return buf[:got], err
}
