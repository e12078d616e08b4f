package r12

import (
	"fmt"
	"sync"

	"github.com/allbin/go-r12/serial"
	bugst "go.bug.st/serial"
)

// bugstTransport adapts go.bug.st/serial. That library has no input-queue
// query, so InWaiting drains the port into pending and reports its length.
type bugstTransport struct {
	mu      sync.Mutex
	port    bugst.Port
	pending []byte
	closed  bool
}

var _ Transport = (*bugstTransport)(nil)

// OpenBugst opens path with the go.bug.st/serial driver.
func OpenBugst(path string, line LineConfig) (Transport, error) {
	mode := &bugst.Mode{
		BaudRate: line.BaudRate,
		DataBits: line.DataBits,
		Parity:   bugstParity(line.Parity),
		StopBits: bugstStopBits(line.StopBits),
	}
	p, err := bugst.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenFailed, path, err)
	}
	// A zero timeout turns Read into a poll.
	if err := p.SetReadTimeout(0); err != nil {
		p.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrOpenFailed, path, err)
	}
	return &bugstTransport{port: p}, nil
}

func bugstParity(p serial.Parity) bugst.Parity {
	switch p {
	case serial.ParityOdd:
		return bugst.OddParity
	case serial.ParityEven:
		return bugst.EvenParity
	default:
		return bugst.NoParity
	}
}

func bugstStopBits(bits int) bugst.StopBits {
	if bits == 2 {
		return bugst.TwoStopBits
	}
	return bugst.OneStopBit
}

func (b *bugstTransport) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, serial.ErrPortClosed
	}
	written := 0
	for written < len(p) {
		n, err := b.port.Write(p[written:])
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func (b *bugstTransport) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, serial.ErrPortClosed
	}
	if err := b.fill(); err != nil {
		return 0, err
	}
	n := copy(p, b.pending)
	b.pending = b.pending[n:]
	return n, nil
}

func (b *bugstTransport) InWaiting() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, serial.ErrPortClosed
	}
	if err := b.fill(); err != nil {
		return 0, err
	}
	return len(b.pending), nil
}

// fill moves everything the driver has buffered into pending.
func (b *bugstTransport) fill() error {
	buf := make([]byte, 256)
	for {
		n, err := b.port.Read(buf)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		b.pending = append(b.pending, buf[:n]...)
	}
}

func (b *bugstTransport) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed
}

func (b *bugstTransport) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return serial.ErrPortClosed
	}
	b.closed = true
	b.pending = nil
	return b.port.Close()
}
