package simulator

import (
	"errors"
	"strings"
	"sync"
)

var (
	ErrClosed   = errors.New("simulated port closed")
	ErrNoDevice = errors.New("no simulated device at path")
)

// Responder maps one received line, without its line ending, to the
// controller output for it. An empty reply means silence.
type Responder func(line string) string

// Device is one simulated controller port. Its methods satisfy r12.Transport.
type Device struct {
	mu sync.Mutex

	respond Responder
	open    bool

	// Polls before a queued reply becomes readable, and bytes released per
	// poll (0 means all).
	delay int
	chunk int

	partial  []byte
	queued   []pending
	readable []byte

	lines  []string
	writes int
	closes int
}

type pending struct {
	data  []byte
	after int
}

// DeviceOption configures a Device.
type DeviceOption func(*Device)

// WithResponder replaces the default ROBOFORTH responder.
func WithResponder(r Responder) DeviceOption {
	return func(d *Device) { d.respond = r }
}

// WithDelay holds each reply back for the given number of polls.
func WithDelay(polls int) DeviceOption {
	return func(d *Device) { d.delay = polls }
}

// WithChunkSize releases replies at most n bytes per poll.
func WithChunkSize(n int) DeviceOption {
	return func(d *Device) { d.chunk = n }
}

// NewDevice returns an open device answering like ROBOFORTH.
func NewDevice(opts ...DeviceOption) *Device {
	d := &Device{respond: RoboForth(), open: true}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Write consumes host output. Every complete line is passed to the responder.
func (d *Device) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return 0, ErrClosed
	}
	d.writes++
	d.partial = append(d.partial, p...)
	for {
		i := strings.Index(string(d.partial), "\n")
		if i < 0 {
			break
		}
		line := strings.TrimRight(string(d.partial[:i]), "\r")
		d.partial = d.partial[i+1:]
		d.lines = append(d.lines, line)
		if reply := d.respond(line); reply != "" {
			d.queued = append(d.queued, pending{data: []byte(reply), after: d.delay})
		}
	}
	return len(p), nil
}

// InWaiting advances the simulation by one poll and reports readable bytes.
func (d *Device) InWaiting() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return 0, ErrClosed
	}
	d.tick()
	return len(d.readable), nil
}

// Read returns readable bytes without blocking.
func (d *Device) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return 0, ErrClosed
	}
	n := copy(p, d.readable)
	d.readable = d.readable[n:]
	return n, nil
}

func (d *Device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return ErrClosed
	}
	d.open = false
	d.closes++
	return nil
}

// Inject makes output readable immediately, as if the controller had sent it
// unprompted.
func (d *Device) Inject(s string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.readable = append(d.readable, s...)
}

// Lines returns every line received so far.
func (d *Device) Lines() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.lines...)
}

// Writes counts Write calls.
func (d *Device) Writes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writes
}

// Closes counts Close calls that closed the device.
func (d *Device) Closes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closes
}

func (d *Device) reopen() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = true
	d.partial = nil
}

// tick moves due replies into the readable buffer. Only the head of the queue
// advances so replies stay ordered.
func (d *Device) tick() {
	if len(d.queued) == 0 {
		return
	}
	head := &d.queued[0]
	if head.after > 0 {
		head.after--
		return
	}
	n := len(head.data)
	if d.chunk > 0 && d.chunk < n {
		n = d.chunk
	}
	d.readable = append(d.readable, head.data[:n]...)
	head.data = head.data[n:]
	if len(head.data) == 0 {
		d.queued = d.queued[1:]
	}
}
