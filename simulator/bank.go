package simulator

import (
	"fmt"
	"sync"
)

// Bank is a set of simulated devices keyed by path.
type Bank struct {
	mu      sync.Mutex
	order   []string
	devices map[string]*Device
	opens   map[string]int
}

// NewBank returns an empty bank.
func NewBank() *Bank {
	return &Bank{
		devices: make(map[string]*Device),
		opens:   make(map[string]int),
	}
}

// Add registers d at path. Paths keep their insertion order.
func (b *Bank) Add(path string, d *Device) *Bank {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.devices[path]; !ok {
		b.order = append(b.order, path)
	}
	b.devices[path] = d
	return b
}

// Open opens the device at path.
func (b *Bank) Open(path string) (*Device, error) {
	b.mu.Lock()
	d, ok := b.devices[path]
	if ok {
		b.opens[path]++
	}
	b.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoDevice, path)
	}
	d.reopen()
	return d, nil
}

// Device returns the device registered at path, or nil.
func (b *Bank) Device(path string) *Device {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.devices[path]
}

// Opens counts successful opens of path.
func (b *Bank) Opens(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opens[path]
}

// TotalOpens counts successful opens across all paths.
func (b *Bank) TotalOpens() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := 0
	for _, n := range b.opens {
		total += n
	}
	return total
}

// Paths lists registered paths in insertion order. It has the shape of a
// discovery expander and ignores the pattern.
func (b *Bank) Paths(string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.order...), nil
}
