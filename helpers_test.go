package r12

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/allbin/go-r12/logger"
	"github.com/allbin/go-r12/simulator"
)

func simOpener(b *simulator.Bank) Opener {
	return func(path string, _ LineConfig) (Transport, error) {
		d, err := b.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
		}
		return d, nil
	}
}

func attached(ok bool) Identifier {
	return func(uint16, uint16) (bool, error) { return ok, nil }
}

func newTestSession(t *testing.T, b *simulator.Bank, opts ...Option) *Session {
	t.Helper()
	base := []Option{
		WithOpener(simOpener(b)),
		WithIdentifier(attached(true)),
		WithExpander(b.Paths),
		WithProbeSettle(0),
		WithPollInterval(5 * time.Millisecond),
		WithReadTimeout(2 * time.Second),
		WithLogger(logger.Nop()),
	}
	s, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return s
}

// fakeClock advances only when the reader sleeps.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
}

func newFakeReader(policy FramingPolicy, poll time.Duration) (*ResponseReader, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := NewResponseReader(policy, poll)
	r.now = clock.Now
	r.sleep = clock.Sleep
	return r, clock
}

// recorder is a Transport that records writes and serves a fixed input.
type recorder struct {
	mu      sync.Mutex
	written []byte
	input   []byte
	closed  bool
	err     error
}

func (r *recorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	r.written = append(r.written, p...)
	return len(p), nil
}

func (r *recorder) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := copy(p, r.input)
	r.input = r.input[n:]
	return n, nil
}

func (r *recorder) InWaiting() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	return len(r.input), nil
}

func (r *recorder) IsOpen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed
}

func (r *recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
