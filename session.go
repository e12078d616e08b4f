package r12

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/allbin/go-r12/logger"
)

// Info is a snapshot of the session state.
type Info struct {
	Connected    bool
	Endpoint     string
	BytesWaiting int
}

// Session owns at most one open transport to the controller.
//
// The mutex covers individual transport calls only, not a whole read, so a
// Write (typically STOP) may be issued while another goroutine is waiting in
// ReadResponse. The pending read then completes on the controller's reply.
type Session struct {
	mu        sync.Mutex
	transport Transport
	endpoint  string

	opts   options
	reader *ResponseReader
	prober *Prober
	log    logger.Logger
}

// New returns a disconnected session.
func New(opts ...Option) (*Session, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	if o.log == nil {
		o.log = logger.GetLogger()
	}

	prober := NewProber(o.opener)
	prober.Glob = o.glob
	prober.Request = o.probeRequest
	prober.Expect = o.probeExpect
	prober.VendorID = o.vendorID
	prober.ProductID = o.productID
	prober.Settle = o.settle
	prober.Identify = o.identify
	prober.Expand = o.expand
	prober.Log = o.log

	return &Session{
		opts:   o,
		reader: NewResponseReader(o.framing, o.pollInterval),
		prober: prober,
		log:    o.log,
	}, nil
}

// Prober returns the discovery prober the session uses when connecting
// without an explicit path.
func (s *Session) Prober() *Prober { return s.prober }

// ReadTimeout returns the timeout used for reads given a non-positive timeout.
func (s *Session) ReadTimeout() time.Duration { return s.opts.readTimeout }

// Framing returns the response framing policy.
func (s *Session) Framing() FramingPolicy { return s.reader.Policy() }

// Connect opens the controller link on path, or discovers it when path is
// empty. It returns the endpoint actually opened.
func (s *Session) Connect(path string) (string, error) {
	if s.IsConnected() {
		return "", ErrAlreadyConnected
	}

	s.dropStale()

	if path == "" {
		found, err := s.prober.Search()
		if err != nil {
			return "", err
		}
		if found == "" {
			return "", ErrArmNotFound
		}
		path = found
	}

	t, err := s.opts.opener(path, ControllerLine)
	if err != nil {
		if errors.Is(err, ErrOpenFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %s: %w", ErrOpenFailed, path, err)
	}
	if !t.IsOpen() {
		t.Close()
		return "", fmt.Errorf("%w: %s", ErrOpenFailed, path)
	}

	s.mu.Lock()
	s.transport = t
	s.endpoint = path
	s.mu.Unlock()

	s.log.Info("connected", "endpoint", path, "line", ControllerLine.String())
	return path, nil
}

// dropStale forgets a transport that closed underneath the session.
func (s *Session) dropStale() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport != nil && !s.transport.IsOpen() {
		s.transport.Close()
		s.transport = nil
		s.endpoint = ""
	}
}

// Disconnect closes the transport. It returns ErrNotConnected when there is
// nothing to close. A transport that already closed is simply forgotten.
func (s *Session) Disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transport == nil {
		return ErrNotConnected
	}
	endpoint := s.endpoint
	var err error
	// a link that dropped underneath us has nothing left to close
	if s.transport.IsOpen() {
		err = s.transport.Close()
	}
	s.transport = nil
	s.endpoint = ""
	if err != nil {
		return fmt.Errorf("disconnect %s: %w", endpoint, err)
	}
	s.log.Info("disconnected", "endpoint", endpoint)
	return nil
}

// IsConnected reports whether a transport is present and open.
func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connectedLocked()
}

func (s *Session) connectedLocked() bool {
	return s.transport != nil && s.transport.IsOpen()
}

// Endpoint returns the connected device path, or "".
func (s *Session) Endpoint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connectedLocked() {
		return ""
	}
	return s.endpoint
}

// Write sends text upper-cased and CRLF-terminated.
func (s *Session) Write(text string) error {
	data := []byte(strings.ToUpper(text) + lineEnding)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return ErrNotConnected
	}
	if _, err := s.transport.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	s.log.Debug("tx", "data", string(data))
	return nil
}

// ReadResponse reads one framed response. A non-positive timeout selects the
// session read timeout. Hitting the timeout is not an error; check Framed.
func (s *Session) ReadResponse(timeout time.Duration) (*Response, error) {
	s.mu.Lock()
	connected := s.transport != nil
	s.mu.Unlock()
	if !connected {
		return nil, ErrNotConnected
	}
	if timeout <= 0 {
		timeout = s.opts.readTimeout
	}

	resp, err := s.reader.ReadResponse(lockedTransport{s}, timeout)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if resp.Framed {
		s.log.Debug("rx", "data", resp.Text, "terminator", resp.Terminator, "elapsed", resp.Elapsed)
	} else {
		s.log.Warn("read timed out before a complete response",
			"timeout", timeout, "bytes", len(resp.Raw))
	}
	return resp, nil
}

// Read returns the text of one response.
func (s *Session) Read(timeout time.Duration) (string, error) {
	resp, err := s.ReadResponse(timeout)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// ReadRaw returns the bytes of one response.
func (s *Session) ReadRaw(timeout time.Duration) ([]byte, error) {
	resp, err := s.ReadResponse(timeout)
	if err != nil {
		return nil, err
	}
	return resp.Raw, nil
}

// Exchange writes text and reads the reply.
func (s *Session) Exchange(text string, timeout time.Duration) (*Response, error) {
	if err := s.Write(text); err != nil {
		return nil, err
	}
	return s.ReadResponse(timeout)
}

// DumpRaw returns whatever bytes are waiting, without waiting for more.
func (s *Session) DumpRaw() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return nil, ErrNotConnected
	}
	raw, err := readAvailable(s.transport)
	if err != nil {
		return nil, fmt.Errorf("dump: %w", err)
	}
	return raw, nil
}

// Dump is DumpRaw decoded as Latin-1.
func (s *Session) Dump() (string, error) {
	raw, err := s.DumpRaw()
	if err != nil {
		return "", err
	}
	return decodeLatin1(raw), nil
}

// Info reports the session state. Errors querying the transport are logged and
// reported as zero bytes waiting.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connectedLocked() {
		return Info{}
	}
	n, err := s.transport.InWaiting()
	if err != nil {
		s.log.Warn("query input queue", "endpoint", s.endpoint, "error", err)
		n = 0
	}
	return Info{Connected: true, Endpoint: s.endpoint, BytesWaiting: n}
}

// lockedTransport takes the session lock around each call.
type lockedTransport struct{ s *Session }

func (l lockedTransport) Write(p []byte) (int, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if l.s.transport == nil {
		return 0, ErrNotConnected
	}
	return l.s.transport.Write(p)
}

func (l lockedTransport) Read(p []byte) (int, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if l.s.transport == nil {
		return 0, ErrNotConnected
	}
	return l.s.transport.Read(p)
}

func (l lockedTransport) InWaiting() (int, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if l.s.transport == nil {
		return 0, ErrNotConnected
	}
	return l.s.transport.InWaiting()
}

func (l lockedTransport) IsOpen() bool {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.s.connectedLocked()
}

func (l lockedTransport) Close() error {
	return l.s.Disconnect()
}
