package console

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	r12 "github.com/allbin/go-r12"
	"github.com/allbin/go-r12/logger"
	"github.com/allbin/go-r12/simulator"
)

const testPort = "/dev/ttyUSB0"

func newSimSession(t *testing.T, dev *simulator.Device) *r12.Session {
	t.Helper()
	bank := simulator.NewBank().Add(testPort, dev)
	s, err := r12.New(
		r12.WithOpener(func(path string, _ r12.LineConfig) (r12.Transport, error) {
			d, err := bank.Open(path)
			if err != nil {
				return nil, err
			}
			return d, nil
		}),
		r12.WithIdentifier(func(uint16, uint16) (bool, error) { return true, nil }),
		r12.WithExpander(bank.Paths),
		r12.WithProbeSettle(0),
		r12.WithPollInterval(2*time.Millisecond),
		r12.WithReadTimeout(time.Second),
		r12.WithLogger(logger.Nop()),
	)
	require.NoError(t, err)
	return s
}

func newTestConsole(dev Device, opts ...Option) *Console {
	base := []Option{WithStyles(PlainStyles()), WithVersion("1.2.3"), WithLogger(logger.Nop())}
	return New(dev, append(base, opts...)...)
}

func run(c *Console, line string) (string, bool) {
	var buf bytes.Buffer
	stop := c.Execute(&buf, line)
	return buf.String(), stop
}

func TestConsoleConnectForwardDisconnect(t *testing.T) {
	dev := simulator.NewDevice()
	c := newTestConsole(newSimSession(t, dev))

	out, _ := run(c, "connect")
	assert.Equal(t, "Success: Connected to '/dev/ttyUSB0'.\n", out)

	out, _ = run(c, "connect")
	assert.Equal(t, "Error: Arm is already connected.\n", out)

	out, _ = run(c, "HOME")
	assert.Equal(t, "HOME OK\n", out)

	out, _ = run(c, "TELL ELBOW 100 MOVE")
	assert.Equal(t, "TELL ELBOW 100 MOVE OK\n", out)

	out, _ = run(c, "disconnect")
	assert.Equal(t, "Success: Disconnected.\n", out)

	out, _ = run(c, "disconnect")
	assert.Equal(t, "Error: Arm is already disconnected.\n", out)

	assert.Equal(t, []string{"ROBOFORTH", "HOME", "TELL ELBOW 100 MOVE"}, dev.Lines())
}

func TestConsoleConnectExplicitPort(t *testing.T) {
	c := newTestConsole(newSimSession(t, simulator.NewDevice()))

	out, _ := run(c, "connect /dev/ttyUSB9")
	assert.True(t, strings.HasPrefix(out, "Error: "), out)

	out, _ = run(c, "connect "+testPort)
	assert.Equal(t, "Success: Connected to '/dev/ttyUSB0'.\n", out)
}

func TestConsoleConfiguredPort(t *testing.T) {
	dev := simulator.NewDevice()
	c := newTestConsole(newSimSession(t, dev), WithPort(testPort))

	out, _ := run(c, "connect")
	assert.Equal(t, "Success: Connected to '/dev/ttyUSB0'.\n", out)
	// No discovery probe was sent.
	assert.Empty(t, dev.Lines())
}

func TestConsoleNotConnected(t *testing.T) {
	c := newTestConsole(newSimSession(t, simulator.NewDevice()))

	for _, line := range []string{"HOME", "dump", "run script.fs"} {
		out, stop := run(c, line)
		assert.Equal(t, "Error: Arm is not connected.\n", out, line)
		assert.False(t, stop)
	}
}

func TestConsoleUnrecognized(t *testing.T) {
	c := newTestConsole(newSimSession(t, simulator.NewDevice()))

	for _, line := range []string{"home", "Home", "123", "connect!"} {
		out, _ := run(c, line)
		assert.Equal(t, "Error: Unrecognized command.\n", out, line)
	}

	out, stop := run(c, "   ")
	assert.Empty(t, out)
	assert.False(t, stop)
}

func TestConsoleExit(t *testing.T) {
	dev := simulator.NewDevice()
	s := newSimSession(t, dev)
	c := newTestConsole(s)
	_, err := s.Connect(testPort)
	require.NoError(t, err)

	out, stop := run(c, "exit")
	assert.True(t, stop)
	assert.Equal(t, "Bye!\n", out)
	assert.False(t, s.IsConnected())

	out, stop = run(c, "EOF")
	assert.True(t, stop)
	assert.Equal(t, "\nBye!\n", out)

	out, stop = run(c, "quit")
	assert.False(t, stop)
	assert.Equal(t, "Use 'exit' to close the shell.\n", out)
}

func TestConsoleStatus(t *testing.T) {
	dev := simulator.NewDevice()
	s := newSimSession(t, dev)
	c := newTestConsole(s)

	out, _ := run(c, "status")
	assert.Equal(t, "\nArm Status\n"+
		"Connected      false\n"+
		"Port           \n"+
		"Bytes Waiting  0\n\n", out)

	_, err := s.Connect(testPort)
	require.NoError(t, err)
	dev.Inject("OK>")

	out, _ = run(c, "status")
	assert.Contains(t, out, "Connected      true\n")
	assert.Contains(t, out, "Port           /dev/ttyUSB0\n")
	assert.Contains(t, out, "Bytes Waiting  3\n")
}

func TestConsoleDump(t *testing.T) {
	dev := simulator.NewDevice()
	s := newSimSession(t, dev)
	c := newTestConsole(s)
	_, err := s.Connect(testPort)
	require.NoError(t, err)

	dev.Inject("LEFTOVER")
	out, _ := run(c, "dump")
	assert.Equal(t, "LEFTOVER\n", out)
}

func TestConsoleVersion(t *testing.T) {
	c := newTestConsole(newSimSession(t, simulator.NewDevice()))
	out, _ := run(c, "version")
	assert.True(t, strings.HasPrefix(out, "R12 1.2.3\nGo "), out)
}

func TestConsoleHelp(t *testing.T) {
	c := newTestConsole(newSimSession(t, simulator.NewDevice()))
	out, _ := run(c, "help")
	assert.Contains(t, out, "Shell Commands\n")
	assert.Contains(t, out, "Forth Commands\n")
	assert.Contains(t, out, "CALIBRATE    Find the home position of every joint.\n")
}

func TestConsoleRun(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "square.fs")
	require.NoError(t, os.WriteFile(script, []byte("home\n\n  TELL WAIST 500 MOVE  \nready\n"), 0o600))

	dev := simulator.NewDevice()
	s := newSimSession(t, dev)
	c := newTestConsole(s)
	_, err := s.Connect(testPort)
	require.NoError(t, err)

	out, _ := run(c, "run "+script)
	assert.Equal(t, "HOME OK\nTELL WAIST 500 MOVE OK\nREADY OK\n", out)
	assert.Equal(t, []string{"HOME", "TELL WAIST 500 MOVE", "READY"}, dev.Lines())

	out, _ = run(c, "run "+filepath.Join(dir, "missing.fs"))
	assert.Equal(t, "Error: Could not load file '"+filepath.Join(dir, "missing.fs")+"'.\n", out)
}

type upperWrapper struct{}

func (upperWrapper) WrapInput(line string) string  { return line + " !" }
func (upperWrapper) WrapOutput(text string) string { return "<" + text + ">" }

func TestConsoleWrapper(t *testing.T) {
	dev := simulator.NewDevice()
	s := newSimSession(t, dev)
	c := newTestConsole(s, WithWrapper(upperWrapper{}))
	_, err := s.Connect(testPort)
	require.NoError(t, err)

	out, _ := run(c, "5000 SPEED")
	assert.Equal(t, "<5000 SPEED ! OK>\n", out)
	assert.Equal(t, []string{"5000 SPEED !"}, dev.Lines())
}

func TestConsoleCtrlC(t *testing.T) {
	dev := simulator.NewDevice()
	s := newSimSession(t, dev)
	c := newTestConsole(s)

	out, _ := run(c, "ctrlc")
	assert.Equal(t, "STOP\n", out)
	assert.Empty(t, dev.Lines())

	_, err := s.Connect(testPort)
	require.NoError(t, err)
	out, _ = run(c, "ctrlc")
	assert.Equal(t, "STOP\n", out)
	assert.Equal(t, []string{"STOP"}, dev.Lines())
}

func TestConsoleInterruptDuringRead(t *testing.T) {
	dev := simulator.NewDevice(simulator.WithResponder(simulator.Script(map[string]string{
		"STOP": "STOP\r\nABORTED\r\n>",
	})))
	s := newSimSession(t, dev)
	interrupt := make(chan struct{}, 1)
	c := newTestConsole(s, WithInterrupt(interrupt), WithReadTimeout(5*time.Second))
	_, err := s.Connect(testPort)
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		interrupt <- struct{}{}
	}()

	start := time.Now()
	out, _ := run(c, "CALIBRATE")
	assert.Equal(t, "STOP\nSTOP\r\nABORTED\n", out)
	assert.Less(t, time.Since(start), 4*time.Second)
	assert.Equal(t, []string{"CALIBRATE", "STOP"}, dev.Lines())
}

func TestConsoleInterruptAfterTimeout(t *testing.T) {
	dev := simulator.NewDevice(
		simulator.WithResponder(simulator.Script(map[string]string{"STOP": "STOP\r\nABORTED\r\n>"})),
		simulator.WithDelay(20),
	)
	s := newSimSession(t, dev)
	interrupt := make(chan struct{}, 1)
	interrupt <- struct{}{}
	c := newTestConsole(s, WithInterrupt(interrupt), WithReadTimeout(10*time.Millisecond))
	_, err := s.Connect(testPort)
	require.NoError(t, err)

	interrupted, err := c.exchange(&bytes.Buffer{}, "CALIBRATE")
	require.NoError(t, err)
	assert.True(t, interrupted)
}

func TestConsoleInterruptCollectsStopReply(t *testing.T) {
	dev := simulator.NewDevice(simulator.WithDelay(5))
	s := newSimSession(t, dev)
	interrupt := make(chan struct{}, 1)
	interrupt <- struct{}{}
	c := newTestConsole(s, WithInterrupt(interrupt))
	_, err := s.Connect(testPort)
	require.NoError(t, err)

	var buf bytes.Buffer
	interrupted, err := c.exchange(&buf, "MOVE")
	require.NoError(t, err)
	assert.True(t, interrupted)
	assert.Contains(t, buf.String(), "MOVE OK")
	assert.Contains(t, buf.String(), "ABORTED")

	out, _ := run(c, "WHERE")
	assert.Contains(t, out, "WAIST")
	assert.NotContains(t, out, "ABORTED")
}

func TestConsoleInterruptSkipsExtraReadWhenAborted(t *testing.T) {
	dev := &mockDevice{}
	interrupt := make(chan struct{}, 1)
	interrupt <- struct{}{}
	c := newTestConsole(dev, WithInterrupt(interrupt), WithReadTimeout(time.Second))

	dev.On("Write", "CALIBRATE").Return(nil).Once()
	dev.On("Write", StopCommand).Return(nil).Once()
	dev.On("ReadResponse", time.Second).
		Return(&r12.Response{Text: "CALIBRATE\r\nABORTED", Framed: true, Terminator: r12.SentinelAborted}, nil).Once()

	var buf bytes.Buffer
	interrupted, err := c.exchange(&buf, "CALIBRATE")
	require.NoError(t, err)
	assert.True(t, interrupted)
	assert.Equal(t, "STOP\nCALIBRATE\r\nABORTED\n", buf.String())
	dev.AssertExpectations(t)
	dev.AssertNotCalled(t, "ReadResponse", r12.ShortReadTimeout)
}

type mockDevice struct {
	mock.Mock
}

func (m *mockDevice) Connect(path string) (string, error) {
	args := m.Called(path)
	return args.String(0), args.Error(1)
}

func (m *mockDevice) Disconnect() error { return m.Called().Error(0) }

func (m *mockDevice) IsConnected() bool { return m.Called().Bool(0) }

func (m *mockDevice) Write(text string) error { return m.Called(text).Error(0) }

func (m *mockDevice) ReadResponse(timeout time.Duration) (*r12.Response, error) {
	args := m.Called(timeout)
	resp, _ := args.Get(0).(*r12.Response)
	return resp, args.Error(1)
}

func (m *mockDevice) Dump() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *mockDevice) Info() r12.Info { return m.Called().Get(0).(r12.Info) }

func TestConsoleConnectFailure(t *testing.T) {
	dev := &mockDevice{}
	dev.On("IsConnected").Return(false)
	dev.On("Connect", "").Return("", r12.ErrNoResponse)

	out, _ := run(newTestConsole(dev), "connect")
	assert.Equal(t, "Error: "+r12.ErrNoResponse.Error()+"\n", out)
	dev.AssertExpectations(t)
}

func TestConsoleWriteFailure(t *testing.T) {
	boom := errors.New("device unplugged")
	dev := &mockDevice{}
	dev.On("IsConnected").Return(true)
	dev.On("Write", "HOME").Return(boom)

	out, _ := run(newTestConsole(dev), "HOME")
	assert.Equal(t, "Error: device unplugged\n", out)
	dev.AssertNotCalled(t, "ReadResponse", mock.Anything)
}

func TestConsoleReadUsesConfiguredTimeout(t *testing.T) {
	dev := &mockDevice{}
	dev.On("IsConnected").Return(true)
	dev.On("Write", "WHERE").Return(nil)
	dev.On("ReadResponse", 1500*time.Millisecond).
		Return(&r12.Response{Text: "0 0 0 0 0 OK", Framed: true}, nil)

	out, _ := run(newTestConsole(dev, WithReadTimeout(r12.ShortReadTimeout)), "WHERE")
	assert.Equal(t, "0 0 0 0 0 OK\n", out)
	dev.AssertExpectations(t)
}

func TestIsUpper(t *testing.T) {
	assert.True(t, isUpper("HOME"))
	assert.True(t, isUpper("5000 SPEED !"))
	assert.True(t, isUpper("ÅÄÖ"))
	assert.False(t, isUpper("Home"))
	assert.False(t, isUpper("123 !"))
	assert.False(t, isUpper(""))
}

func TestIntroAndPrompt(t *testing.T) {
	c := newTestConsole(newSimSession(t, simulator.NewDevice()))
	assert.Equal(t, "R12 Shell\nVersion 1.2.3\nFirst time? Type 'help'.", c.Intro())
	assert.Equal(t, "> ", c.Prompt())
}

func TestIsBuiltin(t *testing.T) {
	c := newTestConsole(newSimSession(t, simulator.NewDevice()))
	assert.True(t, c.IsBuiltin("connect /dev/ttyUSB1"))
	assert.True(t, c.IsBuiltin("  status"))
	assert.False(t, c.IsBuiltin("HOME"))
	assert.False(t, c.IsBuiltin(""))
	assert.NotNil(t, c.Help())
}
