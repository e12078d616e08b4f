// Package console implements the R12 command shell: built-in commands,
// forwarding of upper-case ROBOFORTH input to the arm, help and completion.
// It is independent of the terminal front end; cmd wires it to liner and the
// TUI wires it to bubbletea.
package console

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	r12 "github.com/allbin/go-r12"
	"github.com/allbin/go-r12/logger"
)

// Device is the part of *r12.Session the console drives.
type Device interface {
	Connect(path string) (string, error)
	Disconnect() error
	IsConnected() bool
	Write(text string) error
	ReadResponse(timeout time.Duration) (*r12.Response, error)
	Dump() (string, error)
	Info() r12.Info
}

var _ Device = (*r12.Session)(nil)

// Wrapper transforms text on its way to and from the arm.
type Wrapper interface {
	WrapInput(line string) string
	WrapOutput(text string) string
}

// StopCommand is sent to the arm on an operator interrupt.
const StopCommand = "STOP"

// DefaultTheme is the banner and prompt colour.
var DefaultTheme = lipgloss.Color("4")

type handler func(w io.Writer, arg string) (stop bool)

// Console executes shell lines against a Device.
type Console struct {
	dev       Device
	help      *Help
	styles    Styles
	wrapper   Wrapper
	version   string
	port      string
	timeout   time.Duration
	interrupt <-chan struct{}
	log       logger.Logger

	commands map[string]handler
}

// Option configures a Console.
type Option func(*Console)

// WithHelp sets the help sections. Without it the built-in help is used.
func WithHelp(h *Help) Option { return func(c *Console) { c.help = h } }

// WithStyles replaces the default styles.
func WithStyles(s Styles) Option { return func(c *Console) { c.styles = s } }

// WithWrapper sets an input/output wrapper.
func WithWrapper(w Wrapper) Option { return func(c *Console) { c.wrapper = w } }

// WithVersion sets the version printed by the version command.
func WithVersion(v string) Option { return func(c *Console) { c.version = v } }

// WithPort sets the endpoint connect uses when given no argument. Empty means
// discover.
func WithPort(p string) Option { return func(c *Console) { c.port = p } }

// WithReadTimeout sets the timeout for reads after forwarded commands. Zero
// uses the session default.
func WithReadTimeout(d time.Duration) Option { return func(c *Console) { c.timeout = d } }

// WithInterrupt sets the channel that signals an operator interrupt while a
// command is waiting for the arm.
func WithInterrupt(ch <-chan struct{}) Option { return func(c *Console) { c.interrupt = ch } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(c *Console) { c.log = l } }

// New returns a console driving dev.
func New(dev Device, opts ...Option) *Console {
	c := &Console{
		dev:     dev,
		styles:  DefaultStyles(DefaultTheme),
		version: "dev",
		log:     logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.help == nil {
		c.help, _ = LoadHelp("")
	}
	c.commands = map[string]handler{
		"exit":       c.doExit,
		"EOF":        c.doEOF,
		"quit":       c.doQuit,
		"help":       c.doHelp,
		"status":     c.doStatus,
		"connect":    c.doConnect,
		"disconnect": c.doDisconnect,
		"run":        c.doRun,
		"dump":       c.doDump,
		"version":    c.doVersion,
		"ctrlc":      c.doCtrlC,
	}
	return c
}

// Intro is the banner printed when the shell starts.
func (c *Console) Intro() string {
	return strings.Join([]string{
		c.styles.Themed("R12 Shell"),
		"Version " + c.version,
		"First time? Type 'help'.",
	}, "\n")
}

// Prompt is the input prompt.
func (c *Console) Prompt() string { return c.styles.Themed("> ") }

// Styles returns the console styles.
func (c *Console) Styles() Styles { return c.styles }

// Help returns the loaded help sections.
func (c *Console) Help() *Help { return c.help }

// IsBuiltin reports whether line starts with a built-in command name.
func (c *Console) IsBuiltin(line string) bool {
	name, _, _ := strings.Cut(strings.TrimSpace(line), " ")
	_, ok := c.commands[name]
	return ok
}

// Builtins lists the built-in command names.
func (c *Console) Builtins() []string {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs one input line and reports whether the shell should exit.
// Built-in commands are matched on the first word. Anything else is sent to
// the arm if it is upper case.
func (c *Console) Execute(w io.Writer, line string) (stop bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	name, arg, _ := strings.Cut(line, " ")
	if h, ok := c.commands[name]; ok {
		return h(w, strings.TrimSpace(arg))
	}
	c.forward(w, line)
	return false
}

func (c *Console) errorf(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, c.styles.Err("Error: ", fmt.Sprintf(format, args...)))
}

func (c *Console) success(w io.Writer, msg string) {
	fmt.Fprintln(w, c.styles.Ok("Success: ", msg))
}

func (c *Console) doExit(w io.Writer, _ string) bool {
	if c.dev.IsConnected() {
		if err := c.dev.Disconnect(); err != nil {
			c.log.Warn("disconnect on exit", "error", err)
		}
	}
	fmt.Fprintln(w, "Bye!")
	return true
}

func (c *Console) doEOF(w io.Writer, arg string) bool {
	fmt.Fprintln(w)
	return c.doExit(w, arg)
}

func (c *Console) doQuit(w io.Writer, _ string) bool {
	fmt.Fprintln(w, "Use 'exit' to close the shell.")
	return false
}

func (c *Console) doCtrlC(w io.Writer, _ string) bool {
	fmt.Fprintln(w, StopCommand)
	if c.dev.IsConnected() {
		if err := c.dev.Write(StopCommand); err != nil {
			c.errorf(w, "%v", err)
		}
	}
	return false
}

func (c *Console) doHelp(w io.Writer, _ string) bool {
	fmt.Fprintln(w, strings.Join([]string{
		"",
		c.help.Shell.Render(c.styles),
		c.help.Forth.Render(c.styles),
	}, "\n"))
	return false
}

func (c *Console) doStatus(w io.Writer, _ string) bool {
	info := c.dev.Info()
	rows := [][2]string{
		{"Connected", fmt.Sprint(info.Connected)},
		{"Port", info.Endpoint},
		{"Bytes Waiting", fmt.Sprint(info.BytesWaiting)},
	}
	width := len("Bytes Waiting")

	fmt.Fprintln(w)
	fmt.Fprintln(w, c.styles.Themed("Arm Status"))
	for _, r := range rows {
		fmt.Fprintln(w, c.styles.Help(fmt.Sprintf("%-*s", width+2, r[0]), r[1]))
	}
	fmt.Fprintln(w)
	return false
}

func (c *Console) doConnect(w io.Writer, arg string) bool {
	if c.dev.IsConnected() {
		c.errorf(w, "Arm is already connected.")
		return false
	}
	path := arg
	if path == "" {
		path = c.port
	}
	endpoint, err := c.dev.Connect(path)
	if err != nil {
		c.errorf(w, "%v", err)
		return false
	}
	c.success(w, fmt.Sprintf("Connected to '%s'.", endpoint))
	return false
}

func (c *Console) doDisconnect(w io.Writer, _ string) bool {
	if !c.dev.IsConnected() {
		c.errorf(w, "Arm is already disconnected.")
		return false
	}
	if err := c.dev.Disconnect(); err != nil {
		c.errorf(w, "%v", err)
		return false
	}
	c.success(w, "Disconnected.")
	return false
}

func (c *Console) doDump(w io.Writer, _ string) bool {
	if !c.dev.IsConnected() {
		c.errorf(w, "Arm is not connected.")
		return false
	}
	out, err := c.dev.Dump()
	if err != nil {
		c.errorf(w, "%v", err)
		return false
	}
	fmt.Fprintln(w, out)
	return false
}

func (c *Console) doVersion(w io.Writer, _ string) bool {
	fmt.Fprintf(w, "R12 %s\nGo %s\n", c.version, strings.TrimPrefix(runtime.Version(), "go"))
	return false
}

// doRun sends every non-blank line of a script and prints each reply. An
// interrupt stops the script after the current line.
func (c *Console) doRun(w io.Writer, arg string) bool {
	if !c.dev.IsConnected() {
		c.errorf(w, "Arm is not connected.")
		return false
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		c.errorf(w, "Could not load file '%s'.", arg)
		return false
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		interrupted, err := c.exchange(w, line)
		if err != nil {
			c.errorf(w, "%v", err)
			return false
		}
		if interrupted {
			c.log.Info("script interrupted", "file", arg)
			return false
		}
	}
	return false
}

func (c *Console) forward(w io.Writer, line string) {
	if !isUpper(line) {
		c.errorf(w, "Unrecognized command.")
		return
	}
	if !c.dev.IsConnected() {
		c.errorf(w, "Arm is not connected.")
		return
	}
	if _, err := c.exchange(w, line); err != nil {
		c.errorf(w, "%v", err)
	}
}

// exchange writes line, waits for the reply and prints it. On interrupt it
// sends STOP and lets the pending read finish. Unless that read already ended
// on ABORTED, one more short read collects the reply to STOP so it cannot be
// mistaken for the answer to the next command.
func (c *Console) exchange(w io.Writer, line string) (interrupted bool, err error) {
	if c.wrapper != nil {
		line = c.wrapper.WrapInput(line)
	}
	if err := c.dev.Write(line); err != nil {
		return false, err
	}

	type result struct {
		resp *r12.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := c.dev.ReadResponse(c.timeout)
		done <- result{resp, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-c.interrupt:
		interrupted = true
		fmt.Fprintln(w, StopCommand)
		if err := c.dev.Write(StopCommand); err != nil {
			return true, err
		}
		res = <-done
		if res.err == nil && !endsAborted(res.resp) {
			more, err := c.dev.ReadResponse(r12.ShortReadTimeout)
			if err != nil {
				return true, err
			}
			res.resp = joinResponses(res.resp, more)
		}
	}
	if res.err != nil {
		return interrupted, res.err
	}

	text := res.resp.Text
	if c.wrapper != nil {
		text = c.wrapper.WrapOutput(text)
	}
	fmt.Fprintln(w, text)
	return interrupted, nil
}

func endsAborted(resp *r12.Response) bool {
	return resp.Terminator == r12.SentinelAborted ||
		strings.HasSuffix(strings.TrimSpace(resp.Text), r12.SentinelAborted)
}

func joinResponses(a, b *r12.Response) *r12.Response {
	out := *b
	out.Text = strings.TrimSpace(a.Text + "\n" + b.Text)
	out.Raw = append(append([]byte(nil), a.Raw...), b.Raw...)
	out.Elapsed = a.Elapsed + b.Elapsed
	return &out
}

// isUpper reports whether s has at least one cased letter and no lower-case
// ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}
