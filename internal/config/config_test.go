package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	r12 "github.com/allbin/go-r12"
)

func TestDefaults(t *testing.T) {
	c, err := Load(New())
	require.NoError(t, err)

	assert.Empty(t, c.Port)
	assert.Equal(t, r12.DriverNative, c.Driver)
	assert.Equal(t, 30*time.Second, c.ReadTimeout)
	assert.Equal(t, 100*time.Millisecond, c.PollInterval)
	assert.Equal(t, "sentinel", c.Framing)
	assert.Equal(t, "/dev/ttyUSB*", c.Discovery.Glob)
	assert.Equal(t, "ROBOFORTH\r\n", c.Discovery.Probe)
	assert.Equal(t, "ROBOFORTH", c.Discovery.Expect)
	assert.Equal(t, "0403", c.Discovery.VendorID)
	assert.Equal(t, "6001", c.Discovery.ProductID)
	assert.Equal(t, 100*time.Millisecond, c.Discovery.Settle)
	assert.False(t, c.Simulate)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "console", c.Log.Format)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("R12_PORT", "/dev/ttyUSB3")
	t.Setenv("R12_READ_TIMEOUT", "5s")
	t.Setenv("R12_FRAMING", "prompt")
	t.Setenv("R12_DISCOVERY_GLOB", "/dev/ttyACM*")
	t.Setenv("R12_LOG_LEVEL", "debug")

	c, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB3", c.Port)
	assert.Equal(t, 5*time.Second, c.ReadTimeout)
	assert.Equal(t, "prompt", c.Framing)
	assert.Equal(t, "/dev/ttyACM*", c.Discovery.Glob)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r12.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: /dev/ttyUSB1
driver: bugst
poll_interval: 50ms
discovery:
  settle: 250ms
  vendor_id: "0x0403"
log:
  format: json
`), 0o600))

	v := New()
	require.NoError(t, ReadFile(v, path))
	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB1", c.Port)
	assert.Equal(t, r12.DriverBugst, c.Driver)
	assert.Equal(t, 50*time.Millisecond, c.PollInterval)
	assert.Equal(t, 250*time.Millisecond, c.Discovery.Settle)
	assert.Equal(t, "json", c.Log.Format)
	// Untouched nested keys keep their defaults.
	assert.Equal(t, "/dev/ttyUSB*", c.Discovery.Glob)
}

func TestReadFileMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	assert.NoError(t, ReadFile(New(), ""))
	assert.Error(t, ReadFile(New(), filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestBindFlags(t *testing.T) {
	flags := pflag.NewFlagSet("r12", pflag.ContinueOnError)
	flags.String("port", "", "")
	flags.Duration("timeout", 0, "")
	require.NoError(t, flags.Parse([]string{"--port", "/dev/ttyUSB5", "--timeout", "2s"}))

	v := New()
	require.NoError(t, BindFlags(v, flags, map[string]string{
		"port":    KeyPort,
		"timeout": KeyReadTimeout,
	}))
	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB5", c.Port)
	assert.Equal(t, 2*time.Second, c.ReadTimeout)

	assert.Error(t, BindFlags(v, flags, map[string]string{"missing": KeyPort}))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"driver", KeyDriver, "ftdi"},
		{"framing", KeyFraming, "regex"},
		{"read timeout", KeyReadTimeout, "0s"},
		{"poll interval", KeyPollInterval, "-1s"},
		{"poll exceeds timeout", KeyPollInterval, "1m"},
		{"settle", KeySettle, "-1ms"},
		{"glob", KeyGlob, "/dev/tty[USB"},
		{"empty glob", KeyGlob, ""},
		{"vendor id", KeyVendorID, "ftdi"},
		{"product id", KeyProductID, "1ffff"},
		{"log level", KeyLogLevel, "trace"},
		{"log format", KeyLogFormat, "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParseUSBID(t *testing.T) {
	for in, want := range map[string]uint16{
		"0403":   0x0403,
		"0x6001": 0x6001,
		" 6001 ": 0x6001,
		"FFFF":   0xffff,
	} {
		got, err := ParseUSBID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseUSBID("")
	assert.Error(t, err)
}

func TestSessionOptions(t *testing.T) {
	v := New()
	v.Set(KeyProbe, `ROBOFORTH\r\n`)
	c, err := Load(v)
	require.NoError(t, err)

	opts, err := c.SessionOptions()
	require.NoError(t, err)
	s, err := r12.New(opts...)
	require.NoError(t, err)

	assert.Equal(t, "ROBOFORTH\r\n", s.Prober().Request)
	assert.Equal(t, uint16(0x0403), s.Prober().VendorID)
	assert.Equal(t, c.ReadTimeout, s.ReadTimeout())
}
