// Package config loads r12 settings from flags, R12_* environment variables
// and an optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	r12 "github.com/allbin/go-r12"
	"github.com/allbin/go-r12/logger"
)

// EnvPrefix prefixes every environment override, e.g. R12_READ_TIMEOUT.
const EnvPrefix = "R12"

// Keys.
const (
	KeyPort         = "port"
	KeyDriver       = "driver"
	KeyReadTimeout  = "read_timeout"
	KeyPollInterval = "poll_interval"
	KeyFraming      = "framing"
	KeyGlob         = "discovery.glob"
	KeyProbe        = "discovery.probe"
	KeyExpect       = "discovery.expect"
	KeyVendorID     = "discovery.vendor_id"
	KeyProductID    = "discovery.product_id"
	KeySettle       = "discovery.settle"
	KeyHelpDir      = "help_dir"
	KeyHistoryFile  = "history_file"
	KeySimulate     = "simulate"
	KeyLogLevel     = "log.level"
	KeyLogFormat    = "log.format"
)

var ErrInvalid = errors.New("invalid configuration")

// Discovery holds the endpoint search settings.
type Discovery struct {
	Glob      string        `mapstructure:"glob"`
	Probe     string        `mapstructure:"probe"`
	Expect    string        `mapstructure:"expect"`
	VendorID  string        `mapstructure:"vendor_id"`
	ProductID string        `mapstructure:"product_id"`
	Settle    time.Duration `mapstructure:"settle"`
}

// Log holds the logger settings.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Config is the resolved application configuration.
type Config struct {
	Port         string        `mapstructure:"port"`
	Driver       string        `mapstructure:"driver"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Framing      string        `mapstructure:"framing"`
	Discovery    Discovery     `mapstructure:"discovery"`
	HelpDir      string        `mapstructure:"help_dir"`
	HistoryFile  string        `mapstructure:"history_file"`
	Simulate     bool          `mapstructure:"simulate"`
	Log          Log           `mapstructure:"log"`
}

// SetDefaults registers the default for every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "")
	v.SetDefault(KeyDriver, r12.DriverNative)
	v.SetDefault(KeyReadTimeout, r12.DefaultReadTimeout)
	v.SetDefault(KeyPollInterval, r12.DefaultPollInterval)
	v.SetDefault(KeyFraming, r12.FramingSentinel)
	v.SetDefault(KeyGlob, r12.DefaultPortGlob)
	v.SetDefault(KeyProbe, r12.DefaultProbeRequest)
	v.SetDefault(KeyExpect, r12.DefaultProbeResponse)
	v.SetDefault(KeyVendorID, fmt.Sprintf("%04x", r12.DefaultVendorID))
	v.SetDefault(KeyProductID, fmt.Sprintf("%04x", r12.DefaultProductID))
	v.SetDefault(KeySettle, r12.DefaultProbeSettle)
	v.SetDefault(KeyHelpDir, "")
	v.SetDefault(KeyHistoryFile, defaultHistoryFile())
	v.SetDefault(KeySimulate, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, string(logger.FormatConsole))
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile reads cfgFile, or the first r12 config found in the default
// locations when cfgFile is empty. A missing default file is not an error.
func ReadFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, dir := range searchDirs() {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// BindFlags binds each named flag to the key of the same name.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for flag, key := range keys {
		f := flags.Lookup(flag)
		if f == nil {
			return fmt.Errorf("bind flag %q: not defined", flag)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", flag, err)
		}
	}
	return nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	if _, err := r12.OpenerFor(c.Driver); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalid, KeyDriver, err)
	}
	if _, err := r12.ParseFramingPolicy(c.Framing); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalid, KeyFraming, err)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalid, KeyReadTimeout)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalid, KeyPollInterval)
	}
	if c.PollInterval > c.ReadTimeout {
		return fmt.Errorf("%w: %s exceeds %s", ErrInvalid, KeyPollInterval, KeyReadTimeout)
	}
	if c.Discovery.Settle < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalid, KeySettle)
	}
	if c.Discovery.Glob == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalid, KeyGlob)
	}
	if _, err := filepath.Match(c.Discovery.Glob, ""); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalid, KeyGlob, err)
	}
	if c.Discovery.Probe == "" || c.Discovery.Expect == "" {
		return fmt.Errorf("%w: discovery probe and expect must be set", ErrInvalid)
	}
	if _, err := ParseUSBID(c.Discovery.VendorID); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalid, KeyVendorID, err)
	}
	if _, err := ParseUSBID(c.Discovery.ProductID); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalid, KeyProductID, err)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalid, KeyLogLevel, err)
	}
	switch logger.Format(c.Log.Format) {
	case logger.FormatConsole, logger.FormatJSON:
	default:
		return fmt.Errorf("%w: %s: unknown format %q", ErrInvalid, KeyLogFormat, c.Log.Format)
	}
	return nil
}

// ParseUSBID parses a hexadecimal USB ID, with or without a 0x prefix.
func ParseUSBID(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	n, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("bad USB ID %q", s)
	}
	return uint16(n), nil
}

// SessionOptions translates the configuration into session options. Driver
// selection is left to the caller so a simulator can be substituted.
func (c *Config) SessionOptions() ([]r12.Option, error) {
	framing, err := r12.ParseFramingPolicy(c.Framing)
	if err != nil {
		return nil, err
	}
	vid, err := ParseUSBID(c.Discovery.VendorID)
	if err != nil {
		return nil, err
	}
	pid, err := ParseUSBID(c.Discovery.ProductID)
	if err != nil {
		return nil, err
	}
	return []r12.Option{
		r12.WithReadTimeout(c.ReadTimeout),
		r12.WithPollInterval(c.PollInterval),
		r12.WithFramingPolicy(framing),
		r12.WithPortGlob(c.Discovery.Glob),
		r12.WithProbe(unescape(c.Discovery.Probe), c.Discovery.Expect),
		r12.WithUSBIdentity(vid, pid),
		r12.WithProbeSettle(c.Discovery.Settle),
	}, nil
}

// unescape turns the two-character sequences \r and \n into control bytes so
// the probe can be written in a config file or flag.
func unescape(s string) string {
	return strings.NewReplacer(`\r`, "\r", `\n`, "\n").Replace(s)
}

func searchDirs() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "r12"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "r12"))
	}
	return append(dirs, ".")
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".r12_history")
}
