/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	r12 "github.com/allbin/go-r12"
	"github.com/allbin/go-r12/internal/config"
	"github.com/allbin/go-r12/internal/console"
	"github.com/allbin/go-r12/logger"
	"github.com/allbin/go-r12/simulator"
)

// Version is stamped at build time with -ldflags "-X ...cmd.Version=...".
var Version = "dev"

// simulatedPort is the endpoint the simulator answers on.
const simulatedPort = "/dev/ttyUSB0"

var (
	cfgFile string

	v   = config.New()
	cfg *config.Config
	log logger.Logger = logger.Nop()
)

// flagKeys binds persistent flags to configuration keys.
var flagKeys = map[string]string{
	"port":          config.KeyPort,
	"driver":        config.KeyDriver,
	"read-timeout":  config.KeyReadTimeout,
	"poll-interval": config.KeyPollInterval,
	"framing":       config.KeyFraming,
	"help-dir":      config.KeyHelpDir,
	"history-file":  config.KeyHistoryFile,
	"simulate":      config.KeySimulate,
	"log-level":     config.KeyLogLevel,
	"log-format":    config.KeyLogFormat,
}

// rootCmd is the base command; without a subcommand it starts the shell.
var rootCmd = &cobra.Command{
	Use:   "r12",
	Short: "Console and tools for the R12 robot arm",
	Long: `r12 talks to an ST Robotics R12 arm controller running ROBOFORTH over
its RS-232 link (19200 8N2).

Without a subcommand it starts an interactive shell. Upper case input is sent
to the arm; lower case words are shell commands. Type 'help' in the shell for
a list of both.

If no port is configured, the controller is found by probing /dev/ttyUSB*
when its FTDI adapter (0403:6001) is attached.

Settings come from flags, R12_* environment variables and
~/.config/r12/config.yaml, in that order.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runShellCmd,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// RootCmd returns the root command for tests.
func RootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.config/r12/config.yaml)")
	pf.StringP("port", "p", "", "serial port of the controller (default: discover)")
	pf.String("driver", r12.DriverNative, "transport driver: native, bugst")
	pf.Duration("read-timeout", r12.DefaultReadTimeout, "how long to wait for a reply")
	pf.Duration("poll-interval", r12.DefaultPollInterval, "how often to poll for reply bytes")
	pf.String("framing", r12.FramingSentinel, "reply framing: sentinel, prompt")
	pf.String("help-dir", "", "directory with shell.txt and roboforth.txt help files")
	pf.String("history-file", "", "shell history file (default is ~/.r12_history)")
	pf.Bool("simulate", false, "talk to a simulated controller")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", string(logger.FormatConsole), "log format: console, json")

	if err := config.BindFlags(v, pf, flagKeys); err != nil {
		panic(err)
	}
}

// setup loads the configuration and installs the logger.
func setup(cmd *cobra.Command, _ []string) error {
	if err := config.ReadFile(v, cfgFile); err != nil {
		return err
	}
	c, err := config.Load(v)
	if err != nil {
		return err
	}
	cfg = c

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	log = logger.NewSlog(cmd.ErrOrStderr(), level, logger.Format(cfg.Log.Format))
	logger.SetDefault(log)
	log.Debug("configuration loaded", "file", v.ConfigFileUsed(), "driver", cfg.Driver, "simulate", cfg.Simulate)
	return nil
}

// newSession builds a session from the loaded configuration.
func newSession() (*r12.Session, error) {
	opts, err := cfg.SessionOptions()
	if err != nil {
		return nil, err
	}
	if cfg.Simulate {
		opts = append(opts, simulatorOptions()...)
	} else {
		opts = append(opts, r12.WithDriver(cfg.Driver))
	}
	opts = append(opts, r12.WithLogger(log))
	return r12.New(opts...)
}

// simulatorOptions route discovery and opens to an in-memory controller.
func simulatorOptions() []r12.Option {
	bank := simulator.NewBank().Add(simulatedPort, simulator.NewDevice())
	return []r12.Option{
		r12.WithOpener(func(path string, _ r12.LineConfig) (r12.Transport, error) {
			d, err := bank.Open(path)
			if err != nil {
				return nil, err
			}
			return d, nil
		}),
		r12.WithIdentifier(func(uint16, uint16) (bool, error) { return true, nil }),
		r12.WithExpander(bank.Paths),
	}
}

// connect opens the configured port, or discovers one.
func connect(s *r12.Session) (string, error) {
	endpoint, err := s.Connect(cfg.Port)
	if err != nil {
		return "", err
	}
	log.Debug("connected", "endpoint", endpoint)
	return endpoint, nil
}

// consoleOptions are shared by the shell, TUI and run commands.
func consoleOptions() []console.Option {
	help, errs := console.LoadHelp(cfg.HelpDir)
	for _, err := range errs {
		log.Warn("help file", "error", err)
	}
	return []console.Option{
		console.WithHelp(help),
		console.WithVersion(Version),
		console.WithPort(cfg.Port),
		console.WithReadTimeout(cfg.ReadTimeout),
		console.WithLogger(log),
	}
}
