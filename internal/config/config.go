// Package config holds the application configuration and its resolution from
// command-line flags, environment variables and defaults.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	apperrors "github.com/agbru/fieldfmt/internal/errors"
	"github.com/agbru/fieldfmt/internal/format"
	"github.com/agbru/fieldfmt/internal/mask"
)

// EnvPrefix is the prefix of every environment variable read by fieldfmt.
const EnvPrefix = "FIELDFMT_"

// Default values of AppConfig.
const (
	DefaultLogLevel     = "warn"
	DefaultAddr         = ":8080"
	DefaultTimeout      = 30 * time.Second
	DefaultMaxBodyBytes = 1 << 20
	// MaxFraction bounds the fraction digits accepted for byte sizes.
	MaxFraction = format.MaxFraction
)

// AppConfig aggregates the settings shared by all commands.
type AppConfig struct {
	// LogLevel is a zerolog level name.
	LogLevel string
	// NoColor disables ANSI colors in the output.
	NoColor bool
	// Quiet suppresses spinners and summaries; only results are printed.
	Quiet bool
	// Verbose enables debug logging regardless of LogLevel.
	Verbose bool
	// Timeout bounds a single command or request.
	Timeout time.Duration

	// PriceDelimiter separates digit groups in prices.
	PriceDelimiter string
	// Fraction is the number of fraction digits of byte sizes.
	Fraction int
	// Rounding is the rounding mode name of byte sizes.
	Rounding string

	// RulesFile is a YAML rules file; empty means the built-in rules.
	RulesFile string
	// OutDir receives masked documents; empty means stdout.
	OutDir string
	// Concurrency bounds the documents masked in parallel; zero means
	// one per CPU.
	Concurrency int

	// Addr is the listen address of the HTTP server.
	Addr string
	// MaxBodyBytes bounds request bodies of the HTTP server.
	MaxBodyBytes int64
}

// DefaultAppConfig returns the configuration used when nothing is set.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		LogLevel:       DefaultLogLevel,
		Timeout:        DefaultTimeout,
		PriceDelimiter: format.DefaultPriceDelimiter,
		Fraction:       format.DefaultFraction,
		Rounding:       format.RoundHalfAwayFromZero.String(),
		Addr:           DefaultAddr,
		MaxBodyBytes:   DefaultMaxBodyBytes,
	}
}

// RegisterGlobalFlags binds the flags shared by every command to fs.
func (c *AppConfig) RegisterGlobalFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&c.NoColor, "no-color", c.NoColor, "disable colored output (also honours NO_COLOR)")
	fs.BoolVarP(&c.Quiet, "quiet", "q", c.Quiet, "print results only")
	fs.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "enable debug logging")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "maximum duration of a command")
}

// RegisterPriceFlags binds the flags of the price command to fs.
func (c *AppConfig) RegisterPriceFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.PriceDelimiter, "delimiter", "d", c.PriceDelimiter, "digit group delimiter")
}

// RegisterBytesFlags binds the flags of the bytes command to fs.
func (c *AppConfig) RegisterBytesFlags(fs *pflag.FlagSet) {
	fs.IntVarP(&c.Fraction, "fraction", "f", c.Fraction, "number of fraction digits")
	fs.StringVar(&c.Rounding, "rounding", c.Rounding, "rounding mode (half-away, half-even)")
}

// RegisterMaskFlags binds the batch flags of the mask command to fs.
// Per-key mask overrides are registered by the command itself.
func (c *AppConfig) RegisterMaskFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.RulesFile, "rules", c.RulesFile, "YAML rules file")
	fs.StringVarP(&c.OutDir, "out-dir", "o", c.OutDir, "write masked documents to this directory")
	fs.IntVarP(&c.Concurrency, "concurrency", "j", c.Concurrency, "documents processed in parallel (0 = one per CPU)")
}

// RegisterServeFlags binds the flags of the serve command to fs.
func (c *AppConfig) RegisterServeFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", c.Addr, "listen address")
	fs.Int64Var(&c.MaxBodyBytes, "max-body", c.MaxBodyBytes, "maximum request body size in bytes")
}

// Resolve finishes a configuration after flag parsing: environment values
// fill the flags that were not set, adaptive defaults fill what is left, and
// the result is validated.
func (c *AppConfig) Resolve(fs *pflag.FlagSet) error {
	applyEnvOverrides(c, fs)
	*c = ApplyAdaptiveDefaults(*c)
	return c.Validate()
}

// Validate checks the configuration and returns a ConfigError describing the
// first invalid setting.
func (c AppConfig) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return apperrors.NewConfigError("invalid log level %q", c.LogLevel)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	if c.Fraction < 0 || c.Fraction > MaxFraction {
		return apperrors.NewConfigError("fraction must be between 0 and %d, got %d", MaxFraction, c.Fraction)
	}
	if _, err := format.ParseRounding(c.Rounding); err != nil {
		return apperrors.NewConfigError("invalid rounding mode %q", c.Rounding)
	}
	if c.Concurrency < 0 {
		return apperrors.NewConfigError("concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.Addr == "" {
		return apperrors.NewConfigError("listen address must not be empty")
	}
	if c.MaxBodyBytes <= 0 {
		return apperrors.NewConfigError("max body size must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}

// Level returns the effective log level.
func (c AppConfig) Level() zerolog.Level {
	if c.Verbose {
		return zerolog.DebugLevel
	}
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.WarnLevel
	}
	return level
}

// RoundingMode returns the parsed rounding mode.
func (c AppConfig) RoundingMode() format.Rounding {
	r, _ := format.ParseRounding(c.Rounding)
	return r
}

// LoadRules returns the rules of RulesFile, or the built-in data-attribute
// rules when no file is configured.
func (c AppConfig) LoadRules() ([]mask.Rule, error) {
	if c.RulesFile == "" {
		return mask.DefaultRules(), nil
	}
	f, err := os.Open(c.RulesFile)
	if err != nil {
		return nil, apperrors.NewConfigError("cannot open rules file: %v", err)
	}
	defer f.Close()

	rules, err := mask.LoadRules(f)
	if err != nil {
		return nil, apperrors.NewConfigError("%s: %v", c.RulesFile, err)
	}
	return rules, nil
}
