package mapmorph

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/tanema/gween/ease"
)

// Default values shared by the engine and the command-line tool.
const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 960.0

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 720.0

	// DefaultDuration applies when a spec leaves durationMs at zero.
	DefaultDuration = 1000 * time.Millisecond

	// DefaultFadeDuration is the length of the degraded cross-fade.
	DefaultFadeDuration = 350 * time.Millisecond

	// DefaultEasingName names DefaultEasing in configuration files.
	DefaultEasingName = "inOutCubic"
)

// Config is the engine configuration, usually loaded from a TOML file.
type Config struct {
	Width          float64 `toml:"width"`
	Height         float64 `toml:"height"`
	DurationMs     int     `toml:"duration_ms"`
	FadeDurationMs int     `toml:"fade_duration_ms"`
	Easing         string  `toml:"easing"`
	// SpecFile points at a spec table; empty selects DefaultSpecTable.
	SpecFile string `toml:"spec_file"`
	Debug    bool   `toml:"debug"`
	LogLevel string `toml:"log_level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		DurationMs:     int(DefaultDuration / time.Millisecond),
		FadeDurationMs: int(DefaultFadeDuration / time.Millisecond),
		Easing:         DefaultEasingName,
		LogLevel:       "warn",
	}
}

// LoadConfig reads a TOML config file. Keys missing from the file keep
// their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undec[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges and names.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("viewport %vx%v must be positive", c.Width, c.Height)
	}
	if c.DurationMs < 0 || c.FadeDurationMs < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if _, err := c.EasingFunc(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

// EasingFunc returns the configured easing function.
func (c Config) EasingFunc() (ease.TweenFunc, error) {
	if c.Easing == "" {
		return DefaultEasing, nil
	}
	fn, ok := EasingByName(c.Easing)
	if !ok {
		return nil, fmt.Errorf("unknown easing %q (want one of %v)", c.Easing, EasingNames())
	}
	return fn, nil
}

// Specs returns the spec table named by SpecFile, or the built-in table.
func (c Config) Specs() (*SpecTable, error) {
	if c.SpecFile == "" {
		return DefaultSpecTable(), nil
	}
	return LoadSpecTable(c.SpecFile)
}

// Options converts the config into orchestrator options. The caller fills
// in the renderer, clock, and sink.
func (c Config) Options() (Options, error) {
	if err := c.Validate(); err != nil {
		return Options{}, err
	}
	specs, err := c.Specs()
	if err != nil {
		return Options{}, err
	}
	fn, _ := c.EasingFunc()
	level, _ := log.ParseLevel(c.LogLevel)
	logger := defaultLogger()
	logger.SetLevel(level)
	return Options{
		Specs:           specs,
		Easing:          fn,
		DefaultDuration: time.Duration(c.DurationMs) * time.Millisecond,
		FadeDuration:    time.Duration(c.FadeDurationMs) * time.Millisecond,
		Logger:          logger,
		Width:           c.Width,
		Height:          c.Height,
		Debug:           c.Debug,
	}, nil
}
