// Package config holds the YAML-backed settings of the render aspect: job pool sizing, frame pacing, picking and
// logging.
package config

import (
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/raycast"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Log formats accepted by LogConfig.Format.
const (
	LogFormatNone = "none"
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// LogConfig selects the logger installed by the engine.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the full set of engine settings. Zero fields take their Default value through WithDefaults, so a
// workers or queue_size of 0 means automatic sizing.
type Config struct {
	Workers     int           `yaml:"workers"`
	QueueSize   int           `yaml:"queue_size"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	// FrameRate caps the Run loop in frames per second. 0 runs uncapped.
	FrameRate float64   `yaml:"frame_rate"`
	Profiling bool      `yaml:"profiling"`
	PickMode  string    `yaml:"pick_mode"`
	Log       LogConfig `yaml:"log"`
}

// Default returns the settings used when nothing is configured.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	return Config{
		Workers:     max(runtime.NumCPU()-1, 1),
		QueueSize:   256,
		IdleTimeout: time.Second,
		FrameRate:   60,
		PickMode:    "nearest",
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatNone,
		},
	}
}

// WithDefaults returns c with every zero field replaced by its Default value. FrameRate and Profiling are kept as
// given since their zero values are meaningful.
//
// Returns:
//   - Config: the completed settings
func (c Config) WithDefaults() Config {
	d := Default()
	c.Workers = common.Coalesce(c.Workers, d.Workers)
	c.QueueSize = common.Coalesce(c.QueueSize, d.QueueSize)
	c.IdleTimeout = common.Coalesce(c.IdleTimeout, d.IdleTimeout)
	c.PickMode = common.Coalesce(c.PickMode, d.PickMode)
	c.Log.Level = common.Coalesce(c.Log.Level, d.Log.Level)
	c.Log.Format = common.Coalesce(c.Log.Format, d.Log.Format)
	return c
}

// Parse decodes YAML on top of Default and validates the result. Keys left out, or set to 0 or empty, keep their
// default.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the decoded settings
//   - error: a decode or validation error
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, errors.Wrap(err, "config: decode")
	}
	c = c.WithDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and parses the YAML file at path.
//
// Parameters:
//   - path: the file path
//
// Returns:
//   - Config: the decoded settings
//   - error: an I/O, decode or validation error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: load %s", path)
	}
	return c, nil
}

// Validate reports the first setting that is out of range.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return errors.Errorf("config: workers must be at least 1, got %d", c.Workers)
	}
	if c.QueueSize < 1 {
		return errors.Errorf("config: queue_size must be at least 1, got %d", c.QueueSize)
	}
	if c.IdleTimeout <= 0 {
		return errors.Errorf("config: idle_timeout must be positive, got %s", c.IdleTimeout)
	}
	if c.FrameRate < 0 {
		return errors.Errorf("config: frame_rate must not be negative, got %g", c.FrameRate)
	}
	if _, ok := raycast.ParsePickMode(c.PickMode); !ok {
		return errors.Errorf("config: unknown pick_mode %q", c.PickMode)
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.Errorf("config: unknown log.level %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case LogFormatNone, LogFormatText, LogFormatJSON, "":
	default:
		return errors.Errorf("config: unknown log.format %q", c.Log.Format)
	}
	return nil
}

// Pick returns the configured pick mode, PickNearest when it does not parse.
func (c Config) Pick() raycast.PickMode {
	mode, _ := raycast.ParsePickMode(c.PickMode)
	return mode
}

// FramePeriod returns the minimum time between frames, 0 when uncapped.
func (c Config) FramePeriod() time.Duration {
	if c.FrameRate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / c.FrameRate)
}

// NewLogger builds the logger described by Log, writing to w. It returns nil when the format is none, which
// leaves the engine silent.
//
// Parameters:
//   - w: the destination
//
// Returns:
//   - *slog.Logger: the logger, or nil
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(c.Log.Format) {
	case LogFormatText:
		return slog.New(slog.NewTextHandler(w, opts))
	case LogFormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts))
	default:
		return nil
	}
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
