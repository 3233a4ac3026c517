package config

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds curve evaluation and calibration parameters.
type Config struct {
	// ZeroRateEpsilon replaces t == 0 when a zero rate is requested,
	// so that -ln(df)/t stays finite.
	ZeroRateEpsilon float64 `yaml:"zero_rate_epsilon"`

	// DayCount is the time axis convention used to map calendar dates to
	// curve times (see utils.YearFraction).
	DayCount string `yaml:"day_count"`

	// CacheEnabled turns the per-curve evaluation cache on or off.
	CacheEnabled bool `yaml:"cache_enabled"`

	// CacheExpiration is how long an evaluated value stays memoized.
	// Expired entries are dropped on lookup; no janitor goroutine runs.
	CacheExpiration time.Duration `yaml:"cache_expiration"`

	// MaxForwardSteps bounds the number of periods chained when a discount
	// curve is integrated from a forward curve.
	MaxForwardSteps int `yaml:"max_forward_steps"`

	Calibration CalibrationConfig `yaml:"calibration"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// CalibrationConfig controls the solver driven by package calibration.
type CalibrationConfig struct {
	// Tolerance is the accepted root of the mean squared residual.
	Tolerance float64 `yaml:"tolerance"`

	// MaxIterations caps the solver's major iterations.
	MaxIterations int `yaml:"max_iterations"`

	// MaxEvaluations caps objective evaluations.
	MaxEvaluations int `yaml:"max_evaluations"`

	// Concurrency is the number of residuals evaluated in parallel.
	Concurrency int `yaml:"concurrency"`
}

// LoggingConfig selects level and format of the default logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	ZeroRateEpsilon: 1e-14,
	DayCount:        "ACT/365F",
	CacheEnabled:    true,
	CacheExpiration: 5 * time.Minute,
	MaxForwardSteps: 100000,
	Calibration: CalibrationConfig{
		Tolerance:      1e-8,
		MaxIterations:  5000,
		MaxEvaluations: 50000,
		Concurrency:    4,
	},
	Logging: LoggingConfig{
		Level:  "info",
		Format: "text",
	},
}

var active atomic.Pointer[Config]

func init() {
	c := DefaultConfig
	active.Store(&c)
}

// SetConfig replaces the active configuration.
func SetConfig(c Config) {
	active.Store(&c)
}

// GetConfig returns the active configuration.
func GetConfig() Config {
	return *active.Load()
}

// Load reads a YAML file on top of DefaultConfig. Keys absent from the file
// keep their default values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes on top of DefaultConfig.
func Parse(data []byte) (Config, error) {
	c := DefaultConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings that would make evaluation undefined.
func (c Config) Validate() error {
	if c.ZeroRateEpsilon <= 0 {
		return fmt.Errorf("config: zero_rate_epsilon must be positive, got %g", c.ZeroRateEpsilon)
	}
	if c.MaxForwardSteps <= 0 {
		return fmt.Errorf("config: max_forward_steps must be positive, got %d", c.MaxForwardSteps)
	}
	if c.Calibration.Tolerance <= 0 {
		return fmt.Errorf("config: calibration.tolerance must be positive, got %g", c.Calibration.Tolerance)
	}
	if c.Calibration.Concurrency <= 0 {
		return fmt.Errorf("config: calibration.concurrency must be positive, got %d", c.Calibration.Concurrency)
	}
	return nil
}
