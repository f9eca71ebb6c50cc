// Package config holds the settings of one LVS run. A Config is loaded
// from YAML, overridden by command-line flags and passed explicitly to
// every component.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-lvs/pkg/compare"
	"github.com/dd0wney/cluso-lvs/pkg/logging"
	"github.com/dd0wney/cluso-lvs/pkg/metrics"
	"github.com/dd0wney/cluso-lvs/pkg/spice"
	"github.com/dd0wney/cluso-lvs/pkg/validation"
)

// Modes accepted in Config.Mode
const (
	ModeHierarchical = "hierarchical"
	ModeFlatten      = "flatten"
)

// DefaultTolerance is the largest property difference treated as equal
const DefaultTolerance = 1e-6

// Config is the complete configuration of a comparison run
type Config struct {
	Netlist1 string `yaml:"netlist1" validate:"required"`
	Top1     string `yaml:"top1" validate:"omitempty,cellname"`
	Netlist2 string `yaml:"netlist2" validate:"required"`
	Top2     string `yaml:"top2" validate:"omitempty,cellname"`

	Mode       string  `yaml:"mode" validate:"oneof=hierarchical flatten"`
	Concurrent bool    `yaml:"concurrent"`
	Workers    int     `yaml:"workers" validate:"gte=0,lte=4096"`
	Tolerance  float64 `yaml:"tolerance" validate:"gte=0"`
	Seed       uint64  `yaml:"seed"`

	CaseSensitive        bool `yaml:"case_sensitive"`
	SymmetricSourceDrain bool `yaml:"symmetric_source_drain"`
	VerifyProperties     bool `yaml:"verify_properties"`

	// Output receives the rendered report; empty means standard output
	Output     string `yaml:"output"`
	MetricsOut string `yaml:"metrics_out"`

	Log   LogConfig   `yaml:"log"`
	Debug DebugConfig `yaml:"debug"`
}

// LogConfig selects the logger
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// DebugConfig enables verbose diagnostics, all logged at debug level
type DebugConfig struct {
	// DumpBuckets logs every bucket of every refinement step
	DumpBuckets bool `yaml:"dump_buckets"`
	// DumpHierarchy logs the cell tree of both netlists before comparing
	DumpHierarchy bool `yaml:"dump_hierarchy"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Mode:      ModeHierarchical,
		Tolerance: DefaultTolerance,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks field ranges and cross-field constraints
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return validation.NewConfigValidator("config").
		FileExists("netlist1", c.Netlist1).
		FileExists("netlist2", c.Netlist2).
		When(c.Debug.DumpBuckets, func(cv *validation.ConfigValidator) {
			cv.OneOf("log.level", c.Log.Level, []string{"debug"})
		}).
		When(c.Mode == ModeFlatten, func(cv *validation.ConfigValidator) {
			cv.Custom("concurrent", func() error {
				if c.Concurrent {
					return errors.New("concurrent dispatch only applies to hierarchical mode")
				}
				return nil
			})
		}).
		Validate()
}

// Marshal renders the configuration as YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// CompareMode maps Mode onto the comparator mode
func (c *Config) CompareMode() compare.Mode {
	if c.Mode == ModeFlatten {
		return compare.ModeFlatten
	}
	return compare.ModeHierarchical
}

// CompareOptions builds comparator options
func (c *Config) CompareOptions(logger logging.Logger, reg *metrics.Registry) compare.Options {
	return compare.Options{
		Mode:             c.CompareMode(),
		Concurrent:       c.Concurrent,
		Workers:          c.Workers,
		Tolerance:        c.Tolerance,
		Seed:             c.Seed,
		VerifyProperties: c.VerifyProperties,
		DumpBuckets:      c.Debug.DumpBuckets,
		Logger:           logger,
		Metrics:          reg,
	}
}

// ReaderOptions builds SPICE reader options
func (c *Config) ReaderOptions(logger logging.Logger) spice.Options {
	return spice.Options{
		CaseSensitive:        c.CaseSensitive,
		SymmetricSourceDrain: c.SymmetricSourceDrain,
		Logger:               logger,
	}
}

// LogLevel returns the parsed log level
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Log.Level)
}

// LogFormat returns the parsed log format
func (c *Config) LogFormat() logging.Format {
	return logging.ParseFormat(c.Log.Format)
}
