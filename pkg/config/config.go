// Package config loads scorer configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "2s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the standard-library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds the knobs for training and live scoring.
type Config struct {
	// CoreDataURL is the base URL of the event API to poll.
	CoreDataURL string `yaml:"core_data_url"`
	// PollInterval is the delay between polls.
	PollInterval Duration `yaml:"poll_interval"`
	// EventLimit is the number of events requested per poll.
	EventLimit int `yaml:"event_limit"`

	// MaxCategories bounds one-hot columns per categorical field.
	MaxCategories int `yaml:"max_categories"`

	// Detector knobs.
	Trees         int     `yaml:"trees"`
	SampleSize    int     `yaml:"sample_size"`
	Contamination float64 `yaml:"contamination"`
	Seed          int64   `yaml:"seed"`

	// Threshold overrides the fitted anomaly threshold when > 0.
	Threshold float64 `yaml:"threshold"`

	// StorePath is the SQLite file results are written to; empty disables
	// persistence.
	StorePath string `yaml:"store_path"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		CoreDataURL:   "http://localhost:59880/api/v3",
		PollInterval:  Duration(2 * time.Second),
		EventLimit:    5,
		MaxCategories: 10,
		Trees:         100,
		SampleSize:    256,
		Contamination: 0.01,
		Seed:          42,
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration for values that would break a run.
func (c Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if c.EventLimit <= 0 {
		return fmt.Errorf("event_limit must be positive")
	}
	if c.MaxCategories <= 0 {
		return fmt.Errorf("max_categories must be positive")
	}
	if c.Trees <= 0 || c.SampleSize <= 0 {
		return fmt.Errorf("trees and sample_size must be positive")
	}
	if c.Contamination < 0 || c.Contamination >= 1 {
		return fmt.Errorf("contamination must be in [0, 1)")
	}
	return nil
}
