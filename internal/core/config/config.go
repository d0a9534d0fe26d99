// Package config handles configuration loading and validation for redline.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Color output modes for rendered hunks.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ReviewConfig holds diff and review behavior.
type ReviewConfig struct {
	// ContextLines is the number of unchanged lines kept around each
	// change when grouping hunks.
	ContextLines int `yaml:"context_lines"`
	// Include and Exclude are doublestar patterns selecting which
	// document paths accept proposals. Everything is included by
	// default.
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// Config holds the application configuration.
type Config struct {
	Review  ReviewConfig `yaml:"review"`
	Color   string       `yaml:"color"`
	DataDir string       `yaml:"-"` // set by caller, not from config file
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Review: ReviewConfig{
			ContextLines: 3,
			Include:      []string{"**"},
			Exclude:      []string{},
		},
		Color: ColorAuto,
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	// Apply defaults for zero values
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Color == "" {
		c.Color = defaults.Color
	}
	if len(c.Review.Include) == 0 {
		c.Review.Include = defaults.Review.Include
	}
	if c.Review.Exclude == nil {
		c.Review.Exclude = defaults.Review.Exclude
	}
}

// Reviewable reports whether the document path accepts proposals: it
// must match at least one include pattern and no exclude pattern.
func (c *Config) Reviewable(path string) bool {
	p := filepath.ToSlash(path)

	included := false
	for _, pattern := range c.Review.Include {
		if ok, _ := doublestar.Match(pattern, p); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}

	for _, pattern := range c.Review.Exclude {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return false
		}
	}

	return true
}

// SessionsFile returns the path to the review sessions JSON file.
func (c *Config) SessionsFile() string {
	return filepath.Join(c.DataDir, "sessions.json")
}

// ProposalsFile returns the path to the pending proposals JSON file.
func (c *Config) ProposalsFile() string {
	return filepath.Join(c.DataDir, "proposals.json")
}

// NotificationsFile returns the path to the notifications JSON file.
func (c *Config) NotificationsFile() string {
	return filepath.Join(c.DataDir, "notifications.json")
}
