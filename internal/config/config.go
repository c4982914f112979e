// Package config provides configuration loading and management for taskgraph.
package config

import "path/filepath"

// Config is the root configuration.
type Config struct {
	Database  Database  `json:"database"  mapstructure:"database"`
	Decompose Decompose `json:"decompose" mapstructure:"decompose"`
	Estimate  Estimate  `json:"estimate"  mapstructure:"estimate"`
}

// Database selects where the task graph is stored.
type Database struct {
	Path string `json:"path,omitempty" mapstructure:"path"`
}

// Decompose holds decomposition policy knobs. Phases overrides the built-in
// template list; PhaseEffort is the per-subtask effort estimate in hours.
type Decompose struct {
	DefaultStrategy string   `json:"default_strategy,omitempty" mapstructure:"default_strategy"`
	PhaseEffort     float64  `json:"phase_effort,omitempty"     mapstructure:"phase_effort"`
	Phases          []string `json:"phases,omitempty"           mapstructure:"phases"`
}

// Estimate holds effort estimation policy knobs.
type Estimate struct {
	HoursPerDay float64 `json:"hours_per_day,omitempty" mapstructure:"hours_per_day"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		Database:  Database{Path: filepath.Join(".taskgraph", "taskgraph.db")},
		Decompose: Decompose{DefaultStrategy: "hierarchical"},
		Estimate:  Estimate{},
	}
}

// ApplyDefaults fills unset fields after unmarshalling a config file.
func (c *Config) ApplyDefaults() {
	defaults := Default()
	if c.Database.Path == "" {
		c.Database.Path = defaults.Database.Path
	}
	if c.Decompose.DefaultStrategy == "" {
		c.Decompose.DefaultStrategy = defaults.Decompose.DefaultStrategy
	}
}
