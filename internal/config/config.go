// Package config provides configuration management for the templar CLI.
package config

import "github.com/solvfell/templar/internal/types"

// Config holds CLI-wide settings. Flags override environment, which
// overrides the config file, which overrides these defaults.
type Config struct {
	TemplatePath string
	RuleSet      string
	Strict       bool
	JSON         bool
	MaxPasses    int
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		TemplatePath: "./template.json",
		RuleSet:      "",
		Strict:       false,
		JSON:         false,
		MaxPasses:    types.MaxApplyPasses,
	}
}
