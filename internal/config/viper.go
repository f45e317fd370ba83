package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("template", defaults.TemplatePath)
	v.SetDefault("rule_set", defaults.RuleSet)
	v.SetDefault("strict", defaults.Strict)
	v.SetDefault("json", defaults.JSON)
	v.SetDefault("max_passes", defaults.MaxPasses)

	// Bind environment variables with TEMPLAR_ prefix
	v.SetEnvPrefix("TEMPLAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		TemplatePath: v.GetString("template"),
		RuleSet:      v.GetString("rule_set"),
		Strict:       v.GetBool("strict"),
		JSON:         v.GetBool("json"),
		MaxPasses:    v.GetInt("max_passes"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks the template path is set and the pass ceiling is
// positive and bounded.
func validateConfig(cfg *Config) error {
	if cfg.TemplatePath == "" {
		return fmt.Errorf("template path must not be empty")
	}
	if cfg.MaxPasses <= 0 {
		return fmt.Errorf("max_passes must be positive, got %d", cfg.MaxPasses)
	}
	if cfg.MaxPasses > 10000 {
		return fmt.Errorf("max_passes must be at most 10000, got %d", cfg.MaxPasses)
	}
	return nil
}
