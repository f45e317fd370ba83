// Package cmd implements the templar command-line surface.
//
// Exit codes:
//
//	0  valid (warnings may be present unless --strict)
//	1  validation failure (or warnings with --strict)
//	2  usage or I/O error (missing file, unparseable document, bad flags)
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/solvfell/templar/internal/config"
)

var (
	configFile   string
	templatePath string
	ruleSet      string
	jsonOut      bool
	strict       bool
	quiet        bool
)

var rootCmd = &cobra.Command{
	Use:           "templar",
	Short:         "Templar template rule engine",
	Long:          `Templar validates product configuration settings against declarative templates with conditional field rules.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&templatePath, "template", "", "template JSON file path")
	rootCmd.PersistentFlags().StringVar(&ruleSet, "rule-set", "", "rule set name or tag (default: template's first rule set)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "emit a single JSON object on stdout instead of text")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "treat warnings as failures")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress output (exit code only)")
}

// failure signals a validation failure (exit 1) that has already been
// reported; anything else returned from a command is exit 2.
var failure = errors.New("validation failed")

// Execute runs the root command and maps errors to exit codes.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	if errors.Is(err, failure) {
		return 1
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 2
}

// loadConfig resolves effective configuration: file and environment via
// viper, then persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("template") {
		cfg.TemplatePath = templatePath
	}
	if cmd.Flags().Changed("rule-set") {
		cfg.RuleSet = ruleSet
	}
	if cmd.Flags().Changed("json") {
		cfg.JSON = jsonOut
	}
	if cmd.Flags().Changed("strict") {
		cfg.Strict = strict
	}
	return cfg, nil
}
