package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/solvfell/templar/internal/report"
	"github.com/solvfell/templar/internal/rules"
	"github.com/solvfell/templar/internal/settings"
	"github.com/solvfell/templar/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate <settings-file>",
	Short: "Validate a settings file against the template",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	tmpl, err := settings.LoadTemplate(cfg.TemplatePath)
	if err != nil {
		return err
	}
	values, err := settings.Load(args[0])
	if err != nil {
		return err
	}

	engine := rules.NewEngine()
	engine.MaxPasses = cfg.MaxPasses

	result, err := validation.ValidateSettings(tmpl, values, validation.Options{
		RuleSet: cfg.RuleSet,
		Engine:  engine,
	})
	if err != nil {
		return err
	}

	if cfg.JSON {
		data, err := report.SettingsJSON(result)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else if !quiet {
		fmt.Fprint(os.Stderr, report.SettingsText(result))
	}

	if result.Failed(cfg.Strict) {
		return failure
	}
	return nil
}
