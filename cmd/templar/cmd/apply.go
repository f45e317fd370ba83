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

var applyCmd = &cobra.Command{
	Use:   "apply <settings-file>",
	Short: "Show the rule propagation change log for a settings file",
	Args:  cobra.ExactArgs(1),
	RunE:  runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
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
		fmt.Fprint(os.Stderr, report.ChangesText(result))
	}
	return nil
}
