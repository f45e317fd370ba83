package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/solvfell/templar/internal/report"
	"github.com/solvfell/templar/internal/rules"
	"github.com/solvfell/templar/internal/settings"
	"github.com/solvfell/templar/internal/types"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate template rule sets",
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Statically validate rules and inheritance",
	Long: `Check resolves the selected rule set, runs static analysis
(contradictions, circular field dependencies, merge suggestions) and
inspects the whole template's inheritance graph.`,
	Args: cobra.NoArgs,
	RunE: runRulesCheck,
}

func init() {
	rulesCmd.AddCommand(rulesCheckCmd)
	rootCmd.AddCommand(rulesCmd)
}

func runRulesCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	tmpl, err := settings.LoadTemplate(cfg.TemplatePath)
	if err != nil {
		return err
	}

	name := cfg.RuleSet
	if name != "" {
		rs, err := rules.FindRuleSet(tmpl, name)
		if err != nil {
			return err
		}
		name = rs.Name
	} else if rs := tmpl.DefaultRuleSet(); rs != nil {
		name = rs.Name
	}

	inheritance := rules.ValidateInheritance(tmpl)

	// A circular chain makes resolution fail; the inheritance report
	// already names the cycle, so analysis proceeds on an empty list.
	var ruleList []types.Rule
	if resolved, err := rules.Resolve(tmpl, name); err == nil {
		ruleList = resolved
	} else if len(inheritance) == 0 {
		inheritance = append(inheritance, err.Error())
	}

	rep := &report.RuleReport{
		Template:    tmpl.Name,
		RuleSet:     name,
		Result:      rules.Validate(ruleList),
		Inheritance: inheritance,
	}

	if cfg.JSON {
		data, err := report.RulesJSON(rep)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else if !quiet {
		fmt.Fprint(os.Stderr, report.RulesText(rep))
	}

	if !rep.IsValid() || (cfg.Strict && len(rep.Result.Warnings) > 0) {
		return failure
	}
	return nil
}
