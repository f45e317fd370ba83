package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solvfell/templar/internal/ranges"
	"github.com/solvfell/templar/internal/rules"
	"github.com/solvfell/templar/internal/settings"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Describe the template's fields and rule sets",
	Args:  cobra.NoArgs,
	RunE:  runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

// fieldInfo and ruleSetInfo shape the JSON describe output.
type fieldInfo struct {
	Name  string `json:"name"`
	Range string `json:"range,omitempty"`
	Human string `json:"description"`
}

type ruleSetInfo struct {
	Name  string   `json:"name"`
	Tags  []string `json:"tags,omitempty"`
	Chain []string `json:"chain"`
	Rules int      `json:"rules"`
}

func runDescribe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	tmpl, err := settings.LoadTemplate(cfg.TemplatePath)
	if err != nil {
		return err
	}

	fields := make([]fieldInfo, 0, len(tmpl.Fields))
	for _, f := range tmpl.Fields {
		fields = append(fields, fieldInfo{
			Name:  f.Name,
			Range: f.Range,
			Human: ranges.DescribeRaw(f.Range),
		})
	}

	sets := make([]ruleSetInfo, 0, len(tmpl.RuleSets))
	for _, rs := range tmpl.RuleSets {
		sets = append(sets, ruleSetInfo{
			Name:  rs.Name,
			Tags:  rs.Tags,
			Chain: rules.InheritanceChain(tmpl, rs.Name),
			Rules: len(rs.Rules),
		})
	}

	if cfg.JSON {
		data, err := json.MarshalIndent(map[string]any{
			"template": tmpl.Name,
			"fields":   fields,
			"ruleSets": sets,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if quiet {
		return nil
	}

	fmt.Fprintf(os.Stderr, "Template: %s\n\nFields:\n", tmpl.Name)
	for _, f := range fields {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", f.Name, f.Human)
	}
	fmt.Fprintf(os.Stderr, "\nRule sets:\n")
	for _, rs := range sets {
		line := fmt.Sprintf("  %s (%d rules)", rs.Name, rs.Rules)
		if len(rs.Chain) > 1 {
			line += ", inherits " + strings.Join(rs.Chain, " → ")
		}
		if len(rs.Tags) > 0 {
			line += " [" + strings.Join(rs.Tags, ", ") + "]"
		}
		fmt.Fprintln(os.Stderr, line)
	}
	return nil
}
