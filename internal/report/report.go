// Package report renders validation outcomes for the command-line
// surface: human-readable text for stderr and a single JSON object for
// stdout under --json.
package report

import (
	"fmt"
	"strings"

	"github.com/solvfell/templar/internal/rules"
	"github.com/solvfell/templar/internal/validation"
)

// RuleReport combines static rule validation with whole-template
// inheritance findings for one rule set.
type RuleReport struct {
	Template    string       `json:"template"`
	RuleSet     string       `json:"ruleSet"`
	Result      rules.Result `json:"result"`
	Inheritance []string     `json:"inheritance,omitempty"`
}

// IsValid reports whether neither rule validation nor inheritance
// inspection found errors.
func (r *RuleReport) IsValid() bool {
	return r.Result.IsValid && len(r.Inheritance) == 0
}

// SettingsText renders a settings validation result as readable text.
func SettingsText(r *validation.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Template: %s\n", r.Template)
	if r.RuleSet != "" {
		fmt.Fprintf(&b, "Rule set: %s\n", r.RuleSet)
	}

	for _, issue := range r.Issues {
		fmt.Fprintf(&b, "  [%s] %s", issue.Type, issue.Message)
		if issue.Expected != "" {
			fmt.Fprintf(&b, " (expected %s", issue.Expected)
			if issue.Actual != "" {
				fmt.Fprintf(&b, ", got %q", issue.Actual)
			}
			b.WriteString(")")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n%d required, %d missing, %d invalid, %d warnings\n",
		r.Summary.Required, r.Summary.Missing, r.Summary.Invalid, r.Summary.Warnings)
	if r.IsValid {
		b.WriteString("Settings are valid\n")
	} else {
		b.WriteString("Settings are invalid\n")
	}
	return b.String()
}

// RulesText renders a static rule validation report as readable text.
func RulesText(r *RuleReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Template: %s\n", r.Template)
	fmt.Fprintf(&b, "Rule set: %s\n", r.RuleSet)

	for _, problem := range r.Inheritance {
		fmt.Fprintf(&b, "  [error] %s\n", problem)
	}
	for _, e := range r.Result.Errors {
		fmt.Fprintf(&b, "  [error] %s\n", e)
	}
	for _, w := range r.Result.Warnings {
		fmt.Fprintf(&b, "  [warning] %s\n", w)
	}

	fmt.Fprintf(&b, "\n%d errors, %d warnings\n",
		len(r.Result.Errors)+len(r.Inheritance), len(r.Result.Warnings))
	if r.IsValid() {
		b.WriteString("Rules are valid\n")
	} else {
		b.WriteString("Rules are invalid\n")
	}
	return b.String()
}

// ChangesText renders an apply change log as readable text.
func ChangesText(r *validation.Result) string {
	var b strings.Builder

	if len(r.Changes) == 0 {
		b.WriteString("No changes\n")
		return b.String()
	}
	for _, c := range r.Changes {
		fmt.Fprintf(&b, "  %s.%s: %v -> %v (%s)\n", c.Field, c.Property, c.Old, c.New, c.Reason)
	}
	fmt.Fprintf(&b, "\n%d changes\n", len(r.Changes))
	return b.String()
}
