package report

import (
	"encoding/json"

	"github.com/solvfell/templar/internal/validation"
)

// SettingsJSON returns a settings validation result as indented JSON.
func SettingsJSON(r *validation.Result) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// RulesJSON returns a rule validation report as indented JSON.
func RulesJSON(r *RuleReport) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
