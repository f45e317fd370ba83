// Package validation checks a flattened settings document against a
// template: rule propagation decides which fields are required, the
// range validator checks provided values, and template membership flags
// unknown keys.
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/solvfell/templar/internal/ranges"
	"github.com/solvfell/templar/internal/rules"
	"github.com/solvfell/templar/internal/types"
)

/*
 * Settings validation.
 *
 * Pipeline per invocation:
 *   1. Select the rule set (explicit selector must exist; empty selector
 *      means the template default) and resolve its inheritance chain.
 *   2. Overlay settings values onto the template's fields; keys that are
 *      neither a known field nor a dotted child of one become
 *      warning-level "extra" issues.
 *   3. Apply rules to a fixed point so requiredness reflects propagation.
 *   4. Required fields without a value are "missing"; provided values
 *      violating their range are "invalid".
 *
 * Validity: missing and invalid issues invalidate; extra-field warnings
 * never do on their own (--strict escalation is the CLI's concern).
 */

// IssueType classifies a validation issue.
type IssueType string

const (
	IssueMissing IssueType = "missing"
	IssueInvalid IssueType = "invalid"
	IssueWarning IssueType = "warning"
)

// Issue is one per-field validation finding.
type Issue struct {
	Field    string    `json:"field"`
	Type     IssueType `json:"type"`
	Message  string    `json:"message"`
	Expected string    `json:"expected,omitempty"`
	Actual   string    `json:"actual,omitempty"`
}

// Summary holds aggregate counts for a validation result.
type Summary struct {
	Fields   int `json:"fields"`
	Required int `json:"required"`
	Missing  int `json:"missing"`
	Invalid  int `json:"invalid"`
	Warnings int `json:"warnings"`
}

// Result is the outcome of validating one settings document.
type Result struct {
	RunID    types.RunID    `json:"runId"`
	Template string         `json:"template"`
	RuleSet  string         `json:"ruleSet,omitempty"`
	IsValid  bool           `json:"isValid"`
	Issues   []Issue        `json:"issues"`
	Summary  Summary        `json:"summary"`
	Changes  []types.Change `json:"changes,omitempty"`
}

// HasWarnings reports whether any warning-level issue exists.
func (r *Result) HasWarnings() bool {
	return r.Summary.Warnings > 0
}

// Failed reports whether the result should count as a failure, with
// strict escalating warnings to failures.
func (r *Result) Failed(strict bool) bool {
	return !r.IsValid || (strict && r.HasWarnings())
}

// Options controls a validation run.
type Options struct {
	// RuleSet selects a rule set by name or tag. Empty selects the
	// template's default. An explicit selector that matches nothing is
	// a structural error.
	RuleSet string

	// Engine overrides the rule engine; nil uses a default engine.
	Engine *rules.Engine
}

// ValidateSettings validates a flattened settings document against the
// template. Structural problems (unknown rule set selector, apply pass
// ceiling) return an error; per-field findings land in the result.
func ValidateSettings(t *types.Template, values map[string]any, opts Options) (*Result, error) {
	engine := opts.Engine
	if engine == nil {
		engine = rules.NewEngine()
	}

	ruleSetName := opts.RuleSet
	if ruleSetName != "" {
		rs, err := rules.FindRuleSet(t, ruleSetName)
		if err != nil {
			return nil, err
		}
		ruleSetName = rs.Name
	}
	ruleList, err := engine.Resolve(t, ruleSetName)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:    types.NewRunID(),
		Template: t.Name,
		RuleSet:  ruleSetName,
		Issues:   []Issue{},
	}

	fields, extras := overlay(t, values)
	for _, key := range extras {
		result.Issues = append(result.Issues, Issue{
			Field:   key,
			Type:    IssueWarning,
			Message: fmt.Sprintf("field %q is not part of template %q", key, t.Name),
		})
	}

	updated, changes, err := engine.Apply(fields, ruleList)
	if err != nil {
		return nil, err
	}
	result.Changes = changes

	required := rules.RequiredFields(updated, ruleList)

	byName := map[string]*types.Field{}
	for i := range updated {
		byName[updated[i].Name] = &updated[i]
	}

	for _, name := range required {
		f := byName[name]
		if f == nil || !rules.IsEmpty(f.Value) {
			continue
		}
		result.Issues = append(result.Issues, Issue{
			Field:    name,
			Type:     IssueMissing,
			Message:  fmt.Sprintf("required field %q is missing", name),
			Expected: ranges.DescribeRaw(fieldRange(t, name)),
		})
	}

	// Range-check every provided value that maps onto a declared field.
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		f := t.FieldByName(key)
		if f == nil || f.Range == "" {
			continue
		}
		if ranges.ValidateRaw(values[key], f.Range) {
			continue
		}
		result.Issues = append(result.Issues, Issue{
			Field:    key,
			Type:     IssueInvalid,
			Message:  fmt.Sprintf("value for field %q is out of range", key),
			Expected: ranges.DescribeRaw(f.Range),
			Actual:   rules.ValueString(values[key]),
		})
	}

	result.Summary = Summary{
		Fields:   len(t.Fields),
		Required: len(required),
	}
	for _, issue := range result.Issues {
		switch issue.Type {
		case IssueMissing:
			result.Summary.Missing++
		case IssueInvalid:
			result.Summary.Invalid++
		case IssueWarning:
			result.Summary.Warnings++
		}
	}
	result.IsValid = result.Summary.Missing == 0 && result.Summary.Invalid == 0

	sortIssues(result.Issues)
	return result, nil
}

// overlay copies the template's fields and merges settings values onto
// them: a provided key marks its field checked. Keys matching no field
// and no dotted child of one come back as extras, sorted.
func overlay(t *types.Template, values map[string]any) ([]types.Field, []string) {
	fields := make([]types.Field, len(t.Fields))
	copy(fields, t.Fields)

	byName := map[string]int{}
	for i := range fields {
		byName[fields[i].Name] = i
	}

	var extras []string
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if i, ok := byName[key]; ok {
			fields[i].Value = values[key]
			fields[i].Checked = true
			continue
		}
		if isChildKey(t, key) {
			continue
		}
		extras = append(extras, key)
	}
	return fields, extras
}

// isChildKey reports whether key is a dotted child of a declared field
// ("Hosting.HttpsPort" under field "Hosting") or a prefix parent of one
// (key "Hosting" with field "Hosting.HttpsPort" declared).
func isChildKey(t *types.Template, key string) bool {
	for i := range t.Fields {
		name := t.Fields[i].Name
		if strings.HasPrefix(key, name+".") || strings.HasPrefix(name, key+".") {
			return true
		}
	}
	return false
}

// fieldRange returns the declared range of the named field, or empty.
func fieldRange(t *types.Template, name string) string {
	if f := t.FieldByName(name); f != nil {
		return f.Range
	}
	return ""
}

// sortIssues orders issues by severity (missing, invalid, warning) then
// field name, keeping output deterministic across map iteration.
func sortIssues(issues []Issue) {
	rank := map[IssueType]int{IssueMissing: 0, IssueInvalid: 1, IssueWarning: 2}
	sort.SliceStable(issues, func(i, j int) bool {
		if rank[issues[i].Type] != rank[issues[j].Type] {
			return rank[issues[i].Type] < rank[issues[j].Type]
		}
		return issues[i].Field < issues[j].Field
	})
}
