// Package types provides domain models shared across Templar components.
//
// Zero-dependency design: types.go, rules.go and errors.go use only the
// standard library so the engine packages stay free of transitive weight.
// ID utilities in ids.go import uuid but are isolated for selective use.
//
// Document shape stability: JSON tags on these structs define the persisted
// template format. RuleSet.Extends is a name reference, never an index, so
// documents remain stable when rule sets are reordered.
package types

// Field is a single named configuration value inside a template.
//
// Name is unique within a field set and dot-path addressable: a field may
// be a leaf ("HttpsPort") or a prefix parent of nested children
// ("Hosting.HttpsPort"). Checked marks the field as active/required.
// Range holds the raw range specification string; parsing lives in
// internal/ranges and is total, so an unparseable spec degrades to an
// unconstrained string field rather than an error.
type Field struct {
	Name        string `json:"name"`
	Value       any    `json:"value,omitempty"`
	Checked     bool   `json:"checked,omitempty"`
	Range       string `json:"range,omitempty"`
	Description string `json:"description,omitempty"`
}

// Template is the root document: a product's fields plus its rule sets.
// The first rule set in RuleSets is the implicit default.
//
// Templates are passed by value into the engine and never retained across
// calls; fields and rule sets are owned wholesale, never aliased between
// templates.
type Template struct {
	Name        string    `json:"name"`
	FileName    string    `json:"fileName,omitempty"`
	Version     string    `json:"version,omitempty"`
	Description string    `json:"description,omitempty"`
	Owner       string    `json:"owner,omitempty"`
	Fields      []Field   `json:"fields"`
	RuleSets    []RuleSet `json:"ruleSets,omitempty"`
}

// FieldByName returns the field with the given name, or nil if absent.
func (t *Template) FieldByName(name string) *Field {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i]
		}
	}
	return nil
}

// RuleSetByName returns the rule set with the given name, or nil if absent.
func (t *Template) RuleSetByName(name string) *RuleSet {
	for i := range t.RuleSets {
		if t.RuleSets[i].Name == name {
			return &t.RuleSets[i]
		}
	}
	return nil
}

// DefaultRuleSet returns the first rule set, or nil for rule-less templates.
func (t *Template) DefaultRuleSet() *RuleSet {
	if len(t.RuleSets) == 0 {
		return nil
	}
	return &t.RuleSets[0]
}

// Resource limits enforced by the engine to keep evaluation bounded.
const (
	// MaxApplyPasses caps fixed-point iteration in the rule applier.
	// Genuine cascades are bounded by the number of distinct fields a
	// template declares; anything deeper is an oscillation that static
	// validation should have caught. Exceeding the cap is an error, not
	// a hang.
	MaxApplyPasses = 64

	// MaxInheritanceDepth caps the extends chain walk. Inheritance
	// chains in real templates are two or three levels; the cap is a
	// backstop for documents that defeat cycle detection via sheer size.
	MaxInheritanceDepth = 32
)
