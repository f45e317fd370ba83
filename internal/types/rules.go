// internal/types/rules.go
package types

/*
 * Domain types for rule resolution and evaluation.
 *
 * Provides Predicate, Rule, RuleSet and Change structures used by
 * internal/rules for static validation and fixed-point application.
 * These types mirror the persisted template document shape; no wire
 * conversion layer exists because the document is the wire format.
 *
 * Key types:
 *   - Predicate: single field condition/target (Set, SetToValue, Contains)
 *   - Rule: implication conditions => targets (conditions AND-combined)
 *   - RuleSet: named rule collection with extends-based inheritance
 *   - Change: one recorded field mutation from rule application
 *
 * Dependencies: none (standard library only)
 */

// State is the predicate kind applied to one field.
type State string

const (
	// StateSet is true iff the field is checked and has a non-empty value.
	StateSet State = "Set"

	// StateSetToValue is true iff the field's value equals Predicate.Value
	// compared as strings.
	StateSetToValue State = "SetToValue"

	// StateContains is true iff the field's value contains Predicate.Value
	// as a substring (string values) or element (array values). Contains
	// targets are additive: multiple Contains targets on one field with
	// different values accumulate instead of conflicting.
	StateContains State = "Contains"
)

// Predicate is one field condition or target. Not inverts the predicate:
// as a condition it negates truth, as a target it demands the opposite
// effect (must be unchecked, must not equal, must not contain). A target
// with Not true and the same state/value as one with Not false is a hard
// contradiction, never a duplicate.
type Predicate struct {
	Name  string `json:"name"`
	State State  `json:"state"`
	Value string `json:"value,omitempty"`
	Not   bool   `json:"not,omitempty"`
}

// Rule is an implication over field predicates: when every condition holds
// against the current field state, every target is enforced. An empty
// condition list means the rule always fires.
type Rule struct {
	Description string      `json:"description,omitempty"`
	Conditions  []Predicate `json:"conditions,omitempty"`
	Targets     []Predicate `json:"targets"`
}

// RuleSet is a named, taggable collection of rules. Extends references a
// parent rule set by name; resolution yields parent rules first so a
// child's own rules act as later, overriding entries for consumers that
// treat order as priority. Extends chains must form a DAG.
type RuleSet struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Extends     string   `json:"extends,omitempty"`
	Rules       []Rule   `json:"rules"`
}

// HasTag reports whether the rule set carries the given tag.
func (rs *RuleSet) HasTag(tag string) bool {
	for _, t := range rs.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Property names a mutable aspect of a field in a Change record.
type Property string

const (
	PropertyChecked Property = "checked"
	PropertyValue   Property = "value"
)

// Change records one field mutation performed by the rule applier.
// Reason carries the label of the triggering rule so editors and history
// views can attribute the change without re-running evaluation.
type Change struct {
	Field    string   `json:"field"`
	Property Property `json:"property"`
	Old      any      `json:"old"`
	New      any      `json:"new"`
	Reason   string   `json:"reason"`
}
