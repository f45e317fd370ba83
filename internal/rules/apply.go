// internal/rules/apply.go
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/solvfell/templar/internal/types"
)

/*
 * Rule application.
 *
 * Evaluates a resolved rule list against a field set with repeated
 * forward passes until a full pass produces no change (fixed point).
 * Because one rule's targets can be another rule's conditions, a single
 * pass is not enough: enabling field A may require field B, which in
 * turn requires field C on the next pass.
 *
 * Copy-on-write: the caller's field slice is never mutated; Apply
 * returns a fresh collection plus the change log. History and editor
 * views consume the returned changes instead of observing mutation via
 * callbacks.
 *
 * Termination: rules that force conflicting values on the same field
 * oscillate instead of converging. Static validation catches those
 * configurations; at runtime the pass ceiling turns the pathological
 * case into ErrApplyPassLimit rather than an infinite loop. Rules never
 * add or remove fields - only checked and value are mutated.
 */

// Apply evaluates rules against fields to a fixed point using the
// default pass ceiling. Returns the updated field collection and the
// ordered change log.
func Apply(fields []types.Field, rules []types.Rule) ([]types.Field, []types.Change, error) {
	return applyWithLimit(fields, rules, types.MaxApplyPasses)
}

// applyWithLimit is Apply with an explicit pass ceiling, used by Engine.
func applyWithLimit(fields []types.Field, rules []types.Rule, maxPasses int) ([]types.Field, []types.Change, error) {
	updated := copyFields(fields)
	idx := indexFields(updated)

	var changes []types.Change
	for pass := 0; pass < maxPasses; pass++ {
		passChanges := runPass(rules, idx)
		if len(passChanges) == 0 {
			return updated, changes, nil
		}
		changes = append(changes, passChanges...)
	}
	return updated, changes, fmt.Errorf("%w after %d passes", types.ErrApplyPassLimit, maxPasses)
}

// runPass evaluates every rule once against the current snapshot and
// applies the targets of rules whose conditions hold. Returns the
// changes made during this pass.
func runPass(rules []types.Rule, idx fieldIndex) []types.Change {
	var changes []types.Change
	for i, rule := range rules {
		if !conditionsHold(rule, idx) {
			continue
		}
		reason := ruleLabel(rule, i)
		for _, target := range rule.Targets {
			changes = append(changes, applyTarget(target, idx[target.Name], reason)...)
		}
	}
	return changes
}

// applyTarget enforces one target predicate on a field, recording every
// mutation. Targets naming a field absent from the set are skipped:
// rules never add fields. Already-satisfied targets change nothing, which
// is what lets evaluation reach a fixed point.
func applyTarget(p types.Predicate, f *types.Field, reason string) []types.Change {
	if f == nil {
		return nil
	}

	switch p.State {
	case types.StateSet:
		if p.Not {
			return uncheck(f, reason)
		}
		// Required, not defaulted: the value stays as-is even if empty.
		return check(f, reason)

	case types.StateSetToValue:
		if p.Not {
			if ValueString(f.Value) != p.Value {
				return nil
			}
			changes := setValue(f, "", reason)
			return append(changes, uncheck(f, reason)...)
		}
		changes := setValue(f, p.Value, reason)
		return append(changes, check(f, reason)...)

	case types.StateContains:
		if p.Not {
			return removeElement(f, p.Value, reason)
		}
		// Checking is part of the target's effect, not a side effect of
		// appending: a field that already contains the value still gets
		// checked so downstream Set conditions see it.
		changes := appendElement(f, p.Value, reason)
		return append(changes, check(f, reason)...)
	}
	return nil
}

func check(f *types.Field, reason string) []types.Change {
	if f.Checked {
		return nil
	}
	f.Checked = true
	return []types.Change{{Field: f.Name, Property: types.PropertyChecked, Old: false, New: true, Reason: reason}}
}

func uncheck(f *types.Field, reason string) []types.Change {
	if !f.Checked {
		return nil
	}
	f.Checked = false
	return []types.Change{{Field: f.Name, Property: types.PropertyChecked, Old: true, New: false, Reason: reason}}
}

func setValue(f *types.Field, value string, reason string) []types.Change {
	if ValueString(f.Value) == value {
		return nil
	}
	old := f.Value
	f.Value = value
	return []types.Change{{Field: f.Name, Property: types.PropertyValue, Old: old, New: value, Reason: reason}}
}

// appendElement adds value to the field if not already contained:
// appended for arrays, concatenated for strings. No-op when the field
// already contains the value, preserving the additive Contains law.
func appendElement(f *types.Field, value string, reason string) []types.Change {
	if containsValue(f.Value, value) {
		return nil
	}
	old := f.Value
	switch v := f.Value.(type) {
	case nil:
		f.Value = []any{value}
	case []string:
		f.Value = append(append([]string{}, v...), value)
	case []any:
		f.Value = append(append([]any{}, v...), value)
	case string:
		f.Value = v + value
	default:
		f.Value = ValueString(v) + value
	}
	return []types.Change{{Field: f.Name, Property: types.PropertyValue, Old: old, New: f.Value, Reason: reason}}
}

// removeElement drops value from the field if contained: filtered out of
// arrays, stripped as a substring from strings.
func removeElement(f *types.Field, value string, reason string) []types.Change {
	if value == "" || !containsValue(f.Value, value) {
		return nil
	}
	old := f.Value
	switch v := f.Value.(type) {
	case []string:
		kept := make([]string, 0, len(v))
		for _, e := range v {
			if e != value {
				kept = append(kept, e)
			}
		}
		f.Value = kept
	case []any:
		kept := make([]any, 0, len(v))
		for _, e := range v {
			if ValueString(e) != value {
				kept = append(kept, e)
			}
		}
		f.Value = kept
	case string:
		f.Value = strings.ReplaceAll(v, value, "")
	default:
		f.Value = strings.ReplaceAll(ValueString(v), value, "")
	}
	return []types.Change{{Field: f.Name, Property: types.PropertyValue, Old: old, New: f.Value, Reason: reason}}
}

// copyFields deep-copies a field slice, including array values, so the
// caller's collection is never aliased by the applied result.
func copyFields(fields []types.Field) []types.Field {
	out := make([]types.Field, len(fields))
	copy(out, fields)
	for i := range out {
		switch v := out[i].Value.(type) {
		case []string:
			out[i].Value = append([]string{}, v...)
		case []any:
			out[i].Value = append([]any{}, v...)
		}
	}
	return out
}

// IsFieldRequired reports whether the named field is required under the
// current field state: either already checked, or the positive Set /
// SetToValue target of a rule whose conditions currently hold.
// Requiredness is derived, never stored.
func IsFieldRequired(name string, fields []types.Field, rules []types.Rule) bool {
	idx := indexFields(fields)
	if f := idx[name]; f != nil && f.Checked {
		return true
	}
	for _, rule := range rules {
		if !conditionsHold(rule, idx) {
			continue
		}
		for _, target := range rule.Targets {
			if target.Name != name || target.Not {
				continue
			}
			if target.State == types.StateSet || target.State == types.StateSetToValue {
				return true
			}
		}
	}
	return false
}

// RequiredFields returns the sorted names of all fields required under
// the current field state.
func RequiredFields(fields []types.Field, rules []types.Rule) []string {
	idx := indexFields(fields)
	required := map[string]bool{}

	for i := range fields {
		if fields[i].Checked {
			required[fields[i].Name] = true
		}
	}
	for _, rule := range rules {
		if !conditionsHold(rule, idx) {
			continue
		}
		for _, target := range rule.Targets {
			if target.Not {
				continue
			}
			if target.State == types.StateSet || target.State == types.StateSetToValue {
				if idx[target.Name] != nil {
					required[target.Name] = true
				}
			}
		}
	}

	names := make([]string, 0, len(required))
	for name := range required {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
