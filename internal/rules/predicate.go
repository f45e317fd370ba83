// internal/rules/predicate.go
package rules

import (
	"sort"
	"strconv"
	"strings"

	"github.com/solvfell/templar/internal/types"
)

/*
 * Predicate truth evaluation.
 *
 * Implements the three predicate kinds (Set, SetToValue, Contains) against
 * a field snapshot. Values are compared in string form because settings
 * documents (properties, .env) carry everything as strings while JSON and
 * YAML deliver typed scalars; string normalization makes the two worlds
 * comparable.
 *
 * Why function-based: three predicate kinds via switch statement are
 * cleaner than interface polymorphism with minimal behavior variation.
 */

// Holds reports whether the predicate is true for the given field.
// A nil field (the predicate names a field absent from the set) makes the
// base predicate false; Not inverts the result as usual.
func Holds(p types.Predicate, f *types.Field) bool {
	truth := baseTruth(p, f)
	if p.Not {
		return !truth
	}
	return truth
}

// baseTruth evaluates the predicate kind without the Not inversion.
func baseTruth(p types.Predicate, f *types.Field) bool {
	if f == nil {
		return false
	}
	switch p.State {
	case types.StateSet:
		return f.Checked && !IsEmpty(f.Value)
	case types.StateSetToValue:
		return ValueString(f.Value) == p.Value
	case types.StateContains:
		return containsValue(f.Value, p.Value)
	default:
		return false
	}
}

// conditionsHold evaluates a rule's AND-combined conditions against the
// field index. An empty condition list is always true.
func conditionsHold(rule types.Rule, idx fieldIndex) bool {
	for _, cond := range rule.Conditions {
		if !Holds(cond, idx[cond.Name]) {
			return false
		}
	}
	return true
}

// fieldIndex maps field names to fields for O(1) predicate lookup during
// evaluation passes.
type fieldIndex map[string]*types.Field

// indexFields builds a fieldIndex over the given slice. The index aliases
// the slice's backing array, so mutations through it are visible to the
// caller's copy.
func indexFields(fields []types.Field) fieldIndex {
	idx := make(fieldIndex, len(fields))
	for i := range fields {
		idx[fields[i].Name] = &fields[i]
	}
	return idx
}

// IsEmpty reports whether a field value counts as unset: nil, the
// empty string, or an empty array.
func IsEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []string:
		return len(val) == 0
	case []any:
		return len(val) == 0
	default:
		return false
	}
}

// ValueString normalizes a field value to its string form for SetToValue
// comparison. Arrays join their elements with commas, matching the flat
// representation settings formats use.
func ValueString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []string:
		return strings.Join(val, ",")
	case []any:
		parts := make([]string, 0, len(val))
		for _, e := range val {
			parts = append(parts, ValueString(e))
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

// containsValue reports whether a field value contains the target: element
// membership for arrays, substring match for strings and other scalars.
func containsValue(v any, target string) bool {
	switch val := v.(type) {
	case nil:
		return false
	case []string:
		for _, e := range val {
			if e == target {
				return true
			}
		}
		return false
	case []any:
		for _, e := range val {
			if ValueString(e) == target {
				return true
			}
		}
		return false
	default:
		return strings.Contains(ValueString(v), target)
	}
}

// predicateKey is the canonical string form of a predicate, used for
// order-independent condition set comparison in the validator.
func predicateKey(p types.Predicate) string {
	return p.Name + "\x00" + string(p.State) + "\x00" + p.Value + "\x00" + strconv.FormatBool(p.Not)
}

// conditionSetKey canonicalizes a condition list: sorted predicate keys
// joined, so two rules with the same conditions in any order compare equal.
func conditionSetKey(conditions []types.Predicate) string {
	keys := make([]string, 0, len(conditions))
	for _, c := range conditions {
		keys = append(keys, predicateKey(c))
	}
	sort.Strings(keys)
	return strings.Join(keys, "\x01")
}
