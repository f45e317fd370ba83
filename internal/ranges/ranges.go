// Package ranges parses and checks field value range specifications.
package ranges

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

/*
 * Range specification handling.
 *
 * A template field may declare a range string constraining its value.
 * Five shapes exist:
 *
 *   "string"          unconstrained text (also the fallback shape)
 *   "boolean"         true/false
 *   "integer"         any whole number
 *   "integer(a..b)"   whole number within [a, b] inclusive
 *   "opt1||opt2"      enumeration, exact match against one alternative
 *   "string[]"        array of unconstrained strings
 *
 * Parsing is total: an unparseable spec behaves as "string" rather than
 * failing, so a malformed template degrades to unconstrained validation
 * instead of blocking the caller.
 *
 * String inspection dispatch is replaced by an explicit sum type (Kind)
 * consumed exhaustively by Validate and Describe.
 */

// Kind is the parsed shape of a range specification.
type Kind int

const (
	KindUnconstrained Kind = iota
	KindBoolean
	KindInteger
	KindIntegerRange
	KindEnum
	KindStringArray
)

// Spec is a parsed range specification. Min/Max are valid only for
// KindIntegerRange; Options only for KindEnum.
type Spec struct {
	Kind    Kind
	Min     int
	Max     int
	Options []string
}

// Parse converts a raw range string into a Spec. Parse is total:
// unrecognized input yields KindUnconstrained.
func Parse(raw string) Spec {
	s := strings.TrimSpace(raw)

	switch s {
	case "", "string":
		return Spec{Kind: KindUnconstrained}
	case "boolean":
		return Spec{Kind: KindBoolean}
	case "integer":
		return Spec{Kind: KindInteger}
	case "string[]":
		return Spec{Kind: KindStringArray}
	}

	if strings.Contains(s, "||") {
		parts := strings.Split(s, "||")
		options := make([]string, 0, len(parts))
		for _, p := range parts {
			options = append(options, strings.TrimSpace(p))
		}
		return Spec{Kind: KindEnum, Options: options}
	}

	if min, max, ok := parseIntegerRange(s); ok {
		return Spec{Kind: KindIntegerRange, Min: min, Max: max}
	}

	return Spec{Kind: KindUnconstrained}
}

// parseIntegerRange parses "integer(a..b)" with inclusive bounds.
// Returns ok=false for anything else, including inverted bounds.
func parseIntegerRange(s string) (int, int, bool) {
	if !strings.HasPrefix(s, "integer(") || !strings.HasSuffix(s, ")") {
		return 0, 0, false
	}
	inner := s[len("integer(") : len(s)-1]
	bounds := strings.SplitN(inner, "..", 2)
	if len(bounds) != 2 {
		return 0, 0, false
	}
	min, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
	if err != nil {
		return 0, 0, false
	}
	max, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
	if err != nil {
		return 0, 0, false
	}
	if min > max {
		return 0, 0, false
	}
	return min, max, true
}

// Validate reports whether value satisfies the spec.
// Nil values validate true; presence requirements are the rule engine's
// concern, not the range check's.
func Validate(value any, spec Spec) bool {
	if value == nil {
		return true
	}

	switch spec.Kind {
	case KindUnconstrained:
		return true
	case KindBoolean:
		return validateBoolean(value)
	case KindInteger:
		_, ok := asInteger(value)
		return ok
	case KindIntegerRange:
		n, ok := asInteger(value)
		return ok && n >= spec.Min && n <= spec.Max
	case KindEnum:
		s, ok := asString(value)
		if !ok {
			return false
		}
		for _, opt := range spec.Options {
			if s == opt {
				return true
			}
		}
		return false
	case KindStringArray:
		return validateStringArray(value)
	default:
		return true
	}
}

// ValidateRaw parses raw and validates value against it in one step.
func ValidateRaw(value any, raw string) bool {
	return Validate(value, Parse(raw))
}

// Describe renders the spec as a short natural-language phrase for
// editor tooltips and CLI output.
func Describe(spec Spec) string {
	switch spec.Kind {
	case KindBoolean:
		return "true or false"
	case KindInteger:
		return "a whole number"
	case KindIntegerRange:
		return fmt.Sprintf("a whole number between %d and %d", spec.Min, spec.Max)
	case KindEnum:
		return "one of: " + strings.Join(spec.Options, ", ")
	case KindStringArray:
		return "a list of text values"
	default:
		return "any text"
	}
}

// DescribeRaw parses raw and describes it in one step.
func DescribeRaw(raw string) string {
	return Describe(Parse(raw))
}

// validateBoolean accepts bool values and their canonical string forms.
// Properties and .env settings carry everything as strings, so "true"
// and "false" must pass.
func validateBoolean(value any) bool {
	switch v := value.(type) {
	case bool:
		return true
	case string:
		return v == "true" || v == "false"
	default:
		return false
	}
}

// asInteger converts value to int if it represents a whole number.
// Accepts int, int64, whole float64 (JSON numbers), and numeric strings.
// Whitespace-only strings are not valid numbers.
func asInteger(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// asString converts scalar values to their string form for enum matching.
func asString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}

// validateStringArray requires an array value; element types are
// unconstrained per the string[] shape.
func validateStringArray(value any) bool {
	switch value.(type) {
	case []string, []any:
		return true
	default:
		return false
	}
}
