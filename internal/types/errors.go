package types

import "errors"

// Sentinel errors for Templar operations.
//
// Logical rule problems (contradictions, field dependency cycles, merge
// candidates) are never errors in this sense: they are collected into
// validation results so callers can display them. Sentinels cover the
// truly exceptional conditions only.
var (
	// ErrCircularInheritance indicates a rule set extends itself,
	// directly or transitively, and resolution cannot proceed.
	ErrCircularInheritance = errors.New("circular rule set inheritance")

	// ErrInheritanceTooDeep indicates an extends chain exceeds
	// MaxInheritanceDepth.
	ErrInheritanceTooDeep = errors.New("rule set inheritance chain too deep")

	// ErrApplyPassLimit indicates fixed-point evaluation exceeded
	// MaxApplyPasses without stabilizing. Rules are oscillating at the
	// value level; static validation reports the underlying conflict.
	ErrApplyPassLimit = errors.New("rule application did not reach a fixed point")

	// ErrUnknownRuleSet indicates a rule set name or tag explicitly
	// requested by the caller does not exist in the template.
	ErrUnknownRuleSet = errors.New("unknown rule set")

	// ErrUnknownFormat indicates a settings file extension that no
	// loader handles.
	ErrUnknownFormat = errors.New("unsupported settings format")
)
