package rules

import "github.com/solvfell/templar/internal/types"

// Engine bundles resolution, validation and application behind one value
// for dependency injection into the CLI and other collaborators. The
// engine holds configuration only, never state: every method is a pure
// function over its arguments, so a single Engine is safe for concurrent
// use across distinct inputs.
type Engine struct {
	// MaxPasses overrides the fixed-point pass ceiling. Zero means
	// types.MaxApplyPasses.
	MaxPasses int
}

// NewEngine creates a rule engine with default limits.
func NewEngine() *Engine {
	return &Engine{MaxPasses: types.MaxApplyPasses}
}

// Resolve flattens the named rule set's inheritance chain. See Resolve.
func (e *Engine) Resolve(t *types.Template, name string) ([]types.Rule, error) {
	return Resolve(t, name)
}

// Validate statically analyzes a resolved rule list. See Validate.
func (e *Engine) Validate(ruleList []types.Rule) Result {
	return Validate(ruleList)
}

// Apply evaluates rules against fields to a fixed point under the
// engine's pass ceiling. See Apply.
func (e *Engine) Apply(fields []types.Field, ruleList []types.Rule) ([]types.Field, []types.Change, error) {
	maxPasses := e.MaxPasses
	if maxPasses <= 0 {
		maxPasses = types.MaxApplyPasses
	}
	return applyWithLimit(fields, ruleList, maxPasses)
}
