// internal/rules/resolve.go
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/solvfell/templar/internal/types"
)

/*
 * Rule set resolution and inheritance validation.
 *
 * Resolve walks a rule set's extends chain and flattens it to a single
 * rule list, parent rules first. A child's own rules therefore appear as
 * later entries, which consumers treating order as priority read as
 * overrides.
 *
 * Two failure surfaces with different contracts:
 *   - Resolve returns an error for circular inheritance (fatal to that
 *     resolution call), wrapping ErrCircularInheritance with the name of
 *     the rule set that closed the cycle.
 *   - ValidateInheritance inspects the whole template without failing:
 *     dangling extends references, self-extension and full cycle paths
 *     come back as report strings the editor can display.
 *
 * Cycle detection is depth-first traversal with an explicit visited set;
 * nodes are rule set names. The field-dependency cycle check in
 * validate.go uses the same technique over a different graph.
 */

// Resolve returns the effective rule list of the named rule set, walking
// extends parent-first. An empty name selects the template's default
// (first) rule set. An unknown name resolves to an empty list with no
// error: an absent rule set simply contributes no rules.
func Resolve(t *types.Template, name string) ([]types.Rule, error) {
	var rs *types.RuleSet
	if name == "" {
		rs = t.DefaultRuleSet()
	} else {
		rs = t.RuleSetByName(name)
	}
	if rs == nil {
		return nil, nil
	}
	return resolveChain(t, rs, map[string]bool{}, 0)
}

// ResolveAt resolves the rule set at the given position. Out-of-range
// indices resolve to an empty list, mirroring unknown names.
func ResolveAt(t *types.Template, index int) ([]types.Rule, error) {
	if index < 0 || index >= len(t.RuleSets) {
		return nil, nil
	}
	return resolveChain(t, &t.RuleSets[index], map[string]bool{}, 0)
}

// resolveChain recursively flattens the extends chain. visiting tracks
// names on the current walk; revisiting one means the chain is circular.
func resolveChain(t *types.Template, rs *types.RuleSet, visiting map[string]bool, depth int) ([]types.Rule, error) {
	if depth > types.MaxInheritanceDepth {
		return nil, fmt.Errorf("%w: %q", types.ErrInheritanceTooDeep, rs.Name)
	}
	if visiting[rs.Name] {
		return nil, fmt.Errorf("%w: %q", types.ErrCircularInheritance, rs.Name)
	}
	visiting[rs.Name] = true

	var rules []types.Rule
	if rs.Extends != "" {
		if parent := t.RuleSetByName(rs.Extends); parent != nil {
			parentRules, err := resolveChain(t, parent, visiting, depth+1)
			if err != nil {
				return nil, err
			}
			rules = append(rules, parentRules...)
		}
	}
	return append(rules, rs.Rules...), nil
}

// FindRuleSet selects a rule set by name or, failing that, by tag (first
// set carrying the tag wins). Used for selectors the caller supplied
// explicitly, so a miss is a structural error rather than an empty
// resolution.
func FindRuleSet(t *types.Template, selector string) (*types.RuleSet, error) {
	if rs := t.RuleSetByName(selector); rs != nil {
		return rs, nil
	}
	for i := range t.RuleSets {
		if t.RuleSets[i].HasTag(selector) {
			return &t.RuleSets[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", types.ErrUnknownRuleSet, selector)
}

// InheritanceChain returns the linear ancestor list of the named rule
// set, parent-first, ending with the set itself. If the walk encounters a
// repeated name it terminates and appends the repeat with a "(circular)"
// sentinel instead of looping.
func InheritanceChain(t *types.Template, name string) []string {
	rs := t.RuleSetByName(name)
	if rs == nil {
		return nil
	}

	// Walk child -> parent, then reverse to parent-first order.
	var chain []string
	seen := map[string]bool{}
	for rs != nil {
		if seen[rs.Name] {
			chain = append(chain, rs.Name+" (circular)")
			break
		}
		seen[rs.Name] = true
		chain = append(chain, rs.Name)
		if rs.Extends == "" {
			break
		}
		rs = t.RuleSetByName(rs.Extends)
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// ValidateInheritance inspects every rule set's extends reference and
// reports problems without failing: dangling references, self-extension,
// and circular chains with their full path. Cycles reachable from
// multiple starting sets are reported once.
func ValidateInheritance(t *types.Template) []string {
	var problems []string
	seenCycles := map[string]bool{}

	names := make([]string, 0, len(t.RuleSets))
	for i := range t.RuleSets {
		names = append(names, t.RuleSets[i].Name)
	}
	sort.Strings(names)

	for _, name := range names {
		rs := t.RuleSetByName(name)
		if rs.Extends == "" {
			continue
		}
		if t.RuleSetByName(rs.Extends) == nil {
			problems = append(problems, fmt.Sprintf("rule set %q extends unknown rule set %q", rs.Name, rs.Extends))
			continue
		}
		if rs.Extends == rs.Name {
			problems = append(problems, fmt.Sprintf("rule set %q extends itself", rs.Name))
			continue
		}
		if cycle := findInheritanceCycle(t, rs.Name); cycle != nil {
			key := canonicalCycle(cycle[:len(cycle)-1])
			if !seenCycles[key] {
				seenCycles[key] = true
				problems = append(problems, "circular inheritance: "+strings.Join(cycle, " → "))
			}
		}
	}
	return problems
}

// findInheritanceCycle walks the extends chain from start and returns the
// cycle path (closed, e.g. [A B C A]) if start participates in one.
// Returns nil when the chain terminates or the cycle does not include
// start, which avoids attributing a downstream cycle to every set that
// merely points into it.
func findInheritanceCycle(t *types.Template, start string) []string {
	var path []string
	pos := map[string]int{}
	current := start
	for {
		if at, ok := pos[current]; ok {
			if current != start {
				return nil
			}
			return append(path[at:], current)
		}
		pos[current] = len(path)
		path = append(path, current)
		rs := t.RuleSetByName(current)
		if rs == nil || rs.Extends == "" {
			return nil
		}
		current = rs.Extends
	}
}

// canonicalCycle produces an orientation-stable key for a cycle node list
// by rotating the smallest name to the front. Used to de-duplicate the
// same cycle discovered from different starting points.
func canonicalCycle(nodes []string) string {
	if len(nodes) == 0 {
		return ""
	}
	min := 0
	for i, n := range nodes {
		if n < nodes[min] {
			min = i
		}
	}
	rotated := append(append([]string{}, nodes[min:]...), nodes[:min]...)
	return strings.Join(rotated, "\x00")
}
