// internal/rules/validate.go
package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/solvfell/templar/internal/types"
)

/*
 * Static rule analysis.
 *
 * Validates a flat rule list before it is ever applied: internal
 * contradictions within one rule, cross-rule contradictions on shared
 * target fields, opposite-not conflicts, circular field dependencies, and
 * merge suggestions for rules sharing identical condition sets.
 *
 * Error/warning split: contradictions and cycles invalidate the rule
 * list; merge suggestions are advisory only. A rule pair is never
 * reported as both contradictory and mergeable - contradiction takes
 * precedence.
 *
 * Mutual exclusivity of condition sets uses exact field+state+value
 * comparison only. Numeric range overlap between conditions is not
 * reasoned about; strengthening this would silently change which rule
 * sets are flagged invalid.
 *
 * The field dependency graph has an edge target -> condition for every
 * rule, since a rule's target fields change state based on its condition
 * fields. Cycle detection is depth-first traversal with a recursion
 * stack over field names, the same technique resolve.go applies to rule
 * set names.
 */

// Result is the outcome of static rule validation. IsValid is false iff
// any error was collected; warnings never invalidate.
type Result struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validate statically analyzes a rule list. Pure and deterministic given
// rule order; no I/O.
func Validate(rules []types.Rule) Result {
	v := &validator{rules: rules, conflicted: map[[2]int]bool{}}

	v.checkInternal()
	v.checkCrossRule()
	v.checkCircularDependencies()
	v.suggestMerges()

	return Result{
		IsValid:  len(v.errors) == 0,
		Errors:   v.errors,
		Warnings: v.warnings,
	}
}

type validator struct {
	rules    []types.Rule
	errors   []string
	warnings []string

	// conflicted marks rule pairs already reported as contradictory so
	// merge suggestions skip them.
	conflicted map[[2]int]bool
}

func (v *validator) errorf(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) warnf(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

// ruleLabel names a rule in messages: its description when present,
// otherwise its 1-based position.
func ruleLabel(r types.Rule, i int) string {
	if r.Description != "" {
		return fmt.Sprintf("%q", r.Description)
	}
	return fmt.Sprintf("rule %d", i+1)
}

// conflictKind classifies how two predicates on the same field disagree.
type conflictKind int

const (
	conflictNone conflictKind = iota
	conflictStates
	conflictValues
	conflictNot
)

// predicateConflict compares two predicates naming the same field.
//
// Contains predicates are additive: different values accumulate and a
// Contains never conflicts with another state. The only Contains
// contradiction is the same value demanded and forbidden at once.
// For SetToValue, opposite not flags with different values are
// compatible ("must be X" and "must not be Y").
func predicateConflict(a, b types.Predicate) conflictKind {
	if a.State == types.StateContains || b.State == types.StateContains {
		if a.State == b.State && a.Value == b.Value && a.Not != b.Not {
			return conflictNot
		}
		return conflictNone
	}
	if a.State != b.State {
		return conflictStates
	}
	if a.Not != b.Not {
		if a.State == types.StateSetToValue && a.Value != b.Value {
			return conflictNone
		}
		return conflictNot
	}
	if a.State == types.StateSetToValue && a.Value != b.Value {
		return conflictValues
	}
	return conflictNone
}

// checkInternal flags rules whose own conditions (or targets) name the
// same field with mutually exclusive states or values.
func (v *validator) checkInternal() {
	for i, rule := range v.rules {
		if field, ok := findInternalConflict(rule.Conditions); ok {
			v.errorf("%s has contradictory conditions on field %q", ruleLabel(rule, i), field)
		}
		if field, ok := findInternalConflict(rule.Targets); ok {
			v.errorf("%s has contradictory targets on field %q", ruleLabel(rule, i), field)
		}
	}
}

// findInternalConflict scans one predicate list for a same-field conflict
// and returns the first offending field name in predicate order.
func findInternalConflict(preds []types.Predicate) (string, bool) {
	for i := 0; i < len(preds); i++ {
		for j := i + 1; j < len(preds); j++ {
			if preds[i].Name != preds[j].Name {
				continue
			}
			if predicateConflict(preds[i], preds[j]) != conflictNone {
				return preds[i].Name, true
			}
		}
	}
	return "", false
}

// mutuallyExclusive reports whether two condition sets can never hold at
// the same time. Exact comparison only: a shared field demanded at two
// different values, or the same predicate both required and negated.
func mutuallyExclusive(a, b []types.Predicate) bool {
	for _, pa := range a {
		for _, pb := range b {
			if pa.Name != pb.Name || pa.State != pb.State {
				continue
			}
			if pa.State == types.StateSetToValue && pa.Not == pb.Not && pa.Value != pb.Value {
				return true
			}
			if pa.Value == pb.Value && pa.Not != pb.Not {
				return true
			}
		}
	}
	return false
}

// checkCrossRule flags pairs of rules that impose incompatible targets on
// a shared field while their conditions can hold simultaneously.
func (v *validator) checkCrossRule() {
	for i := 0; i < len(v.rules); i++ {
		for j := i + 1; j < len(v.rules); j++ {
			if mutuallyExclusive(v.rules[i].Conditions, v.rules[j].Conditions) {
				continue
			}
			v.checkTargetPair(i, j)
		}
	}
}

// checkTargetPair compares the two rules' targets field by field and
// records at most one error per conflicting field.
func (v *validator) checkTargetPair(i, j int) {
	a, b := v.rules[i], v.rules[j]
	la, lb := ruleLabel(a, i), ruleLabel(b, j)

	reported := map[string]bool{}
	for _, ta := range a.Targets {
		for _, tb := range b.Targets {
			if ta.Name != tb.Name || reported[ta.Name] {
				continue
			}
			switch predicateConflict(ta, tb) {
			case conflictStates:
				v.errorf("%s and %s demand conflicting states for field %q", la, lb, ta.Name)
			case conflictValues:
				v.errorf("%s and %s demand conflicting values for field %q (%q vs %q)", la, lb, ta.Name, ta.Value, tb.Value)
			case conflictNot:
				v.errorf("field %q cannot be both required and forbidden (%s and %s)", ta.Name, la, lb)
			default:
				continue
			}
			reported[ta.Name] = true
			v.conflicted[[2]int{i, j}] = true
		}
	}
}

// checkCircularDependencies builds the field dependency graph (edge
// target -> condition per rule) and reports every distinct cycle.
func (v *validator) checkCircularDependencies() {
	edges := map[string]map[string]bool{}
	for _, rule := range v.rules {
		for _, target := range rule.Targets {
			for _, cond := range rule.Conditions {
				if edges[target.Name] == nil {
					edges[target.Name] = map[string]bool{}
				}
				edges[target.Name][cond.Name] = true
			}
		}
	}

	graph := map[string][]string{}
	nodes := make([]string, 0, len(edges))
	for from, tos := range edges {
		nodes = append(nodes, from)
		for to := range tos {
			graph[from] = append(graph[from], to)
		}
		sort.Strings(graph[from])
	}
	sort.Strings(nodes)

	seen := map[string]bool{}
	for _, node := range nodes {
		for _, cycle := range findFieldCycles(graph, node) {
			key := canonicalCycle(cycle[:len(cycle)-1])
			if seen[key] {
				continue
			}
			seen[key] = true
			v.errorf("Circular dependency: %s", strings.Join(cycle, " → "))
		}
	}
}

// findFieldCycles runs a depth-first search from start with an explicit
// stack and recursion set, collecting closed cycle paths that pass
// through start. Explicit state instead of language recursion keeps deep
// dependency chains from exhausting the call stack.
func findFieldCycles(graph map[string][]string, start string) [][]string {
	var cycles [][]string

	type frame struct {
		node string
		next int
	}
	stack := []frame{{node: start}}
	onStack := map[string]int{start: 0}
	path := []string{start}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succ := graph[top.node]
		if top.next >= len(succ) {
			delete(onStack, top.node)
			stack = stack[:len(stack)-1]
			path = path[:len(path)-1]
			continue
		}
		next := succ[top.next]
		top.next++

		if at, ok := onStack[next]; ok {
			if next == start {
				cycle := append(append([]string{}, path[at:]...), next)
				cycles = append(cycles, cycle)
			}
			continue
		}
		onStack[next] = len(path)
		path = append(path, next)
		stack = append(stack, frame{node: next})
	}
	return cycles
}

// suggestMerges warns about rules that share an identical condition set
// (order-independent) and whose targets are compatible. Pairs already
// reported as contradictory are skipped: a pair is never both mergeable
// and conflicting.
func (v *validator) suggestMerges() {
	byConditions := map[string][]int{}
	for i, rule := range v.rules {
		key := conditionSetKey(rule.Conditions)
		byConditions[key] = append(byConditions[key], i)
	}

	keys := make([]string, 0, len(byConditions))
	for key := range byConditions {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		group := byConditions[key]
		for gi := 0; gi < len(group); gi++ {
			for gj := gi + 1; gj < len(group); gj++ {
				i, j := group[gi], group[gj]
				if v.conflicted[[2]int{i, j}] {
					continue
				}
				v.warnf("%s and %s share the same conditions and can be merged",
					ruleLabel(v.rules[i], i), ruleLabel(v.rules[j], j))
			}
		}
	}
}
