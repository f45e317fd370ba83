// internal/rules/validate_test.go
package rules

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/solvfell/templar/internal/types"
)

func TestValidate_CleanRulesAreValid(t *testing.T) {
	rules := []types.Rule{
		{
			Description: "mongo needs connection string",
			Conditions:  []types.Predicate{{Name: "Repository", State: types.StateSetToValue, Value: "MongoDb"}},
			Targets:     []types.Predicate{{Name: "ConnectionString", State: types.StateSet}},
		},
		{
			Description: "tls needs cert",
			Conditions:  []types.Predicate{{Name: "Tls", State: types.StateSet}},
			Targets:     []types.Predicate{{Name: "CertPath", State: types.StateSet}},
		},
	}

	result := Validate(rules)
	if !result.IsValid {
		t.Fatalf("IsValid = false, errors = %v", result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want none", result.Errors)
	}
}

func TestValidate_ValidDespiteWarnings(t *testing.T) {
	// Identical empty condition sets with compatible targets: merge
	// candidates, never errors.
	rules := []types.Rule{
		{Targets: []types.Predicate{{Name: "A", State: types.StateSet}}},
		{Targets: []types.Predicate{{Name: "B", State: types.StateSet}}},
	}

	result := Validate(rules)
	if !result.IsValid {
		t.Fatalf("IsValid = false, errors = %v", result.Errors)
	}
	if len(result.Warnings) == 0 {
		t.Error("Warnings = none, want a merge suggestion")
	}
	if !strings.Contains(result.Warnings[0], "can be merged") {
		t.Errorf("warning %q does not suggest merging", result.Warnings[0])
	}
}

func TestValidate_InternalConditionContradiction(t *testing.T) {
	rules := []types.Rule{
		{
			Description: "broken",
			Conditions: []types.Predicate{
				{Name: "Mode", State: types.StateSetToValue, Value: "on"},
				{Name: "Mode", State: types.StateSetToValue, Value: "off"},
			},
			Targets: []types.Predicate{{Name: "X", State: types.StateSet}},
		},
	}

	result := Validate(rules)
	if result.IsValid {
		t.Fatal("IsValid = true, want false")
	}
	if !strings.Contains(result.Errors[0], "contradictory conditions") {
		t.Errorf("error %q, want internal condition contradiction", result.Errors[0])
	}
	if !strings.Contains(result.Errors[0], `"broken"`) {
		t.Errorf("error %q does not name the rule by description", result.Errors[0])
	}
}

func TestValidate_InternalTargetContradiction(t *testing.T) {
	rules := []types.Rule{
		{
			Targets: []types.Predicate{
				{Name: "Port", State: types.StateSetToValue, Value: "80"},
				{Name: "Port", State: types.StateSetToValue, Value: "443"},
			},
		},
	}

	result := Validate(rules)
	if result.IsValid {
		t.Fatal("IsValid = true, want false")
	}
	if !strings.Contains(result.Errors[0], "contradictory targets") {
		t.Errorf("error %q, want internal target contradiction", result.Errors[0])
	}
	if !strings.Contains(result.Errors[0], "rule 1") {
		t.Errorf("error %q does not fall back to positional rule naming", result.Errors[0])
	}
}

func TestValidate_CrossRuleConflictingValues(t *testing.T) {
	rules := []types.Rule{
		{
			Conditions: []types.Predicate{{Name: "Repo", State: types.StateSet}},
			Targets:    []types.Predicate{{Name: "Port", State: types.StateSetToValue, Value: "80"}},
		},
		{
			Conditions: []types.Predicate{{Name: "Repo", State: types.StateSet}},
			Targets:    []types.Predicate{{Name: "Port", State: types.StateSetToValue, Value: "443"}},
		},
	}

	result := Validate(rules)
	if result.IsValid {
		t.Fatal("IsValid = true, want false")
	}
	if !strings.Contains(result.Errors[0], "conflicting values") {
		t.Errorf("error %q, want conflicting values", result.Errors[0])
	}
}

func TestValidate_CrossRuleConflictingStates(t *testing.T) {
	rules := []types.Rule{
		{Targets: []types.Predicate{{Name: "Port", State: types.StateSet}}},
		{Targets: []types.Predicate{{Name: "Port", State: types.StateSetToValue, Value: "80"}}},
	}

	result := Validate(rules)
	if result.IsValid {
		t.Fatal("IsValid = true, want false")
	}
	if !strings.Contains(result.Errors[0], "conflicting states") {
		t.Errorf("error %q, want conflicting states", result.Errors[0])
	}
}

func TestValidate_NotFlagConflictAcrossOverlappingConditions(t *testing.T) {
	// Different condition sets that can hold together: one rule requires
	// the field, the other forbids it. Both firing at once would
	// oscillate in the applier, so the validator flags the pair even
	// though their conditions are not identical.
	rules := []types.Rule{
		{
			Conditions: []types.Predicate{{Name: "Tls", State: types.StateSet}},
			Targets:    []types.Predicate{{Name: "HttpPort", State: types.StateSet, Not: true}},
		},
		{
			Conditions: []types.Predicate{{Name: "Debug", State: types.StateSet}},
			Targets:    []types.Predicate{{Name: "HttpPort", State: types.StateSet}},
		},
	}

	result := Validate(rules)
	if result.IsValid {
		t.Fatal("IsValid = true, want false")
	}
	if !strings.Contains(result.Errors[0], "cannot be both required and forbidden") {
		t.Errorf("error %q, want required-and-forbidden conflict", result.Errors[0])
	}
}

func TestValidate_ExclusiveConditionsDoNotConflict(t *testing.T) {
	// Same target field, different forced values, but the conditions can
	// never hold together: no contradiction.
	rules := []types.Rule{
		{
			Conditions: []types.Predicate{{Name: "Repo", State: types.StateSetToValue, Value: "SQLite"}},
			Targets:    []types.Predicate{{Name: "Driver", State: types.StateSetToValue, Value: "sqlite3"}},
		},
		{
			Conditions: []types.Predicate{{Name: "Repo", State: types.StateSetToValue, Value: "MongoDb"}},
			Targets:    []types.Predicate{{Name: "Driver", State: types.StateSetToValue, Value: "mongo"}},
		},
	}

	result := Validate(rules)
	if !result.IsValid {
		t.Fatalf("IsValid = false, errors = %v", result.Errors)
	}
}

func TestValidate_NotFlagContradiction(t *testing.T) {
	rules := []types.Rule{
		{
			Conditions: []types.Predicate{{Name: "Repo", State: types.StateSet}},
			Targets:    []types.Predicate{{Name: "Field1", State: types.StateSet, Not: false}},
		},
		{
			Conditions: []types.Predicate{{Name: "Repo", State: types.StateSet}},
			Targets:    []types.Predicate{{Name: "Field1", State: types.StateSet, Not: true}},
		},
	}

	result := Validate(rules)
	if result.IsValid {
		t.Fatal("IsValid = true, want false")
	}
	found := false
	for _, e := range result.Errors {
		if strings.Contains(e, "cannot be both required") {
			found = true
		}
	}
	if !found {
		t.Errorf("Errors = %v, want a 'cannot be both required' entry", result.Errors)
	}
}

func TestValidate_ContainsTargetsAreAdditive(t *testing.T) {
	rules := []types.Rule{
		{
			Conditions: []types.Predicate{{Name: "Mode", State: types.StateSet}},
			Targets:    []types.Predicate{{Name: "Plugins", State: types.StateContains, Value: "auth"}},
		},
		{
			Conditions: []types.Predicate{{Name: "Mode", State: types.StateSet}},
			Targets:    []types.Predicate{{Name: "Plugins", State: types.StateContains, Value: "metrics"}},
		},
	}

	result := Validate(rules)
	if !result.IsValid {
		t.Fatalf("IsValid = false, errors = %v; Contains targets must accumulate", result.Errors)
	}
}

func TestValidate_CircularDependency(t *testing.T) {
	rules := []types.Rule{
		{
			Conditions: []types.Predicate{{Name: "A", State: types.StateSet}},
			Targets:    []types.Predicate{{Name: "B", State: types.StateSet}},
		},
		{
			Conditions: []types.Predicate{{Name: "B", State: types.StateSet}},
			Targets:    []types.Predicate{{Name: "A", State: types.StateSet}},
		},
	}

	result := Validate(rules)
	if result.IsValid {
		t.Fatal("IsValid = true, want false")
	}
	found := false
	for _, e := range result.Errors {
		if strings.Contains(e, "Circular dependency") {
			found = true
		}
	}
	if !found {
		t.Errorf("Errors = %v, want a 'Circular dependency' entry", result.Errors)
	}
}

func TestValidate_CycleReportedOnce(t *testing.T) {
	rules := []types.Rule{
		{
			Conditions: []types.Predicate{{Name: "A", State: types.StateSet}},
			Targets:    []types.Predicate{{Name: "B", State: types.StateSet}},
		},
		{
			Conditions: []types.Predicate{{Name: "B", State: types.StateSet}},
			Targets:    []types.Predicate{{Name: "C", State: types.StateSet}},
		},
		{
			Conditions: []types.Predicate{{Name: "C", State: types.StateSet}},
			Targets:    []types.Predicate{{Name: "A", State: types.StateSet}},
		},
	}

	result := Validate(rules)
	count := 0
	for _, e := range result.Errors {
		if strings.Contains(e, "Circular dependency") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("cycle reported %d times, want once; errors = %v", count, result.Errors)
	}
}

func TestValidate_ContradictionSuppressesMergeSuggestion(t *testing.T) {
	rules := []types.Rule{
		{
			Conditions: []types.Predicate{{Name: "Repo", State: types.StateSet}},
			Targets:    []types.Predicate{{Name: "Port", State: types.StateSetToValue, Value: "80"}},
		},
		{
			Conditions: []types.Predicate{{Name: "Repo", State: types.StateSet}},
			Targets:    []types.Predicate{{Name: "Port", State: types.StateSetToValue, Value: "443"}},
		},
	}

	result := Validate(rules)
	if result.IsValid {
		t.Fatal("IsValid = true, want false")
	}
	for _, w := range result.Warnings {
		if strings.Contains(w, "can be merged") {
			t.Errorf("warning %q reported for a contradictory pair", w)
		}
	}
}

func TestValidate_MergeSuggestionOrderIndependent(t *testing.T) {
	rules := []types.Rule{
		{
			Conditions: []types.Predicate{
				{Name: "A", State: types.StateSet},
				{Name: "B", State: types.StateSetToValue, Value: "x"},
			},
			Targets: []types.Predicate{{Name: "C", State: types.StateSet}},
		},
		{
			Conditions: []types.Predicate{
				{Name: "B", State: types.StateSetToValue, Value: "x"},
				{Name: "A", State: types.StateSet},
			},
			Targets: []types.Predicate{{Name: "D", State: types.StateSet}},
		},
	}

	result := Validate(rules)
	if len(result.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want one merge suggestion", result.Warnings)
	}
}

// Property-based test: validation never crashes and is deterministic for
// arbitrary generated rule lists.
func TestValidate_PropertyNeverCrashesDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	fieldNames := []string{"A", "B", "C", "D"}
	states := []types.State{types.StateSet, types.StateSetToValue, types.StateContains}

	genRules := func(seed int64, count int) []types.Rule {
		// Deterministic pseudo-random rule synthesis from the seed.
		next := func() int64 {
			seed = seed*6364136223846793005 + 1442695040888963407
			v := seed >> 33
			if v < 0 {
				v = -v
			}
			return v
		}
		rules := make([]types.Rule, count)
		for i := range rules {
			nConds := int(next() % 3)
			nTargets := 1 + int(next()%2)
			for c := 0; c < nConds; c++ {
				rules[i].Conditions = append(rules[i].Conditions, types.Predicate{
					Name:  fieldNames[next()%4],
					State: states[next()%3],
					Value: fieldNames[next()%4],
					Not:   next()%2 == 0,
				})
			}
			for c := 0; c < nTargets; c++ {
				rules[i].Targets = append(rules[i].Targets, types.Predicate{
					Name:  fieldNames[next()%4],
					State: states[next()%3],
					Value: fieldNames[next()%4],
					Not:   next()%2 == 0,
				})
			}
		}
		return rules
	}

	properties.Property("validation never panics and is deterministic", prop.ForAll(
		func(seed int64, count int) bool {
			rules := genRules(seed, count)

			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Validate() panicked: %v", r)
				}
			}()

			first := Validate(rules)
			second := Validate(rules)
			if first.IsValid != second.IsValid {
				return false
			}
			if len(first.Errors) != len(second.Errors) || len(first.Warnings) != len(second.Warnings) {
				return false
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(0, 8),
	))

	properties.TestingRun(t)
}
