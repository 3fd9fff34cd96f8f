package assess_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/emergent-company/compliance-mcp/internal/assess"
	"github.com/emergent-company/compliance-mcp/internal/status"
)

func TestStandardGateSTIGPassesWithNoOpenCAT1(t *testing.T) {
	counts := map[status.Status]int{status.Satisfied: 5}
	passed, _ := assess.StandardGate("stig", counts, 100, nil, nil, nil, nil)
	assert.True(t, passed)
}

func TestStandardGateSTIGFailsWithOpenFindings(t *testing.T) {
	counts := map[status.Status]int{status.NotSatisfied: 1}
	criticalCounts := map[status.Status]int{status.NotSatisfied: 1}
	passed, detail := assess.StandardGate("stig", counts, 50, nil, nil, nil, criticalCounts)
	assert.False(t, passed)
	assert.Contains(t, detail, "1 CAT1")
}

func TestStandardGateSTIGIgnoresNonCriticalOpenFindings(t *testing.T) {
	counts := map[status.Status]int{status.NotSatisfied: 1, status.Satisfied: 4}
	passed, detail := assess.StandardGate("stig", counts, 80, nil, nil, nil, nil)
	assert.True(t, passed, "a not_satisfied CAT2/CAT3 finding alone must not fail the gate")
	assert.Contains(t, detail, "no CAT1")
}

func TestStandardGateFedRAMPRequiresNamedControlsAndFamilies(t *testing.T) {
	requirementStatus := func(id string) (status.Status, bool) {
		if id == "SC-7" {
			return status.NotSatisfied, true
		}
		return status.Satisfied, true
	}
	families := map[string]int{"AC": 1, "AU": 1, "CM": 1, "IA": 1, "SC": 1, "SA": 1, "RA": 1, "CA": 1}

	passed, _ := assess.StandardGate("fedramp", map[status.Status]int{}, 90, nil, requirementStatus, families, nil)
	assert.False(t, passed, "SC-7 not satisfied should fail the gate regardless of score")
}

func TestStandardGateFedRAMPPassesWhenAllConditionsMet(t *testing.T) {
	requirementStatus := func(id string) (status.Status, bool) { return status.Satisfied, true }
	families := map[string]int{"AC": 1, "AU": 1, "CM": 1, "IA": 1, "SC": 1, "SA": 1, "RA": 1, "CA": 1}

	passed, _ := assess.StandardGate("fedramp", map[status.Status]int{}, 90, nil, requirementStatus, families, nil)
	assert.True(t, passed)
}

func TestStandardGateDefaultUsesScoreThreshold(t *testing.T) {
	passed, _ := assess.StandardGate("unknown_framework", map[status.Status]int{}, 85, nil, nil, nil, nil)
	assert.True(t, passed)
}

func TestSortGroupsUsesCanonicalCMMCDomainOrder(t *testing.T) {
	groups := []assess.GroupScore{
		{Grouping: "SI"}, {Grouping: "AC"}, {Grouping: "CM"}, {Grouping: "AT"},
	}
	assess.SortGroups("cmmc", groups)
	var order []string
	for _, g := range groups {
		order = append(order, g.Grouping)
	}
	assert.Equal(t, []string{"AC", "AT", "CM", "SI"}, order)
}

func TestSortGroupsPutsUnknownGroupingsAfterKnownOnes(t *testing.T) {
	groups := []assess.GroupScore{
		{Grouping: "zzz-unlisted"}, {Grouping: "SC"}, {Grouping: "AC"},
	}
	assess.SortGroups("cmmc", groups)
	var order []string
	for _, g := range groups {
		order = append(order, g.Grouping)
	}
	assert.Equal(t, []string{"AC", "SC", "zzz-unlisted"}, order)
}

func TestSortGroupsFallsBackToAlphabeticalForUnlistedFrameworks(t *testing.T) {
	groups := []assess.GroupScore{
		{Grouping: "Operation"}, {Grouping: "Management"}, {Grouping: "Development"},
	}
	assess.SortGroups("ivv", groups)
	var order []string
	for _, g := range groups {
		order = append(order, g.Grouping)
	}
	assert.Equal(t, []string{"Development", "Management", "Operation"}, order)
}
