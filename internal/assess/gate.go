package assess

import (
	"fmt"
	"sort"

	"github.com/emergent-company/compliance-mcp/internal/status"
)

// fedrampCriticalControls are the five controls whose other-than-satisfied
// status alone fails the FedRAMP gate, regardless of overall score.
var fedrampCriticalControls = []string{"AC-2", "IA-2", "SC-7", "AU-2", "CM-6"}

// fedrampMajorFamilies must each have at least one assessed row.
var fedrampMajorFamilies = []string{"AC", "AU", "CM", "IA", "SC", "SA", "RA", "CA"}

// groupOrders gives the canonical, catalog-independent coverage-table
// order for frameworks whose groupings are standardized control-family
// identifiers rather than free text a catalog author chose. CMMC's 14
// domains and NIST 800-53/FedRAMP's 20 control families are both
// published, fixed lists; IV&V's 9 verification/validation areas and the
// other frameworks' groupings are catalog-defined free text with no
// single published sequence, so they have no entry here and fall back to
// alphabetical order in SortGroups.
var groupOrders = map[string][]string{
	"cmmc": {
		"AC", "AT", "AU", "CA", "CM", "IA", "IR", "MA",
		"MP", "PE", "PS", "RA", "SC", "SI",
	},
	"nist_800_53": {
		"AC", "AT", "AU", "CA", "CM", "CP", "IA", "IR", "MA", "MP",
		"PE", "PL", "PM", "PS", "PT", "RA", "SA", "SC", "SI", "SR",
	},
	"fedramp": {
		"AC", "AT", "AU", "CA", "CM", "CP", "IA", "IR", "MA", "MP",
		"PE", "PL", "PM", "PS", "PT", "RA", "SA", "SC", "SI", "SR",
	},
}

// SortGroups orders groups in place for frameworkID's coverage table:
// the framework's published canonical order if one exists in
// groupOrders, with any grouping absent from that list sorted after the
// known ones; alphabetical order otherwise, as the only available total
// order for catalog-defined free-text groupings.
func SortGroups(frameworkID string, groups []GroupScore) {
	order, ok := groupOrders[frameworkID]
	if !ok {
		sort.Slice(groups, func(i, j int) bool { return groups[i].Grouping < groups[j].Grouping })
		return
	}
	rank := make(map[string]int, len(order))
	for i, g := range order {
		rank[g] = i
	}
	sort.Slice(groups, func(i, j int) bool {
		ri, iKnown := rank[groups[i].Grouping]
		rj, jKnown := rank[groups[j].Grouping]
		if iKnown && jKnown {
			return ri < rj
		}
		if iKnown != jKnown {
			return iKnown
		}
		return groups[i].Grouping < groups[j].Grouping
	})
}

// StandardGate evaluates the representative per-framework gates.
// requirementStatus looks up the canonical status of a specific
// requirement ID (used by FedRAMP's named-control check);
// familyAssessedCounts counts rows other than not_assessed per requirement
// family prefix (used by the family-coverage check).
// criticalCounts is counts narrowed to critical-priority (STIG: CAT1,
// IV&V: critical-severity) requirements only — STIG, SbD, and IV&V gate on
// this subset, not on every requirement regardless of severity. All of
// requirementStatus, familyAssessedCounts, and criticalCounts may be nil
// for frameworks that don't need them.
func StandardGate(
	frameworkID string,
	counts map[status.Status]int,
	overall float64,
	groups []GroupScore,
	requirementStatus func(id string) (status.Status, bool),
	familyAssessedCounts map[string]int,
	criticalCounts map[status.Status]int,
) (bool, string) {
	switch frameworkID {
	case "stig":
		open := criticalCounts[status.NotSatisfied]
		if open == 0 {
			return true, "no CAT1 findings open"
		}
		return false, fmt.Sprintf("%d CAT1 findings open", open)

	case "cmmc":
		notMet := counts[status.NotSatisfied]
		if notMet == 0 {
			return true, "no not_met practices at target level"
		}
		return false, fmt.Sprintf("%d not_met practices at target level", notMet)

	case "fedramp":
		var failedControls []string
		if requirementStatus != nil {
			for _, id := range fedrampCriticalControls {
				if st, ok := requirementStatus(id); ok && st != status.Satisfied && st != status.NotApplicable {
					failedControls = append(failedControls, id)
				}
			}
		}
		var missingFamilies []string
		for _, fam := range fedrampMajorFamilies {
			if familyAssessedCounts[fam] == 0 {
				missingFamilies = append(missingFamilies, fam)
			}
		}
		if len(failedControls) == 0 && overall >= 80 && len(missingFamilies) == 0 {
			return true, "named controls satisfied, score >= 80, all major families assessed"
		}
		return false, fmt.Sprintf("failed_controls=%v score=%.1f missing_families=%v", failedControls, overall, missingFamilies)

	case "sbd":
		notSatisfied := criticalCounts[status.NotSatisfied]
		if notSatisfied == 0 {
			return true, "no critical-priority requirements not_satisfied"
		}
		return false, fmt.Sprintf("%d critical-priority requirements not_satisfied", notSatisfied)

	case "ivv":
		open := criticalCounts[status.NotSatisfied]
		if open == 0 {
			return true, "no critical findings open or in_progress"
		}
		return false, fmt.Sprintf("%d critical findings open or in_progress", open)

	case "atlas":
		if counts[status.NotSatisfied] == 0 && overall >= 80 {
			return true, "no not_satisfied rows, coverage >= 80"
		}
		return false, fmt.Sprintf("not_satisfied=%d coverage=%.1f", counts[status.NotSatisfied], overall)

	default:
		return overall >= 80, fmt.Sprintf("default gate: overall score %.1f >= 80", overall)
	}
}
