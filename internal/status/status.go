// Package status defines the canonical assessment-row status enum and the
// per-framework display-name tables used to translate it for report
// rendering. Different frameworks spell the same underlying state
// differently (satisfied/not_satisfied vs met/not_met vs pass/fail); all
// of them are mapped to this single enum at the storage boundary.
package status

// Status is the canonical assessment-row status.
type Status string

const (
	Satisfied          Status = "satisfied"
	PartiallySatisfied Status = "partially_satisfied"
	NotSatisfied       Status = "not_satisfied"
	NotApplicable      Status = "not_applicable"
	NotAssessed        Status = "not_assessed"
	RiskAccepted       Status = "risk_accepted"
)

// All enumerates every canonical status, in the order they should appear
// in per-status count tables.
var All = []Status{Satisfied, PartiallySatisfied, NotSatisfied, NotApplicable, NotAssessed, RiskAccepted}

// Valid reports whether s is a member of the canonical status set.
func Valid(s Status) bool {
	for _, c := range All {
		if c == s {
			return true
		}
	}
	return false
}

// displayNames maps (framework_id, canonical status) to the framework's
// own vocabulary, used only when rendering reports. Frameworks not listed
// use the canonical names verbatim.
var displayNames = map[string]map[Status]string{
	"cmmc": {
		Satisfied:          "met",
		PartiallySatisfied: "partially_met",
		NotSatisfied:       "not_met",
		NotApplicable:      "not_applicable",
		NotAssessed:        "not_assessed",
		RiskAccepted:       "risk_accepted",
	},
	"stig": {
		Satisfied:          "NotAFinding",
		PartiallySatisfied: "partially_satisfied",
		NotSatisfied:       "Open",
		NotApplicable:      "Not_Applicable",
		NotAssessed:        "Not_Reviewed",
		RiskAccepted:       "accepted_risk",
	},
	"ivv": {
		Satisfied:          "pass",
		PartiallySatisfied: "partial",
		NotSatisfied:       "fail",
		NotApplicable:      "not_applicable",
		NotAssessed:        "not_assessed",
		RiskAccepted:       "risk_accepted",
	},
}

// DisplayName returns the framework-specific display name for s, falling
// back to the canonical string when the framework has no override.
func DisplayName(frameworkID string, s Status) string {
	if table, ok := displayNames[frameworkID]; ok {
		if name, ok := table[s]; ok {
			return name
		}
	}
	return string(s)
}

// FromDisplayName resolves a framework-specific display name back to the
// canonical Status. Falls back to treating name as already canonical.
func FromDisplayName(frameworkID, name string) Status {
	if table, ok := displayNames[frameworkID]; ok {
		for canon, display := range table {
			if display == name {
				return canon
			}
		}
	}
	return Status(name)
}
