// Package clarify implements the Impact × Uncertainty clarification
// engine: classify free text on two ordinal dimensions, generate a
// clarification question per classified item, and return a bounded,
// prioritized list.
package clarify

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/emergent-company/compliance-mcp/internal/store"
)

// Impact is the mission/compliance impact band of a requirement fragment.
type Impact string

const (
	ImpactMissionCritical     Impact = "mission_critical"
	ImpactComplianceRequired  Impact = "compliance_required"
	ImpactEnhancement         Impact = "enhancement"
)

// Uncertainty is how unclear a requirement fragment is.
type Uncertainty string

const (
	UncertaintyUnknown   Uncertainty = "unknown"
	UncertaintyAmbiguous Uncertainty = "ambiguous"
	UncertaintyAssumed   Uncertainty = "assumed"
)

var missionCriticalKeywords = []string{
	"performance", "latency", "throughput", "availability", "uptime",
	"scalability", "infrastructure", "disaster recovery", "failover",
}

var complianceKeywords = []string{
	"nist", "stig", "fedramp", "cmmc", "fips", "cui", "audit",
	"encryption", "hipaa", "pci",
}

var hedgeWords = []string{
	"should", "probably", "likely", "typically", "usually", "might",
	"perhaps", "may", "could", "assume", "assumed", "expected",
	"ideally", "generally", "presumably",
}

// impactRank orders Impact for the tie-break rule.
var impactRank = map[Impact]int{ImpactMissionCritical: 0, ImpactComplianceRequired: 1, ImpactEnhancement: 2}

// priorityMatrix is the fixed 3x3 table; 1 = highest priority.
var priorityMatrix = map[Impact]map[Uncertainty]int{
	ImpactMissionCritical: {UncertaintyUnknown: 1, UncertaintyAmbiguous: 2, UncertaintyAssumed: 3},
	ImpactComplianceRequired: {UncertaintyUnknown: 2, UncertaintyAmbiguous: 3, UncertaintyAssumed: 4},
	ImpactEnhancement: {UncertaintyUnknown: 3, UncertaintyAmbiguous: 4, UncertaintyAssumed: 5},
}

// Context carries optional hints from stored requirement rows that steer
// classification (requirement_type) without changing the keyword rules.
type Context struct {
	RequirementType string
}

// AmbiguityPattern is a configured phrase whose presence in text marks it
// ambiguous, paired with the clarification text to surface when matched.
type AmbiguityPattern struct {
	Phrase         string
	Clarification  string
}

// DefaultAmbiguityPatterns covers common vague requirement phrasing.
var DefaultAmbiguityPatterns = []AmbiguityPattern{
	{Phrase: "as needed", Clarification: "Specify the exact trigger condition instead of \"as needed\"."},
	{Phrase: "appropriate", Clarification: "Define what \"appropriate\" means concretely for this requirement."},
	{Phrase: "etc.", Clarification: "Enumerate the full list instead of trailing off with \"etc.\"."},
	{Phrase: "tbd", Clarification: "Resolve the TBD before this requirement can be implemented."},
	{Phrase: "some kind of", Clarification: "Name the specific mechanism instead of \"some kind of\"."},
}

// ClassifyImpact is total over free text given optional context.
func ClassifyImpact(text string, ctx Context) Impact {
	lower := strings.ToLower(text)
	if ctx.RequirementType == "performance" || ctx.RequirementType == "infrastructure" {
		return ImpactMissionCritical
	}
	for _, kw := range missionCriticalKeywords {
		if strings.Contains(lower, kw) {
			return ImpactMissionCritical
		}
	}
	if ctx.RequirementType == "security" || ctx.RequirementType == "compliance" {
		return ImpactComplianceRequired
	}
	for _, kw := range complianceKeywords {
		if strings.Contains(lower, kw) {
			return ImpactComplianceRequired
		}
	}
	return ImpactEnhancement
}

// ClassifyUncertainty is total over free text and a list of ambiguity patterns.
func ClassifyUncertainty(text string, patterns []AmbiguityPattern) (Uncertainty, *AmbiguityPattern, string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || len(strings.Fields(trimmed)) < 10 {
		return UncertaintyUnknown, nil, ""
	}
	lower := strings.ToLower(trimmed)
	for i := range patterns {
		if strings.Contains(lower, strings.ToLower(patterns[i].Phrase)) {
			return UncertaintyAmbiguous, &patterns[i], patterns[i].Phrase
		}
	}
	for _, hedge := range hedgeWords {
		if containsWord(lower, hedge) {
			return UncertaintyAssumed, nil, hedge
		}
	}
	return UncertaintyAssumed, nil, ""
}

func containsWord(text, word string) bool {
	for _, f := range strings.Fields(text) {
		if strings.Trim(f, ".,;:!?\"'") == word {
			return true
		}
	}
	return false
}

// Question is one emitted clarification item.
type Question struct {
	Section     string
	Impact      Impact
	Uncertainty Uncertainty
	Priority    int
	Text        string
}

// classify builds a Question for one (section, text, context) triple.
func classify(section, text string, ctx Context, patterns []AmbiguityPattern) Question {
	impact := ClassifyImpact(text, ctx)
	uncertainty, pattern, matched := ClassifyUncertainty(text, patterns)

	var questionText string
	switch uncertainty {
	case UncertaintyUnknown:
		questionText = "What are the specific requirements for \"" + section + "\"?"
	case UncertaintyAmbiguous:
		clarification := ""
		if pattern != nil {
			clarification = pattern.Clarification
		}
		questionText = "The phrase \"" + matched + "\" in \"" + section + "\" is ambiguous. " + clarification
	case UncertaintyAssumed:
		if matched != "" {
			questionText = "\"" + section + "\" hedges with \"" + matched + "\" — is this a MUST or a SHOULD?"
		} else {
			questionText = "\"" + section + "\" may be assuming unstated behavior — please confirm intent."
		}
	}

	return Question{
		Section:     section,
		Impact:      impact,
		Uncertainty: uncertainty,
		Priority:    priorityMatrix[impact][uncertainty],
		Text:        questionText,
	}
}

// Rank sorts candidates by (priority, impact_rank, section_name) ascending
// and returns the first n.
func Rank(candidates []Question, n int) []Question {
	sorted := make([]Question, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority < sorted[j].Priority
		}
		if impactRank[sorted[i].Impact] != impactRank[sorted[j].Impact] {
			return impactRank[sorted[i].Impact] < impactRank[sorted[j].Impact]
		}
		return sorted[i].Section < sorted[j].Section
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// requiredSpecSections are the headings a spec file is expected to have.
var requiredSpecSections = []string{
	"Purpose", "Scope", "Requirements", "Non-goals", "Acceptance Criteria",
}

var clarityValues = map[Uncertainty]float64{
	UncertaintyUnknown:   0.0,
	UncertaintyAmbiguous: 0.5,
	UncertaintyAssumed:   0.8,
}

// SpecResult is the outcome of analyzing a spec file in spec-file mode.
type SpecResult struct {
	Questions    []Question
	ClarityScore float64
}

// AnalyzeSpecText parses markdown by "## " headings into (heading, body)
// pairs, checks for required sections, and scores clarity.
func AnalyzeSpecText(markdown string, maxQuestions int) SpecResult {
	sections := parseHeadings(markdown)

	present := map[string]bool{}
	for _, s := range sections {
		present[s.heading] = true
	}

	var candidates []Question
	var clarityTotal float64
	count := 0

	for _, required := range requiredSpecSections {
		if !present[required] {
			q := Question{
				Section:     required,
				Impact:      ClassifyImpact(required, Context{}),
				Uncertainty: UncertaintyUnknown,
				Text:        "What are the specific requirements for \"" + required + "\"?",
			}
			q.Priority = priorityMatrix[q.Impact][q.Uncertainty]
			candidates = append(candidates, q)
			clarityTotal += clarityValues[UncertaintyUnknown]
			count++
		}
	}

	for _, s := range sections {
		q := classify(s.heading, s.body, Context{}, DefaultAmbiguityPatterns)
		if q.Uncertainty != UncertaintyAssumed || strings.TrimSpace(s.body) != "" {
			candidates = append(candidates, q)
		}
		clarityTotal += clarityValues[q.Uncertainty]
		count++
	}

	clarity := 1.0
	if count > 0 {
		clarity = clarityTotal / float64(count)
	}

	return SpecResult{
		Questions:    Rank(candidates, maxQuestions),
		ClarityScore: clarity,
	}
}

type headingSection struct {
	heading string
	body    string
}

func parseHeadings(markdown string) []headingSection {
	lines := strings.Split(markdown, "\n")
	var sections []headingSection
	var current *headingSection
	var body strings.Builder

	flush := func() {
		if current != nil {
			current.body = body.String()
			sections = append(sections, *current)
		}
		body.Reset()
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "## ") {
			flush()
			heading := strings.TrimSpace(strings.TrimPrefix(line, "## "))
			current = &headingSection{heading: heading}
			continue
		}
		if current != nil {
			body.WriteString(line)
			body.WriteString("\n")
		}
	}
	flush()
	return sections
}

// AnalyzeSession loads a session's intake requirements and runs the
// session-mode classification: each row's requirement_type becomes the
// context, and rows whose clarity or completeness score is below 0.5 are
// forced into the "assumed" bucket even if hedge-word detection missed it;
// rows already classified "unknown" keep that classification.
func AnalyzeSession(ctx context.Context, s *store.Store, sessionID string, maxQuestions int) ([]Question, error) {
	rows, err := s.ListIntakeRequirements(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var candidates []Question
	for _, row := range rows {
		q := classify(row.RequirementType, row.RawText, Context{RequirementType: row.RequirementType}, DefaultAmbiguityPatterns)
		lowScore := (row.ClarityScore.Valid && row.ClarityScore.Float64 < 0.5) ||
			(row.CompletenessScore.Valid && row.CompletenessScore.Float64 < 0.5)
		if lowScore && q.Uncertainty != UncertaintyUnknown {
			q.Uncertainty = UncertaintyAssumed
			q.Priority = priorityMatrix[q.Impact][q.Uncertainty]
			q.Text = "Requirement \"" + row.ID + "\" has a low clarity/completeness score ( " +
				strconv.FormatFloat(row.ClarityScore.Float64, 'f', 2, 64) + " ) — please confirm intent."
		}
		candidates = append(candidates, q)
	}

	return Rank(candidates, maxQuestions), nil
}
