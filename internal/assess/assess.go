// Package assess implements the framework-agnostic assessor base workflow:
// load project and catalog, run an engine's automated checks, upsert
// assessment rows, compute a summary, and write one audit event.
package assess

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emergent-company/compliance-mcp/internal/audit"
	"github.com/emergent-company/compliance-mcp/internal/catalog"
	"github.com/emergent-company/compliance-mcp/internal/status"
	"github.com/emergent-company/compliance-mcp/internal/store"
)

// familyOf extracts the control-family prefix from a requirement id, e.g.
// "AC-2" -> "AC". Ids with no separator are returned unchanged.
func familyOf(id string) string {
	if idx := strings.LastIndex(id, "-"); idx > 0 {
		return id[:idx]
	}
	return id
}

// Engine is the contract a framework-specific assessor implements.
// GetAutomatedChecks is optional — engines with no automated checks leave
// it nil, and every requirement defaults to not_assessed.
type Engine struct {
	FrameworkID        string
	TableName          string
	CatalogFilename    string
	GetAutomatedChecks func(projectDir string) (map[string]status.Status, error)
}

// GroupScore is the per-grouping (domain/family/process_area) roll-up.
type GroupScore struct {
	Grouping string
	Total    int
	Score    float64
}

// Summary is the result of one assessment run.
type Summary struct {
	ProjectID    string
	FrameworkID  string
	StatusCounts map[status.Status]int
	GroupScores  []GroupScore
	OverallScore float64
	GatePassed   bool
	GateDetail   string
}

// Runner executes the base assessment workflow against the shared store.
type Runner struct {
	Store   *store.Store
	Catalog *catalog.Loader
	Audit   *audit.Writer
	// CatalogDir is the directory framework catalog files are resolved from.
	CatalogDir string
	// ScoreFn defaults to Weighted when nil. GateFn defaults to StandardGate
	// when nil, which covers every shipped framework and falls back to a
	// score >= 80 threshold for anything else.
	ScoreFn func(counts map[status.Status]int, total int) float64
	GateFn  func(frameworkID string, counts map[status.Status]int, overall float64, groups []GroupScore, requirementStatus func(id string) (status.Status, bool), familyAssessedCounts map[string]int, criticalCounts map[status.Status]int) (bool, string)
}

// Run executes the fixed assessment workflow for engine against project,
// using projectDir to drive automated checks (may be empty, skipping
// auto-checks). A requirement neither matched by an automated check nor
// previously marked not_applicable/risk_accepted stays not_assessed
// unless promoteReviewed is set, in which case it is promoted to
// not_satisfied — callers opt into this for frameworks (like STIG) where
// an un-reviewed finding should count against the gate rather than sit
// in a default state indefinitely.
func (r *Runner) Run(ctx context.Context, engine Engine, projectID, projectDir string, promoteReviewed bool) (*Summary, error) {
	project, err := r.Store.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("project not found: %w", err)
	}

	catalogPath := engine.CatalogFilename
	if r.CatalogDir != "" {
		catalogPath = r.CatalogDir + "/" + engine.CatalogFilename
	}
	cat, err := r.Catalog.Load(engine.FrameworkID, catalogPath)
	if err != nil {
		return nil, fmt.Errorf("catalog not found: %w", err)
	}

	auto := map[string]status.Status{}
	if engine.GetAutomatedChecks != nil && projectDir != "" {
		auto, err = engine.GetAutomatedChecks(projectDir)
		if err != nil {
			// A total failure of the check function degrades to
			// catalog-only assessment rather than failing the run.
			auto = map[string]status.Status{}
		}
	}

	counts := map[status.Status]int{}
	groupTotals := map[string]int{}
	groupCounts := map[string]map[status.Status]int{}
	reqStatus := map[string]status.Status{}
	familyAssessedCounts := map[string]int{}
	criticalCounts := map[status.Status]int{}

	for _, req := range cat.Requirements {
		st := status.NotAssessed
		if s, ok := auto[req.ID]; ok && status.Valid(s) {
			st = s
		} else if prior, err := r.Store.GetAssessment(ctx, project.ProjectID, engine.FrameworkID, req.ID); err == nil {
			if prior.Status == status.NotApplicable || prior.Status == status.RiskAccepted {
				st = prior.Status
			}
		}
		if st == status.NotAssessed && promoteReviewed {
			st = status.NotSatisfied
		}

		a := &store.Assessment{
			ProjectID:     project.ProjectID,
			FrameworkID:   engine.FrameworkID,
			RequirementID: req.ID,
			Status:        st,
			Assessor:      engine.FrameworkID + "-assessor",
			UpdatedAt:     time.Now(),
		}
		if err := r.Store.UpsertAssessment(ctx, a); err != nil {
			return nil, fmt.Errorf("persisting assessment for %s: %w", req.ID, err)
		}

		counts[st]++
		grouping := req.Grouping
		groupTotals[grouping]++
		if groupCounts[grouping] == nil {
			groupCounts[grouping] = map[status.Status]int{}
		}
		groupCounts[grouping][st]++

		reqStatus[req.ID] = st
		if st != status.NotAssessed {
			familyAssessedCounts[familyOf(req.ID)]++
		}
		if req.Priority == catalog.PriorityCritical {
			criticalCounts[st]++
		}
	}

	total := len(cat.Requirements)
	na := counts[status.NotApplicable]
	denominator := total - na

	scoreFn := r.ScoreFn
	if scoreFn == nil {
		scoreFn = Weighted
	}
	overall := scoreFn(counts, denominator)

	var groups []GroupScore
	for grouping, gTotal := range groupTotals {
		gCounts := groupCounts[grouping]
		gNA := gCounts[status.NotApplicable]
		gDenom := gTotal - gNA
		groups = append(groups, GroupScore{Grouping: grouping, Total: gTotal, Score: scoreFn(gCounts, gDenom)})
	}
	SortGroups(engine.FrameworkID, groups)

	gateFn := r.GateFn
	if gateFn == nil {
		gateFn = StandardGate
	}
	passed, detail := gateFn(engine.FrameworkID, counts, overall, groups, func(id string) (status.Status, bool) {
		st, ok := reqStatus[id]
		return st, ok
	}, familyAssessedCounts, criticalCounts)

	summary := &Summary{
		ProjectID:    project.ProjectID,
		FrameworkID:  engine.FrameworkID,
		StatusCounts: counts,
		GroupScores:  groups,
		OverallScore: overall,
		GatePassed:   passed,
		GateDetail:   detail,
	}

	if r.Audit != nil {
		r.Audit.WriteEvent(ctx, audit.Event{
			ProjectID: project.ProjectID,
			EventType: engine.FrameworkID + "_assessment",
			Actor:     engine.FrameworkID + "-assessor",
			Action:    "ran assessment",
			Details: map[string]any{
				"overall_score": overall,
				"gate_passed":   passed,
				"total":         total,
			},
		})
	}

	return summary, nil
}
