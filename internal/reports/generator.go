// Package reports implements the framework-agnostic report generator:
// load persisted assessment rows, compute the same scores and gate an
// assessor would, render a Markdown report from a template, apply CUI
// markings, write it to disk, and record exactly one audit event.
package reports

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/emergent-company/compliance-mcp/internal/assess"
	"github.com/emergent-company/compliance-mcp/internal/audit"
	"github.com/emergent-company/compliance-mcp/internal/catalog"
	"github.com/emergent-company/compliance-mcp/internal/cui"
	"github.com/emergent-company/compliance-mcp/internal/status"
	"github.com/emergent-company/compliance-mcp/internal/store"
)

// remediationWindows maps a catalog priority to its remediation target.
var remediationWindows = map[catalog.Priority]string{
	catalog.PriorityCritical: "14d",
	catalog.PriorityHigh:     "30d",
	catalog.PriorityMedium:   "60d",
	catalog.PriorityLow:      "90d",
}

// Generator produces Markdown reports for one (project, framework) from
// persisted assessment rows.
type Generator struct {
	Store      *store.Store
	Catalog    *catalog.Loader
	Marker     *cui.Marker
	Audit      *audit.Writer
	CatalogDir string
	// TemplateDir overrides the embedded/default templates when set.
	TemplateDir string
}

// Result is the caller-facing outcome of a Generate call.
type Result struct {
	Status      string
	OutputFile  string
	Summary     map[string]any
	GateResult  map[string]any
	OverallScore float64
	Version     string
}

// Generate runs the strict ten-step workflow for (projectID, frameworkID):
// load project and assessments, recompute scores and gate, render the
// template, apply CUI marking, write to disk, and audit the result.
func (g *Generator) Generate(ctx context.Context, projectID, frameworkID, catalogFilename string) (*Result, error) {
	project, err := g.Store.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("project not found: %w", err)
	}

	assessments, err := g.Store.ListAssessments(ctx, projectID, frameworkID)
	if err != nil {
		return nil, fmt.Errorf("loading assessments: %w", err)
	}

	catalogPath := catalogFilename
	if g.CatalogDir != "" {
		catalogPath = g.CatalogDir + "/" + catalogFilename
	}
	cat, err := g.Catalog.Load(frameworkID, catalogPath)
	if err != nil {
		return nil, fmt.Errorf("catalog not found: %w", err)
	}

	reqByID := map[string]catalog.Requirement{}
	for _, r := range cat.Requirements {
		reqByID[r.ID] = r
	}

	executiveSummary := "Assessment data present."
	if len(assessments) == 0 {
		executiveSummary = "No assessments have been recorded for this project and framework yet; run the assessor first to populate this report."
	}

	counts := map[status.Status]int{}
	criticalCounts := map[status.Status]int{}
	groupTotals := map[string]int{}
	groupCounts := map[string]map[status.Status]int{}
	reqStatus := map[string]status.Status{}
	familyAssessedCounts := map[string]int{}
	for _, a := range assessments {
		counts[a.Status]++
		reqStatus[a.RequirementID] = a.Status
		if a.Status != status.NotAssessed {
			family := a.RequirementID
			if idx := strings.LastIndex(family, "-"); idx > 0 {
				family = family[:idx]
			}
			familyAssessedCounts[family]++
		}
		req, ok := reqByID[a.RequirementID]
		grouping := "unspecified"
		if ok {
			grouping = req.Grouping
			if req.Priority == catalog.PriorityCritical {
				criticalCounts[a.Status]++
			}
		}
		groupTotals[grouping]++
		if groupCounts[grouping] == nil {
			groupCounts[grouping] = map[status.Status]int{}
		}
		groupCounts[grouping][a.Status]++
	}

	total := len(assessments)
	na := counts[status.NotApplicable]
	denominator := total - na
	overall := assess.Weighted(counts, denominator)

	var groups []assess.GroupScore
	for grouping, gTotal := range groupTotals {
		gCounts := groupCounts[grouping]
		gDenom := gTotal - gCounts[status.NotApplicable]
		groups = append(groups, assess.GroupScore{Grouping: grouping, Total: gTotal, Score: assess.Weighted(gCounts, gDenom)})
	}
	assess.SortGroups(frameworkID, groups)

	passed, gateDetail := assess.StandardGate(frameworkID, counts, overall, groups, func(id string) (status.Status, bool) {
		st, ok := reqStatus[id]
		return st, ok
	}, familyAssessedCounts, criticalCounts)

	eventType := frameworkID + "_report_generated"
	priorEvents, err := g.Store.ListAuditEvents(ctx, projectID, eventType, 100000)
	if err != nil {
		return nil, fmt.Errorf("counting prior report events: %w", err)
	}
	version := fmt.Sprintf("%d.0", len(priorEvents)+1)

	templateMeta, templateBody, err := LoadTemplate(g.TemplateDir, frameworkID)
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}
	assessor := frameworkID + "-assessor"
	if templateMeta.Assessor != "" {
		assessor = templateMeta.Assessor
	}

	vars := map[string]string{
		"project_id":           project.ProjectID,
		"project_name":         project.Name,
		"framework_id":         frameworkID,
		"classification":       project.Classification,
		"impact_level":         project.ImpactLevel,
		"assessment_date":      time.Now().Format("2006-01-02"),
		"version":              version,
		"assessor":             assessor,
		"overall_score":        strconv.FormatFloat(overall, 'f', 1, 64),
		"gate_result":          "**" + gateLabel(passed) + "**: " + gateDetail,
		"executive_summary":    executiveSummary,
		"coverage_table":       renderCoverageTable(groups),
		"requirements_table":   renderRequirementsTable(assessments, reqByID),
		"gap_analysis":         renderGapAnalysis(assessments, reqByID),
		"remediation_plan":     renderRemediationPlan(assessments, reqByID),
		"nist_cross_reference": renderNISTCrossReference(reqByID),
		"evidence_index":       renderEvidenceIndex(assessments),
	}

	rendered := substituteVariables(templateBody, vars)

	marked := rendered
	if g.Marker != nil {
		marked = g.Marker.Mark(rendered)
	}

	outputFile := filepath.Join(project.Directory, "compliance", fmt.Sprintf("%s-report-v%s.md", frameworkID, version))
	if err := os.MkdirAll(filepath.Dir(outputFile), 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}
	if err := os.WriteFile(outputFile, []byte(marked), 0o644); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}

	statusCounts := map[string]int{}
	for _, st := range status.All {
		statusCounts[string(st)] = counts[st]
	}

	if g.Audit != nil {
		g.Audit.WriteEvent(ctx, audit.Event{
			ProjectID: projectID,
			EventType: eventType,
			Actor:     frameworkID + "-reporter",
			Action:    "generated report",
			Details: map[string]any{
				"version":       version,
				"overall_score": overall,
				"gate_result":   passed,
				"output_file":   outputFile,
				"status_counts": statusCounts,
			},
			AffectedFiles: []string{outputFile},
		})
	}

	return &Result{
		Status:      "success",
		OutputFile:  outputFile,
		OverallScore: overall,
		Version:     version,
		Summary: map[string]any{
			"status_counts": statusCounts,
			"posture":       assess.PostureLabel(overall),
			"groups":        groups,
		},
		GateResult: map[string]any{
			"passed": passed,
			"detail": gateDetail,
		},
	}, nil
}

func gateLabel(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}

// substituteVariables replaces every {{name}} occurrence with vars[name];
// unknown variables pass through unchanged.
func substituteVariables(template string, vars map[string]string) string {
	out := template
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{{"+name+"}}", value)
	}
	return out
}

func renderCoverageTable(groups []assess.GroupScore) string {
	if len(groups) == 0 {
		return "_No grouped data available._"
	}
	var b strings.Builder
	b.WriteString("| Domain | Total | Score |\n|---|---:|---:|\n")
	for _, g := range groups {
		fmt.Fprintf(&b, "| %s | %d | %.1f |\n", g.Grouping, g.Total, g.Score)
	}
	return b.String()
}

func renderRequirementsTable(assessments []*store.Assessment, reqByID map[string]catalog.Requirement) string {
	if len(assessments) == 0 {
		return "_No assessment rows recorded._"
	}
	sorted := make([]*store.Assessment, len(assessments))
	copy(sorted, assessments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RequirementID < sorted[j].RequirementID })

	var b strings.Builder
	b.WriteString("| Requirement | Title | Status | Evidence |\n|---|---|---|---|\n")
	for _, a := range sorted {
		title := a.RequirementID
		if req, ok := reqByID[a.RequirementID]; ok {
			title = req.Title
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", a.RequirementID, title, a.Status, a.EvidenceDescription)
	}
	return b.String()
}

func renderGapAnalysis(assessments []*store.Assessment, reqByID map[string]catalog.Requirement) string {
	var gaps []*store.Assessment
	for _, a := range assessments {
		if a.Status == status.NotSatisfied || a.Status == status.NotAssessed {
			gaps = append(gaps, a)
		}
	}
	if len(gaps) == 0 {
		return "_No gaps identified._"
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i].RequirementID < gaps[j].RequirementID })

	var b strings.Builder
	b.WriteString("| Requirement | Title | Status |\n|---|---|---|\n")
	for _, a := range gaps {
		title := a.RequirementID
		if req, ok := reqByID[a.RequirementID]; ok {
			title = req.Title
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", a.RequirementID, title, a.Status)
	}
	return b.String()
}

func renderRemediationPlan(assessments []*store.Assessment, reqByID map[string]catalog.Requirement) string {
	var gaps []*store.Assessment
	for _, a := range assessments {
		if a.Status == status.NotSatisfied || a.Status == status.NotAssessed {
			gaps = append(gaps, a)
		}
	}
	if len(gaps) == 0 {
		return "_No remediation items._"
	}

	priorityRank := map[catalog.Priority]int{catalog.PriorityCritical: 0, catalog.PriorityHigh: 1, catalog.PriorityMedium: 2, catalog.PriorityLow: 3}
	sort.Slice(gaps, func(i, j int) bool {
		pi, pj := reqByID[gaps[i].RequirementID].Priority, reqByID[gaps[j].RequirementID].Priority
		if priorityRank[pi] != priorityRank[pj] {
			return priorityRank[pi] < priorityRank[pj]
		}
		return gaps[i].RequirementID < gaps[j].RequirementID
	})

	var b strings.Builder
	b.WriteString("| Requirement | Priority | Target |\n|---|---|---|\n")
	for _, a := range gaps {
		req := reqByID[a.RequirementID]
		window, ok := remediationWindows[req.Priority]
		if !ok {
			window = "90d"
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", a.RequirementID, req.Priority, window)
	}
	return b.String()
}

func renderNISTCrossReference(reqByID map[string]catalog.Requirement) string {
	var rows []catalog.Requirement
	for _, r := range reqByID {
		if len(r.NISTControls) > 0 {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return "_No NIST cross-references recorded._"
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	var b strings.Builder
	b.WriteString("| Requirement | NIST 800-53 Controls |\n|---|---|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s |\n", r.ID, strings.Join(r.NISTControls, ", "))
	}
	return b.String()
}

func renderEvidenceIndex(assessments []*store.Assessment) string {
	var withEvidence []*store.Assessment
	for _, a := range assessments {
		if a.EvidencePath != "" {
			withEvidence = append(withEvidence, a)
		}
	}
	if len(withEvidence) == 0 {
		return "_No evidence files referenced._"
	}
	sort.Slice(withEvidence, func(i, j int) bool { return withEvidence[i].RequirementID < withEvidence[j].RequirementID })

	var b strings.Builder
	b.WriteString("| Requirement | Evidence Path |\n|---|---|\n")
	for _, a := range withEvidence {
		fmt.Fprintf(&b, "| %s | %s |\n", a.RequirementID, a.EvidencePath)
	}
	return b.String()
}
