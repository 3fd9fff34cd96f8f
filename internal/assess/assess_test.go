package assess_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/compliance-mcp/internal/assess"
	"github.com/emergent-company/compliance-mcp/internal/audit"
	"github.com/emergent-company/compliance-mcp/internal/catalog"
	"github.com/emergent-company/compliance-mcp/internal/status"
	"github.com/emergent-company/compliance-mcp/internal/store"
)

func newTestRunner(t *testing.T) (*assess.Runner, *store.Store) {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.CreateProject(context.Background(), &store.Project{
		ProjectID: "p1", Name: "Demo", Directory: t.TempDir(), ImpactLevel: "moderate",
	}))

	return &assess.Runner{
		Store:   s,
		Catalog: catalog.NewLoader(),
		Audit:   audit.NewWriter(s, nil),
	}, s
}

func writeCatalogFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestRunAssessmentDefaultsToNotAssessed(t *testing.T) {
	runner, _ := newTestRunner(t)
	catalogDir := t.TempDir()
	writeCatalogFile(t, catalogDir, "zta.json", `{
		"requirements": [
			{"id": "ZTA-NET-1", "title": "mTLS required", "priority": "high", "domain": "Network"},
			{"id": "ZTA-NET-2", "title": "PeerAuthentication enforced", "priority": "high", "domain": "Network"}
		]
	}`)
	runner.CatalogDir = catalogDir

	summary, err := runner.Run(context.Background(), assess.NewZTAEngine(), "p1", "", false)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.StatusCounts[status.NotAssessed])
	assert.Equal(t, float64(0), summary.OverallScore)
}

func TestRunAssessmentAppliesAutomatedChecks(t *testing.T) {
	runner, s := newTestRunner(t)
	catalogDir := t.TempDir()
	writeCatalogFile(t, catalogDir, "zta.json", `{
		"requirements": [
			{"id": "ZTA-NET-1", "title": "mTLS required", "priority": "high", "domain": "Network"},
			{"id": "ZTA-NET-2", "title": "PeerAuthentication enforced", "priority": "high", "domain": "Network"}
		]
	}`)
	runner.CatalogDir = catalogDir

	project, err := s.GetProject(context.Background(), "p1")
	require.NoError(t, err)
	writeCatalogFile(t, project.Directory, "istio.yaml", "apiVersion: v1\nmtls: STRICT\n")

	summary, err := runner.Run(context.Background(), assess.NewZTAEngine(), "p1", project.Directory, false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.StatusCounts[status.Satisfied])
	assert.Equal(t, 1, summary.StatusCounts[status.NotAssessed])
	assert.Equal(t, float64(50), summary.OverallScore)

	events, err := s.ListAuditEvents(context.Background(), "p1", "zta_assessment", 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestRunAssessmentMissingProjectFails(t *testing.T) {
	runner, _ := newTestRunner(t)
	_, err := runner.Run(context.Background(), assess.NewZTAEngine(), "missing", "", false)
	assert.Error(t, err)
}

func TestRunAssessmentMissingCatalogFails(t *testing.T) {
	runner, _ := newTestRunner(t)
	runner.CatalogDir = t.TempDir()
	_, err := runner.Run(context.Background(), assess.NewZTAEngine(), "p1", "", false)
	assert.Error(t, err)
}

func TestRunSTIGAssessmentMarksNotReviewedByDefault(t *testing.T) {
	runner, s := newTestRunner(t)
	catalogDir := t.TempDir()
	writeCatalogFile(t, catalogDir, "stig.json", `{
		"requirements": [
			{"id": "V-222400", "title": "Password complexity enforced", "priority": "critical", "domain": "Access Control"},
			{"id": "V-222401", "title": "Audit log path configured", "priority": "high", "domain": "Auditing"}
		]
	}`)
	runner.CatalogDir = catalogDir

	project, err := s.GetProject(context.Background(), "p1")
	require.NoError(t, err)
	writeCatalogFile(t, project.Directory, "sshd.conf", "PasswordComplexity yes\n")

	summary, err := runner.Run(context.Background(), assess.NewSTIGEngine(), "p1", project.Directory, false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.StatusCounts[status.Satisfied])
	assert.Equal(t, 1, summary.StatusCounts[status.NotAssessed])

	passed, _ := assess.StandardGate("stig", summary.StatusCounts, summary.OverallScore, summary.GroupScores, nil, nil, nil)
	assert.True(t, passed, "no findings are NotSatisfied yet, so the CAT1-open gate passes")
}

func TestRunSTIGPromoteReviewedFailsGate(t *testing.T) {
	runner, s := newTestRunner(t)
	catalogDir := t.TempDir()
	writeCatalogFile(t, catalogDir, "stig.json", `{
		"requirements": [
			{"id": "V-222400", "title": "Password complexity enforced", "priority": "critical", "domain": "Access Control"},
			{"id": "V-222401", "title": "Audit log path configured", "priority": "critical", "domain": "Auditing"}
		]
	}`)
	runner.CatalogDir = catalogDir

	project, err := s.GetProject(context.Background(), "p1")
	require.NoError(t, err)
	writeCatalogFile(t, project.Directory, "sshd.conf", "PasswordComplexity yes\n")

	summary, err := runner.Run(context.Background(), assess.NewSTIGEngine(), "p1", project.Directory, true)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.StatusCounts[status.Satisfied])
	assert.Equal(t, 1, summary.StatusCounts[status.NotSatisfied])
	assert.False(t, summary.GatePassed, "the unreviewed requirement was promoted to not_satisfied, opening a CAT1 finding")
}

func TestRunSTIGPromoteReviewedIgnoresNonCriticalFinding(t *testing.T) {
	runner, s := newTestRunner(t)
	catalogDir := t.TempDir()
	writeCatalogFile(t, catalogDir, "stig.json", `{
		"requirements": [
			{"id": "V-222400", "title": "Password complexity enforced", "priority": "critical", "domain": "Access Control"},
			{"id": "V-222401", "title": "Audit log path configured", "priority": "high", "domain": "Auditing"}
		]
	}`)
	runner.CatalogDir = catalogDir

	project, err := s.GetProject(context.Background(), "p1")
	require.NoError(t, err)
	writeCatalogFile(t, project.Directory, "sshd.conf", "PasswordComplexity yes\n")

	summary, err := runner.Run(context.Background(), assess.NewSTIGEngine(), "p1", project.Directory, true)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.StatusCounts[status.Satisfied])
	assert.Equal(t, 1, summary.StatusCounts[status.NotSatisfied])
	assert.True(t, summary.GatePassed, "the promoted finding is CAT2/CAT3 (priority=high), which does not gate STIG")
}

func TestRunnerDefaultGateUsesStandardGate(t *testing.T) {
	runner, s := newTestRunner(t)
	catalogDir := t.TempDir()
	writeCatalogFile(t, catalogDir, "cmmc.json", `{
		"practices": [
			{"id": "AC.L1-3.1.1", "title": "Limit access", "domain": "AC", "priority": "high"},
			{"id": "AC.L1-3.1.2", "title": "Limit transactions", "domain": "AC", "priority": "high"}
		]
	}`)
	runner.CatalogDir = catalogDir

	require.NoError(t, s.UpsertAssessment(context.Background(), &store.Assessment{
		ProjectID: "p1", FrameworkID: "cmmc", RequirementID: "AC.L1-3.1.1", Status: status.NotApplicable,
	}))

	summary, err := runner.Run(context.Background(), assess.NewCMMCEngine(), "p1", "", false)
	require.NoError(t, err)
	assert.True(t, summary.GatePassed, "no not_met cmmc practices, so the cmmc-specific gate passes despite a low overall score")
}

func TestNotApplicableExcludedFromDenominator(t *testing.T) {
	runner, s := newTestRunner(t)
	catalogDir := t.TempDir()
	writeCatalogFile(t, catalogDir, "zta.json", `{
		"requirements": [
			{"id": "ZTA-NET-1", "title": "a", "priority": "high", "domain": "Network"},
			{"id": "ZTA-NET-2", "title": "b", "priority": "high", "domain": "Network"}
		]
	}`)
	runner.CatalogDir = catalogDir

	require.NoError(t, s.UpsertAssessment(context.Background(), &store.Assessment{
		ProjectID: "p1", FrameworkID: "zta", RequirementID: "ZTA-NET-2", Status: status.NotApplicable,
	}))

	summary, err := runner.Run(context.Background(), assess.NewZTAEngine(), "p1", "", false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.StatusCounts[status.NotApplicable])
	assert.Equal(t, float64(0), summary.OverallScore, "only the not_assessed row counts toward the denominator")
}
