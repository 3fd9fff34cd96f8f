package reports_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/compliance-mcp/internal/audit"
	"github.com/emergent-company/compliance-mcp/internal/catalog"
	"github.com/emergent-company/compliance-mcp/internal/cui"
	"github.com/emergent-company/compliance-mcp/internal/reports"
	"github.com/emergent-company/compliance-mcp/internal/status"
	"github.com/emergent-company/compliance-mcp/internal/store"
)

func newTestGenerator(t *testing.T) (*reports.Generator, *store.Store, string) {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	projectDir := t.TempDir()
	require.NoError(t, s.CreateProject(context.Background(), &store.Project{
		ProjectID: "p1", Name: "Demo", Directory: projectDir, Classification: "CUI", ImpactLevel: "IL4",
	}))

	catalogDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(catalogDir, "cmmc.json"), []byte(`{
		"practices": [
			{"id": "AC.L1-3.1.1", "title": "Limit access", "priority": "high", "domain": "Access Control", "nist_controls": ["AC-2"]},
			{"id": "AC.L1-3.1.2", "title": "Limit transactions", "priority": "critical", "domain": "Access Control"}
		]
	}`), 0o644))

	g := &reports.Generator{
		Store:      s,
		Catalog:    catalog.NewLoader(),
		Marker:     cui.NewMarker(cui.Config{BannerTop: "CUI // SP-CTI", DocumentHeader: "CUI // SP-CTI", DocumentFooter: "CUI // SP-CTI"}),
		Audit:      audit.NewWriter(s, nil),
		CatalogDir: catalogDir,
	}
	return g, s, projectDir
}

func TestGenerateWithNoAssessmentsStillEmitsReport(t *testing.T) {
	g, _, _ := newTestGenerator(t)
	result, err := g.Generate(context.Background(), "p1", "cmmc", "cmmc.json")
	require.NoError(t, err)
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, "1.0", result.Version)

	body, err := os.ReadFile(result.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(body), "run the assessor first")
	assert.Contains(t, string(body), "CUI // SP-CTI")
}

func TestGenerateComputesScoreAndGate(t *testing.T) {
	g, s, _ := newTestGenerator(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertAssessment(ctx, &store.Assessment{ProjectID: "p1", FrameworkID: "cmmc", RequirementID: "AC.L1-3.1.1", Status: status.Satisfied}))
	require.NoError(t, s.UpsertAssessment(ctx, &store.Assessment{ProjectID: "p1", FrameworkID: "cmmc", RequirementID: "AC.L1-3.1.2", Status: status.NotSatisfied}))

	result, err := g.Generate(ctx, "p1", "cmmc", "cmmc.json")
	require.NoError(t, err)
	assert.InDelta(t, 50, result.OverallScore, 0.1)
	assert.False(t, result.GateResult["passed"].(bool))

	body, err := os.ReadFile(result.OutputFile)
	require.NoError(t, err)
	assert.Contains(t, string(body), "**FAIL**", "the pass/fail word itself, not just the label, must be bolded")
}

func TestGenerateVersionIncrementsOnRerun(t *testing.T) {
	g, _, _ := newTestGenerator(t)
	ctx := context.Background()

	r1, err := g.Generate(ctx, "p1", "cmmc", "cmmc.json")
	require.NoError(t, err)
	assert.Equal(t, "1.0", r1.Version)

	r2, err := g.Generate(ctx, "p1", "cmmc", "cmmc.json")
	require.NoError(t, err)
	assert.Equal(t, "2.0", r2.Version)
	assert.NotEqual(t, r1.OutputFile, r2.OutputFile)
}

func TestGenerateOutputPathConvention(t *testing.T) {
	g, _, projectDir := newTestGenerator(t)
	result, err := g.Generate(context.Background(), "p1", "cmmc", "cmmc.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(projectDir, "compliance", "cmmc-report-v1.0.md"), result.OutputFile)
}
