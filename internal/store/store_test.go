package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/compliance-mcp/internal/status"
	"github.com/emergent-company/compliance-mcp/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenRunsMigrations(t *testing.T) {
	s := newTestStore(t)
	var name string
	err := s.DB().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='projects'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "projects", name)
}

func TestCreateAndGetProject(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := &store.Project{ProjectID: "proj-1", Name: "Demo", Directory: "/repo", ImpactLevel: "moderate"}
	require.NoError(t, s.CreateProject(ctx, p))

	got, err := s.GetProject(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "Demo", got.Name)
	assert.Equal(t, "moderate", got.ImpactLevel)
}

func TestGetProjectNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetProject(context.Background(), "missing")
	assert.Error(t, err)
}

func TestUpsertAssessmentOverwritesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := &store.Assessment{ProjectID: "p1", FrameworkID: "cmmc", RequirementID: "AC.L1-3.1.1", Status: status.NotAssessed}
	require.NoError(t, s.UpsertAssessment(ctx, a))

	a.Status = status.Satisfied
	a.Notes = "evidence collected"
	require.NoError(t, s.UpsertAssessment(ctx, a))

	got, err := s.GetAssessment(ctx, "p1", "cmmc", "AC.L1-3.1.1")
	require.NoError(t, err)
	assert.Equal(t, status.Satisfied, got.Status)
	assert.Equal(t, "evidence collected", got.Notes)
}

func TestListAssessmentsOrderedByRequirement(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"AC.3", "AC.1", "AC.2"} {
		require.NoError(t, s.UpsertAssessment(ctx, &store.Assessment{
			ProjectID: "p1", FrameworkID: "nist_800_53", RequirementID: id, Status: status.NotAssessed,
		}))
	}

	rows, err := s.ListAssessments(ctx, "p1", "nist_800_53")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "AC.1", rows[0].RequirementID)
	assert.Equal(t, "AC.2", rows[1].RequirementID)
	assert.Equal(t, "AC.3", rows[2].RequirementID)
}

func TestAuditTrailIsAppendOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertAuditEvent(ctx, &store.AuditEvent{ID: "e1", ProjectID: "p1", EventType: "assessment_updated", Actor: "assessor"}))
	require.NoError(t, s.InsertAuditEvent(ctx, &store.AuditEvent{ID: "e2", ProjectID: "p1", EventType: "report_generated", Actor: "reporter"}))

	events, err := s.ListAuditEvents(ctx, "p1", "", 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e2", events[0].ID, "most recent first")
	assert.Equal(t, "{}", events[0].DetailsJSON, "defaults applied")

	filtered, err := s.ListAuditEvents(ctx, "p1", "report_generated", 10)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "e2", filtered[0].ID)
}

func TestSBOMVersionIncrements(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	v1, err := s.NextSBOMVersion(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, v1)

	require.NoError(t, s.RecordSBOM(ctx, &store.SBOMRecord{ID: "sb1", ProjectID: "p1", Version: v1, ComponentCount: 12}))

	v2, err := s.NextSBOMVersion(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, v2)
}

func TestCreateFindingAndUpdateStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateFinding(ctx, &store.Finding{
		ID: "f1", ProjectID: "p1", FrameworkID: "cssp", Severity: "high", Title: "missing MFA", Status: "open",
	}))

	require.NoError(t, s.UpdateFindingStatus(ctx, "f1", "remediated"))

	findings, err := s.ListFindings(ctx, "p1", "cssp")
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, "remediated", findings[0].Status)
}

func TestUpdateFindingStatusNotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateFindingStatus(context.Background(), "missing", "remediated")
	assert.Error(t, err)
}
