package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/emergent-company/compliance-mcp/internal/status"
)

// Assessment is a single requirement-level row owned by one framework
// engine, keyed by (project, framework, requirement).
type Assessment struct {
	ProjectID           string
	FrameworkID         string
	RequirementID       string
	Status              status.Status
	EvidenceDescription string
	EvidencePath        string
	Notes               string
	AutomationResult    string
	Assessor            string
	UpdatedAt           time.Time
}

// UpsertAssessment inserts or replaces the assessment row for a requirement.
func (s *Store) UpsertAssessment(ctx context.Context, a *Assessment) error {
	a.UpdatedAt = time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assessments (project_id, framework_id, requirement_id, status, evidence_description, evidence_path, notes, automation_result, assessor, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(project_id, framework_id, requirement_id) DO UPDATE SET
			status = excluded.status,
			evidence_description = excluded.evidence_description,
			evidence_path = excluded.evidence_path,
			notes = excluded.notes,
			automation_result = excluded.automation_result,
			assessor = excluded.assessor,
			updated_at = excluded.updated_at
	`, a.ProjectID, a.FrameworkID, a.RequirementID, string(a.Status), a.EvidenceDescription,
		a.EvidencePath, a.Notes, a.AutomationResult, a.Assessor, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting assessment: %w", err)
	}
	return nil
}

// ListAssessments returns every requirement row a framework engine has
// recorded for a project, ordered by requirement ID.
func (s *Store) ListAssessments(ctx context.Context, projectID, frameworkID string) ([]*Assessment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT project_id, framework_id, requirement_id, status, evidence_description, evidence_path, notes, automation_result, assessor, updated_at
		FROM assessments
		WHERE project_id = ? AND framework_id = ?
		ORDER BY requirement_id ASC
	`, projectID, frameworkID)
	if err != nil {
		return nil, fmt.Errorf("listing assessments: %w", err)
	}
	defer rows.Close()

	var out []*Assessment
	for rows.Next() {
		a := &Assessment{}
		var st string
		if err := rows.Scan(&a.ProjectID, &a.FrameworkID, &a.RequirementID, &st, &a.EvidenceDescription,
			&a.EvidencePath, &a.Notes, &a.AutomationResult, &a.Assessor, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning assessment: %w", err)
		}
		a.Status = status.Status(st)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assessments: %w", err)
	}
	return out, nil
}

// GetAssessment retrieves a single requirement's assessment row.
func (s *Store) GetAssessment(ctx context.Context, projectID, frameworkID, requirementID string) (*Assessment, error) {
	a := &Assessment{}
	var st string
	err := s.db.QueryRowContext(ctx, `
		SELECT project_id, framework_id, requirement_id, status, evidence_description, evidence_path, notes, automation_result, assessor, updated_at
		FROM assessments
		WHERE project_id = ? AND framework_id = ? AND requirement_id = ?
	`, projectID, frameworkID, requirementID).Scan(&a.ProjectID, &a.FrameworkID, &a.RequirementID, &st,
		&a.EvidenceDescription, &a.EvidencePath, &a.Notes, &a.AutomationResult, &a.Assessor, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("assessment not found: %s/%s/%s", projectID, frameworkID, requirementID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting assessment: %w", err)
	}
	a.Status = status.Status(st)
	return a, nil
}
