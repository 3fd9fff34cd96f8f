package store

import (
	"context"
	"fmt"
	"time"
)

// Finding is a discrete deficiency discovered during an assessment or
// IV&V pass, distinct from the per-requirement Assessment row it may
// reference.
type Finding struct {
	ID            string
	ProjectID     string
	FrameworkID   string
	RequirementID string
	Severity      string
	Title         string
	Status        string
	Evidence      string
	FixText       string
	UpdatedAt     time.Time
}

// CreateFinding inserts a new finding.
func (s *Store) CreateFinding(ctx context.Context, f *Finding) error {
	f.UpdatedAt = time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO findings (id, project_id, framework_id, requirement_id, severity, title, status, evidence, fix_text, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.ProjectID, f.FrameworkID, f.RequirementID, f.Severity, f.Title, f.Status, f.Evidence, f.FixText, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating finding: %w", err)
	}
	return nil
}

// ListFindings returns every finding recorded for a project under a
// framework, most recently updated first.
func (s *Store) ListFindings(ctx context.Context, projectID, frameworkID string) ([]*Finding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, framework_id, requirement_id, severity, title, status, evidence, fix_text, updated_at
		FROM findings
		WHERE project_id = ? AND framework_id = ?
		ORDER BY updated_at DESC
	`, projectID, frameworkID)
	if err != nil {
		return nil, fmt.Errorf("listing findings: %w", err)
	}
	defer rows.Close()

	var out []*Finding
	for rows.Next() {
		f := &Finding{}
		if err := rows.Scan(&f.ID, &f.ProjectID, &f.FrameworkID, &f.RequirementID, &f.Severity, &f.Title,
			&f.Status, &f.Evidence, &f.FixText, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning finding: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating findings: %w", err)
	}
	return out, nil
}

// UpdateFindingStatus transitions a finding to a new status (e.g. after
// remediation evidence is supplied).
func (s *Store) UpdateFindingStatus(ctx context.Context, id, newStatus string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE findings SET status = ?, updated_at = ? WHERE id = ?
	`, newStatus, time.Now(), id)
	if err != nil {
		return fmt.Errorf("updating finding status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("finding not found: %s", id)
	}
	return nil
}
