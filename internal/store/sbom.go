package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SBOMRecord tracks a generated CycloneDX document so repeated generation
// can increment a monotonic version number per project.
type SBOMRecord struct {
	ID             string
	ProjectID      string
	Version        int
	OutputFile     string
	ComponentCount int
	CreatedAt      time.Time
}

// NextSBOMVersion returns the version number the next generated SBOM for
// projectID should use (1 if none exist yet).
func (s *Store) NextSBOMVersion(ctx context.Context, projectID string) (int, error) {
	var max sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(version) FROM sbom_records WHERE project_id = ?", projectID,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("reading max sbom version: %w", err)
	}
	if !max.Valid {
		return 1, nil
	}
	return int(max.Int64) + 1, nil
}

// RecordSBOM persists metadata about a generated SBOM document.
func (s *Store) RecordSBOM(ctx context.Context, r *SBOMRecord) error {
	r.CreatedAt = time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sbom_records (id, project_id, version, output_file, component_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.ProjectID, r.Version, r.OutputFile, r.ComponentCount, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("recording sbom: %w", err)
	}
	return nil
}

// ListSBOMRecords returns a project's SBOM generation history, newest first.
func (s *Store) ListSBOMRecords(ctx context.Context, projectID string) ([]*SBOMRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, version, output_file, component_count, created_at
		FROM sbom_records WHERE project_id = ? ORDER BY version DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing sbom records: %w", err)
	}
	defer rows.Close()

	var out []*SBOMRecord
	for rows.Next() {
		r := &SBOMRecord{}
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.Version, &r.OutputFile, &r.ComponentCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning sbom record: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sbom records: %w", err)
	}
	return out, nil
}
