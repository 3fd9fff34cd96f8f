package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// IntakeRequirement is one raw requirement statement captured by the
// clarification engine, scored for clarity and completeness.
type IntakeRequirement struct {
	ID                 string
	SessionID          string
	RawText            string
	RequirementType    string
	ClarityScore       sql.NullFloat64
	CompletenessScore  sql.NullFloat64
	CreatedAt          time.Time
}

// CreateIntakeRequirement stores a captured requirement statement.
func (s *Store) CreateIntakeRequirement(ctx context.Context, r *IntakeRequirement) error {
	r.CreatedAt = time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO intake_requirements (id, session_id, raw_text, requirement_type, clarity_score, completeness_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.SessionID, r.RawText, r.RequirementType, r.ClarityScore, r.CompletenessScore, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating intake requirement: %w", err)
	}
	return nil
}

// ListIntakeRequirements returns every requirement captured in a session,
// in the order they were recorded.
func (s *Store) ListIntakeRequirements(ctx context.Context, sessionID string) ([]*IntakeRequirement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, raw_text, requirement_type, clarity_score, completeness_score, created_at
		FROM intake_requirements WHERE session_id = ? ORDER BY created_at ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing intake requirements: %w", err)
	}
	defer rows.Close()

	var out []*IntakeRequirement
	for rows.Next() {
		r := &IntakeRequirement{}
		if err := rows.Scan(&r.ID, &r.SessionID, &r.RawText, &r.RequirementType, &r.ClarityScore, &r.CompletenessScore, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning intake requirement: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating intake requirements: %w", err)
	}
	return out, nil
}
