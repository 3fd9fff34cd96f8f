package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Project represents an onboarded compliance engagement.
type Project struct {
	ProjectID      string
	Name           string
	Directory      string
	Classification string
	ImpactLevel    string
	CreatedAt      time.Time
}

// CreateProject inserts a new project.
func (s *Store) CreateProject(ctx context.Context, p *Project) error {
	p.CreatedAt = time.Now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (project_id, name, directory, classification, impact_level, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ProjectID, p.Name, p.Directory, p.Classification, p.ImpactLevel, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating project: %w", err)
	}
	return nil
}

// GetProject retrieves a project by ID.
func (s *Store) GetProject(ctx context.Context, projectID string) (*Project, error) {
	p := &Project{}
	err := s.db.QueryRowContext(ctx, `
		SELECT project_id, name, directory, classification, impact_level, created_at
		FROM projects WHERE project_id = ?
	`, projectID).Scan(&p.ProjectID, &p.Name, &p.Directory, &p.Classification, &p.ImpactLevel, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project not found: %s", projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return p, nil
}

// ListProjects returns every onboarded project, most recent first.
func (s *Store) ListProjects(ctx context.Context) ([]*Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT project_id, name, directory, classification, impact_level, created_at
		FROM projects ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p := &Project{}
		if err := rows.Scan(&p.ProjectID, &p.Name, &p.Directory, &p.Classification, &p.ImpactLevel, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}
