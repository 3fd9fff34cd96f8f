package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/emergent-company/compliance-mcp/internal/mcp"
	"github.com/emergent-company/compliance-mcp/internal/store"
)

// ProjectCreateTool exposes store.Store.CreateProject as "project_create".
type ProjectCreateTool struct {
	Store *store.Store
}

type projectCreateParams struct {
	Name           string `json:"name"`
	Directory      string `json:"directory"`
	Classification string `json:"classification"`
	ImpactLevel    string `json:"impact_level"`
}

func (t *ProjectCreateTool) Name() string { return "project_create" }

func (t *ProjectCreateTool) Description() string {
	return "Onboard a new project for assessment, identified by a generated project_id."
}

func (t *ProjectCreateTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"directory": {"type": "string"},
			"classification": {"type": "string"},
			"impact_level": {"type": "string"}
		},
		"required": ["name", "directory"]
	}`)
}

func (t *ProjectCreateTool) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p projectCreateParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid params: %v", err)), nil
	}
	if p.Name == "" || p.Directory == "" {
		return mcp.ErrorResult("name and directory are required"), nil
	}

	project := &store.Project{
		ProjectID:      uuid.NewString(),
		Name:           p.Name,
		Directory:      p.Directory,
		Classification: p.Classification,
		ImpactLevel:    p.ImpactLevel,
	}
	if err := t.Store.CreateProject(ctx, project); err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	return mcp.JSONResult(project)
}

// ProjectListTool exposes store.Store.ListProjects as "project_list".
type ProjectListTool struct {
	Store *store.Store
}

func (t *ProjectListTool) Name() string { return "project_list" }

func (t *ProjectListTool) Description() string {
	return "List every onboarded project, most recently created first."
}

func (t *ProjectListTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (t *ProjectListTool) Execute(ctx context.Context, _ json.RawMessage) (*mcp.ToolsCallResult, error) {
	projects, err := t.Store.ListProjects(ctx)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	return mcp.JSONResult(projects)
}

// ProjectGetTool exposes store.Store.GetProject as "project_get".
type ProjectGetTool struct {
	Store *store.Store
}

type projectGetParams struct {
	ProjectID string `json:"project_id"`
}

func (t *ProjectGetTool) Name() string { return "project_get" }

func (t *ProjectGetTool) Description() string {
	return "Fetch a single project by project_id."
}

func (t *ProjectGetTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {"project_id": {"type": "string"}},
		"required": ["project_id"]
	}`)
}

func (t *ProjectGetTool) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p projectGetParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid params: %v", err)), nil
	}

	project, err := t.Store.GetProject(ctx, p.ProjectID)
	if err != nil {
		return mcp.NotFoundResult(err.Error(), "not_found"), nil
	}
	return mcp.JSONResult(project)
}
