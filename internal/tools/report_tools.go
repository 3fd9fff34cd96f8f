package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/emergent-company/compliance-mcp/internal/mcp"
	"github.com/emergent-company/compliance-mcp/internal/reports"
)

// ReportGenerateTool exposes reports.Generator.Generate as "report_generate".
type ReportGenerateTool struct {
	Generator *reports.Generator
}

type reportGenerateParams struct {
	ProjectID       string `json:"project_id"`
	FrameworkID     string `json:"framework_id"`
	CatalogFilename string `json:"catalog_filename"`
}

func (t *ReportGenerateTool) Name() string { return "report_generate" }

func (t *ReportGenerateTool) Description() string {
	return "Generate a versioned, CUI-marked Markdown compliance report for a project's most recent assessment."
}

func (t *ReportGenerateTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"project_id": {"type": "string"},
			"framework_id": {"type": "string"},
			"catalog_filename": {"type": "string"}
		},
		"required": ["project_id", "framework_id", "catalog_filename"]
	}`)
}

func (t *ReportGenerateTool) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p reportGenerateParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid params: %v", err)), nil
	}

	result, err := t.Generator.Generate(ctx, p.ProjectID, p.FrameworkID, p.CatalogFilename)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	return mcp.JSONResult(result)
}
