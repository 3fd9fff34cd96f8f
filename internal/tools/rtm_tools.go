package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/emergent-company/compliance-mcp/internal/cui"
	"github.com/emergent-company/compliance-mcp/internal/mcp"
	"github.com/emergent-company/compliance-mcp/internal/rtm"
)

// RTMBuildTool exposes rtm.Build + rtm.WriteReports as "rtm_build".
type RTMBuildTool struct {
	Marker *cui.Marker
}

type rtmBuildParams struct {
	ProjectDir string `json:"project_dir"`
}

func (t *RTMBuildTool) Name() string { return "rtm_build" }

func (t *RTMBuildTool) Description() string {
	return "Build a requirements traceability matrix across requirements, design docs, code modules, and tests, writing Markdown and JSON reports."
}

func (t *RTMBuildTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {"project_dir": {"type": "string"}},
		"required": ["project_dir"]
	}`)
}

type rtmBuildResult struct {
	Matrix      *rtm.Matrix `json:"matrix"`
	MarkdownPath string     `json:"markdown_path"`
	JSONPath     string     `json:"json_path"`
}

func (t *RTMBuildTool) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p rtmBuildParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid params: %v", err)), nil
	}
	if p.ProjectDir == "" {
		return mcp.ErrorResult("project_dir is required"), nil
	}

	matrix, err := rtm.Build(p.ProjectDir)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}

	mdPath, jsonPath, err := rtm.WriteReports(p.ProjectDir, matrix, t.Marker)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}

	return mcp.JSONResult(rtmBuildResult{Matrix: matrix, MarkdownPath: mdPath, JSONPath: jsonPath})
}
