// Package tools wires the assess/reports/clarify/rtm/sbom engines into
// the MCP tool registry as callable handlers.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/emergent-company/compliance-mcp/internal/assess"
	"github.com/emergent-company/compliance-mcp/internal/mcp"
)

// frameworkEngines maps a framework_id argument to its assess.Engine
// constructor, used by AssessRunTool.
var frameworkEngines = map[string]func() assess.Engine{
	"nist_800_53": assess.NewNIST80053Engine,
	"stig":        assess.NewSTIGEngine,
	"fips":        assess.NewFIPSEngine,
	"cmmc":        assess.NewCMMCEngine,
	"fedramp":     assess.NewFedRAMPEngine,
	"atlas":       assess.NewATLASEngine,
	"sbd":         assess.NewSBDEngine,
	"ivv":         assess.NewIVVEngine,
	"cssp":        assess.NewCSSPEngine,
	"zta":         assess.NewZTAEngine,
}

// AssessRunTool exposes assess.Runner.Run as the "assess_run" MCP tool.
type AssessRunTool struct {
	Runner *assess.Runner
}

type assessRunParams struct {
	ProjectID       string `json:"project_id"`
	FrameworkID     string `json:"framework_id"`
	ProjectDir      string `json:"project_dir"`
	PromoteReviewed bool   `json:"promote_reviewed"`
}

func (t *AssessRunTool) Name() string { return "assess_run" }

func (t *AssessRunTool) Description() string {
	return "Run a framework assessor against a project, upserting assessment rows and writing an audit event."
}

func (t *AssessRunTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"project_id": {"type": "string"},
			"framework_id": {"type": "string", "enum": ["nist_800_53","stig","fips","cmmc","fedramp","atlas","sbd","ivv","cssp","zta"]},
			"project_dir": {"type": "string"},
			"promote_reviewed": {"type": "boolean", "description": "Promote not_assessed requirements to not_satisfied instead of leaving them pending review."}
		},
		"required": ["project_id", "framework_id"]
	}`)
}

func (t *AssessRunTool) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p assessRunParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid params: %v", err)), nil
	}

	newEngine, ok := frameworkEngines[p.FrameworkID]
	if !ok {
		return mcp.NotFoundResult("unknown framework_id: "+p.FrameworkID, "not_found"), nil
	}

	summary, err := t.Runner.Run(ctx, newEngine(), p.ProjectID, p.ProjectDir, p.PromoteReviewed)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}

	return mcp.JSONResult(summary)
}
