package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/emergent-company/compliance-mcp/internal/audit"
	"github.com/emergent-company/compliance-mcp/internal/mcp"
	"github.com/emergent-company/compliance-mcp/internal/sbom"
	"github.com/emergent-company/compliance-mcp/internal/store"
)

// SBOMGenerateTool exposes sbom.Build as "sbom_generate", writing a
// versioned CycloneDX document under the project's compliance directory.
type SBOMGenerateTool struct {
	Store *store.Store
	Audit *audit.Writer
}

type sbomGenerateParams struct {
	ProjectID string `json:"project_id"`
}

func (t *SBOMGenerateTool) Name() string { return "sbom_generate" }

func (t *SBOMGenerateTool) Description() string {
	return "Detect dependency manifests across ecosystems and generate a versioned CycloneDX 1.4 software bill of materials."
}

func (t *SBOMGenerateTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {"project_id": {"type": "string"}},
		"required": ["project_id"]
	}`)
}

type sbomGenerateResult struct {
	Version        int    `json:"version"`
	OutputFile     string `json:"output_file"`
	ComponentCount int    `json:"component_count"`
}

func (t *SBOMGenerateTool) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p sbomGenerateParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid params: %v", err)), nil
	}

	project, err := t.Store.GetProject(ctx, p.ProjectID)
	if err != nil {
		return mcp.NotFoundResult(err.Error(), "not_found"), nil
	}

	doc, err := sbom.Build(project.ProjectID, project.Directory, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}

	version, err := t.Store.NextSBOMVersion(ctx, project.ProjectID)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	doc.Version = version

	outDir := filepath.Join(project.Directory, "compliance", "sbom")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("creating sbom output directory: %v", err)), nil
	}
	outputFile := filepath.Join(outDir, fmt.Sprintf("sbom-v%d.json", version))

	data, err := doc.MarshalJSONIndent()
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	if err := os.WriteFile(outputFile, data, 0o644); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("writing sbom document: %v", err)), nil
	}

	if err := t.Store.RecordSBOM(ctx, &store.SBOMRecord{
		ID:             uuid.NewString(),
		ProjectID:      project.ProjectID,
		Version:        version,
		OutputFile:     outputFile,
		ComponentCount: len(doc.Components),
	}); err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}

	t.Audit.WriteEvent(ctx, audit.Event{
		ProjectID: project.ProjectID,
		EventType: "sbom_generated",
		Actor:     "system",
		Action:    "generate",
		Details: map[string]any{
			"version":         version,
			"component_count": len(doc.Components),
		},
		AffectedFiles:  []string{outputFile},
		Classification: project.Classification,
	})

	return mcp.JSONResult(sbomGenerateResult{
		Version:        version,
		OutputFile:     outputFile,
		ComponentCount: len(doc.Components),
	})
}
