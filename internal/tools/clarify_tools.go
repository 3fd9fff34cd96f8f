package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/emergent-company/compliance-mcp/internal/clarify"
	"github.com/emergent-company/compliance-mcp/internal/mcp"
	"github.com/emergent-company/compliance-mcp/internal/store"
)

// ClarifyAnalyzeTool exposes the clarification engine as "clarify_analyze".
// It runs in spec-file mode when spec_text is set, and session mode when
// session_id is set; spec_text takes precedence if both are given.
type ClarifyAnalyzeTool struct {
	Store *store.Store
}

type clarifyAnalyzeParams struct {
	SpecText     string `json:"spec_text"`
	SessionID    string `json:"session_id"`
	MaxQuestions int    `json:"max_questions"`
}

func (t *ClarifyAnalyzeTool) Name() string { return "clarify_analyze" }

func (t *ClarifyAnalyzeTool) Description() string {
	return "Analyze a spec document or an intake session's requirements and rank clarifying questions by impact x uncertainty."
}

func (t *ClarifyAnalyzeTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"spec_text": {"type": "string"},
			"session_id": {"type": "string"},
			"max_questions": {"type": "integer"}
		}
	}`)
}

func (t *ClarifyAnalyzeTool) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p clarifyAnalyzeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid params: %v", err)), nil
	}
	maxQuestions := p.MaxQuestions
	if maxQuestions <= 0 {
		maxQuestions = 5
	}

	if p.SpecText != "" {
		result := clarify.AnalyzeSpecText(p.SpecText, maxQuestions)
		return mcp.JSONResult(result)
	}

	if p.SessionID == "" {
		return mcp.ErrorResult("one of spec_text or session_id is required"), nil
	}

	questions, err := clarify.AnalyzeSession(ctx, t.Store, p.SessionID, maxQuestions)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	return mcp.JSONResult(questions)
}
