package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name string
}

func (t *stubTool) Name() string                    { return t.name }
func (t *stubTool) Description() string              { return "stub" }
func (t *stubTool) InputSchema() json.RawMessage     { return json.RawMessage(`{}`) }
func (t *stubTool) Execute(_ context.Context, _ json.RawMessage) (*ToolsCallResult, error) {
	return &ToolsCallResult{Content: []ContentBlock{TextContent("ok")}}, nil
}

type stubResource struct {
	uri    string
	lastParams map[string]string
}

func (r *stubResource) Definition() ResourceDefinition {
	return ResourceDefinition{URI: r.uri, Name: r.uri, MimeType: "text/plain"}
}
func (r *stubResource) Read(params map[string]string) (*ResourcesReadResult, error) {
	r.lastParams = params
	return &ResourcesReadResult{Contents: []ResourceContent{{URI: r.uri, Text: "data"}}}, nil
}

func TestRegistryDuplicateToolPanics(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&stubTool{name: "a"})
	assert.Panics(t, func() { reg.Register(&stubTool{name: "a"}) })
}

func TestRegistryResourceExactMatch(t *testing.T) {
	reg := NewRegistry()
	res := &stubResource{uri: "compliance://projects"}
	reg.RegisterResource(res)

	got, params := reg.GetResource("compliance://projects")
	require.NotNil(t, got)
	assert.Nil(t, params)
}

func TestRegistryResourceTemplateMatch(t *testing.T) {
	reg := NewRegistry()
	res := &stubResource{uri: "compliance://projects/{project_id}/assessments"}
	reg.RegisterResource(res)

	got, params := reg.GetResource("compliance://projects/proj-1/assessments")
	require.NotNil(t, got)
	assert.Equal(t, "proj-1", params["project_id"])
}

func TestRegistryResourceTemplateNoMatch(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterResource(&stubResource{uri: "compliance://projects/{project_id}/assessments"})

	got, _ := reg.GetResource("compliance://projects/proj-1/assessments/extra")
	assert.Nil(t, got)
}

func TestRegistryRejectsMultiSegmentTemplate(t *testing.T) {
	reg := NewRegistry()
	assert.Panics(t, func() {
		reg.RegisterResource(&stubResource{uri: "compliance://{a}{b}"})
	})
}

func TestRegistryCapabilityFlags(t *testing.T) {
	reg := NewRegistry()
	assert.False(t, reg.HasTools())
	assert.False(t, reg.HasResources())
	assert.False(t, reg.HasPrompts())

	reg.Register(&stubTool{name: "t"})
	assert.True(t, reg.HasTools())
}
