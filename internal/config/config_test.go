package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "compliance-mcp", cfg.Server.Name)
	assert.Equal(t, 5, cfg.Clarify.MaxQuestions)
	assert.Equal(t, "compliance.db", cfg.Store.Path)
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("COMPLIANCE_MCP_STORE_PATH", ":memory:")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":memory:", cfg.Store.Path)
}

func TestValidateRejectsNonPositiveMaxQuestions(t *testing.T) {
	cfg := &Config{Store: StoreConfig{Path: "x.db"}, Clarify: ClarifyConfig{MaxQuestions: 0}}
	assert.Error(t, cfg.Validate())
}
