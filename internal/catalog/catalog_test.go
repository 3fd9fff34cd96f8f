package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/compliance-mcp/internal/catalog"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadRequirementsKey(t *testing.T) {
	path := writeCatalog(t, `{
		"requirements": [
			{"id": "AC.L1-3.1.1", "title": "Limit system access", "description": "...", "domain": "Access Control", "priority": "high", "automation_level": "semi"}
		]
	}`)

	l := catalog.NewLoader()
	c, err := l.Load("cmmc", path)
	require.NoError(t, err)
	require.Len(t, c.Requirements, 1)
	assert.Equal(t, "AC.L1-3.1.1", c.Requirements[0].ID)
	assert.Equal(t, "Limit system access", c.Requirements[0].Title)
	assert.Equal(t, "Access Control", c.Requirements[0].Grouping)
	assert.Equal(t, catalog.PriorityHigh, c.Requirements[0].Priority)
}

func TestLoadNameAndFamilyAliasing(t *testing.T) {
	path := writeCatalog(t, `{
		"controls": [
			{"id": "AC-2", "name": "Account Management", "description": "...", "family": "Access Control", "priority": "critical"}
		]
	}`)

	l := catalog.NewLoader()
	c, err := l.Load("nist_800_53", path)
	require.NoError(t, err)
	require.Len(t, c.Requirements, 1)
	assert.Equal(t, "Account Management", c.Requirements[0].Title)
	assert.Equal(t, "Access Control", c.Requirements[0].Grouping)
}

func TestLoadMemoizesByPath(t *testing.T) {
	path := writeCatalog(t, `{"practices": [{"id": "P1", "title": "x", "priority": "low"}]}`)
	l := catalog.NewLoader()

	c1, err := l.Load("cmmc", path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{"practices": []}`), 0o644))
	c2, err := l.Load("cmmc", path)
	require.NoError(t, err)
	assert.Same(t, c1, c2, "second load should return the cached catalog")
}

func TestLoadYAMLCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
requirements:
  - id: ZTA-NET-1
    title: mTLS required
    domain: Network
    priority: high
`), 0o644))

	l := catalog.NewLoader()
	c, err := l.Load("zta", path)
	require.NoError(t, err)
	require.Len(t, c.Requirements, 1)
	assert.Equal(t, "ZTA-NET-1", c.Requirements[0].ID)
	assert.Equal(t, "mTLS required", c.Requirements[0].Title)
	assert.Equal(t, "Network", c.Requirements[0].Grouping)
	assert.Equal(t, catalog.PriorityHigh, c.Requirements[0].Priority)
}

func TestLoadRejectsUnrecognizedTopLevelKey(t *testing.T) {
	path := writeCatalog(t, `{"unknown_key": []}`)
	l := catalog.NewLoader()
	_, err := l.Load("cmmc", path)
	assert.Error(t, err)
}
