package reports_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/compliance-mcp/internal/reports"
)

func TestLoadTemplateStripsFrontMatter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cmmc-report.md"), []byte(
		"---\nassessor: Jane Reviewer\n---\n# {{project_name}}\n"), 0o644))

	meta, body, err := reports.LoadTemplate(dir, "cmmc")
	require.NoError(t, err)
	assert.Equal(t, "Jane Reviewer", meta.Assessor)
	assert.Equal(t, "# {{project_name}}\n", body)
}

func TestLoadTemplateWithoutFrontMatterIsUnchanged(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cmmc-report.md"), []byte("# {{project_name}}\n"), 0o644))

	meta, body, err := reports.LoadTemplate(dir, "cmmc")
	require.NoError(t, err)
	assert.Empty(t, meta.Assessor)
	assert.Equal(t, "# {{project_name}}\n", body)
}

func TestEveryFrameworkHasADedicatedTemplateWithSecurityGateSection(t *testing.T) {
	frameworks := []string{
		"nist_800_53", "stig", "fips", "cmmc", "fedramp", "atlas", "sbd", "ivv", "cssp", "zta",
	}
	for _, fw := range frameworks {
		_, body, err := reports.LoadTemplate("", fw)
		require.NoError(t, err, fw)
		assert.Contains(t, body, "## Security Gate Evaluation", fw)
		assert.Contains(t, body, "{{gate_result}}", fw)
	}
}
