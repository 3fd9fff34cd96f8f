package cui_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/compliance-mcp/internal/cui"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := cui.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "CUI // SP-CTI", cfg.BannerTop)
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cui.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
banner_top: "CUSTOM // BANNER"
banner_bottom: "CUSTOM // BANNER"
document_header: "custom header"
document_footer: "custom footer"
`), 0o644))

	cfg, err := cui.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "CUSTOM // BANNER", cfg.BannerTop)
	assert.Equal(t, "custom header", cfg.DocumentHeader)
}

func TestMarkAddsHeaderAndFooter(t *testing.T) {
	m := cui.NewMarker(cui.Config{
		BannerTop:      "CUI // SP-CTI",
		DocumentHeader: "CUI // SP-CTI",
		DocumentFooter: "CUI // SP-CTI",
	})

	marked := m.Mark("# Report\n\nbody text")
	assert.True(t, len(marked) > len("# Report\n\nbody text"))
	assert.Contains(t, marked, "# Report")
}

func TestMarkIsIdempotent(t *testing.T) {
	m := cui.NewMarker(cui.Config{
		BannerTop:      "CUI // SP-CTI",
		DocumentHeader: "CUI // SP-CTI header",
		DocumentFooter: "CUI // SP-CTI footer",
	})

	once := m.Mark("# Report\n\nbody text")
	twice := m.Mark(once)
	assert.Equal(t, once, twice)
}
