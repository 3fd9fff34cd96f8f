package rtm_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergent-company/compliance-mcp/internal/rtm"
)

func mustWrite(t *testing.T, dir, rel, body string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestDiscoverFindsAllFourKinds(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "features/login.feature", "Feature: user login authentication\n")
	mustWrite(t, dir, "architecture.md", "# Architecture\nlogin authentication design\n")
	mustWrite(t, dir, "src/login.go", "package login\n// login authentication module\n")
	mustWrite(t, dir, "tests/login_test.go", "package login_test\n// login authentication test\n")

	requirements, designs, modules, tests, err := rtm.Discover(dir)
	require.NoError(t, err)
	require.Len(t, requirements, 1)
	require.Len(t, designs, 1)
	require.Len(t, modules, 1)
	require.Len(t, tests, 1)
	assert.Equal(t, "user login authentication", requirements[0].Title)
}

func TestExcludesEmptyInitPy(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "src/pkg/__init__.py", "")
	_, _, modules, _, err := rtm.Discover(dir)
	require.NoError(t, err)
	assert.Len(t, modules, 0)
}

func TestBuildClassifiesTracedWhenAllThreeMatch(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "features/checkout.feature", "Feature: checkout payment flow\n")
	mustWrite(t, dir, "docs/design/checkout-payment-flow.md", "# Architecture\ncheckout payment flow design\n")
	mustWrite(t, dir, "src/checkout.go", "package checkout // checkout payment flow module\n")
	mustWrite(t, dir, "tests/checkout_payment_flow_test.go", "package checkout_test // checkout payment flow test\n")

	m, err := rtm.Build(dir)
	require.NoError(t, err)
	require.Len(t, m.Requirements, 1)
	assert.Equal(t, rtm.ClassificationTraced, m.Classifications[m.Requirements[0].ID])
	assert.Equal(t, float64(100), m.Coverage)
}

func TestBuildClassifiesGapWhenNoMatches(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "features/unrelated.feature", "Feature: xyz completely unrelated thing\n")
	mustWrite(t, dir, "src/other.go", "package other // totally different concern here\n")

	m, err := rtm.Build(dir)
	require.NoError(t, err)
	require.Len(t, m.Requirements, 1)
	assert.Equal(t, rtm.ClassificationGap, m.Classifications[m.Requirements[0].ID])
}

func TestWriteReportsCreatesBothFiles(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, dir, "features/a.feature", "Feature: sample requirement alpha\n")

	m, err := rtm.Build(dir)
	require.NoError(t, err)

	mdPath, jsonPath, err := rtm.WriteReports(dir, m, nil)
	require.NoError(t, err)
	assert.FileExists(t, mdPath)
	assert.FileExists(t, jsonPath)
}
