package rtm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/emergent-company/compliance-mcp/internal/cui"
)

// jsonMatrix is the serializable shape written to rtm-data.json.
type jsonMatrix struct {
	Coverage        float64                   `json:"coverage"`
	Requirements    []Item                    `json:"requirements"`
	Designs         []Item                    `json:"designs"`
	Modules         []Item                    `json:"modules"`
	Tests           []Item                    `json:"tests"`
	Classifications map[string]Classification `json:"classifications"`
	OrphanTests     []Item                    `json:"orphan_tests"`
}

// WriteReports renders m to {projectDir}/compliance/rtm/rtm-report.md and
// rtm-data.json, marking the Markdown report with marker (may be nil).
func WriteReports(projectDir string, m *Matrix, marker *cui.Marker) (mdPath, jsonPath string, err error) {
	outDir := filepath.Join(projectDir, "compliance", "rtm")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating rtm output directory: %w", err)
	}

	md := renderMarkdown(m)
	if marker != nil {
		md = marker.Mark(md)
	}
	mdPath = filepath.Join(outDir, "rtm-report.md")
	if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
		return "", "", fmt.Errorf("writing rtm report: %w", err)
	}

	data := jsonMatrix{
		Coverage:        m.Coverage,
		Requirements:    m.Requirements,
		Designs:         m.Designs,
		Modules:         m.Modules,
		Tests:           m.Tests,
		Classifications: m.Classifications,
		OrphanTests:     m.OrphanTests,
	}
	blob, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("marshaling rtm data: %w", err)
	}
	jsonPath = filepath.Join(outDir, "rtm-data.json")
	if err := os.WriteFile(jsonPath, blob, 0o644); err != nil {
		return "", "", fmt.Errorf("writing rtm data: %w", err)
	}

	return mdPath, jsonPath, nil
}

func renderMarkdown(m *Matrix) string {
	var b strings.Builder
	b.WriteString("# Requirements Traceability Matrix\n\n")
	fmt.Fprintf(&b, "**Coverage:** %.1f%%\n\n", m.Coverage)

	sorted := make([]Item, len(m.Requirements))
	copy(sorted, m.Requirements)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	b.WriteString("## Requirements\n\n")
	b.WriteString("| ID | Title | Classification | Design | Code | Tests |\n|---|---|---|---|---|---|\n")
	for _, req := range sorted {
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %d | %d |\n",
			req.ID, req.Title, m.Classifications[req.ID],
			len(m.RequirementDesigns[req.ID]), len(m.RequirementModules[req.ID]), len(m.RequirementTests[req.ID]))
	}

	if len(m.OrphanTests) > 0 {
		b.WriteString("\n## Orphan Tests\n\n")
		for _, t := range m.OrphanTests {
			fmt.Fprintf(&b, "- %s (%s)\n", t.ID, t.Path)
		}
	}

	return b.String()
}
