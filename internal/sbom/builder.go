package sbom

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document is a CycloneDX 1.4 JSON SBOM document.
type Document struct {
	BomFormat   string    `json:"bomFormat"`
	SpecVersion string    `json:"specVersion"`
	Version     int       `json:"version"`
	Metadata    Metadata  `json:"metadata"`
	Components  []Component `json:"components"`
}

// Metadata carries the CUI classification, project id, and distribution
// statement every document must include.
type Metadata struct {
	Timestamp    string     `json:"timestamp"`
	Component    RootComponent `json:"component"`
	Properties   []Property `json:"properties"`
}

// RootComponent describes the project itself as the SBOM's subject.
type RootComponent struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Property is a CycloneDX name/value metadata property.
type Property struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// parserFor maps a detected manifest file name to its parse function.
func parserFor(name string) func([]byte) []Component {
	switch {
	case name == "requirements.txt":
		return ParseRequirementsTxt
	case name == "pyproject.toml":
		return ParsePyprojectToml
	case name == "package-lock.json":
		return ParsePackageLockJSON
	case name == "package.json":
		return ParsePackageJSON
	case name == "go.mod":
		return ParseGoMod
	case name == "Cargo.toml":
		return ParseCargoToml
	case name == "pom.xml":
		return ParsePomXML
	case name == "build.gradle" || name == "build.gradle.kts":
		return ParseGradle
	case name == "packages.config":
		return ParsePackagesConfig
	case strings.HasSuffix(name, ".csproj"):
		return ParseCsproj
	}
	return nil
}

// Build detects manifests under projectDir, parses each with its
// ecosystem rule, deduplicates by purl, and assembles a CycloneDX 1.4
// document.
func Build(projectID, projectDir, timestamp string) (*Document, error) {
	manifests, err := DetectManifests(projectDir)
	if err != nil {
		return nil, fmt.Errorf("detecting manifests: %w", err)
	}

	var components []Component
	for _, name := range manifests {
		parse := parserFor(name)
		if parse == nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(projectDir, name))
		if err != nil {
			continue // unreadable manifest, skip rather than fail the whole build
		}
		components = append(components, parse(data)...)
	}

	components = Dedup(components)

	doc := &Document{
		BomFormat:   "CycloneDX",
		SpecVersion: "1.4",
		Version:     1,
		Metadata: Metadata{
			Timestamp: timestamp,
			Component: RootComponent{Type: "application", Name: projectID},
			Properties: []Property{
				{Name: "cui:classification", Value: "CUI"},
				{Name: "cui:category", Value: "CTI"},
				{Name: "cui:project_id", Value: projectID},
				{Name: "cui:distribution", Value: "Distribution Statement D"},
			},
		},
		Components: components,
	}
	return doc, nil
}

// MarshalJSONIndent renders doc as indented CycloneDX JSON.
func (d *Document) MarshalJSONIndent() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}
