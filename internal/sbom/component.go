// Package sbom detects a project's dependency manifests across multiple
// ecosystems, parses them with regex-level rules (no language runtimes),
// and emits a CycloneDX 1.4 JSON software bill of materials.
package sbom

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// Component is one deduplicated dependency entry.
type Component struct {
	Type    string `json:"type"`
	BomRef  string `json:"bom-ref"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Group   string `json:"group,omitempty"`
	Purl    string `json:"purl"`
	Scope   string `json:"scope,omitempty"`
}

// versionConstraintPrefix strips leading range/pin operators so only a
// concrete version token remains.
var versionConstraintPrefix = regexp.MustCompile(`^[\^~><=!\s]+`)

// NormalizeVersion strips leading constraint operators (^, ~, >=, <=, ==,
// !=, etc.) from a dependency version string, keeping the first concrete
// version token. A range like ">=1.2.0,<2.0.0" keeps only "1.2.0".
func NormalizeVersion(raw string) string {
	v := strings.TrimSpace(raw)
	if idx := strings.IndexAny(v, ",|"); idx >= 0 {
		v = v[:idx]
	}
	v = versionConstraintPrefix.ReplaceAllString(v, "")
	return strings.TrimSpace(v)
}

// BuildPurl constructs a package-url for a component. ecosystem is the
// purl "type" (pypi, npm, golang, cargo, maven, nuget, gem).
func BuildPurl(ecosystem, group, name, version string) string {
	name = strings.TrimSpace(name)
	version = NormalizeVersion(version)
	subject := name
	if group != "" {
		subject = group + "/" + name
	}
	purl := "pkg:" + ecosystem + "/" + subject
	if version != "" {
		purl += "@" + version
	}
	return purl
}

// BomRef is 16 hex chars of SHA-256 over "group/name@version" (group may
// be empty).
func BomRef(group, name, version string) string {
	subject := name
	if group != "" {
		subject = group + "/" + name
	}
	sum := sha256.Sum256([]byte(subject + "@" + version))
	return hex.EncodeToString(sum[:])[:16]
}

// NewComponent builds a Component with its bom-ref and purl derived from
// (ecosystem, group, name, version).
func NewComponent(ecosystem, group, name, version, scope string) Component {
	version = NormalizeVersion(version)
	return Component{
		Type:    "library",
		BomRef:  BomRef(group, name, version),
		Name:    name,
		Version: version,
		Group:   group,
		Purl:    BuildPurl(ecosystem, group, name, version),
		Scope:   scope,
	}
}

// Dedup removes duplicate components by purl, keeping the first
// occurrence.
func Dedup(components []Component) []Component {
	seen := map[string]bool{}
	var out []Component
	for _, c := range components {
		if seen[c.Purl] {
			continue
		}
		seen[c.Purl] = true
		out = append(out, c)
	}
	return out
}
