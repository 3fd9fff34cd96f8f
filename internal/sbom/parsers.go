package sbom

import (
	"encoding/json"
	"os"
	"regexp"
	"strings"
)

// manifestFiles enumerates the ecosystem manifests detected, in priority
// order when more than one is present.
var manifestFiles = []string{
	"requirements.txt", "pyproject.toml", "package-lock.json", "package.json",
	"go.mod", "Cargo.toml", "pom.xml", "build.gradle", "build.gradle.kts",
	"packages.config",
}

// DetectManifests returns the subset of manifestFiles present directly
// under projectDir, plus any *.csproj files found at the top level.
func DetectManifests(projectDir string) ([]string, error) {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil, err
	}
	present := map[string]bool{}
	var csproj []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		present[e.Name()] = true
		if strings.HasSuffix(e.Name(), ".csproj") {
			csproj = append(csproj, e.Name())
		}
	}

	var found []string
	for _, m := range manifestFiles {
		if present[m] {
			found = append(found, m)
		}
	}
	found = append(found, csproj...)
	return found, nil
}

var requirementsTxtLineRe = regexp.MustCompile(`^([A-Za-z0-9_.\-]+)\s*([<>=!~^]+)?\s*([0-9][A-Za-z0-9.\-]*)?`)

// ParseRequirementsTxt parses Python requirements.txt: each non-comment
// line is "name [op version]".
func ParseRequirementsTxt(data []byte) []Component {
	var out []Component
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		m := requirementsTxtLineRe.FindStringSubmatch(line)
		if m == nil || m[1] == "" {
			continue
		}
		out = append(out, NewComponent("pypi", "", m[1], m[3], ""))
	}
	return out
}

var pyprojectDepsBlockRe = regexp.MustCompile(`(?s)dependencies\s*=\s*\[(.*?)\]`)
var pyprojectQuotedRe = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)

// ParsePyprojectToml scans the top-level dependencies = [...] array.
func ParsePyprojectToml(data []byte) []Component {
	block := pyprojectDepsBlockRe.FindSubmatch(data)
	if block == nil {
		return nil
	}
	matches := pyprojectQuotedRe.FindAllSubmatch(block[1], -1)
	var out []Component
	for _, m := range matches {
		entry := string(m[1])
		if entry == "" {
			entry = string(m[2])
		}
		parsed := requirementsTxtLineRe.FindStringSubmatch(entry)
		if parsed == nil || parsed[1] == "" {
			continue
		}
		out = append(out, NewComponent("pypi", "", parsed[1], parsed[3], ""))
	}
	return out
}

// packageJSON models the subset of package.json fields this parser merges.
type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
}

// ParsePackageJSON merges dependencies, devDependencies (scope=optional),
// and peerDependencies (scope=optional).
func ParsePackageJSON(data []byte) []Component {
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil
	}
	var out []Component
	for name, version := range pkg.Dependencies {
		out = append(out, NewComponent("npm", "", name, version, ""))
	}
	for name, version := range pkg.DevDependencies {
		out = append(out, NewComponent("npm", "", name, version, "optional"))
	}
	for name, version := range pkg.PeerDependencies {
		out = append(out, NewComponent("npm", "", name, version, "optional"))
	}
	return out
}

// packageLockV2V3 models the npm lockfile v2/v3 "packages" map shape.
type packageLockV2V3 struct {
	Packages    map[string]struct {
		Version string `json:"version"`
	} `json:"packages"`
	Dependencies map[string]struct {
		Version string `json:"version"`
	} `json:"dependencies"`
}

// ParsePackageLockJSON prefers the v2/v3 "packages" map (skipping the
// root entry and nested node_modules paths), falling back to the v1
// "dependencies" map.
func ParsePackageLockJSON(data []byte) []Component {
	var lock packageLockV2V3
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil
	}

	var out []Component
	if len(lock.Packages) > 0 {
		for path, entry := range lock.Packages {
			if path == "" {
				continue
			}
			trimmed := strings.TrimPrefix(path, "node_modules/")
			if trimmed != path && strings.Contains(trimmed, "node_modules/") {
				continue // nested transitive copy, skip
			}
			name := trimmed
			if idx := strings.LastIndex(trimmed, "node_modules/"); idx >= 0 {
				name = trimmed[idx+len("node_modules/"):]
			}
			if name == "" {
				continue
			}
			out = append(out, NewComponent("npm", "", name, entry.Version, ""))
		}
		return out
	}

	for name, entry := range lock.Dependencies {
		out = append(out, NewComponent("npm", "", name, entry.Version, ""))
	}
	return out
}

var goModRequireBlockRe = regexp.MustCompile(`(?s)require\s*\((.*?)\)`)
var goModSingleLineRe = regexp.MustCompile(`(?m)^require[ \t]+([^\s(]\S*)[ \t]+(\S+)`)
var goModLineRe = regexp.MustCompile(`(?m)^\s*(\S+)\s+(v\S+)`)

// ParseGoMod parses parenthesized require blocks and single-line require
// statements, stripping inline "// indirect" comments.
func ParseGoMod(data []byte) []Component {
	text := string(data)
	var out []Component

	for _, block := range goModRequireBlockRe.FindAllStringSubmatch(text, -1) {
		for _, line := range strings.Split(block[1], "\n") {
			line = strings.TrimSpace(line)
			if idx := strings.Index(line, "//"); idx >= 0 {
				line = strings.TrimSpace(line[:idx])
			}
			if line == "" {
				continue
			}
			m := goModLineRe.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			out = append(out, NewComponent("golang", "", m[1], m[2], ""))
		}
	}

	for _, m := range goModSingleLineRe.FindAllStringSubmatch(text, -1) {
		module := m[1]
		version := m[2]
		if idx := strings.Index(version, "//"); idx >= 0 {
			version = strings.TrimSpace(version[:idx])
		}
		out = append(out, NewComponent("golang", "", module, version, ""))
	}

	return out
}

var cargoSectionRe = regexp.MustCompile(`(?m)^\[dependencies(?:\.\S+)?\]\s*$`)
var cargoSimpleLineRe = regexp.MustCompile(`(?m)^([A-Za-z0-9_\-]+)\s*=\s*"([^"]+)"`)
var cargoTableLineRe = regexp.MustCompile(`(?m)^([A-Za-z0-9_\-]+)\s*=\s*\{[^}]*version\s*=\s*"([^"]+)"`)

// ParseCargoToml is section-aware: it only scans lines within
// [dependencies] (or [dependencies.*]) sections, and handles both
// name = "x.y" and name = { version = "x.y" } forms.
func ParseCargoToml(data []byte) []Component {
	text := string(data)
	lines := strings.Split(text, "\n")

	var out []Component
	inDeps := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			inDeps = cargoSectionRe.MatchString(trimmed + "\n")
			continue
		}
		if !inDeps {
			continue
		}
		if m := cargoTableLineRe.FindStringSubmatch(trimmed); m != nil {
			out = append(out, NewComponent("cargo", "", m[1], m[2], ""))
			continue
		}
		if m := cargoSimpleLineRe.FindStringSubmatch(trimmed); m != nil {
			out = append(out, NewComponent("cargo", "", m[1], m[2], ""))
		}
	}
	return out
}

var pomDependencyRe = regexp.MustCompile(`(?s)<dependency>(.*?)</dependency>`)
var pomGroupIDRe = regexp.MustCompile(`<groupId>([^<]+)</groupId>`)
var pomArtifactIDRe = regexp.MustCompile(`<artifactId>([^<]+)</artifactId>`)
var pomVersionRe = regexp.MustCompile(`<version>([^<]+)</version>`)
var pomScopeRe = regexp.MustCompile(`<scope>([^<]+)</scope>`)

// ParsePomXML regex-extracts <dependency> blocks, mapping test/provided
// scopes to "optional".
func ParsePomXML(data []byte) []Component {
	var out []Component
	for _, block := range pomDependencyRe.FindAllSubmatch(data, -1) {
		body := block[1]
		group := firstSubmatch(pomGroupIDRe, body)
		artifact := firstSubmatch(pomArtifactIDRe, body)
		version := firstSubmatch(pomVersionRe, body)
		scope := firstSubmatch(pomScopeRe, body)
		if artifact == "" {
			continue
		}
		normalizedScope := ""
		if scope == "test" || scope == "provided" {
			normalizedScope = "optional"
		}
		out = append(out, NewComponent("maven", group, artifact, version, normalizedScope))
	}
	return out
}

func firstSubmatch(re *regexp.Regexp, data []byte) string {
	m := re.FindSubmatch(data)
	if m == nil {
		return ""
	}
	return string(m[1])
}

var gradleDepRe = regexp.MustCompile(`(?m)(?:implementation|api|compileOnly|runtimeOnly|testImplementation|testCompileOnly|testRuntimeOnly)\s*[\(\s]['"]([^'":]+):([^'":]+):([^'"]+)['"]`)

// ParseGradle matches implementation|api|compileOnly|runtimeOnly|test*
// configurations with a quoted 'group:artifact:version' GAV string.
func ParseGradle(data []byte) []Component {
	var out []Component
	for _, m := range gradleDepRe.FindAllStringSubmatch(string(data), -1) {
		scope := ""
		out = append(out, NewComponent("maven", m[1], m[2], m[3], scope))
	}
	return out
}

var csprojSelfClosingRe = regexp.MustCompile(`<PackageReference\s+Include="([^"]+)"\s+Version="([^"]+)"\s*/>`)
var csprojSelfClosingAttrSwapRe = regexp.MustCompile(`<PackageReference\s+Version="([^"]+)"\s+Include="([^"]+)"\s*/>`)
var csprojMultiLineRe = regexp.MustCompile(`(?s)<PackageReference\s+Include="([^"]+)"\s*>\s*<Version>([^<]+)</Version>\s*</PackageReference>`)

// ParseCsproj handles self-closing PackageReference tags in either
// attribute order, plus the multi-line child-<Version> variant.
func ParseCsproj(data []byte) []Component {
	var out []Component
	for _, m := range csprojSelfClosingRe.FindAllStringSubmatch(string(data), -1) {
		out = append(out, NewComponent("nuget", "", m[1], m[2], ""))
	}
	for _, m := range csprojSelfClosingAttrSwapRe.FindAllStringSubmatch(string(data), -1) {
		out = append(out, NewComponent("nuget", "", m[2], m[1], ""))
	}
	for _, m := range csprojMultiLineRe.FindAllStringSubmatch(string(data), -1) {
		out = append(out, NewComponent("nuget", "", m[1], m[2], ""))
	}
	return out
}

var packagesConfigRe = regexp.MustCompile(`<package\s+id="([^"]+)"\s+version="([^"]+)"`)

// ParsePackagesConfig handles the legacy NuGet packages.config format.
func ParsePackagesConfig(data []byte) []Component {
	var out []Component
	for _, m := range packagesConfigRe.FindAllStringSubmatch(string(data), -1) {
		out = append(out, NewComponent("nuget", "", m[1], m[2], ""))
	}
	return out
}
