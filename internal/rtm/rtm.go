// Package rtm builds a bidirectional Requirements Traceability Matrix by
// discovering requirements, design artifacts, code modules, and tests in
// a project directory, then fuzzy-matching requirements against the
// other three sets.
package rtm

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ItemKind identifies which of the four disjoint discovery sets an item
// belongs to.
type ItemKind string

const (
	KindRequirement ItemKind = "REQ"
	KindDesign      ItemKind = "DES"
	KindModule      ItemKind = "MOD"
	KindTest        ItemKind = "TST"
)

// Item is one discovered artifact.
type Item struct {
	ID       string
	Kind     ItemKind
	Title    string
	Path     string
	Keywords map[string]bool
}

// Classification is a requirement's traceability verdict.
type Classification string

const (
	ClassificationTraced  Classification = "Traced"
	ClassificationPartial Classification = "Partial"
	ClassificationGap     Classification = "Gap"
)

// jaccardThreshold is the minimum keyword-set similarity for a match.
const jaccardThreshold = 0.15

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "to": true, "and": true,
	"or": true, "in": true, "on": true, "for": true, "is": true, "are": true,
	"with": true, "as": true, "be": true, "by": true, "at": true, "that": true,
	"this": true, "it": true, "from": true, "should": true, "must": true, "shall": true,
}

// Discover walks projectDir and returns the four disjoint discovery sets.
func Discover(projectDir string) (requirements, designs, modules, tests []Item, err error) {
	reqN, desN, modN, tstN := 0, 0, 0, 0

	featureRe := regexp.MustCompile(`(?m)^\s*Feature:\s*(.+)$`)

	walkErr := filepath.WalkDir(projectDir, func(path string, d fs.DirEntry, werr error) error {
		if werr != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(projectDir, path)
		base := filepath.Base(path)

		switch {
		case strings.HasSuffix(base, ".feature"):
			data, rerr := os.ReadFile(path)
			if rerr != nil {
				return nil
			}
			matches := featureRe.FindAllStringSubmatch(string(data), -1)
			for _, m := range matches {
				reqN++
				title := strings.TrimSpace(m[1])
				requirements = append(requirements, Item{
					ID: fmt.Sprintf("REQ-%03d", reqN), Kind: KindRequirement,
					Title: title, Path: rel, Keywords: keywordSet(title + " " + rel),
				})
			}

		case base == "requirements.md" || base == "user-stories.md":
			for _, title := range extractHeadingItems(path) {
				reqN++
				requirements = append(requirements, Item{
					ID: fmt.Sprintf("REQ-%03d", reqN), Kind: KindRequirement,
					Title: title, Path: rel, Keywords: keywordSet(title + " " + rel),
				})
			}

		case base == "architecture.md",
			strings.Contains(filepath.ToSlash(rel), "docs/design/") && strings.HasSuffix(base, ".md"),
			strings.Contains(filepath.ToSlash(rel), "adr/") && strings.HasSuffix(base, ".md"):
			desN++
			designs = append(designs, Item{
				ID: fmt.Sprintf("DES-%03d", desN), Kind: KindDesign,
				Title: base, Path: rel, Keywords: keywordSet(base + " " + rel),
			})

		case isTestPath(rel, base):
			tstN++
			tests = append(tests, Item{
				ID: fmt.Sprintf("TST-%03d", tstN), Kind: KindTest,
				Title: base, Path: rel, Keywords: keywordSet(base + " " + rel),
			})

		case isCodeModulePath(rel, base):
			modN++
			modules = append(modules, Item{
				ID: fmt.Sprintf("MOD-%03d", modN), Kind: KindModule,
				Title: base, Path: rel, Keywords: keywordSet(base + " " + rel),
			})
		}
		return nil
	})
	if walkErr != nil {
		return nil, nil, nil, nil, walkErr
	}
	return requirements, designs, modules, tests, nil
}

func isTestPath(rel, base string) bool {
	lower := filepath.ToSlash(strings.ToLower(rel))
	for _, dir := range []string{"tests/", "test/", "spec/", "e2e/", "features/steps/"} {
		if strings.Contains(lower, dir) {
			return true
		}
	}
	lowerBase := strings.ToLower(base)
	return strings.Contains(lowerBase, "_test.") || strings.HasPrefix(lowerBase, "test_")
}

func isCodeModulePath(rel, base string) bool {
	lower := filepath.ToSlash(strings.ToLower(rel))
	underRoot := false
	for _, dir := range []string{"src/", "lib/", "app/"} {
		if strings.Contains(lower, dir) {
			underRoot = true
			break
		}
	}
	if !underRoot {
		return false
	}
	if isTestPath(rel, base) {
		return false
	}
	if base == "__init__.py" {
		return false // near-empty package marker, excluded
	}
	ext := filepath.Ext(base)
	switch ext {
	case ".go", ".py", ".ts", ".js", ".java", ".rb", ".rs":
		return true
	}
	return false
}

// extractHeadingItems parses a Markdown file's heading-level items (any
// "#"-prefixed line) as candidate requirement titles.
func extractHeadingItems(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var titles []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			titles = append(titles, strings.TrimSpace(strings.TrimLeft(line, "# ")))
		}
	}
	return titles
}

// keywordSet lowercases, tokenizes on non-alphanumeric runes, and strips
// stop words and short tokens.
func keywordSet(text string) map[string]bool {
	fields := regexp.MustCompile(`[^a-zA-Z0-9]+`).Split(strings.ToLower(text), -1)
	set := map[string]bool{}
	for _, f := range fields {
		if len(f) < 3 || stopWords[f] {
			continue
		}
		set[f] = true
	}
	return set
}

// jaccard computes set similarity |A∩B| / |A∪B|.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Matches returns every item in candidates whose keyword set is at least
// jaccardThreshold similar to req's.
func Matches(req Item, candidates []Item) []Item {
	var matched []Item
	for _, c := range candidates {
		if jaccard(req.Keywords, c.Keywords) >= jaccardThreshold {
			matched = append(matched, c)
		}
	}
	return matched
}

// Matrix is the fully resolved traceability result.
type Matrix struct {
	Requirements []Item
	Designs      []Item
	Modules      []Item
	Tests        []Item

	RequirementDesigns map[string][]Item
	RequirementModules map[string][]Item
	RequirementTests   map[string][]Item
	Classifications    map[string]Classification
	OrphanTests        []Item
	Coverage           float64
}

// Build discovers all four sets in projectDir and resolves the matrix.
func Build(projectDir string) (*Matrix, error) {
	requirements, designs, modules, tests, err := Discover(projectDir)
	if err != nil {
		return nil, err
	}

	m := &Matrix{
		Requirements:        requirements,
		Designs:             designs,
		Modules:             modules,
		Tests:               tests,
		RequirementDesigns:  map[string][]Item{},
		RequirementModules:  map[string][]Item{},
		RequirementTests:    map[string][]Item{},
		Classifications:     map[string]Classification{},
	}

	testMatched := map[string]bool{}
	requirementsWithTests := 0

	for _, req := range requirements {
		desMatches := Matches(req, designs)
		modMatches := Matches(req, modules)
		tstMatches := Matches(req, tests)

		m.RequirementDesigns[req.ID] = desMatches
		m.RequirementModules[req.ID] = modMatches
		m.RequirementTests[req.ID] = tstMatches

		for _, t := range tstMatches {
			testMatched[t.ID] = true
		}
		if len(tstMatches) > 0 {
			requirementsWithTests++
		}

		switch {
		case len(desMatches) > 0 && len(modMatches) > 0 && len(tstMatches) > 0:
			m.Classifications[req.ID] = ClassificationTraced
		case len(tstMatches) > 0 || len(desMatches) > 0 || len(modMatches) > 0:
			m.Classifications[req.ID] = ClassificationPartial
		default:
			m.Classifications[req.ID] = ClassificationGap
		}
	}

	for _, t := range tests {
		if !testMatched[t.ID] {
			m.OrphanTests = append(m.OrphanTests, t)
		}
	}
	sort.Slice(m.OrphanTests, func(i, j int) bool { return m.OrphanTests[i].ID < m.OrphanTests[j].ID })

	if len(requirements) > 0 {
		m.Coverage = 100 * float64(requirementsWithTests) / float64(len(requirements))
	}

	return m, nil
}
