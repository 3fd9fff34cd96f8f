// Package catalog loads framework-agnostic requirement catalogs: JSON or
// YAML documents listing the controls, practices, techniques, or
// mitigations a framework engine assesses against.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Priority is the catalog entry's criticality band.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// AutomationLevel indicates how much of an entry's assessment can be
// automated from project artifacts.
type AutomationLevel string

const (
	AutomationAuto   AutomationLevel = "auto"
	AutomationSemi   AutomationLevel = "semi"
	AutomationManual AutomationLevel = "manual"
)

// Requirement is one entry in a framework catalog. Field
// names are normalized across the catalog's possible top-level key
// (requirements/mitigations/techniques/controls/practices) and its
// possible per-entry naming (title vs name, domain vs family vs
// process_area vs category).
type Requirement struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	Grouping         string          `json:"grouping"`
	Priority         Priority        `json:"priority"`
	AutomationLevel  AutomationLevel `json:"automation_level,omitempty"`
	NISTControls     []string        `json:"nist_controls,omitempty"`
	TechniquesAddressed []string     `json:"techniques_addressed,omitempty"`
	CISACommitment   string          `json:"cisa_commitment,omitempty"`
	NIST800171ID     string          `json:"nist_800_171_id,omitempty"`
}

// Catalog is the loaded, normalized set of requirements for one framework.
type Catalog struct {
	FrameworkID  string
	Requirements []Requirement
}

// rawEntry accepts every alternate spelling the catalog schema permits and
// is normalized into a Requirement after unmarshaling.
type rawEntry struct {
	ID                  string          `json:"id" yaml:"id"`
	Title               string          `json:"title" yaml:"title"`
	Name                string          `json:"name" yaml:"name"`
	Description         string          `json:"description" yaml:"description"`
	Domain              string          `json:"domain" yaml:"domain"`
	Family              string          `json:"family" yaml:"family"`
	ProcessArea         string          `json:"process_area" yaml:"process_area"`
	Category            string          `json:"category" yaml:"category"`
	Priority            Priority        `json:"priority" yaml:"priority"`
	AutomationLevel     AutomationLevel `json:"automation_level" yaml:"automation_level"`
	NISTControls        []string        `json:"nist_controls" yaml:"nist_controls"`
	TechniquesAddressed []string        `json:"techniques_addressed" yaml:"techniques_addressed"`
	CISACommitment      string          `json:"cisa_commitment" yaml:"cisa_commitment"`
	NIST800171ID        string          `json:"nist_800_171_id" yaml:"nist_800_171_id"`
}

func (r rawEntry) normalize() Requirement {
	title := r.Title
	if title == "" {
		title = r.Name
	}
	grouping := r.Domain
	for _, alt := range []string{r.Family, r.ProcessArea, r.Category} {
		if grouping == "" {
			grouping = alt
		}
	}
	return Requirement{
		ID:                  r.ID,
		Title:               title,
		Description:         r.Description,
		Grouping:            grouping,
		Priority:            r.Priority,
		AutomationLevel:     r.AutomationLevel,
		NISTControls:        r.NISTControls,
		TechniquesAddressed: r.TechniquesAddressed,
		CISACommitment:      r.CISACommitment,
		NIST800171ID:        r.NIST800171ID,
	}
}

// possibleTopLevelKeys enumerates the array keys a catalog document may use.
var possibleTopLevelKeys = []string{"requirements", "mitigations", "techniques", "controls", "practices"}

// parseJSONCatalog tries each possibleTopLevelKeys entry against a JSON
// catalog document, returning the first match.
func parseJSONCatalog(data []byte) ([]rawEntry, bool, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, err
	}
	for _, key := range possibleTopLevelKeys {
		raw, ok := doc[key]
		if !ok {
			continue
		}
		var entries []rawEntry
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, false, fmt.Errorf("key %q: %w", key, err)
		}
		return entries, true, nil
	}
	return nil, false, nil
}

// parseYAMLCatalog is parseJSONCatalog's YAML-document counterpart, used
// for catalogs authored as .yaml/.yml rather than .json.
func parseYAMLCatalog(data []byte) ([]rawEntry, bool, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, false, err
	}
	for _, key := range possibleTopLevelKeys {
		node, ok := doc[key]
		if !ok {
			continue
		}
		var entries []rawEntry
		if err := node.Decode(&entries); err != nil {
			return nil, false, fmt.Errorf("key %q: %w", key, err)
		}
		return entries, true, nil
	}
	return nil, false, nil
}

// Loader reads and memoizes catalogs by file path; catalog files are
// read-only and safe to cache for the lifetime of the process.
type Loader struct {
	mu    sync.RWMutex
	cache map[string]*Catalog
}

// NewLoader creates an empty Loader.
func NewLoader() *Loader {
	return &Loader{cache: make(map[string]*Catalog)}
}

// Load reads the catalog at path for frameworkID, memoizing the result.
func (l *Loader) Load(frameworkID, path string) (*Catalog, error) {
	l.mu.RLock()
	if c, ok := l.cache[path]; ok {
		l.mu.RUnlock()
		return c, nil
	}
	l.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	isYAML := strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")

	var rawEntries []rawEntry
	var found bool
	if isYAML {
		rawEntries, found, err = parseYAMLCatalog(data)
	} else {
		rawEntries, found, err = parseJSONCatalog(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	if !found {
		return nil, fmt.Errorf("catalog %s has no recognized top-level key (tried %v)", path, possibleTopLevelKeys)
	}

	requirements := make([]Requirement, 0, len(rawEntries))
	for _, r := range rawEntries {
		requirements = append(requirements, r.normalize())
	}

	c := &Catalog{FrameworkID: frameworkID, Requirements: requirements}
	l.mu.Lock()
	l.cache[path] = c
	l.mu.Unlock()
	return c, nil
}
