package assess

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/emergent-company/compliance-mcp/internal/status"
)

// ScanRule maps a keyword or phrase found anywhere in a scanned file to
// the requirement id it satisfies. Rules are total over malformed or
// binary content: a failed read just skips the file.
type ScanRule struct {
	Keyword       string
	RequirementID string
	Satisfied     status.Status
}

// fileExtensionWhitelist bounds the automated checks to source/config
// files likely to carry the keywords they look for.
var fileExtensionWhitelist = map[string]bool{
	".yaml": true, ".yml": true, ".json": true, ".toml": true,
	".go": true, ".py": true, ".ts": true, ".js": true,
	".md": true, ".txt": true, ".conf": true, ".tf": true,
}

// ScanProjectForKeywords walks projectDir, reading whitelisted files and
// recording, for each rule whose keyword appears in at least one file,
// that rule's requirement id as satisfied. A requirement id is left
// absent from the result (defaulting to not_assessed upstream) if no
// file matched. Symlinks are not followed; unreadable files are skipped.
func ScanProjectForKeywords(projectDir string, rules []ScanRule) (map[string]status.Status, error) {
	results := map[string]status.Status{}

	err := filepath.WalkDir(projectDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries, continue the walk
		}
		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if !fileExtensionWhitelist[ext] {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil // unreadable file, skip
		}
		text := string(data)

		for _, rule := range rules {
			if _, already := results[rule.RequirementID]; already {
				continue
			}
			if strings.Contains(text, rule.Keyword) {
				results[rule.RequirementID] = rule.Satisfied
			}
		}
		return nil
	})
	if err != nil {
		return results, err
	}
	return results, nil
}
