// Package cui applies Controlled Unclassified Information markings to
// generated Markdown artifacts: a banner prefix and suffix loaded from a
// YAML config, with built-in defaults when no config is present.
package cui

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the banner and document-level boilerplate used to mark a
// Markdown report. Designation is optional.
type Config struct {
	BannerTop         string `yaml:"banner_top"`
	BannerBottom      string `yaml:"banner_bottom"`
	DocumentHeader    string `yaml:"document_header"`
	DocumentFooter    string `yaml:"document_footer"`
	DesignationIndicator string `yaml:"designation_indicator"`
}

// defaultConfig matches "CUI // SP-CTI" with DoD distribution statement D
// boilerplate, used when no CUI config file is configured or present.
func defaultConfig() Config {
	return Config{
		BannerTop:    "CUI // SP-CTI",
		BannerBottom: "CUI // SP-CTI",
		DocumentHeader: "CUI // SP-CTI\n\n" +
			"Distribution Statement D: Distribution authorized to the Department " +
			"of Defense and U.S. DoD contractors only; administrative/operational " +
			"use. Other requests for this document shall be referred to the " +
			"controlling DoD office.",
		DocumentFooter: "CUI // SP-CTI",
	}
}

// Load reads a CUI config from path. An empty path, or a file that does
// not exist, yields the built-in default config rather than an error —
// callers should always have a usable Config.
func Load(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marker applies and detects CUI markings using a fixed Config.
type Marker struct {
	cfg Config
}

// NewMarker creates a Marker from cfg.
func NewMarker(cfg Config) *Marker {
	return &Marker{cfg: cfg}
}

// Mark prefixes markdown with the document header and suffixes it with the
// document footer, unless the banner_top substring is already present —
// intentionally coarse and cheap per the idempotence rule, so calling Mark
// on already-marked content is a no-op.
func (m *Marker) Mark(markdown string) string {
	if m.cfg.BannerTop != "" && strings.Contains(markdown, m.cfg.BannerTop) {
		return markdown
	}
	var b strings.Builder
	b.WriteString(m.cfg.DocumentHeader)
	b.WriteString("\n\n")
	b.WriteString(markdown)
	b.WriteString("\n\n")
	b.WriteString(m.cfg.DocumentFooter)
	return b.String()
}
