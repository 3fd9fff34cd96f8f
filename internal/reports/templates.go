package reports

import (
	"embed"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.md
var builtinTemplates embed.FS

// defaultTemplate is used for any framework without a dedicated embedded
// template.
const defaultTemplate = `{{cui_banner_top}}

# {{project_name}} — {{framework_id}} Compliance Report

**Project:** {{project_id}}
**Classification:** {{classification}}
**Impact Level:** {{impact_level}}
**Assessment Date:** {{assessment_date}}
**Version:** {{version}}
**Assessor:** {{assessor}}

## Executive Summary

{{executive_summary}}

**Overall Score:** {{overall_score}}

## Security Gate Evaluation

**Gate Result:** {{gate_result}}

## Coverage by Domain

{{coverage_table}}

## Detailed Requirements

{{requirements_table}}

## Gap Analysis

{{gap_analysis}}

## Remediation Plan

{{remediation_plan}}

## NIST Cross-Reference

{{nist_cross_reference}}

## Evidence Index

{{evidence_index}}

{{cui_banner_bottom}}
`

// TemplateMeta is the optional front matter a report template may carry:
// a fenced `---` YAML block before the Markdown body, used to override a
// handful of report variables without editing the renderer.
type TemplateMeta struct {
	Assessor string `yaml:"assessor"`
}

// splitFrontMatter separates a leading `---\n...\n---\n` YAML block from
// the rest of template, returning the decoded metadata (zero value if no
// front matter is present) and the remaining Markdown body.
func splitFrontMatter(template string) (TemplateMeta, string) {
	const fence = "---\n"
	var meta TemplateMeta
	if !strings.HasPrefix(template, fence) {
		return meta, template
	}
	rest := template[len(fence):]
	end := strings.Index(rest, "\n"+fence)
	if end < 0 {
		return meta, template
	}
	yamlBlock := rest[:end]
	body := rest[end+len("\n"+fence):]
	if err := yaml.Unmarshal([]byte(yamlBlock), &meta); err != nil {
		return TemplateMeta{}, template
	}
	return meta, body
}

// LoadTemplate resolves the Markdown template for frameworkID: an override
// file under templateDir if present, else an embedded per-framework
// template, else defaultTemplate. Front matter, if present, is parsed and
// stripped from the returned body.
func LoadTemplate(templateDir, frameworkID string) (TemplateMeta, string, error) {
	if templateDir != "" {
		override := filepath.Join(templateDir, frameworkID+"-report.md")
		if data, err := os.ReadFile(override); err == nil {
			meta, body := splitFrontMatter(string(data))
			return meta, body, nil
		}
	}

	if data, err := builtinTemplates.ReadFile("templates/" + frameworkID + "-report.md"); err == nil {
		meta, body := splitFrontMatter(string(data))
		return meta, body, nil
	}

	meta, body := splitFrontMatter(defaultTemplate)
	return meta, body, nil
}
