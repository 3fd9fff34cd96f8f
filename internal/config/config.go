// Package config loads the layered configuration shared by every
// compliance MCP server and CLI driver. Precedence: environment variables
// > config file > built-in defaults.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds all configuration for a compliance-mcp process.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Store   StoreConfig   `toml:"store"`
	Catalog CatalogConfig `toml:"catalog"`
	Reports ReportsConfig `toml:"reports"`
	CUI     CUIConfig     `toml:"cui"`
	Clarify ClarifyConfig `toml:"clarify"`
	Log     LogConfig     `toml:"log"`
	Tracing TracingConfig `toml:"tracing"`
}

// ServerConfig holds MCP server metadata.
type ServerConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// StoreConfig holds persistence settings. The store is a single-writer
// SQLite database shared across all MCP server processes for a given
// deployment.
type StoreConfig struct {
	Path string `toml:"path"` // filesystem path, or ":memory:" for ephemeral/test stores
}

// CatalogConfig locates the on-disk framework catalog documents.
type CatalogConfig struct {
	Dir string `toml:"dir"` // directory containing "<framework_id>.json" catalog files
}

// ReportsConfig locates report template overrides.
type ReportsConfig struct {
	TemplateDir string `toml:"template_dir"` // optional on-disk override; falls back to embedded templates
}

// CUIConfig locates the CUI marking configuration document.
type CUIConfig struct {
	ConfigPath string `toml:"config_path"` // optional YAML/JSON file; falls back to built-in defaults
}

// ClarifyConfig tunes the requirements clarification engine.
type ClarifyConfig struct {
	MaxQuestions int `toml:"max_questions"` // bound on emitted clarification questions (default 5)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// TracingConfig controls the process-wide tracer singleton.
type TracingConfig struct {
	ServiceName string `toml:"service_name"`
}

// Load creates a Config by reading from a TOML config file and environment
// variables. Precedence: environment variables > config file > defaults.
//
// Config file search order (first found wins):
//  1. Path passed via configPath parameter (from --config flag)
//  2. COMPLIANCE_MCP_CONFIG environment variable
//  3. ./compliance-mcp.toml (current directory)
//  4. ~/.config/compliance-mcp/compliance-mcp.toml (XDG-style)
//
// All fields are optional in the config file. Environment variables always
// override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Name:    "compliance-mcp",
			Version: "0.1.0",
		},
		Store: StoreConfig{
			Path: "compliance.db",
		},
		Catalog: CatalogConfig{
			Dir: "catalogs",
		},
		Clarify: ClarifyConfig{
			MaxQuestions: 5,
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if err := cfg.loadFile(configPath); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile finds and parses the TOML config file. If no file is found,
// this is a no-op (config file is optional).
func (c *Config) loadFile(configPath string) error {
	path := resolveConfigPath(configPath)
	if path == "" {
		return nil
	}

	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return nil
}

// resolveConfigPath determines which config file to use. Returns empty
// string if no config file is found (config file is optional).
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv("COMPLIANCE_MCP_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("compliance-mcp.toml"); err == nil {
		return "compliance-mcp.toml"
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := home + "/.config/compliance-mcp/compliance-mcp.toml"
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// applyEnv overlays environment variables on top of existing config
// values. An env var only takes effect if it is non-empty.
func (c *Config) applyEnv() {
	envOverride("COMPLIANCE_MCP_SERVER_NAME", &c.Server.Name)
	envOverride("COMPLIANCE_MCP_SERVER_VERSION", &c.Server.Version)
	envOverride("COMPLIANCE_MCP_STORE_PATH", &c.Store.Path)
	envOverride("COMPLIANCE_MCP_CATALOG_DIR", &c.Catalog.Dir)
	envOverride("COMPLIANCE_MCP_REPORT_TEMPLATE_DIR", &c.Reports.TemplateDir)
	envOverride("COMPLIANCE_MCP_CUI_CONFIG", &c.CUI.ConfigPath)
	envOverride("COMPLIANCE_MCP_LOG_LEVEL", &c.Log.Level)
	envOverride("COMPLIANCE_MCP_TRACING_SERVICE_NAME", &c.Tracing.ServiceName)

	if v := os.Getenv("COMPLIANCE_MCP_CLARIFY_MAX_QUESTIONS"); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil && n > 0 {
			c.Clarify.MaxQuestions = n
		}
	}
}

// Validate checks that required fields are present and well-formed.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store path is required: set store.path in config file, or COMPLIANCE_MCP_STORE_PATH env var")
	}
	if c.Clarify.MaxQuestions <= 0 {
		return fmt.Errorf("clarify.max_questions must be positive, got %d", c.Clarify.MaxQuestions)
	}
	return nil
}

// envOverride sets *dst to the value of the named env var, if it is non-empty.
func envOverride(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
