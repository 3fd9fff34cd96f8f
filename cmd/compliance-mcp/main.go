// Command compliance-mcp runs the compliance MCP server.
//
// It communicates over stdio using JSON-RPC 2.0 (MCP protocol) and
// persists all assessment, audit, and intake state to a local SQLite
// database.
//
// Optional environment variables:
//
//	COMPLIANCE_MCP_CONFIG               - path to a TOML config file
//	COMPLIANCE_MCP_STORE_PATH           - SQLite database path
//	COMPLIANCE_MCP_CATALOG_DIR          - framework catalog directory
//	COMPLIANCE_MCP_REPORT_TEMPLATE_DIR  - report template override directory
//	COMPLIANCE_MCP_CUI_CONFIG           - CUI marking config path
//	COMPLIANCE_MCP_LOG_LEVEL            - debug, info, warn, error (default: info)
//	COMPLIANCE_MCP_TRACING_SERVICE_NAME - OpenTelemetry instrumentation scope name
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/emergent-company/compliance-mcp/internal/assess"
	"github.com/emergent-company/compliance-mcp/internal/audit"
	"github.com/emergent-company/compliance-mcp/internal/catalog"
	"github.com/emergent-company/compliance-mcp/internal/config"
	"github.com/emergent-company/compliance-mcp/internal/cui"
	"github.com/emergent-company/compliance-mcp/internal/mcp"
	"github.com/emergent-company/compliance-mcp/internal/reports"
	"github.com/emergent-company/compliance-mcp/internal/store"
	"github.com/emergent-company/compliance-mcp/internal/telemetry"
	"github.com/emergent-company/compliance-mcp/internal/tools"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "compliance-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("COMPLIANCE_MCP_CONFIG"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	version := cfg.Server.Version
	if Version != "dev" {
		version = Version
	}

	telemetry.Init(telemetry.Config{ServiceName: cfg.Tracing.ServiceName})

	logger.Info("starting compliance-mcp",
		"version", version,
		"store_path", cfg.Store.Path,
		"catalog_dir", cfg.Catalog.Dir,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	auditWriter := audit.NewWriter(db, logger)

	cuiCfg, err := cui.Load(cfg.CUI.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading CUI config: %w", err)
	}
	marker := cui.NewMarker(cuiCfg)

	catalogLoader := catalog.NewLoader()

	runner := &assess.Runner{
		Store:      db,
		Catalog:    catalogLoader,
		Audit:      auditWriter,
		CatalogDir: cfg.Catalog.Dir,
	}

	generator := &reports.Generator{
		Store:       db,
		Catalog:     catalogLoader,
		Marker:      marker,
		Audit:       auditWriter,
		CatalogDir:  cfg.Catalog.Dir,
		TemplateDir: cfg.Reports.TemplateDir,
	}

	registry := mcp.NewRegistry()
	registry.Register(&tools.ProjectCreateTool{Store: db})
	registry.Register(&tools.ProjectListTool{Store: db})
	registry.Register(&tools.ProjectGetTool{Store: db})
	registry.Register(&tools.AssessRunTool{Runner: runner})
	registry.Register(&tools.ReportGenerateTool{Generator: generator})
	registry.Register(&tools.ClarifyAnalyzeTool{Store: db})
	registry.Register(&tools.RTMBuildTool{Marker: marker})
	registry.Register(&tools.SBOMGenerateTool{Store: db, Audit: auditWriter})

	server := mcp.NewServer(registry, mcp.ServerInfo{
		Name:    cfg.Server.Name,
		Version: version,
	}, logger)

	return server.Run(ctx, os.Stdin, os.Stdout)
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
