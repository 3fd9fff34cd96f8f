// Command compliance-report runs a framework assessor against a project
// and generates its Markdown report in one shot, without standing up an
// MCP server.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emergent-company/compliance-mcp/internal/assess"
	"github.com/emergent-company/compliance-mcp/internal/audit"
	"github.com/emergent-company/compliance-mcp/internal/catalog"
	"github.com/emergent-company/compliance-mcp/internal/config"
	"github.com/emergent-company/compliance-mcp/internal/cui"
	"github.com/emergent-company/compliance-mcp/internal/reports"
	"github.com/emergent-company/compliance-mcp/internal/store"
)

// Version is set via ldflags at build time.
var Version = "dev"

var frameworkEngineByID = map[string]func() assess.Engine{
	"nist_800_53": assess.NewNIST80053Engine,
	"stig":        assess.NewSTIGEngine,
	"fips":        assess.NewFIPSEngine,
	"cmmc":        assess.NewCMMCEngine,
	"fedramp":     assess.NewFedRAMPEngine,
	"atlas":       assess.NewATLASEngine,
	"sbd":         assess.NewSBDEngine,
	"ivv":         assess.NewIVVEngine,
	"cssp":        assess.NewCSSPEngine,
	"zta":         assess.NewZTAEngine,
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

// gateFailure is returned when the report generated successfully but the
// framework's gate did not pass; --gate turns this into a non-zero exit.
type gateFailure struct{ detail string }

func (e *gateFailure) Error() string { return e.detail }

func exitCodeFor(err error) int {
	if _, ok := err.(*gateFailure); ok {
		return 2
	}
	return 1
}

func newRootCommand() *cobra.Command {
	var (
		configPath      string
		projectID       string
		frameworkID     string
		projectDir      string
		gate            bool
		promoteReviewed bool
	)

	cmd := &cobra.Command{
		Use:           "compliance-report",
		Short:         "Run a framework assessment and generate its compliance report",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), configPath, projectID, frameworkID, projectDir, gate, promoteReviewed, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")
	cmd.Flags().StringVar(&projectID, "project", "", "project id to assess (required)")
	cmd.Flags().StringVar(&frameworkID, "framework", "", "framework id to run, e.g. cmmc, fedramp, stig (required)")
	cmd.Flags().StringVar(&projectDir, "project-dir", "", "override the project's on-disk directory for automated checks")
	cmd.Flags().BoolVar(&gate, "gate", false, "exit with status 2 if the framework's gate does not pass")
	cmd.Flags().BoolVar(&promoteReviewed, "promote-reviewed", false, "promote not_assessed requirements to not_satisfied instead of leaving them pending review")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("framework")

	return cmd
}

func runReport(ctx context.Context, configPath, projectID, frameworkID, projectDirOverride string, gate, promoteReviewed bool, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer db.Close()

	newEngine, ok := frameworkEngineByID[frameworkID]
	if !ok {
		known := make([]string, 0, len(frameworkEngineByID))
		for id := range frameworkEngineByID {
			known = append(known, id)
		}
		return fmt.Errorf("unknown framework %q (known: %s)", frameworkID, strings.Join(known, ", "))
	}
	engine := newEngine()

	project, err := db.GetProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("loading project: %w", err)
	}
	projectDir := projectDirOverride
	if projectDir == "" {
		projectDir = project.Directory
	}

	auditWriter := audit.NewWriter(db, logger)
	catalogLoader := catalog.NewLoader()

	runner := &assess.Runner{
		Store:      db,
		Catalog:    catalogLoader,
		Audit:      auditWriter,
		CatalogDir: cfg.Catalog.Dir,
	}

	summary, err := runner.Run(ctx, engine, projectID, projectDir, promoteReviewed)
	if err != nil {
		return fmt.Errorf("running assessment: %w", err)
	}
	logger.Info("assessment complete",
		"framework", frameworkID,
		"overall_score", summary.OverallScore,
		"gate_passed", summary.GatePassed,
	)

	cuiCfg, err := cui.Load(cfg.CUI.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading CUI config: %w", err)
	}

	generator := &reports.Generator{
		Store:       db,
		Catalog:     catalogLoader,
		Marker:      cui.NewMarker(cuiCfg),
		Audit:       auditWriter,
		CatalogDir:  cfg.Catalog.Dir,
		TemplateDir: cfg.Reports.TemplateDir,
	}

	result, err := generator.Generate(ctx, projectID, frameworkID, engine.CatalogFilename)
	if err != nil {
		return fmt.Errorf("generating report: %w", err)
	}

	fmt.Fprintf(out, "report written to %s (version %s, score %.1f, gate %v)\n",
		result.OutputFile, result.Version, result.OverallScore, summary.GatePassed)

	if gate && !summary.GatePassed {
		return &gateFailure{detail: fmt.Sprintf("gate failed for framework %s: %s", frameworkID, summary.GateDetail)}
	}
	return nil
}
