package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/David-Botos/sheet-cleaner/pkg/connector"
	"github.com/David-Botos/sheet-cleaner/pkg/converter"
	"github.com/David-Botos/sheet-cleaner/pkg/report"
	"github.com/David-Botos/sheet-cleaner/pkg/scan"
	"github.com/David-Botos/sheet-cleaner/pkg/source"
)

const (
	sourceFiles = "files"
	sourceDB    = "db"

	defaultReportName = "output_report.xlsx"
)

var (
	scanOpts    runFlags
	scanSource  string
	reportPath  string
	showMetrics bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan every supported file in the input folder and write a report",
	Long: `Scan reads every CSV and Excel file in the input folder (or the tables
listed in SOURCE_TABLES with --source db), flags cells containing special or
non-Latin characters and writes an Excel report.

With --auto-fix a cleaned copy of each file is written to the output folder.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	scanOpts.register(scanCmd)
	scanCmd.Flags().StringVar(&scanSource, "source", sourceFiles, "Where to read cells from: files or db")
	scanCmd.Flags().StringVarP(&reportPath, "report", "r", "", "Report path (default <output>/"+defaultReportName+")")
	scanCmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print the scan metrics report")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	a, err := newApp(scanOpts)
	if err != nil {
		return err
	}

	var result *scan.Result
	switch scanSource {
	case sourceFiles:
		logger.Info("Scanning folder", zap.String("input", a.inputDir), zap.String("output", a.outputDir))
		result, err = a.manager.ScanFolder(ctx, a.inputDir)
	case sourceDB:
		result, err = scanTables(ctx, a)
	default:
		return fmt.Errorf("unknown source %q, expected %s or %s", scanSource, sourceFiles, sourceDB)
	}
	if result == nil {
		return err
	}
	if err != nil {
		logger.Warn("Scan did not finish, writing partial report", zap.Error(err))
	}

	path := reportPath
	if path == "" {
		path = filepath.Join(a.outputDir, defaultReportName)
	}
	if werr := report.WriteXLSX(path, result, a.identifierToken); werr != nil {
		return fmt.Errorf("failed to write report: %w", werr)
	}
	logger.Info("Report saved", zap.String("path", path), zap.Int("records", len(result.Records)))

	if cfg.AuditEnabled {
		writeAudit(ctx, result)
	}

	printSummary(cmd.OutOrStdout(), result.Summary)
	if showMetrics && result.Metrics != nil {
		fmt.Fprintln(cmd.OutOrStdout(), result.Metrics.GenerateReport())
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// scanTables reads the configured database tables as sources
func scanTables(ctx context.Context, a *app) (*scan.Result, error) {
	if len(cfg.Source.Tables) == 0 {
		return nil, errors.New("SOURCE_TABLES is empty")
	}

	factory := connector.NewConnectorFactory(cfg, logger.Named("connector"))
	conn, err := factory.CreateSourceConnector(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	sources, err := source.NewTableSources(conn, cfg.Source.Tables, cfg.Source.RowLimit, converter.NewValueConverter(logger))
	if err != nil {
		return nil, err
	}

	logger.Info("Scanning tables",
		zap.String("driver", conn.Driver()),
		zap.Strings("tables", cfg.Source.Tables))
	return a.manager.Run(ctx, sources)
}

// writeAudit stores flagged cells in Postgres. Failures are logged only.
func writeAudit(ctx context.Context, result *scan.Result) {
	if cfg.Postgres == nil {
		logger.Warn("Audit enabled but PostgreSQL is not configured")
		return
	}

	factory := connector.NewConnectorFactory(cfg, logger.Named("connector"))
	conn, err := factory.CreatePostgresConnector(ctx)
	if err != nil {
		logger.Error("Failed to connect for audit", zap.Error(err))
		return
	}
	defer conn.Close()

	sink, err := report.NewAuditSink(conn.DB(), conn.DefaultSchema(), logger)
	if err != nil {
		logger.Error("Failed to create audit sink", zap.Error(err))
		return
	}

	n, err := sink.Write(ctx, result)
	if err != nil {
		logger.Error("Failed to write audit rows", zap.String("table", sink.Table()), zap.Error(err))
		return
	}
	logger.Info("Audit rows written", zap.String("table", sink.Table()), zap.Int("rows", n))
}
