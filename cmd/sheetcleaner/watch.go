package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/David-Botos/sheet-cleaner/pkg/watch"
)

var (
	watchOpts     runFlags
	watchDebounce = watch.DefaultDebounce
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Scan files as they are added to the input folder",
	Long: `Watch monitors the input folder and scans each CSV or Excel file once it
stops changing, writing <name>_report.xlsx into the output folder. It runs until
interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchOpts.register(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before a changed file is scanned")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	a, err := newApp(watchOpts)
	if err != nil {
		return err
	}

	w, err := watch.NewWatcher(a.inputDir, a.manager, watch.Options{
		Debounce:        watchDebounce,
		ReportDir:       a.outputDir,
		IdentifierToken: a.identifierToken,
	}, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w.OnProcessed(func(p watch.ProcessedFile) {
		if p.Err != nil {
			fmt.Fprintf(out, "%s: %v\n", p.Path, p.Err)
			return
		}
		fmt.Fprintf(out, "%s -> %s\n", p.Path, p.ReportPath)
		printSummary(out, p.Result.Summary)
	})

	if err := w.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case <-w.Done():
	}
	w.Stop()

	stats := w.Stats()
	logger.Info("Watch finished",
		zap.Int("detected", stats.FilesDetected),
		zap.Int("processed", stats.FilesProcessed),
		zap.Int("errors", stats.Errors))
	return nil
}
