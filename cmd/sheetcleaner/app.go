package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/David-Botos/sheet-cleaner/pkg/cleaner"
	"github.com/David-Botos/sheet-cleaner/pkg/config"
	"github.com/David-Botos/sheet-cleaner/pkg/llm"
	"github.com/David-Botos/sheet-cleaner/pkg/model"
	"github.com/David-Botos/sheet-cleaner/pkg/scan"
)

// runFlags are shared by the scan and watch commands
type runFlags struct {
	autoFix   bool
	dryRun    bool
	workers   int
	inputDir  string
	outputDir string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.autoFix, "auto-fix", false, "Write cleaned copies (<name>_cleaned.<ext>) into the output folder")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Report only, even with --auto-fix")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", -1, "Files scanned in parallel (default $WORKER_POOL_SIZE, 0 means one per CPU)")
	cmd.Flags().StringVarP(&f.inputDir, "input", "i", "", "Input folder (default from the policy file)")
	cmd.Flags().StringVarP(&f.outputDir, "output", "o", "", "Output folder (default from the policy file)")
}

// app holds what every scanning command builds from the configuration
type app struct {
	policyFile      *config.PolicyFile
	identifierToken string
	inputDir        string
	outputDir       string
	manager         *scan.Manager
}

func newApp(flags runFlags) (*app, error) {
	pf, policy := config.LoadPolicy(cfg.PolicyPath, logger)

	token := pf.IdentifierToken
	if cfg.IdentifierToken != "" {
		token = cfg.IdentifierToken
	}

	dataCleaner, err := cleaner.NewDataCleaner(policy, token, logger.Named("cleaner"))
	if err != nil {
		return nil, fmt.Errorf("failed to create data cleaner: %w", err)
	}

	suggester, err := newSuggester()
	if err != nil {
		return nil, err
	}

	a := &app{
		policyFile:      pf,
		identifierToken: token,
		inputDir:        pf.InputFolder,
		outputDir:       pf.OutputFolder,
	}
	if flags.inputDir != "" {
		a.inputDir = flags.inputDir
	}
	if flags.outputDir != "" {
		a.outputDir = flags.outputDir
	}

	workers := cfg.WorkerPoolSize
	if flags.workers >= 0 {
		workers = flags.workers
	}

	opts := scan.Options{
		Workers:    workers,
		AutoFix:    flags.autoFix,
		DryRun:     flags.dryRun,
		OutputDir:  a.outputDir,
		MaxRetries: cfg.RetryAttempts,
		RetryDelay: cfg.RetryDelay,
	}

	// A nil *llm.Client must not reach the manager as a non-nil interface
	if suggester != nil {
		a.manager, err = scan.NewManager(dataCleaner, suggester, opts, logger)
	} else {
		a.manager, err = scan.NewManager(dataCleaner, nil, opts, logger)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create scan manager: %w", err)
	}
	return a, nil
}

// newSuggester returns the LLM client, or nil when suggestions are disabled
func newSuggester() (*llm.Client, error) {
	if !cfg.LLM.Enabled {
		return nil, nil
	}

	client, err := llm.NewClient(llm.Config{
		BaseURL:       cfg.LLM.BaseURL,
		APIKey:        cfg.LLM.APIKey,
		Model:         cfg.LLM.Model,
		Temperature:   cfg.LLM.Temperature,
		Timeout:       cfg.LLM.Timeout,
		MaxInputChars: cfg.LLM.MaxInputChars,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

func printSummary(w io.Writer, s model.ScanSummary) {
	fmt.Fprintf(w, "Total cells processed: %d, Flagged: %d, Fixed: %d\n", s.TotalCells, s.Flagged, s.Fixed)
	if s.FailedFiles > 0 {
		fmt.Fprintf(w, "Failed sources: %d of %d\n", s.FailedFiles, s.Files)
	}
}
