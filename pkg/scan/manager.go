// pkg/scan/manager.go
package scan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/David-Botos/sheet-cleaner/pkg/cleaner"
	"github.com/David-Botos/sheet-cleaner/pkg/llm"
	"github.com/David-Botos/sheet-cleaner/pkg/source"
)

// Options controls a scan run
type Options struct {
	Workers    int           // Pool size, 0 means one per CPU
	AutoFix    bool          // Write cleaned copies of file sources
	DryRun     bool          // Report only, even when AutoFix is set
	OutputDir  string        // Directory for cleaned copies
	MaxRetries int           // Retries for transient read failures
	RetryDelay time.Duration // Pause between retries
}

// SheetOptions returns the per-sheet cleaning options
func (o Options) SheetOptions() cleaner.SheetOptions {
	return cleaner.SheetOptions{AutoFix: o.AutoFix, DryRun: o.DryRun}
}

// Manager runs a pool of workers over a set of sources
type Manager struct {
	dataCleaner *cleaner.DataCleaner
	suggester   llm.Suggester
	opts        Options
	logger      *zap.Logger
}

// NewManager creates a new scan manager. suggester may be nil.
func NewManager(dataCleaner *cleaner.DataCleaner, suggester llm.Suggester, opts Options, logger *zap.Logger) (*Manager, error) {
	if dataCleaner == nil {
		return nil, errors.New("data cleaner cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if opts.Workers < 0 {
		return nil, fmt.Errorf("invalid worker count: %d", opts.Workers)
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	return &Manager{
		dataCleaner: dataCleaner,
		suggester:   suggester,
		opts:        opts,
		logger:      logger.Named("scan"),
	}, nil
}

// workerCount returns the pool size for a number of jobs
func (m *Manager) workerCount(jobs int) int {
	count := m.opts.Workers
	if count == 0 {
		count = runtime.NumCPU()
	}
	if count > jobs {
		count = jobs
	}
	if count < 1 {
		count = 1
	}
	return count
}

// Run scans every source and merges the results. Records in the result are
// ordered by file name, then by row and column within a file. When ctx is
// cancelled the partial result is returned with the context error.
func (m *Manager) Run(ctx context.Context, sources []source.Source) (*Result, error) {
	runID := uuid.New().String()
	logger := m.logger.With(zap.String("runID", runID))
	metrics := NewMetrics(logger)
	errorHandler := NewErrorHandler(logger)

	result := &Result{
		RunID:     runID,
		Metrics:   metrics,
		StartTime: metrics.StartTime,
	}

	if len(sources) == 0 {
		logger.Warn("No sources to scan")
		metrics.Complete()
		result.EndTime = metrics.EndTime
		return result, nil
	}

	workerCount := m.workerCount(len(sources))
	logger.Info("Starting scan",
		zap.Int("sources", len(sources)),
		zap.Int("workers", workerCount),
		zap.Bool("autoFix", m.opts.AutoFix),
		zap.Bool("dryRun", m.opts.DryRun))

	jobs := make(chan Job, len(sources))
	results := make(chan FileResult, len(sources))

	for _, src := range sources {
		jobs <- NewJob(src).WithMaxRetries(m.opts.MaxRetries)
	}
	close(jobs)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workerCount; i++ {
		worker := NewWorker(i, m.dataCleaner, m.suggester, errorHandler, m.opts, logger)
		g.Go(func() error {
			return worker.Start(gctx, jobs, results)
		})
	}

	// Workers never block on results, the channel holds one slot per source
	runErr := g.Wait()
	close(results)

	for fr := range results {
		metrics.RecordFile(fr)
		result.Files = append(result.Files, fr)
	}
	metrics.Complete()

	sort.SliceStable(result.Files, func(i, j int) bool {
		return result.Files[i].Name < result.Files[j].Name
	})
	for _, fr := range result.Files {
		result.Records = append(result.Records, fr.Records...)
		result.Errors = append(result.Errors, fr.Errors...)
		result.Summary.Add(fr.Summary)
	}
	result.EndTime = metrics.EndTime

	if runErr == nil {
		runErr = ctx.Err()
	}
	if runErr != nil {
		logger.Warn("Scan cancelled",
			zap.Int("completed", len(result.Files)),
			zap.Int("sources", len(sources)))
		return result, fmt.Errorf("scan cancelled: %w", runErr)
	}

	for category, count := range errorHandler.GetErrorSummary() {
		logger.Debug("Error summary",
			zap.String("category", category.String()),
			zap.Int("count", count))
	}

	return result, nil
}

// ScanFolder scans every supported file directly inside dir in name order
func (m *Manager) ScanFolder(ctx context.Context, dir string) (*Result, error) {
	paths, err := ListSupportedFiles(dir)
	if err != nil {
		return nil, err
	}

	sources := make([]source.Source, 0, len(paths))
	for _, path := range paths {
		src, err := source.Open(path)
		if err != nil {
			m.logger.Warn("Skipping file", zap.String("path", path), zap.Error(err))
			continue
		}
		sources = append(sources, src)
	}

	return m.Run(ctx, sources)
}

// ListSupportedFiles returns the supported files directly inside dir, sorted by name
func ListSupportedFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input folder: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !source.IsSupported(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}
