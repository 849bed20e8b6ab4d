// pkg/watch/watcher.go
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/David-Botos/sheet-cleaner/pkg/report"
	"github.com/David-Botos/sheet-cleaner/pkg/scan"
	"github.com/David-Botos/sheet-cleaner/pkg/source"
)

const (
	// DefaultDebounce is how long a file must be quiet before it is scanned
	DefaultDebounce = 500 * time.Millisecond

	reportSuffix = "_report.xlsx"
)

// Options configures a Watcher
type Options struct {
	Debounce        time.Duration
	ReportDir       string // Per-file reports are written here
	IdentifierToken string // Header of the identifier column in reports
}

// ProcessedFile is passed to the OnProcessed callback after each scan
type ProcessedFile struct {
	Path       string
	ReportPath string // Empty when the report could not be written
	Result     *scan.Result
	Err        error
}

// Stats counts watcher activity
type Stats struct {
	FilesDetected  int
	FilesProcessed int
	Errors         int
	LastEventTime  time.Time
	LastEventPath  string
}

// Watcher scans files as they appear in a folder and writes one report per file
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	manager     *scan.Manager
	dir         string
	opts        Options
	logger      *zap.Logger
	debounceMap map[string]time.Time
	onProcessed func(ProcessedFile)
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	stats       Stats
}

// NewWatcher creates a watcher for dir. Start must be called to begin watching.
func NewWatcher(dir string, manager *scan.Manager, opts Options, logger *zap.Logger) (*Watcher, error) {
	if manager == nil {
		return nil, errors.New("scan manager cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.ReportDir == "" {
		opts.ReportDir = dir
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		watcher:     fw,
		manager:     manager,
		dir:         dir,
		opts:        opts,
		logger:      logger.Named("watch"),
		debounceMap: make(map[string]time.Time),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// OnProcessed registers a callback invoked after every scanned file
func (w *Watcher) OnProcessed(fn func(ProcessedFile)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onProcessed = fn
}

// Start begins watching. It returns once the folder is registered.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.watcher.Close()
		close(w.doneCh)
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.logger.Info("Watching folder",
		zap.String("dir", w.dir),
		zap.String("reportDir", w.opts.ReportDir),
		zap.Duration("debounce", w.opts.Debounce))

	go w.run(ctx)
	return nil
}

// Stop ends watching and waits for an in-flight scan to finish
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.logger.Info("Watcher stopped")
}

// Done is closed when the watcher has stopped
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

// Stats returns a snapshot of the watcher counters
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	defer w.watcher.Close()

	interval := w.opts.Debounce / 5
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	debounceTicker := time.NewTicker(interval)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Context cancelled")
			return

		case <-w.stopCh:
			w.logger.Debug("Stop signal received")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-debounceTicker.C:
			w.processDebounced(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if !source.IsSupported(event.Name) || IsReportFile(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, pending := w.debounceMap[event.Name]; !pending {
		w.stats.FilesDetected++
		w.logger.Info("Detected file", zap.String("path", event.Name))
	}
	w.debounceMap[event.Name] = time.Now()
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventPath = event.Name
}

func (w *Watcher) processDebounced(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for path, eventTime := range w.debounceMap {
		if now.Sub(eventTime) >= w.opts.Debounce {
			ready = append(ready, path)
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		if ctx.Err() != nil {
			return
		}
		processed := w.ProcessFile(ctx, path)

		w.mu.Lock()
		if processed.Err != nil {
			w.stats.Errors++
		} else {
			w.stats.FilesProcessed++
		}
		callback := w.onProcessed
		w.mu.Unlock()

		if callback != nil {
			callback(processed)
		}
	}
}

// ProcessFile scans one file and writes <name>_report.xlsx into the report folder
func (w *Watcher) ProcessFile(ctx context.Context, path string) ProcessedFile {
	processed := ProcessedFile{Path: path}

	if _, err := os.Stat(path); err != nil {
		processed.Err = fmt.Errorf("file disappeared before scanning: %w", err)
		w.logger.Warn("Skipping file", zap.String("path", path), zap.Error(err))
		return processed
	}

	src, err := source.Open(path)
	if err != nil {
		processed.Err = err
		return processed
	}

	result, err := w.manager.Run(ctx, []source.Source{src})
	processed.Result = result
	if err != nil {
		processed.Err = err
		return processed
	}

	reportPath := filepath.Join(w.opts.ReportDir, ReportFileName(path))
	if err := report.WriteXLSX(reportPath, result, w.opts.IdentifierToken); err != nil {
		processed.Err = err
		w.logger.Error("Failed to write report", zap.String("path", reportPath), zap.Error(err))
		return processed
	}
	processed.ReportPath = reportPath

	w.logger.Info("Report saved",
		zap.String("source", path),
		zap.String("report", reportPath),
		zap.Int("totalCells", result.Summary.TotalCells),
		zap.Int("flagged", result.Summary.Flagged),
		zap.Int("fixed", result.Summary.Fixed))

	return processed
}

// ReportFileName returns "<name>_report.xlsx" for a source path
func ReportFileName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + reportSuffix
}

// IsReportFile reports whether the name was produced by ReportFileName
func IsReportFile(path string) bool {
	return strings.HasSuffix(strings.ToLower(filepath.Base(path)), reportSuffix)
}
