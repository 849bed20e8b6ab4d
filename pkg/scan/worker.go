// pkg/scan/worker.go
package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/sheet-cleaner/pkg/cleaner"
	"github.com/David-Botos/sheet-cleaner/pkg/llm"
	"github.com/David-Botos/sheet-cleaner/pkg/model"
	"github.com/David-Botos/sheet-cleaner/pkg/source"
)

// SuggestionErrorPrefix marks a suggestion that could not be produced
const SuggestionErrorPrefix = "Error: "

// WorkerState represents the current state of a worker
type WorkerState string

const (
	WorkerStateIdle      WorkerState = "idle"
	WorkerStateWorking   WorkerState = "working"
	WorkerStateCompleted WorkerState = "completed"
)

// Worker scans the sources it receives one at a time
type Worker struct {
	ID           int
	dataCleaner  *cleaner.DataCleaner
	suggester    llm.Suggester
	errorHandler *ErrorHandler
	opts         Options
	logger       *zap.Logger
	state        WorkerState
	currentJob   *Job
	stateLock    sync.RWMutex
}

// NewWorker creates a new worker. suggester may be nil.
func NewWorker(
	id int,
	dataCleaner *cleaner.DataCleaner,
	suggester llm.Suggester,
	errorHandler *ErrorHandler,
	opts Options,
	logger *zap.Logger,
) *Worker {
	return &Worker{
		ID:           id,
		dataCleaner:  dataCleaner,
		suggester:    suggester,
		errorHandler: errorHandler,
		opts:         opts,
		logger:       logger.With(zap.Int("workerID", id)),
		state:        WorkerStateIdle,
	}
}

// GetState returns the current state of the worker
func (w *Worker) GetState() WorkerState {
	w.stateLock.RLock()
	defer w.stateLock.RUnlock()
	return w.state
}

func (w *Worker) setState(state WorkerState) {
	w.stateLock.Lock()
	defer w.stateLock.Unlock()

	prevState := w.state
	w.state = state

	if prevState != state {
		w.logger.Debug("Worker state changed",
			zap.String("from", string(prevState)),
			zap.String("to", string(state)))
	}
}

// GetCurrentJob returns the job currently being processed
func (w *Worker) GetCurrentJob() *Job {
	w.stateLock.RLock()
	defer w.stateLock.RUnlock()
	return w.currentJob
}

func (w *Worker) setCurrentJob(job *Job) {
	w.stateLock.Lock()
	defer w.stateLock.Unlock()
	w.currentJob = job
}

// Start begins the worker processing loop. It returns nil when jobs is closed
// and the context error when ctx is cancelled.
func (w *Worker) Start(ctx context.Context, jobs <-chan Job, results chan<- FileResult) error {
	w.logger.Debug("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("Worker stopping due to context cancellation")
			w.setState(WorkerStateCompleted)
			return ctx.Err()

		case job, ok := <-jobs:
			if !ok {
				w.logger.Debug("Worker stopping due to closed job channel")
				w.setState(WorkerStateCompleted)
				return nil
			}

			result := w.runJob(ctx, job)

			select {
			case results <- result:
			case <-ctx.Done():
				w.logger.Warn("Context cancelled while sending result",
					zap.String("source", job.Name()))
				w.setState(WorkerStateCompleted)
				return ctx.Err()
			}
		}
	}
}

// runJob processes a job, turning a panic into a Critical error on its result
func (w *Worker) runJob(ctx context.Context, job Job) (result FileResult) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Recovered from panic while scanning",
				zap.String("source", job.Name()),
				zap.Any("panic", r))

			failed := NewFileResult(job, w.ID)
			w.record(failed, NewErrorRecord(fmt.Errorf("panic while scanning: %v", r), ErrorCategoryCritical).
				WithSource(job.Name()).
				WithRetry(job.RetryCount))
			failed.Complete()
			result = *failed
		}
	}()

	return w.ProcessJob(ctx, job)
}

// ProcessJob scans a single source
func (w *Worker) ProcessJob(ctx context.Context, job Job) FileResult {
	w.setCurrentJob(&job)
	w.setState(WorkerStateWorking)
	defer func() {
		w.setCurrentJob(nil)
		w.setState(WorkerStateIdle)
	}()

	result := NewFileResult(job, w.ID)
	name := job.Name()

	w.logger.Info("Scanning source", zap.String("source", name))

	sheets, job, err := w.readSheets(ctx, job)
	result.RetryCount = job.RetryCount
	if err != nil {
		w.fail(result, err, job)
		result.Complete()
		return *result
	}

	opts := w.sheetOptions(result, job)
	var fixes []model.CellFix
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			w.fail(result, err, job)
			break
		}

		sheetResult := w.dataCleaner.CleanSheet(name, sheet, opts)
		result.Records = append(result.Records, sheetResult.Records...)
		result.Summary.Add(sheetResult.Summary)
		fixes = append(fixes, sheetResult.Fixes...)

		if sheet.IsEmpty() {
			w.record(result, NewErrorRecord(errors.New("sheet has no data"), ErrorCategoryWarning).
				WithSource(name).
				WithSheet(sheet.Name))
		}
	}

	if ctx.Err() == nil {
		w.suggest(ctx, result)
	}

	if ctx.Err() == nil && opts.WritesFixes() {
		w.writeFixes(ctx, result, job, fixes)
	}

	result.Complete()

	if result.Success {
		w.logger.Info("Source scanned",
			zap.String("source", name),
			zap.Int("cells", result.Summary.TotalCells),
			zap.Int("flagged", result.Summary.Flagged),
			zap.Int("fixed", result.Summary.Fixed),
			zap.Duration("duration", result.Duration))
	} else {
		w.logger.Warn("Source scan failed",
			zap.String("source", name),
			zap.Int("errors", len(result.Errors)),
			zap.Duration("duration", result.Duration))
	}

	return *result
}

// readSheets reads the source, retrying transient failures
func (w *Worker) readSheets(ctx context.Context, job Job) ([]*model.Sheet, Job, error) {
	if job.Source == nil {
		return nil, job, fmt.Errorf("job %s has no source", job.ID)
	}

	for {
		sheets, err := job.Source.Sheets(ctx)
		if err == nil {
			return sheets, job, nil
		}
		if ctx.Err() != nil || !IsRetryableError(err) || !job.IsRetryable() {
			return nil, job, err
		}

		job = job.Retry()
		w.logger.Warn("Retrying source read",
			zap.String("source", job.Name()),
			zap.Int("retryCount", job.RetryCount),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, job, ctx.Err()
		case <-time.After(w.opts.RetryDelay):
		}
	}
}

// sheetOptions disables write-back for sources that cannot be written
func (w *Worker) sheetOptions(result *FileResult, job Job) cleaner.SheetOptions {
	opts := w.opts.SheetOptions()
	if !opts.WritesFixes() {
		return opts
	}
	if _, ok := job.Source.(source.Fixer); !ok {
		w.record(result, NewErrorRecord(errors.New("source is read-only, fixes are reported but not written"), ErrorCategoryWarning).
			WithSource(job.Name()))
		opts.AutoFix = false
	}
	return opts
}

// suggest asks the suggester for every flagged record. Failures are kept on
// the record and never stop the scan.
func (w *Worker) suggest(ctx context.Context, result *FileResult) {
	if w.suggester == nil {
		return
	}

	for i := range result.Records {
		if ctx.Err() != nil {
			return
		}

		rec := &result.Records[i]
		suggestion, err := w.suggester.Suggest(ctx, rec.OriginalValue)
		if err != nil {
			rec.Suggestion = SuggestionErrorPrefix + err.Error()
			w.record(result, NewErrorRecord(err, ErrorCategoryCollaborator).
				WithSource(rec.FileName).
				WithSheet(rec.SheetName).
				WithCell(rec.Row, rec.Column))
			continue
		}
		rec.Suggestion = suggestion
	}
}

// writeFixes writes the cleaned copy. On failure no record counts as fixed.
func (w *Worker) writeFixes(ctx context.Context, result *FileResult, job Job, fixes []model.CellFix) {
	fixer, ok := job.Source.(source.Fixer)
	if !ok {
		return
	}

	path, err := fixer.WriteCleaned(ctx, w.opts.OutputDir, fixes)
	if err != nil {
		w.fail(result, fmt.Errorf("failed to write cleaned copy: %w", err), job)
		for i := range result.Records {
			result.Records[i].Fixed = false
		}
		result.Summary.Fixed = 0
		return
	}

	result.OutputPath = path
	w.logger.Info("Wrote cleaned copy",
		zap.String("source", job.Name()),
		zap.String("path", path),
		zap.Int("fixes", len(fixes)))
}

func (w *Worker) fail(result *FileResult, err error, job Job) {
	w.record(result, NewErrorRecord(err, w.errorHandler.CategorizeError(err)).
		WithSource(job.Name()).
		WithRetry(job.RetryCount))
}

func (w *Worker) record(result *FileResult, record ErrorRecord) {
	w.errorHandler.RecordError(record)
	result.AddError(record)
}
