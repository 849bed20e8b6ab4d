// pkg/scan/job.go
package scan

import (
	"time"

	"github.com/google/uuid"

	"github.com/David-Botos/sheet-cleaner/pkg/model"
	"github.com/David-Botos/sheet-cleaner/pkg/source"
)

// DefaultMaxRetries is the number of times a transient read failure is retried
const DefaultMaxRetries = 3

// Job represents one source to scan
type Job struct {
	ID         string        // Unique job identifier
	Source     source.Source // File or table to scan
	CreatedAt  time.Time     // Job creation timestamp
	RetryCount int           // Number of retries attempted
	MaxRetries int           // Maximum allowed retries
}

// NewJob creates a new job with defaults
func NewJob(src source.Source) Job {
	return Job{
		ID:         uuid.New().String(),
		Source:     src,
		CreatedAt:  time.Now(),
		MaxRetries: DefaultMaxRetries,
	}
}

// WithMaxRetries sets the maximum retry count and returns the modified job
func (j Job) WithMaxRetries(maxRetries int) Job {
	j.MaxRetries = maxRetries
	return j
}

// IsRetryable checks if the job can be retried
func (j Job) IsRetryable() bool {
	return j.RetryCount < j.MaxRetries
}

// Retry increments the retry count and returns the modified job
func (j Job) Retry() Job {
	j.RetryCount++
	return j
}

// Name returns the source name
func (j Job) Name() string {
	if j.Source == nil {
		return ""
	}
	return j.Source.Name()
}

// FileResult represents the result of scanning one source
type FileResult struct {
	JobID      string
	Name       string
	Success    bool
	Records    []model.CellRecord
	Summary    model.ScanSummary
	Errors     []ErrorRecord
	OutputPath string // Cleaned copy, empty when nothing was written
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	RetryCount int
	WorkerID   int
}

// NewFileResult initializes a result for a job
func NewFileResult(job Job, workerID int) *FileResult {
	return &FileResult{
		JobID:      job.ID,
		Name:       job.Name(),
		StartTime:  time.Now(),
		RetryCount: job.RetryCount,
		WorkerID:   workerID,
		Errors:     make([]ErrorRecord, 0),
	}
}

// Complete marks the scan as complete and calculates duration
func (r *FileResult) Complete() {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Summary.Files = 1
	r.Success = true
	for _, e := range r.Errors {
		if !e.Recoverable {
			r.Success = false
			break
		}
	}
	if !r.Success {
		r.Summary.FailedFiles = 1
	}
}

// AddError adds an error to the result
func (r *FileResult) AddError(err ErrorRecord) {
	r.Errors = append(r.Errors, err)
}

// Result is the outcome of a whole scan run
type Result struct {
	RunID     string
	Records   []model.CellRecord // Ordered by file name, then row and column within a file
	Summary   model.ScanSummary
	Files     []FileResult // Ordered by file name
	Errors    []ErrorRecord
	Metrics   *Metrics
	StartTime time.Time
	EndTime   time.Time
}

// HasSuggestions reports whether any record carries a suggestion
func (r *Result) HasSuggestions() bool {
	for _, rec := range r.Records {
		if rec.Suggestion != "" {
			return true
		}
	}
	return false
}

// Duration returns the wall time of the run
func (r *Result) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}
