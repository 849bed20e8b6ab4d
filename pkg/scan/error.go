// pkg/scan/error.go
package scan

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/sheet-cleaner/pkg/llm"
	"github.com/David-Botos/sheet-cleaner/pkg/source"
)

// ErrorCategory defines categories of errors during a scan
type ErrorCategory int

const (
	// Error categories with increasing severity
	ErrorCategoryNone ErrorCategory = iota
	ErrorCategoryWarning
	ErrorCategoryCollaborator
	ErrorCategorySheetLevel
	ErrorCategoryFileLevel
	ErrorCategoryCritical
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryWarning:
		return "Warning"
	case ErrorCategoryCollaborator:
		return "Collaborator"
	case ErrorCategorySheetLevel:
		return "SheetLevel"
	case ErrorCategoryFileLevel:
		return "FileLevel"
	case ErrorCategoryCritical:
		return "Critical"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// ErrorRecord represents a single error during a scan
type ErrorRecord struct {
	Category    ErrorCategory
	Source      string
	Sheet       string
	Row         int
	Column      string
	Error       error
	Message     string // Derived from Error but stored for reporting
	Timestamp   time.Time
	RetryCount  int
	Recoverable bool // The source still produced a usable result
}

// NewErrorRecord creates a new error record with current timestamp
func NewErrorRecord(err error, category ErrorCategory) ErrorRecord {
	record := ErrorRecord{
		Category:    category,
		Error:       err,
		Timestamp:   time.Now(),
		Recoverable: category < ErrorCategorySheetLevel,
	}

	if err != nil {
		record.Message = err.Error()
	}

	return record
}

// WithSource adds source information to the error record
func (r ErrorRecord) WithSource(name string) ErrorRecord {
	r.Source = name
	return r
}

// WithSheet adds sheet information to the error record
func (r ErrorRecord) WithSheet(sheet string) ErrorRecord {
	r.Sheet = sheet
	return r
}

// WithCell adds cell position to the error record
func (r ErrorRecord) WithCell(row int, column string) ErrorRecord {
	r.Row = row
	r.Column = column
	return r
}

// WithRetry sets retry information
func (r ErrorRecord) WithRetry(retryCount int) ErrorRecord {
	r.RetryCount = retryCount
	return r
}

// String returns a formatted error message
func (r ErrorRecord) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] ", r.Category))

	if r.Source != "" {
		sb.WriteString(fmt.Sprintf("Source: %s ", r.Source))
	}

	if r.Sheet != "" {
		sb.WriteString(fmt.Sprintf("Sheet: %s ", r.Sheet))
	}

	if r.Row > 0 {
		sb.WriteString(fmt.Sprintf("Row: %d Column: %s ", r.Row, r.Column))
	}

	sb.WriteString(fmt.Sprintf("Error: %s", r.Message))

	if r.RetryCount > 0 {
		sb.WriteString(fmt.Sprintf(" (Retry: %d)", r.RetryCount))
	}

	return sb.String()
}

// ErrorHandler collects errors from every worker of a scan
type ErrorHandler struct {
	logger       *zap.Logger
	errorCounts  map[ErrorCategory]int
	sampleErrors map[ErrorCategory][]ErrorRecord
	sourceErrors map[string]int
	mu           sync.Mutex
	maxSamples   int
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger,
		errorCounts:  make(map[ErrorCategory]int),
		sampleErrors: make(map[ErrorCategory][]ErrorRecord),
		sourceErrors: make(map[string]int),
		maxSamples:   5, // Store up to 5 sample errors per category
	}
}

// CategorizeError determines the category of an error
func (eh *ErrorHandler) CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryNone
	}

	if errors.Is(err, context.Canceled) {
		return ErrorCategoryCritical
	}

	var statusErr *llm.StatusError
	if errors.As(err, &statusErr) || errors.Is(err, llm.ErrEmptyCompletion) {
		return ErrorCategoryCollaborator
	}

	var sheetErr *source.SheetError
	if errors.As(err, &sheetErr) {
		return ErrorCategorySheetLevel
	}

	if errors.Is(err, source.ErrUnsupportedFile) {
		return ErrorCategoryWarning
	}

	return ErrorCategoryFileLevel
}

// RecordError saves an error occurrence
func (eh *ErrorHandler) RecordError(record ErrorRecord) {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	eh.errorCounts[record.Category]++

	samples := eh.sampleErrors[record.Category]
	if len(samples) < eh.maxSamples {
		eh.sampleErrors[record.Category] = append(samples, record)
	}

	if record.Source != "" {
		eh.sourceErrors[record.Source]++
	}

	if eh.logger != nil {
		logLevel := zap.InfoLevel
		switch record.Category {
		case ErrorCategoryWarning, ErrorCategoryCollaborator:
			logLevel = zap.WarnLevel
		case ErrorCategorySheetLevel, ErrorCategoryFileLevel, ErrorCategoryCritical:
			logLevel = zap.ErrorLevel
		}

		eh.logger.Log(logLevel, "Scan error",
			zap.String("category", record.Category.String()),
			zap.String("source", record.Source),
			zap.String("sheet", record.Sheet),
			zap.String("error", record.Message),
			zap.Bool("recoverable", record.Recoverable),
			zap.Int("retryCount", record.RetryCount))
	}
}

// GetErrorSummary returns error counts by category
func (eh *ErrorHandler) GetErrorSummary() map[ErrorCategory]int {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	summary := make(map[ErrorCategory]int)
	for category, count := range eh.errorCounts {
		summary[category] = count
	}

	return summary
}

// GetErrorSamples returns sample errors for each category
func (eh *ErrorHandler) GetErrorSamples() map[ErrorCategory][]ErrorRecord {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	samples := make(map[ErrorCategory][]ErrorRecord)
	for category, records := range eh.sampleErrors {
		categorySamples := make([]ErrorRecord, len(records))
		copy(categorySamples, records)
		samples[category] = categorySamples
	}

	return samples
}

// GetSourceErrorCounts returns error counts by source name
func (eh *ErrorHandler) GetSourceErrorCounts() map[string]int {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	counts := make(map[string]int)
	for name, count := range eh.sourceErrors {
		counts[name] = count
	}

	return counts
}

// IsRetryableError reports whether reading a source again may succeed
func IsRetryableError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return false
	}

	errorMsg := strings.ToLower(err.Error())
	return strings.Contains(errorMsg, "connection reset") ||
		strings.Contains(errorMsg, "connection refused") ||
		strings.Contains(errorMsg, "temporary") ||
		strings.Contains(errorMsg, "try again")
}
