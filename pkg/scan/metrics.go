// pkg/scan/metrics.go
package scan

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Metrics tracks counters for a scan run
type Metrics struct {
	mu                sync.Mutex
	logger            *zap.Logger
	StartTime         time.Time
	EndTime           time.Time
	FilesSucceeded    int
	FilesFailed       int
	TotalCells        int
	Flagged           int
	Fixed             int
	ErrorCounts       map[ErrorCategory]int
	WorkerUtilization map[int]time.Duration
}

// NewMetrics creates a new Metrics instance
func NewMetrics(logger *zap.Logger) *Metrics {
	return &Metrics{
		logger:            logger,
		StartTime:         time.Now(),
		ErrorCounts:       make(map[ErrorCategory]int),
		WorkerUtilization: make(map[int]time.Duration),
	}
}

// RecordFile adds the counters of one scanned source
func (m *Metrics) RecordFile(result FileResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if result.Success {
		m.FilesSucceeded++
	} else {
		m.FilesFailed++
	}

	m.TotalCells += result.Summary.TotalCells
	m.Flagged += result.Summary.Flagged
	m.Fixed += result.Summary.Fixed
	m.WorkerUtilization[result.WorkerID] += result.Duration

	for _, e := range result.Errors {
		m.ErrorCounts[e.Category]++
	}
}

// Complete marks the run as finished and logs the totals
func (m *Metrics) Complete() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EndTime = time.Now()

	if m.logger != nil {
		m.logger.Info("Scan completed",
			zap.Duration("totalDuration", m.EndTime.Sub(m.StartTime)),
			zap.Int("filesSucceeded", m.FilesSucceeded),
			zap.Int("filesFailed", m.FilesFailed),
			zap.Int("totalCells", m.TotalCells),
			zap.Int("flagged", m.Flagged),
			zap.Int("fixed", m.Fixed),
			zap.Float64("cellsPerSecond", m.cellsPerSecond()))
	}
}

// Duration returns the total duration of the run
func (m *Metrics) Duration() time.Duration {
	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

// CellsPerSecond returns the scan throughput
func (m *Metrics) CellsPerSecond() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cellsPerSecond()
}

func (m *Metrics) cellsPerSecond() float64 {
	duration := m.Duration().Seconds()
	if duration <= 0 {
		return 0
	}
	return float64(m.TotalCells) / duration
}

// GetWorkerEfficiency returns the share of the run each worker spent busy
func (m *Metrics) GetWorkerEfficiency() map[int]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	efficiency := make(map[int]float64)
	totalDuration := m.Duration()

	if totalDuration <= 0 {
		return efficiency
	}

	for workerID, duration := range m.WorkerUtilization {
		efficiency[workerID] = float64(duration) / float64(totalDuration)
	}

	return efficiency
}

// GenerateReport creates a plain text summary of the run
func (m *Metrics) GenerateReport() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`
Scan Metrics Report
===================
Duration:          %s
Files Succeeded:   %d
Files Failed:      %d
Cells Examined:    %d
Cells Flagged:     %d
Cells Fixed:       %d
Cells/Second:      %.2f
`,
		formatDuration(m.Duration()),
		m.FilesSucceeded,
		m.FilesFailed,
		m.TotalCells,
		m.Flagged,
		m.Fixed,
		m.cellsPerSecond()))

	if len(m.ErrorCounts) > 0 {
		categories := make([]ErrorCategory, 0, len(m.ErrorCounts))
		for category := range m.ErrorCounts {
			categories = append(categories, category)
		}
		sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

		sb.WriteString("\nErrors:\n")
		for _, category := range categories {
			sb.WriteString(fmt.Sprintf("  %-16s %d\n", category.String()+":", m.ErrorCounts[category]))
		}
	}

	return sb.String()
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
