package scan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/David-Botos/sheet-cleaner/pkg/cleaner"
	"github.com/David-Botos/sheet-cleaner/pkg/model"
)

func newTestWorker(t *testing.T, opts Options) *Worker {
	t.Helper()
	dc, err := cleaner.NewDataCleaner(cleaner.DefaultPolicy(), "", zap.NewNop())
	require.NoError(t, err)
	return NewWorker(7, dc, nil, NewErrorHandler(zap.NewNop()), opts, zap.NewNop())
}

func TestWorker_ProcessJob(t *testing.T) {
	w := newTestWorker(t, Options{})
	src := &staticSource{
		name: "people",
		sheets: []*model.Sheet{
			{Name: "Empty"},
			{Name: "People", Columns: []string{"Name"}, Rows: [][]string{{"Zoë"}, {"Ann"}}},
		},
	}
	job := NewJob(src)

	result := w.ProcessJob(context.Background(), job)

	assert.Equal(t, job.ID, result.JobID)
	assert.Equal(t, "people", result.Name)
	assert.Equal(t, 7, result.WorkerID)
	assert.True(t, result.Success)
	assert.Equal(t, model.ScanSummary{TotalCells: 2, Flagged: 1, Files: 1, Sheets: 2}, result.Summary)
	require.Len(t, result.Records, 1)
	assert.Equal(t, model.MissingIdentifier, result.Records[0].Identifier)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, ErrorCategoryWarning, result.Errors[0].Category)
	assert.Equal(t, "Empty", result.Errors[0].Sheet)

	assert.Equal(t, WorkerStateIdle, w.GetState())
	assert.Nil(t, w.GetCurrentJob())
}

func TestWorker_StartStopsOnClosedChannel(t *testing.T) {
	w := newTestWorker(t, Options{})
	jobs := make(chan Job, 2)
	results := make(chan FileResult, 2)

	jobs <- NewJob(&staticSource{name: "a"})
	jobs <- NewJob(&staticSource{name: "b"})
	close(jobs)

	require.NoError(t, w.Start(context.Background(), jobs, results))
	close(results)

	var names []string
	for r := range results {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"a", "b"}, names)
	assert.Equal(t, WorkerStateCompleted, w.GetState())
}

func TestWorker_StartReturnsContextError(t *testing.T) {
	w := newTestWorker(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Start(ctx, make(chan Job), make(chan FileResult))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, WorkerStateCompleted, w.GetState())
}

// panickingSource fails inside Sheets with a panic
type panickingSource struct{}

func (panickingSource) Name() string { return "broken.xlsx" }

func (panickingSource) Sheets(ctx context.Context) ([]*model.Sheet, error) {
	panic("corrupt workbook")
}

func TestWorker_StartRecoversFromPanic(t *testing.T) {
	w := newTestWorker(t, Options{})
	jobs := make(chan Job, 2)
	results := make(chan FileResult, 2)

	jobs <- NewJob(panickingSource{})
	jobs <- NewJob(&staticSource{name: "ok"})
	close(jobs)

	require.NoError(t, w.Start(context.Background(), jobs, results))
	close(results)

	byName := map[string]FileResult{}
	for r := range results {
		byName[r.Name] = r
	}
	require.Len(t, byName, 2)

	broken := byName["broken.xlsx"]
	assert.False(t, broken.Success)
	assert.Equal(t, 1, broken.Summary.FailedFiles)
	require.Len(t, broken.Errors, 1)
	assert.Equal(t, ErrorCategoryCritical, broken.Errors[0].Category)
	assert.Contains(t, broken.Errors[0].Message, "corrupt workbook")

	assert.True(t, byName["ok"].Success)
	assert.Equal(t, WorkerStateCompleted, w.GetState())
}

func TestWorker_NilSource(t *testing.T) {
	w := newTestWorker(t, Options{})

	result := w.ProcessJob(context.Background(), Job{ID: "x"})

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Summary.FailedFiles)
}

func TestJob(t *testing.T) {
	job := NewJob(&staticSource{name: "a"})
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, DefaultMaxRetries, job.MaxRetries)
	assert.True(t, job.IsRetryable())

	job = job.WithMaxRetries(1).Retry()
	assert.Equal(t, 1, job.RetryCount)
	assert.False(t, job.IsRetryable())
	assert.Equal(t, "a", job.Name())
	assert.Equal(t, "", Job{}.Name())
}
