package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-linerecord-pipeline/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "pipeline.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testSpec() model.JobSpec {
	return model.JobSpec{
		Source:        model.Source{Location: "data.txt"},
		Delimiter:     ",",
		ExpectedArity: 3,
		Operation:     model.OpMapping,
		KeyIndex:      0,
		ValueIndex:    1,
	}
}

func TestJobLifecycle(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveJob("job-1", testSpec()))

	job, err := db.GetJob("job-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, job.Status)
	assert.Equal(t, testSpec(), job.Spec)

	require.NoError(t, db.UpdateJobStatus("job-1", model.StatusCompleted))
	job, err = db.GetJob("job-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, job.Status)
	assert.False(t, job.UpdatedAt.Before(job.CreatedAt))

	jobs, err := db.ListJobs()
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job-1", jobs[0].ID)
}

func TestUnknownJob(t *testing.T) {
	db := openTestDB(t)

	_, err := db.GetJob("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, db.UpdateJobStatus("missing", model.StatusFailed), ErrNotFound)

	_, err = db.GetJobMetrics("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJobErrors(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveJobError("job-1", "processing", errors.New("line 2 field 1: bad")))
	require.NoError(t, db.SaveJobError("job-1", "export", nil))

	errs, err := db.GetJobErrors("job-1")
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "processing", errs[0].Stage)
	assert.Equal(t, "line 2 field 1: bad", errs[0].Message)

	errs, err = db.GetJobErrors("other")
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestMetricsUpsert(t *testing.T) {
	db := openTestDB(t)

	m := model.JobMetrics{JobID: "job-1", LinesRead: 3, RecordsKept: 2, Duration: time.Second}
	require.NoError(t, db.SaveJobMetrics(m))
	m.LinesRead = 5
	require.NoError(t, db.SaveJobMetrics(m))

	got, err := db.GetJobMetrics("job-1")
	require.NoError(t, err)
	assert.EqualValues(t, 5, got.LinesRead)
	assert.EqualValues(t, 2, got.RecordsKept)
	assert.Equal(t, time.Second, got.Duration)
}

func TestReplaceResults(t *testing.T) {
	db := openTestDB(t)

	first := []model.ResultEntry{{Position: 0, Kind: model.OpCount, Value: 7}}
	require.NoError(t, db.ReplaceResults("job-1", first))

	second := []model.ResultEntry{
		{Position: 0, Kind: model.OpMapping, Key: "a", Value: 10},
		{Position: 1, Kind: model.OpMapping, Key: "b", Value: 20},
		{Position: 2, Kind: model.OpFilter, Fields: []string{"b", "20", "y"}},
	}
	require.NoError(t, db.ReplaceResults("job-1", second))

	got, err := db.GetResults("job-1", 0)
	require.NoError(t, err)
	assert.Equal(t, second, got)

	got, err = db.GetResults("job-1", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
