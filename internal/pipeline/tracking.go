package pipeline

import (
	"sync/atomic"
	"time"

	"go-linerecord-pipeline/internal/model"
)

// Tracker collects per-run counters while a job streams its records.
type Tracker struct {
	jobID     string
	startTime time.Time
	kept      atomic.Int64
	errors    atomic.Int64
}

// NewTracker starts the clock for jobID.
func NewTracker(jobID string) *Tracker {
	return &Tracker{jobID: jobID, startTime: time.Now()}
}

// RecordKept counts a record that reached the terminal operation.
func (t *Tracker) RecordKept() { t.kept.Add(1) }

// RecordError counts a failure of the run.
func (t *Tracker) RecordError() { t.errors.Add(1) }

// Finish freezes the metrics given the number of lines the source produced.
func (t *Tracker) Finish(linesRead int64) model.JobMetrics {
	end := time.Now()
	m := model.JobMetrics{
		JobID:       t.jobID,
		StartTime:   t.startTime,
		EndTime:     end,
		Duration:    end.Sub(t.startTime),
		LinesRead:   linesRead,
		RecordsKept: t.kept.Load(),
		ErrorCount:  t.errors.Load(),
	}
	m.LinesDropped = max(m.LinesRead-m.RecordsKept, 0)
	if secs := m.Duration.Seconds(); secs > 0 {
		m.LinesPerSec = float64(m.LinesRead) / secs
	}
	return m
}
