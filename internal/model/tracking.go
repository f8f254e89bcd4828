package model

import "time"

// JobMetrics summarizes one run
type JobMetrics struct {
	JobID        string        `json:"job_id"`
	StartTime    time.Time     `json:"start_time"`
	EndTime      time.Time     `json:"end_time"`
	Duration     time.Duration `json:"duration"`
	LinesRead    int64         `json:"lines_read"`
	RecordsKept  int64         `json:"records_kept"`
	LinesDropped int64         `json:"lines_dropped"` // arity mismatches and filtered lines
	ErrorCount   int64         `json:"error_count"`
	LinesPerSec  float64       `json:"lines_per_second"`
}
