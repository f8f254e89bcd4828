// Package pipeline runs line-record jobs: it opens the job's source, applies
// transformations and field filters, executes the requested operation, and
// exports and records the outcome.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"go-linerecord-pipeline/internal/model"
	"go-linerecord-pipeline/internal/records"
	"go-linerecord-pipeline/internal/source"
	"go-linerecord-pipeline/pkg/utils"
)

// Stages reported with job errors
const (
	StageIngestion  = "ingestion"
	StageProcessing = "processing"
	StageExport     = "export"
)

// JobStore is the persistence the runner reports to. *store.DB implements it.
type JobStore interface {
	UpdateJobStatus(jobID, status string) error
	SaveJobError(jobID, stage string, err error) error
	SaveJobMetrics(m model.JobMetrics) error
	ReplaceResults(jobID string, entries []model.ResultEntry) error
}

// OpenFunc opens the line source for a location.
type OpenFunc func(ctx context.Context, location string) (source.LineSource, error)

// Runner executes jobs. A nil Store runs without persistence, a nil Outputs
// writes export files at the path given in the spec.
type Runner struct {
	Store   JobStore
	Outputs *utils.OutputManager
	Logger  *zap.Logger
	Open    OpenFunc
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Runner) open(ctx context.Context, location string) (source.LineSource, error) {
	if r.Open != nil {
		return r.Open(ctx, location)
	}
	return source.OpenLocation(ctx, location)
}

func (r *Runner) setStatus(log *zap.Logger, jobID, status string) {
	if r.Store == nil {
		return
	}
	if err := r.Store.UpdateJobStatus(jobID, status); err != nil {
		log.Warn("failed to update job status", zap.String("status", status), zap.Error(err))
	}
}

// stageError tags an error with the stage it happened in.
type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func inStage(stage string, err error) error {
	return &stageError{stage: stage, err: err}
}

// Run executes spec as job jobID. The source is closed on every return path.
func (r *Runner) Run(ctx context.Context, jobID string, spec model.JobSpec) (res *Result, err error) {
	log := r.logger().With(zap.String("job_id", jobID))
	log.Info("starting job",
		zap.String("source", spec.Source.Location),
		zap.String("operation", spec.Operation))

	tracker := NewTracker(jobID)
	var counting *source.CountingSource

	r.setStatus(log, jobID, model.StatusRunning)

	defer func() {
		var linesRead int64
		if counting != nil {
			linesRead = counting.Lines()
		}
		if err != nil {
			tracker.RecordError()
		}
		metrics := tracker.Finish(linesRead)
		if res != nil {
			res.Metrics = metrics
		}
		if r.Store != nil {
			if e := r.Store.SaveJobMetrics(metrics); e != nil {
				log.Warn("failed to save metrics", zap.Error(e))
			}
		}

		if err == nil {
			r.setStatus(log, jobID, model.StatusCompleted)
			log.Info("job completed",
				zap.Int64("lines_read", metrics.LinesRead),
				zap.Int64("records_kept", metrics.RecordsKept),
				zap.Duration("duration", metrics.Duration))
			return
		}

		stage := StageProcessing
		var se *stageError
		if errors.As(err, &se) {
			stage = se.stage
		}
		log.Error("job failed", zap.String("stage", stage), zap.Error(err))
		r.setStatus(log, jobID, model.StatusFailed)
		if r.Store != nil {
			if e := r.Store.SaveJobError(jobID, stage, err); e != nil {
				log.Warn("failed to save job error", zap.Error(e))
			}
		}
	}()

	if err := spec.Validate(); err != nil {
		return nil, inStage(StageIngestion, fmt.Errorf("invalid job spec: %w", err))
	}

	ctx, cancel := context.WithTimeout(ctx, utils.ParseDuration(spec.Timeout))
	defer cancel()

	src, err := r.open(ctx, spec.Source.Location)
	if err != nil {
		return nil, inStage(StageIngestion, err)
	}
	defer func() {
		if e := src.Close(); e != nil {
			log.Warn("failed to close source", zap.Error(e))
		}
	}()

	counting = source.Counting(src)
	res, err = process(source.WithContext(ctx, counting), spec, tracker)
	if err != nil {
		return nil, inStage(StageProcessing, err)
	}
	res.JobID = jobID

	r.setStatus(log, jobID, model.StatusExporting)
	em := &ExportManager{JobID: jobID, Spec: spec.Export, Outputs: r.Outputs, Store: r.Store}
	res.Exports = em.Export(res)
	for _, ex := range res.Exports {
		if !ex.Success {
			return res, inStage(StageExport, fmt.Errorf("export to %s %s failed: %s", ex.Type, ex.Path, ex.Error))
		}
		log.Debug("exported results",
			zap.String("type", ex.Type),
			zap.String("path", ex.Path),
			zap.Int("records", ex.RecordCount))
	}
	return res, nil
}

// process builds the record stream for spec and runs its operation.
func process(lines source.LineSource, spec model.JobSpec, tracker *Tracker) (*Result, error) {
	var keep records.LineFilter
	if needle := spec.LineContains; needle != "" {
		keep = func(line string) bool { return strings.Contains(line, needle) }
	}
	s, err := records.ParseMatching(lines, spec.Delimiter, spec.ExpectedArity, keep)
	if err != nil {
		return nil, err
	}
	if s, err = TransformRecords(s, spec.Transformations); err != nil {
		return nil, err
	}
	if s, err = FilterRecords(s, spec.Filters); err != nil {
		return nil, err
	}
	if s, err = records.Peek(s, func(records.Record) { tracker.RecordKept() }); err != nil {
		return nil, err
	}
	res, err := AggregateRecords(s, spec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Operation, err)
	}
	return res, nil
}
