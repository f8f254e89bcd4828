package model

import (
	"fmt"
	"strings"
	"time"

	"go-linerecord-pipeline/internal/records"
)

// Operations a job can run over its records
const (
	OpFilter  = "filter"  // emit the surviving records
	OpCount   = "count"   // count the surviving records
	OpMapping = "mapping" // key field -> integer value field
	OpSummary = "summary" // count/sum/min/max/average of the value field
)

// Job statuses
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusExporting = "exporting"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Source names where the lines come from
type Source struct {
	Location string `json:"location"` // file path or http(s) URL
}

// FieldFilter keeps records whose field satisfies Op against Value
type FieldFilter struct {
	Field int    `json:"field"`
	Op    string `json:"op"` // gt, gte, lt, lte, eq, ne, is, isNot, prefix, contains, longerThan
	Value string `json:"value"`
}

// Export defines export targets. Results are always stored in the job
// database when one is configured.
type Export struct {
	File string `json:"file,omitempty"` // e.g. counts.csv or counts.json
}

// JobSpec is the body of POST /api/v1/jobs
type JobSpec struct {
	Source          Source        `json:"source"`
	Delimiter       string        `json:"delimiter"`
	ExpectedArity   int           `json:"expectedArity"`
	LineContains    string        `json:"lineContains,omitempty"` // pre-split line filter
	Transformations []string      `json:"transformations,omitempty"`
	Filters         []FieldFilter `json:"filters,omitempty"`
	Operation       string        `json:"operation"`
	KeyIndex        int           `json:"keyIndex"`
	ValueIndex      int           `json:"valueIndex"`
	Export          *Export       `json:"export,omitempty"`
	Timeout         string        `json:"timeout,omitempty"` // e.g. "5m"
}

// ProcessorConfig extracts the record processing settings of the job.
func (j JobSpec) ProcessorConfig() records.Config {
	return records.Config{
		Delimiter:     j.Delimiter,
		ExpectedArity: j.ExpectedArity,
		KeyIndex:      j.KeyIndex,
		ValueIndex:    j.ValueIndex,
	}
}

// ApplyDefaults fills unset processing fields from cfg.
func (j *JobSpec) ApplyDefaults(cfg records.Config) {
	if j.Delimiter == "" {
		j.Delimiter = cfg.Delimiter
	}
	if j.ExpectedArity == 0 {
		j.ExpectedArity = cfg.ExpectedArity
	}
	if j.Operation == "" {
		j.Operation = OpFilter
	}
}

// Validate checks the spec before it is stored or run.
func (j JobSpec) Validate() error {
	if strings.TrimSpace(j.Source.Location) == "" {
		return fmt.Errorf("source location is required")
	}
	switch j.Operation {
	case OpFilter, OpCount:
		cfg := j.ProcessorConfig()
		cfg.KeyIndex, cfg.ValueIndex = 0, 0
		if err := cfg.Validate(); err != nil {
			return err
		}
	case OpMapping, OpSummary:
		if err := j.ProcessorConfig().Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown operation: %s", j.Operation)
	}
	for _, f := range j.Filters {
		if f.Field < 0 || f.Field >= j.ExpectedArity {
			return fmt.Errorf("filter field %d: %w", f.Field, &records.IndexError{Index: f.Field, Arity: j.ExpectedArity})
		}
	}
	if j.Timeout != "" {
		if _, err := time.ParseDuration(j.Timeout); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", j.Timeout, err)
		}
	}
	return nil
}

// Job is a stored job with its status
type Job struct {
	ID        string    `json:"id"`
	Spec      JobSpec   `json:"spec"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// JobSummary is the list view of a job
type JobSummary struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// JobError is one recorded failure
type JobError struct {
	ID        int64     `json:"id"`
	JobID     string    `json:"job_id"`
	Stage     string    `json:"stage"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ResultEntry is one stored result row. Kind is one of the Op constants;
// Key/Value hold mapping entries and counts, Fields holds a filtered record.
type ResultEntry struct {
	Position int      `json:"position"`
	Kind     string   `json:"kind"`
	Key      string   `json:"key,omitempty"`
	Value    int64    `json:"value"`
	Fields   []string `json:"fields,omitempty"`
}

// ExportResult represents the result of an export operation
type ExportResult struct {
	Type        string    `json:"type"` // "file", "database"
	Path        string    `json:"path"` // file path or table name
	RecordCount int       `json:"record_count"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	ExportedAt  time.Time `json:"exported_at"`
}
