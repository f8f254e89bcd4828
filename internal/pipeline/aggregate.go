package pipeline

import (
	"fmt"

	"go-linerecord-pipeline/internal/model"
	"go-linerecord-pipeline/internal/records"
)

// Result is what one job run produced. Exactly one of Records, Count,
// Mapping and Summary is meaningful, selected by Operation.
type Result struct {
	JobID     string               `json:"job_id"`
	Operation string               `json:"operation"`
	Records   []records.Record     `json:"records,omitempty"`
	Count     int                  `json:"count"`
	Mapping   *records.OrderedMap  `json:"mapping,omitempty"`
	Summary   *records.Summary     `json:"summary,omitempty"`
	Metrics   model.JobMetrics     `json:"metrics"`
	Exports   []model.ExportResult `json:"exports,omitempty"`
}

// AggregateRecords runs the terminal operation named by the job spec.
func AggregateRecords(s *records.Stream, spec model.JobSpec) (*Result, error) {
	res := &Result{Operation: spec.Operation}

	switch spec.Operation {
	case model.OpFilter:
		recs, err := records.Collect(s)
		if err != nil {
			return nil, err
		}
		res.Records = recs
		res.Count = len(recs)
	case model.OpCount:
		n, err := records.Count(s)
		if err != nil {
			return nil, err
		}
		res.Count = n
	case model.OpMapping:
		m, err := records.ToMapping(s, spec.KeyIndex, spec.ValueIndex, records.ParseInt)
		if err != nil {
			return nil, err
		}
		res.Mapping = m
		res.Count = m.Len()
	case model.OpSummary:
		sum, err := records.Summarize(s, spec.ValueIndex, records.ParseInt)
		if err != nil {
			return nil, err
		}
		res.Summary = &sum
		res.Count = int(sum.Count)
	default:
		return nil, fmt.Errorf("unknown operation: %s", spec.Operation)
	}
	return res, nil
}

// Entries flattens the result into rows for the job store.
func (r *Result) Entries() []model.ResultEntry {
	var entries []model.ResultEntry
	switch r.Operation {
	case model.OpFilter:
		for i, rec := range r.Records {
			entries = append(entries, model.ResultEntry{Position: i, Kind: model.OpFilter, Value: int64(rec.Line), Fields: rec.Fields})
		}
	case model.OpCount:
		entries = append(entries, model.ResultEntry{Kind: model.OpCount, Key: "count", Value: int64(r.Count)})
	case model.OpMapping:
		i := 0
		for k, v := range r.Mapping.All() {
			entries = append(entries, model.ResultEntry{Position: i, Kind: model.OpMapping, Key: k, Value: int64(v)})
			i++
		}
	case model.OpSummary:
		s := r.Summary
		for i, kv := range []struct {
			key string
			val int64
		}{{"count", s.Count}, {"sum", s.Sum}, {"min", int64(s.Min)}, {"max", int64(s.Max)}} {
			entries = append(entries, model.ResultEntry{Position: i, Kind: model.OpSummary, Key: kv.key, Value: kv.val})
		}
	}
	return entries
}
