package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"go-linerecord-pipeline/internal/model"
	"go-linerecord-pipeline/internal/records"
	"go-linerecord-pipeline/internal/source"
	"go-linerecord-pipeline/pkg/utils"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memStore struct {
	mu       sync.Mutex
	statuses []string
	errs     map[string]string
	metrics  model.JobMetrics
	results  []model.ResultEntry
}

func newMemStore() *memStore { return &memStore{errs: map[string]string{}} }

func (m *memStore) UpdateJobStatus(jobID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
	return nil
}

func (m *memStore) SaveJobError(jobID, stage string, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[stage] = err.Error()
	return nil
}

func (m *memStore) SaveJobMetrics(metrics model.JobMetrics) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = metrics
	return nil
}

func (m *memStore) ReplaceResults(jobID string, entries []model.ResultEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = entries
	return nil
}

func (m *memStore) lastStatus() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statuses[len(m.statuses)-1]
}

// closeTracker records whether the runner released its source.
type closeTracker struct {
	source.LineSource
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return c.LineSource.Close()
}

func writeData(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func spec(location, op string) model.JobSpec {
	return model.JobSpec{
		Source:        model.Source{Location: location},
		Delimiter:     ",",
		ExpectedArity: 3,
		Operation:     op,
		KeyIndex:      0,
		ValueIndex:    1,
	}
}

func TestRunMappingWithNumericFilter(t *testing.T) {
	path := writeData(t, "a,10,x", "b,20,y", "bad line", "c,5,z", "d,30,w")
	st := newMemStore()
	r := &Runner{Store: st, Logger: zaptest.NewLogger(t)}

	sp := spec(path, model.OpMapping)
	sp.Filters = []model.FieldFilter{{Field: 1, Op: "gt", Value: "15"}}

	res, err := r.Run(context.Background(), "job-1", sp)
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "d"}, res.Mapping.Keys())
	assert.Equal(t, model.StatusCompleted, st.lastStatus())
	assert.EqualValues(t, 5, res.Metrics.LinesRead)
	assert.EqualValues(t, 2, res.Metrics.RecordsKept)
	assert.EqualValues(t, 3, res.Metrics.LinesDropped)

	require.Len(t, st.results, 2)
	assert.Equal(t, model.ResultEntry{Position: 1, Kind: model.OpMapping, Key: "d", Value: 30}, st.results[1])
}

func TestRunCountAndTransform(t *testing.T) {
	path := writeData(t, " hello ,1,stream", "java,2,x", "short")
	r := &Runner{Logger: zaptest.NewLogger(t)}

	sp := spec(path, model.OpFilter)
	sp.Transformations = []string{"trimStrings", "convertToUppercase"}
	sp.Filters = []model.FieldFilter{{Field: 0, Op: "prefix", Value: "H"}}

	res, err := r.Run(context.Background(), "job-2", sp)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, []string{"HELLO", "1", "STREAM"}, res.Records[0].Fields)

	res, err = r.Run(context.Background(), "job-3", spec(path, model.OpCount))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
}

func TestRunLineContains(t *testing.T) {
	path := writeData(t, "tester,1,x", "java,2,y", "nested,3,z")
	sp := spec(path, model.OpCount)
	sp.LineContains = "es"

	res, err := (&Runner{}).Run(context.Background(), "job-4", sp)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.EqualValues(t, 3, res.Metrics.LinesRead)
}

func TestRunLineContainsKeepsSourceLineNumbers(t *testing.T) {
	path := writeData(t, "skip,1,x", "skip,2,y", "es,bad,z")
	sp := spec(path, model.OpMapping)
	sp.LineContains = "es"

	_, err := (&Runner{}).Run(context.Background(), "job-4b", sp)
	var perr *records.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 3, perr.Line)

	path = writeData(t, "tester,1,x", "java,2,y", "nested,3,z")
	sp = spec(path, model.OpFilter)
	sp.LineContains = "es"
	st := newMemStore()
	_, err = (&Runner{Store: st}).Run(context.Background(), "job-4c", sp)
	require.NoError(t, err)
	require.Len(t, st.results, 2)
	assert.EqualValues(t, 1, st.results[0].Value)
	assert.EqualValues(t, 3, st.results[1].Value)
}

func TestRunParseErrorClosesSourceAndFails(t *testing.T) {
	var opened *closeTracker
	st := newMemStore()
	r := &Runner{
		Store:  st,
		Logger: zaptest.NewLogger(t),
		Open: func(ctx context.Context, location string) (source.LineSource, error) {
			opened = &closeTracker{LineSource: source.NewSliceSource([]string{"a,10,x", "a,notanumber,z"})}
			return opened, nil
		},
	}

	res, err := r.Run(context.Background(), "job-5", spec("memory", model.OpMapping))
	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, records.ErrParse)

	require.NotNil(t, opened)
	assert.True(t, opened.closed)
	assert.Equal(t, model.StatusFailed, st.lastStatus())
	assert.Contains(t, st.errs[StageProcessing], "notanumber")
	assert.EqualValues(t, 1, st.metrics.ErrorCount)
}

func TestRunMissingSource(t *testing.T) {
	st := newMemStore()
	r := &Runner{Store: st}

	_, err := r.Run(context.Background(), "job-6", spec(filepath.Join(t.TempDir(), "missing.txt"), model.OpCount))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, st.errs, StageIngestion)
}

func TestRunInvalidSpec(t *testing.T) {
	sp := spec("data.txt", model.OpMapping)
	sp.ValueIndex = 7
	_, err := (&Runner{}).Run(context.Background(), "job-7", sp)
	assert.ErrorIs(t, err, records.ErrIndexOutOfRange)

	sp = spec("data.txt", "explode")
	_, err = (&Runner{}).Run(context.Background(), "job-8", sp)
	require.Error(t, err)
}

func TestRunCancelledContext(t *testing.T) {
	path := writeData(t, "a,1,x", "b,2,y")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Runner{}).Run(ctx, "job-9", spec(path, model.OpCount))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunExportsCSVAndJSON(t *testing.T) {
	path := writeData(t, "a,10,x", "b,20,y", "a,5,z")
	outDir := t.TempDir()
	r := &Runner{Outputs: utils.NewOutputManager(outDir)}

	sp := spec(path, model.OpMapping)
	sp.Export = &model.Export{File: "mapping.csv"}
	res, err := r.Run(context.Background(), "job-10", sp)
	require.NoError(t, err)
	require.Len(t, res.Exports, 1)
	assert.True(t, res.Exports[0].Success)
	assert.Equal(t, 2, res.Exports[0].RecordCount)

	f, err := os.Open(filepath.Join(outDir, "job-10", "mapping.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"key", "value"}, {"a", "5"}, {"b", "20"}}, rows)

	sp = spec(path, model.OpSummary)
	sp.Export = &model.Export{File: "summary.json"}
	_, err = r.Run(context.Background(), "job-11", sp)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(outDir, "job-11", "summary.json"))
	require.NoError(t, err)
	var doc struct {
		Data records.Summary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, records.Summary{Count: 3, Sum: 35, Min: 5, Max: 20, Average: 35.0 / 3}, doc.Data)
}

func TestBuildPredicateRejectsUnknownOps(t *testing.T) {
	_, err := buildPredicate(model.FieldFilter{Op: "near"})
	require.Error(t, err)

	_, err = buildPredicate(model.FieldFilter{Op: "gt", Value: "ten"})
	require.Error(t, err)

	_, err = TransformRecords(nil, []string{"reverse"})
	require.Error(t, err)
}

func TestEqualityOpsCompareIntegersOrStrings(t *testing.T) {
	tests := []struct {
		op, value, field string
		want             bool
	}{
		{"eq", "10", "010", true},
		{"eq", "10", "11", false},
		{"ne", "10", "010", false},
		{"is", "10", "010", false},
		{"is", "10", "10", true},
		{"isNot", "10", "010", true},
	}
	for _, tt := range tests {
		t.Run(tt.op+" "+tt.field, func(t *testing.T) {
			pred, err := buildPredicate(model.FieldFilter{Op: tt.op, Value: tt.value})
			require.NoError(t, err)
			got, err := pred(tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := buildPredicate(model.FieldFilter{Op: "eq", Value: "ten"})
	assert.Error(t, err)
}

func TestResultEntries(t *testing.T) {
	sum := records.Summary{Count: 4, Sum: 82, Min: 2, Max: 40, Average: 20.5}
	entries := (&Result{Operation: model.OpSummary, Summary: &sum}).Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, "max", entries[3].Key)
	assert.EqualValues(t, 40, entries[3].Value)

	entries = (&Result{Operation: model.OpCount, Count: 3}).Entries()
	assert.Equal(t, []model.ResultEntry{{Kind: model.OpCount, Key: "count", Value: 3}}, entries)
}
