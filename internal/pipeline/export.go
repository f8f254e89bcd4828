package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go-linerecord-pipeline/internal/model"
	"go-linerecord-pipeline/pkg/utils"
)

// ExportManager writes a job result to its configured targets.
type ExportManager struct {
	JobID   string
	Spec    *model.Export
	Outputs *utils.OutputManager
	Store   JobStore
}

// Export writes res to the file target (if any) and the job store (if any).
func (em *ExportManager) Export(res *Result) []model.ExportResult {
	var results []model.ExportResult
	if em.Spec != nil && em.Spec.File != "" {
		results = append(results, em.exportToFile(res))
	}
	if em.Store != nil {
		results = append(results, em.exportToDatabase(res))
	}
	return results
}

func (em *ExportManager) filePath() (string, error) {
	if em.Outputs == nil {
		return em.Spec.File, nil
	}
	return em.Outputs.ExportPath(em.JobID, em.Spec.File)
}

// exportToFile exports data to a file (CSV or JSON)
func (em *ExportManager) exportToFile(res *Result) model.ExportResult {
	result := model.ExportResult{Type: "file", ExportedAt: time.Now()}

	path, err := em.filePath()
	if err == nil {
		result.Path = path
		if utils.FormatOf(path) == utils.FormatJSON {
			result.RecordCount, err = em.exportToJSON(path, res)
		} else {
			result.RecordCount, err = em.exportToCSV(path, res)
		}
	}

	result.Success = err == nil
	if err != nil {
		result.Error = err.Error()
	}
	return result
}

func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return file, nil
}

// csvRows lays the result out as a header plus data rows.
func csvRows(res *Result) [][]string {
	switch res.Operation {
	case model.OpFilter:
		rows := [][]string{}
		for _, rec := range res.Records {
			rows = append(rows, rec.Fields)
		}
		return rows
	case model.OpMapping:
		rows := [][]string{{"key", "value"}}
		for k, v := range res.Mapping.All() {
			rows = append(rows, []string{k, strconv.Itoa(v)})
		}
		return rows
	case model.OpSummary:
		s := res.Summary
		return [][]string{
			{"count", "sum", "min", "max", "average"},
			{
				strconv.FormatInt(s.Count, 10),
				strconv.FormatInt(s.Sum, 10),
				strconv.Itoa(s.Min),
				strconv.Itoa(s.Max),
				strconv.FormatFloat(s.Average, 'f', -1, 64),
			},
		}
	default:
		return [][]string{{"count"}, {strconv.Itoa(res.Count)}}
	}
}

// exportToCSV exports data to CSV format
func (em *ExportManager) exportToCSV(path string, res *Result) (int, error) {
	file, err := createFile(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	rows := csvRows(res)
	if err := writer.WriteAll(rows); err != nil {
		return 0, fmt.Errorf("failed to write rows: %w", err)
	}
	if err := file.Close(); err != nil {
		return 0, fmt.Errorf("failed to close file: %w", err)
	}

	if res.Operation == model.OpFilter {
		return len(rows), nil
	}
	return len(rows) - 1, nil
}

// exportToJSON exports data to JSON format
func (em *ExportManager) exportToJSON(path string, res *Result) (int, error) {
	file, err := createFile(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	var data any
	count := 1
	switch res.Operation {
	case model.OpFilter:
		data, count = res.Records, len(res.Records)
	case model.OpMapping:
		data, count = res.Mapping, res.Mapping.Len()
	case model.OpSummary:
		data = res.Summary
	default:
		data = map[string]int{"count": res.Count}
	}

	exportData := map[string]any{
		"export_info": map[string]any{
			"job_id":       em.JobID,
			"exported_at":  time.Now().UTC(),
			"record_count": count,
			"export_type":  strings.ToLower(res.Operation),
		},
		"data": data,
	}

	if err := encoder.Encode(exportData); err != nil {
		return 0, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return count, nil
}

// exportToDatabase replaces the stored results of the job
func (em *ExportManager) exportToDatabase(res *Result) model.ExportResult {
	entries := res.Entries()
	err := em.Store.ReplaceResults(em.JobID, entries)

	result := model.ExportResult{
		Type:        "database",
		Path:        "job_results",
		RecordCount: len(entries),
		Success:     err == nil,
		ExportedAt:  time.Now(),
	}
	if err != nil {
		result.RecordCount = 0
		result.Error = err.Error()
	}
	return result
}
