package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExportFormat is the encoding of an export file.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// FormatOf picks the export format from the file extension. Anything that is
// not .json is written as CSV.
func FormatOf(fileName string) ExportFormat {
	if strings.EqualFold(filepath.Ext(fileName), ".json") {
		return FormatJSON
	}
	return FormatCSV
}

// OutputManager places job export files under one directory per job.
type OutputManager struct {
	BaseOutputDir string
}

func NewOutputManager(baseOutputDir string) *OutputManager {
	return &OutputManager{BaseOutputDir: baseOutputDir}
}

// JobDir creates and returns the export directory of jobID.
func (om *OutputManager) JobDir(jobID string) (string, error) {
	dir := filepath.Join(om.BaseOutputDir, jobID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create job output directory: %w", err)
	}
	return dir, nil
}

// ExportPath resolves fileName inside the job directory. Directory parts of
// fileName are dropped so a job cannot write outside its directory.
func (om *OutputManager) ExportPath(jobID, fileName string) (string, error) {
	name := filepath.Base(fileName)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid export file name %q", fileName)
	}
	dir, err := om.JobDir(jobID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
