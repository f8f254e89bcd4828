package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	assert.Equal(t, DefaultJobTimeout, ParseDuration(""))
	assert.Equal(t, DefaultJobTimeout, ParseDuration("soon"))
	assert.Equal(t, DefaultJobTimeout, ParseDuration("-1s"))
	assert.Equal(t, 90*time.Second, ParseDuration("1m30s"))
}

func TestOutputFilePathStaysInJobDir(t *testing.T) {
	base := t.TempDir()
	om := NewOutputManager(base)

	path, err := om.ExportPath("job-1", "../../etc/counts.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "job-1", "counts.csv"), path)

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestExportPathRejectsDirectoryNames(t *testing.T) {
	om := NewOutputManager(t.TempDir())

	for _, name := range []string{"", ".", "..", "/"} {
		_, err := om.ExportPath("job-1", name)
		assert.Error(t, err, "%q", name)
	}
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatOf("out.JSON"))
	assert.Equal(t, FormatCSV, FormatOf("out.csv"))
	assert.Equal(t, FormatCSV, FormatOf("out"))
}
