package exporter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epicli/internal/config"
	"epicli/internal/dataprocessing"
	"epicli/pkg/contracts/domain"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	dir := t.TempDir()
	paths := &config.Paths{
		DataDir:    dir,
		ReportsDir: filepath.Join(dir, "reports"),
		LogsDir:    filepath.Join(dir, "logs"),
	}
	require.NoError(t, paths.EnsureDirectories())
	return paths
}

func exportResult() *dataprocessing.Result {
	obs := []domain.Observation{
		{
			Entity:     "United States",
			Date:       time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
			TotalCases: domain.Float(100),
			Extra:      map[string]string{"iso_code": "USA"},
		},
		{
			Entity:        "United States",
			Date:          time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC),
			TotalCases:    domain.Float(250),
			DailyNewCases: domain.Float(150),
			Extra:         map[string]string{"iso_code": "USA"},
		},
	}
	return &dataprocessing.Result{
		Entities: []string{"United States"},
		Series: map[string]*domain.Series{
			"United States": {Entity: "United States", Observations: obs},
		},
		Combined:     obs,
		ExtraColumns: []string{"iso_code"},
	}
}

func TestExportCombined(t *testing.T) {
	paths := testPaths(t)
	e := NewExporter(NewCSVWriter(paths), nil)

	require.NoError(t, e.ExportCombined(context.Background(), "combined.csv", exportResult()))

	data, err := os.ReadFile(paths.GetReportPath("combined.csv"))
	require.NoError(t, err)

	content := strings.TrimPrefix(string(data), "\xef\xbb\xbf")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 3)

	header := strings.Split(lines[0], ",")
	assert.Equal(t, "location", header[0])
	assert.Equal(t, "date", header[1])
	assert.Contains(t, header, "daily_new_cases")
	assert.Equal(t, "iso_code", header[len(header)-1])

	// Missing values export blank, never zero.
	firstRow := strings.Split(lines[1], ",")
	assert.Equal(t, "United States", firstRow[0])
	assert.Equal(t, "2021-01-01", firstRow[1])
	assert.Equal(t, "100", firstRow[2])
	assert.Equal(t, "", firstRow[3])
	assert.Equal(t, "USA", firstRow[len(firstRow)-1])
}

func TestExportCombined_Deterministic(t *testing.T) {
	paths := testPaths(t)
	e := NewExporter(NewCSVWriter(paths), nil)
	result := exportResult()

	require.NoError(t, e.ExportCombined(context.Background(), "a.csv", result))
	require.NoError(t, e.ExportCombined(context.Background(), "b.csv", result))

	a, err := os.ReadFile(paths.GetReportPath("a.csv"))
	require.NoError(t, err)
	b, err := os.ReadFile(paths.GetReportPath("b.csv"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestExportPerEntity(t *testing.T) {
	paths := testPaths(t)
	e := NewExporter(NewCSVWriter(paths), nil)

	require.NoError(t, e.ExportPerEntity(context.Background(), exportResult()))

	data, err := os.ReadFile(paths.GetReportPath("united_states.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "2021-01-02,250")
}

func TestEntityFilename(t *testing.T) {
	tests := []struct {
		entity string
		want   string
	}{
		{"United States", "united_states.csv"},
		{"India", "india.csv"},
		{" Canada ", "canada.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.entity, func(t *testing.T) {
			assert.Equal(t, tt.want, entityFilename(tt.entity))
		})
	}
}
