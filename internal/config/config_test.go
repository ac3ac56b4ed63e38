package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, []string{"United States", "India", "Canada"}, cfg.Pipeline.Entities)
}

func TestLoadFrom_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "epicli.yaml")
	content := `
logging:
  level: debug
  output: console
pipeline:
  source: data/owid-covid-data.csv
  entities:
    - Germany
    - France
  start_date: "2021-01-01"
  end_date: "2021-12-31"
`
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	cfg, err := LoadFrom(configFile)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"Germany", "France"}, cfg.Pipeline.Entities)
	assert.Equal(t, "data/owid-covid-data.csv", cfg.Pipeline.Source)
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "epicli.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("logging:\n  level: debug\n"), 0644))

	t.Setenv("EPI_LOGGING_LEVEL", "warn")

	cfg, err := LoadFrom(configFile)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "invalid log level",
			mutate: func(c *Config) {
				c.Logging.Level = "verbose"
			},
			wantErr: true,
		},
		{
			name: "end date before start date",
			mutate: func(c *Config) {
				c.Pipeline.StartDate = "2021-06-01"
				c.Pipeline.EndDate = "2021-01-01"
			},
			wantErr: true,
		},
		{
			name: "malformed date",
			mutate: func(c *Config) {
				c.Pipeline.StartDate = "01/06/2021"
			},
			wantErr: true,
		},
		{
			name: "blank entity",
			mutate: func(c *Config) {
				c.Pipeline.Entities = []string{"India", "  "}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom("")
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolvePaths(t *testing.T) {
	paths, err := ResolvePaths(PathsConfig{
		DataDir:    "data",
		ReportsDir: "data/reports",
		LogsDir:    "logs",
	})
	require.NoError(t, err)

	assert.True(t, filepath.IsAbs(paths.DataDir))
	assert.Equal(t, filepath.Join(paths.ReportsDir, "combined.csv"), paths.GetReportPath("combined.csv"))
}

func TestPaths_EnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	paths := &Paths{
		DataDir:    filepath.Join(dir, "data"),
		ReportsDir: filepath.Join(dir, "data", "reports"),
		LogsDir:    filepath.Join(dir, "logs"),
	}

	require.NoError(t, paths.EnsureDirectories())

	for _, d := range []string{paths.DataDir, paths.ReportsDir, paths.LogsDir} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
