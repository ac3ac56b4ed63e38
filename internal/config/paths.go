package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds resolved absolute directories used by the CLIs. All relative
// configuration paths resolve against the current working directory.
type Paths struct {
	DataDir    string
	ReportsDir string
	LogsDir    string
}

// ResolvePaths turns the configured path strings into absolute paths.
func ResolvePaths(cfg PathsConfig) (*Paths, error) {
	p := &Paths{}

	var err error
	if p.DataDir, err = filepath.Abs(cfg.DataDir); err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}
	if p.ReportsDir, err = filepath.Abs(cfg.ReportsDir); err != nil {
		return nil, fmt.Errorf("failed to resolve reports dir: %w", err)
	}
	if p.LogsDir, err = filepath.Abs(cfg.LogsDir); err != nil {
		return nil, fmt.Errorf("failed to resolve logs dir: %w", err)
	}

	return p, nil
}

// EnsureDirectories creates the resolved directories if they do not exist.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetReportPath returns the full path for a report output file.
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the full path for a log file.
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}
