package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// ServerConfig contains HTTP server configuration for the data API
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// PipelineConfig contains the recognized pipeline options: the entity set and
// the optional inclusive date range. Dates use the dataset's ISO-8601 form.
type PipelineConfig struct {
	Source    string   `yaml:"source" envconfig:"SOURCE"`
	Entities  []string `yaml:"entities" envconfig:"ENTITIES"`
	StartDate string   `yaml:"start_date" envconfig:"START_DATE" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string   `yaml:"end_date" envconfig:"END_DATE" validate:"omitempty,datetime=2006-01-02"`
}

// Default returns the built-in configuration defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimitRPS:    100,
			RateLimitBurst:  50,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/epicli.log",
		},
		Paths: PathsConfig{
			DataDir:    "data",
			ReportsDir: "data/reports",
			LogsDir:    "logs",
		},
		Pipeline: PipelineConfig{
			Entities: []string{"United States", "India", "Canada"},
		},
	}
}

// Load loads configuration from environment variables and an optional YAML
// config file. Environment variables take precedence over file values, file
// values over defaults.
func Load() (*Config, error) {
	return LoadFrom(configFilePath())
}

// LoadFrom loads configuration using the given config file path.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := envconfig.Process("EPI", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks structural constraints on the loaded configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}

	if c.Pipeline.StartDate != "" && c.Pipeline.EndDate != "" {
		start, _ := time.Parse("2006-01-02", c.Pipeline.StartDate)
		end, _ := time.Parse("2006-01-02", c.Pipeline.EndDate)
		if end.Before(start) {
			return fmt.Errorf("pipeline end_date %s precedes start_date %s", c.Pipeline.EndDate, c.Pipeline.StartDate)
		}
	}

	for _, entity := range c.Pipeline.Entities {
		if strings.TrimSpace(entity) == "" {
			return fmt.Errorf("pipeline entities must not contain blank names")
		}
	}

	return nil
}

// configFilePath returns the config file location, overridable via env.
func configFilePath() string {
	if p := os.Getenv("EPI_CONFIG_FILE"); p != "" {
		return p
	}
	return "epicli.yaml"
}
