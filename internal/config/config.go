// Package config provides unified configuration loading for form-renamer.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/docscan/form-renamer/internal/domain"
)

// Config holds all configuration for the renaming pipeline.
type Config struct {
	Dirs   DirsConfig   `yaml:"dirs"`
	Vision VisionConfig `yaml:"vision"`
	PDF    PDFConfig    `yaml:"pdf"`
	Rename RenameConfig `yaml:"rename"`
	Log    LogConfig    `yaml:"log"`
}

// DirsConfig holds the working directories.
type DirsConfig struct {
	Input  string `yaml:"input"`  // source PDFs; must exist before a run
	Output string `yaml:"output"` // renamed PDFs; created if absent
	Temp   string `yaml:"temp"`   // split parts; wiped at run start and end
}

// VisionConfig holds settings for the vision model endpoint.
// The API key is never read from the config file, only from the
// environment (OPENAI_API_KEY, optionally via a .env file).
type VisionConfig struct {
	APIKey         string        `yaml:"-"`
	BaseURL        string        `yaml:"base_url"`
	Model          string        `yaml:"model"`
	MaxTokens      int           `yaml:"max_tokens"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxRetries     int           `yaml:"max_retries"` // rate-limit retries; 0 disables
}

// PDFConfig holds rasterization and splitting settings.
type PDFConfig struct {
	DPI          int `yaml:"dpi"`
	PagesPerForm int `yaml:"pages_per_form"`
}

// RenameConfig holds destination naming settings.
type RenameConfig struct {
	Prefix        string `yaml:"prefix"`
	MaxNameLength int    `yaml:"max_name_length"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Load reads configuration from an optional YAML file and applies
// environment overrides. A .env file in the working directory is
// honored before the environment is read.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // ignore error if .env doesn't exist

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultConfig returns a configuration matching the production scanner setup.
func DefaultConfig() *Config {
	return &Config{
		Dirs: DirsConfig{
			Input:  "./input",
			Output: "./output",
			Temp:   "./temp",
		},
		Vision: VisionConfig{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-5",
			MaxTokens:      2000, // reasoning models spend tokens before answering
			RequestTimeout: 120 * time.Second,
			MaxRetries:     3,
		},
		PDF: PDFConfig{
			DPI:          300,
			PagesPerForm: 3, // every patient form is a 3-page set
		},
		Rename: RenameConfig{
			Prefix:        "Patientenbogen - ",
			MaxNameLength: 100,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks the configuration for errors. A missing API key or an
// out-of-range setting is a fatal startup error.
func (c *Config) Validate() error {
	if c.Vision.APIKey == "" {
		return domain.ConfigError("OPENAI_API_KEY not set", nil)
	}

	if c.Vision.Model == "" {
		return domain.ConfigError("vision model must not be empty", nil)
	}

	if c.Vision.MaxTokens < 1 {
		return domain.ConfigError(fmt.Sprintf("invalid max_tokens: %d", c.Vision.MaxTokens), nil)
	}

	if c.Vision.MaxRetries < 0 {
		return domain.ConfigError(fmt.Sprintf("invalid max_retries: %d", c.Vision.MaxRetries), nil)
	}

	if c.PDF.DPI < 72 || c.PDF.DPI > 600 {
		return domain.ConfigError(fmt.Sprintf("dpi must be between 72 and 600, got %d", c.PDF.DPI), nil)
	}

	if c.PDF.PagesPerForm < 1 {
		return domain.ConfigError(fmt.Sprintf("invalid pages_per_form: %d", c.PDF.PagesPerForm), nil)
	}

	if c.Rename.MaxNameLength < 10 {
		return domain.ConfigError(fmt.Sprintf("max_name_length must be at least 10, got %d", c.Rename.MaxNameLength), nil)
	}

	if c.Dirs.Input == "" || c.Dirs.Output == "" || c.Dirs.Temp == "" {
		return domain.ConfigError("input, output and temp directories must be set", nil)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Vision.APIKey = v
	}

	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.Vision.Model = v
	}

	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Vision.BaseURL = v
	}

	if v := os.Getenv("INPUT_DIR"); v != "" {
		cfg.Dirs.Input = v
	}

	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Dirs.Output = v
	}

	if v := os.Getenv("TEMP_DIR"); v != "" {
		cfg.Dirs.Temp = v
	}

	if v := os.Getenv("PDF_DPI"); v != "" {
		var dpi int
		if _, err := fmt.Sscanf(v, "%d", &dpi); err == nil {
			cfg.PDF.DPI = dpi
		}
	}

	if v := os.Getenv("PAGES_PER_FORM"); v != "" {
		var pages int
		if _, err := fmt.Sscanf(v, "%d", &pages); err == nil {
			cfg.PDF.PagesPerForm = pages
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}
