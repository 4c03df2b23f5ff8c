package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docscan/form-renamer/internal/domain"
)

// clearEnv neutralizes ambient environment so tests see only what they set
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
		"INPUT_DIR", "OUTPUT_DIR", "TEMP_DIR",
		"PDF_DPI", "PAGES_PER_FORM", "LOG_LEVEL", "LOG_FORMAT",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "./input", cfg.Dirs.Input)
	assert.Equal(t, "./output", cfg.Dirs.Output)
	assert.Equal(t, "./temp", cfg.Dirs.Temp)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Vision.BaseURL)
	assert.Equal(t, "gpt-5", cfg.Vision.Model)
	assert.Equal(t, 2000, cfg.Vision.MaxTokens)
	assert.Equal(t, 120*time.Second, cfg.Vision.RequestTimeout)
	assert.Equal(t, 3, cfg.Vision.MaxRetries)
	assert.Equal(t, 300, cfg.PDF.DPI)
	assert.Equal(t, 3, cfg.PDF.PagesPerForm)
	assert.Equal(t, "Patientenbogen - ", cfg.Rename.Prefix)
	assert.Equal(t, 100, cfg.Rename.MaxNameLength)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_MissingAPIKeyFails(t *testing.T) {
	clearEnv(t)

	_, err := Load("")
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("INPUT_DIR", "/data/scans")
	t.Setenv("PDF_DPI", "150")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Vision.APIKey)
	assert.Equal(t, "gpt-4o", cfg.Vision.Model)
	assert.Equal(t, "/data/scans", cfg.Dirs.Input)
	assert.Equal(t, 150, cfg.PDF.DPI)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Untouched settings keep their defaults
	assert.Equal(t, "./output", cfg.Dirs.Output)
	assert.Equal(t, 3, cfg.PDF.PagesPerForm)
}

func TestLoad_InvalidNumericEnvIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PDF_DPI", "not-a-number")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.PDF.DPI)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
dirs:
  input: /data/scans
  output: /data/renamed
vision:
  model: gpt-4o
  max_tokens: 1500
pdf:
  dpi: 150
rename:
  prefix: "Formular - "
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/scans", cfg.Dirs.Input)
	assert.Equal(t, "/data/renamed", cfg.Dirs.Output)
	assert.Equal(t, "gpt-4o", cfg.Vision.Model)
	assert.Equal(t, 1500, cfg.Vision.MaxTokens)
	assert.Equal(t, 150, cfg.PDF.DPI)
	assert.Equal(t, "Formular - ", cfg.Rename.Prefix)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Settings the file does not mention keep their defaults
	assert.Equal(t, "./temp", cfg.Dirs.Temp)
	assert.Equal(t, 3, cfg.PDF.PagesPerForm)
	assert.Equal(t, 120*time.Second, cfg.Vision.RequestTimeout)
}

func TestLoad_EnvBeatsYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-5-mini")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vision:\n  model: gpt-4o\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-5-mini", cfg.Vision.Model)
}

func TestLoad_MissingFileFails(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	_, err := Load(filepath.Join(t.TempDir(), "ghost.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoad_MalformedYAMLFails(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dirs: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Vision.APIKey = "sk-test"
		return cfg
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing api key", func(c *Config) { c.Vision.APIKey = "" }},
		{"empty model", func(c *Config) { c.Vision.Model = "" }},
		{"zero max tokens", func(c *Config) { c.Vision.MaxTokens = 0 }},
		{"negative retries", func(c *Config) { c.Vision.MaxRetries = -1 }},
		{"dpi too low", func(c *Config) { c.PDF.DPI = 50 }},
		{"dpi too high", func(c *Config) { c.PDF.DPI = 700 }},
		{"zero pages per form", func(c *Config) { c.PDF.PagesPerForm = 0 }},
		{"name length too small", func(c *Config) { c.Rename.MaxNameLength = 5 }},
		{"empty input dir", func(c *Config) { c.Dirs.Input = "" }},
		{"empty temp dir", func(c *Config) { c.Dirs.Temp = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, domain.IsType(err, domain.ErrorTypeConfig))
		})
	}
}
