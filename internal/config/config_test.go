package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
		Content: ContentConfig{
			CreaturesDir: "content/creatures",
			ScriptsDir:   "content/scripts",
		},
		Initiative: InitiativeConfig{
			Formula:  "3d6 + @abilities.Masques.mod",
			Decimals: 2,
		},
		Derive: DeriveConfig{Workers: 4},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestDefaultsAreValid(t *testing.T) {
	assert.NoError(t, Defaults().Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
logging:
  level: debug
  format: console
content:
  creatures_dir: /srv/knight/creatures
  scripts_dir: /srv/knight/scripts
initiative:
  formula: "1d20 + @lvl"
  decimals: 0
scripting:
  instruction_limit: 5000
derive:
  workers: 8
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "stderr", cfg.Logging.Output, "unset keys keep defaults")
	assert.Equal(t, "/srv/knight/creatures", cfg.Content.CreaturesDir)
	assert.Equal(t, "/srv/knight/scripts", cfg.Content.ScriptsDir)
	assert.Equal(t, "1d20 + @lvl", cfg.Initiative.Formula)
	assert.Equal(t, 0, cfg.Initiative.Decimals)
	assert.Equal(t, 5000, cfg.Scripting.InstructionLimit)
	assert.Equal(t, 8, cfg.Derive.Workers)
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("KNIGHT_DERIVE_WORKERS", "2")
	t.Setenv("KNIGHT_INITIATIVE_FORMULA", "2d6")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Derive.Workers)
	assert.Equal(t, "2d6", cfg.Initiative.Formula)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestLoadInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: loud
derive:
  workers: 0
`), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "derive.workers")
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingOutputEmpty(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Output = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateCreaturesDirEmpty(t *testing.T) {
	cfg := validConfig()
	cfg.Content.CreaturesDir = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateScriptsDirOptional(t *testing.T) {
	cfg := validConfig()
	cfg.Content.ScriptsDir = ""
	assert.NoError(t, cfg.Validate())
}

func TestValidateInitiativeFormulaBlank(t *testing.T) {
	cfg := validConfig()
	cfg.Initiative.Formula = "   "
	assert.Error(t, cfg.Validate())
}

func TestValidateInstructionLimitNegative(t *testing.T) {
	cfg := validConfig()
	cfg.Scripting.InstructionLimit = -1
	assert.Error(t, cfg.Validate())
}

// Property-based tests

func TestPropertyDecimalsRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		decimals := rapid.IntRange(-20, 20).Draw(t, "decimals")
		cfg := validConfig()
		cfg.Initiative.Decimals = decimals
		err := cfg.Validate()
		valid := decimals >= 0 && decimals <= 6
		if valid && err != nil {
			t.Fatalf("valid decimals %d rejected: %v", decimals, err)
		}
		if !valid && err == nil {
			t.Fatalf("invalid decimals %d accepted", decimals)
		}
	})
}

func TestPropertyWorkersAlwaysPositive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		workers := rapid.IntRange(-100, 100).Draw(t, "workers")
		cfg := validConfig()
		cfg.Derive.Workers = workers
		err := cfg.Validate()
		if (workers >= 1) != (err == nil) {
			t.Fatalf("workers=%d validate err=%v", workers, err)
		}
	})
}
