// Package config provides Viper-based configuration loading for the knight tools.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is a zap sink path such as "stderr" or a file path. Record output
	// goes to stdout, so logs default to stderr.
	Output string `mapstructure:"output"`
}

// ContentConfig locates ruleset content on disk.
type ContentConfig struct {
	// CreaturesDir holds one YAML creature record per file.
	CreaturesDir string `mapstructure:"creatures_dir"`
	// ScriptsDir holds Lua phase-hook scripts; empty disables scripting.
	ScriptsDir string `mapstructure:"scripts_dir"`
}

// InitiativeConfig holds the combat initiative roll settings.
type InitiativeConfig struct {
	// Formula is evaluated against each creature's roll data.
	Formula string `mapstructure:"formula"`
	// Decimals is the number of decimal places kept in formula results.
	Decimals int `mapstructure:"decimals"`
}

// ScriptingConfig holds Lua sandbox settings.
type ScriptingConfig struct {
	// InstructionLimit caps opcodes per hook call; 0 selects the sandbox default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// DeriveConfig holds record preparation settings.
type DeriveConfig struct {
	// Workers bounds concurrent record preparation.
	Workers int `mapstructure:"workers"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Content    ContentConfig    `mapstructure:"content"`
	Initiative InitiativeConfig `mapstructure:"initiative"`
	Scripting  ScriptingConfig  `mapstructure:"scripting"`
	Derive     DeriveConfig     `mapstructure:"derive"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	for _, err := range []error{
		validateLogging(c.Logging),
		validateContent(c.Content),
		validateInitiative(c.Initiative),
		validateScripting(c.Scripting),
		validateDerive(c.Derive),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	if l.Output == "" {
		return errors.New("logging.output must not be empty")
	}
	return nil
}

func validateContent(c ContentConfig) error {
	if c.CreaturesDir == "" {
		return errors.New("content.creatures_dir must not be empty")
	}
	return nil
}

func validateInitiative(i InitiativeConfig) error {
	var errs []string
	if strings.TrimSpace(i.Formula) == "" {
		errs = append(errs, "initiative.formula must not be empty")
	}
	if i.Decimals < 0 || i.Decimals > 6 {
		errs = append(errs, fmt.Sprintf("initiative.decimals must be 0-6, got %d", i.Decimals))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	if s.InstructionLimit < 0 {
		return fmt.Errorf("scripting.instruction_limit must be >= 0, got %d", s.InstructionLimit)
	}
	return nil
}

func validateDerive(d DeriveConfig) error {
	if d.Workers < 1 {
		return fmt.Errorf("derive.workers must be >= 1, got %d", d.Workers)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path loads defaults and
// environment overrides only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with KNIGHT_ prefix
	v.SetEnvPrefix("KNIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns the configuration produced by Load("") with no environment overrides.
func Defaults() Config {
	return Config{
		Logging:    LoggingConfig{Level: "info", Format: "json", Output: "stderr"},
		Content:    ContentConfig{CreaturesDir: "content/creatures", ScriptsDir: ""},
		Initiative: InitiativeConfig{Formula: "3d6 + @abilities.Masques.mod", Decimals: 2},
		Scripting:  ScriptingConfig{InstructionLimit: 0},
		Derive:     DeriveConfig{Workers: 4},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)

	v.SetDefault("content.creatures_dir", d.Content.CreaturesDir)
	v.SetDefault("content.scripts_dir", d.Content.ScriptsDir)

	v.SetDefault("initiative.formula", d.Initiative.Formula)
	v.SetDefault("initiative.decimals", d.Initiative.Decimals)

	v.SetDefault("scripting.instruction_limit", d.Scripting.InstructionLimit)

	v.SetDefault("derive.workers", d.Derive.Workers)
}
