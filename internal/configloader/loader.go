// Package configloader discovers, layers and validates treewrite configuration.
package configloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/treewrite/pkg/config"
)

// configFilePermissions is the mode used when writing config files.
const configFilePermissions = 0o644

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	// WorkingDir is the directory to start searching for project config.
	// Defaults to current working directory if empty.
	WorkingDir string

	// ExplicitPath is a config file path from the --config flag.
	ExplicitPath string

	// IgnoreUserConfig skips loading the user-level config.
	IgnoreUserConfig bool

	// IgnoreProjectConfig skips loading the project config.
	IgnoreProjectConfig bool

	// IgnoreEnv skips TREEWRITE_* environment variables.
	IgnoreEnv bool

	// CLIConfig contains values from command-line flags (highest precedence).
	CLIConfig *config.Config
}

// LoadResult contains the loaded configuration and metadata.
type LoadResult struct {
	// Config is the final merged configuration.
	Config *config.Config

	// Paths contains the discovered config file paths.
	Paths *ConfigPaths

	// LoadedFrom lists the config files that were loaded, in order.
	LoadedFrom []string

	// Warnings contains non-fatal issues encountered during loading.
	Warnings []string
}

// Load discovers and layers configuration from all sources.
//
// Precedence (lowest to highest):
//  1. Built-in defaults
//  2. User config ($XDG_CONFIG_HOME/treewrite/config.yaml)
//  3. Project config (.treewrite.yaml, found by searching upward)
//  4. Explicit config (--config flag)
//  5. Environment variables (TREEWRITE_*)
//  6. Command-line flags
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	workDir := opts.WorkingDir
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	paths, err := DiscoverPaths(ctx, workDir)
	if err != nil {
		return nil, fmt.Errorf("discover config paths: %w", err)
	}

	result := &LoadResult{Paths: paths}
	cfg := config.NewConfig()

	layers := make([]string, 0, 3)
	if !opts.IgnoreUserConfig && paths.User != "" {
		layers = append(layers, paths.User)
	}
	if !opts.IgnoreProjectConfig && paths.Project != "" {
		layers = append(layers, paths.Project)
	}
	if opts.ExplicitPath != "" {
		layers = append(layers, opts.ExplicitPath)
	}

	for _, path := range layers {
		if err := loadConfigFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		result.LoadedFrom = append(result.LoadedFrom, path)
	}

	if !opts.IgnoreEnv {
		if err := LoadFromEnv(cfg); err != nil {
			return nil, fmt.Errorf("load environment: %w", err)
		}
	}

	if opts.CLIConfig != nil {
		cfg = merge(cfg, opts.CLIConfig)
	}

	validation := Validate(cfg)
	if !validation.Valid() {
		return nil, &validation.Errors[0]
	}
	for _, w := range validation.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}

	result.Config = cfg
	return result, nil
}

// loadConfigFile decodes the file at path onto cfg. Keys absent from the
// file keep their current value; unknown keys are rejected.
func loadConfigFile(path string, cfg *config.Config) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	if IsTOMLConfig(path) {
		decoder := toml.NewDecoder(bytes.NewReader(content))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(cfg); err != nil {
			return fmt.Errorf("parse TOML: %w", err)
		}
		return nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse YAML: %w", err)
	}
	return nil
}

// WriteConfig writes a configuration template to path in the format implied
// by its extension. Existing files are not overwritten unless force is set.
func WriteConfig(path string, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	format := config.TemplateYAML
	if IsTOMLConfig(path) {
		format = config.TemplateTOML
	}

	content, err := config.GenerateTemplate(format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, content, configFilePermissions); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
