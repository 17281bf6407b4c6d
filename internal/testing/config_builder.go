package testing

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
)

// ConfigBuilder provides a fluent interface for creating test configurations.
type ConfigBuilder struct {
	config *config.Config
	t      *testing.T
}

// NewConfigBuilder creates a configuration with the default roots, one worker
// and no themes.
func NewConfigBuilder(t *testing.T) *ConfigBuilder {
	cfg := config.Default()
	cfg.Workers = 1
	cfg.Themes = []config.ThemeConfig{}
	return &ConfigBuilder{config: cfg, t: t}
}

// WithRoots sets the source and destination roots.
func (cb *ConfigBuilder) WithRoots(source, output string) *ConfigBuilder {
	cb.config.Source = source
	cb.config.Output = output
	return cb
}

// WithWorkers sets the worker count.
func (cb *ConfigBuilder) WithWorkers(n int) *ConfigBuilder {
	cb.config.Workers = n
	return cb
}

// WithTheme adds a theme whose output mirrors its first input.
func (cb *ConfigBuilder) WithTheme(name string, strategy config.BundleStrategy, inputs ...string) *ConfigBuilder {
	th := config.ThemeConfig{Name: name, Strategy: strategy, Inputs: inputs}
	if len(inputs) > 0 {
		th.Output = inputs[0]
	}
	cb.config.Themes = append(cb.config.Themes, th)
	return cb
}

// WithThemeOutput overrides the output path of the most recently added theme.
func (cb *ConfigBuilder) WithThemeOutput(output string) *ConfigBuilder {
	if n := len(cb.config.Themes); n > 0 {
		cb.config.Themes[n-1].Output = output
	}
	return cb
}

// WithScriptMinify toggles script minification.
func (cb *ConfigBuilder) WithScriptMinify(enabled bool) *ConfigBuilder {
	cb.config.Scripts.Minify = enabled
	return cb
}

// WithPrecompress toggles brotli siblings.
func (cb *ConfigBuilder) WithPrecompress(enabled bool) *ConfigBuilder {
	cb.config.Precompress = enabled
	return cb
}

// WithExclude appends exclude globs.
func (cb *ConfigBuilder) WithExclude(patterns ...string) *ConfigBuilder {
	cb.config.Exclude = append(cb.config.Exclude, patterns...)
	return cb
}

// Build returns the configuration.
func (cb *ConfigBuilder) Build() *config.Config {
	return cb.config
}

// BuildAndSave writes the configuration as YAML to path and returns it.
func (cb *ConfigBuilder) BuildAndSave(path string) *config.Config {
	cb.t.Helper()

	data, err := yaml.Marshal(cb.config)
	if err != nil {
		cb.t.Fatalf("Failed to marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), testDirPermissions); err != nil {
		cb.t.Fatalf("Failed to create config directory: %v", err)
	}
	if err := os.WriteFile(path, data, testFilePermissions); err != nil {
		cb.t.Fatalf("Failed to write config file: %v", err)
	}
	return cb.config
}
