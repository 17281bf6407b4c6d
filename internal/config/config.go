package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration path used when none is given.
const DefaultConfigFile = "assetbuilder.yaml"

const (
	DefaultSource  = "src"
	DefaultOutput  = "dist"
	DefaultCSSDir  = "public/assets/css"
	DefaultWorkers = 4
)

// Config represents the asset build configuration.
type Config struct {
	Source      string        `yaml:"source"`
	Output      string        `yaml:"output"`
	CSSDir      string        `yaml:"css_dir"` // reserved theme directory, relative to Source
	Workers     int           `yaml:"workers"` // 0 or 1 runs sequentially
	Themes      []ThemeConfig `yaml:"themes"`
	Scripts     ScriptsConfig `yaml:"scripts"`
	Exclude     []string      `yaml:"exclude,omitempty"`  // doublestar globs relative to Source
	External    []string      `yaml:"external,omitempty"` // import-graph references left untouched
	Precompress bool          `yaml:"precompress"`
}

// ThemeConfig declares one theme bundle.
type ThemeConfig struct {
	Name     string         `yaml:"name"`
	Strategy BundleStrategy `yaml:"strategy"`
	Inputs   []string       `yaml:"inputs"` // relative to Source; order is significant
	Output   string         `yaml:"output"` // relative to Output
}

// ScriptsConfig controls the passthrough transform applied to scripts.
type ScriptsConfig struct {
	Minify     bool     `yaml:"minify"`
	Extensions []string `yaml:"extensions,omitempty"`
}

// DefaultScriptExtensions are the extensions treated as executable scripts.
var DefaultScriptExtensions = []string{".js", ".mjs", ".cjs"}

// DefaultExternal lists the references import-graph bundling never inlines.
var DefaultExternal = []string{
	"*.jpg", "*.jpeg", "*.png", "*.svg", "*.gif", "*.webp", "*.avif", "*.ico",
	"*.woff", "*.woff2", "*.ttf", "*.otf", "*.eot",
	"https://**", "http://**", "data:*",
}

// DefaultThemes returns the two themes of the site this tool was written for.
func DefaultThemes() []ThemeConfig {
	names := []string{"theme-liteyuki-magipoke", "theme-snowykami"}
	themes := make([]ThemeConfig, 0, len(names))
	for _, name := range names {
		file := path.Join(DefaultCSSDir, name+".css")
		themes = append(themes, ThemeConfig{
			Name:     name,
			Strategy: StrategyImportGraph,
			Inputs:   []string{file},
			Output:   file,
		})
	}
	return themes
}

// Default returns a fully defaulted configuration.
func Default() *Config {
	cfg := &Config{Workers: DefaultWorkers}
	applyDefaults(cfg)
	return cfg
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	// A missing .env file is normal.
	_ = loadEnvFile()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	// #nosec G304 - configPath is provided by the operator
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default when configPath does not exist.
// found reports whether a file was read.
func LoadOrDefault(configPath string) (cfg *Config, found bool, err error) {
	if _, statErr := os.Stat(configPath); errors.Is(statErr, fs.ErrNotExist) {
		_ = loadEnvFile()
		return Default(), false, nil
	}
	cfg, err = Load(configPath)
	return cfg, err == nil, err
}

// Parse decodes YAML (after ${VAR} expansion) and applies defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	// An absent workers key keeps the default; an explicit 0 means sequential.
	cfg := Config{Workers: DefaultWorkers}
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Source == "" {
		cfg.Source = DefaultSource
	}
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if cfg.CSSDir == "" {
		cfg.CSSDir = DefaultCSSDir
	}
	// nil means "not configured"; an explicit empty list disables theme bundling.
	if cfg.Themes == nil {
		cfg.Themes = DefaultThemes()
	}
	for i := range cfg.Themes {
		t := &cfg.Themes[i]
		if t.Strategy == "" {
			t.Strategy = StrategyImportGraph
		} else if s := NormalizeBundleStrategy(string(t.Strategy)); s != "" {
			t.Strategy = s
		}
		if t.Output == "" && t.Name != "" {
			t.Output = path.Join(cfg.CSSDir, t.Name+".css")
		}
	}
	if len(cfg.Scripts.Extensions) == 0 {
		cfg.Scripts.Extensions = append([]string(nil), DefaultScriptExtensions...)
	}
	if cfg.External == nil {
		cfg.External = append([]string(nil), DefaultExternal...)
	}
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Default()
	example.Themes = append(example.Themes, ThemeConfig{
		Name:     "theme-print",
		Strategy: StrategyConcat,
		Inputs: []string{
			"public/assets/css/base/reset.css",
			"public/assets/css/base/typography.css",
			"public/assets/css/print.css",
		},
		Output: "public/assets/css/theme-print.css",
	})
	example.Scripts.Minify = true
	example.External = nil

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
