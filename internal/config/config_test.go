package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "assetbuilder.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "src", cfg.Source)
	assert.Equal(t, "dist", cfg.Output)
	assert.Equal(t, "public/assets/css", cfg.CSSDir)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	require.Len(t, cfg.Themes, 2)
	assert.Equal(t, "theme-liteyuki-magipoke", cfg.Themes[0].Name)
	assert.Equal(t, StrategyImportGraph, cfg.Themes[0].Strategy)
	assert.Equal(t, []string{"public/assets/css/theme-liteyuki-magipoke.css"}, cfg.Themes[0].Inputs)
	assert.Equal(t, "public/assets/css/theme-snowykami.css", cfg.Themes[1].Output)
	assert.Equal(t, []string{".js", ".mjs", ".cjs"}, cfg.Scripts.Extensions)
	assert.False(t, cfg.Scripts.Minify)
	assert.Contains(t, cfg.External, "*.png")
	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoad_FullFile(t *testing.T) {
	t.Setenv("ASSET_OUT", "public-dist")
	p := writeConfig(t, `
source: web
output: ${ASSET_OUT}
css_dir: styles
workers: 2
themes:
  - name: light
    strategy: concat
    inputs: [styles/base.css, styles/light.css]
    output: css/light.css
  - name: dark
    inputs: [styles/dark.css]
scripts:
  minify: true
  extensions: [.js]
exclude: ["**/.DS_Store"]
precompress: true
`)

	cfg, err := Load(p)
	require.NoError(t, err)
	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, "web", cfg.Source)
	assert.Equal(t, "public-dist", cfg.Output)
	assert.Equal(t, 2, cfg.Workers)
	require.Len(t, cfg.Themes, 2)
	assert.Equal(t, StrategyConcat, cfg.Themes[0].Strategy)
	assert.Equal(t, []string{"styles/base.css", "styles/light.css"}, cfg.Themes[0].Inputs, "input order must be preserved")
	assert.Equal(t, StrategyImportGraph, cfg.Themes[1].Strategy, "strategy defaults to import-graph")
	assert.Equal(t, "styles/dark.css", cfg.Themes[1].Output, "output defaults under css_dir")
	assert.True(t, cfg.Scripts.Minify)
	assert.Equal(t, []string{".js"}, cfg.Scripts.Extensions)
	assert.True(t, cfg.Precompress)
	assert.Equal(t, []string{"**/.DS_Store"}, cfg.Exclude)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "themes: [unterminated"))
	require.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, found, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Len(t, cfg.Themes, 2)

	cfg, found, err = LoadOrDefault(writeConfig(t, "output: out\n"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "out", cfg.Output)
}

func TestNormalizeBundleStrategy(t *testing.T) {
	tests := []struct {
		in   string
		want BundleStrategy
	}{
		{"import-graph", StrategyImportGraph},
		{" Bundle ", StrategyImportGraph},
		{"concat", StrategyConcat},
		{"CONCATENATION", StrategyConcat},
		{"list", StrategyConcat},
		{"magic", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBundleStrategy(tt.in))
		})
	}
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		cfg := Default()
		cfg.Themes = []ThemeConfig{{Name: "a", Strategy: StrategyImportGraph, Inputs: []string{"a.css"}, Output: "a.css"}}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"no themes is allowed", func(c *Config) { c.Themes = []ThemeConfig{} }, ""},
		{"same source and output", func(c *Config) { c.Output = "./src" }, "source and output must differ"},
		{"output inside source", func(c *Config) { c.Output = "src/dist" }, "must not contain each other"},
		{"source inside output", func(c *Config) { c.Source = "dist/src" }, "must not contain each other"},
		{"source is working dir", func(c *Config) { c.Source = "." }, "must not contain each other"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers must not be negative"},
		{"css dir escapes", func(c *Config) { c.CSSDir = "../css" }, "css_dir must be relative"},
		{"empty name", func(c *Config) { c.Themes[0].Name = "" }, "name must be set"},
		{"duplicate name", func(c *Config) {
			c.Themes = append(c.Themes, ThemeConfig{Name: "a", Strategy: StrategyConcat, Inputs: []string{"b.css"}, Output: "b.css"})
		}, "duplicate theme name"},
		{"duplicate output", func(c *Config) {
			c.Themes = append(c.Themes, ThemeConfig{Name: "b", Strategy: StrategyConcat, Inputs: []string{"b.css"}, Output: "./a.css"})
		}, "theme output path used twice"},
		{"unknown strategy", func(c *Config) { c.Themes[0].Strategy = "magic" }, "unknown bundle strategy"},
		{"no inputs", func(c *Config) { c.Themes[0].Inputs = nil }, "theme has no inputs"},
		{"import graph with two inputs", func(c *Config) { c.Themes[0].Inputs = []string{"a.css", "b.css"} }, "exactly one entry file"},
		{"absolute input", func(c *Config) { c.Themes[0].Inputs = []string{"/etc/a.css"} }, "relative to source"},
		{"escaping output", func(c *Config) { c.Themes[0].Output = "../a.css" }, "theme output must be a relative path"},
		{"bad extension", func(c *Config) { c.Scripts.Extensions = []string{"js"} }, "must start with a dot"},
		{"bad exclude glob", func(c *Config) { c.Exclude = []string{"[abc"} }, "invalid exclude pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
			assert.True(t, errors.IsFatal(err))
		})
	}

	assert.Error(t, ValidateConfig(nil))
}

func TestInit(t *testing.T) {
	p := filepath.Join(t.TempDir(), "conf", "assetbuilder.yaml")

	require.NoError(t, Init(p, false))
	cfg, err := Load(p)
	require.NoError(t, err)
	require.NoError(t, ValidateConfig(cfg))
	assert.Len(t, cfg.Themes, 3)
	assert.Equal(t, StrategyConcat, cfg.Themes[2].Strategy)
	assert.True(t, cfg.Scripts.Minify)

	err = Init(p, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	assert.NoError(t, Init(p, true))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ASSETBUILDER_TEST_OUT=from-dotenv\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assetbuilder.yaml"), []byte("output: ${ASSETBUILDER_TEST_OUT}\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("ASSETBUILDER_TEST_OUT") })

	cfg, err := Load("assetbuilder.yaml")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Output)
}

func TestParse_Workers(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want int
	}{
		{"absent uses default", "source: web\n", DefaultWorkers},
		{"explicit zero is sequential", "workers: 0\n", 0},
		{"explicit value", "workers: 8\n", 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Workers)
			require.NoError(t, ValidateConfig(cfg))
		})
	}
}

func TestRootsOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"same", "/w/src", "/w/src/", true},
		{"output inside source", "/w/src", "/w/src/dist", true},
		{"source inside output", "/w/src", "/w", true},
		{"siblings", "/w/src", "/w/dist", false},
		{"shared prefix only", "/w/src", "/w/src-dist", false},
		{"dot-prefixed child", "/w", "/w/..dist", true},
		{"relative pair", "src", "src/dist", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RootsOverlap(tt.a, tt.b))
		})
	}
}
