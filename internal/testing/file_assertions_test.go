package testing

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
)

func TestFileAssertions_SeedAndSnapshot(t *testing.T) {
	fa := NewFileAssertions(t, memfs.New(), "/src").Seed(map[string]string{
		"b.txt":     "b",
		"dir/a.txt": "a",
	})

	fa.AssertFileExists("dir/a.txt").
		AssertFileNotExists("missing.txt").
		AssertFileContains("b.txt", "b").
		AssertFileEquals("dir/a.txt", "a")

	assert.Equal(t, []string{"b.txt", "dir/a.txt"}, fa.ListFiles())
	assert.Equal(t, map[string]string{"b.txt": "b", "dir/a.txt": "a"}, fa.Snapshot())
}

func TestConfigBuilder(t *testing.T) {
	cfg := NewConfigBuilder(t).
		WithRoots("/in", "/out").
		WithWorkers(3).
		WithTheme("print", config.StrategyConcat, "css/a.css", "css/b.css").
		WithThemeOutput("css/print.css").
		WithScriptMinify(true).
		WithExclude("**/*.map").
		Build()

	assert.Equal(t, "/in", cfg.Source)
	assert.Equal(t, "/out", cfg.Output)
	assert.Equal(t, 3, cfg.Workers)
	assert.Len(t, cfg.Themes, 1)
	assert.Equal(t, "css/print.css", cfg.Themes[0].Output)
	assert.Equal(t, []string{"css/a.css", "css/b.css"}, cfg.Themes[0].Inputs)
	assert.True(t, cfg.Scripts.Minify)
	assert.Equal(t, []string{"**/*.map"}, cfg.Exclude)
}
