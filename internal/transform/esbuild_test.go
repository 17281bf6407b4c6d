package transform

import (
	"context"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
)

func TestEsbuild_Minify(t *testing.T) {
	out, err := NewEsbuild().Minify(context.Background(), []byte(".x {\n  color: red;\n}\n"), "theme-a.css")
	require.NoError(t, err)
	assert.Contains(t, string(out.Code), ".x{color:red}")
	assert.Empty(t, out.Warnings)
}

func TestEsbuild_MinifyScript(t *testing.T) {
	src := "function greet(name) {\n  var message = 'hello ' + name;\n  return message;\n}\n"
	out, err := NewEsbuild().Scripts().Minify(context.Background(), []byte(src), "app.js")
	require.NoError(t, err)
	assert.Contains(t, string(out.Code), "function greet(")
	assert.Less(t, len(out.Code), len(src))
}

func TestEsbuild_MinifyScript_SyntaxError(t *testing.T) {
	_, err := NewEsbuild().Scripts().Minify(context.Background(), []byte("function ( {"), "broken.js")
	require.Error(t, err)

	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "broken.js", terr.Source)
	require.NotEmpty(t, terr.Messages)
	require.NotNil(t, terr.Messages[0].Location)
	assert.Equal(t, 1, terr.Messages[0].Location.Line)
	assert.Contains(t, err.Error(), "broken.js")
}

func TestEsbuild_Bundle_FollowsImportsInOrder(t *testing.T) {
	fs := memfs.New()
	files := map[string]string{
		"src/css/theme.css":        "@import \"./base/reset.css\";\n@import \"parts/colors.css\";\n.theme { margin: 0 }\n",
		"src/css/base/reset.css":   "* { box-sizing: border-box }\n",
		"src/css/parts/colors.css": ".a { color: red; background: url(../img/bg.png) }\n",
	}
	for p, c := range files {
		require.NoError(t, util.WriteFile(fs, p, []byte(c), 0o644))
	}

	engine := NewEsbuild(WithExternal(config.DefaultExternal))
	out, err := engine.Bundle(context.Background(), fs, "src/css/theme.css")
	require.NoError(t, err)

	code := string(out.Code)
	reset := indexOf(t, code, "box-sizing:border-box")
	colors := indexOf(t, code, "color:red")
	theme := indexOf(t, code, ".theme{")
	assert.Less(t, reset, colors)
	assert.Less(t, colors, theme)
	assert.Contains(t, code, "bg.png", "url references stay external")
}

func TestEsbuild_Bundle_MissingImport(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "src/theme.css", []byte("@import \"./gone.css\";\n.a{color:red}"), 0o644))

	_, err := NewEsbuild().Bundle(context.Background(), fs, "src/theme.css")
	require.Error(t, err)
	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "bundle", terr.Op)
	assert.NotEmpty(t, terr.Messages)
}

func TestEsbuild_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEsbuild().Minify(ctx, []byte(".a{}"), "a.css")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsExternal(t *testing.T) {
	e := NewEsbuild(WithExternal(config.DefaultExternal))
	tests := []struct {
		ref  string
		want bool
	}{
		{"../img/logo.png", true},
		{"icons/a.svg?v=2", true},
		{"https://fonts.example.com/css2?family=Inter", true},
		{"http://cdn.example.com/x.css", true},
		{"data:image/png;base64,AAAA", true},
		{"//cdn.example.com/x.css", true},
		{"fonts/inter.woff2", true},
		{"./base.css", false},
		{"parts/colors.css", false},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, e.isExternal(tt.ref))
		})
	}
}

func TestResolveImport(t *testing.T) {
	assert.Equal(t, "src/css/base.css", resolveImport("src/css/theme.css", "./base.css"))
	assert.Equal(t, "src/img/a.css", resolveImport("src/css/theme.css", "../img/a.css"))
	assert.Equal(t, "/abs/x.css", resolveImport("src/css/theme.css", "/abs/x.css"))
}

func TestError_Message(t *testing.T) {
	err := &Error{Op: "bundle", Source: "theme.css", Messages: []Message{
		{Text: "Expected \"}\"", Location: &Location{File: "theme.css", Line: 3, Column: 4}},
		{Text: "second"},
	}}
	assert.Equal(t, "bundle theme.css failed with 2 errors: theme.css:3:4: Expected \"}\"", err.Error())
}

func indexOf(t *testing.T, s, sub string) int {
	t.Helper()
	i := strings.Index(s, sub)
	require.GreaterOrEqual(t, i, 0, "%q not found in %q", sub, s)
	return i
}
