package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier("public/assets/css", config.DefaultScriptExtensions, nil)

	tests := []struct {
		path string
		want Kind
	}{
		{"public/assets/css/theme-a.css", KindThemeCSS},
		{"public/assets/css/base/reset.css", KindThemeCSS},
		{"public/assets/css/fonts/inter.woff2", KindThemeCSS},
		{`public\assets\css\theme-b.css`, KindThemeCSS},
		{"./public/assets/css/x.css", KindThemeCSS},
		{"public/assets/css-legacy/old.css", KindOther},
		{"public/assets/js/app.js", KindScript},
		{"public/assets/js/app.MJS", KindScript},
		{"lib/server.cjs", KindScript},
		{"public/assets/js/app.js.map", KindOther},
		{"readme.md", KindOther},
		{"public/index.html", KindOther},
		{"styles/extra.css", KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.path))
		})
	}
}

func TestClassifier_Excluded(t *testing.T) {
	c := NewClassifier("css", nil, []string{".DS_Store", "**/*.psd", "drafts/**"})

	assert.True(t, c.Excluded(".DS_Store"))
	assert.True(t, c.Excluded("img/.DS_Store"))
	assert.True(t, c.Excluded("img/raw/logo.psd"))
	assert.True(t, c.Excluded("drafts/a/b.html"))
	assert.False(t, c.Excluded("img/logo.png"))
	assert.False(t, c.Excluded("published/drafts.html"))
}
