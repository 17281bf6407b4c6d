package assets

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"git.home.luguber.info/inful/assetbuilder/internal/util/sets"
)

// Kind is the handling class of a source file.
type Kind string

const (
	KindThemeCSS Kind = "theme-css" // handled only by the theme bundler
	KindScript   Kind = "script"
	KindOther    Kind = "other"
)

// Classifier maps source-relative paths to a Kind. It is pure and safe for
// concurrent use.
type Classifier struct {
	cssDir  string
	scripts sets.Set[string]
	exclude []string
}

// NewClassifier returns a classifier for the reserved theme directory cssDir,
// the given script extensions (with leading dot) and exclude globs.
func NewClassifier(cssDir string, scriptExts, exclude []string) *Classifier {
	exts := sets.New[string]()
	for _, e := range scriptExts {
		exts.Add(strings.ToLower(e))
	}
	return &Classifier{
		cssDir:  normalize(cssDir),
		scripts: exts,
		exclude: append([]string(nil), exclude...),
	}
}

// Classify returns the Kind of rel. Paths inside the theme directory are
// KindThemeCSS whatever their extension.
func (c *Classifier) Classify(rel string) Kind {
	p := normalize(rel)
	if c.cssDir != "" && c.cssDir != "." && (p == c.cssDir || strings.HasPrefix(p, c.cssDir+"/")) {
		return KindThemeCSS
	}
	if c.scripts.Has(strings.ToLower(path.Ext(p))) {
		return KindScript
	}
	return KindOther
}

// Excluded reports whether rel matches an exclude glob. Patterns without a
// slash match the base name at any depth.
func (c *Classifier) Excluded(rel string) bool {
	p := normalize(rel)
	for _, pattern := range c.exclude {
		subject := p
		if !strings.Contains(pattern, "/") {
			subject = path.Base(p)
		}
		if ok, _ := doublestar.Match(pattern, subject); ok {
			return true
		}
	}
	return false
}

func normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(path.Clean(p), "./")
	return p
}
