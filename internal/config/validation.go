package config

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
)

// ValidateConfig validates the complete configuration. Every failure is a fatal
// CategoryConfig error: a build never starts on a configuration it cannot honour.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.ConfigError("config required").Build()
	}
	validator := newConfigurationValidator(cfg)
	return validator.validate()
}

// configurationValidator coordinates validation across configuration domains.
type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	if err := cv.validatePaths(); err != nil {
		return err
	}
	if err := cv.validateThemes(); err != nil {
		return err
	}
	if err := cv.validateScripts(); err != nil {
		return err
	}
	return cv.validateGlobs()
}

func (cv *configurationValidator) validatePaths() error {
	c := cv.config
	if strings.TrimSpace(c.Source) == "" {
		return errors.ConfigError("source must be set").Build()
	}
	if strings.TrimSpace(c.Output) == "" {
		return errors.ConfigError("output must be set").Build()
	}
	if cleanSlash(c.Source) == cleanSlash(c.Output) {
		return errors.ConfigError("source and output must differ").
			WithContext("path", c.Source).Build()
	}
	if nested(c.Source, c.Output) || nested(c.Output, c.Source) {
		return errors.ConfigError("source and output must not contain each other").
			WithContext("source", c.Source).
			WithContext("output", c.Output).Build()
	}
	if isAbsOrEscaping(c.CSSDir) {
		return errors.ConfigError("css_dir must be relative to source").
			WithContext("css_dir", c.CSSDir).Build()
	}
	if c.Workers < 0 {
		return errors.ConfigError("workers must not be negative").
			WithContext("workers", c.Workers).Build()
	}
	return nil
}

func (cv *configurationValidator) validateThemes() error {
	names := make(map[string]struct{}, len(cv.config.Themes))
	outputs := make(map[string]string, len(cv.config.Themes))

	for i, t := range cv.config.Themes {
		if strings.TrimSpace(t.Name) == "" {
			return errors.ConfigError(fmt.Sprintf("themes[%d]: name must be set", i)).Build()
		}
		if _, dup := names[t.Name]; dup {
			return errors.ConfigError("duplicate theme name").WithContext("theme", t.Name).Build()
		}
		names[t.Name] = struct{}{}

		if !t.Strategy.Valid() {
			return errors.ConfigError("unknown bundle strategy").
				WithContext("theme", t.Name).
				WithContext("strategy", string(t.Strategy)).
				WithContext("valid", BundleStrategyValues()).Build()
		}
		if len(t.Inputs) == 0 {
			return errors.ConfigError("theme has no inputs").WithContext("theme", t.Name).Build()
		}
		if t.Strategy == StrategyImportGraph && len(t.Inputs) != 1 {
			return errors.ConfigError("import-graph strategy takes exactly one entry file").
				WithContext("theme", t.Name).
				WithContext("inputs", len(t.Inputs)).Build()
		}
		for _, in := range t.Inputs {
			if isAbsOrEscaping(in) {
				return errors.ConfigError("theme input must be relative to source").
					WithContext("theme", t.Name).
					WithContext("input", in).Build()
			}
		}

		if strings.TrimSpace(t.Output) == "" || isAbsOrEscaping(t.Output) {
			return errors.ConfigError("theme output must be a relative path").
				WithContext("theme", t.Name).
				WithContext("output", t.Output).Build()
		}
		out := cleanSlash(t.Output)
		if other, dup := outputs[out]; dup {
			return errors.ConfigError("theme output path used twice").
				WithContext("theme", t.Name).
				WithContext("other_theme", other).
				WithContext("output", out).Build()
		}
		outputs[out] = t.Name
	}
	return nil
}

func (cv *configurationValidator) validateScripts() error {
	for _, ext := range cv.config.Scripts.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return errors.ConfigError("script extension must start with a dot").
				WithContext("extension", ext).Build()
		}
	}
	return nil
}

func (cv *configurationValidator) validateGlobs() error {
	for _, g := range cv.config.Exclude {
		if !doublestar.ValidatePattern(g) {
			return errors.ConfigError("invalid exclude pattern").WithContext("pattern", g).Build()
		}
	}
	for _, g := range cv.config.External {
		if !doublestar.ValidatePattern(g) {
			return errors.ConfigError("invalid external pattern").WithContext("pattern", g).Build()
		}
	}
	return nil
}

func cleanSlash(p string) string {
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

// RootsOverlap reports whether a and b name the same directory or one contains
// the other. Both must be absolute, or relative to the same base; callers
// resolve them first.
func RootsOverlap(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	return a == b || within(a, b) || within(b, a)
}

func within(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil || rel == "." {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// nested reports whether child lies inside parent. Paths are compared as given,
// so a relative and an absolute spelling of the same directory are not caught
// here; the build service repeats the check on resolved roots.
func nested(parent, child string) bool {
	p, c := cleanSlash(parent), cleanSlash(child)
	if p == "." {
		return !path.IsAbs(c) && c != ".." && !strings.HasPrefix(c, "../")
	}
	return strings.HasPrefix(c, p+"/")
}

func isAbsOrEscaping(p string) bool {
	c := cleanSlash(p)
	return path.IsAbs(c) || c == ".." || strings.HasPrefix(c, "../")
}
