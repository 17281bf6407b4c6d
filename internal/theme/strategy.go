package theme

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/fsutil"
	"git.home.luguber.info/inful/assetbuilder/internal/transform"
)

// assembly is what a strategy hands back to the bundler.
type assembly struct {
	out      *transform.Output
	inputs   []string
	warnings []string
}

// Strategy turns a theme's inputs into one minified stylesheet.
type Strategy interface {
	Name() config.BundleStrategy
	assemble(ctx context.Context, b *Bundler, tc config.ThemeConfig) (*assembly, error)
}

// StrategyFor returns the implementation of s, or nil for an unknown strategy.
func StrategyFor(s config.BundleStrategy) Strategy {
	switch s {
	case config.StrategyImportGraph:
		return importGraph{}
	case config.StrategyConcat:
		return concatenation{}
	default:
		return nil
	}
}

// importGraph hands the single entry file to the engine, which follows @import.
type importGraph struct{}

func (importGraph) Name() config.BundleStrategy { return config.StrategyImportGraph }

func (importGraph) assemble(ctx context.Context, b *Bundler, tc config.ThemeConfig) (*assembly, error) {
	entry := tc.Inputs[0]
	entryPath := b.sourcePath(entry)
	ok, err := fsutil.Exists(b.fs, entryPath)
	if err != nil {
		return nil, errors.FileSystemError("failed to stat theme entry").
			WithCause(err).WithContext("theme", tc.Name).WithContext("path", entry).Build()
	}
	if !ok {
		return nil, errors.ThemeError("theme entry file not found").
			WithContext("theme", tc.Name).WithContext("path", entry).Build()
	}

	out, err := b.css.Bundle(ctx, b.fs, entryPath)
	if err != nil {
		return nil, transformFailure(tc.Name, err)
	}
	return &assembly{out: out, inputs: []string{entry}}, nil
}

// concatenation reads the listed files in order, tags each with its source in a
// legal comment (kept by the minifier) and minifies the joined text once.
type concatenation struct{}

func (concatenation) Name() config.BundleStrategy { return config.StrategyConcat }

func (concatenation) assemble(ctx context.Context, b *Bundler, tc config.ThemeConfig) (*assembly, error) {
	var (
		buf      bytes.Buffer
		used     []string
		warnings []string
	)
	for _, in := range tc.Inputs {
		p := b.sourcePath(in)
		ok, err := fsutil.Exists(b.fs, p)
		if err != nil {
			return nil, errors.FileSystemError("failed to stat theme input").
				WithCause(err).WithContext("theme", tc.Name).WithContext("path", in).Build()
		}
		if !ok {
			warnings = append(warnings, fmt.Sprintf("theme %s: input %s not found, skipped", tc.Name, in))
			continue
		}
		data, err := fsutil.ReadFile(b.fs, p)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "/*! source: %s */\n", in)
		buf.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			buf.WriteByte('\n')
		}
		used = append(used, in)
	}

	if len(used) == 0 {
		return nil, errors.ThemeError("none of the theme inputs exist").
			WithContext("theme", tc.Name).
			WithContext("inputs", len(tc.Inputs)).Build()
	}

	out, err := b.css.Minify(ctx, buf.Bytes(), tc.Name+".css")
	if err != nil {
		return nil, transformFailure(tc.Name, err)
	}
	return &assembly{out: out, inputs: used, warnings: warnings}, nil
}

func transformFailure(theme string, err error) error {
	builder := errors.TransformFailure("css transform failed").
		WithCause(err).
		WithContext("theme", theme)
	var terr *transform.Error
	if errors.As(err, &terr) {
		builder = builder.WithContext("messages", terr.Messages)
	}
	return builder.Build()
}

func (b *Bundler) sourcePath(rel string) string {
	return filepath.Join(b.sourceRoot, filepath.FromSlash(rel))
}
