package assets

import (
	"context"
	"fmt"

	"github.com/go-git/go-billy/v5"

	"git.home.luguber.info/inful/assetbuilder/internal/fsutil"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
	"git.home.luguber.info/inful/assetbuilder/internal/transform"
)

// SourceFile is one enumerated file.
type SourceFile struct {
	RelPath string // slash separated, relative to the source root
	AbsPath string // path on the filesystem
	Kind    Kind
}

// Written is what a passthrough transform produced for one file.
type Written struct {
	Bytes   int64
	Data    []byte // nil when the file was streamed
	Warning string
	Result  metrics.ResultLabel
}

// Passthrough writes one source file to dest. dest's directory already exists.
type Passthrough interface {
	Name() string
	Process(ctx context.Context, fs billy.Filesystem, f SourceFile, dest string) (Written, error)
}

// Identity copies bytes verbatim.
type Identity struct{}

func (Identity) Name() string { return "identity" }

func (Identity) Process(_ context.Context, fs billy.Filesystem, f SourceFile, dest string) (Written, error) {
	n, err := fsutil.CopyFile(fs, f.AbsPath, dest)
	if err != nil {
		return Written{}, err
	}
	return Written{Bytes: n, Result: metrics.ResultSuccess}, nil
}

// MinifyWithFallback minifies with Engine and falls back to a verbatim copy
// when the engine fails or returns no code. The file is always written.
type MinifyWithFallback struct {
	Engine transform.ScriptEngine
}

func (MinifyWithFallback) Name() string { return "minify" }

func (m MinifyWithFallback) Process(ctx context.Context, fs billy.Filesystem, f SourceFile, dest string) (Written, error) {
	src, err := fsutil.ReadFile(fs, f.AbsPath)
	if err != nil {
		return Written{}, err
	}

	out, minErr := m.Engine.Minify(ctx, src, f.RelPath)
	if minErr == nil && (out == nil || len(out.Code) == 0) {
		minErr = fmt.Errorf("minifier returned no code")
	}
	if minErr != nil {
		if err := fsutil.WriteFile(fs, dest, src); err != nil {
			return Written{}, err
		}
		return Written{
			Bytes:   int64(len(src)),
			Data:    src,
			Warning: fmt.Sprintf("%s: minification failed, copied verbatim: %v", f.RelPath, minErr),
			Result:  metrics.ResultFallback,
		}, nil
	}

	if err := fsutil.WriteFile(fs, dest, out.Code); err != nil {
		return Written{}, err
	}
	return Written{Bytes: int64(len(out.Code)), Data: out.Code, Result: metrics.ResultSuccess}, nil
}
