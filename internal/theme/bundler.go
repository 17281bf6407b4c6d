package theme

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-git/go-billy/v5"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/fsutil"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
	"git.home.luguber.info/inful/assetbuilder/internal/observability"
	"git.home.luguber.info/inful/assetbuilder/internal/transform"
)

// Banner returns the comment line prefixed to every bundle.
func Banner(name string) string {
	return fmt.Sprintf("/* %s theme bundle */\n", name)
}

// Bundler builds theme bundles from sourceRoot into outputRoot on one filesystem.
type Bundler struct {
	fs         billy.Filesystem
	css        transform.CSSEngine
	sourceRoot string
	outputRoot string
	dirs       *fsutil.DirEnsurer
	recorder   metrics.Recorder
}

// NewBundler returns a Bundler. The destination root must already exist.
func NewBundler(fs billy.Filesystem, css transform.CSSEngine, sourceRoot, outputRoot string) *Bundler {
	return &Bundler{
		fs:         fs,
		css:        css,
		sourceRoot: sourceRoot,
		outputRoot: outputRoot,
		dirs:       fsutil.NewDirEnsurer(fs),
		recorder:   metrics.NoopRecorder{},
	}
}

// WithDirEnsurer shares directory bookkeeping with other writers of the same tree.
func (b *Bundler) WithDirEnsurer(d *fsutil.DirEnsurer) *Bundler {
	b.dirs = d
	return b
}

// WithRecorder sets the metrics recorder.
func (b *Bundler) WithRecorder(r metrics.Recorder) *Bundler {
	if r != nil {
		b.recorder = r
	}
	return b
}

// BundleTheme builds one theme. The returned Result is always populated; err is
// non-nil when the theme was skipped or failed, and is also stored in Result.Err.
// An empty bundle is a warning, not an error.
func (b *Bundler) BundleTheme(ctx context.Context, tc config.ThemeConfig) (*Result, error) {
	start := time.Now()
	res := &Result{
		Name:     tc.Name,
		Strategy: tc.Strategy,
		Output:   path.Clean(filepath.ToSlash(tc.Output)),
	}
	fail := func(status Status, err error) (*Result, error) {
		res.Status = status
		res.Err = err
		res.Duration = time.Since(start)
		label := metrics.ResultFailed
		if status == StatusSkipped {
			label = metrics.ResultSkipped
		}
		b.recorder.IncThemeResult(tc.Name, label)
		b.logFailure(ctx, tc, err)
		return res, err
	}

	strategy := StrategyFor(tc.Strategy)
	if strategy == nil {
		return fail(StatusFailed, errors.ThemeError("unknown bundle strategy").
			WithContext("theme", tc.Name).
			WithContext("strategy", string(tc.Strategy)).Build())
	}
	if len(tc.Inputs) == 0 {
		return fail(StatusSkipped, errors.ThemeError("theme has no inputs").
			WithContext("theme", tc.Name).Build())
	}

	observability.InfoContext(ctx, "Bundling theme",
		logfields.Theme(tc.Name),
		logfields.Strategy(string(tc.Strategy)),
		logfields.Output(res.Output))

	asm, err := strategy.assemble(ctx, b, tc)
	if err != nil {
		status := StatusFailed
		if errors.HasCategory(err, errors.CategoryTheme) {
			status = StatusSkipped
		}
		return fail(status, err)
	}
	res.Inputs = asm.inputs
	res.Warnings = append(res.Warnings, asm.warnings...)
	for _, w := range asm.out.Warnings {
		res.Warnings = append(res.Warnings, fmt.Sprintf("theme %s: %s", tc.Name, w.String()))
	}
	for _, w := range res.Warnings {
		observability.WarnContext(ctx, "Theme warning", logfields.Theme(tc.Name), slog.String("warning", w))
	}

	dest := filepath.Join(b.outputRoot, filepath.FromSlash(res.Output))
	if err := b.dirs.EnsureParent(dest); err != nil {
		return fail(StatusFailed, err)
	}
	data := append([]byte(Banner(tc.Name)), asm.out.Code...)
	if err := fsutil.WriteFile(b.fs, dest, data); err != nil {
		return fail(StatusFailed, err)
	}

	res.Duration = time.Since(start)
	return b.verify(ctx, res, dest, len(asm.out.Code))
}

// verify checks the written bundle. A missing file is a failure; no CSS after
// the banner is reported as an empty output warning.
func (b *Bundler) verify(ctx context.Context, res *Result, dest string, codeLen int) (*Result, error) {
	size, err := fsutil.FileSize(b.fs, dest)
	if err != nil || size < 0 {
		res.Status = StatusFailed
		res.Err = errors.FileSystemError("theme output was not created").
			WithCause(err).
			WithContext("theme", res.Name).
			WithContext("path", res.Output).Build()
		b.recorder.IncThemeResult(res.Name, metrics.ResultFailed)
		observability.ErrorContext(ctx, "Theme output was not created",
			logfields.Theme(res.Name), logfields.Output(res.Output))
		return res, res.Err
	}
	res.Size = size
	b.recorder.AddBytesWritten("theme", size)

	if size == 0 || codeLen == 0 {
		res.Status = StatusEmpty
		w := errors.NewError(errors.CategoryBuild, "theme output is empty").
			WithContext("theme", res.Name).
			WithContext("path", res.Output).
			Warning().Build()
		res.Warnings = append(res.Warnings, w.Error())
		b.recorder.IncThemeResult(res.Name, metrics.ResultWarning)
		observability.WarnContext(ctx, "Theme output is empty",
			logfields.Theme(res.Name), logfields.Output(res.Output))
		return res, nil
	}

	res.Status = StatusBundled
	b.recorder.IncThemeResult(res.Name, metrics.ResultSuccess)
	observability.InfoContext(ctx, "Theme bundled",
		logfields.Theme(res.Name),
		logfields.Output(res.Output),
		logfields.Size(humanize.Bytes(uint64(size))),
		logfields.DurationMS(float64(res.Duration.Microseconds())/1000))
	return res, nil
}

func (b *Bundler) logFailure(ctx context.Context, tc config.ThemeConfig, err error) {
	observability.ErrorContext(ctx, "Theme not bundled",
		logfields.Theme(tc.Name),
		logfields.Strategy(string(tc.Strategy)),
		logfields.Error(err))

	var terr *transform.Error
	if !errors.As(err, &terr) {
		return
	}
	for _, m := range terr.Messages {
		attrs := []slog.Attr{logfields.Theme(tc.Name), slog.String("message", m.Text)}
		if m.Location != nil {
			attrs = append(attrs,
				logfields.Path(m.Location.File),
				slog.Int("line", m.Location.Line),
				slog.Int("column", m.Location.Column))
		}
		for _, n := range m.Notes {
			attrs = append(attrs, slog.String("note", n))
		}
		observability.ErrorContext(ctx, "CSS transform error", attrs...)
	}
}

// BundleAll bundles every theme on at most workers goroutines. Results are
// returned in configuration order whatever the scheduling.
func (b *Bundler) BundleAll(ctx context.Context, themes []config.ThemeConfig, workers int) []*Result {
	results := make([]*Result, len(themes))
	g, gctx := errgroup.WithContext(ctx)
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)
	for i, tc := range themes {
		g.Go(func() error {
			res, _ := b.BundleTheme(gctx, tc)
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}
