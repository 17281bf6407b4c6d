package build

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/assetbuilder/internal/assets"
	"git.home.luguber.info/inful/assetbuilder/internal/config"
	aberrors "git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/fsutil"
	"git.home.luguber.info/inful/assetbuilder/internal/git"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
	"git.home.luguber.info/inful/assetbuilder/internal/observability"
	"git.home.luguber.info/inful/assetbuilder/internal/theme"
	"git.home.luguber.info/inful/assetbuilder/internal/transform"
	"git.home.luguber.info/inful/assetbuilder/internal/util/sets"
)

// DefaultBuildService is the standard implementation of BuildService.
type DefaultBuildService struct {
	fs           billy.Filesystem
	resolvePath  func(string) (string, error)
	cssEngine    func(cfg *config.Config) transform.CSSEngine
	scriptEngine func(cfg *config.Config) transform.ScriptEngine
	revision     func(sourceRoot string) git.Revision
	newBuildID   func() string
	recorder     metrics.Recorder
}

// NewBuildService creates a service on the OS filesystem backed by esbuild.
func NewBuildService() *DefaultBuildService {
	return &DefaultBuildService{
		// Rooted at "/" so every path the service touches is absolute.
		fs:          osfs.New("/"),
		resolvePath: filepath.Abs,
		cssEngine: func(cfg *config.Config) transform.CSSEngine {
			return transform.NewEsbuild(transform.WithExternal(cfg.External))
		},
		scriptEngine: func(*config.Config) transform.ScriptEngine {
			return transform.NewEsbuild().Scripts()
		},
		revision:   git.RevisionOrEmpty,
		newBuildID: func() string { return uuid.NewString() },
		recorder:   metrics.NoopRecorder{},
	}
}

// WithFilesystem runs the build on fs, using source and output paths as given.
func (s *DefaultBuildService) WithFilesystem(fs billy.Filesystem) *DefaultBuildService {
	s.fs = fs
	s.resolvePath = func(p string) (string, error) { return filepath.Clean(p), nil }
	return s
}

// WithCSSEngine replaces the stylesheet transformer.
func (s *DefaultBuildService) WithCSSEngine(e transform.CSSEngine) *DefaultBuildService {
	s.cssEngine = func(*config.Config) transform.CSSEngine { return e }
	return s
}

// WithScriptEngine replaces the script minifier.
func (s *DefaultBuildService) WithScriptEngine(e transform.ScriptEngine) *DefaultBuildService {
	s.scriptEngine = func(*config.Config) transform.ScriptEngine { return e }
	return s
}

// WithRevisionFunc replaces the source revision lookup.
func (s *DefaultBuildService) WithRevisionFunc(fn func(string) git.Revision) *DefaultBuildService {
	s.revision = fn
	return s
}

// WithBuildIDFunc replaces the build id generator.
func (s *DefaultBuildService) WithBuildIDFunc(fn func() string) *DefaultBuildService {
	s.newBuildID = fn
	return s
}

// WithRecorder sets the metrics recorder.
func (s *DefaultBuildService) WithRecorder(r metrics.Recorder) *DefaultBuildService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// run carries the state of one Run call.
type run struct {
	svc       *DefaultBuildService
	cfg       *config.Config
	result    *BuildResult
	succeeded sets.Set[string]
	dirs      *fsutil.DirEnsurer
}

// Run executes the complete build pipeline.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	startTime := time.Now()
	result := &BuildResult{
		BuildID:        s.newBuildID(),
		State:          StateClean,
		Failed:         make(map[string]error),
		StartTime:      startTime,
		StageDurations: make(map[string]time.Duration),
	}
	ctx = observability.WithBuildID(ctx, result.BuildID)

	r := &run{svc: s, cfg: req.Config, result: result, succeeded: sets.New[string](), dirs: fsutil.NewDirEnsurer(s.fs)}

	if req.Config == nil {
		return r.fail(ctx, aberrors.ConfigError("config required").Build())
	}
	if err := config.ValidateConfig(req.Config); err != nil {
		return r.fail(ctx, err)
	}

	var err error
	if result.SourceRoot, err = s.resolvePath(req.Config.Source); err != nil {
		return r.fail(ctx, aberrors.WrapError(err, aberrors.CategoryConfig, "cannot resolve source root").Build())
	}
	if result.OutputRoot, err = s.resolvePath(req.Config.Output); err != nil {
		return r.fail(ctx, aberrors.WrapError(err, aberrors.CategoryConfig, "cannot resolve output root").Build())
	}
	if config.RootsOverlap(result.SourceRoot, result.OutputRoot) {
		return r.fail(ctx, aberrors.ConfigError("source and output must not contain each other").
			WithContext("source", result.SourceRoot).
			WithContext("output", result.OutputRoot).Build())
	}
	result.Revision = s.revision(result.SourceRoot)

	observability.InfoContext(ctx, "Starting asset build",
		logfields.Source(result.SourceRoot),
		logfields.Output(result.OutputRoot),
		logfields.Count(len(req.Config.Themes)),
		logfields.Workers(req.Config.Workers))

	// Clean -> Prepared
	if err := r.stage(ctx, StagePrepare, StatePrepared, r.prepare); err != nil {
		return r.fail(ctx, err)
	}
	// Prepared -> ThemesBundled
	if err := r.stage(ctx, StageThemes, StateThemesBundled, r.bundleThemes); err != nil {
		return r.fail(ctx, err)
	}
	// ThemesBundled -> AssetsCopied
	if err := r.stage(ctx, StageAssets, StateAssetsCopied, r.copyAssets); err != nil {
		return r.fail(ctx, err)
	}

	// AssetsCopied -> Done
	r.finish(StateDone)
	outcome := result.Outcome()
	s.recorder.IncBuildOutcome(outcome)
	s.recorder.ObserveBuildDuration(result.Duration)

	observability.InfoContext(ctx, "Build complete",
		logfields.State(string(result.State)),
		logfields.Count(len(result.Succeeded)),
		slog.Int("themes", result.ThemesBundled()),
		slog.Int("failed", len(result.Failed)),
		slog.Int("warnings", len(result.Warnings)),
		logfields.Size(humanize.Bytes(uint64(max(result.Bytes, 0)))),
		logfields.DurationMS(ms(result.Duration)))
	return result, nil
}

// stage runs fn, records its duration and moves the result to next on success.
func (r *run) stage(ctx context.Context, name string, next State, fn func(context.Context) error) error {
	ctx = observability.WithStage(ctx, name)
	start := time.Now()
	err := fn(ctx)
	d := time.Since(start)
	r.result.StageDurations[name] = d
	r.svc.recorder.ObserveStageDuration(name, d)
	if err != nil {
		r.svc.recorder.IncStageResult(name, metrics.ResultFatal)
		return err
	}
	r.result.State = next
	r.svc.recorder.IncStageResult(name, metrics.ResultSuccess)
	observability.InfoContext(ctx, "Stage complete",
		logfields.State(string(next)),
		logfields.DurationMS(ms(d)))
	return nil
}

func (r *run) fail(ctx context.Context, err error) (*BuildResult, error) {
	r.finish(StateFailed)
	r.svc.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
	r.svc.recorder.ObserveBuildDuration(r.result.Duration)
	observability.ErrorContext(ctx, "Build failed", logfields.Error(err))
	return r.result, err
}

func (r *run) finish(state State) {
	r.result.State = state
	r.result.Succeeded = sets.Sorted(r.succeeded)
	r.result.EndTime = time.Now()
	r.result.Duration = r.result.EndTime.Sub(r.result.StartTime)
}

// prepare resets the destination root. Nothing else starts before it returns.
func (r *run) prepare(ctx context.Context) error {
	observability.InfoContext(ctx, "Resetting destination root", logfields.Path(r.result.OutputRoot))
	return fsutil.Reset(r.svc.fs, r.result.OutputRoot)
}

func (r *run) bundleThemes(ctx context.Context) error {
	if len(r.cfg.Themes) == 0 {
		observability.InfoContext(ctx, "No themes configured")
		return nil
	}

	bundler := theme.NewBundler(r.svc.fs, r.svc.cssEngine(r.cfg), r.result.SourceRoot, r.result.OutputRoot).
		WithDirEnsurer(r.dirs).
		WithRecorder(r.svc.recorder)
	results := bundler.BundleAll(ctx, r.cfg.Themes, r.cfg.Workers)

	var pre *assets.Precompressor
	if r.cfg.Precompress {
		pre = assets.NewPrecompressor(r.svc.fs)
	}

	for _, tr := range results {
		r.result.Themes = append(r.result.Themes, tr)
		r.result.Warnings = append(r.result.Warnings, tr.Warnings...)
		if !tr.Written() {
			r.result.Failed[tr.Output] = tr.Err
			continue
		}
		r.succeeded.Add(tr.Output)
		r.result.Bytes += tr.Size

		if pre != nil && pre.Applies(tr.Output) {
			dest := filepath.Join(r.result.OutputRoot, filepath.FromSlash(tr.Output))
			n, err := pre.CompressFile(dest)
			if err != nil {
				r.result.Warnings = append(r.result.Warnings, tr.Output+": precompression failed: "+err.Error())
				continue
			}
			r.succeeded.Add(tr.Output + ".br")
			r.result.Bytes += n
		}
	}
	return nil
}

func (r *run) copyAssets(ctx context.Context) error {
	classifier := assets.NewClassifier(r.cfg.CSSDir, r.cfg.Scripts.Extensions, r.cfg.Exclude)

	reserved := make([]string, 0, 2*len(r.cfg.Themes))
	for _, t := range r.cfg.Themes {
		reserved = append(reserved, t.Output)
		if r.cfg.Precompress {
			reserved = append(reserved, t.Output+".br")
		}
	}

	copier := assets.NewCopier(r.svc.fs, classifier, r.result.SourceRoot, r.result.OutputRoot).
		WithWorkers(r.cfg.Workers).
		WithReserved(reserved...).
		WithDirEnsurer(r.dirs).
		WithRecorder(r.svc.recorder)
	if r.cfg.Scripts.Minify {
		copier = copier.WithScriptTransform(assets.MinifyWithFallback{Engine: r.svc.scriptEngine(r.cfg)})
	}
	if r.cfg.Precompress {
		copier = copier.WithPrecompressor(assets.NewPrecompressor(r.svc.fs))
	}

	res, err := copier.CopyAll(ctx)
	if err != nil {
		return err
	}

	for _, p := range res.Succeeded {
		r.succeeded.Add(p)
	}
	failed := make([]string, 0, len(res.Failed))
	for p, ferr := range res.Failed {
		r.result.Failed[p] = ferr
		failed = append(failed, p)
	}
	sort.Strings(failed)
	r.result.Warnings = append(r.result.Warnings, res.Warnings...)
	r.result.Excluded = res.Excluded
	r.result.Bytes += res.Bytes

	observability.InfoContext(ctx, "Assets copied",
		logfields.Count(len(res.Succeeded)),
		slog.Int("failed", len(failed)),
		slog.Int("excluded", res.Excluded),
		slog.Int("theme_sources", res.ThemeCSS))
	for _, p := range failed {
		observability.WarnContext(ctx, "Asset not copied", logfields.Path(p), logfields.Error(res.Failed[p]))
	}
	return nil
}

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }
