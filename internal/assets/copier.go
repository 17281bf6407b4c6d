package assets

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/assetbuilder/internal/fsutil"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
	"git.home.luguber.info/inful/assetbuilder/internal/observability"
	"git.home.luguber.info/inful/assetbuilder/internal/util/sets"
)

// Result accumulates the outcome of CopyAll.
type Result struct {
	Succeeded []string         // destination-relative paths, sorted
	Failed    map[string]error // source-relative path -> error
	Warnings  []string         // in source order
	Excluded  int              // matched an exclude glob
	ThemeCSS  int              // left to the theme bundler
	Reserved  int              // destination taken by a theme bundle
	Bytes     int64
}

// Copier copies every non-theme source file into the destination tree.
type Copier struct {
	fs          billy.Filesystem
	classifier  *Classifier
	sourceRoot  string
	outputRoot  string
	scripts     Passthrough
	other       Passthrough
	dirs        *fsutil.DirEnsurer
	recorder    metrics.Recorder
	workers     int
	reserved    sets.Set[string]
	precompress *Precompressor
}

// NewCopier returns a Copier that copies scripts verbatim until WithScriptTransform
// says otherwise.
func NewCopier(fs billy.Filesystem, classifier *Classifier, sourceRoot, outputRoot string) *Copier {
	return &Copier{
		fs:         fs,
		classifier: classifier,
		sourceRoot: sourceRoot,
		outputRoot: outputRoot,
		scripts:    Identity{},
		other:      Identity{},
		dirs:       fsutil.NewDirEnsurer(fs),
		recorder:   metrics.NoopRecorder{},
		workers:    1,
		reserved:   sets.New[string](),
	}
}

// WithScriptTransform sets the passthrough used for KindScript files.
func (c *Copier) WithScriptTransform(p Passthrough) *Copier {
	if p != nil {
		c.scripts = p
	}
	return c
}

// WithWorkers bounds the number of files processed at once.
func (c *Copier) WithWorkers(n int) *Copier {
	if n > 0 {
		c.workers = n
	}
	return c
}

// WithReserved marks destination-relative paths owned by theme bundles.
func (c *Copier) WithReserved(paths ...string) *Copier {
	for _, p := range paths {
		c.reserved.Add(normalize(p))
	}
	return c
}

// WithDirEnsurer shares directory bookkeeping with other writers.
func (c *Copier) WithDirEnsurer(d *fsutil.DirEnsurer) *Copier {
	c.dirs = d
	return c
}

// WithRecorder sets the metrics recorder.
func (c *Copier) WithRecorder(r metrics.Recorder) *Copier {
	if r != nil {
		c.recorder = r
	}
	return c
}

// WithPrecompressor enables .br siblings for text outputs.
func (c *Copier) WithPrecompressor(p *Precompressor) *Copier {
	c.precompress = p
	return c
}

type fileOutcome struct {
	dest     []string
	warnings []string
	err      error
	bytes    int64
}

// CopyAll enumerates the source root and processes every file that is not a
// theme stylesheet. The error is non-nil only when enumeration fails.
func (c *Copier) CopyAll(ctx context.Context) (*Result, error) {
	files, err := fsutil.EnumerateFiles(c.fs, c.sourceRoot)
	if err != nil {
		return nil, err
	}

	res := &Result{Failed: make(map[string]error)}
	present := sets.New(files...)
	jobs := make([]SourceFile, 0, len(files))
	compress := make([]bool, 0, len(files))
	for _, rel := range files {
		kind := c.classifier.Classify(rel)
		switch {
		case kind == KindThemeCSS:
			res.ThemeCSS++
			continue
		case c.classifier.Excluded(rel):
			res.Excluded++
			c.recorder.IncFileResult(string(kind), metrics.ResultSkipped)
			observability.DebugContext(ctx, "Excluded", logfields.Path(rel))
			continue
		case c.reserved.Has(normalize(rel)):
			res.Reserved++
			msg := fmt.Sprintf("%s: destination is a theme bundle, not copied", rel)
			res.Warnings = append(res.Warnings, msg)
			c.recorder.IncFileResult(string(kind), metrics.ResultSkipped)
			observability.WarnContext(ctx, "Passthrough file shadowed by theme bundle", logfields.Path(rel))
			continue
		}
		jobs = append(jobs, SourceFile{
			RelPath: rel,
			AbsPath: filepath.Join(c.sourceRoot, filepath.FromSlash(rel)),
			Kind:    kind,
		})
		// a .br shipped in the source owns its destination
		compress = append(compress, c.precompress != nil && c.precompress.Applies(rel) && !present.Has(rel+".br"))
	}

	observability.InfoContext(ctx, "Copying assets",
		logfields.Count(len(jobs)),
		logfields.Workers(c.workers))

	outcomes := make([]fileOutcome, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, f := range jobs {
		g.Go(func() error {
			outcomes[i] = c.copyOne(gctx, f, compress[i])
			return nil
		})
	}
	_ = g.Wait()

	succeeded := sets.New[string]()
	for i, o := range outcomes {
		res.Warnings = append(res.Warnings, o.warnings...)
		if o.err != nil {
			res.Failed[jobs[i].RelPath] = o.err
			continue
		}
		for _, d := range o.dest {
			succeeded.Add(d)
		}
		res.Bytes += o.bytes
	}
	res.Succeeded = sets.Sorted(succeeded)
	return res, nil
}

func (c *Copier) copyOne(ctx context.Context, f SourceFile, compress bool) fileOutcome {
	if err := ctx.Err(); err != nil {
		return fileOutcome{err: err}
	}

	dest := filepath.Join(c.outputRoot, filepath.FromSlash(f.RelPath))
	if err := c.dirs.EnsureParent(dest); err != nil {
		c.fail(ctx, f, err)
		return fileOutcome{err: err}
	}

	p := c.other
	if f.Kind == KindScript {
		p = c.scripts
	}
	w, err := p.Process(ctx, c.fs, f, dest)
	if err != nil {
		c.fail(ctx, f, err)
		return fileOutcome{err: err}
	}

	out := fileOutcome{dest: []string{path.Clean(f.RelPath)}, bytes: w.Bytes}
	c.recorder.IncFileResult(string(f.Kind), w.Result)
	c.recorder.AddBytesWritten(string(f.Kind), w.Bytes)
	if w.Warning != "" {
		out.warnings = append(out.warnings, w.Warning)
		observability.WarnContext(ctx, "Script copied without minification",
			logfields.Path(f.RelPath), slog.String("reason", w.Warning))
	} else {
		observability.DebugContext(ctx, "Copied",
			logfields.Path(f.RelPath), logfields.Kind(string(f.Kind)), logfields.Bytes(w.Bytes))
	}

	if compress {
		var n int64
		if w.Data != nil {
			n, err = c.precompress.Compress(dest, w.Data)
		} else {
			n, err = c.precompress.CompressFile(dest)
		}
		if err != nil {
			out.warnings = append(out.warnings, fmt.Sprintf("%s: precompression failed: %v", f.RelPath, err))
			observability.WarnContext(ctx, "Precompression failed", logfields.Path(f.RelPath), logfields.Error(err))
		} else {
			out.dest = append(out.dest, path.Clean(f.RelPath)+".br")
			out.bytes += n
		}
	}
	return out
}

func (c *Copier) fail(ctx context.Context, f SourceFile, err error) {
	c.recorder.IncFileResult(string(f.Kind), metrics.ResultFailed)
	observability.ErrorContext(ctx, "Failed to copy asset", logfields.Path(f.RelPath), logfields.Error(err))
}
