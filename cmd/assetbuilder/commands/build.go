package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/assetbuilder/internal/build"
	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Source          string `short:"s" help:"Source root (overrides config)" type:"path"`
	Output          string `short:"o" help:"Destination root, reset on every build (overrides config)" type:"path"`
	Workers         int    `short:"w" help:"Parallel workers; 0 uses the configured value"`
	MinifyScripts   bool   `name:"minify-scripts" help:"Minify scripts, falling back to a verbatim copy"`
	NoMinifyScripts bool   `name:"no-minify-scripts" help:"Copy scripts verbatim"`
	Precompress     bool   `help:"Write brotli-compressed .br siblings for text assets"`
	Report          string `help:"Write a JSON build report to this file" type:"path"`
	MetricsFile     string `name:"metrics-file" help:"Write Prometheus metrics in text format to this file" type:"path"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root.Config)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "load config").Build()
	}
	if err := b.applyOverrides(cfg); err != nil {
		return err
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	svc := build.NewBuildService()
	var registry *prom.Registry
	if b.MetricsFile != "" {
		registry = prom.NewRegistry()
		svc = svc.WithRecorder(metrics.NewPrometheusRecorder(registry))
	}

	res, runErr := svc.Run(context.Background(), build.BuildRequest{Config: cfg})

	report := build.NewReport(res, runErr)
	if b.Report != "" {
		if err := report.Persist(b.Report); err != nil {
			slog.Warn("Failed to write build report", "path", b.Report, "error", err)
		} else {
			slog.Info("Build report written", "path", b.Report, "summary", report.Summary())
		}
	}
	if registry != nil {
		if err := metrics.WriteTextfile(b.MetricsFile, registry); err != nil {
			slog.Warn("Failed to write metrics file", "path", b.MetricsFile, "error", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	printSummary(g, res, report)
	return nil
}

func (b *BuildCmd) applyOverrides(cfg *config.Config) error {
	if b.MinifyScripts && b.NoMinifyScripts {
		return errors.ValidationError("--minify-scripts and --no-minify-scripts are mutually exclusive").Build()
	}
	if b.Source != "" {
		cfg.Source = b.Source
	}
	if b.Output != "" {
		cfg.Output = b.Output
	}
	if b.Workers > 0 {
		cfg.Workers = b.Workers
	}
	if b.MinifyScripts {
		cfg.Scripts.Minify = true
	}
	if b.NoMinifyScripts {
		cfg.Scripts.Minify = false
	}
	if b.Precompress {
		cfg.Precompress = true
	}
	return nil
}

func printSummary(g *Global, res *build.BuildResult, report *build.Report) {
	for _, t := range res.Themes {
		if t.Written() {
			_, _ = fmt.Fprintf(g.Out, "Bundled %s -> %s (%s)\n", t.Name, t.Output, humanize.Bytes(uint64(t.Size)))
		} else {
			_, _ = fmt.Fprintf(g.Out, "Skipped theme %s: %v\n", t.Name, t.Err)
		}
	}
	for _, p := range report.FailedPaths() {
		_, _ = fmt.Fprintf(g.Out, "Failed: %s: %s\n", p, report.Failed[p])
	}
	for _, w := range res.Warnings {
		_, _ = fmt.Fprintf(g.Out, "Warning: %s\n", w)
	}
	_, _ = fmt.Fprintf(g.Out, "Build complete: %d files, %d themes, %d failed, %d warnings in %s\n",
		len(res.Succeeded), res.ThemesBundled(), len(res.Failed), len(res.Warnings),
		res.Duration.Round(1e6))
}
