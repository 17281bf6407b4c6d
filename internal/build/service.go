package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/git"
	"git.home.luguber.info/inful/assetbuilder/internal/metrics"
	"git.home.luguber.info/inful/assetbuilder/internal/theme"
)

// BuildService is the canonical interface for executing asset builds.
type BuildService interface {
	// Run executes Clean -> Prepared -> ThemesBundled -> AssetsCopied -> Done.
	// The result is never nil; err is non-nil only when the build reached StateFailed.
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest contains all inputs required to execute a build.
type BuildRequest struct {
	// Config is the loaded and validated configuration.
	Config *config.Config
}

// State is a step of the build state machine.
type State string

const (
	StateClean         State = "clean"
	StatePrepared      State = "prepared"
	StateThemesBundled State = "themes_bundled"
	StateAssetsCopied  State = "assets_copied"
	StateDone          State = "done"
	StateFailed        State = "failed"
)

// IsTerminal returns true if no further transition follows s.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// Stage names used in logs, metrics and StageDurations.
const (
	StagePrepare = "prepare"
	StageThemes  = "themes"
	StageAssets  = "assets"
)

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	BuildID string
	State   State

	// Succeeded holds destination-relative paths written by the build, theme
	// bundles included, sorted.
	Succeeded []string
	// Failed maps a source-relative path (or a theme output path) to its error.
	Failed map[string]error
	// Warnings are non-fatal problems in the order they were found.
	Warnings []string
	// Themes has one entry per configured theme, in configuration order.
	Themes []*theme.Result

	Excluded int
	Bytes    int64

	SourceRoot string
	OutputRoot string
	Revision   git.Revision

	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	StageDurations map[string]time.Duration
}

// Outcome summarizes the result for metrics and reports.
func (r *BuildResult) Outcome() metrics.BuildOutcomeLabel {
	switch {
	case r.State != StateDone:
		return metrics.BuildOutcomeFailed
	case len(r.Failed) > 0 || len(r.Warnings) > 0:
		return metrics.BuildOutcomeWarning
	default:
		return metrics.BuildOutcomeSuccess
	}
}

// ThemesBundled counts the themes whose bundle was written.
func (r *BuildResult) ThemesBundled() int {
	n := 0
	for _, t := range r.Themes {
		if t != nil && t.Written() {
			n++
		}
	}
	return n
}
