package theme

import (
	"time"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
)

// Status is the outcome of bundling one theme.
type Status string

const (
	StatusBundled Status = "bundled"
	StatusEmpty   Status = "empty"   // written, but zero bytes of CSS
	StatusSkipped Status = "skipped" // inputs missing
	StatusFailed  Status = "failed"  // transformer or write failure
)

// Result describes one theme after BundleTheme.
type Result struct {
	Name     string
	Strategy config.BundleStrategy
	// Output is the bundle path relative to the output root, slash separated.
	Output   string
	Status   Status
	Inputs   []string // inputs that were read, in configured order
	Size     int64
	Warnings []string
	Err      error
	Duration time.Duration
}

// Written reports whether the bundle exists in the destination tree.
func (r Result) Written() bool {
	return r.Status == StatusBundled || r.Status == StatusEmpty
}
