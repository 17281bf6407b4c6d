// Package build runs the asset build: it resets the destination root, bundles
// the configured themes and copies the rest of the source tree.
//
// All entry points (the CLI and tests) go through BuildService. Run returns an
// error only for fatal failures; per-theme and per-file problems are recorded
// in the BuildResult and the build still finishes in StateDone.
package build
