// Package assets mirrors the source tree into the destination tree.
//
// The Classifier decides what every source path is; the Copier walks the tree,
// leaves theme stylesheets to the theme bundler, and writes everything else
// through a passthrough transform (Identity or MinifyWithFallback). Per-file
// failures are collected in a Result; only a source tree that cannot be
// enumerated stops the copy.
package assets
