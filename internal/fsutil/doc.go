// Package fsutil holds the filesystem primitives the asset pipeline is built on:
// lazy and collected file enumeration, idempotent directory creation, verbatim
// copies and destination-root reset.
//
// Every helper works on a billy.Filesystem so the pipeline runs unchanged against
// the OS filesystem (osfs) and an in-memory one (memfs) in tests.
package fsutil
