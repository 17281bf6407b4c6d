// Package transform defines the contract between the asset pipeline and the
// CSS/script transformer, and provides the esbuild-backed implementation.
//
// Engines report failures as *Error, which carries every structured message
// the transformer produced so callers can log them one by one.
package transform
