// Package errors provides foundational, type-safe error primitives used across the asset builder.
//
// This package contains classified error types and helpers for robust error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, filesystem, theme, transform, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLI adapter for error presentation and exit codes
//
// Only fatal errors abort a build. Everything scoped to a single theme or file is
// built with SeverityError or SeverityWarning, recorded in the build result, and the
// pipeline moves on.
//
// Example usage:
//
//	err := errors.FileSystemError("cannot reset destination root").
//		Fatal().
//		WithContext("path", outputDir).
//		WithCause(originalErr).
//		Build()
package errors
