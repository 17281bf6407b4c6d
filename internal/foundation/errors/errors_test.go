package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "assetbuilder.yaml").
			Build()

		assert.Equal(t, CategoryConfig, err.Category())
		assert.Equal(t, SeverityFatal, err.Severity())
		assert.Equal(t, "invalid configuration", err.Message())

		file, exists := err.Context().GetString("file")
		require.True(t, exists)
		assert.Equal(t, "assetbuilder.yaml", file)
	})

	t.Run("Error detection", func(t *testing.T) {
		err := ConfigError("test error").Build()

		assert.True(t, IsClassified(err))
		assert.True(t, HasCategory(err, CategoryConfig))
		assert.True(t, err.IsFatal())
	})

	t.Run("Non-fatal theme error", func(t *testing.T) {
		err := ThemeError("theme input missing").WithContext("theme", "theme-a").Build()

		assert.False(t, err.IsFatal())
		assert.Equal(t, SeverityError, err.Severity())
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Fluent API", func(t *testing.T) {
		originalErr := errors.New("permission denied")
		err := WrapError(originalErr, CategoryFileSystem, "cannot reset destination").
			Fatal().
			WithContext("path", "dist").
			Build()

		assert.Equal(t, CategoryFileSystem, err.Category())
		assert.Equal(t, SeverityFatal, err.Severity())
		assert.ErrorIs(t, err, originalErr)
		assert.Contains(t, err.Error(), "[filesystem:fatal] cannot reset destination: permission denied")
	})

	t.Run("WithContextMap merges", func(t *testing.T) {
		err := TransformFailure("css transform failed").
			WithContextMap(ErrorContext{"theme": "a", "messages": 2}).
			WithContext("theme", "b").
			Build()

		theme, _ := err.Context().GetString("theme")
		assert.Equal(t, "b", theme)
		n, ok := err.Context().Get("messages")
		require.True(t, ok)
		assert.Equal(t, 2, n)
	})

	t.Run("WithContext on built error does not mutate original", func(t *testing.T) {
		base := BuildError("empty output").Build()
		derived := base.WithContext("path", "x.css")

		_, onBase := base.Context().Get("path")
		_, onDerived := derived.Context().Get("path")
		assert.False(t, onBase)
		assert.True(t, onDerived)
		assert.Equal(t, SeverityWarning, derived.Severity())
	})
}

func TestAsClassified_Wrapped(t *testing.T) {
	inner := FileSystemError("source root unreadable").Fatal().Build()
	wrapped := fmt.Errorf("enumerate: %w", inner)

	ce, ok := AsClassified(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, ce)
	assert.True(t, IsFatal(wrapped))
	assert.Equal(t, CategoryFileSystem, GetCategory(wrapped))
	assert.Equal(t, CategoryInternal, GetCategory(errors.New("plain")))
	assert.Equal(t, SeverityError, GetSeverity(errors.New("plain")))
}

func TestClassifiedError_Is(t *testing.T) {
	a := ThemeError("missing").Build()
	b := ThemeError("missing").WithContext("theme", "x").Build()
	c := TransformFailure("missing").Build()

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}
