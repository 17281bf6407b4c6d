package errors

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, quietLogger())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation error", ValidationError("bad flag").Build(), 2},
		{"config error", ConfigError("bad config").Build(), 7},
		{"fatal filesystem error", FileSystemError("cannot create output").Fatal().Build(), 11},
		{"internal error", InternalError("boom").Build(), 10},
		{"unclassified error", errors.New("unknown"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	err := WrapError(errors.New("read-only file system"), CategoryFileSystem, "cannot reset destination root").
		Fatal().
		WithContext("path", "dist").
		Build()

	t.Run("quiet", func(t *testing.T) {
		msg := NewCLIErrorAdapter(false, quietLogger()).FormatError(err)
		assert.Equal(t, "Build failed: cannot reset destination root: read-only file system", msg)
	})

	t.Run("verbose includes context", func(t *testing.T) {
		msg := NewCLIErrorAdapter(true, quietLogger()).FormatError(err)
		assert.Contains(t, msg, "Build failed: cannot reset destination root")
		assert.Contains(t, msg, "path: dist")
	})

	t.Run("unclassified", func(t *testing.T) {
		msg := NewCLIErrorAdapter(false, quietLogger()).FormatError(errors.New("x"))
		assert.Equal(t, "Build failed: x", msg)
	})

	assert.Empty(t, NewCLIErrorAdapter(false, quietLogger()).FormatError(nil))
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out bytes.Buffer
	code := -1
	adapter := NewCLIErrorAdapter(false, quietLogger()).WithOutput(&out, func(c int) { code = c })

	adapter.HandleError(nil)
	assert.Equal(t, -1, code, "nil error must not exit")

	adapter.HandleError(FileSystemError("cannot create output").Fatal().Build())
	assert.Equal(t, 11, code)
	assert.Equal(t, "Build failed: cannot create output\n", out.String())
}
