package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithBuildID(t *testing.T) {
	ctx := WithBuildID(context.Background(), "build-123")

	assert.Equal(t, "build-123", GetContext(ctx).BuildID)
}

func TestWithStage(t *testing.T) {
	ctx := WithStage(WithBuildID(context.Background(), "b"), "bundle_themes")

	lc := GetContext(ctx)
	assert.Equal(t, "bundle_themes", lc.Stage)
	assert.Equal(t, "b", lc.BuildID, "stage must not drop build id")
}

func TestContextAttrsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer slog.SetDefault(prev)

	ctx := WithStage(WithBuildID(context.Background(), "abc"), "copy_assets")
	InfoContext(ctx, "hello", slog.String("path", "a.js"))
	WarnContext(ctx, "careful")
	ErrorContext(ctx, "bad")
	DebugContext(ctx, "noise")

	out := buf.String()
	assert.Contains(t, out, "build_id=abc")
	assert.Contains(t, out, "stage=copy_assets")
	assert.Contains(t, out, "path=a.js")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "level=DEBUG")
}

func TestEmptyContext(t *testing.T) {
	assert.Empty(t, getLogAttrs(context.Background()))
}
