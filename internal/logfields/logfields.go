package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyState      = "state"
	KeyDurationMS = "duration_ms"
	KeyTheme      = "theme"
	KeyStrategy   = "strategy"
	KeyPath       = "path"
	KeySource     = "source"
	KeyOutput     = "output"
	KeyKind       = "kind"
	KeyBytes      = "bytes"
	KeySize       = "size"
	KeyCount      = "count"
	KeyWorkers    = "workers"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func State(s string) slog.Attr         { return slog.String(KeyState, s) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Theme(name string) slog.Attr      { return slog.String(KeyTheme, name) }
func Strategy(s string) slog.Attr      { return slog.String(KeyStrategy, s) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Source(p string) slog.Attr        { return slog.String(KeySource, p) }
func Output(p string) slog.Attr        { return slog.String(KeyOutput, p) }
func Kind(k string) slog.Attr          { return slog.String(KeyKind, k) }
func Bytes(n int64) slog.Attr          { return slog.Int64(KeyBytes, n) }
func Size(human string) slog.Attr      { return slog.String(KeySize, human) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func Workers(n int) slog.Attr          { return slog.Int(KeyWorkers, n) }
func Error(err error) slog.Attr {
	if err == nil { return slog.String(KeyError, "") }
	return slog.String(KeyError, err.Error())
}
