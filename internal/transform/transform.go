package transform

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// Location points into a source file. Line is 1-based, Column 0-based.
type Location struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	LineText string `json:"line_text,omitempty"`
}

// Message is one diagnostic produced by a transformer.
type Message struct {
	Text     string    `json:"text"`
	Location *Location `json:"location,omitempty"`
	Notes    []string  `json:"notes,omitempty"`
}

func (m Message) String() string {
	if m.Location == nil {
		return m.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", m.Location.File, m.Location.Line, m.Location.Column, m.Text)
}

// Output is the result of a successful transform.
type Output struct {
	Code     []byte
	Warnings []Message
}

// Error is returned when the transformer rejects its input.
type Error struct {
	Op       string
	Source   string
	Messages []Message
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s failed", e.Op, e.Source)
	switch len(e.Messages) {
	case 0:
	case 1:
		b.WriteString(": ")
		b.WriteString(e.Messages[0].String())
	default:
		fmt.Fprintf(&b, " with %d errors: %s", len(e.Messages), e.Messages[0].String())
	}
	return b.String()
}

// CSSEngine bundles and minifies stylesheets.
type CSSEngine interface {
	// Bundle resolves @import references starting at entry (a path in fsys) and
	// returns one minified stylesheet.
	Bundle(ctx context.Context, fsys billy.Filesystem, entry string) (*Output, error)
	// Minify minifies already-assembled CSS. sourcefile names it in diagnostics.
	Minify(ctx context.Context, src []byte, sourcefile string) (*Output, error)
}

// ScriptEngine minifies scripts with compression and identifier shortening.
// An Output with empty Code is treated by callers like a failure.
type ScriptEngine interface {
	Minify(ctx context.Context, src []byte, sourcefile string) (*Output, error)
}
