package assets

import (
	"io"
	"path"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/go-git/go-billy/v5"

	"git.home.luguber.info/inful/assetbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/assetbuilder/internal/fsutil"
	"git.home.luguber.info/inful/assetbuilder/internal/util/sets"
)

// DefaultPrecompressExtensions are the text formats that get a .br sibling.
var DefaultPrecompressExtensions = []string{".css", ".js", ".mjs", ".html", ".svg", ".json", ".txt"}

// Precompressor writes brotli-compressed siblings (name + ".br") of text assets.
type Precompressor struct {
	fs    billy.Filesystem
	level int
	exts  sets.Set[string]
}

// NewPrecompressor returns a Precompressor at brotli.BestCompression.
func NewPrecompressor(fs billy.Filesystem) *Precompressor {
	return &Precompressor{fs: fs, level: brotli.BestCompression, exts: sets.New(DefaultPrecompressExtensions...)}
}

// Applies reports whether p gets a compressed sibling.
func (p *Precompressor) Applies(name string) bool {
	return p.exts.Has(strings.ToLower(path.Ext(name)))
}

// Compress writes dest+".br" from data and returns the compressed size.
func (p *Precompressor) Compress(dest string, data []byte) (int64, error) {
	target := dest + ".br"
	f, err := p.fs.Create(target)
	if err != nil {
		return 0, errors.FileSystemError("failed to create compressed file").
			WithCause(err).WithContext("path", target).Build()
	}
	cw := &countingWriter{w: f}
	w := brotli.NewWriterLevel(cw, p.level)
	_, werr := w.Write(data)
	if cerr := w.Close(); werr == nil {
		werr = cerr
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return 0, errors.FileSystemError("failed to write compressed file").
			WithCause(werr).WithContext("path", target).Build()
	}
	return cw.n, nil
}

// CompressFile reads dest and compresses it.
func (p *Precompressor) CompressFile(dest string) (int64, error) {
	data, err := fsutil.ReadFile(p.fs, dest)
	if err != nil {
		return 0, err
	}
	return p.Compress(dest, data)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}
