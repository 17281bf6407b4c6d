package transform

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

const fsNamespace = "assetbuilder-fs"

// Esbuild implements CSSEngine on top of esbuild's Go API; Scripts returns the
// matching ScriptEngine.
type Esbuild struct {
	external []string
	target   api.Target
}

// Option configures an Esbuild engine.
type Option func(*Esbuild)

// WithExternal sets the glob patterns of references left untouched when bundling.
// Patterns without a slash match the base name, others the whole reference.
func WithExternal(patterns []string) Option {
	return func(e *Esbuild) { e.external = append([]string(nil), patterns...) }
}

// NewEsbuild returns an engine with the given options.
func NewEsbuild(opts ...Option) *Esbuild {
	e := &Esbuild{target: api.ES2020}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var (
	_ CSSEngine    = (*Esbuild)(nil)
	_ ScriptEngine = scriptEngine{}
)

// Bundle runs an esbuild bundle whose only source of files is fsys.
func (e *Esbuild) Bundle(ctx context.Context, fsys billy.Filesystem, entry string) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := api.Build(api.BuildOptions{
		EntryPoints:       []string{entry},
		Bundle:            true,
		Write:             false,
		Outfile:           "bundle.css",
		MinifyWhitespace:  true,
		MinifySyntax:      true,
		MinifyIdentifiers: true,
		Target:            e.target,
		Loader:            map[string]api.Loader{".css": api.LoaderCSS},
		LogLevel:          api.LogLevelSilent,
		Plugins:           []api.Plugin{e.fsPlugin(fsys)},
	})

	if len(result.Errors) > 0 {
		return nil, &Error{Op: "bundle", Source: entry, Messages: convertMessages(result.Errors)}
	}

	var code []byte
	for _, f := range result.OutputFiles {
		if strings.HasSuffix(f.Path, ".css") {
			code = append(code, f.Contents...)
		}
	}
	return &Output{Code: code, Warnings: convertMessages(result.Warnings)}, nil
}

// Minify minifies CSS source without resolving imports.
func (e *Esbuild) Minify(ctx context.Context, src []byte, sourcefile string) (*Output, error) {
	return e.transform(ctx, "minify", src, sourcefile, api.LoaderCSS)
}

// MinifyScript minifies a JavaScript file. Top-level names are preserved since
// the file is not treated as a module.
func (e *Esbuild) MinifyScript(ctx context.Context, src []byte, sourcefile string) (*Output, error) {
	return e.transform(ctx, "minify", src, sourcefile, api.LoaderJS)
}

// Scripts adapts e to ScriptEngine.
func (e *Esbuild) Scripts() ScriptEngine { return scriptEngine{e} }

type scriptEngine struct{ e *Esbuild }

func (s scriptEngine) Minify(ctx context.Context, src []byte, sourcefile string) (*Output, error) {
	return s.e.MinifyScript(ctx, src, sourcefile)
}

func (e *Esbuild) transform(ctx context.Context, op string, src []byte, sourcefile string, loader api.Loader) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := api.Transform(string(src), api.TransformOptions{
		Loader:            loader,
		Sourcefile:        sourcefile,
		Target:            e.target,
		MinifyWhitespace:  true,
		MinifySyntax:      true,
		MinifyIdentifiers: true,
		LogLevel:          api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return nil, &Error{Op: op, Source: sourcefile, Messages: convertMessages(result.Errors)}
	}
	return &Output{Code: result.Code, Warnings: convertMessages(result.Warnings)}, nil
}

// fsPlugin resolves and loads every file through fsys so bundling never touches
// the OS filesystem directly.
func (e *Esbuild) fsPlugin(fsys billy.Filesystem) api.Plugin {
	return api.Plugin{
		Name: "billy-fs",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: ".*"},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					if args.Kind == api.ResolveEntryPoint {
						return api.OnResolveResult{Path: cleanPath(args.Path), Namespace: fsNamespace}, nil
					}
					if args.Kind == api.ResolveCSSURLToken || e.isExternal(args.Path) {
						return api.OnResolveResult{Path: args.Path, External: true}, nil
					}
					return api.OnResolveResult{Path: resolveImport(args.Importer, args.Path), Namespace: fsNamespace}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: fsNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					data, err := util.ReadFile(fsys, filepath.FromSlash(args.Path))
					if err != nil {
						return api.OnLoadResult{}, err
					}
					contents := string(data)
					return api.OnLoadResult{Contents: &contents, Loader: loaderFor(args.Path)}, nil
				})
		},
	}
}

func (e *Esbuild) isExternal(ref string) bool {
	if strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "//") {
		return true
	}
	target := ref
	if i := strings.IndexAny(target, "?#"); i > 0 && !strings.Contains(target, "://") {
		target = target[:i]
	}
	for _, pattern := range e.external {
		subject := target
		if !strings.Contains(pattern, "/") {
			subject = path.Base(target)
		}
		if ok, _ := doublestar.Match(pattern, subject); ok {
			return true
		}
	}
	return false
}

// resolveImport resolves ref against the directory of importer. A leading slash
// is relative to the filesystem root.
func resolveImport(importer, ref string) string {
	ref = strings.TrimPrefix(ref, "./")
	if strings.HasPrefix(ref, "/") || importer == "" {
		return cleanPath(ref)
	}
	return cleanPath(path.Join(path.Dir(importer), ref))
}

func cleanPath(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

func loaderFor(p string) api.Loader {
	switch strings.ToLower(path.Ext(p)) {
	case ".css":
		return api.LoaderCSS
	case ".js", ".mjs", ".cjs":
		return api.LoaderJS
	default:
		return api.LoaderText
	}
}

func convertMessages(msgs []api.Message) []Message {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		msg := Message{Text: m.Text}
		if m.Location != nil {
			msg.Location = &Location{
				File:     m.Location.File,
				Line:     m.Location.Line,
				Column:   m.Location.Column,
				LineText: m.Location.LineText,
			}
		}
		for _, n := range m.Notes {
			msg.Notes = append(msg.Notes, n.Text)
		}
		out = append(out, msg)
	}
	return out
}
