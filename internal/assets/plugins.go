package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/themebuild/internal/sass"
	"github.com/wolfeidau/themebuild/internal/telemetry"
)

const (
	bundleNamespace     = "bundle"
	stylesheetNamespace = "stylesheets"
	styleNamespace      = "style"

	bundlePrefix     = bundleNamespace + ":"
	stylesheetPrefix = stylesheetNamespace + ":"
	stylePrefix      = styleNamespace + ":"
)

// stylesheetFilter matches every import the script build diverts to the style
// chain: whatever the compile stage accepts, plus plain CSS.
func stylesheetFilter(test string) string {
	return "(?:" + test + `)|\.css$`
}

// bundleEntryPlugin turns "bundle:<name>" into a module importing the bundle's sources in order.
func bundleEntryPlugin(root string, sources map[string][]string) api.Plugin {
	return api.Plugin{
		Name: "bundle-entry",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: "^" + regexp.QuoteMeta(bundlePrefix)},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return api.OnResolveResult{
						Path:      strings.TrimPrefix(args.Path, bundlePrefix),
						Namespace: bundleNamespace,
					}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: bundleNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					files, ok := sources[args.Path]
					if !ok {
						return api.OnLoadResult{}, fmt.Errorf("unknown bundle %q", args.Path)
					}
					contents := importList(files, "import %s;\n")
					return api.OnLoadResult{
						Contents:   &contents,
						ResolveDir: root,
						Loader:     api.LoaderJS,
					}, nil
				})
		},
	}
}

// resolving marks resolutions the style plugins hand back to esbuild.
type resolving struct{}

// styleDivertPlugin keeps stylesheets out of the script bundle. Each stylesheet
// import resolves into the style namespace and loads as an empty module, the
// import edge stays in the metafile so the style chain can recover the order.
func styleDivertPlugin(test string) api.Plugin {
	return api.Plugin{
		Name: "style-divert",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: stylesheetFilter(test)},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					if _, ok := args.PluginData.(resolving); ok {
						return api.OnResolveResult{}, nil
					}

					path, err := resolveStylesheet(build, args)
					if err != nil {
						return api.OnResolveResult{}, err
					}
					return api.OnResolveResult{Path: path, Namespace: styleNamespace}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: styleNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					empty := ""
					return api.OnLoadResult{Contents: &empty, Loader: api.LoaderJS}, nil
				})
		},
	}
}

// resolveStylesheet finds the file behind a stylesheet import. Relative and
// absolute paths are checked directly, package paths go through esbuild.
func resolveStylesheet(build api.PluginBuild, args api.OnResolveArgs) (string, error) {
	p := args.Path
	if filepath.IsAbs(p) || strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../") {
		if !filepath.IsAbs(p) {
			p = filepath.Join(args.ResolveDir, filepath.FromSlash(p))
		}
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			return "", fmt.Errorf("could not resolve stylesheet %q", args.Path)
		}
		return p, nil
	}

	res := build.Resolve(args.Path, api.ResolveOptions{
		Importer:   args.Importer,
		ResolveDir: args.ResolveDir,
		Kind:       args.Kind,
		PluginData: resolving{},
	})
	if len(res.Errors) > 0 {
		return "", fmt.Errorf("could not resolve stylesheet %q: %s", args.Path, res.Errors[0].Text)
	}
	return res.Path, nil
}

// stylesheetEntryPlugin turns "stylesheets:<name>" into a stylesheet importing
// every sheet the bundle's scripts reached, in import order.
func stylesheetEntryPlugin(root, name string, sheets []string) api.Plugin {
	return api.Plugin{
		Name: "stylesheet-entry",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: "^" + regexp.QuoteMeta(stylesheetPrefix)},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return api.OnResolveResult{
						Path:      strings.TrimPrefix(args.Path, stylesheetPrefix),
						Namespace: stylesheetNamespace,
					}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: ".*", Namespace: stylesheetNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					if args.Path != name {
						return api.OnLoadResult{}, fmt.Errorf("unknown stylesheet bundle %q", args.Path)
					}
					contents := importList(sheets, "@import %s;\n")
					return api.OnLoadResult{
						Contents:   &contents,
						ResolveDir: root,
						Loader:     api.LoaderCSS,
					}, nil
				})
		},
	}
}

// compilePlugin is the compile stage: files matching the chain's matcher are
// transpiled and handed to esbuild as plain CSS.
func compilePlugin(ctx context.Context, matcher string, tr sass.Transpiler, m *telemetry.Metrics) api.Plugin {
	return api.Plugin{
		Name: "sass",
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: matcher, Namespace: "file"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					src, err := os.ReadFile(args.Path)
					if err != nil {
						return api.OnLoadResult{}, err
					}

					started := time.Now()
					out, err := tr.Transpile(ctx, sass.Input{
						Path:   args.Path,
						Source: string(src),
						Syntax: sass.SyntaxFor(args.Path),
					})
					m.CompileDuration.Record(ctx, float64(time.Since(started).Milliseconds()))
					m.StylesheetsCompiledTotal.Add(ctx, 1)
					if err != nil {
						return api.OnLoadResult{Errors: []api.Message{sassMessage(args.Path, err)}}, nil
					}

					return api.OnLoadResult{
						Contents:   &out.CSS,
						ResolveDir: filepath.Dir(args.Path),
						Loader:     api.LoaderCSS,
						WatchFiles: []string{args.Path},
					}, nil
				})
		},
	}
}

// urlPlugin keeps every url() token external and verbatim so referenced
// assets keep their paths in the extracted stylesheet.
func urlPlugin() api.Plugin {
	return api.Plugin{
		Name: "keep-urls",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: ".*"},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					if args.Kind != api.ResolveCSSURLToken {
						return api.OnResolveResult{}, nil
					}
					return api.OnResolveResult{Path: args.Path, External: true}, nil
				})
		},
	}
}

func sassMessage(path string, err error) api.Message {
	var serr *sass.Error
	if !errors.As(err, &serr) {
		return api.Message{Text: err.Error(), Location: &api.Location{File: path}}
	}

	column := serr.Column - 1
	if column < 0 {
		column = 0
	}
	return api.Message{
		Text: serr.Message,
		Location: &api.Location{
			File:   serr.File,
			Line:   serr.Line,
			Column: column,
		},
	}
}

func importList(paths []string, format string) string {
	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, format, strconv.Quote(filepath.ToSlash(p)))
	}
	return b.String()
}
