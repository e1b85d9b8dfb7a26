package assets

import (
	"context"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/themebuild/internal/descriptor"
	"github.com/wolfeidau/themebuild/internal/sass"
	"github.com/wolfeidau/themebuild/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// assetLoaders load url() targets when the resolve stage is allowed to follow them.
var assetLoaders = map[string]api.Loader{
	".png":   api.LoaderFile,
	".jpg":   api.LoaderFile,
	".jpeg":  api.LoaderFile,
	".gif":   api.LoaderFile,
	".svg":   api.LoaderFile,
	".webp":  api.LoaderFile,
	".woff":  api.LoaderFile,
	".woff2": api.LoaderFile,
	".ttf":   api.LoaderFile,
	".eot":   api.LoaderFile,
}

// buildStyles runs the stylesheet chain for every bundle that reached a stylesheet.
// Bundles build in parallel, results are kept in bundle order.
func (p *Pipeline) buildStyles(ctx context.Context, root, outDir string, entries []descriptor.Entry, sheets map[string][]string, tr sass.Transpiler) ([]outputFile, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "assets.buildStyles")
	defer span.End()

	results := make([][]outputFile, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	for i, e := range entries {
		if len(sheets[e.Name]) == 0 {
			continue
		}
		g.Go(func() error {
			files, err := p.buildStyle(gctx, root, outDir, e.Name, sheets[e.Name], tr)
			if err != nil {
				return err
			}
			results[i] = files
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var files []outputFile
	for _, r := range results {
		files = append(files, r...)
	}
	return files, nil
}

// buildStyle runs compile, resolve, extract and minify through one esbuild build.
func (p *Pipeline) buildStyle(ctx context.Context, root, outDir, name string, sheets []string, tr sass.Transpiler) ([]outputFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pattern := p.desc.StylePattern()
	resolve, _ := p.desc.Styles.Stage(descriptor.StageResolve)

	plugins := []api.Plugin{
		stylesheetEntryPlugin(root, name, sheets),
		compilePlugin(ctx, p.desc.Styles.Test, tr, p.metrics),
	}

	var loaders map[string]api.Loader
	if resolve.URL {
		loaders = assetLoaders
	} else {
		plugins = append(plugins, urlPlugin())
	}

	// The stylesheet minifier runs as esbuild prints the extracted stylesheet,
	// so the map still points at the sources.
	minify := p.desc.StylesheetMinifier()

	log.Debug().Str("bundle", name).Strs("stylesheets", sheets).Bool("minify", minify).Msg("Building stylesheet")

	result := api.Build(api.BuildOptions{
		EntryPointsAdvanced: []api.EntryPoint{{
			InputPath:  stylesheetPrefix + name,
			OutputPath: pattern.Stem(name),
		}},
		AbsWorkingDir:    root,
		Bundle:           true,
		Write:            false,
		Outdir:           outDir,
		OutExtension:     outExtension(".css", pattern.Ext()),
		AssetNames:       "assets/[name]-[hash]",
		Loader:           loaders,
		Target:           target(p.desc.Target),
		Charset:          api.CharsetUTF8,
		Sourcemap:        cond(p.desc.SourceMap(), api.SourceMapLinked, api.SourceMapNone),
		MinifyWhitespace: minify,
		MinifySyntax:     minify,
		LogLevel:         api.LogLevelSilent,
		Plugins:          plugins,
	})

	if len(result.Errors) > 0 {
		return nil, compileError("styles", result.Errors)
	}

	for _, msg := range result.Warnings {
		log.Warn().Str("stage", "styles").Str("bundle", name).Str("warning", formatMessage(msg)).Msg("Build warning")
	}

	files := make([]outputFile, 0, len(result.OutputFiles))
	for _, file := range result.OutputFiles {
		files = append(files, outputFile{Path: file.Path, Contents: file.Contents})
	}
	return files, nil
}
