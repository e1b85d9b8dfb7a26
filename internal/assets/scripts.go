package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/themebuild/internal/descriptor"
	"github.com/wolfeidau/themebuild/internal/telemetry"
)

// scriptResult is the output of the script build.
type scriptResult struct {
	files    []outputFile
	metafile string
	metadata *Metafile
	// stylesheets reached from each bundle, in import order
	stylesheets map[string][]string
}

// buildScripts bundles every entry into one script per bundle. The general
// minifier is esbuild's own and only ever sees scripts.
func (p *Pipeline) buildScripts(ctx context.Context, root, outDir string, entries []descriptor.Entry) (*scriptResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, span := telemetry.Tracer().Start(ctx, "assets.buildScripts")
	defer span.End()

	pattern := p.desc.Output.Filename
	sources := make(map[string][]string, len(entries))
	points := make([]api.EntryPoint, 0, len(entries))
	for _, e := range entries {
		sources[e.Name] = e.Sources
		points = append(points, api.EntryPoint{
			InputPath:  bundlePrefix + e.Name,
			OutputPath: pattern.Stem(e.Name),
		})
	}

	minify := p.desc.GeneralMinifier()

	result := api.Build(api.BuildOptions{
		EntryPointsAdvanced: points,
		AbsWorkingDir:       root,
		Bundle:              true,
		Write:               false,
		Outdir:              outDir,
		OutExtension:        outExtension(".js", pattern.Ext()),
		Format:              api.FormatIIFE,
		Platform:            api.PlatformBrowser,
		Target:              target(p.desc.Target),
		Charset:             api.CharsetUTF8,
		MinifyWhitespace:    minify,
		MinifyIdentifiers:   minify,
		MinifySyntax:        minify,
		TreeShaking:         api.TreeShakingTrue,
		Sourcemap:           cond(p.desc.SourceMap(), api.SourceMapLinked, api.SourceMapNone),
		Metafile:            true,
		LogLevel:            api.LogLevelSilent,
		Plugins: []api.Plugin{
			bundleEntryPlugin(root, sources),
			styleDivertPlugin(p.desc.Styles.Test),
		},
	})

	if len(result.Errors) > 0 {
		return nil, compileError("scripts", result.Errors)
	}

	for _, msg := range result.Warnings {
		log.Warn().Str("stage", "scripts").Str("warning", formatMessage(msg)).Msg("Build warning")
	}

	var metadata Metafile
	if err := json.Unmarshal([]byte(result.Metafile), &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metafile: %w", err)
	}

	res := &scriptResult{
		metafile:    result.Metafile,
		metadata:    &metadata,
		stylesheets: make(map[string][]string, len(entries)),
	}

	for _, file := range result.OutputFiles {
		log.Debug().Str("file", file.Path).Int("bytes", len(file.Contents)).Msg("Built script")
		res.files = append(res.files, outputFile{Path: file.Path, Contents: file.Contents})
	}

	for _, e := range entries {
		res.stylesheets[e.Name] = stylesheetOrder(&metadata, bundlePrefix+e.Name)
	}

	return res, nil
}

// stylesheetOrder walks the import graph depth first from an entry and returns
// the stylesheets in the order they are first imported.
func stylesheetOrder(meta *Metafile, entry string) []string {
	var sheets []string
	seen := map[string]bool{}
	visited := map[string]bool{entry: true}

	var walk func(key string)
	walk = func(key string) {
		for _, imp := range meta.Inputs[key].Imports {
			if imp.External {
				continue
			}
			if sheet, ok := strings.CutPrefix(imp.Path, stylePrefix); ok {
				if !seen[sheet] {
					seen[sheet] = true
					sheets = append(sheets, sheet)
				}
				continue
			}
			if !visited[imp.Path] {
				visited[imp.Path] = true
				walk(imp.Path)
			}
		}
	}
	walk(entry)

	return sheets
}

func outExtension(defaultExt, ext string) map[string]string {
	if ext == defaultExt {
		return nil
	}
	return map[string]string{defaultExt: ext}
}

func target(name string) api.Target {
	switch strings.ToLower(name) {
	case "es2015", "es6":
		return api.ES2015
	case "es2016":
		return api.ES2016
	case "es2018":
		return api.ES2018
	case "es2019":
		return api.ES2019
	case "es2020":
		return api.ES2020
	case "es2021":
		return api.ES2021
	case "es2022":
		return api.ES2022
	case "esnext":
		return api.ESNext
	}
	return api.ES2017
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
