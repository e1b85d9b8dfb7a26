package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/themebuild/internal/descriptor"
	"github.com/wolfeidau/themebuild/internal/sass"
	"github.com/wolfeidau/themebuild/internal/sass/dartsass"
	"github.com/wolfeidau/themebuild/internal/sass/libsass"
	"github.com/wolfeidau/themebuild/internal/telemetry"
	"go.opentelemetry.io/otel/codes"
	"go.trai.ch/zerr"
)

// Build runs the descriptor end to end. Nothing is written unless every
// bundle built, so a failed build leaves the output tree as it was.
func (p *Pipeline) Build(ctx context.Context) (*Manifest, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, span := telemetry.Tracer().Start(ctx, "assets.Build")
	defer span.End()

	started := time.Now()
	p.metrics.BuildsTotal.Add(ctx, 1)

	manifest, metadata, err := p.build(ctx)
	p.metrics.BuildDuration.Record(ctx, float64(time.Since(started).Milliseconds()))
	if err != nil {
		p.metrics.BuildErrorsTotal.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	p.manifest = manifest
	p.metadata = metadata
	return manifest, nil
}

func (p *Pipeline) build(ctx context.Context) (*Manifest, *Metafile, error) {
	entries, err := p.desc.ResolveEntries()
	if err != nil {
		return nil, nil, err
	}

	root, err := p.desc.AbsRoot()
	if err != nil {
		return nil, nil, err
	}
	outDir, err := p.desc.OutputDir()
	if err != nil {
		return nil, nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}

	log.Info().
		Strs("bundles", names).
		Str("mode", string(p.desc.Mode)).
		Bool("source_map", p.desc.SourceMap()).
		Str("output", outDir).
		Msg("Building assets")

	scripts, err := p.buildScripts(ctx, root, outDir, entries)
	if err != nil {
		return nil, nil, err
	}

	files := scripts.files

	if hasStylesheets(scripts.stylesheets) {
		tr, closeFn, err := p.openTranspiler(root)
		if err != nil {
			return nil, nil, err
		}
		styles, err := p.buildStyles(ctx, root, outDir, entries, scripts.stylesheets, tr)
		closeFn()
		if err != nil {
			return nil, nil, err
		}
		files = append(files, styles...)
	}

	if len(p.desc.Precompress) > 0 {
		compressed, err := precompress(files, p.desc.Precompress)
		if err != nil {
			return nil, nil, err
		}
		files = append(files, compressed...)
	}

	scriptPaths := make(map[string]string, len(entries))
	stylePaths := make(map[string]string, len(entries))
	for _, e := range entries {
		scriptPaths[e.Name] = p.desc.Output.Filename.Expand(e.Name)
		stylePaths[e.Name] = p.desc.StylePattern().Expand(e.Name)
	}

	manifest, err := newManifest(manifestInput{
		root:        root,
		outDir:      outDir,
		mode:        string(p.desc.Mode),
		scriptPaths: scriptPaths,
		stylePaths:  stylePaths,
		stylesheets: scripts.stylesheets,
		files:       files,
	})
	if err != nil {
		return nil, nil, err
	}

	rendered, err := p.renderTemplates(ctx, outDir, manifest)
	if err != nil {
		return nil, nil, err
	}
	files = append(files, rendered...)

	if p.desc.Manifest != "" {
		data, err := manifest.encode()
		if err != nil {
			return nil, nil, err
		}
		files = append(files, outputFile{Path: filepath.Join(outDir, filepath.FromSlash(p.desc.Manifest)), Contents: data})
	}

	if p.desc.Metafile != "" {
		path, err := p.desc.Path(p.desc.Metafile)
		if err != nil {
			return nil, nil, err
		}
		files = append(files, outputFile{Path: path, Contents: []byte(scripts.metafile)})
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	stats, err := commit(files)
	p.metrics.FilesWrittenTotal.Add(ctx, int64(stats.written))
	p.metrics.FilesUnchangedTotal.Add(ctx, int64(stats.unchanged))
	p.metrics.BytesWrittenTotal.Add(ctx, int64(stats.bytes))
	if err != nil {
		return nil, nil, err
	}

	p.metrics.BundlesBuiltTotal.Add(ctx, int64(len(entries)))

	log.Info().
		Int("files", len(files)).
		Int("written", stats.written).
		Int("unchanged", stats.unchanged).
		Msg("Assets built")

	return manifest, scripts.metadata, nil
}

// LoadManifest reads the manifest a previous build left in the output
// directory, so LoadScripts works without building again.
func (p *Pipeline) LoadManifest() (*Manifest, error) {
	if p.desc.Manifest == "" {
		return nil, zerr.Wrap(ErrNotBuilt, "manifest disabled")
	}

	outDir, err := p.desc.OutputDir()
	if err != nil {
		return nil, err
	}

	m, err := ReadManifest(filepath.Join(outDir, filepath.FromSlash(p.desc.Manifest)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(fmt.Errorf("%w: no manifest at %s", ErrNotBuilt, p.desc.Manifest), "manifest", p.desc.Manifest)
		}
		return nil, err
	}

	p.mu.Lock()
	p.manifest = m
	p.mu.Unlock()

	return m, nil
}

// LoadScripts returns the script and stylesheet paths of a bundle from the
// last build, relative to the output directory.
func (p *Pipeline) LoadScripts(bundle string) ([]string, []string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.manifest == nil {
		return nil, nil, ErrNotBuilt
	}

	b, err := p.manifest.Bundle(bundle)
	if err != nil {
		return nil, nil, err
	}

	scripts := []string{b.Script}
	var styles []string
	if b.Style != "" {
		styles = append(styles, b.Style)
	}
	return scripts, styles, nil
}

// Metadata returns the esbuild metafile of the last script build.
func (p *Pipeline) Metadata() (*Metafile, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.metadata == nil {
		return nil, ErrNotBuilt
	}
	return p.metadata, nil
}

// openTranspiler returns the compile stage's transpiler and a func releasing it.
func (p *Pipeline) openTranspiler(root string) (sass.Transpiler, func(), error) {
	if p.transpiler != nil {
		return p.transpiler, func() {}, nil
	}

	st, _ := p.desc.Styles.Stage(descriptor.StageCompile)
	opts := sass.Options{
		OutputStyle: st.OutputStyle,
		Precision:   st.Precision,
	}
	for _, inc := range st.IncludePaths {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(root, filepath.FromSlash(inc))
		}
		opts.IncludePaths = append(opts.IncludePaths, inc)
	}

	var tr sass.Transpiler
	switch st.Transpiler {
	case descriptor.TranspilerDartSass:
		dart, err := dartsass.New(p.dartSassBinary, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open transpiler: %w", err)
		}
		tr = dart
	default:
		tr = libsass.New(opts)
	}

	return tr, func() {
		if err := tr.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close transpiler")
		}
	}, nil
}

func hasStylesheets(sheets map[string][]string) bool {
	for _, s := range sheets {
		if len(s) > 0 {
			return true
		}
	}
	return false
}
