// Package dartsass compiles stylesheets with the embedded Dart Sass protocol.
package dartsass

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bep/godartsass/v2"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/themebuild/internal/sass"
)

// DefaultBinary is looked up on PATH when no binary is configured.
const DefaultBinary = "sass"

var _ sass.Transpiler = (*Transpiler)(nil)

// Transpiler keeps one Dart Sass process for the duration of a build.
type Transpiler struct {
	opts sass.Options
	tr   *godartsass.Transpiler
}

// New starts the Dart Sass process.
func New(binary string, opts sass.Options) (*Transpiler, error) {
	if binary == "" {
		binary = DefaultBinary
	}

	tr, err := godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: binary,
		Timeout:                  2 * time.Minute,
		LogEventHandler: func(e godartsass.LogEvent) {
			switch e.Type {
			case godartsass.LogEventTypeDebug:
				log.Debug().Str("transpiler", "dartsass").Msg(e.Message)
			default:
				log.Warn().Str("transpiler", "dartsass").Msg(e.Message)
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start dart sass %q: %w", binary, err)
	}

	return &Transpiler{opts: opts, tr: tr}, nil
}

func (t *Transpiler) Transpile(ctx context.Context, in sass.Input) (sass.Output, error) {
	if err := ctx.Err(); err != nil {
		return sass.Output{}, err
	}

	res, err := t.tr.Execute(godartsass.Args{
		Source:       in.Source,
		URL:          fileURL(in.Path),
		OutputStyle:  outputStyle(t.opts.OutputStyle),
		SourceSyntax: sourceSyntax(in.Syntax),
		IncludePaths: sass.IncludePathsFor(in.Path, t.opts.IncludePaths),
	})
	if err != nil {
		return sass.Output{}, toError(in, err)
	}

	return sass.Output{CSS: res.CSS}, nil
}

func (t *Transpiler) Close() error {
	return t.tr.Close()
}

// Dart Sass only knows expanded and compressed.
func outputStyle(s string) godartsass.OutputStyle {
	if s == "compressed" {
		return godartsass.OutputStyleCompressed
	}
	return godartsass.OutputStyleExpanded
}

func sourceSyntax(s sass.Syntax) godartsass.SourceSyntax {
	switch s {
	case sass.SyntaxSass:
		return godartsass.SourceSyntaxSASS
	case sass.SyntaxCSS:
		return godartsass.SourceSyntaxCSS
	}
	return godartsass.SourceSyntaxSCSS
}

func fileURL(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func toError(in sass.Input, err error) error {
	var serr godartsass.SassError
	if !errors.As(err, &serr) {
		return &sass.Error{File: in.Path, Message: err.Error(), Err: err}
	}

	file, src := in.Path, in.Source
	if u, perr := url.Parse(serr.Span.Url); perr == nil && u.Scheme == "file" && u.Path != "" {
		if p := filepath.FromSlash(u.Path); p != in.Path {
			file = p
			data, rerr := os.ReadFile(p)
			if rerr != nil {
				src = ""
			} else {
				src = string(data)
			}
		}
	}

	line := 0
	if src != "" {
		line = lineAt(src, serr.Span.Start.Offset)
	}

	// span columns are zero based
	return &sass.Error{
		File:    file,
		Line:    line,
		Column:  serr.Span.Start.Column + 1,
		Message: serr.Message,
		Err:     err,
	}
}

// lineAt returns the one based line holding the byte offset.
func lineAt(src string, offset int) int {
	if offset > len(src) {
		offset = len(src)
	}
	if offset < 0 {
		offset = 0
	}
	return strings.Count(src[:offset], "\n") + 1
}
