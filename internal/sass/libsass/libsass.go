// Package libsass compiles stylesheets in-process with LibSass.
package libsass

import (
	"context"
	"errors"

	"github.com/bep/golibsass/libsass"
	"github.com/bep/golibsass/libsass/libsasserrors"
	"github.com/wolfeidau/themebuild/internal/sass"
)

var _ sass.Transpiler = (*Transpiler)(nil)

// Transpiler runs LibSass. A new LibSass context is created per call, which
// makes it safe for concurrent use.
type Transpiler struct {
	opts sass.Options
}

// New returns a LibSass transpiler.
func New(opts sass.Options) *Transpiler {
	return &Transpiler{opts: opts}
}

func (t *Transpiler) Transpile(ctx context.Context, in sass.Input) (sass.Output, error) {
	if err := ctx.Err(); err != nil {
		return sass.Output{}, err
	}

	tr, err := libsass.New(libsass.Options{
		IncludePaths: sass.IncludePathsFor(in.Path, t.opts.IncludePaths),
		OutputStyle:  outputStyle(t.opts.OutputStyle),
		Precision:    t.opts.Precision,
		SassSyntax:   in.Syntax == sass.SyntaxSass,
	})
	if err != nil {
		return sass.Output{}, &sass.Error{File: in.Path, Message: err.Error(), Err: err}
	}

	res, err := tr.Execute(in.Source)
	if err != nil {
		return sass.Output{}, toError(in.Path, err)
	}

	return sass.Output{CSS: res.CSS}, nil
}

func (t *Transpiler) Close() error {
	return nil
}

func outputStyle(s string) libsass.OutputStyle {
	switch s {
	case "nested":
		return libsass.NestedStyle
	case "compact":
		return libsass.CompactStyle
	case "compressed":
		return libsass.CompressedStyle
	}
	return libsass.ExpandedStyle
}

func toError(path string, err error) error {
	var lerr libsasserrors.Error
	if !errors.As(err, &lerr) {
		return &sass.Error{File: path, Message: err.Error(), Err: err}
	}

	// errors in the top level source carry no file name
	file := lerr.File
	if file == "" || file == "stdin" {
		file = path
	}

	return &sass.Error{
		File:    file,
		Line:    lerr.Line,
		Column:  lerr.Column,
		Message: lerr.Message,
		Err:     err,
	}
}
