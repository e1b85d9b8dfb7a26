// Package sass defines the style-compiler stage of the stylesheet chain.
package sass

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Syntax is the source syntax of a stylesheet.
type Syntax int

const (
	SyntaxSCSS Syntax = iota
	SyntaxSass
	SyntaxCSS
)

// SyntaxFor picks the syntax from a file extension.
func SyntaxFor(path string) Syntax {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sass":
		return SyntaxSass
	case ".css":
		return SyntaxCSS
	}
	return SyntaxSCSS
}

// Options configure a transpiler for the lifetime of one build.
type Options struct {
	// OutputStyle is expanded, nested, compact or compressed.
	OutputStyle string
	// IncludePaths are searched for imports after the importing file's directory.
	IncludePaths []string
	// Precision of numbers in the output, zero keeps the transpiler default.
	Precision int
}

// Input is one stylesheet to compile.
type Input struct {
	// Path is the absolute path of the source, used for relative imports and errors.
	Path   string
	Source string
	Syntax Syntax
}

// Output is the compiled CSS.
type Output struct {
	CSS string
}

// Transpiler compiles SASS or SCSS into CSS. Implementations must be safe for
// concurrent use since independent bundles compile in parallel.
type Transpiler interface {
	Transpile(ctx context.Context, in Input) (Output, error)
	Close() error
}

// Error is a compile failure pointing at the originating file and line.
type Error struct {
	File    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
	case e.File != "":
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IncludePathsFor returns the search path for a source: its own directory first.
func IncludePathsFor(path string, extra []string) []string {
	paths := make([]string, 0, len(extra)+1)
	paths = append(paths, filepath.Dir(path))
	return append(paths, extra...)
}
