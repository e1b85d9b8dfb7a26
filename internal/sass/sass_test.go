package sass

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntaxFor(t *testing.T) {
	tests := []struct {
		path     string
		expected Syntax
	}{
		{path: "theme.scss", expected: SyntaxSCSS},
		{path: "theme.SCSS", expected: SyntaxSCSS},
		{path: "legacy.sass", expected: SyntaxSass},
		{path: "vendor.css", expected: SyntaxCSS},
		{path: "noext", expected: SyntaxSCSS},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, SyntaxFor(tt.path))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{File: "src/theme.scss", Line: 3, Column: 5, Message: "unknown colour"}
	assert.Equal(t, "src/theme.scss:3:5: unknown colour", err.Error())

	err = &Error{File: "src/theme.scss", Message: "unreadable"}
	assert.Equal(t, "src/theme.scss: unreadable", err.Error())

	err = &Error{Message: "process exited"}
	assert.Equal(t, "process exited", err.Error())
}

func TestErrorUnwrap(t *testing.T) {
	err := error(&Error{File: "theme.scss", Message: "missing", Err: fs.ErrNotExist})
	require.ErrorIs(t, err, fs.ErrNotExist)

	var serr *Error
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "theme.scss", serr.File)
}

func TestIncludePathsFor(t *testing.T) {
	path := filepath.Join("src", "styles", "theme.scss")
	paths := IncludePathsFor(path, []string{"node_modules"})
	assert.Equal(t, []string{filepath.Join("src", "styles"), "node_modules"}, paths)
}
