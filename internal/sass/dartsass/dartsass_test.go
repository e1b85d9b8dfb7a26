package dartsass

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/themebuild/internal/sass"
)

func TestLineAt(t *testing.T) {
	src := "a {\n  color: red;\n  border: $x;\n}\n"

	assert.Equal(t, 1, lineAt(src, 0))
	assert.Equal(t, 2, lineAt(src, 4))
	assert.Equal(t, 3, lineAt(src, 20))
	assert.Equal(t, 5, lineAt(src, 1000))
	assert.Equal(t, 1, lineAt(src, -1))
}

func TestFileURL(t *testing.T) {
	assert.Equal(t, "file:///srv/theme/src/theme.scss", fileURL("/srv/theme/src/theme.scss"))
}

func newTranspiler(t *testing.T, opts sass.Options) *Transpiler {
	t.Helper()
	if _, err := exec.LookPath(DefaultBinary); err != nil {
		t.Skip("dart sass not installed")
	}

	tr, err := New("", opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })
	return tr
}

func TestTranspile(t *testing.T) {
	tr := newTranspiler(t, sass.Options{OutputStyle: "expanded"})

	out, err := tr.Transpile(context.Background(), sass.Input{
		Path:   filepath.Join(t.TempDir(), "theme.scss"),
		Source: "$accent: #336699;\n.admonition {\n  .title { color: $accent; }\n}\n",
	})
	require.NoError(t, err)
	assert.Contains(t, out.CSS, ".admonition .title")
	assert.Contains(t, out.CSS, "#336699")
}

func TestTranspileErrorCarriesLocation(t *testing.T) {
	tr := newTranspiler(t, sass.Options{})
	path := filepath.Join(t.TempDir(), "theme.scss")

	_, err := tr.Transpile(context.Background(), sass.Input{
		Path:   path,
		Source: ".admonition {\n  color: red;\n  border: $missing;\n}\n",
	})
	require.Error(t, err)

	var serr *sass.Error
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, path, serr.File)
	assert.Equal(t, 3, serr.Line)
	assert.Contains(t, serr.Message, "Undefined variable")
}
