package libsass

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/themebuild/internal/sass"
)

const themeSCSS = `$accent: #336699;

.admonition {
  border-color: $accent;

  .title {
    font-weight: bold;
  }
}
`

func TestTranspile(t *testing.T) {
	tr := New(sass.Options{OutputStyle: "expanded"})
	defer tr.Close()

	out, err := tr.Transpile(context.Background(), sass.Input{
		Path:   filepath.Join(t.TempDir(), "theme.scss"),
		Source: themeSCSS,
		Syntax: sass.SyntaxSCSS,
	})
	require.NoError(t, err)

	assert.Contains(t, out.CSS, "border-color: #336699;")
	assert.Contains(t, out.CSS, ".admonition .title {")
	assert.NotContains(t, out.CSS, "$accent")
}

func TestTranspileCompressed(t *testing.T) {
	tr := New(sass.Options{OutputStyle: "compressed"})

	out, err := tr.Transpile(context.Background(), sass.Input{
		Path:   "theme.scss",
		Source: themeSCSS,
	})
	require.NoError(t, err)
	assert.NotContains(t, out.CSS, "\n  ")
	assert.Contains(t, out.CSS, ".admonition .title{")
}

func TestTranspileIndentedSyntax(t *testing.T) {
	tr := New(sass.Options{})

	out, err := tr.Transpile(context.Background(), sass.Input{
		Path:   "legacy.sass",
		Source: "$gap: 4px\n.toc\n  margin: $gap\n",
		Syntax: sass.SyntaxSass,
	})
	require.NoError(t, err)
	assert.Contains(t, out.CSS, "margin: 4px")
}

func TestTranspileImportsRelativeToSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "partials"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "partials", "_colours.scss"), []byte("$link: #0645ad;\n"), 0o600))

	tr := New(sass.Options{})
	out, err := tr.Transpile(context.Background(), sass.Input{
		Path:   filepath.Join(dir, "theme.scss"),
		Source: "@import \"partials/colours\";\na { color: $link; }\n",
	})
	require.NoError(t, err)
	assert.Contains(t, out.CSS, "color: #0645ad;")
}

func TestTranspileIncludePaths(t *testing.T) {
	vendor := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(vendor, "_grid.scss"), []byte(".grid { display: grid; }\n"), 0o600))

	tr := New(sass.Options{IncludePaths: []string{vendor}})
	out, err := tr.Transpile(context.Background(), sass.Input{
		Path:   filepath.Join(t.TempDir(), "theme.scss"),
		Source: "@import \"grid\";\n",
	})
	require.NoError(t, err)
	assert.Contains(t, out.CSS, ".grid")
}

func TestTranspileErrorCarriesLocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.scss")
	tr := New(sass.Options{})

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

func TestTranspileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(sass.Options{}).Transpile(ctx, sass.Input{Path: "theme.scss", Source: "a { b: c; }"})
	require.ErrorIs(t, err, context.Canceled)
}
