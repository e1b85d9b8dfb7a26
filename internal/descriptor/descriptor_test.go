package descriptor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	d := Default()
	require.NoError(t, d.Validate())

	assert.Equal(t, []string{"sphinx-htmlbook-theme"}, d.BundleNames())
	assert.True(t, d.SourceMap())
	assert.True(t, d.GeneralMinifier())
	assert.True(t, d.StylesheetMinifier())
	assert.Equal(t, Pattern("styles/[name].css"), d.StylePattern())

	resolve, ok := d.Styles.Stage(StageResolve)
	require.True(t, ok)
	assert.False(t, resolve.URL)

	compile, ok := d.Styles.Stage(StageCompile)
	require.True(t, ok)
	assert.Equal(t, "expanded", compile.OutputStyle)
}

func TestDevelopmentModeSkipsMinifiers(t *testing.T) {
	d := Default()
	d.Mode = ModeDevelopment

	assert.False(t, d.GeneralMinifier())
	assert.False(t, d.StylesheetMinifier())
}

func TestSourceMap(t *testing.T) {
	tests := []struct {
		devtool  string
		expected bool
	}{
		{devtool: "source-map", expected: true},
		{devtool: "false", expected: false},
		{devtool: "", expected: false},
		{devtool: "none", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.devtool, func(t *testing.T) {
			d := Default()
			d.Devtool = tt.devtool
			assert.Equal(t, tt.expected, d.SourceMap())
		})
	}
}

func TestPattern(t *testing.T) {
	p := Pattern("scripts/[name].js")

	assert.Equal(t, "scripts/theme-bundle.js", p.Expand("theme-bundle"))
	assert.Equal(t, ".js", p.Ext())
	assert.Equal(t, "scripts/theme-bundle", p.Stem("theme-bundle"))
	require.NoError(t, p.Validate())
}

func TestPatternValidate(t *testing.T) {
	tests := []struct {
		name    string
		pattern Pattern
	}{
		{name: "empty", pattern: ""},
		{name: "no placeholder", pattern: "scripts/bundle.js"},
		{name: "absolute", pattern: "/scripts/[name].js"},
		{name: "escapes output", pattern: "../scripts/[name].js"},
		{name: "no extension", pattern: "scripts/[name]"},
		{name: "backslash", pattern: `scripts\[name].js`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.pattern.Validate())
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Descriptor)
	}{
		{
			name:   "unknown mode",
			mutate: func(d *Descriptor) { d.Mode = "staging" },
		},
		{
			name:   "no entries",
			mutate: func(d *Descriptor) { d.Entries = map[string]Sources{} },
		},
		{
			name:   "bundle name with separator",
			mutate: func(d *Descriptor) { d.Entries = map[string]Sources{"a/b": {"index.js"}} },
		},
		{
			name:   "bundle without sources",
			mutate: func(d *Descriptor) { d.Entries = map[string]Sources{"theme": {}} },
		},
		{
			name:   "missing output path",
			mutate: func(d *Descriptor) { d.Output.Path = "" },
		},
		{
			name: "extract before compile",
			mutate: func(d *Descriptor) {
				d.Styles.Chain = []Stage{
					{Stage: StageExtract, Filename: "styles/[name].css"},
					{Stage: StageCompile},
				}
			},
		},
		{
			name: "extract before resolve",
			mutate: func(d *Descriptor) {
				d.Styles.Chain = []Stage{
					{Stage: StageCompile},
					{Stage: StageExtract, Filename: "styles/[name].css"},
					{Stage: StageResolve},
				}
			},
		},
		{
			name: "duplicate stage",
			mutate: func(d *Descriptor) {
				d.Styles.Chain = []Stage{
					{Stage: StageCompile},
					{Stage: StageCompile},
					{Stage: StageExtract, Filename: "styles/[name].css"},
				}
			},
		},
		{
			name: "missing extract",
			mutate: func(d *Descriptor) {
				d.Styles.Chain = []Stage{{Stage: StageCompile}}
			},
		},
		{
			name: "missing compile",
			mutate: func(d *Descriptor) {
				d.Styles.Chain = []Stage{{Stage: StageExtract, Filename: "styles/[name].css"}}
			},
		},
		{
			name:   "unknown stage",
			mutate: func(d *Descriptor) { d.Styles.Chain = append(d.Styles.Chain, Stage{Stage: "postcss"}) },
		},
		{
			name:   "bad matcher",
			mutate: func(d *Descriptor) { d.Styles.Test = `\.scss(` },
		},
		{
			name:   "unknown minimizer",
			mutate: func(d *Descriptor) { d.Minimizers = []string{"terser"} },
		},
		{
			name:   "unknown devtool",
			mutate: func(d *Descriptor) { d.Devtool = "eval" },
		},
		{
			name:   "unknown precompression",
			mutate: func(d *Descriptor) { d.Precompress = []string{"brotli"} },
		},
		{
			name: "script and style collide",
			mutate: func(d *Descriptor) {
				d.Output.Filename = "assets/[name].out"
				d.Styles.Chain[2].Filename = "assets/[name].out"
			},
		},
		{
			name:   "unsupported target",
			mutate: func(d *Descriptor) { d.Target = "es3" },
		},
		{
			name:   "manifest escapes output",
			mutate: func(d *Descriptor) { d.Manifest = "../manifest.json" },
		},
		{
			name:   "template without output",
			mutate: func(d *Descriptor) { d.Templates = []Template{{Template: "layout.html"}} },
		},
		{
			name:   "unknown transpiler",
			mutate: func(d *Descriptor) { d.Styles.Chain[0].Transpiler = "node-sass" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Default()
			tt.mutate(&d)
			err := d.Validate()
			require.Error(t, err)
			require.ErrorIs(t, err, ErrInvalidDescriptor)
		})
	}
}

func TestValidateAcceptsSingleMinifier(t *testing.T) {
	d := Default()
	d.Minimizers = []string{MinimizerDefault}

	require.NoError(t, d.Validate())
	assert.True(t, d.GeneralMinifier())
	assert.False(t, d.StylesheetMinifier())
}

func TestParse(t *testing.T) {
	d, err := Parse([]byte(`
mode: development
entry:
  theme-bundle: ./index.js
  extra:
    - ./a.js
    - ./b.js
output:
  path: dist
  filename: js/[name].js
minimizer: ["css"]
`))
	require.NoError(t, err)

	assert.Equal(t, ModeDevelopment, d.Mode)
	assert.Equal(t, Sources{"./index.js"}, d.Entries["theme-bundle"])
	assert.Equal(t, Sources{"./a.js", "./b.js"}, d.Entries["extra"])
	assert.Len(t, d.Entries, 2)
	assert.Equal(t, "dist", d.Output.Path)
	assert.Equal(t, Pattern("js/[name].js"), d.Output.Filename)
	assert.Equal(t, []string{"css"}, d.Minimizers)

	// untouched keys keep their defaults
	assert.Equal(t, "source-map", d.Devtool)
	assert.Equal(t, Default().Styles, d.Styles)
}

func TestParseEmptyKeepsDefaults(t *testing.T) {
	d, err := Parse(nil)
	require.NoError(t, err)

	expected := Default()
	expected.Root = ""
	assert.Equal(t, expected, d)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("plugins: []\n"))
	require.Error(t, err)
}

func TestLoadResolvesRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFilename)
	require.NoError(t, os.WriteFile(path, []byte("root: theme\n"), 0600))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "theme"), d.Root)

	require.NoError(t, os.WriteFile(path, []byte("mode: production\n"), 0600))
	d, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, d.Root)
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(Default())
	require.NoError(t, err)

	d, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Default(), d)
}

func TestResolveEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/index.js", "console.log('theme')")
	writeFile(t, dir, "src/pages/a.js", "")
	writeFile(t, dir, "src/pages/b.js", "")

	d := Default()
	d.Root = dir
	d.Entries = map[string]Sources{
		"theme": {"./src/index.js"},
		"pages": {"src/pages/*.js", "src/pages/a.js"},
	}

	entries, err := d.ResolveEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "pages", entries[0].Name)
	assert.Equal(t, []string{
		filepath.Join(dir, "src/pages/a.js"),
		filepath.Join(dir, "src/pages/b.js"),
	}, entries[0].Sources)

	assert.Equal(t, "theme", entries[1].Name)
	assert.Equal(t, []string{filepath.Join(dir, "src/index.js")}, entries[1].Sources)
}

func TestResolveEntriesMissing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/index.js", "")

	tests := []struct {
		name   string
		source string
	}{
		{name: "missing file", source: "src/missing.js"},
		{name: "empty glob", source: "src/*.ts"},
		{name: "directory", source: "src"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Default()
			d.Root = dir
			d.Entries = map[string]Sources{"theme": {tt.source}}

			_, err := d.ResolveEntries()
			require.ErrorIs(t, err, ErrEntryNotFound)
		})
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}
