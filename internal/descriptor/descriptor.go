package descriptor

import (
	"slices"
	"strings"
)

// Mode selects between production and development builds, minifiers only run in production.
type Mode string

const (
	ModeProduction  Mode = "production"
	ModeDevelopment Mode = "development"
)

// StageKind names one stage of the stylesheet transform chain.
type StageKind string

const (
	StageCompile StageKind = "compile"
	StageResolve StageKind = "resolve"
	StageExtract StageKind = "extract"
)

// stageRank is the fixed position of each stage in the chain.
var stageRank = map[StageKind]int{
	StageCompile: 0,
	StageResolve: 1,
	StageExtract: 2,
}

const (
	// MinimizerDefault keeps the bundler's general-purpose minifier, spelled "..." in webpack.
	MinimizerDefault = "..."
	// MinimizerDefaultAlias is accepted in place of "..." for readability in YAML.
	MinimizerDefaultAlias = "default"
	// MinimizerCSS adds the dedicated stylesheet minifier.
	MinimizerCSS = "css"
)

const (
	TranspilerLibSass  = "libsass"
	TranspilerDartSass = "dartsass"
)

const (
	PrecompressGzip = "gzip"
	PrecompressZstd = "zstd"
)

// Descriptor declares what inputs map to what outputs and through which stages.
// It is built once, validated, read by a single build and then discarded.
type Descriptor struct {
	// Root is the directory every relative path is resolved against.
	Root string `yaml:"root,omitempty"`
	// Mode is production or development.
	Mode Mode `yaml:"mode"`
	// Devtool selects source map emission, "source-map" or "false".
	Devtool string `yaml:"devtool"`
	// Target is the esbuild language target for scripts.
	Target string `yaml:"target,omitempty"`
	// Entries maps a bundle name to its source files or glob patterns.
	Entries map[string]Sources `yaml:"entry"`
	Output  Output             `yaml:"output"`
	Styles  Styles             `yaml:"styles"`
	// Minimizers is the minifier set applied to production builds.
	Minimizers []string `yaml:"minimizer"`
	// Metafile is an optional path, relative to Root, for the esbuild metafile.
	Metafile string `yaml:"metafile,omitempty"`
	// Manifest is the build manifest path relative to the output directory.
	Manifest string `yaml:"manifest,omitempty"`
	// Precompress lists encodings written next to every output.
	Precompress []string   `yaml:"precompress,omitempty"`
	Templates   []Template `yaml:"templates,omitempty"`
}

// Sources lists the files of one bundle. A single scalar is accepted in YAML.
type Sources []string

// Output is the destination directory and script filename pattern.
type Output struct {
	Path     string  `yaml:"path"`
	Filename Pattern `yaml:"filename"`
}

// Styles is the transform chain applied to stylesheets matching Test.
type Styles struct {
	Test  string  `yaml:"test"`
	Chain []Stage `yaml:"chain"`
}

// Stage is one step of the stylesheet chain. Only the fields of its kind are read.
type Stage struct {
	Stage StageKind `yaml:"stage"`

	// compile
	OutputStyle  string   `yaml:"outputStyle,omitempty"`
	IncludePaths []string `yaml:"includePaths,omitempty"`
	Precision    int      `yaml:"precision,omitempty"`
	Transpiler   string   `yaml:"transpiler,omitempty"`

	// resolve
	URL bool `yaml:"url,omitempty"`

	// extract
	Filename Pattern `yaml:"filename,omitempty"`
}

// Template is an html/template file rendered after a build with the asset URLs.
type Template struct {
	// Template is relative to Root.
	Template string `yaml:"template"`
	// Output is relative to the output directory.
	Output string `yaml:"output"`
	// Minify shrinks the rendered markup in production builds.
	Minify bool `yaml:"minify,omitempty"`
}

// Default returns the sphinx-htmlbook-theme configuration.
func Default() Descriptor {
	return Descriptor{
		Root:    ".",
		Mode:    ModeProduction,
		Devtool: "source-map",
		Target:  "es2017",
		Entries: map[string]Sources{
			"sphinx-htmlbook-theme": {"./src/sphinx_htmlbook_theme/assets/scripts/index.js"},
		},
		Output: Output{
			Path:     "src/sphinx_htmlbook_theme/theme/sphinx_htmlbook_theme/static",
			Filename: "scripts/[name].js",
		},
		Styles: Styles{
			Test: `\.scss$`,
			Chain: []Stage{
				{Stage: StageCompile, OutputStyle: "expanded", Transpiler: TranspilerLibSass},
				{Stage: StageResolve, URL: false},
				{Stage: StageExtract, Filename: "styles/[name].css"},
			},
		},
		Minimizers: []string{MinimizerDefault, MinimizerCSS},
		Manifest:   "manifest.json",
	}
}

// Stage returns the configured stage of the given kind.
func (s Styles) Stage(kind StageKind) (Stage, bool) {
	for _, st := range s.Chain {
		if st.Stage == kind {
			return st, true
		}
	}
	return Stage{}, false
}

// Production reports whether minifiers apply to this build.
func (d Descriptor) Production() bool {
	return d.Mode == ModeProduction
}

// SourceMap reports whether debug maps accompany compiled output.
func (d Descriptor) SourceMap() bool {
	switch strings.ToLower(strings.TrimSpace(d.Devtool)) {
	case "", "false", "none":
		return false
	}
	return true
}

// GeneralMinifier reports whether scripts are minified.
func (d Descriptor) GeneralMinifier() bool {
	return d.Production() && (slices.Contains(d.Minimizers, MinimizerDefault) || slices.Contains(d.Minimizers, MinimizerDefaultAlias))
}

// StylesheetMinifier reports whether extracted stylesheets are minified.
func (d Descriptor) StylesheetMinifier() bool {
	return d.Production() && slices.Contains(d.Minimizers, MinimizerCSS)
}

// StylePattern returns the extract filename pattern.
func (d Descriptor) StylePattern() Pattern {
	st, _ := d.Styles.Stage(StageExtract)
	return st.Filename
}

// BundleNames returns the entry names in sorted order.
func (d Descriptor) BundleNames() []string {
	names := make([]string, 0, len(d.Entries))
	for name := range d.Entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
