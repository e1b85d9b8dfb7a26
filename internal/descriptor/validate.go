package descriptor

import (
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"go.trai.ch/zerr"
)

var bundleNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

var outputStyles = []string{"expanded", "nested", "compact", "compressed"}

var targets = []string{"", "es6", "es2015", "es2016", "es2017", "es2018", "es2019", "es2020", "es2021", "es2022", "esnext"}

// Validate checks the descriptor is structurally sound. It does not touch the file system.
func (d Descriptor) Validate() error {
	if d.Mode != ModeProduction && d.Mode != ModeDevelopment {
		return invalid("mode", fmt.Sprintf("unknown mode %q, want production or development", d.Mode))
	}

	if !slices.Contains(targets, strings.ToLower(d.Target)) {
		return invalid("target", fmt.Sprintf("unsupported target %q", d.Target))
	}

	if len(d.Entries) == 0 {
		return invalid("entry", "at least one entry point is required")
	}

	for _, name := range d.BundleNames() {
		if !bundleNameRe.MatchString(name) {
			return invalid("entry", fmt.Sprintf("bundle name %q must be a plain file stem", name))
		}
		sources := d.Entries[name]
		if len(sources) == 0 {
			return invalid("entry", fmt.Sprintf("bundle %q declares no sources", name))
		}
		for _, src := range sources {
			if strings.TrimSpace(src) == "" {
				return invalid("entry", fmt.Sprintf("bundle %q declares an empty source path", name))
			}
		}
	}

	if strings.TrimSpace(d.Output.Path) == "" {
		return invalid("output.path", "output directory is required")
	}
	if err := d.Output.Filename.Validate(); err != nil {
		return invalid("output.filename", err.Error())
	}

	if err := d.validateStyles(); err != nil {
		return err
	}

	for _, m := range d.Minimizers {
		switch m {
		case MinimizerDefault, MinimizerDefaultAlias, MinimizerCSS:
		default:
			return invalid("minimizer", fmt.Sprintf("unknown minimizer %q", m))
		}
	}

	switch strings.ToLower(strings.TrimSpace(d.Devtool)) {
	case "", "false", "none", "source-map":
	default:
		return invalid("devtool", fmt.Sprintf("unsupported devtool %q, want source-map or false", d.Devtool))
	}

	for _, enc := range d.Precompress {
		if enc != PrecompressGzip && enc != PrecompressZstd {
			return invalid("precompress", fmt.Sprintf("unknown encoding %q", enc))
		}
	}

	if d.Manifest != "" {
		if err := insideOutput(d.Manifest); err != nil {
			return invalid("manifest", err.Error())
		}
	}

	for i, tmpl := range d.Templates {
		if tmpl.Template == "" || tmpl.Output == "" {
			return invalid("templates", fmt.Sprintf("template %d needs both template and output", i))
		}
		if err := insideOutput(tmpl.Output); err != nil {
			return invalid("templates", err.Error())
		}
	}

	// Either asset class would ship unminified if one of the pair is missing.
	if d.Production() && len(d.Minimizers) > 0 {
		if !d.GeneralMinifier() {
			log.Warn().Strs("minimizer", d.Minimizers).Msg("General minifier missing, scripts will be emitted unminified")
		}
		if !d.StylesheetMinifier() {
			log.Warn().Strs("minimizer", d.Minimizers).Msg("Stylesheet minifier missing, stylesheets will be emitted unminified")
		}
	}

	return nil
}

func (d Descriptor) validateStyles() error {
	if _, err := regexp.Compile(d.Styles.Test); err != nil || d.Styles.Test == "" {
		return invalid("styles.test", fmt.Sprintf("invalid stylesheet matcher %q", d.Styles.Test))
	}

	last := -1
	for _, st := range d.Styles.Chain {
		rank, ok := stageRank[st.Stage]
		if !ok {
			return invalid("styles.chain", fmt.Sprintf("unknown stage %q", st.Stage))
		}
		if rank == last {
			return invalid("styles.chain", fmt.Sprintf("stage %q declared twice", st.Stage))
		}
		if rank < last {
			return invalid("styles.chain", fmt.Sprintf("stage %q out of order, want compile, resolve, extract", st.Stage))
		}
		last = rank
	}

	compile, ok := d.Styles.Stage(StageCompile)
	if !ok {
		return invalid("styles.chain", "compile stage is required")
	}
	if compile.OutputStyle != "" && !slices.Contains(outputStyles, compile.OutputStyle) {
		return invalid("styles.chain", fmt.Sprintf("unknown outputStyle %q", compile.OutputStyle))
	}
	switch compile.Transpiler {
	case "", TranspilerLibSass, TranspilerDartSass:
	default:
		return invalid("styles.chain", fmt.Sprintf("unknown transpiler %q", compile.Transpiler))
	}

	extract, ok := d.Styles.Stage(StageExtract)
	if !ok {
		return invalid("styles.chain", "extract stage is required")
	}
	if err := extract.Filename.Validate(); err != nil {
		return invalid("styles.chain", err.Error())
	}

	probe := "bundle"
	if d.Output.Filename.Expand(probe) == extract.Filename.Expand(probe) {
		return invalid("styles.chain", "script and stylesheet patterns produce the same file")
	}

	return nil
}

// insideOutput checks a path is relative to the output directory and stays in it.
func insideOutput(p string) error {
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return fmt.Errorf("%q must be relative to the output directory", p)
	}
	for _, seg := range strings.Split(filepath.ToSlash(p), "/") {
		if seg == ".." {
			return fmt.Errorf("%q escapes the output directory", p)
		}
	}
	return nil
}

func invalid(field, reason string) error {
	return zerr.With(fmt.Errorf("%w: %s: %s", ErrInvalidDescriptor, field, reason), "field", field)
}
