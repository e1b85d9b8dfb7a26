package assets

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"go.trai.ch/zerr"
)

var (
	// ErrCompilation is returned when a script or stylesheet fails to compile or resolve.
	ErrCompilation = zerr.New("compilation failed")

	// ErrWrite is returned when the output tree cannot be written.
	ErrWrite = zerr.New("failed to write output")

	// ErrNotBuilt is returned when asset URLs are requested before a build.
	ErrNotBuilt = zerr.New("assets not built yet, call Build() first")

	// ErrBundleNotFound is returned when a bundle is missing from the manifest.
	ErrBundleNotFound = zerr.New("bundle not found in manifest")
)

// compileError logs every bundler message and returns an error naming the first one.
func compileError(stage string, msgs []api.Message) error {
	for _, msg := range msgs {
		ev := log.Error().Str("stage", stage).Str("error", msg.Text)
		if msg.Location != nil {
			ev = ev.Str("file", msg.Location.File).Int("line", msg.Location.Line)
		}
		ev.Msg("Build error")
	}

	first := msgs[0]
	text := formatMessage(first)
	if len(msgs) > 1 {
		text = fmt.Sprintf("%s (and %d more)", text, len(msgs)-1)
	}

	err := zerr.With(fmt.Errorf("%w: %s: %s", ErrCompilation, stage, text), "stage", stage)
	if first.Location != nil {
		err = zerr.With(zerr.With(err, "file", first.Location.File), "line", first.Location.Line)
	}
	return err
}

func formatMessage(msg api.Message) string {
	var b strings.Builder
	if loc := msg.Location; loc != nil && loc.File != "" {
		if loc.Line > 0 {
			fmt.Fprintf(&b, "%s:%d:%d: ", loc.File, loc.Line, loc.Column+1)
		} else {
			fmt.Fprintf(&b, "%s: ", loc.File)
		}
	}
	if msg.PluginName != "" {
		fmt.Fprintf(&b, "[%s] ", msg.PluginName)
	}
	b.WriteString(msg.Text)
	return b.String()
}

func writeError(path string, err error) error {
	return zerr.With(fmt.Errorf("%w: %s: %w", ErrWrite, path, err), "path", path)
}
