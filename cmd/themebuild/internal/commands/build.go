package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/themebuild/internal/assets"
	"github.com/wolfeidau/themebuild/internal/descriptor"
	"github.com/wolfeidau/themebuild/internal/logger"
	"github.com/wolfeidau/themebuild/internal/telemetry"
)

// BuildCmd runs the asset pipeline and writes the output tree.
type BuildCmd struct {
	ConfigFlags `embed:""`

	Mode        string   `help:"override the descriptor mode (production or development)" env:"THEMEBUILD_MODE"`
	NoSourceMap bool     `help:"do not emit source maps" env:"THEMEBUILD_NO_SOURCE_MAP"`
	Precompress []string `help:"write precompressed siblings (gzip, zstd)" env:"THEMEBUILD_PRECOMPRESS"`
	DartSass    string   `help:"dart sass executable used by the dartsass transpiler" env:"THEMEBUILD_DART_SASS"`
	Telemetry   bool     `help:"export build metrics and traces over OTLP, configured with the OTEL_* variables" env:"THEMEBUILD_TELEMETRY"`
}

func (b *BuildCmd) Run(ctx context.Context, globals *Globals) error {
	logger.Install(globals.Debug)

	if b.Telemetry {
		shutdown, err := telemetry.Init(ctx, "themebuild", globals.Version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("Failed to shutdown telemetry")
				}
			}()
		}
	}

	return b.run(ctx, os.Stdout)
}

func (b *BuildCmd) run(ctx context.Context, out io.Writer) error {
	desc, err := b.load()
	if err != nil {
		return err
	}

	if b.Mode != "" {
		desc.Mode = descriptor.Mode(b.Mode)
	}
	if b.NoSourceMap {
		desc.Devtool = "false"
	}
	if len(b.Precompress) > 0 {
		desc.Precompress = b.Precompress
	}

	pipeline, err := assets.New(desc, assets.WithDartSassBinary(b.DartSass))
	if err != nil {
		return err
	}

	manifest, err := pipeline.Build(ctx)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	log.Debug().Int("files", len(manifest.Files)).Msg("Build complete")

	for _, name := range manifest.BundleNames() {
		bundle := manifest.Bundles[name]
		fmt.Fprintf(out, "%s\t%s", name, bundle.Script)
		if bundle.Style != "" {
			fmt.Fprintf(out, "\t%s", bundle.Style)
		}
		fmt.Fprintln(out)
	}

	return nil
}
