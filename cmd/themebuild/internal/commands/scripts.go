package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/wolfeidau/themebuild/internal/assets"
)

// ScriptsCmd prints the script and stylesheet paths of a built bundle.
type ScriptsCmd struct {
	ConfigFlags `embed:""`

	Bundle string `arg:"" help:"bundle name"`
}

func (s *ScriptsCmd) Run(ctx context.Context) error {
	return s.run(os.Stdout)
}

func (s *ScriptsCmd) run(out io.Writer) error {
	desc, err := s.load()
	if err != nil {
		return err
	}

	pipeline, err := assets.New(desc)
	if err != nil {
		return err
	}

	if _, err := pipeline.LoadManifest(); err != nil {
		return err
	}

	scripts, styles, err := pipeline.LoadScripts(s.Bundle)
	if err != nil {
		return err
	}

	for _, p := range styles {
		fmt.Fprintln(out, p)
	}
	for _, p := range scripts {
		fmt.Fprintln(out, p)
	}
	return nil
}
