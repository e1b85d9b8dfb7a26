package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/wolfeidau/themebuild/internal/logger"
)

// CheckCmd validates the descriptor and its entry points without building.
type CheckCmd struct {
	ConfigFlags `embed:""`
}

func (c *CheckCmd) Run(ctx context.Context, globals *Globals) error {
	logger.Install(globals.Debug)
	return c.run(os.Stdout)
}

func (c *CheckCmd) run(out io.Writer) error {
	desc, err := c.load()
	if err != nil {
		return err
	}

	if err := desc.Validate(); err != nil {
		return err
	}

	entries, err := desc.ResolveEntries()
	if err != nil {
		return err
	}

	for _, e := range entries {
		fmt.Fprintf(out, "%s\t%d source(s)\t%s\n", e.Name, len(e.Sources), desc.Output.Filename.Expand(e.Name))
	}

	return nil
}
