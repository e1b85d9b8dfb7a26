package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/wolfeidau/themebuild/internal/descriptor"
)

// PrintConfigCmd prints the effective descriptor as YAML.
type PrintConfigCmd struct {
	ConfigFlags `embed:""`
}

func (p *PrintConfigCmd) Run(ctx context.Context) error {
	return p.run(os.Stdout)
}

func (p *PrintConfigCmd) run(out io.Writer) error {
	desc, err := p.load()
	if err != nil {
		return err
	}

	data, err := descriptor.Marshal(desc)
	if err != nil {
		return fmt.Errorf("failed to marshal descriptor: %w", err)
	}

	_, err = out.Write(data)
	return err
}
