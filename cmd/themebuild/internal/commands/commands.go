package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/wolfeidau/themebuild/internal/descriptor"
)

type Globals struct {
	Debug   bool
	Version string
}

// ConfigFlags locate the build descriptor.
type ConfigFlags struct {
	Config string `help:"build descriptor file (default: ./themebuild.yaml, built in defaults when absent)" short:"c" env:"THEMEBUILD_CONFIG"`
}

// load reads the descriptor. Without an explicit path the default file is used
// when present, otherwise the built in configuration rooted at the working directory.
func (c ConfigFlags) load() (descriptor.Descriptor, error) {
	if c.Config != "" {
		return descriptor.Load(c.Config)
	}

	d, err := descriptor.Load(descriptor.DefaultFilename)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return descriptor.Descriptor{}, err
	}

	wd, err := os.Getwd()
	if err != nil {
		return descriptor.Descriptor{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	d = descriptor.Default()
	d.Root = wd
	return d, nil
}
