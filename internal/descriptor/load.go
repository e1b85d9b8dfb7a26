package descriptor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFilename is looked up in the working directory when no descriptor path is given.
const DefaultFilename = "themebuild.yaml"

// Load reads a YAML descriptor. Keys present in the file replace the defaults,
// absent keys keep them. A relative root is resolved against the file's directory.
func Load(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("failed to read descriptor: %w", err)
	}

	d, err := Parse(data)
	if err != nil {
		return Descriptor{}, fmt.Errorf("failed to parse descriptor %s: %w", path, err)
	}

	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return Descriptor{}, fmt.Errorf("failed to resolve descriptor directory: %w", err)
	}

	switch {
	case d.Root == "":
		d.Root = dir
	case !filepath.IsAbs(d.Root):
		d.Root = filepath.Join(dir, d.Root)
	}

	return d, nil
}

// Parse decodes a YAML descriptor over Default. Unknown keys are rejected.
func Parse(data []byte) (Descriptor, error) {
	d := Default()
	d.Root = ""
	d.Entries = nil

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return Descriptor{}, err
	}

	if d.Entries == nil {
		d.Entries = Default().Entries
	}

	return d, nil
}

// Marshal renders the descriptor as YAML.
func Marshal(d Descriptor) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalYAML accepts either a single path or a list of paths.
func (s *Sources) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		*s = Sources{single}
		return nil
	}

	var list []string
	if err := value.Decode(&list); err != nil {
		return err
	}
	*s = list
	return nil
}
