package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"sync"

	"github.com/wolfeidau/themebuild/internal/descriptor"
	"github.com/wolfeidau/themebuild/internal/minify"
	"github.com/wolfeidau/themebuild/internal/sass"
	"github.com/wolfeidau/themebuild/internal/telemetry"
)

// Metafile is the subset of the esbuild metafile the pipeline reads.
type Metafile struct {
	Inputs  map[string]InputInfo  `json:"inputs"`
	Outputs map[string]OutputInfo `json:"outputs"`
}

type InputInfo struct {
	Bytes   int          `json:"bytes"`
	Imports []ImportInfo `json:"imports"`
}

type OutputInfo struct {
	Bytes      int          `json:"bytes"`
	EntryPoint string       `json:"entryPoint"`
	Imports    []ImportInfo `json:"imports"`
}

type ImportInfo struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	External bool   `json:"external,omitempty"`
}

// outputFile is a built file held in memory until the whole build succeeded.
type outputFile struct {
	// Path is absolute.
	Path     string
	Contents []byte
}

// Pipeline hands a build descriptor to the bundler and stylesheet stages.
type Pipeline struct {
	desc           descriptor.Descriptor
	transpiler     sass.Transpiler
	dartSassBinary string
	htmlMinifier   *minify.HTML
	metrics        *telemetry.Metrics
	manifest       *Manifest
	metadata       *Metafile
	mu             sync.RWMutex
}

// New validates the descriptor and returns a pipeline for it.
func New(desc descriptor.Descriptor, opts ...Option) (*Pipeline, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		desc:         desc,
		htmlMinifier: minify.NewHTML(),
		metrics:      telemetry.GetMetrics(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Descriptor returns the descriptor the pipeline was created with.
func (p *Pipeline) Descriptor() descriptor.Descriptor {
	return p.desc
}

func marshal(value any) string {
	buf := new(bytes.Buffer)

	if err := json.NewEncoder(buf).Encode(value); err != nil {
		panic(errors.New("context can only be json serializable"))
	}

	return buf.String()
}
