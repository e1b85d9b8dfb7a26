package assets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

const manifestVersion = 1

// Manifest records what one build produced. Paths are slash separated and
// relative to the output directory.
type Manifest struct {
	Version int                     `json:"version"`
	Mode    string                  `json:"mode"`
	Bundles map[string]BundleAssets `json:"bundles"`
	Files   map[string]FileInfo     `json:"files"`
}

// BundleAssets are the outputs of one bundle.
type BundleAssets struct {
	Script    string `json:"script"`
	ScriptMap string `json:"scriptMap,omitempty"`
	Style     string `json:"style,omitempty"`
	StyleMap  string `json:"styleMap,omitempty"`
	// Stylesheets are the sources reached from the bundle, relative to the root.
	Stylesheets []string `json:"stylesheets,omitempty"`
}

type FileInfo struct {
	Bytes  int    `json:"bytes"`
	Digest string `json:"xxhash"`
}

// Scripts returns every bundle script in bundle name order.
func (m *Manifest) Scripts() []string {
	var scripts []string
	for _, name := range m.BundleNames() {
		scripts = append(scripts, m.Bundles[name].Script)
	}
	return scripts
}

// Styles returns every extracted stylesheet in bundle name order.
func (m *Manifest) Styles() []string {
	var styles []string
	for _, name := range m.BundleNames() {
		if style := m.Bundles[name].Style; style != "" {
			styles = append(styles, style)
		}
	}
	return styles
}

func (m *Manifest) BundleNames() []string {
	names := make([]string, 0, len(m.Bundles))
	for name := range m.Bundles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Bundle returns the assets of a single bundle.
func (m *Manifest) Bundle(name string) (BundleAssets, error) {
	b, ok := m.Bundles[name]
	if !ok {
		return BundleAssets{}, zerr.With(fmt.Errorf("%w: %s", ErrBundleNotFound, name), "bundle", name)
	}
	return b, nil
}

// ReadManifest loads a manifest written by a previous build.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if m.Bundles == nil {
		m.Bundles = map[string]BundleAssets{}
	}
	return &m, nil
}

type manifestInput struct {
	root        string
	outDir      string
	mode        string
	scriptPaths map[string]string
	stylePaths  map[string]string
	stylesheets map[string][]string
	files       []outputFile
}

func newManifest(in manifestInput) (*Manifest, error) {
	m := &Manifest{
		Version: manifestVersion,
		Mode:    in.mode,
		Bundles: map[string]BundleAssets{},
		Files:   map[string]FileInfo{},
	}

	present := map[string]bool{}
	for _, f := range in.files {
		rel, err := relSlash(in.outDir, f.Path)
		if err != nil {
			return nil, err
		}
		present[rel] = true
		m.Files[rel] = FileInfo{
			Bytes:  len(f.Contents),
			Digest: strconv.FormatUint(xxhash.Sum64(f.Contents), 16),
		}
	}

	for name, script := range in.scriptPaths {
		b := BundleAssets{Script: script}
		if present[script+".map"] {
			b.ScriptMap = script + ".map"
		}
		if style, ok := in.stylePaths[name]; ok && present[style] {
			b.Style = style
			if present[style+".map"] {
				b.StyleMap = style + ".map"
			}
		}
		for _, sheet := range in.stylesheets[name] {
			rel, err := relSlash(in.root, sheet)
			if err != nil {
				return nil, err
			}
			b.Stylesheets = append(b.Stylesheets, rel)
		}
		m.Bundles[name] = b
	}

	return m, nil
}

func (m *Manifest) encode() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return append(data, '\n'), nil
}

func relSlash(base, path string) (string, error) {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return "", fmt.Errorf("failed to relativise %s: %w", path, err)
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") {
		return filepath.ToSlash(path), nil
	}
	return rel, nil
}
