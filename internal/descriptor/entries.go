package descriptor

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Entry is a bundle whose sources have been resolved to existing absolute paths.
type Entry struct {
	Name    string
	Sources []string
}

// ResolveEntries expands glob patterns and checks every declared source exists.
// Bundles come back sorted by name, sources keep their declared order.
func (d Descriptor) ResolveEntries() ([]Entry, error) {
	root, err := d.AbsRoot()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(d.Entries))
	for _, name := range d.BundleNames() {
		var sources []string
		for _, src := range d.Entries[name] {
			matches, err := resolveSource(root, src)
			if err != nil {
				return nil, zerr.With(zerr.With(err, "bundle", name), "path", src)
			}
			for _, m := range matches {
				if !slices.Contains(sources, m) {
					sources = append(sources, m)
				}
			}
		}
		entries = append(entries, Entry{Name: name, Sources: sources})
	}

	return entries, nil
}

// AbsRoot returns Root as an absolute path.
func (d Descriptor) AbsRoot() (string, error) {
	root := d.Root
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root %q: %w", root, err)
	}
	return abs, nil
}

// OutputDir returns the absolute destination directory.
func (d Descriptor) OutputDir() (string, error) {
	return d.resolve(d.Output.Path)
}

// Path resolves p against Root unless it is already absolute.
func (d Descriptor) Path(p string) (string, error) {
	return d.resolve(p)
}

func (d Descriptor) resolve(p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	root, err := d.AbsRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, filepath.FromSlash(p)), nil
}

func resolveSource(root, src string) ([]string, error) {
	p := filepath.FromSlash(src)
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}

	if strings.ContainsAny(src, "*?[") {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("%w: bad pattern %q: %v", ErrEntryNotFound, src, err)
		}
		var files []string
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
				files = append(files, m)
			}
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%w: %q matched no files", ErrEntryNotFound, src)
		}
		slices.Sort(files)
		return files, nil
	}

	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, p)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrEntryNotFound, p)
	}
	return []string{p}, nil
}
