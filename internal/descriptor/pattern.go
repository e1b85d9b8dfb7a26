package descriptor

import (
	"fmt"
	"path"
	"strings"
)

// NamePlaceholder is replaced by the bundle name when a pattern is expanded.
const NamePlaceholder = "[name]"

// Pattern is a slash separated output filename template such as "scripts/[name].js".
type Pattern string

// Expand substitutes the bundle name.
func (p Pattern) Expand(name string) string {
	return strings.ReplaceAll(string(p), NamePlaceholder, name)
}

// Ext returns the extension of the pattern including the dot.
func (p Pattern) Ext() string {
	return path.Ext(string(p))
}

// Stem returns the expanded pattern without its extension.
func (p Pattern) Stem(name string) string {
	return strings.TrimSuffix(p.Expand(name), p.Ext())
}

// Validate checks the pattern stays inside the output directory and names each bundle.
func (p Pattern) Validate() error {
	s := string(p)
	switch {
	case s == "":
		return fmt.Errorf("pattern is empty")
	case !strings.Contains(s, NamePlaceholder):
		return fmt.Errorf("pattern %q must contain %s", s, NamePlaceholder)
	case path.IsAbs(s) || strings.HasPrefix(s, `\`):
		return fmt.Errorf("pattern %q must be relative", s)
	case strings.Contains(s, `\`):
		return fmt.Errorf("pattern %q must use forward slashes", s)
	case p.Ext() == "" || strings.Contains(p.Ext(), NamePlaceholder):
		return fmt.Errorf("pattern %q needs a file extension", s)
	}

	for _, seg := range strings.Split(s, "/") {
		if seg == ".." {
			return fmt.Errorf("pattern %q escapes the output directory", s)
		}
	}
	return nil
}
