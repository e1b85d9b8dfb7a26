package assets

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/wolfeidau/themebuild/internal/descriptor"
)

var templateFuncs = template.FuncMap{
	"marshal": marshal,
	"safe": func(s string) template.HTML {
		return template.HTML(s) //nolint:gosec
	},
}

// renderTemplates renders each configured template with the URLs of the build,
// the results join the same commit as the assets.
func (p *Pipeline) renderTemplates(ctx context.Context, outDir string, m *Manifest) ([]outputFile, error) {
	var files []outputFile
	for _, t := range p.desc.Templates {
		out, err := p.renderTemplate(ctx, t, outDir, m)
		if err != nil {
			return nil, err
		}
		files = append(files, out)
	}
	return files, nil
}

func (p *Pipeline) renderTemplate(ctx context.Context, t descriptor.Template, outDir string, m *Manifest) (outputFile, error) {
	path, err := p.desc.Path(t.Template)
	if err != nil {
		return outputFile{}, err
	}

	tmpl, err := template.New(filepath.Base(path)).Funcs(templateFuncs).ParseFiles(path)
	if err != nil {
		return outputFile{}, fmt.Errorf("failed to parse template %s: %w", t.Template, err)
	}

	data := map[string]any{
		"Scripts":  m.Scripts(),
		"Styles":   m.Styles(),
		"Bundles":  m.Bundles,
		"Manifest": m,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return outputFile{}, fmt.Errorf("failed to render template %s: %w", t.Template, err)
	}

	contents := buf.Bytes()
	if t.Minify && p.desc.Production() {
		minified, err := p.htmlMinifier.Minify(contents)
		if err != nil {
			return outputFile{}, fmt.Errorf("failed to minify template %s: %w", t.Template, err)
		}
		if saved := len(contents) - len(minified); saved > 0 {
			p.metrics.MinifiedBytesSaved.Add(ctx, int64(saved))
		}
		contents = minified
	}

	return outputFile{
		Path:     filepath.Join(outDir, filepath.FromSlash(t.Output)),
		Contents: contents,
	}, nil
}
