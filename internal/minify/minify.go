// Package minify shrinks rendered theme templates. Inline style and script
// blocks are minified along with the markup.
package minify

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
)

const (
	mediaTypeHTML = "text/html"
	mediaTypeCSS  = "text/css"
)

var scriptTypes = regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$")

// HTML minifies rendered templates.
type HTML struct {
	m *minify.M
}

// NewHTML returns a template minifier. Document, end tags and quotes are kept
// since the output is often a partial spliced into a larger page.
func NewHTML() *HTML {
	m := minify.New()
	m.AddFunc(mediaTypeCSS, css.Minify)
	m.AddFuncRegexp(scriptTypes, js.Minify)
	m.Add(mediaTypeHTML, &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
	})
	return &HTML{m: m}
}

// Minify returns the minified document.
func (h *HTML) Minify(src []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := h.m.Minify(mediaTypeHTML, &out, bytes.NewReader(src)); err != nil {
		return nil, fmt.Errorf("failed to minify template: %w", err)
	}
	return out.Bytes(), nil
}
