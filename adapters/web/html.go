// Package web renders the public portfolio pages as HTML. Components are plain
// templ.ComponentFuncs over the page structures built by the render package.
package web

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// htmlWriter stops at the first write error and reports it once at the end.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(parts ...string) {
	for _, p := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, p)
	}
}

func (h *htmlWriter) text(s string) { h.raw(templ.EscapeString(s)) }

// open writes a start tag with a class attribute and optional extra attribute pairs.
func (h *htmlWriter) open(tag string, classes string, attrs ...string) {
	h.raw("<", tag)
	if classes != "" {
		h.raw(` class="`, templ.EscapeString(classes), `"`)
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		h.raw(" ", attrs[i], `="`, templ.EscapeString(attrs[i+1]), `"`)
	}
	h.raw(">")
}

func (h *htmlWriter) close(tag string) { h.raw("</", tag, ">") }

// element writes <tag class>text</tag>.
func (h *htmlWriter) element(tag, classes, text string, attrs ...string) {
	h.open(tag, classes, attrs...)
	h.text(text)
	h.close(tag)
}

// safeURL neutralises javascript: and other unsafe schemes before a URL is placed in an attribute.
func safeURL(u string) string {
	return string(templ.URL(u))
}

func cls(classes ...string) string {
	out := make([]string, 0, len(classes))
	for _, c := range classes {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return strings.Join(out, " ")
}

func trackMeta(meta map[string]string) string {
	b, err := json.Marshal(meta)
	if err != nil {
		return "{}"
	}
	return string(b)
}
