package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// trackerScript reports clicks on elements carrying data-track to the tracking endpoint.
// The visitor cookie travels with the beacon.
const trackerScript = `<script>
document.addEventListener("click", function (e) {
  var el = e.target.closest("[data-track]");
  if (!el || !navigator.sendBeacon) return;
  var meta = {};
  try { meta = JSON.parse(el.getAttribute("data-track-meta") || "{}"); } catch (_) {}
  meta.element = el.getAttribute("data-track");
  var body = JSON.stringify({
    username: document.body.getAttribute("data-username"),
    event_type: "click",
    page_path: document.body.getAttribute("data-page-path") || location.pathname,
    metadata: meta
  });
  navigator.sendBeacon("/api/track", new Blob([body], { type: "application/json" }));
});
</script>`

type layoutProps struct {
	Title       string
	Description string
	Username    string
	PagePath    string
	BodyClass   string
}

func layout(p layoutProps, body func(h *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.element("title", "", p.Title)
		if p.Description != "" {
			h.raw(`<meta name="description" content="`, templ.EscapeString(p.Description), `">`)
		}
		h.raw(`<script src="https://cdn.tailwindcss.com"></script></head>`)
		attrs := []string{}
		if p.Username != "" {
			attrs = append(attrs, "data-username", p.Username, "data-page-path", p.PagePath)
		}
		h.open("body", cls("min-h-screen bg-background", p.BodyClass), attrs...)
		body(h)
		if p.Username != "" {
			h.raw(trackerScript)
		}
		h.raw("</body></html>")
		return h.err
	})
}

// NotFoundPage is served for unknown usernames and case studies, including ones that exist
// but belong to someone else.
func NotFoundPage() templ.Component {
	return layout(layoutProps{Title: "Not Found"}, func(h *htmlWriter) {
		h.open("main", "container mx-auto px-4 py-24 text-center")
		h.element("h1", "text-4xl font-bold mb-4", "Not Found")
		h.element("p", "text-muted-foreground mb-8", "The page you are looking for does not exist or is no longer available.")
		h.open("a", "inline-flex items-center rounded-md bg-primary px-4 py-2 text-primary-foreground", "href", "/")
		h.text("Go Home")
		h.close("a")
		h.close("main")
	})
}
