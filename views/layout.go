package views

import (
	"context"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

func esc(s string) string {
	return html.EscapeString(s)
}

// page wraps a body writer in the site shell: head with per-page meta,
// navigation, footer, and the htmx script for partial swaps.
func page(cfg SiteConfig, meta PageMeta, body func(b *strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		title := meta.Title
		if title == "" {
			title = cfg.Name
		} else {
			title += " · " + cfg.Name
		}
		b.WriteString(`<title>` + esc(title) + `</title>`)
		if meta.Description != "" {
			b.WriteString(`<meta name="description" content="` + esc(meta.Description) + `">`)
		}
		if meta.URL != "" {
			b.WriteString(`<link rel="canonical" href="` + esc(meta.URL) + `">`)
			b.WriteString(`<meta property="og:url" content="` + esc(meta.URL) + `">`)
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}
		b.WriteString(`<meta property="og:type" content="` + ogType + `">`)
		b.WriteString(`<meta property="og:title" content="` + esc(title) + `">`)
		b.WriteString(`<link rel="stylesheet" href="/public/styles.css">`)
		b.WriteString(`<script src="/public/htmx.min.js" defer></script>`)
		b.WriteString(`</head><body>`)
		writeNav(&b, cfg)
		b.WriteString(`<main class="container">`)
		body(&b)
		b.WriteString(`</main>`)
		writeFooter(&b, cfg)
		b.WriteString(`</body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeNav(b *strings.Builder, cfg SiteConfig) {
	b.WriteString(`<header class="site-header"><nav><a class="brand" href="/">` + esc(cfg.Name) + `</a>`)
	b.WriteString(`<ul class="nav-links">`)
	b.WriteString(`<li><a href="/">Home</a></li>`)
	b.WriteString(`<li><a href="/blog/">Blog</a></li>`)
	b.WriteString(`<li><a href="/about/">About</a></li>`)
	b.WriteString(`<li><a href="/contact/">Contact</a></li>`)
	b.WriteString(`</ul></nav></header>`)
}

func writeFooter(b *strings.Builder, cfg SiteConfig) {
	b.WriteString(`<footer class="site-footer"><p>&copy; ` + esc(cfg.Author))
	if cfg.Author == "" {
		b.WriteString(esc(cfg.Name))
	}
	b.WriteString(`</p></footer>`)
}
