package views

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// Home renders the landing page: hero copy and the latest posts.
func Home(cfg SiteConfig, latest []Post) templ.Component {
	meta := PageMeta{Description: cfg.Description, URL: buildURL(cfg.URL)}
	return page(cfg, meta, func(b *strings.Builder) {
		b.WriteString(`<section class="hero">`)
		b.WriteString(`<span class="hero-greeting">Hello, I'm</span>`)
		b.WriteString(`<h1>` + esc(cfg.Author) + `</h1>`)
		if cfg.Tagline != "" {
			b.WriteString(`<p class="tagline">` + esc(cfg.Tagline) + `</p>`)
		}
		b.WriteString(`<div class="hero-actions"><a class="button" href="/blog/">My Blog</a>`)
		b.WriteString(`<a class="button secondary" href="/contact/">Contact Me</a></div>`)
		b.WriteString(`</section>`)

		if len(latest) > 0 {
			b.WriteString(`<section class="latest"><h2>Latest Posts</h2><div class="post-grid">`)
			for _, p := range latest {
				writePostCard(b, p)
			}
			b.WriteString(`</div></section>`)
		}
	})
}

// About renders the static about page.
func About(cfg SiteConfig) templ.Component {
	meta := PageMeta{Title: "About", URL: buildURL(cfg.URL, "about")}
	return page(cfg, meta, func(b *strings.Builder) {
		b.WriteString(`<section class="about"><h1>About</h1>`)
		b.WriteString(`<p>` + esc(cfg.Description) + `</p></section>`)
	})
}

// Blog renders the listing page: category filter pills, the debounced
// search box, sort select, the result grid and pagination.
func Blog(cfg SiteConfig, list PostList, categories []Category) templ.Component {
	meta := PageMeta{Title: "Blog", URL: buildURL(cfg.URL, "blog")}
	return page(cfg, meta, func(b *strings.Builder) {
		b.WriteString(`<section class="blog">`)

		// Category pills
		b.WriteString(`<div class="category-pills">`)
		writePill(b, "All Posts", listURL("/blog/", PostList{Search: list.Search, Sort: list.Sort}, 1), list.CategoryID == 0)
		for _, cat := range categories {
			writePill(b, cat.Name, listURL("/blog/", PostList{Search: list.Search, Sort: list.Sort, CategoryID: cat.ID}, 1), list.CategoryID == cat.ID)
		}
		b.WriteString(`</div>`)

		// Search and sort controls. The search input re-queries the grid
		// after the keystrokes settle for 500ms; every new term starts
		// back at page 1.
		b.WriteString(`<form class="list-controls" action="/blog/" method="get">`)
		if list.CategoryID != 0 {
			b.WriteString(`<input type="hidden" name="category" value="` + strconv.FormatInt(list.CategoryID, 10) + `">`)
		}
		b.WriteString(`<input type="search" name="q" placeholder="Search for titles or content..." value="` + esc(list.Search) + `"` +
			` hx-get="/blog/" hx-trigger="input changed delay:500ms, search" hx-target="#post-grid" hx-include="closest form">`)
		b.WriteString(`<select name="sort" hx-get="/blog/" hx-trigger="change" hx-target="#post-grid" hx-include="closest form">`)
		writeOption(b, "desc", "Latest", list.Sort != "asc")
		writeOption(b, "asc", "Oldest", list.Sort == "asc")
		b.WriteString(`</select></form>`)

		b.WriteString(`<div id="post-grid">`)
		writeGrid(b, list)
		b.WriteString(`</div>`)
		b.WriteString(`</section>`)
	})
}

// BlogGrid is the partial swapped in by the debounced search box.
func BlogGrid(list PostList) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		writeGrid(&b, list)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeGrid(b *strings.Builder, list PostList) {
	if len(list.Posts) == 0 {
		b.WriteString(`<p class="empty">No posts found.</p>`)
		return
	}
	b.WriteString(`<div class="post-grid">`)
	for _, p := range list.Posts {
		writePostCard(b, p)
	}
	b.WriteString(`</div>`)
	writePagination(b, list)
}

func writePostCard(b *strings.Builder, p Post) {
	b.WriteString(`<article class="post-card"><a href="` + esc(p.Link()) + `">`)
	if p.ImageURL != "" {
		b.WriteString(`<img src="` + esc(p.ImageURL) + `" alt="` + esc(p.Title) + `">`)
	}
	b.WriteString(`<div class="post-card-body">`)
	if p.CategoryName != "" {
		b.WriteString(`<span class="badge">` + esc(p.CategoryName) + `</span>`)
	}
	b.WriteString(`<h3>` + esc(p.Title) + `</h3>`)
	b.WriteString(`<p>` + esc(Excerpt(p.Content, 100)) + `</p>`)
	b.WriteString(`<span class="read-more">Read more &rarr;</span>`)
	b.WriteString(`</div></a></article>`)
}

func writePagination(b *strings.Builder, list PostList) {
	if list.TotalPages <= 1 {
		return
	}
	b.WriteString(`<nav class="pagination">`)
	if list.Page > 1 {
		b.WriteString(`<a href="` + esc(listURL("/blog/", list, list.Page-1)) + `">Previous</a>`)
	} else {
		b.WriteString(`<span class="disabled">Previous</span>`)
	}
	fmt.Fprintf(b, `<span>Page %d of %d</span>`, list.Page, list.TotalPages)
	if list.Page < list.TotalPages {
		b.WriteString(`<a href="` + esc(listURL("/blog/", list, list.Page+1)) + `">Next</a>`)
	} else {
		b.WriteString(`<span class="disabled">Next</span>`)
	}
	b.WriteString(`</nav>`)
}

func writePill(b *strings.Builder, label, href string, active bool) {
	class := "pill"
	if active {
		class += " active"
	}
	b.WriteString(`<a class="` + class + `" href="` + esc(href) + `">` + esc(label) + `</a>`)
}

func writeOption(b *strings.Builder, value, label string, selected bool) {
	b.WriteString(`<option value="` + value + `"`)
	if selected {
		b.WriteString(` selected`)
	}
	b.WriteString(`>` + esc(label) + `</option>`)
}

// PostPage renders a single post with its comment thread and comment
// form. Admins get delete buttons on comments. status carries the result
// of a comment submission.
func PostPage(cfg SiteConfig, post Post, comments []Comment, isAdmin bool, csrfToken, status string) templ.Component {
	meta := PageMeta{
		Title:       post.Title,
		Description: Excerpt(post.Content, 160),
		URL:         buildURL(cfg.URL, "blog", post.Slug),
		OGType:      "article",
	}
	return page(cfg, meta, func(b *strings.Builder) {
		b.WriteString(`<p><a class="back-link" href="/blog/">&larr; Back to all posts</a></p>`)
		b.WriteString(`<article class="post">`)
		b.WriteString(`<header>`)
		if post.CategoryName != "" {
			b.WriteString(`<span class="badge">` + esc(post.CategoryName) + `</span>`)
		}
		b.WriteString(`<h1>` + esc(post.Title) + `</h1>`)
		b.WriteString(`<p class="post-date">Published ` + esc(FormatDate(post.PublishedAt)) + `</p>`)
		b.WriteString(`</header>`)
		if post.ImageURL != "" {
			b.WriteString(`<figure><img src="` + esc(post.ImageURL) + `" alt="` + esc(post.Title) + `"></figure>`)
		}
		// Content is sanitized HTML from the admin editor.
		b.WriteString(`<div class="post-content">` + post.Content + `</div>`)
		b.WriteString(`</article>`)

		fmt.Fprintf(b, `<section class="comments"><h2>Comments (%d)</h2>`, len(comments))

		b.WriteString(`<form method="post" action="/blog/` + esc(post.Slug) + `/comments/">`)
		b.WriteString(`<input type="hidden" name="_csrf" value="` + esc(csrfToken) + `">`)
		b.WriteString(`<label for="author_name">Name</label>`)
		b.WriteString(`<input id="author_name" name="author_name" type="text" required>`)
		b.WriteString(`<label for="content">Your comment</label>`)
		b.WriteString(`<textarea id="content" name="content" rows="4" required></textarea>`)
		b.WriteString(`<button type="submit">Send Comment</button>`)
		if status != "" {
			b.WriteString(`<p class="status">` + esc(status) + `</p>`)
		}
		b.WriteString(`</form>`)

		if len(comments) == 0 {
			b.WriteString(`<p class="empty">Be the first to comment!</p>`)
		}
		for _, cm := range comments {
			b.WriteString(`<div class="comment">`)
			b.WriteString(`<p class="comment-author">` + esc(cm.AuthorName) + `</p>`)
			b.WriteString(`<p class="comment-date">` + esc(FormatDateTime(cm.CreatedAt)) + `</p>`)
			b.WriteString(`<p>` + esc(cm.Body) + `</p>`)
			if isAdmin {
				fmt.Fprintf(b, `<button class="danger" hx-delete="/comments/%d/" hx-headers='{"X-CSRF-Token":"%s"}' hx-confirm="Delete this comment?" hx-target="closest .comment" hx-swap="outerHTML">Delete</button>`, cm.ID, esc(csrfToken))
			}
			b.WriteString(`</div>`)
		}
		b.WriteString(`</section>`)
	})
}

// Contact renders the contact form, re-filled values on validation
// failure and a confirmation once the message is stored.
func Contact(cfg SiteConfig, form ContactForm, errMsg string, sent bool, csrfToken string) templ.Component {
	meta := PageMeta{Title: "Contact", URL: buildURL(cfg.URL, "contact")}
	return page(cfg, meta, func(b *strings.Builder) {
		b.WriteString(`<section class="contact"><h1>Get In Touch</h1>`)
		if sent {
			b.WriteString(`<p class="status success">Your message has been sent. Thank you!</p>`)
		}
		if errMsg != "" {
			b.WriteString(`<p class="status error">` + esc(errMsg) + `</p>`)
		}
		b.WriteString(`<form method="post" action="/contact/">`)
		b.WriteString(`<input type="hidden" name="_csrf" value="` + esc(csrfToken) + `">`)
		b.WriteString(`<label for="name">Name</label>`)
		b.WriteString(`<input id="name" name="name" type="text" value="` + esc(form.Name) + `" required>`)
		b.WriteString(`<label for="email">Email</label>`)
		b.WriteString(`<input id="email" name="email" type="email" value="` + esc(form.Email) + `" required>`)
		b.WriteString(`<label for="message">Message</label>`)
		b.WriteString(`<textarea id="message" name="message" rows="6" required>` + esc(form.Body) + `</textarea>`)
		b.WriteString(`<button type="submit">Send Message</button>`)
		b.WriteString(`</form></section>`)
	})
}

// Login renders the admin sign-in form.
func Login(cfg SiteConfig, showError bool, csrfToken string) templ.Component {
	meta := PageMeta{Title: "Login", URL: buildURL(cfg.URL, "login")}
	return page(cfg, meta, func(b *strings.Builder) {
		b.WriteString(`<section class="login"><h1>Welcome Back!</h1>`)
		b.WriteString(`<p>Login to manage your blog.</p>`)
		if showError {
			b.WriteString(`<p class="status error">Invalid email or password.</p>`)
		}
		b.WriteString(`<form method="post" action="/login/">`)
		b.WriteString(`<input type="hidden" name="_csrf" value="` + esc(csrfToken) + `">`)
		b.WriteString(`<label for="email">Email</label>`)
		b.WriteString(`<input id="email" name="email" type="email" required>`)
		b.WriteString(`<label for="password">Password</label>`)
		b.WriteString(`<input id="password" name="password" type="password" required>`)
		b.WriteString(`<button type="submit">Login</button>`)
		b.WriteString(`</form></section>`)
	})
}

// NotFound renders the 404 page.
func NotFound(cfg SiteConfig) templ.Component {
	return page(cfg, PageMeta{Title: "Not Found"}, func(b *strings.Builder) {
		b.WriteString(`<section class="error-page"><h1>404</h1>`)
		b.WriteString(`<p>Post not found.</p>`)
		b.WriteString(`<p><a href="/blog/">Back to all posts</a></p></section>`)
	})
}

// ServerError renders the 500 page.
func ServerError(cfg SiteConfig) templ.Component {
	return page(cfg, PageMeta{Title: "Something went wrong"}, func(b *strings.Builder) {
		b.WriteString(`<section class="error-page"><h1>Something went wrong</h1>`)
		b.WriteString(`<p>Failed to load. Please try again.</p></section>`)
	})
}
