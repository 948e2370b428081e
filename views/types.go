package views

import "time"

// SiteConfig holds site-wide settings populated from environment variables.
// Every handler passes this to templates so nothing is hardcoded.
type SiteConfig struct {
	Name        string // SITE_NAME  (default "Blog")
	URL         string // SITE_URL   (default "http://localhost:3000")
	Description string // SITE_DESCRIPTION
	Author      string // SITE_AUTHOR
	Tagline     string // SITE_TAGLINE, hero copy on the home page
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// Post is a blog post row joined with its category name.
// Content is sanitized HTML produced by the admin editor.
type Post struct {
	ID           int64
	Title        string
	Content      string
	Slug         string
	ImageURL     string // empty when the post has no cover image
	CategoryID   int64  // zero when uncategorized
	CategoryName string // joined from categories, empty when dangling
	PublishedAt  time.Time
	CreatedAt    time.Time
}

// Link returns the post's public path.
func (p Post) Link() string {
	return "/blog/" + p.Slug + "/"
}

// Category groups posts. Slug is derived from Name at save time.
type Category struct {
	ID   int64
	Name string
	Slug string
}

// Message is a contact-form submission. IsRead is mutable independently
// of the message body.
type Message struct {
	ID        int64
	Name      string
	Email     string
	Body      string
	CreatedAt time.Time
	IsRead    bool
}

// Comment is a reader comment on a post. Append-only from the public
// side; deletable by an admin session.
type Comment struct {
	ID         int64
	PostID     int64
	AuthorName string
	Body       string
	CreatedAt  time.Time
}

// ContactForm holds the entered contact-form values so a failed
// validation can re-render them.
type ContactForm struct {
	Name  string
	Email string
	Body  string
}

// PostList is one page of posts plus the filter state that produced it,
// as needed to render the listing controls and pagination.
type PostList struct {
	Posts      []Post
	Search     string
	CategoryID int64 // zero means "all"
	Sort       string
	Page       int
	TotalPages int
	Total      int
}
