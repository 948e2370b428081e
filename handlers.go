package rosepress

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rosepress/rosepress/views"
)

// blogQuery builds the post listing filter from request query params.
// Anything malformed falls back to the default listing.
func blogQuery(c echo.Context, pageSize int) PostQuery {
	q := PostQuery{
		Search:   strings.TrimSpace(c.QueryParam("q")),
		Sort:     c.QueryParam("sort"),
		PageSize: pageSize,
	}
	if v, err := strconv.ParseInt(c.QueryParam("category"), 10, 64); err == nil {
		q.CategoryID = v
	}
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		q.Page = v
	}
	return q.normalized()
}

func (a *App) handleHome(c echo.Context) error {
	posts, _, err := a.Store.SearchPosts(PostQuery{Page: 1, PageSize: 3})
	if err != nil {
		return err
	}
	return Render(c, views.Home(a.Config.Site, posts))
}

func (a *App) handleAbout(c echo.Context) error {
	return Render(c, views.About(a.Config.Site))
}

// handleBlog serves the listing page: search, category filter, sort order
// and pagination composed into a single store query. HTMX requests get
// just the result grid so the debounced search box can swap it in place.
func (a *App) handleBlog(c echo.Context) error {
	q := blogQuery(c, PublicPageSize)
	posts, total, err := a.Store.SearchPosts(q)
	if err != nil {
		return err
	}
	cats, err := a.Categories.List()
	if err != nil {
		return err
	}
	list := views.PostList{
		Posts:      posts,
		Search:     q.Search,
		CategoryID: q.CategoryID,
		Sort:       q.Sort,
		Page:       q.Page,
		TotalPages: TotalPages(total, q.PageSize),
		Total:      total,
	}
	if c.Request().Header.Get("HX-Request") == "true" {
		return Render(c, views.BlogGrid(list))
	}
	return Render(c, views.Blog(a.Config.Site, list, cats))
}

func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	post, err := a.Store.GetPostBySlug(slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return RenderStatus(c, http.StatusNotFound, views.NotFound(a.Config.Site))
		}
		return err
	}
	comments, err := a.Store.ListComments(post.ID)
	if err != nil {
		return err
	}
	return Render(c, views.PostPage(a.Config.Site, post, comments, IsAdmin(c), CsrfToken(c), c.QueryParam("msg")))
}

func (a *App) handleContact(c echo.Context) error {
	return Render(c, views.Contact(a.Config.Site, views.ContactForm{}, "", false, CsrfToken(c)))
}

// handleContactSubmit validates the contact form and stores the message.
// Validation failures re-render the form with the entered values; no
// insert happens until every required field is present.
func (a *App) handleContactSubmit(c echo.Context) error {
	form := views.ContactForm{
		Name:  strings.TrimSpace(c.FormValue("name")),
		Email: strings.TrimSpace(c.FormValue("email")),
		Body:  strings.TrimSpace(c.FormValue("message")),
	}
	if form.Name == "" || form.Email == "" || form.Body == "" {
		return Render(c, views.Contact(a.Config.Site, form, "All fields are required.", false, CsrfToken(c)))
	}
	msg := views.Message{Name: form.Name, Email: form.Email, Body: form.Body}
	if err := a.Store.CreateMessage(&msg); err != nil {
		c.Logger().Errorf("create message: %v", err)
		return Render(c, views.Contact(a.Config.Site, form, "Failed to send your message. Please try again.", false, CsrfToken(c)))
	}
	return Render(c, views.Contact(a.Config.Site, views.ContactForm{}, "", true, CsrfToken(c)))
}

// handleCommentSubmit appends a comment to a post and redirects back to
// it, so the thread is re-read fresh from the store.
func (a *App) handleCommentSubmit(c echo.Context) error {
	slug := c.Param("slug")
	post, err := a.Store.GetPostBySlug(slug)
	if err != nil {
		if err == sql.ErrNoRows {
			return RenderStatus(c, http.StatusNotFound, views.NotFound(a.Config.Site))
		}
		return err
	}
	author := strings.TrimSpace(c.FormValue("author_name"))
	body := strings.TrimSpace(c.FormValue("content"))
	if author == "" || body == "" {
		comments, err := a.Store.ListComments(post.ID)
		if err != nil {
			return err
		}
		return Render(c, views.PostPage(a.Config.Site, post, comments, IsAdmin(c), CsrfToken(c), "Name and comment cannot be left blank."))
	}
	comment := views.Comment{PostID: post.ID, AuthorName: author, Body: body}
	if err := a.Store.CreateComment(&comment); err != nil {
		c.Logger().Errorf("create comment: %v", err)
		comments, lerr := a.Store.ListComments(post.ID)
		if lerr != nil {
			return lerr
		}
		return Render(c, views.PostPage(a.Config.Site, post, comments, IsAdmin(c), CsrfToken(c), "Failed to post comment."))
	}
	return c.Redirect(http.StatusSeeOther, post.Link()+"?msg=Your+comment+has+been+submitted.")
}

// handleCommentDelete removes a comment; only an authenticated session
// may do this.
func (a *App) handleCommentDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.NoContent(http.StatusForbidden)
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	if err := a.Store.DeleteComment(id); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

// handleRobots generates robots.txt dynamically using the site URL.
func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /admin/\n\nSitemap: %s/sitemap.xml\n", a.Config.Site.URL)
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(a.Config.Site))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, views.ServerError(a.Config.Site))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
