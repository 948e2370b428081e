package rosepress

import (
	"crypto/subtle"
	"database/sql"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/rosepress/rosepress/views"
)

// --- Auth ---

func (a *App) handleLogin(c echo.Context) error {
	if IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, views.Login(a.Config.Site, false, CsrfToken(c)))
}

func (a *App) handleLoginSubmit(c echo.Context) error {
	if !a.loginLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	email := strings.TrimSpace(c.FormValue("email"))
	pass := c.FormValue("password")
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(a.Config.AdminEmail)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(a.Config.AdminPasswordHash), []byte(pass))
	if emailOK && passErr == nil {
		if err := setAdminSession(c, email); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return Render(c, views.Login(a.Config.Site, true, CsrfToken(c)))
}

func handleLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// --- Dashboard ---

// handleAdmin serves the dashboard. Without a session it redirects to the
// login page before touching the store.
func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/login/")
	}
	if c.Request().Header.Get("HX-Request") == "true" {
		list, err := a.adminPostList(c)
		if err != nil {
			return err
		}
		return Render(c, views.AdminPostsSection(list, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

// adminPostList builds the dashboard's page of posts. Unlike the public
// listing, the admin search matches titles only.
func (a *App) adminPostList(c echo.Context) (views.PostList, error) {
	q := blogQuery(c, AdminPageSize)
	q.TitleOnly = true
	posts, total, err := a.Store.SearchPosts(q)
	if err != nil {
		return views.PostList{}, err
	}
	return views.PostList{
		Posts:      posts,
		Search:     q.Search,
		CategoryID: q.CategoryID,
		Sort:       q.Sort,
		Page:       q.Page,
		TotalPages: TotalPages(total, q.PageSize),
		Total:      total,
	}, nil
}

// renderAdminDashboard re-reads every admin dataset. Mutations route back
// here, so the inbox and category list are always refetched in full
// rather than patched in place.
func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	list, err := a.adminPostList(c)
	if err != nil {
		return err
	}
	cats, err := a.Store.ListCategories()
	if err != nil {
		return err
	}
	msgs, err := a.Store.ListMessages()
	if err != nil {
		return err
	}
	return Render(c, views.AdminDashboard(a.Config.Site, list, cats, msgs, msg, CsrfToken(c)))
}

func adminRedirect(c echo.Context, msg string) error {
	return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(msg))
}

// --- Post editor ---

func (a *App) handleAdminPostNew(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/login/")
	}
	cats, err := a.Store.ListCategories()
	if err != nil {
		return err
	}
	return Render(c, views.AdminPostForm(a.Config.Site, views.Post{}, cats, "", CsrfToken(c)))
}

// handleAdminPostEdit returns the edit form pre-filled with the stored
// post, the publish timestamp reduced to a date-only input value.
func (a *App) handleAdminPostEdit(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/login/")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	post, err := a.Store.GetPostByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	cats, err := a.Store.ListCategories()
	if err != nil {
		return err
	}
	return Render(c, views.AdminPostForm(a.Config.Site, post, cats, "", CsrfToken(c)))
}

// handleAdminPostSave creates or updates a post, branching solely on the
// presence of an id in the form. A newly attached image is uploaded
// first; upload failure aborts the save and re-renders the form with the
// entered values so the user can retry. Without a new file the stored
// image reference is preserved. The slug is recomputed from the title on
// every save.
func (a *App) handleAdminPostSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/login/")
	}
	id, _ := strconv.ParseInt(c.FormValue("id"), 10, 64)
	categoryID, _ := strconv.ParseInt(c.FormValue("category_id"), 10, 64)
	post := views.Post{
		ID:         id,
		Title:      strings.TrimSpace(c.FormValue("title")),
		Content:    c.FormValue("content"),
		CategoryID: categoryID,
	}

	formError := func(msg string) error {
		cats, err := a.Store.ListCategories()
		if err != nil {
			return err
		}
		return Render(c, views.AdminPostForm(a.Config.Site, post, cats, msg, CsrfToken(c)))
	}

	if post.Title == "" {
		return formError("Title is required.")
	}
	if post.CategoryID == 0 {
		return formError("Please select a category first.")
	}
	publishedAt, err := ParsePublishDate(c.FormValue("published_at"))
	if err != nil {
		return formError("Invalid date format. Use YYYY-MM-DD.")
	}
	post.PublishedAt = publishedAt
	post.Slug = Slugify(post.Title)
	if post.Slug == "" {
		return formError("Title must contain at least one letter or digit.")
	}

	// Keep the stored image unless a new file replaces it.
	if id != 0 {
		existing, err := a.Store.GetPostByID(id)
		if err != nil {
			if err == sql.ErrNoRows {
				return c.NoContent(http.StatusNotFound)
			}
			return err
		}
		post.ImageURL = existing.ImageURL
		post.CreatedAt = existing.CreatedAt
	}

	if file, err := c.FormFile("image"); err == nil && file != nil {
		if file.Size > maxUploadSize {
			return formError("Image too large (max 10MB).")
		}
		src, err := file.Open()
		if err != nil {
			return err
		}
		imageURL, uerr := a.uploadCoverImage(src, file.Filename)
		src.Close()
		if uerr != nil {
			c.Logger().Errorf("upload image: %v", uerr)
			return formError("Failed to upload image.")
		}
		post.ImageURL = imageURL
	}

	if err := a.Store.SavePost(&post); err != nil {
		c.Logger().Errorf("save post: %v", err)
		return formError("Failed to save post.")
	}
	if id == 0 {
		return adminRedirect(c, "Post successfully created!")
	}
	return adminRedirect(c, "Post successfully updated!")
}

// handleAdminPostDelete removes a post. A stored cover image is removed
// from object storage first, best effort: a failed removal is logged and
// never blocks the row delete.
func (a *App) handleAdminPostDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/login/")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	post, err := a.Store.GetPostByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	if post.ImageURL != "" {
		if err := a.files.Remove(post.ImageURL); err != nil {
			c.Logger().Errorf("remove image %s: %v", post.ImageURL, err)
		}
	}
	if err := a.Store.DeletePost(id); err != nil {
		return err
	}
	return a.renderAdminDashboard(c, "Post successfully deleted.")
}

// --- Category editor ---

func (a *App) handleAdminCategorySave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/login/")
	}
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		return adminRedirect(c, "Category name is required.")
	}
	id, _ := strconv.ParseInt(c.FormValue("id"), 10, 64)
	cat := views.Category{ID: id, Name: name, Slug: Slugify(name)}
	if err := a.Store.SaveCategory(&cat); err != nil {
		c.Logger().Errorf("save category: %v", err)
		return adminRedirect(c, "Failed to save category.")
	}
	a.Categories.Invalidate()
	if id == 0 {
		return adminRedirect(c, "Category successfully created!")
	}
	return adminRedirect(c, "Category successfully updated!")
}

// Deleting a category leaves referencing posts with a dangling
// category_id; they render without a category name.
func (a *App) handleAdminCategoryDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/login/")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	if err := a.Store.DeleteCategory(id); err != nil {
		return err
	}
	a.Categories.Invalidate()
	return a.renderAdminDashboard(c, "Category successfully deleted.")
}

// --- Message inbox ---

func (a *App) handleAdminMessageToggle(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/login/")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	if err := a.Store.ToggleMessageRead(id); err != nil {
		return err
	}
	return a.renderAdminDashboard(c, "")
}

func (a *App) handleAdminMessageDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/login/")
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	if err := a.Store.DeleteMessage(id); err != nil {
		return err
	}
	return a.renderAdminDashboard(c, "Message successfully deleted.")
}
