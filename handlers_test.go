package rosepress

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo-contrib/session"
	"golang.org/x/crypto/bcrypt"

	"github.com/rosepress/rosepress/views"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "correct-horse"
)

// fakeFileStore records uploads and removals instead of touching disk.
type fakeFileStore struct {
	puts    []string
	removed []string
}

func (f *fakeFileStore) Put(key string, data []byte, contentType string) (string, error) {
	f.puts = append(f.puts, key)
	return "/public/uploads/" + key, nil
}

func (f *fakeFileStore) Remove(publicURL string) error {
	f.removed = append(f.removed, publicURL)
	return nil
}

// newTestApp wires an App with a temp database, a fake file store and
// the session middleware, without starting the server. CSRF is left out
// so test requests stay plain.
func newTestApp(t *testing.T) (*App, *fakeFileStore) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt hash failed: %v", err)
	}
	files := &fakeFileStore{}

	a := New(Config{
		Site:              views.SiteConfig{Name: "Test Blog", URL: "https://example.com"},
		DatabasePath:      filepath.Join(t.TempDir(), "test.db"),
		AdminEmail:        testAdminEmail,
		AdminPasswordHash: string(hash),
		SessionSecret:     "test-secret",
	}, WithFileStore(files))

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	a.Store = store
	a.Categories = NewCategoryCache(store, time.Minute)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)
	a.Echo.HTTPErrorHandler = a.httpErrorHandler
	a.Echo.Use(session.Middleware(a.newSessionStore()))
	a.setupRoutes()

	return a, files
}

func doRequest(a *App, method, target string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

// loginAs submits valid credentials and returns the session cookies.
func loginAs(t *testing.T, a *App) []*http.Cookie {
	t.Helper()
	rec := doRequest(a, http.MethodPost, "/login/", url.Values{
		"email":    {testAdminEmail},
		"password": {testAdminPassword},
	}, nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("login should set a session cookie")
	}
	return cookies
}

func TestHomePage(t *testing.T) {
	a, _ := newTestApp(t)
	seedPost(t, a.Store, "Latest News", 0, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	rec := doRequest(a, http.MethodGet, "/", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Test Blog") {
		t.Error("home page should contain the site name")
	}
	if !strings.Contains(body, "Latest News") {
		t.Error("home page should contain the latest post")
	}
}

func TestBlogListing(t *testing.T) {
	a, _ := newTestApp(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seedPost(t, a.Store, "Alpha Post", 0, base)
	seedPost(t, a.Store, "Beta Post", 0, base.AddDate(0, 0, 1))

	rec := doRequest(a, http.MethodGet, "/blog/", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Alpha Post") || !strings.Contains(body, "Beta Post") {
		t.Error("listing should contain both posts")
	}
	// The search box swaps the grid after a debounce.
	if !strings.Contains(body, "delay:500ms") {
		t.Error("listing should carry the debounced search trigger")
	}
}

func TestBlogListingSearchFilter(t *testing.T) {
	a, _ := newTestApp(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seedPost(t, a.Store, "Hiking in Norway", 0, base)
	seedPost(t, a.Store, "City Guide", 0, base.AddDate(0, 0, 1))

	rec := doRequest(a, http.MethodGet, "/blog/?q=norway", nil, nil)
	body := rec.Body.String()
	if !strings.Contains(body, "Hiking in Norway") {
		t.Error("filtered listing should contain the matching post")
	}
	if strings.Contains(body, "City Guide") {
		t.Error("filtered listing should not contain non-matching posts")
	}
}

func TestBlogListingPartial(t *testing.T) {
	a, _ := newTestApp(t)
	seedPost(t, a.Store, "Partial Post", 0, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	req := httptest.NewRequest(http.MethodGet, "/blog/", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	body := rec.Body.String()
	if strings.Contains(body, "<html") {
		t.Error("htmx request should get the grid partial, not a full page")
	}
	if !strings.Contains(body, "Partial Post") {
		t.Error("partial should contain the post")
	}
}

func TestBlogListingEmpty(t *testing.T) {
	a, _ := newTestApp(t)

	rec := doRequest(a, http.MethodGet, "/blog/?q=nomatch", nil, nil)
	if !strings.Contains(rec.Body.String(), "No posts found.") {
		t.Error("empty result should show the no-posts message")
	}
}

func TestPostPage(t *testing.T) {
	a, _ := newTestApp(t)
	post := seedPost(t, a.Store, "Readable Post", 0, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	comment := views.Comment{PostID: post.ID, AuthorName: "Ada", Body: "Great read"}
	if err := a.Store.CreateComment(&comment); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	rec := doRequest(a, http.MethodGet, "/blog/readable-post/", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Readable Post") {
		t.Error("post page should contain the title")
	}
	if !strings.Contains(body, "Great read") {
		t.Error("post page should contain its comments")
	}
}

func TestPostPageNotFound(t *testing.T) {
	a, _ := newTestApp(t)

	rec := doRequest(a, http.MethodGet, "/blog/missing-post/", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCommentSubmit(t *testing.T) {
	a, _ := newTestApp(t)
	post := seedPost(t, a.Store, "Open Thread", 0, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	rec := doRequest(a, http.MethodPost, "/blog/open-thread/comments/", url.Values{
		"author_name": {"Ada"},
		"content":     {"First!"},
	}, nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/blog/open-thread/") {
		t.Errorf("redirect = %q, want back to the post", loc)
	}

	comments, err := a.Store.ListComments(post.ID)
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if len(comments) != 1 || comments[0].Body != "First!" {
		t.Errorf("comments = %+v, want one comment", comments)
	}
}

func TestCommentSubmitBlankRejected(t *testing.T) {
	a, _ := newTestApp(t)
	post := seedPost(t, a.Store, "Strict Thread", 0, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	rec := doRequest(a, http.MethodPost, "/blog/strict-thread/comments/", url.Values{
		"author_name": {"   "},
		"content":     {"body without a name"},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (re-rendered page)", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Name and comment cannot be left blank.") {
		t.Error("page should show the validation message")
	}

	comments, _ := a.Store.ListComments(post.ID)
	if len(comments) != 0 {
		t.Errorf("blank submission should not insert, got %d comments", len(comments))
	}
}

func TestCommentDeleteRequiresAdmin(t *testing.T) {
	a, _ := newTestApp(t)
	post := seedPost(t, a.Store, "Moderated", 0, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	comment := views.Comment{PostID: post.ID, AuthorName: "Spam", Body: "buy stuff"}
	if err := a.Store.CreateComment(&comment); err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	rec := doRequest(a, http.MethodDelete, fmt.Sprintf("/comments/%d/", comment.ID), nil, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 without a session", rec.Code)
	}

	cookies := loginAs(t, a)
	rec = doRequest(a, http.MethodDelete, fmt.Sprintf("/comments/%d/", comment.ID), nil, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 with a session", rec.Code)
	}
	comments, _ := a.Store.ListComments(post.ID)
	if len(comments) != 0 {
		t.Errorf("comment should be deleted, got %d", len(comments))
	}
}

func TestContactValidation(t *testing.T) {
	a, _ := newTestApp(t)

	rec := doRequest(a, http.MethodPost, "/contact/", url.Values{
		"name":    {"Ada"},
		"email":   {""},
		"message": {"hello"},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "All fields are required.") {
		t.Error("page should show the validation message")
	}
	// Entered values survive the round trip.
	if !strings.Contains(body, `value="Ada"`) {
		t.Error("form should keep the entered name")
	}

	msgs, _ := a.Store.ListMessages()
	if len(msgs) != 0 {
		t.Errorf("invalid form should not insert, got %d messages", len(msgs))
	}
}

func TestContactSubmit(t *testing.T) {
	a, _ := newTestApp(t)

	rec := doRequest(a, http.MethodPost, "/contact/", url.Values{
		"name":    {"Ada"},
		"email":   {"ada@example.com"},
		"message": {"Hello there"},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Your message has been sent.") {
		t.Error("page should confirm the send")
	}

	msgs, err := a.Store.ListMessages()
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Email != "ada@example.com" {
		t.Errorf("messages = %+v, want the submitted one", msgs)
	}
	if msgs[0].IsRead {
		t.Error("new message should be unread")
	}
}

func TestAdminRequiresLogin(t *testing.T) {
	a, _ := newTestApp(t)

	for _, target := range []string{"/admin/", "/admin/posts/new/", "/admin/posts/1/"} {
		rec := doRequest(a, http.MethodGet, target, nil, nil)
		if rec.Code != http.StatusSeeOther {
			t.Errorf("GET %s status = %d, want 303", target, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/login/" {
			t.Errorf("GET %s redirect = %q, want /login/", target, loc)
		}
	}
}

func TestLoginWrongPassword(t *testing.T) {
	a, _ := newTestApp(t)

	rec := doRequest(a, http.MethodPost, "/login/", url.Values{
		"email":    {testAdminEmail},
		"password": {"wrong"},
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid email or password.") {
		t.Error("page should show the login error")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("failed login should not set a session cookie")
	}
}

func TestLoginRateLimited(t *testing.T) {
	a, _ := newTestApp(t)
	a.loginLimiter = NewLoginLimiter(2, time.Minute)

	form := url.Values{"email": {testAdminEmail}, "password": {"wrong"}}
	doRequest(a, http.MethodPost, "/login/", form, nil)
	doRequest(a, http.MethodPost, "/login/", form, nil)
	rec := doRequest(a, http.MethodPost, "/login/", form, nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429 after limit", rec.Code)
	}
}

func TestLoginAndDashboard(t *testing.T) {
	a, _ := newTestApp(t)
	seedPost(t, a.Store, "Managed Post", 0, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	cookies := loginAs(t, a)

	rec := doRequest(a, http.MethodGet, "/admin/", nil, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Post Management") {
		t.Error("dashboard should show the post table")
	}
	if !strings.Contains(body, "Managed Post") {
		t.Error("dashboard should list the post")
	}
}

func TestAdminDashboardPartial(t *testing.T) {
	a, _ := newTestApp(t)
	seedPost(t, a.Store, "Filtered Post", 0, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	cookies := loginAs(t, a)

	req := httptest.NewRequest(http.MethodGet, "/admin/?q=filtered", nil)
	req.Header.Set("HX-Request", "true")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	body := rec.Body.String()
	if strings.Contains(body, "<html") {
		t.Error("htmx request should get the table partial, not a full page")
	}
	if !strings.Contains(body, "Filtered Post") {
		t.Error("partial should contain the matching post")
	}
}

func TestAdminSearchMatchesTitlesOnly(t *testing.T) {
	a, _ := newTestApp(t)
	post := views.Post{
		Title:       "Quiet Title",
		Content:     "The content mentions a zebra though.",
		Slug:        "quiet-title",
		PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := a.Store.SavePost(&post); err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}
	cookies := loginAs(t, a)

	// The public listing matches content.
	rec := doRequest(a, http.MethodGet, "/blog/?q=zebra", nil, nil)
	if !strings.Contains(rec.Body.String(), "Quiet Title") {
		t.Error("public search should match post content")
	}

	// The admin table searches titles only.
	req := httptest.NewRequest(http.MethodGet, "/admin/?q=zebra", nil)
	req.Header.Set("HX-Request", "true")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	body := rec.Body.String()
	if strings.Contains(body, "Quiet Title") {
		t.Error("admin search should not match post content")
	}
	if !strings.Contains(body, "No posts found.") {
		t.Error("admin search with no title match should show the empty message")
	}

	rec = doRequest(a, http.MethodGet, "/admin/?q=quiet", nil, cookies)
	if !strings.Contains(rec.Body.String(), "Quiet Title") {
		t.Error("admin search should match the title")
	}
}

func TestAdminPostSave(t *testing.T) {
	a, _ := newTestApp(t)
	cat := views.Category{Name: "Travel", Slug: "travel"}
	if err := a.Store.SaveCategory(&cat); err != nil {
		t.Fatalf("SaveCategory failed: %v", err)
	}
	cookies := loginAs(t, a)

	rec := doRequest(a, http.MethodPost, "/admin/posts/save/", url.Values{
		"title":        {"Hello, World!  Trip"},
		"content":      {"<p>body</p>"},
		"category_id":  {fmt.Sprint(cat.ID)},
		"published_at": {"2024-03-15"},
	}, cookies)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303, body: %s", rec.Code, rec.Body.String())
	}

	got, err := a.Store.GetPostBySlug("hello-world-trip")
	if err != nil {
		t.Fatalf("saved post not found by slug: %v", err)
	}
	if got.CategoryName != "Travel" {
		t.Errorf("CategoryName = %q, want Travel", got.CategoryName)
	}
	if got.PublishedAt.In(time.Local).Format("2006-01-02") != "2024-03-15" {
		t.Errorf("PublishedAt = %v, want 2024-03-15", got.PublishedAt)
	}
}

func TestAdminPostSaveValidation(t *testing.T) {
	a, _ := newTestApp(t)
	cookies := loginAs(t, a)

	// Missing title re-renders the form.
	rec := doRequest(a, http.MethodPost, "/admin/posts/save/", url.Values{
		"title":       {""},
		"content":     {"body"},
		"category_id": {"1"},
	}, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (re-rendered form)", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Title is required.") {
		t.Error("form should show the title error")
	}

	// Missing category too.
	rec = doRequest(a, http.MethodPost, "/admin/posts/save/", url.Values{
		"title":   {"Valid Title"},
		"content": {"body"},
	}, cookies)
	if !strings.Contains(rec.Body.String(), "Please select a category first.") {
		t.Error("form should show the category error")
	}

	if _, total, _ := a.Store.SearchPosts(PostQuery{}); total != 0 {
		t.Errorf("invalid saves should not insert, got %d posts", total)
	}
}

func TestAdminPostDeleteRemovesImage(t *testing.T) {
	a, files := newTestApp(t)
	cookies := loginAs(t, a)

	post := views.Post{
		Title:       "Illustrated",
		Content:     "body",
		Slug:        "illustrated",
		ImageURL:    "/public/uploads/1-illustrated.jpg",
		PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := a.Store.SavePost(&post); err != nil {
		t.Fatalf("SavePost failed: %v", err)
	}

	rec := doRequest(a, http.MethodDelete, fmt.Sprintf("/admin/posts/%d/", post.ID), nil, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	if len(files.removed) != 1 || files.removed[0] != post.ImageURL {
		t.Errorf("removed = %v, want [%s]", files.removed, post.ImageURL)
	}
	if _, err := a.Store.GetPostByID(post.ID); err == nil {
		t.Error("post should be gone after delete")
	}
}

func TestAdminCategorySaveInvalidatesCache(t *testing.T) {
	a, _ := newTestApp(t)
	cookies := loginAs(t, a)

	// Warm the cache with the empty list.
	if _, err := a.Categories.List(); err != nil {
		t.Fatalf("Categories.List failed: %v", err)
	}

	rec := doRequest(a, http.MethodPost, "/admin/categories/save/", url.Values{
		"name": {"Food & Drink"},
	}, cookies)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}

	cats, err := a.Categories.List()
	if err != nil {
		t.Fatalf("Categories.List failed: %v", err)
	}
	if len(cats) != 1 || cats[0].Slug != "food-drink" {
		t.Errorf("cats = %+v, want the new category with slug food-drink", cats)
	}
}

func TestAdminMessageToggle(t *testing.T) {
	a, _ := newTestApp(t)
	cookies := loginAs(t, a)

	m := views.Message{Name: "Ada", Email: "ada@example.com", Body: "hi"}
	if err := a.Store.CreateMessage(&m); err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}

	rec := doRequest(a, http.MethodPost, fmt.Sprintf("/admin/messages/%d/read/", m.ID), nil, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	msgs, _ := a.Store.ListMessages()
	if !msgs[0].IsRead {
		t.Error("message should be read after toggle")
	}
}

func TestLogout(t *testing.T) {
	a, _ := newTestApp(t)
	cookies := loginAs(t, a)

	rec := doRequest(a, http.MethodPost, "/logout/", nil, cookies)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}

	// The expired cookie replaces the session.
	cookies = rec.Result().Cookies()
	rec = doRequest(a, http.MethodGet, "/admin/", nil, cookies)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status after logout = %d, want 303 to login", rec.Code)
	}
}
