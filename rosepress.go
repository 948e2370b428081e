// Package rosepress is a personal blogging website built with Go, Echo,
// and templ: a public site (home, blog listing with search and
// pagination, single posts with comments, contact form) plus a
// session-gated admin dashboard for managing posts, categories and
// visitor messages. Posts live in SQLite; uploaded cover images go to a
// pluggable object store (local disk or S3).
package rosepress

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// App is the central rosepress application. It wires together the store,
// the category cache, the image file store, handlers and middleware.
type App struct {
	Config     Config
	Echo       *echo.Echo
	Store      *Store
	Categories *CategoryCache

	files        FileStore
	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	staticDir    string
}

// New creates a rosepress App with the given configuration.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes the database, storage, middleware and routes, then
// starts the server. It blocks until the server stops.
func (a *App) Start() error {
	if err := a.Config.validate(); err != nil {
		return err
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("rosepress: init store: %w", err)
	}
	a.Store = store

	a.Categories = NewCategoryCache(store, a.Config.CategoryCacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	if a.files == nil {
		switch a.Config.StorageBackend {
		case "s3":
			s3store, err := NewS3Store(a.Config)
			if err != nil {
				return fmt.Errorf("rosepress: init s3 storage: %w", err)
			}
			a.files = s3store
		default:
			a.files = NewLocalStore(a.Config.UploadsDir, a.Config.Site.URL)
		}
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Public routes
	e.GET("/", a.handleHome)
	e.GET("/about/", a.handleAbout)
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/:slug/", a.handlePost)
	e.POST("/blog/:slug/comments/", a.handleCommentSubmit)
	e.DELETE("/comments/:id/", a.handleCommentDelete)
	e.GET("/contact/", a.handleContact)
	e.POST("/contact/", a.handleContactSubmit)

	// Auth
	e.GET("/login/", a.handleLogin)
	e.POST("/login/", a.handleLoginSubmit)
	e.POST("/logout/", handleLogout)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.GET("/admin/posts/new/", a.handleAdminPostNew)
	e.GET("/admin/posts/:id/", a.handleAdminPostEdit)
	e.POST("/admin/posts/save/", a.handleAdminPostSave)
	e.DELETE("/admin/posts/:id/", a.handleAdminPostDelete)
	e.POST("/admin/categories/save/", a.handleAdminCategorySave)
	e.DELETE("/admin/categories/:id/", a.handleAdminCategoryDelete)
	e.POST("/admin/messages/:id/read/", a.handleAdminMessageToggle)
	e.DELETE("/admin/messages/:id/", a.handleAdminMessageDelete)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
