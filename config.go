package rosepress

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/rosepress/rosepress/views"
)

// Config holds all configuration for a rosepress site.
type Config struct {
	Site views.SiteConfig

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/blog.db")

	AdminEmail        string // Required: admin login email
	AdminPasswordHash string // Required: bcrypt hash of the admin password
	SessionSecret     string // Required: session encryption secret
	CookieSecure      bool   // Set true for HTTPS

	// Object storage for uploaded post images. Backend "local" writes
	// under <StaticDir>/uploads; "s3" uses the AWS settings below.
	StorageBackend string
	UploadsDir     string
	S3Region       string
	S3Bucket       string
	S3AccessKeyID  string
	S3SecretKey    string
	S3Endpoint     string // optional, for MinIO-style local development

	CategoryCacheTTL time.Duration // Category cache TTL (default 5min)
}

// LoadConfig builds a Config from environment variables, reading a .env
// file first when one exists.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Site: views.SiteConfig{
			Name:        envOr("SITE_NAME", "Blog"),
			URL:         envOr("SITE_URL", "http://localhost:3000"),
			Description: os.Getenv("SITE_DESCRIPTION"),
			Author:      os.Getenv("SITE_AUTHOR"),
			Tagline:     os.Getenv("SITE_TAGLINE"),
		},
		Addr:              envOr("ADDR", ":3000"),
		DatabasePath:      envOr("DATABASE_PATH", "data/blog.db"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		SessionSecret:     os.Getenv("ADMIN_SESSION_SECRET"),
		CookieSecure:      os.Getenv("COOKIE_SECURE") == "true",
		StorageBackend:    envOr("STORAGE_BACKEND", "local"),
		UploadsDir:        envOr("UPLOADS_DIR", "public/uploads"),
		S3Region:          envOr("AWS_REGION", "us-east-1"),
		S3Bucket:          os.Getenv("S3_BUCKET_NAME"),
		S3AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		S3SecretKey:       os.Getenv("AWS_SECRET_ACCESS_KEY"),
		S3Endpoint:        os.Getenv("AWS_ENDPOINT"),
	}
}

func (c *Config) setDefaults() {
	if c.Site.Name == "" {
		c.Site.Name = "Blog"
	}
	if c.Site.URL == "" {
		c.Site.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.StorageBackend == "" {
		c.StorageBackend = "local"
	}
	if c.UploadsDir == "" {
		c.UploadsDir = "public/uploads"
	}
	if c.CategoryCacheTTL == 0 {
		c.CategoryCacheTTL = 5 * time.Minute
	}
}

func (c *Config) validate() error {
	if c.AdminEmail == "" {
		return fmt.Errorf("rosepress: AdminEmail is required")
	}
	if c.AdminPasswordHash == "" {
		return fmt.Errorf("rosepress: AdminPasswordHash is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("rosepress: SessionSecret is required")
	}
	if c.StorageBackend == "s3" && c.S3Bucket == "" {
		return fmt.Errorf("rosepress: S3Bucket is required with the s3 storage backend")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithFileStore overrides the image storage backend, mainly for tests.
func WithFileStore(fs FileStore) Option {
	return func(a *App) {
		a.files = fs
	}
}
