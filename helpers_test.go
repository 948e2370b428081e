package rosepress

import (
	"strings"
	"testing"
	"time"

	"github.com/rosepress/rosepress/views"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"Hello, World!  Trip", "hello-world-trip"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Already-slugged", "already-slugged"},
		{"MixedCASE123", "mixedcase123"},
		{"!!!", ""},
		{"", ""},
		{"Ünïcödé Tïtle", "n-c-d-t-tle"},
		{"trailing punctuation...", "trailing-punctuation"},
	}

	for _, tt := range tests {
		if got := Slugify(tt.input); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		want     string
	}{
		{"https://example.com", nil, "https://example.com"},
		{"https://example.com", []string{"blog"}, "https://example.com/blog/"},
		{"https://example.com", []string{"blog", "my-post"}, "https://example.com/blog/my-post/"},
		{"https://example.com/", []string{"about"}, "https://example.com/about/"},
	}

	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.want)
		}
	}
}

func TestParsePublishDate(t *testing.T) {
	got, err := ParsePublishDate("2024-03-15")
	if err != nil {
		t.Fatalf("ParsePublishDate failed: %v", err)
	}
	if got.Year() != 2024 || got.Month() != time.March || got.Day() != 15 {
		t.Errorf("got %v, want 2024-03-15", got)
	}

	// Empty value means now.
	before := time.Now()
	got, err = ParsePublishDate("")
	if err != nil {
		t.Fatalf("ParsePublishDate(\"\") failed: %v", err)
	}
	if got.Before(before) || got.After(time.Now()) {
		t.Errorf("empty date should be now, got %v", got)
	}

	if _, err := ParsePublishDate("15/03/2024"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestBlogPostingJsonLD(t *testing.T) {
	cfg := views.SiteConfig{
		Name:   "Rosepress",
		URL:    "https://example.com",
		Author: "Rose",
	}
	post := views.Post{
		Title:        "My Trip",
		Slug:         "my-trip",
		CategoryName: "Travel",
		PublishedAt:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}

	got := BlogPostingJsonLD(post, cfg)
	for _, want := range []string{
		`"https://example.com/blog/my-trip/"`,
		`"My Trip"`,
		`"2024-03-15"`,
		`"Travel"`,
		`"BlogPosting"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("JSON-LD missing %s:\n%s", want, got)
		}
	}
}
