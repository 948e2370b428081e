package views

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var reTag = regexp.MustCompile(`<[^>]+>`)

// Excerpt strips HTML tags from content and truncates the plain text to
// at most maxLen characters, cutting at the last word boundary.
func Excerpt(htmlContent string, maxLen int) string {
	if htmlContent == "" {
		return ""
	}
	plain := strings.TrimSpace(reTag.ReplaceAllString(htmlContent, " "))
	plain = strings.Join(strings.Fields(plain), " ")
	if len(plain) <= maxLen {
		return plain
	}
	cut := strings.LastIndex(plain[:maxLen], " ")
	if cut <= 0 {
		// No word boundary; back off to a rune boundary so the cut
		// never splits a multi-byte character.
		cut = maxLen
		for cut > 0 && !utf8.RuneStart(plain[cut]) {
			cut--
		}
	}
	return plain[:cut] + "..."
}

// FormatDate renders a timestamp as a human-readable date.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// FormatDateTime renders a timestamp with the clock time, for the inbox
// and comment threads.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006 15:04")
}

// DateInputValue reduces a timestamp to the value of a date-only form
// input, empty for the zero time.
func DateInputValue(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// listURL rebuilds the blog listing URL for a given page, preserving the
// other filter state. Changing the search term or filters should link to
// page 1; pagination links preserve everything.
func listURL(basePath string, l PostList, page int) string {
	v := url.Values{}
	if l.Search != "" {
		v.Set("q", l.Search)
	}
	if l.CategoryID != 0 {
		v.Set("category", strconv.FormatInt(l.CategoryID, 10))
	}
	if l.Sort != "" && l.Sort != "desc" {
		v.Set("sort", l.Sort)
	}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if len(v) == 0 {
		return basePath
	}
	return basePath + "?" + v.Encode()
}
