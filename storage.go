package rosepress

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore is the object-storage surface the post editor needs:
// store an uploaded image, resolve its public URL, and remove it.
type FileStore interface {
	// Put stores data under key and returns the public URL.
	Put(key string, data []byte, contentType string) (string, error)
	// Remove deletes the object behind a previously returned URL.
	// Removal of an already-gone object is not an error.
	Remove(publicURL string) error
}

// LocalStore keeps uploads on the local filesystem under dir, served by
// the static file route. baseURL is the site URL the public paths hang off.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates a LocalStore rooted at dir.
func NewLocalStore(dir, baseURL string) *LocalStore {
	return &LocalStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (l *LocalStore) Put(key string, data []byte, contentType string) (string, error) {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(l.dir, key), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return l.baseURL + publicUploadPath(key), nil
}

func (l *LocalStore) Remove(publicURL string) error {
	key := lastURLSegment(publicURL)
	if key == "" {
		return nil
	}
	err := os.Remove(filepath.Join(l.dir, key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// publicUploadPath is the path uploads are served under by the static
// file route (staticDir is mounted at /public).
func publicUploadPath(key string) string {
	return "/public/uploads/" + key
}

// lastURLSegment extracts the object key from a public URL, mirroring the
// delete flow of the post editor: the key is the final path segment.
func lastURLSegment(u string) string {
	u = strings.TrimSuffix(u, "/")
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}
