package rosepress

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rosepress/rosepress/views"
)

// Store wraps a SQLite database and provides CRUD operations for posts,
// categories, contact messages and comments.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for concurrent read/write access, set a busy timeout
	// so writers wait instead of returning SQLITE_BUSY immediately, and tune
	// performance: synchronous=NORMAL is safe with WAL and avoids an fsync
	// per transaction; larger cache and mmap reduce disk I/O.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    slug TEXT NOT NULL UNIQUE,
    image_url TEXT NOT NULL DEFAULT '',
    category_id INTEGER NOT NULL DEFAULT 0,
    published_at TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS categories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    slug TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at TEXT NOT NULL,
    is_read INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS comments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    post_id INTEGER NOT NULL,
    author_name TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_published_at ON posts(published_at);
CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id);
`)
	return err
}

const timeFormat = time.RFC3339

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// --- Posts ---

const postColumns = `p.id, p.title, p.content, p.slug, p.image_url, p.category_id,
	p.published_at, p.created_at, COALESCE(c.name, '')`

func scanPost(row interface{ Scan(...any) error }) (views.Post, error) {
	var p views.Post
	var publishedAt, createdAt string
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Slug, &p.ImageURL,
		&p.CategoryID, &publishedAt, &createdAt, &p.CategoryName)
	if err != nil {
		return views.Post{}, err
	}
	p.PublishedAt = parseTime(publishedAt)
	p.CreatedAt = parseTime(createdAt)
	return p, nil
}

// SearchPosts composes the list query from the filter state and executes
// it: case-insensitive substring search over title and content (title
// alone when TitleOnly is set), optional
// category equality, single-key sort on publish time, and an offset/limit
// page. The second return value is the total row count for the same
// predicates, for pagination.
func (s *Store) SearchPosts(q PostQuery) ([]views.Post, int, error) {
	q = q.normalized()

	var where []string
	var args []any
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		pattern := "%" + term + "%"
		if q.TitleOnly {
			where = append(where, "lower(p.title) LIKE ?")
			args = append(args, pattern)
		} else {
			where = append(where, "(lower(p.title) LIKE ? OR lower(p.content) LIKE ?)")
			args = append(args, pattern, pattern)
		}
	}
	if q.CategoryID != 0 {
		where = append(where, "p.category_id = ?")
		args = append(args, q.CategoryID)
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM posts p`+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dir := "DESC"
	if q.Sort == SortAsc {
		dir = "ASC"
	}
	query := fmt.Sprintf(`SELECT %s FROM posts p LEFT JOIN categories c ON c.id = p.category_id%s ORDER BY p.published_at %s LIMIT ? OFFSET ?`,
		postColumns, cond, dir)
	rows, err := s.db.Query(query, append(args, q.PageSize, q.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var posts []views.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	return posts, total, rows.Err()
}

// GetPostBySlug returns a single post by its slug, joined with its
// category name.
func (s *Store) GetPostBySlug(slug string) (views.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts p LEFT JOIN categories c ON c.id = p.category_id WHERE p.slug = ?`, slug)
	return scanPost(row)
}

// GetPostByID returns a single post by id (admin edit form).
func (s *Store) GetPostByID(id int64) (views.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts p LEFT JOIN categories c ON c.id = p.category_id WHERE p.id = ?`, id)
	return scanPost(row)
}

// SavePost inserts or updates a post. A zero ID means create; the
// assigned id is written back into p. The slug is expected to be derived
// from the current title by the caller, so renames move the URL.
func (s *Store) SavePost(p *views.Post) error {
	if p.PublishedAt.IsZero() {
		p.PublishedAt = time.Now()
	}
	if p.ID == 0 {
		p.CreatedAt = time.Now()
		res, err := s.db.Exec(`INSERT INTO posts (title, content, slug, image_url, category_id, published_at, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.Title, p.Content, p.Slug, p.ImageURL, p.CategoryID, formatTime(p.PublishedAt), formatTime(p.CreatedAt))
		if err != nil {
			return err
		}
		p.ID, err = res.LastInsertId()
		return err
	}
	_, err := s.db.Exec(`UPDATE posts SET title = ?, content = ?, slug = ?, image_url = ?, category_id = ?, published_at = ? WHERE id = ?`,
		p.Title, p.Content, p.Slug, p.ImageURL, p.CategoryID, formatTime(p.PublishedAt), p.ID)
	return err
}

// DeletePost removes a post and its comments. The caller is responsible
// for removing any stored cover image first.
func (s *Store) DeletePost(id int64) error {
	if _, err := s.db.Exec(`DELETE FROM comments WHERE post_id = ?`, id); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = ?`, id)
	return err
}

// --- Categories ---

// ListCategories returns every category ordered by name.
func (s *Store) ListCategories() ([]views.Category, error) {
	rows, err := s.db.Query(`SELECT id, name, slug FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []views.Category
	for rows.Next() {
		var c views.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// GetCategory returns a category by id.
func (s *Store) GetCategory(id int64) (views.Category, error) {
	var c views.Category
	err := s.db.QueryRow(`SELECT id, name, slug FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Slug)
	return c, err
}

// SaveCategory inserts or updates a category, branching on id presence.
func (s *Store) SaveCategory(c *views.Category) error {
	if c.ID == 0 {
		res, err := s.db.Exec(`INSERT INTO categories (name, slug) VALUES (?, ?)`, c.Name, c.Slug)
		if err != nil {
			return err
		}
		c.ID, err = res.LastInsertId()
		return err
	}
	_, err := s.db.Exec(`UPDATE categories SET name = ?, slug = ? WHERE id = ?`, c.Name, c.Slug, c.ID)
	return err
}

// DeleteCategory removes a category. Posts referencing it keep their
// dangling category_id and render without a category name.
func (s *Store) DeleteCategory(id int64) error {
	_, err := s.db.Exec(`DELETE FROM categories WHERE id = ?`, id)
	return err
}

// --- Messages ---

// CreateMessage stores a contact-form submission as unread.
func (s *Store) CreateMessage(m *views.Message) error {
	m.CreatedAt = time.Now()
	res, err := s.db.Exec(`INSERT INTO messages (name, email, body, created_at, is_read) VALUES (?, ?, ?, ?, 0)`,
		m.Name, m.Email, m.Body, formatTime(m.CreatedAt))
	if err != nil {
		return err
	}
	m.ID, err = res.LastInsertId()
	return err
}

// ListMessages returns all messages, newest first.
func (s *Store) ListMessages() ([]views.Message, error) {
	rows, err := s.db.Query(`SELECT id, name, email, body, created_at, is_read FROM messages ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []views.Message
	for rows.Next() {
		var m views.Message
		var createdAt string
		var isRead int
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Body, &createdAt, &isRead); err != nil {
			return nil, err
		}
		m.CreatedAt = parseTime(createdAt)
		m.IsRead = isRead == 1
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// ToggleMessageRead flips the read flag on a message.
func (s *Store) ToggleMessageRead(id int64) error {
	_, err := s.db.Exec(`UPDATE messages SET is_read = 1 - is_read WHERE id = ?`, id)
	return err
}

// DeleteMessage removes a message.
func (s *Store) DeleteMessage(id int64) error {
	_, err := s.db.Exec(`DELETE FROM messages WHERE id = ?`, id)
	return err
}

// --- Comments ---

// ListComments returns the comments of a post, oldest first.
func (s *Store) ListComments(postID int64) ([]views.Comment, error) {
	rows, err := s.db.Query(`SELECT id, post_id, author_name, body, created_at FROM comments WHERE post_id = ? ORDER BY created_at ASC, id ASC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []views.Comment
	for rows.Next() {
		var c views.Comment
		var createdAt string
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorName, &c.Body, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt = parseTime(createdAt)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// CreateComment appends a comment to a post.
func (s *Store) CreateComment(c *views.Comment) error {
	c.CreatedAt = time.Now()
	res, err := s.db.Exec(`INSERT INTO comments (post_id, author_name, body, created_at) VALUES (?, ?, ?, ?)`,
		c.PostID, c.AuthorName, c.Body, formatTime(c.CreatedAt))
	if err != nil {
		return err
	}
	c.ID, err = res.LastInsertId()
	return err
}

// DeleteComment removes a comment.
func (s *Store) DeleteComment(id int64) error {
	_, err := s.db.Exec(`DELETE FROM comments WHERE id = ?`, id)
	return err
}
