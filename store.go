package spacetraveling

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/spacetraveling/content"
)

// Store wraps a SQLite database holding the last fetched copy of every post.
// It lets the site keep rendering when the content API is unreachable.
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
	// WAL lets the cache write snapshots while handlers read them.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
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
    uid TEXT PRIMARY KEY,
    id TEXT NOT NULL,
    first_publication_date TEXT NOT NULL DEFAULT '',
    last_publication_date TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL,
    subtitle TEXT NOT NULL,
    author TEXT NOT NULL,
    banner_url TEXT NOT NULL,
    banner_alt TEXT NOT NULL,
    content TEXT NOT NULL,
    fetched_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS posts_first_publication_date ON posts (first_publication_date DESC);
`)
	return err
}

const postColumns = `uid, id, first_publication_date, last_publication_date, title, subtitle, author, banner_url, banner_alt, content`

// SavePosts upserts posts in a single transaction.
func (s *Store) SavePosts(posts ...content.Post) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO posts (` + postColumns + `, fetched_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range posts {
		body, err := json.Marshal(p.Content)
		if err != nil {
			return fmt.Errorf("encode content of %q: %w", p.UID, err)
		}
		if _, err := stmt.Exec(p.UID, p.ID, formatStoredTime(p.FirstPublicationDate), formatStoredTime(p.LastPublicationDate),
			p.Title, p.Subtitle, p.Author, p.Banner.URL, p.Banner.Alt, string(body), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetPost returns the stored copy of a post, or ErrNotFound.
func (s *Store) GetPost(uid string) (content.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE uid = ?`, uid)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return content.Post{}, ErrNotFound
	}
	return p, err
}

// ListPosts returns every stored post, newest publication first.
func (s *Store) ListPosts() ([]content.Post, error) {
	rows, err := s.db.Query(`SELECT ` + postColumns + ` FROM posts ORDER BY first_publication_date DESC, uid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []content.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// DeletePost removes a post by uid.
func (s *Store) DeletePost(uid string) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE uid = ?`, uid)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (content.Post, error) {
	var p content.Post
	var first, last, body string
	if err := row.Scan(&p.UID, &p.ID, &first, &last, &p.Title, &p.Subtitle, &p.Author,
		&p.Banner.URL, &p.Banner.Alt, &body); err != nil {
		return content.Post{}, err
	}
	p.FirstPublicationDate = parseStoredTime(first)
	p.LastPublicationDate = parseStoredTime(last)
	if err := json.Unmarshal([]byte(body), &p.Content); err != nil {
		return content.Post{}, fmt.Errorf("decode content of %q: %w", p.UID, err)
	}
	return p, nil
}

// Stored times are UTC RFC3339 so they sort lexically.
func formatStoredTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseStoredTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
