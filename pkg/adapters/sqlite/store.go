package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/workpad/pkg/domain"
	_ "modernc.org/sqlite"
)

// Store implements ports.WorkpadStore on a SQLite database.
// Each workpad is one row; the document itself is kept as JSON in body.
type Store struct {
	conn *sql.DB
	now  func() time.Time
}

// Open opens (or creates) the SQLite file at dbPath and migrates the schema.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer; a single connection avoids SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn, now: time.Now}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	_, err := s.conn.Exec(`CREATE TABLE IF NOT EXISTS workpads (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

// Save upserts the workpad row.
func (s *Store) Save(ctx context.Context, wp *domain.Workpad) error {
	body, err := json.Marshal(wp)
	if err != nil {
		return fmt.Errorf("failed to marshal workpad: %w", err)
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO workpads (id, name, body, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, body = excluded.body, updated_at = excluded.updated_at`,
		wp.ID, wp.Name, string(body), s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save workpad %s: %w", wp.ID, err)
	}
	return nil
}

// Load reads the workpad row.
func (s *Store) Load(ctx context.Context, id string) (*domain.Workpad, error) {
	var body string
	err := s.conn.QueryRowContext(ctx, `SELECT body FROM workpads WHERE id = ?`, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWorkpadNotFound
		}
		return nil, fmt.Errorf("load workpad %s: %w", id, err)
	}

	var wp domain.Workpad
	if err := json.Unmarshal([]byte(body), &wp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workpad %s: %w", id, err)
	}
	return &wp, nil
}

// Delete removes the workpad row.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM workpads WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete workpad %s: %w", id, err)
	}
	return nil
}

// List returns all workpad IDs ordered by ID.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id FROM workpads ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list workpads: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Summary is a row of the workpads table without its body.
type Summary struct {
	ID        string
	Name      string
	UpdatedAt time.Time
}

// Summaries lists workpads most recently updated first.
func (s *Store) Summaries(ctx context.Context) ([]Summary, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, name, updated_at FROM workpads ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list workpads: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
