package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/workpad/pkg/domain"
	_ "github.com/lib/pq"
)

// DefaultTable is the table used when none is configured.
const DefaultTable = "workpads"

// Store implements ports.WorkpadStore on PostgreSQL.
// Documents are kept as JSONB so they can be queried in place.
type Store struct {
	conn  *sql.DB
	table string
	now   func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithTable overrides the table name. The name is used verbatim in SQL.
func WithTable(table string) Option {
	return func(s *Store) {
		if table != "" {
			s.table = table
		}
	}
}

// Open connects to dsn ("postgres://..." or "host=... dbname=...") and migrates the schema.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	s := &Store{conn: conn, table: DefaultTable, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := s.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.conn.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		body JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, s.table))
	return err
}

// Save upserts the workpad row.
func (s *Store) Save(ctx context.Context, wp *domain.Workpad) error {
	body, err := json.Marshal(wp)
	if err != nil {
		return fmt.Errorf("failed to marshal workpad: %w", err)
	}

	_, err = s.conn.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (id, name, body, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`, s.table),
		wp.ID, wp.Name, string(body), s.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save workpad %s: %w", wp.ID, err)
	}
	return nil
}

// Load reads the workpad row.
func (s *Store) Load(ctx context.Context, id string) (*domain.Workpad, error) {
	var body []byte
	err := s.conn.QueryRowContext(ctx, fmt.Sprintf(`SELECT body FROM %s WHERE id = $1`, s.table), id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWorkpadNotFound
		}
		return nil, fmt.Errorf("load workpad %s: %w", id, err)
	}

	var wp domain.Workpad
	if err := json.Unmarshal(body, &wp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workpad %s: %w", id, err)
	}
	return &wp, nil
}

// Delete removes the workpad row.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.conn.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table), id); err != nil {
		return fmt.Errorf("delete workpad %s: %w", id, err)
	}
	return nil
}

// List returns all workpad IDs ordered by ID.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx, fmt.Sprintf(`SELECT id FROM %s ORDER BY id`, s.table))
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
