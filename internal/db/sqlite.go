package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLite is a Store backed by a single SQLite database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the SQLite database at path.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One connection serializes writers and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{"PRAGMA journal_mode = WAL;", "PRAGMA busy_timeout = 5000;"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to configure sqlite database: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

// Migrate creates the documents table and one partial expression index per indexed field.
func (s *SQLite) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			body       TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (collection, id)
		)`)
	if err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}

	for _, collection := range sortedCollections() {
		for _, field := range Indexes[collection] {
			stmt := fmt.Sprintf(
				`CREATE INDEX IF NOT EXISTS idx_%s_%s ON documents (json_extract(body, '$.%s')) WHERE collection = '%s'`,
				collection, field, field, collection,
			)
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create index on %s.%s: %w", collection, field, err)
			}
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Get returns the document, or nil if it does not exist.
func (s *SQLite) Get(ctx context.Context, collection, id string) ([]byte, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	).Scan(&body)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return []byte(body), nil
}

// Put inserts or replaces a document.
func (s *SQLite) Put(ctx context.Context, collection, id string, body []byte) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, body) VALUES (?, ?, json(?))
		 ON CONFLICT (collection, id) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP`,
		collection, id, string(body),
	)
	if err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a document.
func (s *SQLite) Delete(ctx context.Context, collection, id string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Scan returns every document of a collection ordered by id.
func (s *SQLite) Scan(ctx context.Context, collection string) ([][]byte, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	return s.query(ctx, `SELECT body FROM documents WHERE collection = ? ORDER BY id`, collection)
}

// Where returns the documents whose field, cast to text, equals value.
func (s *SQLite) Where(ctx context.Context, collection, field, value string) ([][]byte, error) {
	if err := checkIndexed(collection, field); err != nil {
		return nil, err
	}
	// field is restricted to Indexes, so it is safe to inline.
	q := fmt.Sprintf(
		`SELECT body FROM documents WHERE collection = ? AND CAST(json_extract(body, '$.%s') AS TEXT) = ? ORDER BY id`,
		field,
	)
	return s.query(ctx, q, collection, value)
}

// Count returns the number of documents in a collection.
func (s *SQLite) Count(ctx context.Context, collection string) (int, error) {
	if err := checkCollection(collection); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE collection = ?`, collection).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return n, nil
}

func (s *SQLite) query(ctx context.Context, q string, args ...any) ([][]byte, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out [][]byte
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		out = append(out, []byte(body))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}
	return out, nil
}

func sortedCollections() []string {
	names := make([]string, 0, len(Indexes))
	for name := range Indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
