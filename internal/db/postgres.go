package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a Store backed by a PostgreSQL connection pool. Documents are
// kept as JSONB.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool
func (db *Postgres) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

// Migrate creates the documents table and a partial expression index per indexed field.
func (db *Postgres) Migrate(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			body       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (collection, id)
		)`)
	if err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}

	for _, collection := range sortedCollections() {
		for _, field := range Indexes[collection] {
			stmt := fmt.Sprintf(
				`CREATE INDEX IF NOT EXISTS idx_%s_%s ON documents ((body->>'%s')) WHERE collection = '%s'`,
				collection, field, field, collection,
			)
			if _, err := db.pool.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create index on %s.%s: %w", collection, field, err)
			}
		}
	}
	return nil
}

// Get retrieves a document by collection and id
func (db *Postgres) Get(ctx context.Context, collection, id string) ([]byte, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	var body []byte
	err := db.pool.QueryRow(ctx,
		`SELECT body FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&body)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return body, nil
}

// Put inserts or replaces a document
func (db *Postgres) Put(ctx context.Context, collection, id string, body []byte) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	_, err := db.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, body)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (collection, id) DO UPDATE SET body = $3, updated_at = NOW()`,
		collection, id, body,
	)
	if err != nil {
		return fmt.Errorf("failed to put %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a document
func (db *Postgres) Delete(ctx context.Context, collection, id string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	_, err := db.pool.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// Scan returns every document of a collection ordered by id
func (db *Postgres) Scan(ctx context.Context, collection string) ([][]byte, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	return db.query(ctx, `SELECT body FROM documents WHERE collection = $1 ORDER BY id`, collection)
}

// Where returns the documents whose field equals value
func (db *Postgres) Where(ctx context.Context, collection, field, value string) ([][]byte, error) {
	if err := checkIndexed(collection, field); err != nil {
		return nil, err
	}
	// Inlined so the partial expression index matches; field comes from Indexes.
	q := fmt.Sprintf(`SELECT body FROM documents WHERE collection = $1 AND body->>'%s' = $2 ORDER BY id`, field)
	return db.query(ctx, q, collection, value)
}

// Count returns the number of documents in a collection
func (db *Postgres) Count(ctx context.Context, collection string) (int, error) {
	if err := checkCollection(collection); err != nil {
		return 0, err
	}
	var n int
	err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM documents WHERE collection = $1`, collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return n, nil
}

func (db *Postgres) query(ctx context.Context, q string, args ...any) ([][]byte, error) {
	rows, err := db.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		out = append(out, body)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}
	return out, nil
}
