package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"relief-go/internal/relief"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const (
	createCollectionsTableSQL = `CREATE TABLE IF NOT EXISTS relief_collections (
	bucket TEXT PRIMARY KEY,
	payload JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	selectPayloadSQL = `SELECT payload FROM relief_collections WHERE bucket = $1`
	upsertPayloadSQL = `INSERT INTO relief_collections (bucket, payload, updated_at) VALUES ($1, $2, now())
ON CONFLICT (bucket) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	selectBucketsSQL = `SELECT bucket FROM relief_collections ORDER BY bucket`
)

// PostgresBackend stores collections as JSONB rows in Postgres. Every call
// is bounded by the configured timeout.
type PostgresBackend struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgresBackend connects with the given DSN and makes sure the
// collections table exists.
func NewPostgresBackend(dsn string, timeout time.Duration) (*PostgresBackend, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres store requires dsn to be set")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	b := NewPostgresBackendFromDB(db, timeout)

	ctx, cancel := b.ctx()
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureCollectionsTable(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

// NewPostgresBackendFromDB wraps an existing connection. The table is
// assumed to exist.
func NewPostgresBackendFromDB(db *sql.DB, timeout time.Duration) *PostgresBackend {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PostgresBackend{db: db, timeout: timeout}
}

func ensureCollectionsTable(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createCollectionsTableSQL); err != nil {
		return fmt.Errorf("ensure collections table: %w", err)
	}
	return nil
}

func (p *PostgresBackend) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), p.timeout)
}

func (p *PostgresBackend) Get(key string) ([]byte, bool, error) {
	ctx, cancel := p.ctx()
	defer cancel()

	var payload []byte
	if err := p.db.QueryRowContext(ctx, selectPayloadSQL, key).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("select %s: %w", key, err)
	}
	return payload, true, nil
}

func (p *PostgresBackend) Put(key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	ctx, cancel := p.ctx()
	defer cancel()

	if _, err := p.db.ExecContext(ctx, upsertPayloadSQL, key, string(data)); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (p *PostgresBackend) Keys() ([]string, error) {
	ctx, cancel := p.ctx()
	defer cancel()

	rows, err := p.db.QueryContext(ctx, selectBucketsSQL)
	if err != nil {
		return nil, fmt.Errorf("select buckets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan bucket: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (p *PostgresBackend) Close() error {
	return p.db.Close()
}

var _ relief.Backend = (*PostgresBackend)(nil)
