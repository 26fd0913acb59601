// Package sqlstore keeps ledger blobs in a SQL table, one row per ledger key.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"wealthwise/internal/log"
	"wealthwise/internal/storage"
)

// Driver is a database/sql driver name understood by this package.
type Driver string

const (
	SQLite   Driver = "sqlite"
	Postgres Driver = "pgx"
)

const (
	selectPayload = `SELECT payload FROM ledgers WHERE ledger_key = ?`
	upsertPayload = `INSERT INTO ledgers (ledger_key, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (ledger_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`
	deletePayload = `DELETE FROM ledgers WHERE ledger_key = ?`
)

var (
	_ storage.BlobStore = (*Repository)(nil)
	_ storage.Pinger    = (*Repository)(nil)
)

type Repository struct {
	db     *sqlx.DB
	logger *log.Logger
}

type Option func(*Repository)

// WithLogger routes the repository's debug records through l.
func WithLogger(l *log.Logger) Option {
	return func(r *Repository) { r.logger = l.WithComponent(log.ComponentStorage) }
}

// New wraps an open connection. The schema must already exist.
func New(db *sqlx.DB, opts ...Option) *Repository {
	r := &Repository{db: db, logger: log.Discard().WithComponent(log.ComponentStorage)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OpenSQLite opens (creating if needed) a SQLite file and migrates it.
func OpenSQLite(ctx context.Context, dbPath string, opts ...Option) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	if err := RunMigrations(SQLite, dbPath); err != nil {
		return nil, err
	}

	db, err := sqlx.Open(string(SQLite), dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return New(db, opts...), nil
}

// OpenPostgres connects to Postgres through pgx and migrates the schema.
func OpenPostgres(ctx context.Context, dsn string, opts ...Option) (*Repository, error) {
	if err := RunMigrations(Postgres, dsn); err != nil {
		return nil, err
	}
	db, err := sqlx.ConnectContext(ctx, string(Postgres), dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	return New(db, opts...), nil
}

func (r *Repository) Get(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := r.db.GetContext(ctx, &payload, r.db.Rebind(selectPayload), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select ledger %s: %w", key, err)
	}
	return []byte(payload), nil
}

func (r *Repository) Put(ctx context.Context, key string, value []byte) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(upsertPayload), key, string(value)); err != nil {
		return fmt.Errorf("upsert ledger %s: %w", key, err)
	}
	r.logger.DebugContext(ctx, "Ledger saved", log.FieldLedger, key, "bytes", len(value))
	return nil
}

func (r *Repository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(deletePayload), key); err != nil {
		return fmt.Errorf("delete ledger %s: %w", key, err)
	}
	r.logger.DebugContext(ctx, "Ledger deleted", log.FieldLedger, key)
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
