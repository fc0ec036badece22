package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// BlogRecord is one completed run saved to history.
type BlogRecord struct {
	ID        string    `json:"id"`
	Keyword   string    `json:"keyword"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tokens    int       `json:"tokens"`
	Structure string    `json:"blog_structure"`
	CreatedAt time.Time `json:"created_at"`
}

// Store defines the history persistence interface.
type Store interface {
	Append(ctx context.Context, rec *BlogRecord) error
	Get(ctx context.Context, id string) (*BlogRecord, error)
	List(ctx context.Context, limit int) ([]BlogRecord, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Dialect selects placeholder format and schema.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// SQLStore implements Store on database/sql for SQLite and Postgres.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	sb      sq.StatementBuilderType
	now     func() time.Time
}

var _ Store = (*SQLStore)(nil)

func newSQLStore(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLStore, error) {
	sb := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if dialect == DialectPostgres {
		sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}

	store := &SQLStore{
		db:      db,
		dialect: dialect,
		sb:      sb,
		now:     func() time.Time { return time.Now().UTC() },
	}

	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// NewSQLiteStore creates a SQLite-backed store at the given path.
// Creates parent directories if needed and enables WAL mode and a busy timeout.
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create parent directories: %w", err)
	}

	connStr := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(2)

	return newSQLStore(ctx, db, DialectSQLite)
}

// NewMemoryStore creates an in-memory SQLite store for testing.
// Each call gets its own named database shared by the pool's connections.
func NewMemoryStore(ctx context.Context) (*SQLStore, error) {
	connStr := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open memory database: %w", err)
	}
	db.SetMaxOpenConns(2)

	return newSQLStore(ctx, db, DialectSQLite)
}

// NewPostgresStore opens a Postgres-backed store from a lib/pq DSN.
func NewPostgresStore(ctx context.Context, dsn string) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	return NewPostgresStoreFromDB(ctx, db)
}

// NewPostgresStoreFromDB wraps an existing Postgres connection pool.
func NewPostgresStoreFromDB(ctx context.Context, db *sql.DB) (*SQLStore, error) {
	return newSQLStore(ctx, db, DialectPostgres)
}

// Open selects a driver by name: "sqlite" (dsn is a file path) or "postgres".
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	switch Dialect(driver) {
	case DialectSQLite, "":
		return NewSQLiteStore(ctx, dsn)
	case DialectPostgres:
		return NewPostgresStore(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown history driver: %s", driver)
	}
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
