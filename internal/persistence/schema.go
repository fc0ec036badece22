package persistence

import (
	"context"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS blogs (
		id TEXT PRIMARY KEY,
		keyword TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		tokens INTEGER NOT NULL DEFAULT 0,
		structure TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_blogs_created_at ON blogs(created_at);
`

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS blogs (
		id UUID PRIMARY KEY,
		keyword TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		tokens INTEGER NOT NULL DEFAULT 0,
		structure TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_blogs_created_at ON blogs(created_at);
`

// initSchema creates the blogs table if it doesn't exist.
func (s *SQLStore) initSchema(ctx context.Context) error {
	schema := sqliteSchema
	if s.dialect == DialectPostgres {
		schema = postgresSchema
	}

	_, err := s.db.ExecContext(ctx, schema)
	return err
}
