package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

var blogColumns = []string{"id", "keyword", "title", "content", "tokens", "structure", "created_at"}

// Append stores a record. Missing ID and CreatedAt are filled in place.
func (s *SQLStore) Append(ctx context.Context, rec *BlogRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}

	query, args, err := s.sb.Insert("blogs").
		Columns(blogColumns...).
		Values(rec.ID, rec.Keyword, rec.Title, rec.Content, rec.Tokens, rec.Structure, rec.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save blog: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanBlog(row sq.RowScanner) (BlogRecord, error) {
	var rec BlogRecord
	err := row.Scan(&rec.ID, &rec.Keyword, &rec.Title, &rec.Content, &rec.Tokens, &rec.Structure, &rec.CreatedAt)
	return rec, err
}

// Get retrieves one record by ID.
func (s *SQLStore) Get(ctx context.Context, id string) (*BlogRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query, args, err := s.sb.Select(blogColumns...).From("blogs").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rec, err := scanBlog(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("blog %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query blog: %w", err)
	}
	return &rec, nil
}

// List returns the most recent records first. A non-positive limit returns all.
func (s *SQLStore) List(ctx context.Context, limit int) ([]BlogRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	builder := s.sb.Select(blogColumns...).From("blogs").OrderBy("created_at DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query blogs: %w", err)
	}
	defer rows.Close()

	records := []BlogRecord{}
	for rows.Next() {
		rec, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blog: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating blogs: %w", err)
	}
	return records, nil
}

// Delete removes a record by ID.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query, args, err := s.sb.Delete("blogs").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete blog: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("blog %q: %w", id, ErrNotFound)
	}
	return nil
}
