package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	"github.com/BuzzLyutic/todo-board/internal/model"
)

// timeLayout is fixed width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS todos (
    id         TEXT PRIMARY KEY,
    title      TEXT NOT NULL,
    status     TEXT NOT NULL DEFAULT 'todo'
               CHECK (status IN ('todo', 'in-progress', 'complete')),
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS todos_created_at_idx ON todos (created_at, id);
`

// SQLiteRepo keeps todos in a single SQLite file.
type SQLiteRepo struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteRepo, error) {
	if path == "" {
		return nil, fmt.Errorf("empty database path")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serialises writers and keeps :memory: databases alive.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	return &SQLiteRepo{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}, nil
}

func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

func ensureDir(path string) error {
	if path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (r *SQLiteRepo) Create(ctx context.Context, t model.Todo) (model.Todo, error) {
	query, args, err := r.builder.
		Insert(table).
		Columns(columns...).
		Values(t.ID, t.Title, string(t.Status), formatTime(t.CreatedAt), formatTime(t.UpdatedAt)).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return t, err
	}

	created, err := scanSQLite(r.db.QueryRowContext(ctx, query, args...))
	return created, r.mapError(err)
}

func (r *SQLiteRepo) Get(ctx context.Context, id string) (model.Todo, error) {
	query, args, err := r.builder.
		Select(columns...).
		From(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Todo{}, err
	}

	return scanSQLite(r.db.QueryRowContext(ctx, query, args...))
}

func (r *SQLiteRepo) List(ctx context.Context) ([]model.Todo, error) {
	query, args, err := r.builder.
		Select(columns...).
		From(table).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := make([]model.Todo, 0)
	for rows.Next() {
		t, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

func (r *SQLiteRepo) Update(ctx context.Context, id string, patch model.TodoPatch, updatedAt time.Time) (model.Todo, error) {
	query, args, err := applyPatch(r.builder.Update(table), patch, formatTime(updatedAt)).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return model.Todo{}, err
	}

	updated, err := scanSQLite(r.db.QueryRowContext(ctx, query, args...))
	return updated, r.mapError(err)
}

func (r *SQLiteRepo) Delete(ctx context.Context, id string) error {
	query, args, err := r.builder.
		Delete(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepo) mapError(err error) error {
	if err == nil {
		return nil
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			return ErrConflict
		}
	}
	return err
}

func scanSQLite(row rowScanner) (model.Todo, error) {
	var (
		t                    model.Todo
		status               string
		createdAt, updatedAt string
	)
	err := row.Scan(&t.ID, &t.Title, &status, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}

	t.Status = model.Status(status)
	if t.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return t, fmt.Errorf("parse created_at: %w", err)
	}
	if t.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return t, fmt.Errorf("parse updated_at: %w", err)
	}
	return t, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
