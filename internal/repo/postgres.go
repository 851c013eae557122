package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/todo-board/internal/model"
	"github.com/BuzzLyutic/todo-board/migrations"
)

type PostgresRepo struct { // Хранилище задач в PostgreSQL
	pool    *pgxpool.Pool
	builder sq.StatementBuilderType
}

func NewPostgresRepo(pool *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{
		pool:    pool,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Migrate applies the embedded schema. Statements are idempotent.
func (r *PostgresRepo) Migrate(ctx context.Context) error {
	for _, name := range migrations.Up {
		ddl, err := migrations.FS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := r.pool.Exec(ctx, string(ddl)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

func (r *PostgresRepo) Create(ctx context.Context, t model.Todo) (model.Todo, error) {
	query, args, err := r.builder.
		Insert(table).
		Columns(columns...).
		Values(t.ID, t.Title, string(t.Status), t.CreatedAt, t.UpdatedAt).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return t, err
	}

	created, err := scanPostgres(r.pool.QueryRow(ctx, query, args...))
	return created, r.mapError(err)
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (model.Todo, error) {
	query, args, err := r.builder.
		Select(columns...).
		From(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Todo{}, err
	}

	return scanPostgres(r.pool.QueryRow(ctx, query, args...))
}

func (r *PostgresRepo) List(ctx context.Context) ([]model.Todo, error) {
	query, args, err := r.builder.
		Select(columns...).
		From(table).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := make([]model.Todo, 0)
	for rows.Next() {
		t, err := scanPostgres(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, id string, patch model.TodoPatch, updatedAt time.Time) (model.Todo, error) {
	query, args, err := applyPatch(r.builder.Update(table), patch, updatedAt).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return model.Todo{}, err
	}

	updated, err := scanPostgres(r.pool.QueryRow(ctx, query, args...))
	return updated, r.mapError(err)
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	query, args, err := r.builder.
		Delete(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresRepo) mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return ErrConflict
	}
	return err
}

func scanPostgres(row rowScanner) (model.Todo, error) {
	var (
		t      model.Todo
		status string
	)
	err := row.Scan(&t.ID, &t.Title, &status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}

	t.Status = model.Status(status)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

// applyPatch adds a SET clause for every supplied field plus updated_at.
func applyPatch(b sq.UpdateBuilder, patch model.TodoPatch, updatedAt any) sq.UpdateBuilder {
	b = b.Set("updated_at", updatedAt)
	if patch.Title != nil {
		b = b.Set("title", *patch.Title)
	}
	if patch.Status != nil {
		b = b.Set("status", string(*patch.Status))
	}
	return b
}
