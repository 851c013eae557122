package repo

import (
	"context"
	"errors"
	"time"

	"github.com/BuzzLyutic/todo-board/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// TodoRepository is the persistence contract used by the service layer.
// Every method is a single statement, so a call is either fully applied or not at all.
type TodoRepository interface {
	Create(ctx context.Context, t model.Todo) (model.Todo, error)
	Get(ctx context.Context, id string) (model.Todo, error)
	List(ctx context.Context) ([]model.Todo, error)
	Update(ctx context.Context, id string, patch model.TodoPatch, updatedAt time.Time) (model.Todo, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

const table = "todos"

var columns = []string{"id", "title", "status", "created_at", "updated_at"}

// rowScanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
