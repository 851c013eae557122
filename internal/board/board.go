// Package board keeps a local, non-authoritative copy of the todo list and
// renders it grouped by status. The server stays the source of truth: every
// local change is a patch taken from a server response, and Load replaces
// the whole copy.
package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-board/internal/model"
)

var (
	ErrBlankTitle  = errors.New("title is blank")
	ErrUnknownTodo = errors.New("todo not on board")
	ErrAmbiguousID = errors.New("id prefix matches several todos")
)

// API is the part of the HTTP client the board needs.
type API interface {
	List(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, title string) (model.Todo, error)
	Update(ctx context.Context, id string, patch model.TodoPatch) (model.Todo, error)
	Delete(ctx context.Context, id string) (string, error)
}

type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Board is not safe for concurrent use.
type Board struct {
	api    API
	logger *zap.Logger

	state State
	err   error
	todos []model.Todo
}

func New(api API, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Board{api: api, logger: logger}
}

func (b *Board) State() State { return b.state }

// Err is the error of the last failed Load.
func (b *Board) Err() error { return b.err }

// Todos returns a copy of the local list.
func (b *Board) Todos() []model.Todo {
	out := make([]model.Todo, len(b.todos))
	copy(out, b.todos)
	return out
}

// Load replaces the local copy with the server's list.
// On failure the previous copy is kept and the board moves to StateFailed.
func (b *Board) Load(ctx context.Context) error {
	b.state = StateLoading
	b.err = nil

	todos, err := b.api.List(ctx)
	if err != nil {
		b.logger.Error("error loading todos", zap.Error(err))
		b.state = StateFailed
		b.err = err
		return err
	}

	b.todos = todos
	b.state = StateReady
	return nil
}

func (b *Board) Retry(ctx context.Context) error {
	return b.Load(ctx)
}

func (b *Board) Add(ctx context.Context, title string) (model.Todo, error) {
	if strings.TrimSpace(title) == "" {
		return model.Todo{}, ErrBlankTitle
	}

	todo, err := b.api.Create(ctx, title)
	if err != nil {
		b.logger.Error("error adding todo", zap.String("title", title), zap.Error(err))
		return model.Todo{}, err
	}

	b.todos = append(b.todos, todo)
	return todo, nil
}

// Advance moves a todo one step forward: todo to in-progress, in-progress to
// complete. Complete todos are left alone and no request is sent.
func (b *Board) Advance(ctx context.Context, id string) (model.Todo, error) {
	i := b.index(id)
	if i < 0 {
		return model.Todo{}, ErrUnknownTodo
	}

	next, ok := b.todos[i].Status.Next()
	if !ok {
		return b.todos[i], nil
	}

	updated, err := b.api.Update(ctx, id, model.TodoPatch{Status: &next})
	if err != nil {
		b.logger.Error("error updating todo status", zap.String("id", id), zap.Error(err))
		return b.todos[i], err
	}

	b.todos[i] = updated
	return updated, nil
}

// Remove deletes the todo on the server, then drops it locally.
func (b *Board) Remove(ctx context.Context, id string) error {
	if _, err := b.api.Delete(ctx, id); err != nil {
		b.logger.Error("error deleting todo", zap.String("id", id), zap.Error(err))
		return err
	}

	if i := b.index(id); i >= 0 {
		b.todos = append(b.todos[:i], b.todos[i+1:]...)
	}
	return nil
}

// Find resolves a full id or a unique id prefix.
func (b *Board) Find(idOrPrefix string) (model.Todo, error) {
	if idOrPrefix == "" {
		return model.Todo{}, ErrUnknownTodo
	}

	var (
		found model.Todo
		hits  int
	)
	for _, t := range b.todos {
		if t.ID == idOrPrefix {
			return t, nil
		}
		if strings.HasPrefix(t.ID, idOrPrefix) {
			found = t
			hits++
		}
	}

	switch hits {
	case 0:
		return model.Todo{}, ErrUnknownTodo
	case 1:
		return found, nil
	}
	return model.Todo{}, ErrAmbiguousID
}

func (b *Board) Column(status model.Status) []model.Todo {
	var out []model.Todo
	for _, t := range b.todos {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// Columns groups the list by status. Todos with an unknown status are dropped.
func (b *Board) Columns() map[model.Status][]model.Todo {
	cols := make(map[model.Status][]model.Todo, len(model.Statuses))
	for _, s := range model.Statuses {
		cols[s] = b.Column(s)
	}
	return cols
}

func (b *Board) Render(w io.Writer) error {
	switch b.state {
	case StateIdle, StateLoading:
		_, err := fmt.Fprintln(w, "Loading todos...")
		return err
	case StateFailed:
		_, err := fmt.Fprintf(w, "Error: %v\nTry again to reload the board.\n", b.err)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, status := range model.Statuses {
		col := b.Column(status)
		fmt.Fprintf(tw, "%s (%d)\n", status.Label(), len(col))
		if len(col) == 0 {
			fmt.Fprintln(tw, "  -\t\t")
		}
		for _, t := range col {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", shortID(t.ID), t.Title, t.CreatedAt.Format("2006-01-02"))
		}
	}
	return tw.Flush()
}

func (b *Board) index(id string) int {
	for i, t := range b.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
