package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/todo-board/internal/model"
	"github.com/BuzzLyutic/todo-board/internal/repo"
)

const (
	TitleMinLen = 3
	TitleMaxLen = 12
)

var (
	ErrValidation = errors.New("validation error")
)

// ValidationError lists every rule the input broke.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(e.Reasons, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

type TodoService struct {
	repo  repo.TodoRepository
	now   func() time.Time
	newID func() string
}

type Option func(*TodoService)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *TodoService) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *TodoService) { s.newID = newID }
}

func NewTodoService(repo repo.TodoRepository, opts ...Option) *TodoService {
	s := &TodoService{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TodoService) Create(ctx context.Context, title string) (model.Todo, error) {
	if err := validateTitle(title); err != nil { // Валидация до обращения к БД
		return model.Todo{}, err
	}

	now := s.timestamp()
	return s.repo.Create(ctx, model.Todo{
		ID:        s.newID(),
		Title:     title,
		Status:    model.StatusTodo,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *TodoService) List(ctx context.Context) ([]model.Todo, error) {
	return s.repo.List(ctx)
}

func (s *TodoService) Get(ctx context.Context, id string) (model.Todo, error) {
	return s.repo.Get(ctx, id)
}

// Update merges the supplied fields into the stored todo and refreshes updatedAt.
// An empty title or status counts as not supplied. Status transitions are not restricted.
func (s *TodoService) Update(ctx context.Context, id string, patch model.TodoPatch) (model.Todo, error) {
	if patch.Title != nil && *patch.Title == "" {
		patch.Title = nil
	}
	if patch.Status != nil && *patch.Status == "" {
		patch.Status = nil
	}
	if err := validatePatch(patch); err != nil {
		return model.Todo{}, err
	}
	return s.repo.Update(ctx, id, patch, s.timestamp())
}

func (s *TodoService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *TodoService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// timestamp is truncated to the precision both stores keep.
func (s *TodoService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func validateTitle(title string) error {
	if reasons := titleRules(title); len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}
	return nil
}

func titleRules(title string) []string {
	n := utf8.RuneCountInString(title)
	switch {
	case n < TitleMinLen:
		return []string{fmt.Sprintf("Title must be at least %d characters long", TitleMinLen)}
	case n > TitleMaxLen:
		return []string{fmt.Sprintf("Title must not exceed %d characters", TitleMaxLen)}
	}
	return nil
}

func validatePatch(patch model.TodoPatch) error {
	var reasons []string
	if patch.Title != nil {
		reasons = append(reasons, titleRules(*patch.Title)...)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		reasons = append(reasons, fmt.Sprintf("Status must be one of %s, %s, %s",
			model.StatusTodo, model.StatusInProgress, model.StatusComplete))
	}
	if len(reasons) > 0 {
		return &ValidationError{Reasons: reasons}
	}
	return nil
}
