package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/todo-board/internal/model"
	"github.com/BuzzLyutic/todo-board/internal/repo"
)

// MockTodoRepository - мок репозитория
type MockTodoRepository struct {
	mock.Mock
}

func (m *MockTodoRepository) Create(ctx context.Context, t model.Todo) (model.Todo, error) {
	args := m.Called(ctx, t)
	if fn, ok := args.Get(0).(func(model.Todo) model.Todo); ok {
		return fn(t), args.Error(1)
	}
	return args.Get(0).(model.Todo), args.Error(1)
}

func (m *MockTodoRepository) Get(ctx context.Context, id string) (model.Todo, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Todo), args.Error(1)
}

func (m *MockTodoRepository) List(ctx context.Context) ([]model.Todo, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Todo), args.Error(1)
}

func (m *MockTodoRepository) Update(ctx context.Context, id string, patch model.TodoPatch, updatedAt time.Time) (model.Todo, error) {
	args := m.Called(ctx, id, patch, updatedAt)
	return args.Get(0).(model.Todo), args.Error(1)
}

func (m *MockTodoRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTodoRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var fixedNow = time.Date(2024, 11, 2, 9, 30, 0, 123456789, time.UTC)

func newTestService(m *MockTodoRepository) *TodoService {
	return NewTodoService(m,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "id-1" }),
	)
}

func ptr[T any](v T) *T { return &v }

// echoCreate makes the mock store return exactly what it was given.
func echoCreate(m *MockTodoRepository) {
	m.On("Create", mock.Anything, mock.Anything).Return(
		func(t model.Todo) model.Todo { return t },
		nil,
	)
}

func TestTodoService_Create(t *testing.T) {
	tests := []struct {
		name       string
		title      string
		wantErr    error
		wantReason string
	}{
		{name: "min length", title: "abc"},
		{name: "max length", title: "abcdefghijkl"},
		{name: "scenario title", title: "Buy milk"},
		{name: "multibyte runes count once", title: "купить хлеб"},
		{name: "too short", title: "ab", wantErr: ErrValidation, wantReason: "at least 3"},
		{name: "empty", title: "", wantErr: ErrValidation, wantReason: "at least 3"},
		{name: "too long", title: "abcdefghijklm", wantErr: ErrValidation, wantReason: "exceed 12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTodoRepository)
			if tt.wantErr == nil {
				echoCreate(mockRepo)
			}

			result, err := newTestService(mockRepo).Create(context.Background(), tt.title)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				var vErr *ValidationError
				require.True(t, errors.As(err, &vErr))
				require.Len(t, vErr.Reasons, 1)
				assert.Contains(t, vErr.Reasons[0], tt.wantReason)
				mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "id-1", result.ID)
				assert.Equal(t, tt.title, result.Title)
				assert.Equal(t, model.StatusTodo, result.Status)
				assert.Equal(t, result.CreatedAt, result.UpdatedAt)
				assert.Equal(t, fixedNow.Truncate(time.Microsecond), result.CreatedAt)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTodoService_CreateDefaultsToUUID(t *testing.T) {
	mockRepo := new(MockTodoRepository)
	echoCreate(mockRepo)

	svc := NewTodoService(mockRepo)
	a, err := svc.Create(context.Background(), "first")
	require.NoError(t, err)
	b, err := svc.Create(context.Background(), "second")
	require.NoError(t, err)

	assert.Len(t, a.ID, 36)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.UpdatedAt.Before(a.CreatedAt))
}

func TestTodoService_List(t *testing.T) {
	t.Run("passes store result through", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		want := []model.Todo{{ID: "a", Title: "one", Status: model.StatusTodo}}
		mockRepo.On("List", mock.Anything).Return(want, nil)

		got, err := newTestService(mockRepo).List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
		mockRepo.AssertExpectations(t)
	})

	t.Run("store error", func(t *testing.T) {
		mockRepo := new(MockTodoRepository)
		storeErr := errors.New("connection refused")
		mockRepo.On("List", mock.Anything).Return([]model.Todo(nil), storeErr)

		_, err := newTestService(mockRepo).List(context.Background())
		assert.ErrorIs(t, err, storeErr)
	})
}

func TestTodoService_Get(t *testing.T) {
	mockRepo := new(MockTodoRepository)
	mockRepo.On("Get", mock.Anything, "missing").Return(model.Todo{}, repo.ErrNotFound)

	_, err := newTestService(mockRepo).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, repo.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestTodoService_Update(t *testing.T) {
	stamp := fixedNow.Truncate(time.Microsecond)

	tests := []struct {
		name      string
		patch     model.TodoPatch
		setupMock func(*MockTodoRepository)
		wantErr   error
	}{
		{
			name:  "status only",
			patch: model.TodoPatch{Status: ptr(model.StatusComplete)},
			setupMock: func(m *MockTodoRepository) {
				m.On("Update", mock.Anything, "id-1", model.TodoPatch{Status: ptr(model.StatusComplete)}, stamp).
					Return(model.Todo{ID: "id-1", Status: model.StatusComplete}, nil)
			},
		},
		{
			name:  "empty title ignored",
			patch: model.TodoPatch{Title: ptr(""), Status: ptr(model.StatusInProgress)},
			setupMock: func(m *MockTodoRepository) {
				m.On("Update", mock.Anything, "id-1", model.TodoPatch{Status: ptr(model.StatusInProgress)}, stamp).
					Return(model.Todo{ID: "id-1", Status: model.StatusInProgress}, nil)
			},
		},
		{
			name:  "empty status ignored",
			patch: model.TodoPatch{Title: ptr("Renamed"), Status: ptr(model.Status(""))},
			setupMock: func(m *MockTodoRepository) {
				m.On("Update", mock.Anything, "id-1", model.TodoPatch{Title: ptr("Renamed")}, stamp).
					Return(model.Todo{ID: "id-1", Title: "Renamed"}, nil)
			},
		},
		{
			name:  "backward transition allowed",
			patch: model.TodoPatch{Status: ptr(model.StatusTodo)},
			setupMock: func(m *MockTodoRepository) {
				m.On("Update", mock.Anything, "id-1", mock.Anything, stamp).
					Return(model.Todo{ID: "id-1", Status: model.StatusTodo}, nil)
			},
		},
		{
			name:  "empty patch only refreshes timestamp",
			patch: model.TodoPatch{},
			setupMock: func(m *MockTodoRepository) {
				m.On("Update", mock.Anything, "id-1", model.TodoPatch{}, stamp).
					Return(model.Todo{ID: "id-1"}, nil)
			},
		},
		{
			name:      "title too long",
			patch:     model.TodoPatch{Title: ptr("far too long title")},
			setupMock: func(m *MockTodoRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name:      "unknown status",
			patch:     model.TodoPatch{Status: ptr(model.Status("done"))},
			setupMock: func(m *MockTodoRepository) {},
			wantErr:   ErrValidation,
		},
		{
			name:  "missing todo",
			patch: model.TodoPatch{Title: ptr("Valid")},
			setupMock: func(m *MockTodoRepository) {
				m.On("Update", mock.Anything, "id-1", mock.Anything, stamp).Return(model.Todo{}, repo.ErrNotFound)
			},
			wantErr: repo.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTodoRepository)
			tt.setupMock(mockRepo)

			result, err := newTestService(mockRepo).Update(context.Background(), "id-1", tt.patch)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "id-1", result.ID)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestTodoService_Delete(t *testing.T) {
	mockRepo := new(MockTodoRepository)
	mockRepo.On("Delete", mock.Anything, "id-1").Return(nil).Once()
	mockRepo.On("Delete", mock.Anything, "id-1").Return(repo.ErrNotFound).Once()

	svc := newTestService(mockRepo)
	require.NoError(t, svc.Delete(context.Background(), "id-1"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "id-1"), repo.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestValidationError(t *testing.T) {
	err := validatePatch(model.TodoPatch{Title: ptr("ab"), Status: ptr(model.Status("x"))})

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Len(t, vErr.Reasons, 2)
	assert.True(t, strings.HasPrefix(err.Error(), "validation error: "))
}
