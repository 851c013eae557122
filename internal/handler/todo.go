package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-board/internal/model"
	"github.com/BuzzLyutic/todo-board/internal/repo"
	"github.com/BuzzLyutic/todo-board/internal/service"
	"github.com/BuzzLyutic/todo-board/pkg/respond"
)

const (
	msgNotFound = "Todo not found"
	msgDeleted  = "Todo deleted successfully"
)

type TodoHandler struct {
	service *service.TodoService
	logger  *zap.Logger
}

func NewTodoHandler(srv *service.TodoService, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		service: srv,
		logger:  logger,
	}
}

type createRequest struct {
	Title string `json:"title"`
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	todo, err := h.service.Create(r.Context(), req.Title)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", "/todos/"+todo.ID)
	respond.JSON(w, r, http.StatusOK, todo)
}

func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	todo, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, todo)
}

func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	todos, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch todos", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "Failed to fetch todos")
		return
	}
	respond.JSON(w, r, http.StatusOK, todos)
}

func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.TodoPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	todo, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, todo)
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.Message(w, r, http.StatusOK, msgDeleted)
}

func (h *TodoHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.service.Ping(ctx); err != nil {
		h.logger.Error("store ping failed", zap.Error(err))
		respond.JSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *TodoHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		respond.Invalid(w, r, service.ErrValidation.Error(), vErr.Reasons)
	case errors.Is(err, repo.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, msgNotFound)
	case errors.Is(err, repo.ErrConflict):
		respond.Error(w, r, http.StatusConflict, "conflict")
	default:
		h.logger.Error("internal error", zap.Error(err), zap.String("path", r.URL.Path))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
