package model

import "time"

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusComplete   Status = "complete"
)

// Statuses lists every status in board order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusComplete}

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusComplete:
		return true
	}
	return false
}

// Next returns the status a task advances to. Complete is terminal.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusTodo:
		return StatusInProgress, true
	case StatusInProgress:
		return StatusComplete, true
	}
	return s, false
}

// Label is the column heading shown for the status.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusComplete:
		return "Completed"
	}
	return string(s)
}

type Todo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TodoPatch carries the fields of an update request. Nil means "leave as is".
type TodoPatch struct {
	Title  *string `json:"title,omitempty"`
	Status *Status `json:"status,omitempty"`
}
