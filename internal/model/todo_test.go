package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Next(t *testing.T) {
	tests := []struct {
		from   Status
		want   Status
		wantOK bool
	}{
		{StatusTodo, StatusInProgress, true},
		{StatusInProgress, StatusComplete, true},
		{StatusComplete, StatusComplete, false},
		{Status("bogus"), Status("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			got, ok := tt.from.Next()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("").Valid())
	assert.False(t, Status("done").Valid())
	assert.False(t, Status("TODO").Valid())
}

func TestTodo_JSONShape(t *testing.T) {
	at := time.Date(2024, 11, 2, 9, 30, 0, 0, time.UTC)
	raw, err := json.Marshal(Todo{ID: "x", Title: "Buy milk", Status: StatusTodo, CreatedAt: at, UpdatedAt: at})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": "x",
		"title": "Buy milk",
		"status": "todo",
		"createdAt": "2024-11-02T09:30:00Z",
		"updatedAt": "2024-11-02T09:30:00Z"
	}`, string(raw))
}

func TestTodoPatch_Decode(t *testing.T) {
	var p TodoPatch
	require.NoError(t, json.Unmarshal([]byte(`{"status":"complete"}`), &p))
	assert.Nil(t, p.Title)
	require.NotNil(t, p.Status)
	assert.Equal(t, StatusComplete, *p.Status)
}
