package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "", NonBreakingSpace},
		{"whitespace only", "   \t\n", NonBreakingSpace},
		{"kept as-is", "buy milk", "buy milk"},
		{"leading space kept", "  note", "  note"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeContent(tt.content))
		})
	}
}

func TestNormalizeContentIdempotent(t *testing.T) {
	inputs := []string{"", "   ", NonBreakingSpace, "real content"}
	for _, in := range inputs {
		once := NormalizeContent(in)
		assert.Equal(t, once, NormalizeContent(once))
	}
}

func TestNewTodoDefaults(t *testing.T) {
	todo := NewTodo("42", "title", "", "2024-01-01")

	assert.Equal(t, "42", todo.ID)
	assert.Equal(t, NonBreakingSpace, todo.Content)
	assert.False(t, todo.Completed)
	assert.False(t, todo.IsImportant)
	assert.Equal(t, "2024-01-01", todo.Date)
}

func TestLocalID(t *testing.T) {
	ts := time.UnixMilli(1700000000123)
	assert.Equal(t, "1700000000123", LocalID(ts))
}
