package model

import (
	"strconv"
	"strings"
	"time"
)

// NonBreakingSpace is the placeholder stored for todos whose content is
// empty or whitespace-only. The renderer needs a non-empty body to keep
// row heights stable, so "no content" is represented instead of stored
// as an empty string.
const NonBreakingSpace = "\u00A0"

// Todo represents a single note in a todo list
type Todo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Completed   bool   `json:"completed"`
	IsImportant bool   `json:"isImportant"`
	Date        string `json:"date"`
}

// NewTodo creates a new todo with defaults
func NewTodo(id, title, content, date string) Todo {
	return Todo{
		ID:          id,
		Title:       title,
		Content:     NormalizeContent(content),
		Completed:   false,
		IsImportant: false,
		Date:        date,
	}
}

// NormalizeContent maps empty or whitespace-only content to the
// non-breaking-space placeholder. Idempotent: normalizing an already
// normalized value returns it unchanged.
func NormalizeContent(content string) string {
	if strings.TrimSpace(content) == "" {
		return NonBreakingSpace
	}
	return content
}

// LocalID derives a device-local todo identifier from its creation time.
// Account-mode todos use server-assigned ids instead; both are strings.
func LocalID(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
