package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		s    string
		max  int
		want string
	}{
		{"fits", "short", 10, "short"},
		{"exact", "short", 5, "short"},
		{"cut", "a longer title here", 10, "a longe..."},
		{"narrow", "title", 3, "tit"},
		{"one", "title", 1, "t"},
		{"zero", "title", 0, ""},
		{"negative width", "title", -7, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.s, tt.max))
		})
	}
}
