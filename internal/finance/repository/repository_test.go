package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSQLFilter(t *testing.T) {
	t.Run("no conditions renders no clause", func(t *testing.T) {
		var f sqlFilter
		assert.Equal(t, "", f.where())
		assert.Empty(t, f.args)
	})

	t.Run("conditions join with AND", func(t *testing.T) {
		var f sqlFilter
		f.add("category = ?", "groceries")
		f.add("occurred_at >= ?", "2026-08-01")

		assert.Equal(t, " WHERE category = ? AND occurred_at >= ?", f.where())
		assert.Equal(t, []any{"groceries", "2026-08-01"}, f.args)
	})
}

func TestPaging(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		offset   int
		expected string
	}{
		{"no paging", 0, 0, ""},
		{"limit only", 10, 0, " LIMIT 10"},
		{"limit and offset", 10, 20, " LIMIT 10 OFFSET 20"},
		{"offset without limit is unbounded", 0, 20, " LIMIT -1 OFFSET 20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, paging(tt.limit, tt.offset))
		})
	}
}
