// Package repository implements SQLite persistence for the finance record
// types. Rows arrive with sensitive columns already sealed by the field
// codec; this layer moves bytes and never touches key material.
package repository

import (
	"strconv"
	"strings"
)

// sqlFilter accumulates WHERE conditions and their arguments for the
// list and bulk-delete queries.
type sqlFilter struct {
	conds []string
	args  []any
}

func (f *sqlFilter) add(cond string, arg any) {
	f.conds = append(f.conds, cond)
	f.args = append(f.args, arg)
}

func (f *sqlFilter) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// paging renders LIMIT/OFFSET. SQLite requires a LIMIT before OFFSET, so an
// offset without a limit uses LIMIT -1 (unbounded).
func paging(limit, offset int) string {
	var b strings.Builder
	if limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(limit))
	} else if offset > 0 {
		b.WriteString(" LIMIT -1")
	}
	if offset > 0 {
		b.WriteString(" OFFSET ")
		b.WriteString(strconv.Itoa(offset))
	}
	return b.String()
}
