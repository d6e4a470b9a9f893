package postgres

import (
	"fmt"
	"strings"
)

// conditions accumulates AND-ed WHERE clauses and their positional
// arguments.
type conditions struct {
	clauses []string
	args    []any
}

func (c *conditions) arg(v any) string {
	c.args = append(c.args, v)
	return fmt.Sprintf("$%d", len(c.args))
}

// add appends a clause; each %s in format receives the placeholder of the
// matching value.
func (c *conditions) add(format string, values ...any) {
	placeholders := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = c.arg(v)
	}
	c.clauses = append(c.clauses, fmt.Sprintf(format, placeholders...))
}

// anyOf restricts column to ids. An empty slice adds nothing.
func (c *conditions) anyOf(column string, ids []int64) {
	if len(ids) == 0 {
		return
	}
	c.add(column+" = ANY(%s)", ids)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// assignments builds the SET list of a partial UPDATE. The first argument
// slots are reserved for the caller's own parameters (id, actor).
type assignments struct {
	sets []string
	args []any
}

func newAssignments(reserved ...any) *assignments {
	return &assignments{args: reserved}
}

func (a *assignments) set(column string, v any) {
	a.args = append(a.args, v)
	a.sets = append(a.sets, fmt.Sprintf("%s = $%d", column, len(a.args)))
}

func (a *assignments) list() string {
	return strings.Join(a.sets, ", ")
}
