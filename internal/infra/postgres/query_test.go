package postgres

import (
	"fmt"
	"testing"

	"github.com/boddenberg/crm-api-go/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditions(t *testing.T) {
	c := &conditions{}
	assert.Empty(t, c.where())

	c.add("l.is_active")
	c.add("l.status_id = %s", int64(3))
	c.anyOf("l.source_id", nil)
	c.anyOf("l.assigned_to", []int64{1, 2})

	assert.Equal(t, " WHERE l.is_active AND l.status_id = $1 AND l.assigned_to = ANY($2)", c.where())
	assert.Equal(t, []any{int64(3), []int64{1, 2}}, c.args)
}

func TestTaskConditionsAssigneeUnion(t *testing.T) {
	c := taskConditions(domain.TaskFilter{
		WorkItemIDs:   []int64{7},
		AssignedToIDs: []int64{4, 5},
	})

	assert.Equal(t,
		" WHERE t.is_active AND t.work_item_id = ANY($1) AND (t.assigned_to = ANY($2) OR wi.assigned_to = ANY($2))",
		c.where())
	assert.Len(t, c.args, 2)
}

func TestAssignments(t *testing.T) {
	a := newAssignments(int64(10), int64(1))
	a.set("name", "Acme")
	a.set("status_id", int64(2))

	assert.Equal(t, "name = $3, status_id = $4", a.list())
	assert.Equal(t, []any{int64(10), int64(1), "Acme", int64(2)}, a.args)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name  string
		err   *pgconn.PgError
		check func(t *testing.T, err error)
	}{
		{
			name: "user email unique",
			err:  &pgconn.PgError{Code: codeUniqueViolation, ConstraintName: "users_email_lower_idx"},
			check: func(t *testing.T, err error) {
				var conflict *domain.ErrConflict
				require.ErrorAs(t, err, &conflict)
				assert.Equal(t, "User with this email already exists", conflict.Error())
			},
		},
		{
			name: "lead status foreign key",
			err:  &pgconn.PgError{Code: codeForeignKeyViolation, TableName: "leads", ConstraintName: "leads_status_id_fkey"},
			check: func(t *testing.T, err error) {
				var ref *domain.ErrInvalidReference
				require.ErrorAs(t, err, &ref)
				assert.Equal(t, "status_id", ref.Field)
				assert.Equal(t, "Invalid status_id", ref.Error())
			},
		},
		{
			name: "task assignee foreign key",
			err:  &pgconn.PgError{Code: codeForeignKeyViolation, TableName: "tasks", ConstraintName: "tasks_assigned_to_fkey"},
			check: func(t *testing.T, err error) {
				var ref *domain.ErrInvalidReference
				require.ErrorAs(t, err, &ref)
				assert.Equal(t, "Invalid assigned_to user id", ref.Error())
			},
		},
		{
			name: "conversion trigger",
			err:  &pgconn.PgError{Code: codeCheckViolation, ConstraintName: "leads_conversion_one_way"},
			check: func(t *testing.T, err error) {
				var inv *domain.ErrInvariantViolation
				require.ErrorAs(t, err, &inv)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, mapError(fmt.Errorf("exec: %w", tt.err)))
		})
	}

	plain := fmt.Errorf("connection reset")
	assert.Same(t, plain, mapError(plain))
}

func TestMigrationVersionsOrdered(t *testing.T) {
	versions, err := migrationVersions(migrationFiles)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_schema.up.sql", "0002_reference_data.up.sql"}, versions)
}
