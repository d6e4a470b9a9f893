package postgres

import (
	"context"
	"fmt"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/port"

	"github.com/jackc/pgx/v5"
)

func scanRole(row pgx.Row) (domain.Role, error) {
	var r domain.Role
	err := row.Scan(&r.ID, &r.Name, &r.Description, &r.IsActive, &r.CreatedAt)
	return r, err
}

func scanLookup(row pgx.Row) (domain.Lookup, error) {
	var l domain.Lookup
	err := row.Scan(&l.ID, &l.Name, &l.Description, &l.IsActive, &l.CreatedAt)
	return l, err
}

// ListRoles returns active roles ordered by name.
func (s *Store) ListRoles(ctx context.Context) ([]domain.Role, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListRoles")
	defer span.End()

	return getMany(ctx, s, scanRole, `
		SELECT id, name, description, is_active, created_at
		FROM roles WHERE is_active ORDER BY name`)
}

// GetRole returns the role with id, active or not.
func (s *Store) GetRole(ctx context.Context, id int64) (*domain.Role, error) {
	ctx, span := tracer.Start(ctx, "Postgres.GetRole")
	defer span.End()

	return getOne(ctx, s, scanRole, `
		SELECT id, name, description, is_active, created_at
		FROM roles WHERE id = $1`, id)
}

// ListLookups returns active rows; work statuses keep their workflow order.
func (s *Store) ListLookups(ctx context.Context, table port.LookupTable) ([]domain.Lookup, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListLookups")
	defer span.End()

	name, err := lookupTableName(table)
	if err != nil {
		return nil, err
	}
	order := "name"
	if table == port.WorkStatuses {
		order = "id"
	}
	return getMany(ctx, s, scanLookup, fmt.Sprintf(`
		SELECT id, name, description, is_active, created_at
		FROM %s WHERE is_active ORDER BY %s`, name, order))
}

// GetLookup returns the row with id, active or not.
func (s *Store) GetLookup(ctx context.Context, table port.LookupTable, id int64) (*domain.Lookup, error) {
	ctx, span := tracer.Start(ctx, "Postgres.GetLookup")
	defer span.End()

	name, err := lookupTableName(table)
	if err != nil {
		return nil, err
	}
	return getOne(ctx, s, scanLookup, fmt.Sprintf(`
		SELECT id, name, description, is_active, created_at
		FROM %s WHERE id = $1`, name), id)
}

// lookupTableName guards the table name interpolated into SQL.
func lookupTableName(table port.LookupTable) (string, error) {
	switch table {
	case port.LeadStatuses, port.Sources, port.WorkStatuses:
		return string(table), nil
	}
	return "", fmt.Errorf("unknown lookup table %q", table)
}
