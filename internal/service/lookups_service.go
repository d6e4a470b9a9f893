package service

import (
	"context"
	"fmt"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/port"

	"go.opentelemetry.io/otel"
)

var lookupTracer = otel.Tracer("service/lookups")

// LookupService serves the read-only reference data: roles, lead statuses,
// sources and work statuses.
type LookupService struct {
	roles   port.RoleStore
	lookups port.LookupStore
}

// NewLookupService creates a new lookup service.
func NewLookupService(roles port.RoleStore, lookups port.LookupStore) *LookupService {
	return &LookupService{roles: roles, lookups: lookups}
}

func (s *LookupService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	ctx, span := lookupTracer.Start(ctx, "LookupService.ListRoles")
	defer span.End()

	roles, err := s.roles.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func (s *LookupService) GetRole(ctx context.Context, id int64) (*domain.Role, error) {
	ctx, span := lookupTracer.Start(ctx, "LookupService.GetRole")
	defer span.End()

	role, err := s.roles.GetRole(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}
	if role == nil || !role.IsActive {
		return nil, &domain.ErrNotFound{Resource: "Role", ID: id}
	}
	return role, nil
}

// List returns the active rows of table.
func (s *LookupService) List(ctx context.Context, table port.LookupTable) ([]domain.Lookup, error) {
	ctx, span := lookupTracer.Start(ctx, "LookupService.List")
	defer span.End()

	rows, err := s.lookups.ListLookups(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	return rows, nil
}

// Get returns an active row of table.
func (s *LookupService) Get(ctx context.Context, table port.LookupTable, id int64) (*domain.Lookup, error) {
	ctx, span := lookupTracer.Start(ctx, "LookupService.Get")
	defer span.End()

	row, err := s.lookups.GetLookup(ctx, table, id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", table, err)
	}
	if row == nil || !row.IsActive {
		return nil, &domain.ErrNotFound{Resource: resourceName(table), ID: id}
	}
	return row, nil
}

func resourceName(table port.LookupTable) string {
	switch table {
	case port.LeadStatuses:
		return "Lead status"
	case port.Sources:
		return "Source"
	case port.WorkStatuses:
		return "Work status"
	}
	return string(table)
}
