package memory

import (
	"context"
	"sort"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/port"
)

// ListRoles returns active roles ordered by name.
func (s *Store) ListRoles(ctx context.Context) ([]domain.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Role, 0, len(s.roles))
	for _, r := range s.roles {
		if r.IsActive {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetRole returns the role with id, active or not.
func (s *Store) GetRole(ctx context.Context, id int64) (*domain.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.roles[id]
	if !ok {
		return nil, nil
	}
	c := *r
	return &c, nil
}

// ListLookups returns active rows; work statuses keep their workflow order
// (id), the other tables are ordered by name.
func (s *Store) ListLookups(ctx context.Context, table port.LookupTable) ([]domain.Lookup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.lookups[table]
	out := make([]domain.Lookup, 0, len(rows))
	for _, l := range rows {
		if l.IsActive {
			out = append(out, *l)
		}
	}
	if table == port.WorkStatuses {
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	}
	return out, nil
}

// GetLookup returns the row with id, active or not.
func (s *Store) GetLookup(ctx context.Context, table port.LookupTable, id int64) (*domain.Lookup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lookupCopy(table, id), nil
}
