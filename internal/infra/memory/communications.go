package memory

import (
	"context"
	"time"

	"github.com/boddenberg/crm-api-go/internal/domain"
)

func (s *Store) communicationView(c *domain.Communication) domain.Communication {
	v := *c
	v.Audit = s.audit(c.Audit)
	return v
}

// ListCommunications returns active communications matching every non-empty
// filter.
func (s *Store) ListCommunications(ctx context.Context, filter domain.CommunicationFilter) ([]domain.Communication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Communication, 0, len(s.communications))
	for _, c := range s.communications {
		if !c.IsActive ||
			!matchesAny(filter.LeadIDs, c.LeadID) ||
			!matchesAnyPtr(filter.CreatedByIDs, c.CreatedBy) {
			continue
		}
		out = append(out, s.communicationView(c))
	}
	newestFirst(out, func(c domain.Communication) (time.Time, int64) { return c.CreatedAt, c.ID })
	return out, nil
}

// GetCommunication returns the communication with id, active or not.
func (s *Store) GetCommunication(ctx context.Context, id int64) (*domain.Communication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.communications[id]
	if !ok {
		return nil, nil
	}
	v := s.communicationView(c)
	return &v, nil
}

// CreateCommunication inserts c.
func (s *Store) CreateCommunication(ctx context.Context, c *domain.Communication) (*domain.Communication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leads[c.LeadID]; !ok {
		return nil, &domain.ErrInvalidReference{Field: "lead_id"}
	}

	row := domain.Communication{
		ID:       s.nextID("communications"),
		LeadID:   c.LeadID,
		Message:  c.Message,
		IsActive: true,
		Audit:    s.newAudit(c.CreatedBy),
	}
	s.communications[row.ID] = &row

	v := s.communicationView(&row)
	return &v, nil
}

// UpdateCommunicationMessage replaces the message of an active communication.
func (s *Store) UpdateCommunicationMessage(ctx context.Context, id int64, message string, actor int64) (*domain.Communication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.communications[id]
	if !ok || !c.IsActive {
		return nil, &domain.ErrNotFound{Resource: "Communication", ID: id}
	}
	c.Message = message
	s.touch(&c.Audit, actor)

	v := s.communicationView(c)
	return &v, nil
}

// DeactivateCommunication soft-deletes an active communication.
func (s *Store) DeactivateCommunication(ctx context.Context, id, actor int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.communications[id]
	if !ok || !c.IsActive {
		return &domain.ErrNotFound{Resource: "Communication", ID: id}
	}
	c.IsActive = false
	s.touch(&c.Audit, actor)
	return nil
}
