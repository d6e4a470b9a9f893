package memory

import (
	"context"
	"strings"
	"time"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/port"
)

func (s *Store) leadView(l *domain.Lead) domain.Lead {
	c := *l
	c.Email = cloneString(l.Email)
	c.Phone = cloneString(l.Phone)
	c.Notes = cloneString(l.Notes)
	c.AssignedTo = cloneInt(l.AssignedTo)
	c.Status = s.lookupCopy(port.LeadStatuses, l.StatusID)
	c.Source = s.lookupCopy(port.Sources, l.SourceID)
	c.AssignedUser = s.userRef(l.AssignedTo)
	c.Audit = s.audit(l.Audit)
	return c
}

// ListLeads returns active leads, newest first.
func (s *Store) ListLeads(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		if !l.IsActive {
			continue
		}
		if filter.IsConverted != nil && l.IsConverted != *filter.IsConverted {
			continue
		}
		if filter.StatusID != nil && l.StatusID != *filter.StatusID {
			continue
		}
		out = append(out, s.leadView(l))
	}
	newestFirst(out, func(l domain.Lead) (time.Time, int64) { return l.CreatedAt, l.ID })
	return out, nil
}

// GetLead returns the lead with id, active or not.
func (s *Store) GetLead(ctx context.Context, id int64) (*domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.leads[id]
	if !ok {
		return nil, nil
	}
	v := s.leadView(l)
	return &v, nil
}

// LeadEmailExists considers every lead, soft-deleted included.
func (s *Store) LeadEmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.leadEmailTaken(email, excludeID), nil
}

func (s *Store) leadEmailTaken(email string, excludeID int64) bool {
	for _, l := range s.leads {
		if l.ID == excludeID || l.Email == nil {
			continue
		}
		if strings.ToLower(*l.Email) == email {
			return true
		}
	}
	return false
}

// LeadPhoneExists considers every lead, soft-deleted included.
func (s *Store) LeadPhoneExists(ctx context.Context, normalized, digits string, excludeID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.leads {
		if l.ID == excludeID || l.Phone == nil {
			continue
		}
		if *l.Phone == normalized {
			return true, nil
		}
		if digits != "" && strings.Contains(digitsOnly(*l.Phone), digits) {
			return true, nil
		}
	}
	return false, nil
}

// CreateLead inserts l. The email must already be normalised.
func (s *Store) CreateLead(ctx context.Context, l *domain.Lead) (*domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.Email != nil && s.leadEmailTaken(*l.Email, 0) {
		return nil, leadEmailConflict(*l.Email)
	}
	if err := s.checkLeadRefs(l.StatusID, l.SourceID, l.AssignedTo); err != nil {
		return nil, err
	}

	row := s.leadView(l)
	row.ID = s.nextID("leads")
	row.IsActive = true
	row.Status, row.Source, row.AssignedUser = nil, nil, nil
	row.Audit = s.newAudit(l.CreatedBy)
	s.leads[row.ID] = &row

	v := s.leadView(&row)
	return &v, nil
}

// UpdateLead applies the supplied fields to an active lead.
func (s *Store) UpdateLead(ctx context.Context, id int64, req *domain.UpdateLeadRequest, actor int64) (*domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leads[id]
	if !ok || !l.IsActive {
		return nil, &domain.ErrNotFound{Resource: "Lead", ID: id}
	}
	if req.Email != nil && s.leadEmailTaken(*req.Email, id) {
		return nil, leadEmailConflict(*req.Email)
	}

	statusID, sourceID := l.StatusID, l.SourceID
	if req.StatusID != nil {
		statusID = *req.StatusID
	}
	if req.SourceID != nil {
		sourceID = *req.SourceID
	}
	assignee := l.AssignedTo
	if req.AssignedTo != nil {
		assignee = req.AssignedTo
	}
	if err := s.checkLeadRefs(statusID, sourceID, assignee); err != nil {
		return nil, err
	}

	if req.Name != nil {
		l.Name = *req.Name
	}
	if req.Email != nil {
		l.Email = cloneString(req.Email)
	}
	if req.Phone != nil {
		l.Phone = cloneString(req.Phone)
	}
	if req.Notes != nil {
		l.Notes = cloneString(req.Notes)
	}
	l.StatusID, l.SourceID, l.AssignedTo = statusID, sourceID, cloneInt(assignee)
	s.touch(&l.Audit, actor)

	v := s.leadView(l)
	return &v, nil
}

// MarkLeadConverted flips is_converted to true on an active lead. It never
// clears the flag.
func (s *Store) MarkLeadConverted(ctx context.Context, id, actor int64) (*domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leads[id]
	if !ok || !l.IsActive {
		return nil, &domain.ErrNotFound{Resource: "Lead", ID: id}
	}
	l.IsConverted = true
	s.touch(&l.Audit, actor)

	v := s.leadView(l)
	return &v, nil
}

// DeactivateLead soft-deletes an active lead.
func (s *Store) DeactivateLead(ctx context.Context, id, actor int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leads[id]
	if !ok || !l.IsActive {
		return &domain.ErrNotFound{Resource: "Lead", ID: id}
	}
	l.IsActive = false
	s.touch(&l.Audit, actor)
	return nil
}

// foreign keys
func (s *Store) checkLeadRefs(statusID, sourceID int64, assignee *int64) error {
	if _, ok := s.lookups[port.LeadStatuses][statusID]; !ok {
		return &domain.ErrInvalidReference{Field: "status_id"}
	}
	if _, ok := s.lookups[port.Sources][sourceID]; !ok {
		return &domain.ErrInvalidReference{Field: "source_id"}
	}
	if assignee != nil {
		if _, ok := s.users[*assignee]; !ok {
			return &domain.ErrInvalidReference{Field: "assigned_to", Message: "Invalid assigned_to user id"}
		}
	}
	return nil
}

func leadEmailConflict(email string) *domain.ErrConflict {
	return &domain.ErrConflict{
		Fields:   []string{"email"},
		Messages: []string{`Email "` + email + `" is already associated with another lead`},
	}
}
