package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/boddenberg/crm-api-go/internal/domain"
)

func (s *Store) userView(u *domain.User) domain.User {
	c := *u
	if r, ok := s.roles[u.RoleID]; ok {
		c.Role = &domain.RoleRef{ID: r.ID, Name: r.Name}
	}
	c.Audit = s.audit(u.Audit)
	return c
}

// ListUsers returns active users, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		if u.IsActive {
			out = append(out, s.userView(u))
		}
	}
	newestFirst(out, func(u domain.User) (time.Time, int64) { return u.CreatedAt, u.ID })
	return out, nil
}

// ListAssignableUsers returns active users ordered by name.
func (s *Store) ListAssignableUsers(ctx context.Context) ([]domain.AssignableUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.AssignableUser, 0, len(s.users))
	for _, u := range s.users {
		if !u.IsActive {
			continue
		}
		au := domain.AssignableUser{ID: u.ID, Name: u.Name, Role: domain.RoleRef{ID: u.RoleID}}
		if r, ok := s.roles[u.RoleID]; ok {
			au.Role.Name = r.Name
		}
		out = append(out, au)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// GetUser returns the user with id, active or not.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	v := s.userView(u)
	return &v, nil
}

// GetUserByEmail matches the email case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.userByEmail(email)
	if u == nil {
		return nil, nil
	}
	v := s.userView(u)
	return &v, nil
}

func (s *Store) userByEmail(email string) *domain.User {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if strings.ToLower(u.Email) == email {
			return u
		}
	}
	return nil
}

// CreateUser inserts u. A taken email yields ErrConflict and an unknown role
// ErrInvalidReference, as the Postgres constraints would.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userByEmail(u.Email) != nil {
		return nil, userEmailConflict()
	}
	if _, ok := s.roles[u.RoleID]; !ok {
		return nil, &domain.ErrInvalidReference{Field: "role_id", Message: "Invalid or inactive role"}
	}

	row := *u
	row.ID = s.nextID("users")
	row.IsActive = true
	row.Role = nil
	row.Audit = s.newAudit(u.CreatedBy)
	s.users[row.ID] = &row

	v := s.userView(&row)
	return &v, nil
}

// UpdateUser applies patch to an active user.
func (s *Store) UpdateUser(ctx context.Context, id int64, patch *domain.UserPatch) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || !u.IsActive {
		return nil, &domain.ErrNotFound{Resource: "User", ID: id}
	}
	if patch.Email != nil {
		if other := s.userByEmail(*patch.Email); other != nil && other.ID != id {
			return nil, userEmailConflict()
		}
	}
	if patch.RoleID != nil {
		if _, ok := s.roles[*patch.RoleID]; !ok {
			return nil, &domain.ErrInvalidReference{Field: "role_id", Message: "Invalid or inactive role"}
		}
	}

	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.RoleID != nil {
		u.RoleID = *patch.RoleID
	}
	s.touch(&u.Audit, patch.UpdatedBy)

	v := s.userView(u)
	return &v, nil
}

// DeactivateUser soft-deletes an active user.
func (s *Store) DeactivateUser(ctx context.Context, id, actor int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || !u.IsActive {
		return &domain.ErrNotFound{Resource: "User", ID: id}
	}
	u.IsActive = false
	s.touch(&u.Audit, actor)
	return nil
}

func userEmailConflict() *domain.ErrConflict {
	return &domain.ErrConflict{
		Fields:   []string{"email"},
		Messages: []string{"User with this email already exists"},
	}
}
