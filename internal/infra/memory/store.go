// Package memory is a process-local implementation of every storage port.
// It backs the test suites and STORE_DRIVER=memory, and mirrors the
// constraints the Postgres schema enforces (unique emails, one-way
// conversion, soft deletes).
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/port"
)

var _ port.Store = (*Store)(nil)

// Store holds all rows behind a single lock.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	roles          map[int64]*domain.Role
	lookups        map[port.LookupTable]map[int64]*domain.Lookup
	users          map[int64]*domain.User
	leads          map[int64]*domain.Lead
	workItems      map[int64]*domain.WorkItem
	tasks          map[int64]*domain.Task
	communications map[int64]*domain.Communication

	seq map[string]int64
}

// New returns a store seeded with the reference rows.
func New() *Store {
	s := &Store{
		now:            func() time.Time { return time.Now().UTC() },
		roles:          make(map[int64]*domain.Role),
		lookups:        make(map[port.LookupTable]map[int64]*domain.Lookup),
		users:          make(map[int64]*domain.User),
		leads:          make(map[int64]*domain.Lead),
		workItems:      make(map[int64]*domain.WorkItem),
		tasks:          make(map[int64]*domain.Task),
		communications: make(map[int64]*domain.Communication),
		seq:            make(map[string]int64),
	}
	s.seed()
	return s
}

func (s *Store) seed() {
	created := s.now()
	for _, r := range [][2]string{
		{"Admin", "Full access to every resource"},
		{"User", "Standard user"},
		{"Sales", "Sales representative"},
		{"Manager", "Team manager"},
	} {
		id := s.nextID("roles")
		s.roles[id] = &domain.Role{ID: id, Name: r[0], Description: r[1], IsActive: true, CreatedAt: created}
	}

	seedTable := func(table port.LookupTable, rows [][2]string) {
		s.lookups[table] = make(map[int64]*domain.Lookup)
		for _, r := range rows {
			id := s.nextID(string(table))
			s.lookups[table][id] = &domain.Lookup{ID: id, Name: r[0], Description: r[1], IsActive: true, CreatedAt: created}
		}
	}
	seedTable(port.LeadStatuses, [][2]string{
		{"NEW", "Newly captured lead"},
		{"CONTACTED", "First contact made"},
		{"QUALIFIED", "Lead qualified"},
		{"PROPOSAL", "Proposal sent"},
		{"WON", "Deal won"},
		{"LOST", "Deal lost"},
	})
	seedTable(port.Sources, [][2]string{
		{"WEBSITE", "Website form"},
		{"SOCIAL_MEDIA", "Social media"},
		{"EMAIL_CAMPAIGN", "Email campaign"},
		{"REFERRAL", "Referral"},
		{"TRADE_SHOW", "Trade show"},
		{"COLD_CALL", "Cold call"},
	})
	seedTable(port.WorkStatuses, [][2]string{
		{"To Do", "Work that has not started"},
		{"In Progress", "Work currently being done"},
		{"In Review", "Work awaiting review"},
		{"Closed", "Completed work"},
		{"Cancelled", "Work that will not be done"},
	})
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// SetRoleActive toggles a role. Roles are not writable over HTTP; this exists
// for operators and tests.
func (s *Store) SetRoleActive(id int64, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.roles[id]; ok {
		r.IsActive = active
	}
}

// SetLookupActive toggles a reference row.
func (s *Store) SetLookupActive(table port.LookupTable, id int64, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.lookups[table][id]; ok {
		l.IsActive = active
	}
}

// must be called with mu held for writing
func (s *Store) nextID(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func (s *Store) userRef(id *int64) *domain.UserRef {
	if id == nil {
		return nil
	}
	u, ok := s.users[*id]
	if !ok {
		return nil
	}
	return &domain.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}

func (s *Store) lookupCopy(table port.LookupTable, id int64) *domain.Lookup {
	l, ok := s.lookups[table][id]
	if !ok {
		return nil
	}
	c := *l
	return &c
}

func (s *Store) customerRef(id int64) *domain.CustomerRef {
	l, ok := s.leads[id]
	if !ok {
		return nil
	}
	return &domain.CustomerRef{
		ID:          l.ID,
		Name:        l.Name,
		Email:       cloneString(l.Email),
		Phone:       cloneString(l.Phone),
		IsConverted: l.IsConverted,
	}
}

func (s *Store) audit(a domain.Audit) domain.Audit {
	a.CreatedBy = cloneInt(a.CreatedBy)
	a.UpdatedBy = cloneInt(a.UpdatedBy)
	a.CreatedUser = s.userRef(a.CreatedBy)
	a.UpdatedUser = s.userRef(a.UpdatedBy)
	return a
}

func (s *Store) newAudit(actor *int64) domain.Audit {
	now := s.now()
	return domain.Audit{
		CreatedBy: cloneInt(actor),
		UpdatedBy: cloneInt(actor),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Store) touch(a *domain.Audit, actor int64) {
	a.UpdatedBy = &actor
	a.UpdatedAt = s.now()
}

// newestFirst orders by created_at desc, then id desc.
func newestFirst[T any](rows []T, key func(T) (time.Time, int64)) {
	sort.SliceStable(rows, func(i, j int) bool {
		ti, idi := key(rows[i])
		tj, idj := key(rows[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return idi > idj
	})
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// matchesAny reports whether the filter is empty or contains id.
func matchesAny(ids []int64, id int64) bool {
	return len(ids) == 0 || containsID(ids, id)
}

func matchesAnyPtr(ids []int64, id *int64) bool {
	if len(ids) == 0 {
		return true
	}
	return id != nil && containsID(ids, *id)
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
