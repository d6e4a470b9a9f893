package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/infra/observability"
	"github.com/boddenberg/crm-api-go/internal/port"

	"golang.org/x/sync/errgroup"
)

// minPhoneDigits is the shortest phone considered for duplicate detection.
const minPhoneDigits = 7

// NormalizeEmail trims and lower-cases an email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone keeps an optional leading '+' followed by the digits of
// phone. digits is the same value without the '+'.
func NormalizePhone(phone string) (normalized, digits string) {
	phone = strings.TrimSpace(phone)
	digits = strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if strings.HasPrefix(phone, "+") {
		return "+" + digits, digits
	}
	return digits, digits
}

// Validator runs the reference and duplicate checks shared by the domain
// services. Every check reads storage directly; nothing is cached between
// calls.
type Validator struct {
	roles     port.RoleStore
	lookups   port.LookupStore
	users     port.UserStore
	leads     port.LeadStore
	workItems port.WorkItemStore
	metrics   *observability.Metrics
}

// NewValidator creates a validator over the given stores.
func NewValidator(store port.Store, metrics *observability.Metrics) *Validator {
	return &Validator{
		roles:     store,
		lookups:   store,
		users:     store,
		leads:     store,
		workItems: store,
		metrics:   metrics,
	}
}

// ============================================================
// Duplicate detection
// ============================================================

// CheckLeadDuplicates reports every field of the candidate lead that collides
// with another lead. email must already be normalised.
func (v *Validator) CheckLeadDuplicates(ctx context.Context, email, phone *string, excludeID int64) error {
	var emailTaken, phoneTaken bool

	g, gctx := errgroup.WithContext(ctx)
	if email != nil && *email != "" {
		g.Go(func() error {
			found, err := v.leads.LeadEmailExists(gctx, *email, excludeID)
			if err != nil {
				return fmt.Errorf("check lead email: %w", err)
			}
			emailTaken = found
			return nil
		})
	}
	if phone != nil {
		normalized, digits := NormalizePhone(*phone)
		if len(digits) >= minPhoneDigits {
			g.Go(func() error {
				found, err := v.leads.LeadPhoneExists(gctx, normalized, digits, excludeID)
				if err != nil {
					return fmt.Errorf("check lead phone: %w", err)
				}
				phoneTaken = found
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	conflict := &domain.ErrConflict{}
	if emailTaken {
		conflict.Fields = append(conflict.Fields, "email")
		conflict.Messages = append(conflict.Messages,
			fmt.Sprintf("Email %q is already associated with another lead", *email))
	}
	if phoneTaken {
		conflict.Fields = append(conflict.Fields, "phone")
		conflict.Messages = append(conflict.Messages,
			fmt.Sprintf("Phone number %q is already associated with another lead", strings.TrimSpace(*phone)))
	}
	if len(conflict.Fields) == 0 {
		return nil
	}
	for _, f := range conflict.Fields {
		v.metrics.IncrDuplicateConflict(f)
	}
	return conflict
}

// ============================================================
// Reference checks
// ============================================================

// leadRefs are the references of a lead write. Nil fields are not checked.
type leadRefs struct {
	StatusID   *int64
	SourceID   *int64
	AssignedTo *int64
}

// CheckLeadRefs validates the status, source and assignee of a lead write.
func (v *Validator) CheckLeadRefs(ctx context.Context, refs leadRefs) error {
	var (
		status   *domain.Lookup
		source   *domain.Lookup
		assignee *domain.User
	)

	g, gctx := errgroup.WithContext(ctx)
	if refs.StatusID != nil {
		g.Go(func() (err error) {
			status, err = v.lookups.GetLookup(gctx, port.LeadStatuses, *refs.StatusID)
			return wrapLookup("lead status", err)
		})
	}
	if refs.SourceID != nil {
		g.Go(func() (err error) {
			source, err = v.lookups.GetLookup(gctx, port.Sources, *refs.SourceID)
			return wrapLookup("source", err)
		})
	}
	if refs.AssignedTo != nil {
		g.Go(func() (err error) {
			assignee, err = v.users.GetUser(gctx, *refs.AssignedTo)
			return wrapLookup("assignee", err)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if refs.StatusID != nil && !lookupActive(status) {
		return &domain.ErrInvalidReference{Field: "status_id", Message: "Invalid status_id"}
	}
	if refs.SourceID != nil && !lookupActive(source) {
		return &domain.ErrInvalidReference{Field: "source_id", Message: "Invalid source_id"}
	}
	if refs.AssignedTo != nil && !userActive(assignee) {
		return invalidAssignee()
	}
	return nil
}

// workRefs are the references of a work item or task write. Nil fields are
// not checked. The task invariant applies when both WorkItemID and
// CustomerID are set.
type workRefs struct {
	WorkItemID *int64
	CustomerID *int64
	AssignedTo *int64
	StatusID   *int64
}

// CheckWorkRefs fetches every supplied reference concurrently, then evaluates
// them in a fixed order (work item, customer, invariant, assignee, status) so
// the reported error does not depend on lookup timing.
func (v *Validator) CheckWorkRefs(ctx context.Context, refs workRefs) error {
	var (
		workItem *domain.WorkItem
		customer *domain.Lead
		assignee *domain.User
		status   *domain.Lookup
	)

	g, gctx := errgroup.WithContext(ctx)
	if refs.WorkItemID != nil {
		g.Go(func() (err error) {
			workItem, err = v.workItems.GetWorkItem(gctx, *refs.WorkItemID)
			return wrapLookup("work item", err)
		})
	}
	if refs.CustomerID != nil {
		g.Go(func() (err error) {
			customer, err = v.leads.GetLead(gctx, *refs.CustomerID)
			return wrapLookup("customer", err)
		})
	}
	if refs.AssignedTo != nil {
		g.Go(func() (err error) {
			assignee, err = v.users.GetUser(gctx, *refs.AssignedTo)
			return wrapLookup("assignee", err)
		})
	}
	if refs.StatusID != nil {
		g.Go(func() (err error) {
			status, err = v.lookups.GetLookup(gctx, port.WorkStatuses, *refs.StatusID)
			return wrapLookup("work status", err)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if refs.WorkItemID != nil && (workItem == nil || !workItem.IsActive) {
		return &domain.ErrInvalidReference{Field: "work_item_id", Message: "Invalid work_item_id"}
	}
	if refs.CustomerID != nil && !customer.IsCustomer() {
		return &domain.ErrInvalidReference{
			Field:   "customer_id",
			Message: "Invalid customer_id. Customer must exist and be a converted lead",
		}
	}
	if refs.WorkItemID != nil && refs.CustomerID != nil && workItem.CustomerID != *refs.CustomerID {
		return &domain.ErrInvariantViolation{Message: "Task customer_id must match the work item customer_id"}
	}
	if refs.AssignedTo != nil && !userActive(assignee) {
		return invalidAssignee()
	}
	if refs.StatusID != nil && !lookupActive(status) {
		return &domain.ErrInvalidReference{Field: "status_id", Message: "Invalid status_id"}
	}
	return nil
}

// CheckLead fails unless id names an active lead.
func (v *Validator) CheckLead(ctx context.Context, id int64) error {
	lead, err := v.leads.GetLead(ctx, id)
	if err != nil {
		return wrapLookup("lead", err)
	}
	if lead == nil || !lead.IsActive {
		return &domain.ErrInvalidReference{Field: "lead_id", Message: "Invalid lead_id"}
	}
	return nil
}

// CheckRole returns the role when id names an active one.
func (v *Validator) CheckRole(ctx context.Context, id int64) (*domain.Role, error) {
	return activeRole(ctx, v.roles, id)
}

func activeRole(ctx context.Context, roles port.RoleStore, id int64) (*domain.Role, error) {
	role, err := roles.GetRole(ctx, id)
	if err != nil {
		return nil, wrapLookup("role", err)
	}
	if role == nil || !role.IsActive {
		return nil, &domain.ErrInvalidReference{Field: "role_id", Message: "Invalid or inactive role"}
	}
	return role, nil
}

// requireText trims value and rejects it when nothing is left.
func requireText(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", &domain.ErrValidation{Field: field, Message: "must not be blank"}
	}
	return v, nil
}

// optionalText is requireText for patch fields; nil stays nil.
func optionalText(field string, value *string) (*string, error) {
	if value == nil {
		return nil, nil
	}
	v, err := requireText(field, *value)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func wrapLookup(what string, err error) error {
	if err != nil {
		return fmt.Errorf("lookup %s: %w", what, err)
	}
	return nil
}

func lookupActive(l *domain.Lookup) bool { return l != nil && l.IsActive }

func userActive(u *domain.User) bool { return u != nil && u.IsActive }

func invalidAssignee() error {
	return &domain.ErrInvalidReference{Field: "assigned_to", Message: "Invalid assigned_to user id"}
}
