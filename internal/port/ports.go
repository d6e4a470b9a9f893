// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete storage implementations.
//
// Lookups return (nil, nil) when the row does not exist. Rows are returned
// regardless of is_active; callers decide whether a soft-deleted row counts.
package port

import (
	"context"

	"github.com/boddenberg/crm-api-go/internal/domain"
)

// LookupTable names one of the read-only reference tables.
type LookupTable string

const (
	LeadStatuses LookupTable = "lead_statuses"
	Sources      LookupTable = "sources"
	WorkStatuses LookupTable = "work_statuses"
)

// RoleStore reads roles.
type RoleStore interface {
	ListRoles(ctx context.Context) ([]domain.Role, error)
	GetRole(ctx context.Context, id int64) (*domain.Role, error)
}

// LookupStore reads the lead status, source and work status tables.
type LookupStore interface {
	ListLookups(ctx context.Context, table LookupTable) ([]domain.Lookup, error)
	GetLookup(ctx context.Context, table LookupTable, id int64) (*domain.Lookup, error)
}

// UserStore persists users.
type UserStore interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListAssignableUsers(ctx context.Context) ([]domain.AssignableUser, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateUser(ctx context.Context, u *domain.User) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, patch *domain.UserPatch) (*domain.User, error)
	DeactivateUser(ctx context.Context, id, actor int64) error
}

// LeadStore persists leads.
type LeadStore interface {
	ListLeads(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, error)
	GetLead(ctx context.Context, id int64) (*domain.Lead, error)
	// LeadEmailExists matches lower(email) against an already-normalised
	// email, ignoring excludeID.
	LeadEmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	// LeadPhoneExists matches a stored phone equal to normalized, or whose
	// digits contain digits, ignoring excludeID.
	LeadPhoneExists(ctx context.Context, normalized, digits string, excludeID int64) (bool, error)
	CreateLead(ctx context.Context, l *domain.Lead) (*domain.Lead, error)
	UpdateLead(ctx context.Context, id int64, req *domain.UpdateLeadRequest, actor int64) (*domain.Lead, error)
	MarkLeadConverted(ctx context.Context, id, actor int64) (*domain.Lead, error)
	DeactivateLead(ctx context.Context, id, actor int64) error
}

// WorkItemStore persists work items.
type WorkItemStore interface {
	ListWorkItems(ctx context.Context, filter domain.WorkItemFilter) ([]domain.WorkItem, error)
	GetWorkItem(ctx context.Context, id int64) (*domain.WorkItem, error)
	CreateWorkItem(ctx context.Context, wi *domain.WorkItem) (*domain.WorkItem, error)
	UpdateWorkItem(ctx context.Context, id int64, req *domain.UpdateWorkItemRequest, actor int64) (*domain.WorkItem, error)
	DeactivateWorkItem(ctx context.Context, id, actor int64) error
}

// TaskStore persists tasks.
type TaskStore interface {
	ListTasks(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error)
	GetTask(ctx context.Context, id int64) (*domain.Task, error)
	CreateTask(ctx context.Context, t *domain.Task) (*domain.Task, error)
	UpdateTask(ctx context.Context, id int64, req *domain.UpdateTaskRequest, actor int64) (*domain.Task, error)
	DeactivateTask(ctx context.Context, id, actor int64) error
}

// CommunicationStore persists communications.
type CommunicationStore interface {
	ListCommunications(ctx context.Context, filter domain.CommunicationFilter) ([]domain.Communication, error)
	GetCommunication(ctx context.Context, id int64) (*domain.Communication, error)
	CreateCommunication(ctx context.Context, c *domain.Communication) (*domain.Communication, error)
	UpdateCommunicationMessage(ctx context.Context, id int64, message string, actor int64) (*domain.Communication, error)
	DeactivateCommunication(ctx context.Context, id, actor int64) error
}

// HealthChecker pings the underlying storage.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Store is the full storage surface wired in main.
type Store interface {
	RoleStore
	LookupStore
	UserStore
	LeadStore
	WorkItemStore
	TaskStore
	CommunicationStore
	HealthChecker
}
