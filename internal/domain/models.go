package domain

import "time"

// ============================================================
// Reference data
// ============================================================

// Role is an authorization role referenced by users.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Lookup is a row of one of the small reference tables
// (lead_statuses, sources, work_statuses).
type Lookup struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoleRef is the compact role embedded in user payloads.
type RoleRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserRef is the compact user embedded in joined payloads
// (assignee, creator, updater).
type UserRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// CustomerRef is the converted lead embedded in work items and tasks.
type CustomerRef struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	IsConverted bool    `json:"is_converted"`
}

// WorkItemRef is the parent work item embedded in task payloads.
type WorkItemRef struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	CustomerID int64  `json:"customer_id"`
	AssignedTo *int64 `json:"assigned_to,omitempty"`
	StatusID   int64  `json:"status_id"`
}

// Audit carries the denormalised pointers to the acting users.
type Audit struct {
	CreatedBy   *int64    `json:"created_by,omitempty"`
	UpdatedBy   *int64    `json:"updated_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedUser *UserRef  `json:"created_user,omitempty"`
	UpdatedUser *UserRef  `json:"updated_user,omitempty"`
}

// ============================================================
// Users
// ============================================================

// User is an account able to authenticate against the API.
type User struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	PasswordHash string   `json:"-"`
	RoleID       int64    `json:"role_id"`
	Role         *RoleRef `json:"role,omitempty"`
	IsActive     bool     `json:"is_active"`
	Audit
}

// AssignableUser is the trimmed user shape used to populate assignee pickers.
type AssignableUser struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	Role RoleRef `json:"role"`
}

// Principal is the authenticated caller attached to the request context.
type Principal struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

// ============================================================
// Leads
// ============================================================

// Lead is a prospective customer. Once converted (and while active) it is a
// valid customer reference for work items and tasks.
type Lead struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Email        *string  `json:"email,omitempty"`
	Phone        *string  `json:"phone,omitempty"`
	StatusID     int64    `json:"status_id"`
	SourceID     int64    `json:"source_id"`
	AssignedTo   *int64   `json:"assigned_to,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
	IsConverted  bool     `json:"is_converted"`
	IsActive     bool     `json:"is_active"`
	Status       *Lookup  `json:"status,omitempty"`
	Source       *Lookup  `json:"source,omitempty"`
	AssignedUser *UserRef `json:"assigned_user,omitempty"`
	Audit
}

// IsCustomer reports whether the lead may be referenced as a customer.
func (l *Lead) IsCustomer() bool {
	return l != nil && l.IsActive && l.IsConverted
}

// ============================================================
// Work items & tasks
// ============================================================

// WorkItem is a unit of work tied to a customer.
type WorkItem struct {
	ID           int64        `json:"id"`
	Title        string       `json:"title"`
	Description  *string      `json:"description,omitempty"`
	CustomerID   int64        `json:"customer_id"`
	AssignedTo   *int64       `json:"assigned_to,omitempty"`
	StatusID     int64        `json:"status_id"`
	IsActive     bool         `json:"is_active"`
	Customer     *CustomerRef `json:"customer,omitempty"`
	AssignedUser *UserRef     `json:"assigned_user,omitempty"`
	Status       *Lookup      `json:"status,omitempty"`
	Audit
}

// Task is a sub-unit of a work item sharing the work item's customer.
type Task struct {
	ID           int64        `json:"id"`
	Title        string       `json:"title"`
	Description  *string      `json:"description,omitempty"`
	WorkItemID   int64        `json:"work_item_id"`
	CustomerID   int64        `json:"customer_id"`
	AssignedTo   *int64       `json:"assigned_to,omitempty"`
	StatusID     int64        `json:"status_id"`
	IsActive     bool         `json:"is_active"`
	WorkItem     *WorkItemRef `json:"work_item,omitempty"`
	Customer     *CustomerRef `json:"customer,omitempty"`
	AssignedUser *UserRef     `json:"assigned_user,omitempty"`
	Status       *Lookup      `json:"status,omitempty"`
	Audit
}

// ============================================================
// Communications
// ============================================================

// Communication is a message logged against a lead.
type Communication struct {
	ID       int64  `json:"id"`
	LeadID   int64  `json:"lead_id"`
	Message  string `json:"message"`
	IsActive bool   `json:"is_active"`
	Audit
}
