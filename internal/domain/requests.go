package domain

// ============================================================
// Leads
// ============================================================

// CreateLeadRequest is the body for POST /leads.
type CreateLeadRequest struct {
	Name        string  `json:"name" validate:"required,notblank,max=255"`
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	Phone       *string `json:"phone" validate:"omitempty,max=50"`
	StatusID    int64   `json:"status_id" validate:"required,gt=0"`
	SourceID    int64   `json:"source_id" validate:"required,gt=0"`
	AssignedTo  *int64  `json:"assigned_to" validate:"omitempty,gt=0"`
	Notes       *string `json:"notes"`
	IsConverted bool    `json:"is_converted"`
}

// UpdateLeadRequest is the body for PUT /leads/{id}. Conversion is only
// possible through POST /leads/{id}/convert.
type UpdateLeadRequest struct {
	Name       *string `json:"name" validate:"omitempty,notblank,max=255"`
	Email      *string `json:"email" validate:"omitempty,email,max=255"`
	Phone      *string `json:"phone" validate:"omitempty,max=50"`
	StatusID   *int64  `json:"status_id" validate:"omitempty,gt=0"`
	SourceID   *int64  `json:"source_id" validate:"omitempty,gt=0"`
	AssignedTo *int64  `json:"assigned_to" validate:"omitempty,gt=0"`
	Notes      *string `json:"notes"`
}

// LeadFilter narrows GET /leads.
type LeadFilter struct {
	IsConverted *bool
	StatusID    *int64
}

// ============================================================
// Work items
// ============================================================

// CreateWorkItemRequest is the body for POST /work-items.
type CreateWorkItemRequest struct {
	Title       string  `json:"title" validate:"required,notblank,max=255"`
	Description *string `json:"description"`
	CustomerID  int64   `json:"customer_id" validate:"required,gt=0"`
	AssignedTo  *int64  `json:"assigned_to" validate:"omitempty,gt=0"`
	StatusID    int64   `json:"status_id" validate:"required,gt=0"`
}

// UpdateWorkItemRequest is the body for PUT /work-items/{id}.
type UpdateWorkItemRequest struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=255"`
	Description *string `json:"description"`
	CustomerID  *int64  `json:"customer_id" validate:"omitempty,gt=0"`
	AssignedTo  *int64  `json:"assigned_to" validate:"omitempty,gt=0"`
	StatusID    *int64  `json:"status_id" validate:"omitempty,gt=0"`
}

// WorkItemFilter is the body for POST /work-items/filter and the parsed form
// of the GET /work-items query. Empty slices are ignored.
type WorkItemFilter struct {
	CustomerIDs   []int64 `json:"customer_ids" validate:"omitempty,dive,gt=0"`
	AssignedToIDs []int64 `json:"assigned_to_ids" validate:"omitempty,dive,gt=0"`
	StatusIDs     []int64 `json:"status_ids" validate:"omitempty,dive,gt=0"`
}

// ============================================================
// Tasks
// ============================================================

// CreateTaskRequest is the body for POST /tasks.
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,notblank,max=255"`
	Description *string `json:"description"`
	WorkItemID  int64   `json:"work_item_id" validate:"required,gt=0"`
	CustomerID  int64   `json:"customer_id" validate:"required,gt=0"`
	AssignedTo  *int64  `json:"assigned_to" validate:"omitempty,gt=0"`
	StatusID    int64   `json:"status_id" validate:"required,gt=0"`
}

// UpdateTaskRequest is the body for PUT /tasks/{id}.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=255"`
	Description *string `json:"description"`
	WorkItemID  *int64  `json:"work_item_id" validate:"omitempty,gt=0"`
	CustomerID  *int64  `json:"customer_id" validate:"omitempty,gt=0"`
	AssignedTo  *int64  `json:"assigned_to" validate:"omitempty,gt=0"`
	StatusID    *int64  `json:"status_id" validate:"omitempty,gt=0"`
}

// TaskFilter is the body for POST /tasks/filter. AssignedToIDs matches the
// task's own assignee or the assignee of its work item.
type TaskFilter struct {
	CustomerIDs   []int64 `json:"customer_ids" validate:"omitempty,dive,gt=0"`
	WorkItemIDs   []int64 `json:"work_item_ids" validate:"omitempty,dive,gt=0"`
	AssignedToIDs []int64 `json:"assigned_to_ids" validate:"omitempty,dive,gt=0"`
	StatusIDs     []int64 `json:"status_ids" validate:"omitempty,dive,gt=0"`
}

// ============================================================
// Communications
// ============================================================

// CreateCommunicationRequest is the body for POST /communications.
type CreateCommunicationRequest struct {
	LeadID  int64  `json:"lead_id" validate:"required,gt=0"`
	Message string `json:"message" validate:"required"`
}

// UpdateCommunicationRequest is the body for PUT /communications/{id}.
type UpdateCommunicationRequest struct {
	Message *string `json:"message" validate:"required,min=1"`
}

// CommunicationFilter is the body for POST /communications/filter.
type CommunicationFilter struct {
	LeadIDs      []int64 `json:"lead_ids" validate:"omitempty,dive,gt=0"`
	CreatedByIDs []int64 `json:"created_by_ids" validate:"omitempty,dive,gt=0"`
}
