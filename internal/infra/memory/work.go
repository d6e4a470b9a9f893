package memory

import (
	"context"
	"time"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/port"
)

func (s *Store) workItemView(wi *domain.WorkItem) domain.WorkItem {
	c := *wi
	c.Description = cloneString(wi.Description)
	c.AssignedTo = cloneInt(wi.AssignedTo)
	c.Customer = s.customerRef(wi.CustomerID)
	c.AssignedUser = s.userRef(wi.AssignedTo)
	c.Status = s.lookupCopy(port.WorkStatuses, wi.StatusID)
	c.Audit = s.audit(wi.Audit)
	return c
}

// ListWorkItems returns active work items matching every non-empty filter.
func (s *Store) ListWorkItems(ctx context.Context, filter domain.WorkItemFilter) ([]domain.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.WorkItem, 0, len(s.workItems))
	for _, wi := range s.workItems {
		if !wi.IsActive ||
			!matchesAny(filter.CustomerIDs, wi.CustomerID) ||
			!matchesAnyPtr(filter.AssignedToIDs, wi.AssignedTo) ||
			!matchesAny(filter.StatusIDs, wi.StatusID) {
			continue
		}
		out = append(out, s.workItemView(wi))
	}
	newestFirst(out, func(w domain.WorkItem) (time.Time, int64) { return w.CreatedAt, w.ID })
	return out, nil
}

// GetWorkItem returns the work item with id, active or not.
func (s *Store) GetWorkItem(ctx context.Context, id int64) (*domain.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wi, ok := s.workItems[id]
	if !ok {
		return nil, nil
	}
	v := s.workItemView(wi)
	return &v, nil
}

// CreateWorkItem inserts wi.
func (s *Store) CreateWorkItem(ctx context.Context, wi *domain.WorkItem) (*domain.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWorkRefs(wi.CustomerID, wi.StatusID, wi.AssignedTo); err != nil {
		return nil, err
	}

	row := *wi
	row.Description = cloneString(wi.Description)
	row.AssignedTo = cloneInt(wi.AssignedTo)
	row.Customer, row.AssignedUser, row.Status = nil, nil, nil
	row.ID = s.nextID("work_items")
	row.IsActive = true
	row.Audit = s.newAudit(wi.CreatedBy)
	s.workItems[row.ID] = &row

	v := s.workItemView(&row)
	return &v, nil
}

// UpdateWorkItem applies the supplied fields to an active work item.
func (s *Store) UpdateWorkItem(ctx context.Context, id int64, req *domain.UpdateWorkItemRequest, actor int64) (*domain.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wi, ok := s.workItems[id]
	if !ok || !wi.IsActive {
		return nil, &domain.ErrNotFound{Resource: "Work item", ID: id}
	}

	customerID, statusID, assignee := wi.CustomerID, wi.StatusID, wi.AssignedTo
	if req.CustomerID != nil {
		customerID = *req.CustomerID
	}
	if req.StatusID != nil {
		statusID = *req.StatusID
	}
	if req.AssignedTo != nil {
		assignee = req.AssignedTo
	}
	if err := s.checkWorkRefs(customerID, statusID, assignee); err != nil {
		return nil, err
	}

	if req.Title != nil {
		wi.Title = *req.Title
	}
	if req.Description != nil {
		wi.Description = cloneString(req.Description)
	}
	wi.CustomerID, wi.StatusID, wi.AssignedTo = customerID, statusID, cloneInt(assignee)
	s.touch(&wi.Audit, actor)

	v := s.workItemView(wi)
	return &v, nil
}

// DeactivateWorkItem soft-deletes an active work item.
func (s *Store) DeactivateWorkItem(ctx context.Context, id, actor int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wi, ok := s.workItems[id]
	if !ok || !wi.IsActive {
		return &domain.ErrNotFound{Resource: "Work item", ID: id}
	}
	wi.IsActive = false
	s.touch(&wi.Audit, actor)
	return nil
}

func (s *Store) taskView(t *domain.Task) domain.Task {
	c := *t
	c.Description = cloneString(t.Description)
	c.AssignedTo = cloneInt(t.AssignedTo)
	if wi, ok := s.workItems[t.WorkItemID]; ok {
		c.WorkItem = &domain.WorkItemRef{
			ID:         wi.ID,
			Title:      wi.Title,
			CustomerID: wi.CustomerID,
			AssignedTo: cloneInt(wi.AssignedTo),
			StatusID:   wi.StatusID,
		}
	}
	c.Customer = s.customerRef(t.CustomerID)
	c.AssignedUser = s.userRef(t.AssignedTo)
	c.Status = s.lookupCopy(port.WorkStatuses, t.StatusID)
	c.Audit = s.audit(t.Audit)
	return c
}

// ListTasks returns active tasks matching every non-empty filter. The
// assignee filter also matches tasks whose work item is assigned to one of
// the ids.
func (s *Store) ListTasks(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.IsActive ||
			!matchesAny(filter.CustomerIDs, t.CustomerID) ||
			!matchesAny(filter.WorkItemIDs, t.WorkItemID) ||
			!matchesAny(filter.StatusIDs, t.StatusID) {
			continue
		}
		if len(filter.AssignedToIDs) > 0 {
			var parentAssignee *int64
			if wi, ok := s.workItems[t.WorkItemID]; ok {
				parentAssignee = wi.AssignedTo
			}
			if !matchesAnyPtr(filter.AssignedToIDs, t.AssignedTo) &&
				!matchesAnyPtr(filter.AssignedToIDs, parentAssignee) {
				continue
			}
		}
		out = append(out, s.taskView(t))
	}
	newestFirst(out, func(t domain.Task) (time.Time, int64) { return t.CreatedAt, t.ID })
	return out, nil
}

// GetTask returns the task with id, active or not.
func (s *Store) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	v := s.taskView(t)
	return &v, nil
}

// CreateTask inserts t.
func (s *Store) CreateTask(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workItems[t.WorkItemID]; !ok {
		return nil, &domain.ErrInvalidReference{Field: "work_item_id"}
	}
	if err := s.checkWorkRefs(t.CustomerID, t.StatusID, t.AssignedTo); err != nil {
		return nil, err
	}

	row := *t
	row.Description = cloneString(t.Description)
	row.AssignedTo = cloneInt(t.AssignedTo)
	row.WorkItem, row.Customer, row.AssignedUser, row.Status = nil, nil, nil, nil
	row.ID = s.nextID("tasks")
	row.IsActive = true
	row.Audit = s.newAudit(t.CreatedBy)
	s.tasks[row.ID] = &row

	v := s.taskView(&row)
	return &v, nil
}

// UpdateTask applies the supplied fields to an active task.
func (s *Store) UpdateTask(ctx context.Context, id int64, req *domain.UpdateTaskRequest, actor int64) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || !t.IsActive {
		return nil, &domain.ErrNotFound{Resource: "Task", ID: id}
	}

	workItemID, customerID, statusID, assignee := t.WorkItemID, t.CustomerID, t.StatusID, t.AssignedTo
	if req.WorkItemID != nil {
		workItemID = *req.WorkItemID
		if _, ok := s.workItems[workItemID]; !ok {
			return nil, &domain.ErrInvalidReference{Field: "work_item_id"}
		}
	}
	if req.CustomerID != nil {
		customerID = *req.CustomerID
	}
	if req.StatusID != nil {
		statusID = *req.StatusID
	}
	if req.AssignedTo != nil {
		assignee = req.AssignedTo
	}
	if err := s.checkWorkRefs(customerID, statusID, assignee); err != nil {
		return nil, err
	}

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = cloneString(req.Description)
	}
	t.WorkItemID, t.CustomerID, t.StatusID, t.AssignedTo = workItemID, customerID, statusID, cloneInt(assignee)
	s.touch(&t.Audit, actor)

	v := s.taskView(t)
	return &v, nil
}

// DeactivateTask soft-deletes an active task.
func (s *Store) DeactivateTask(ctx context.Context, id, actor int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok || !t.IsActive {
		return &domain.ErrNotFound{Resource: "Task", ID: id}
	}
	t.IsActive = false
	s.touch(&t.Audit, actor)
	return nil
}

// foreign keys shared by work items and tasks
func (s *Store) checkWorkRefs(customerID, statusID int64, assignee *int64) error {
	if _, ok := s.leads[customerID]; !ok {
		return &domain.ErrInvalidReference{Field: "customer_id"}
	}
	if _, ok := s.lookups[port.WorkStatuses][statusID]; !ok {
		return &domain.ErrInvalidReference{Field: "status_id", Message: "Invalid status_id"}
	}
	if assignee != nil {
		if _, ok := s.users[*assignee]; !ok {
			return &domain.ErrInvalidReference{Field: "assigned_to", Message: "Invalid assigned_to user id"}
		}
	}
	return nil
}
