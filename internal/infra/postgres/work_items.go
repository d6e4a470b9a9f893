package postgres

import (
	"context"
	"fmt"

	"github.com/boddenberg/crm-api-go/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var workItemSelect = `
	SELECT wi.id, wi.title, wi.description, wi.customer_id, wi.assigned_to, wi.status_id, wi.is_active,
		` + customerJSON("cust") + `,
		` + userRefJSON("au") + `,
		` + lookupJSON("ws") + `,
		` + auditColumns("wi") + `
	FROM work_items wi
	LEFT JOIN leads cust ON cust.id = wi.customer_id
	LEFT JOIN users au ON au.id = wi.assigned_to
	LEFT JOIN work_statuses ws ON ws.id = wi.status_id
	` + auditJoins("wi")

func scanWorkItem(row pgx.Row) (domain.WorkItem, error) {
	var wi domain.WorkItem
	dest := append([]any{
		&wi.ID, &wi.Title, &wi.Description, &wi.CustomerID, &wi.AssignedTo, &wi.StatusID, &wi.IsActive,
		&wi.Customer, &wi.AssignedUser, &wi.Status,
	}, auditDest(&wi.Audit)...)
	err := row.Scan(dest...)
	return wi, err
}

// ListWorkItems returns active work items matching every non-empty filter,
// newest first.
func (s *Store) ListWorkItems(ctx context.Context, filter domain.WorkItemFilter) ([]domain.WorkItem, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListWorkItems")
	defer span.End()

	c := &conditions{}
	c.add("wi.is_active")
	c.anyOf("wi.customer_id", filter.CustomerIDs)
	c.anyOf("wi.assigned_to", filter.AssignedToIDs)
	c.anyOf("wi.status_id", filter.StatusIDs)
	return getMany(ctx, s, scanWorkItem, workItemSelect+c.where()+` ORDER BY wi.created_at DESC, wi.id DESC`, c.args...)
}

// GetWorkItem returns the work item with id, active or not.
func (s *Store) GetWorkItem(ctx context.Context, id int64) (*domain.WorkItem, error) {
	ctx, span := tracer.Start(ctx, "Postgres.GetWorkItem")
	defer span.End()

	return getOne(ctx, s, scanWorkItem, workItemSelect+` WHERE wi.id = $1`, id)
}

// CreateWorkItem inserts wi.
func (s *Store) CreateWorkItem(ctx context.Context, wi *domain.WorkItem) (*domain.WorkItem, error) {
	ctx, span := tracer.Start(ctx, "Postgres.CreateWorkItem")
	defer span.End()

	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO work_items (title, description, customer_id, assigned_to, status_id, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id`,
		wi.Title, wi.Description, wi.CustomerID, wi.AssignedTo, wi.StatusID, wi.CreatedBy,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert work item: %w", mapError(err))
	}

	s.logger.Debug("postgres: work item inserted", zap.Int64("work_item_id", id))
	return s.GetWorkItem(ctx, id)
}

// UpdateWorkItem applies the supplied fields to an active work item.
func (s *Store) UpdateWorkItem(ctx context.Context, id int64, req *domain.UpdateWorkItemRequest, actor int64) (*domain.WorkItem, error) {
	ctx, span := tracer.Start(ctx, "Postgres.UpdateWorkItem")
	defer span.End()

	a := newAssignments(id, actor)
	if req.Title != nil {
		a.set("title", *req.Title)
	}
	if req.Description != nil {
		a.set("description", *req.Description)
	}
	if req.CustomerID != nil {
		a.set("customer_id", *req.CustomerID)
	}
	if req.AssignedTo != nil {
		a.set("assigned_to", *req.AssignedTo)
	}
	if req.StatusID != nil {
		a.set("status_id", *req.StatusID)
	}
	a.set("updated_at", s.now())

	err := s.execOnActive(ctx, &domain.ErrNotFound{Resource: "Work item", ID: id},
		`UPDATE work_items SET updated_by = $2, `+a.list()+` WHERE id = $1 AND is_active`, a.args...)
	if err != nil {
		return nil, fmt.Errorf("update work item: %w", err)
	}
	return s.GetWorkItem(ctx, id)
}

// DeactivateWorkItem soft-deletes an active work item.
func (s *Store) DeactivateWorkItem(ctx context.Context, id, actor int64) error {
	ctx, span := tracer.Start(ctx, "Postgres.DeactivateWorkItem")
	defer span.End()

	return s.deactivate(ctx, "work_items", &domain.ErrNotFound{Resource: "Work item", ID: id}, id, actor)
}
