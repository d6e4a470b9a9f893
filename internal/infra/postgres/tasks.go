package postgres

import (
	"context"
	"fmt"

	"github.com/boddenberg/crm-api-go/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var taskSelect = `
	SELECT t.id, t.title, t.description, t.work_item_id, t.customer_id, t.assigned_to, t.status_id, t.is_active,
		CASE WHEN wi.id IS NULL THEN NULL
			ELSE json_build_object('id', wi.id, 'title', wi.title, 'customer_id', wi.customer_id,
				'assigned_to', wi.assigned_to, 'status_id', wi.status_id) END,
		` + customerJSON("cust") + `,
		` + userRefJSON("au") + `,
		` + lookupJSON("ws") + `,
		` + auditColumns("t") + `
	FROM tasks t
	LEFT JOIN work_items wi ON wi.id = t.work_item_id
	LEFT JOIN leads cust ON cust.id = t.customer_id
	LEFT JOIN users au ON au.id = t.assigned_to
	LEFT JOIN work_statuses ws ON ws.id = t.status_id
	` + auditJoins("t")

func scanTask(row pgx.Row) (domain.Task, error) {
	var t domain.Task
	dest := append([]any{
		&t.ID, &t.Title, &t.Description, &t.WorkItemID, &t.CustomerID, &t.AssignedTo, &t.StatusID, &t.IsActive,
		&t.WorkItem, &t.Customer, &t.AssignedUser, &t.Status,
	}, auditDest(&t.Audit)...)
	err := row.Scan(dest...)
	return t, err
}

// ListTasks returns active tasks matching every non-empty filter, newest
// first. AssignedToIDs matches the task's own assignee or its work item's.
func (s *Store) ListTasks(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListTasks")
	defer span.End()

	c := taskConditions(filter)
	return getMany(ctx, s, scanTask, taskSelect+c.where()+` ORDER BY t.created_at DESC, t.id DESC`, c.args...)
}

func taskConditions(filter domain.TaskFilter) *conditions {
	c := &conditions{}
	c.add("t.is_active")
	c.anyOf("t.customer_id", filter.CustomerIDs)
	c.anyOf("t.work_item_id", filter.WorkItemIDs)
	c.anyOf("t.status_id", filter.StatusIDs)
	if len(filter.AssignedToIDs) > 0 {
		p := c.arg(filter.AssignedToIDs)
		c.clauses = append(c.clauses, fmt.Sprintf("(t.assigned_to = ANY(%[1]s) OR wi.assigned_to = ANY(%[1]s))", p))
	}
	return c
}

// GetTask returns the task with id, active or not.
func (s *Store) GetTask(ctx context.Context, id int64) (*domain.Task, error) {
	ctx, span := tracer.Start(ctx, "Postgres.GetTask")
	defer span.End()

	return getOne(ctx, s, scanTask, taskSelect+` WHERE t.id = $1`, id)
}

// CreateTask inserts t.
func (s *Store) CreateTask(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	ctx, span := tracer.Start(ctx, "Postgres.CreateTask")
	defer span.End()

	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, work_item_id, customer_id, assigned_to, status_id, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id`,
		t.Title, t.Description, t.WorkItemID, t.CustomerID, t.AssignedTo, t.StatusID, t.CreatedBy,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", mapError(err))
	}

	s.logger.Debug("postgres: task inserted", zap.Int64("task_id", id))
	return s.GetTask(ctx, id)
}

// UpdateTask applies the supplied fields to an active task.
func (s *Store) UpdateTask(ctx context.Context, id int64, req *domain.UpdateTaskRequest, actor int64) (*domain.Task, error) {
	ctx, span := tracer.Start(ctx, "Postgres.UpdateTask")
	defer span.End()

	a := newAssignments(id, actor)
	if req.Title != nil {
		a.set("title", *req.Title)
	}
	if req.Description != nil {
		a.set("description", *req.Description)
	}
	if req.WorkItemID != nil {
		a.set("work_item_id", *req.WorkItemID)
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

	err := s.execOnActive(ctx, &domain.ErrNotFound{Resource: "Task", ID: id},
		`UPDATE tasks SET updated_by = $2, `+a.list()+` WHERE id = $1 AND is_active`, a.args...)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetTask(ctx, id)
}

// DeactivateTask soft-deletes an active task.
func (s *Store) DeactivateTask(ctx context.Context, id, actor int64) error {
	ctx, span := tracer.Start(ctx, "Postgres.DeactivateTask")
	defer span.End()

	return s.deactivate(ctx, "tasks", &domain.ErrNotFound{Resource: "Task", ID: id}, id, actor)
}
