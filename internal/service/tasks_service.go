package service

import (
	"context"
	"fmt"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var taskTracer = otel.Tracer("service/tasks")

// TaskService manages tasks. A task's customer must match the customer of
// its work item.
type TaskService struct {
	tasks     port.TaskStore
	validator *Validator
	logger    *zap.Logger
}

// NewTaskService creates a new task service.
func NewTaskService(tasks port.TaskStore, validator *Validator, logger *zap.Logger) *TaskService {
	return &TaskService{tasks: tasks, validator: validator, logger: logger}
}

// List applies the filter; AssignedToIDs also matches tasks whose work item
// is assigned to one of the ids.
func (s *TaskService) List(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error) {
	ctx, span := taskTracer.Start(ctx, "TaskService.List")
	defer span.End()

	return s.tasks.ListTasks(ctx, filter)
}

func (s *TaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	ctx, span := taskTracer.Start(ctx, "TaskService.Get")
	defer span.End()
	span.SetAttributes(attribute.Int64("task.id", id))

	return s.getActive(ctx, id)
}

func (s *TaskService) Create(ctx context.Context, actor int64, req *domain.CreateTaskRequest) (*domain.Task, error) {
	ctx, span := taskTracer.Start(ctx, "TaskService.Create")
	defer span.End()

	title, err := requireText("title", req.Title)
	if err != nil {
		return nil, err
	}
	if err := s.validator.CheckWorkRefs(ctx, workRefs{
		WorkItemID: &req.WorkItemID,
		CustomerID: &req.CustomerID,
		AssignedTo: req.AssignedTo,
		StatusID:   &req.StatusID,
	}); err != nil {
		return nil, err
	}

	task, err := s.tasks.CreateTask(ctx, &domain.Task{
		Title:       title,
		Description: req.Description,
		WorkItemID:  req.WorkItemID,
		CustomerID:  req.CustomerID,
		AssignedTo:  req.AssignedTo,
		StatusID:    req.StatusID,
		Audit:       domain.Audit{CreatedBy: &actor, UpdatedBy: &actor},
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.Info("task created",
		zap.Int64("task_id", task.ID),
		zap.Int64("work_item_id", task.WorkItemID),
		zap.Int64("actor", actor),
	)
	return task, nil
}

// Update checks the customer invariant only when the patch carries both
// work_item_id and customer_id.
func (s *TaskService) Update(ctx context.Context, actor, id int64, req *domain.UpdateTaskRequest) (*domain.Task, error) {
	ctx, span := taskTracer.Start(ctx, "TaskService.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("task.id", id))

	if _, err := s.getActive(ctx, id); err != nil {
		return nil, err
	}
	title, err := optionalText("title", req.Title)
	if err != nil {
		return nil, err
	}
	if err := s.validator.CheckWorkRefs(ctx, workRefs{
		WorkItemID: req.WorkItemID,
		CustomerID: req.CustomerID,
		AssignedTo: req.AssignedTo,
		StatusID:   req.StatusID,
	}); err != nil {
		return nil, err
	}

	patch := *req
	patch.Title = title

	task, err := s.tasks.UpdateTask(ctx, id, &patch, actor)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.logger.Info("task updated",
		zap.Int64("task_id", id),
		zap.Int64("actor", actor),
	)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, actor, id int64) error {
	ctx, span := taskTracer.Start(ctx, "TaskService.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("task.id", id))

	if err := s.tasks.DeactivateTask(ctx, id, actor); err != nil {
		return fmt.Errorf("deactivate task: %w", err)
	}

	s.logger.Info("task deactivated",
		zap.Int64("task_id", id),
		zap.Int64("actor", actor),
	)
	return nil
}

func (s *TaskService) getActive(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil || !task.IsActive {
		return nil, &domain.ErrNotFound{Resource: "Task", ID: id}
	}
	return task, nil
}
