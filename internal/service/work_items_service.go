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

var workItemTracer = otel.Tracer("service/work_items")

// WorkItemService manages work items. Customers are re-verified on every
// write.
type WorkItemService struct {
	workItems port.WorkItemStore
	validator *Validator
	logger    *zap.Logger
}

// NewWorkItemService creates a new work item service.
func NewWorkItemService(workItems port.WorkItemStore, validator *Validator, logger *zap.Logger) *WorkItemService {
	return &WorkItemService{workItems: workItems, validator: validator, logger: logger}
}

func (s *WorkItemService) List(ctx context.Context, filter domain.WorkItemFilter) ([]domain.WorkItem, error) {
	ctx, span := workItemTracer.Start(ctx, "WorkItemService.List")
	defer span.End()

	return s.workItems.ListWorkItems(ctx, filter)
}

func (s *WorkItemService) Get(ctx context.Context, id int64) (*domain.WorkItem, error) {
	ctx, span := workItemTracer.Start(ctx, "WorkItemService.Get")
	defer span.End()
	span.SetAttributes(attribute.Int64("work_item.id", id))

	return s.getActive(ctx, id)
}

func (s *WorkItemService) Create(ctx context.Context, actor int64, req *domain.CreateWorkItemRequest) (*domain.WorkItem, error) {
	ctx, span := workItemTracer.Start(ctx, "WorkItemService.Create")
	defer span.End()

	title, err := requireText("title", req.Title)
	if err != nil {
		return nil, err
	}
	if err := s.validator.CheckWorkRefs(ctx, workRefs{
		CustomerID: &req.CustomerID,
		AssignedTo: req.AssignedTo,
		StatusID:   &req.StatusID,
	}); err != nil {
		return nil, err
	}

	wi, err := s.workItems.CreateWorkItem(ctx, &domain.WorkItem{
		Title:       title,
		Description: req.Description,
		CustomerID:  req.CustomerID,
		AssignedTo:  req.AssignedTo,
		StatusID:    req.StatusID,
		Audit:       domain.Audit{CreatedBy: &actor, UpdatedBy: &actor},
	})
	if err != nil {
		return nil, fmt.Errorf("create work item: %w", err)
	}

	s.logger.Info("work item created",
		zap.Int64("work_item_id", wi.ID),
		zap.Int64("customer_id", wi.CustomerID),
		zap.Int64("actor", actor),
	)
	return wi, nil
}

func (s *WorkItemService) Update(ctx context.Context, actor, id int64, req *domain.UpdateWorkItemRequest) (*domain.WorkItem, error) {
	ctx, span := workItemTracer.Start(ctx, "WorkItemService.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("work_item.id", id))

	if _, err := s.getActive(ctx, id); err != nil {
		return nil, err
	}
	title, err := optionalText("title", req.Title)
	if err != nil {
		return nil, err
	}
	if err := s.validator.CheckWorkRefs(ctx, workRefs{
		CustomerID: req.CustomerID,
		AssignedTo: req.AssignedTo,
		StatusID:   req.StatusID,
	}); err != nil {
		return nil, err
	}

	patch := *req
	patch.Title = title

	wi, err := s.workItems.UpdateWorkItem(ctx, id, &patch, actor)
	if err != nil {
		return nil, fmt.Errorf("update work item: %w", err)
	}

	s.logger.Info("work item updated",
		zap.Int64("work_item_id", id),
		zap.Int64("actor", actor),
	)
	return wi, nil
}

func (s *WorkItemService) Delete(ctx context.Context, actor, id int64) error {
	ctx, span := workItemTracer.Start(ctx, "WorkItemService.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("work_item.id", id))

	if err := s.workItems.DeactivateWorkItem(ctx, id, actor); err != nil {
		return fmt.Errorf("deactivate work item: %w", err)
	}

	s.logger.Info("work item deactivated",
		zap.Int64("work_item_id", id),
		zap.Int64("actor", actor),
	)
	return nil
}

func (s *WorkItemService) getActive(ctx context.Context, id int64) (*domain.WorkItem, error) {
	wi, err := s.workItems.GetWorkItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get work item: %w", err)
	}
	if wi == nil || !wi.IsActive {
		return nil, &domain.ErrNotFound{Resource: "Work item", ID: id}
	}
	return wi, nil
}
