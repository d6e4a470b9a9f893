package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var communicationTracer = otel.Tracer("service/communications")

// CommunicationService manages messages logged against leads.
type CommunicationService struct {
	communications port.CommunicationStore
	validator      *Validator
	logger         *zap.Logger
}

// NewCommunicationService creates a new communication service.
func NewCommunicationService(communications port.CommunicationStore, validator *Validator, logger *zap.Logger) *CommunicationService {
	return &CommunicationService{communications: communications, validator: validator, logger: logger}
}

func (s *CommunicationService) List(ctx context.Context, filter domain.CommunicationFilter) ([]domain.Communication, error) {
	ctx, span := communicationTracer.Start(ctx, "CommunicationService.List")
	defer span.End()

	return s.communications.ListCommunications(ctx, filter)
}

func (s *CommunicationService) Get(ctx context.Context, id int64) (*domain.Communication, error) {
	ctx, span := communicationTracer.Start(ctx, "CommunicationService.Get")
	defer span.End()
	span.SetAttributes(attribute.Int64("communication.id", id))

	c, err := s.communications.GetCommunication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get communication: %w", err)
	}
	if c == nil || !c.IsActive {
		return nil, &domain.ErrNotFound{Resource: "Communication", ID: id}
	}
	return c, nil
}

func (s *CommunicationService) Create(ctx context.Context, actor int64, req *domain.CreateCommunicationRequest) (*domain.Communication, error) {
	ctx, span := communicationTracer.Start(ctx, "CommunicationService.Create")
	defer span.End()

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, &domain.ErrValidation{Field: "message", Message: "is required"}
	}
	if err := s.validator.CheckLead(ctx, req.LeadID); err != nil {
		return nil, err
	}

	c, err := s.communications.CreateCommunication(ctx, &domain.Communication{
		LeadID:  req.LeadID,
		Message: message,
		Audit:   domain.Audit{CreatedBy: &actor, UpdatedBy: &actor},
	})
	if err != nil {
		return nil, fmt.Errorf("create communication: %w", err)
	}

	s.logger.Info("communication created",
		zap.Int64("communication_id", c.ID),
		zap.Int64("lead_id", c.LeadID),
		zap.Int64("actor", actor),
	)
	return c, nil
}

// Update replaces the message; nothing else about a communication changes.
func (s *CommunicationService) Update(ctx context.Context, actor, id int64, req *domain.UpdateCommunicationRequest) (*domain.Communication, error) {
	ctx, span := communicationTracer.Start(ctx, "CommunicationService.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("communication.id", id))

	message := ""
	if req.Message != nil {
		message = strings.TrimSpace(*req.Message)
	}
	if message == "" {
		return nil, &domain.ErrValidation{Field: "message", Message: "is required"}
	}

	c, err := s.communications.UpdateCommunicationMessage(ctx, id, message, actor)
	if err != nil {
		return nil, fmt.Errorf("update communication: %w", err)
	}

	s.logger.Info("communication updated",
		zap.Int64("communication_id", id),
		zap.Int64("actor", actor),
	)
	return c, nil
}

func (s *CommunicationService) Delete(ctx context.Context, actor, id int64) error {
	ctx, span := communicationTracer.Start(ctx, "CommunicationService.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("communication.id", id))

	if err := s.communications.DeactivateCommunication(ctx, id, actor); err != nil {
		return fmt.Errorf("deactivate communication: %w", err)
	}

	s.logger.Info("communication deactivated",
		zap.Int64("communication_id", id),
		zap.Int64("actor", actor),
	)
	return nil
}
