package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/infra/observability"
	"github.com/boddenberg/crm-api-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var leadTracer = otel.Tracer("service/leads")

// LeadService manages leads and their one-way conversion into customers.
type LeadService struct {
	leads     port.LeadStore
	validator *Validator
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewLeadService creates a new lead service.
func NewLeadService(leads port.LeadStore, validator *Validator, metrics *observability.Metrics, logger *zap.Logger) *LeadService {
	return &LeadService{leads: leads, validator: validator, metrics: metrics, logger: logger}
}

func (s *LeadService) List(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, error) {
	ctx, span := leadTracer.Start(ctx, "LeadService.List")
	defer span.End()

	return s.leads.ListLeads(ctx, filter)
}

func (s *LeadService) ListByStatus(ctx context.Context, statusID int64) ([]domain.Lead, error) {
	ctx, span := leadTracer.Start(ctx, "LeadService.ListByStatus")
	defer span.End()

	return s.leads.ListLeads(ctx, domain.LeadFilter{StatusID: &statusID})
}

func (s *LeadService) Get(ctx context.Context, id int64) (*domain.Lead, error) {
	ctx, span := leadTracer.Start(ctx, "LeadService.Get")
	defer span.End()
	span.SetAttributes(attribute.Int64("lead.id", id))

	return s.getActive(ctx, id)
}

func (s *LeadService) Create(ctx context.Context, actor int64, req *domain.CreateLeadRequest) (*domain.Lead, error) {
	ctx, span := leadTracer.Start(ctx, "LeadService.Create")
	defer span.End()

	name, err := requireText("name", req.Name)
	if err != nil {
		return nil, err
	}
	email := normalizeOptionalEmail(req.Email)
	phone := trimOptional(req.Phone)

	if err := s.validator.CheckLeadDuplicates(ctx, email, phone, 0); err != nil {
		return nil, err
	}
	if err := s.validator.CheckLeadRefs(ctx, leadRefs{
		StatusID:   &req.StatusID,
		SourceID:   &req.SourceID,
		AssignedTo: req.AssignedTo,
	}); err != nil {
		return nil, err
	}

	lead, err := s.leads.CreateLead(ctx, &domain.Lead{
		Name:        name,
		Email:       email,
		Phone:       phone,
		StatusID:    req.StatusID,
		SourceID:    req.SourceID,
		AssignedTo:  req.AssignedTo,
		Notes:       req.Notes,
		IsConverted: req.IsConverted,
		Audit:       domain.Audit{CreatedBy: &actor, UpdatedBy: &actor},
	})
	if err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}

	s.logger.Info("lead created",
		zap.Int64("lead_id", lead.ID),
		zap.Int64("actor", actor),
	)
	return lead, nil
}

func (s *LeadService) Update(ctx context.Context, actor, id int64, req *domain.UpdateLeadRequest) (*domain.Lead, error) {
	ctx, span := leadTracer.Start(ctx, "LeadService.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("lead.id", id))

	if _, err := s.getActive(ctx, id); err != nil {
		return nil, err
	}

	name, err := optionalText("name", req.Name)
	if err != nil {
		return nil, err
	}
	patch := *req
	patch.Name = name
	patch.Email = normalizeOptionalEmail(req.Email)
	patch.Phone = trimOptional(req.Phone)

	if err := s.validator.CheckLeadDuplicates(ctx, patch.Email, patch.Phone, id); err != nil {
		return nil, err
	}
	if err := s.validator.CheckLeadRefs(ctx, leadRefs{
		StatusID:   req.StatusID,
		SourceID:   req.SourceID,
		AssignedTo: req.AssignedTo,
	}); err != nil {
		return nil, err
	}

	lead, err := s.leads.UpdateLead(ctx, id, &patch, actor)
	if err != nil {
		return nil, fmt.Errorf("update lead: %w", err)
	}

	s.logger.Info("lead updated",
		zap.Int64("lead_id", id),
		zap.Int64("actor", actor),
	)
	return lead, nil
}

func (s *LeadService) Delete(ctx context.Context, actor, id int64) error {
	ctx, span := leadTracer.Start(ctx, "LeadService.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("lead.id", id))

	if err := s.leads.DeactivateLead(ctx, id, actor); err != nil {
		return fmt.Errorf("deactivate lead: %w", err)
	}

	s.logger.Info("lead deactivated",
		zap.Int64("lead_id", id),
		zap.Int64("actor", actor),
	)
	return nil
}

// ============================================================
// Conversion: POST /leads/{id}/convert
// ============================================================

// ConvertLead moves an open lead to the terminal converted state. Only
// is_converted and the update audit fields change.
func (s *LeadService) ConvertLead(ctx context.Context, actor, id int64) (*domain.Lead, error) {
	ctx, span := leadTracer.Start(ctx, "LeadService.ConvertLead")
	defer span.End()
	span.SetAttributes(attribute.Int64("lead.id", id))

	lead, err := s.getActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead.IsConverted {
		return nil, &domain.ErrAlreadyConverted{LeadID: id}
	}

	converted, err := s.leads.MarkLeadConverted(ctx, id, actor)
	if err != nil {
		return nil, fmt.Errorf("convert lead: %w", err)
	}

	s.metrics.IncrLeadConversion()
	s.logger.Info("lead converted",
		zap.Int64("lead_id", id),
		zap.Int64("actor", actor),
	)
	return converted, nil
}

func (s *LeadService) getActive(ctx context.Context, id int64) (*domain.Lead, error) {
	lead, err := s.leads.GetLead(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}
	if lead == nil || !lead.IsActive {
		return nil, &domain.ErrNotFound{Resource: "Lead", ID: id}
	}
	return lead, nil
}

// Blank optional strings are stored as absent.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func normalizeOptionalEmail(s *string) *string {
	if s == nil {
		return nil
	}
	v := NormalizeEmail(*s)
	if v == "" {
		return nil
	}
	return &v
}
