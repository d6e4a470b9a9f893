package postgres

import (
	"context"
	"fmt"

	"github.com/boddenberg/crm-api-go/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var leadSelect = `
	SELECT l.id, l.name, l.email, l.phone, l.status_id, l.source_id, l.assigned_to, l.notes,
		l.is_converted, l.is_active,
		` + lookupJSON("ls") + `,
		` + lookupJSON("src") + `,
		` + userRefJSON("au") + `,
		` + auditColumns("l") + `
	FROM leads l
	LEFT JOIN lead_statuses ls ON ls.id = l.status_id
	LEFT JOIN sources src ON src.id = l.source_id
	LEFT JOIN users au ON au.id = l.assigned_to
	` + auditJoins("l")

func scanLead(row pgx.Row) (domain.Lead, error) {
	var l domain.Lead
	dest := append([]any{
		&l.ID, &l.Name, &l.Email, &l.Phone, &l.StatusID, &l.SourceID, &l.AssignedTo, &l.Notes,
		&l.IsConverted, &l.IsActive, &l.Status, &l.Source, &l.AssignedUser,
	}, auditDest(&l.Audit)...)
	err := row.Scan(dest...)
	return l, err
}

// ListLeads returns active leads, newest first.
func (s *Store) ListLeads(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListLeads")
	defer span.End()

	c := &conditions{}
	c.add("l.is_active")
	if filter.IsConverted != nil {
		c.add("l.is_converted = %s", *filter.IsConverted)
	}
	if filter.StatusID != nil {
		c.add("l.status_id = %s", *filter.StatusID)
	}
	return getMany(ctx, s, scanLead, leadSelect+c.where()+` ORDER BY l.created_at DESC, l.id DESC`, c.args...)
}

// GetLead returns the lead with id, active or not.
func (s *Store) GetLead(ctx context.Context, id int64) (*domain.Lead, error) {
	ctx, span := tracer.Start(ctx, "Postgres.GetLead")
	defer span.End()

	return getOne(ctx, s, scanLead, leadSelect+` WHERE l.id = $1`, id)
}

// LeadEmailExists considers every lead, soft-deleted included.
func (s *Store) LeadEmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	ctx, span := tracer.Start(ctx, "Postgres.LeadEmailExists")
	defer span.End()

	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM leads
			WHERE email IS NOT NULL AND lower(email) = $1 AND id <> $2
		)`, email, excludeID).Scan(&exists)
	return exists, err
}

// LeadPhoneExists considers every lead, soft-deleted included.
func (s *Store) LeadPhoneExists(ctx context.Context, normalized, digits string, excludeID int64) (bool, error) {
	ctx, span := tracer.Start(ctx, "Postgres.LeadPhoneExists")
	defer span.End()

	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM leads
			WHERE phone IS NOT NULL AND id <> $3
			  AND (phone = $1
			       OR ($2::text <> '' AND strpos(regexp_replace(phone, '[^0-9]', '', 'g'), $2::text) > 0))
		)`, normalized, digits, excludeID).Scan(&exists)
	return exists, err
}

// CreateLead inserts l. The email must already be normalised.
func (s *Store) CreateLead(ctx context.Context, l *domain.Lead) (*domain.Lead, error) {
	ctx, span := tracer.Start(ctx, "Postgres.CreateLead")
	defer span.End()

	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO leads (name, email, phone, status_id, source_id, assigned_to, notes,
			is_converted, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id`,
		l.Name, l.Email, l.Phone, l.StatusID, l.SourceID, l.AssignedTo, l.Notes,
		l.IsConverted, l.CreatedBy,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert lead: %w", mapError(err))
	}

	s.logger.Debug("postgres: lead inserted", zap.Int64("lead_id", id))
	return s.GetLead(ctx, id)
}

// UpdateLead applies the supplied fields to an active lead.
func (s *Store) UpdateLead(ctx context.Context, id int64, req *domain.UpdateLeadRequest, actor int64) (*domain.Lead, error) {
	ctx, span := tracer.Start(ctx, "Postgres.UpdateLead")
	defer span.End()

	a := newAssignments(id, actor)
	if req.Name != nil {
		a.set("name", *req.Name)
	}
	if req.Email != nil {
		a.set("email", *req.Email)
	}
	if req.Phone != nil {
		a.set("phone", *req.Phone)
	}
	if req.StatusID != nil {
		a.set("status_id", *req.StatusID)
	}
	if req.SourceID != nil {
		a.set("source_id", *req.SourceID)
	}
	if req.AssignedTo != nil {
		a.set("assigned_to", *req.AssignedTo)
	}
	if req.Notes != nil {
		a.set("notes", *req.Notes)
	}
	a.set("updated_at", s.now())

	err := s.execOnActive(ctx, &domain.ErrNotFound{Resource: "Lead", ID: id},
		`UPDATE leads SET updated_by = $2, `+a.list()+` WHERE id = $1 AND is_active`, a.args...)
	if err != nil {
		return nil, fmt.Errorf("update lead: %w", err)
	}
	return s.GetLead(ctx, id)
}

// MarkLeadConverted flips is_converted to true on an active lead.
func (s *Store) MarkLeadConverted(ctx context.Context, id, actor int64) (*domain.Lead, error) {
	ctx, span := tracer.Start(ctx, "Postgres.MarkLeadConverted")
	defer span.End()

	err := s.execOnActive(ctx, &domain.ErrNotFound{Resource: "Lead", ID: id}, `
		UPDATE leads SET is_converted = TRUE, updated_by = $2, updated_at = $3
		WHERE id = $1 AND is_active`, id, actor, s.now())
	if err != nil {
		return nil, fmt.Errorf("convert lead: %w", err)
	}
	return s.GetLead(ctx, id)
}

// DeactivateLead soft-deletes an active lead.
func (s *Store) DeactivateLead(ctx context.Context, id, actor int64) error {
	ctx, span := tracer.Start(ctx, "Postgres.DeactivateLead")
	defer span.End()

	return s.deactivate(ctx, "leads", &domain.ErrNotFound{Resource: "Lead", ID: id}, id, actor)
}
