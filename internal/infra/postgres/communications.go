package postgres

import (
	"context"
	"fmt"

	"github.com/boddenberg/crm-api-go/internal/domain"

	"github.com/jackc/pgx/v5"
)

var communicationSelect = `
	SELECT c.id, c.lead_id, c.message, c.is_active,
		` + auditColumns("c") + `
	FROM communications c
	` + auditJoins("c")

func scanCommunication(row pgx.Row) (domain.Communication, error) {
	var c domain.Communication
	dest := append([]any{&c.ID, &c.LeadID, &c.Message, &c.IsActive}, auditDest(&c.Audit)...)
	err := row.Scan(dest...)
	return c, err
}

// ListCommunications returns active communications matching every non-empty
// filter, newest first.
func (s *Store) ListCommunications(ctx context.Context, filter domain.CommunicationFilter) ([]domain.Communication, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListCommunications")
	defer span.End()

	c := &conditions{}
	c.add("c.is_active")
	c.anyOf("c.lead_id", filter.LeadIDs)
	c.anyOf("c.created_by", filter.CreatedByIDs)
	return getMany(ctx, s, scanCommunication, communicationSelect+c.where()+` ORDER BY c.created_at DESC, c.id DESC`, c.args...)
}

// GetCommunication returns the communication with id, active or not.
func (s *Store) GetCommunication(ctx context.Context, id int64) (*domain.Communication, error) {
	ctx, span := tracer.Start(ctx, "Postgres.GetCommunication")
	defer span.End()

	return getOne(ctx, s, scanCommunication, communicationSelect+` WHERE c.id = $1`, id)
}

// CreateCommunication inserts c.
func (s *Store) CreateCommunication(ctx context.Context, c *domain.Communication) (*domain.Communication, error) {
	ctx, span := tracer.Start(ctx, "Postgres.CreateCommunication")
	defer span.End()

	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO communications (lead_id, message, created_by, updated_by)
		VALUES ($1, $2, $3, $3)
		RETURNING id`,
		c.LeadID, c.Message, c.CreatedBy,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert communication: %w", mapError(err))
	}
	return s.GetCommunication(ctx, id)
}

// UpdateCommunicationMessage replaces the message of an active communication.
func (s *Store) UpdateCommunicationMessage(ctx context.Context, id int64, message string, actor int64) (*domain.Communication, error) {
	ctx, span := tracer.Start(ctx, "Postgres.UpdateCommunicationMessage")
	defer span.End()

	err := s.execOnActive(ctx, &domain.ErrNotFound{Resource: "Communication", ID: id}, `
		UPDATE communications SET message = $3, updated_by = $2, updated_at = $4
		WHERE id = $1 AND is_active`, id, actor, message, s.now())
	if err != nil {
		return nil, fmt.Errorf("update communication: %w", err)
	}
	return s.GetCommunication(ctx, id)
}

// DeactivateCommunication soft-deletes an active communication.
func (s *Store) DeactivateCommunication(ctx context.Context, id, actor int64) error {
	ctx, span := tracer.Start(ctx, "Postgres.DeactivateCommunication")
	defer span.End()

	return s.deactivate(ctx, "communications", &domain.ErrNotFound{Resource: "Communication", ID: id}, id, actor)
}
