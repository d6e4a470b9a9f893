package postgres

import (
	"context"
	"fmt"

	"github.com/boddenberg/crm-api-go/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var userSelect = `
	SELECT u.id, u.name, u.email, u.password_hash, u.role_id, u.is_active,
		json_build_object('id', r.id, 'name', r.name),
		` + auditColumns("u") + `
	FROM users u
	JOIN roles r ON r.id = u.role_id
	` + auditJoins("u")

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	dest := append([]any{&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.RoleID, &u.IsActive, &u.Role}, auditDest(&u.Audit)...)
	err := row.Scan(dest...)
	return u, err
}

// ListUsers returns active users, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListUsers")
	defer span.End()

	return getMany(ctx, s, scanUser, userSelect+` WHERE u.is_active ORDER BY u.created_at DESC, u.id DESC`)
}

// ListAssignableUsers returns active users ordered by name.
func (s *Store) ListAssignableUsers(ctx context.Context) ([]domain.AssignableUser, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListAssignableUsers")
	defer span.End()

	return getMany(ctx, s, func(row pgx.Row) (domain.AssignableUser, error) {
		var u domain.AssignableUser
		err := row.Scan(&u.ID, &u.Name, &u.Role.ID, &u.Role.Name)
		return u, err
	}, `
		SELECT u.id, u.name, r.id, r.name
		FROM users u JOIN roles r ON r.id = u.role_id
		WHERE u.is_active
		ORDER BY u.name, u.id`)
}

// GetUser returns the user with id, active or not.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Postgres.GetUser")
	defer span.End()

	return getOne(ctx, s, scanUser, userSelect+` WHERE u.id = $1`, id)
}

// GetUserByEmail matches the email case-insensitively.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Postgres.GetUserByEmail")
	defer span.End()

	return getOne(ctx, s, scanUser, userSelect+` WHERE lower(u.email) = lower(btrim($1))`, email)
}

// CreateUser inserts u.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Postgres.CreateUser")
	defer span.End()

	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role_id, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id`,
		u.Name, u.Email, u.PasswordHash, u.RoleID, u.CreatedBy,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", mapError(err))
	}

	s.logger.Debug("postgres: user inserted", zap.Int64("user_id", id))
	return s.GetUser(ctx, id)
}

// UpdateUser applies patch to an active user.
func (s *Store) UpdateUser(ctx context.Context, id int64, patch *domain.UserPatch) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "Postgres.UpdateUser")
	defer span.End()

	a := newAssignments(id, patch.UpdatedBy)
	if patch.Name != nil {
		a.set("name", *patch.Name)
	}
	if patch.Email != nil {
		a.set("email", *patch.Email)
	}
	if patch.PasswordHash != nil {
		a.set("password_hash", *patch.PasswordHash)
	}
	if patch.RoleID != nil {
		a.set("role_id", *patch.RoleID)
	}
	a.set("updated_at", s.now())

	err := s.execOnActive(ctx, &domain.ErrNotFound{Resource: "User", ID: id},
		`UPDATE users SET updated_by = $2, `+a.list()+` WHERE id = $1 AND is_active`, a.args...)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetUser(ctx, id)
}

// DeactivateUser soft-deletes an active user.
func (s *Store) DeactivateUser(ctx context.Context, id, actor int64) error {
	ctx, span := tracer.Start(ctx, "Postgres.DeactivateUser")
	defer span.End()

	return s.deactivate(ctx, "users", &domain.ErrNotFound{Resource: "User", ID: id}, id, actor)
}
