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

var userTracer = otel.Tracer("service/users")

// UserService manages user accounts.
type UserService struct {
	users     port.UserStore
	validator *Validator
	hasher    *PasswordHasher
	logger    *zap.Logger
}

// NewUserService creates a new user service.
func NewUserService(users port.UserStore, validator *Validator, hasher *PasswordHasher, logger *zap.Logger) *UserService {
	return &UserService{users: users, validator: validator, hasher: hasher, logger: logger}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	ctx, span := userTracer.Start(ctx, "UserService.List")
	defer span.End()

	return s.users.ListUsers(ctx)
}

func (s *UserService) ListAssignable(ctx context.Context) ([]domain.AssignableUser, error) {
	ctx, span := userTracer.Start(ctx, "UserService.ListAssignable")
	defer span.End()

	return s.users.ListAssignableUsers(ctx)
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	ctx, span := userTracer.Start(ctx, "UserService.Get")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", id))

	return s.getActive(ctx, id)
}

// Me returns the caller's own account.
func (s *UserService) Me(ctx context.Context, p *domain.Principal) (*domain.User, error) {
	ctx, span := userTracer.Start(ctx, "UserService.Me")
	defer span.End()

	return s.getActive(ctx, p.ID)
}

func (s *UserService) Create(ctx context.Context, actor int64, req *domain.CreateUserRequest) (*domain.User, error) {
	ctx, span := userTracer.Start(ctx, "UserService.Create")
	defer span.End()

	name, err := requireText("name", req.Name)
	if err != nil {
		return nil, err
	}
	email := NormalizeEmail(req.Email)

	role, err := s.validator.CheckRole(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		RoleID:       role.ID,
		Audit:        domain.Audit{CreatedBy: &actor, UpdatedBy: &actor},
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user created",
		zap.Int64("user_id", user.ID),
		zap.Int64("actor", actor),
	)
	return user, nil
}

func (s *UserService) Update(ctx context.Context, actor, id int64, req *domain.UpdateUserRequest) (*domain.User, error) {
	ctx, span := userTracer.Start(ctx, "UserService.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", id))

	if _, err := s.getActive(ctx, id); err != nil {
		return nil, err
	}

	name, err := optionalText("name", req.Name)
	if err != nil {
		return nil, err
	}
	patch := &domain.UserPatch{UpdatedBy: actor, Name: name}
	if req.Email != nil {
		email := NormalizeEmail(*req.Email)
		if err := s.ensureEmailFree(ctx, email, id); err != nil {
			return nil, err
		}
		patch.Email = &email
	}
	if req.RoleID != nil {
		if _, err := s.validator.CheckRole(ctx, *req.RoleID); err != nil {
			return nil, err
		}
		patch.RoleID = req.RoleID
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
	}

	user, err := s.users.UpdateUser(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("user updated",
		zap.Int64("user_id", id),
		zap.Int64("actor", actor),
	)
	return user, nil
}

// Delete deactivates a user. Callers cannot deactivate themselves.
func (s *UserService) Delete(ctx context.Context, actor, id int64) error {
	ctx, span := userTracer.Start(ctx, "UserService.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", id))

	if actor == id {
		return &domain.ErrSelfDeletion{}
	}
	if err := s.users.DeactivateUser(ctx, id, actor); err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}

	s.logger.Info("user deactivated",
		zap.Int64("user_id", id),
		zap.Int64("actor", actor),
	)
	return nil
}

func (s *UserService) getActive(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, &domain.ErrNotFound{Resource: "User", ID: id}
	}
	return user, nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string, excludeID int64) error {
	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil && existing.ID != excludeID {
		return userEmailTaken()
	}
	return nil
}
