// Package service: AuthService handles signup, login and the resolution of
// bearer tokens into principals for the access-control middleware.
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

var authTracer = otel.Tracer("service/auth")

// AuthService orchestrates authentication flows.
type AuthService struct {
	users       port.UserStore
	roles       port.RoleStore
	hasher      *PasswordHasher
	tokens      *TokenIssuer
	systemEmail string
	logger      *zap.Logger
}

// NewAuthService creates a new auth service. systemEmail names the account
// recorded as creator of self-registered users.
func NewAuthService(users port.UserStore, roles port.RoleStore, hasher *PasswordHasher, tokens *TokenIssuer, systemEmail string, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:       users,
		roles:       roles,
		hasher:      hasher,
		tokens:      tokens,
		systemEmail: systemEmail,
		logger:      logger,
	}
}

// ============================================================
// Signup: POST /auth/signup
// ============================================================

func (s *AuthService) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.AuthResult, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Signup")
	defer span.End()

	name, err := requireText("name", req.Name)
	if err != nil {
		return nil, err
	}
	email := NormalizeEmail(req.Email)

	role, err := activeRole(ctx, s.roles, req.RoleID)
	if err != nil {
		return nil, err
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if existing != nil {
		return nil, userEmailTaken()
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	var systemID *int64
	if system, err := s.users.GetUserByEmail(ctx, s.systemEmail); err != nil {
		return nil, fmt.Errorf("get system user: %w", err)
	} else if system != nil {
		systemID = &system.ID
	}

	user, err := s.users.CreateUser(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		RoleID:       role.ID,
		Audit:        domain.Audit{CreatedBy: systemID, UpdatedBy: systemID},
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(domain.TokenClaims{UserID: user.ID, Email: user.Email, Role: role.Name})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed up",
		zap.Int64("user_id", user.ID),
		zap.String("role", role.Name),
	)

	return &domain.AuthResult{User: authUser(user, role), Token: token}, nil
}

// ============================================================
// Login: POST /auth/login
// ============================================================

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResult, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()

	email := NormalizeEmail(req.Email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	// Unknown, deactivated and wrong-password all look the same to the caller.
	if user == nil || !user.IsActive || !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.logger.Warn("login: invalid credentials", zap.String("email", email))
		return nil, &domain.ErrUnauthorized{Reason: domain.ReasonInvalidCredentials, Message: "Invalid email or password"}
	}

	role, err := s.roles.GetRole(ctx, user.RoleID)
	if err != nil {
		return nil, fmt.Errorf("get role: %w", err)
	}
	if role == nil || !role.IsActive {
		return nil, &domain.ErrForbidden{Reason: domain.ReasonRoleInactive, Message: "User role is not active"}
	}

	token, err := s.tokens.Issue(domain.TokenClaims{UserID: user.ID, Email: user.Email, Role: role.Name})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("user.id", user.ID))
	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))

	return &domain.AuthResult{User: authUser(user, role), Token: token}, nil
}

// ============================================================
// Authenticate (used by middleware)
// ============================================================

// Authenticate decodes the token and re-resolves its subject against storage,
// so deactivated users and roles lose access before the token expires.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Authenticate")
	defer span.End()

	if token == "" {
		return nil, &domain.ErrUnauthorized{Reason: domain.ReasonMissingToken, Message: "Access token is required"}
	}

	claims, err := s.tokens.Decode(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve token user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, &domain.ErrUnauthorized{Reason: domain.ReasonUserNotFound, Message: "User not found"}
	}

	role, err := s.roles.GetRole(ctx, user.RoleID)
	if err != nil {
		return nil, fmt.Errorf("resolve token role: %w", err)
	}
	if role == nil || !role.IsActive {
		return nil, &domain.ErrForbidden{Reason: domain.ReasonRoleInactive, Message: "User role is not active"}
	}

	span.SetAttributes(attribute.Int64("user.id", user.ID))
	return &domain.Principal{ID: user.ID, Email: user.Email, Role: role.Name, Name: user.Name}, nil
}

// Authorize fails with ErrForbidden unless the principal holds one of roles.
func Authorize(p *domain.Principal, roles ...string) error {
	if p == nil {
		return &domain.ErrUnauthorized{Reason: domain.ReasonMissingToken, Message: "Access token is required"}
	}
	for _, r := range roles {
		if strings.EqualFold(p.Role, r) {
			return nil
		}
	}
	return &domain.ErrForbidden{
		Reason:  domain.ReasonRoleMismatch,
		Message: "Access denied. Required role(s): " + strings.Join(roles, ", "),
	}
}

func authUser(u *domain.User, r *domain.Role) domain.AuthUser {
	return domain.AuthUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  domain.RoleRef{ID: r.ID, Name: r.Name},
	}
}

func userEmailTaken() *domain.ErrConflict {
	return &domain.ErrConflict{
		Fields:   []string{"email"},
		Messages: []string{"User with this email already exists"},
	}
}
