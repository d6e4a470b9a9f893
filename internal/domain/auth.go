package domain

// ============================================================
// Auth: Request / Response types
// ============================================================

// SignupRequest is the body for POST /auth/signup.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	RoleID   int64  `json:"role_id" validate:"required,gt=0"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthUser is the user shape returned by signup and login.
type AuthUser struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Role  RoleRef `json:"role"`
}

// AuthResult is the response for a successful signup or login.
type AuthResult struct {
	User  AuthUser `json:"user"`
	Token string   `json:"token"`
}

// TokenClaims is the identity carried inside an access token.
type TokenClaims struct {
	UserID int64
	Email  string
	Role   string
}

// ============================================================
// Users
// ============================================================

// CreateUserRequest is the body for POST /users.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	RoleID   int64  `json:"role_id" validate:"required,gt=0"`
}

// UpdateUserRequest is the body for PUT /users/{id}. Absent fields are left
// unchanged.
type UpdateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,notblank,max=255"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	Password *string `json:"password" validate:"omitempty,min=6,max=72"`
	RoleID   *int64  `json:"role_id" validate:"omitempty,gt=0"`
}

// UserPatch is the storage-level change set for a user.
type UserPatch struct {
	Name         *string
	Email        *string
	PasswordHash *string
	RoleID       *int64
	UpdatedBy    int64
}
