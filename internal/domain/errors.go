package domain

import (
	"fmt"
	"strings"
)

// Error types for consistent error handling across the API.
// Each one maps to exactly one HTTP status at the handler boundary.

// ErrNotFound indicates a resource was not found (or is soft-deleted).
type ErrNotFound struct {
	Resource string
	ID       int64
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrInvalidReference indicates a foreign key that is missing, inactive or
// otherwise unusable for the write.
type ErrInvalidReference struct {
	Field   string
	Message string
}

func (e *ErrInvalidReference) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Invalid %s", e.Field)
}

// ErrInvariantViolation indicates a cross-field business rule was broken.
type ErrInvariantViolation struct {
	Message string
}

func (e *ErrInvariantViolation) Error() string {
	return e.Message
}

// ErrConflict indicates a uniqueness conflict (duplicate email, phone, ...).
type ErrConflict struct {
	Fields   []string
	Messages []string
}

func (e *ErrConflict) Error() string {
	return strings.Join(e.Messages, "; ")
}

// ErrAlreadyConverted indicates a lead conversion was attempted twice.
type ErrAlreadyConverted struct {
	LeadID int64
}

func (e *ErrAlreadyConverted) Error() string {
	return "Lead is already converted"
}

// ErrSelfDeletion indicates a user tried to deactivate its own account.
type ErrSelfDeletion struct{}

func (e *ErrSelfDeletion) Error() string {
	return "You cannot delete your own account"
}

// Authentication failure reasons.
const (
	ReasonMissingToken       = "missing_token"
	ReasonInvalidToken       = "invalid_token"
	ReasonTokenExpired       = "token_expired"
	ReasonUserNotFound       = "user_not_found"
	ReasonInvalidCredentials = "invalid_credentials"
)

// ErrUnauthorized indicates missing or invalid credentials or token.
type ErrUnauthorized struct {
	Reason  string
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// Authorization failure reasons.
const (
	ReasonRoleInactive = "role_inactive"
	ReasonRoleMismatch = "role_mismatch"
)

// ErrForbidden indicates the caller lacks permission for the operation.
type ErrForbidden struct {
	Reason  string
	Message string
}

func (e *ErrForbidden) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "forbidden"
}
