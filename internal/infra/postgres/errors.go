package postgres

import (
	"errors"
	"strings"

	"github.com/boddenberg/crm-api-go/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the stores translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// mapError turns constraint violations into domain errors. Other errors are
// returned unchanged.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		switch pgErr.ConstraintName {
		case "users_email_lower_idx":
			return &domain.ErrConflict{
				Fields:   []string{"email"},
				Messages: []string{"User with this email already exists"},
			}
		case "leads_email_lower_idx":
			return &domain.ErrConflict{
				Fields:   []string{"email"},
				Messages: []string{"Email is already associated with another lead"},
			}
		}
		return &domain.ErrConflict{Fields: []string{pgErr.ConstraintName}, Messages: []string{"Resource already exists"}}
	case codeForeignKeyViolation:
		return referenceError(pgErr.TableName, pgErr.ConstraintName)
	case codeCheckViolation:
		if pgErr.ConstraintName == "leads_conversion_one_way" {
			return &domain.ErrInvariantViolation{Message: "A converted lead cannot be reverted"}
		}
	}
	return err
}

// referenceError derives the offending column from the default
// "<table>_<column>_fkey" constraint name.
func referenceError(table, constraint string) error {
	field := strings.TrimSuffix(strings.TrimPrefix(constraint, table+"_"), "_fkey")
	switch field {
	case "role_id":
		return &domain.ErrInvalidReference{Field: field, Message: "Invalid or inactive role"}
	case "assigned_to":
		return &domain.ErrInvalidReference{Field: field, Message: "Invalid assigned_to user id"}
	}
	return &domain.ErrInvalidReference{Field: field}
}
