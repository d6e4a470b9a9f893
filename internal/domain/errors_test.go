package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/boddenberg/crm-api-go/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestErrConflict_JoinsMessages(t *testing.T) {
	err := &domain.ErrConflict{
		Fields:   []string{"email", "phone"},
		Messages: []string{`Email "a@x.com" is already associated with another lead`, `Phone number "555" is already associated with another lead`},
	}
	assert.Equal(t, `Email "a@x.com" is already associated with another lead; Phone number "555" is already associated with another lead`, err.Error())
}

func TestErrorsAs_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("create task: %w", &domain.ErrInvariantViolation{Message: "mismatch"})

	var inv *domain.ErrInvariantViolation
	assert.True(t, errors.As(wrapped, &inv))
	assert.Equal(t, "mismatch", inv.Message)
}

func TestErrValidation_Message(t *testing.T) {
	assert.Equal(t, "validation error on 'email': is required", (&domain.ErrValidation{Field: "email", Message: "is required"}).Error())
	assert.Equal(t, "bad body", (&domain.ErrValidation{Message: "bad body"}).Error())
}
