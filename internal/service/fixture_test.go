package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/infra/memory"
	"github.com/boddenberg/crm-api-go/internal/infra/observability"
	"github.com/boddenberg/crm-api-go/internal/service"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Seeded reference ids in the memory store.
const (
	roleAdmin   int64 = 1
	roleUser    int64 = 2
	roleSales   int64 = 3
	roleManager int64 = 4

	leadStatusNew int64 = 1
	sourceWebsite int64 = 1
	workToDo      int64 = 1
	workClosed    int64 = 4
)

type fixture struct {
	store     *memory.Store
	metrics   *observability.Metrics
	hasher    *service.PasswordHasher
	tokens    *service.TokenIssuer
	auth      *service.AuthService
	users     *service.UserService
	leads     *service.LeadService
	workItems *service.WorkItemService
	tasks     *service.TaskService
	comms     *service.CommunicationService
	lookups   *service.LookupService
	admin     *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	hasher := service.NewPasswordHasher(bcrypt.MinCost)
	tokens := service.NewTokenIssuer("test-secret", time.Hour, "crm-test")
	validator := service.NewValidator(store, metrics)

	f := &fixture{
		store:     store,
		metrics:   metrics,
		hasher:    hasher,
		tokens:    tokens,
		auth:      service.NewAuthService(store, store, hasher, tokens, "admin@system.com", logger),
		users:     service.NewUserService(store, validator, hasher, logger),
		leads:     service.NewLeadService(store, validator, metrics, logger),
		workItems: service.NewWorkItemService(store, validator, logger),
		tasks:     service.NewTaskService(store, validator, logger),
		comms:     service.NewCommunicationService(store, validator, logger),
		lookups:   service.NewLookupService(store, store),
	}
	f.admin = f.createUser(t, "System Admin", "admin@system.com", roleAdmin)
	return f
}

func (f *fixture) createUser(t *testing.T, name, email string, roleID int64) *domain.User {
	t.Helper()

	hash, err := f.hasher.Hash("secret123")
	require.NoError(t, err)
	u, err := f.store.CreateUser(context.Background(), &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		RoleID:       roleID,
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) lead(t *testing.T, name string) *domain.Lead {
	t.Helper()

	l, err := f.leads.Create(context.Background(), f.admin.ID, &domain.CreateLeadRequest{
		Name:     name,
		StatusID: leadStatusNew,
		SourceID: sourceWebsite,
	})
	require.NoError(t, err)
	return l
}

func (f *fixture) customer(t *testing.T, name string) *domain.Lead {
	t.Helper()

	l := f.lead(t, name)
	converted, err := f.leads.ConvertLead(context.Background(), f.admin.ID, l.ID)
	require.NoError(t, err)
	return converted
}

func (f *fixture) workItem(t *testing.T, customerID int64) *domain.WorkItem {
	t.Helper()

	wi, err := f.workItems.Create(context.Background(), f.admin.ID, &domain.CreateWorkItemRequest{
		Title:      "Onboarding",
		CustomerID: customerID,
		StatusID:   workToDo,
	})
	require.NoError(t, err)
	return wi
}

func strPtr(s string) *string { return &s }
func intPtr(i int64) *int64   { return &i }
