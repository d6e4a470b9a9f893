package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/infra/memory"
	"github.com/boddenberg/crm-api-go/internal/infra/resilience"
	"github.com/boddenberg/crm-api-go/internal/port"
	"github.com/boddenberg/crm-api-go/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLookups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	roles, err := f.lookups.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 4)

	f.store.SetRoleActive(roleUser, false)
	var nf *domain.ErrNotFound
	_, err = f.lookups.GetRole(ctx, roleUser)
	assert.ErrorAs(t, err, &nf)

	statuses, err := f.lookups.List(ctx, port.WorkStatuses)
	require.NoError(t, err)
	require.Len(t, statuses, 5)
	assert.Equal(t, "To Do", statuses[0].Name)

	source, err := f.lookups.Get(ctx, port.Sources, sourceWebsite)
	require.NoError(t, err)
	assert.Equal(t, "WEBSITE", source.Name)

	_, err = f.lookups.Get(ctx, port.LeadStatuses, 99)
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Lead status not found", err.Error())
}

func TestLookupListsReflectDeactivation(t *testing.T) {
	store := memory.New()
	lookups := service.NewLookupService(store, store)
	ctx := context.Background()

	sources, err := lookups.List(ctx, port.Sources)
	require.NoError(t, err)
	require.Len(t, sources, 6)

	store.SetLookupActive(port.Sources, sourceWebsite, false)

	sources, err = lookups.List(ctx, port.Sources)
	require.NoError(t, err)
	assert.Len(t, sources, 5)
	for _, s := range sources {
		assert.NotEqual(t, "WEBSITE", s.Name)
	}
}

// --- Mocks ---

type mockChecker struct {
	err error
}

func (m *mockChecker) Ping(_ context.Context) error {
	return m.err
}

func TestHealth(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	healthy := service.NewHealthService(&mockChecker{}, resilience.NewCircuitBreaker("db", logger), "test", "1.0.0", logger)
	status, ok := healthy.Check(ctx)
	assert.True(t, ok)
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "connected", status.Database.Status)
	assert.Equal(t, "test", status.Environment)

	probe, ok := healthy.Ready(ctx)
	assert.True(t, ok)
	assert.Equal(t, "ready", probe.Status)

	down := service.NewHealthService(&mockChecker{err: errors.New("connection refused")}, resilience.NewCircuitBreaker("db", logger), "test", "1.0.0", logger)
	status, ok = down.Check(ctx)
	assert.False(t, ok)
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "disconnected", status.Database.Status)

	probe, ok = down.Ready(ctx)
	assert.False(t, ok)
	assert.Equal(t, "not ready", probe.Status)

	assert.Equal(t, "alive", down.Live().Status)
}
