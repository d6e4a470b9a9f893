package memory_test

import (
	"context"
	"testing"

	"github.com/boddenberg/crm-api-go/internal/domain"
	"github.com/boddenberg/crm-api-go/internal/infra/memory"
	"github.com/boddenberg/crm-api-go/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int64) *int64   { return &i }

func TestSeed_ReferenceOrdering(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	roles, err := s.ListRoles(ctx)
	require.NoError(t, err)
	var names []string
	for _, r := range roles {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Admin", "Manager", "Sales", "User"}, names)

	statuses, err := s.ListLookups(ctx, port.WorkStatuses)
	require.NoError(t, err)
	require.Len(t, statuses, 5)
	assert.Equal(t, "To Do", statuses[0].Name)
	assert.Equal(t, "Cancelled", statuses[4].Name)

	sources, err := s.ListLookups(ctx, port.Sources)
	require.NoError(t, err)
	assert.Equal(t, "COLD_CALL", sources[0].Name)
}

func TestLookups_InactiveHiddenFromListButReturnedByGet(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	s.SetLookupActive(port.LeadStatuses, 1, false)

	rows, err := s.ListLookups(ctx, port.LeadStatuses)
	require.NoError(t, err)
	assert.Len(t, rows, 5)

	row, err := s.GetLookup(ctx, port.LeadStatuses, 1)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.False(t, row.IsActive)

	missing, err := s.GetLookup(ctx, port.LeadStatuses, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLeadPhoneExists_MatchesDigitsAcrossFormats(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	_, err := s.CreateLead(ctx, &domain.Lead{Name: "Ana", Phone: strPtr("+1-555-0123"), StatusID: 1, SourceID: 1})
	require.NoError(t, err)

	found, err := s.LeadPhoneExists(ctx, "15550123", "15550123", 0)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = s.LeadPhoneExists(ctx, "+4915550999", "4915550999", 0)
	require.NoError(t, err)
	assert.False(t, found)

	bea, err := s.CreateLead(ctx, &domain.Lead{Name: "Bea", Phone: strPtr("+15550199"), StatusID: 1, SourceID: 1})
	require.NoError(t, err)

	found, err = s.LeadPhoneExists(ctx, "+15550199", "", 0)
	require.NoError(t, err)
	assert.True(t, found, "exact normalised match")

	found, err = s.LeadPhoneExists(ctx, "+15550199", "", bea.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLeadEmailExists_ExcludesSelfAndIncludesDeleted(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	lead, err := s.CreateLead(ctx, &domain.Lead{Name: "Ana", Email: strPtr("ana@example.com"), StatusID: 1, SourceID: 1})
	require.NoError(t, err)

	found, err := s.LeadEmailExists(ctx, "ana@example.com", lead.ID)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.DeactivateLead(ctx, lead.ID, 1))
	found, err = s.LeadEmailExists(ctx, "ana@example.com", 0)
	require.NoError(t, err)
	assert.True(t, found)

	_, err = s.CreateLead(ctx, &domain.Lead{Name: "Bia", Email: strPtr("ana@example.com"), StatusID: 1, SourceID: 1})
	var conflict *domain.ErrConflict
	assert.ErrorAs(t, err, &conflict)
}

func TestMarkLeadConverted_SoftDeletedIsNotFound(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	lead, err := s.CreateLead(ctx, &domain.Lead{Name: "Ana", StatusID: 1, SourceID: 1})
	require.NoError(t, err)

	converted, err := s.MarkLeadConverted(ctx, lead.ID, 7)
	require.NoError(t, err)
	assert.True(t, converted.IsConverted)
	require.NotNil(t, converted.UpdatedBy)
	assert.Equal(t, int64(7), *converted.UpdatedBy)

	require.NoError(t, s.DeactivateLead(ctx, lead.ID, 7))
	_, err = s.MarkLeadConverted(ctx, lead.ID, 7)
	var nf *domain.ErrNotFound
	assert.ErrorAs(t, err, &nf)
}

func TestListTasks_AssigneeFilterIncludesWorkItemAssignee(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	owner, err := s.CreateUser(ctx, &domain.User{Name: "Owner", Email: "owner@example.com", RoleID: 1})
	require.NoError(t, err)
	helper, err := s.CreateUser(ctx, &domain.User{Name: "Helper", Email: "helper@example.com", RoleID: 2})
	require.NoError(t, err)

	customer, err := s.CreateLead(ctx, &domain.Lead{Name: "Acme", StatusID: 1, SourceID: 1, IsConverted: true})
	require.NoError(t, err)
	wi, err := s.CreateWorkItem(ctx, &domain.WorkItem{Title: "Onboarding", CustomerID: customer.ID, StatusID: 1, AssignedTo: intPtr(owner.ID)})
	require.NoError(t, err)

	_, err = s.CreateTask(ctx, &domain.Task{Title: "Kickoff", WorkItemID: wi.ID, CustomerID: customer.ID, StatusID: 1})
	require.NoError(t, err)
	delegated, err := s.CreateTask(ctx, &domain.Task{Title: "Docs", WorkItemID: wi.ID, CustomerID: customer.ID, StatusID: 1, AssignedTo: intPtr(helper.ID)})
	require.NoError(t, err)

	byOwner, err := s.ListTasks(ctx, domain.TaskFilter{AssignedToIDs: []int64{owner.ID}})
	require.NoError(t, err)
	assert.Len(t, byOwner, 2)

	byHelper, err := s.ListTasks(ctx, domain.TaskFilter{AssignedToIDs: []int64{helper.ID}})
	require.NoError(t, err)
	require.Len(t, byHelper, 1)
	assert.Equal(t, delegated.ID, byHelper[0].ID)

	wis, err := s.ListWorkItems(ctx, domain.WorkItemFilter{AssignedToIDs: []int64{helper.ID}})
	require.NoError(t, err)
	assert.Empty(t, wis)

}

func TestListLeads_NewestFirstAndActiveOnly(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	first, err := s.CreateLead(ctx, &domain.Lead{Name: "First", StatusID: 1, SourceID: 1})
	require.NoError(t, err)
	second, err := s.CreateLead(ctx, &domain.Lead{Name: "Second", StatusID: 2, SourceID: 1})
	require.NoError(t, err)
	third, err := s.CreateLead(ctx, &domain.Lead{Name: "Third", StatusID: 2, SourceID: 1})
	require.NoError(t, err)
	require.NoError(t, s.DeactivateLead(ctx, third.ID, 1))

	leads, err := s.ListLeads(ctx, domain.LeadFilter{})
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, second.ID, leads[0].ID)
	assert.Equal(t, first.ID, leads[1].ID)
	require.NotNil(t, leads[0].Status)
	assert.Equal(t, "CONTACTED", leads[0].Status.Name)

	byStatus, err := s.ListLeads(ctx, domain.LeadFilter{StatusID: intPtr(2)})
	require.NoError(t, err)
	assert.Len(t, byStatus, 1)
}
