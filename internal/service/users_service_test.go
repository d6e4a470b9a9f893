package service_test

import (
	"context"
	"testing"

	"github.com/boddenberg/crm-api-go/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserDelete_SelfAndOther(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := f.createUser(t, "Bia", "bia@example.com", roleSales)

	err := f.users.Delete(ctx, f.admin.ID, f.admin.ID)
	var self *domain.ErrSelfDeletion
	require.ErrorAs(t, err, &self)
	assert.Equal(t, "You cannot delete your own account", err.Error())

	require.NoError(t, f.users.Delete(ctx, f.admin.ID, other.ID))

	users, err := f.users.List(ctx)
	require.NoError(t, err)
	for _, u := range users {
		assert.NotEqual(t, other.ID, u.ID)
	}

	var nf *domain.ErrNotFound
	assert.ErrorAs(t, f.users.Delete(ctx, f.admin.ID, other.ID), &nf)
}

func TestUserCreate_DuplicateAndRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.Create(ctx, f.admin.ID, &domain.CreateUserRequest{
		Name: "Bia", Email: "Bia@Example.com", Password: "secret123", RoleID: roleSales,
	})
	require.NoError(t, err)
	assert.Equal(t, "bia@example.com", u.Email)
	require.NotNil(t, u.Role)
	assert.Equal(t, "Sales", u.Role.Name)
	require.NotNil(t, u.CreatedBy)
	assert.Equal(t, f.admin.ID, *u.CreatedBy)

	_, err = f.users.Create(ctx, f.admin.ID, &domain.CreateUserRequest{
		Name: "Bia", Email: "bia@example.com", Password: "secret123", RoleID: roleSales,
	})
	var conflict *domain.ErrConflict
	assert.ErrorAs(t, err, &conflict)

	_, err = f.users.Create(ctx, f.admin.ID, &domain.CreateUserRequest{
		Name: "Cid", Email: "cid@example.com", Password: "secret123", RoleID: 99,
	})
	var ref *domain.ErrInvalidReference
	assert.ErrorAs(t, err, &ref)
}

func TestUserUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bia := f.createUser(t, "Bia", "bia@example.com", roleSales)
	f.createUser(t, "Cid", "cid@example.com", roleUser)

	_, err := f.users.Update(ctx, f.admin.ID, bia.ID, &domain.UpdateUserRequest{Email: strPtr("cid@example.com")})
	var conflict *domain.ErrConflict
	require.ErrorAs(t, err, &conflict)

	updated, err := f.users.Update(ctx, f.admin.ID, bia.ID, &domain.UpdateUserRequest{
		Name: strPtr("Bianca"), RoleID: intPtr(roleManager), Password: strPtr("newsecret"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Bianca", updated.Name)
	assert.Equal(t, roleManager, updated.RoleID)

	_, err = f.auth.Login(ctx, &domain.LoginRequest{Email: "bia@example.com", Password: "newsecret"})
	assert.NoError(t, err)
}

func TestUserAssignableAndMe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	zed := f.createUser(t, "Zed", "zed@example.com", roleSales)
	f.createUser(t, "Ana", "ana@example.com", roleUser)

	assignable, err := f.users.ListAssignable(ctx)
	require.NoError(t, err)
	require.Len(t, assignable, 3)
	assert.Equal(t, "Ana", assignable[0].Name)
	assert.Equal(t, "User", assignable[0].Role.Name)
	assert.Equal(t, "Zed", assignable[2].Name)

	me, err := f.users.Me(ctx, &domain.Principal{ID: zed.ID})
	require.NoError(t, err)
	assert.Equal(t, "zed@example.com", me.Email)
}
