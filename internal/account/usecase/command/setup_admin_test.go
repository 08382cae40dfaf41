package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolkit/edupay/internal/account/domain"
)

func setupAdminFixture() (*fakeUserRepo, *fakeRoleRepo, *fakeSchoolRepo, *SetupAdminHandler) {
	users := newFakeUserRepo()
	roles := newFakeRoleRepo()
	schools := newFakeSchoolRepo()
	return users, roles, schools, NewSetupAdminHandler(users, roles, schools)
}

func TestSetupAdminUnknownEmail(t *testing.T) {
	_, _, _, handler := setupAdminFixture()

	_, err := handler.Handle(context.Background(), SetupAdminCommand{Email: "ghost@example.com"})

	assert.ErrorIs(t, err, domain.ErrNotFound, "the user must register before bootstrap")
}

func TestSetupAdminDefaultsToSuperAdmin(t *testing.T) {
	users, roles, _, handler := setupAdminFixture()
	user := &domain.User{Username: "founder", Email: "founder@example.com"}
	_ = users.Create(user)

	result, err := handler.Handle(context.Background(), SetupAdminCommand{Email: "Founder@Example.com"})
	require.NoError(t, err)

	assert.Equal(t, user.ID, result.UserID)
	assert.Equal(t, domain.RoleSuperAdmin, result.Role)
	assert.Nil(t, result.SchoolID, "super_admin bootstrap creates no school")

	granted, _ := roles.RolesOf(user.ID)
	assert.True(t, granted.Has(domain.RoleSuperAdmin))
}

func TestSetupAdminInvalidRole(t *testing.T) {
	users, _, _, handler := setupAdminFixture()
	_ = users.Create(&domain.User{Username: "founder", Email: "founder@example.com"})

	_, err := handler.Handle(context.Background(), SetupAdminCommand{
		Email: "founder@example.com",
		Role:  domain.RoleTeacher,
	})

	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

func TestSetupAdminIdempotentGrant(t *testing.T) {
	users, roles, _, handler := setupAdminFixture()
	user := &domain.User{Username: "founder", Email: "founder@example.com"}
	_ = users.Create(user)

	_, err := handler.Handle(context.Background(), SetupAdminCommand{Email: "founder@example.com"})
	require.NoError(t, err)
	_, err = handler.Handle(context.Background(), SetupAdminCommand{Email: "founder@example.com"})
	require.NoError(t, err)

	assert.Equal(t, 1, roles.grantCalls, "a repeated bootstrap must not grant twice")
	granted, _ := roles.RolesOf(user.ID)
	assert.Equal(t, domain.RoleSet{domain.RoleSuperAdmin}, granted)
}

func TestSetupAdminSchoolAdminCreatesSchool(t *testing.T) {
	users, _, schools, handler := setupAdminFixture()
	user := &domain.User{Username: "head", Email: "head@example.com"}
	_ = users.Create(user)

	result, err := handler.Handle(context.Background(), SetupAdminCommand{
		Email:      "head@example.com",
		Role:       domain.RoleSchoolAdmin,
		SchoolName: "Dhaka Model School",
		SchoolCode: "DMS01",
	})
	require.NoError(t, err)

	require.NotNil(t, result.SchoolID)
	school, err := schools.FindByID(*result.SchoolID)
	require.NoError(t, err)
	assert.Equal(t, "Dhaka Model School", school.Name)
	assert.Equal(t, "DMS01", school.Code)
	assert.Equal(t, user.ID, school.CreatedBy)

	require.Len(t, schools.links, 1)
	assert.True(t, schools.links[0].IsAdmin)
	assert.Equal(t, user.ID, schools.links[0].UserID)
}

func TestSetupAdminSchoolAdminRequiresNameAndCode(t *testing.T) {
	users, _, schools, handler := setupAdminFixture()
	_ = users.Create(&domain.User{Username: "head", Email: "head@example.com"})

	_, err := handler.Handle(context.Background(), SetupAdminCommand{
		Email: "head@example.com",
		Role:  domain.RoleSchoolAdmin,
	})

	assert.Error(t, err)
	assert.Empty(t, schools.schools, "no school row without a supplied name and code")
}

func TestSetupAdminRepeatedSchoolAdminCreatesAnotherSchool(t *testing.T) {
	// School creation is deliberately not idempotent; each bootstrap call adds
	// a row even when the code repeats.
	users, _, schools, handler := setupAdminFixture()
	_ = users.Create(&domain.User{Username: "head", Email: "head@example.com"})

	cmd := SetupAdminCommand{
		Email:      "head@example.com",
		Role:       domain.RoleSchoolAdmin,
		SchoolName: "Dhaka Model School",
		SchoolCode: "DMS01",
	}
	_, err := handler.Handle(context.Background(), cmd)
	require.NoError(t, err)
	_, err = handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.Len(t, schools.schools, 2)
}

func TestSetupAdminByUserID(t *testing.T) {
	users, roles, _, handler := setupAdminFixture()
	user := &domain.User{Username: "founder", Email: "founder@example.com"}
	_ = users.Create(user)

	result, err := handler.Handle(context.Background(), SetupAdminCommand{
		UserID: user.ID,
		Role:   domain.RoleSuperAdmin,
	})
	require.NoError(t, err)

	assert.Equal(t, user.ID, result.UserID)
	granted, _ := roles.RolesOf(user.ID)
	assert.True(t, granted.Has(domain.RoleSuperAdmin))
}

func TestSetupAdminUnknownUserID(t *testing.T) {
	_, _, _, handler := setupAdminFixture()

	_, err := handler.Handle(context.Background(), SetupAdminCommand{UserID: 404})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
