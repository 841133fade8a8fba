package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nivash/building-service/internal/dtos"
	"github.com/nivash/building-service/internal/models"
	"github.com/nivash/building-service/internal/utils"
)

func TestUserRegister_FirstSignInStartsAsUser(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	profile, err := svc.Register(context.Background(), dtos.RegisterUserRequest{
		Email: testTenantEmail, Name: testTenantName,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, profile.Role)
	assert.Equal(t, testTenantEmail, profile.Email)
}

func TestUserRegister_RefreshKeepsRole(t *testing.T) {
	member := &models.User{ID: uuid.New(), Email: testTenantEmail, Name: "Old Name", Role: models.RoleMember}
	svc := NewUserService(newFakeUserRepo(member))

	profile, err := svc.Register(context.Background(), dtos.RegisterUserRequest{
		Email: testTenantEmail, Name: "New Name",
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", profile.Name)
	assert.Equal(t, models.RoleMember, profile.Role)
}

func TestUserProfile_UnknownPrincipal(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	_, err := svc.Profile(context.Background(), "nobody@example.com")
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
}

func TestRemoveMember_DemotesToUser(t *testing.T) {
	member := &models.User{ID: uuid.New(), Email: testTenantEmail, Name: testTenantName, Role: models.RoleMember}
	svc := NewUserService(newFakeUserRepo(member))

	require.NoError(t, svc.RemoveMember(context.Background(), testTenantEmail))
	assert.Equal(t, models.RoleUser, member.Role)
}

func TestRemoveMember_PlainUserConflicts(t *testing.T) {
	user := &models.User{ID: uuid.New(), Email: testTenantEmail, Name: testTenantName, Role: models.RoleUser}
	svc := NewUserService(newFakeUserRepo(user))

	err := svc.RemoveMember(context.Background(), testTenantEmail)
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)
}

func TestMakeAdmin_PromotesMember(t *testing.T) {
	member := &models.User{ID: uuid.New(), Email: testTenantEmail, Name: testTenantName, Role: models.RoleMember}
	svc := NewUserService(newFakeUserRepo(member))

	require.NoError(t, svc.MakeAdmin(context.Background(), testTenantEmail))
	assert.Equal(t, models.RoleAdmin, member.Role)
}

func TestMakeAdmin_UnknownUserNotFound(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	err := svc.MakeAdmin(context.Background(), "nobody@example.com")
	requireAppError(t, err, http.StatusNotFound, utils.ErrCodeNotFound)
}

func TestMakeAdmin_AlreadyAdminConflicts(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Email: testTenantEmail, Name: testTenantName, Role: models.RoleAdmin}
	svc := NewUserService(newFakeUserRepo(admin))

	err := svc.MakeAdmin(context.Background(), testTenantEmail)
	requireAppError(t, err, http.StatusConflict, utils.ErrCodeConflict)
}
