package services

import (
	"context"
	"testing"
	"time"

	"guesthouse-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService(t *testing.T) {
	tokens := NewTokenService("secret", time.Hour)
	u := models.User{ID: 7, Role: models.RoleManager}

	signed, err := tokens.Generate(u)
	require.NoError(t, err)

	claims, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "manager", claims.Role)
	assert.Equal(t, "guesthouse-backend", claims.Issuer)

	_, err = NewTokenService("other", time.Hour).Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenService("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Generate(u)
	require.NoError(t, err)
	_, err = tokens.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	bogus, err := tokens.Generate(models.User{ID: 1, Role: "owner"})
	require.NoError(t, err)
	_, err = tokens.Parse(bogus)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_SetupLoginRegister(t *testing.T) {
	db := newTestDB(t)
	tokens := NewTokenService("secret", time.Hour)
	svc := NewAuthService(db, tokens)

	res, err := svc.Setup(context.Background(), SetupInput{Email: "Owner@Example.com", Password: "secret1", FullName: "Owner"})
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", res.User.Email)
	assert.Equal(t, models.RoleAdmin, res.User.Role)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, "secret1", res.User.PasswordHash)

	_, err = svc.Setup(context.Background(), SetupInput{Email: "second@example.com", Password: "secret1", FullName: "Second"})
	assert.ErrorIs(t, err, ErrSetupDone)

	login, err := svc.Login(context.Background(), LoginInput{Email: "OWNER@example.com", Password: "secret1"})
	require.NoError(t, err)
	claims, err := tokens.Parse(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	_, err = svc.Login(context.Background(), LoginInput{Email: "owner@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), LoginInput{Email: "owner@example.com"})
	assert.ErrorIs(t, err, ErrMissingFields)

	mgr, err := svc.Register(context.Background(), RegisterInput{Email: "desk@example.com", Password: "deskpass", FullName: "Front Desk", Role: "manager"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, mgr.Role)

	_, err = svc.Register(context.Background(), RegisterInput{Email: "desk@example.com", Password: "deskpass", FullName: "Again", Role: "manager"})
	assert.ErrorIs(t, err, ErrEmailExists)
	_, err = svc.Register(context.Background(), RegisterInput{Email: "cook@example.com", Password: "cookpass", FullName: "Cook", Role: "chef"})
	assert.ErrorIs(t, err, ErrInvalidRole)
	_, err = svc.Register(context.Background(), RegisterInput{Email: "cook@example.com", Password: "123", FullName: "Cook", Role: "manager"})
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, NewTokenService("secret", time.Hour))

	res, err := svc.Setup(context.Background(), SetupInput{Email: "owner@example.com", Password: "secret1", FullName: "Owner"})
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), RegisterInput{Email: "desk@example.com", Password: "deskpass", FullName: "Desk", Role: "manager"})
	require.NoError(t, err)
	id := res.User.ID

	_, err = svc.UpdateProfile(context.Background(), id, ProfileUpdate{CurrentPassword: "nope", NewPassword: "secret2"})
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, err = svc.UpdateProfile(context.Background(), id, ProfileUpdate{Email: strPtr("desk@example.com")})
	assert.ErrorIs(t, err, ErrEmailExists)

	u, err := svc.UpdateProfile(context.Background(), id, ProfileUpdate{
		FullName:        strPtr("The Owner"),
		CurrentPassword: "secret1",
		NewPassword:     "secret2",
	})
	require.NoError(t, err)
	assert.Equal(t, "The Owner", u.FullName)

	_, err = svc.Login(context.Background(), LoginInput{Email: "owner@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(context.Background(), LoginInput{Email: "owner@example.com", Password: "secret2"})
	assert.NoError(t, err)

	me, err := svc.Me(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "The Owner", me.FullName)
	_, err = svc.Me(context.Background(), 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService(t *testing.T) {
	db := newTestDB(t)
	auth := NewAuthService(db, NewTokenService("secret", time.Hour))
	svc := NewUserService(db)

	res, err := auth.Setup(context.Background(), SetupInput{Email: "owner@example.com", Password: "secret1", FullName: "Owner"})
	require.NoError(t, err)
	mgr, err := auth.Register(context.Background(), RegisterInput{Email: "desk@example.com", Password: "deskpass", FullName: "Desk", Role: "manager"})
	require.NoError(t, err)

	admin := Actor{UserID: res.User.ID, Role: models.RoleAdmin}
	manager := Actor{UserID: mgr.ID, Role: models.RoleManager}

	users, err := svc.List(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, users, 2)
	_, err = svc.List(context.Background(), manager)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(context.Background(), manager, admin.UserID)
	assert.ErrorIs(t, err, ErrForbidden)
	self, err := svc.Get(context.Background(), manager, manager.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Desk", self.FullName)

	// a manager cannot promote themselves
	u, err := svc.Update(context.Background(), manager, manager.UserID, UserUpdate{Role: strPtr("admin"), FullName: strPtr("Front Desk")})
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, u.Role)
	assert.Equal(t, "Front Desk", u.FullName)

	u, err = svc.Update(context.Background(), admin, manager.UserID, UserUpdate{Role: strPtr("admin")})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	_, err = svc.Update(context.Background(), admin, manager.UserID, UserUpdate{Role: strPtr("janitor")})
	assert.ErrorIs(t, err, ErrInvalidRole)

	assert.ErrorIs(t, svc.Delete(context.Background(), manager, admin.UserID), ErrForbidden)
	assert.ErrorIs(t, svc.Delete(context.Background(), admin, admin.UserID), ErrInvalidOperation)
	require.NoError(t, svc.Delete(context.Background(), admin, manager.UserID))
	assert.ErrorIs(t, svc.Delete(context.Background(), admin, manager.UserID), ErrUserNotFound)
}
