package services

import (
	"context"
	"testing"
	"time"

	"medcart/models"
	"medcart/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUsers()
	svc := NewAuthService(users, "test-secret", time.Hour)
	ctx := context.Background()

	resp, err := svc.Register(ctx, models.RegisterRequest{
		Email: "Asha@Example.com", Password: "correct-horse", FullName: "Asha Rao",
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", resp.User.Email)
	assert.Equal(t, models.RoleCustomer, resp.User.Role)
	assert.NotEqual(t, "correct-horse", users.users[resp.User.ID].Password)

	claims, err := utils.ValidateToken("test-secret", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	_, err = svc.Register(ctx, models.RegisterRequest{Email: "asha@example.com", Password: "another-pass", FullName: "Dup"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	login, err := svc.Login(ctx, models.LoginRequest{Email: "asha@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "asha@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := NewAuthService(newFakeUsers(), "s", time.Hour)
	_, err := svc.Register(context.Background(), models.RegisterRequest{Email: "a@b.co", Password: "short", FullName: "Abc"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
