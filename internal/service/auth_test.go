package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func registerRequest(username string) *types.RegisterRequest {
	return &types.RegisterRequest{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Ann",
		LastName:  "Smith",
		Password:  "s3cret-pass",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	req := registerRequest("ann")
	req.Email = "  Ann@Example.com "
	user, err := env.auth.Register(ctx, req)
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	token, err := env.auth.Login(ctx, "ANN@example.com", "s3cret-pass")
	require.NoError(t, err)

	claims, err := env.auth.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "ann", claims.Username)
	assert.NotEmpty(t, claims.ID)
}

func TestRegisterDuplicate(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, registerRequest("ann"))
	require.NoError(t, err)

	_, err = env.auth.Register(ctx, registerRequest("ann"))
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "username")
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	testhelpers.CreateUser(t, env.db, "ann")

	_, err := env.auth.Login(ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = env.auth.Login(ctx, "nobody@example.com", testhelpers.TestPassword)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestValidateTokenRejectsForeignAndExpired(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, env.db, "ann")

	other := service.NewAuthService(env.db, "other-secret", time.Hour, nil)
	foreign, err := other.GenerateToken(user)
	require.NoError(t, err)
	_, err = env.auth.ValidateToken(ctx, foreign)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	expiredIssuer := service.NewAuthService(env.db, "test-secret", -time.Minute, nil)
	expired, err := expiredIssuer.GenerateToken(user)
	require.NoError(t, err)
	_, err = env.auth.ValidateToken(ctx, expired)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = env.auth.ValidateToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestLogoutWithoutRedisIsNoop(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, env.db, "ann")

	token, err := env.auth.GenerateToken(user)
	require.NoError(t, err)
	claims, err := env.auth.ValidateToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, claims))
}

func TestSetPassword(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	user := testhelpers.CreateUser(t, env.db, "ann")

	err := env.auth.SetPassword(ctx, user.ID, "wrong", "new-password")
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "current_password")

	require.NoError(t, env.auth.SetPassword(ctx, user.ID, testhelpers.TestPassword, "new-password"))

	_, err = env.auth.Login(ctx, user.Email, testhelpers.TestPassword)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = env.auth.Login(ctx, user.Email, "new-password")
	assert.NoError(t, err)
}
