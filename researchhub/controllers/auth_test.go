package controllers

import (
	"context"
	"testing"
	"time"

	"researchhub/researchhub/services/token"
	"researchhub/researchhub/sources/memory"
	"researchhub/researchhub/types"
	"researchhub/researchhub/utils/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(t *testing.T) (*AuthController, *memory.Store, *token.Service) {
	t.Helper()
	store, err := memory.New()
	require.NoError(t, err)
	tokens := token.NewService("test-secret", time.Hour)
	return NewAuthController(store, tokens), store, tokens
}

var alice = types.RegisterRequest{
	Email:    "alice@example.com",
	Username: "alice",
	FullName: "Alice Liddell",
	Password: "wonderland",
}

func TestRegisterIssuesToken(t *testing.T) {
	ctrl, store, tokens := newAuth(t)
	ctx := context.Background()

	resp, err := ctrl.Register(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "alice", resp.User.Username)
	assert.True(t, resp.User.IsActive)
	assert.NotNil(t, resp.User.Preferences)

	sub, err := tokens.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, sub)

	stored, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, alice.Password, stored.HashedPassword)
}

func TestRegisterDuplicates(t *testing.T) {
	ctrl, _, _ := newAuth(t)
	ctx := context.Background()
	_, err := ctrl.Register(ctx, alice)
	require.NoError(t, err)

	sameName := alice
	sameName.Email = "other@example.com"
	_, err = ctrl.Register(ctx, sameName)
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeDuplicate, apperrors.From(err).Type)
	assert.Equal(t, "Username already registered", apperrors.From(err).Message)

	sameEmail := alice
	sameEmail.Username = "alice2"
	_, err = ctrl.Register(ctx, sameEmail)
	require.Error(t, err)
	assert.Equal(t, "Email already registered", apperrors.From(err).Message)
}

func TestRegisterValidation(t *testing.T) {
	ctrl, _, _ := newAuth(t)
	bad := alice
	bad.Email = "not-an-email"
	bad.Password = "123"

	_, err := ctrl.Register(context.Background(), bad)
	require.Error(t, err)
	appErr := apperrors.From(err)
	assert.Equal(t, apperrors.TypeValidation, appErr.Type)
	assert.Contains(t, appErr.Fields, "email")
	assert.Contains(t, appErr.Fields, "password")
}

func TestLoginRecordsLastLogin(t *testing.T) {
	ctrl, store, _ := newAuth(t)
	ctx := context.Background()
	_, err := ctrl.Register(ctx, alice)
	require.NoError(t, err)

	resp, err := ctrl.Login(ctx, types.LoginRequest{Username: "alice", Password: "wonderland"})
	require.NoError(t, err)
	require.NotNil(t, resp.User.LastLogin)

	stored, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)
}

func TestLoginFailuresLookAlike(t *testing.T) {
	ctrl, _, _ := newAuth(t)
	ctx := context.Background()
	_, err := ctrl.Register(ctx, alice)
	require.NoError(t, err)

	for _, req := range []types.LoginRequest{
		{Username: "alice", Password: "wrong-password"},
		{Username: "nobody", Password: "wonderland"},
	} {
		_, err := ctrl.Login(ctx, req)
		require.Error(t, err)
		appErr := apperrors.From(err)
		assert.Equal(t, apperrors.TypeUnauthorized, appErr.Type)
		assert.Equal(t, "Incorrect username or password", appErr.Message)
	}
}

func TestUpdatePreferences(t *testing.T) {
	ctrl, store, _ := newAuth(t)
	ctx := context.Background()
	resp, err := ctrl.Register(ctx, alice)
	require.NoError(t, err)
	user, err := store.GetUserByID(ctx, resp.User.ID)
	require.NoError(t, err)

	updated, err := ctrl.UpdatePreferences(ctx, user, types.PreferencesRequest{
		Preferences: map[string]any{"theme": "dark"},
	})
	require.NoError(t, err)
	assert.Equal(t, "dark", updated.Preferences["theme"])
}
