package main

import (
	"context"
	"errors"
	"testing"

	"researchhub/researchhub/sources/memory"
	"researchhub/researchhub/utils/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIsIdempotent(t *testing.T) {
	store, err := memory.New()
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, runSeed(ctx, store))
	require.NoError(t, runSeed(ctx, store))

	demo, err := store.GetUserByUsername(ctx, memory.DemoUsername)
	require.NoError(t, err)
	require.NotNil(t, demo)
	assert.True(t, demo.IsActive)
}

func TestCreateAndDeactivateUser(t *testing.T) {
	store, err := memory.New()
	require.NoError(t, err)
	ctx := context.Background()

	flagUsername, flagEmail, flagFullName, flagPassword = "ada", "ada@example.com", "Ada Lovelace", "analytical"
	t.Cleanup(func() { flagUsername, flagEmail, flagFullName, flagPassword = "", "", "", "" })

	require.NoError(t, runCreateUser(ctx, store))
	err = runCreateUser(ctx, store)
	require.Error(t, err)
	assert.Equal(t, "Username already registered", describe(err))

	require.NoError(t, runDeactivateUser(ctx, store))
	user, err := store.GetUserByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	flagUsername = "nobody"
	assert.Error(t, runDeactivateUser(ctx, store))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Category not found", describe(apperrors.NotFound("Category not found")))
	assert.Equal(t, "dial tcp: refused", describe(errors.New("dial tcp: refused")))
}
