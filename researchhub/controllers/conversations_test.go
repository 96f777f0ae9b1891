package controllers

import (
	"context"
	"strings"
	"testing"

	"researchhub/researchhub/sources/memory"
	"researchhub/researchhub/types"
	"researchhub/researchhub/utils/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConversations(t *testing.T) (*ConversationController, *types.User, *types.User) {
	t.Helper()
	store, err := memory.New()
	require.NoError(t, err)
	ctx := context.Background()
	owner := &types.User{Username: "owner", Email: "owner@example.com", IsActive: true}
	other := &types.User{Username: "other", Email: "other@example.com", IsActive: true}
	require.NoError(t, store.CreateUser(ctx, owner))
	require.NoError(t, store.CreateUser(ctx, other))
	return NewConversationController(store), owner, other
}

func strPtr(s string) *string { return &s }

func TestCreateAndGet(t *testing.T) {
	ctrl, owner, _ := newConversations(t)
	ctx := context.Background()

	summary, err := ctrl.Create(ctx, owner, types.CreateConversationRequest{
		Title:    "Rust vs Go",
		Category: strPtr("technology"),
		Tags:     []string{"languages"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.MessageCount)
	assert.Nil(t, summary.LastMessagePreview)

	conv, err := ctrl.Get(ctx, owner, summary.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rust vs Go", conv.Title)
	assert.Equal(t, "technology", *conv.Category)
	assert.Equal(t, []string{"languages"}, conv.Tags)
	assert.Empty(t, conv.Messages)
	assert.False(t, conv.IsArchived)
}

func TestCreateRequiresTitle(t *testing.T) {
	ctrl, owner, _ := newConversations(t)
	_, err := ctrl.Create(context.Background(), owner, types.CreateConversationRequest{})
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeValidation, apperrors.From(err).Type)
}

func TestOwnershipRule(t *testing.T) {
	ctrl, owner, other := newConversations(t)
	ctx := context.Background()
	summary, err := ctrl.Create(ctx, owner, types.CreateConversationRequest{Title: "private"})
	require.NoError(t, err)

	_, err = ctrl.Get(ctx, other, summary.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsForbidden(err))
	assert.Equal(t, "Not authorized to access this conversation", apperrors.From(err).Message)

	_, err = ctrl.AddMessage(ctx, other, summary.ID, types.AddMessageRequest{Role: "human", Content: "hi"})
	assert.True(t, apperrors.IsForbidden(err))

	assert.True(t, apperrors.IsForbidden(ctrl.Archive(ctx, other, summary.ID)))

	_, err = ctrl.Get(ctx, owner, "does-not-exist")
	assert.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, "Conversation not found", apperrors.From(err).Message)

	list, err := ctrl.List(ctx, other, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddMessage(t *testing.T) {
	ctrl, owner, _ := newConversations(t)
	ctx := context.Background()
	summary, err := ctrl.Create(ctx, owner, types.CreateConversationRequest{Title: "chat"})
	require.NoError(t, err)

	msg, err := ctrl.AddMessage(ctx, owner, summary.ID, types.AddMessageRequest{Role: "human", Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "1", msg.ID)

	_, err = ctrl.AddMessage(ctx, owner, summary.ID, types.AddMessageRequest{Role: "system", Content: "nope"})
	require.Error(t, err)
	assert.Equal(t, apperrors.TypeValidation, apperrors.From(err).Type)

	conv, err := ctrl.Get(ctx, owner, summary.ID)
	require.NoError(t, err)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, "human", conv.Messages[0].Role)
	assert.Equal(t, "hello", conv.Messages[0].Content)

	list, err := ctrl.List(ctx, owner, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].LastMessagePreview)
	assert.Equal(t, "hello...", *list[0].LastMessagePreview)
}

func TestListPagination(t *testing.T) {
	ctrl, owner, _ := newConversations(t)
	ctx := context.Background()

	_, err := ctrl.List(ctx, owner, -1, 10)
	assert.Equal(t, apperrors.TypeValidation, apperrors.From(err).Type)
	_, err = ctrl.List(ctx, owner, 0, -5)
	assert.Equal(t, apperrors.TypeValidation, apperrors.From(err).Type)

	for i := 0; i < 3; i++ {
		_, err := ctrl.Create(ctx, owner, types.CreateConversationRequest{Title: strings.Repeat("t", i+1)})
		require.NoError(t, err)
	}
	page, err := ctrl.List(ctx, owner, 1, 1)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	all, err := ctrl.List(ctx, owner, 0, 1000)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSearch(t *testing.T) {
	ctrl, owner, _ := newConversations(t)
	ctx := context.Background()
	summary, err := ctrl.Create(ctx, owner, types.CreateConversationRequest{Title: "weekend"})
	require.NoError(t, err)
	_, err = ctrl.AddMessage(ctx, owner, summary.ID, types.AddMessageRequest{Role: "ai", Content: "The Quantum computing roundup"})
	require.NoError(t, err)

	hits, err := ctrl.Search(ctx, owner, types.SearchRequest{Query: "quantum"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, summary.ID, hits[0].ID)

	hits, err = ctrl.Search(ctx, owner, types.SearchRequest{Query: "basketball"})
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)

	_, err = ctrl.Search(ctx, owner, types.SearchRequest{})
	assert.Equal(t, apperrors.TypeValidation, apperrors.From(err).Type)
}

func TestUpdateAndArchive(t *testing.T) {
	ctrl, owner, _ := newConversations(t)
	ctx := context.Background()
	summary, err := ctrl.Create(ctx, owner, types.CreateConversationRequest{Title: "draft", Category: strPtr("sports")})
	require.NoError(t, err)

	tags := []string{"nba"}
	conv, err := ctrl.Update(ctx, owner, summary.ID, types.UpdateConversationRequest{
		Title:    strPtr("final"),
		Category: strPtr(""),
		Tags:     &tags,
	})
	require.NoError(t, err)
	assert.Equal(t, "final", conv.Title)
	assert.Nil(t, conv.Category)
	assert.Equal(t, []string{"nba"}, conv.Tags)

	_, err = ctrl.Update(ctx, owner, summary.ID, types.UpdateConversationRequest{})
	assert.Equal(t, apperrors.TypeValidation, apperrors.From(err).Type)

	require.NoError(t, ctrl.Archive(ctx, owner, summary.ID))
	list, err := ctrl.List(ctx, owner, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	conv, err = ctrl.Get(ctx, owner, summary.ID)
	require.NoError(t, err)
	assert.True(t, conv.IsArchived)
}
