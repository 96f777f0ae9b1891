// Package storetest holds the behaviour every sources.Store implementation
// must share. Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"researchhub/researchhub/sources"
	"researchhub/researchhub/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Clock hands out strictly increasing times one second apart.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock() *Clock {
	return &Clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

// Factory builds an empty store whose timestamps come from now.
type Factory func(t *testing.T, now func() time.Time) sources.Store

func Run(t *testing.T, factory Factory) {
	cases := []struct {
		name string
		fn   func(*testing.T, sources.Store)
	}{
		{"UserCreateAndLookup", testUserCreateAndLookup},
		{"UserDuplicates", testUserDuplicates},
		{"UserUpdate", testUserUpdate},
		{"ConversationRoundTrip", testConversationRoundTrip},
		{"ConversationMissing", testConversationMissing},
		{"ListOrderingAndScope", testListOrderingAndScope},
		{"ListPagination", testListPagination},
		{"AppendMessage", testAppendMessage},
		{"Search", testSearch},
		{"SearchLiteral", testSearchLiteral},
		{"SearchLimit", testSearchLimit},
		{"UpdateConversation", testUpdateConversation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clock := NewClock()
			tc.fn(t, factory(t, clock.Now))
		})
	}
}

func newUser(name string) *types.User {
	return &types.User{
		Username:       name,
		Email:          name + "@example.com",
		FullName:       "User " + name,
		HashedPassword: "$2a$10$notarealhash",
		IsActive:       true,
		Preferences:    map[string]any{"theme": "dark"},
	}
}

func createConversation(t *testing.T, s sources.Store, owner, title string, category *string, tags ...string) string {
	t.Helper()
	id, err := s.CreateConversation(context.Background(), &types.Conversation{
		UserID:   owner,
		Title:    title,
		Category: category,
		Tags:     tags,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	return id
}

func ptr(s string) *string { return &s }

func testUserCreateAndLookup(t *testing.T, s sources.Store) {
	ctx := context.Background()
	u := newUser("alice")
	require.NoError(t, s.CreateUser(ctx, u))
	require.NotEmpty(t, u.ID)

	byID, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "alice", byID.Username)
	assert.Equal(t, "alice@example.com", byID.Email)
	assert.Equal(t, "User alice", byID.FullName)
	assert.Equal(t, u.HashedPassword, byID.HashedPassword)
	assert.True(t, byID.IsActive)
	assert.Nil(t, byID.LastLogin)
	assert.Equal(t, "dark", byID.Preferences["theme"])

	byName, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, u.ID, byName.ID)

	byEmail, err := s.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)

	for _, lookup := range []func() (*types.User, error){
		func() (*types.User, error) { return s.GetUserByUsername(ctx, "nobody") },
		func() (*types.User, error) { return s.GetUserByEmail(ctx, "nobody@example.com") },
		func() (*types.User, error) { return s.GetUserByID(ctx, "does-not-exist") },
	} {
		got, err := lookup()
		assert.NoError(t, err)
		assert.Nil(t, got)
	}
}

func testUserDuplicates(t *testing.T, s sources.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, newUser("bob")))

	sameName := newUser("bob")
	sameName.Email = "other@example.com"
	assert.ErrorIs(t, s.CreateUser(ctx, sameName), sources.ErrDuplicateUsername)

	sameEmail := newUser("robert")
	sameEmail.Email = "bob@example.com"
	assert.ErrorIs(t, s.CreateUser(ctx, sameEmail), sources.ErrDuplicateEmail)
}

func testUserUpdate(t *testing.T, s sources.Store) {
	ctx := context.Background()
	u := newUser("carol")
	require.NoError(t, s.CreateUser(ctx, u))

	login := time.Date(2024, 7, 1, 8, 30, 0, 0, time.UTC)
	require.NoError(t, s.UpdateUser(ctx, u.ID, map[string]any{
		sources.FieldLastLogin:   login,
		sources.FieldPreferences: map[string]any{"language": "fr"},
	}))
	got, err := s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.True(t, login.Equal(*got.LastLogin), "last login %v", got.LastLogin)
	assert.Equal(t, "fr", got.Preferences["language"])

	require.NoError(t, s.UpdateUser(ctx, u.ID, map[string]any{sources.FieldIsActive: false}))
	got, err = s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.ErrorIs(t, s.UpdateUser(ctx, u.ID, map[string]any{"username": "x"}), sources.ErrUnknownField)
	assert.ErrorIs(t, s.UpdateUser(ctx, "missing", map[string]any{sources.FieldIsActive: true}), sources.ErrNotFound)
}

func testConversationRoundTrip(t *testing.T, s sources.Store) {
	ctx := context.Background()
	id := createConversation(t, s, "owner-1", "Quantum computing", ptr("technology"), "qubits", "physics")

	got, err := s.GetConversation(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "owner-1", got.UserID)
	assert.Equal(t, "Quantum computing", got.Title)
	require.NotNil(t, got.Category)
	assert.Equal(t, "technology", *got.Category)
	assert.Equal(t, []string{"qubits", "physics"}, got.Tags)
	assert.Empty(t, got.Messages)
	assert.False(t, got.IsArchived)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	noCat := createConversation(t, s, "owner-1", "Untagged", nil)
	got, err = s.GetConversation(ctx, noCat)
	require.NoError(t, err)
	assert.Nil(t, got.Category)
	assert.Empty(t, got.Tags)
}

func testConversationMissing(t *testing.T, s sources.Store) {
	ctx := context.Background()
	for _, id := range []string{"does-not-exist", "507f1f77bcf86cd799439011", ""} {
		got, err := s.GetConversation(ctx, id)
		assert.NoError(t, err, id)
		assert.Nil(t, got, id)
	}
	_, err := s.AppendMessage(ctx, "507f1f77bcf86cd799439011", types.Message{Role: types.RoleHuman, Content: "hi"})
	assert.ErrorIs(t, err, sources.ErrNotFound)
	err = s.UpdateConversation(ctx, "507f1f77bcf86cd799439011", map[string]any{sources.FieldTitle: "x"})
	assert.ErrorIs(t, err, sources.ErrNotFound)
}

func testListOrderingAndScope(t *testing.T, s sources.Store) {
	ctx := context.Background()
	first := createConversation(t, s, "owner-1", "first", nil)
	second := createConversation(t, s, "owner-1", "second", nil)
	third := createConversation(t, s, "owner-1", "third", nil)
	createConversation(t, s, "owner-2", "someone else", nil)
	archived := createConversation(t, s, "owner-1", "archived", nil)
	require.NoError(t, s.UpdateConversation(ctx, archived, map[string]any{sources.FieldIsArchived: true}))

	// touching the oldest one moves it to the front
	_, err := s.AppendMessage(ctx, first, types.Message{Role: types.RoleHuman, Content: "bump"})
	require.NoError(t, err)

	list, err := s.ListConversations(ctx, "owner-1", 0, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{first, third, second}, conversationIDs(list))

	none, err := s.ListConversations(ctx, "owner-3", 0, 50)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testListPagination(t *testing.T, s sources.Store) {
	ctx := context.Background()
	var created []string
	for i := 0; i < 5; i++ {
		created = append(created, createConversation(t, s, "owner-1", fmt.Sprintf("conv %d", i), nil))
	}
	// newest first
	want := []string{created[4], created[3], created[2], created[1], created[0]}

	page, err := s.ListConversations(ctx, "owner-1", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, want[1:3], conversationIDs(page))

	tail, err := s.ListConversations(ctx, "owner-1", 4, 10)
	require.NoError(t, err)
	assert.Equal(t, want[4:], conversationIDs(tail))

	past, err := s.ListConversations(ctx, "owner-1", 10, 10)
	require.NoError(t, err)
	assert.Empty(t, past)
}

func testAppendMessage(t *testing.T, s sources.Store) {
	ctx := context.Background()
	id := createConversation(t, s, "owner-1", "chat", nil)
	before, err := s.GetConversation(ctx, id)
	require.NoError(t, err)

	m1, err := s.AppendMessage(ctx, id, types.Message{
		Role:     types.RoleHuman,
		Content:  "What is new in fusion research?",
		Metadata: map[string]any{"source": "web"},
	})
	require.NoError(t, err)
	assert.Equal(t, "1", m1.ID)
	assert.False(t, m1.Timestamp.IsZero())

	m2, err := s.AppendMessage(ctx, id, types.Message{Role: types.RoleAI, Content: "Several things."})
	require.NoError(t, err)
	assert.Equal(t, "2", m2.ID)

	got, err := s.GetConversation(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "1", got.Messages[0].ID)
	assert.Equal(t, types.RoleHuman, got.Messages[0].Role)
	assert.Equal(t, "What is new in fusion research?", got.Messages[0].Content)
	assert.Equal(t, "web", got.Messages[0].Metadata["source"])
	assert.Equal(t, "2", got.Messages[1].ID)
	assert.Equal(t, types.RoleAI, got.Messages[1].Role)
	assert.True(t, got.UpdatedAt.After(before.UpdatedAt), "updated_at should move forward")
	assert.True(t, got.CreatedAt.Equal(before.CreatedAt), "created_at must not change")
}

func testSearch(t *testing.T, s sources.Store) {
	ctx := context.Background()
	byTitle := createConversation(t, s, "owner-1", "Champions League final", ptr("sports"))
	byTag := createConversation(t, s, "owner-1", "Weekend plans", ptr("sports"), "Football")
	byMessage := createConversation(t, s, "owner-1", "Misc", ptr("technology"))
	_, err := s.AppendMessage(ctx, byMessage, types.Message{Role: types.RoleAI, Content: "The LEAGUE of legends patch notes"})
	require.NoError(t, err)
	archived := createConversation(t, s, "owner-1", "Old league talk", ptr("sports"))
	require.NoError(t, s.UpdateConversation(ctx, archived, map[string]any{sources.FieldIsArchived: true}))
	createConversation(t, s, "owner-2", "League of someone else", ptr("sports"))

	got, err := s.SearchConversations(ctx, "owner-1", "league", nil)
	require.NoError(t, err)
	// byMessage was touched last
	assert.Equal(t, []string{byMessage, byTitle}, conversationIDs(got))

	got, err = s.SearchConversations(ctx, "owner-1", "league", ptr("sports"))
	require.NoError(t, err)
	assert.Equal(t, []string{byTitle}, conversationIDs(got))

	got, err = s.SearchConversations(ctx, "owner-1", "FOOT", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{byTag}, conversationIDs(got))

	got, err = s.SearchConversations(ctx, "owner-1", "patch notes", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{byMessage}, conversationIDs(got))

	got, err = s.SearchConversations(ctx, "owner-1", "cricket", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testSearchLiteral(t *testing.T, s sources.Store) {
	ctx := context.Background()
	plus := createConversation(t, s, "owner-1", "Learning C++ templates", nil)
	createConversation(t, s, "owner-1", "Learning Cobol", nil)
	pct := createConversation(t, s, "owner-1", "Growth of 50% in AI funding", nil)
	createConversation(t, s, "owner-1", "Growth of 500 startups", nil)

	got, err := s.SearchConversations(ctx, "owner-1", "c++", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{plus}, conversationIDs(got))

	got, err = s.SearchConversations(ctx, "owner-1", "50%", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{pct}, conversationIDs(got))

	got, err = s.SearchConversations(ctx, "owner-1", ".*", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testSearchLimit(t *testing.T, s sources.Store) {
	ctx := context.Background()
	for i := 0; i < sources.SearchLimit+5; i++ {
		createConversation(t, s, "owner-1", fmt.Sprintf("research note %d", i), nil)
	}
	got, err := s.SearchConversations(ctx, "owner-1", "research", nil)
	require.NoError(t, err)
	assert.Len(t, got, sources.SearchLimit)
	assert.Equal(t, fmt.Sprintf("research note %d", sources.SearchLimit+4), got[0].Title)
}

func testUpdateConversation(t *testing.T, s sources.Store) {
	ctx := context.Background()
	id := createConversation(t, s, "owner-1", "Draft", nil, "a")
	before, err := s.GetConversation(ctx, id)
	require.NoError(t, err)

	require.NoError(t, s.UpdateConversation(ctx, id, map[string]any{
		sources.FieldTitle:       "Final",
		sources.FieldCategory:    ptr("trending"),
		sources.FieldTags:        []string{"b", "c"},
		sources.FieldSourcesUsed: []map[string]any{{"url": "https://example.com"}},
	}))
	got, err := s.GetConversation(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
	require.NotNil(t, got.Category)
	assert.Equal(t, "trending", *got.Category)
	assert.Equal(t, []string{"b", "c"}, got.Tags)
	require.Len(t, got.SourcesUsed, 1)
	assert.Equal(t, "https://example.com", got.SourcesUsed[0]["url"])
	assert.True(t, got.UpdatedAt.After(before.UpdatedAt))

	// an empty update still re-stamps updated_at
	require.NoError(t, s.UpdateConversation(ctx, id, map[string]any{}))
	again, err := s.GetConversation(ctx, id)
	require.NoError(t, err)
	assert.True(t, again.UpdatedAt.After(got.UpdatedAt))

	err = s.UpdateConversation(ctx, id, map[string]any{"user_id": "owner-2"})
	assert.True(t, errors.Is(err, sources.ErrUnknownField), "got %v", err)
}

func conversationIDs(convs []types.Conversation) []string {
	out := make([]string, 0, len(convs))
	for _, c := range convs {
		out = append(out, c.ID)
	}
	return out
}
