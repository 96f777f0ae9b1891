// Package sources defines the persistence contract shared by the memory,
// MongoDB and Postgres backends.
package sources

import (
	"context"
	"errors"
	"fmt"

	"researchhub/researchhub/types"
)

// SearchLimit caps the number of conversations a search returns.
const SearchLimit = 20

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateUsername = errors.New("username already registered")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrUnknownField      = errors.New("field cannot be updated")
)

// Lookups return (nil, nil) when the record does not exist.
type UserStore interface {
	CreateUser(ctx context.Context, user *types.User) error
	GetUserByID(ctx context.Context, id string) (*types.User, error)
	GetUserByUsername(ctx context.Context, username string) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	UpdateUser(ctx context.Context, id string, updates map[string]any) error
}

type ConversationStore interface {
	CreateConversation(ctx context.Context, conv *types.Conversation) (string, error)
	GetConversation(ctx context.Context, id string) (*types.Conversation, error)
	ListConversations(ctx context.Context, ownerID string, skip, limit int) ([]types.Conversation, error)
	// AppendMessage assigns the next sequential id, stores the message and
	// bumps the conversation's updated_at.
	AppendMessage(ctx context.Context, id string, msg types.Message) (*types.Message, error)
	SearchConversations(ctx context.Context, ownerID, query string, category *string) ([]types.Conversation, error)
	// UpdateConversation applies a partial update and always re-stamps
	// updated_at.
	UpdateConversation(ctx context.Context, id string, updates map[string]any) error
}

type Store interface {
	UserStore
	ConversationStore
	Driver() string
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Updatable fields, keyed by their JSON name.
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldFullName    = "full_name"
	FieldIsActive    = "is_active"
	FieldLastLogin   = "last_login"
	FieldPreferences = "preferences"

	FieldTitle       = "title"
	FieldCategory    = "category"
	FieldTags        = "tags"
	FieldIsArchived  = "is_archived"
	FieldSourcesUsed = "sources_used"
)

var (
	userFields = map[string]bool{
		FieldFullName: true, FieldIsActive: true, FieldLastLogin: true, FieldPreferences: true,
	}
	conversationFields = map[string]bool{
		FieldTitle: true, FieldCategory: true, FieldTags: true, FieldIsArchived: true, FieldSourcesUsed: true,
	}
)

// CheckUserUpdate rejects keys a user update may not touch.
func CheckUserUpdate(updates map[string]any) error {
	return checkFields(updates, userFields)
}

// CheckConversationUpdate rejects keys a conversation update may not touch.
func CheckConversationUpdate(updates map[string]any) error {
	return checkFields(updates, conversationFields)
}

func checkFields(updates map[string]any, allowed map[string]bool) error {
	for key := range updates {
		if !allowed[key] {
			return fmt.Errorf("%w: %s", ErrUnknownField, key)
		}
	}
	return nil
}
