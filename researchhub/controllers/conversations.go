package controllers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"researchhub/researchhub/sources"
	"researchhub/researchhub/types"
	"researchhub/researchhub/utils/apperrors"
	"researchhub/researchhub/utils/logging"
	"researchhub/researchhub/utils/validation"

	"go.uber.org/zap"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 100

	msgConversationNotFound = "Conversation not found"
	msgNotOwner             = "Not authorized to access this conversation"
)

type ConversationController struct {
	store sources.ConversationStore
	now   func() time.Time
}

func NewConversationController(store sources.ConversationStore) *ConversationController {
	return &ConversationController{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (c *ConversationController) Create(ctx context.Context, user *types.User, req types.CreateConversationRequest) (*types.ConversationSummary, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	now := c.now()
	conv := &types.Conversation{
		UserID:    user.ID,
		Title:     req.Title,
		Category:  req.Category,
		Tags:      req.Tags,
		Messages:  []types.Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	conv.Normalize()
	if _, err := c.store.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}
	logging.AppLogger.Info("conversation created",
		zap.String("conversation_id", conv.ID),
		zap.String("user_id", user.ID),
	)
	summary := conv.Summary()
	return &summary, nil
}

// List returns the caller's active conversations, most recently updated
// first. A limit of zero selects the default page size.
func (c *ConversationController) List(ctx context.Context, user *types.User, skip, limit int) ([]types.ConversationSummary, error) {
	defer logging.LogDuration(ctx, "ConversationController.List")()
	if skip < 0 {
		return nil, apperrors.Validation("skip must not be negative")
	}
	if limit < 0 {
		return nil, apperrors.Validation("limit must not be negative")
	}
	if limit == 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	convs, err := c.store.ListConversations(ctx, user.ID, skip, limit)
	if err != nil {
		return nil, err
	}
	return types.Summaries(convs), nil
}

func (c *ConversationController) Get(ctx context.Context, user *types.User, id string) (*types.Conversation, error) {
	return c.owned(ctx, user, id)
}

func (c *ConversationController) AddMessage(ctx context.Context, user *types.User, id string, req types.AddMessageRequest) (*types.Message, error) {
	defer logging.LogDuration(ctx, "ConversationController.AddMessage")()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if _, err := c.owned(ctx, user, id); err != nil {
		return nil, err
	}
	msg, err := c.store.AppendMessage(ctx, id, types.Message{
		Role:      req.Role,
		Content:   req.Content,
		Timestamp: c.now(),
		Metadata:  req.Metadata,
	})
	if errors.Is(err, sources.ErrNotFound) {
		return nil, apperrors.NotFound(msgConversationNotFound)
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (c *ConversationController) Search(ctx context.Context, user *types.User, req types.SearchRequest) ([]types.ConversationSummary, error) {
	defer logging.LogDuration(ctx, "ConversationController.Search")()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	category := req.Category
	if category != nil && *category == "" {
		category = nil
	}
	convs, err := c.store.SearchConversations(ctx, user.ID, req.Query, category)
	if err != nil {
		return nil, err
	}
	return types.Summaries(convs), nil
}

func (c *ConversationController) Update(ctx context.Context, user *types.User, id string, req types.UpdateConversationRequest) (*types.Conversation, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if req.Title != nil {
		updates[sources.FieldTitle] = *req.Title
	}
	if req.Category != nil {
		category := req.Category
		if *category == "" {
			category = nil
		}
		updates[sources.FieldCategory] = category
	}
	if req.Tags != nil {
		tags := *req.Tags
		if tags == nil {
			tags = []string{}
		}
		updates[sources.FieldTags] = tags
	}
	if len(updates) == 0 {
		return nil, apperrors.Validation("at least one of title, category or tags is required")
	}
	if err := c.update(ctx, user, id, updates); err != nil {
		return nil, err
	}
	return c.owned(ctx, user, id)
}

// Archive hides the conversation from listings and search. It stays
// readable by id.
func (c *ConversationController) Archive(ctx context.Context, user *types.User, id string) error {
	return c.update(ctx, user, id, map[string]any{sources.FieldIsArchived: true})
}

func (c *ConversationController) update(ctx context.Context, user *types.User, id string, updates map[string]any) error {
	if _, err := c.owned(ctx, user, id); err != nil {
		return err
	}
	err := c.store.UpdateConversation(ctx, id, updates)
	switch {
	case errors.Is(err, sources.ErrNotFound):
		return apperrors.NotFound(msgConversationNotFound)
	case errors.Is(err, sources.ErrUnknownField):
		return apperrors.Validation(err.Error())
	case err != nil:
		return fmt.Errorf("update conversation %s: %w", id, err)
	}
	return nil
}

// owned fetches the conversation and enforces that user owns it.
func (c *ConversationController) owned(ctx context.Context, user *types.User, id string) (*types.Conversation, error) {
	conv, err := c.store.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperrors.NotFound(msgConversationNotFound)
	}
	if conv.UserID != user.ID {
		return nil, apperrors.Forbidden(msgNotOwner)
	}
	return conv, nil
}
