package dao

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"researchhub/researchhub/sources"
	"researchhub/researchhub/sources/psql/models"
	"researchhub/researchhub/types"
	"researchhub/researchhub/utils/ids"

	"gorm.io/gorm"
)

// appendRetries bounds how often AppendMessage retries after losing a race
// for the next sequence number.
const appendRetries = 3

type ConversationDAO struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewConversationDAO(db *gorm.DB, now func() time.Time) *ConversationDAO {
	return &ConversationDAO{DB: db, now: now}
}

func (dao *ConversationDAO) CreateConversation(ctx context.Context, conv *types.Conversation) (string, error) {
	now := dao.now()
	conv.ID = ids.New()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = conv.CreatedAt
	}
	conv.Normalize()
	row := conversationRow(conv)
	// messages are written through AppendMessage only
	row.Messages = nil
	if err := dao.DB.WithContext(ctx).Omit("Messages").Create(&row).Error; err != nil {
		return "", wrap("create conversation", err)
	}
	return conv.ID, nil
}

func (dao *ConversationDAO) GetConversation(ctx context.Context, id string) (*types.Conversation, error) {
	var row models.Conversation
	err := dao.withMessages(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return conversationFromRow(&row), nil
}

func (dao *ConversationDAO) ListConversations(ctx context.Context, ownerID string, skip, limit int) ([]types.Conversation, error) {
	var rows []models.Conversation
	q := dao.withMessages(ctx).
		Where("user_id = ? AND is_archived = ?", ownerID, false).
		Order("updated_at desc").Order("id desc").
		Offset(skip)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, wrap("list conversations", err)
	}
	return conversationsFromRows(rows), nil
}

func (dao *ConversationDAO) AppendMessage(ctx context.Context, id string, msg types.Message) (*types.Message, error) {
	var err error
	for attempt := 0; attempt < appendRetries; attempt++ {
		var out *types.Message
		out, err = dao.appendOnce(ctx, id, msg)
		if err == nil {
			return out, nil
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
	}
	return nil, wrap("append message", err)
}

func (dao *ConversationDAO) appendOnce(ctx context.Context, id string, msg types.Message) (*types.Message, error) {
	var row models.ConversationMessage
	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&models.Conversation{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return sources.ErrNotFound
		}
		var count int64
		if err := tx.Model(&models.ConversationMessage{}).Where("conversation_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		now := dao.now()
		ts := msg.Timestamp
		if ts.IsZero() {
			ts = now
		}
		row = models.ConversationMessage{
			ConversationID: id,
			Seq:            int(count) + 1,
			Role:           msg.Role,
			Content:        msg.Content,
			Timestamp:      ts,
			Metadata:       msg.Metadata,
		}
		if row.Metadata == nil {
			row.Metadata = map[string]any{}
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).Where("id = ?", id).UpdateColumn("updated_at", now).Error
	})
	if err != nil {
		return nil, err
	}
	out := messageFromRow(&row)
	return &out, nil
}

func (dao *ConversationDAO) SearchConversations(ctx context.Context, ownerID, query string, category *string) ([]types.Conversation, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	matches := dao.DB.
		Where(`LOWER(title) LIKE ? ESCAPE '\'`, pattern).
		Or(`EXISTS (SELECT 1 FROM conversation_messages m WHERE m.conversation_id = conversations.id AND LOWER(m.content) LIKE ? ESCAPE '\')`, pattern)
	if !strings.Contains(query, models.TagSeparator) {
		matches = matches.Or(`tags_text LIKE ? ESCAPE '\'`, pattern)
	}

	q := dao.withMessages(ctx).
		Where("user_id = ? AND is_archived = ?", ownerID, false).
		Where(matches)
	if category != nil {
		q = q.Where("category = ?", *category)
	}

	var rows []models.Conversation
	err := q.Order("updated_at desc").Order("id desc").
		Limit(sources.SearchLimit).
		Find(&rows).Error
	if err != nil {
		return nil, wrap("search conversations", err)
	}
	return conversationsFromRows(rows), nil
}

func (dao *ConversationDAO) UpdateConversation(ctx context.Context, id string, updates map[string]any) error {
	if err := sources.CheckConversationUpdate(updates); err != nil {
		return err
	}
	return dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.Conversation
		err := tx.Where("id = ?", id).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sources.ErrNotFound
		}
		if err != nil {
			return err
		}
		conv := conversationFromRow(&row)
		if err := sources.ApplyConversationUpdate(conv, updates, dao.now()); err != nil {
			return err
		}
		conv.Normalize()
		next := conversationRow(conv)
		next.Messages = nil

		cols := append(columns(updates), "updated_at")
		if _, ok := updates[sources.FieldTags]; ok {
			cols = append(cols, "tags_text")
		}
		return tx.Model(&models.Conversation{ID: id}).Select(cols).Omit("Messages").Updates(&next).Error
	})
}

func (dao *ConversationDAO) withMessages(ctx context.Context) *gorm.DB {
	return dao.DB.WithContext(ctx).Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq asc")
	})
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func conversationRow(c *types.Conversation) models.Conversation {
	row := models.Conversation{
		ID:          c.ID,
		UserID:      c.UserID,
		Title:       c.Title,
		Category:    c.Category,
		Tags:        c.Tags,
		IsArchived:  c.IsArchived,
		SourcesUsed: c.SourcesUsed,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	row.IndexTags()
	return row
}

func conversationFromRow(row *models.Conversation) *types.Conversation {
	c := &types.Conversation{
		ID:          row.ID,
		UserID:      row.UserID,
		Title:       row.Title,
		Category:    row.Category,
		Tags:        row.Tags,
		IsArchived:  row.IsArchived,
		SourcesUsed: row.SourcesUsed,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		Messages:    make([]types.Message, 0, len(row.Messages)),
	}
	for i := range row.Messages {
		c.Messages = append(c.Messages, messageFromRow(&row.Messages[i]))
	}
	c.Normalize()
	return c
}

func conversationsFromRows(rows []models.Conversation) []types.Conversation {
	out := make([]types.Conversation, 0, len(rows))
	for i := range rows {
		out = append(out, *conversationFromRow(&rows[i]))
	}
	return out
}

func messageFromRow(row *models.ConversationMessage) types.Message {
	meta := row.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	return types.Message{
		ID:        strconv.Itoa(row.Seq),
		Role:      row.Role,
		Content:   row.Content,
		Timestamp: row.Timestamp,
		Metadata:  meta,
	}
}
