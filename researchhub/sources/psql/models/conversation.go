package models

import (
	"strings"
	"time"
)

// TagSeparator delimits tags inside TagsText so a LIKE pattern without it can
// only match within a single tag.
const TagSeparator = "\n"

type Conversation struct {
	ID          string                `gorm:"type:varchar(26);primaryKey"`
	UserID      string                `gorm:"type:varchar(64);not null;index:idx_conversations_user_updated,priority:1;index:idx_conversations_user_category,priority:1"`
	Title       string                `gorm:"type:varchar(255);not null"`
	Category    *string               `gorm:"type:varchar(64);index:idx_conversations_user_category,priority:2"`
	Tags        []string              `gorm:"type:text;serializer:json"`
	TagsText    string                `gorm:"type:text;not null;default:''"`
	IsArchived  bool                  `gorm:"not null;default:false"`
	SourcesUsed []map[string]any      `gorm:"type:text;serializer:json"`
	CreatedAt   time.Time             `gorm:"not null"`
	UpdatedAt   time.Time             `gorm:"not null;index:idx_conversations_user_updated,priority:2,sort:desc"`
	Messages    []ConversationMessage `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// IndexTags refreshes TagsText from Tags.
func (c *Conversation) IndexTags() {
	if len(c.Tags) == 0 {
		c.TagsText = ""
		return
	}
	c.TagsText = TagSeparator + strings.ToLower(strings.Join(c.Tags, TagSeparator)) + TagSeparator
}

type ConversationMessage struct {
	ID             uint           `gorm:"primaryKey;autoIncrement"`
	ConversationID string         `gorm:"type:varchar(26);not null;uniqueIndex:idx_messages_conversation_seq,priority:1"`
	Seq            int            `gorm:"not null;uniqueIndex:idx_messages_conversation_seq,priority:2"`
	Role           string         `gorm:"type:varchar(16);not null"`
	Content        string         `gorm:"type:text;not null"`
	Timestamp      time.Time      `gorm:"not null"`
	Metadata       map[string]any `gorm:"type:text;serializer:json"`
}

func (ConversationMessage) TableName() string {
	return "conversation_messages"
}
