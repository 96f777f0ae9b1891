package types

import (
	"time"
	"unicode/utf8"
)

const (
	RoleHuman = "human"
	RoleAI    = "ai"

	previewRunes = 100
)

type Message struct {
	ID        string         `json:"id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata"`
}

type Conversation struct {
	ID          string           `json:"id"`
	UserID      string           `json:"user_id"`
	Title       string           `json:"title"`
	Messages    []Message        `json:"messages"`
	Category    *string          `json:"category"`
	Tags        []string         `json:"tags"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	IsArchived  bool             `json:"is_archived"`
	SourcesUsed []map[string]any `json:"sources_used"`
}

// Normalize replaces nil collections with empty ones so they render as []
// and {} rather than null.
func (c *Conversation) Normalize() {
	if c.Messages == nil {
		c.Messages = []Message{}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.SourcesUsed == nil {
		c.SourcesUsed = []map[string]any{}
	}
	for i := range c.Messages {
		if c.Messages[i].Metadata == nil {
			c.Messages[i].Metadata = map[string]any{}
		}
	}
}

// ConversationSummary is the list view of a conversation.
type ConversationSummary struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Category           *string   `json:"category"`
	Tags               []string  `json:"tags"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	MessageCount       int       `json:"message_count"`
	LastMessagePreview *string   `json:"last_message_preview"`
}

func (c *Conversation) Summary() ConversationSummary {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	s := ConversationSummary{
		ID:           c.ID,
		Title:        c.Title,
		Category:     c.Category,
		Tags:         tags,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		MessageCount: len(c.Messages),
	}
	if n := len(c.Messages); n > 0 {
		preview := Preview(c.Messages[n-1].Content)
		s.LastMessagePreview = &preview
	}
	return s
}

// Preview keeps the first 100 characters of content and always appends an
// ellipsis.
func Preview(content string) string {
	if utf8.RuneCountInString(content) <= previewRunes {
		return content + "..."
	}
	return string([]rune(content)[:previewRunes]) + "..."
}

func Summaries(convs []Conversation) []ConversationSummary {
	out := make([]ConversationSummary, 0, len(convs))
	for i := range convs {
		out = append(out, convs[i].Summary())
	}
	return out
}

type CreateConversationRequest struct {
	Title    string   `json:"title" validate:"required,min=1,max=200"`
	Category *string  `json:"category" validate:"omitempty,max=50"`
	Tags     []string `json:"tags" validate:"max=20,dive,max=50"`
}

type UpdateConversationRequest struct {
	Title    *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Category *string   `json:"category" validate:"omitempty,max=50"`
	Tags     *[]string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
}

type AddMessageRequest struct {
	Role     string         `json:"role" validate:"required,oneof=human ai"`
	Content  string         `json:"content" validate:"required"`
	Metadata map[string]any `json:"metadata"`
}

type SearchRequest struct {
	Query    string  `json:"query" validate:"required,max=200"`
	Category *string `json:"category"`
}
