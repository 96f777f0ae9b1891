package mongo

import (
	"time"

	"researchhub/researchhub/types"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type userDoc struct {
	ID             bson.ObjectID  `bson:"_id"`
	Username       string         `bson:"username"`
	Email          string         `bson:"email"`
	FullName       string         `bson:"full_name"`
	HashedPassword string         `bson:"hashed_password"`
	IsActive       bool           `bson:"is_active"`
	CreatedAt      time.Time      `bson:"created_at"`
	LastLogin      *time.Time     `bson:"last_login"`
	Preferences    map[string]any `bson:"preferences"`
}

type messageDoc struct {
	ID        string         `bson:"id"`
	Role      string         `bson:"role"`
	Content   string         `bson:"content"`
	Timestamp time.Time      `bson:"timestamp"`
	Metadata  map[string]any `bson:"metadata"`
}

type conversationDoc struct {
	ID          bson.ObjectID    `bson:"_id"`
	UserID      string           `bson:"user_id"`
	Title       string           `bson:"title"`
	Messages    []messageDoc     `bson:"messages"`
	Category    *string          `bson:"category"`
	Tags        []string         `bson:"tags"`
	CreatedAt   time.Time        `bson:"created_at"`
	UpdatedAt   time.Time        `bson:"updated_at"`
	IsArchived  bool             `bson:"is_archived"`
	SourcesUsed []map[string]any `bson:"sources_used"`
}

func newUserDoc(u *types.User, now time.Time) userDoc {
	created := u.CreatedAt
	if created.IsZero() {
		created = now
	}
	prefs := u.Preferences
	if prefs == nil {
		prefs = map[string]any{}
	}
	return userDoc{
		ID:             bson.NewObjectID(),
		Username:       u.Username,
		Email:          u.Email,
		FullName:       u.FullName,
		HashedPassword: u.HashedPassword,
		IsActive:       u.IsActive,
		CreatedAt:      created,
		LastLogin:      u.LastLogin,
		Preferences:    prefs,
	}
}

func (d *userDoc) toUser() *types.User {
	return &types.User{
		ID:             d.ID.Hex(),
		Username:       d.Username,
		Email:          d.Email,
		FullName:       d.FullName,
		HashedPassword: d.HashedPassword,
		IsActive:       d.IsActive,
		CreatedAt:      d.CreatedAt,
		LastLogin:      d.LastLogin,
		Preferences:    plainMap(d.Preferences),
	}
}

func newConversationDoc(c *types.Conversation, now time.Time) conversationDoc {
	created := c.CreatedAt
	if created.IsZero() {
		created = now
	}
	updated := c.UpdatedAt
	if updated.IsZero() {
		updated = created
	}
	doc := conversationDoc{
		ID:          bson.NewObjectID(),
		UserID:      c.UserID,
		Title:       c.Title,
		Messages:    []messageDoc{},
		Category:    c.Category,
		Tags:        c.Tags,
		CreatedAt:   created,
		UpdatedAt:   updated,
		IsArchived:  c.IsArchived,
		SourcesUsed: c.SourcesUsed,
	}
	if doc.Tags == nil {
		doc.Tags = []string{}
	}
	if doc.SourcesUsed == nil {
		doc.SourcesUsed = []map[string]any{}
	}
	for _, m := range c.Messages {
		doc.Messages = append(doc.Messages, messageDoc{
			ID: m.ID, Role: m.Role, Content: m.Content, Timestamp: m.Timestamp, Metadata: m.Metadata,
		})
	}
	return doc
}

func (d *conversationDoc) toConversation() *types.Conversation {
	c := &types.Conversation{
		ID:         d.ID.Hex(),
		UserID:     d.UserID,
		Title:      d.Title,
		Category:   d.Category,
		Tags:       d.Tags,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
		IsArchived: d.IsArchived,
		Messages:   make([]types.Message, 0, len(d.Messages)),
	}
	for _, m := range d.Messages {
		c.Messages = append(c.Messages, types.Message{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			Timestamp: m.Timestamp,
			Metadata:  plainMap(m.Metadata),
		})
	}
	for _, src := range d.SourcesUsed {
		c.SourcesUsed = append(c.SourcesUsed, plainMap(src))
	}
	c.Normalize()
	return c
}

// plainMap turns nested bson documents and arrays into maps and slices so
// they render as ordinary JSON.
func plainMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = plain(v)
	}
	return out
}

func plain(v any) any {
	switch t := v.(type) {
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = plain(e.Value)
		}
		return out
	case bson.M:
		return plainMap(t)
	case map[string]any:
		return plainMap(t)
	case bson.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	default:
		return v
	}
}
