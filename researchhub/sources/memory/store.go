// Package memory is an in-process Store used for local runs, tests and as
// the fallback when the configured database is unreachable.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"researchhub/researchhub/sources"
	"researchhub/researchhub/types"
	"researchhub/researchhub/utils/ids"

	"golang.org/x/crypto/bcrypt"
)

const (
	DemoUsername = "testuser"
	DemoEmail    = "test@example.com"
	DemoFullName = "Test User"
	DemoPassword = "password123"
)

type Option func(*Store)

// WithDemoUser seeds the testuser account.
func WithDemoUser() Option {
	return func(s *Store) { s.seedDemo = true }
}

// WithClock overrides time.Now, mostly for ordering tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	mu            sync.RWMutex
	users         map[string]*types.User
	usernames     map[string]string
	emails        map[string]string
	conversations map[string]*types.Conversation

	now      func() time.Time
	seedDemo bool
}

var _ sources.Store = (*Store)(nil)

func New(opts ...Option) (*Store, error) {
	s := &Store{
		users:         make(map[string]*types.User),
		usernames:     make(map[string]string),
		emails:        make(map[string]string),
		conversations: make(map[string]*types.Conversation),
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.seedDemo {
		hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash demo password: %w", err)
		}
		err = s.CreateUser(context.Background(), &types.User{
			Username:       DemoUsername,
			Email:          DemoEmail,
			FullName:       DemoFullName,
			HashedPassword: string(hash),
			IsActive:       true,
			Preferences:    map[string]any{},
		})
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) Driver() string { return "memory" }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close(context.Context) error { return nil }

func (s *Store) CreateUser(_ context.Context, user *types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usernames[user.Username]; ok {
		return sources.ErrDuplicateUsername
	}
	if _, ok := s.emails[user.Email]; ok {
		return sources.ErrDuplicateEmail
	}
	if user.ID == "" {
		user.ID = ids.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	if user.Preferences == nil {
		user.Preferences = map[string]any{}
	}
	stored := copyUser(user)
	s.users[stored.ID] = stored
	s.usernames[stored.Username] = stored.ID
	s.emails[stored.Email] = stored.ID
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		return copyUser(u), nil
	}
	return nil, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	s.mu.RLock()
	id, ok := s.usernames[username]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return s.GetUserByID(ctx, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	s.mu.RLock()
	id, ok := s.emails[email]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return s.GetUserByID(ctx, id)
}

func (s *Store) UpdateUser(_ context.Context, id string, updates map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return sources.ErrNotFound
	}
	next := copyUser(u)
	if err := sources.ApplyUserUpdate(next, updates); err != nil {
		return err
	}
	s.users[id] = next
	return nil
}

func (s *Store) CreateConversation(_ context.Context, conv *types.Conversation) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	stored := copyConversation(conv)
	stored.ID = ids.New()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = stored.CreatedAt
	}
	stored.Normalize()
	s.conversations[stored.ID] = stored

	conv.ID = stored.ID
	conv.CreatedAt = stored.CreatedAt
	conv.UpdatedAt = stored.UpdatedAt
	return stored.ID, nil
}

func (s *Store) GetConversation(_ context.Context, id string) (*types.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.conversations[id]; ok {
		return copyConversation(c), nil
	}
	return nil, nil
}

func (s *Store) ListConversations(_ context.Context, ownerID string, skip, limit int) ([]types.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := s.collect(func(c *types.Conversation) bool {
		return c.UserID == ownerID && !c.IsArchived
	})
	return page(matches, skip, limit), nil
}

func (s *Store) AppendMessage(_ context.Context, id string, msg types.Message) (*types.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, sources.ErrNotFound
	}
	now := s.now()
	msg.ID = strconv.Itoa(len(c.Messages) + 1)
	if msg.Timestamp.IsZero() {
		msg.Timestamp = now
	}
	msg.Metadata = copyMap(msg.Metadata)
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = now
	out := msg
	out.Metadata = copyMap(msg.Metadata)
	return &out, nil
}

func (s *Store) SearchConversations(_ context.Context, ownerID, query string, category *string) ([]types.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)
	matches := s.collect(func(c *types.Conversation) bool {
		if c.UserID != ownerID || c.IsArchived {
			return false
		}
		if category != nil && (c.Category == nil || *c.Category != *category) {
			return false
		}
		return matchesQuery(c, needle)
	})
	return page(matches, 0, sources.SearchLimit), nil
}

func (s *Store) UpdateConversation(_ context.Context, id string, updates map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return sources.ErrNotFound
	}
	next := copyConversation(c)
	if err := sources.ApplyConversationUpdate(next, updates, s.now()); err != nil {
		return err
	}
	next.Normalize()
	s.conversations[id] = next
	return nil
}

// collect returns copies of matching conversations, newest update first.
// Callers hold the read lock.
func (s *Store) collect(keep func(*types.Conversation) bool) []types.Conversation {
	var out []types.Conversation
	for _, c := range s.conversations {
		if keep(c) {
			out = append(out, *copyConversation(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

func matchesQuery(c *types.Conversation, needle string) bool {
	if strings.Contains(strings.ToLower(c.Title), needle) {
		return true
	}
	for _, m := range c.Messages {
		if strings.Contains(strings.ToLower(m.Content), needle) {
			return true
		}
	}
	for _, tag := range c.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func page(convs []types.Conversation, skip, limit int) []types.Conversation {
	if skip >= len(convs) {
		return []types.Conversation{}
	}
	convs = convs[skip:]
	if limit > 0 && limit < len(convs) {
		convs = convs[:limit]
	}
	return convs
}
