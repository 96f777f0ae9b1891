// Package mongo stores users and conversations in MongoDB. Conversations are
// single documents with their messages embedded, so every mutation is a
// single-document atomic update.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"researchhub/researchhub/config"
	"researchhub/researchhub/sources"
	"researchhub/researchhub/types"
	"researchhub/researchhub/utils/logging"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

const (
	usersCollection         = "users"
	conversationsCollection = "conversations"
)

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

type Store struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

var _ sources.Store = (*Store)(nil)

// Open connects, pings and makes sure the indexes exist.
func Open(ctx context.Context, uri, dbName string, opts ...Option) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetServerSelectionTimeout(5 * time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s := &Store{
		client: client,
		db:     client.Database(dbName),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	logging.AppLogger.Info("connected to MongoDB", zap.String("database", dbName))
	return s, nil
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		conversationsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "category", Value: 1}}},
			{Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "messages.content", Value: "text"},
				{Key: "tags", Value: "text"},
			}},
		},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func (s *Store) users() *mongo.Collection         { return s.db.Collection(usersCollection) }
func (s *Store) conversations() *mongo.Collection { return s.db.Collection(conversationsCollection) }

func (s *Store) Driver() string { return config.DriverMongo }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Drop removes the whole database. Tests use it to clean up.
func (s *Store) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

func (s *Store) CreateUser(ctx context.Context, user *types.User) error {
	doc := newUserDoc(user, s.now())
	if _, err := s.users().InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if existing, _ := s.GetUserByUsername(ctx, user.Username); existing != nil {
				return sources.ErrDuplicateUsername
			}
			return sources.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = doc.ID.Hex()
	user.CreatedAt = doc.CreatedAt
	user.Preferences = doc.Preferences
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*types.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*types.User, error) {
	var doc userDoc
	err := s.users().FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toUser(), nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, updates map[string]any) error {
	// type-check against a scratch value before touching the database
	if err := sources.ApplyUserUpdate(&types.User{}, updates); err != nil {
		return err
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return sources.ErrNotFound
	}
	if len(updates) == 0 {
		n, err := s.users().CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return err
		}
		if n == 0 {
			return sources.ErrNotFound
		}
		return nil
	}
	set := bson.M{}
	for key, value := range updates {
		set[key] = value
	}
	res, err := s.users().UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return sources.ErrNotFound
	}
	return nil
}

func (s *Store) CreateConversation(ctx context.Context, conv *types.Conversation) (string, error) {
	doc := newConversationDoc(conv, s.now())
	if _, err := s.conversations().InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert conversation: %w", err)
	}
	conv.ID = doc.ID.Hex()
	conv.CreatedAt = doc.CreatedAt
	conv.UpdatedAt = doc.UpdatedAt
	return conv.ID, nil
}

func (s *Store) GetConversation(ctx context.Context, id string) (*types.Conversation, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var doc conversationDoc
	err = s.conversations().FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toConversation(), nil
}

func (s *Store) ListConversations(ctx context.Context, ownerID string, skip, limit int) ([]types.Conversation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(skip))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return s.findConversations(ctx, bson.M{"user_id": ownerID, "is_archived": false}, opts)
}

func (s *Store) SearchConversations(ctx context.Context, ownerID, query string, category *string) ([]types.Conversation, error) {
	pattern := bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"}
	filter := bson.M{
		"user_id":     ownerID,
		"is_archived": false,
		"$or": bson.A{
			bson.M{"title": pattern},
			bson.M{"messages.content": pattern},
			bson.M{"tags": pattern},
		},
	}
	if category != nil {
		filter["category"] = *category
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(sources.SearchLimit)
	return s.findConversations(ctx, filter, opts)
}

func (s *Store) findConversations(ctx context.Context, filter bson.M, opts *options.FindOptionsBuilder) ([]types.Conversation, error) {
	cur, err := s.conversations().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find conversations: %w", err)
	}
	defer cur.Close(ctx)

	out := []types.Conversation{}
	for cur.Next(ctx) {
		var doc conversationDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode conversation: %w", err)
		}
		out = append(out, *doc.toConversation())
	}
	return out, cur.Err()
}

// AppendMessage pushes the message and derives its id from the array size in
// the same update, so concurrent appends never share an id.
func (s *Store) AppendMessage(ctx context.Context, id string, msg types.Message) (*types.Message, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, sources.ErrNotFound
	}
	now := s.now()
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = now
	}
	meta := msg.Metadata
	if meta == nil {
		meta = map[string]any{}
	}

	current := bson.D{{Key: "$ifNull", Value: bson.A{"$messages", bson.A{}}}}
	nextID := bson.D{{Key: "$toString", Value: bson.D{{Key: "$add", Value: bson.A{
		bson.D{{Key: "$size", Value: current}}, 1,
	}}}}}
	entry := bson.D{
		{Key: "id", Value: nextID},
		{Key: "role", Value: bson.D{{Key: "$literal", Value: msg.Role}}},
		{Key: "content", Value: bson.D{{Key: "$literal", Value: msg.Content}}},
		{Key: "timestamp", Value: ts},
		{Key: "metadata", Value: bson.D{{Key: "$literal", Value: meta}}},
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "messages", Value: bson.D{{Key: "$concatArrays", Value: bson.A{current, bson.A{entry}}}}},
			{Key: "updated_at", Value: now},
		}}},
	}

	var doc conversationDoc
	err = s.conversations().FindOneAndUpdate(ctx, bson.M{"_id": oid}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, sources.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	conv := doc.toConversation()
	if len(conv.Messages) == 0 {
		return nil, fmt.Errorf("append message: conversation %s has no messages after update", id)
	}
	last := conv.Messages[len(conv.Messages)-1]
	return &last, nil
}

func (s *Store) UpdateConversation(ctx context.Context, id string, updates map[string]any) error {
	now := s.now()
	if err := sources.ApplyConversationUpdate(&types.Conversation{}, updates, now); err != nil {
		return err
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return sources.ErrNotFound
	}
	set := bson.M{"updated_at": now}
	for key, value := range updates {
		set[key] = value
	}
	res, err := s.conversations().UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update conversation: %w", err)
	}
	if res.MatchedCount == 0 {
		return sources.ErrNotFound
	}
	return nil
}
