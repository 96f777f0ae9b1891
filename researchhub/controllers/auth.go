package controllers

import (
	"context"
	"errors"
	"time"

	"researchhub/researchhub/services/token"
	"researchhub/researchhub/sources"
	"researchhub/researchhub/types"
	"researchhub/researchhub/utils/apperrors"
	"researchhub/researchhub/utils/logging"
	"researchhub/researchhub/utils/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgBadCredentials = "Incorrect username or password"
	msgUsernameTaken  = "Username already registered"
	msgEmailTaken     = "Email already registered"
)

// compared against when the user does not exist, so both paths cost one
// bcrypt comparison
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

type AuthController struct {
	users  sources.UserStore
	tokens *token.Service
	now    func() time.Time
}

func NewAuthController(users sources.UserStore, tokens *token.Service) *AuthController {
	return &AuthController{
		users:  users,
		tokens: tokens,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateUser validates and stores a new account with a bcrypt-hashed
// password.
func (c *AuthController) CreateUser(ctx context.Context, req types.RegisterRequest) (*types.User, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	existing, err := c.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Duplicate(msgUsernameTaken)
	}
	existing, err = c.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Duplicate(msgEmailTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	user := &types.User{
		Username:       req.Username,
		Email:          req.Email,
		FullName:       req.FullName,
		HashedPassword: string(hash),
		IsActive:       true,
		CreatedAt:      c.now(),
		Preferences:    map[string]any{},
	}
	// the store's unique indexes catch registrations racing past the checks above
	switch err := c.users.CreateUser(ctx, user); {
	case errors.Is(err, sources.ErrDuplicateUsername):
		return nil, apperrors.Duplicate(msgUsernameTaken)
	case errors.Is(err, sources.ErrDuplicateEmail):
		return nil, apperrors.Duplicate(msgEmailTaken)
	case err != nil:
		return nil, err
	}
	logging.AppLogger.Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

func (c *AuthController) Register(ctx context.Context, req types.RegisterRequest) (*types.TokenResponse, error) {
	defer logging.LogDuration(ctx, "AuthController.Register")()
	user, err := c.CreateUser(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.issue(user)
}

func (c *AuthController) Login(ctx context.Context, req types.LoginRequest) (*types.TokenResponse, error) {
	defer logging.LogDuration(ctx, "AuthController.Login")()
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	user, err := c.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	return c.issue(user)
}

// Authenticate checks the password and records the login time. Unknown
// users and wrong passwords fail the same way.
func (c *AuthController) Authenticate(ctx context.Context, username, password string) (*types.User, error) {
	user, err := c.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, apperrors.Unauthorized(msgBadCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, apperrors.Unauthorized(msgBadCredentials)
	}

	now := c.now()
	if err := c.users.UpdateUser(ctx, user.ID, map[string]any{sources.FieldLastLogin: now}); err != nil {
		return nil, err
	}
	user.LastLogin = &now
	return user, nil
}

func (c *AuthController) UpdatePreferences(ctx context.Context, user *types.User, req types.PreferencesRequest) (*types.UserResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	err := c.users.UpdateUser(ctx, user.ID, map[string]any{sources.FieldPreferences: req.Preferences})
	if errors.Is(err, sources.ErrNotFound) {
		return nil, apperrors.Unauthorized("Could not validate credentials")
	}
	if err != nil {
		return nil, err
	}
	updated, err := c.users.GetUserByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperrors.Unauthorized("Could not validate credentials")
	}
	resp := updated.Public()
	return &resp, nil
}

func (c *AuthController) issue(user *types.User) (*types.TokenResponse, error) {
	signed, _, err := c.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &types.TokenResponse{
		AccessToken: signed,
		TokenType:   "bearer",
		User:        user.Public(),
	}, nil
}
