package types

import "time"

// User is the stored account record. HashedPassword never leaves the server;
// use Public for anything that is rendered.
type User struct {
	ID             string
	Username       string
	Email          string
	FullName       string
	HashedPassword string
	IsActive       bool
	CreatedAt      time.Time
	LastLogin      *time.Time
	Preferences    map[string]any
}

type UserResponse struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	Username    string         `json:"username"`
	FullName    string         `json:"full_name"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	LastLogin   *time.Time     `json:"last_login"`
	Preferences map[string]any `json:"preferences"`
}

func (u *User) Public() UserResponse {
	prefs := u.Preferences
	if prefs == nil {
		prefs = map[string]any{}
	}
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Username:    u.Username,
		FullName:    u.FullName,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt,
		LastLogin:   u.LastLogin,
		Preferences: prefs,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	FullName string `json:"full_name" validate:"required,max=200"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type PreferencesRequest struct {
	Preferences map[string]any `json:"preferences" validate:"required"`
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}
