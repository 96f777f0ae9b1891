package dao

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"researchhub/researchhub/sources"
	"researchhub/researchhub/sources/psql/models"
	"researchhub/researchhub/types"
	"researchhub/researchhub/utils/ids"

	"gorm.io/gorm"
)

type UserDAO struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewUserDAO(db *gorm.DB, now func() time.Time) *UserDAO {
	return &UserDAO{DB: db, now: now}
}

func (dao *UserDAO) CreateUser(ctx context.Context, user *types.User) error {
	if user.ID == "" {
		user.ID = ids.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = dao.now()
	}
	if user.Preferences == nil {
		user.Preferences = map[string]any{}
	}
	row := userRow(user)
	err := dao.DB.WithContext(ctx).Create(&row).Error
	if err == nil {
		return nil
	}
	if !isUniqueViolation(err) {
		return err
	}
	// find out which unique index fired
	if existing, lookupErr := dao.GetUserByUsername(ctx, user.Username); lookupErr == nil && existing != nil {
		return sources.ErrDuplicateUsername
	}
	return sources.ErrDuplicateEmail
}

func (dao *UserDAO) GetUserByID(ctx context.Context, id string) (*types.User, error) {
	return dao.first(ctx, "id = ?", id)
}

func (dao *UserDAO) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	return dao.first(ctx, "username = ?", username)
}

func (dao *UserDAO) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	return dao.first(ctx, "email = ?", email)
}

func (dao *UserDAO) first(ctx context.Context, query string, arg any) (*types.User, error) {
	var row models.User
	err := dao.DB.WithContext(ctx).Where(query, arg).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return userFromRow(&row), nil
}

func (dao *UserDAO) UpdateUser(ctx context.Context, id string, updates map[string]any) error {
	if err := sources.CheckUserUpdate(updates); err != nil {
		return err
	}
	return dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.User
		err := tx.Where("id = ?", id).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sources.ErrNotFound
		}
		if err != nil {
			return err
		}
		user := userFromRow(&row)
		if err := sources.ApplyUserUpdate(user, updates); err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		next := userRow(user)
		return tx.Model(&models.User{ID: id}).Select(columns(updates)).Updates(&next).Error
	})
}

func userRow(u *types.User) models.User {
	return models.User{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		FullName:       u.FullName,
		HashedPassword: u.HashedPassword,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
		LastLogin:      u.LastLogin,
		Preferences:    u.Preferences,
	}
}

func userFromRow(row *models.User) *types.User {
	prefs := row.Preferences
	if prefs == nil {
		prefs = map[string]any{}
	}
	return &types.User{
		ID:             row.ID,
		Username:       row.Username,
		Email:          row.Email,
		FullName:       row.FullName,
		HashedPassword: row.HashedPassword,
		IsActive:       row.IsActive,
		CreatedAt:      row.CreatedAt,
		LastLogin:      row.LastLogin,
		Preferences:    prefs,
	}
}

// columns maps update keys to column names. The keys are already snake_case.
func columns(updates map[string]any) []string {
	cols := make([]string, 0, len(updates))
	for key := range updates {
		cols = append(cols, key)
	}
	return cols
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
