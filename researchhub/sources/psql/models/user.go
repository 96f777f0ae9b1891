package models

import "time"

type User struct {
	ID             string         `gorm:"type:varchar(26);primaryKey"`
	Username       string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	Email          string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	FullName       string         `gorm:"type:varchar(255);not null;default:''"`
	HashedPassword string         `gorm:"type:varchar(255);not null"`
	IsActive       bool           `gorm:"not null;default:true"`
	CreatedAt      time.Time      `gorm:"not null"`
	LastLogin      *time.Time
	Preferences    map[string]any `gorm:"type:text;serializer:json"`
}

func (User) TableName() string {
	return "users"
}
