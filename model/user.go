package model

import "time"

type User struct {
	ID          string `gorm:"primaryKey"`
	Email       string `gorm:"unique;not null"`
	Username    string `gorm:"unique;not null"`
	Password    string
	DisplayName string
	Bio         string
	AvatarURL   string
	LastLogin   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type UserSession struct {
	ID           string `gorm:"primaryKey"`
	UserID       string `gorm:"index;not null"`
	RefreshToken string `gorm:"index"`
	UserAgent    string
	IPAddress    string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}
