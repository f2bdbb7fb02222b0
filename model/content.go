package model

import "time"

// Content blocks composing a profile page. Every block row carries the owning
// user and a position; reordering is a batch of position updates scoped to the
// owner (see repositories.ReorderScoped).

type Link struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	SectionID string `gorm:"index"`
	Title     string `gorm:"not null"`
	URL       string `gorm:"not null"`
	Active    bool   `gorm:"default:true"`
	// Persisted click baseline; the live count lives in the cache and is
	// seeded from this value (set-if-absent).
	Clicks    int64
	Position  int `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Section struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	Title     string `gorm:"not null"`
	Position  int    `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type TextBlock struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	Content   string `gorm:"type:text"`
	Position  int    `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ImageBlock struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	ImageURL  string `gorm:"not null"`
	Caption   string
	LinkURL   string
	Position  int `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type VideoBlock struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	VideoURL  string `gorm:"not null"`
	Title     string
	Position  int `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type MusicTrack struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	TrackURL  string `gorm:"not null"`
	Title     string
	Artist    string
	Position  int `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SocialLink struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	Platform  string `gorm:"not null"`
	Handle    string
	URL       string `gorm:"not null"`
	Position  int    `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type EventBlock struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	Title     string `gorm:"not null"`
	Location  string
	URL       string
	StartsAt  time.Time
	EndsAt    time.Time
	Position  int `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
