package seeders

import (
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/biolink-hub/biolink_api/model"
)

// ContentSeeder fills the demo page with one of every block type
type ContentSeeder struct {
	db *gorm.DB
}

// NewContentSeeder creates a new content seeder
func NewContentSeeder(db *gorm.DB) *ContentSeeder {
	return &ContentSeeder{db: db}
}

// SeedDemoContent creates sample blocks for the demo user
func (s *ContentSeeder) SeedDemoContent() error {
	var user model.User
	if err := s.db.Where("username = ?", "demo").First(&user).Error; err != nil {
		log.Println("Demo user not found, run the user seeder first")
		return err
	}

	var count int64
	if err := s.db.Model(&model.Link{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Demo content already exists, skipping content seeding")
		return nil
	}

	section := model.Section{
		ID:     uuid.New().String(),
		UserID: user.ID,
		Title:  "My Projects",
	}
	if err := s.db.Create(&section).Error; err != nil {
		return err
	}

	links := []model.Link{
		{ID: uuid.New().String(), UserID: user.ID, SectionID: section.ID,
			Title: "Portfolio", URL: "https://example.com/portfolio", Active: true, Position: 0},
		{ID: uuid.New().String(), UserID: user.ID, SectionID: section.ID,
			Title: "Blog", URL: "https://example.com/blog", Active: true, Position: 1},
		{ID: uuid.New().String(), UserID: user.ID,
			Title: "Old Store", URL: "https://example.com/store", Active: false, Position: 2},
	}
	for i := range links {
		if err := s.db.Create(&links[i]).Error; err != nil {
			return err
		}
	}

	blocks := []interface{}{
		&model.TextBlock{ID: uuid.New().String(), UserID: user.ID,
			Content: "Welcome to my page!", Position: 0},
		&model.ImageBlock{ID: uuid.New().String(), UserID: user.ID,
			ImageURL: "https://example.com/banner.png", Caption: "Banner", Position: 1},
		&model.VideoBlock{ID: uuid.New().String(), UserID: user.ID,
			VideoURL: "https://example.com/intro.mp4", Title: "Intro", Position: 2},
		&model.MusicTrack{ID: uuid.New().String(), UserID: user.ID,
			TrackURL: "https://example.com/track.mp3", Title: "Demo Track", Artist: "Demo Artist", Position: 3},
		&model.SocialLink{ID: uuid.New().String(), UserID: user.ID,
			Platform: "twitter", Handle: "@demo", URL: "https://twitter.com/demo", Position: 0},
		&model.EventBlock{ID: uuid.New().String(), UserID: user.ID,
			Title: "Launch Party", Location: "Online", URL: "https://example.com/launch",
			StartsAt: time.Now().AddDate(0, 1, 0), EndsAt: time.Now().AddDate(0, 1, 0).Add(2 * time.Hour), Position: 4},
	}
	for _, block := range blocks {
		if err := s.db.Create(block).Error; err != nil {
			return err
		}
	}

	log.Printf("Created demo content for user %s", user.Username)
	return nil
}
