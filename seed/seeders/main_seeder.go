package seeders

import (
	"log"

	"gorm.io/gorm"

	"github.com/biolink-hub/biolink_api/model"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll runs all seeders in the correct order
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.migrate(); err != nil {
		return err
	}

	// 1. Seed the demo user first (content depends on it)
	if err := s.SeedUsers(); err != nil {
		log.Printf("User seeding failed: %v", err)
		return err
	}

	// 2. Seed sample content for the demo page
	if err := s.SeedContent(); err != nil {
		log.Printf("Content seeding failed: %v", err)
		return err
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedUsers seeds only the demo account
func (s *MainSeeder) SeedUsers() error {
	if err := s.migrate(); err != nil {
		return err
	}
	return NewUserSeeder(s.db).SeedDemoUser()
}

// SeedContent seeds only the demo account's content blocks
func (s *MainSeeder) SeedContent() error {
	if err := s.migrate(); err != nil {
		return err
	}
	return NewContentSeeder(s.db).SeedDemoContent()
}

func (s *MainSeeder) migrate() error {
	return s.db.AutoMigrate(
		&model.User{},
		&model.UserSession{},
		&model.Link{},
		&model.Section{},
		&model.TextBlock{},
		&model.ImageBlock{},
		&model.VideoBlock{},
		&model.MusicTrack{},
		&model.SocialLink{},
		&model.EventBlock{},
	)
}
