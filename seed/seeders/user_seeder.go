package seeders

import (
	"log"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/biolink-hub/biolink_api/model"
)

// UserSeeder handles seeding the demo account
type UserSeeder struct {
	db *gorm.DB
}

// NewUserSeeder creates a new user seeder
func NewUserSeeder(db *gorm.DB) *UserSeeder {
	return &UserSeeder{db: db}
}

// SeedDemoUser creates the demo creator account
func (s *UserSeeder) SeedDemoUser() error {
	var existing model.User
	if err := s.db.Where("username = ?", "demo").First(&existing).Error; err == nil {
		log.Println("Demo user already exists, skipping user seeding")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("Demo1234"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := model.User{
		ID:          uuid.New().String(),
		Email:       "demo@example.com",
		Username:    "demo",
		Password:    string(hashedPassword),
		DisplayName: "Demo Creator",
		Bio:         "Sample account with one of every block type",
	}

	if err := s.db.Create(&user).Error; err != nil {
		log.Printf("Error creating demo user: %v", err)
		return err
	}

	log.Printf("Created demo user: %s (password: Demo1234)", user.Email)
	return nil
}
