package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/biolink-hub/biolink_api/seed/seeders"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		seedType = flag.String("type", "all", "Type of seeding: all, users, content")
		dsn      = flag.String("dsn", "", "Database DSN (overrides DATABASE_URL env var)")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	database := *dsn
	if database == "" {
		database = os.Getenv("DATABASE_URL")
	}
	if database == "" {
		database = defaultDSN()
	}

	db, err := gorm.Open(postgres.Open(database), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	seeder := seeders.NewMainSeeder(db)

	switch *seedType {
	case "all":
		err = seeder.SeedAll()
	case "users":
		err = seeder.SeedUsers()
	case "content":
		err = seeder.SeedContent()
	default:
		log.Fatalf("Unknown seed type: %s", *seedType)
	}

	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding completed successfully")
}

func defaultDSN() string {
	host := envOr("DB_HOST", "localhost")
	port := envOr("DB_PORT", "5432")
	user := envOr("DB_USER", "postgres")
	password := envOr("DB_PASSWORD", "postgres")
	dbname := envOr("DB_NAME", "biolink_api")
	sslmode := envOr("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func showHelp() {
	fmt.Println(`Database seeder

Usage:
  seed [flags]

Flags:
  -type string   Type of seeding: all, users, content (default "all")
  -dsn string    Database DSN (overrides DATABASE_URL env var)
  -help          Show this help message

The "users" seeder creates a demo account (demo / demo@example.com) and the
"content" seeder fills its page with sample blocks. "all" runs both.`)
}
