package db

import (
	"fmt"
	"log"
	"strings"

	"aitools/internal/config"
	"aitools/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init connects to Postgres, migrates the schema and seeds categories.
func Init(cfg *config.Config) (*gorm.DB, error) {
	database, err := Open(postgres.Open(cfg.DatabaseURL), LogLevel(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	log.Println("Database connection established")

	if err := Migrate(database); err != nil {
		return nil, err
	}
	log.Println("Database migration completed")

	if err := SeedCategories(database); err != nil {
		return nil, err
	}

	return database, nil
}

// Open opens a gorm handle with unique-violation errors translated to
// gorm.ErrDuplicatedKey.
func Open(dialector gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
}

// LogLevel maps the log_level setting onto gorm's logger levels.
func LogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info", "debug":
		return logger.Info
	default:
		return logger.Warn
	}
}

func Migrate(database *gorm.DB) error {
	err := database.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Tool{},
		&models.Submission{},
		&models.Bookmark{},
		&models.Upvote{},
		&models.Review{},
		&models.ToolClick{},
		&models.PageVisit{},
		&models.BlogPost{},
		&models.NewsletterSubscriber{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

var defaultCategories = []models.Category{
	{Name: "Chatbots", Slug: string(models.CategoryChatbot), Description: "Conversational assistants", Icon: "💬"},
	{Name: "Image", Slug: string(models.CategoryImage), Description: "Image generation and editing", Icon: "🎨"},
	{Name: "Video", Slug: string(models.CategoryVideo), Description: "Video creation and editing", Icon: "🎬"},
	{Name: "Audio", Slug: string(models.CategoryAudio), Description: "Voice, music and transcription", Icon: "🎧"},
	{Name: "Code", Slug: string(models.CategoryCode), Description: "Coding assistants and dev tools", Icon: "💻"},
	{Name: "Productivity", Slug: string(models.CategoryProductivity), Description: "Work faster", Icon: "⚡"},
	{Name: "Writing", Slug: string(models.CategoryWriting), Description: "Copy, docs and editing", Icon: "✍️"},
	{Name: "Research", Slug: string(models.CategoryResearch), Description: "Search and analysis", Icon: "🔬"},
	{Name: "Other", Slug: string(models.CategoryOther), Description: "Everything else", Icon: "🧩"},
}

// SeedCategories inserts the default categories into an empty table.
func SeedCategories(database *gorm.DB) error {
	var count int64
	if err := database.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Categories already seeded, skipping")
		return nil
	}

	for _, category := range defaultCategories {
		category := category
		if err := database.Create(&category).Error; err != nil {
			log.Printf("Failed to create category %s: %v", category.Slug, err)
		}
	}
	log.Println("Initial categories created successfully")
	return nil
}
