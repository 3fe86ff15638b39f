package services

import (
	"context"
	"testing"
	"time"

	"aitools/internal/config"
	"aitools/internal/db"
	"aitools/internal/models"
	"aitools/internal/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a fresh in-memory database with the full schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := db.Open(sqlite.Open(":memory:"), logger.Silent)
	require.NoError(t, err)

	// every connection to :memory: is a separate database
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(database))
	return database
}

func newToolService(t *testing.T, database *gorm.DB) *ToolService {
	t.Helper()
	cache, err := utils.NewCache[[]models.Tool](16)
	require.NoError(t, err)
	return NewToolService(database, cache, time.Minute)
}

func disabledMailer() *MailService {
	return NewMailService(&config.Config{TemplatesDir: "testdata"})
}

func seedTool(t *testing.T, database *gorm.DB, name string, mutate ...func(*models.Tool)) *models.Tool {
	t.Helper()
	tool := &models.Tool{
		Name:        name,
		Description: name + " does things",
		Category:    models.CategoryCode,
		Link:        "https://example.com/" + name,
		Pricing:     models.PricingFree,
	}
	for _, m := range mutate {
		m(tool)
	}
	require.NoError(t, database.Create(tool).Error)
	return tool
}

func seedUser(t *testing.T, database *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Username: email, Email: email, Password: "x"}
	require.NoError(t, database.Create(user).Error)
	return user
}

var ctx = context.Background()
