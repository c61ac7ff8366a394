package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eduverse/eduverse-api/database"
	"github.com/eduverse/eduverse-api/model"
)

// openTestDB returns an isolated in-memory database with the full schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// A shared-cache memory DB disappears when its last connection closes.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	return db
}

// createTestUser registers an account through the real service path.
func createTestUser(t *testing.T, db *gorm.DB, username string, role model.Role) *model.User {
	t.Helper()

	user, err := NewAccountService(db).Register(context.Background(), RegisterInput{
		Username: username,
		Password: "password123",
		FullName: "Test " + username,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}
