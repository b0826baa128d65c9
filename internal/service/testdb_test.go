package service

import (
	"fmt"
	"testing"

	"inkwell/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrapping sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Blog{}, &models.RefreshToken{}); err != nil {
		t.Fatalf("migrating test schema: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name, email, role string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email, Password: "x", Role: role}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("creating test user: %v", err)
	}
	return user
}
