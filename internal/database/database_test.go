package database

import (
	"fmt"
	"testing"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		DBDriver: "sqlite",
		DBDSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}
}

func TestConnectSQLite(t *testing.T) {
	db, err := Connect(testConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, sqlDB.Ping())

	for _, model := range []any{&models.User{}, &models.Category{}, &models.Blog{}, &models.RefreshToken{}} {
		assert.True(t, db.Migrator().HasTable(model), "migration creates table for %T", model)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := Connect(testConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestSlogGormLoggerLogMode(t *testing.T) {
	base := &slogGormLogger{
		Config: logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Warn,
		},
	}

	changed := base.LogMode(logger.Silent)
	require.IsType(t, &slogGormLogger{}, changed)
	assert.Equal(t, logger.Silent, changed.(*slogGormLogger).Config.LogLevel)
	assert.Equal(t, logger.Warn, base.Config.LogLevel, "original logger is unchanged")
}
