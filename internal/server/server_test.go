package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/seed"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnvelope mirrors the response envelope for assertions.
type testEnvelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Meta    *models.Meta        `json:"meta"`
	Errors  map[string][]string `json:"errors"`
}

// newTestServer builds a Fiber app over a fresh in-memory database with the
// demo dataset loaded. Redis is absent; rate limits fail open.
func newTestServer(t *testing.T) (*fiber.App, *Server, *gorm.DB) {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Category{}, &models.Blog{}, &models.RefreshToken{}))
	require.NoError(t, seed.Seed(db, seed.Options{}))

	cfg := &config.Config{
		Port:                 "0",
		Env:                  "test",
		JWTSecret:            "integration-test-secret",
		AccessTokenTTLMin:    60,
		RefreshTokenTTLHours: 24,
		UploadDir:            t.TempDir(),
		UploadMaxMB:          5,
	}

	srv := NewServerWithDeps(cfg, db, nil)
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondWithError(c, err)
		},
	})
	srv.SetupRoutes(app)
	return app, srv, db
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, testEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var env testEnvelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)
	}
	return resp, env
}

// login returns the access token for a seeded demo account.
func login(t *testing.T, app *fiber.App, email string) (string, string) {
	t.Helper()
	resp, env := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": seed.DemoPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	return payload.AccessToken, payload.RefreshToken
}
