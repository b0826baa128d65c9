package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func doUpload(t *testing.T, app *fiber.App, path, token, filename string, content []byte) (*http.Response, testEnvelope) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env testEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestUploadBlogImage(t *testing.T) {
	app, srv, _ := newTestServer(t)
	token, _ := login(t, app, "admin@example.com")

	resp, env := doUpload(t, app, "/api/blogs/upload", token, "cover.png", pngBytes(t, 32, 32))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, env.Success)

	var result struct {
		URL      string `json:"url"`
		Filename string `json:"filename"`
		Size     int64  `json:"size"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Contains(t, result.URL, "/api/uploads/")
	assert.Positive(t, result.Size)

	stored := filepath.Join(srv.config.UploadDir, result.Filename)
	_, err := os.Stat(stored)
	assert.NoError(t, err, "uploaded file lands in the upload directory")
}

func TestUploadBlogImageRequiresAuth(t *testing.T) {
	app, _, _ := newTestServer(t)

	resp, _ := doUpload(t, app, "/api/blogs/upload", "", "cover.png", pngBytes(t, 8, 8))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUploadBlogImageRejectsNonImage(t *testing.T) {
	app, _, _ := newTestServer(t)
	token, _ := login(t, app, "admin@example.com")

	resp, env := doUpload(t, app, "/api/blogs/upload", token, "notes.txt", []byte("plain text"))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestUploadThumbnailAttachesToBlog(t *testing.T) {
	app, _, _ := newTestServer(t)
	token, _ := login(t, app, "admin@example.com")

	resp, env := doUpload(t, app, "/api/blogs/1/thumbnail", token, "thumb.png", pngBytes(t, 600, 400))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)

	var result struct {
		Blog struct {
			ID        uint   `json:"id"`
			Thumbnail string `json:"thumbnail"`
		} `json:"blog"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, uint(1), result.Blog.ID)
	assert.Contains(t, result.Blog.Thumbnail, "/api/uploads/")
}

func TestUploadThumbnailForbiddenForNonOwner(t *testing.T) {
	app, _, _ := newTestServer(t)
	token, _ := login(t, app, "user@example.com")

	// Blog 1 belongs to the admin account.
	resp, _ := doUpload(t, app, "/api/blogs/1/thumbnail", token, "thumb.png", pngBytes(t, 8, 8))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
