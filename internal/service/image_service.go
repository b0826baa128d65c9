package service

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	ThumbnailMaxWidth = 480
	WebPQuality       = 75
)

// UploadInput is a raw multipart file read into memory.
type UploadInput struct {
	Filename string
	Content  []byte
}

// UploadResult describes a stored image and its generated thumbnail.
type UploadResult struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Filename     string `json:"filename"`
	Size         int64  `json:"size"`
}

type ImageService struct {
	uploadDir string
	maxBytes  int64
	baseURL   string
}

func NewImageService(uploadDir string, maxMB int, baseURL string) *ImageService {
	return &ImageService{
		uploadDir: uploadDir,
		maxBytes:  int64(maxMB) << 20,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// extByFormat maps image.Decode format names to stored file extensions.
var extByFormat = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
}

// Save validates, stores and thumbnails an uploaded image. The file type is
// determined by decoding the content, not by the client-supplied name.
func (s *ImageService) Save(in UploadInput, kind string) (*UploadResult, error) {
	if int64(len(in.Content)) > s.maxBytes {
		return nil, models.NewValidationError(
			fmt.Sprintf("File exceeds the %d MB upload limit", s.maxBytes>>20),
			map[string][]string{"file": {"is too large"}},
		)
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("Uploaded file is empty", map[string][]string{
			"file": {"cannot be empty"},
		})
	}

	img, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Unsupported image type", map[string][]string{
			"file": {"must be a jpeg, png, gif or webp image"},
		})
	}
	ext, ok := extByFormat[format]
	if !ok {
		return nil, models.NewValidationError("Unsupported image type", map[string][]string{
			"file": {"must be a jpeg, png, gif or webp image"},
		})
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return nil, models.NewInternalError(err)
	}

	name := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(s.uploadDir, name), in.Content, 0o644); err != nil {
		return nil, models.NewInternalError(err)
	}

	result := &UploadResult{
		URL:      s.publicURL(name),
		Filename: name,
		Size:     int64(len(in.Content)),
	}

	thumbName, thumbErr := s.writeThumbnail(img, strings.TrimSuffix(name, ext))
	if thumbErr != nil {
		// the original is stored, a failed thumbnail is not fatal
		middleware.Logger.Warn("thumbnail generation failed", "file", name, "error", thumbErr)
	} else {
		result.ThumbnailURL = s.publicURL(thumbName)
	}

	observability.UploadsTotal.WithLabelValues(kind).Inc()
	return result, nil
}

// writeThumbnail scales the image down to ThumbnailMaxWidth and stores it
// as WebP next to the original.
func (s *ImageService) writeThumbnail(src image.Image, baseName string) (string, error) {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > ThumbnailMaxWidth {
		height = height * ThumbnailMaxWidth / width
		if height < 1 {
			height = 1
		}
		width = ThumbnailMaxWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, dst, &webp.Options{Quality: WebPQuality}); err != nil {
		return "", err
	}

	name := baseName + "_thumb.webp"
	if err := os.WriteFile(filepath.Join(s.uploadDir, name), buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return name, nil
}

func (s *ImageService) publicURL(name string) string {
	return s.baseURL + "/api/uploads/" + name
}
