package server

import (
	"io"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListBlogs handles GET /api/blogs. Unauthenticated listing only shows
// published posts unless a status filter is given.
func (s *Server) ListBlogs(c *fiber.Ctx) error {
	q := parseBlogQuery(c)

	blogs, meta, err := s.blogService.List(c.Context(), q)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondPage(c, "Blogs retrieved", blogs, meta)
}

// SearchBlogs handles GET /api/blogs/search. The same pipeline as ListBlogs
// with a required query term. Search is always public: the status filter is
// pinned to published regardless of what the caller sends, so drafts stay
// reachable only through my-blogs.
func (s *Server) SearchBlogs(c *fiber.Ctx) error {
	q := parseBlogQuery(c)
	q.Search = c.Query("q", q.Search)
	q.Status = models.StatusPublished
	if q.Search == "" {
		return models.RespondWithError(c,
			models.NewValidationError("Search query is required", map[string][]string{
				"q": {"cannot be blank"},
			}))
	}

	blogs, meta, err := s.blogService.List(c.Context(), q)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondPage(c, "Search results", blogs, meta)
}

// MyBlogs handles GET /api/blogs/my-blogs. Includes the caller's drafts and
// archived posts.
func (s *Server) MyBlogs(c *fiber.Ctx) error {
	q := parseBlogQuery(c)

	blogs, meta, err := s.blogService.Mine(c.Context(), s.currentUser(c), q)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondPage(c, "Your blogs retrieved", blogs, meta)
}

// GetBlog handles GET /api/blogs/:id and counts a view.
func (s *Server) GetBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	blog, err := s.blogService.Get(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Blog retrieved", blog)
}

// GetBlogBySlug handles GET /api/blogs/slug/:slug and counts a view.
func (s *Server) GetBlogBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	if slug == "" {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid slug", nil))
	}

	blog, err := s.blogService.GetBySlug(c.Context(), slug)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Blog retrieved", blog)
}

// CreateBlog handles POST /api/blogs
func (s *Server) CreateBlog(c *fiber.Ctx) error {
	var in service.CreateBlogInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body", nil))
	}

	blog, err := s.blogService.Create(c.Context(), s.currentUser(c), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "Blog created", blog)
}

// UpdateBlog handles PUT /api/blogs/:id with a partial patch body.
func (s *Server) UpdateBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var patch models.BlogPatch
	if err := c.BodyParser(&patch); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body", nil))
	}

	blog, err := s.blogService.Update(c.Context(), s.currentUser(c), id, patch)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Blog updated", blog)
}

// DeleteBlog handles DELETE /api/blogs/:id
func (s *Server) DeleteBlog(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.blogService.Delete(c.Context(), s.currentUser(c), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Blog deleted", nil)
}

// UploadThumbnail handles POST /api/blogs/:id/thumbnail. The stored URL is
// written onto the blog, subject to the usual ownership check.
func (s *Server) UploadThumbnail(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	upload, err := s.readUpload(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	result, err := s.imageService.Save(*upload, "thumbnail")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	url := result.URL
	if result.ThumbnailURL != "" {
		url = result.ThumbnailURL
	}
	blog, err := s.blogService.Update(c.Context(), s.currentUser(c), id, models.BlogPatch{
		Thumbnail: &url,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Thumbnail uploaded", fiber.Map{
		"blog":   blog,
		"upload": result,
	})
}

// UploadBlogImage stores an image without attaching it to a blog, for use
// inside post content. The response carries the public URLs.
func (s *Server) UploadBlogImage(c *fiber.Ctx) error {
	upload, err := s.readUpload(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	result, err := s.imageService.Save(*upload, "blog")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "Image uploaded", result)
}

// readUpload pulls the multipart "file" field into memory, bounded by the
// configured upload limit.
func (s *Server) readUpload(c *fiber.Ctx) (*service.UploadInput, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, models.NewValidationError("A file is required", map[string][]string{
			"file": {"cannot be blank"},
		})
	}
	if fileHeader.Size > int64(s.config.UploadMaxMB)<<20 {
		return nil, models.NewValidationError("File exceeds the upload limit", map[string][]string{
			"file": {"is too large"},
		})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &service.UploadInput{Filename: fileHeader.Filename, Content: content}, nil
}
