package service

import (
	"context"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type CreateBlogInput struct {
	Title      string   `json:"title" validate:"required,max=300"`
	Content    string   `json:"content" validate:"required"`
	Excerpt    string   `json:"excerpt" validate:"max=500"`
	Thumbnail  string   `json:"thumbnail"`
	CategoryID *uint    `json:"category_id"`
	Tags       []string `json:"tags"`
	Status     string   `json:"status" validate:"omitempty,oneof=draft published archived"`
}

type BlogService struct {
	blogs      repository.BlogRepository
	users      repository.UserRepository
	categories repository.CategoryRepository
}

func NewBlogService(blogs repository.BlogRepository, users repository.UserRepository, categories repository.CategoryRepository) *BlogService {
	return &BlogService{blogs: blogs, users: users, categories: categories}
}

// List runs the filter, search, sort and paginate pipeline. Page numbers
// past the end return an empty page with accurate meta, not an error.
func (s *BlogService) List(ctx context.Context, q models.BlogQuery) ([]*models.Blog, models.Meta, error) {
	start := time.Now()
	span, ctx := observability.NewSpan(ctx, "BlogService.List")
	defer span.End()
	span.AddAttributes(
		attribute.Int("query.page", q.Page),
		attribute.Int("query.per_page", q.PerPage),
		attribute.String("query.status", q.Status),
		attribute.Bool("query.has_search", q.Search != ""),
	)

	if q.PerPage <= 0 {
		return nil, models.Meta{}, models.NewValidationError("per_page must be a positive integer", map[string][]string{
			"per_page": {"must be greater than 0"},
		})
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.SortOrder != models.SortAsc {
		q.SortOrder = models.SortDesc
	}
	if q.Status != "" && q.Status != models.StatusDraft && q.Status != models.StatusPublished && q.Status != models.StatusArchived {
		return nil, models.Meta{}, models.NewValidationError("Invalid status filter", map[string][]string{
			"status": {"must be one of draft, published, archived"},
		})
	}

	blogs, total, err := s.blogs.List(ctx, q)
	if err != nil {
		span.SetError(err)
		return nil, models.Meta{}, err
	}
	if err := s.enrich(ctx, blogs); err != nil {
		span.SetError(err)
		return nil, models.Meta{}, err
	}

	observability.ObserveListQuery(start)
	return blogs, models.NewMeta(q.Page, q.PerPage, total), nil
}

// Mine lists the caller's own blogs. Drafts and archived posts are included
// unless the caller narrows to a single status.
func (s *BlogService) Mine(ctx context.Context, caller *models.User, q models.BlogQuery) ([]*models.Blog, models.Meta, error) {
	q.AuthorID = &caller.ID
	q.AllStatuses = q.Status == ""
	return s.List(ctx, q)
}

// Get fetches a blog by ID and counts the view.
func (s *BlogService) Get(ctx context.Context, id uint) (*models.Blog, error) {
	if err := s.blogs.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	observability.BlogViewsTotal.Inc()

	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.enrich(ctx, []*models.Blog{blog}); err != nil {
		return nil, err
	}
	return blog, nil
}

// GetBySlug fetches a blog by its slug and counts the view.
func (s *BlogService) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	blog, err := s.blogs.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.blogs.IncrementViews(ctx, blog.ID); err != nil {
		return nil, err
	}
	observability.BlogViewsTotal.Inc()
	blog.Views++

	if err := s.enrich(ctx, []*models.Blog{blog}); err != nil {
		return nil, err
	}
	return blog, nil
}

func (s *BlogService) Create(ctx context.Context, caller *models.User, in CreateBlogInput) (*models.Blog, error) {
	if fields := validation.Struct(in); fields != nil {
		return nil, models.NewValidationError("Validation failed", fields)
	}

	status := in.Status
	if status == "" {
		status = models.StatusDraft
	}
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	blog := &models.Blog{
		Title:      in.Title,
		Excerpt:    in.Excerpt,
		Content:    in.Content,
		Thumbnail:  in.Thumbnail,
		AuthorID:   caller.ID,
		CategoryID: in.CategoryID,
		Tags:       tags,
		Status:     status,
		Views:      0,
	}
	err := s.blogs.Create(ctx, blog, func(id uint) string {
		return SlugForID(in.Title, id)
	})
	if err != nil {
		return nil, err
	}
	observability.BlogMutationsTotal.WithLabelValues("create").Inc()

	if err := s.enrich(ctx, []*models.Blog{blog}); err != nil {
		return nil, err
	}
	return blog, nil
}

// Update applies a partial patch. Fields absent from the patch keep their
// current value; a title change regenerates the slug.
func (s *BlogService) Update(ctx context.Context, caller *models.User, id uint, patch models.BlogPatch) (*models.Blog, error) {
	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanModifyBlog(caller, blog) {
		return nil, models.NewForbiddenError("You do not have permission to edit this blog")
	}

	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, models.NewValidationError("Title cannot be empty", map[string][]string{
				"title": {"cannot be blank"},
			})
		}
		blog.Title = *patch.Title
		blog.Slug = SlugForID(blog.Title, blog.ID)
	}
	if patch.Content != nil {
		blog.Content = *patch.Content
	}
	if patch.Excerpt != nil {
		blog.Excerpt = *patch.Excerpt
	}
	if patch.Thumbnail != nil {
		blog.Thumbnail = *patch.Thumbnail
	}
	if patch.CategoryID != nil {
		if err := s.checkCategory(ctx, patch.CategoryID); err != nil {
			return nil, err
		}
		blog.CategoryID = patch.CategoryID
	}
	if patch.Tags != nil {
		blog.Tags = *patch.Tags
	}
	if patch.Status != nil {
		switch *patch.Status {
		case models.StatusDraft, models.StatusPublished, models.StatusArchived:
			blog.Status = *patch.Status
		default:
			return nil, models.NewValidationError("Invalid status", map[string][]string{
				"status": {"must be one of draft, published, archived"},
			})
		}
	}

	if err := s.blogs.Update(ctx, blog); err != nil {
		return nil, err
	}
	observability.BlogMutationsTotal.WithLabelValues("update").Inc()

	if err := s.enrich(ctx, []*models.Blog{blog}); err != nil {
		return nil, err
	}
	return blog, nil
}

func (s *BlogService) Delete(ctx context.Context, caller *models.User, id uint) error {
	blog, err := s.blogs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanModifyBlog(caller, blog) {
		return models.NewForbiddenError("You do not have permission to delete this blog")
	}
	if err := s.blogs.Delete(ctx, id); err != nil {
		return err
	}
	observability.BlogMutationsTotal.WithLabelValues("delete").Inc()
	return nil
}

func (s *BlogService) checkCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	found, err := s.categories.GetByIDs(ctx, []uint{*id})
	if err != nil {
		return err
	}
	if _, ok := found[*id]; !ok {
		return models.NewValidationError("Unknown category", map[string][]string{
			"category_id": {"does not exist"},
		})
	}
	return nil
}

// enrich attaches author summaries and categories in two batched lookups.
func (s *BlogService) enrich(ctx context.Context, blogs []*models.Blog) error {
	if len(blogs) == 0 {
		return nil
	}

	authorIDs := make([]uint, 0, len(blogs))
	categoryIDs := make([]uint, 0, len(blogs))
	seenAuthors := make(map[uint]bool)
	seenCategories := make(map[uint]bool)
	for _, b := range blogs {
		if !seenAuthors[b.AuthorID] {
			seenAuthors[b.AuthorID] = true
			authorIDs = append(authorIDs, b.AuthorID)
		}
		if b.CategoryID != nil && !seenCategories[*b.CategoryID] {
			seenCategories[*b.CategoryID] = true
			categoryIDs = append(categoryIDs, *b.CategoryID)
		}
	}

	authors, err := s.users.GetByIDs(ctx, authorIDs)
	if err != nil {
		return err
	}
	categories := map[uint]*models.Category{}
	if len(categoryIDs) > 0 {
		categories, err = s.categories.GetByIDs(ctx, categoryIDs)
		if err != nil {
			return err
		}
	}

	for _, b := range blogs {
		if author, ok := authors[b.AuthorID]; ok {
			b.Author = author.Summary()
		}
		if b.CategoryID != nil {
			if cat, ok := categories[*b.CategoryID]; ok {
				b.Category = cat
			}
		}
	}
	return nil
}
