package repository

import (
	"context"
	"strings"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// sortColumns whitelists the fields a caller may sort blogs by. An
// unknown field falls back to the default rather than failing.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      "title",
	"views":      "views",
}

const defaultSortColumn = "created_at"

// BlogRepository defines the interface for blog data operations.
type BlogRepository interface {
	// Create persists the blog and derives its slug from the assigned id
	// in the same transaction.
	Create(ctx context.Context, blog *models.Blog, slugFor func(id uint) string) error
	GetByID(ctx context.Context, id uint) (*models.Blog, error)
	GetBySlug(ctx context.Context, slug string) (*models.Blog, error)
	// List applies filter, search, sort and pagination in that fixed
	// order and returns the page plus the post-filter total.
	List(ctx context.Context, q models.BlogQuery) ([]*models.Blog, int64, error)
	Update(ctx context.Context, blog *models.Blog) error
	Delete(ctx context.Context, id uint) error
	// IncrementViews adds exactly one view. Returns NotFound when the
	// blog does not exist.
	IncrementViews(ctx context.Context, id uint) error
}

type blogRepository struct {
	db *gorm.DB
}

// NewBlogRepository creates a new blog repository.
func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) Create(ctx context.Context, blog *models.Blog, slugFor func(id uint) string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(blog).Error; err != nil {
			return err
		}
		blog.Slug = slugFor(blog.ID)
		return tx.Model(blog).Update("slug", blog.Slug).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *blogRepository) GetByID(ctx context.Context, id uint) (*models.Blog, error) {
	var blog models.Blog
	if err := r.db.WithContext(ctx).First(&blog, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.NewNotFoundError("Blog", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &blog, nil
}

func (r *blogRepository) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	var blog models.Blog
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&blog).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, models.NewNotFoundError("Blog", slug)
		}
		return nil, models.NewInternalError(err)
	}
	return &blog, nil
}

// filtered builds the query for everything up to and including search.
// Order matters: status filter, scalar filters, then search.
func (r *blogRepository) filtered(ctx context.Context, q models.BlogQuery) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&models.Blog{})

	switch {
	case q.Status != "":
		tx = tx.Where("status = ?", q.Status)
	case !q.AllStatuses:
		// Drafts and archived posts are hidden from public listings.
		tx = tx.Where("status = ?", models.StatusPublished)
	}

	if q.CategoryID != nil {
		tx = tx.Where("category_id = ?", *q.CategoryID)
	}
	if q.AuthorID != nil {
		tx = tx.Where("author_id = ?", *q.AuthorID)
	}

	if q.Search != "" {
		term := "%" + strings.ToLower(q.Search) + "%"
		tx = tx.Where(
			"LOWER(title) LIKE ? OR LOWER(excerpt) LIKE ? OR LOWER(content) LIKE ?",
			term, term, term,
		)
	}

	return tx
}

func (r *blogRepository) List(ctx context.Context, q models.BlogQuery) ([]*models.Blog, int64, error) {
	var total int64
	if err := r.filtered(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = defaultSortColumn
	}
	direction := "DESC"
	if strings.EqualFold(q.SortOrder, models.SortAsc) {
		direction = "ASC"
	}

	var blogs []*models.Blog
	err := r.filtered(ctx, q).
		// The id tie-break keeps equal sort keys in insertion order, so
		// pagination stays deterministic across pages.
		Order(column + " " + direction).
		Order("id ASC").
		Limit(q.PerPage).
		Offset((q.Page - 1) * q.PerPage).
		Find(&blogs).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	return blogs, total, nil
}

func (r *blogRepository) Update(ctx context.Context, blog *models.Blog) error {
	if err := r.db.WithContext(ctx).Save(blog).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *blogRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Blog{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Blog", id)
	}
	return nil
}

func (r *blogRepository) IncrementViews(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Blog{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Blog", id)
	}
	return nil
}
