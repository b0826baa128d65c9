package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds randomized blog entities for development datasets.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory creates a Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)
	return &Factory{db: db, rng: rand.New(rand.NewSource(seed))}
}

// BuildBlog constructs an unpersisted randomized blog. Roughly one in five
// generated blogs is a draft.
func (f *Factory) BuildBlog(author *models.User, category *models.Category) *models.Blog {
	title := strings.TrimSuffix(gofakeit.Sentence(6), ".")
	status := models.StatusPublished
	views := int64(f.rng.Intn(500))
	if f.rng.Intn(5) == 0 {
		status = models.StatusDraft
		views = 0
	}

	paragraphs := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		paragraphs = append(paragraphs, "<p>"+gofakeit.Paragraph(1, 3, 8, " ")+"</p>")
	}

	blog := &models.Blog{
		Title:     title,
		Excerpt:   gofakeit.Sentence(12),
		Content:   strings.Join(paragraphs, ""),
		Thumbnail: fmt.Sprintf("https://picsum.photos/seed/%s/800/400", gofakeit.UUID()),
		AuthorID:  author.ID,
		Tags:      []string{gofakeit.HackerNoun(), gofakeit.HackerNoun()},
		Status:    status,
		Views:     views,
	}
	if category != nil {
		blog.CategoryID = &category.ID
	}

	// spread creation times over the past 90 days
	daysBack := f.rng.Intn(90)
	hoursBack := f.rng.Intn(24)
	blog.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)
	blog.UpdatedAt = blog.CreatedAt
	return blog
}

// CreateBlogs persists count randomized blogs attributed round-robin to the
// given authors and categories.
func (f *Factory) CreateBlogs(count int, authors []*models.User, categories []*models.Category) error {
	for i := 0; i < count; i++ {
		author := authors[i%len(authors)]
		var category *models.Category
		if len(categories) > 0 {
			category = categories[i%len(categories)]
		}

		blog := f.BuildBlog(author, category)
		if err := f.db.Create(blog).Error; err != nil {
			return err
		}
		blog.Slug = service.SlugForID(blog.Title, blog.ID)
		if err := f.db.Model(blog).UpdateColumn("slug", blog.Slug).Error; err != nil {
			return err
		}
	}
	return nil
}
