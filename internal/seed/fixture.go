package seed

import (
	"fmt"
	"os"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Fixture is a YAML-defined dataset loaded on top of (or instead of) the
// built-in demo data.
type Fixture struct {
	Users []struct {
		Name     string `yaml:"name"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Bio      string `yaml:"bio"`
		Role     string `yaml:"role"`
	} `yaml:"users"`
	Categories []struct {
		Name string `yaml:"name"`
		Slug string `yaml:"slug"`
	} `yaml:"categories"`
	Blogs []struct {
		Title    string   `yaml:"title"`
		Excerpt  string   `yaml:"excerpt"`
		Content  string   `yaml:"content"`
		Author   string   `yaml:"author"`   // user email
		Category string   `yaml:"category"` // category slug
		Tags     []string `yaml:"tags"`
		Status   string   `yaml:"status"`
		Views    int64    `yaml:"views"`
	} `yaml:"blogs"`
}

// LoadFixture parses a fixture file and inserts its rows. Blogs reference
// users by email and categories by slug.
func LoadFixture(db *gorm.DB, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading fixture: %w", err)
	}

	var fx Fixture
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return fmt.Errorf("parsing fixture: %w", err)
	}

	usersByEmail := make(map[string]*models.User, len(fx.Users))
	for _, u := range fx.Users {
		password := u.Password
		if password == "" {
			password = DemoPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		role := u.Role
		if role == "" {
			role = models.RoleUser
		}
		user := &models.User{Name: u.Name, Email: u.Email, Password: string(hash), Bio: u.Bio, Role: role}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("fixture user %s: %w", u.Email, err)
		}
		usersByEmail[u.Email] = user
	}

	categoriesBySlug := make(map[string]*models.Category, len(fx.Categories))
	for _, c := range fx.Categories {
		slug := c.Slug
		if slug == "" {
			slug = service.Slugify(c.Name)
		}
		category := &models.Category{Name: c.Name, Slug: slug}
		if err := db.Create(category).Error; err != nil {
			return fmt.Errorf("fixture category %s: %w", slug, err)
		}
		categoriesBySlug[slug] = category
	}

	for _, b := range fx.Blogs {
		author, ok := usersByEmail[b.Author]
		if !ok {
			return fmt.Errorf("fixture blog %q references unknown author %q", b.Title, b.Author)
		}
		status := b.Status
		if status == "" {
			status = models.StatusDraft
		}
		tags := b.Tags
		if tags == nil {
			tags = []string{}
		}

		blog := &models.Blog{
			Title:    b.Title,
			Excerpt:  b.Excerpt,
			Content:  b.Content,
			AuthorID: author.ID,
			Tags:     tags,
			Status:   status,
			Views:    b.Views,
		}
		if b.Category != "" {
			category, ok := categoriesBySlug[b.Category]
			if !ok {
				return fmt.Errorf("fixture blog %q references unknown category %q", b.Title, b.Category)
			}
			blog.CategoryID = &category.ID
		}

		if err := db.Create(blog).Error; err != nil {
			return fmt.Errorf("fixture blog %q: %w", b.Title, err)
		}
		if err := db.Model(blog).UpdateColumn("slug", service.SlugForID(blog.Title, blog.ID)).Error; err != nil {
			return err
		}
	}
	return nil
}
