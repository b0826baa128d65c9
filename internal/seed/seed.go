// Package seed provides database seeding utilities for development and
// testing.
package seed

import (
	"fmt"
	"log"
	"time"

	"inkwell/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	ExtraBlogs  int
	ShouldClean bool
}

// DemoPassword is the plaintext password for every seeded account.
const DemoPassword = "password"

func mustTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(fmt.Sprintf("bad seed timestamp %q: %v", value, err))
	}
	return t
}

func demoUsers(hash string) []*models.User {
	return []*models.User{
		{
			Name:     "Admin",
			Email:    "admin@example.com",
			Password: hash,
			Bio:      "Quản trị viên hệ thống",
			Role:     models.RoleAdmin,
		},
		{
			Name:     "Nguyễn Văn A",
			Email:    "user@example.com",
			Password: hash,
			Bio:      "Người dùng thông thường",
			Role:     models.RoleUser,
		},
	}
}

func demoCategories() []*models.Category {
	return []*models.Category{
		{Name: "Lập trình", Slug: "lap-trinh"},
		{Name: "Công nghệ", Slug: "cong-nghe"},
		{Name: "Lifestyle", Slug: "lifestyle"},
		{Name: "Học tập", Slug: "hoc-tap"},
	}
}

func demoBlogs(users []*models.User, categories []*models.Category) []*models.Blog {
	cat := func(i int) *uint { return &categories[i].ID }
	return []*models.Blog{
		{
			Title:      "Bắt đầu với Vue 3 - Hướng dẫn cho người mới",
			Slug:       "bat-dau-voi-vue-3",
			Excerpt:    "Hướng dẫn chi tiết cách bắt đầu với Vue 3, từ cài đặt đến tạo ứng dụng đầu tiên.",
			Content:    "<h2>Giới thiệu Vue 3</h2><p>Vue 3 là phiên bản mới nhất của Vue.js với nhiều cải tiến về hiệu năng.</p>",
			Thumbnail:  "https://picsum.photos/seed/vue3/800/400",
			AuthorID:   users[0].ID,
			CategoryID: cat(0),
			Tags:       []string{"vue", "javascript", "frontend"},
			Status:     models.StatusPublished,
			Views:      150,
			CreatedAt:  mustTime("2024-01-10T10:00:00Z"),
			UpdatedAt:  mustTime("2024-01-10T10:00:00Z"),
		},
		{
			Title:      "Tìm hiểu Pinia - State Management cho Vue 3",
			Slug:       "tim-hieu-pinia",
			Excerpt:    "Pinia là thư viện quản lý state chính thức cho Vue 3, thay thế Vuex.",
			Content:    "<h2>Pinia là gì?</h2><p>Pinia là thư viện state management nhẹ và dễ sử dụng.</p>",
			Thumbnail:  "https://picsum.photos/seed/pinia/800/400",
			AuthorID:   users[0].ID,
			CategoryID: cat(0),
			Tags:       []string{"vue", "pinia", "state-management"},
			Status:     models.StatusPublished,
			Views:      98,
			CreatedAt:  mustTime("2024-01-12T14:30:00Z"),
			UpdatedAt:  mustTime("2024-01-12T14:30:00Z"),
		},
		{
			Title:      "Thiết kế UI đẹp với TailwindCSS",
			Slug:       "thiet-ke-ui-tailwindcss",
			Excerpt:    "Hướng dẫn sử dụng TailwindCSS để tạo giao diện đẹp và responsive.",
			Content:    "<h2>TailwindCSS là gì?</h2><p>TailwindCSS là utility-first CSS framework giúp xây dựng giao diện nhanh chóng.</p>",
			Thumbnail:  "https://picsum.photos/seed/tailwind/800/400",
			AuthorID:   users[1].ID,
			CategoryID: cat(1),
			Tags:       []string{"css", "tailwind", "ui"},
			Status:     models.StatusPublished,
			Views:      75,
			CreatedAt:  mustTime("2024-01-14T09:15:00Z"),
			UpdatedAt:  mustTime("2024-01-14T09:15:00Z"),
		},
		{
			Title:      "Học lập trình hiệu quả với phương pháp Pomodoro",
			Slug:       "hoc-lap-trinh-pomodoro",
			Excerpt:    "Áp dụng kỹ thuật Pomodoro để học lập trình hiệu quả hơn.",
			Content:    "<h2>Pomodoro là gì?</h2><p>Pomodoro là kỹ thuật quản lý thời gian với chu kỳ 25 phút làm việc, 5 phút nghỉ.</p>",
			Thumbnail:  "https://picsum.photos/seed/pomodoro/800/400",
			AuthorID:   users[1].ID,
			CategoryID: cat(3),
			Tags:       []string{"productivity", "learning"},
			Status:     models.StatusPublished,
			Views:      120,
			CreatedAt:  mustTime("2024-01-15T16:00:00Z"),
			UpdatedAt:  mustTime("2024-01-15T16:00:00Z"),
		},
		{
			Title:      "Bài viết nháp - Đang soạn thảo",
			Slug:       "bai-viet-nhap",
			Excerpt:    "Đây là bài viết nháp chưa hoàn thành.",
			Content:    "<p>Nội dung đang được soạn thảo...</p>",
			AuthorID:   users[0].ID,
			CategoryID: cat(0),
			Tags:       []string{},
			Status:     models.StatusDraft,
			Views:      0,
			CreatedAt:  mustTime("2024-01-16T08:00:00Z"),
			UpdatedAt:  mustTime("2024-01-16T08:00:00Z"),
		},
	}
}

// Seed populates the database with the demo dataset: two users, four
// categories and five blogs, plus optional generated extras.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("seeding demo data (extra blogs: %d)", opts.ExtraBlogs)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("clearing data: %w", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := demoUsers(string(hash))
	for _, u := range users {
		if err := db.Create(u).Error; err != nil {
			return fmt.Errorf("seeding user %s: %w", u.Email, err)
		}
	}

	categories := demoCategories()
	for _, cat := range categories {
		if err := db.Create(cat).Error; err != nil {
			return fmt.Errorf("seeding category %s: %w", cat.Slug, err)
		}
	}

	for _, blog := range demoBlogs(users, categories) {
		if err := db.Create(blog).Error; err != nil {
			return fmt.Errorf("seeding blog %s: %w", blog.Slug, err)
		}
	}

	if opts.ExtraBlogs > 0 {
		factory := NewFactory(db)
		if err := factory.CreateBlogs(opts.ExtraBlogs, users, categories); err != nil {
			return fmt.Errorf("seeding extra blogs: %w", err)
		}
	}

	log.Println("seeding complete")
	return nil
}

// clearData deletes all rows in dependency order.
func clearData(db *gorm.DB) error {
	for _, model := range []any{
		&models.RefreshToken{},
		&models.Blog{},
		&models.Category{},
		&models.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
