package models

import (
	"time"
)

// Blog publication statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Blog represents a single article. Author and Category are resolved at
// response time from the referenced ids and are never persisted.
type Blog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	Slug       string    `gorm:"uniqueIndex" json:"slug"`
	Excerpt    string    `json:"excerpt"`
	Content    string    `gorm:"not null" json:"content"`
	Thumbnail  string    `json:"thumbnail"`
	AuthorID   uint      `gorm:"not null;index" json:"author_id"`
	CategoryID *uint     `gorm:"index" json:"category_id"`
	Tags       []string  `gorm:"serializer:json" json:"tags"`
	Status     string    `gorm:"not null;default:draft;index" json:"status"`
	Views      int64     `gorm:"not null;default:0" json:"views"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Author   *AuthorSummary `gorm:"-" json:"author,omitempty"`
	Category *Category      `gorm:"-" json:"category,omitempty"`
}

// BlogPatch carries a partial update. Only non-nil fields are applied;
// everything else retains its prior value.
type BlogPatch struct {
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	Excerpt    *string   `json:"excerpt"`
	Thumbnail  *string   `json:"thumbnail"`
	CategoryID *uint     `json:"category_id"`
	Tags       *[]string `json:"tags"`
	Status     *string   `json:"status"`
}

// Sort directions accepted by list queries.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// BlogQuery is the server-side mirror of the client Query State: the
// tuple driving a single list request. Zero values mean "absent".
type BlogQuery struct {
	Page      int
	PerPage   int
	Search    string
	SortBy    string
	SortOrder string
	Status    string
	CategoryID *uint
	AuthorID   *uint
	// AllStatuses suppresses the default published-only filter when no
	// explicit status is requested (the my-blogs path).
	AllStatuses bool
}
