package models

import (
	"time"
)

// RefreshToken associates a user with an opaque refresh credential.
// One record per login session; consumed and replaced atomically on
// every refresh, removed on logout.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"-"`
}

// Expired reports whether the credential is past its lifetime.
func (t *RefreshToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
