package repository

import (
	"context"
	"errors"
	"time"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// errTokenConsumed signals that the presented refresh credential was
// unknown, expired or already rotated.
var errTokenConsumed = errors.New("refresh token not found")

// TokenRepository manages refresh credential records.
type TokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	// Rotate atomically consumes oldToken and installs next in its
	// place. Exactly one record is consumed per call; a second rotation
	// with the same oldToken fails with InvalidRefreshToken.
	Rotate(ctx context.Context, oldToken string, next *models.RefreshToken) error
	DeleteAllForUser(ctx context.Context, userID uint) error
}

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new refresh token repository.
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tokenRepository) Rotate(ctx context.Context, oldToken string, next *models.RefreshToken) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record models.RefreshToken
		if err := tx.Where("token = ?", oldToken).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errTokenConsumed
			}
			return err
		}
		if record.Expired(time.Now()) {
			// Expired credentials are removed rather than left behind.
			if err := tx.Delete(&record).Error; err != nil {
				return err
			}
			return errTokenConsumed
		}

		res := tx.Where("token = ?", oldToken).Delete(&models.RefreshToken{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return errTokenConsumed
		}

		next.UserID = record.UserID
		return tx.Create(next).Error
	})

	if errors.Is(err, errTokenConsumed) {
		return models.NewInvalidRefreshTokenError()
	}
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *tokenRepository) DeleteAllForUser(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
