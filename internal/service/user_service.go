package service

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// ProfilePatch carries the updatable profile fields. Nil means unchanged.
type ProfilePatch struct {
	Name *string `json:"name"`
	Bio  *string `json:"bio"`
}

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// List returns a page of users. Admin only.
func (s *UserService) List(ctx context.Context, caller *models.User, page, perPage int) ([]*models.User, models.Meta, error) {
	if !caller.IsAdmin() {
		return nil, models.Meta{}, models.NewForbiddenError("Admin access required")
	}
	if page < 1 {
		page = 1
	}
	if perPage <= 0 {
		return nil, models.Meta{}, models.NewValidationError("per_page must be a positive integer", map[string][]string{
			"per_page": {"must be greater than 0"},
		})
	}

	users, total, err := s.users.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, models.Meta{}, err
	}
	return users, models.NewMeta(page, perPage, total), nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uint, patch ProfilePatch) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, models.NewValidationError("Name cannot be empty", map[string][]string{
				"name": {"cannot be blank"},
			})
		}
		user.Name = *patch.Name
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetAvatar stores the uploaded avatar URL on the profile.
func (s *UserService) SetAvatar(ctx context.Context, userID uint, url string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Avatar = url
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
