package service

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenIssuer   = "inkwell-api"
	TokenAudience = "inkwell-client"
	TokenType     = "Bearer"
)

type RegisterInput struct {
	Name                 string `json:"name" validate:"required,min=2,max=100"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthPayload is returned from register and login. ExpiresIn is the access
// token lifetime in seconds.
type AuthPayload struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
}

// TokenPair is returned from a refresh rotation.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

type AuthService struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	config *config.Config
}

func NewAuthService(users repository.UserRepository, tokens repository.TokenRepository, cfg *config.Config) *AuthService {
	return &AuthService{users: users, tokens: tokens, config: cfg}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthPayload, error) {
	if fields := validation.Struct(in); fields != nil {
		return nil, models.NewValidationError("Validation failed", fields)
	}

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("An account with this email already exists", map[string][]string{
			"email": {"has already been taken"},
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: string(hashed),
		Role:     models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issuePair(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthPayload, error) {
	if fields := validation.Struct(in); fields != nil {
		return nil, models.NewValidationError("Validation failed", fields)
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthenticatedError("Invalid email or password")
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); cmpErr != nil {
		return nil, models.NewUnauthenticatedError("Invalid email or password")
	}

	return s.issuePair(ctx, user)
}

// Refresh rotates the opaque refresh token and mints a new access token.
// The presented token is consumed whether or not it was still valid, so a
// replayed token always fails.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, models.NewInvalidRefreshTokenError()
	}

	next := s.newRefreshToken(0)
	if err := s.tokens.Rotate(ctx, refreshToken, next); err != nil {
		return nil, err
	}
	observability.RefreshRotationsTotal.Inc()

	user, err := s.users.GetByID(ctx, next.UserID)
	if err != nil {
		return nil, err
	}

	access, err := s.signAccessToken(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: next.Token,
		TokenType:    TokenType,
		ExpiresIn:    s.config.AccessTokenTTLMin * 60,
	}, nil
}

// Logout revokes every refresh token held by the user. Outstanding access
// tokens stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	return s.tokens.DeleteAllForUser(ctx, userID)
}

func (s *AuthService) issuePair(ctx context.Context, user *models.User) (*AuthPayload, error) {
	access, err := s.signAccessToken(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	refresh := s.newRefreshToken(user.ID)
	if err := s.tokens.Create(ctx, refresh); err != nil {
		return nil, err
	}

	return &AuthPayload{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh.Token,
		TokenType:    TokenType,
		ExpiresIn:    s.config.AccessTokenTTLMin * 60,
	}, nil
}

func (s *AuthService) newRefreshToken(userID uint) *models.RefreshToken {
	return &models.RefreshToken{
		UserID:    userID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(time.Duration(s.config.RefreshTokenTTLHours) * time.Hour),
	}
}

func (s *AuthService) signAccessToken(user *models.User) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", user.ID),
		"role": user.Role,
		"iss":  TokenIssuer,
		"aud":  TokenAudience,
		"exp":  now.Add(time.Duration(s.config.AccessTokenTTLMin) * time.Minute).Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"jti":  uuid.New().String(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
