package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"activityhub/internal/config"
	"activityhub/internal/model"
	"activityhub/internal/repository"
)

// AuthService issues access tokens. There is no refresh flow; clients log in again.
type AuthService struct {
	userRepo repository.UserRepository
	config   *config.Config
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		config:   cfg,
		now:      time.Now,
	}
}

// Account builds the account response for user with a fresh token.
func (s *AuthService) Account(ctx context.Context, user *model.User) (*model.AccountResponse, error) {
	token, err := s.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	image, err := s.userRepo.GetMainPhotoURL(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &model.AccountResponse{
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Image:       image,
		Token:       token,
	}, nil
}

// GenerateAccessToken signs an HS256 token carrying the user's id and username.
func (s *AuthService) GenerateAccessToken(user *model.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"exp":      now.Add(time.Duration(s.config.AccessTokenMaxAge) * time.Second).Unix(),
		"iat":      now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
