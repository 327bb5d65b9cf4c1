package service

import (
	"context"
	"time"

	"github.com/dimaswi/pos-sub002/internal/apierror"
	"github.com/dimaswi/pos-sub002/internal/config"
	"github.com/dimaswi/pos-sub002/internal/dto"
	"github.com/dimaswi/pos-sub002/internal/model"
	"github.com/dimaswi/pos-sub002/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	repo repository.UserRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, apierror.Validation("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apierror.Validation("invalid credentials")
	}

	expiresAt := time.Now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour)
	token, err := s.generateToken(user, expiresAt)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	var storeID *string
	if user.StoreID != nil {
		id := user.StoreID.String()
		storeID = &id
	}
	return &dto.LoginResponse{
		Token:     token,
		UserID:    user.ID.String(),
		Username:  user.Username,
		Name:      user.Name,
		Role:      user.Role,
		StoreID:   storeID,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	}, nil
}

func (s *authService) generateToken(user *model.User, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"role":     user.Role,
		"exp":      expiresAt.Unix(),
		"iat":      time.Now().Unix(),
	}
	if user.StoreID != nil {
		claims["store_id"] = user.StoreID.String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
