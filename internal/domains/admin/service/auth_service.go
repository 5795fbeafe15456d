package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"portfolio-cms/internal/domains/admin/model"
	"portfolio-cms/internal/domains/admin/repository"
	"portfolio-cms/pkg/jwt"
	"portfolio-cms/pkg/logger"
)

type AuthService interface {
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)
}

type authService struct {
	repo repository.AdminRepository
	jwt  *jwt.Manager
}

func NewAuthService(repo repository.AdminRepository, jwtManager *jwt.Manager) AuthService {
	return &authService{repo: repo, jwt: jwtManager}
}

func (s *authService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	admin, err := s.repo.GetByEmail(ctx, req.NormalizedEmail())
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		logger.Info("failed login attempt", map[string]interface{}{"email": admin.Email})
		return nil, model.ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(admin.ID.String(), admin.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	safe := *admin
	safe.PasswordHash = ""
	return &model.LoginResponse{Token: token, Admin: safe}, nil
}
