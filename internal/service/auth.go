package service

import (
	"context"
	"errors"
	"strings"

	"blooddrive-backend/internal/domain"
	"blooddrive-backend/internal/logger"
	"blooddrive-backend/internal/repository"
	"blooddrive-backend/internal/security"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const minPasswordLength = 8

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func (s *authService) Signup(ctx context.Context, name, email, password string) (*domain.User, string, string, error) {
	logger.EnterMethod("authService.Signup", "email", email)

	user, err := s.createUser(ctx, name, email, password, domain.UserRoleMember)
	if err != nil {
		logger.ExitMethodWithError("authService.Signup", err)
		return nil, "", "", err
	}

	access, refresh, err := s.generateTokens(user)
	if err != nil {
		logger.ExitMethodWithError("authService.Signup", err)
		return nil, "", "", err
	}
	logger.ExitMethod("authService.Signup", "userID", user.ID)
	return user, access, refresh, nil
}

func (s *authService) CreateAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	user, err := s.createUser(ctx, name, email, password, domain.UserRoleAdmin)
	if err != nil {
		return nil, err
	}
	logger.Info("Admin account created", "userID", user.ID, "email", user.Email)
	return user, nil
}

func (s *authService) createUser(ctx context.Context, name, email, password string, role domain.UserRole) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	if !domain.ValidEmail(email) {
		return nil, domain.NewValidationError("email", "is not a valid email address")
	}
	if len(password) < minPasswordLength {
		return nil, domain.NewValidationError("password", "must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Debug("Password mismatch", "userID", user.ID)
		return nil, "", "", ErrInvalidCredentials
	}

	access, refresh, err := s.generateTokens(user)
	if err != nil {
		return nil, "", "", err
	}
	return user, access, refresh, nil
}

func (s *authService) RefreshToken(ctx context.Context, refresh string) (string, string, error) {
	claims, err := s.tokens.ValidateToken(refresh)
	if err != nil {
		return "", "", err
	}
	if claims.Type != security.TokenTypeRefresh {
		return "", "", security.ErrWrongTokenType
	}

	// Reload so a role change takes effect on the next access token.
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if domain.IsNotFound(err) {
			return "", "", security.ErrInvalidToken
		}
		return "", "", err
	}
	return s.generateTokens(user)
}

func (s *authService) generateTokens(user *domain.User) (string, string, error) {
	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
