package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/auth"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/repository"
	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
)

const (
	bcryptCost        = 12
	minPasswordLength = 8
)

// RegisterInput creates a customer account.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required,max=200"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthResult is returned by Register, Login and Refresh.
type AuthResult struct {
	User   *domain.User      `json:"user"`
	Tokens *domain.TokenPair `json:"tokens"`
}

// UserService registers and authenticates accounts.
type UserService struct {
	repo   repository.UserRepository
	jwt    *auth.JWTManager
	logger *slog.Logger
	cost   int
}

func NewUserService(repo repository.UserRepository, jwt *auth.JWTManager, logger *slog.Logger) *UserService {
	return &UserService{repo: repo, jwt: jwt, logger: logger, cost: bcryptCost}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, apperrors.Validation("email is required")
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return nil, apperrors.Validation(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(in.Name),
		Phone:        strings.TrimSpace(in.Phone),
		Role:         domain.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.jwt.IssuePair(u)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", u.ID))
	return &AuthResult{User: u, Tokens: tokens}, nil
}

// Login checks credentials. An unknown email and a wrong password produce
// the same Unauthorized error.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	tokens, err := s.jwt.IssuePair(u)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", u.ID))
	return &AuthResult{User: u, Tokens: tokens}, nil
}

// Refresh exchanges a refresh token for a new pair. The role is reloaded so a
// promotion or demotion takes effect on the next refresh.
func (s *UserService) Refresh(ctx context.Context, in RefreshInput) (*AuthResult, error) {
	userID, err := s.jwt.ValidateRefreshToken(in.RefreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("account no longer exists")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	tokens, err := s.jwt.IssuePair(u)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return &AuthResult{User: u, Tokens: tokens}, nil
}

func (s *UserService) Me(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
