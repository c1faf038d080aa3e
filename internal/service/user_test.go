package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/auth"
	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	apperrors "github.com/Emirlan007/Cassini-shop-sub000/pkg/errors"
)

func newUserService() (*UserService, *mockUserRepo, *auth.JWTManager) {
	repo := &mockUserRepo{}
	jwt := auth.NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)
	svc := NewUserService(repo, jwt, testLogger())
	svc.cost = bcrypt.MinCost
	return svc, repo, jwt
}

func storedUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{ID: "u1", Email: "aida@example.com", PasswordHash: string(hash), Role: domain.RoleCustomer}
}

func TestUserService_Register(t *testing.T) {
	svc, repo, jwt := newUserService()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "aida@example.com" && u.Role == domain.RoleCustomer
	})).Return(nil)

	res, err := svc.Register(context.Background(), RegisterInput{
		Email:    "  Aida@Example.com ",
		Password: "correct-horse",
		Name:     "Aida",
	})
	require.NoError(t, err)

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(res.User.PasswordHash), []byte("correct-horse")))
	claims, err := jwt.ValidateAccessToken(res.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, domain.RoleCustomer, claims.Role)
}

func TestUserService_Register_ShortPassword(t *testing.T) {
	svc, repo, _ := newUserService()

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.kg", Password: "short", Name: "A"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	svc, repo, _ := newUserService()
	repo.On("Create", mock.Anything, mock.Anything).Return(apperrors.AlreadyExists("user", "email", "a@b.kg"))

	_, err := svc.Register(context.Background(), RegisterInput{Email: "a@b.kg", Password: "long-enough", Name: "A"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
}

func TestUserService_Login(t *testing.T) {
	svc, repo, _ := newUserService()
	repo.On("GetByEmail", mock.Anything, "aida@example.com").Return(storedUser(t, "correct-horse"), nil)
	repo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, apperrors.NotFound("user", "ghost@example.com"))
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginInput{Email: "AIDA@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Tokens.RefreshToken)

	_, err = svc.Login(ctx, LoginInput{Email: "aida@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestUserService_Login_StoreError(t *testing.T) {
	svc, repo, _ := newUserService()
	repo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	_, err := svc.Login(context.Background(), LoginInput{Email: "a@b.kg", Password: "whatever1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestUserService_Refresh(t *testing.T) {
	svc, repo, jwt := newUserService()
	u := storedUser(t, "correct-horse")
	repo.On("GetByID", mock.Anything, "u1").Return(u, nil)

	pair, err := jwt.IssuePair(u)
	require.NoError(t, err)

	res, err := svc.Refresh(context.Background(), RefreshInput{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	assert.Equal(t, "u1", res.User.ID)

	_, err = svc.Refresh(context.Background(), RefreshInput{RefreshToken: pair.AccessToken})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestUserService_Refresh_DeletedAccount(t *testing.T) {
	svc, repo, jwt := newUserService()
	repo.On("GetByID", mock.Anything, "u1").Return(nil, apperrors.NotFound("user", "u1"))

	pair, err := jwt.IssuePair(&domain.User{ID: "u1", Role: domain.RoleCustomer})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), RefreshInput{RefreshToken: pair.RefreshToken})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
