package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Emirlan007/Cassini-shop-sub000/internal/domain"
	"github.com/Emirlan007/Cassini-shop-sub000/pkg/middleware"
)

const issuer = "storefront"

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// ErrWrongTokenType is returned when a refresh token is presented as an
// access token or the other way round.
var ErrWrongTokenType = errors.New("wrong token type")

// Claims is the payload of both token kinds.
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// JWTManager issues and validates HS256 token pairs.
type JWTManager struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	now           func() time.Time
}

func NewJWTManager(secret string, accessExpiry, refreshExpiry time.Duration) *JWTManager {
	return &JWTManager{
		secret:        []byte(secret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		now:           time.Now,
	}
}

// IssuePair signs a fresh access and refresh token for u.
func (m *JWTManager) IssuePair(u *domain.User) (*domain.TokenPair, error) {
	now := m.now().UTC()
	expiresAt := now.Add(m.accessExpiry)

	access, err := m.sign(&Claims{
		UserID:           u.ID,
		Email:            u.Email,
		Role:             u.Role,
		TokenType:        tokenTypeAccess,
		RegisteredClaims: m.registered(u.ID, now, expiresAt),
	})
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := m.sign(&Claims{
		UserID:           u.ID,
		TokenType:        tokenTypeRefresh,
		RegisteredClaims: m.registered(u.ID, now, now.Add(m.refreshExpiry)),
	})
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresAt: expiresAt}, nil
}

// ValidateAccessToken returns the caller identity carried by an access token.
// Its signature matches middleware.TokenValidator.
func (m *JWTManager) ValidateAccessToken(token string) (*middleware.Claims, error) {
	claims, err := m.parse(token, tokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}
	return &middleware.Claims{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

// ValidateRefreshToken returns the user id a refresh token was issued to.
func (m *JWTManager) ValidateRefreshToken(token string) (string, error) {
	claims, err := m.parse(token, tokenTypeRefresh)
	if err != nil {
		return "", fmt.Errorf("parse refresh token: %w", err)
	}
	return claims.UserID, nil
}

func (m *JWTManager) registered(subject string, now, expiresAt time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
}

func (m *JWTManager) sign(claims *Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *JWTManager) parse(token, wantType string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.TokenType != wantType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}
