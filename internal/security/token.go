package security

import (
	"errors"
	"strconv"
	"time"

	"blooddrive-backend/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token has expired")
	ErrWrongTokenType = errors.New("wrong token type for this endpoint")
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

const (
	issuer          = "blooddrive-auth"
	audienceAccess  = "api-access"
	audienceRefresh = "token-refresh"
)

// UserClaims defines the claims carried by every token we issue.
type UserClaims struct {
	UserID int32           `json:"user_id"`
	Email  string          `json:"email,omitempty"`
	Type   TokenType       `json:"type"`
	Role   domain.UserRole `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Actor converts verified claims into the caller identity used by services.
func (c *UserClaims) Actor() domain.Actor {
	return domain.Actor{UserID: c.UserID, Role: c.Role}
}

type TokenManager interface {
	GenerateAccessToken(user *domain.User) (string, error)
	GenerateRefreshToken(user *domain.User) (string, error)
	ValidateToken(tokenString string) (*UserClaims, error)
}

type tokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) TokenManager {
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &tokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (m *tokenManager) GenerateAccessToken(user *domain.User) (string, error) {
	return m.sign(user, TokenTypeAccess, audienceAccess, m.accessTTL)
}

func (m *tokenManager) GenerateRefreshToken(user *domain.User) (string, error) {
	return m.sign(user, TokenTypeRefresh, audienceRefresh, m.refreshTTL)
}

func (m *tokenManager) sign(user *domain.User, typ TokenType, audience string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := UserClaims{
		UserID: user.ID,
		Email:  user.Email,
		Type:   typ,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(user.ID)),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *tokenManager) ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		if claims.UserID == 0 && claims.Subject != "" {
			uid, _ := strconv.Atoi(claims.Subject)
			claims.UserID = int32(uid)
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}
