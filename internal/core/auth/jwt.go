package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/takezo-code/kanban-auth/internal/domain"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims access/refresh 共用的载荷；字段名是对外契约，别的服务要按位对上
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService 双密钥双 TTL：access 短期、refresh 长期，各自独立验签
type TokenService struct {
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	Now func() time.Time // 测试用，空则 time.Now
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TokenService) IssueAccessToken(id domain.Identity) (string, error) {
	return s.issue(id, s.AccessSecret, s.AccessTTL)
}

func (s *TokenService) IssueRefreshToken(id domain.Identity) (string, error) {
	return s.issue(id, s.RefreshSecret, s.RefreshTTL)
}

func (s *TokenService) issue(id domain.Identity, secret []byte, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: id.UserID,
		Email:  id.Email,
		Role:   id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (s *TokenService) VerifyAccessToken(tokenStr string) (domain.Identity, error) {
	return s.verify(tokenStr, s.AccessSecret)
}

func (s *TokenService) VerifyRefreshToken(tokenStr string) (domain.Identity, error) {
	return s.verify(tokenStr, s.RefreshSecret)
}

func (s *TokenService) verify(tokenStr string, secret []byte) (domain.Identity, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(s.Issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, ErrTokenExpired
		}
		return domain.Identity{}, ErrTokenInvalid
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return domain.Identity{}, ErrTokenInvalid
	}
	return domain.Identity{UserID: c.UserID, Email: c.Email, Role: c.Role}, nil
}
