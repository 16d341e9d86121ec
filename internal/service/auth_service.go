package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/takezo-code/kanban-auth/internal/core/auth"
	"github.com/takezo-code/kanban-auth/internal/domain"
	"github.com/takezo-code/kanban-auth/pkg/utils"
)

const minPasswordLen = 6

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string // 空则 MEMBER
}

type LoginInput struct {
	Email    string
	Password string
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthResult struct {
	User domain.UserView `json:"user"`
	TokenPair
}

type AuthService struct {
	users  domain.UserRepository
	tokens domain.TokenRepository
	tok    *auth.TokenService
	log    *zap.Logger

	now func() time.Time
}

func NewAuthService(users domain.UserRepository, tokens domain.TokenRepository, tok *auth.TokenService, log *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, tok: tok, log: log, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := strings.TrimSpace(in.Email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.Internal("find user failed", err)
	}
	if existing != nil {
		return nil, domain.Conflict("email already registered")
	}
	if len(in.Password) < minPasswordLen {
		return nil, domain.Validation("password must be at least 6 characters")
	}

	role := in.Role
	if role == "" {
		role = domain.RoleMember
	}
	if !domain.ValidRole(role) {
		return nil, domain.Validation("invalid role")
	}

	u := &domain.User{
		ID:           utils.NewID(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: utils.HashPassword(in.Password),
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, domain.Internal("create user failed", err)
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("role", u.Role))

	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u.View(), TokenPair: *pair}, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		return nil, domain.Internal("find user failed", err)
	}
	if u == nil || !utils.CheckPassword(in.Password, u.PasswordHash) {
		return nil, domain.Unauthorized("invalid credentials")
	}

	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return nil, err
	}
	s.log.Info("user logged in", zap.String("user_id", u.ID))
	return &AuthResult{User: u.View(), TokenPair: *pair}, nil
}

// Refresh 轮换：先吊销旧的再签新的。中途挂掉宁可逼用户重新登录，
// 也不给旧 token 留重放的机会。
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	stored, err := s.tokens.FindByToken(ctx, refreshToken)
	if err != nil {
		return nil, domain.Internal("find refresh token failed", err)
	}
	if stored == nil {
		return nil, domain.Unauthorized("invalid refresh token")
	}
	now := s.now()
	if stored.Revoked {
		return nil, domain.Unauthorized("refresh token revoked")
	}
	if stored.Expired(now) {
		return nil, domain.Unauthorized("refresh token expired")
	}

	// 库里查到了还要独立验签：防篡改兜底
	identity, err := s.tok.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.Unauthorized("invalid refresh token")
	}

	u, err := s.users.FindByID(ctx, identity.UserID)
	if err != nil {
		return nil, domain.Internal("find user failed", err)
	}
	if u == nil {
		return nil, domain.NotFound("user not found")
	}

	ok, err := s.tokens.Revoke(ctx, refreshToken)
	if err != nil {
		return nil, domain.Internal("revoke refresh token failed", err)
	}
	if !ok {
		// 并发刷新输了：别人已经用过这个 token
		return nil, domain.Unauthorized("refresh token revoked")
	}

	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return nil, err
	}
	s.log.Info("refresh token rotated", zap.String("user_id", u.ID))
	return pair, nil
}

// Logout 幂等：未知 / 已吊销的 token 也返回成功
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if _, err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return domain.Internal("revoke refresh token failed", err)
	}
	return nil
}

func (s *AuthService) issuePair(ctx context.Context, u *domain.User) (*TokenPair, error) {
	identity := domain.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}

	access, err := s.tok.IssueAccessToken(identity)
	if err != nil {
		return nil, domain.Internal("issue access token failed", err)
	}
	refresh, err := s.tok.IssueRefreshToken(identity)
	if err != nil {
		return nil, domain.Internal("issue refresh token failed", err)
	}
	rec := &domain.RefreshToken{
		ID:        utils.NewID(),
		Token:     refresh,
		UserID:    u.ID,
		ExpiresAt: s.now().Add(s.tok.RefreshTTL),
	}
	if err := s.tokens.Save(ctx, rec); err != nil {
		return nil, domain.Internal("save refresh token failed", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
