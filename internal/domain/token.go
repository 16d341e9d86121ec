package domain

import (
	"context"
	"time"
)

// RefreshToken 一次性刷新令牌，轮换后立即作废
type RefreshToken struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Token     string    `gorm:"uniqueIndex;size:512;not null" json:"-"`
	UserID    string    `gorm:"size:36;not null;index" json:"userId"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`
	Revoked   bool      `gorm:"not null;default:false" json:"revoked"`
	CreatedAt time.Time `json:"createdAt"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

func (t *RefreshToken) Expired(now time.Time) bool { return !now.Before(t.ExpiresAt) }

func (t *RefreshToken) Valid(now time.Time) bool { return !t.Revoked && !t.Expired(now) }

type TokenRepository interface {
	Save(ctx context.Context, t *RefreshToken) error
	FindByToken(ctx context.Context, token string) (*RefreshToken, error)
	// Revoke 条件更新 WHERE revoked=0；已吊销/不存在返回 false。
	// 刷新路径靠它关掉「轮换 vs 重放」的竞态窗口。
	Revoke(ctx context.Context, token string) (bool, error)
	// PurgeExpired 清理过期令牌（外部 housekeeping 调用）
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
