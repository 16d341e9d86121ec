package domain

import (
	"context"
	"time"
)

// AuditLog 操作留痕：谁对哪个实体做了什么
type AuditLog struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Action      string    `gorm:"size:64;not null" json:"action"` // task.create / user.delete / ...
	Entity      string    `gorm:"size:32;not null;index:idx_audit_entity" json:"entity"`
	EntityID    string    `gorm:"size:36;not null;index:idx_audit_entity" json:"entityId"`
	PerformedBy string    `gorm:"size:36;not null;index" json:"performedBy"`
	Metadata    *string   `gorm:"type:text" json:"metadata"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (AuditLog) TableName() string { return "audit_logs" }

// AuditView 读模型：补上操作人的展示名，操作人被删时为空
type AuditView struct {
	ID              string    `json:"id"`
	Action          string    `json:"action"`
	Entity          string    `json:"entity"`
	EntityID        string    `json:"entityId"`
	PerformedBy     string    `json:"performedBy"`
	PerformedByName *string   `json:"performedByName"`
	Metadata        *string   `json:"metadata"`
	CreatedAt       time.Time `json:"createdAt"`
}

type AuditRepository interface {
	Insert(ctx context.Context, l *AuditLog) error
	// FindByEntity 新的在前（created_at 倒序）
	FindByEntity(ctx context.Context, entity, entityID string) ([]AuditView, error)
}
