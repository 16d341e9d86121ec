package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/takezo-code/kanban-auth/internal/domain"
)

type AuditRepo struct{ db *gorm.DB }

func NewAuditRepo(db *gorm.DB) *AuditRepo { return &AuditRepo{db: db} }

func (r *AuditRepo) Insert(ctx context.Context, l *domain.AuditLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *AuditRepo) FindByEntity(ctx context.Context, entity, entityID string) ([]domain.AuditView, error) {
	var views []domain.AuditView
	err := r.db.WithContext(ctx).Model(&domain.AuditLog{}).
		Select("audit_logs.*, performer.name AS performed_by_name").
		Joins("LEFT JOIN users AS performer ON performer.id = audit_logs.performed_by").
		Where("audit_logs.entity = ? AND audit_logs.entity_id = ?", entity, entityID).
		Order("audit_logs.created_at desc").Find(&views).Error
	return views, err
}
