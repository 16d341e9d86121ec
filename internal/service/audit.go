package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/takezo-code/kanban-auth/internal/domain"
	"github.com/takezo-code/kanban-auth/pkg/utils"
)

// auditor 各 service 共用的留痕入口。写失败只告警，不插手主流程。
type auditor struct {
	repo domain.AuditRepository
	log  *zap.Logger
}

func (a auditor) record(ctx context.Context, action, entity, entityID string, caller domain.Identity, meta map[string]any) {
	l := &domain.AuditLog{
		ID:          utils.NewID(),
		Action:      action,
		Entity:      entity,
		EntityID:    entityID,
		PerformedBy: caller.UserID,
	}
	if meta != nil {
		if b, err := json.Marshal(meta); err == nil {
			m := string(b)
			l.Metadata = &m
		}
	}
	if err := a.repo.Insert(ctx, l); err != nil {
		a.log.Warn("audit insert failed", zap.String("action", action), zap.Error(err))
	}
}
