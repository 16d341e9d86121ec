package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/takezo-code/kanban-auth/internal/domain"
)

type TaskRepo struct{ db *gorm.DB }

func NewTaskRepo(db *gorm.DB) *TaskRepo { return &TaskRepo{db: db} }

func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TaskRepo) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

// viewSelect 读模型列：左联两次 users 取展示名
const viewSelect = "tasks.*, assignee.name AS assigned_to_name, creator.name AS created_by_name"

func (r *TaskRepo) viewQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&domain.Task{}).
		Select(viewSelect).
		Joins("LEFT JOIN users AS assignee ON assignee.id = tasks.assigned_to").
		Joins("LEFT JOIN users AS creator ON creator.id = tasks.created_by")
}

func (r *TaskRepo) ViewByID(ctx context.Context, id string) (*domain.TaskView, error) {
	var v domain.TaskView
	err := r.viewQuery(ctx).Where("tasks.id = ?", id).Take(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &v, err
}

func (r *TaskRepo) ListAll(ctx context.Context) ([]domain.TaskView, error) {
	var vs []domain.TaskView
	err := r.viewQuery(ctx).Order("tasks.created_at desc").Find(&vs).Error
	return vs, err
}

func (r *TaskRepo) ListByAssignee(ctx context.Context, userID string) ([]domain.TaskView, error) {
	var vs []domain.TaskView
	err := r.viewQuery(ctx).
		Where("tasks.assigned_to = ?", userID).
		Order("tasks.created_at desc").Find(&vs).Error
	return vs, err
}

func (r *TaskRepo) Update(ctx context.Context, t *domain.Task) error {
	// Save 不会把显式的 nil assigned_to 写回去，按列更新
	return r.db.WithContext(ctx).Model(&domain.Task{}).Where("id = ?", t.ID).
		Updates(map[string]any{
			"title":       t.Title,
			"description": t.Description,
			"assigned_to": t.AssignedTo,
			"updated_at":  time.Now(),
		}).Error
}

// UpdateStatus 条件更新：WHERE status=from，输掉并发的那次返回 false
func (r *TaskRepo) UpdateStatus(ctx context.Context, id string, from, to domain.Status) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now()})
	return res.RowsAffected > 0, res.Error
}

func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Task{}, "id = ?", id).Error
}
