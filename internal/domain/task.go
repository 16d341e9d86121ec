package domain

import (
	"context"
	"fmt"
	"time"
)

type Status string

const (
	StatusBacklog    Status = "BACKLOG"
	StatusInProgress Status = "IN_PROGRESS"
	StatusReview     Status = "REVIEW"
	StatusDone       Status = "DONE" // 终态，无出边
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusBacklog, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// allowedTransitions 工作流允许的有向边
var allowedTransitions = map[Status][]Status{
	StatusBacklog:    {StatusInProgress},
	StatusInProgress: {StatusReview, StatusBacklog},
	StatusReview:     {StatusDone, StatusInProgress},
	StatusDone:       {},
}

type edge struct{ from, to Status }

// adminOnlyTransitions 只有 ADMIN 能走的边：审批 / 驳回 / 撤回
var adminOnlyTransitions = map[edge]struct{}{
	{StatusReview, StatusDone}:        {},
	{StatusReview, StatusInProgress}:  {},
	{StatusInProgress, StatusBacklog}: {},
}

// CheckTransition 校验一次状态迁移。
// 顺序固定：同状态 → 非法边 → 角色边 → 归属。先报边再报权限，
// 非法的边对谁都是 Validation，不会被说成 Forbidden。
func CheckTransition(t *Task, target Status, caller Identity) error {
	if t.Status == target {
		return Validation("task already in this status")
	}
	ok := false
	for _, next := range allowedTransitions[t.Status] {
		if next == target {
			ok = true
			break
		}
	}
	if !ok {
		return Validation(fmt.Sprintf("invalid transition: %s -> %s", t.Status, target))
	}
	if _, adminOnly := adminOnlyTransitions[edge{t.Status, target}]; adminOnly && !caller.IsAdmin() {
		return Forbidden(fmt.Sprintf("only admins may transition %s -> %s", t.Status, target))
	}
	if !caller.IsAdmin() && (t.AssignedTo == nil || *t.AssignedTo != caller.UserID) {
		return Forbidden("you may only move tasks assigned to you")
	}
	return nil
}

type Task struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	Status      Status    `gorm:"size:16;not null;default:BACKLOG;index" json:"status"`
	AssignedTo  *string   `gorm:"size:36;index" json:"assignedTo"`
	CreatedBy   string    `gorm:"size:36;not null" json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Task) TableName() string { return "tasks" }

// TaskView 读模型：补上指派人/创建人的展示名
type TaskView struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description"`
	Status         Status    `json:"status"`
	AssignedTo     *string   `json:"assignedTo"`
	AssignedToName *string   `json:"assignedToName"`
	CreatedBy      string    `json:"createdBy"`
	CreatedByName  string    `json:"createdByName"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type TaskRepository interface {
	Create(ctx context.Context, t *Task) error
	FindByID(ctx context.Context, id string) (*Task, error)
	// ViewByID 单条读模型（join 出展示名）
	ViewByID(ctx context.Context, id string) (*TaskView, error)
	ListAll(ctx context.Context) ([]TaskView, error)
	ListByAssignee(ctx context.Context, userID string) ([]TaskView, error)
	Update(ctx context.Context, t *Task) error
	// UpdateStatus 条件更新 WHERE status=from，输掉并发时返回 false
	UpdateStatus(ctx context.Context, id string, from, to Status) (bool, error)
	Delete(ctx context.Context, id string) error
}
