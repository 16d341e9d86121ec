package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/takezo-code/kanban-auth/internal/core/cache"
	"github.com/takezo-code/kanban-auth/internal/domain"
	"github.com/takezo-code/kanban-auth/pkg/utils"
)

const taskViewTTL = 30 * time.Second

type CreateTaskInput struct {
	Title       string
	Description *string
	AssignedTo  *string
}

// UpdateTaskInput 三态字段：没传不动，null 清空，有值覆盖
type UpdateTaskInput struct {
	Title       domain.Optional[string]
	Description domain.Optional[string]
	AssignedTo  domain.Optional[string]
}

type TaskService struct {
	tasks domain.TaskRepository
	users domain.UserRepository
	audit auditor
	cache *cache.Cache // 可空（admin 工具不带 redis）
	log   *zap.Logger
}

func NewTaskService(tasks domain.TaskRepository, users domain.UserRepository, audit domain.AuditRepository, c *cache.Cache, log *zap.Logger) *TaskService {
	return &TaskService{
		tasks: tasks, users: users,
		audit: auditor{repo: audit, log: log},
		cache: c, log: log,
	}
}

func (s *TaskService) Create(ctx context.Context, in CreateTaskInput, caller domain.Identity) (*domain.TaskView, error) {
	if err := domain.CanManageTasks(caller); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.Validation("title is required")
	}
	if in.AssignedTo != nil {
		if err := s.checkAssignee(ctx, *in.AssignedTo); err != nil {
			return nil, err
		}
	}

	t := &domain.Task{
		ID:          utils.NewID(),
		Title:       title,
		Description: trimPtr(in.Description),
		Status:      domain.StatusBacklog,
		AssignedTo:  in.AssignedTo,
		CreatedBy:   caller.UserID,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, domain.Internal("create task failed", err)
	}
	s.audit.record(ctx, "task.create", "task", t.ID, caller, map[string]any{"title": t.Title})

	return s.reload(ctx, t.ID)
}

// List ADMIN 全量，MEMBER 只看指派给自己的。这是两条不同的查询，
// 不是过滤后的 403。
func (s *TaskService) List(ctx context.Context, caller domain.Identity) ([]domain.TaskView, error) {
	if caller.IsAdmin() {
		vs, err := s.tasks.ListAll(ctx)
		if err != nil {
			return nil, domain.Internal("list tasks failed", err)
		}
		return vs, nil
	}
	vs, err := s.tasks.ListByAssignee(ctx, caller.UserID)
	if err != nil {
		return nil, domain.Internal("list tasks failed", err)
	}
	return vs, nil
}

func (s *TaskService) Get(ctx context.Context, id string, caller domain.Identity) (*domain.TaskView, error) {
	v, err := s.cachedView(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.NotFound("task not found")
	}
	t := &domain.Task{AssignedTo: v.AssignedTo}
	if err := domain.CanReadTask(caller, t); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *TaskService) Update(ctx context.Context, id string, in UpdateTaskInput, caller domain.Identity) (*domain.TaskView, error) {
	if err := domain.CanManageTasks(caller); err != nil {
		return nil, err
	}
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("find task failed", err)
	}
	if t == nil {
		return nil, domain.NotFound("task not found")
	}

	if in.Title.Set {
		// title 可改不可清
		if in.Title.Null {
			return nil, domain.Validation("title cannot be null")
		}
		title := strings.TrimSpace(in.Title.Value)
		if title == "" {
			return nil, domain.Validation("title cannot be empty")
		}
		t.Title = title
	}
	if in.Description.Set {
		if in.Description.Null {
			t.Description = nil
		} else {
			t.Description = trimPtr(&in.Description.Value)
		}
	}
	if in.AssignedTo.Set {
		if in.AssignedTo.Null {
			t.AssignedTo = nil
		} else {
			if err := s.checkAssignee(ctx, in.AssignedTo.Value); err != nil {
				return nil, err
			}
			v := in.AssignedTo.Value
			t.AssignedTo = &v
		}
	}

	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, domain.Internal("update task failed", err)
	}
	s.invalidate(ctx, id)
	s.audit.record(ctx, "task.update", "task", id, caller, nil)

	return s.reload(ctx, id)
}

// Move 状态迁移。检查顺序在 domain.CheckTransition 里定死；
// 落库是条件更新，并发输了报 Conflict。
func (s *TaskService) Move(ctx context.Context, id string, target domain.Status, caller domain.Identity) (*domain.TaskView, error) {
	if !domain.ValidStatus(target) {
		return nil, domain.Validation("unknown status: " + string(target))
	}
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("find task failed", err)
	}
	if t == nil {
		return nil, domain.NotFound("task not found")
	}
	if err := domain.CheckTransition(t, target, caller); err != nil {
		return nil, err
	}

	ok, err := s.tasks.UpdateStatus(ctx, id, t.Status, target)
	if err != nil {
		return nil, domain.Internal("move task failed", err)
	}
	if !ok {
		return nil, domain.Conflict("task was moved by another request")
	}
	s.invalidate(ctx, id)
	s.audit.record(ctx, "task.move", "task", id, caller,
		map[string]any{"from": t.Status, "to": target})
	s.log.Info("task moved",
		zap.String("task_id", id),
		zap.String("from", string(t.Status)),
		zap.String("to", string(target)),
		zap.String("by", caller.UserID),
	)

	return s.reload(ctx, id)
}

func (s *TaskService) Delete(ctx context.Context, id string, caller domain.Identity) error {
	if err := domain.CanManageTasks(caller); err != nil {
		return err
	}
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return domain.Internal("find task failed", err)
	}
	if t == nil {
		return domain.NotFound("task not found")
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return domain.Internal("delete task failed", err)
	}
	s.invalidate(ctx, id)
	s.audit.record(ctx, "task.delete", "task", id, caller, nil)
	return nil
}

// History 审计轨迹，新的在前，ADMIN only
func (s *TaskService) History(ctx context.Context, id string, caller domain.Identity) ([]domain.AuditView, error) {
	if err := domain.CanManageTasks(caller); err != nil {
		return nil, err
	}
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("find task failed", err)
	}
	if t == nil {
		return nil, domain.NotFound("task not found")
	}
	logs, err := s.audit.repo.FindByEntity(ctx, "task", id)
	if err != nil {
		return nil, domain.Internal("load audit logs failed", err)
	}
	return logs, nil
}

func (s *TaskService) checkAssignee(ctx context.Context, userID string) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return domain.Internal("check assignee failed", err)
	}
	if !ok {
		return domain.NotFound("assigned user not found")
	}
	return nil
}

func (s *TaskService) reload(ctx context.Context, id string) (*domain.TaskView, error) {
	v, err := s.tasks.ViewByID(ctx, id)
	if err != nil || v == nil {
		return nil, domain.Internal("reload task failed", err)
	}
	return v, nil
}

func (s *TaskService) cachedView(ctx context.Context, id string) (*domain.TaskView, error) {
	if s.cache == nil {
		v, err := s.tasks.ViewByID(ctx, id)
		if err != nil {
			return nil, domain.Internal("find task failed", err)
		}
		return v, nil
	}
	v, err := cache.GetOrLoadJSON(s.cache, ctx, taskViewKey(id), taskViewTTL,
		func(ctx context.Context) (*domain.TaskView, error) {
			return s.tasks.ViewByID(ctx, id)
		})
	if err != nil {
		return nil, domain.Internal("find task failed", err)
	}
	return v, nil
}

func (s *TaskService) invalidate(ctx context.Context, id string) {
	if s.cache != nil {
		s.cache.Del(ctx, taskViewKey(id))
	}
}

func taskViewKey(id string) string { return "task:view:" + id }

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
