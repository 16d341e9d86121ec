package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/takezo-code/kanban-auth/internal/domain"
)

// UpdateUserInput 三态可选；role 只接受 ADMIN / MEMBER
type UpdateUserInput struct {
	Name  domain.Optional[string]
	Email domain.Optional[string]
	Role  domain.Optional[string]
}

type UserService struct {
	users domain.UserRepository
	audit auditor
	log   *zap.Logger
}

func NewUserService(users domain.UserRepository, audit domain.AuditRepository, log *zap.Logger) *UserService {
	return &UserService{users: users, audit: auditor{repo: audit, log: log}, log: log}
}

func (s *UserService) List(ctx context.Context, caller domain.Identity) ([]domain.UserView, error) {
	if err := domain.CanListUsers(caller); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, domain.Internal("list users failed", err)
	}
	views := make([]domain.UserView, 0, len(users))
	for i := range users {
		views = append(views, users[i].View())
	}
	return views, nil
}

func (s *UserService) Get(ctx context.Context, id string, caller domain.Identity) (*domain.UserView, error) {
	if err := domain.CanReadUser(caller, id); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("find user failed", err)
	}
	if u == nil {
		return nil, domain.NotFound("user not found")
	}
	v := u.View()
	return &v, nil
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput, caller domain.Identity) (*domain.UserView, error) {
	if err := domain.CanManageUsers(caller); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("find user failed", err)
	}
	if u == nil {
		return nil, domain.NotFound("user not found")
	}

	if in.Name.Present() {
		name := strings.TrimSpace(in.Name.Value)
		if name == "" {
			return nil, domain.Validation("name cannot be empty")
		}
		u.Name = name
	}
	if in.Email.Present() {
		email := strings.TrimSpace(in.Email.Value)
		if email == "" {
			return nil, domain.Validation("email cannot be empty")
		}
		taken, err := s.users.EmailTaken(ctx, email, id)
		if err != nil {
			return nil, domain.Internal("check email failed", err)
		}
		if taken {
			return nil, domain.Conflict("email already registered")
		}
		u.Email = email
	}
	if in.Role.Present() {
		if !domain.ValidRole(in.Role.Value) {
			return nil, domain.Validation("invalid role")
		}
		u.Role = in.Role.Value
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, domain.Internal("update user failed", err)
	}
	s.audit.record(ctx, "user.update", "user", id, caller, nil)

	v := u.View()
	return &v, nil
}

// Delete 自删和删最后一个 ADMIN 都是 Validation；
// 真正的判定在仓储事务里再做一遍，堵并发窗口。
func (s *UserService) Delete(ctx context.Context, id string, caller domain.Identity) error {
	if err := domain.CanManageUsers(caller); err != nil {
		return err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return domain.Internal("find user failed", err)
	}
	if u == nil {
		return domain.NotFound("user not found")
	}
	adminCount, err := s.users.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return domain.Internal("count admins failed", err)
	}
	if err := domain.CheckUserDeletable(caller, u, adminCount); err != nil {
		return err
	}

	if err := s.users.DeleteGuarded(ctx, id, caller.UserID); err != nil {
		if domain.KindOf(err) != domain.KindInternal {
			return err
		}
		return domain.Internal("delete user failed", err)
	}
	s.audit.record(ctx, "user.delete", "user", id, caller, nil)
	s.log.Info("user deleted", zap.String("user_id", id), zap.String("by", caller.UserID))
	return nil
}
