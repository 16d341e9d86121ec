package service

import (
	"context"
	"sync"
	"time"

	"github.com/takezo-code/kanban-auth/internal/domain"
)

// 内存仓储：service 测试不碰真库

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) EmailTaken(_ context.Context, email, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[id]
	return ok, nil
}

func (r *fakeUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.UpdatedAt = time.Now()
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) DeleteGuarded(ctx context.Context, id, callerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.NotFound("user not found")
	}
	if u.ID == callerID {
		return domain.Validation("you cannot delete your own account")
	}
	if u.Role == domain.RoleAdmin {
		var admins int64
		for _, x := range r.users {
			if x.Role == domain.RoleAdmin {
				admins++
			}
		}
		if admins <= 1 {
			return domain.Validation("cannot delete the last admin")
		}
	}
	delete(r.users, id)
	return nil
}

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]domain.Task
	users *fakeUserRepo // 读模型要 join 出人名
}

func newFakeTaskRepo(users *fakeUserRepo) *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[string]domain.Task{}, users: users}
}

func (r *fakeTaskRepo) Create(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	r.tasks[t.ID] = *t
	return nil
}

func (r *fakeTaskRepo) FindByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok {
		return &t, nil
	}
	return nil, nil
}

func (r *fakeTaskRepo) view(t domain.Task) domain.TaskView {
	v := domain.TaskView{
		ID: t.ID, Title: t.Title, Description: t.Description,
		Status: t.Status, AssignedTo: t.AssignedTo, CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
	}
	if t.AssignedTo != nil {
		if u, ok := r.users.users[*t.AssignedTo]; ok {
			name := u.Name
			v.AssignedToName = &name
		}
	}
	if u, ok := r.users.users[t.CreatedBy]; ok {
		v.CreatedByName = u.Name
	}
	return v
}

func (r *fakeTaskRepo) ViewByID(_ context.Context, id string) (*domain.TaskView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	v := r.view(t)
	return &v, nil
}

func (r *fakeTaskRepo) ListAll(_ context.Context) ([]domain.TaskView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.TaskView, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, r.view(t))
	}
	return out, nil
}

func (r *fakeTaskRepo) ListByAssignee(_ context.Context, userID string) ([]domain.TaskView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.TaskView{}
	for _, t := range r.tasks {
		if t.AssignedTo != nil && *t.AssignedTo == userID {
			out = append(out, r.view(t))
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.UpdatedAt = time.Now()
	r.tasks[t.ID] = *t
	return nil
}

func (r *fakeTaskRepo) UpdateStatus(_ context.Context, id string, from, to domain.Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	t.UpdatedAt = time.Now()
	r.tasks[id] = t
	return true, nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tasks, id)
	return nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]domain.RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[string]domain.RefreshToken{}}
}

func (r *fakeTokenRepo) Save(_ context.Context, t *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.CreatedAt = time.Now()
	r.tokens[t.Token] = *t
	return nil
}

func (r *fakeTokenRepo) FindByToken(_ context.Context, token string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[token]; ok {
		return &t, nil
	}
	return nil, nil
}

func (r *fakeTokenRepo) Revoke(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok || t.Revoked {
		return false, nil
	}
	t.Revoked = true
	r.tokens[token] = t
	return true, nil
}

func (r *fakeTokenRepo) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, t := range r.tokens {
		if t.Expired(now) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

type fakeAuditRepo struct {
	mu    sync.Mutex
	logs  []domain.AuditLog
	users *fakeUserRepo
}

func (r *fakeAuditRepo) Insert(_ context.Context, l *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.CreatedAt = time.Now()
	r.logs = append(r.logs, *l)
	return nil
}

// FindByEntity 跟真仓储一样：新的在前
func (r *fakeAuditRepo) FindByEntity(_ context.Context, entity, entityID string) ([]domain.AuditView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.AuditView{}
	for i := len(r.logs) - 1; i >= 0; i-- {
		l := r.logs[i]
		if l.Entity != entity || l.EntityID != entityID {
			continue
		}
		v := domain.AuditView{
			ID: l.ID, Action: l.Action, Entity: l.Entity, EntityID: l.EntityID,
			PerformedBy: l.PerformedBy, Metadata: l.Metadata, CreatedAt: l.CreatedAt,
		}
		if r.users != nil {
			if u, ok := r.users.users[l.PerformedBy]; ok {
				name := u.Name
				v.PerformedByName = &name
			}
		}
		out = append(out, v)
	}
	return out, nil
}
