package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/takezo-code/kanban-auth/internal/domain"
)

var (
	admin  = domain.Identity{UserID: "admin-1", Email: "a@x.dev", Role: domain.RoleAdmin}
	member = domain.Identity{UserID: "member-1", Email: "m@x.dev", Role: domain.RoleMember}
)

type taskFixture struct {
	svc   *TaskService
	tasks *fakeTaskRepo
	users *fakeUserRepo
	audit *fakeAuditRepo
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()
	users := newFakeUserRepo()
	tasks := newFakeTaskRepo(users)
	audit := &fakeAuditRepo{users: users}
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &domain.User{ID: admin.UserID, Name: "Root", Email: admin.Email, Role: domain.RoleAdmin}))
	require.NoError(t, users.Create(ctx, &domain.User{ID: member.UserID, Name: "Mia", Email: member.Email, Role: domain.RoleMember}))
	return &taskFixture{
		svc:   NewTaskService(tasks, users, audit, nil, zap.NewNop()),
		tasks: tasks, users: users, audit: audit,
	}
}

func (f *taskFixture) mustCreate(t *testing.T, assignee *string) *domain.TaskView {
	t.Helper()
	v, err := f.svc.Create(context.Background(), CreateTaskInput{
		Title: "Ship v1", AssignedTo: assignee,
	}, admin)
	require.NoError(t, err)
	return v
}

func TestTaskCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("starts at BACKLOG with creator set", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		v := f.mustCreate(t, &member.UserID)
		assert.Equal(t, domain.StatusBacklog, v.Status)
		assert.Equal(t, admin.UserID, v.CreatedBy)
		assert.Equal(t, "Root", v.CreatedByName)
		require.NotNil(t, v.AssignedToName)
		assert.Equal(t, "Mia", *v.AssignedToName)
	})

	t.Run("member forbidden", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		_, err := f.svc.Create(ctx, CreateTaskInput{Title: "x"}, member)
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})

	t.Run("blank title rejected", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		_, err := f.svc.Create(ctx, CreateTaskInput{Title: "   "}, admin)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("unknown assignee rejected", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		ghost := "ghost"
		_, err := f.svc.Create(ctx, CreateTaskInput{Title: "x", AssignedTo: &ghost}, admin)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})
}

func TestTaskList_RoleScoped(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	ctx := context.Background()

	f.mustCreate(t, &member.UserID)
	f.mustCreate(t, nil)

	all, err := f.svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// MEMBER 拿到的是更窄的查询结果，不是错误
	mine, err := f.svc.List(ctx, member)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, member.UserID, *mine[0].AssignedTo)
}

func TestTaskGet(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	ctx := context.Background()

	assigned := f.mustCreate(t, &member.UserID)
	unassigned := f.mustCreate(t, nil)

	_, err := f.svc.Get(ctx, assigned.ID, member)
	assert.NoError(t, err)

	_, err = f.svc.Get(ctx, unassigned.ID, member)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	_, err = f.svc.Get(ctx, "missing", admin)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestTaskUpdate_ThreeWayOptional(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	ctx := context.Background()

	v := f.mustCreate(t, &member.UserID)

	// 不传 assignedTo：保持原值
	out, err := f.svc.Update(ctx, v.ID, UpdateTaskInput{
		Title: domain.Optional[string]{Set: true, Value: "Ship v2"},
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, "Ship v2", out.Title)
	require.NotNil(t, out.AssignedTo)

	// 显式 null：清掉指派
	out, err = f.svc.Update(ctx, v.ID, UpdateTaskInput{
		AssignedTo: domain.Optional[string]{Set: true, Null: true},
	}, admin)
	require.NoError(t, err)
	assert.Nil(t, out.AssignedTo)

	// 传值：重新校验存在性
	out, err = f.svc.Update(ctx, v.ID, UpdateTaskInput{
		AssignedTo: domain.Optional[string]{Set: true, Value: member.UserID},
	}, admin)
	require.NoError(t, err)
	require.NotNil(t, out.AssignedTo)
	assert.Equal(t, member.UserID, *out.AssignedTo)

	_, err = f.svc.Update(ctx, v.ID, UpdateTaskInput{
		AssignedTo: domain.Optional[string]{Set: true, Value: "ghost"},
	}, admin)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	// title 显式 null 不是「清空」，直接拒绝
	_, err = f.svc.Update(ctx, v.ID, UpdateTaskInput{
		Title: domain.Optional[string]{Set: true, Null: true},
	}, admin)
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Contains(t, err.Error(), "null")

	_, err = f.svc.Update(ctx, v.ID, UpdateTaskInput{}, member)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

// 规格里的完整走查：BACKLOG → IN_PROGRESS → REVIEW →(member 被拒)→ DONE
func TestTaskMove_Workflow(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	ctx := context.Background()

	v := f.mustCreate(t, &member.UserID)

	out, err := f.svc.Move(ctx, v.ID, domain.StatusInProgress, member)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, out.Status)

	out, err = f.svc.Move(ctx, v.ID, domain.StatusReview, member)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReview, out.Status)

	// 审批边：被指派的 MEMBER 也不行
	_, err = f.svc.Move(ctx, v.ID, domain.StatusDone, member)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

	out, err = f.svc.Move(ctx, v.ID, domain.StatusDone, admin)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, out.Status)

	// 终态：任何进一步移动都是非法迁移
	_, err = f.svc.Move(ctx, v.ID, domain.StatusBacklog, admin)
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.Contains(t, err.Error(), "invalid transition")
}

func TestTaskMove_Validation(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	ctx := context.Background()

	v := f.mustCreate(t, &member.UserID)

	_, err := f.svc.Move(ctx, v.ID, domain.StatusBacklog, admin)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = f.svc.Move(ctx, v.ID, domain.Status("ARCHIVED"), admin)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	_, err = f.svc.Move(ctx, "missing", domain.StatusInProgress, admin)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

	// 指派给别人的 task，MEMBER 动不了
	other := f.mustCreate(t, nil)
	_, err = f.svc.Move(ctx, other.ID, domain.StatusInProgress, member)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}

func TestTaskMove_ConcurrentLoser(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	ctx := context.Background()

	v := f.mustCreate(t, &member.UserID)

	// 模拟条件更新输掉：底层状态已被并发请求改走
	ok, err := f.tasks.UpdateStatus(ctx, v.ID, domain.StatusBacklog, domain.StatusInProgress)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.tasks.UpdateStatus(ctx, v.ID, domain.StatusBacklog, domain.StatusInProgress)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTaskDelete(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	ctx := context.Background()

	v := f.mustCreate(t, nil)

	assert.Equal(t, domain.KindForbidden, domain.KindOf(f.svc.Delete(ctx, v.ID, member)))
	require.NoError(t, f.svc.Delete(ctx, v.ID, admin))
	assert.Equal(t, domain.KindNotFound, domain.KindOf(f.svc.Delete(ctx, v.ID, admin)))
}

func TestTaskHistory(t *testing.T) {
	t.Parallel()
	f := newTaskFixture(t)
	ctx := context.Background()

	v := f.mustCreate(t, &member.UserID)
	_, err := f.svc.Move(ctx, v.ID, domain.StatusInProgress, admin)
	require.NoError(t, err)

	logs, err := f.svc.History(ctx, v.ID, admin)
	require.NoError(t, err)
	require.Len(t, logs, 2) // create + move，新的在前
	assert.Equal(t, "task.move", logs[0].Action)
	assert.Equal(t, "task.create", logs[1].Action)
	require.NotNil(t, logs[0].PerformedByName)
	assert.Equal(t, "Root", *logs[0].PerformedByName)

	_, err = f.svc.History(ctx, v.ID, member)
	assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
}
