package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func taskWith(status Status, assignee *string) *Task {
	return &Task{ID: "t1", Title: "demo", Status: status, AssignedTo: assignee, CreatedBy: "admin-1"}
}

var (
	adminCaller  = Identity{UserID: "admin-1", Email: "a@x.dev", Role: RoleAdmin}
	memberCaller = Identity{UserID: "member-1", Email: "m@x.dev", Role: RoleMember}
)

func TestCheckTransition_AllowedEdgesOnly(t *testing.T) {
	t.Parallel()

	all := []Status{StatusBacklog, StatusInProgress, StatusReview, StatusDone}
	allowed := map[[2]Status]bool{
		{StatusBacklog, StatusInProgress}: true,
		{StatusInProgress, StatusReview}:  true,
		{StatusInProgress, StatusBacklog}: true,
		{StatusReview, StatusDone}:        true,
		{StatusReview, StatusInProgress}:  true,
	}

	for _, from := range all {
		for _, to := range all {
			err := CheckTransition(taskWith(from, nil), to, adminCaller)
			switch {
			case from == to:
				require.Error(t, err, "%s -> %s", from, to)
				assert.Equal(t, KindValidation, KindOf(err))
				assert.Contains(t, err.Error(), "already in this status")
			case allowed[[2]Status{from, to}]:
				assert.NoError(t, err, "%s -> %s", from, to)
			default:
				require.Error(t, err, "%s -> %s", from, to)
				assert.Equal(t, KindValidation, KindOf(err))
				assert.Contains(t, err.Error(), "invalid transition")
			}
		}
	}
}

func TestCheckTransition_DoneIsTerminal(t *testing.T) {
	t.Parallel()

	for _, to := range []Status{StatusBacklog, StatusInProgress, StatusReview} {
		err := CheckTransition(taskWith(StatusDone, strptr("member-1")), to, adminCaller)
		require.Error(t, err)
		// DONE 无出边：报非法迁移，不是「已在该状态」
		assert.Equal(t, KindValidation, KindOf(err))
		assert.Contains(t, err.Error(), "invalid transition")
	}
}

func TestCheckTransition_AdminOnlyEdges(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from, to Status
	}{
		{StatusReview, StatusDone},
		{StatusReview, StatusInProgress},
		{StatusInProgress, StatusBacklog},
	}
	for _, tc := range cases {
		// 连被指派的 MEMBER 都不行
		err := CheckTransition(taskWith(tc.from, strptr(memberCaller.UserID)), tc.to, memberCaller)
		require.Error(t, err, "%s -> %s", tc.from, tc.to)
		assert.Equal(t, KindForbidden, KindOf(err))

		assert.NoError(t, CheckTransition(taskWith(tc.from, nil), tc.to, adminCaller))
	}
}

func TestCheckTransition_MemberOwnership(t *testing.T) {
	t.Parallel()

	// 指派给自己：可以走非 admin-only 的边
	err := CheckTransition(taskWith(StatusBacklog, strptr(memberCaller.UserID)), StatusInProgress, memberCaller)
	assert.NoError(t, err)

	// 指派给别人
	err = CheckTransition(taskWith(StatusBacklog, strptr("someone-else")), StatusInProgress, memberCaller)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))

	// 没有指派
	err = CheckTransition(taskWith(StatusBacklog, nil), StatusInProgress, memberCaller)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestCheckTransition_EdgeCheckedBeforeRole(t *testing.T) {
	t.Parallel()

	// 非法的边对没权限的人也要报 Validation，而不是 Forbidden
	err := CheckTransition(taskWith(StatusBacklog, nil), StatusDone, memberCaller)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestValidStatus(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidStatus(StatusBacklog))
	assert.True(t, ValidStatus(StatusDone))
	assert.False(t, ValidStatus(Status("ARCHIVED")))
	assert.False(t, ValidStatus(Status("")))
}
