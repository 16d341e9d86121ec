package domain

// 纯函数鉴权：只看 (caller, resource)，不碰存储。
// 401/403 分开：没登录是 Unauthorized，登录了没权限是 Forbidden。

// CanManageTasks 建 / 改 / 删 task 只限 ADMIN
func CanManageTasks(caller Identity) error {
	if !caller.IsAdmin() {
		return Forbidden("only admins may manage tasks")
	}
	return nil
}

// CanReadTask ADMIN 任意读；MEMBER 只能读指派给自己的
func CanReadTask(caller Identity, t *Task) error {
	if caller.IsAdmin() {
		return nil
	}
	if t.AssignedTo != nil && *t.AssignedTo == caller.UserID {
		return nil
	}
	return Forbidden("access denied")
}

// CanListUsers 用户列表只限 ADMIN
func CanListUsers(caller Identity) error {
	if !caller.IsAdmin() {
		return Forbidden("access denied")
	}
	return nil
}

// CanReadUser ADMIN 或本人
func CanReadUser(caller Identity, userID string) error {
	if caller.IsAdmin() || caller.UserID == userID {
		return nil
	}
	return Forbidden("access denied")
}

// CanManageUsers 改 / 删用户只限 ADMIN
func CanManageUsers(caller Identity) error {
	if !caller.IsAdmin() {
		return Forbidden("only admins may manage users")
	}
	return nil
}

// CheckUserDeletable 自保护：不许自删；ADMIN 数量不能归零
func CheckUserDeletable(caller Identity, target *User, adminCount int64) error {
	if target.ID == caller.UserID {
		return Validation("you cannot delete your own account")
	}
	if target.IsAdmin() && adminCount <= 1 {
		return Validation("cannot delete the last admin")
	}
	return nil
}
