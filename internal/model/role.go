package model

import (
	"errors"
	"strings"
)

// Role 為使用者權限等級，依 roleLevels 排序
type Role string

const (
	RoleNewcomer      Role = "newcomer"
	RoleContributor   Role = "contributor"
	RoleTrustedEditor Role = "trusted_editor"
	RoleModerator     Role = "moderator"
	RoleAdmin         Role = "admin"
	RoleOwner         Role = "owner"
)

var ErrUnknownRole = errors.New("unknown role")

var roleLevels = map[Role]int{
	RoleNewcomer:      0,
	RoleContributor:   1,
	RoleTrustedEditor: 2,
	RoleModerator:     3,
	RoleAdmin:         4,
	RoleOwner:         5,
}

// Roles 依等級由低到高回傳所有角色
func Roles() []Role {
	return []Role{RoleNewcomer, RoleContributor, RoleTrustedEditor, RoleModerator, RoleAdmin, RoleOwner}
}

// ParseRole 不分大小寫解析角色字串
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := roleLevels[r]; !ok {
		return "", ErrUnknownRole
	}
	return r, nil
}

// Level 回傳角色等級，未知角色為 -1
func (r Role) Level() int {
	if lvl, ok := roleLevels[r]; ok {
		return lvl
	}
	return -1
}

func (r Role) Valid() bool {
	return r.Level() >= 0
}

// AtLeast 判斷 r 是否大於等於 min
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && min.Valid() && r.Level() >= min.Level()
}

// CanAssign 判斷 r 是否能把其他使用者設為 target：
// 指派者必須高於 target，只有 owner 能指派 admin，owner 無法透過 API 指派
func (r Role) CanAssign(target Role) bool {
	if !r.Valid() || !target.Valid() || target == RoleOwner {
		return false
	}
	if target == RoleAdmin {
		return r == RoleOwner
	}
	return r.Level() > target.Level()
}

// CanManage 判斷 r 是否能修改目前角色為 current 的使用者
func (r Role) CanManage(current Role) bool {
	if !r.Valid() || !current.Valid() {
		return false
	}
	return r.Level() > current.Level()
}
