package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Trusted_Editor ")
	require.NoError(t, err)
	require.Equal(t, RoleTrustedEditor, r)

	_, err = ParseRole("superuser")
	require.ErrorIs(t, err, ErrUnknownRole)
	_, err = ParseRole("")
	require.ErrorIs(t, err, ErrUnknownRole)
}

func TestRoleOrdering(t *testing.T) {
	roles := Roles()
	for i := 1; i < len(roles); i++ {
		require.Greater(t, roles[i].Level(), roles[i-1].Level())
		require.True(t, roles[i].AtLeast(roles[i-1]))
		require.False(t, roles[i-1].AtLeast(roles[i]))
	}
	require.Equal(t, -1, Role("bogus").Level())
	require.False(t, Role("bogus").AtLeast(RoleNewcomer))
	require.False(t, RoleOwner.AtLeast(Role("bogus")))
	require.True(t, RoleModerator.AtLeast(RoleModerator))
}

func TestCanAssign(t *testing.T) {
	cases := []struct {
		by, target Role
		want       bool
	}{
		{RoleOwner, RoleAdmin, true},
		{RoleOwner, RoleModerator, true},
		{RoleOwner, RoleOwner, false},
		{RoleAdmin, RoleAdmin, false},
		{RoleAdmin, RoleModerator, true},
		{RoleAdmin, RoleNewcomer, true},
		{RoleModerator, RoleContributor, true},
		{RoleModerator, RoleModerator, false},
		{RoleNewcomer, RoleNewcomer, false},
		{RoleAdmin, Role("x"), false},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.by.CanAssign(c.target), "%s -> %s", c.by, c.target)
	}
}

func TestCanManage(t *testing.T) {
	require.True(t, RoleAdmin.CanManage(RoleModerator))
	require.False(t, RoleAdmin.CanManage(RoleAdmin))
	require.False(t, RoleAdmin.CanManage(RoleOwner))
	require.True(t, RoleOwner.CanManage(RoleAdmin))
}
