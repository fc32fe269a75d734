package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("ROOT").Valid())
}

func TestRoleAuthorities(t *testing.T) {
	assert.Equal(t, []string{"ROLE_USER"}, RoleUser.Authorities())
	assert.ElementsMatch(t, []string{"ROLE_ADMIN", "ROLE_USER"}, RoleAdmin.Authorities())
	assert.Nil(t, Role("ROOT").Authorities())
}
