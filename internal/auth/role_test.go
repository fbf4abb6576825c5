package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleAdmin, ParseRole("  Admin "))
	assert.Equal(t, RoleModerator, ParseRole("MODERATOR"))
	assert.Equal(t, RoleUser, ParseRole("user"))
	// unknown strings never grant elevated access
	assert.Equal(t, RoleUser, ParseRole("superadmin"))
	assert.Equal(t, RoleUser, ParseRole(""))
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		required Role
		actual   Role
		want     bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleModerator, false},
		{RoleAdmin, RoleUser, false},
		{RoleModerator, RoleAdmin, true},
		{RoleModerator, RoleModerator, true},
		{RoleModerator, RoleUser, false},
		{RoleUser, RoleUser, true},
		{RoleUser, RoleAdmin, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Authorize(tt.required, tt.actual),
			"required=%s actual=%s", tt.required, tt.actual)
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("admin"))
	assert.True(t, Valid("Moderator"))
	assert.True(t, Valid("user"))
	assert.False(t, Valid("accountant"))
	assert.False(t, Valid(""))
}
