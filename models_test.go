package accounts_test

import (
	"testing"
	"time"

	accounts "github.com/primesoft-in/go-accounts"
	"github.com/stretchr/testify/assert"
)

func TestEnsureStatus(t *testing.T) {
	u := &accounts.User{}
	u.EnsureStatus()
	assert.Equal(t, accounts.UserStatusPending, u.Status)

	u = &accounts.User{Status: accounts.UserStatusActive}
	u.EnsureStatus()
	assert.Equal(t, accounts.UserStatusActive, u.Status)
}

func TestValidStatus(t *testing.T) {
	assert.True(t, accounts.ValidStatus("pending"))
	assert.True(t, accounts.ValidStatus("active"))
	assert.True(t, accounts.ValidStatus("inactive"))
	assert.True(t, accounts.ValidStatus("blocked"))
	assert.False(t, accounts.ValidStatus("archived"))
	assert.False(t, accounts.ValidStatus(""))
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, (&accounts.User{Role: accounts.RoleAdmin}).IsAdmin())
	assert.False(t, (&accounts.User{Role: accounts.RoleUser}).IsAdmin())
	assert.False(t, (&accounts.User{}).IsAdmin())
}

func TestVerificationTokenExpired(t *testing.T) {
	now := time.Now()
	token := &accounts.VerificationToken{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, token.Expired(now))
	assert.True(t, token.Expired(now.Add(2*time.Minute)))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from accounts.UserStatus
		to   accounts.UserStatus
		want bool
	}{
		{"pending to active", accounts.UserStatusPending, accounts.UserStatusActive, true},
		{"pending to blocked", accounts.UserStatusPending, accounts.UserStatusBlocked, true},
		{"active to inactive", accounts.UserStatusActive, accounts.UserStatusInactive, true},
		{"active to blocked", accounts.UserStatusActive, accounts.UserStatusBlocked, true},
		{"blocked to active", accounts.UserStatusBlocked, accounts.UserStatusActive, true},
		{"active to pending", accounts.UserStatusActive, accounts.UserStatusPending, false},
		{"inactive to pending", accounts.UserStatusInactive, accounts.UserStatusPending, false},
		{"same status", accounts.UserStatusActive, accounts.UserStatusActive, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, accounts.CanTransition(tt.from, tt.to))
		})
	}
}

func TestValidateTransition(t *testing.T) {
	t.Run("activation requires verified email", func(t *testing.T) {
		user := &accounts.User{Status: accounts.UserStatusPending, EmailVerified: false}
		err := accounts.ValidateTransition(user, accounts.UserStatusActive)
		assert.ErrorIs(t, err, accounts.ErrCannotActivateUnverified)
	})

	t.Run("verified pending user can activate", func(t *testing.T) {
		user := &accounts.User{Status: accounts.UserStatusPending, EmailVerified: true}
		assert.NoError(t, accounts.ValidateTransition(user, accounts.UserStatusActive))
	})

	t.Run("invalid target status", func(t *testing.T) {
		user := &accounts.User{Status: accounts.UserStatusActive, EmailVerified: true}
		err := accounts.ValidateTransition(user, "archived")
		assert.ErrorIs(t, err, accounts.ErrInvalidStatus)
	})

	t.Run("disallowed transition", func(t *testing.T) {
		user := &accounts.User{Status: accounts.UserStatusActive, EmailVerified: true}
		err := accounts.ValidateTransition(user, accounts.UserStatusPending)
		assert.ErrorIs(t, err, accounts.ErrInvalidTransition)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		user := &accounts.User{Status: accounts.UserStatusBlocked, EmailVerified: true}
		assert.NoError(t, accounts.ValidateTransition(user, accounts.UserStatusBlocked))
	})
}
