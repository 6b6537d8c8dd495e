package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is a regular account holder
	RoleUser UserRole = "user"
	// RoleAdmin can administer other accounts (i.e. status changes)
	RoleAdmin UserRole = "admin"
)

// UserStatus is the account lifecycle status
type UserStatus = string

const (
	// UserStatusPending is a registered account awaiting email verification
	UserStatusPending UserStatus = "pending"
	// UserStatusActive is a verified, usable account
	UserStatusActive UserStatus = "active"
	// UserStatusInactive is an administratively deactivated account
	UserStatusInactive UserStatus = "inactive"
	// UserStatusBlocked is an administratively blocked account
	UserStatusBlocked UserStatus = "blocked"
)

// User is the account model
type User struct {
	bun.BaseModel     `bun:"table:users,alias:usr"`
	ID                uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name              string     `bun:"name,nullzero" json:"name,omitempty"`
	Email             string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash      string     `bun:"password_hash" json:"-"`
	Phone             string     `bun:"phone_number,nullzero,unique" json:"phone_number,omitempty"`
	AadhaarNumber     string     `bun:"aadhaar_number,nullzero,unique" json:"aadhaar_number,omitempty"`
	AadhaarVerified   bool       `bun:"aadhaar_verified" json:"aadhaar_verified"`
	EmailVerified     bool       `bun:"is_email_verified" json:"is_email_verified"`
	ProfilePictureURL string     `bun:"profile_picture_url,nullzero" json:"profile_picture_url,omitempty"`
	Role              UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	Status            UserStatus `bun:"status,notnull" json:"status,omitempty"`
	CreatedAt         *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// EnsureStatus backfills the zero value with the registration default.
func (u *User) EnsureStatus() {
	if u.Status == "" {
		u.Status = UserStatusPending
	}
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// ValidStatus reports whether s is one of the persisted status values.
func ValidStatus(s UserStatus) bool {
	switch s {
	case UserStatusPending, UserStatusActive, UserStatusInactive, UserStatusBlocked:
		return true
	default:
		return false
	}
}

// TokenPurpose tags a verification token with the flow it belongs to.
// Open string tag: engines downstream may add purposes without schema changes.
type TokenPurpose = string

const (
	// TokenPurposeEmail scopes a token to email verification
	TokenPurposeEmail TokenPurpose = "email"
	// TokenPurposePasswordReset scopes a token to the password reset flow
	TokenPurposePasswordReset TokenPurpose = "password_reset"
)

// VerificationToken is a single-use, purpose-scoped OTP
type VerificationToken struct {
	bun.BaseModel `bun:"table:verification_tokens,alias:vtk"`
	ID            uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Token         string       `bun:"token,notnull" json:"-"`
	Purpose       TokenPurpose `bun:"type,notnull" json:"type,omitempty"`
	ExpiresAt     time.Time    `bun:"expires_at,notnull" json:"expires_at,omitempty"`
	IsUsed        bool         `bun:"is_used" json:"is_used"`
	UserID        uuid.UUID    `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User        `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	CreatedAt     *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Expired reports whether the token is stale at the given instant.
func (t *VerificationToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
