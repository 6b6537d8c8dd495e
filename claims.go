package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the structured JWT claims a session carries
type AuthClaims interface {
	Subject() string
	UserID() string
	Email() string
	Role() string
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID       string `json:"uid,omitempty"`
	UserEmail string `json:"email,omitempty"`
	UserRole  string `json:"role,omitempty"`
}

var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Email returns the email claim
func (c *JWTClaims) Email() string {
	return c.UserEmail
}

// Role returns the global role
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
