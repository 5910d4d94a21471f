package domain

import (
	"strings"
	"time"
)

// User represents an authenticated identity in the platform. The credential
// hash and reset-token fields never leave the process boundary.
type User struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	ResetTokenHash    string     `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// NormalizeEmail lowercases and trims an email so uniqueness checks are
// case-insensitive everywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasActiveResetToken reports whether a reset token is stored and not yet expired.
func (u *User) HasActiveResetToken(now time.Time) bool {
	return u != nil && u.ResetTokenHash != "" && u.ResetTokenExpires != nil && u.ResetTokenExpires.After(now)
}

// ClearResetToken removes the single-use reset token fields.
func (u *User) ClearResetToken() {
	if u == nil {
		return
	}
	u.ResetTokenHash = ""
	u.ResetTokenExpires = nil
}
