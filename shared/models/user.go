package models

import (
	"fmt"
	"net/mail"
	"time"
)

// User represents a person who can authenticate. The UserID is always
// assigned by the identity provider, never generated locally, and a record
// is uniquely identified by the composite (UserID, TenantID) key.
type User struct {
	UserID              string     `json:"user_id" gorm:"primaryKey;type:varchar(128)"`
	TenantID            string     `json:"tenant_id" gorm:"primaryKey;type:varchar(64);index"`
	Username            string     `json:"username"`
	Email               string     `json:"email" gorm:"index"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	Role                string     `json:"role"`
	Status              Status     `json:"status" gorm:"type:varchar(16);default:Active"`
	EmailVerified       bool       `json:"email_verified"`
	LastLogin           *time.Time `json:"last_login,omitempty"`
	PasswordResetToken  string     `json:"-"`
	PasswordResetExpiry *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Validate checks the user record invariants before it is written.
func (u *User) Validate() error {
	if u.UserID == "" || u.TenantID == "" {
		return fmt.Errorf("user key (user_id, tenant_id) must be set")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return fmt.Errorf("invalid email %q: %w", u.Email, err)
	}
	return nil
}

// FullName returns the display name for contact fields.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
