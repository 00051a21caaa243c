package models

import (
	"fmt"
	"time"
)

// TenantMembership links a user to a tenant with a role label. The store does
// not enforce referential integrity on the (TenantID, UserID) key; write
// ordering is the caller's responsibility.
type TenantMembership struct {
	TenantID  string    `json:"tenant_id" gorm:"primaryKey;type:varchar(64)"`
	UserID    string    `json:"user_id" gorm:"primaryKey;type:varchar(128)"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TenantMembership) TableName() string {
	return "tenant_memberships"
}

// Validate checks the membership record invariants before it is written.
func (m *TenantMembership) Validate() error {
	if m.TenantID == "" || m.UserID == "" {
		return fmt.Errorf("membership key (tenant_id, user_id) must be set")
	}
	return nil
}
