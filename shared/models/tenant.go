package models

import (
	"fmt"
	"time"
)

// Status represents the lifecycle state of a tenant or user record
type Status string

const (
	StatusActive    Status = "Active"
	StatusSuspended Status = "Suspended"
	StatusDeleted   Status = "Deleted"
)

// Tenant represents an organizational unit in the tenant store.
// A record is uniquely identified by the composite (TenantID, TenantName) key;
// both parts are immutable after creation.
type Tenant struct {
	TenantID           string     `json:"tenant_id" gorm:"primaryKey;type:varchar(64)"`
	TenantName         string     `json:"tenant_name" gorm:"primaryKey;type:varchar(128)"`
	Subdomain          string     `json:"subdomain"`
	PrimaryContactName string     `json:"primary_contact_name"`
	ContactEmail       string     `json:"contact_email"`
	ContactPhone       string     `json:"contact_phone,omitempty"`
	PlanTier           string     `json:"plan_tier"`
	Status             Status     `json:"status" gorm:"type:varchar(16);default:Active"`
	ConfigSettings     string     `json:"config_settings,omitempty" gorm:"type:jsonb;default:'{}'"`
	SubscriptionStart  time.Time  `json:"subscription_start"`
	SubscriptionEnd    time.Time  `json:"subscription_end"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
	DeletedAt          *time.Time `json:"deleted_at,omitempty"`
}

// TableName returns the table name for the Tenant model
func (Tenant) TableName() string {
	return "tenants"
}

// Validate checks the tenant record invariants before it is written.
func (t *Tenant) Validate() error {
	if t.TenantID == "" || t.TenantName == "" {
		return fmt.Errorf("tenant key (tenant_id, tenant_name) must be set")
	}
	if t.SubscriptionEnd.Before(t.SubscriptionStart) {
		return fmt.Errorf("subscription end %s precedes start %s",
			t.SubscriptionEnd.Format(time.RFC3339), t.SubscriptionStart.Format(time.RFC3339))
	}
	return nil
}
