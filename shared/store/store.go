// Package store defines the tenant store capability consumed by the
// provisioning orchestrator: keyed upserts and lookups over three logical
// collections (tenants, users, tenant memberships). Physical persistence is
// the implementation's concern.
package store

import (
	"context"
	"errors"

	"github.com/pranavk/go-superadmin-service/shared/models"
)

var (
	// ErrNotFound indicates a lookup matched no record. Read failures are
	// normalized to this; callers treat the two identically.
	ErrNotFound = errors.New("record not found")

	// ErrWrite indicates an upsert against the backing store failed.
	// Write failures abort the provisioning sequence.
	ErrWrite = errors.New("store write failed")
)

// TenantStore is the persistence capability for tenant, user and membership
// records. Upserts are last-writer-wins on the record key and must preserve
// CreatedAt when overwriting an existing record.
type TenantStore interface {
	// EnsureSchema creates the backing tables/collections if absent. Idempotent.
	EnsureSchema(ctx context.Context) error

	UpsertTenant(ctx context.Context, tenant *models.Tenant) error
	UpsertUser(ctx context.Context, user *models.User) error
	UpsertMembership(ctx context.Context, membership *models.TenantMembership) error

	GetTenant(ctx context.Context, tenantID, tenantName string) (*models.Tenant, error)
	// GetUserByEmail resolves a user by email. An empty tenantID matches any tenant.
	GetUserByEmail(ctx context.Context, email, tenantID string) (*models.User, error)
	GetUsersByTenant(ctx context.Context, tenantID string) ([]models.User, error)
	GetMembership(ctx context.Context, tenantID, userID string) (*models.TenantMembership, error)
}
