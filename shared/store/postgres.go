package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pranavk/go-superadmin-service/shared/models"
)

// PostgresStore implements TenantStore on top of a GORM postgres connection.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore creates a TenantStore backed by the given database handle.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates or migrates the three backing tables.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.TenantMembership{},
	)
	if err != nil {
		return fmt.Errorf("%w: ensure schema: %v", ErrWrite, err)
	}
	return nil
}

// UpsertTenant writes a tenant record, overwriting all fields except
// created_at when a record with the same (tenant_id, tenant_name) key exists.
func (s *PostgresStore) UpsertTenant(ctx context.Context, tenant *models.Tenant) error {
	if err := tenant.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	stampAudit(&tenant.CreatedAt, &tenant.UpdatedAt)

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "tenant_name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"subdomain", "primary_contact_name", "contact_email", "contact_phone",
			"plan_tier", "status", "config_settings",
			"subscription_start", "subscription_end", "updated_at", "deleted_at",
		}),
	}).Create(tenant).Error
	if err != nil {
		return fmt.Errorf("%w: upsert tenant %s: %v", ErrWrite, tenant.TenantID, err)
	}
	return nil
}

// UpsertUser writes a user record keyed by (user_id, tenant_id).
func (s *PostgresStore) UpsertUser(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	stampAudit(&user.CreatedAt, &user.UpdatedAt)

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"username", "email", "first_name", "last_name", "role", "status",
			"email_verified", "last_login", "password_reset_token",
			"password_reset_expiry", "updated_at",
		}),
	}).Create(user).Error
	if err != nil {
		return fmt.Errorf("%w: upsert user %s: %v", ErrWrite, user.UserID, err)
	}
	return nil
}

// UpsertMembership writes a membership record keyed by (tenant_id, user_id).
func (s *PostgresStore) UpsertMembership(ctx context.Context, membership *models.TenantMembership) error {
	if err := membership.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	stampAudit(&membership.CreatedAt, &membership.UpdatedAt)

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
	}).Create(membership).Error
	if err != nil {
		return fmt.Errorf("%w: upsert membership %s/%s: %v",
			ErrWrite, membership.TenantID, membership.UserID, err)
	}
	return nil
}

// GetTenant looks up a tenant by its composite key. Read failures are
// normalized to ErrNotFound.
func (s *PostgresStore) GetTenant(ctx context.Context, tenantID, tenantName string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND tenant_name = ?", tenantID, tenantName).
		First(&tenant).Error
	if err != nil {
		return nil, fmt.Errorf("%w: tenant %s/%s", ErrNotFound, tenantID, tenantName)
	}
	return &tenant, nil
}

// GetUserByEmail looks up a user by email, optionally scoped to a tenant.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email, tenantID string) (*models.User, error) {
	query := s.db.WithContext(ctx).Where("email = ?", email)
	if tenantID != "" {
		query = query.Where("tenant_id = ?", tenantID)
	}

	var user models.User
	if err := query.First(&user).Error; err != nil {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, email)
	}
	return &user, nil
}

// GetUsersByTenant returns all user records for a tenant.
func (s *PostgresStore) GetUsersByTenant(ctx context.Context, tenantID string) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("%w: users for tenant %s", ErrNotFound, tenantID)
	}
	return users, nil
}

// GetMembership looks up a membership by its composite key.
func (s *PostgresStore) GetMembership(ctx context.Context, tenantID, userID string) (*models.TenantMembership, error) {
	var membership models.TenantMembership
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		First(&membership).Error
	if err != nil {
		return nil, fmt.Errorf("%w: membership %s/%s", ErrNotFound, tenantID, userID)
	}
	return &membership, nil
}

// stampAudit fills audit timestamps. CreatedAt is only set for new records;
// the upsert clauses never overwrite it on conflict.
func stampAudit(createdAt, updatedAt *time.Time) {
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}
