package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pranavk/go-superadmin-service/shared/models"
)

type tenantKey struct{ id, name string }
type userKey struct{ userID, tenantID string }
type membershipKey struct{ tenantID, userID string }

// MemoryStore is an in-memory TenantStore used by unit tests and local
// development. Upserts are last-writer-wins and preserve CreatedAt, matching
// the postgres implementation.
type MemoryStore struct {
	mu          sync.RWMutex
	schemaReady bool
	tenants     map[tenantKey]models.Tenant
	users       map[userKey]models.User
	memberships map[membershipKey]models.TenantMembership

	// FailWrites forces every upsert to fail with ErrWrite when set.
	FailWrites bool
}

// NewMemoryStore creates an empty in-memory TenantStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tenants:     make(map[tenantKey]models.Tenant),
		users:       make(map[userKey]models.User),
		memberships: make(map[membershipKey]models.TenantMembership),
	}
}

func (s *MemoryStore) EnsureSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemaReady = true
	return nil
}

func (s *MemoryStore) UpsertTenant(ctx context.Context, tenant *models.Tenant) error {
	if err := tenant.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return fmt.Errorf("%w: upsert tenant %s", ErrWrite, tenant.TenantID)
	}

	key := tenantKey{tenant.TenantID, tenant.TenantName}
	record := *tenant
	stampAudit(&record.CreatedAt, &record.UpdatedAt)
	if existing, ok := s.tenants[key]; ok {
		record.CreatedAt = existing.CreatedAt
	}
	s.tenants[key] = record
	*tenant = record
	return nil
}

func (s *MemoryStore) UpsertUser(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return fmt.Errorf("%w: upsert user %s", ErrWrite, user.UserID)
	}

	key := userKey{user.UserID, user.TenantID}
	record := *user
	stampAudit(&record.CreatedAt, &record.UpdatedAt)
	if existing, ok := s.users[key]; ok {
		record.CreatedAt = existing.CreatedAt
	}
	s.users[key] = record
	*user = record
	return nil
}

func (s *MemoryStore) UpsertMembership(ctx context.Context, membership *models.TenantMembership) error {
	if err := membership.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return fmt.Errorf("%w: upsert membership %s/%s", ErrWrite, membership.TenantID, membership.UserID)
	}

	key := membershipKey{membership.TenantID, membership.UserID}
	record := *membership
	stampAudit(&record.CreatedAt, &record.UpdatedAt)
	if existing, ok := s.memberships[key]; ok {
		record.CreatedAt = existing.CreatedAt
	}
	s.memberships[key] = record
	*membership = record
	return nil
}

func (s *MemoryStore) GetTenant(ctx context.Context, tenantID, tenantName string) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenant, ok := s.tenants[tenantKey{tenantID, tenantName}]
	if !ok {
		return nil, fmt.Errorf("%w: tenant %s/%s", ErrNotFound, tenantID, tenantName)
	}
	return &tenant, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email, tenantID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) && (tenantID == "" || user.TenantID == tenantID) {
			u := user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("%w: user %s", ErrNotFound, email)
}

func (s *MemoryStore) GetUsersByTenant(ctx context.Context, tenantID string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var users []models.User
	for _, user := range s.users {
		if user.TenantID == tenantID {
			users = append(users, user)
		}
	}
	return users, nil
}

func (s *MemoryStore) GetMembership(ctx context.Context, tenantID, userID string) (*models.TenantMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	membership, ok := s.memberships[membershipKey{tenantID, userID}]
	if !ok {
		return nil, fmt.Errorf("%w: membership %s/%s", ErrNotFound, tenantID, userID)
	}
	return &membership, nil
}

// Counts returns the number of records per collection, for test assertions.
func (s *MemoryStore) Counts() (tenants, users, memberships int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tenants), len(s.users), len(s.memberships)
}

// SchemaReady reports whether EnsureSchema has been called.
func (s *MemoryStore) SchemaReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schemaReady
}

var _ TenantStore = (*MemoryStore)(nil)
