package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranavk/go-superadmin-service/shared/config"
	"github.com/pranavk/go-superadmin-service/shared/models"
	"github.com/pranavk/go-superadmin-service/shared/provider"
	"github.com/pranavk/go-superadmin-service/shared/store"
)

func testTenantConfig() *config.TenantConfig {
	return &config.TenantConfig{
		SentinelTenantID:   "SUPER_ADMIN",
		SentinelTenantName: "SuperAdmin",
	}
}

func newTestOrchestrator(idp provider.IdentityProvider, st store.TenantStore) *Orchestrator {
	return NewOrchestrator(idp, st, testTenantConfig())
}

func TestRun_EmptyRequestUsesDefaults(t *testing.T) {
	idp := provider.NewFakeProvider(provider.Role{ID: "rol_1", Name: SuperAdminRole})
	st := store.NewMemoryStore()
	orc := newTestOrchestrator(idp, st)

	result, err := orc.Run(context.Background(), SetupRequest{})
	require.NoError(t, err)

	assert.Equal(t, "SUPER_ADMIN", result.TenantID)
	assert.Equal(t, "superadmin", result.Username)
	assert.NotEmpty(t, result.UserID)

	assert.True(t, st.SchemaReady())

	tenants, users, memberships := st.Counts()
	assert.Equal(t, 1, tenants)
	assert.Equal(t, 1, users)
	assert.Equal(t, 1, memberships)

	tenant, err := st.GetTenant(context.Background(), "SUPER_ADMIN", "SuperAdmin")
	require.NoError(t, err)
	assert.Equal(t, "superadmin@yourdomain.com", tenant.ContactEmail)
	assert.Equal(t, "Super Admin", tenant.PrimaryContactName)
	assert.Equal(t, "admin", tenant.Subdomain)
	assert.Equal(t, "SystemTenant", tenant.PlanTier)
	assert.Equal(t, models.StatusActive, tenant.Status)
	assert.JSONEq(t, `{"is_system_tenant":true}`, tenant.ConfigSettings)

	user, err := st.GetUserByEmail(context.Background(), "superadmin@yourdomain.com", "SUPER_ADMIN")
	require.NoError(t, err)
	assert.Equal(t, result.UserID, user.UserID)
	assert.Equal(t, SuperAdminRole, user.Role)
	assert.True(t, user.EmailVerified)
	assert.Equal(t, models.StatusActive, user.Status)

	membership, err := st.GetMembership(context.Background(), "SUPER_ADMIN", result.UserID)
	require.NoError(t, err)
	assert.Equal(t, SuperAdminRole, membership.Role)

	assert.Equal(t, []string{"rol_1"}, idp.Grants(result.UserID))
}

func TestRun_CustomRequest(t *testing.T) {
	idp := provider.NewFakeProvider(provider.Role{ID: "rol_1", Name: SuperAdminRole})
	st := store.NewMemoryStore()
	orc := newTestOrchestrator(idp, st)

	result, err := orc.Run(context.Background(), SetupRequest{
		Email:     "root@example.com",
		Password:  "s3cret!Pass",
		FirstName: "Root",
		LastName:  "Operator",
		Username:  "root",
	})
	require.NoError(t, err)
	assert.Equal(t, "root", result.Username)

	user, err := st.GetUserByEmail(context.Background(), "root@example.com", "SUPER_ADMIN")
	require.NoError(t, err)
	assert.Equal(t, "Root", user.FirstName)
	assert.Equal(t, "Operator", user.LastName)
}

func TestRun_RerunDoesNotDuplicate(t *testing.T) {
	idp := provider.NewFakeProvider(provider.Role{ID: "rol_1", Name: SuperAdminRole})
	st := store.NewMemoryStore()
	orc := newTestOrchestrator(idp, st)

	first, err := orc.Run(context.Background(), SetupRequest{})
	require.NoError(t, err)

	tenantBefore, err := st.GetTenant(context.Background(), "SUPER_ADMIN", "SuperAdmin")
	require.NoError(t, err)

	second, err := orc.Run(context.Background(), SetupRequest{})
	require.NoError(t, err)

	assert.Equal(t, first.UserID, second.UserID)
	assert.Equal(t, 1, idp.AccountCount())

	tenants, users, memberships := st.Counts()
	assert.Equal(t, 1, tenants)
	assert.Equal(t, 1, users)
	assert.Equal(t, 1, memberships)

	tenantAfter, err := st.GetTenant(context.Background(), "SUPER_ADMIN", "SuperAdmin")
	require.NoError(t, err)
	assert.Equal(t, tenantBefore.CreatedAt, tenantAfter.CreatedAt, "upsert must preserve CreatedAt")
}

func TestRun_RoleCatalogEmptyIsNonFatal(t *testing.T) {
	idp := provider.NewFakeProvider() // no roles at all
	st := store.NewMemoryStore()
	orc := newTestOrchestrator(idp, st)

	result, err := orc.Run(context.Background(), SetupRequest{})
	require.NoError(t, err)

	tenants, users, memberships := st.Counts()
	assert.Equal(t, 1, tenants)
	assert.Equal(t, 1, users)
	assert.Equal(t, 1, memberships)
	assert.Empty(t, idp.Grants(result.UserID))
}

func TestRun_RoleAssignmentFailureIsNonFatal(t *testing.T) {
	idp := provider.NewFakeProvider(provider.Role{ID: "rol_1", Name: SuperAdminRole})
	idp.FailAssignRole = true
	st := store.NewMemoryStore()
	orc := newTestOrchestrator(idp, st)

	_, err := orc.Run(context.Background(), SetupRequest{})
	require.NoError(t, err)

	tenants, users, memberships := st.Counts()
	assert.Equal(t, 1, tenants)
	assert.Equal(t, 1, users)
	assert.Equal(t, 1, memberships)
}

func TestRun_AccountCreationFailureIsFatal(t *testing.T) {
	idp := provider.NewFakeProvider(provider.Role{ID: "rol_1", Name: SuperAdminRole})
	idp.FailCreateAccount = true
	st := store.NewMemoryStore()
	orc := newTestOrchestrator(idp, st)

	_, err := orc.Run(context.Background(), SetupRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, provider.ErrProvider))

	tenants, users, memberships := st.Counts()
	assert.Equal(t, 0, tenants, "no store records may exist after a fatal provider failure")
	assert.Equal(t, 0, users)
	assert.Equal(t, 0, memberships)
}

func TestRun_StoreWriteFailureIsFatalButNotRolledBack(t *testing.T) {
	idp := provider.NewFakeProvider(provider.Role{ID: "rol_1", Name: SuperAdminRole})
	st := store.NewMemoryStore()
	st.FailWrites = true
	orc := newTestOrchestrator(idp, st)

	_, err := orc.Run(context.Background(), SetupRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrWrite))

	// The provider account created before the failing write is kept.
	assert.Equal(t, 1, idp.AccountCount())
}

func TestRun_SubscriptionWindow(t *testing.T) {
	idp := provider.NewFakeProvider(provider.Role{ID: "rol_1", Name: SuperAdminRole})
	st := store.NewMemoryStore()
	orc := newTestOrchestrator(idp, st)

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	orc.Clock = func() time.Time { return now }

	_, err := orc.Run(context.Background(), SetupRequest{})
	require.NoError(t, err)

	tenant, err := st.GetTenant(context.Background(), "SUPER_ADMIN", "SuperAdmin")
	require.NoError(t, err)
	assert.Equal(t, now, tenant.SubscriptionStart)
	assert.Equal(t, now.Add(10*365*24*time.Hour), tenant.SubscriptionEnd)
	assert.False(t, tenant.SubscriptionEnd.Before(tenant.SubscriptionStart))
}

func TestRun_ConfigurableSentinelTenant(t *testing.T) {
	idp := provider.NewFakeProvider()
	st := store.NewMemoryStore()
	orc := NewOrchestrator(idp, st, &config.TenantConfig{
		SentinelTenantID:   "PLATFORM",
		SentinelTenantName: "Platform",
	})

	result, err := orc.Run(context.Background(), SetupRequest{})
	require.NoError(t, err)
	assert.Equal(t, "PLATFORM", result.TenantID)

	_, err = st.GetTenant(context.Background(), "PLATFORM", "Platform")
	require.NoError(t, err)
}
