// Package bootstrap implements the provisioning orchestrator: the ordered,
// retriable sequence that creates the first privileged account in the
// identity provider and its backing records in the tenant store.
package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pranavk/go-superadmin-service/shared/config"
	"github.com/pranavk/go-superadmin-service/shared/events"
	"github.com/pranavk/go-superadmin-service/shared/models"
	"github.com/pranavk/go-superadmin-service/shared/provider"
	"github.com/pranavk/go-superadmin-service/shared/store"
)

// SuperAdminRole is the role label used in the identity provider's catalog
// and on every store record written during bootstrap.
const SuperAdminRole = "SUPER_ADMIN"

// Fallback identity used when setup is invoked with an empty payload.
const (
	defaultEmail     = "superadmin@yourdomain.com"
	defaultPassword  = "ChangeMe123!"
	defaultFirstName = "Super"
	defaultLastName  = "Admin"
	defaultUsername  = "superadmin"
)

// subscriptionValidity is the "effectively unlimited" subscription window
// written on the system tenant.
const subscriptionValidity = 10 * 365 * 24 * time.Hour

// SetupRequest carries the bootstrap identity. Empty fields fall back to the
// fixed defaults, so the operation can be invoked with no body at all.
type SetupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
}

// SetupResult is returned after a successful bootstrap run.
type SetupResult struct {
	TenantID string `json:"tenantId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// Orchestrator executes the bootstrap sequence against the two external
// capabilities. It holds no mutable state between runs; concurrent runs are
// not mutually excluded and rely on the provider rejecting duplicate emails
// and on the store's last-writer-wins upserts.
type Orchestrator struct {
	provider   provider.IdentityProvider
	store      store.TenantStore
	tenantID   string
	tenantName string

	// Events optionally publishes audit events; nil disables publishing.
	Events *events.Publisher

	// Clock is the time source for subscription windows, overridable in tests.
	Clock func() time.Time
}

// NewOrchestrator creates an orchestrator writing under the configured
// sentinel tenant identity.
func NewOrchestrator(idp provider.IdentityProvider, st store.TenantStore, tenantCfg *config.TenantConfig) *Orchestrator {
	return &Orchestrator{
		provider:   idp,
		store:      st,
		tenantID:   tenantCfg.SentinelTenantID,
		tenantName: tenantCfg.SentinelTenantName,
		Clock:      time.Now,
	}
}

// Run executes the bootstrap sequence in strict order. Account creation and
// store writes are fatal on failure; role assignment is not. Completed steps
// are never rolled back, so a failed run leaves partial state that a re-run
// must tolerate, which the keyed upserts guarantee as long as the provider
// user id stays stable across retries.
func (o *Orchestrator) Run(ctx context.Context, req SetupRequest) (*SetupResult, error) {
	req = withDefaults(req)
	log := logrus.WithFields(logrus.Fields{
		"email":     req.Email,
		"tenant_id": o.tenantID,
	})
	log.Info("Super admin setup triggered")

	if err := o.store.EnsureSchema(ctx); err != nil {
		return nil, o.fail(req, fmt.Errorf("ensuring store schema: %w", err))
	}

	// The provider-assigned user id keys every subsequent write; nothing can
	// proceed without it. A retry after a transient failure here can mint a
	// second provider account with a new id, which the keyed upserts cannot
	// deduplicate. Known gap, carried over from the source behavior.
	userID, err := o.provider.CreateAccount(ctx, provider.Account{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Metadata:  map[string]string{"role": SuperAdminRole},
	})
	if err != nil {
		return nil, o.fail(req, fmt.Errorf("creating provider account: %w", err))
	}
	log = log.WithField("user_id", userID)
	log.Info("Super admin account created in identity provider")

	// Role assignment must not block store-side provisioning: a missing role
	// catalog is a provider misconfiguration, not a reason to abort.
	o.assignSuperAdminRole(ctx, userID, log)

	now := o.Clock().UTC()

	configBlob, _ := json.Marshal(map[string]bool{"is_system_tenant": true})
	tenant := &models.Tenant{
		TenantID:           o.tenantID,
		TenantName:         o.tenantName,
		Subdomain:          "admin",
		PrimaryContactName: req.FirstName + " " + req.LastName,
		ContactEmail:       req.Email,
		PlanTier:           "SystemTenant",
		Status:             models.StatusActive,
		ConfigSettings:     string(configBlob),
		SubscriptionStart:  now,
		SubscriptionEnd:    now.Add(subscriptionValidity),
	}
	if err := o.store.UpsertTenant(ctx, tenant); err != nil {
		return nil, o.fail(req, fmt.Errorf("writing tenant record: %w", err))
	}
	log.Info("System tenant record written")

	user := &models.User{
		UserID:        userID,
		TenantID:      o.tenantID,
		Username:      req.Username,
		Email:         req.Email,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Role:          SuperAdminRole,
		Status:        models.StatusActive,
		EmailVerified: true, // verified during provider account creation
	}
	if err := o.store.UpsertUser(ctx, user); err != nil {
		return nil, o.fail(req, fmt.Errorf("writing user record: %w", err))
	}
	log.Info("Super admin user record written")

	membership := &models.TenantMembership{
		TenantID: o.tenantID,
		UserID:   userID,
		Role:     SuperAdminRole,
	}
	if err := o.store.UpsertMembership(ctx, membership); err != nil {
		return nil, o.fail(req, fmt.Errorf("writing membership record: %w", err))
	}
	log.Info("Tenant membership record written")

	o.Events.Publish(events.TypeBootstrapCompleted, o.tenantID, userID, req.Email, "")

	return &SetupResult{
		TenantID: o.tenantID,
		UserID:   userID,
		Username: req.Username,
	}, nil
}

// assignSuperAdminRole looks up the SUPER_ADMIN role in the provider catalog
// and grants it. Failures are logged and swallowed.
func (o *Orchestrator) assignSuperAdminRole(ctx context.Context, userID string, log *logrus.Entry) {
	roles, err := o.provider.ListRoles(ctx)
	if err != nil {
		log.WithError(err).Warn("Role catalog lookup failed, continuing without provider role grant")
		return
	}

	for _, role := range roles {
		if role.Name == SuperAdminRole {
			if err := o.provider.AssignRole(ctx, userID, role.ID); err != nil {
				log.WithError(err).Warn("Role assignment failed, continuing without provider role grant")
				return
			}
			log.Info("SUPER_ADMIN role assigned in identity provider")
			return
		}
	}

	log.Warn("SUPER_ADMIN role not found in identity provider catalog")
}

// fail records a fatal bootstrap outcome and returns the error unchanged.
func (o *Orchestrator) fail(req SetupRequest, err error) error {
	logrus.WithFields(logrus.Fields{
		"email": req.Email,
		"error": err,
	}).Error("Super admin setup failed")
	o.Events.Publish(events.TypeBootstrapFailed, o.tenantID, "", req.Email, err.Error())
	return err
}

// withDefaults fills empty request fields with the fixed fallback identity.
func withDefaults(req SetupRequest) SetupRequest {
	if req.Email == "" {
		req.Email = defaultEmail
	}
	if req.Password == "" {
		req.Password = defaultPassword
	}
	if req.FirstName == "" {
		req.FirstName = defaultFirstName
	}
	if req.LastName == "" {
		req.LastName = defaultLastName
	}
	if req.Username == "" {
		req.Username = defaultUsername
	}
	return req
}
