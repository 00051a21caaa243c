// Package provider defines the identity provider capability: account
// creation, role assignment and token issuance against an external service
// of record for credentials. Two network-backed implementations are provided
// (Auth0-style OIDC and AWS Cognito) plus an in-memory fake for tests.
package provider

import (
	"context"
	"errors"
)

// ErrProvider indicates a failed call against the external identity provider.
// Account creation failures are fatal to provisioning; role assignment
// failures are logged and swallowed by the caller.
var ErrProvider = errors.New("identity provider error")

// Account is the input for creating a provider account. The password is
// passed through verbatim; the provider owns hashing and storage.
type Account struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Metadata  map[string]string
}

// Role is a provider-side role catalog entry.
type Role struct {
	ID   string
	Name string
}

// IdentityProvider is the capability consumed by the provisioning
// orchestrator and the authentication gateway.
type IdentityProvider interface {
	// CreateAccount creates an account and returns the provider-assigned user id.
	CreateAccount(ctx context.Context, account Account) (string, error)

	// ListRoles returns the provider's role catalog.
	ListRoles(ctx context.Context) ([]Role, error)

	// AssignRole grants a catalog role to a user.
	AssignRole(ctx context.Context, userID, roleID string) error

	// IssueToken returns a machine-to-machine access token authorizing calls
	// against the provider's management surface.
	IssueToken(ctx context.Context) (string, error)

	// IssueUserToken exchanges end-user credentials for an access token via
	// the resource-owner password grant.
	IssueUserToken(ctx context.Context, email, password string) (string, error)
}
