package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/pranavk/go-superadmin-service/shared/utils"
)

// circuitBreakerProvider decorates an IdentityProvider so repeated provider
// failures trip a circuit instead of hammering a degraded service. An open
// circuit surfaces as an ordinary provider error to keep the callers' failure
// normalization intact.
type circuitBreakerProvider struct {
	inner IdentityProvider
	cb    *utils.CircuitBreaker
}

// WithCircuitBreaker wraps every provider call with the given circuit breaker.
func WithCircuitBreaker(inner IdentityProvider, cb *utils.CircuitBreaker) IdentityProvider {
	return &circuitBreakerProvider{inner: inner, cb: cb}
}

func (p *circuitBreakerProvider) CreateAccount(ctx context.Context, account Account) (string, error) {
	var userID string
	err := p.cb.Call(func() error {
		var callErr error
		userID, callErr = p.inner.CreateAccount(ctx, account)
		return callErr
	})
	return userID, p.wrap(err)
}

func (p *circuitBreakerProvider) ListRoles(ctx context.Context) ([]Role, error) {
	var roles []Role
	err := p.cb.Call(func() error {
		var callErr error
		roles, callErr = p.inner.ListRoles(ctx)
		return callErr
	})
	return roles, p.wrap(err)
}

func (p *circuitBreakerProvider) AssignRole(ctx context.Context, userID, roleID string) error {
	return p.wrap(p.cb.Call(func() error {
		return p.inner.AssignRole(ctx, userID, roleID)
	}))
}

func (p *circuitBreakerProvider) IssueToken(ctx context.Context) (string, error) {
	var token string
	err := p.cb.Call(func() error {
		var callErr error
		token, callErr = p.inner.IssueToken(ctx)
		return callErr
	})
	return token, p.wrap(err)
}

func (p *circuitBreakerProvider) IssueUserToken(ctx context.Context, email, password string) (string, error) {
	var token string
	err := p.cb.Call(func() error {
		var callErr error
		token, callErr = p.inner.IssueUserToken(ctx, email, password)
		return callErr
	})
	return token, p.wrap(err)
}

func (p *circuitBreakerProvider) wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, utils.ErrCircuitOpen) || errors.Is(err, utils.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrProvider, err)
	}
	return err
}
