// Package authn implements the authentication gateway: a pure pass-through
// that exchanges end-user credentials for an access token via the identity
// provider. No credentials are stored or hashed here.
package authn

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/pranavk/go-superadmin-service/shared/events"
	"github.com/pranavk/go-superadmin-service/shared/provider"
)

// Gateway normalizes every provider failure, credential rejection, outage or
// malformed response alike, into a single not-authenticated outcome. The
// underlying cause is visible only in logs.
type Gateway struct {
	provider provider.IdentityProvider

	// Events optionally publishes audit events; nil disables publishing.
	Events *events.Publisher
}

// NewGateway creates a gateway over the given identity provider.
func NewGateway(idp provider.IdentityProvider) *Gateway {
	return &Gateway{provider: idp}
}

// Authenticate forwards the credential pair to the provider's password-grant
// token endpoint. It returns the bearer access token and true on success, or
// ("", false) for every failure mode.
func (g *Gateway) Authenticate(ctx context.Context, email, password string) (string, bool) {
	log := logrus.WithField("email", email)
	log.Info("Authenticating user")

	token, err := g.provider.IssueUserToken(ctx, email, password)
	if err != nil {
		log.WithError(err).Warn("Authentication failed")
		g.Events.Publish(events.TypeLoginFailed, "", "", email, err.Error())
		return "", false
	}
	if token == "" {
		log.Warn("Authentication failed: provider returned empty token")
		g.Events.Publish(events.TypeLoginFailed, "", "", email, "empty token")
		return "", false
	}

	g.Events.Publish(events.TypeLoginSucceeded, "", "", email, "")
	return token, true
}
