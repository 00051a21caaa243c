package provider

import (
	"fmt"

	"github.com/pranavk/go-superadmin-service/shared/config"
)

// FromConfig builds the configured identity provider backend.
func FromConfig(cfg *config.IdentityProviderConfig) (IdentityProvider, error) {
	switch cfg.Backend {
	case "auth0":
		return NewAuth0Provider(cfg), nil
	case "cognito":
		return NewCognitoProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown identity provider backend %q", cfg.Backend)
	}
}
