package authn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranavk/go-superadmin-service/shared/provider"
)

func newProviderWithUser(t *testing.T, email, password string) *provider.FakeProvider {
	t.Helper()
	idp := provider.NewFakeProvider()
	_, err := idp.CreateAccount(context.Background(), provider.Account{
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return idp
}

func TestAuthenticate_ValidCredentials(t *testing.T) {
	idp := newProviderWithUser(t, "a@b.com", "correct horse")
	gateway := NewGateway(idp)

	token, ok := gateway.Authenticate(context.Background(), "a@b.com", "correct horse")
	assert.True(t, ok)
	assert.NotEmpty(t, token)
}

func TestAuthenticate_FailuresAreIndistinguishable(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) *provider.FakeProvider
	}{
		{
			name: "wrong password",
			setup: func(t *testing.T) *provider.FakeProvider {
				return newProviderWithUser(t, "a@b.com", "correct horse")
			},
		},
		{
			name: "unknown user",
			setup: func(t *testing.T) *provider.FakeProvider {
				return provider.NewFakeProvider()
			},
		},
		{
			name: "provider unavailable",
			setup: func(t *testing.T) *provider.FakeProvider {
				idp := newProviderWithUser(t, "a@b.com", "correct horse")
				idp.FailUserToken = true
				return idp
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gateway := NewGateway(tt.setup(t))

			token, ok := gateway.Authenticate(context.Background(), "a@b.com", "wrong")
			assert.False(t, ok)
			assert.Empty(t, token)
		})
	}
}
