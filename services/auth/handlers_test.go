package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranavk/go-superadmin-service/shared/authn"
	"github.com/pranavk/go-superadmin-service/shared/provider"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func loginRouter(t *testing.T, idp provider.IdentityProvider) *gin.Engine {
	t.Helper()
	router := gin.New()
	router.POST("/login", handleLogin(authn.NewGateway(idp)))
	return router
}

func TestHandleLogin_ValidCredentials(t *testing.T) {
	idp := provider.NewFakeProvider()
	_, err := idp.CreateAccount(context.Background(), provider.Account{
		Email:    "a@b.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	router := loginRouter(t, idp)

	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":"a@b.com","password":"correct horse"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token":"fake-access-token-`)
}

func TestHandleLogin_Unauthorized(t *testing.T) {
	idp := provider.NewFakeProvider()
	_, err := idp.CreateAccount(context.Background(), provider.Account{
		Email:    "a@b.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		body string
	}{
		{name: "wrong password", body: `{"email":"a@b.com","password":"wrong"}`},
		{name: "unknown user", body: `{"email":"x@y.com","password":"whatever"}`},
		{name: "missing fields", body: `{"email":"a@b.com"}`},
		{name: "malformed body", body: `{"email":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := loginRouter(t, idp)

			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.JSONEq(t, `{"token":null}`, rec.Body.String())
		})
	}
}

func TestHandleLogin_ProviderOutageLooksLikeBadCredentials(t *testing.T) {
	idp := provider.NewFakeProvider()
	_, err := idp.CreateAccount(context.Background(), provider.Account{
		Email:    "a@b.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	idp.FailUserToken = true

	router := loginRouter(t, idp)

	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"email":"a@b.com","password":"correct horse"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"token":null}`, rec.Body.String())
}
