package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranavk/go-superadmin-service/shared/bootstrap"
	"github.com/pranavk/go-superadmin-service/shared/config"
	"github.com/pranavk/go-superadmin-service/shared/provider"
	"github.com/pranavk/go-superadmin-service/shared/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testTenantConfig() *config.TenantConfig {
	return &config.TenantConfig{
		SentinelTenantID:   "SUPER_ADMIN",
		SentinelTenantName: "SuperAdmin",
	}
}

func setupRouter(idp provider.IdentityProvider, st store.TenantStore) *gin.Engine {
	router := gin.New()
	router.POST("/setup", handleSetup(bootstrap.NewOrchestrator(idp, st, testTenantConfig())))
	return router
}

func TestHandleSetup_EmptyBodyUsesDefaults(t *testing.T) {
	idp := provider.NewFakeProvider(provider.Role{ID: "rol_1", Name: bootstrap.SuperAdminRole})
	st := store.NewMemoryStore()
	router := setupRouter(idp, st)

	req := httptest.NewRequest(http.MethodPost, "/setup", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "SuperAdmin tenant and user setup successfully", body["message"])
	assert.Equal(t, "SUPER_ADMIN", body["tenantId"])
	assert.Equal(t, "superadmin", body["username"])
	assert.NotEmpty(t, body["userId"])
}

func TestHandleSetup_CustomBody(t *testing.T) {
	idp := provider.NewFakeProvider(provider.Role{ID: "rol_1", Name: bootstrap.SuperAdminRole})
	st := store.NewMemoryStore()
	router := setupRouter(idp, st)

	payload := `{"email":"root@corp.io","password":"S3cret!","firstName":"Root","lastName":"Admin","username":"root"}`
	req := httptest.NewRequest(http.MethodPost, "/setup", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"root"`)

	user, err := st.GetUserByEmail(req.Context(), "root@corp.io", "SUPER_ADMIN")
	require.NoError(t, err)
	assert.Equal(t, "Root", user.FirstName)
}

func TestHandleSetup_MalformedBody(t *testing.T) {
	idp := provider.NewFakeProvider()
	st := store.NewMemoryStore()
	router := setupRouter(idp, st)

	req := httptest.NewRequest(http.MethodPost, "/setup", strings.NewReader(`{"email":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, idp.AccountCount())
}

func TestHandleSetup_ProviderFailure(t *testing.T) {
	idp := provider.NewFakeProvider()
	idp.FailCreateAccount = true
	st := store.NewMemoryStore()
	router := setupRouter(idp, st)

	req := httptest.NewRequest(http.MethodPost, "/setup", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestHandleSetup_Idempotent(t *testing.T) {
	idp := provider.NewFakeProvider(provider.Role{ID: "rol_1", Name: bootstrap.SuperAdminRole})
	st := store.NewMemoryStore()
	router := setupRouter(idp, st)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/setup", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 1, idp.AccountCount())
	tenants, users, memberships := st.Counts()
	assert.Equal(t, 1, tenants)
	assert.Equal(t, 1, users)
	assert.Equal(t, 1, memberships)
}

func TestHandleGetTenant(t *testing.T) {
	idp := provider.NewFakeProvider()
	st := store.NewMemoryStore()
	router := setupRouter(idp, st)
	router.GET("/admin/tenants/:id", handleGetTenant(st, testTenantConfig()))

	setupReq := httptest.NewRequest(http.MethodPost, "/setup", nil)
	setupRec := httptest.NewRecorder()
	router.ServeHTTP(setupRec, setupReq)
	require.Equal(t, http.StatusOK, setupRec.Code)

	t.Run("sentinel id defaults name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/tenants/SUPER_ADMIN", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"tenant_name":"SuperAdmin"`)
	})

	t.Run("other id requires name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/tenants/other", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/tenants/other?name=Missing", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleGetUserByEmail(t *testing.T) {
	idp := provider.NewFakeProvider()
	st := store.NewMemoryStore()
	router := setupRouter(idp, st)
	router.GET("/admin/users/by-email", handleGetUserByEmail(st))

	setupReq := httptest.NewRequest(http.MethodPost, "/setup", nil)
	setupRec := httptest.NewRecorder()
	router.ServeHTTP(setupRec, setupReq)
	require.Equal(t, http.StatusOK, setupRec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/users/by-email?email=superadmin@yourdomain.com", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"superadmin@yourdomain.com"`)

	missing := httptest.NewRequest(http.MethodGet, "/admin/users/by-email", nil)
	missingRec := httptest.NewRecorder()
	router.ServeHTTP(missingRec, missing)
	assert.Equal(t, http.StatusBadRequest, missingRec.Code)
}
