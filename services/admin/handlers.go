package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pranavk/go-superadmin-service/shared/bootstrap"
	"github.com/pranavk/go-superadmin-service/shared/config"
	"github.com/pranavk/go-superadmin-service/shared/store"
	"github.com/pranavk/go-superadmin-service/shared/utils"
)

// handleSetup runs the one-time (but retriable) super admin bootstrap. The
// body is optional: an empty payload provisions the fixed default identity.
func handleSetup(orchestrator *bootstrap.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req bootstrap.SetupRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
			return
		}

		result, err := orchestrator.Run(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":  "SuperAdmin tenant and user setup successfully",
			"tenantId": result.TenantID,
			"userId":   result.UserID,
			"username": result.Username,
		})
	}
}

// handleGetTenant fetches a tenant by its composite (id, name) key. The name
// defaults to the sentinel tenant name when the id is the sentinel.
func handleGetTenant(st store.TenantStore, tenantCfg *config.TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.Param("id")
		tenantName := c.Query("name")
		if tenantName == "" {
			if tenantID != tenantCfg.SentinelTenantID {
				utils.BadRequestResponse(c, "Query parameter 'name' is required")
				return
			}
			tenantName = tenantCfg.SentinelTenantName
		}

		tenant, err := st.GetTenant(c.Request.Context(), tenantID, tenantName)
		if err != nil {
			utils.NotFoundResponse(c, "Tenant not found")
			return
		}

		utils.OKResponse(c, "Tenant retrieved successfully", tenant)
	}
}

// handleGetTenantUsers lists the user records of a tenant.
func handleGetTenantUsers(st store.TenantStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := st.GetUsersByTenant(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.InternalServerErrorResponse(c, "Failed to fetch users")
			return
		}

		utils.OKResponse(c, "Users retrieved successfully", users)
	}
}

// handleGetMembership fetches a single tenant membership record.
func handleGetMembership(st store.TenantStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		membership, err := st.GetMembership(c.Request.Context(), c.Param("id"), c.Param("user_id"))
		if err != nil {
			utils.NotFoundResponse(c, "Membership not found")
			return
		}

		utils.OKResponse(c, "Membership retrieved successfully", membership)
	}
}

// handleGetUserByEmail resolves a user by email, optionally scoped to a tenant.
func handleGetUserByEmail(st store.TenantStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Query("email")
		if email == "" {
			utils.BadRequestResponse(c, "Query parameter 'email' is required")
			return
		}

		user, err := st.GetUserByEmail(c.Request.Context(), email, c.Query("tenant_id"))
		if err != nil {
			utils.NotFoundResponse(c, "User not found")
			return
		}

		utils.OKResponse(c, "User retrieved successfully", user)
	}
}
