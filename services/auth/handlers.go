package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pranavk/go-superadmin-service/shared/authn"
)

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// handleLogin exchanges credentials for an access token. Every failure mode,
// bad credentials, provider outage, open circuit, malformed body, answers
// 401 with a null token; the caller cannot distinguish them.
func handleLogin(gateway *authn.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"token": nil})
			return
		}

		token, ok := gateway.Authenticate(c.Request.Context(), req.Email, req.Password)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"token": nil})
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}
