package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/pranavk/go-superadmin-service/shared/utils"
)

// SetupKeyHeader carries the shared secret that gates the one-time setup
// endpoint, the analogue of a platform-level admin authorization key.
const SetupKeyHeader = "X-Setup-Key"

// AccessClaims is the subset of provider token claims this service reads.
type AccessClaims struct {
	Sub      string `json:"sub"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// AuthMiddleware validates provider-issued bearer tokens on the
// administrative read endpoints.
type AuthMiddleware struct {
	validator *jwksValidator
}

// NewAuthMiddleware creates the middleware. When jwksURL is set, token
// signatures are verified against the provider's published key set;
// otherwise tokens are parsed without verification, trusting the provider
// the way the upstream services do.
func NewAuthMiddleware(jwksURL string) *AuthMiddleware {
	am := &AuthMiddleware{}
	if jwksURL != "" {
		am.validator = newJWKSValidator(jwksURL)
	}
	return am
}

// RequireSetupKey gates a route behind the configured setup key. An empty
// configured key disables the endpoint entirely rather than leaving it open.
func RequireSetupKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Setup endpoint is disabled; configure SETUP_KEY"})
			c.Abort()
			return
		}
		supplied := c.GetHeader(SetupKeyHeader)
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(key)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid setup key"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAuth validates the bearer token and stores its claims in the
// request context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
			c.Abort()
			return
		}

		claims, err := am.parseToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.Sub)
		c.Set("email", claims.Email)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// RequireRole rejects requests whose token does not carry the required role.
func (am *AuthMiddleware) RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role != requiredRole {
			c.JSON(http.StatusForbidden, gin.H{
				"error":         "Insufficient permissions",
				"required_role": requiredRole,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// parseToken extracts claims, verifying the signature when a JWKS validator
// is configured. Parsed claims are cached keyed by a hash of the token.
func (am *AuthMiddleware) parseToken(tokenString string) (*AccessClaims, error) {
	cacheKey := utils.TokenCacheKey(tokenString)
	if cached, err := utils.CacheGet(cacheKey); err == nil {
		var claims AccessClaims
		if err := json.Unmarshal([]byte(cached), &claims); err == nil {
			return &claims, nil
		}
	}

	var mapClaims jwt.MapClaims
	if am.validator != nil {
		token, err := am.validator.validateToken(tokenString)
		if err != nil {
			return nil, err
		}
		var ok bool
		if mapClaims, ok = token.Claims.(jwt.MapClaims); !ok {
			return nil, fmt.Errorf("invalid token claims format")
		}
	} else {
		token, _, err := new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
		if err != nil {
			return nil, fmt.Errorf("failed to parse token: %w", err)
		}
		var ok bool
		if mapClaims, ok = token.Claims.(jwt.MapClaims); !ok {
			return nil, fmt.Errorf("invalid token claims format")
		}
	}

	claims := &AccessClaims{
		Sub:      getClaimString(mapClaims, "sub"),
		Email:    getClaimString(mapClaims, "email"),
		Username: getClaimString(mapClaims, "username"),
		Role:     extractRole(mapClaims),
	}
	if claims.Sub == "" {
		return nil, fmt.Errorf("token missing sub claim")
	}

	if data, err := json.Marshal(claims); err == nil {
		_ = utils.CacheSet(cacheKey, string(data), time.Hour)
	}

	return claims, nil
}

// extractRole reads the role claim under the names the supported providers
// use: a flat claim, a Cognito group list, or an Auth0 custom claim.
func extractRole(claims jwt.MapClaims) string {
	for _, key := range []string{"role", "custom:role"} {
		if role := getClaimString(claims, key); role != "" {
			return role
		}
	}
	if groups, ok := claims["cognito:groups"].([]interface{}); ok && len(groups) > 0 {
		if group, ok := groups[0].(string); ok {
			return group
		}
	}
	if roles, ok := claims["https://claims/roles"].([]interface{}); ok && len(roles) > 0 {
		if role, ok := roles[0].(string); ok {
			return role
		}
	}
	return ""
}

// extractToken extracts the JWT token from the Authorization header
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return authHeader
}

// getClaimString safely extracts a string claim
func getClaimString(claims jwt.MapClaims, key string) string {
	if val, ok := claims[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
