package middleware

import (
	"net/http"
	"strings"

	"github.com/franciscosanchezn/gin-recipe-api/internal/auth"
	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextUsername = "username"
	ContextClientID = "clientID"
	ContextScopes   = "scopes"
	ContextAuthType = "auth_type"
)

// TokenVerifier validates bearer tokens. *auth.TokenIssuer implements it.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Identity, error)
}

// JWTAuth requires a valid Bearer access token. It accepts tokens issued by
// /auth/token and by the OAuth2 server, which share the uid/role claims.
func JWTAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// RFC 6750: Extract Bearer token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			respondWithOAuth2Error(c, http.StatusUnauthorized, models.ErrAuthorizationNeeded,
				"Missing Authorization header. A valid Bearer token is required.")
			return
		}

		tokenString, ok := bearerToken(authHeader)
		if !ok {
			respondWithOAuth2Error(c, http.StatusUnauthorized, models.ErrInvalidRequest,
				"Authorization header must use Bearer scheme. Format: 'Bearer <token>'")
			return
		}
		if tokenString == "" {
			respondWithOAuth2Error(c, http.StatusUnauthorized, models.ErrInvalidToken, "Bearer token is empty")
			return
		}

		identity, err := verifier.VerifyAccessToken(tokenString)
		if err != nil {
			respondWithOAuth2Error(c, http.StatusUnauthorized, models.ErrInvalidToken, err.Error())
			return
		}

		setIdentity(c, identity)
		c.Next()
	}
}

// OptionalAuth sets the caller identity when a valid Bearer token is present
// and lets the request through anonymously otherwise
func OptionalAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c.GetHeader("Authorization")); ok && tokenString != "" {
			if identity, err := verifier.VerifyAccessToken(tokenString); err == nil {
				setIdentity(c, identity)
			}
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")), true
}

func setIdentity(c *gin.Context, identity *auth.Identity) {
	c.Set(ContextUserID, identity.UserID)
	c.Set(ContextUserRole, identity.Role)
	if identity.Username != "" {
		c.Set(ContextUsername, identity.Username)
	}

	// Store token type for debugging/logging
	if identity.ClientID != "" {
		c.Set(ContextClientID, identity.ClientID)
		c.Set(ContextAuthType, "oauth2")
	} else {
		c.Set(ContextAuthType, "jwt")
	}
}

// respondWithOAuth2Error responds with RFC 6750 compliant error format
func respondWithOAuth2Error(c *gin.Context, status int, errorCode, description string) {
	c.Header("WWW-Authenticate", `Bearer error="`+errorCode+`"`)
	c.AbortWithStatusJSON(status, models.NewOAuth2Error(errorCode, description))
}
