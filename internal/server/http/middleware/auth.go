package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/tgmarket/internal/domain/model"
	pkgAuth "github.com/polkiloo/tgmarket/internal/pkg/auth"
)

const (
	// UserIDContextKey is a gin context key for authenticated user identifier.
	UserIDContextKey = "userID"
	// ActorContextKey is a gin context key for the resolved model.Actor.
	ActorContextKey = "actor"

	sessionCookie = "tgmarket_session"
	bearerPrefix  = "bearer "
)

// Authenticator resolves a session token to the acting user.
type Authenticator interface {
	ParseToken(token string) (int64, error)
	Actor(userID int64) model.Actor
}

// AuthRequired stores the caller's id and actor in the context or aborts with 401.
// Challenges follow RFC 6750 so Mini App clients can tell an expired session
// from a missing one.
func AuthRequired(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.Header("WWW-Authenticate", `Bearer realm="tgmarket"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		userID, err := auth.ParseToken(token)
		switch {
		case err == nil:
		case errors.Is(err, pkgAuth.ErrTokenExpired):
			ClearSessionCookie(c)
			c.Header("WWW-Authenticate", `Bearer realm="tgmarket", error="invalid_token", error_description="expired"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		case errors.Is(err, pkgAuth.ErrInvalidToken):
			c.Header("WWW-Authenticate", `Bearer realm="tgmarket", error="invalid_token"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		default:
			_ = c.Error(err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.Set(UserIDContextKey, userID)
		c.Set(ActorContextKey, auth.Actor(userID))
		c.Next()
	}
}

// sessionToken prefers the Authorization header over the cookie.
func sessionToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie hands the session token back both as a cookie and a header.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
}
