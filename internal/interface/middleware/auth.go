package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/spotifood/spotifood-api/internal/domain/entity"
	"github.com/spotifood/spotifood-api/internal/domain/repository"
	"github.com/spotifood/spotifood-api/pkg/helpers"
	"github.com/spotifood/spotifood-api/pkg/response"
)

const (
	// CtxUserKey holds the resolved *entity.User for the request.
	CtxUserKey = "currentUser"
	// CtxUserIDKey holds the resolved user id as int64.
	CtxUserIDKey = "userID"
)

// CurrentUser returns the user resolved by Authenticate, or nil.
func CurrentUser(c *gin.Context) *entity.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*entity.User)
	return u
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	response.AbortError(c, http.StatusUnauthorized, msg, nil)
}

func forbidden(c *gin.Context, msg string) {
	response.AbortError(c, http.StatusForbidden, msg, nil)
}

// Authenticate resolves the bearer token into a user record and injects it
// into the context. This is the single point where the token trust boundary
// meets the data layer:
//
//   - missing/invalid/expired token, or a token without exp -> 401
//   - valid token for a user that no longer exists -> 404
func Authenticate(jwt *helpers.JWTManager, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			unauthorized(c, "missing bearer token")
			return
		}
		claims, err := jwt.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}
		// A token without an expiry is never acceptable, even if it parses.
		if claims.ExpiresAt == nil {
			unauthorized(c, "invalid token")
			return
		}
		id, err := helpers.UserIDFromClaims(claims)
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}
		u, err := users.GetByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// Once-valid token for a since-deleted user: 404, not 401.
				response.AbortError(c, http.StatusNotFound, "user not found", nil)
				return
			}
			response.AbortError(c, http.StatusInternalServerError, "user lookup failed", nil)
			return
		}
		c.Set(CtxUserKey, u)
		c.Set(CtxUserIDKey, u.ID)
		c.Next()
	}
}

// RequireActive rejects requests from deactivated accounts. It must run
// after Authenticate. Keeping it separate from the role checks means an
// inactive admin is rejected here, before role is even considered.
func RequireActive() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			unauthorized(c, "not authenticated")
			return
		}
		if !u.IsActive {
			forbidden(c, "account inactive")
			return
		}
		c.Next()
	}
}

// RequireRole rejects users whose role differs from the expected one. It
// must run after RequireActive.
func RequireRole(role entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			unauthorized(c, "not authenticated")
			return
		}
		if u.Role != role {
			forbidden(c, "insufficient role")
			return
		}
		c.Next()
	}
}
