package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	appidentity "github.com/storeadmin/backend/internal/application/identity"
	"github.com/storeadmin/backend/internal/domain/shared"
	"github.com/storeadmin/backend/internal/infrastructure/auth"
	"github.com/storeadmin/backend/internal/infrastructure/logger"
	"github.com/storeadmin/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Gin context keys set by Session
const (
	AdminIDKey   = "admin_id"
	PrincipalKey = "principal"
)

// SessionAuthenticator resolves a session token to the signed-in admin
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*appidentity.Principal, error)
}

// Session requires a valid session cookie. The resolved admin is stored
// under PrincipalKey and tags the request logger. A rejected cookie is
// cleared so the browser falls back to the login form.
func Session(authenticator SessionAuthenticator, cookie *auth.SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := cookie.Read(c.Request)
		if err != nil {
			abortSession(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Please sign in")
			return
		}

		principal, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			cookie.Clear(c.Writer)
			switch {
			case errors.Is(err, shared.ErrAccessDenied):
				abortSession(c, http.StatusForbidden, dto.ErrCodeForbidden, "Access Denied")
			case errors.Is(err, shared.ErrUnauthorized):
				abortSession(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Please sign in")
			default:
				logger.GetGinLogger(c).Error("Session verification failed", zap.Error(err))
				abortSession(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An internal error occurred")
			}
			return
		}

		c.Set(PrincipalKey, *principal)
		c.Set(AdminIDKey, principal.UID)
		ctx, reqLogger := logger.WithAdminID(c.Request.Context(), logger.GetGinLogger(c), principal.UID)
		c.Set("logger", reqLogger)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abortSession(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetPrincipal returns the admin resolved by Session
func GetPrincipal(c *gin.Context) (appidentity.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return appidentity.Principal{}, false
	}
	p, ok := v.(appidentity.Principal)
	return p, ok
}

// RequireSuperAdmin rejects admins without the super admin flag
func RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			abortSession(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Please sign in")
			return
		}
		if !p.SuperAdmin {
			abortSession(c, http.StatusForbidden, dto.ErrCodeForbidden, "Super admin privileges are required")
			return
		}
		c.Next()
	}
}
