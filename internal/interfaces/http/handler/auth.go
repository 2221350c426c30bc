package handler

import (
	"github.com/gin-gonic/gin"
	appidentity "github.com/storeadmin/backend/internal/application/identity"
	"github.com/storeadmin/backend/internal/infrastructure/auth"
	"github.com/storeadmin/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuthHandler handles sign-in, sign-out and the session endpoint
type AuthHandler struct {
	BaseHandler
	authService *appidentity.AuthService
	cookie      *auth.SessionCookie
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *appidentity.AuthService, cookie *auth.SessionCookie) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
	}
}

// Login godoc
// @Summary      Admin login
// @Description  Sign in with email and password. The session is returned as an httpOnly cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body appidentity.LoginRequest true "Login credentials"
// @Success      200 {object} dto.Response{data=appidentity.SessionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req appidentity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		// a stale cookie must not outlive a rejected sign-in
		h.cookie.Clear(c.Writer)
		h.HandleError(c, err)
		return
	}

	if err := h.cookie.Write(c.Writer, result.SessionToken); err != nil {
		logger.GetGinLogger(c).Error("Failed to write session cookie", zap.Error(err))
		_ = h.authService.Logout(c.Request.Context(), result.SessionToken)
		h.InternalError(c)
		return
	}
	h.Success(c, result.Admin)
}

// Logout godoc
// @Summary      Admin logout
// @Description  Revoke the current session and clear the cookie
// @Tags         auth
// @Produce      json
// @Success      204
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token, err := h.cookie.Read(c.Request)
	if err == nil {
		if err := h.authService.Logout(c.Request.Context(), token); err != nil {
			logger.GetGinLogger(c).Warn("Failed to revoke session", zap.Error(err))
		}
	}
	h.cookie.Clear(c.Writer)
	h.NoContent(c)
}

// Me godoc
// @Summary      Current admin
// @Description  Returns the signed-in admin with the super admin flag
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=appidentity.SessionResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	resp, err := h.authService.Me(c.Request.Context(), p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
