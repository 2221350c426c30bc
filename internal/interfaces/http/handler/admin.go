package handler

import (
	"github.com/gin-gonic/gin"
	appidentity "github.com/storeadmin/backend/internal/application/identity"
)

// AdminHandler handles dashboard account endpoints
type AdminHandler struct {
	BaseHandler
	adminService *appidentity.AdminService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(adminService *appidentity.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// List godoc
// @Summary      List admins
// @Tags         admins
// @Produce      json
// @Success      200 {object} dto.Response{data=[]appidentity.AdminResponse}
// @Router       /admins [get]
func (h *AdminHandler) List(c *gin.Context) {
	admins, err := h.adminService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, admins, len(admins))
}

// Get godoc
// @Summary      Get admin
// @Tags         admins
// @Produce      json
// @Param        id path string true "Admin ID"
// @Success      200 {object} dto.Response{data=appidentity.AdminResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admins/{id} [get]
func (h *AdminHandler) Get(c *gin.Context) {
	admin, err := h.adminService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, admin)
}

// Create godoc
// @Summary      Create admin
// @Description  Creates the identity account and its admin document. Super admins only.
// @Tags         admins
// @Accept       json
// @Produce      json
// @Param        request body appidentity.CreateAdminRequest true "Admin"
// @Success      201 {object} dto.Response{data=appidentity.AdminResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admins [post]
func (h *AdminHandler) Create(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var req appidentity.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	admin, err := h.adminService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, admin)
}

// Update godoc
// @Summary      Change super admin flag
// @Tags         admins
// @Accept       json
// @Produce      json
// @Param        id path string true "Admin ID"
// @Param        request body appidentity.UpdateAdminRequest true "Flag"
// @Success      200 {object} dto.Response{data=appidentity.AdminResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admins/{id} [patch]
func (h *AdminHandler) Update(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var req appidentity.UpdateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	admin, err := h.adminService.UpdateSuperAdmin(c.Request.Context(), actor, c.Param("id"), *req.SuperAdmin)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, admin)
}

// ChangePassword godoc
// @Summary      Change admin password
// @Tags         admins
// @Accept       json
// @Param        id path string true "Admin ID"
// @Param        request body appidentity.ChangePasswordRequest true "Password"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admins/{id}/password [put]
func (h *AdminHandler) ChangePassword(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var req appidentity.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.adminService.ChangePassword(c.Request.Context(), actor, c.Param("id"), req.Password); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Delete godoc
// @Summary      Delete admin
// @Description  Removes the admin document and the identity account. Super admins only.
// @Tags         admins
// @Param        id path string true "Admin ID"
// @Success      204
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admins/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	if err := h.adminService.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
