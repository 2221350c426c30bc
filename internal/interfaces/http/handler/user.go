package handler

import (
	"github.com/gin-gonic/gin"
	appidentity "github.com/storeadmin/backend/internal/application/identity"
)

// UserHandler handles the read-only customer endpoints
type UserHandler struct {
	BaseHandler
	userService *appidentity.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *appidentity.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List godoc
// @Summary      List customers
// @Tags         users
// @Produce      json
// @Param        search query string false "Exact username, at least 3 characters"
// @Param        online query bool false "Online customers only"
// @Param        limit query int false "Row limit"
// @Success      200 {object} dto.Response{data=[]appidentity.UserResponse}
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var filter appidentity.UserListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	users, err := h.userService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, users, len(users))
}

// Get godoc
// @Summary      Get customer
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=appidentity.UserResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Orders godoc
// @Summary      Customer orders
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=[]apptrade.OrderResponse}
// @Router       /users/{id}/orders [get]
func (h *UserHandler) Orders(c *gin.Context) {
	orders, err := h.userService.Orders(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, orders, len(orders))
}

// Favorites godoc
// @Summary      Customer favourites
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} dto.Response{data=[]appcatalog.ProductResponse}
// @Router       /users/{id}/favorites [get]
func (h *UserHandler) Favorites(c *gin.Context) {
	products, err := h.userService.Favorites(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, products, len(products))
}
