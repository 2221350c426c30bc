package handler

import (
	"github.com/gin-gonic/gin"
	appcatalog "github.com/storeadmin/backend/internal/application/catalog"
)

// BrandHandler handles brand endpoints
type BrandHandler struct {
	BaseHandler
	brandService *appcatalog.BrandService
}

// NewBrandHandler creates a new BrandHandler
func NewBrandHandler(brandService *appcatalog.BrandService) *BrandHandler {
	return &BrandHandler{brandService: brandService}
}

// List godoc
// @Summary      List brands
// @Tags         brands
// @Produce      json
// @Param        search query string false "Exact brand name, at least 3 characters"
// @Success      200 {object} dto.Response{data=[]appcatalog.BrandResponse}
// @Router       /brands [get]
func (h *BrandHandler) List(c *gin.Context) {
	var filter appcatalog.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	brands, err := h.brandService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, brands, len(brands))
}

// Get godoc
// @Summary      Get brand
// @Tags         brands
// @Produce      json
// @Param        id path string true "Brand ID"
// @Success      200 {object} dto.Response{data=appcatalog.BrandResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /brands/{id} [get]
func (h *BrandHandler) Get(c *gin.Context) {
	brand, err := h.brandService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, brand)
}

// Create godoc
// @Summary      Create brand
// @Tags         brands
// @Accept       json
// @Produce      json
// @Param        request body appcatalog.BrandRequest true "Brand"
// @Success      201 {object} dto.Response{data=appcatalog.BrandResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /brands [post]
func (h *BrandHandler) Create(c *gin.Context) {
	var req appcatalog.BrandRequest
	if err := c.ShouldBind(&req); err != nil {
		h.BindError(c, err)
		return
	}
	brand, err := h.brandService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, brand)
}

// Update godoc
// @Summary      Update brand
// @Tags         brands
// @Accept       json
// @Produce      json
// @Param        id path string true "Brand ID"
// @Param        request body appcatalog.BrandRequest true "Brand"
// @Success      200 {object} dto.Response{data=appcatalog.BrandResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /brands/{id} [put]
func (h *BrandHandler) Update(c *gin.Context) {
	var req appcatalog.BrandRequest
	if err := c.ShouldBind(&req); err != nil {
		h.BindError(c, err)
		return
	}
	brand, err := h.brandService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, brand)
}

// Delete godoc
// @Summary      Delete brand
// @Tags         brands
// @Param        id path string true "Brand ID"
// @Success      204
// @Router       /brands/{id} [delete]
func (h *BrandHandler) Delete(c *gin.Context) {
	if err := h.brandService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
