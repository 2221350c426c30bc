package handler

import (
	"github.com/gin-gonic/gin"
	appcatalog "github.com/storeadmin/backend/internal/application/catalog"
	"github.com/storeadmin/backend/internal/domain/shared"
)

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	BaseHandler
	categoryService *appcatalog.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *appcatalog.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List godoc
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Param        search query string false "Exact category name, at least 3 characters"
// @Success      200 {object} dto.Response{data=[]appcatalog.CategoryResponse}
// @Router       /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	var filter appcatalog.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	categories, err := h.categoryService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, categories, len(categories))
}

// Get godoc
// @Summary      Get category
// @Tags         categories
// @Produce      json
// @Param        id path string true "Category ID"
// @Success      200 {object} dto.Response{data=appcatalog.CategoryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.categoryService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Create godoc
// @Summary      Create category
// @Description  Creates the category document, then uploads the optional image
// @Tags         categories
// @Accept       multipart/form-data
// @Produce      json
// @Param        name formData string true "Name"
// @Param        description formData string false "Description"
// @Param        image formData file false "Image"
// @Success      201 {object} dto.Response{data=appcatalog.CategoryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req appcatalog.CategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		h.BindError(c, err)
		return
	}
	image, done, ok := h.formImage(c)
	if !ok {
		return
	}
	defer done()

	category, err := h.categoryService.Create(c.Request.Context(), req, image)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// Update godoc
// @Summary      Update category
// @Description  Updates the fields; a new image replaces the stored one
// @Tags         categories
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Category ID"
// @Param        name formData string true "Name"
// @Param        description formData string false "Description"
// @Param        image formData file false "Image"
// @Success      200 {object} dto.Response{data=appcatalog.CategoryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	var req appcatalog.CategoryRequest
	if err := c.ShouldBind(&req); err != nil {
		h.BindError(c, err)
		return
	}
	image, done, ok := h.formImage(c)
	if !ok {
		return
	}
	defer done()

	category, err := h.categoryService.Update(c.Request.Context(), c.Param("id"), req, image)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Delete godoc
// @Summary      Delete category
// @Tags         categories
// @Param        id path string true "Category ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categoryService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// formImage opens the optional "image" file of the form
func (h *CategoryHandler) formImage(c *gin.Context) (*shared.FileUpload, func(), bool) {
	fh, err := c.FormFile("image")
	if err != nil {
		return nil, func() {}, true
	}
	upload, done, err := openUpload(fh)
	if err != nil {
		h.HandleError(c, err)
		return nil, nil, false
	}
	return &upload, done, true
}
