package handler

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	appcatalog "github.com/storeadmin/backend/internal/application/catalog"
	"github.com/storeadmin/backend/internal/domain/shared"
)

// Content type of the products workbook
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ProductHandler handles product endpoints
type ProductHandler struct {
	BaseHandler
	productService *appcatalog.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *appcatalog.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List godoc
// @Summary      List products
// @Tags         products
// @Produce      json
// @Param        search query string false "Exact product name, at least 3 characters"
// @Success      200 {object} dto.Response{data=[]appcatalog.ProductResponse}
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter appcatalog.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	products, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, products, len(products))
}

// Get godoc
// @Summary      Get product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} dto.Response{data=appcatalog.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.productService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
// @Summary      Create product
// @Description  Creates the product document, then uploads the images in order
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        name formData string true "Name"
// @Param        price formData string true "Price"
// @Param        category_id formData string false "Category ID"
// @Param        brand_id formData string false "Brand ID"
// @Param        featured formData bool false "Featured"
// @Param        images[] formData file false "Images"
// @Success      201 {object} dto.Response{data=appcatalog.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req appcatalog.ProductRequest
	if err := c.ShouldBind(&req); err != nil {
		h.BindError(c, err)
		return
	}
	images, done, ok := h.formImages(c)
	if !ok {
		return
	}
	defer done()

	product, err := h.productService.Create(c.Request.Context(), req, images)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update godoc
// @Summary      Update product
// @Description  Removes the images listed in removed_paths[], uploads new images and saves the fields
// @Tags         products
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Product ID"
// @Param        name formData string true "Name"
// @Param        price formData string true "Price"
// @Param        removed_paths[] formData []string false "Image paths to remove"
// @Param        images[] formData file false "New images"
// @Success      200 {object} dto.Response{data=appcatalog.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	var req appcatalog.UpdateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		h.BindError(c, err)
		return
	}
	images, done, ok := h.formImages(c)
	if !ok {
		return
	}
	defer done()

	product, err := h.productService.Update(c.Request.Context(), c.Param("id"), req, images)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete godoc
// @Summary      Delete product
// @Description  Deletes the document, then each image in order
// @Tags         products
// @Param        id path string true "Product ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.productService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Export godoc
// @Summary      Export products
// @Description  Downloads every product as an xlsx workbook
// @Tags         products
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200 {file} file
// @Router       /products/export [get]
func (h *ProductHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.productService.ExportWorkbook(c.Request.Context(), &buf); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="products.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// formImages opens the "images[]" files of a multipart form. Requests
// without a multipart body carry no images.
func (h *ProductHandler) formImages(c *gin.Context) ([]shared.FileUpload, func(), bool) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, func() {}, true
	}
	form, err := c.MultipartForm()
	if err != nil {
		h.BadRequest(c, "Invalid multipart form")
		return nil, nil, false
	}
	uploads, done, err := openUploads(form.File["images[]"])
	if err != nil {
		h.HandleError(c, err)
		return nil, nil, false
	}
	return uploads, done, true
}
