package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apptrade "github.com/storeadmin/backend/internal/application/trade"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	BaseHandler
	orderService *apptrade.OrderService
	heartbeat    time.Duration
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *apptrade.OrderService, heartbeat time.Duration) *OrderHandler {
	return &OrderHandler{orderService: orderService, heartbeat: heartbeat}
}

// List godoc
// @Summary      List orders
// @Description  Newest first. A search of at least 3 characters matches the order number and wins over the status filter.
// @Tags         orders
// @Produce      json
// @Param        status query string false "Status" Enums(Pending, Processing, Shipped, Delivered, Canceled)
// @Param        search query string false "Order number"
// @Success      200 {object} dto.Response{data=[]apptrade.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var filter apptrade.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	orders, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, orders, len(orders))
}

// Get godoc
// @Summary      Get order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=apptrade.OrderDetailResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orderService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Live godoc
// @Summary      Live order detail
// @Description  Server-sent "snapshot" events of the order, its customer and one slot per line item
// @Tags         orders
// @Produce      text/event-stream
// @Param        id path string true "Order ID"
// @Success      200 {object} apptrade.OrderDetailSnapshot
// @Router       /orders/{id}/live [get]
func (h *OrderHandler) Live(c *gin.Context) {
	view := h.orderService.NewDetailView()
	defer view.Close()
	view.Open(c.Request.Context(), c.Param("id"))

	streamEvents(c, "snapshot", view.Updates(), h.heartbeat)
}

// Advance godoc
// @Summary      Advance order
// @Description  Pending to Processing, Processing to Shipped, Shipped to Delivered
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=apptrade.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/{id}/advance [post]
func (h *OrderHandler) Advance(c *gin.Context) {
	order, err := h.orderService.Advance(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel godoc
// @Summary      Cancel order
// @Description  Only pending orders can be canceled
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=apptrade.OrderResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	order, err := h.orderService.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Export godoc
// @Summary      Export orders
// @Description  Downloads the orders matching the list filter as CSV
// @Tags         orders
// @Produce      text/csv
// @Param        status query string false "Status"
// @Param        search query string false "Order number"
// @Success      200 {file} file
// @Router       /orders/export [get]
func (h *OrderHandler) Export(c *gin.Context) {
	var filter apptrade.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := h.orderService.ExportCSV(c.Request.Context(), filter, &buf); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+apptrade.ExportFilename(filter.Status)+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
