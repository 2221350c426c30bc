package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	appreport "github.com/storeadmin/backend/internal/application/report"
)

// DashboardHandler handles the dashboard widgets and the app package
type DashboardHandler struct {
	BaseHandler
	dashboardService *appreport.DashboardService
	packageService   *appreport.PackageService
	heartbeat        time.Duration
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(
	dashboardService *appreport.DashboardService,
	packageService *appreport.PackageService,
	heartbeat time.Duration,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		packageService:   packageService,
		heartbeat:        heartbeat,
	}
}

// Overview godoc
// @Summary      Dashboard overview
// @Description  Total orders, total revenue, orders placed today and the product count
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} dto.Response{data=report.Overview}
// @Router       /dashboard/overview [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	overview, err := h.dashboardService.Overview(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, overview)
}

// PendingOrders godoc
// @Summary      Pending orders widget
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} dto.Response{data=[]apptrade.OrderResponse}
// @Router       /dashboard/pending-orders [get]
func (h *DashboardHandler) PendingOrders(c *gin.Context) {
	orders, err := h.dashboardService.PendingOrders(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, orders, len(orders))
}

// OnlineUsers godoc
// @Summary      Online users widget
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} dto.Response{data=[]appreport.OnlineUser}
// @Router       /dashboard/online-users [get]
func (h *DashboardHandler) OnlineUsers(c *gin.Context) {
	users, err := h.dashboardService.OnlineUsers(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, users, len(users))
}

// Revenue godoc
// @Summary      Revenue chart
// @Tags         dashboard
// @Produce      json
// @Param        basis query string false "Bucket size" Enums(daily, monthly, yearly)
// @Success      200 {object} dto.Response{data=[]report.RevenueBucket}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /dashboard/revenue [get]
func (h *DashboardHandler) Revenue(c *gin.Context) {
	buckets, err := h.dashboardService.Revenue(c.Request.Context(), c.Query("basis"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, buckets)
}

// RevenueLive godoc
// @Summary      Live revenue chart
// @Description  Server-sent "revenue" events, recomputed on every order change in the window
// @Tags         dashboard
// @Produce      text/event-stream
// @Param        basis query string false "Bucket size" Enums(daily, monthly, yearly)
// @Success      200 {object} appreport.RevenueUpdate
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /dashboard/revenue/live [get]
func (h *DashboardHandler) RevenueLive(c *gin.Context) {
	view, err := h.dashboardService.WatchRevenue(c.Request.Context(), c.Query("basis"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer view.Close()

	streamEvents(c, "revenue", view.Updates(), h.heartbeat)
}

// Package godoc
// @Summary      Current app package
// @Description  data is null when no package has been uploaded
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} dto.Response{data=appreport.PackageResponse}
// @Router       /dashboard/package [get]
func (h *DashboardHandler) Package(c *gin.Context) {
	pkg, err := h.packageService.Current(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pkg)
}

// UploadPackage godoc
// @Summary      Upload app package
// @Description  Stores the apk, publishes its download link and removes the previous package
// @Tags         dashboard
// @Accept       multipart/form-data
// @Produce      json
// @Param        package formData file true "Android package"
// @Success      201 {object} dto.Response{data=appreport.PackageResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /dashboard/package [post]
func (h *DashboardHandler) UploadPackage(c *gin.Context) {
	fh, err := c.FormFile("package")
	if err != nil {
		h.BadRequest(c, "package file is required")
		return
	}
	upload, done, err := openUpload(fh)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer done()

	pkg, err := h.packageService.Upload(c.Request.Context(), upload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, pkg)
}

// RemovePackage godoc
// @Summary      Remove app package
// @Tags         dashboard
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /dashboard/package [delete]
func (h *DashboardHandler) RemovePackage(c *gin.Context) {
	if err := h.packageService.Remove(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
