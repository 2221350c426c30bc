package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	appreport "github.com/storeadmin/backend/internal/application/report"
)

// AnalyticsHandler proxies the web analytics charts
type AnalyticsHandler struct {
	BaseHandler
	analyticsService *appreport.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService *appreport.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

func analyticsReport[T any](h *AnalyticsHandler, fetch func(context.Context) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := fetch(c.Request.Context())
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, data)
	}
}

// TotalUsers godoc
// @Summary      Daily total users
// @Tags         analytics
// @Produce      json
// @Success      200 {object} dto.Response{data=[]report.SeriesPoint}
// @Router       /analytics/total-users [get]
func (h *AnalyticsHandler) TotalUsers() gin.HandlerFunc {
	return analyticsReport(h, h.analyticsService.TotalUsers)
}

// PageViews godoc
// @Summary      Daily page views
// @Tags         analytics
// @Produce      json
// @Success      200 {object} dto.Response{data=[]report.SeriesPoint}
// @Router       /analytics/page-views [get]
func (h *AnalyticsHandler) PageViews() gin.HandlerFunc {
	return analyticsReport(h, h.analyticsService.PageViews)
}

// UserEngagementDuration godoc
// @Summary      Daily engagement seconds
// @Tags         analytics
// @Produce      json
// @Success      200 {object} dto.Response{data=[]report.SeriesPoint}
// @Router       /analytics/user-engagement-duration [get]
func (h *AnalyticsHandler) UserEngagementDuration() gin.HandlerFunc {
	return analyticsReport(h, h.analyticsService.UserEngagementDuration)
}

// UsersByCountry godoc
// @Summary      Users per country
// @Tags         analytics
// @Produce      json
// @Success      200 {object} dto.Response{data=[]report.CountryValue}
// @Router       /analytics/users-by-country [get]
func (h *AnalyticsHandler) UsersByCountry() gin.HandlerFunc {
	return analyticsReport(h, h.analyticsService.UsersByCountry)
}

// UsersByPlatform godoc
// @Summary      Users per platform
// @Tags         analytics
// @Produce      json
// @Success      200 {object} dto.Response{data=[]report.PlatformValue}
// @Router       /analytics/users-by-platform [get]
func (h *AnalyticsHandler) UsersByPlatform() gin.HandlerFunc {
	return analyticsReport(h, h.analyticsService.UsersByPlatform)
}
