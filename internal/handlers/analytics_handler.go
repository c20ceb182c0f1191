package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/platewise/backend/internal/services"
	"go.uber.org/zap"
)

// AnalyticsHandler serves the admin dashboard aggregation.
type AnalyticsHandler struct {
	service *services.AnalyticsService
	log     *zap.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(service *services.AnalyticsService, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{service: service, log: log}
}

// RegisterAnalyticsRoutes registers analytics routes on the admin group.
func (h *AnalyticsHandler) RegisterAnalyticsRoutes(admin *echo.Group) {
	admin.GET("/admin/analytics", h.GetDashboard)
}

// GetDashboard returns the full analytics payload for the requested range
// (7d, 30d or 90d; defaults to 7d).
func (h *AnalyticsHandler) GetDashboard(c echo.Context) error {
	rangeStr := c.QueryParam("range")
	switch rangeStr {
	case "", "7d", "30d", "90d":
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "range must be one of 7d, 30d, 90d")
	}

	dashboard, err := h.service.Dashboard(c.Request().Context(), rangeStr)
	if err != nil {
		h.log.Error("analytics aggregation failed", zap.String("range", rangeStr), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Analytics retrieval failed")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": dashboard})
}
