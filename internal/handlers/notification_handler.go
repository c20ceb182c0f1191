package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/platewise/backend/internal/models"
	"github.com/platewise/backend/internal/repositories"
	"github.com/platewise/backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	service *services.NotificationService
	log     *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service *services.NotificationService, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{service: service, log: log}
}

// RegisterNotificationRoutes registers notification routes. Admin routes must
// be wrapped with the admin gate by the caller.
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group, admin *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/mark-all-read", h.MarkAllAsRead)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.DELETE("/notifications/all", h.DeleteAll)
	g.DELETE("/notifications/:id", h.DeleteOne)
	g.GET("/notifications/preferences", h.GetPreferences)
	g.PUT("/notifications/preferences", h.UpdatePreferences)

	admin.POST("/notifications/admin/announcement", h.SendAnnouncement)
	admin.GET("/notifications/admin/stats", h.GetStats)
}

// GetNotifications returns paginated notifications, newest first, optionally
// filtered by read state.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	var isRead *bool
	if raw := c.QueryParam("isRead"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "isRead must be true or false")
		}
		isRead = &parsed
	}

	notifications, total, err := h.service.List(c.Request().Context(), currentUserID, page, limit, isRead)
	if err != nil {
		h.log.Error("failed to list notifications", zap.Uint("user", currentUserID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve notifications")
	}

	totalPages := int64(math.Ceil(float64(total) / float64(limit)))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": notifications,
		},
		"meta": echo.Map{
			"currentPage":     page,
			"totalPages":      totalPages,
			"totalItems":      total,
			"itemsPerPage":    limit,
			"hasNextPage":     page < totalPages,
			"hasPreviousPage": page > 1,
		},
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	count, err := h.service.UnreadCount(c.Request().Context(), currentUserID)
	if err != nil {
		h.log.Error("failed to count unread notifications", zap.Uint("user", currentUserID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve unread count")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// MarkAsRead marks one owned notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	if err := h.service.MarkRead(c.Request().Context(), id, currentUserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		h.log.Error("failed to mark notification read", zap.String("id", id.Hex()), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update notification")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// MarkAllAsRead marks all of the user's notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	modified, err := h.service.MarkAllRead(c.Request().Context(), currentUserID)
	if err != nil {
		h.log.Error("failed to mark all notifications read", zap.Uint("user", currentUserID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update notifications")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"modifiedCount": modified}})
}

// DeleteOne removes one owned notification
func (h *NotificationHandler) DeleteOne(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid notification ID")
	}

	if err := h.service.DeleteOne(c.Request().Context(), id, currentUserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
		}
		h.log.Error("failed to delete notification", zap.String("id", id.Hex()), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete notification")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// DeleteAll removes every notification owned by the user
func (h *NotificationHandler) DeleteAll(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	deleted, err := h.service.DeleteAll(c.Request().Context(), currentUserID)
	if err != nil {
		h.log.Error("failed to delete notifications", zap.Uint("user", currentUserID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete notifications")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"deletedCount": deleted}})
}

// GetPreferences returns the user's notification preferences. Currently the
// platform defaults; the record is shaped for per-user persistence.
func (h *NotificationHandler) GetPreferences(c echo.Context) error {
	if getUserIDFromContext(c) == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"preferences": models.DefaultNotificationPreferences()},
	})
}

// UpdatePreferences accepts a preferences update. Until per-user persistence
// lands, the merged result is echoed back without being stored.
func (h *NotificationHandler) UpdatePreferences(c echo.Context) error {
	if getUserIDFromContext(c) == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdatePreferencesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	prefs := models.DefaultNotificationPreferences()
	if req.EmailEnabled != nil {
		prefs.EmailEnabled = *req.EmailEnabled
	}
	if req.InAppEnabled != nil {
		prefs.InAppEnabled = *req.InAppEnabled
	}
	if req.MutedTypes != nil {
		prefs.MutedTypes = req.MutedTypes
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"preferences": prefs},
	})
}

// SendAnnouncement fans a system announcement out to all active users
func (h *NotificationHandler) SendAnnouncement(c echo.Context) error {
	var req models.AnnouncementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Announcement title and message are required")
	}

	sent, err := h.service.Announce(c.Request().Context(), req)
	if err != nil {
		h.log.Error("announcement fan-out failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send announcement")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"sentCount": sent}})
}

// GetStats returns the admin per-type notification breakdown
func (h *NotificationHandler) GetStats(c echo.Context) error {
	stats, err := h.service.StatsByType(c.Request().Context())
	if err != nil {
		h.log.Error("failed to aggregate notification stats", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to retrieve notification stats")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"stats": stats}})
}
