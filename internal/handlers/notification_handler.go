package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/magwach/twitter/internal/engine"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	engine *engine.Engine
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(eng *engine.Engine) *NotificationHandler {
	return &NotificationHandler{engine: eng}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.POST("/notifications/read/:id", h.MarkAsRead)
	g.DELETE("/notifications/delete/:userId", h.DeleteAll)
}

// GetNotifications returns the requester's notifications, newest first.
// Listing marks everything returned as read.
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	notifications, err := h.engine.Notifications(c.Request().Context(), currentUserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": notifications})
}

// MarkAsRead marks a single notification as read.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.engine.MarkNotificationRead(c.Request().Context(), currentUserID, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notification marked as read"})
}

// DeleteAll deletes every notification addressed to the given user.
func (h *NotificationHandler) DeleteAll(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if _, err := h.engine.ClearNotifications(c.Request().Context(), c.Param("userId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Notifications deleted"})
}
