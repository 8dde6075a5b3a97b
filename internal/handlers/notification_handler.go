package handlers

import (
	"net/http"

	"github.com/anonto42/socialnet/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/mark-all-read", h.MarkAllAsRead)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

// GetNotifications returns the newest notifications of the caller
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	notifications, err := h.notifications.List(c.Request().Context(), currentUserID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"notifications": notifications})
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	count, err := h.notifications.UnreadCount(c.Request().Context(), currentUserID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	notificationID, err := parseIDParam(c, "id", "Notification not found")
	if err != nil {
		return err
	}

	if err := h.notifications.MarkRead(c.Request().Context(), notificationID, currentUserID); err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}

	if _, err := h.notifications.MarkAllRead(c.Request().Context(), currentUserID); err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "All notifications marked as read"})
}

func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	currentUserID, err := getUserIDFromContext(c)
	if err != nil {
		return err
	}
	notificationID, err := parseIDParam(c, "id", "Notification not found")
	if err != nil {
		return err
	}

	if err := h.notifications.Delete(c.Request().Context(), notificationID, currentUserID); err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Notification deleted"})
}
