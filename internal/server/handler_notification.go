package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	notifdomain "github.com/masjidkita/masjidkita/internal/notification/domain"
)

type NotificationHandler struct {
	notifications notifdomain.Service
}

func NewNotificationHandler(notifications notifdomain.Service) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) Register(api *gin.RouterGroup) {
	api.GET("/notifications", h.list)
	api.POST("/notifications/:id/read", h.markRead)
}

func (h *NotificationHandler) list(c *gin.Context) {
	unreadOnly := c.Query("unread") == "true"
	notifications, err := h.notifications.ListByUser(c.Request.Context(), actorFrom(c).UserID, unreadOnly)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func (h *NotificationHandler) markRead(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_notification_id"})
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), actorFrom(c).UserID, id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
