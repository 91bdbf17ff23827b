package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/weiawesome/wes-io-social/pkg/middleware"
	"github.com/weiawesome/wes-io-social/pkg/response"
)

// ListNotifications handles GET /notifications.
func (h *Handler) ListNotifications(c *gin.Context) {
	page, ok := bindPage(c)
	if !ok {
		return
	}
	items, err := h.notifications.List(c.Request.Context(), middleware.GetUserID(c), page)
	if err != nil {
		fail(c, err, "list notifications")
		return
	}
	response.Paginated(c, items, page.Page, page.Limit)
}

// MarkNotificationRead handles POST /notifications/:id/read.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if err := h.notifications.MarkRead(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		fail(c, err, "mark notification read")
		return
	}
	response.Success(c, gin.H{"message": "notification marked as read"})
}

// MarkAllNotificationsRead handles POST /notifications/read-all.
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	n, err := h.notifications.MarkAllRead(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		fail(c, err, "mark notifications read")
		return
	}
	response.Success(c, gin.H{"updated": n})
}
