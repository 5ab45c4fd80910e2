package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-payment-reminder/internal/domain"
)

type NotificationLister interface {
	Visible() []domain.Notification
}

type MessageLister interface {
	Recent() []domain.TransientMessage
}

// NotificationHandler exposes what the user currently sees: posted
// notifications and recent transient messages. notifications may be nil when
// the notification backend keeps no local state.
type NotificationHandler struct {
	notifications NotificationLister
	messages      MessageLister
}

func NewNotificationHandler(notifications NotificationLister, messages MessageLister) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		messages:      messages,
	}
}

func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	resp := []NotificationResponse{}

	if h.notifications != nil {
		for _, n := range h.notifications.Visible() {
			resp = append(resp, fromNotification(n))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": resp,
		"count":         len(resp),
	})
}

func (h *NotificationHandler) ListMessages(c *gin.Context) {
	resp := []MessageResponse{}

	if h.messages != nil {
		for _, m := range h.messages.Recent() {
			resp = append(resp, fromMessage(m))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": resp,
		"count":    len(resp),
	})
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/notifications", h.ListNotifications)
	router.GET("/messages", h.ListMessages)
}
