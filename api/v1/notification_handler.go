package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/service"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/e"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// currentUserID 读取JWT中间件写入的用户ID
func currentUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// ListNotifications 当前用户的通知列表
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": e.ERROR_AUTH, "message": e.GetMsg(e.ERROR_AUTH)})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	onlyUnread := c.Query("unread") == "true"

	resp, err := h.notificationService.ListNotifications(c.Request.Context(), userID, onlyUnread, page, limit)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, gin.H{
		"notifications": resp.Notifications,
		"total":         resp.Total,
		"unreadCount":   resp.UnreadCount,
	})
}

// MarkRead 标记单条通知已读
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": e.ERROR_AUTH, "message": e.GetMsg(e.ERROR_AUTH)})
		return
	}
	notificationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c)
		return
	}

	resp, err := h.notificationService.MarkRead(c.Request.Context(), notificationID, userID)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, nil)
}

// MarkAllRead 全部标记已读
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": e.ERROR_AUTH, "message": e.GetMsg(e.ERROR_AUTH)})
		return
	}

	resp, err := h.notificationService.MarkAllRead(c.Request.Context(), userID)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, nil)
}

// SendNotification 管理端推送通知（单发/群发/全部顾客）
func (h *NotificationHandler) SendNotification(c *gin.Context) {
	var req service.SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.notificationService.SendNotification(c.Request.Context(), &req)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, gin.H{"sent": resp.Sent})
}

// DeleteNotification 删除通知
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	notificationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c)
		return
	}

	resp, err := h.notificationService.DeleteNotification(c.Request.Context(), notificationID)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, nil)
}

// GetStats 通知概览统计
func (h *NotificationHandler) GetStats(c *gin.Context) {
	resp, err := h.notificationService.GetStats(c.Request.Context())
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, gin.H{"stats": resp.Stats})
}

// RegisterRoutes 注册通知相关路由
func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	notifications := rg.Group("/notifications")
	{
		notifications.GET("", h.ListNotifications)
		notifications.PATCH("/:id/read", h.MarkRead)
		notifications.PATCH("/read-all", h.MarkAllRead)
	}
}

// RegisterAdminRoutes 注册管理端通知路由（推送/删除/统计）
func (h *NotificationHandler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	notifications := rg.Group("/notifications")
	{
		notifications.POST("/send", h.SendNotification)
		notifications.GET("/stats", h.GetStats)
		notifications.DELETE("/:id", h.DeleteNotification)
	}
}
