package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/model"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/service"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/e"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type sendMessageRequest struct {
	UserID  int64  `json:"userId"`
	Content string `json:"content" binding:"required"`
}

// SendMessage 发送消息：管理员需指定 userId，普通用户只能发给管理端
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": e.ERROR_AUTH, "message": e.GetMsg(e.ERROR_AUTH)})
		return
	}
	role, _ := c.Get("role")

	svcReq := &service.SendMessageRequest{Content: req.Content}
	if role == model.RoleAdmin {
		svcReq.UserID = req.UserID
		svcReq.SenderType = model.SenderTypeAdmin
	} else {
		svcReq.UserID = userID
		svcReq.SenderType = model.SenderTypeUser
	}

	resp, err := h.chatService.SendMessage(c.Request.Context(), svcReq)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"code":    resp.Code,
		"message": resp.Message,
		"data":    resp.Data,
	})
}

// GetConversation 查看与某用户的聊天记录
func (h *ChatHandler) GetConversation(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		badRequest(c)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	role, _ := c.Get("role")
	markRead := role == model.RoleAdmin

	resp, err := h.chatService.GetConversation(c.Request.Context(), targetID, page, limit, markRead)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, gin.H{
		"messages": resp.Messages,
		"total":    resp.Total,
	})
}

// ListConversations 管理端会话列表
func (h *ChatHandler) ListConversations(c *gin.Context) {
	if role, _ := c.Get("role"); role != model.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"code": e.ERROR_AUTH, "message": "仅管理员可查看会话列表"})
		return
	}

	resp, err := h.chatService.ListConversations(c.Request.Context())
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, gin.H{"conversations": resp.Conversations})
}

// RegisterRoutes 注册聊天相关路由
func (h *ChatHandler) RegisterRoutes(rg *gin.RouterGroup) {
	chat := rg.Group("/chat")
	{
		chat.POST("/messages", h.SendMessage)
		chat.GET("/conversations", h.ListConversations)
		chat.GET("/conversations/:userId", h.GetConversation)
	}
}
