package service

import (
	"context"
	"time"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/dao"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/model"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/e"
)

type ChatService struct {
	messageDao *dao.MessageDao
	now        func() time.Time
}

func NewChatService(messageDao *dao.MessageDao) *ChatService {
	return &ChatService{
		messageDao: messageDao,
		now:        time.Now,
	}
}

type SendMessageRequest struct {
	UserID     int64  `json:"userId"`
	Content    string `json:"content" binding:"required"`
	SenderType string `json:"senderType"`
}

type MessageResponse struct {
	Code    int
	Message string
	Data    *model.ChatMessage
}

// SendMessage 保存一条聊天消息
func (s *ChatService) SendMessage(ctx context.Context, req *SendMessageRequest) (*MessageResponse, error) {
	if req.Content == "" || req.UserID <= 0 {
		return &MessageResponse{Code: e.INVALID_PARAMS, Message: e.GetMsg(e.INVALID_PARAMS)}, nil
	}
	senderType := req.SenderType
	if senderType != model.SenderTypeUser && senderType != model.SenderTypeAdmin {
		return &MessageResponse{Code: e.INVALID_PARAMS, Message: "无效的发送方类型"}, nil
	}

	msg := &model.ChatMessage{
		UserID:     req.UserID,
		Content:    req.Content,
		SenderType: senderType,
	}
	if err := s.messageDao.Create(ctx, msg); err != nil {
		return &MessageResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	return &MessageResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS), Data: msg}, nil
}

type MessageListResponse struct {
	Code     int
	Message  string
	Messages []*model.ChatMessage
	Total    int64
}

// GetConversation 查询与某用户的聊天记录，管理端查看时顺带清未读
func (s *ChatService) GetConversation(ctx context.Context, userID int64, page, limit int, markRead bool) (*MessageListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	messages, total, err := s.messageDao.ListByUser(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return &MessageListResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	if markRead {
		if err := s.messageDao.MarkConversationRead(ctx, userID, s.now()); err != nil {
			return &MessageListResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
		}
	}

	return &MessageListResponse{
		Code:     e.SUCCESS,
		Message:  e.GetMsg(e.SUCCESS),
		Messages: messages,
		Total:    total,
	}, nil
}

type ConversationListResponse struct {
	Code          int
	Message       string
	Conversations []*dao.Conversation
}

// ListConversations 管理端会话列表
func (s *ChatService) ListConversations(ctx context.Context) (*ConversationListResponse, error) {
	conversations, err := s.messageDao.ListConversations(ctx)
	if err != nil {
		return &ConversationListResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	return &ConversationListResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS), Conversations: conversations}, nil
}
