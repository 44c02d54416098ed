package dao

import (
	"context"
	"time"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/model"
	"gorm.io/gorm"
)

type MessageDao struct {
	db *gorm.DB
}

func NewMessageDao(db *gorm.DB) *MessageDao {
	return &MessageDao{
		db: db,
	}
}

// Conversation 会话概览，按用户聚合
type Conversation struct {
	UserID        int64     `json:"userId"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	UnreadCount   int64     `json:"unreadCount"`
}

// Create 保存聊天消息
func (d *MessageDao) Create(ctx context.Context, message *model.ChatMessage) error {
	return d.db.WithContext(ctx).Create(message).Error
}

// ListByUser 分页查询某用户的聊天记录，按时间升序
func (d *MessageDao) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*model.ChatMessage, int64, error) {
	var messages []*model.ChatMessage
	var total int64

	q := d.db.WithContext(ctx).Model(&model.ChatMessage{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error

	return messages, total, err
}

// ListConversations 按用户聚合会话，含最近消息时间与管理端未读数
func (d *MessageDao) ListConversations(ctx context.Context) ([]*Conversation, error) {
	var conversations []*Conversation
	err := d.db.WithContext(ctx).Model(&model.ChatMessage{}).
		Select("user_id, MAX(created_at) AS last_message_at, SUM(CASE WHEN sender_type = ? AND is_read = 0 THEN 1 ELSE 0 END) AS unread_count", model.SenderTypeUser).
		Group("user_id").
		Order("last_message_at DESC").
		Scan(&conversations).Error
	return conversations, err
}

// MarkConversationRead 将某用户发来的未读消息全部置为已读
func (d *MessageDao) MarkConversationRead(ctx context.Context, userID int64, now time.Time) error {
	return d.db.WithContext(ctx).Model(&model.ChatMessage{}).
		Where("user_id = ? AND sender_type = ? AND is_read = ?", userID, model.SenderTypeUser, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		}).Error
}
