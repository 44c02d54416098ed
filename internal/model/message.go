package model

import "time"

// 消息发送方
const (
	SenderTypeUser  = "user"
	SenderTypeAdmin = "admin"
)

// ChatMessage 顾客与客服之间的聊天消息
type ChatMessage struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64      `gorm:"not null;index" json:"user_id"`
	Content    string     `gorm:"column:content;size:1000;not null" json:"content"`
	SenderType string     `gorm:"size:10;not null" json:"sender_type"`
	IsRead     bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt     *time.Time `json:"read_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (*ChatMessage) TableName() string {
	return "chat_messages"
}
