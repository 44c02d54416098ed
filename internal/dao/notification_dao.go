package dao

import (
	"context"
	"time"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/model"
	"gorm.io/gorm"
)

type NotificationDao struct {
	db *gorm.DB
}

func NewNotificationDao(db *gorm.DB) *NotificationDao {
	return &NotificationDao{
		db: db,
	}
}

// Create 创建通知
func (d *NotificationDao) Create(ctx context.Context, notification *model.Notification) error {
	return d.db.WithContext(ctx).Create(notification).Error
}

// CreateBatch 批量创建通知
func (d *NotificationDao) CreateBatch(ctx context.Context, notifications []*model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return d.db.WithContext(ctx).CreateInBatches(notifications, 200).Error
}

// GetByID 根据ID获取通知
func (d *NotificationDao) GetByID(ctx context.Context, notificationID int64) (*model.Notification, error) {
	var notification model.Notification
	err := d.db.WithContext(ctx).Where("id = ?", notificationID).First(&notification).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// ListByUser 分页查询某用户的通知，按创建时间倒序
func (d *NotificationDao) ListByUser(ctx context.Context, userID int64, onlyUnread bool, offset, limit int) ([]*model.Notification, int64, error) {
	var notifications []*model.Notification
	var total int64

	q := d.db.WithContext(ctx).Model(&model.Notification{}).Where("user_id = ?", userID)
	if onlyUnread {
		q = q.Where("is_read = ?", false)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error

	return notifications, total, err
}

// CountUnread 统计某用户未读通知数
func (d *NotificationDao) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead 将单条通知标记为已读
func (d *NotificationDao) MarkRead(ctx context.Context, notificationID, userID int64, now time.Time) error {
	return d.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		}).Error
}

// MarkAllRead 将某用户全部未读通知标记为已读
func (d *NotificationDao) MarkAllRead(ctx context.Context, userID int64, now time.Time) error {
	return d.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": now,
		}).Error
}

// Delete 删除通知
func (d *NotificationDao) Delete(ctx context.Context, notificationID int64) error {
	return d.db.WithContext(ctx).Delete(&model.Notification{}, notificationID).Error
}

// CountAll 统计全站通知总数
func (d *NotificationDao) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&model.Notification{}).Count(&count).Error
	return count, err
}

// CountUnreadAll 统计全站未读通知数
func (d *NotificationDao) CountUnreadAll(ctx context.Context) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&model.Notification{}).
		Where("is_read = ?", false).
		Count(&count).Error
	return count, err
}

// CountCreatedSince 统计某时间点以来创建的通知数
func (d *NotificationDao) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&model.Notification{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

// MarkEmailSent 标记通知邮件已发送
func (d *NotificationDao) MarkEmailSent(ctx context.Context, notificationID int64) error {
	return d.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ?", notificationID).
		Update("email_sent", true).Error
}
