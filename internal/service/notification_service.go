package service

import (
	"context"
	"errors"
	"time"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/dao"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/model"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/e"
	"gorm.io/gorm"
)

type NotificationService struct {
	notificationDao *dao.NotificationDao
	userDao         *dao.UserDao
	now             func() time.Time
}

func NewNotificationService(notificationDao *dao.NotificationDao, userDao *dao.UserDao) *NotificationService {
	return &NotificationService{
		notificationDao: notificationDao,
		userDao:         userDao,
		now:             time.Now,
	}
}

type NotificationListResponse struct {
	Code          int
	Message       string
	Notifications []*model.Notification
	Total         int64
	UnreadCount   int64
}

// ListNotifications 分页查询用户通知
func (s *NotificationService) ListNotifications(ctx context.Context, userID int64, onlyUnread bool, page, limit int) (*NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	notifications, total, err := s.notificationDao.ListByUser(ctx, userID, onlyUnread, (page-1)*limit, limit)
	if err != nil {
		return &NotificationListResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	unread, err := s.notificationDao.CountUnread(ctx, userID)
	if err != nil {
		return &NotificationListResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	return &NotificationListResponse{
		Code:          e.SUCCESS,
		Message:       e.GetMsg(e.SUCCESS),
		Notifications: notifications,
		Total:         total,
		UnreadCount:   unread,
	}, nil
}

type NotificationActionResponse struct {
	Code    int
	Message string
}

// MarkRead 标记单条通知为已读
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID int64) (*NotificationActionResponse, error) {
	n, err := s.notificationDao.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotificationActionResponse{Code: e.ERROR_NOTIFICATION_NOT_EXISTS, Message: e.GetMsg(e.ERROR_NOTIFICATION_NOT_EXISTS)}, nil
		}
		return &NotificationActionResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	if n.UserID != userID {
		return &NotificationActionResponse{Code: e.ERROR_NOTIFICATION_NOT_EXISTS, Message: e.GetMsg(e.ERROR_NOTIFICATION_NOT_EXISTS)}, nil
	}

	if err := s.notificationDao.MarkRead(ctx, notificationID, userID, s.now()); err != nil {
		return &NotificationActionResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	return &NotificationActionResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS)}, nil
}

// MarkAllRead 标记用户全部通知为已读
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (*NotificationActionResponse, error) {
	if err := s.notificationDao.MarkAllRead(ctx, userID, s.now()); err != nil {
		return &NotificationActionResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	return &NotificationActionResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS)}, nil
}

type SendNotificationRequest struct {
	UserID  int64   `json:"userId"`  // 单发
	UserIDs []int64 `json:"userIds"` // 群发
	All     bool    `json:"all"`     // 发给全部顾客
	Title   string  `json:"title" binding:"required"`
	Message string  `json:"message" binding:"required"`
}

type SendNotificationResponse struct {
	Code    int
	Message string
	Sent    int
}

// SendNotification 管理端推送系统通知：单发、群发或发给全部在用顾客
func (s *NotificationService) SendNotification(ctx context.Context, req *SendNotificationRequest) (*SendNotificationResponse, error) {
	if req.Title == "" || req.Message == "" {
		return &SendNotificationResponse{Code: e.INVALID_PARAMS, Message: "标题与内容不能为空"}, nil
	}

	var targets []int64
	switch {
	case req.All:
		ids, err := s.userDao.ListIDsByRole(ctx, model.RoleUser, model.UserStatusActive)
		if err != nil {
			return &SendNotificationResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
		}
		targets = ids
	case len(req.UserIDs) > 0:
		targets = req.UserIDs
	case req.UserID > 0:
		if _, err := s.userDao.GetByID(ctx, req.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &SendNotificationResponse{Code: e.ERROR_USER_NOT_EXISTS, Message: e.GetMsg(e.ERROR_USER_NOT_EXISTS)}, nil
			}
			return &SendNotificationResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
		}
		targets = []int64{req.UserID}
	default:
		return &SendNotificationResponse{Code: e.INVALID_PARAMS, Message: "缺少通知对象"}, nil
	}

	notifications := make([]*model.Notification, 0, len(targets))
	for _, id := range targets {
		notifications = append(notifications, &model.Notification{
			UserID:  id,
			Type:    model.NotificationTypeSystem,
			Title:   req.Title,
			Message: req.Message,
		})
	}
	if err := s.notificationDao.CreateBatch(ctx, notifications); err != nil {
		return &SendNotificationResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	return &SendNotificationResponse{
		Code:    e.SUCCESS,
		Message: e.GetMsg(e.SUCCESS),
		Sent:    len(notifications),
	}, nil
}

// DeleteNotification 删除通知
func (s *NotificationService) DeleteNotification(ctx context.Context, notificationID int64) (*NotificationActionResponse, error) {
	if _, err := s.notificationDao.GetByID(ctx, notificationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotificationActionResponse{Code: e.ERROR_NOTIFICATION_NOT_EXISTS, Message: e.GetMsg(e.ERROR_NOTIFICATION_NOT_EXISTS)}, nil
		}
		return &NotificationActionResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	if err := s.notificationDao.Delete(ctx, notificationID); err != nil {
		return &NotificationActionResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	return &NotificationActionResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS)}, nil
}

// NotificationStats 全站通知概览
type NotificationStats struct {
	Total     int64 `json:"total"`
	Unread    int64 `json:"unread"`
	SentToday int64 `json:"sentToday"` // 当日零点以来
}

type NotificationStatsResponse struct {
	Code    int
	Message string
	Stats   *NotificationStats
}

// GetStats 统计通知总量、未读量与当日发送量
func (s *NotificationService) GetStats(ctx context.Context) (*NotificationStatsResponse, error) {
	stats := &NotificationStats{}

	var err error
	if stats.Total, err = s.notificationDao.CountAll(ctx); err != nil {
		return &NotificationStatsResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	if stats.Unread, err = s.notificationDao.CountUnreadAll(ctx); err != nil {
		return &NotificationStatsResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if stats.SentToday, err = s.notificationDao.CountCreatedSince(ctx, startOfDay); err != nil {
		return &NotificationStatsResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	return &NotificationStatsResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS), Stats: stats}, nil
}
