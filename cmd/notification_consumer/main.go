package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/dao"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/dao/mysql"
	redisinit "github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/dao/redis"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/model"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/mq"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/app"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/logger"
)

// 各状态对应的通知文案
var statusTitles = map[string]string{
	"confirmed": "订单已确认",
	"preparing": "餐厅备餐中",
	"shipping":  "订单配送中",
	"delivered": "订单已送达",
	"cancelled": "订单已取消",
}

func main() {
	cfg := app.BootstrapApp()

	db, err := mysql.InitDB(&cfg.Database.Mysql)
	if err != nil {
		logger.Fatal("连接Mysql数据库失败", "err", err)
	}
	notificationDao := dao.NewNotificationDao(db)
	userDao := dao.NewUserDao(db)

	rdb, err := redisinit.InitRedis(&cfg.Database.Redis)
	if err != nil {
		logger.Fatal("连接Redis失败", "err", err)
	}

	mqPool, err := mq.Init(&cfg.MQ)
	if err != nil {
		logger.Fatal("init mq failed", "err", err)
	}
	defer mqPool.Close()
	if err := mqPool.EnsureBaseTopology(); err != nil {
		logger.Fatal("ensure base topology failed", "err", err)
	}
	msgs, consumerCh, err := mqPool.DeclareAndConsume("notifications", "order.#", mq.Exchange, true, cfg.MQ.ConsumerPrefetch)
	if err != nil {
		logger.Fatal("declare & consume failed", "err", err)
	}
	defer consumerCh.Close()

	logger.Info("Notification consumer started")
	for d := range msgs {
		if d.MessageId != "" {
			key := "restaurant:msg:done:" + d.MessageId
			added, _ := rdb.SetNX(context.Background(), key, 1, 30*time.Minute).Result()
			if !added {
				_ = d.Ack(false)
				continue
			}
		}

		var ev mq.OrderStatusChangedEvent
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			logger.Error("Failed to unmarshal event", "err", err)
			_ = d.Nack(false, false)
			continue
		}

		title, ok := statusTitles[ev.ToStatus]
		if !ok || ev.UserID == 0 {
			// 不需要通知的状态直接确认
			_ = d.Ack(false)
			continue
		}

		n := &model.Notification{
			UserID:  ev.UserID,
			Type:    model.NotificationTypeOrder,
			Title:   title,
			Message: fmt.Sprintf("您的订单 %s 状态已更新为 %s", ev.OrderNumber, ev.ToStatus),
			Data: model.JSONMap{
				"orderId":     ev.OrderID,
				"orderNumber": ev.OrderNumber,
				"fromStatus":  ev.FromStatus,
				"toStatus":    ev.ToStatus,
			},
		}
		if err := notificationDao.Create(context.Background(), n); err != nil {
			logger.Error("创建通知失败", "order_id", ev.OrderID, "err", err)
			_ = d.Nack(false, true)
			continue
		}

		// 站内通知落库后转发状态邮件任务，失败仅记录日志
		if u, uErr := userDao.GetByID(context.Background(), ev.UserID); uErr != nil {
			logger.Warn("查询订单用户失败，跳过状态邮件", "user_id", ev.UserID, "err", uErr)
		} else {
			job := &mq.OrderStatusEmailJob{
				Email:       u.Email,
				OrderNumber: ev.OrderNumber,
				ToStatus:    ev.ToStatus,
			}
			if pErr := mq.PublishOrderStatusEmail(mqPool, job); pErr != nil {
				logger.Warn("订单状态邮件任务发布失败", "order_number", ev.OrderNumber, "err", pErr)
			}
		}
		_ = d.Ack(false)
	}
}
