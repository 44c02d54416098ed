package main

import (
	"encoding/json"
	"fmt"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/mq"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/app"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/logger"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/utils"
)

// 状态邮件文案
var statusMailBodies = map[string]string{
	"confirmed": "餐厅已接单，正在为您安排。",
	"preparing": "餐厅正在备餐。",
	"shipping":  "骑手已取餐，正在配送途中。",
	"delivered": "订单已送达，感谢您的惠顾。",
	"cancelled": "订单已取消，如有疑问请联系客服。",
}

func main() {
	cfg := app.BootstrapApp()

	// 纯消费进程，不走生产者池
	conn, ch, msgs, err := mq.NewConsumerChannel(&cfg.MQ, "emails", "email.#", mq.Exchange, true, cfg.MQ.ConsumerPrefetch)
	if err != nil {
		logger.Fatal("consume setup failed", "err", err)
	}
	defer mq.CloseConsumer(conn, ch)

	sender := utils.NewSMTPSender(&cfg.SMTP)

	logger.Info("Email consumer started")
	for d := range msgs {
		var to, subject, body string
		var renderErr error

		switch d.RoutingKey {
		case mq.KeyEmailOrderStatus:
			var job mq.OrderStatusEmailJob
			if renderErr = json.Unmarshal(d.Body, &job); renderErr == nil {
				to = job.Email
				subject, body = renderOrderStatusMail(&job)
			}
		default:
			var job mq.OTPEmailJob
			if renderErr = json.Unmarshal(d.Body, &job); renderErr == nil {
				to = job.Email
				subject, body = renderOTPMail(&job)
			}
		}
		if renderErr != nil {
			logger.Error("Failed to unmarshal email job", "routing_key", d.RoutingKey, "err", renderErr)
			_ = d.Nack(false, false)
			continue
		}

		if err := sender.Send(to, subject, body); err != nil {
			logger.Error("发送邮件失败", "to", to, "routing_key", d.RoutingKey, "err", err)
			// 发送失败重新入队，由 SMTP 侧的暂时性故障恢复后重试
			_ = d.Nack(false, true)
			continue
		}
		logger.Info("邮件已发送", "to", to, "routing_key", d.RoutingKey)
		_ = d.Ack(false)
	}
}

// renderOTPMail 按用途渲染验证码邮件
func renderOTPMail(job *mq.OTPEmailJob) (subject, body string) {
	switch job.Purpose {
	case "reset_password":
		subject = "密码重置验证码"
		body = fmt.Sprintf("您的密码重置验证码是 %s，15分钟内有效。若非本人操作请忽略本邮件。", job.Code)
	default:
		subject = "注册验证码"
		body = fmt.Sprintf("您的注册验证码是 %s，15分钟内有效。", job.Code)
	}
	return subject, body
}

// renderOrderStatusMail 渲染订单状态邮件
func renderOrderStatusMail(job *mq.OrderStatusEmailJob) (subject, body string) {
	subject = fmt.Sprintf("订单 %s 状态更新", job.OrderNumber)
	detail, ok := statusMailBodies[job.ToStatus]
	if !ok {
		detail = fmt.Sprintf("当前状态：%s。", job.ToStatus)
	}
	body = fmt.Sprintf("您的订单 %s 有新进展：%s", job.OrderNumber, detail)
	return subject, body
}
