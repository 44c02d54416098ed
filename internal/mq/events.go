package mq

import (
	"encoding/json"
	"fmt"
	"time"
)

// 路由键约定：订单事件 order.*，邮件任务 email.*
const (
	KeyOrderStatusChanged = "order.status_changed"
	KeyEmailOTP           = "email.otp"
	KeyEmailOrderStatus   = "email.order_status"
)

// OrderStatusChangedEvent 订单状态流转事件
type OrderStatusChangedEvent struct {
	OrderID     int64     `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      int64     `json:"userId"`
	FromStatus  string    `json:"fromStatus"`
	ToStatus    string    `json:"toStatus"`
	ChangedAt   time.Time `json:"changedAt"`
}

// EventID 消息幂等ID：同一次流转重投时保持不变
func (ev *OrderStatusChangedEvent) EventID() string {
	return fmt.Sprintf("order:%d:%s:%d", ev.OrderID, ev.ToStatus, ev.ChangedAt.UnixNano())
}

// OTPEmailJob 验证码邮件任务
type OTPEmailJob struct {
	Email   string `json:"email"`
	Code    string `json:"code"`
	Purpose string `json:"purpose"` // register / reset_password
}

// OrderStatusEmailJob 订单状态邮件任务
type OrderStatusEmailJob struct {
	Email       string `json:"email"`
	OrderNumber string `json:"orderNumber"`
	ToStatus    string `json:"toStatus"`
}

// Publisher 业务侧发布事件的最小接口，便于测试替换
type Publisher interface {
	PublishAsync(exchange, key string, body []byte) error
	PublishAsyncWithID(exchange, key string, body []byte, messageID string) error
}

// PublishOrderStatusChanged 发布订单状态流转事件，携带幂等ID供消费端去重
func PublishOrderStatusChanged(p Publisher, ev *OrderStatusChangedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.PublishAsyncWithID(Exchange, KeyOrderStatusChanged, body, ev.EventID())
}

// PublishOTPEmail 发布验证码邮件任务
func PublishOTPEmail(p Publisher, job *OTPEmailJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return p.PublishAsync(Exchange, KeyEmailOTP, body)
}

// PublishOrderStatusEmail 发布订单状态邮件任务
func PublishOrderStatusEmail(p Publisher, job *OrderStatusEmailJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return p.PublishAsyncWithID(Exchange, KeyEmailOrderStatus, body,
		fmt.Sprintf("email:order:%s:%s", job.OrderNumber, job.ToStatus))
}
