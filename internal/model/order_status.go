package model

import (
	"fmt"
	"time"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusShipping  OrderStatus = "shipping"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// DefaultCancelReason 取消订单时未填写原因的默认值
const DefaultCancelReason = "No reason provided"

func (s OrderStatus) String() string {
	return string(s)
}

// Valid 判断是否为六个已定义状态之一
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusShipping, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal delivered 和 cancelled 为终态，不允许再流转
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// validTransitions 状态机合法流转表
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusShipping, OrderStatusCancelled},
	OrderStatusShipping:  {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// CanTransition 检查是否可以从当前状态流转到目标状态
func CanTransition(from, to OrderStatus) bool {
	allowed, exists := validTransitions[from]
	if !exists {
		return false
	}
	for _, status := range allowed {
		if status == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError 非法状态流转，消息中带上当前状态和目标状态
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("Cannot transition from %s to %s", e.From, e.To)
}

// ApplyTransition 校验并在内存中应用一次状态流转及其副作用：
// 进入新状态打一次对应时间戳；delivered 强制置为已支付；
// cancelled 记录取消原因（空则使用默认文案）。
// 副作用只改内存对象，持久化由调用方负责。
func (o *Order) ApplyTransition(to OrderStatus, reason string, now time.Time) error {
	if !CanTransition(o.OrderStatus, to) {
		return &InvalidTransitionError{From: o.OrderStatus, To: to}
	}

	o.OrderStatus = to

	switch to {
	case OrderStatusConfirmed:
		o.ConfirmedAt = &now
	case OrderStatusPreparing:
		o.PreparingAt = &now
	case OrderStatusShipping:
		o.ShippingAt = &now
	case OrderStatusDelivered:
		o.DeliveredAt = &now
		o.PaymentStatus = PaymentStatusPaid
	case OrderStatusCancelled:
		o.CancelledAt = &now
		if reason == "" {
			reason = DefaultCancelReason
		}
		o.CancelReason = reason
	}
	return nil
}
