package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PaymentMethod 支付方式
type PaymentMethod string

const (
	PaymentMethodCOD     PaymentMethod = "COD"
	PaymentMethodBanking PaymentMethod = "banking"
	PaymentMethodEWallet PaymentMethod = "e-wallet"
)

// Valid 判断支付方式是否合法
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodBanking, PaymentMethodEWallet:
		return true
	}
	return false
}

// PaymentStatus 支付状态
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Valid 判断支付状态是否合法
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// OrderItem 订单内嵌的菜品快照
type OrderItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int32   `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Image     string  `json:"image,omitempty"`
}

// OrderItemList 以JSON列存储的订单项集合
type OrderItemList []OrderItem

func (l OrderItemList) Value() (driver.Value, error) {
	if l == nil {
		l = OrderItemList{}
	}
	return json.Marshal(l)
}

func (l *OrderItemList) Scan(value interface{}) error {
	if value == nil {
		*l = OrderItemList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for OrderItemList: %T", value)
	}
	return json.Unmarshal(data, l)
}

// ShippingAddress 收货信息
// 平铺为 shipping_* 列，列表接口按姓名/电话模糊检索需要真实列
type ShippingAddress struct {
	FullName    string `gorm:"column:shipping_full_name;size:100;not null" json:"full_name"`
	PhoneNumber string `gorm:"column:shipping_phone;size:20;not null" json:"phone_number"`
	Address     string `gorm:"column:shipping_address;size:255;not null" json:"address"`
	Ward        string `gorm:"column:shipping_ward;size:100" json:"ward,omitempty"`
	District    string `gorm:"column:shipping_district;size:100" json:"district,omitempty"`
	City        string `gorm:"column:shipping_city;size:100" json:"city,omitempty"`
	Note        string `gorm:"column:shipping_note;size:255" json:"note,omitempty"`
}

// Order 订单模型
type Order struct {
	ID              int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderNumber     string          `gorm:"column:order_number;size:20;not null;uniqueIndex" json:"order_number"`
	UserID          int64           `gorm:"column:user_id;not null;index" json:"user_id"`
	Items           OrderItemList   `gorm:"column:items;type:json" json:"items"`
	ShippingAddress ShippingAddress `gorm:"embedded" json:"shipping_address"`
	PaymentMethod   PaymentMethod   `gorm:"column:payment_method;size:20;default:COD" json:"payment_method"`
	PaymentStatus   PaymentStatus   `gorm:"column:payment_status;size:20;default:pending" json:"payment_status"`
	OrderStatus     OrderStatus     `gorm:"column:order_status;size:20;default:pending;index" json:"order_status"`
	TotalAmount     float64         `gorm:"column:total_amount;type:decimal(12,2);not null" json:"total_amount"`
	ShippingFee     float64         `gorm:"column:shipping_fee;type:decimal(12,2);default:0" json:"shipping_fee"`
	FinalAmount     float64         `gorm:"column:final_amount;type:decimal(12,2);not null" json:"final_amount"`
	Note            string          `gorm:"column:note;size:500" json:"note"`
	ConfirmedAt     *time.Time      `gorm:"column:confirmed_at" json:"confirmed_at"`
	PreparingAt     *time.Time      `gorm:"column:preparing_at" json:"preparing_at"`
	ShippingAt      *time.Time      `gorm:"column:shipping_at" json:"shipping_at"`
	DeliveredAt     *time.Time      `gorm:"column:delivered_at" json:"delivered_at"`
	CancelledAt     *time.Time      `gorm:"column:cancelled_at" json:"cancelled_at"`
	CancelReason    string          `gorm:"column:cancel_reason;size:255" json:"cancel_reason"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// FormatOrderNumber 生成 ORD+日期+4位当日序号 格式的订单号
func FormatOrderNumber(date time.Time, sequence int64) string {
	return fmt.Sprintf("ORD%s%04d", date.Format("20060102"), sequence)
}
