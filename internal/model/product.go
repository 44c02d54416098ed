package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// 商品状态
const (
	ProductStatusAvailable   = "available"
	ProductStatusUnavailable = "unavailable"
	ProductStatusOutOfStock  = "out-of-stock"
)

// StringList 以JSON列存储的字符串集合（商品图片URL等）
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
	return json.Unmarshal(data, l)
}

// Product 菜品模型
type Product struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"size:100;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Price       float64    `gorm:"type:decimal(12,2);not null" json:"price"`
	Images      StringList `gorm:"column:images;type:json" json:"images"`
	Status      string     `gorm:"size:20;default:available" json:"status"`
	CategoryID  int64      `gorm:"not null;index" json:"category_id"`
	Stock       int32      `gorm:"not null;default:0" json:"stock"`
	// 备餐时长文案，例如 "25-30 phút"
	PreparationTime string    `gorm:"size:50" json:"preparation_time"`
	Calories        int32     `gorm:"default:0" json:"calories"`
	Rating          float64   `gorm:"default:0" json:"rating"`
	ReviewCount     int32     `gorm:"default:0" json:"review_count"`
	ViewCount       int32     `gorm:"default:0" json:"view_count"`
	SoldCount       int32     `gorm:"default:0" json:"sold_count"`
	Discount        int32     `gorm:"default:0" json:"discount"`
	IsDeleted       bool      `gorm:"default:false;index" json:"is_deleted"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (*Product) TableName() string {
	return "products"
}
