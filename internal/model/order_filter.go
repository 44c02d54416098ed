package model

import "time"

// OrderFilter 订单列表查询条件
type OrderFilter struct {
	Status    OrderStatus // 为空表示不过滤状态
	Search    string      // 模糊匹配订单号/收货人/电话
	StartDate *time.Time
	EndDate   *time.Time
}
