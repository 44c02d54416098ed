package service

import (
	"context"
	"time"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/model"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/e"
)

// OrderStatistics 订单状态分布与已送达营收汇总
type OrderStatistics struct {
	Total        int64   `json:"total"`
	Pending      int64   `json:"pending"`
	Confirmed    int64   `json:"confirmed"`
	Preparing    int64   `json:"preparing"`
	Shipping     int64   `json:"shipping"`
	Delivered    int64   `json:"delivered"`
	Cancelled    int64   `json:"cancelled"`
	TodayOrders  int64   `json:"todayOrders"`  // 当日零点以来
	MonthOrders  int64   `json:"monthOrders"`  // 当月一号以来
	TotalRevenue float64 `json:"totalRevenue"`
}

type StatisticsResponse struct {
	Code       int
	Message    string
	Statistics *OrderStatistics
}

// GetStatistics 统计各状态订单数量与已送达订单营收
func (s *OrderService) GetStatistics(ctx context.Context) (*StatisticsResponse, error) {
	stats := &OrderStatistics{}

	counters := []struct {
		status model.OrderStatus
		dst    *int64
	}{
		{"", &stats.Total},
		{model.OrderStatusPending, &stats.Pending},
		{model.OrderStatusConfirmed, &stats.Confirmed},
		{model.OrderStatusPreparing, &stats.Preparing},
		{model.OrderStatusShipping, &stats.Shipping},
		{model.OrderStatusDelivered, &stats.Delivered},
		{model.OrderStatusCancelled, &stats.Cancelled},
	}
	for _, c := range counters {
		n, err := s.store.CountByStatus(ctx, c.status)
		if err != nil {
			return &StatisticsResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
		}
		*c.dst = n
	}

	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var err error
	if stats.TodayOrders, err = s.store.CountCreatedSince(ctx, startOfDay); err != nil {
		return &StatisticsResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	if stats.MonthOrders, err = s.store.CountCreatedSince(ctx, startOfMonth); err != nil {
		return &StatisticsResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	// 营收只计已送达订单的实付金额
	delivered, err := s.store.FindDeliveredSince(ctx, time.Time{})
	if err != nil {
		return &StatisticsResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	for _, ord := range delivered {
		stats.TotalRevenue += ord.FinalAmount
	}

	return &StatisticsResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS), Statistics: stats}, nil
}

// RevenueBucket 按日或按月的营收桶
type RevenueBucket struct {
	Period  string  `json:"period"` // 日桶 YYYY-MM-DD，月桶 YYYY-MM
	Revenue float64 `json:"revenue"`
	Orders  int64   `json:"orders"`
}

type RevenueResponse struct {
	Code         int
	Message      string
	Buckets      []RevenueBucket
	TotalRevenue float64
	TotalOrders  int64
}

// GetRevenueByPeriod 已送达订单营收按时间分桶
// period 取值 7days / 30days / 12months，空桶不输出，按首次出现顺序排列
func (s *OrderService) GetRevenueByPeriod(ctx context.Context, period string) (*RevenueResponse, error) {
	now := s.now()
	var since time.Time
	var keyLayout string
	switch period {
	case "", "7days":
		since = now.AddDate(0, 0, -7)
		keyLayout = "2006-01-02"
	case "30days":
		since = now.AddDate(0, 0, -30)
		keyLayout = "2006-01-02"
	case "12months":
		// 十二个月前的月初
		since = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -12, 0)
		keyLayout = "2006-01"
	default:
		return &RevenueResponse{Code: e.INVALID_PARAMS, Message: "无效的统计周期"}, nil
	}

	orders, err := s.store.FindDeliveredSince(ctx, since)
	if err != nil {
		return &RevenueResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	// 按创建时间升序扫描，桶按首次出现顺序累积
	index := make(map[string]int)
	resp := &RevenueResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS), Buckets: []RevenueBucket{}}
	for _, ord := range orders {
		key := ord.CreatedAt.Format(keyLayout)
		i, ok := index[key]
		if !ok {
			i = len(resp.Buckets)
			index[key] = i
			resp.Buckets = append(resp.Buckets, RevenueBucket{Period: key})
		}
		resp.Buckets[i].Revenue += ord.FinalAmount
		resp.Buckets[i].Orders++
		resp.TotalRevenue += ord.FinalAmount
		resp.TotalOrders++
	}

	return resp, nil
}
