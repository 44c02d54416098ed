// Package service 餐厅后台业务实现
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/dao"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/model"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/mq"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/e"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/logger"
	"gorm.io/gorm"
)

// 订单号冲突时的最大重试次数
const maxOrderNumberAttempts = 3

// OrderStore 订单存储接口，由 dao.OrderDao 实现
type OrderStore interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, orderID int64) (*model.Order, error)
	Save(ctx context.Context, order *model.Order) error
	Updates(ctx context.Context, orderID int64, updates map[string]interface{}) error
	Delete(ctx context.Context, orderID int64) error
	List(ctx context.Context, f model.OrderFilter, offset, limit int) ([]*model.Order, int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	CountByStatus(ctx context.Context, status model.OrderStatus) (int64, error)
	FindDeliveredSince(ctx context.Context, since time.Time) ([]*model.Order, error)
}

type OrderService struct {
	store     OrderStore
	publisher mq.Publisher
	now       func() time.Time
}

// NewOrderService 创建订单服务，publisher 可为 nil（不发布事件）
func NewOrderService(store OrderStore, publisher mq.Publisher) *OrderService {
	return &OrderService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

type CreateOrderRequest struct {
	UserID          int64                 `json:"userId"`
	Items           []model.OrderItem     `json:"items" binding:"required"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
	TotalAmount     float64               `json:"totalAmount"`
	ShippingFee     float64               `json:"shippingFee"`
	Note            string                `json:"note"`
}

type OrderResponse struct {
	Code    int
	Message string
	Order   *model.Order
}

// CreateOrder 创建订单并分配当日递增订单号，撞号时重新取号重试
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderResponse, error) {
	if len(req.Items) == 0 {
		return &OrderResponse{Code: e.INVALID_PARAMS, Message: "订单明细不能为空"}, nil
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 || it.UnitPrice < 0 {
			return &OrderResponse{Code: e.INVALID_PARAMS, Message: e.GetMsg(e.INVALID_PARAMS)}, nil
		}
	}
	if req.ShippingAddress.FullName == "" || req.ShippingAddress.PhoneNumber == "" || req.ShippingAddress.Address == "" {
		return &OrderResponse{Code: e.INVALID_PARAMS, Message: "收货信息不完整"}, nil
	}
	if req.ShippingFee < 0 || req.TotalAmount < 0 {
		return &OrderResponse{Code: e.INVALID_PARAMS, Message: e.GetMsg(e.INVALID_PARAMS)}, nil
	}

	method := model.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = model.PaymentMethodCOD
	}
	if !method.Valid() {
		return &OrderResponse{Code: e.INVALID_PARAMS, Message: "不支持的支付方式"}, nil
	}

	// 金额以调用方传入为准，未传时按明细计算
	totalAmount := req.TotalAmount
	if totalAmount == 0 {
		for _, it := range req.Items {
			totalAmount += it.UnitPrice * float64(it.Quantity)
		}
	}

	newOrder := &model.Order{
		UserID:          req.UserID,
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   method,
		PaymentStatus:   model.PaymentStatusPending,
		OrderStatus:     model.OrderStatusPending,
		TotalAmount:     totalAmount,
		ShippingFee:     req.ShippingFee,
		FinalAmount:     totalAmount + req.ShippingFee,
		Note:            req.Note,
	}

	// 取号-落库循环：撞唯一索引说明并发订单已占用该号，重新统计后再试
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		count, err := s.store.CountCreatedSince(ctx, startOfDay)
		if err != nil {
			return &OrderResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
		}
		newOrder.OrderNumber = model.FormatOrderNumber(now, count+1)

		err = s.store.Create(ctx, newOrder)
		if err == nil {
			logger.Info("订单创建成功", "order_id", newOrder.ID, "order_number", newOrder.OrderNumber)
			return &OrderResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS), Order: newOrder}, nil
		}
		if errors.Is(err, dao.ErrOrderNumberTaken) {
			logger.Warn("订单号冲突，重试取号", "order_number", newOrder.OrderNumber, "attempt", attempt)
			continue
		}
		return &OrderResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	return &OrderResponse{Code: e.ERROR_ORDER_NUMBER_CONFLICT, Message: e.GetMsg(e.ERROR_ORDER_NUMBER_CONFLICT)}, nil
}

// GetOrder 获取订单详情
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*OrderResponse, error) {
	ord, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &OrderResponse{Code: e.ERROR_ORDER_NOT_EXISTS, Message: e.GetMsg(e.ERROR_ORDER_NOT_EXISTS)}, nil
		}
		return &OrderResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	return &OrderResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS), Order: ord}, nil
}

type ListOrdersRequest struct {
	Page      int
	Limit     int
	Status    string // 空或 all 表示全部
	Search    string
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD，含当天整天
}

type OrderListResponse struct {
	Code       int
	Message    string
	Orders     []*model.Order
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ListOrders 按条件分页查询订单
func (s *OrderService) ListOrders(ctx context.Context, req *ListOrdersRequest) (*OrderListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = 20
	}

	filter, errMsg := s.buildFilter(req)
	if errMsg != "" {
		return &OrderListResponse{Code: e.INVALID_PARAMS, Message: errMsg}, nil
	}

	orders, total, err := s.store.List(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return &OrderListResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &OrderListResponse{
		Code:       e.SUCCESS,
		Message:    e.GetMsg(e.SUCCESS),
		Orders:     orders,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// buildFilter 将列表/导出查询参数解析为存储过滤条件，返回非空 errMsg 表示参数非法
func (s *OrderService) buildFilter(req *ListOrdersRequest) (model.OrderFilter, string) {
	var filter model.OrderFilter
	if req.Status != "" && req.Status != "all" {
		st := model.OrderStatus(req.Status)
		if !st.Valid() {
			return filter, "无效的订单状态"
		}
		filter.Status = st
	}
	filter.Search = req.Search

	if req.StartDate != "" {
		t, err := time.ParseInLocation("2006-01-02", req.StartDate, s.now().Location())
		if err != nil {
			return filter, "无效的起始日期"
		}
		filter.StartDate = &t
	}
	if req.EndDate != "" {
		t, err := time.ParseInLocation("2006-01-02", req.EndDate, s.now().Location())
		if err != nil {
			return filter, "无效的截止日期"
		}
		// 截止日期含当天整天
		end := t.Add(24*time.Hour - time.Millisecond)
		filter.EndDate = &end
	}
	return filter, ""
}

type UpdateOrderRequest struct {
	Note            *string                `json:"note"`
	PaymentMethod   *string                `json:"paymentMethod"`
	PaymentStatus   *string                `json:"paymentStatus"`
	ShippingAddress *model.ShippingAddress `json:"shippingAddress"`
}

// UpdateOrder 更新订单的非状态字段（白名单），状态流转走 UpdateOrderStatus
func (s *OrderService) UpdateOrder(ctx context.Context, orderID int64, req *UpdateOrderRequest) (*OrderResponse, error) {
	updates := map[string]interface{}{}
	if req.Note != nil {
		updates["note"] = *req.Note
	}
	if req.PaymentMethod != nil {
		if !model.PaymentMethod(*req.PaymentMethod).Valid() {
			return &OrderResponse{Code: e.INVALID_PARAMS, Message: "不支持的支付方式"}, nil
		}
		updates["payment_method"] = *req.PaymentMethod
	}
	if req.PaymentStatus != nil {
		if !model.PaymentStatus(*req.PaymentStatus).Valid() {
			return &OrderResponse{Code: e.INVALID_PARAMS, Message: "无效的支付状态"}, nil
		}
		updates["payment_status"] = *req.PaymentStatus
	}
	if req.ShippingAddress != nil {
		updates["shipping_full_name"] = req.ShippingAddress.FullName
		updates["shipping_phone"] = req.ShippingAddress.PhoneNumber
		updates["shipping_address"] = req.ShippingAddress.Address
		updates["shipping_ward"] = req.ShippingAddress.Ward
		updates["shipping_district"] = req.ShippingAddress.District
		updates["shipping_city"] = req.ShippingAddress.City
		updates["shipping_note"] = req.ShippingAddress.Note
	}
	if len(updates) == 0 {
		return &OrderResponse{Code: e.INVALID_PARAMS, Message: "没有可更新的字段"}, nil
	}

	if _, err := s.store.GetByID(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &OrderResponse{Code: e.ERROR_ORDER_NOT_EXISTS, Message: e.GetMsg(e.ERROR_ORDER_NOT_EXISTS)}, nil
		}
		return &OrderResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	if err := s.store.Updates(ctx, orderID, updates); err != nil {
		return &OrderResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	ord, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		return &OrderResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	return &OrderResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS), Order: ord}, nil
}

// UpdateOrderStatus 执行单个订单的状态流转并发布事件
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int64, status, cancelReason string) (*OrderResponse, error) {
	to := model.OrderStatus(status)
	if !to.Valid() {
		return &OrderResponse{Code: e.INVALID_PARAMS, Message: "无效的订单状态"}, nil
	}

	ord, err := s.store.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &OrderResponse{Code: e.ERROR_ORDER_NOT_EXISTS, Message: e.GetMsg(e.ERROR_ORDER_NOT_EXISTS)}, nil
		}
		return &OrderResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	from := ord.OrderStatus
	if err := ord.ApplyTransition(to, cancelReason, s.now()); err != nil {
		// 非法流转时返回原实现的提示文案
		return &OrderResponse{Code: e.ERROR_ORDER_STATUS_INVALID, Message: err.Error()}, nil
	}
	if err := s.store.Save(ctx, ord); err != nil {
		return &OrderResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	s.publishStatusChanged(ord, from, to)
	return &OrderResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS), Order: ord}, nil
}

// publishStatusChanged 异步发布订单状态流转事件，失败仅记录日志不影响主流程
func (s *OrderService) publishStatusChanged(ord *model.Order, from, to model.OrderStatus) {
	if s.publisher == nil {
		return
	}
	ev := &mq.OrderStatusChangedEvent{
		OrderID:     ord.ID,
		OrderNumber: ord.OrderNumber,
		UserID:      ord.UserID,
		FromStatus:  from.String(),
		ToStatus:    to.String(),
		ChangedAt:   s.now(),
	}
	if err := mq.PublishOrderStatusChanged(s.publisher, ev); err != nil {
		logger.Warn("订单状态事件发布失败", "order_id", ord.ID, "to", to.String(), "err", err)
	}
}

type BulkFailure struct {
	OrderID int64  `json:"orderId"`
	Reason  string `json:"reason"`
}

type BulkStatusResponse struct {
	Code      int
	Message   string
	Succeeded []int64
	Failed    []BulkFailure
}

// BulkUpdateOrderStatus 批量状态流转：逐单执行，单个失败不影响其它订单
func (s *OrderService) BulkUpdateOrderStatus(ctx context.Context, orderIDs []int64, status, cancelReason string) (*BulkStatusResponse, error) {
	if len(orderIDs) == 0 {
		return &BulkStatusResponse{Code: e.INVALID_PARAMS, Message: "订单ID列表不能为空"}, nil
	}
	if !model.OrderStatus(status).Valid() {
		return &BulkStatusResponse{Code: e.INVALID_PARAMS, Message: "无效的订单状态"}, nil
	}

	succeeded := make([]int64, 0, len(orderIDs))
	failed := make([]BulkFailure, 0)
	for _, id := range orderIDs {
		resp, err := s.UpdateOrderStatus(ctx, id, status, cancelReason)
		if err != nil || resp.Code != e.SUCCESS {
			failed = append(failed, BulkFailure{OrderID: id, Reason: resp.Message})
			continue
		}
		succeeded = append(succeeded, id)
	}

	return &BulkStatusResponse{
		Code:      e.SUCCESS,
		Message:   fmt.Sprintf("Updated %d orders, failed %d", len(succeeded), len(failed)),
		Succeeded: succeeded,
		Failed:    failed,
	}, nil
}

type DeleteOrderResponse struct {
	Code    int
	Message string
}

// DeleteOrder 删除订单
func (s *OrderService) DeleteOrder(ctx context.Context, orderID int64) (*DeleteOrderResponse, error) {
	if _, err := s.store.GetByID(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &DeleteOrderResponse{Code: e.ERROR_ORDER_NOT_EXISTS, Message: e.GetMsg(e.ERROR_ORDER_NOT_EXISTS)}, nil
		}
		return &DeleteOrderResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	if err := s.store.Delete(ctx, orderID); err != nil {
		return &DeleteOrderResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	return &DeleteOrderResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS)}, nil
}
