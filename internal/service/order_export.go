package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/model"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/e"
)

// ExportRow 导出报表的扁平行
type ExportRow struct {
	OrderNumber   string  `json:"orderNumber"`
	CustomerName  string  `json:"customerName"`
	CustomerPhone string  `json:"customerPhone"`
	Address       string  `json:"address"`
	Items         string  `json:"items"`
	TotalAmount   float64 `json:"totalAmount"`
	ShippingFee   float64 `json:"shippingFee"`
	FinalAmount   float64 `json:"finalAmount"`
	PaymentMethod string  `json:"paymentMethod"`
	PaymentStatus string  `json:"paymentStatus"`
	OrderStatus   string  `json:"orderStatus"`
	Note          string  `json:"note"`
	CreatedAt     string  `json:"createdAt"`
	DeliveredAt   string  `json:"deliveredAt"` // 未送达为空串
}

type ExportResponse struct {
	Code    int
	Message string
	Rows    []ExportRow
	Total   int64
}

// ExportOrders 按列表同样的过滤条件导出全量扁平化报表
func (s *OrderService) ExportOrders(ctx context.Context, req *ListOrdersRequest) (*ExportResponse, error) {
	filter, errMsg := s.buildFilter(req)
	if errMsg != "" {
		return &ExportResponse{Code: e.INVALID_PARAMS, Message: errMsg}, nil
	}

	orders, total, err := s.store.List(ctx, filter, 0, 0)
	if err != nil {
		return &ExportResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	rows := make([]ExportRow, 0, len(orders))
	for _, ord := range orders {
		rows = append(rows, flattenOrder(ord))
	}

	return &ExportResponse{
		Code:    e.SUCCESS,
		Message: "Export successful",
		Rows:    rows,
		Total:   total,
	}, nil
}

// flattenOrder 将订单压成单行报表记录
func flattenOrder(ord *model.Order) ExportRow {
	items := make([]string, 0, len(ord.Items))
	for _, it := range ord.Items {
		items = append(items, fmt.Sprintf("%s x%d", it.Name, it.Quantity))
	}

	deliveredAt := ""
	if ord.DeliveredAt != nil {
		deliveredAt = ord.DeliveredAt.Format(time.RFC3339)
	}

	addr := ord.ShippingAddress
	return ExportRow{
		OrderNumber:   ord.OrderNumber,
		CustomerName:  addr.FullName,
		CustomerPhone: addr.PhoneNumber,
		Address:       strings.Join([]string{addr.Address, addr.Ward, addr.District, addr.City}, ", "),
		Items:         strings.Join(items, ", "),
		TotalAmount:   ord.TotalAmount,
		ShippingFee:   ord.ShippingFee,
		FinalAmount:   ord.FinalAmount,
		PaymentMethod: string(ord.PaymentMethod),
		PaymentStatus: string(ord.PaymentStatus),
		OrderStatus:   ord.OrderStatus.String(),
		Note:          ord.Note,
		CreatedAt:     ord.CreatedAt.Format(time.RFC3339),
		DeliveredAt:   deliveredAt,
	}
}
