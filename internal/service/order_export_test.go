package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/model"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/e"
)

func TestFlattenOrder(t *testing.T) {
	delivered := time.Date(2024, 1, 2, 18, 30, 0, 0, time.UTC)
	ord := &model.Order{
		OrderNumber: "ORD202401020003",
		Items: []model.OrderItem{
			{Name: "Phở bò", Quantity: 2, UnitPrice: 45000},
			{Name: "Gỏi cuốn", Quantity: 1, UnitPrice: 30000},
		},
		ShippingAddress: model.ShippingAddress{
			FullName:    "Nguyễn Văn A",
			PhoneNumber: "0901234567",
			Address:     "12 Lê Lợi",
			Ward:        "Bến Nghé",
			District:    "Quận 1",
			City:        "TP.HCM",
		},
		TotalAmount:   120000,
		ShippingFee:   15000,
		FinalAmount:   135000,
		PaymentMethod: model.PaymentMethodCOD,
		PaymentStatus: model.PaymentStatusPaid,
		OrderStatus:   model.OrderStatusDelivered,
		Note:          "ít hành",
		CreatedAt:     time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
		DeliveredAt:   &delivered,
	}

	row := flattenOrder(ord)
	assert.Equal(t, "ORD202401020003", row.OrderNumber)
	assert.Equal(t, "Nguyễn Văn A", row.CustomerName)
	assert.Equal(t, "0901234567", row.CustomerPhone)
	assert.Equal(t, "12 Lê Lợi, Bến Nghé, Quận 1, TP.HCM", row.Address)
	assert.Equal(t, "Phở bò x2, Gỏi cuốn x1", row.Items)
	assert.Equal(t, float64(135000), row.FinalAmount)
	assert.Equal(t, "2024-01-02T10:00:00Z", row.CreatedAt)
	assert.Equal(t, "2024-01-02T18:30:00Z", row.DeliveredAt)
}

func TestFlattenOrderNotDelivered(t *testing.T) {
	ord := &model.Order{
		OrderNumber: "ORD202401020004",
		OrderStatus: model.OrderStatusPending,
		CreatedAt:   time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
	}
	row := flattenOrder(ord)
	// 未送达导出空串而非零值时间
	assert.Equal(t, "", row.DeliveredAt)
}

func TestExportOrders(t *testing.T) {
	store := newFakeOrderStore()
	svc, _ := newTestOrderService(store)
	day := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day }
	store.clock = svc.now

	// 超过一页的量，导出必须不分页
	seedOrders(t, svc, 25)

	resp, err := svc.ExportOrders(context.Background(), &ListOrdersRequest{})
	require.NoError(t, err)
	require.Equal(t, e.SUCCESS, resp.Code)
	assert.Equal(t, "Export successful", resp.Message)
	assert.Equal(t, int64(25), resp.Total)
	assert.Len(t, resp.Rows, 25)
}

func TestExportOrdersFiltered(t *testing.T) {
	store := newFakeOrderStore()
	svc, _ := newTestOrderService(store)
	seedOrders(t, svc, 3)
	_, err := svc.UpdateOrderStatus(context.Background(), 1, "cancelled", "")
	require.NoError(t, err)

	resp, err := svc.ExportOrders(context.Background(), &ListOrdersRequest{Status: "cancelled"})
	require.NoError(t, err)
	require.Equal(t, e.SUCCESS, resp.Code)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "cancelled", resp.Rows[0].OrderStatus)

	resp, err = svc.ExportOrders(context.Background(), &ListOrdersRequest{Status: "shipped"})
	require.NoError(t, err)
	assert.Equal(t, e.INVALID_PARAMS, resp.Code)
}
