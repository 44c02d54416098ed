package service

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/dao"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/model"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/e"
)

// fakeOrderStore 内存订单存储，行为对齐 dao.OrderDao
type fakeOrderStore struct {
	mu     sync.Mutex
	orders map[int64]*model.Order
	nextID int64
	clock  func() time.Time

	// 前 failCreates 次 Create 强制返回撞号错误
	failCreates int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{orders: make(map[int64]*model.Order), clock: time.Now}
}

func (f *fakeOrderStore) Create(ctx context.Context, ord *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreates > 0 {
		f.failCreates--
		return dao.ErrOrderNumberTaken
	}
	for _, existing := range f.orders {
		if existing.OrderNumber == ord.OrderNumber {
			return dao.ErrOrderNumberTaken
		}
	}
	f.nextID++
	ord.ID = f.nextID
	if ord.CreatedAt.IsZero() {
		ord.CreatedAt = f.clock()
	}
	cp := *ord
	f.orders[ord.ID] = &cp
	return nil
}

func (f *fakeOrderStore) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ord, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ord
	return &cp, nil
}

func (f *fakeOrderStore) Save(ctx context.Context, ord *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[ord.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *ord
	f.orders[ord.ID] = &cp
	return nil
}

func (f *fakeOrderStore) Updates(ctx context.Context, id int64, updates map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ord, ok := f.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for col, v := range updates {
		switch col {
		case "note":
			ord.Note = v.(string)
		case "payment_method":
			ord.PaymentMethod = model.PaymentMethod(v.(string))
		case "payment_status":
			ord.PaymentStatus = model.PaymentStatus(v.(string))
		case "shipping_full_name":
			ord.ShippingAddress.FullName = v.(string)
		case "shipping_phone":
			ord.ShippingAddress.PhoneNumber = v.(string)
		case "shipping_address":
			ord.ShippingAddress.Address = v.(string)
		case "shipping_ward":
			ord.ShippingAddress.Ward = v.(string)
		case "shipping_district":
			ord.ShippingAddress.District = v.(string)
		case "shipping_city":
			ord.ShippingAddress.City = v.(string)
		case "shipping_note":
			ord.ShippingAddress.Note = v.(string)
		default:
			return fmt.Errorf("unexpected update column %q", col)
		}
	}
	return nil
}

func (f *fakeOrderStore) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.orders, id)
	return nil
}

func (f *fakeOrderStore) matches(ord *model.Order, filter model.OrderFilter) bool {
	if filter.Status != "" && ord.OrderStatus != filter.Status {
		return false
	}
	if filter.Search != "" {
		s := filter.Search
		if !strings.Contains(ord.OrderNumber, s) &&
			!strings.Contains(ord.ShippingAddress.FullName, s) &&
			!strings.Contains(ord.ShippingAddress.PhoneNumber, s) {
			return false
		}
	}
	if filter.StartDate != nil && ord.CreatedAt.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && ord.CreatedAt.After(*filter.EndDate) {
		return false
	}
	return true
}

func (f *fakeOrderStore) List(ctx context.Context, filter model.OrderFilter, offset, limit int) ([]*model.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]*model.Order, 0, len(f.orders))
	for _, ord := range f.orders {
		if f.matches(ord, filter) {
			cp := *ord
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if limit <= 0 {
		return all, total, nil
	}
	if offset >= len(all) {
		return []*model.Order{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeOrderStore) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, ord := range f.orders {
		if !ord.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeOrderStore) CountByStatus(ctx context.Context, status model.OrderStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, ord := range f.orders {
		if status == "" || ord.OrderStatus == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeOrderStore) FindDeliveredSince(ctx context.Context, since time.Time) ([]*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Order, 0)
	for _, ord := range f.orders {
		if ord.OrderStatus != model.OrderStatusDelivered {
			continue
		}
		if !since.IsZero() && ord.CreatedAt.Before(since) {
			continue
		}
		cp := *ord
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// fakePublisher 记录发布的消息
type fakePublisher struct {
	mu        sync.Mutex
	published []publishedMsg
	err       error
}

type publishedMsg struct {
	exchange  string
	key       string
	body      []byte
	messageID string
}

func (p *fakePublisher) PublishAsync(exchange, key string, body []byte) error {
	return p.PublishAsyncWithID(exchange, key, body, "")
}

func (p *fakePublisher) PublishAsyncWithID(exchange, key string, body []byte, messageID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, publishedMsg{exchange: exchange, key: key, body: body, messageID: messageID})
	return nil
}

func newTestOrderService(store *fakeOrderStore) (*OrderService, *fakePublisher) {
	pub := &fakePublisher{}
	svc := NewOrderService(store, pub)
	return svc, pub
}

func validCreateRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		UserID: 7,
		Items: []model.OrderItem{
			{ProductID: 1, Name: "Phở bò", Quantity: 2, UnitPrice: 45000},
			{ProductID: 2, Name: "Trà đá", Quantity: 1, UnitPrice: 5000},
		},
		ShippingAddress: model.ShippingAddress{
			FullName:    "Nguyễn Văn A",
			PhoneNumber: "0901234567",
			Address:     "12 Lê Lợi",
			Ward:        "Bến Nghé",
			District:    "Quận 1",
			City:        "TP.HCM",
		},
		PaymentMethod: "COD",
		ShippingFee:   15000,
	}
}

func TestCreateOrderComputesAmounts(t *testing.T) {
	store := newFakeOrderStore()
	svc, _ := newTestOrderService(store)

	req := validCreateRequest()
	resp, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, e.SUCCESS, resp.Code)
	require.NotNil(t, resp.Order)

	// 未传 totalAmount 时按明细计算
	assert.Equal(t, float64(2*45000+5000), resp.Order.TotalAmount)
	assert.Equal(t, resp.Order.TotalAmount+req.ShippingFee, resp.Order.FinalAmount)
	assert.Equal(t, model.OrderStatusPending, resp.Order.OrderStatus)
	assert.Equal(t, model.PaymentStatusPending, resp.Order.PaymentStatus)
}

func TestCreateOrderFinalAmountInvariant(t *testing.T) {
	// 随机金额下 finalAmount == totalAmount + shippingFee 恒成立
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		store := newFakeOrderStore()
		svc, _ := newTestOrderService(store)

		req := validCreateRequest()
		req.TotalAmount = float64(rnd.Intn(1_000_000))
		req.ShippingFee = float64(rnd.Intn(50_000))

		resp, err := svc.CreateOrder(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, e.SUCCESS, resp.Code)
		assert.Equal(t, req.TotalAmount+req.ShippingFee, resp.Order.FinalAmount)
	}
}

func TestCreateOrderNumberSequence(t *testing.T) {
	store := newFakeOrderStore()
	svc, _ := newTestOrderService(store)
	svc.now = func() time.Time {
		return time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	}

	seen := map[string]bool{}
	for i := 1; i <= 5; i++ {
		resp, err := svc.CreateOrder(context.Background(), validCreateRequest())
		require.NoError(t, err)
		require.Equal(t, e.SUCCESS, resp.Code)

		want := fmt.Sprintf("ORD20240115%04d", i)
		assert.Equal(t, want, resp.Order.OrderNumber)
		assert.Regexp(t, `^ORD\d{12}$`, resp.Order.OrderNumber)
		assert.False(t, seen[resp.Order.OrderNumber], "订单号重复")
		seen[resp.Order.OrderNumber] = true
	}
}

func TestCreateOrderRetriesOnNumberConflict(t *testing.T) {
	store := newFakeOrderStore()
	store.failCreates = 2 // 前两次撞号，第三次成功
	svc, _ := newTestOrderService(store)

	resp, err := svc.CreateOrder(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, e.SUCCESS, resp.Code)
	assert.NotNil(t, resp.Order)
}

func TestCreateOrderConflictExhausted(t *testing.T) {
	store := newFakeOrderStore()
	store.failCreates = 3
	svc, _ := newTestOrderService(store)

	resp, err := svc.CreateOrder(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, e.ERROR_ORDER_NUMBER_CONFLICT, resp.Code)
	assert.Nil(t, resp.Order)
}

func TestCreateOrderValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateOrderRequest)
	}{
		{"明细为空", func(r *CreateOrderRequest) { r.Items = nil }},
		{"数量为零", func(r *CreateOrderRequest) { r.Items[0].Quantity = 0 }},
		{"单价为负", func(r *CreateOrderRequest) { r.Items[0].UnitPrice = -1 }},
		{"缺收货人", func(r *CreateOrderRequest) { r.ShippingAddress.FullName = "" }},
		{"缺电话", func(r *CreateOrderRequest) { r.ShippingAddress.PhoneNumber = "" }},
		{"缺地址", func(r *CreateOrderRequest) { r.ShippingAddress.Address = "" }},
		{"运费为负", func(r *CreateOrderRequest) { r.ShippingFee = -1 }},
		{"支付方式非法", func(r *CreateOrderRequest) { r.PaymentMethod = "bitcoin" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeOrderStore()
			svc, _ := newTestOrderService(store)
			req := validCreateRequest()
			tc.mutate(req)

			resp, err := svc.CreateOrder(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, e.INVALID_PARAMS, resp.Code)
			assert.Empty(t, store.orders)
		})
	}
}

func TestGetOrderNotFound(t *testing.T) {
	svc, _ := newTestOrderService(newFakeOrderStore())
	resp, err := svc.GetOrder(context.Background(), 999)
	require.NoError(t, err)
	assert.Equal(t, e.ERROR_ORDER_NOT_EXISTS, resp.Code)
}

func seedOrders(t *testing.T, svc *OrderService, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		resp, err := svc.CreateOrder(context.Background(), validCreateRequest())
		require.NoError(t, err)
		require.Equal(t, e.SUCCESS, resp.Code)
	}
}

func TestListOrdersPagingDefaults(t *testing.T) {
	store := newFakeOrderStore()
	svc, _ := newTestOrderService(store)
	day := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day }
	seedOrders(t, svc, 45)

	resp, err := svc.ListOrders(context.Background(), &ListOrdersRequest{})
	require.NoError(t, err)
	require.Equal(t, e.SUCCESS, resp.Code)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.Limit)
	assert.Equal(t, int64(45), resp.Total)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Len(t, resp.Orders, 20)

	// 最后一页只剩 5 条
	resp, err = svc.ListOrders(context.Background(), &ListOrdersRequest{Page: 3})
	require.NoError(t, err)
	assert.Len(t, resp.Orders, 5)
}

func TestListOrdersStatusFilter(t *testing.T) {
	store := newFakeOrderStore()
	svc, _ := newTestOrderService(store)
	seedOrders(t, svc, 3)

	up, err := svc.UpdateOrderStatus(context.Background(), 1, "confirmed", "")
	require.NoError(t, err)
	require.Equal(t, e.SUCCESS, up.Code)

	resp, err := svc.ListOrders(context.Background(), &ListOrdersRequest{Status: "confirmed"})
	require.NoError(t, err)
	require.Equal(t, e.SUCCESS, resp.Code)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, int64(1), resp.Orders[0].ID)

	// all 与空串都表示不过滤
	for _, st := range []string{"all", ""} {
		resp, err = svc.ListOrders(context.Background(), &ListOrdersRequest{Status: st})
		require.NoError(t, err)
		assert.Equal(t, int64(3), resp.Total)
	}

	resp, err = svc.ListOrders(context.Background(), &ListOrdersRequest{Status: "shipped"})
	require.NoError(t, err)
	assert.Equal(t, e.INVALID_PARAMS, resp.Code)
}

func TestListOrdersDateRangeIncludesEndDay(t *testing.T) {
	store := newFakeOrderStore()
	svc, _ := newTestOrderService(store)

	days := []time.Time{
		time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 11, 23, 59, 0, 0, time.UTC),
		time.Date(2024, 1, 12, 0, 1, 0, 0, time.UTC),
	}
	for _, d := range days {
		d := d
		svc.now = func() time.Time { return d }
		store.clock = svc.now
		seedOrders(t, svc, 1)
	}

	svc.now = func() time.Time { return time.Date(2024, 1, 13, 10, 0, 0, 0, time.UTC) }
	resp, err := svc.ListOrders(context.Background(), &ListOrdersRequest{
		StartDate: "2024-01-10",
		EndDate:   "2024-01-11",
	})
	require.NoError(t, err)
	require.Equal(t, e.SUCCESS, resp.Code)
	// 截止日期 2024-01-11 含当天 23:59
	assert.Equal(t, int64(2), resp.Total)

	resp, err = svc.ListOrders(context.Background(), &ListOrdersRequest{StartDate: "11-01-2024"})
	require.NoError(t, err)
	assert.Equal(t, e.INVALID_PARAMS, resp.Code)
}

func TestListOrdersSearch(t *testing.T) {
	store := newFakeOrderStore()
	svc, _ := newTestOrderService(store)
	seedOrders(t, svc, 2)

	req := validCreateRequest()
	req.ShippingAddress.FullName = "Trần Thị B"
	_, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	resp, err := svc.ListOrders(context.Background(), &ListOrdersRequest{Search: "Trần"})
	require.NoError(t, err)
	require.Equal(t, e.SUCCESS, resp.Code)
	assert.Equal(t, int64(1), resp.Total)
}

func TestUpdateOrderWhitelist(t *testing.T) {
	store := newFakeOrderStore()
	svc, _ := newTestOrderService(store)
	seedOrders(t, svc, 1)

	note := "giao sau 18h"
	method := "banking"
	resp, err := svc.UpdateOrder(context.Background(), 1, &UpdateOrderRequest{
		Note:          &note,
		PaymentMethod: &method,
	})
	require.NoError(t, err)
	require.Equal(t, e.SUCCESS, resp.Code)
	assert.Equal(t, note, resp.Order.Note)
	assert.Equal(t, model.PaymentMethod("banking"), resp.Order.PaymentMethod)
	// 状态不受非状态字段更新影响
	assert.Equal(t, model.OrderStatusPending, resp.Order.OrderStatus)
}

func TestUpdateOrderEmptyPatch(t *testing.T) {
	svc, _ := newTestOrderService(newFakeOrderStore())
	resp, err := svc.UpdateOrder(context.Background(), 1, &UpdateOrderRequest{})
	require.NoError(t, err)
	assert.Equal(t, e.INVALID_PARAMS, resp.Code)
}

func TestUpdateOrderInvalidPaymentStatus(t *testing.T) {
	store := newFakeOrderStore()
	svc, _ := newTestOrderService(store)
	seedOrders(t, svc, 1)

	bad := "refused"
	resp, err := svc.UpdateOrder(context.Background(), 1, &UpdateOrderRequest{PaymentStatus: &bad})
	require.NoError(t, err)
	assert.Equal(t, e.INVALID_PARAMS, resp.Code)
}

func TestUpdateOrderStatusHappyPath(t *testing.T) {
	store := newFakeOrderStore()
	svc, pub := newTestOrderService(store)
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	seedOrders(t, svc, 1)

	resp, err := svc.UpdateOrderStatus(context.Background(), 1, "confirmed", "")
	require.NoError(t, err)
	require.Equal(t, e.SUCCESS, resp.Code)
	assert.Equal(t, model.OrderStatusConfirmed, resp.Order.OrderStatus)
	require.NotNil(t, resp.Order.ConfirmedAt)
	assert.Equal(t, now, *resp.Order.ConfirmedAt)

	// 状态流转事件已发布，且携带幂等ID供消费端去重
	require.Len(t, pub.published, 1)
	assert.Equal(t, "order.status_changed", pub.published[0].key)
	assert.Contains(t, string(pub.published[0].body), `"toStatus":"confirmed"`)
	assert.Equal(t, fmt.Sprintf("order:1:confirmed:%d", now.UnixNano()), pub.published[0].messageID)
}

func TestUpdateOrderStatusFullLifecycle(t *testing.T) {
	store := newFakeOrderStore()
	svc, _ := newTestOrderService(store)
	seedOrders(t, svc, 1)

	for _, st := range []string{"confirmed", "preparing", "shipping", "delivered"} {
		resp, err := svc.UpdateOrderStatus(context.Background(), 1, st, "")
		require.NoError(t, err)
		require.Equal(t, e.SUCCESS, resp.Code, "流转到 %s", st)
	}

	ord, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, ord.OrderStatus)
	assert.Equal(t, model.PaymentStatusPaid, ord.PaymentStatus)
	assert.NotNil(t, ord.ConfirmedAt)
	assert.NotNil(t, ord.PreparingAt)
	assert.NotNil(t, ord.ShippingAt)
	assert.NotNil(t, ord.DeliveredAt)
}

func TestUpdateOrderStatusInvalidTransition(t *testing.T) {
	store := newFakeOrderStore()
	svc, pub := newTestOrderService(store)
	seedOrders(t, svc, 1)

	resp, err := svc.UpdateOrderStatus(context.Background(), 1, "delivered", "")
	require.NoError(t, err)
	assert.Equal(t, e.ERROR_ORDER_STATUS_INVALID, resp.Code)
	assert.Equal(t, "Cannot transition from pending to delivered", resp.Message)

	// 订单未被改动，事件未发布
	ord, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, ord.OrderStatus)
	assert.Empty(t, pub.published)
}

func TestUpdateOrderStatusCancelReason(t *testing.T) {
	store := newFakeOrderStore()
	svc, _ := newTestOrderService(store)
	seedOrders(t, svc, 2)

	resp, err := svc.UpdateOrderStatus(context.Background(), 1, "cancelled", "hết hàng")
	require.NoError(t, err)
	require.Equal(t, e.SUCCESS, resp.Code)
	assert.Equal(t, "hết hàng", resp.Order.CancelReason)

	resp, err = svc.UpdateOrderStatus(context.Background(), 2, "cancelled", "")
	require.NoError(t, err)
	require.Equal(t, e.SUCCESS, resp.Code)
	assert.Equal(t, model.DefaultCancelReason, resp.Order.CancelReason)
}

func TestBulkUpdateOrderStatus(t *testing.T) {
	store := newFakeOrderStore()
	svc, _ := newTestOrderService(store)
	seedOrders(t, svc, 3)

	// 2 号单先送达，批量 confirm 时必然失败
	for _, st := range []string{"confirmed", "preparing", "shipping", "delivered"} {
		_, err := svc.UpdateOrderStatus(context.Background(), 2, st, "")
		require.NoError(t, err)
	}

	ids := []int64{1, 2, 3, 404}
	resp, err := svc.BulkUpdateOrderStatus(context.Background(), ids, "confirmed", "")
	require.NoError(t, err)
	require.Equal(t, e.SUCCESS, resp.Code)

	assert.Equal(t, []int64{1, 3}, resp.Succeeded)
	require.Len(t, resp.Failed, 2)
	assert.Equal(t, len(ids), len(resp.Succeeded)+len(resp.Failed))
	assert.Equal(t, "Updated 2 orders, failed 2", resp.Message)

	reasons := map[int64]string{}
	for _, f := range resp.Failed {
		reasons[f.OrderID] = f.Reason
	}
	assert.Equal(t, "Cannot transition from delivered to confirmed", reasons[2])
	assert.NotEmpty(t, reasons[404])
}

func TestBulkUpdateOrderStatusValidation(t *testing.T) {
	svc, _ := newTestOrderService(newFakeOrderStore())

	resp, err := svc.BulkUpdateOrderStatus(context.Background(), nil, "confirmed", "")
	require.NoError(t, err)
	assert.Equal(t, e.INVALID_PARAMS, resp.Code)

	resp, err = svc.BulkUpdateOrderStatus(context.Background(), []int64{1}, "shipped", "")
	require.NoError(t, err)
	assert.Equal(t, e.INVALID_PARAMS, resp.Code)
}

func TestDeleteOrder(t *testing.T) {
	store := newFakeOrderStore()
	svc, _ := newTestOrderService(store)
	seedOrders(t, svc, 1)

	resp, err := svc.DeleteOrder(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, e.SUCCESS, resp.Code)

	get, err := svc.GetOrder(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, e.ERROR_ORDER_NOT_EXISTS, get.Code)

	resp, err = svc.DeleteOrder(context.Background(), 999)
	require.NoError(t, err)
	assert.Equal(t, e.ERROR_ORDER_NOT_EXISTS, resp.Code)
}
