package dao

import (
	"context"
	"errors"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/model"
	"gorm.io/gorm"
)

type OrderDao struct {
	db *gorm.DB
}

func NewOrderDao(db *gorm.DB) *OrderDao {
	return &OrderDao{
		db: db,
	}
}

// ErrOrderNumberTaken 订单号唯一索引冲突
var ErrOrderNumberTaken = errors.New("订单号已存在")

// isDuplicateKey MySQL 1062 唯一键冲突
func isDuplicateKey(err error) bool {
	var me *mysqldrv.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// Create 创建订单，订单号撞唯一索引时返回 ErrOrderNumberTaken
func (d *OrderDao) Create(ctx context.Context, order *model.Order) error {
	err := d.db.WithContext(ctx).Create(order).Error
	if err != nil && isDuplicateKey(err) {
		return ErrOrderNumberTaken
	}
	return err
}

// GetByID 根据ID获取订单
func (d *OrderDao) GetByID(ctx context.Context, orderID int64) (*model.Order, error) {
	var order model.Order
	err := d.db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Save 整体写回订单（状态流转在内存应用后一次落库）
func (d *OrderDao) Save(ctx context.Context, order *model.Order) error {
	return d.db.WithContext(ctx).Save(order).Error
}

// Updates 按字段更新订单
func (d *OrderDao) Updates(ctx context.Context, orderID int64, updates map[string]interface{}) error {
	return d.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", orderID).Updates(updates).Error
}

// Delete 物理删除订单
func (d *OrderDao) Delete(ctx context.Context, orderID int64) error {
	return d.db.WithContext(ctx).Delete(&model.Order{}, orderID).Error
}

// List 按过滤条件分页查询订单，返回当页数据与总数
func (d *OrderDao) List(ctx context.Context, f model.OrderFilter, offset, limit int) ([]*model.Order, int64, error) {
	var orders []*model.Order
	var total int64

	q := d.db.WithContext(ctx).Model(&model.Order{})
	if f.Status != "" {
		q = q.Where("order_status = ?", f.Status)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("order_number LIKE ? OR shipping_full_name LIKE ? OR shipping_phone LIKE ?", like, like, like)
	}
	if f.StartDate != nil {
		q = q.Where("created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("created_at <= ?", *f.EndDate)
	}

	// 获取总数
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// limit<=0 表示不分页，导出场景取全量
	q = q.Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	err := q.Find(&orders).Error

	return orders, total, err
}

// CountCreatedSince 统计某时间点后创建的订单数（当日序号分配用）
func (d *OrderDao) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&model.Order{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count, err
}

// CountByStatus 按状态统计订单数，status为空统计全部
func (d *OrderDao) CountByStatus(ctx context.Context, status model.OrderStatus) (int64, error) {
	var count int64
	q := d.db.WithContext(ctx).Model(&model.Order{})
	if status != "" {
		q = q.Where("order_status = ?", status)
	}
	err := q.Count(&count).Error
	return count, err
}

// FindDeliveredSince 查询某时间点后创建的已送达订单，按创建时间升序
// since 为零值时查询全部已送达订单
func (d *OrderDao) FindDeliveredSince(ctx context.Context, since time.Time) ([]*model.Order, error) {
	var orders []*model.Order
	q := d.db.WithContext(ctx).
		Where("order_status = ?", model.OrderStatusDelivered)
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}
	err := q.Order("created_at ASC").Find(&orders).Error
	return orders, err
}
