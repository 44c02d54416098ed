package dao

import (
	"context"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/model"
	"gorm.io/gorm"
)

type ProductDao struct {
	db *gorm.DB
}

func NewProductDao(db *gorm.DB) *ProductDao {
	return &ProductDao{
		db: db,
	}
}

// Create 创建商品
func (d *ProductDao) Create(ctx context.Context, product *model.Product) error {
	return d.db.WithContext(ctx).Create(product).Error
}

// GetByID 根据ID获取未删除的商品
func (d *ProductDao) GetByID(ctx context.Context, productID int64) (*model.Product, error) {
	var product model.Product
	err := d.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", productID, false).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Updates 按字段更新商品
func (d *ProductDao) Updates(ctx context.Context, productID int64, updates map[string]interface{}) error {
	return d.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", productID).Updates(updates).Error
}

// SoftDelete 软删除商品
func (d *ProductDao) SoftDelete(ctx context.Context, productID int64) error {
	return d.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Update("is_deleted", true).Error
}

// List 分页查询商品，支持名称模糊搜索、分类、状态过滤
func (d *ProductDao) List(ctx context.Context, search string, categoryID int64, status string, offset, limit int) ([]*model.Product, int64, error) {
	var products []*model.Product
	var total int64

	q := d.db.WithContext(ctx).Model(&model.Product{}).Where("is_deleted = ?", false)
	if search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}
	if categoryID > 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&products).Error

	return products, total, err
}

// IncrSoldCount 累加商品销量
func (d *ProductDao) IncrSoldCount(ctx context.Context, productID int64, n int) error {
	return d.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Update("sold_count", gorm.Expr("sold_count + ?", n)).Error
}
