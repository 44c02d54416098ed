package dao

import (
	"context"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/model"
	"gorm.io/gorm"
)

type CategoryDao struct {
	db *gorm.DB
}

func NewCategoryDao(db *gorm.DB) *CategoryDao {
	return &CategoryDao{
		db: db,
	}
}

// Create 创建分类
func (d *CategoryDao) Create(ctx context.Context, category *model.Category) error {
	return d.db.WithContext(ctx).Create(category).Error
}

// GetByID 根据ID获取分类
func (d *CategoryDao) GetByID(ctx context.Context, categoryID int64) (*model.Category, error) {
	var category model.Category
	err := d.db.WithContext(ctx).Where("id = ?", categoryID).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// ListActive 查询启用的分类，按展示顺序排序
func (d *CategoryDao) ListActive(ctx context.Context) ([]*model.Category, error) {
	var categories []*model.Category
	err := d.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("display_order ASC").
		Find(&categories).Error
	return categories, err
}

// ListAll 查询全部分类
func (d *CategoryDao) ListAll(ctx context.Context) ([]*model.Category, error) {
	var categories []*model.Category
	err := d.db.WithContext(ctx).Order("display_order ASC").Find(&categories).Error
	return categories, err
}

// Updates 按字段更新分类
func (d *CategoryDao) Updates(ctx context.Context, categoryID int64, updates map[string]interface{}) error {
	return d.db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", categoryID).Updates(updates).Error
}

// Delete 删除分类
func (d *CategoryDao) Delete(ctx context.Context, categoryID int64) error {
	return d.db.WithContext(ctx).Delete(&model.Category{}, categoryID).Error
}
