package dao

import (
	"context"
	"errors"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/model"
	"gorm.io/gorm"
)

// ErrEmailTaken 邮箱唯一索引冲突
var ErrEmailTaken = errors.New("邮箱已被注册")

type UserDao struct {
	db *gorm.DB
}

func NewUserDao(db *gorm.DB) *UserDao {
	return &UserDao{
		db: db,
	}
}

// Create 创建用户，邮箱撞唯一索引时返回 ErrEmailTaken
func (d *UserDao) Create(ctx context.Context, user *model.User) error {
	err := d.db.WithContext(ctx).Create(user).Error
	if err != nil && isDuplicateKey(err) {
		return ErrEmailTaken
	}
	return err
}

// GetByID 根据ID获取用户
func (d *UserDao) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	err := d.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail 根据邮箱获取用户
func (d *UserDao) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := d.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Updates 按字段更新用户
func (d *UserDao) Updates(ctx context.Context, userID int64, updates map[string]interface{}) error {
	return d.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error
}

// Delete 删除用户
func (d *UserDao) Delete(ctx context.Context, userID int64) error {
	return d.db.WithContext(ctx).Delete(&model.User{}, userID).Error
}

// ListIDsByRole 查询某角色全部用户ID，可按状态过滤
func (d *UserDao) ListIDsByRole(ctx context.Context, role, status string) ([]int64, error) {
	var ids []int64
	q := d.db.WithContext(ctx).Model(&model.User{}).Where("role = ?", role)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Pluck("id", &ids).Error
	return ids, err
}

// ListByRole 按角色分页查询用户，支持姓名/邮箱/电话模糊搜索与状态过滤
func (d *UserDao) ListByRole(ctx context.Context, role, search, status string, offset, limit int) ([]*model.User, int64, error) {
	var users []*model.User
	var total int64

	q := d.db.WithContext(ctx).Model(&model.User{}).Where("role = ?", role)
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("full_name LIKE ? OR email LIKE ? OR phone_number LIKE ?", like, like, like)
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
		Find(&users).Error

	return users, total, err
}
