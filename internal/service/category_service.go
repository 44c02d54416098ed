package service

import (
	"context"
	"errors"
	"strings"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/dao"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/model"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/e"
	"gorm.io/gorm"
)

type CategoryService struct {
	categoryDao *dao.CategoryDao
}

func NewCategoryService(categoryDao *dao.CategoryDao) *CategoryService {
	return &CategoryService{categoryDao: categoryDao}
}

type CategoryResponse struct {
	Code     int
	Message  string
	Category *model.Category
}

type CategoryListResponse struct {
	Code       int
	Message    string
	Categories []*model.Category
}

// slugify 生成 URL 友好的分类标识
func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Join(strings.Fields(s), "-")
	return s
}

type CreateCategoryRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	DisplayOrder int    `json:"displayOrder"`
}

// CreateCategory 创建分类
func (s *CategoryService) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*CategoryResponse, error) {
	c := &model.Category{
		Name:         req.Name,
		Slug:         slugify(req.Name),
		Description:  req.Description,
		Image:        req.Image,
		IsActive:     true,
		DisplayOrder: req.DisplayOrder,
	}
	if err := s.categoryDao.Create(ctx, c); err != nil {
		return &CategoryResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	return &CategoryResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS), Category: c}, nil
}

// ListCategories 查询分类，includeInactive 为真时含停用分类
func (s *CategoryService) ListCategories(ctx context.Context, includeInactive bool) (*CategoryListResponse, error) {
	var categories []*model.Category
	var err error
	if includeInactive {
		categories, err = s.categoryDao.ListAll(ctx)
	} else {
		categories, err = s.categoryDao.ListActive(ctx)
	}
	if err != nil {
		return &CategoryListResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	return &CategoryListResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS), Categories: categories}, nil
}

type UpdateCategoryRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Image        *string `json:"image"`
	IsActive     *bool   `json:"isActive"`
	DisplayOrder *int    `json:"displayOrder"`
}

// UpdateCategory 更新分类，改名时同步更新 slug
func (s *CategoryService) UpdateCategory(ctx context.Context, categoryID int64, req *UpdateCategoryRequest) (*CategoryResponse, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
		updates["slug"] = slugify(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.DisplayOrder != nil {
		updates["display_order"] = *req.DisplayOrder
	}
	if len(updates) == 0 {
		return &CategoryResponse{Code: e.INVALID_PARAMS, Message: "没有可更新的字段"}, nil
	}

	if _, err := s.categoryDao.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CategoryResponse{Code: e.ERROR_CATEGORY_NOT_EXISTS, Message: e.GetMsg(e.ERROR_CATEGORY_NOT_EXISTS)}, nil
		}
		return &CategoryResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	if err := s.categoryDao.Updates(ctx, categoryID, updates); err != nil {
		return &CategoryResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	c, err := s.categoryDao.GetByID(ctx, categoryID)
	if err != nil {
		return &CategoryResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	return &CategoryResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS), Category: c}, nil
}

type DeleteCategoryResponse struct {
	Code    int
	Message string
}

// DeleteCategory 删除分类
func (s *CategoryService) DeleteCategory(ctx context.Context, categoryID int64) (*DeleteCategoryResponse, error) {
	if _, err := s.categoryDao.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &DeleteCategoryResponse{Code: e.ERROR_CATEGORY_NOT_EXISTS, Message: e.GetMsg(e.ERROR_CATEGORY_NOT_EXISTS)}, nil
		}
		return &DeleteCategoryResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	if err := s.categoryDao.Delete(ctx, categoryID); err != nil {
		return &DeleteCategoryResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	return &DeleteCategoryResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS)}, nil
}
