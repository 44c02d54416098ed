package service

import (
	"context"
	"errors"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/dao"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/model"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/e"
	"gorm.io/gorm"
)

type ProductService struct {
	productDao  *dao.ProductDao
	categoryDao *dao.CategoryDao
}

func NewProductService(productDao *dao.ProductDao, categoryDao *dao.CategoryDao) *ProductService {
	return &ProductService{
		productDao:  productDao,
		categoryDao: categoryDao,
	}
}

type CreateProductRequest struct {
	Name            string   `json:"name" binding:"required"`
	Description     string   `json:"description"`
	Price           float64  `json:"price" binding:"required"`
	Images          []string `json:"images"`
	CategoryID      int64    `json:"categoryId" binding:"required"`
	Stock           int32    `json:"stock"`
	PreparationTime string   `json:"preparationTime"`
	Calories        int32    `json:"calories"`
	Discount        int32    `json:"discount"`
}

type ProductResponse struct {
	Code    int
	Message string
	Product *model.Product
}

// CreateProduct 创建商品，分类必须存在
func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductResponse, error) {
	if req.Price < 0 || req.Stock < 0 || req.Discount < 0 {
		return &ProductResponse{Code: e.INVALID_PARAMS, Message: e.GetMsg(e.INVALID_PARAMS)}, nil
	}

	if _, err := s.categoryDao.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ProductResponse{Code: e.ERROR_CATEGORY_NOT_EXISTS, Message: e.GetMsg(e.ERROR_CATEGORY_NOT_EXISTS)}, nil
		}
		return &ProductResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	p := &model.Product{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		Images:          model.StringList(req.Images),
		Status:          model.ProductStatusAvailable,
		CategoryID:      req.CategoryID,
		Stock:           req.Stock,
		PreparationTime: req.PreparationTime,
		Calories:        req.Calories,
		Discount:        req.Discount,
	}
	if err := s.productDao.Create(ctx, p); err != nil {
		return &ProductResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	return &ProductResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS), Product: p}, nil
}

// GetProduct 获取商品详情
func (s *ProductService) GetProduct(ctx context.Context, productID int64) (*ProductResponse, error) {
	p, err := s.productDao.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ProductResponse{Code: e.ERROR_PRODUCT_NOT_EXISTS, Message: e.GetMsg(e.ERROR_PRODUCT_NOT_EXISTS)}, nil
		}
		return &ProductResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	return &ProductResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS), Product: p}, nil
}

type ProductListResponse struct {
	Code       int
	Message    string
	Products   []*model.Product
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ListProducts 分页查询商品
func (s *ProductService) ListProducts(ctx context.Context, page, limit int, search string, categoryID int64, status string) (*ProductListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	products, total, err := s.productDao.List(ctx, search, categoryID, status, (page-1)*limit, limit)
	if err != nil {
		return &ProductListResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	return &ProductListResponse{
		Code:       e.SUCCESS,
		Message:    e.GetMsg(e.SUCCESS),
		Products:   products,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

type UpdateProductRequest struct {
	Name            *string   `json:"name"`
	Description     *string   `json:"description"`
	Price           *float64  `json:"price"`
	Images          *[]string `json:"images"`
	Status          *string   `json:"status"`
	CategoryID      *int64    `json:"categoryId"`
	Stock           *int32    `json:"stock"`
	PreparationTime *string   `json:"preparationTime"`
	Calories        *int32    `json:"calories"`
	Discount        *int32    `json:"discount"`
}

// UpdateProduct 按白名单更新商品字段
func (s *ProductService) UpdateProduct(ctx context.Context, productID int64, req *UpdateProductRequest) (*ProductResponse, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return &ProductResponse{Code: e.INVALID_PARAMS, Message: e.GetMsg(e.INVALID_PARAMS)}, nil
		}
		updates["price"] = *req.Price
	}
	if req.Images != nil {
		updates["images"] = model.StringList(*req.Images)
	}
	if req.Status != nil {
		switch *req.Status {
		case model.ProductStatusAvailable, model.ProductStatusUnavailable, model.ProductStatusOutOfStock:
			updates["status"] = *req.Status
		default:
			return &ProductResponse{Code: e.INVALID_PARAMS, Message: "无效的商品状态"}, nil
		}
	}
	if req.CategoryID != nil {
		if _, err := s.categoryDao.GetByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &ProductResponse{Code: e.ERROR_CATEGORY_NOT_EXISTS, Message: e.GetMsg(e.ERROR_CATEGORY_NOT_EXISTS)}, nil
			}
			return &ProductResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.PreparationTime != nil {
		updates["preparation_time"] = *req.PreparationTime
	}
	if req.Calories != nil {
		updates["calories"] = *req.Calories
	}
	if req.Discount != nil {
		updates["discount"] = *req.Discount
	}
	if len(updates) == 0 {
		return &ProductResponse{Code: e.INVALID_PARAMS, Message: "没有可更新的字段"}, nil
	}

	if _, err := s.productDao.GetByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ProductResponse{Code: e.ERROR_PRODUCT_NOT_EXISTS, Message: e.GetMsg(e.ERROR_PRODUCT_NOT_EXISTS)}, nil
		}
		return &ProductResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	if err := s.productDao.Updates(ctx, productID, updates); err != nil {
		return &ProductResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	p, err := s.productDao.GetByID(ctx, productID)
	if err != nil {
		return &ProductResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	return &ProductResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS), Product: p}, nil
}

type DeleteProductResponse struct {
	Code    int
	Message string
}

// DeleteProduct 软删除商品
func (s *ProductService) DeleteProduct(ctx context.Context, productID int64) (*DeleteProductResponse, error) {
	if _, err := s.productDao.GetByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &DeleteProductResponse{Code: e.ERROR_PRODUCT_NOT_EXISTS, Message: e.GetMsg(e.ERROR_PRODUCT_NOT_EXISTS)}, nil
		}
		return &DeleteProductResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	if err := s.productDao.SoftDelete(ctx, productID); err != nil {
		return &DeleteProductResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	return &DeleteProductResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS)}, nil
}
