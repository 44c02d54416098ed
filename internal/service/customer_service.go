package service

import (
	"context"
	"errors"
	"strings"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/dao"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/model"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/e"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/utils"
	"gorm.io/gorm"
)

type CustomerService struct {
	userDao *dao.UserDao
}

func NewCustomerService(userDao *dao.UserDao) *CustomerService {
	return &CustomerService{userDao: userDao}
}

type CustomerListResponse struct {
	Code       int
	Message    string
	Customers  []*UserView
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ListCustomers 分页查询顾客（普通用户），支持搜索与状态过滤
func (s *CustomerService) ListCustomers(ctx context.Context, page, limit int, search, status string) (*CustomerListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	users, total, err := s.userDao.ListByRole(ctx, model.RoleUser, search, status, (page-1)*limit, limit)
	if err != nil {
		return &CustomerListResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	views := make([]*UserView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	return &CustomerListResponse{
		Code:       e.SUCCESS,
		Message:    e.GetMsg(e.SUCCESS),
		Customers:  views,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

type CustomerResponse struct {
	Code     int
	Message  string
	Customer *UserView
}

// GetCustomer 获取单个顾客详情
func (s *CustomerService) GetCustomer(ctx context.Context, userID int64) (*CustomerResponse, error) {
	u, err := s.userDao.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CustomerResponse{Code: e.ERROR_USER_NOT_EXISTS, Message: e.GetMsg(e.ERROR_USER_NOT_EXISTS)}, nil
		}
		return &CustomerResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	return &CustomerResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS), Customer: toUserView(u)}, nil
}

type UpdateCustomerRequest struct {
	FullName    *string `json:"fullName"`
	PhoneNumber *string `json:"phoneNumber"`
	Email       *string `json:"email"`
	Password    *string `json:"password"`
}

// UpdateCustomer 更新顾客资料，改邮箱时校验唯一性，改密码时重新散列
func (s *CustomerService) UpdateCustomer(ctx context.Context, userID int64, req *UpdateCustomerRequest) (*CustomerResponse, error) {
	u, err := s.userDao.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CustomerResponse{Code: e.ERROR_USER_NOT_EXISTS, Message: e.GetMsg(e.ERROR_USER_NOT_EXISTS)}, nil
		}
		return &CustomerResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = *req.PhoneNumber
	}
	if req.Email != nil {
		email := strings.ToLower(*req.Email)
		if email != u.Email {
			existing, gErr := s.userDao.GetByEmail(ctx, email)
			if gErr == nil && existing.ID != userID {
				return &CustomerResponse{Code: e.ERROR_EMAIL_EXISTS, Message: e.GetMsg(e.ERROR_EMAIL_EXISTS)}, nil
			}
			if gErr != nil && !errors.Is(gErr, gorm.ErrRecordNotFound) {
				return &CustomerResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, gErr
			}
			updates["email"] = email
		}
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			return &CustomerResponse{Code: e.INVALID_PARAMS, Message: "密码长度至少6位"}, nil
		}
		hash, hErr := utils.HashPassword(*req.Password)
		if hErr != nil {
			return &CustomerResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, hErr
		}
		updates["password_hash"] = hash
	}
	if len(updates) == 0 {
		return &CustomerResponse{Code: e.INVALID_PARAMS, Message: "没有可更新的字段"}, nil
	}

	if err := s.userDao.Updates(ctx, userID, updates); err != nil {
		return &CustomerResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	u, err = s.userDao.GetByID(ctx, userID)
	if err != nil {
		return &CustomerResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	return &CustomerResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS), Customer: toUserView(u)}, nil
}

type DeleteCustomerResponse struct {
	Code    int
	Message string
}

// DeleteCustomer 删除顾客账号
func (s *CustomerService) DeleteCustomer(ctx context.Context, userID int64) (*DeleteCustomerResponse, error) {
	if _, err := s.userDao.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &DeleteCustomerResponse{Code: e.ERROR_USER_NOT_EXISTS, Message: e.GetMsg(e.ERROR_USER_NOT_EXISTS)}, nil
		}
		return &DeleteCustomerResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	if err := s.userDao.Delete(ctx, userID); err != nil {
		return &DeleteCustomerResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	return &DeleteCustomerResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS)}, nil
}

// UpdateCustomerStatus 启用/停用顾客账号
func (s *CustomerService) UpdateCustomerStatus(ctx context.Context, userID int64, status string) (*CustomerResponse, error) {
	if status != model.UserStatusActive && status != model.UserStatusInactive {
		return &CustomerResponse{Code: e.INVALID_PARAMS, Message: "无效的账号状态"}, nil
	}

	u, err := s.userDao.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CustomerResponse{Code: e.ERROR_USER_NOT_EXISTS, Message: e.GetMsg(e.ERROR_USER_NOT_EXISTS)}, nil
		}
		return &CustomerResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}

	if err := s.userDao.Updates(ctx, userID, map[string]interface{}{"status": status}); err != nil {
		return &CustomerResponse{Code: e.ERROR, Message: e.GetMsg(e.ERROR)}, err
	}
	u.Status = status
	return &CustomerResponse{Code: e.SUCCESS, Message: e.GetMsg(e.SUCCESS), Customer: toUserView(u)}, nil
}
