package v1

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/service"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/e"
)

type CustomerHandler struct {
	customerService *service.CustomerService
}

func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// ListCustomers 顾客列表
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := h.customerService.ListCustomers(c.Request.Context(), page, limit, c.Query("search"), c.Query("status"))
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, gin.H{
		"customers":  resp.Customers,
		"total":      resp.Total,
		"page":       resp.Page,
		"limit":      resp.Limit,
		"totalPages": resp.TotalPages,
	})
}

// GetCustomer 顾客详情
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c)
		return
	}

	resp, err := h.customerService.GetCustomer(c.Request.Context(), userID)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, gin.H{"customer": resp.Customer})
}

type customerStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateCustomerStatus 启用/停用顾客账号
func (h *CustomerHandler) UpdateCustomerStatus(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c)
		return
	}
	var req customerStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.customerService.UpdateCustomerStatus(c.Request.Context(), userID, req.Status)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, gin.H{"customer": resp.Customer})
}

// UpdateCustomer 更新顾客资料
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c)
		return
	}
	var req service.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.customerService.UpdateCustomer(c.Request.Context(), userID, &req)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, gin.H{"customer": resp.Customer})
}

// DeleteCustomer 删除顾客账号
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c)
		return
	}

	resp, err := h.customerService.DeleteCustomer(c.Request.Context(), userID)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, nil)
}

// RegisterRoutes 注册顾客管理路由
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	customers := rg.Group("/customers")
	{
		customers.GET("", h.ListCustomers)
		customers.GET("/:id", h.GetCustomer)
		customers.PUT("/:id", h.UpdateCustomer)
		customers.PATCH("/:id/status", h.UpdateCustomerStatus)
		customers.DELETE("/:id", h.DeleteCustomer)
	}
}
