package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/service"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/e"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrder 创建订单
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"code":    resp.Code,
		"message": resp.Message,
		"order":   resp.Order,
	})
}

// GetOrder 获取订单详情
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c)
		return
	}

	resp, err := h.orderService.GetOrder(c.Request.Context(), orderID)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, gin.H{"order": resp.Order})
}

// ListOrders 分页查询订单
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	req := &service.ListOrdersRequest{
		Page:      page,
		Limit:     limit,
		Status:    c.Query("status"),
		Search:    c.Query("search"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}
	resp, err := h.orderService.ListOrders(c.Request.Context(), req)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, gin.H{
		"orders":     resp.Orders,
		"total":      resp.Total,
		"page":       resp.Page,
		"limit":      resp.Limit,
		"totalPages": resp.TotalPages,
	})
}

// GetStatistics 订单状态分布与营收汇总
func (h *OrderHandler) GetStatistics(c *gin.Context) {
	resp, err := h.orderService.GetStatistics(c.Request.Context())
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, gin.H{"statistics": resp.Statistics})
}

// GetRevenue 按周期查询营收分桶
func (h *OrderHandler) GetRevenue(c *gin.Context) {
	resp, err := h.orderService.GetRevenueByPeriod(c.Request.Context(), c.Query("period"))
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, gin.H{
		"data":         resp.Buckets,
		"totalRevenue": resp.TotalRevenue,
		"totalOrders":  resp.TotalOrders,
	})
}

// ExportOrders 导出订单报表
func (h *OrderHandler) ExportOrders(c *gin.Context) {
	req := &service.ListOrdersRequest{
		Status:    c.Query("status"),
		Search:    c.Query("search"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}
	resp, err := h.orderService.ExportOrders(c.Request.Context(), req)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, gin.H{
		"data":  resp.Rows,
		"total": resp.Total,
	})
}

// UpdateOrder 更新订单可变字段
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c)
		return
	}
	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.orderService.UpdateOrder(c.Request.Context(), orderID, &req)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, gin.H{"order": resp.Order})
}

type updateStatusRequest struct {
	OrderStatus  string `json:"orderStatus" binding:"required"`
	CancelReason string `json:"cancelReason"`
}

// UpdateOrderStatus 单个订单状态流转
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c)
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.orderService.UpdateOrderStatus(c.Request.Context(), orderID, req.OrderStatus, req.CancelReason)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, gin.H{"order": resp.Order})
}

type bulkStatusRequest struct {
	OrderIDs     []int64 `json:"orderIds" binding:"required"`
	OrderStatus  string  `json:"orderStatus" binding:"required"`
	CancelReason string  `json:"cancelReason"`
}

// BulkUpdateOrderStatus 批量状态流转
func (h *OrderHandler) BulkUpdateOrderStatus(c *gin.Context) {
	var req bulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.orderService.BulkUpdateOrderStatus(c.Request.Context(), req.OrderIDs, req.OrderStatus, req.CancelReason)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, gin.H{
		"succeeded": resp.Succeeded,
		"failed":    resp.Failed,
	})
}

// DeleteOrder 删除订单
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c)
		return
	}

	resp, err := h.orderService.DeleteOrder(c.Request.Context(), orderID)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, nil)
}

// RegisterRoutes 注册订单相关路由
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/statistics", h.GetStatistics)
		orders.GET("/statistics/revenue", h.GetRevenue)
		orders.GET("/export", h.ExportOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id", h.UpdateOrder)
		orders.PATCH("/:id/status", h.UpdateOrderStatus)
		orders.PATCH("/bulk/status", h.BulkUpdateOrderStatus)
		orders.DELETE("/:id", h.DeleteOrder)
	}
}
