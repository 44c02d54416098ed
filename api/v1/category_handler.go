package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/internal/service"
	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/e"
)

type CategoryHandler struct {
	categoryService *service.CategoryService
}

func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategory 创建分类
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req service.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.categoryService.CreateCategory(c.Request.Context(), &req)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"code":     resp.Code,
		"message":  resp.Message,
		"category": resp.Category,
	})
}

// ListCategories 分类列表
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	includeInactive := c.Query("all") == "true"

	resp, err := h.categoryService.ListCategories(c.Request.Context(), includeInactive)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, gin.H{"categories": resp.Categories})
}

// UpdateCategory 更新分类
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	categoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c)
		return
	}
	var req service.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	resp, err := h.categoryService.UpdateCategory(c.Request.Context(), categoryID, &req)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, gin.H{"category": resp.Category})
}

// DeleteCategory 删除分类
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	categoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c)
		return
	}

	resp, err := h.categoryService.DeleteCategory(c.Request.Context(), categoryID)
	if err != nil || resp.Code != e.SUCCESS {
		respond(c, resp.Code, resp.Message, nil)
		return
	}
	respond(c, resp.Code, resp.Message, nil)
}

// RegisterRoutes 注册分类相关路由
func (h *CategoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	categories := rg.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.POST("", h.CreateCategory)
		categories.PUT("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}
}
