package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hugn2k4/CNPMM-Resturant-Admin-BE/pkg/e"
)

// httpStatus 业务码到HTTP状态码的映射
func httpStatus(code int) int {
	switch code {
	case e.SUCCESS:
		return http.StatusOK
	case e.INVALID_PARAMS, e.ERROR_ORDER_STATUS_INVALID, e.ERROR_OTP_INVALID, e.ERROR_OTP_EXPIRED, e.ERROR_OTP_NOT_FOUND:
		return http.StatusBadRequest
	case e.ERROR_AUTH, e.ERROR_AUTH_CHECK_TOKEN_FAIL, e.ERROR_AUTH_CHECK_TOKEN_TIMEOUT, e.ERROR_PASSWORD:
		return http.StatusUnauthorized
	case e.ERROR_ORDER_NOT_EXISTS, e.ERROR_USER_NOT_EXISTS, e.ERROR_PRODUCT_NOT_EXISTS,
		e.ERROR_CATEGORY_NOT_EXISTS, e.ERROR_NOTIFICATION_NOT_EXISTS:
		return http.StatusNotFound
	case e.ERROR_EMAIL_EXISTS, e.ERROR_USER_EXISTS, e.ERROR_ORDER_NUMBER_CONFLICT:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respond 按业务码输出统一响应体，extra 为附加数据字段
func respond(c *gin.Context, code int, message string, extra gin.H) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(httpStatus(code), body)
}

// badRequest 参数绑定失败的快捷输出
func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{
		"code":    e.INVALID_PARAMS,
		"message": e.GetMsg(e.INVALID_PARAMS),
	})
}
