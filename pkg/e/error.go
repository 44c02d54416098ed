package e

// 错误码定义
const (
	SUCCESS        = 0
	ERROR          = 1
	INVALID_PARAMS = 2

	ERROR_AUTH_CHECK_TOKEN_FAIL    = 10001
	ERROR_AUTH_CHECK_TOKEN_TIMEOUT = 10002
	ERROR_AUTH_TOKEN               = 10003
	ERROR_AUTH                     = 10004

	ERROR_USER_EXISTS     = 20001
	ERROR_USER_NOT_EXISTS = 20002
	ERROR_PASSWORD        = 20003
	ERROR_EMAIL_EXISTS    = 20004
	ERROR_OTP_INVALID     = 20005
	ERROR_OTP_EXPIRED     = 20006
	ERROR_OTP_NOT_FOUND   = 20007

	ERROR_PRODUCT_NOT_EXISTS  = 30001
	ERROR_CATEGORY_NOT_EXISTS = 30002

	ERROR_ORDER_NOT_EXISTS      = 40001
	ERROR_ORDER_STATUS_INVALID  = 40002
	ERROR_ORDER_NUMBER_CONFLICT = 40003

	ERROR_NOTIFICATION_NOT_EXISTS = 50001
)

var MsgFlags = map[int]string{
	SUCCESS:        "成功",
	ERROR:          "失败",
	INVALID_PARAMS: "请求参数错误",

	ERROR_AUTH_CHECK_TOKEN_FAIL:    "Token验证失败",
	ERROR_AUTH_CHECK_TOKEN_TIMEOUT: "Token已超时",
	ERROR_AUTH_TOKEN:               "Token生成失败",
	ERROR_AUTH:                     "认证失败",

	ERROR_USER_EXISTS:     "用户已存在",
	ERROR_USER_NOT_EXISTS: "用户不存在",
	ERROR_PASSWORD:        "密码错误",
	ERROR_EMAIL_EXISTS:    "邮箱已被注册",
	ERROR_OTP_INVALID:     "验证码错误",
	ERROR_OTP_EXPIRED:     "验证码已过期",
	ERROR_OTP_NOT_FOUND:   "未找到待验证的注册信息",

	ERROR_PRODUCT_NOT_EXISTS:  "商品不存在",
	ERROR_CATEGORY_NOT_EXISTS: "分类不存在",

	ERROR_ORDER_NOT_EXISTS:      "订单不存在",
	ERROR_ORDER_STATUS_INVALID:  "订单状态流转不合法",
	ERROR_ORDER_NUMBER_CONFLICT: "订单号冲突，请重试",

	ERROR_NOTIFICATION_NOT_EXISTS: "通知不存在",
}

func GetMsg(code int) string {
	msg, ok := MsgFlags[code]
	if ok {
		return msg
	}
	return MsgFlags[ERROR]
}
