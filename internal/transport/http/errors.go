package httptransport

import (
	"errors"

	"github.com/gin-gonic/gin"

	"mailhub/backend/internal/auth"
	"mailhub/backend/internal/domain"
	"mailhub/backend/internal/service"
	"mailhub/backend/internal/storage"
)

// 错误消息映射表（业务错误 -> 中文消息）
var errorMessages = map[error]string{
	// 存储层错误
	storage.ErrClientNotFound:         "客户不存在",
	storage.ErrMailboxNotFound:        "信箱不存在",
	storage.ErrCorrespondenceNotFound: "信件不存在",
	storage.ErrContractNotFound:       "合同不存在",
	storage.ErrDocumentExists:         "该税号已被其他客户登记",
	storage.ErrMailboxExists:          "该客户已拥有信箱",
	storage.ErrNumberExists:           "信箱编号已被占用",

	// 信件状态流转错误
	service.ErrAlreadyPickedUp: "信件已被取走",
	service.ErrNotPickedUp:     "信件尚未登记取件",
	service.ErrAlreadyReturned: "信件已退回，不能再变更状态",

	// 认证错误
	auth.ErrInvalidCredentials: "用户名或密码错误",
	auth.ErrUserInactive:       "账号已被禁用",
	auth.ErrUsernameExists:     "用户名已存在",
	auth.ErrTokenRevoked:       "登录已失效，请重新登录",
}

// GetErrorMessage 获取错误的中文消息
func GetErrorMessage(err error) string {
	if msg, ok := errorMessages[err]; ok {
		return msg
	}
	return err.Error()
}

// respondError 按错误类别选择 HTTP 响应
//
// 校验错误 422，未找到 404，冲突 409，状态流转错误 409，其余 500。
func respondError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		UnprocessableEntity(c, validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, storage.ErrClientNotFound),
		errors.Is(err, storage.ErrMailboxNotFound),
		errors.Is(err, storage.ErrCorrespondenceNotFound),
		errors.Is(err, storage.ErrContractNotFound):
		NotFound(c, GetErrorMessage(err))

	case errors.Is(err, storage.ErrDocumentExists),
		errors.Is(err, storage.ErrMailboxExists),
		errors.Is(err, storage.ErrNumberExists),
		errors.Is(err, auth.ErrUsernameExists),
		errors.Is(err, service.ErrAlreadyPickedUp),
		errors.Is(err, service.ErrNotPickedUp),
		errors.Is(err, service.ErrAlreadyReturned):
		Conflict(c, GetErrorMessage(err))

	default:
		InternalError(c, MsgInternalError)
	}
}

// 通用错误消息
const (
	// 请求相关
	MsgInvalidRequest = "请求参数格式错误"
	MsgInvalidDate    = "日期格式无效，应为 YYYY-MM-DD"
	MsgInvalidValue   = "金额格式无效"

	// 认证相关
	MsgAuthRequired       = "需要登录认证"
	MsgInvalidCredentials = "用户名或密码错误"
	MsgTokenInvalid       = "无效的访问令牌"

	// 服务器错误
	MsgInternalError = "服务器内部错误，请稍后重试"
)
