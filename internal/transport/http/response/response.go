package response

import (
	"net/http"

	"github.com/takezo-code/kanban-auth/internal/domain"
)

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

// OK 成功响应
func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// FromError 领域错误 → (HTTP 状态, 响应体)。Internal 不泄内部信息。
func FromError(err error) (int, Resp) {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest, Error(CodeBadRequest, err.Error())
	case domain.KindUnauthorized:
		return http.StatusUnauthorized, Error(CodeUnauthorized, err.Error())
	case domain.KindForbidden:
		return http.StatusForbidden, Error(CodeForbidden, err.Error())
	case domain.KindNotFound:
		return http.StatusNotFound, Error(CodeNotFound, err.Error())
	case domain.KindConflict:
		return http.StatusConflict, Error(CodeConflict, err.Error())
	default:
		return http.StatusInternalServerError, Error(CodeServerError, "")
	}
}
