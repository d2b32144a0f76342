package response

import (
	"net/http"

	"project-management-api/internal/core/errs"
)

// KindStatus 错误类别 → HTTP 状态码
var KindStatus = map[errs.Kind]int{
	errs.KindValidation:      http.StatusBadRequest,
	errs.KindUnauthorized:    http.StatusUnauthorized,
	errs.KindForbidden:       http.StatusForbidden,
	errs.KindNotFound:        http.StatusNotFound,
	errs.KindConflict:        http.StatusConflict,
	errs.KindTooManyRequests: http.StatusTooManyRequests,
	errs.KindUnavailable:     http.StatusServiceUnavailable,
	errs.KindTimeout:         http.StatusGatewayTimeout,
	errs.KindInternal:        http.StatusInternalServerError,
}

func StatusOf(err error) int {
	if s, ok := KindStatus[errs.KindOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}
