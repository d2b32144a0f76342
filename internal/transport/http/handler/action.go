package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"project-management-api/internal/core/errs"
	resp "project-management-api/internal/transport/http/response"
)

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON body 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

var (
	errInvalidJSON  = errs.Validation("Invalid JSON format")
	errInvalidQuery = errs.Validation("Invalid query parameters")
	errBodyTooLarge = errs.Validation("Request body too large")
)

// Action 一个接口一行注册：I 入参；Handler 返回 (状态码, 响应体, 错误)
type Action[I any] struct {
	Method  string
	Path    string
	Binder  Binder
	Handler func(c *gin.Context, in *I) (int, any, error)
}

// RegisterAction 在分组上挂载动作；错误统一走 resp.Fail
func RegisterAction[I any](g gin.IRoutes, a Action[I]) {
	h := func(c *gin.Context) {
		var in I
		if err := bind(c, a.Binder, &in); err != nil {
			resp.Fail(c, err)
			return
		}
		status, out, err := a.Handler(c, &in)
		if err != nil {
			resp.Fail(c, err)
			return
		}
		resp.JSON(c, status, out)
	}
	g.Handle(a.Method, a.Path, h)
}

func bind(c *gin.Context, b Binder, dst any) error {
	switch b {
	case BindJSON:
		return bindJSON(c, dst)
	case BindQuery:
		if err := c.ShouldBindQuery(dst); err != nil {
			return errInvalidQuery
		}
	}
	return nil
}

// bindJSON 入参结构体不带 binding tag，字段校验交给 service 层的 validator
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	var tooLarge *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &tooLarge):
		return errBodyTooLarge
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return errs.Validationf("Field '%s' has an invalid type", typeErr.Field)
	default:
		return errInvalidJSON
	}
}

// pathID 路径上的 id 必须是正整数
func pathID(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.Validationf("Invalid %s", name)
	}
	return id, nil
}

// flag include_* 取值为 true（不区分大小写）时生效
func flag(c *gin.Context, name string) bool { return strings.EqualFold(c.Query(name), "true") }

// list 列表响应：{<key>: items, count, total, limit, offset}
func list(key string, items any, count int, total int64, limit, offset int) gin.H {
	return gin.H{key: items, "count": count, "total": total, "limit": limit, "offset": offset}
}
